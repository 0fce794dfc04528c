// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schedule

import "errors"

// ErrInvariantViolation is returned when a transform step cannot be
// applied to a State: the stage or iterator it names does not exist, or
// applying it would corrupt the State's invariants (§3, §7). Callers
// should treat it as fatal — it indicates a bug in a rule or facade, not
// a recoverable search-time condition.
var ErrInvariantViolation = errors.New("schedule: invariant violation")
