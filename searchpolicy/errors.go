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

package searchpolicy

import "errors"

// ErrConfiguration marks a missing or malformed Config key. It is
// surfaced to the caller immediately, before Search does any work.
var ErrConfiguration = errors.New("searchpolicy: configuration error")

// ErrSearchSpaceExhausted marks the outer loop terminating because
// pickStatesWithEpsGreedy produced no new candidates after dedup against
// the measured-states set. This is an informational termination, not a
// failure — Search returns it alongside whatever the best state found so
// far was.
var ErrSearchSpaceExhausted = errors.New("searchpolicy: search space exhausted")

// ErrEarlyStop marks the outer loop terminating because no measured
// improvement occurred within the earlyStopping window passed to Search. Also
// informational.
var ErrEarlyStop = errors.New("searchpolicy: early stop")
