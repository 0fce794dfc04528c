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

package initpop

import "errors"

// errInvalidInit marks a sketch a rule could not complete (e.g. no
// attach candidate existed where one was required). Sample returns it;
// SampleInitPopulation's rejection loop catches it and never surfaces
// it: callers of SampleInitPopulation see only the final sampled
// population or a genuine, unrecoverable error.
var errInvalidInit = errors.New("initpop: invalid init")
