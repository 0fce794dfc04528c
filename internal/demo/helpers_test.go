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

package demo

import "github.com/ansor-go/sketchsearch/schedule"

func findStageID(state schedule.State, op schedule.OpRef) (schedule.StageID, bool) {
	for _, st := range state.Stages {
		if st.OpRef == op {
			return st.ID, true
		}
	}
	return 0, false
}
