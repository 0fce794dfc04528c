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

package sketchgen

import "github.com/ansor-go/sketchsearch/schedule"

// SkipStage is the catch-all last rule: it always applies, leaving the
// state unchanged and moving the cursor to the previous stage. Without
// it, a stage none of the earlier rules fire on would have no successor
// and the BFS frontier would silently drop it.
type SkipStage struct{}

func (*SkipStage) Name() string { return "skip_stage" }

func (*SkipStage) MeetCondition(*Policy, schedule.State, schedule.StageID) ConditionKind {
	return Apply
}

func (*SkipStage) Apply(_ *Policy, state schedule.State, stageID schedule.StageID) ([]Successor, error) {
	return []Successor{{State: state, NextStageID: stageID - 1}}, nil
}
