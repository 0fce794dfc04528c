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

// AlwaysInline inlines a stage that is never worth giving its own loop
// nest: a non-output, non-reduction compute stage the analyzer marks
// strictly inlineable, or one the caller tagged "always_compute_inline".
type AlwaysInline struct{}

func (*AlwaysInline) Name() string { return "always_inline" }

func (*AlwaysInline) MeetCondition(policy *Policy, state schedule.State, stageID schedule.StageID) ConditionKind {
	stage, ok := state.Stage(stageID)
	if !ok || stage.OpType != schedule.OpTypeCompute || stage.HasReductionIter() {
		return Pass
	}
	if policy.Analyzer.IsOutput(stage.OpRef) {
		return Pass
	}
	if stage.HasAttr("always_compute_inline") || policy.Analyzer.IsStrictInlineable(stage.OpRef) {
		return ApplyAndSkipRest
	}
	return Pass
}

func (*AlwaysInline) Apply(policy *Policy, state schedule.State, stageID schedule.StageID) ([]Successor, error) {
	next, err := state.ComputeInline(stageID)
	if err != nil {
		return nil, err
	}
	return []Successor{{State: next, NextStageID: stageID - 1}}, nil
}
