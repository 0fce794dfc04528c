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

// MultiLevelTiling tiles a stage's spatial and reduction iterators per
// Policy.CPUStructure, without attaching it anywhere. It applies to every
// stage that needs multi-level tiling, so it also runs beside
// MultiLevelTilingWithFusion's fused branches when that rule returns
// Apply; it is not consulted when that rule returns ApplyAndSkipRest.
type MultiLevelTiling struct{}

func (*MultiLevelTiling) Name() string { return "multi_level_tiling" }

func (*MultiLevelTiling) MeetCondition(policy *Policy, state schedule.State, stageID schedule.StageID) ConditionKind {
	stage, ok := state.Stage(stageID)
	if !ok {
		return Pass
	}
	if !policy.Analyzer.NeedsMultiLevelTiling(stage.OpRef) {
		return Pass
	}
	return Apply
}

func (*MultiLevelTiling) Apply(policy *Policy, state schedule.State, stageID schedule.StageID) ([]Successor, error) {
	stage, ok := state.Stage(stageID)
	if !ok {
		return nil, ErrStageNotFound
	}
	tiled, _, err := doMultiLevelTiling(state, stage, policy.CPUStructure)
	if err != nil {
		return nil, err
	}
	return []Successor{{State: tiled, NextStageID: stageID - 1}}, nil
}
