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

// MultiLevelTilingWithFusion tiles a stage that needs multi-level tiling
// and has a single element-wise matched consumer, then fuses it into
// that consumer at one or two tiling depths, producing one sketch branch
// per depth offered by Policy.CPUStructure. If the stage already has a
// cache-write stage (added by AddCacheWrite on an earlier visit of this
// cursor), this is the last rule consulted at this cursor.
type MultiLevelTilingWithFusion struct{}

func (*MultiLevelTilingWithFusion) Name() string { return "multi_level_tiling_with_fusion" }

func (r *MultiLevelTilingWithFusion) meetsAt(policy *Policy, state schedule.State, stageID schedule.StageID) (schedule.Stage, schedule.StageID, bool) {
	stage, ok := state.Stage(stageID)
	if !ok || !policy.Analyzer.NeedsMultiLevelTiling(stage.OpRef) {
		return schedule.Stage{}, 0, false
	}
	target, ok := hasSingleElementwiseMatchedConsumer(policy, state, stage)
	if !ok {
		return schedule.Stage{}, 0, false
	}
	return stage, target, true
}

func (r *MultiLevelTilingWithFusion) MeetCondition(policy *Policy, state schedule.State, stageID schedule.StageID) ConditionKind {
	if _, _, ok := r.meetsAt(policy, state, stageID); !ok {
		return Pass
	}
	if hasCacheWriteStage(state, stageID) {
		return ApplyAndSkipRest
	}
	return Apply
}

func (r *MultiLevelTilingWithFusion) Apply(policy *Policy, state schedule.State, stageID schedule.StageID) ([]Successor, error) {
	stage, target, ok := r.meetsAt(policy, state, stageID)
	if !ok {
		return nil, ErrStageNotFound
	}

	tiled, _, err := doMultiLevelTiling(state, stage, policy.CPUStructure)
	if err != nil {
		return nil, err
	}

	var successors []Successor
	for level := 1; level <= 2; level++ {
		if !structureLevelIsSpatial(policy.CPUStructure, level) {
			continue
		}
		followed, targetIterIdx, err := followTiling(tiled, target, stage.SpatialIterCount(), level)
		if err != nil {
			return nil, err
		}
		attached, err := followed.ComputeAt(stageID, target, targetIterIdx)
		if err != nil {
			return nil, err
		}
		successors = append(successors, Successor{State: attached, NextStageID: stageID - 1})
	}
	return successors, nil
}
