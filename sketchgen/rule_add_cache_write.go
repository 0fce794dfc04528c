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

// AddCacheWrite introduces a local cache stage before a stage that needs
// multi-level tiling but does not have a single element-wise matched
// consumer to fuse into instead (that case belongs to
// MultiLevelTilingWithFusion). The cursor does not move: the same stage
// is visited again next round, where the hasCacheWriteStage guard makes
// this rule pass and the tiling rules act on the stage.
type AddCacheWrite struct{}

func (*AddCacheWrite) Name() string { return "add_cache_write_stage" }

func (*AddCacheWrite) MeetCondition(policy *Policy, state schedule.State, stageID schedule.StageID) ConditionKind {
	stage, ok := state.Stage(stageID)
	if !ok {
		return Pass
	}
	if stage.HasAttr("no_cache_write") {
		return Pass
	}
	// TVM's own MeetCondition stops here and relies on its freshly
	// inserted cache stage becoming the target's single element-wise
	// matched consumer on the next visit, at which point the check
	// below already fails on its own. This package's Analyzer
	// implementations resolve consumers from a static producer/consumer
	// map fixed at DAG-construction time and cannot discover a stage
	// cache_write inserted mid-search, so this explicit guard stands in
	// for that self-terminating behavior directly.
	if hasCacheWriteStage(state, stageID) {
		return Pass
	}
	if !policy.Analyzer.NeedsMultiLevelTiling(stage.OpRef) {
		return Pass
	}
	if _, ok := hasSingleElementwiseMatchedConsumer(policy, state, stage); ok {
		return Pass
	}
	return Apply
}

func (*AddCacheWrite) Apply(policy *Policy, state schedule.State, stageID schedule.StageID) ([]Successor, error) {
	newStageID, next, err := state.CacheWrite(stageID, "local", policy.DAG)
	if err != nil {
		return nil, err
	}
	next = markCacheWriteOf(next, newStageID, stageID)
	return []Successor{{State: next, NextStageID: stageID}}, nil
}

// markCacheWriteOf records that newStageID was inserted by caching
// producer's output, so a later round's hasCacheWriteStage check can
// recognize the stage already committed to this tiling path.
func markCacheWriteOf(state schedule.State, newStageID, producer schedule.StageID) schedule.State {
	st, ok := state.Stage(newStageID)
	if !ok {
		return state
	}
	st = st.Clone()
	if st.Attrs == nil {
		st.Attrs = map[string]any{}
	}
	st.Attrs[cacheWriteOfAttr] = producer
	return replaceStage(state, st)
}
