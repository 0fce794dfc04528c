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

// AddRfactor splits a stage's fused reduction iterator in two and factors
// each half into its own intermediate reduction stage, producing one
// sketch branch per half. It only fires when the analyzer flags the
// stage's reduction as heavy enough to need factoring, and only once:
// a stage that already has a cache-write stage has already committed to
// a different tiling path.
type AddRfactor struct{}

func (*AddRfactor) Name() string { return "add_rfactor_stage" }

func (*AddRfactor) MeetCondition(policy *Policy, state schedule.State, stageID schedule.StageID) ConditionKind {
	stage, ok := state.Stage(stageID)
	if !ok {
		return Pass
	}
	if !policy.Analyzer.NeedsRfactor(stage.OpRef) {
		return Pass
	}
	if hasCacheWriteStage(state, stageID) {
		return Pass
	}
	return Apply
}

func (*AddRfactor) Apply(policy *Policy, state schedule.State, stageID schedule.StageID) ([]Successor, error) {
	stage, ok := state.Stage(stageID)
	if !ok {
		return nil, ErrStageNotFound
	}

	fused, numSpatial, fusedIdx, err := fuseAllReductionIterators(state, stage)
	if err != nil {
		return nil, err
	}
	one := 1
	splitIters, split, err := fused.Split(stageID, fusedIdx, []*int{&one}, false)
	if err != nil {
		return nil, err
	}

	var successors []Successor
	for i := range splitIters {
		newStageID, rfactored, err := split.Rfactor(stageID, numSpatial+i, numSpatial, policy.DAG)
		if err != nil {
			return nil, err
		}
		rfactored = markRfactorOf(rfactored, newStageID, stageID)
		if i == 1 {
			rfactored, err = moveIterLast(rfactored, newStageID, numSpatial)
			if err != nil {
				return nil, err
			}
		}
		successors = append(successors, Successor{State: rfactored, NextStageID: stageID - 1})
	}
	return successors, nil
}

// markRfactorOf records that newStageID was derived from producer via
// rfactor, for hasCacheWriteStage-style lookups should a later rule need
// to recognize it; it mirrors markCacheWriteOf below but is currently
// only used for traceability, not dispatch.
func markRfactorOf(state schedule.State, newStageID, producer schedule.StageID) schedule.State {
	st, ok := state.Stage(newStageID)
	if !ok {
		return state
	}
	st = st.Clone()
	if st.Attrs == nil {
		st.Attrs = map[string]any{}
	}
	st.Attrs[rfactorOfAttr] = producer
	return replaceStage(state, st)
}

// moveIterLast moves the iterator at iterIndex to the innermost position,
// keeping the relative order of the others. TVM's AddRfactorStage rule
// does this on the branch that split off the inner half of the 2-way
// split, so the newly introduced factor axis ends up as the innermost
// loop of the rfactor stage.
func moveIterLast(state schedule.State, stage schedule.StageID, iterIndex int) (schedule.State, error) {
	st, ok := state.Stage(stage)
	if !ok {
		return schedule.State{}, ErrStageNotFound
	}
	if iterIndex < 0 || iterIndex >= len(st.Iters) {
		return state, nil
	}
	order := make([]int, 0, len(st.Iters))
	for i := range st.Iters {
		if i != iterIndex {
			order = append(order, i)
		}
	}
	order = append(order, iterIndex)
	return state.Reorder(stage, order)
}

// replaceStage returns state with st substituted for the stage sharing
// its ID.
func replaceStage(state schedule.State, st schedule.Stage) schedule.State {
	for i := range state.Stages {
		if state.Stages[i].ID == st.ID {
			stages := append([]schedule.Stage(nil), state.Stages...)
			stages[i] = st
			state.Stages = stages
			return state
		}
	}
	return state
}
