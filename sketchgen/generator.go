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

import (
	"fmt"

	"github.com/ansor-go/sketchsearch/schedule"
)

// cursor is one entry of the BFS frontier: a state paired with the stage
// the next round of rules should be consulted against.
type cursor struct {
	state   schedule.State
	stageID schedule.StageID
}

// GenerateSketches runs the double-buffered BFS of §4.4: starting from
// init (cursor at its last stage), it repeatedly consults policy.Rules in
// registration order at each frontier cursor until every cursor's stage
// id has gone negative, then runs the rfactor hole-punching postprocess
// on every resulting sketch.
//
// Grounded on the teacher's ApplyFusionRules worklist loop shape
// (cmd/hwygen/ir/fusion.go), generalized from a single flat worklist to
// a two-buffer ping-pong because each cursor must route its own next
// stage id rather than re-scan a flat candidate list.
func GenerateSketches(policy *Policy, init schedule.State) ([]schedule.State, error) {
	current := []cursor{{state: init, stageID: init.LastStageID()}}
	var out []schedule.State

	for len(current) > 0 {
		var next []cursor
		for _, c := range current {
			if c.stageID < 0 {
				out = append(out, c.state)
				continue
			}
			successors, err := consultRules(policy, c.state, c.stageID)
			if err != nil {
				return nil, err
			}
			for _, s := range successors {
				next = append(next, cursor{state: s.State, stageID: s.NextStageID})
			}
		}
		current = next
	}

	sketches := make([]schedule.State, len(out))
	for i, s := range out {
		punched, err := punchRfactorHoles(s)
		if err != nil {
			return nil, err
		}
		sketches[i] = punched
	}
	return sketches, nil
}

// consultRules walks policy.Rules in registration order at (state,
// stageID), collecting the successors of every rule that returns Apply
// or ApplyAndSkipRest, and stopping at the first ApplyAndSkipRest.
func consultRules(policy *Policy, state schedule.State, stageID schedule.StageID) ([]Successor, error) {
	var successors []Successor
	for _, rule := range policy.Rules {
		cond := rule.MeetCondition(policy, state, stageID)
		if policy.Trace != nil {
			policy.Trace(rule.Name(), stageID, cond)
		}
		if cond == Pass {
			continue
		}
		ruleSuccessors, err := rule.Apply(policy, state, stageID)
		if err != nil {
			return nil, fmt.Errorf("sketchgen: rule %q at stage %d: %w", rule.Name(), stageID, err)
		}
		successors = append(successors, ruleSuccessors...)
		if cond == ApplyAndSkipRest {
			break
		}
	}
	return successors, nil
}

// punchRfactorHoles implements §4.4's postprocess: for every Rfactor step,
// the immediately preceding step must be a Split; that Split's Lengths
// is rewritten to a single hole, discarding the literal "1" used during
// generation to keep the state applicable while AddRfactor ran.
func punchRfactorHoles(state schedule.State) (schedule.State, error) {
	steps := state.TransformSteps
	rewritten := append([]schedule.TransformStep(nil), steps...)
	for i, step := range steps {
		if _, ok := step.(schedule.Rfactor); !ok {
			continue
		}
		if i == 0 {
			return schedule.State{}, fmt.Errorf("%w: rfactor at step 0 has no preceding split", schedule.ErrInvariantViolation)
		}
		split, ok := steps[i-1].(schedule.Split)
		if !ok {
			return schedule.State{}, fmt.Errorf("%w: rfactor at step %d not preceded by a split", schedule.ErrInvariantViolation, i)
		}
		split.Lengths = []*int{nil}
		rewritten[i-1] = split
	}
	return state.WithTransformSteps(rewritten), nil
}
