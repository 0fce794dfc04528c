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

import (
	"math"

	"github.com/ansor-go/sketchsearch/schedule"
)

// numRandomSlots returns the ⌈eps_greedy × num_measure_per_iter⌉ budget
// of §8's ε-greedy property, shared between pickStatesWithEpsGreedy's
// slot split and searchOneRound's 10×-oversampled random_sample request.
func numRandomSlots(cfg Config, numMeasurePerIter int) int {
	return int(math.Ceil(cfg.EpsGreedy * float64(numMeasurePerIter)))
}

// pickStatesWithEpsGreedy interleaves bestStates and randomStates into a
// measurement batch (§4.7 step 4): the first numGood slots prefer
// bestStates, the rest prefer randomStates; either source falls back to
// the other once exhausted. A candidate whose canonical string already
// appears in measured is skipped without consuming a slot's preferred
// source switch; measured is updated in place with every accepted
// state's canonical string.
func pickStatesWithEpsGreedy(cfg Config, bestStates, randomStates []schedule.State, numMeasurePerIter, remainingTrials int, measured map[string]struct{}) []schedule.State {
	limit := numMeasurePerIter
	if remainingTrials < limit {
		limit = remainingTrials
	}
	if limit <= 0 {
		return nil
	}

	numRandom := numRandomSlots(cfg, numMeasurePerIter)
	numGood := numMeasurePerIter - numRandom
	if numGood < 0 {
		numGood = 0
	}

	bi, ri := 0, 0
	picked := make([]schedule.State, 0, limit)
	for len(picked) < limit {
		preferBest := len(picked) < numGood

		var (
			state schedule.State
			ok    bool
		)
		if preferBest {
			state, ok = nextState(&bi, bestStates)
			if !ok {
				state, ok = nextState(&ri, randomStates)
			}
		} else {
			state, ok = nextState(&ri, randomStates)
			if !ok {
				state, ok = nextState(&bi, bestStates)
			}
		}
		if !ok {
			break
		}

		key := state.ToStr()
		if _, dup := measured[key]; dup {
			continue
		}
		measured[key] = struct{}{}
		picked = append(picked, state)
	}
	return picked
}

func nextState(idx *int, states []schedule.State) (schedule.State, bool) {
	if *idx >= len(states) {
		return schedule.State{}, false
	}
	s := states[*idx]
	*idx++
	return s, true
}
