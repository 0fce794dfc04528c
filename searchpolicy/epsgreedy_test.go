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
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansor-go/sketchsearch/schedule"
)

func stateWithSole(name string, extent int) schedule.State {
	return schedule.New([]schedule.Stage{{
		ID:     0,
		OpRef:  name,
		OpType: schedule.OpTypeCompute,
		Iters:  []schedule.Iterator{{Name: name, Kind: schedule.IterKindSpatial, Extent: extent}},
	}})
}

func distinctStates(n int) []schedule.State {
	out := make([]schedule.State, n)
	for i := range out {
		out[i] = stateWithSole(fmt.Sprintf("op%d", i), i+1)
	}
	return out
}

func TestNumRandomSlots_Ceil(t *testing.T) {
	cfg := Config{EpsGreedy: 0.2}
	assert.Equal(t, int(math.Ceil(0.2*10)), numRandomSlots(cfg, 10))
	assert.Equal(t, 1, numRandomSlots(Config{EpsGreedy: 0.05}, 4))
}

func TestPickStatesWithEpsGreedy_RespectsBudgetAndOrder(t *testing.T) {
	cfg := Config{EpsGreedy: 0.5}
	best := distinctStates(3)
	random := make([]schedule.State, 3)
	for i := range random {
		random[i] = stateWithSole(fmt.Sprintf("random-op%d", i), i+1)
	}

	measured := make(map[string]struct{})
	picked := pickStatesWithEpsGreedy(cfg, best, random, 4, 100, measured)

	require.Len(t, picked, 4)
	// numGood = 4 - ceil(0.5*4) = 2: the first two slots must come from best.
	assert.Equal(t, best[0].ToStr(), picked[0].ToStr())
	assert.Equal(t, best[1].ToStr(), picked[1].ToStr())
	assert.Len(t, measured, 4)
}

func TestPickStatesWithEpsGreedy_SkipsAlreadyMeasured(t *testing.T) {
	cfg := Config{EpsGreedy: 0}
	best := distinctStates(2)
	measured := map[string]struct{}{best[0].ToStr(): {}}

	picked := pickStatesWithEpsGreedy(cfg, best, nil, 5, 5, measured)
	require.Len(t, picked, 1)
	assert.Equal(t, best[1].ToStr(), picked[0].ToStr())
}

func TestPickStatesWithEpsGreedy_FallsBackWhenOneSourceExhausted(t *testing.T) {
	cfg := Config{EpsGreedy: 0.9}
	best := distinctStates(5)
	measured := make(map[string]struct{})

	picked := pickStatesWithEpsGreedy(cfg, best, nil, 3, 3, measured)
	assert.Len(t, picked, 3)
}

func TestPickStatesWithEpsGreedy_LimitedByRemainingTrials(t *testing.T) {
	cfg := Config{EpsGreedy: 0.1}
	best := distinctStates(10)
	measured := make(map[string]struct{})

	picked := pickStatesWithEpsGreedy(cfg, best, nil, 8, 2, measured)
	assert.Len(t, picked, 2)
}

func TestPickStatesWithEpsGreedy_EmptySourcesYieldsEmpty(t *testing.T) {
	measured := make(map[string]struct{})
	picked := pickStatesWithEpsGreedy(Config{EpsGreedy: 0.1}, nil, nil, 4, 4, measured)
	assert.Empty(t, picked)
}
