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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansor-go/sketchsearch/schedule"
)

// TestScenario1_ElementwiseChainInlinesMiddleStage covers the three-stage
// form of scenario 1: A(placeholder) -> B(x=A) -> C(y=B), with B strictly
// inlineable and C the output. GenerateSketches must produce exactly one
// sketch, carrying a ComputeInline(B) step and nothing else.
func TestScenario1_ElementwiseChainInlinesMiddleStage(t *testing.T) {
	a := schedule.Stage{ID: 0, OpRef: "A", OpType: schedule.OpTypePlaceholder}
	b := schedule.Stage{ID: 1, OpRef: "B", OpType: schedule.OpTypeCompute, Iters: []schedule.Iterator{spatialIter("i", 16)}}
	c := schedule.Stage{ID: 2, OpRef: "C", OpType: schedule.OpTypeCompute, Iters: []schedule.Iterator{spatialIter("i", 16)}}
	init := schedule.New([]schedule.Stage{a, b, c})

	analyzer := &fakeAnalyzer{
		strictInlineable: map[schedule.OpRef]bool{"B": true},
		outputs:          map[schedule.OpRef]bool{"C": true},
	}
	policy := NewPolicy(analyzer, &fakeDAG{}, "SSRSRS")

	sketches, err := GenerateSketches(policy, init)
	require.NoError(t, err)
	require.Len(t, sketches, 1)

	require.Len(t, sketches[0].TransformSteps, 1)
	inline, ok := sketches[0].TransformSteps[0].(schedule.ComputeInline)
	require.True(t, ok)
	assert.Equal(t, b.ID, inline.StageID)
}

// TestScenario2_MatmulWithoutFusionTarget covers scenario 2: a matmul
// stage that needs multi-level tiling but has no elementwise-matched
// consumer to fuse into. AddCacheWrite, MultiLevelTiling, and the
// unconditional SkipStage catch-all each fire at the matmul cursor, so
// the resulting sketch set must contain at least one branch that cached
// C's output, at least one that tiled C without caching it, and at
// least one that left C untouched.
func TestScenario2_MatmulWithoutFusionTarget(t *testing.T) {
	c := schedule.Stage{
		ID:     0,
		OpRef:  "matmul",
		OpType: schedule.OpTypeCompute,
		Iters: []schedule.Iterator{
			spatialIter("m", 64),
			spatialIter("n", 64),
			reductionIter("k", 64),
		},
	}
	init := schedule.New([]schedule.Stage{c})

	analyzer := &fakeAnalyzer{
		needsTiling: map[schedule.OpRef]bool{"matmul": true},
		outputs:     map[schedule.OpRef]bool{"matmul": true},
	}
	dag := &fakeDAG{stages: map[schedule.StageID]schedule.Stage{0: c}}
	policy := NewPolicy(analyzer, dag, "SSRSRS")

	sketches, err := GenerateSketches(policy, init)
	require.NoError(t, err)
	require.NotEmpty(t, sketches)

	var sawCached, sawTiledUncached, sawUntouched bool
	for _, sk := range sketches {
		hasCache, hasSplit := false, false
		for _, step := range sk.TransformSteps {
			switch step.(type) {
			case schedule.CacheWrite:
				hasCache = true
			case schedule.Split:
				hasSplit = true
			}
		}
		switch {
		case hasCache:
			sawCached = true
		case hasSplit:
			sawTiledUncached = true
		case len(sk.TransformSteps) == 0:
			sawUntouched = true
		}
	}
	assert.True(t, sawCached, "expected a cache_write(matmul, \"local\") branch")
	assert.True(t, sawTiledUncached, "expected a multi-level-tiling-only branch")
	assert.True(t, sawUntouched, "expected the skip_stage branch to survive unchanged")
}

// TestScenario3_MatmulBiasReluFuses covers scenario 3: a matmul stage
// with exactly one elementwise-matched consumer. MultiLevelTilingWithFusion
// must fire (producing an attach into the consumer for each tiling depth
// offered by the "SSRSRS" structure, i.e. levels 1 and 2), and
// AddCacheWrite must not, since a fusable consumer exists.
func TestScenario3_MatmulBiasReluFuses(t *testing.T) {
	c := schedule.Stage{
		ID:     0,
		OpRef:  "matmul",
		OpType: schedule.OpTypeCompute,
		Iters: []schedule.Iterator{
			spatialIter("m", 64),
			spatialIter("n", 64),
			reductionIter("k", 64),
		},
	}
	d := schedule.Stage{
		ID:     1,
		OpRef:  "relu",
		OpType: schedule.OpTypeCompute,
		Iters: []schedule.Iterator{
			spatialIter("m", 64),
			spatialIter("n", 64),
		},
	}
	init := schedule.New([]schedule.Stage{c, d})

	analyzer := &fakeAnalyzer{
		needsTiling: map[schedule.OpRef]bool{"matmul": true},
		outputs:     map[schedule.OpRef]bool{"relu": true},
		consumers:   map[schedule.OpRef][]schedule.OpRef{"matmul": {"relu"}},
		elementWise: map[[2]schedule.OpRef]bool{{"matmul", "relu"}: true},
	}
	dag := &fakeDAG{stages: map[schedule.StageID]schedule.Stage{0: c, 1: d}}
	policy := NewPolicy(analyzer, dag, "SSRSRS")

	sketches, err := GenerateSketches(policy, init)
	require.NoError(t, err)
	require.NotEmpty(t, sketches)

	var sawAttach, sawCache int
	for _, sk := range sketches {
		for _, step := range sk.TransformSteps {
			switch s := step.(type) {
			case schedule.ComputeAt:
				if s.StageID == c.ID && s.TargetID == d.ID {
					sawAttach++
				}
			case schedule.CacheWrite:
				if s.StageID == c.ID {
					sawCache++
				}
			}
		}
	}
	assert.GreaterOrEqual(t, sawAttach, 1, "expected at least one fused ComputeAt(matmul -> relu) branch")
	assert.Equal(t, 0, sawCache, "add_cache_write_stage must not fire when a fusable consumer exists")
}

// TestScenario4_ReductionRfactorHolePunch covers scenario 4's postprocess
// contract directly against the punched output: every Rfactor step must
// be immediately preceded by a Split carrying exactly one undefined
// length.
func TestScenario4_ReductionRfactorHolePunch(t *testing.T) {
	r := schedule.Stage{
		ID:     0,
		OpRef:  "sum",
		OpType: schedule.OpTypeCompute,
		Iters:  []schedule.Iterator{spatialIter("i", 32), reductionIter("k", 256)},
	}
	init := schedule.New([]schedule.Stage{r})

	analyzer := &fakeAnalyzer{
		needsRfactor: map[schedule.OpRef]bool{"sum": true},
		outputs:      map[schedule.OpRef]bool{"sum": true},
	}
	dag := &fakeDAG{stages: map[schedule.StageID]schedule.Stage{0: r}}
	policy := NewPolicy(analyzer, dag, "SSRSRS")

	sketches, err := GenerateSketches(policy, init)
	require.NoError(t, err)
	require.NotEmpty(t, sketches)

	sawRfactor := false
	for _, sk := range sketches {
		for i, step := range sk.TransformSteps {
			rf, ok := step.(schedule.Rfactor)
			if !ok {
				continue
			}
			sawRfactor = true
			require.Greater(t, i, 0)
			split, ok := sk.TransformSteps[i-1].(schedule.Split)
			require.True(t, ok)
			require.Len(t, split.Lengths, 1)
			assert.Nil(t, split.Lengths[0])
			assert.Greater(t, rf.NewStageID, schedule.StageID(0))
		}
	}
	assert.True(t, sawRfactor, "expected at least one rfactor branch")
}

// TestScenario_BoundedSearchTerminates is a smoke check of the
// bounded-search invariant: sketch generation over a single-stage tiling
// DAG, where add_cache_write_stage leaves the cursor in place once,
// terminates with a non-empty sketch set. It does not count BFS rounds
// or inspect cursors.
func TestScenario_BoundedSearchTerminates(t *testing.T) {
	c := schedule.Stage{
		ID:     0,
		OpRef:  "matmul",
		OpType: schedule.OpTypeCompute,
		Iters: []schedule.Iterator{
			spatialIter("m", 32),
			reductionIter("k", 32),
		},
	}
	init := schedule.New([]schedule.Stage{c})

	analyzer := &fakeAnalyzer{
		needsTiling: map[schedule.OpRef]bool{"matmul": true},
		outputs:     map[schedule.OpRef]bool{"matmul": true},
	}
	dag := &fakeDAG{stages: map[schedule.StageID]schedule.Stage{0: c}}
	policy := NewPolicy(analyzer, dag, "SSRSRS")

	sketches, err := GenerateSketches(policy, init)
	require.NoError(t, err)
	require.NotEmpty(t, sketches)
	for _, sk := range sketches {
		assert.NotEmpty(t, sk.StageIDs())
	}
}
