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

// fakeAnalyzer is a minimal accessanalysis.Analyzer stand-in driven by
// per-op tag maps, letting each test wire up only the predicates its
// scenario needs.
type fakeAnalyzer struct {
	strictInlineable map[schedule.OpRef]bool
	needsTiling      map[schedule.OpRef]bool
	needsRfactor     map[schedule.OpRef]bool
	outputs          map[schedule.OpRef]bool
	consumers        map[schedule.OpRef][]schedule.OpRef
	elementWise      map[[2]schedule.OpRef]bool
}

func (f *fakeAnalyzer) IsSimpleAccess(schedule.OpRef) bool      { return true }
func (f *fakeAnalyzer) IsStrictInlineable(op schedule.OpRef) bool { return f.strictInlineable[op] }
func (f *fakeAnalyzer) NeedsMultiLevelTiling(op schedule.OpRef) bool { return f.needsTiling[op] }
func (f *fakeAnalyzer) NeedsRfactor(op schedule.OpRef) bool      { return f.needsRfactor[op] }
func (f *fakeAnalyzer) IsOutput(op schedule.OpRef) bool          { return f.outputs[op] }
func (f *fakeAnalyzer) GetConsumers(_ schedule.State, op schedule.OpRef) []schedule.OpRef {
	return f.consumers[op]
}
func (f *fakeAnalyzer) GetProducers(schedule.State, schedule.OpRef) []schedule.OpRef { return nil }
func (f *fakeAnalyzer) GetDirectProducers(schedule.OpRef) []schedule.OpRef           { return nil }
func (f *fakeAnalyzer) NumCommonOuterIterators(schedule.OpRef, schedule.OpRef) int    { return 0 }
func (f *fakeAnalyzer) ElementWiseMatch(op, target schedule.OpRef) bool {
	return f.elementWise[[2]schedule.OpRef{op, target}]
}

// fakeDAG is a minimal schedule.DAGView stand-in: cache stages clone the
// producer's iterator shape, rfactor stages keep the spatial dims and
// append one reduction iterator at factorAxis.
type fakeDAG struct{ stages map[schedule.StageID]schedule.Stage }

func (d *fakeDAG) NewCacheStage(producer schedule.StageID, scope string) (schedule.Stage, error) {
	src := d.stages[producer]
	return schedule.Stage{
		OpRef:  "cache." + src.OpRef.(string),
		OpType: schedule.OpTypeCompute,
		Iters:  append([]schedule.Iterator(nil), src.Iters...),
	}, nil
}

func (d *fakeDAG) NewRfactorStage(producer schedule.StageID, iterIndex, factorAxis int) (schedule.Stage, error) {
	src := d.stages[producer]
	iters := make([]schedule.Iterator, 0, factorAxis+1)
	for i := 0; i < factorAxis && i < len(src.Iters); i++ {
		iters = append(iters, src.Iters[i])
	}
	iters = append(iters, schedule.Iterator{Name: "rf", Kind: schedule.IterKindReduction, Extent: schedule.UnknownExtent})
	return schedule.Stage{
		OpRef:  "rfactor." + src.OpRef.(string),
		OpType: schedule.OpTypeCompute,
		Iters:  iters,
	}, nil
}

func spatialIter(name string, extent int) schedule.Iterator {
	return schedule.Iterator{Name: name, Kind: schedule.IterKindSpatial, Extent: extent}
}

func reductionIter(name string, extent int) schedule.Iterator {
	return schedule.Iterator{Name: name, Kind: schedule.IterKindReduction, Extent: extent}
}

// TestGenerateSketches_ElementwiseChainInlines covers scenario 1: a
// strictly inlineable, non-output elementwise stage feeding a single
// output stage should be inlined via AlwaysInline and nothing else.
func TestGenerateSketches_ElementwiseChainInlines(t *testing.T) {
	a := schedule.Stage{ID: 0, OpRef: "a", OpType: schedule.OpTypeCompute, Iters: []schedule.Iterator{spatialIter("i", 16)}}
	b := schedule.Stage{ID: 1, OpRef: "b", OpType: schedule.OpTypeCompute, Iters: []schedule.Iterator{spatialIter("i", 16)}}
	init := schedule.New([]schedule.Stage{a, b})

	analyzer := &fakeAnalyzer{
		strictInlineable: map[schedule.OpRef]bool{"a": true},
		outputs:          map[schedule.OpRef]bool{"b": true},
	}
	policy := NewPolicy(analyzer, &fakeDAG{}, "SSRSRS")

	sketches, err := GenerateSketches(policy, init)
	require.NoError(t, err)
	require.Len(t, sketches, 1)

	st, ok := sketches[0].Stage(0)
	require.True(t, ok)
	assert.Equal(t, schedule.ComputeLocationInlined, st.ComputeAt.Kind)
}

// TestGenerateSketches_ReductionNeedingRfactor covers scenario 4: a
// reduction stage the analyzer flags needs_rfactor produces three
// sketches, two from AddRfactor (the second reordering the factor
// iterator innermost) and SkipStage's unchanged one. Both rfactor sketches
// carry a Split with exactly one hole immediately before their Rfactor
// step after postprocess.
func TestGenerateSketches_ReductionNeedingRfactor(t *testing.T) {
	r := schedule.Stage{
		ID:     0,
		OpRef:  "r",
		OpType: schedule.OpTypeCompute,
		Iters:  []schedule.Iterator{spatialIter("i", 32), reductionIter("k", 128)},
	}
	init := schedule.New([]schedule.Stage{r})

	analyzer := &fakeAnalyzer{
		needsRfactor: map[schedule.OpRef]bool{"r": true},
		outputs:      map[schedule.OpRef]bool{"r": true},
	}
	dag := &fakeDAG{stages: map[schedule.StageID]schedule.Stage{0: r}}
	policy := NewPolicy(analyzer, dag, "SSRSRS")

	sketches, err := GenerateSketches(policy, init)
	require.NoError(t, err)
	require.Len(t, sketches, 3)

	rfactorSketches := 0
	for _, sk := range sketches {
		steps := sk.TransformSteps
		foundRfactor := false
		for i, step := range steps {
			rf, ok := step.(schedule.Rfactor)
			if !ok {
				continue
			}
			foundRfactor = true
			require.Greater(t, i, 0)
			split, ok := steps[i-1].(schedule.Split)
			require.True(t, ok, "rfactor at %d must be preceded by a split", i)
			require.Len(t, split.Lengths, 1)
			assert.Nil(t, split.Lengths[0])
			_ = rf
		}
		if foundRfactor {
			rfactorSketches++
		}
	}
	assert.Equal(t, 2, rfactorSketches)
}

// TestGenerateSketches_SkipStageFallback covers the catch-all: a stage
// none of the other five rules fire on still produces exactly one
// sketch, unchanged.
func TestGenerateSketches_SkipStageFallback(t *testing.T) {
	p := schedule.Stage{ID: 0, OpRef: "p", OpType: schedule.OpTypePlaceholder}
	c := schedule.Stage{ID: 1, OpRef: "c", OpType: schedule.OpTypeCompute, Iters: []schedule.Iterator{spatialIter("i", 8)}}
	init := schedule.New([]schedule.Stage{p, c})

	analyzer := &fakeAnalyzer{outputs: map[schedule.OpRef]bool{"c": true}}
	policy := NewPolicy(analyzer, &fakeDAG{}, "SSRSRS")

	sketches, err := GenerateSketches(policy, init)
	require.NoError(t, err)
	require.Len(t, sketches, 1)
	assert.Equal(t, init.StageIDs(), sketches[0].StageIDs())
}
