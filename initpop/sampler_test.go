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

package initpop

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansor-go/sketchsearch/schedule"
	"github.com/ansor-go/sketchsearch/scheduleprim"
)

// fakeAnalyzer is a minimal accessanalysis.Analyzer stand-in: every
// predicate defaults to false/empty except what a test explicitly wires.
type fakeAnalyzer struct {
	needsTiling map[schedule.OpRef]bool
	consumers   map[schedule.OpRef][]schedule.OpRef
}

func (f *fakeAnalyzer) IsSimpleAccess(schedule.OpRef) bool       { return true }
func (f *fakeAnalyzer) IsStrictInlineable(schedule.OpRef) bool   { return false }
func (f *fakeAnalyzer) NeedsMultiLevelTiling(op schedule.OpRef) bool {
	return f.needsTiling[op]
}
func (f *fakeAnalyzer) NeedsRfactor(schedule.OpRef) bool { return false }
func (f *fakeAnalyzer) IsOutput(schedule.OpRef) bool     { return true }
func (f *fakeAnalyzer) GetConsumers(_ schedule.State, op schedule.OpRef) []schedule.OpRef {
	return f.consumers[op]
}
func (f *fakeAnalyzer) GetProducers(schedule.State, schedule.OpRef) []schedule.OpRef { return nil }
func (f *fakeAnalyzer) GetDirectProducers(schedule.OpRef) []schedule.OpRef           { return nil }
func (f *fakeAnalyzer) NumCommonOuterIterators(schedule.OpRef, schedule.OpRef) int   { return 0 }
func (f *fakeAnalyzer) ElementWiseMatch(schedule.OpRef, schedule.OpRef) bool         { return false }

// fakeEngine is a minimal scheduleprim.Engine stand-in whose InferBound
// is a pass-through, since this package's own rules already materialize
// every extent and compute location it touches.
type fakeEngine struct{}

func (fakeEngine) ApplySteps(context.Context, []schedule.TransformStep) (scheduleprim.Schedule, scheduleprim.Tensors, error) {
	return nil, nil, nil
}
func (fakeEngine) InferBound(_ context.Context, state schedule.State) (schedule.State, error) {
	return state, nil
}
func (fakeEngine) ReplayAndGetDAG(context.Context, []schedule.TransformStep) (scheduleprim.DAG, error) {
	return nil, nil
}
func (fakeEngine) PrintStepsAsPython([]schedule.TransformStep) (string, error) { return "", nil }

func newTestSampler(cfg Config, seed int64) *Sampler {
	return NewSampler(&fakeAnalyzer{}, fakeEngine{}, cfg, rand.New(rand.NewSource(seed)))
}

// TestSample_ResolvesMatmulSketch covers scenario 2's assertion that every
// sampled state ends up concrete with an auto_unroll_max_step pragma on
// the reduction stage's first iterator.
func TestSample_ResolvesMatmulSketch(t *testing.T) {
	stage := schedule.Stage{
		ID:     0,
		OpRef:  "c",
		OpType: schedule.OpTypeCompute,
		Iters: []schedule.Iterator{
			{Name: "i", Kind: schedule.IterKindSpatial, Extent: 32},
			{Name: "k", Kind: schedule.IterKindReduction, Extent: 128},
		},
	}
	init := schedule.New([]schedule.Stage{stage})
	_, holed, err := init.Split(0, 0, []*int{nil}, false)
	require.NoError(t, err)
	require.False(t, holed.Concrete)

	cfg := Config{MaxInnermostSplitFactor: 64, MaxVectorizeSize: 16, NumCores: 4}
	sampler := newTestSampler(cfg, 1)

	out, err := sampler.Sample(context.Background(), holed)
	require.NoError(t, err)
	assert.True(t, out.Concrete)

	for _, step := range out.TransformSteps {
		if sp, ok := step.(schedule.Split); ok {
			assert.False(t, sp.HasHole())
		}
	}

	var pragmas []schedule.Pragma
	for _, step := range out.TransformSteps {
		if p, ok := step.(schedule.Pragma); ok {
			pragmas = append(pragmas, p)
		}
	}
	require.Len(t, pragmas, 1)
	assert.True(t, strings.HasPrefix(pragmas[0].Payload, "auto_unroll_max_step$"))
	k, err := strconv.Atoi(strings.TrimPrefix(pragmas[0].Payload, "auto_unroll_max_step$"))
	require.NoError(t, err)
	assert.Contains(t, []int{0, 16, 64, 512}, k)
}

// TestSampleInitPopulation_ReachesTarget covers the C7 rejection loop's
// happy path: every sketch in the pool is completable, so the population
// reaches its target size with zero failures.
func TestSampleInitPopulation_ReachesTarget(t *testing.T) {
	stage := schedule.Stage{
		ID:     0,
		OpRef:  "c",
		OpType: schedule.OpTypeCompute,
		Iters: []schedule.Iterator{
			{Name: "i", Kind: schedule.IterKindSpatial, Extent: 8},
		},
	}
	init := schedule.New([]schedule.Stage{stage})

	cfg := Config{MaxInnermostSplitFactor: 8, MaxVectorizeSize: 8, NumCores: 2}
	sampler := newTestSampler(cfg, 7)

	out, stats, err := SampleInitPopulation(context.Background(), sampler, []schedule.State{init}, 5)
	require.NoError(t, err)
	assert.Len(t, out, 5)
	assert.Equal(t, 0, stats.FailCount)
	for _, s := range out {
		assert.True(t, s.Concrete)
	}
}
