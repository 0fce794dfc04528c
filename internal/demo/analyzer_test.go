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

package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansor-go/sketchsearch/schedule"
)

func TestAnalyzer_FlagsFromOpSpec(t *testing.T) {
	g, err := NewMatMulBiasReluWorkload()
	require.NoError(t, err)
	a := g.Analyzer()

	assert.True(t, a.NeedsMultiLevelTiling("matmul"))
	assert.False(t, a.NeedsMultiLevelTiling("biasadd"))
	assert.True(t, a.IsStrictInlineable("biasadd"))
	assert.True(t, a.IsOutput("relu"))
	assert.False(t, a.IsOutput("matmul"))
}

func TestAnalyzer_GetDirectProducers(t *testing.T) {
	g, err := NewMatMulBiasReluWorkload()
	require.NoError(t, err)
	a := g.Analyzer()

	assert.ElementsMatch(t, []schedule.OpRef{"matmul", "bias"}, a.GetDirectProducers("biasadd"))
	assert.Empty(t, a.GetDirectProducers("A"))
}

func TestAnalyzer_GetConsumers_SkipsInlinedStages(t *testing.T) {
	g, err := NewMatMulBiasReluWorkload()
	require.NoError(t, err)
	a := g.Analyzer()
	state := g.InitialState()

	assert.ElementsMatch(t, []schedule.OpRef{"biasadd"}, a.GetConsumers(state, "matmul"))

	biasadd, ok := findStageID(state, "biasadd")
	require.True(t, ok)
	inlined, err := state.ComputeInline(biasadd)
	require.NoError(t, err)
	assert.ElementsMatch(t, []schedule.OpRef{"relu"}, a.GetConsumers(inlined, "matmul"))
}

func TestAnalyzer_GetProducers_SkipsInlinedStages(t *testing.T) {
	g, err := NewMatMulBiasReluWorkload()
	require.NoError(t, err)
	a := g.Analyzer()
	state := g.InitialState()

	assert.ElementsMatch(t, []schedule.OpRef{"matmul", "bias"}, a.GetProducers(state, "biasadd"))

	biasadd, ok := findStageID(state, "biasadd")
	require.True(t, ok)
	inlined, err := state.ComputeInline(biasadd)
	require.NoError(t, err)
	assert.ElementsMatch(t, []schedule.OpRef{"matmul", "bias"}, a.GetProducers(inlined, "relu"))
}

func TestAnalyzer_ElementWiseMatch(t *testing.T) {
	g, err := NewMatMulBiasReluWorkload()
	require.NoError(t, err)
	a := g.Analyzer()

	assert.True(t, a.ElementWiseMatch("matmul", "biasadd"))
	assert.True(t, a.ElementWiseMatch("biasadd", "relu"))
}

func TestAnalyzer_ElementWiseMatch_MismatchedExtentsFail(t *testing.T) {
	g, err := NewReductionCacheWorkload()
	require.NoError(t, err)
	a := g.Analyzer()

	assert.False(t, a.ElementWiseMatch("rowsum", "scale"))
}
