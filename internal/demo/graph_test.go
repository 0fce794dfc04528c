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

func TestNewGraph_RejectsDuplicateName(t *testing.T) {
	_, err := NewGraph([]OpSpec{
		{Name: "a", Placeholder: true},
		{Name: "a", Placeholder: true},
	})
	require.Error(t, err)
}

func TestNewGraph_RejectsForwardReference(t *testing.T) {
	_, err := NewGraph([]OpSpec{
		{Name: "b", Producers: []string{"a"}},
		{Name: "a", Placeholder: true},
	})
	require.Error(t, err)
}

func TestGraph_InitialState(t *testing.T) {
	g, err := NewMatMulBiasReluWorkload()
	require.NoError(t, err)

	state := g.InitialState()
	require.Len(t, state.Stages, 6)
	assert.Equal(t, "A", state.Stages[0].OpRef)
	assert.Equal(t, schedule.OpTypePlaceholder, state.Stages[0].OpType)
	assert.Equal(t, "matmul", state.Stages[3].OpRef)
	assert.Equal(t, schedule.OpTypeCompute, state.Stages[3].OpType)
	assert.Equal(t, schedule.Root(), state.Stages[3].ComputeAt)
}

func TestGraph_AnalyzerAndDAGViewAreSeparateFacades(t *testing.T) {
	g, err := NewMatMulBiasReluWorkload()
	require.NoError(t, err)

	var a any = g.Analyzer()
	var d any = g.DAGView()
	_, aIsDAG := a.(schedule.DAGView)
	_, dIsAnalyzer := d.(interface{ IsOutput(schedule.OpRef) bool })
	assert.False(t, aIsDAG)
	assert.False(t, dIsAnalyzer)
}
