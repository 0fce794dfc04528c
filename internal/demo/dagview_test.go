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

func TestDAGView_NewCacheStage_ClonesProducerIterators(t *testing.T) {
	g, err := NewReductionCacheWorkload()
	require.NoError(t, err)
	dag := g.DAGView()
	state := g.InitialState()

	rowsum, ok := findStageID(state, "rowsum")
	require.True(t, ok)

	cache, err := dag.NewCacheStage(rowsum, "local")
	require.NoError(t, err)
	assert.Equal(t, "cache.rowsum", cache.OpRef)
	assert.Equal(t, schedule.OpTypeCompute, cache.OpType)

	src, _ := state.Stage(rowsum)
	require.Equal(t, len(src.Iters), len(cache.Iters))
	for i := range src.Iters {
		assert.Equal(t, src.Iters[i].Name, cache.Iters[i].Name)
		assert.Equal(t, src.Iters[i].Extent, cache.Iters[i].Extent)
	}
}

func TestDAGView_NewCacheStage_UnknownProducerErrors(t *testing.T) {
	g, err := NewReductionCacheWorkload()
	require.NoError(t, err)
	dag := g.DAGView()

	_, err = dag.NewCacheStage(schedule.StageID(999), "local")
	assert.Error(t, err)
}

func TestDAGView_NewRfactorStage_AppendsReductionIterator(t *testing.T) {
	g, err := NewReductionCacheWorkload()
	require.NoError(t, err)
	dag := g.DAGView()
	state := g.InitialState()

	rowsum, ok := findStageID(state, "rowsum")
	require.True(t, ok)
	src, _ := state.Stage(rowsum)

	kIdx := -1
	for i, it := range src.Iters {
		if it.Kind == schedule.IterKindReduction {
			kIdx = i
		}
	}
	require.NotEqual(t, -1, kIdx)

	rf, err := dag.NewRfactorStage(rowsum, kIdx, 4)
	require.NoError(t, err)
	assert.Equal(t, "rfactor.rowsum", rf.OpRef)

	last := rf.Iters[len(rf.Iters)-1]
	assert.Equal(t, schedule.IterKindReduction, last.Kind)
	assert.Equal(t, 4, last.Extent)
	assert.Equal(t, src.Iters[kIdx].Name+".rf", last.Name)

	for _, it := range rf.Iters[:len(rf.Iters)-1] {
		assert.Equal(t, schedule.IterKindSpatial, it.Kind)
	}
}

func TestDAGView_NewRfactorStage_OutOfRangeIterErrors(t *testing.T) {
	g, err := NewReductionCacheWorkload()
	require.NoError(t, err)
	dag := g.DAGView()
	state := g.InitialState()

	rowsum, ok := findStageID(state, "rowsum")
	require.True(t, ok)

	_, err = dag.NewRfactorStage(rowsum, 99, 4)
	assert.Error(t, err)
}
