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
	"github.com/ansor-go/sketchsearch/searchpolicy"
)

func TestCostModel_IsRandomModel(t *testing.T) {
	assert.True(t, NewRandomCostModel().IsRandomModel())
	assert.False(t, NewHeuristicCostModel().IsRandomModel())
}

func TestCostModel_PredictScoresInverseOfWorkEstimate(t *testing.T) {
	g, err := NewMatMulBiasReluWorkload()
	require.NoError(t, err)
	state := g.InitialState()

	m := NewHeuristicCostModel()
	scores, err := m.Predict(&searchpolicy.Task{}, []schedule.State{state})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.InDelta(t, 1/workEstimate(state), scores[0], 1e-12)
}

func TestCostModel_PredictStagesUnsupported(t *testing.T) {
	m := NewRandomCostModel()
	_, _, err := m.PredictStages(&searchpolicy.Task{}, nil)
	assert.ErrorIs(t, err, searchpolicy.ErrPredictStagesUnsupported)
}

func TestCostModel_UpdateIsNoOp(t *testing.T) {
	m := NewHeuristicCostModel()
	assert.NoError(t, m.Update(nil, nil))
}
