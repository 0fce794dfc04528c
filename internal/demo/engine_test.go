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
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansor-go/sketchsearch/schedule"
)

// stateCompareOpts diffs a schedule.State structurally rather than by
// ToStr(): AttachMap's index maps are unexported, so AllowUnexported is
// needed to see into them, while State's own lazily-populated
// ToStr/Hash cache fields are ignored since InferBound's identity
// transform has no obligation to leave that cache in the same state
// (populated or not) as its input.
var stateCompareOpts = []cmp.Option{
	cmp.AllowUnexported(schedule.State{}, schedule.AttachMap{}),
	cmpopts.IgnoreFields(schedule.State{}, "nextStageID", "cachedStr", "cachedHash", "hashValid"),
}

func TestEngine_InferBoundIsIdentity(t *testing.T) {
	g, err := NewMatMulBiasReluWorkload()
	require.NoError(t, err)
	state := g.InitialState()

	e := NewEngine()
	out, err := e.InferBound(context.Background(), state)
	require.NoError(t, err)
	if diff := cmp.Diff(state, out, stateCompareOpts...); diff != "" {
		t.Errorf("InferBound must be the identity transform (-want +got):\n%s", diff)
	}
}

func TestEngine_ApplyStepsAndPrintStepsAsPythonAgree(t *testing.T) {
	e := NewEngine()
	steps := []schedule.TransformStep{
		schedule.ComputeInline{StageID: 1},
		schedule.Parallel{StageID: 0, IterIndex: 0},
	}

	sched, tensors, err := e.ApplySteps(context.Background(), steps)
	require.NoError(t, err)
	assert.Nil(t, tensors)

	py, err := e.PrintStepsAsPython(steps)
	require.NoError(t, err)
	assert.Equal(t, py, sched)
}

func TestEngine_ReplayAndGetDAGReturnsNil(t *testing.T) {
	e := NewEngine()
	dag, err := e.ReplayAndGetDAG(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, dag)
}
