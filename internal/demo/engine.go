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
	"strings"

	"github.com/ansor-go/sketchsearch/schedule"
	"github.com/ansor-go/sketchsearch/scheduleprim"
)

// Engine is an in-memory reference scheduleprim.Engine. It never lowers
// to real machine code; ApplySteps and PrintStepsAsPython render a
// step history as a readable trace, and InferBound is the identity
// function, since by the time the search driver calls it every Split
// hole and compute-location hole has already been resolved by initpop
// — there is nothing left for a real engine's bound inference to fill
// in that this symbolic model doesn't already carry.
type Engine struct{}

// NewEngine returns a new demo Engine.
func NewEngine() *Engine { return &Engine{} }

func (*Engine) ApplySteps(_ context.Context, steps []schedule.TransformStep) (scheduleprim.Schedule, scheduleprim.Tensors, error) {
	return stepsToString(steps), nil, nil
}

func (*Engine) InferBound(_ context.Context, state schedule.State) (schedule.State, error) {
	return state, nil
}

// ReplayAndGetDAG has no mutable DAG of its own to replay steps
// against; the demo Graph that produced the original task is already
// the DAG a caller would want, so this returns nil rather than
// reconstructing a copy.
func (*Engine) ReplayAndGetDAG(_ context.Context, _ []schedule.TransformStep) (scheduleprim.DAG, error) {
	return nil, nil
}

func (*Engine) PrintStepsAsPython(steps []schedule.TransformStep) (string, error) {
	return stepsToString(steps), nil
}

func stepsToString(steps []schedule.TransformStep) string {
	lines := make([]string, len(steps))
	for i, st := range steps {
		lines[i] = st.String()
	}
	return strings.Join(lines, "\n")
}
