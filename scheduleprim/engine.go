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

// Package scheduleprim is the boundary (C2) to the external
// schedule-primitive engine: the thing that actually knows how to turn a
// replayable TransformStep history into a real lowered schedule. This
// package defines the contract only; implementations live outside the
// search core (spec.md §1's "out of scope" list).
package scheduleprim

import (
	"context"

	"github.com/ansor-go/sketchsearch/schedule"
)

// Schedule is an opaque handle to a lowered, primitive-engine schedule
// object. The search core never inspects it.
type Schedule = any

// Tensors is an opaque handle to the tensors produced by lowering.
type Tensors = any

// DAG is an opaque handle to a compute DAG reconstructed by
// ReplayAndGetDAG.
type DAG = any

// Engine is the schedule-primitive facade (§6, §4.2). All methods are
// treated as synchronous external calls; ctx lets a caller bound or
// cancel a slow lowering without the search core knowing anything about
// how the engine implements that.
type Engine interface {
	// ApplySteps lowers a replayable transform-step history into a
	// concrete schedule and its tensors.
	ApplySteps(ctx context.Context, steps []schedule.TransformStep) (Schedule, Tensors, error)

	// InferBound resolves iterator extents and compute locations left
	// implicit by the symbolic State, returning an updated State with
	// those bounds filled in.
	InferBound(ctx context.Context, state schedule.State) (schedule.State, error)

	// ReplayAndGetDAG reconstructs the compute DAG that results from
	// applying steps to the engine's base DAG.
	ReplayAndGetDAG(ctx context.Context, steps []schedule.TransformStep) (DAG, error)

	// PrintStepsAsPython renders steps as the primitive engine's own
	// scheduling-language equivalent, for debugging.
	PrintStepsAsPython(steps []schedule.TransformStep) (string, error)
}
