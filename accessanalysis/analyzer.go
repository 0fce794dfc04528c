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

// Package accessanalysis is the boundary (C3) to the external static
// access analyzer over the compute DAG: producer/consumer resolution,
// "simple access", "needs multi-level tiling", "strict-inlineable", and
// bound inference inputs. This package defines the contract only.
package accessanalysis

import "github.com/ansor-go/sketchsearch/schedule"

// Analyzer is the access-analyzer facade (§6).
type Analyzer interface {
	// IsSimpleAccess reports whether op's access pattern to its inputs is
	// a simple (affine, non-gather) access.
	IsSimpleAccess(op schedule.OpRef) bool

	// IsStrictInlineable reports whether op may always be safely inlined
	// regardless of consumer shape.
	IsStrictInlineable(op schedule.OpRef) bool

	// NeedsMultiLevelTiling reports whether op's compute pattern (e.g. a
	// reduction over a large iteration space) benefits from multi-level
	// tiling.
	NeedsMultiLevelTiling(op schedule.OpRef) bool

	// NeedsRfactor reports whether op's reduction should be split via
	// rfactor before tiling (a heavy single-iterator reduction that tiling
	// alone cannot parallelize well).
	NeedsRfactor(op schedule.OpRef) bool

	// IsOutput reports whether op is a DAG output (no consumers outside
	// the DAG).
	IsOutput(op schedule.OpRef) bool

	// GetConsumers returns op's consumers as seen from state, propagating
	// through inlined stages.
	GetConsumers(state schedule.State, op schedule.OpRef) []schedule.OpRef

	// GetProducers returns op's producers as seen from state, propagating
	// through inlined stages.
	GetProducers(state schedule.State, op schedule.OpRef) []schedule.OpRef

	// GetDirectProducers returns op's immediate producers, without
	// propagating through inlined stages.
	GetDirectProducers(op schedule.OpRef) []schedule.OpRef

	// NumCommonOuterIterators returns the number of outer iterators op and
	// target share (used to decide fusion/attach depth).
	NumCommonOuterIterators(op, target schedule.OpRef) int

	// ElementWiseMatch reports whether op and target have element-wise
	// matching iteration spaces, so op can be fused directly into target.
	ElementWiseMatch(op, target schedule.OpRef) bool
}
