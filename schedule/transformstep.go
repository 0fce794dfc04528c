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

package schedule

import "fmt"

// TransformStep is a closed sum of the primitive schedule transforms.
// Every variant implements stepMarker, an unexported method, so the set
// of variants is closed to this package — callers switch over the
// concrete type, they cannot add new ones.
type TransformStep interface {
	stepMarker()
	// String renders a debug form, used by the canonical string form and
	// by PrintStepsAsPython-style tooling.
	String() string
}

// Split divides one iterator into len(Lengths)+1 iterators. Lengths may
// contain a nil entry (a hole) only transiently, on a non-concrete
// state; InnerToOuter selects whether Lengths are read innermost-first.
type Split struct {
	StageID      StageID
	IterIndex    int
	Extent       int
	Lengths      []*int
	InnerToOuter bool

	// Names holds the derived names of the len(Lengths)+1 iterators this
	// split produced, outer to inner, so a later hole-filling pass
	// (initpop.FillTileSize) can find them on the stage by name rather
	// than by position, which a Reorder may since have changed.
	Names []string
}

func (Split) stepMarker() {}
func (s Split) String() string {
	return fmt.Sprintf("Split(stage=%d, iter=%d, extent=%d, lengths=%s, inner_to_outer=%v, names=%v)",
		s.StageID, s.IterIndex, s.Extent, lengthsString(s.Lengths), s.InnerToOuter, s.Names)
}

func lengthsString(ls []*int) string {
	out := "["
	for i, l := range ls {
		if i > 0 {
			out += ", "
		}
		if l == nil {
			out += "?"
		} else {
			out += fmt.Sprintf("%d", *l)
		}
	}
	return out + "]"
}

// HasHole reports whether any length entry of the split is undefined.
func (s Split) HasHole() bool {
	for _, l := range s.Lengths {
		if l == nil {
			return true
		}
	}
	return false
}

// Fuse combines several iterators of a stage into one.
type Fuse struct {
	StageID    StageID
	IterIndices []int
}

func (Fuse) stepMarker() {}
func (f Fuse) String() string {
	return fmt.Sprintf("Fuse(stage=%d, iters=%v)", f.StageID, f.IterIndices)
}

// Reorder permutes a stage's iterators.
type Reorder struct {
	StageID  StageID
	NewOrder []int
}

func (Reorder) stepMarker() {}
func (r Reorder) String() string {
	return fmt.Sprintf("Reorder(stage=%d, order=%v)", r.StageID, r.NewOrder)
}

// ComputeAt attaches a stage inside a target stage's iterator.
type ComputeAt struct {
	StageID   StageID
	TargetID  StageID
	IterIndex int
}

func (ComputeAt) stepMarker() {}
func (c ComputeAt) String() string {
	return fmt.Sprintf("ComputeAt(stage=%d, target=%d, iter=%d)", c.StageID, c.TargetID, c.IterIndex)
}

// ComputeInline folds a stage into every consumer's expression.
type ComputeInline struct {
	StageID StageID
}

func (ComputeInline) stepMarker() {}
func (c ComputeInline) String() string { return fmt.Sprintf("ComputeInline(stage=%d)", c.StageID) }

// ComputeRoot gives a stage its own top-level loop nest.
type ComputeRoot struct {
	StageID StageID
}

func (ComputeRoot) stepMarker() {}
func (c ComputeRoot) String() string { return fmt.Sprintf("ComputeRoot(stage=%d)", c.StageID) }

// CacheWrite inserts a new stage caching stage's output in scope.
type CacheWrite struct {
	StageID   StageID
	ScopeName string
	// NewStageID is the StageID assigned to the inserted cache stage.
	NewStageID StageID
}

func (CacheWrite) stepMarker() {}
func (c CacheWrite) String() string {
	return fmt.Sprintf("CacheWrite(stage=%d, scope=%q, new_stage=%d)", c.StageID, c.ScopeName, c.NewStageID)
}

// Rfactor splits a reduction by introducing an intermediate reduction
// stage factored along factor_axis.
type Rfactor struct {
	StageID    StageID
	IterIndex  int
	FactorAxis int
	NewStageID StageID
}

func (Rfactor) stepMarker() {}
func (r Rfactor) String() string {
	return fmt.Sprintf("Rfactor(stage=%d, iter=%d, factor_axis=%d, new_stage=%d)",
		r.StageID, r.IterIndex, r.FactorAxis, r.NewStageID)
}

// Parallel marks an iterator for parallel execution.
type Parallel struct {
	StageID   StageID
	IterIndex int
}

func (Parallel) stepMarker() {}
func (p Parallel) String() string { return fmt.Sprintf("Parallel(stage=%d, iter=%d)", p.StageID, p.IterIndex) }

// Vectorize marks an iterator for vectorization.
type Vectorize struct {
	StageID   StageID
	IterIndex int
}

func (Vectorize) stepMarker() {}
func (v Vectorize) String() string { return fmt.Sprintf("Vectorize(stage=%d, iter=%d)", v.StageID, v.IterIndex) }

// Unroll marks an iterator for unrolling.
type Unroll struct {
	StageID   StageID
	IterIndex int
}

func (Unroll) stepMarker() {}
func (u Unroll) String() string { return fmt.Sprintf("Unroll(stage=%d, iter=%d)", u.StageID, u.IterIndex) }

// Pragma attaches a free-form compiler pragma to an iterator.
type Pragma struct {
	StageID   StageID
	IterIndex int
	Payload   string
}

func (Pragma) stepMarker() {}
func (p Pragma) String() string {
	return fmt.Sprintf("Pragma(stage=%d, iter=%d, payload=%q)", p.StageID, p.IterIndex, p.Payload)
}
