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

// Package schedule holds the immutable, structurally-shared schedule
// state threaded through sketch derivation, initial-population sampling,
// and the search driver. It has no dependency on the rule packages that
// consume it.
package schedule

import "fmt"

// OpRef is an opaque handle into the external compute DAG. The search
// core never interprets it; it is only compared for equality and passed
// back to the access-analyzer and primitive-engine facades.
type OpRef = any

// StageID identifies a Stage within a State. IDs are assigned once, at
// stage creation, and never reused or renumbered by a clone — unlike a
// slice index, a StageID stays valid across compute_at/cache_write/
// rfactor mutations that insert new stages.
type StageID int

// OpType distinguishes a placeholder (an input tensor with no computation)
// from a stage that actually computes something.
type OpType int

const (
	OpTypePlaceholder OpType = iota
	OpTypeCompute
)

func (t OpType) String() string {
	switch t {
	case OpTypePlaceholder:
		return "placeholder"
	case OpTypeCompute:
		return "compute"
	default:
		return fmt.Sprintf("OpType(%d)", t)
	}
}

// IterKind distinguishes a spatial iterator from a reduction iterator.
type IterKind int

const (
	IterKindSpatial IterKind = iota
	IterKindReduction
)

func (k IterKind) String() string {
	switch k {
	case IterKindSpatial:
		return "spatial"
	case IterKindReduction:
		return "reduction"
	default:
		return fmt.Sprintf("IterKind(%d)", k)
	}
}

// Annotation is the loop-level transform applied to one iterator.
type Annotation int

const (
	AnnotationNone Annotation = iota
	AnnotationParallel
	AnnotationVectorize
	AnnotationUnroll
	AnnotationTensorize
)

func (a Annotation) String() string {
	switch a {
	case AnnotationNone:
		return "none"
	case AnnotationParallel:
		return "parallel"
	case AnnotationVectorize:
		return "vectorize"
	case AnnotationUnroll:
		return "unroll"
	case AnnotationTensorize:
		return "tensorize"
	default:
		return fmt.Sprintf("Annotation(%d)", a)
	}
}

// ComputeLocationKind is the tag of a ComputeLocation.
type ComputeLocationKind int

const (
	// ComputeLocationRoot means the stage has its own loop nest at the
	// top level.
	ComputeLocationRoot ComputeLocationKind = iota
	// ComputeLocationInlined means the stage has been folded into every
	// consumer's expression and has no loop nest of its own.
	ComputeLocationInlined
	// ComputeLocationAtIter means the stage's loop nest is attached
	// inside a specific iterator of a target stage.
	ComputeLocationAtIter
	// ComputeLocationUnresolved is a hole: the sketch generator left the
	// compute location undetermined, for the init-population sampler's
	// ChangeComputeLocation rule to fill in. It is never valid on a
	// concrete state.
	ComputeLocationUnresolved
)

func (k ComputeLocationKind) String() string {
	switch k {
	case ComputeLocationRoot:
		return "root"
	case ComputeLocationInlined:
		return "inlined"
	case ComputeLocationAtIter:
		return "at_iter"
	case ComputeLocationUnresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("ComputeLocationKind(%d)", k)
	}
}

// ComputeLocation is the compute_at attribute of a Stage.
type ComputeLocation struct {
	Kind       ComputeLocationKind
	TargetID   StageID // valid iff Kind == ComputeLocationAtIter
	IterIndex  int     // valid iff Kind == ComputeLocationAtIter
}

// Root returns the root compute location.
func Root() ComputeLocation { return ComputeLocation{Kind: ComputeLocationRoot} }

// Inlined returns the inlined compute location.
func Inlined() ComputeLocation { return ComputeLocation{Kind: ComputeLocationInlined} }

// Unresolved returns the unresolved (hole) compute location.
func Unresolved() ComputeLocation { return ComputeLocation{Kind: ComputeLocationUnresolved} }

// AtIter returns a compute location attached at iterator iterIndex of
// stage target.
func AtIter(target StageID, iterIndex int) ComputeLocation {
	return ComputeLocation{Kind: ComputeLocationAtIter, TargetID: target, IterIndex: iterIndex}
}

// AttachPoint names one iterator slot that stages may attach to:
// (TargetID, IterIndex).
type AttachPoint struct {
	TargetID  StageID
	IterIndex int
}
