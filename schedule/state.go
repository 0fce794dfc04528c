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

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/samber/lo"
)

// State is the immutable schedule snapshot threaded through every rule.
// Every mutator returns a new State; the receiver is never modified.
// Every mutator starts from clone(), which deep-copies every stage, the
// TransformSteps slice and the AttachMap; the result shares no stage data
// with the receiver.
type State struct {
	Stages         []Stage
	TransformSteps []TransformStep
	AttachMap      AttachMap
	Concrete       bool

	nextStageID StageID
	cachedStr   string
	cachedHash  uint64
	hashValid   bool
}

// New creates the initial State for a compute DAG: every stage,
// placeholders included, is compute_at = root, and there are no
// transform steps yet. Stages must already be in the external DAG's
// topological order.
func New(stages []Stage) State {
	s := State{
		Stages:    append([]Stage(nil), stages...),
		AttachMap: NewAttachMap(),
	}
	maxID := StageID(-1)
	for i := range s.Stages {
		s.Stages[i] = s.Stages[i].Clone()
		if s.Stages[i].ComputeAt.Kind == 0 && !s.Stages[i].IsPlaceholder() {
			s.Stages[i].ComputeAt = Root()
		}
		if s.Stages[i].ID > maxID {
			maxID = s.Stages[i].ID
		}
	}
	s.nextStageID = maxID + 1
	s.Concrete = s.computeConcrete()
	return s
}

// clone returns a State sharing nothing mutable with the receiver: the
// caller is free to mutate Stages[i] in place on the returned value.
func (s State) clone() State {
	next := s
	next.Stages = append([]Stage(nil), s.Stages...)
	for i := range next.Stages {
		next.Stages[i] = next.Stages[i].Clone()
	}
	next.TransformSteps = append([]TransformStep(nil), s.TransformSteps...)
	next.AttachMap = s.AttachMap.Clone()
	next.cachedStr = ""
	next.hashValid = false
	return next
}

// indexOf returns the slice index of the stage with the given ID.
func (s State) indexOf(id StageID) int {
	for i := range s.Stages {
		if s.Stages[i].ID == id {
			return i
		}
	}
	return -1
}

// Stage returns the stage with the given ID.
func (s State) Stage(id StageID) (Stage, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Stage{}, false
	}
	return s.Stages[i], true
}

// LastStageID returns the StageID of the last stage in topological
// order — the sketch generator's initial BFS cursor.
func (s State) LastStageID() StageID {
	if len(s.Stages) == 0 {
		return -1
	}
	return s.Stages[len(s.Stages)-1].ID
}

func (s State) computeConcrete() bool {
	for _, st := range s.Stages {
		if !st.IsPlaceholder() && st.ComputeAt.Kind == ComputeLocationUnresolved {
			return false
		}
	}
	for _, step := range s.TransformSteps {
		if sp, ok := step.(Split); ok && sp.HasHole() {
			return false
		}
	}
	return true
}

func (s *State) appendStep(step TransformStep) {
	s.TransformSteps = append(s.TransformSteps, step)
	s.Concrete = s.computeConcrete()
	s.cachedStr = ""
	s.hashValid = false
}

// ComputeInline marks stage as inlined into its consumers.
func (s State) ComputeInline(stage StageID) (State, error) {
	next := s.clone()
	i := next.indexOf(stage)
	if i < 0 {
		return State{}, fmt.Errorf("%w: compute_inline: stage %d not found", ErrInvariantViolation, stage)
	}
	next.Stages[i].ComputeAt = Inlined()
	next.AttachMap.Detach(stage)
	next.appendStep(ComputeInline{StageID: stage})
	return next, nil
}

// ComputeRoot gives stage its own top-level loop nest.
func (s State) ComputeRoot(stage StageID) (State, error) {
	next := s.clone()
	i := next.indexOf(stage)
	if i < 0 {
		return State{}, fmt.Errorf("%w: compute_root: stage %d not found", ErrInvariantViolation, stage)
	}
	next.Stages[i].ComputeAt = Root()
	next.AttachMap.Detach(stage)
	next.appendStep(ComputeRoot{StageID: stage})
	return next, nil
}

// ComputeAt attaches stage inside target's iterator iterIndex.
func (s State) ComputeAt(stage, target StageID, iterIndex int) (State, error) {
	next := s.clone()
	i := next.indexOf(stage)
	j := next.indexOf(target)
	if i < 0 || j < 0 {
		return State{}, fmt.Errorf("%w: compute_at: stage %d or target %d not found", ErrInvariantViolation, stage, target)
	}
	if iterIndex < 0 || iterIndex >= len(next.Stages[j].Iters) {
		return State{}, fmt.Errorf("%w: compute_at: iter %d out of range on stage %d", ErrInvariantViolation, iterIndex, target)
	}
	next.Stages[i].ComputeAt = AtIter(target, iterIndex)
	next.AttachMap.Attach(stage, AttachPoint{TargetID: target, IterIndex: iterIndex})
	next.appendStep(ComputeAt{StageID: stage, TargetID: target, IterIndex: iterIndex})
	return next, nil
}

// Split divides iterIndex of stage into len(lengths)+1 iterators, in
// outer-to-inner order. lengths may contain a nil entry (a hole) on a
// sketch; it must be fully defined before the state is concrete.
// Returns the new iterators (outer to inner) and the resulting state.
func (s State) Split(stage StageID, iterIndex int, lengths []*int, innerToOuter bool) ([]Iterator, State, error) {
	next := s.clone()
	i := next.indexOf(stage)
	if i < 0 {
		return nil, State{}, fmt.Errorf("%w: split: stage %d not found", ErrInvariantViolation, stage)
	}
	st := next.Stages[i]
	if iterIndex < 0 || iterIndex >= len(st.Iters) {
		return nil, State{}, fmt.Errorf("%w: split: iter %d out of range on stage %d", ErrInvariantViolation, iterIndex, stage)
	}
	parent := st.Iters[iterIndex]
	n := len(lengths) + 1
	names := splitNames(parent.Name, n)
	newIters := make([]Iterator, n)
	for k := 0; k < n; k++ {
		newIters[k] = Iterator{Name: names[k], Extent: UnknownExtent, Kind: parent.Kind, Annotation: AnnotationNone}
	}
	// If fully defined, the outermost extent is derivable; inner extents
	// come straight from lengths (when known).
	if parent.HasKnownExtent() {
		allKnown := true
		product := 1
		for _, l := range lengths {
			if l == nil {
				allKnown = false
				break
			}
			product *= *l
		}
		if allKnown {
			for k := 1; k < n; k++ {
				newIters[k].Extent = *lengths[k-1]
			}
			if product != 0 {
				newIters[0].Extent = (parent.Extent + product - 1) / product
			}
		}
	}
	rest := append([]Iterator(nil), st.Iters[iterIndex+1:]...)
	st.Iters = append(append(append([]Iterator(nil), st.Iters[:iterIndex]...), newIters...), rest...)
	next.Stages[i] = st
	next.appendStep(Split{StageID: stage, IterIndex: iterIndex, Extent: parent.Extent, Lengths: lengths, InnerToOuter: innerToOuter, Names: names})
	return newIters, next, nil
}

// ResolveSplitHole fills in the previously-undefined lengths of the
// Split transform step at stepIndex, updating both the recorded step and
// the extents of the iterators it produced (looked up by name, since a
// later Reorder may have moved them). Only the InnerToOuter == false
// convention used throughout this module's own rules is supported: the
// outermost iterator is the first of the split's Names.
func (s State) ResolveSplitHole(stepIndex int, lengths []int) (State, error) {
	next := s.clone()
	if stepIndex < 0 || stepIndex >= len(next.TransformSteps) {
		return State{}, fmt.Errorf("%w: resolve_split_hole: step %d out of range", ErrInvariantViolation, stepIndex)
	}
	split, ok := next.TransformSteps[stepIndex].(Split)
	if !ok {
		return State{}, fmt.Errorf("%w: resolve_split_hole: step %d is not a split", ErrInvariantViolation, stepIndex)
	}
	if len(lengths) != len(split.Lengths) {
		return State{}, fmt.Errorf("%w: resolve_split_hole: expected %d lengths, got %d", ErrInvariantViolation, len(split.Lengths), len(lengths))
	}
	if split.InnerToOuter {
		return State{}, fmt.Errorf("%w: resolve_split_hole: inner_to_outer splits are not supported", ErrInvariantViolation)
	}
	i := next.indexOf(split.StageID)
	if i < 0 {
		return State{}, fmt.Errorf("%w: resolve_split_hole: stage %d not found", ErrInvariantViolation, split.StageID)
	}
	st := next.Stages[i]
	positions := make([]int, len(split.Names))
	for k, name := range split.Names {
		pos := st.IterIndex(name)
		if pos < 0 {
			return State{}, fmt.Errorf("%w: resolve_split_hole: iterator %q no longer present on stage %d", ErrInvariantViolation, name, split.StageID)
		}
		positions[k] = pos
	}

	product := 1
	for _, l := range lengths {
		product *= l
	}
	for k := 1; k < len(positions); k++ {
		st.Iters[positions[k]].Extent = lengths[k-1]
	}
	if split.Extent != UnknownExtent && product != 0 {
		st.Iters[positions[0]].Extent = (split.Extent + product - 1) / product
	}
	next.Stages[i] = st

	resolved := make([]*int, len(lengths))
	for k := range lengths {
		v := lengths[k]
		resolved[k] = &v
	}
	split.Lengths = resolved
	next.TransformSteps[stepIndex] = split
	next.Concrete = next.computeConcrete()
	next.cachedStr = ""
	next.hashValid = false
	return next, nil
}

// Fuse combines the given iterators (indices into stage's Iters, assumed
// contiguous and given outer-to-inner) into one.
func (s State) Fuse(stage StageID, iterIndices []int) (Iterator, State, error) {
	next := s.clone()
	i := next.indexOf(stage)
	if i < 0 {
		return Iterator{}, State{}, fmt.Errorf("%w: fuse: stage %d not found", ErrInvariantViolation, stage)
	}
	if len(iterIndices) == 0 {
		return Iterator{}, State{}, fmt.Errorf("%w: fuse: no iterators given", ErrInvariantViolation)
	}
	st := next.Stages[i]
	fusedIters := make([]Iterator, 0, len(iterIndices))
	for _, idx := range iterIndices {
		if idx < 0 || idx >= len(st.Iters) {
			return Iterator{}, State{}, fmt.Errorf("%w: fuse: iter %d out of range on stage %d", ErrInvariantViolation, idx, stage)
		}
		fusedIters = append(fusedIters, st.Iters[idx])
	}
	kind := IterKindSpatial
	for _, it := range fusedIters {
		if it.Kind == IterKindReduction {
			kind = IterKindReduction
		}
	}
	extent := 1
	known := true
	for _, it := range fusedIters {
		if !it.HasKnownExtent() {
			known = false
			break
		}
		extent *= it.Extent
	}
	fused := Iterator{Name: fusedName(fusedIters), Kind: kind, Extent: UnknownExtent}
	if known {
		fused.Extent = extent
	}
	first, last := iterIndices[0], iterIndices[len(iterIndices)-1]
	newIters := append(append(append([]Iterator(nil), st.Iters[:first]...), fused), st.Iters[last+1:]...)
	st.Iters = newIters
	next.Stages[i] = st
	next.appendStep(Fuse{StageID: stage, IterIndices: iterIndices})
	return fused, next, nil
}

// Reorder permutes stage's iterators into newOrder (a permutation of
// [0, len(Iters))).
func (s State) Reorder(stage StageID, newOrder []int) (State, error) {
	next := s.clone()
	i := next.indexOf(stage)
	if i < 0 {
		return State{}, fmt.Errorf("%w: reorder: stage %d not found", ErrInvariantViolation, stage)
	}
	st := next.Stages[i]
	if len(newOrder) != len(st.Iters) {
		return State{}, fmt.Errorf("%w: reorder: order length %d does not match %d iterators", ErrInvariantViolation, len(newOrder), len(st.Iters))
	}
	reordered := make([]Iterator, len(newOrder))
	for k, idx := range newOrder {
		if idx < 0 || idx >= len(st.Iters) {
			return State{}, fmt.Errorf("%w: reorder: index %d out of range", ErrInvariantViolation, idx)
		}
		reordered[k] = st.Iters[idx]
	}
	st.Iters = reordered
	next.Stages[i] = st
	next.appendStep(Reorder{StageID: stage, NewOrder: append([]int(nil), newOrder...)})
	return next, nil
}

// DAGView is the minimal capability State needs from the external
// compute DAG to insert a new stage for cache_write/rfactor: a
// description (iterators, opaque op reference) of the newly introduced
// op. It is deliberately narrower than the full primitive-engine facade
// (scheduleprim.Engine) so this package never has to import it.
type DAGView interface {
	// NewCacheStage returns the new stage inserted by caching producer's
	// output in the given scope.
	NewCacheStage(producer StageID, scope string) (Stage, error)
	// NewRfactorStage returns the new intermediate reduction stage
	// produced by factoring producer's iterator iterIndex along
	// factorAxis.
	NewRfactorStage(producer StageID, iterIndex, factorAxis int) (Stage, error)
}

// insertStage inserts st immediately before the producer in topological
// order (TVM inserts cache/rfactor stages directly before their source
// stage), modifying s in place.
func (s *State) insertStage(before StageID, st Stage) {
	i := s.indexOf(before)
	if i < 0 {
		i = len(s.Stages)
	}
	s.Stages = append(s.Stages[:i:i], append([]Stage{st}, s.Stages[i:]...)...)
}

// CacheWrite inserts a new stage caching stage's output in scope, and
// returns the new stage's ID.
func (s State) CacheWrite(stage StageID, scope string, dag DAGView) (StageID, State, error) {
	next := s.clone()
	if next.indexOf(stage) < 0 {
		return 0, State{}, fmt.Errorf("%w: cache_write: stage %d not found", ErrInvariantViolation, stage)
	}
	newStage, err := dag.NewCacheStage(stage, scope)
	if err != nil {
		return 0, State{}, fmt.Errorf("cache_write: %w", err)
	}
	newStage.ID = next.nextStageID
	next.nextStageID++
	i := next.indexOf(stage)
	next.Stages[i].StorageScope = scope
	next.insertStage(stage, newStage)
	next.appendStep(CacheWrite{StageID: stage, ScopeName: scope, NewStageID: newStage.ID})
	return newStage.ID, next, nil
}

// Rfactor inserts an intermediate reduction stage factoring stage's
// iterator iterIndex along factorAxis, and returns the new stage's ID.
func (s State) Rfactor(stage StageID, iterIndex, factorAxis int, dag DAGView) (StageID, State, error) {
	next := s.clone()
	i := next.indexOf(stage)
	if i < 0 {
		return 0, State{}, fmt.Errorf("%w: rfactor: stage %d not found", ErrInvariantViolation, stage)
	}
	if iterIndex < 0 || iterIndex >= len(next.Stages[i].Iters) {
		return 0, State{}, fmt.Errorf("%w: rfactor: iter %d out of range on stage %d", ErrInvariantViolation, iterIndex, stage)
	}
	newStage, err := dag.NewRfactorStage(stage, iterIndex, factorAxis)
	if err != nil {
		return 0, State{}, fmt.Errorf("rfactor: %w", err)
	}
	newStage.ID = next.nextStageID
	next.nextStageID++
	next.insertStage(stage, newStage)
	next.appendStep(Rfactor{StageID: stage, IterIndex: iterIndex, FactorAxis: factorAxis, NewStageID: newStage.ID})
	return newStage.ID, next, nil
}

func (s State) annotate(stage StageID, iterIndex int, ann Annotation, step TransformStep) (State, error) {
	next := s.clone()
	i := next.indexOf(stage)
	if i < 0 {
		return State{}, fmt.Errorf("%w: annotate: stage %d not found", ErrInvariantViolation, stage)
	}
	if iterIndex < 0 || iterIndex >= len(next.Stages[i].Iters) {
		return State{}, fmt.Errorf("%w: annotate: iter %d out of range on stage %d", ErrInvariantViolation, iterIndex, stage)
	}
	next.Stages[i].Iters[iterIndex].Annotation = ann
	next.appendStep(step)
	return next, nil
}

// Parallel marks iterIndex of stage as parallel.
func (s State) Parallel(stage StageID, iterIndex int) (State, error) {
	return s.annotate(stage, iterIndex, AnnotationParallel, Parallel{StageID: stage, IterIndex: iterIndex})
}

// Vectorize marks iterIndex of stage as vectorized.
func (s State) Vectorize(stage StageID, iterIndex int) (State, error) {
	return s.annotate(stage, iterIndex, AnnotationVectorize, Vectorize{StageID: stage, IterIndex: iterIndex})
}

// Unroll marks iterIndex of stage as unrolled.
func (s State) Unroll(stage StageID, iterIndex int) (State, error) {
	return s.annotate(stage, iterIndex, AnnotationUnroll, Unroll{StageID: stage, IterIndex: iterIndex})
}

// Pragma attaches payload to iterIndex of stage without changing its
// annotation.
func (s State) Pragma(stage StageID, iterIndex int, payload string) (State, error) {
	next := s.clone()
	i := next.indexOf(stage)
	if i < 0 {
		return State{}, fmt.Errorf("%w: pragma: stage %d not found", ErrInvariantViolation, stage)
	}
	if iterIndex < 0 || iterIndex >= len(next.Stages[i].Iters) {
		return State{}, fmt.Errorf("%w: pragma: iter %d out of range on stage %d", ErrInvariantViolation, iterIndex, stage)
	}
	next.appendStep(Pragma{StageID: stage, IterIndex: iterIndex, Payload: payload})
	return next, nil
}

// ToStr returns the canonical textual serialization of the state, used
// as the dedup key for the measured set. It is deterministic in stage
// and iterator order and memoized until the next mutation.
func (s *State) ToStr() string {
	if s.cachedStr != "" {
		return s.cachedStr
	}
	var b strings.Builder
	for _, st := range s.Stages {
		fmt.Fprintf(&b, "stage(id=%d,type=%s,at=%s", st.ID, st.OpType, st.ComputeAt.Kind)
		if st.ComputeAt.Kind == ComputeLocationAtIter {
			fmt.Fprintf(&b, "(%d,%d)", st.ComputeAt.TargetID, st.ComputeAt.IterIndex)
		}
		if st.StorageScope != "" {
			fmt.Fprintf(&b, ",scope=%s", st.StorageScope)
		}
		b.WriteString(") iters=[")
		for i, it := range st.Iters {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s:%d:%s:%s", it.Name, it.Extent, it.Kind, it.Annotation)
		}
		b.WriteString("]\n")
	}
	b.WriteString("steps=[")
	for i, step := range s.TransformSteps {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(step.String())
	}
	b.WriteString("]")
	s.cachedStr = b.String()
	return s.cachedStr
}

// Hash returns a stable, non-cryptographic hash of ToStr(), memoized
// after first computation. It lets hot dedup paths (measured_states_set)
// short-circuit on a cheap integer compare before falling back to a full
// string comparison — recovered from TVM's State::hash (see
// SPEC_FULL.md §3).
func (s *State) Hash() uint64 {
	if s.hashValid {
		return s.cachedHash
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.ToStr()))
	s.cachedHash = h.Sum64()
	s.hashValid = true
	return s.cachedHash
}

// WithTransformSteps returns a copy of s with its TransformSteps replaced
// wholesale, recomputing Concrete and invalidating the memoized string
// and hash. Used only by the sketch generator's rfactor hole-punching
// postprocess (§4.4), which rewrites a Split already in the history
// rather than appending a new step.
func (s State) WithTransformSteps(steps []TransformStep) State {
	next := s.clone()
	next.TransformSteps = append([]TransformStep(nil), steps...)
	next.Concrete = next.computeConcrete()
	return next
}

// StageIDs returns the IDs of all stages, in topological order.
func (s State) StageIDs() []StageID {
	return lo.Map(s.Stages, func(st Stage, _ int) StageID { return st.ID })
}
