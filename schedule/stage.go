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

// Stage is the scheduling view of one operation in the compute DAG.
type Stage struct {
	ID   StageID
	OpRef OpRef
	OpType OpType
	Iters []Iterator
	ComputeAt ComputeLocation

	// StorageScope is set by cache_write ("local", "shared", ...) and
	// otherwise empty; rfactor does not set it. Recovered from TVM's Stage::storage_scope,
	// dropped by the distillation (see SPEC_FULL.md §3).
	StorageScope string

	// Attrs holds stage-level attributes consumed by the derivation and
	// initialization rules, e.g. "always_compute_inline",
	// "no_cache_write", "always_unroll_inner", "always_unroll".
	Attrs map[string]any
}

// Clone returns a deep copy of the stage, safe to mutate independently
// of the original. Iters and Attrs are copied; OpRef is shared (it is
// opaque and never mutated by this package).
func (s Stage) Clone() Stage {
	clone := s
	clone.Iters = append([]Iterator(nil), s.Iters...)
	if s.Attrs != nil {
		clone.Attrs = make(map[string]any, len(s.Attrs))
		for k, v := range s.Attrs {
			clone.Attrs[k] = v
		}
	}
	return clone
}

// HasAttr reports whether the stage carries the named attribute.
func (s Stage) HasAttr(name string) bool {
	if s.Attrs == nil {
		return false
	}
	_, ok := s.Attrs[name]
	return ok
}

// AttrStringSet reads the named attribute as a set of strings (e.g. the
// always_unroll attribute, which lists iterator names). Missing or
// wrongly-typed attributes yield a nil (empty) set.
func (s Stage) AttrStringSet(name string) map[string]struct{} {
	v, ok := s.Attrs[name]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case map[string]struct{}:
		return t
	case []string:
		set := make(map[string]struct{}, len(t))
		for _, n := range t {
			set[n] = struct{}{}
		}
		return set
	default:
		return nil
	}
}

// IsPlaceholder reports whether the stage is a placeholder op.
func (s Stage) IsPlaceholder() bool { return s.OpType == OpTypePlaceholder }

// HasReductionIter reports whether any iterator of the stage is a
// reduction iterator.
func (s Stage) HasReductionIter() bool {
	for _, it := range s.Iters {
		if it.Kind == IterKindReduction {
			return true
		}
	}
	return false
}

// SpatialIterCount returns the number of spatial iterators.
func (s Stage) SpatialIterCount() int {
	n := 0
	for _, it := range s.Iters {
		if it.Kind == IterKindSpatial {
			n++
		}
	}
	return n
}

// IterIndex returns the index of the iterator with the given name, or -1.
func (s Stage) IterIndex(name string) int {
	for i, it := range s.Iters {
		if it.Name == name {
			return i
		}
	}
	return -1
}
