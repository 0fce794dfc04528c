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
	"strings"
)

// UnknownExtent marks an Iterator whose extent is not statically known.
const UnknownExtent = -1

// Iterator is one loop variable within a Stage.
type Iterator struct {
	// Name may encode derivation from splits/fuses via suffixes, e.g.
	// "i" split into "i.0"/"i.1", or fused into "i.0.j.0.fused".
	Name       string
	Extent     int // UnknownExtent if not statically known
	Kind       IterKind
	Annotation Annotation
}

// HasKnownExtent reports whether Extent is statically known.
func (it Iterator) HasKnownExtent() bool { return it.Extent != UnknownExtent }

// splitNames returns the names of the n iterators produced by splitting
// an iterator named base, in outer-to-inner order. Each name is the
// parent's name with ".k" appended, so repeated splits of "i" chain as
// "i.0", "i.0.0", "i.0.1", ... — the suffix lineage §3 requires.
func splitNames(base string, n int) []string {
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = fmt.Sprintf("%s.%d", base, i)
	}
	return names
}

// fusedName returns the derived name for an iterator produced by fusing
// the given iterators, in order. TVM's own convention suffixes the
// joined names with ".fused"; this mirrors it so that a name's suffix
// chain remains a legible trace of its derivation.
func fusedName(iters []Iterator) string {
	parts := make([]string, len(iters))
	for i, it := range iters {
		parts[i] = it.Name
	}
	return strings.Join(parts, ".") + ".fused"
}

// originalName returns the root iterator name an (possibly derived) name
// traces back to, i.e. the portion of Name before the first derivation
// suffix. Used by the Unroll initialization rule (§4.5 rule 5) to group
// derived iterators back to the original loop they came from.
func originalName(name string) string {
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// OriginalIteratorName is the exported form of originalName, used by
// package initpop's Unroll rule to group derived iterators back to the
// original loop they came from. A fused iterator's name still carries
// every source name joined by '.', so taking the first segment is a
// simplification when a fuse combined iterators with different original
// roots; single-origin lineages (by far the common case after tiling)
// resolve exactly.
func OriginalIteratorName(name string) string { return originalName(name) }
