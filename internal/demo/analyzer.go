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

import "github.com/ansor-go/sketchsearch/schedule"

// graphAnalyzer is *Graph viewed as an accessanalysis.Analyzer. It is a
// distinct named type (rather than methods on *Graph itself) so Graph's
// two facades stay separable: a caller holding only the DAGView cannot
// accidentally call analyzer methods, and vice versa.
type graphAnalyzer Graph

func (g *graphAnalyzer) asGraph() *Graph { return (*Graph)(g) }

func (g *graphAnalyzer) IsSimpleAccess(op schedule.OpRef) bool {
	spec, ok := g.asGraph().specFor(op)
	return ok && spec.SimpleAccess
}

func (g *graphAnalyzer) IsStrictInlineable(op schedule.OpRef) bool {
	spec, ok := g.asGraph().specFor(op)
	return ok && spec.StrictInlineable
}

func (g *graphAnalyzer) NeedsMultiLevelTiling(op schedule.OpRef) bool {
	spec, ok := g.asGraph().specFor(op)
	return ok && spec.NeedsTiling
}

func (g *graphAnalyzer) NeedsRfactor(op schedule.OpRef) bool {
	spec, ok := g.asGraph().specFor(op)
	return ok && spec.NeedsRfactor
}

func (g *graphAnalyzer) IsOutput(op schedule.OpRef) bool {
	spec, ok := g.asGraph().specFor(op)
	return ok && spec.IsOutput
}

func (g *graphAnalyzer) GetDirectProducers(op schedule.OpRef) []schedule.OpRef {
	spec, ok := g.asGraph().specFor(op)
	if !ok {
		return nil
	}
	out := make([]schedule.OpRef, len(spec.Producers))
	for i, p := range spec.Producers {
		out[i] = p
	}
	return out
}

// GetConsumers walks forward from op's direct consumers, skipping past
// any consumer currently inlined in state and continuing to its own
// consumers instead, until it reaches a non-inlined stopping point —
// state's "visible" consumer set.
func (g *graphAnalyzer) GetConsumers(state schedule.State, op schedule.OpRef) []schedule.OpRef {
	name, ok := op.(string)
	if !ok {
		return nil
	}
	graph := g.asGraph()
	var out []schedule.OpRef
	seen := map[string]bool{}
	var visit func(string)
	visit = func(n string) {
		for _, c := range graph.consumers[n] {
			if seen[c] {
				continue
			}
			seen[c] = true
			if isInlined(state, c) {
				visit(c)
			} else {
				out = append(out, c)
			}
		}
	}
	visit(name)
	return out
}

// GetProducers is GetConsumers' mirror image, walking backward through
// the static Producers edges.
func (g *graphAnalyzer) GetProducers(state schedule.State, op schedule.OpRef) []schedule.OpRef {
	name, ok := op.(string)
	if !ok {
		return nil
	}
	graph := g.asGraph()
	var out []schedule.OpRef
	seen := map[string]bool{}
	var visit func(string)
	visit = func(n string) {
		spec, ok := graph.specs[n]
		if !ok {
			return
		}
		for _, p := range spec.Producers {
			if seen[p] {
				continue
			}
			seen[p] = true
			if isInlined(state, p) {
				visit(p)
			} else {
				out = append(out, p)
			}
		}
	}
	visit(name)
	return out
}

// NumCommonOuterIterators counts the leading run of iterators (by
// position, outer to inner) that op and target share the same kind for.
// A toy approximation of TVM's actual shared-loop-nest analysis, which
// needs real tensor shape inference this demo facade does not have.
func (g *graphAnalyzer) NumCommonOuterIterators(op, target schedule.OpRef) int {
	graph := g.asGraph()
	a, ok1 := graph.specFor(op)
	b, ok2 := graph.specFor(target)
	if !ok1 || !ok2 {
		return 0
	}
	n := 0
	for n < len(a.Iters) && n < len(b.Iters) && a.Iters[n].Kind == b.Iters[n].Kind {
		n++
	}
	return n
}

// ElementWiseMatch reports whether op's spatial iterators, in order,
// have the same extents as target's — a toy stand-in for real shape
// inference, sufficient to exercise MultiLevelTilingWithFusion against
// these demo DAGs.
func (g *graphAnalyzer) ElementWiseMatch(op, target schedule.OpRef) bool {
	graph := g.asGraph()
	a, ok1 := graph.specFor(op)
	b, ok2 := graph.specFor(target)
	if !ok1 || !ok2 {
		return false
	}
	as, bs := spatialExtents(a.Iters), spatialExtents(b.Iters)
	if len(as) == 0 || len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func spatialExtents(iters []IterSpec) []int {
	var out []int
	for _, it := range iters {
		if it.Kind == schedule.IterKindSpatial {
			out = append(out, it.Extent)
		}
	}
	return out
}
