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

// Package demo provides in-memory reference implementations of every
// external-interface boundary the search core depends on
// (accessanalysis.Analyzer, scheduleprim.Engine, schedule.DAGView,
// searchpolicy.CostModel, searchpolicy.Measurer), plus a handful of toy
// compute DAGs to drive them. Nothing here is used by production search
// logic; it exists for cmd/sketchsearch and for tests that want a real
// DAG shape instead of a single-purpose fake.
package demo

import (
	"fmt"

	"github.com/ansor-go/sketchsearch/accessanalysis"
	"github.com/ansor-go/sketchsearch/schedule"
)

// IterSpec describes one loop variable of a toy op, in outer-to-inner
// order within Iters.
type IterSpec struct {
	Name   string
	Kind   schedule.IterKind
	Extent int
}

// OpSpec describes one node of a toy compute DAG. Producers must name
// ops already registered earlier in the OpSpec slice passed to NewGraph
// (the slice order is the DAG's topological order).
type OpSpec struct {
	Name string

	// Placeholder marks an input tensor with no computation of its own.
	Placeholder bool

	IsOutput         bool
	NeedsTiling      bool
	NeedsRfactor     bool
	StrictInlineable bool
	SimpleAccess     bool

	Producers []string
	Iters     []IterSpec
	Attrs     map[string]any
}

// Graph is a toy compute DAG: a fixed, static producer/consumer
// structure plus per-op analyzer facts. Graph itself implements neither
// accessanalysis.Analyzer nor schedule.DAGView directly; Analyzer and
// DAGView return thin views over the same fields so each facade stays a
// minimal, single-purpose type.
type Graph struct {
	names     []string
	specs     map[string]OpSpec
	stageByID map[schedule.StageID]schedule.Stage
	consumers map[string][]string
}

// NewGraph builds a Graph from specs, given in topological order
// (producers before consumers).
func NewGraph(specs []OpSpec) (*Graph, error) {
	g := &Graph{
		specs:     make(map[string]OpSpec, len(specs)),
		stageByID: make(map[schedule.StageID]schedule.Stage, len(specs)),
		consumers: make(map[string][]string),
	}
	for i, spec := range specs {
		if _, dup := g.specs[spec.Name]; dup {
			return nil, fmt.Errorf("demo: duplicate op name %q", spec.Name)
		}
		for _, p := range spec.Producers {
			if _, ok := g.specs[p]; !ok {
				return nil, fmt.Errorf("demo: op %q references producer %q before it is defined", spec.Name, p)
			}
			g.consumers[p] = append(g.consumers[p], spec.Name)
		}
		g.specs[spec.Name] = spec
		g.names = append(g.names, spec.Name)

		opType := schedule.OpTypeCompute
		if spec.Placeholder {
			opType = schedule.OpTypePlaceholder
		}
		iters := make([]schedule.Iterator, len(spec.Iters))
		for j, it := range spec.Iters {
			iters[j] = schedule.Iterator{Name: it.Name, Kind: it.Kind, Extent: it.Extent}
		}
		g.stageByID[schedule.StageID(i)] = schedule.Stage{
			ID:     schedule.StageID(i),
			OpRef:  spec.Name,
			OpType: opType,
			Iters:  iters,
			Attrs:  spec.Attrs,
		}
	}
	return g, nil
}

// InitialState returns the DAG's initial schedule.State: every compute
// stage at compute_root, every placeholder with no loop nest, no
// transform steps yet.
func (g *Graph) InitialState() schedule.State {
	stages := make([]schedule.Stage, len(g.names))
	for i := range g.names {
		stages[i] = g.stageByID[schedule.StageID(i)]
	}
	return schedule.New(stages)
}

// Analyzer returns the accessanalysis.Analyzer facade over g.
func (g *Graph) Analyzer() accessanalysis.Analyzer { return (*graphAnalyzer)(g) }

// DAGView returns the schedule.DAGView facade over g.
func (g *Graph) DAGView() schedule.DAGView { return (*graphDAG)(g) }

func (g *Graph) specFor(op schedule.OpRef) (OpSpec, bool) {
	name, ok := op.(string)
	if !ok {
		return OpSpec{}, false
	}
	spec, ok := g.specs[name]
	return spec, ok
}

func isInlined(state schedule.State, op schedule.OpRef) bool {
	for _, st := range state.Stages {
		if st.OpRef == op {
			return st.ComputeAt.Kind == schedule.ComputeLocationInlined
		}
	}
	return false
}
