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

// Package initpop turns a symbolic sketch produced by package sketchgen
// into a concrete, fully annotated schedule state: it resolves every
// split hole, decides where un-placed stages attach, and marks iterators
// parallel, vectorized, and unrolled.
package initpop

import (
	"context"
	"math/rand"

	"github.com/ansor-go/sketchsearch/accessanalysis"
	"github.com/ansor-go/sketchsearch/schedule"
	"github.com/ansor-go/sketchsearch/scheduleprim"
)

// Rule is one initialization rule: a single unconditional pass over a
// whole sketch, run in a fixed order. Unlike sketchgen's per-cursor Rule,
// there is no condition/apply split and no BFS frontier — each rule
// either resolves every hole it cares about in one call or reports
// errInvalidInit when the sketch cannot be completed.
type Rule interface {
	Name() string
	Apply(ctx context.Context, s *Sampler, state schedule.State) (schedule.State, error)
}

// Config holds the initialization-time tunables that bear on C6. NumCores
// is a hardware parameter rather than one of the named policy config
// keys, but Parallel needs it to cap parallel degree.
type Config struct {
	MaxInnermostSplitFactor      int
	MaxVectorizeSize             int
	DisableChangeComputeLocation bool
	NumCores                     int
}

// Sampler runs the fixed sequence of initialization rules against one
// sketch at a time. Every Sampler owns exactly one *rand.Rand, shared by
// every rule it runs, and one factorization memo shared across every
// sketch sampled in its lifetime.
type Sampler struct {
	Analyzer accessanalysis.Analyzer
	Engine   scheduleprim.Engine
	Config   Config
	Rand     *rand.Rand
	Rules    []Rule

	memo *factorizationMemo
}

// NewSampler builds a Sampler with the default rule sequence.
func NewSampler(analyzer accessanalysis.Analyzer, engine scheduleprim.Engine, cfg Config, rnd *rand.Rand) *Sampler {
	return &Sampler{
		Analyzer: analyzer,
		Engine:   engine,
		Config:   cfg,
		Rand:     rnd,
		Rules:    DefaultRules(),
		memo:     newFactorizationMemo(),
	}
}

// DefaultRules returns the five initialization rules in their mandatory
// registration order: FillTileSize must run before ChangeComputeLocation,
// Parallel, and Vectorization, all of which assume concrete tile sizes;
// Unroll runs last because it reads every other rule's annotations.
func DefaultRules() []Rule {
	return []Rule{
		&FillTileSize{},
		&ChangeComputeLocation{},
		&Parallel{},
		&Vectorization{},
		&Unroll{},
	}
}

// Sample runs every rule in s.Rules, in order, against state, returning
// the fully initialized state or the first error encountered. A caller
// sampling a whole population should treat errInvalidInit as a signal to
// retry with a fresh sketch, not as a hard failure; see SampleInitPopulation.
func (s *Sampler) Sample(ctx context.Context, state schedule.State) (schedule.State, error) {
	next := state
	for _, rule := range s.Rules {
		var err error
		next, err = rule.Apply(ctx, s, next)
		if err != nil {
			return schedule.State{}, err
		}
	}
	return next, nil
}
