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

// Package sketchgen implements the sketch derivation rules (C4) and the
// sketch generator (C5): an ordered-rule BFS that turns an initial
// compute-DAG State into a small set of skeletal "sketch" states, each
// still containing holes for the initial-population sampler (initpop)
// to fill.
//
// The rule shape — a registration-ordered list, each entry with a
// condition check and an apply step contributing successor states to the
// next BFS frontier — is the same shape as the teacher's fusion worklist
// (cmd/hwygen/ir.FusionRule / ApplyFusionRules), generalized from a flat
// fixpoint worklist to the cursor-driven, registration-ordered walk this
// spec requires.
package sketchgen

import (
	"github.com/ansor-go/sketchsearch/accessanalysis"
	"github.com/ansor-go/sketchsearch/schedule"
)

// ConditionKind is the result of a rule's MeetCondition check.
type ConditionKind int

const (
	// Pass means the rule does not apply at this cursor; the generator
	// consults the next rule.
	Pass ConditionKind = iota
	// Apply means the rule applies; its successors are added to the next
	// BFS frontier, and the generator still consults the rules after this
	// one at the same cursor.
	Apply
	// ApplyAndSkipRest means the rule applies and no further rule is
	// consulted at this cursor this round.
	ApplyAndSkipRest
)

func (k ConditionKind) String() string {
	switch k {
	case Pass:
		return "Pass"
	case Apply:
		return "Apply"
	case ApplyAndSkipRest:
		return "ApplyAndSkipRest"
	default:
		return "ConditionKind(?)"
	}
}

// Successor is one (new_state, next_stage_id) pair a rule's Apply
// contributes to the next BFS frontier.
type Successor struct {
	State       schedule.State
	NextStageID schedule.StageID
}

// Rule is a sketch derivation rule (§4.3). Rules are stateless behaviors
// — implementations must not hold mutable state across calls, since a
// single Rule value is shared across every cursor of every sketch in a
// policy's lifetime (§9 "global rule statics" note: owned by the policy
// instance via Policy.Rules, never as a package-level singleton).
type Rule interface {
	// Name identifies the rule for debug tracing only; it plays no part
	// in dispatch.
	Name() string
	MeetCondition(policy *Policy, state schedule.State, stageID schedule.StageID) ConditionKind
	Apply(policy *Policy, state schedule.State, stageID schedule.StageID) ([]Successor, error)
}

// Policy bundles everything a rule needs: the access analyzer facade,
// the DAG view used to materialize cache_write/rfactor stages, and the
// configured multi-level-tiling structure string.
type Policy struct {
	Analyzer accessanalysis.Analyzer
	DAG      schedule.DAGView

	// CPUStructure is MultiLevelTiling.cpu_structure (§4.7), e.g. "SSRSRS".
	CPUStructure string

	// Rules is the registration-ordered rule list. DefaultRules() returns
	// the six rules of §4.3 in the exact required order; callers may
	// substitute a different list for testing, but production code should
	// always start from DefaultRules().
	Rules []Rule

	// Trace, if non-nil, is called once per rule consulted at each
	// cursor, after MeetCondition is evaluated, with its result — grounded on the
	// teacher's debugFusion/debugPrint pattern in cmd/hwygen/ir/fusion.go,
	// here driven by configuration instead of an environment variable.
	Trace func(ruleName string, stageID schedule.StageID, cond ConditionKind)
}

// DefaultRules returns the six sketch derivation rules in the exact
// registration order required by §4.3.
func DefaultRules() []Rule {
	return []Rule{
		&AlwaysInline{},
		&AddRfactor{},
		&AddCacheWrite{},
		&MultiLevelTilingWithFusion{},
		&MultiLevelTiling{},
		&SkipStage{},
	}
}

// NewPolicy returns a Policy with the default rule registration order.
func NewPolicy(analyzer accessanalysis.Analyzer, dag schedule.DAGView, cpuStructure string) *Policy {
	return &Policy{
		Analyzer:     analyzer,
		DAG:          dag,
		CPUStructure: cpuStructure,
		Rules:        DefaultRules(),
	}
}
