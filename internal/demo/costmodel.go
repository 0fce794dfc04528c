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

import (
	"github.com/ansor-go/sketchsearch/schedule"
	"github.com/ansor-go/sketchsearch/searchpolicy"
)

// CostModel is an in-memory reference searchpolicy.CostModel. In
// heuristic mode it scores states by the inverse of workEstimate; in
// random mode (the default TVM search policy falls back to when no
// learned model is available yet) it reports itself as the random
// model via IsRandomModel, so searchpolicy.Policy routes around the
// historical-state-injection path that assumes an informative model.
type CostModel struct {
	heuristic bool
}

// NewRandomCostModel returns a CostModel that identifies itself as the
// random model.
func NewRandomCostModel() *CostModel { return &CostModel{heuristic: false} }

// NewHeuristicCostModel returns a CostModel that scores states by the
// toy workEstimate proxy.
func NewHeuristicCostModel() *CostModel { return &CostModel{heuristic: true} }

// Update is a no-op: this reference model's scoring function is fixed,
// not learned from measurements.
func (m *CostModel) Update([]searchpolicy.MeasureInput, []searchpolicy.MeasureResult) error {
	return nil
}

func (m *CostModel) Predict(_ *searchpolicy.Task, states []schedule.State) ([]float64, error) {
	scores := make([]float64, len(states))
	for i, s := range states {
		scores[i] = 1 / workEstimate(s)
	}
	return scores, nil
}

// PredictStages has no per-stage breakdown to offer.
func (m *CostModel) PredictStages(*searchpolicy.Task, []schedule.State) ([][]float64, [][]float64, error) {
	return nil, nil, searchpolicy.ErrPredictStagesUnsupported
}

func (m *CostModel) IsRandomModel() bool { return !m.heuristic }
