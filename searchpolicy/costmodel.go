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

package searchpolicy

import (
	"errors"

	"github.com/ansor-go/sketchsearch/schedule"
)

// ErrPredictStagesUnsupported is the fatal default for CostModel
// implementations that do not support stage-level prediction (§6:
// "predict_stages ... optional; fatal default").
var ErrPredictStagesUnsupported = errors.New("searchpolicy: predict_stages not supported by this cost model")

// CostModel is the cost-model facade (§6). Update trains on newly
// measured (input, result) pairs; Predict scores a batch of candidate
// states for a task.
type CostModel interface {
	Update(inputs []MeasureInput, results []MeasureResult) error
	Predict(task *Task, states []schedule.State) ([]float64, error)

	// PredictStages additionally returns a per-stage score breakdown
	// alongside the per-state score. Implementations that cannot produce
	// one should return ErrPredictStagesUnsupported; the driver itself
	// never calls this, it exists for debug tooling built on top.
	PredictStages(task *Task, states []schedule.State) (stateScores [][]float64, stageScores [][]float64, err error)
}

// randomDiscriminator is the marker a CostModel implements to identify
// itself as the random model, the discriminator named in §6 that
// controls whether search_one_round runs evolutionary search at all.
type randomDiscriminator interface {
	IsRandomModel() bool
}

// IsRandomModel reports whether model is the random cost model: the one
// that assigns every state the same score, used before any measurements
// exist. A CostModel that does not implement the marker interface is
// treated as informative.
func IsRandomModel(model CostModel) bool {
	r, ok := model.(randomDiscriminator)
	return ok && r.IsRandomModel()
}
