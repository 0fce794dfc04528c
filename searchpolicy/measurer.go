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
	"context"

	"github.com/ansor-go/sketchsearch/schedule"
)

// Task identifies one compute DAG being searched: its workload key (the
// dedup/early-stop scope measurer.best_ct and best_state are keyed on),
// its initial unscheduled state, and the DAGView the state model needs
// for cache_write/rfactor stage insertion.
type Task struct {
	WorkloadKey string
	Init        schedule.State
	DAG         schedule.DAGView
}

// MeasureInput is one candidate state submitted for measurement.
type MeasureInput struct {
	Task  *Task
	State schedule.State
}

// MeasureResult is the outcome of measuring one MeasureInput: either a
// set of per-repeat timing costs, or an error recording why measurement
// failed for this input alone (a compile error, a runtime crash). A
// per-input failure never aborts the batch.
type MeasureResult struct {
	Costs []float64
	Err   error
}

// Throughput returns 1/mean(Costs), or 0 if the measurement failed or
// reported no costs.
func (r MeasureResult) Throughput() float64 {
	if r.Err != nil || len(r.Costs) == 0 {
		return 0
	}
	var sum float64
	for _, c := range r.Costs {
		sum += c
	}
	mean := sum / float64(len(r.Costs))
	if mean <= 0 {
		return 0
	}
	return 1 / mean
}

// Measurer is the measurer facade (§6). Measure is handed the current
// measurement count ct (the driver's running total before this batch)
// so an implementation can update its own best_ct/best_state bookkeeping
// at the point a new best throughput is observed, mirroring the
// original's read of the policy's running counter at measurement time.
type Measurer interface {
	Reset()
	Measure(ctx context.Context, task *Task, ct int, inputs []MeasureInput) ([]MeasureResult, error)

	// BestCt returns the ct value at which the best throughput measured
	// so far for workloadKey was recorded, or 0 if nothing has been
	// measured yet.
	BestCt(workloadKey string) int

	// BestState returns the best state measured so far for workloadKey.
	BestState(workloadKey string) (schedule.State, bool)
}
