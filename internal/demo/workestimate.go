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

// workEstimate is a toy proxy for a state's execution cost: the product
// of every non-inlined stage's iterator extents, discounted for any
// iterator annotated parallel or vectorize. It has no claim to being a
// real performance model — CostModel.Predict and the simulated Measurer
// both use it only so the demo facades have something state-dependent
// to report.
func workEstimate(state schedule.State) float64 {
	total := 1.0
	parallelism := 1.0
	vectorization := 1.0

	for _, st := range state.Stages {
		if st.ComputeAt.Kind == schedule.ComputeLocationInlined {
			continue
		}
		for _, it := range st.Iters {
			extent := it.Extent
			if extent <= 0 {
				extent = 1
			}
			total *= float64(extent)
			switch it.Annotation {
			case schedule.AnnotationParallel:
				parallelism *= float64(min(extent, 8))
			case schedule.AnnotationVectorize:
				vectorization *= float64(min(extent, 16))
			}
		}
	}
	return total / (parallelism * vectorization)
}
