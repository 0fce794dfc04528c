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

package initpop

import (
	"context"

	"github.com/ansor-go/sketchsearch/schedule"
)

// Vectorization fuses and marks vectorized a run of innermost spatial
// iterators of every non-inlined, non-placeholder, non-tensorized stage,
// capped at Config.MaxVectorizeSize and, for a tiled stage, at one
// iterator — past the innermost tile boundary, further iterators are not
// contiguous in memory.
type Vectorization struct{}

func (*Vectorization) Name() string { return "init_vectorization" }

func (*Vectorization) Apply(ctx context.Context, s *Sampler, state schedule.State) (schedule.State, error) {
	next := state
	for _, stage := range next.Stages {
		if stage.ComputeAt.Kind == schedule.ComputeLocationInlined || stage.IsPlaceholder() {
			continue
		}
		if hasAnnotation(stage, schedule.AnnotationTensorize) {
			continue
		}

		toUnroll := stage.AttrStringSet("always_unroll")
		tiled := isTiled(stage)
		cumLengthProd := 1
		numFusible := 0
		for numFusible < len(stage.Iters) {
			iterID := len(stage.Iters) - 1 - numFusible
			if next.AttachMap.HasAttachedStages(schedule.AttachPoint{TargetID: stage.ID, IterIndex: iterID}) {
				break
			}
			it := stage.Iters[iterID]
			if _, skip := toUnroll[it.Name]; it.Kind == schedule.IterKindReduction || it.Annotation != schedule.AnnotationNone || skip {
				break
			}
			if tiled && numFusible != 0 {
				break
			}
			cumLengthProd *= it.Extent
			if cumLengthProd > s.Config.MaxVectorizeSize {
				break
			}
			numFusible++
		}

		if numFusible > 1 {
			numFusible = 1 + s.Rand.Intn(numFusible-1)
		}

		var err error
		switch {
		case numFusible == 1:
			next, err = next.Vectorize(stage.ID, len(stage.Iters)-1)
		case numFusible > 1:
			indices := make([]int, numFusible)
			for k := range indices {
				indices[k] = len(stage.Iters) - numFusible + k
			}
			var fused schedule.State
			_, fused, err = next.Fuse(stage.ID, indices)
			if err == nil {
				fused, err = fused.Vectorize(stage.ID, indices[0])
			}
			next = fused
		}
		if err != nil {
			return schedule.State{}, err
		}
	}
	return next, nil
}

// hasAnnotation reports whether any iterator of stage carries ann.
func hasAnnotation(stage schedule.Stage, ann schedule.Annotation) bool {
	for _, it := range stage.Iters {
		if it.Annotation == ann {
			return true
		}
	}
	return false
}
