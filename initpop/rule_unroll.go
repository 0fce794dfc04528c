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
	"fmt"

	"github.com/ansor-go/sketchsearch/schedule"
)

// autoUnrollSteps are the candidate auto_unroll_max_step pragma values;
// the original hardcodes the same four.
var autoUnrollSteps = []int{0, 16, 64, 512}

// Unroll applies the always_unroll_inner and always_unroll stage
// attributes, and tags every stage with a reduction iterator with a
// random auto_unroll_max_step pragma on its outermost iterator.
type Unroll struct{}

func (*Unroll) Name() string { return "init_unroll" }

func (*Unroll) Apply(ctx context.Context, s *Sampler, state schedule.State) (schedule.State, error) {
	next := state
	for _, stage := range next.Stages {
		if stage.ComputeAt.Kind == schedule.ComputeLocationInlined || stage.IsPlaceholder() {
			continue
		}

		if innerSet := stage.AttrStringSet("always_unroll_inner"); innerSet != nil {
			visited := make(map[string]struct{})
			for n := len(stage.Iters) - 1; n >= 0; n-- {
				it := stage.Iters[n]
				root := schedule.OriginalIteratorName(it.Name)
				if _, seen := visited[root]; seen {
					// Two iterators tracing back to the same original loop
					// means we have left the innermost tile.
					break
				}
				visited[root] = struct{}{}

				if _, want := innerSet[root]; want && it.Annotation == schedule.AnnotationNone {
					updated, err := next.Unroll(stage.ID, n)
					if err != nil {
						return schedule.State{}, err
					}
					next = updated
				}
			}
		}

		if outerSet := stage.AttrStringSet("always_unroll"); outerSet != nil {
			for n := len(stage.Iters) - 1; n >= 0; n-- {
				if _, want := outerSet[stage.Iters[n].Name]; !want {
					continue
				}
				updated, err := next.Unroll(stage.ID, n)
				if err != nil {
					return schedule.State{}, err
				}
				next = updated
			}
		}

		if stage.HasReductionIter() {
			value := autoUnrollSteps[s.Rand.Intn(len(autoUnrollSteps))]
			updated, err := next.Pragma(stage.ID, 0, fmt.Sprintf("auto_unroll_max_step$%d", value))
			if err != nil {
				return schedule.State{}, err
			}
			next = updated
		}
	}
	return next, nil
}
