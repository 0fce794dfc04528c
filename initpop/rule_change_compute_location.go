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
	"strings"

	"github.com/ansor-go/sketchsearch/schedule"
)

// attachCandidate is one (stage, iterator) pair ChangeComputeLocation may
// attach a stage at.
type attachCandidate struct {
	stageID   schedule.StageID
	iterIndex int
}

// ChangeComputeLocation reconsiders the compute location of every stage
// the sketch generator left untouched (not tiled, not needing tiling, not
// inlined, not a placeholder): for each, it enumerates where the stage's
// single consumer could host it and randomly picks inline, root, or one
// of those attach points. Disabled entirely by
// Config.DisableChangeComputeLocation.
type ChangeComputeLocation struct{}

func (*ChangeComputeLocation) Name() string { return "init_change_compute_location" }

func (*ChangeComputeLocation) Apply(ctx context.Context, s *Sampler, state schedule.State) (schedule.State, error) {
	if s.Config.DisableChangeComputeLocation {
		return state, nil
	}

	next := state
	for idx := len(next.Stages) - 1; idx >= 0; idx-- {
		stage := next.Stages[idx]

		if stage.IsPlaceholder() || stage.ComputeAt.Kind == schedule.ComputeLocationInlined {
			continue
		}
		if isTiled(stage) || s.Analyzer.NeedsMultiLevelTiling(stage.OpRef) {
			continue
		}

		target, ok := singleConsumer(s, next, stage)
		if !ok {
			continue
		}

		candidates := changeComputeLocationCandidates(next, target)

		choice := s.Rand.Intn(len(candidates) + 2)
		var updated schedule.State
		var err error
		switch {
		case choice == 0:
			updated = next
			if !stage.HasReductionIter() {
				if _, attached := next.AttachMap.AttachPointOf(stage.ID); attached {
					updated, err = next.ComputeInline(stage.ID)
				}
			}
		case choice == 1:
			updated, err = next.ComputeRoot(stage.ID)
		default:
			c := candidates[choice-2]
			updated, err = next.ComputeAt(stage.ID, c.stageID, c.iterIndex)
		}
		if err != nil {
			return schedule.State{}, err
		}
		next = updated
	}

	bounded, err := s.Engine.InferBound(ctx, next)
	if err != nil {
		return schedule.State{}, err
	}
	return bounded, nil
}

// changeComputeLocationCandidates enumerates every (stage, iter) pair a
// stage whose single consumer is target may attach at: the run of
// target's own iterators up to (and including, if already attached) the
// first blocked one, plus — when target is itself attached inside
// another stage — the run of that stage's iterators.
func changeComputeLocationCandidates(state schedule.State, target schedule.Stage) []attachCandidate {
	toUnroll := target.AttrStringSet("always_unroll")
	targetComputeAtOther := target.ComputeAt.Kind == schedule.ComputeLocationAtIter
	targetIsTiled := isTiled(target)

	var candidates []attachCandidate
	visitedReduce := false
	for i, it := range target.Iters {
		if it.Kind == schedule.IterKindReduction {
			visitedReduce = true
			if !targetIsTiled {
				break
			}
		} else if it.Kind == schedule.IterKindSpatial {
			if visitedReduce {
				break
			}
		}

		if _, skip := toUnroll[it.Name]; skip {
			break
		}
		if it.Extent == 1 {
			continue
		}
		if targetComputeAtOther && it.Kind == schedule.IterKindSpatial && strings.HasSuffix(it.Name, ".0") {
			continue
		}

		candidates = append(candidates, attachCandidate{stageID: target.ID, iterIndex: i})
		if state.AttachMap.HasAttachedStages(schedule.AttachPoint{TargetID: target.ID, IterIndex: i}) {
			break
		}
	}

	if !targetComputeAtOther {
		return candidates
	}

	point, ok := state.AttachMap.AttachPointOf(target.ID)
	if !ok {
		return candidates
	}
	grandTarget, ok := state.Stage(point.TargetID)
	if !ok {
		return candidates
	}
	grandUnroll := grandTarget.AttrStringSet("always_unroll")

	for i, it := range grandTarget.Iters {
		if it.Kind == schedule.IterKindReduction {
			break
		}
		if state.AttachMap.HasAttachedStages(schedule.AttachPoint{TargetID: grandTarget.ID, IterIndex: i}) {
			break
		}
		if _, skip := grandUnroll[it.Name]; skip {
			break
		}
		if it.Extent == 1 {
			continue
		}
		candidates = append(candidates, attachCandidate{stageID: grandTarget.ID, iterIndex: i})
	}
	return candidates
}
