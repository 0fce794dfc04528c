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

// Parallel fuses and marks parallel the outermost run of non-reduction,
// un-annotated iterators of every root-attached compute stage, ending the
// run at the first iterator that brings the fused parallel degree above
// 16 times the number of cores (that iterator is still fused).
type Parallel struct{}

func (*Parallel) Name() string { return "init_parallel" }

func (*Parallel) Apply(ctx context.Context, s *Sampler, state schedule.State) (schedule.State, error) {
	next := state
	for _, stage := range next.Stages {
		if stage.ComputeAt.Kind != schedule.ComputeLocationRoot || stage.IsPlaceholder() {
			continue
		}
		updated, err := annotateParallel(s, next, stage.ID, 0)
		if err != nil {
			return schedule.State{}, err
		}
		next = updated
	}
	return next, nil
}

// annotateParallel fuses and parallelizes the outermost run of iterators
// of stage starting at iterOffset that are neither reductions nor already
// annotated, stopping right after the iterator that makes the fused
// extent product exceed 16*NumCores or that anchors an attached child
// stage (such an iterator is included in the run). If nothing
// was fusible (degree stayed 1), it recurses into any stage attached at
// the blocking iterator and then past it, so a reduction or
// already-annotated iterator never stops parallelization of the stages
// nested beneath it.
func annotateParallel(s *Sampler, state schedule.State, stageID schedule.StageID, iterOffset int) (schedule.State, error) {
	next := state
	stage, ok := next.Stage(stageID)
	if !ok {
		return next, nil
	}

	var toFuse []int
	parallelDegree := 1
	iterID := iterOffset
	for ; iterID < len(stage.Iters); iterID++ {
		it := stage.Iters[iterID]
		if it.Kind == schedule.IterKindReduction || it.Annotation != schedule.AnnotationNone {
			break
		}
		toFuse = append(toFuse, iterID)
		parallelDegree *= it.Extent
		if parallelDegree > s.Config.NumCores*16 {
			break
		}
		if next.AttachMap.HasAttachedStages(schedule.AttachPoint{TargetID: stageID, IterIndex: iterID}) {
			break
		}
	}

	if parallelDegree == 1 {
		if next.AttachMap.HasAttachedStages(schedule.AttachPoint{TargetID: stageID, IterIndex: iterID}) {
			for _, attachedID := range next.AttachMap.StagesAttachedAt(schedule.AttachPoint{TargetID: stageID, IterIndex: iterID}) {
				updated, err := annotateParallel(s, next, attachedID, 0)
				if err != nil {
					return schedule.State{}, err
				}
				next = updated
			}
			updated, err := annotateParallel(s, next, stageID, iterID+1)
			if err != nil {
				return schedule.State{}, err
			}
			next = updated
		}
	}

	if len(toFuse) == 0 {
		return next, nil
	}
	if len(toFuse) == 1 {
		updated, err := next.Parallel(stageID, toFuse[0])
		if err != nil {
			return schedule.State{}, err
		}
		return updated, nil
	}
	_, fused, err := next.Fuse(stageID, toFuse)
	if err != nil {
		return schedule.State{}, err
	}
	fused, err = fused.Parallel(stageID, toFuse[0])
	if err != nil {
		return schedule.State{}, err
	}
	return fused, nil
}
