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
	"fmt"

	"github.com/ansor-go/sketchsearch/schedule"
)

// graphDAG is *Graph viewed as a schedule.DAGView.
type graphDAG Graph

// NewCacheStage returns a new stage that clones producer's iterator
// shape, matching TVM's cache_write: the cache reads back exactly what
// its source stage writes. The returned stage's ID is ignored by
// schedule.State.CacheWrite, which assigns the real one.
func (g *graphDAG) NewCacheStage(producer schedule.StageID, scope string) (schedule.Stage, error) {
	src, ok := g.stageByID[producer]
	if !ok {
		return schedule.Stage{}, fmt.Errorf("demo: cache_write: unknown producer stage %d", producer)
	}
	return schedule.Stage{
		OpRef:  fmt.Sprintf("cache.%v", src.OpRef),
		OpType: schedule.OpTypeCompute,
		Iters:  append([]schedule.Iterator(nil), src.Iters...),
	}, nil
}

// NewRfactorStage returns the intermediate reduction stage produced by
// factoring producer's iterator iterIndex along factorAxis. Per this
// module's documented assumption (see sketchgen/util.go and DESIGN.md),
// the new stage carries producer's spatial iterators followed by one
// reduction iterator sized factorAxis.
func (g *graphDAG) NewRfactorStage(producer schedule.StageID, iterIndex, factorAxis int) (schedule.Stage, error) {
	src, ok := g.stageByID[producer]
	if !ok {
		return schedule.Stage{}, fmt.Errorf("demo: rfactor: unknown producer stage %d", producer)
	}
	if iterIndex < 0 || iterIndex >= len(src.Iters) {
		return schedule.Stage{}, fmt.Errorf("demo: rfactor: iter %d out of range on stage %d", iterIndex, producer)
	}

	var iters []schedule.Iterator
	for _, it := range src.Iters {
		if it.Kind == schedule.IterKindSpatial {
			iters = append(iters, it)
		}
	}
	extent := schedule.UnknownExtent
	if factorAxis > 0 {
		extent = factorAxis
	}
	iters = append(iters, schedule.Iterator{
		Name:   src.Iters[iterIndex].Name + ".rf",
		Kind:   schedule.IterKindReduction,
		Extent: extent,
	})

	return schedule.Stage{
		OpRef:  fmt.Sprintf("rfactor.%v", src.OpRef),
		OpType: schedule.OpTypeCompute,
		Iters:  iters,
	}, nil
}
