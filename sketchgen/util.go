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

package sketchgen

import (
	"fmt"

	"github.com/ansor-go/sketchsearch/schedule"
)

// cacheWriteOfAttr and rfactorOfAttr mark a newly inserted stage's Attrs
// with the StageID it was derived from, so hasCacheWriteStage can find it
// without the DAGView having to expose any extra query surface.
const (
	cacheWriteOfAttr = "sketchgen.cache_write_of"
	rfactorOfAttr    = "sketchgen.rfactor_of"

	// TiledAttr marks a stage that has been through MultiLevelTiling or
	// MultiLevelTilingWithFusion. Exported so package initpop's
	// ChangeComputeLocation and Vectorization rules, which both need to
	// tell a tiled stage from an untiled one, can query it without this
	// package exposing any wider surface.
	TiledAttr = "sketchgen.tiled"
)

func hasCacheWriteStage(state schedule.State, stageID schedule.StageID) bool {
	for _, st := range state.Stages {
		if v, ok := st.Attrs[cacheWriteOfAttr]; ok {
			if id, ok := v.(schedule.StageID); ok && id == stageID {
				return true
			}
		}
	}
	return false
}

// hasSingleElementwiseMatchedConsumer reports whether stage has exactly
// one consumer and that consumer's iteration space element-wise matches
// stage's.
func hasSingleElementwiseMatchedConsumer(policy *Policy, state schedule.State, stage schedule.Stage) (schedule.StageID, bool) {
	consumers := policy.Analyzer.GetConsumers(state, stage.OpRef)
	if len(consumers) != 1 {
		return 0, false
	}
	if !policy.Analyzer.ElementWiseMatch(stage.OpRef, consumers[0]) {
		return 0, false
	}
	for _, st := range state.Stages {
		if st.OpRef == consumers[0] {
			return st.ID, true
		}
	}
	return 0, false
}

// tileStructure describes a parsed MultiLevelTiling.cpu_structure string:
// how many tile levels spatial and reduction iterators are split into,
// and the level-major interleave order.
type tileStructure struct {
	raw          string
	numSpatial   int // tile levels for spatial dims ('S' count)
	numReduction int // tile levels for reduction dims ('R' count)
}

func parseTileStructure(structure string) (tileStructure, error) {
	ts := tileStructure{raw: structure}
	for _, c := range structure {
		switch c {
		case 'S', 's':
			ts.numSpatial++
		case 'R', 'r':
			ts.numReduction++
		default:
			return tileStructure{}, fmt.Errorf("sketchgen: invalid multi-level-tiling structure char %q in %q", c, structure)
		}
	}
	if ts.numSpatial == 0 && ts.numReduction == 0 {
		return tileStructure{}, fmt.Errorf("sketchgen: empty multi-level-tiling structure")
	}
	return ts, nil
}

// doMultiLevelTiling splits every spatial iterator of stage into
// ts.numSpatial parts and every reduction iterator into ts.numReduction
// parts (as holes, for initpop.FillTileSize to resolve later), then
// reorders the stage's iterators level-major per the structure string:
// for each character position (outer to inner), every dimension of that
// kind contributes its tile at that level, in original relative-dim
// order.
func doMultiLevelTiling(state schedule.State, stage schedule.Stage, structure string) (schedule.State, tileStructure, error) {
	ts, err := parseTileStructure(structure)
	if err != nil {
		return schedule.State{}, tileStructure{}, err
	}

	type dimTiles struct {
		kind      schedule.IterKind
		positions []int // outer to inner, final iterator indices after all splits
	}
	var spatialDims, reductionDims []dimTiles

	next := state
	offset := 0
	for _, it := range stage.Iters {
		parts := ts.numReduction
		if it.Kind == schedule.IterKindSpatial {
			parts = ts.numSpatial
		}
		idx := stage.IterIndex(it.Name) + offset
		if parts <= 1 {
			positions := []int{idx}
			if it.Kind == schedule.IterKindSpatial {
				spatialDims = append(spatialDims, dimTiles{kind: it.Kind, positions: positions})
			} else {
				reductionDims = append(reductionDims, dimTiles{kind: it.Kind, positions: positions})
			}
			continue
		}
		lengths := make([]*int, parts-1) // all holes
		_, updated, err := next.Split(stage.ID, idx, lengths, false)
		if err != nil {
			return schedule.State{}, tileStructure{}, fmt.Errorf("doMultiLevelTiling: %w", err)
		}
		next = updated
		positions := make([]int, parts)
		for k := range positions {
			positions[k] = idx + k
		}
		if it.Kind == schedule.IterKindSpatial {
			spatialDims = append(spatialDims, dimTiles{kind: it.Kind, positions: positions})
		} else {
			reductionDims = append(reductionDims, dimTiles{kind: it.Kind, positions: positions})
		}
		offset += parts - 1
	}

	var newOrder []int
	sOcc, rOcc := 0, 0
	for _, c := range ts.raw {
		switch c {
		case 'S', 's':
			for _, d := range spatialDims {
				newOrder = append(newOrder, d.positions[sOcc])
			}
			sOcc++
		case 'R', 'r':
			for _, d := range reductionDims {
				newOrder = append(newOrder, d.positions[rOcc])
			}
			rOcc++
		}
	}

	final, err := next.Reorder(stage.ID, newOrder)
	if err != nil {
		return schedule.State{}, tileStructure{}, fmt.Errorf("doMultiLevelTiling: reorder: %w", err)
	}
	final = markTiled(final, stage.ID)
	return final, ts, nil
}

// markTiled records that stageID has had its iterators split into tile
// levels, so a later IsTiled-style query (package initpop's
// ChangeComputeLocation and Vectorization rules) can recognize it without
// re-deriving the fact from TransformSteps.
func markTiled(state schedule.State, stageID schedule.StageID) schedule.State {
	st, ok := state.Stage(stageID)
	if !ok {
		return state
	}
	st = st.Clone()
	if st.Attrs == nil {
		st.Attrs = map[string]any{}
	}
	st.Attrs[TiledAttr] = true
	return replaceStage(state, st)
}

// followTiling replicates the first `level` spatial tile boundaries of a
// producer's multi-level tiling onto target's first numSpatialDims
// iterators (assumed positionally matched, since this is only called
// when the producer and target are element-wise matched), and returns
// the iterator index target should be attached at.
func followTiling(state schedule.State, target schedule.StageID, numSpatialDims, level int) (schedule.State, int, error) {
	st, ok := state.Stage(target)
	if !ok {
		return schedule.State{}, 0, fmt.Errorf("sketchgen: followTiling: target stage %d not found", target)
	}
	if numSpatialDims <= 0 || numSpatialDims > len(st.Iters) {
		return schedule.State{}, 0, fmt.Errorf("sketchgen: followTiling: %d spatial dims exceeds target's %d iterators", numSpatialDims, len(st.Iters))
	}

	positions := make([][]int, numSpatialDims)
	next := state
	offset := 0
	for d := 0; d < numSpatialDims; d++ {
		idx := d + offset
		lengths := make([]*int, level) // level holes -> level+1 parts
		_, updated, err := next.Split(target, idx, lengths, false)
		if err != nil {
			return schedule.State{}, 0, fmt.Errorf("followTiling: %w", err)
		}
		next = updated
		pos := make([]int, level+1)
		for k := range pos {
			pos[k] = idx + k
		}
		positions[d] = pos
		offset += level
	}

	st, _ = next.Stage(target)
	used := numSpatialDims * (level + 1)
	newOrder := make([]int, 0, len(st.Iters))
	for lvl := 0; lvl <= level; lvl++ {
		for d := 0; d < numSpatialDims; d++ {
			newOrder = append(newOrder, positions[d][lvl])
		}
	}
	for i := used; i < len(st.Iters); i++ {
		newOrder = append(newOrder, i)
	}

	final, err := next.Reorder(target, newOrder)
	if err != nil {
		return schedule.State{}, 0, fmt.Errorf("followTiling: reorder: %w", err)
	}
	final = markTiled(final, target)
	targetIterIndex := level*numSpatialDims - 1
	return final, targetIterIndex, nil
}

// fuseAllReductionIterators reorders stage's iterators so every spatial
// iterator precedes every reduction iterator, fuses the (now contiguous)
// reduction iterators into one, and returns the updated state, the
// number of spatial iterators, and the fused iterator's index.
func fuseAllReductionIterators(state schedule.State, stage schedule.Stage) (schedule.State, int, int, error) {
	var order []int
	numSpatial := 0
	for i, it := range stage.Iters {
		if it.Kind == schedule.IterKindSpatial {
			order = append(order, i)
			numSpatial++
		}
	}
	var reductionIdx []int
	for i, it := range stage.Iters {
		if it.Kind == schedule.IterKindReduction {
			reductionIdx = append(reductionIdx, i)
			order = append(order, i)
		}
	}
	if len(reductionIdx) == 0 {
		return schedule.State{}, 0, 0, fmt.Errorf("sketchgen: fuseAllReductionIterators: stage %d has no reduction iterator", stage.ID)
	}

	next, err := state.Reorder(stage.ID, order)
	if err != nil {
		return schedule.State{}, 0, 0, fmt.Errorf("fuseAllReductionIterators: %w", err)
	}
	if len(reductionIdx) == 1 {
		return next, numSpatial, numSpatial, nil
	}
	toFuse := make([]int, len(reductionIdx))
	for i := range toFuse {
		toFuse[i] = numSpatial + i
	}
	_, fused, err := next.Fuse(stage.ID, toFuse)
	if err != nil {
		return schedule.State{}, 0, 0, fmt.Errorf("fuseAllReductionIterators: %w", err)
	}
	return fused, numSpatial, numSpatial, nil
}

// structureLevelIsSpatial reports whether the level-th (1-indexed)
// character of structure is a spatial ('S') level.
func structureLevelIsSpatial(structure string, level int) bool {
	if level < 1 || level > len(structure) {
		return false
	}
	c := structure[level-1]
	return c == 'S' || c == 's'
}
