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

package schedule

import "sort"

// AttachMap is the bidirectional index between a stage attached via
// compute_at and the target iterator it attaches to. Both directions are
// always kept in sync; every mutator of this type maintains that
// invariant itself so callers cannot desync it by editing one side only.
type AttachMap struct {
	stageToAttach        map[StageID]AttachPoint
	iterToAttachedStages map[AttachPoint]map[StageID]struct{}
}

// NewAttachMap returns an empty, ready-to-use AttachMap.
func NewAttachMap() AttachMap {
	return AttachMap{
		stageToAttach:        make(map[StageID]AttachPoint),
		iterToAttachedStages: make(map[AttachPoint]map[StageID]struct{}),
	}
}

// Clone returns a deep copy of the map.
func (m AttachMap) Clone() AttachMap {
	clone := NewAttachMap()
	for k, v := range m.stageToAttach {
		clone.stageToAttach[k] = v
	}
	for k, v := range m.iterToAttachedStages {
		set := make(map[StageID]struct{}, len(v))
		for s := range v {
			set[s] = struct{}{}
		}
		clone.iterToAttachedStages[k] = set
	}
	return clone
}

// Attach records that stage is attached at point, detaching it from any
// previous attach point first.
func (m AttachMap) Attach(stage StageID, point AttachPoint) {
	m.Detach(stage)
	m.stageToAttach[stage] = point
	set := m.iterToAttachedStages[point]
	if set == nil {
		set = make(map[StageID]struct{})
		m.iterToAttachedStages[point] = set
	}
	set[stage] = struct{}{}
}

// Detach removes any attachment recorded for stage.
func (m AttachMap) Detach(stage StageID) {
	point, ok := m.stageToAttach[stage]
	if !ok {
		return
	}
	delete(m.stageToAttach, stage)
	if set := m.iterToAttachedStages[point]; set != nil {
		delete(set, stage)
		if len(set) == 0 {
			delete(m.iterToAttachedStages, point)
		}
	}
}

// AttachPointOf returns the attach point for stage, if attached.
func (m AttachMap) AttachPointOf(stage StageID) (AttachPoint, bool) {
	p, ok := m.stageToAttach[stage]
	return p, ok
}

// StagesAttachedAt returns the stages attached at point, in a
// deterministic (ascending StageID) order.
func (m AttachMap) StagesAttachedAt(point AttachPoint) []StageID {
	set := m.iterToAttachedStages[point]
	if len(set) == 0 {
		return nil
	}
	out := make([]StageID, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasAttachedStages reports whether any stage is attached at point.
func (m AttachMap) HasAttachedStages(point AttachPoint) bool {
	return len(m.iterToAttachedStages[point]) > 0
}

// InSync reports whether the two directions agree — a testable property,
// used by invariant checks and tests rather than by production code
// (production code can only desync the map by bypassing its mutators,
// which this package never does).
func (m AttachMap) InSync() bool {
	for stage, point := range m.stageToAttach {
		if _, ok := m.iterToAttachedStages[point][stage]; !ok {
			return false
		}
	}
	for point, stages := range m.iterToAttachedStages {
		for stage := range stages {
			if p, ok := m.stageToAttach[stage]; !ok || p != point {
				return false
			}
		}
	}
	return true
}
