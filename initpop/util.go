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
	"github.com/ansor-go/sketchsearch/schedule"
	"github.com/ansor-go/sketchsearch/sketchgen"
)

// isTiled reports whether stage carries the tiled marker sketchgen's
// MultiLevelTiling and MultiLevelTilingWithFusion rules leave on every
// stage they split, the sketch-time equivalent of the original's
// attribute-driven IsTiled query.
func isTiled(stage schedule.Stage) bool {
	return stage.HasAttr(sketchgen.TiledAttr)
}

// stageOf finds the stage with the given op reference, if any is present
// in state.
func stageOf(state schedule.State, op schedule.OpRef) (schedule.Stage, bool) {
	for _, st := range state.Stages {
		if st.OpRef == op {
			return st, true
		}
	}
	return schedule.Stage{}, false
}

// singleConsumer returns the one stage consuming stage's output, or false
// if it has zero or more than one.
func singleConsumer(s *Sampler, state schedule.State, stage schedule.Stage) (schedule.Stage, bool) {
	consumers := s.Analyzer.GetConsumers(state, stage.OpRef)
	if len(consumers) != 1 {
		return schedule.Stage{}, false
	}
	return stageOf(state, consumers[0])
}
