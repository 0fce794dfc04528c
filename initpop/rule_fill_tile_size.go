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

// FillTileSize resolves every Split hole left by the sketch generator:
// for each undefined length, it queries the factorization memo for the
// split's (extent, num_lengths, max_innermost_split_factor) and picks one
// scheme uniformly at random.
type FillTileSize struct{}

func (*FillTileSize) Name() string { return "init_fill_tile_size" }

func (*FillTileSize) Apply(ctx context.Context, s *Sampler, state schedule.State) (schedule.State, error) {
	next := state
	for i, step := range next.TransformSteps {
		split, ok := step.(schedule.Split)
		if !ok || !split.HasHole() {
			continue
		}
		schemes := s.memo.schemesFor(split.Extent, len(split.Lengths), s.Config.MaxInnermostSplitFactor)
		if len(schemes) == 0 {
			return schedule.State{}, errInvalidInit
		}
		choice := schemes[s.Rand.Intn(len(schemes))]
		updated, err := next.ResolveSplitHole(i, choice)
		if err != nil {
			return schedule.State{}, err
		}
		next = updated
	}
	return next, nil
}
