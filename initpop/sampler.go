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
	"errors"
	"fmt"
	"time"

	"github.com/ansor-go/sketchsearch/schedule"
)

// Stats reports how an init-population sampling run went, for the search
// driver's logging.
type Stats struct {
	FailCount int
	Elapsed   time.Duration
}

// SampleInitPopulation repeatedly picks a sketch uniformly at random and
// runs s against it, collecting every sketch the rules could complete
// until target concrete states are produced or the 50% acceptance floor
// (failCt reaching target) is hit. errInvalidInit from a single attempt
// is never surfaced — it is the expected signal to resample.
func SampleInitPopulation(ctx context.Context, s *Sampler, sketches []schedule.State, target int) ([]schedule.State, Stats, error) {
	if len(sketches) == 0 {
		return nil, Stats{}, fmt.Errorf("initpop: no sketches to sample from")
	}
	start := time.Now()

	out := make([]schedule.State, 0, target)
	failCt := 0
	for len(out) < target && failCt < target {
		sketch := sketches[s.Rand.Intn(len(sketches))]
		state, err := s.Sample(ctx, sketch)
		if err != nil {
			if errors.Is(err, errInvalidInit) {
				failCt++
				continue
			}
			return nil, Stats{}, err
		}
		out = append(out, state)
	}

	return out, Stats{FailCount: failCt, Elapsed: time.Since(start)}, nil
}
