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

package searchpolicy

import "github.com/ansor-go/sketchsearch/schedule"

// EvolutionarySearchFunc refines an initial population into outSize
// candidate states, presumably guided by a cost model.
//
// The original leaves this a stub with a TODO (no mutation/crossover
// implementation ships with the reference this module was grounded on).
// DefaultEvolutionarySearch preserves that seam exactly: it returns nil
// unconditionally. Config.EvolutionaryNumIters and
// Config.EvolutionaryMutationProb are carried through Policy for a
// future implementation of this seam to read; nothing in this package
// invents behavior for them.
type EvolutionarySearchFunc func(init []schedule.State, outSize int) []schedule.State

// DefaultEvolutionarySearch is the intentionally unimplemented seam. A
// Policy with no EvolutionarySearch set uses this, which means
// searchOneRound's "informative cost model" branch always has an empty
// best_states list, so pickStatesWithEpsGreedy fills every slot from
// random_states.
func DefaultEvolutionarySearch(init []schedule.State, outSize int) []schedule.State {
	return nil
}
