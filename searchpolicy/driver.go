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

// Package searchpolicy implements the search driver (C8/C9): the outer
// measure/refine loop that turns a compute DAG into a single, concrete,
// measured schedule state. It owns the one pseudorandom generator the
// spec requires be shared by every stochastic decision downstream
// (sketch pick, ε-greedy pick, and everything initpop.Sampler draws),
// the split-factorization memo's lifetime (via a single initpop.Sampler
// held for the Policy's lifetime), and the measured-states bookkeeping
// for one Search call.
package searchpolicy

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/ansor-go/sketchsearch/accessanalysis"
	"github.com/ansor-go/sketchsearch/initpop"
	"github.com/ansor-go/sketchsearch/schedule"
	"github.com/ansor-go/sketchsearch/scheduleprim"
	"github.com/ansor-go/sketchsearch/sketchgen"
)

// Policy is the search driver (§4.7). A Policy is built once per
// process and may run Search for multiple tasks; NumCores is a hardware
// fact (TVM's HardwareParams.num_cores), not one of Config's tunable
// §4.7 keys, so it is a constructor argument rather than a Config field.
type Policy struct {
	Analyzer  accessanalysis.Analyzer
	Engine    scheduleprim.Engine
	CostModel CostModel
	Config    Config
	NumCores  int
	Rand      *rand.Rand
	Logger    *zap.Logger

	// EvolutionarySearch defaults to DefaultEvolutionarySearch (the
	// preserved no-op seam); tests or a future implementation may
	// substitute a different function.
	EvolutionarySearch EvolutionarySearchFunc

	sampler *initpop.Sampler
}

// NewPolicy builds a Policy with its own seeded pseudorandom generator
// and a single long-lived initpop.Sampler, so the factorization memo
// (§9) persists across every Search call this Policy makes.
func NewPolicy(analyzer accessanalysis.Analyzer, engine scheduleprim.Engine, costModel CostModel, cfg Config, numCores int, seed int64, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	rnd := rand.New(rand.NewSource(seed))
	sampler := initpop.NewSampler(analyzer, engine, initpop.Config{
		MaxInnermostSplitFactor:      cfg.MaxInnermostSplitFactor,
		MaxVectorizeSize:             cfg.MaxVectorizeSize,
		DisableChangeComputeLocation: cfg.DisableChangeComputeLocation,
		NumCores:                     numCores,
	}, rnd)

	return &Policy{
		Analyzer:           analyzer,
		Engine:             engine,
		CostModel:          costModel,
		Config:             cfg,
		NumCores:           numCores,
		Rand:               rnd,
		Logger:             logger,
		EvolutionarySearch: DefaultEvolutionarySearch,
		sampler:            sampler,
	}
}

// Search runs the outer loop of §4.7 for task, returning the best state
// measured. When nTrials <= 1 it skips measurement entirely and returns
// the first best-states candidate from a single search round.
//
// A returned error wrapping ErrSearchSpaceExhausted or ErrEarlyStop is
// an informational termination, not a failure: the returned state is
// still the best one found before the loop stopped. Any other error is
// fatal and the returned state is the zero value.
func (p *Policy) Search(ctx context.Context, task *Task, nTrials, earlyStopping, numMeasurePerIter int, measurer Measurer) (schedule.State, error) {
	numRandom := numRandomSlots(p.Config, numMeasurePerIter)

	if nTrials <= 1 {
		bestStates, _, err := p.searchOneRound(ctx, task, numMeasurePerIter, numRandom, nil, nil)
		if err != nil {
			return schedule.State{}, err
		}
		if len(bestStates) == 0 {
			return schedule.State{}, fmt.Errorf("%w: no sketches produced for %q", ErrSearchSpaceExhausted, task.WorkloadKey)
		}
		bounded, err := p.inferBoundAll(ctx, bestStates[:1])
		if err != nil {
			return schedule.State{}, err
		}
		return bounded[0], nil
	}

	measuredSet := make(map[string]struct{})
	var measuredVector []schedule.State
	var measuredThroughputs []float64
	var lastInputs []MeasureInput
	var lastResults []MeasureResult

	var terminationErr error
	ct := 0

	for ct < nTrials {
		if len(lastInputs) > 0 {
			if err := p.CostModel.Update(lastInputs, lastResults); err != nil {
				return schedule.State{}, fmt.Errorf("searchpolicy: cost model update: %w", err)
			}
		}

		bestStates, randomStates, err := p.searchOneRound(ctx, task, numMeasurePerIter, numRandom, measuredVector, measuredThroughputs)
		if err != nil {
			return schedule.State{}, err
		}
		if bestStates, err = p.inferBoundAll(ctx, bestStates); err != nil {
			return schedule.State{}, err
		}
		if randomStates, err = p.inferBoundAll(ctx, randomStates); err != nil {
			return schedule.State{}, err
		}

		picked := pickStatesWithEpsGreedy(p.Config, bestStates, randomStates, numMeasurePerIter, nTrials-ct, measuredSet)
		if len(picked) == 0 {
			p.Logger.Info("search space exhausted",
				zap.String("workload_key", task.WorkloadKey), zap.Int("ct", ct))
			terminationErr = fmt.Errorf("%w: %q at ct=%d", ErrSearchSpaceExhausted, task.WorkloadKey, ct)
			break
		}

		inputs := make([]MeasureInput, len(picked))
		for i, s := range picked {
			inputs[i] = MeasureInput{Task: task, State: s}
		}

		results, err := measurer.Measure(ctx, task, ct, inputs)
		if err != nil {
			return schedule.State{}, fmt.Errorf("searchpolicy: measure: %w", err)
		}
		for i, r := range results {
			measuredVector = append(measuredVector, picked[i])
			measuredThroughputs = append(measuredThroughputs, r.Throughput())
		}
		ct += len(inputs)
		lastInputs, lastResults = inputs, results

		if bestCt := measurer.BestCt(task.WorkloadKey); ct-bestCt > earlyStopping {
			p.Logger.Info("early stop",
				zap.String("workload_key", task.WorkloadKey), zap.Int("ct", ct), zap.Int("best_ct", bestCt))
			terminationErr = fmt.Errorf("%w: %q stalled since ct=%d", ErrEarlyStop, task.WorkloadKey, bestCt)
			break
		}
	}

	if state, ok := measurer.BestState(task.WorkloadKey); ok {
		return state, terminationErr
	}
	if terminationErr != nil {
		return schedule.State{}, terminationErr
	}
	return schedule.State{}, fmt.Errorf("searchpolicy: %q: no state was ever measured", task.WorkloadKey)
}

// searchOneRound implements §4.7 step 2: generate sketches, sample an
// initial population, and produce the best/random candidate lists for
// this round. numRandom is the ε-greedy random budget computed once by
// the caller (oversampled 10× here per the original).
func (p *Policy) searchOneRound(ctx context.Context, task *Task, numMeasurePerIter, numRandom int, measuredVector []schedule.State, measuredThroughputs []float64) (bestStates, randomStates []schedule.State, err error) {
	skPolicy := sketchgen.NewPolicy(p.Analyzer, task.DAG, p.Config.CPUStructure)
	if p.Logger.Core().Enabled(zap.DebugLevel) {
		logger := p.Logger
		skPolicy.Trace = func(ruleName string, stageID schedule.StageID, cond sketchgen.ConditionKind) {
			logger.Debug("sketch rule consulted",
				zap.String("workload_key", task.WorkloadKey),
				zap.String("rule", ruleName),
				zap.Int("stage_id", int(stageID)),
				zap.String("condition", cond.String()))
		}
	}
	sketches, err := sketchgen.GenerateSketches(skPolicy, task.Init)
	if err != nil {
		return nil, nil, fmt.Errorf("searchpolicy: generate sketches: %w", err)
	}
	if len(sketches) == 0 {
		return nil, nil, nil
	}

	informative := !IsRandomModel(p.CostModel)
	populationTarget := p.Config.EvolutionaryPopulation
	numUseMeasured := 0
	if informative {
		numUseMeasured = int(float64(p.Config.EvolutionaryPopulation)*p.Config.EvolutionaryUseMeasuredRatio + 0.5)
		if numUseMeasured > len(measuredVector) {
			numUseMeasured = len(measuredVector)
		}
		populationTarget -= numUseMeasured
		if populationTarget < 0 {
			populationTarget = 0
		}
	}

	var initPop []schedule.State
	if populationTarget > 0 {
		initPop, _, err = initpop.SampleInitPopulation(ctx, p.sampler, sketches, populationTarget)
		if err != nil {
			return nil, nil, fmt.Errorf("searchpolicy: sample init population: %w", err)
		}
	}

	if !informative {
		bestStates = randomSample(p.Rand, initPop, 3*numMeasurePerIter)
		return bestStates, nil, nil
	}

	initPop = append(initPop, pickTopByThroughput(measuredVector, measuredThroughputs, numUseMeasured)...)
	bestStates = p.EvolutionarySearch(initPop, 2*numMeasurePerIter)
	randomStates = randomSample(p.Rand, initPop, 10*numRandom)
	return bestStates, randomStates, nil
}

// inferBoundAll calls Engine.InferBound on every state, stopping at the
// first error (§4.7 step 3 treats both lists as a single infer_bound
// call; this package's Engine facade is per-state, so the behavior is
// reproduced as a loop).
func (p *Policy) inferBoundAll(ctx context.Context, states []schedule.State) ([]schedule.State, error) {
	if len(states) == 0 {
		return states, nil
	}
	out := make([]schedule.State, len(states))
	for i, s := range states {
		bounded, err := p.Engine.InferBound(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("searchpolicy: infer_bound: %w", err)
		}
		out[i] = bounded
	}
	return out, nil
}

// randomSample returns up to n states drawn without replacement from
// pop, via a partial Fisher-Yates shuffle of a copy so pop itself is
// never mutated.
func randomSample(rnd *rand.Rand, pop []schedule.State, n int) []schedule.State {
	if n <= 0 || len(pop) == 0 {
		return nil
	}
	if n > len(pop) {
		n = len(pop)
	}
	shuffled := append([]schedule.State(nil), pop...)
	for i := 0; i < n; i++ {
		j := i + rnd.Intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n]
}

// pickTopByThroughput returns the n states with the highest recorded
// throughput, without mutating states or throughputs.
func pickTopByThroughput(states []schedule.State, throughputs []float64, n int) []schedule.State {
	if n <= 0 || len(states) == 0 {
		return nil
	}
	if n > len(states) {
		n = len(states)
	}
	idx := make([]int, len(states))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return throughputs[idx[a]] > throughputs[idx[b]] })

	out := make([]schedule.State, n)
	for i := 0; i < n; i++ {
		out[i] = states[idx[i]]
	}
	return out
}
