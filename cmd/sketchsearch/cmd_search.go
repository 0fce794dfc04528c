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

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ansor-go/sketchsearch/internal/demo"
	"github.com/ansor-go/sketchsearch/searchpolicy"
)

func runSearch(cmd *cobra.Command, args []string) error {
	g, err := loadWorkload()
	if err != nil {
		return err
	}

	costModel := demo.NewRandomCostModel()
	if heuristicCostModel {
		costModel = demo.NewHeuristicCostModel()
	}

	cfg := searchpolicy.Config{
		EpsGreedy:                    epsGreedy,
		EvolutionaryPopulation:       population,
		EvolutionaryUseMeasuredRatio: useMeasuredRatio,
		MaxInnermostSplitFactor:      maxInnermostSplitFactor,
		MaxVectorizeSize:             maxVectorizeSize,
		DisableChangeComputeLocation: disableChangeComputeLocation,
		CPUStructure:                 cpuStructure,
	}

	policy := searchpolicy.NewPolicy(g.Analyzer(), demo.NewEngine(), costModel, cfg, numCores, seed, newLogger())
	task := &searchpolicy.Task{
		WorkloadKey: workloadName,
		Init:        g.InitialState(),
		DAG:         g.DAGView(),
	}
	measurer := demo.NewMeasurer(concurrency)

	state, err := policy.Search(cmd.Context(), task, trials, earlyStopping, batchSize, measurer)
	switch {
	case err == nil:
		fmt.Fprintf(cmd.OutOrStdout(), "search for %q completed its full trial budget\n", workloadName)
	case errors.Is(err, searchpolicy.ErrSearchSpaceExhausted), errors.Is(err, searchpolicy.ErrEarlyStop):
		fmt.Fprintf(cmd.OutOrStdout(), "search for %q stopped early: %v\n", workloadName, err)
	default:
		return fmt.Errorf("search: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "best measured state:\n%s\n", state.ToStr())
	return nil
}
