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
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/ansor-go/sketchsearch/initpop"
	"github.com/ansor-go/sketchsearch/internal/demo"
	"github.com/ansor-go/sketchsearch/sketchgen"
)

func runSample(cmd *cobra.Command, args []string) error {
	g, err := loadWorkload()
	if err != nil {
		return err
	}

	skPolicy := sketchgen.NewPolicy(g.Analyzer(), g.DAGView(), cpuStructure)
	sketches, err := sketchgen.GenerateSketches(skPolicy, g.InitialState())
	if err != nil {
		return fmt.Errorf("generate sketches: %w", err)
	}

	sampler := initpop.NewSampler(g.Analyzer(), demo.NewEngine(), initpop.Config{
		MaxInnermostSplitFactor:      maxInnermostSplitFactor,
		MaxVectorizeSize:             maxVectorizeSize,
		DisableChangeComputeLocation: disableChangeComputeLocation,
		NumCores:                     numCores,
	}, rand.New(rand.NewSource(seed)))

	population, stats, err := initpop.SampleInitPopulation(cmd.Context(), sampler, sketches, sampleTarget)
	if err != nil {
		return fmt.Errorf("sample init population: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sampled %d/%d states for %q (fail_ct=%d, elapsed=%s)\n",
		len(population), sampleTarget, workloadName, stats.FailCount, stats.Elapsed)
	for i := range population {
		fmt.Fprintf(cmd.OutOrStdout(), "--- state %d ---\n%s\n", i, population[i].ToStr())
	}
	return nil
}
