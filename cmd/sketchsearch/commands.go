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
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ansor-go/sketchsearch/internal/demo"
)

var (
	workloadName string
	cpuStructure string
	numCores     int
	seed         int64
	verbose      bool

	rootCmd = &cobra.Command{
		Use:   "sketchsearch",
		Short: "Drive sketch generation, population sampling, and search against a toy demo DAG",
	}

	sketchesCmd = &cobra.Command{
		Use:   "sketches",
		Short: "Generate every sketch for the selected workload and print them",
		RunE:  runSketches,
	}

	sampleTarget int
	sampleCmd    = &cobra.Command{
		Use:   "sample",
		Short: "Sample an initial population from the selected workload's sketches",
		RunE:  runSample,
	}

	trials                       int
	earlyStopping                int
	batchSize                    int
	concurrency                  int
	epsGreedy                    float64
	population                   int
	useMeasuredRatio             float64
	maxInnermostSplitFactor      int
	maxVectorizeSize             int
	disableChangeComputeLocation bool
	heuristicCostModel           bool
	searchCmd                    = &cobra.Command{
		Use:   "search",
		Short: "Run the full search loop against the selected workload",
		RunE:  runSearch,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&workloadName, "workload", "matmul_bias_relu",
		"Toy demo workload to drive ("+strings.Join(workloadNames(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&cpuStructure, "cpu-structure", "SSRSRS", "MultiLevelTiling.cpu_structure")
	rootCmd.PersistentFlags().IntVar(&numCores, "num-cores", 4, "Hardware core count fed to the sampler's parallel-degree rule")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "Pseudorandom seed")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level structured logging")

	rootCmd.AddCommand(sketchesCmd)

	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().IntVar(&sampleTarget, "target", 16, "Target population size")

	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&trials, "trials", 50, "Total measurement budget")
	searchCmd.Flags().IntVar(&earlyStopping, "early-stopping", 10, "Stop once the best state is this many measurements stale")
	searchCmd.Flags().IntVar(&batchSize, "batch", 4, "Measurements requested per round")
	searchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Simulated measurer concurrency (0 = GOMAXPROCS)")
	searchCmd.Flags().Float64Var(&epsGreedy, "eps-greedy", 0.2, "Fraction of each batch drawn from the random candidate pool")
	searchCmd.Flags().IntVar(&population, "population", 64, "EvolutionarySearch.population")
	searchCmd.Flags().Float64Var(&useMeasuredRatio, "use-measured-ratio", 0.2, "EvolutionarySearch.use_measured_ratio")
	searchCmd.Flags().IntVar(&maxInnermostSplitFactor, "max-innermost-split-factor", 64, "max_innermost_split_factor")
	searchCmd.Flags().IntVar(&maxVectorizeSize, "max-vectorize-size", 16, "max_vectorize_size")
	searchCmd.Flags().BoolVar(&disableChangeComputeLocation, "disable-change-compute-location", false, "disable_change_compute_location")
	searchCmd.Flags().BoolVar(&heuristicCostModel, "heuristic-cost-model", false, "Use the demo heuristic cost model instead of the random model")
}

func workloadNames() []string {
	names := make([]string, 0, len(demo.Workloads))
	for name := range demo.Workloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loadWorkload() (*demo.Graph, error) {
	ctor, ok := demo.Workloads[workloadName]
	if !ok {
		return nil, fmt.Errorf("unknown workload %q (available: %s)", workloadName, strings.Join(workloadNames(), ", "))
	}
	return ctor()
}
