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

	"github.com/spf13/cobra"

	"github.com/ansor-go/sketchsearch/sketchgen"
)

func runSketches(cmd *cobra.Command, args []string) error {
	g, err := loadWorkload()
	if err != nil {
		return err
	}

	policy := sketchgen.NewPolicy(g.Analyzer(), g.DAGView(), cpuStructure)
	sketches, err := sketchgen.GenerateSketches(policy, g.InitialState())
	if err != nil {
		return fmt.Errorf("generate sketches: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d sketches for %q:\n", len(sketches), workloadName)
	for i := range sketches {
		fmt.Fprintf(cmd.OutOrStdout(), "--- sketch %d ---\n%s\n", i, sketches[i].ToStr())
	}
	return nil
}
