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

// Command sketchsearch drives the sketch generation, initial-population
// sampling, and full search stages against a toy in-memory compute DAG,
// for manual exercise of the search core outside of its test suite.
//
// Usage:
//
//	sketchsearch sketches --workload matmul_bias_relu
//	sketchsearch sample --workload matmul_bias_relu --target 16
//	sketchsearch search --workload matmul_bias_relu --trials 50
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
