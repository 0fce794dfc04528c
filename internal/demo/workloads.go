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

package demo

import "github.com/ansor-go/sketchsearch/schedule"

// NewMatMulBiasReluWorkload returns a toy DAG: two matrix inputs feeding
// a tiled matmul, a bias add that inlines into the output, and a relu
// output. matmul's only consumer (through the inlined bias add)
// element-wise matches it, so this DAG exercises
// MultiLevelTilingWithFusion rather than the cache-write path.
func NewMatMulBiasReluWorkload() (*Graph, error) {
	return NewGraph([]OpSpec{
		{Name: "A", Placeholder: true},
		{Name: "B", Placeholder: true},
		{Name: "bias", Placeholder: true},
		{
			Name:        "matmul",
			Producers:   []string{"A", "B"},
			NeedsTiling: true,
			SimpleAccess: true,
			Iters: []IterSpec{
				{Name: "i", Kind: schedule.IterKindSpatial, Extent: 64},
				{Name: "j", Kind: schedule.IterKindSpatial, Extent: 64},
				{Name: "k", Kind: schedule.IterKindReduction, Extent: 256},
			},
		},
		{
			Name:             "biasadd",
			Producers:        []string{"matmul", "bias"},
			StrictInlineable: true,
			SimpleAccess:     true,
			Iters: []IterSpec{
				{Name: "i", Kind: schedule.IterKindSpatial, Extent: 64},
				{Name: "j", Kind: schedule.IterKindSpatial, Extent: 64},
			},
		},
		{
			Name:         "relu",
			Producers:    []string{"biasadd"},
			IsOutput:     true,
			SimpleAccess: true,
			Iters: []IterSpec{
				{Name: "i", Kind: schedule.IterKindSpatial, Extent: 64},
				{Name: "j", Kind: schedule.IterKindSpatial, Extent: 64},
			},
		},
	})
}

// NewReductionCacheWorkload returns a toy DAG whose reduction stage
// needs both rfactor and multi-level tiling, and whose only consumer
// (a per-row scale) does not element-wise match it — so AddCacheWrite
// fires instead of the fusion path, exercising the rfactor+cache-write
// combination MatMulBiasRelu does not reach.
func NewReductionCacheWorkload() (*Graph, error) {
	return NewGraph([]OpSpec{
		{Name: "X", Placeholder: true},
		{
			Name:         "rowsum",
			Producers:    []string{"X"},
			NeedsTiling:  true,
			NeedsRfactor: true,
			SimpleAccess: true,
			Iters: []IterSpec{
				{Name: "i", Kind: schedule.IterKindSpatial, Extent: 128},
				{Name: "k", Kind: schedule.IterKindReduction, Extent: 512},
			},
		},
		{
			Name:         "scale",
			Producers:    []string{"rowsum"},
			IsOutput:     true,
			SimpleAccess: true,
			Iters: []IterSpec{
				{Name: "i", Kind: schedule.IterKindSpatial, Extent: 128},
				{Name: "j", Kind: schedule.IterKindSpatial, Extent: 32},
			},
		},
	})
}

// Workloads lists every named toy workload this package offers, for
// CLI selection by name.
var Workloads = map[string]func() (*Graph, error){
	"matmul_bias_relu": NewMatMulBiasReluWorkload,
	"reduction_cache":  NewReductionCacheWorkload,
}
