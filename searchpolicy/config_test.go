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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() map[string]any {
	return map[string]any{
		"eps_greedy":                             0.05,
		"EvolutionarySearch.population":          128,
		"EvolutionarySearch.use_measured_ratio":  0.2,
		"max_innermost_split_factor":             64,
		"max_vectorize_size":                     16,
		"disable_change_compute_location":        false,
		"MultiLevelTiling.cpu_structure":          "SSRSRS",
	}
}

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := LoadConfig(validParams())
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.EpsGreedy)
	assert.Equal(t, 128, cfg.EvolutionaryPopulation)
	assert.Equal(t, 0.2, cfg.EvolutionaryUseMeasuredRatio)
	assert.Equal(t, 64, cfg.MaxInnermostSplitFactor)
	assert.Equal(t, 16, cfg.MaxVectorizeSize)
	assert.False(t, cfg.DisableChangeComputeLocation)
	assert.Equal(t, "SSRSRS", cfg.CPUStructure)
	assert.Zero(t, cfg.EvolutionaryNumIters)
	assert.Zero(t, cfg.EvolutionaryMutationProb)
}

func TestLoadConfig_SupplementKeysCarried(t *testing.T) {
	params := validParams()
	params["EvolutionarySearch.num_iters"] = 4
	params["EvolutionarySearch.mutation_prob"] = 0.85

	cfg, err := LoadConfig(params)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.EvolutionaryNumIters)
	assert.Equal(t, 0.85, cfg.EvolutionaryMutationProb)
}

func TestLoadConfig_MissingKeyIsConfigurationError(t *testing.T) {
	for _, missing := range []string{
		"eps_greedy",
		"EvolutionarySearch.population",
		"EvolutionarySearch.use_measured_ratio",
		"max_innermost_split_factor",
		"max_vectorize_size",
		"disable_change_compute_location",
		"MultiLevelTiling.cpu_structure",
	} {
		params := validParams()
		delete(params, missing)
		_, err := LoadConfig(params)
		require.Errorf(t, err, "expected error for missing %q", missing)
		assert.Truef(t, errors.Is(err, ErrConfiguration), "missing %q: got %v", missing, err)
	}
}

func TestLoadConfig_WrongKindIsConfigurationError(t *testing.T) {
	params := validParams()
	params["max_vectorize_size"] = "sixteen"
	_, err := LoadConfig(params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestLoadConfig_UnknownKeysIgnored(t *testing.T) {
	params := validParams()
	params["totally_unknown_key"] = 42
	_, err := LoadConfig(params)
	require.NoError(t, err)
}
