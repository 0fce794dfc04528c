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
	"fmt"

	"github.com/spf13/viper"
)

// Config is the search driver's §4.7 parameter table, loaded from a
// string-keyed map (a config file's top level, a CLI flag set, or a
// literal map in tests). Dotted keys ("EvolutionarySearch.population")
// are resolved through viper's own nested-key delimiter, matching the
// key spelling the params table uses verbatim.
type Config struct {
	// EpsGreedy is the fraction of each measurement batch drawn from the
	// random candidate pool rather than the cost-model-ranked pool.
	EpsGreedy float64

	// EvolutionaryPopulation is the initial population target sampled by
	// initpop before any evolutionary refinement.
	EvolutionaryPopulation int

	// EvolutionaryUseMeasuredRatio is the fraction of the population seeded
	// from historical best measured states once the cost model is
	// informative.
	EvolutionaryUseMeasuredRatio float64

	// EvolutionaryNumIters and EvolutionaryMutationProb are carried from
	// the original's search_policy.h even though EvolutionarySearch
	// itself is an intentional no-op (see evolutionary.go); a future
	// implementation of that seam reads them from here.
	EvolutionaryNumIters     int
	EvolutionaryMutationProb float64

	// MaxInnermostSplitFactor caps the innermost tile factor FillTileSize
	// may choose.
	MaxInnermostSplitFactor int

	// MaxVectorizeSize caps the fused vectorized extent Vectorization may
	// produce.
	MaxVectorizeSize int

	// DisableChangeComputeLocation gates off ChangeComputeLocation (C6
	// rule 2) entirely when true.
	DisableChangeComputeLocation bool

	// CPUStructure is MultiLevelTiling.cpu_structure, e.g. "SSRSRS",
	// forwarded to sketchgen.Policy.CPUStructure.
	CPUStructure string
}

// LoadConfig validates and converts params (the §4.7 string-keyed map)
// into a Config. Unknown keys are ignored, per spec.md §6. A missing or
// wrong-kind required key returns an error wrapping ErrConfiguration;
// the two EvolutionarySearch.* supplement keys default to zero when
// absent since nothing currently reads them.
func LoadConfig(params map[string]any) (Config, error) {
	v := viper.New()
	for key, value := range params {
		v.Set(key, value)
	}

	var cfg Config
	var err error

	if cfg.EpsGreedy, err = requireFloat(v, "eps_greedy"); err != nil {
		return Config{}, err
	}
	if cfg.EvolutionaryPopulation, err = requireInt(v, "EvolutionarySearch.population"); err != nil {
		return Config{}, err
	}
	if cfg.EvolutionaryUseMeasuredRatio, err = requireFloat(v, "EvolutionarySearch.use_measured_ratio"); err != nil {
		return Config{}, err
	}
	if cfg.MaxInnermostSplitFactor, err = requireInt(v, "max_innermost_split_factor"); err != nil {
		return Config{}, err
	}
	if cfg.MaxVectorizeSize, err = requireInt(v, "max_vectorize_size"); err != nil {
		return Config{}, err
	}
	if cfg.CPUStructure, err = requireString(v, "MultiLevelTiling.cpu_structure"); err != nil {
		return Config{}, err
	}

	if !v.IsSet("disable_change_compute_location") {
		return Config{}, fmt.Errorf("%w: missing required key %q", ErrConfiguration, "disable_change_compute_location")
	}
	cfg.DisableChangeComputeLocation = v.GetBool("disable_change_compute_location")

	cfg.EvolutionaryNumIters = v.GetInt("EvolutionarySearch.num_iters")
	cfg.EvolutionaryMutationProb = v.GetFloat64("EvolutionarySearch.mutation_prob")

	return cfg, nil
}

func requireFloat(v *viper.Viper, key string) (float64, error) {
	if !v.IsSet(key) {
		return 0, fmt.Errorf("%w: missing required key %q", ErrConfiguration, key)
	}
	raw := v.Get(key)
	switch raw.(type) {
	case float64, float32, int, int32, int64:
		return v.GetFloat64(key), nil
	default:
		return 0, fmt.Errorf("%w: key %q must be numeric, got %T", ErrConfiguration, key, raw)
	}
}

func requireInt(v *viper.Viper, key string) (int, error) {
	if !v.IsSet(key) {
		return 0, fmt.Errorf("%w: missing required key %q", ErrConfiguration, key)
	}
	raw := v.Get(key)
	switch raw.(type) {
	case int, int32, int64, float64, float32:
		return v.GetInt(key), nil
	default:
		return 0, fmt.Errorf("%w: key %q must be an integer, got %T", ErrConfiguration, key, raw)
	}
}

func requireString(v *viper.Viper, key string) (string, error) {
	if !v.IsSet(key) {
		return "", fmt.Errorf("%w: missing required key %q", ErrConfiguration, key)
	}
	raw := v.Get(key)
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: key %q must be a non-empty string, got %T", ErrConfiguration, key, raw)
	}
	return s, nil
}
