// Copyright 2026 The Hashprobe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads operator tuning knobs from a TOML file, modeled on
// matrixone's toml.DecodeFile config-loading convention (pkg/frontend/util.go).
// Physically reading the file is the only I/O this module performs, and it
// exists purely to populate Config; everything else about configuration
// (flags, env vars, hot reload) is the out-of-scope CLI/I/O collaborator's
// job.
package config

import "github.com/BurntSushi/toml"

// Config holds the operator's recognized tuning options.
type Config struct {
	// PreferredOutputBatchSize is the target row count per output batch.
	PreferredOutputBatchSize int `toml:"preferred-output-batch-size"`
	// DynamicFilterMaxDistinct bounds how large (in distinct keys) the
	// build side may be for DynamicFilterPublisher to still consider it
	// "small" and worth pushing a filter down for.
	DynamicFilterMaxDistinct int64 `toml:"dynamic-filter-max-distinct"`
}

// Default returns the configuration the operator uses absent an explicit
// TOML file.
func Default() Config {
	return Config{
		PreferredOutputBatchSize: 1024,
		DynamicFilterMaxDistinct: 10000,
	}
}

// Load decodes a TOML config file, filling in defaults for anything it
// does not specify.
func Load(path string) (Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
