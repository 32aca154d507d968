// Copyright 2025 The Parkpilot Authors
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

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads, expands, defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError("Config", "Load",
			"failed to read config file "+path, err)
	}
	return Parse(raw)
}

// LoadOrDefault loads the file when path is non-empty, otherwise returns the
// default configuration.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Parse decodes YAML bytes into a validated configuration. Environment
// references are expanded on the decoded tree before it is bound to the
// typed model, so substitution works in any field.
func Parse(raw []byte) (*Config, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, NewConfigError("Config", "Parse", "invalid YAML", err)
	}

	expanded := ExpandEnvVarsInData(tree)
	rebound, err := yaml.Marshal(expanded)
	if err != nil {
		return nil, NewConfigError("Config", "Parse", "failed to re-encode expanded config", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(rebound, cfg); err != nil {
		return nil, NewConfigError("Config", "Parse", "config does not match schema", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
