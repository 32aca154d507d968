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

// Package config defines the parkpilot configuration model and its YAML
// loader. Values support ${VAR} and ${VAR:-default} environment expansion,
// and .env files are folded into the environment before expansion.
package config

import (
	"fmt"
	"time"
)

// Reserved agent names wired by the runtime itself. Stub agents cannot
// shadow them.
var reservedAgentNames = map[string]bool{
	"interaction": true,
	"search":      true,
	"routing":     true,
}

// ConfigError represents an error in configuration handling.
type ConfigError struct {
	Component string
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Operation, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new configuration error.
func NewConfigError(component, operation, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Operation: operation,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// Config is the root configuration document.
type Config struct {
	Logging  LoggingConfig     `yaml:"logging"`
	Server   ServerConfig      `yaml:"server"`
	Search   SearchConfig      `yaml:"search"`
	Registry RegistryConfig    `yaml:"registry"`
	Feedback FeedbackConfig    `yaml:"feedback"`
	Agents   []StubAgentConfig `yaml:"stub_agents"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Address returns the host:port listen address.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SearchConfig controls the search agent.
type SearchConfig struct {
	TopK           int      `yaml:"top_k"`
	Dedupe         bool     `yaml:"dedupe"`
	SourceTimeout  Duration `yaml:"source_timeout"`
	DefaultProfile string   `yaml:"default_profile"`
}

// RegistryConfig controls the agent registry.
type RegistryConfig struct {
	// AllowReplace lets a later registration overwrite an earlier one
	// instead of failing.
	AllowReplace bool `yaml:"allow_replace"`
}

// FeedbackConfig controls the feedback store.
type FeedbackConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// StubAgentConfig declares a journey-phase placeholder agent.
type StubAgentConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tools       []string `yaml:"tools"`
}

// Default returns a configuration with every field at its default, including
// the standard set of journey-phase stub agents.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "simple",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Search: SearchConfig{
			TopK:          5,
			SourceTimeout: Duration(10 * time.Second),
		},
		Feedback: FeedbackConfig{
			DatabasePath: "parkpilot.db",
		},
		Agents: []StubAgentConfig{
			{
				Name:        "access",
				Description: "Handles facility entry: gates, tickets, permits",
				Tools:       []string{"gate_controller", "ticket_reader"},
			},
			{
				Name:        "micro_routing",
				Description: "Guides the vehicle to the exact spot inside the facility",
				Tools:       []string{"indoor_map", "spot_sensor"},
			},
			{
				Name:        "spot_monitoring",
				Description: "Watches the parked vehicle and the meter",
				Tools:       []string{"meter_watch", "alert_feed"},
			},
			{
				Name:        "departure",
				Description: "Handles exit and payment settlement",
				Tools:       []string{"payment_processor", "exit_gate"},
			},
		},
	}
}

// applyDefaults fills unset fields from the default configuration. Stub
// agents are all-or-nothing: an explicit list replaces the default set.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Search.TopK == 0 {
		c.Search.TopK = defaults.Search.TopK
	}
	if c.Search.SourceTimeout == 0 {
		c.Search.SourceTimeout = defaults.Search.SourceTimeout
	}
	if c.Feedback.DatabasePath == "" {
		c.Feedback.DatabasePath = defaults.Feedback.DatabasePath
	}
	if c.Agents == nil {
		c.Agents = defaults.Agents
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return NewConfigError("Config", "Validate",
			fmt.Sprintf("invalid logging level %q", c.Logging.Level), nil)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return NewConfigError("Config", "Validate",
			fmt.Sprintf("invalid server port %d", c.Server.Port), nil)
	}
	if c.Search.TopK < 1 {
		return NewConfigError("Config", "Validate",
			fmt.Sprintf("search top_k must be positive, got %d", c.Search.TopK), nil)
	}
	if c.Search.SourceTimeout <= 0 {
		return NewConfigError("Config", "Validate",
			"search source_timeout must be positive", nil)
	}

	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			return NewConfigError("Config", "Validate", "stub agent with empty name", nil)
		}
		if reservedAgentNames[a.Name] {
			return NewConfigError("Config", "Validate",
				fmt.Sprintf("stub agent name %q is reserved", a.Name), nil)
		}
		if seen[a.Name] {
			return NewConfigError("Config", "Validate",
				fmt.Sprintf("duplicate stub agent name %q", a.Name), nil)
		}
		seen[a.Name] = true
	}
	return nil
}
