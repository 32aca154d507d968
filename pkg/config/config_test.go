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
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() must validate, got %v", err)
	}
	if len(cfg.Agents) != 4 {
		t.Errorf("len(Agents) = %d, want the 4 journey-phase stubs", len(cfg.Agents))
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  port: 9090
search:
  dedupe: true
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
	}
	if !cfg.Search.Dedupe {
		t.Error("Search.Dedupe should be true")
	}
	if cfg.Search.TopK != 5 {
		t.Errorf("Search.TopK = %d, want default 5", cfg.Search.TopK)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
	if cfg.Server.Address() != "127.0.0.1:9090" {
		t.Errorf("Address() = %q", cfg.Server.Address())
	}
}

func TestParseEnvExpansion(t *testing.T) {
	t.Setenv("PARKPILOT_PORT", "7070")
	t.Setenv("PARKPILOT_DB", "/tmp/pp.db")

	cfg, err := Parse([]byte(`
server:
  port: ${PARKPILOT_PORT}
feedback:
  database_path: ${PARKPILOT_DB}
logging:
  level: ${PARKPILOT_LEVEL:-debug}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want expanded 7070", cfg.Server.Port)
	}
	if cfg.Feedback.DatabasePath != "/tmp/pp.db" {
		t.Errorf("DatabasePath = %q", cfg.Feedback.DatabasePath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want the :- default", cfg.Logging.Level)
	}
}

func TestParseDurations(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  shutdown_timeout: 3s
search:
  source_timeout: 1500ms
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Search.SourceTimeout.Duration() != 1500*time.Millisecond {
		t.Errorf("SourceTimeout = %v, want 1.5s", cfg.Search.SourceTimeout)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero top_k", func(c *Config) { c.Search.TopK = -1 }},
		{"reserved stub name", func(c *Config) {
			c.Agents = append(c.Agents, StubAgentConfig{Name: "search"})
		}},
		{"duplicate stub name", func(c *Config) {
			c.Agents = append(c.Agents, StubAgentConfig{Name: "access"})
		}},
		{"empty stub name", func(c *Config) {
			c.Agents = append(c.Agents, StubAgentConfig{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestParseExplicitAgentsReplaceDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
stub_agents:
  - name: valet
    description: Valet drop-off
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(cfg.Agents) != 1 || cfg.Agents[0].Name != "valet" {
		t.Errorf("Agents = %+v, want only the explicit valet stub", cfg.Agents)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault(\"\") error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default", cfg.Server.Port)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "parkpilot.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8181\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault(path) error = %v", err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181", cfg.Server.Port)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parkpilot.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8181\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	stop, err := Watch(path, nil, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte("server:\n  port: 8282\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Server.Port != 8282 {
			t.Errorf("reloaded port = %d, want 8282", cfg.Server.Port)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
