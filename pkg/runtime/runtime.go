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

// Package runtime assembles a complete parking system from configuration:
// data sources, the optimizer-backed search agent, routing, the interaction
// entry point, the journey-phase stubs, and the feedback store.
package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parkpilot/parkpilot/pkg/agent"
	"github.com/parkpilot/parkpilot/pkg/config"
	"github.com/parkpilot/parkpilot/pkg/constraint"
	"github.com/parkpilot/parkpilot/pkg/datasource"
	"github.com/parkpilot/parkpilot/pkg/feedback"
	"github.com/parkpilot/parkpilot/pkg/observability"
	"github.com/parkpilot/parkpilot/pkg/profile"
)

// System is the assembled parking application. It owns the agent registry
// and the feedback store and is the single entry point the CLI and the HTTP
// server talk to.
type System struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *agent.Registry
	metrics  *observability.Metrics
	feedback *feedback.Store
}

// Options overrides pieces of the default assembly, mostly for tests and for
// swapping in live collaborators later.
type Options struct {
	Geocoder datasource.Geocoder
	Sources  []datasource.Source
	Router   datasource.Router

	// SkipFeedback leaves the feedback store closed, for runs that never
	// touch it.
	SkipFeedback bool
}

// New assembles a system from configuration. The default collaborators are
// the static Toronto reference providers.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*System, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	geocoder := opts.Geocoder
	if geocoder == nil {
		geocoder = datasource.NewStaticGeocoder()
	}
	sources := opts.Sources
	if sources == nil {
		sources = []datasource.Source{
			&datasource.StaticWebSearch{},
			&datasource.StaticAvailabilityAPI{},
		}
	}
	router := opts.Router
	if router == nil {
		router = &datasource.StaticRouter{}
	}

	var regOpts []agent.RegistryOption
	if cfg.Registry.AllowReplace {
		regOpts = append(regOpts, agent.WithReplace())
	}
	registry := agent.NewRegistry(logger, regOpts...)

	search, err := agent.NewSearchAgent(geocoder, sources, logger,
		agent.WithTopK(cfg.Search.TopK),
		agent.WithDedupe(cfg.Search.Dedupe),
		agent.WithSourceTimeout(cfg.Search.SourceTimeout.Duration()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search agent: %w", err)
	}

	routing, err := agent.NewRoutingAgent(router, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create routing agent: %w", err)
	}

	interaction, err := agent.NewInteractionAgent(registry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create interaction agent: %w", err)
	}

	agents := []agent.Agent{interaction, search, routing}
	for _, stub := range cfg.Agents {
		agents = append(agents, agent.NewStubAgent(stub.Name, stub.Description, stub.Tools))
	}
	for _, a := range agents {
		if err := registry.Register(a); err != nil {
			return nil, fmt.Errorf("failed to register agent %s: %w", a.Name(), err)
		}
	}

	sys := &System{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  observability.NewMetrics(),
	}

	if !opts.SkipFeedback {
		store, err := feedback.Open(cfg.Feedback.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open feedback store: %w", err)
		}
		sys.feedback = store
	}

	logger.Info("System assembled",
		"agents", registry.Count(),
		"sources", len(sources),
		"feedback", !opts.SkipFeedback)
	return sys, nil
}

// FindParking runs a full parking search through the interaction agent.
// An empty profileKey selects the balanced baseline.
func (s *System) FindParking(ctx context.Context, destination, profileKey string, preferences, constraints constraint.Set) (*agent.Result, error) {
	if profileKey == "" {
		profileKey = s.cfg.Search.DefaultProfile
	}

	task := agent.NewTask(agent.TaskKindFindParking, map[string]any{
		"destination": destination,
		"profile":     profileKey,
		"preferences": preferences,
		"constraints": constraints,
	})

	result, err := s.registry.Handoff(ctx, "api", "interaction", task)
	s.observeSearch(result, err)
	return result, err
}

// Navigate runs a navigation request. An empty destination falls back to the
// one cued by the latest successful search.
func (s *System) Navigate(ctx context.Context, destination string) (*agent.Result, error) {
	params := map[string]any{}
	if destination != "" {
		params["destination"] = destination
	}

	task := agent.NewTask(agent.TaskKindNavigate, params)
	result, err := s.registry.Handoff(ctx, "api", "interaction", task)
	if err == nil {
		s.metrics.HandoffsTotal.WithLabelValues("routing").Inc()
	}
	return result, err
}

// Dispatch hands an arbitrary task to a named agent. This is how the
// journey-phase stubs are reachable before they grow real behavior.
func (s *System) Dispatch(ctx context.Context, agentName string, task *agent.Task) (*agent.Result, error) {
	result, err := s.registry.Handoff(ctx, "api", agentName, task)
	if err == nil {
		s.metrics.HandoffsTotal.WithLabelValues(agentName).Inc()
	}
	return result, err
}

func (s *System) observeSearch(result *agent.Result, err error) {
	s.metrics.HandoffsTotal.WithLabelValues("search").Inc()
	switch {
	case err != nil:
		s.metrics.SearchesTotal.WithLabelValues("error").Inc()
	case result.Failed():
		s.metrics.SearchesTotal.WithLabelValues("failed").Inc()
	default:
		s.metrics.SearchesTotal.WithLabelValues("success").Inc()
		if out, ok := result.Output.(*agent.FindParkingOutput); ok && out.Search != nil {
			s.metrics.CandidatesFound.Observe(float64(out.Search.TotalFound))
		}
	}
}

// Profiles lists the selectable user profiles.
func (s *System) Profiles() []profile.Profile {
	return profile.List()
}

// Registry exposes the agent registry.
func (s *System) Registry() *agent.Registry {
	return s.registry
}

// Metrics exposes the metric instruments.
func (s *System) Metrics() *observability.Metrics {
	return s.metrics
}

// Feedback exposes the feedback store; nil when assembly skipped it.
func (s *System) Feedback() *feedback.Store {
	return s.feedback
}

// Config exposes the configuration the system was assembled from.
func (s *System) Config() *config.Config {
	return s.cfg
}

// Close releases the system's resources.
func (s *System) Close() error {
	if s.feedback != nil {
		if err := s.feedback.Close(); err != nil {
			return fmt.Errorf("feedback store cleanup: %w", err)
		}
	}
	return nil
}
