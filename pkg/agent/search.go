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

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"

	"github.com/parkpilot/parkpilot/pkg/constraint"
	"github.com/parkpilot/parkpilot/pkg/datasource"
	"github.com/parkpilot/parkpilot/pkg/geo"
	"github.com/parkpilot/parkpilot/pkg/optimizer"
	"github.com/parkpilot/parkpilot/pkg/parking"
)

const (
	// DefaultTopK bounds the recommendation list returned to the caller.
	DefaultTopK = 5

	// DefaultSourceTimeout bounds each data-source query.
	DefaultSourceTimeout = 10 * time.Second
)

// SearchInput is the parameter shape of a "search" task.
type SearchInput struct {
	Destination string         `mapstructure:"destination"`
	Preferences constraint.Set `mapstructure:"preferences"`
	Constraints constraint.Set `mapstructure:"constraints"`
}

// SearchOutput is the result payload of a "search" task.
type SearchOutput struct {
	Status             string         `json:"status"`
	Destination        string         `json:"destination"`
	TotalFound         int            `json:"totalSpotsFound"`
	MeetingConstraints int            `json:"spotsMeetingConstraints"`
	Recommended        []parking.Spot `json:"recommendedSpots"`
	Provenance         map[string]int `json:"sourceCounts"`
	Degraded           bool           `json:"degraded,omitempty"`
}

// SearchAgent solves one parking request as a multi-criteria constrained
// optimization: it gathers candidates from every configured data source in
// parallel, annotates walking distances, merges the request's preference and
// constraint sets, and ranks the admissible candidates.
type SearchAgent struct {
	BaseAgent
	sources       []datasource.Source
	geocoder      datasource.Geocoder
	engine        *optimizer.Engine
	topK          int
	dedupe        bool
	sourceTimeout time.Duration
	logger        *slog.Logger
}

// SearchAgentOption configures a SearchAgent.
type SearchAgentOption func(*SearchAgent)

// WithTopK bounds the recommendation list length.
func WithTopK(k int) SearchAgentOption {
	return func(a *SearchAgent) {
		if k > 0 {
			a.topK = k
		}
	}
}

// WithDedupe collapses candidates sharing a name+address identity before
// optimization. Off by default so per-source totals stay untouched.
func WithDedupe(enabled bool) SearchAgentOption {
	return func(a *SearchAgent) {
		a.dedupe = enabled
	}
}

// WithSourceTimeout bounds each data-source query.
func WithSourceTimeout(d time.Duration) SearchAgentOption {
	return func(a *SearchAgent) {
		if d > 0 {
			a.sourceTimeout = d
		}
	}
}

// NewSearchAgent creates the search agent with its injected collaborators.
func NewSearchAgent(geocoder datasource.Geocoder, sources []datasource.Source, logger *slog.Logger, opts ...SearchAgentOption) (*SearchAgent, error) {
	if geocoder == nil {
		return nil, NewAgentError("SearchAgent", "NewSearchAgent", "geocoder cannot be nil", nil)
	}
	if len(sources) == 0 {
		return nil, NewAgentError("SearchAgent", "NewSearchAgent", "at least one data source is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &SearchAgent{
		BaseAgent: NewBaseAgent("search",
			"Finds optimal parking spots as a multi-criteria constrained optimization"),
		sources:       sources,
		geocoder:      geocoder,
		engine:        optimizer.NewEngine(logger),
		topK:          DefaultTopK,
		sourceTimeout: DefaultSourceTimeout,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *SearchAgent) Execute(ctx context.Context, task *Task) (*Result, error) {
	var input SearchInput
	if err := mapstructure.Decode(task.Parameters, &input); err != nil {
		return NewFailedResult(task, a.Name(), ErrCodeInvalidParameters,
			fmt.Sprintf("malformed search parameters: %v", err)), nil
	}
	if input.Destination == "" {
		return NewFailedResult(task, a.Name(), ErrCodeInvalidParameters,
			"destination is required"), nil
	}

	// An un-geocodable destination is a hard failure, not an empty result.
	destCoord, err := a.geocoder.Geocode(ctx, input.Destination)
	if err != nil {
		a.logger.Warn("Geocoding failed", "destination", input.Destination, "error", err)
		return NewFailedResult(task, a.Name(), ErrCodeGeocodeFailed,
			fmt.Sprintf("cannot geocode destination %q: %v", input.Destination, err)), nil
	}

	spots, provenance, sourceErrs := a.gather(ctx, input.Destination, destCoord)
	if len(spots) == 0 && len(sourceErrs) == len(a.sources) {
		return NewFailedResult(task, a.Name(), ErrCodeAllSourcesFailed,
			fmt.Sprintf("all %d data sources failed", len(a.sources))), nil
	}

	// Attach walking distances where a coordinate is known. Candidates
	// without a coordinate keep an unset distance, which downstream
	// evaluation treats as infinite.
	for i := range spots {
		if spots[i].Coordinate != nil {
			d := geo.Distance(destCoord, *spots[i].Coordinate)
			spots[i].WalkingDistance = &d
		}
	}

	if a.dedupe {
		spots = optimizer.Dedupe(spots)
	}

	merged := constraint.Merge(input.Preferences, input.Constraints)

	ranked, optErr := a.engine.Optimize(spots, merged)
	degraded := optErr != nil
	if degraded {
		a.logger.Error("Optimization degraded to unranked results", "error", optErr)
	}

	recommended := ranked
	if len(recommended) > a.topK {
		recommended = recommended[:a.topK]
	}

	output := &SearchOutput{
		Status:             "success",
		Destination:        input.Destination,
		TotalFound:         len(spots),
		MeetingConstraints: len(ranked),
		Recommended:        recommended,
		Provenance:         provenance,
		Degraded:           degraded,
	}
	if degraded {
		// Distinguishable from a legitimate "no admissible candidates",
		// which is a success with an empty recommendation list.
		output.Status = "degraded"
		output.MeetingConstraints = 0
	}

	a.logger.Info("Search completed",
		"destination", input.Destination,
		"found", output.TotalFound,
		"admissible", output.MeetingConstraints,
		"degraded", degraded)

	return NewResult(task, a.Name(), output), nil
}

// gather fans out across all data sources in parallel. Each source failure
// is isolated: it is logged and counted, and the remaining sources' results
// are still used. Results are merged only after all sources return, so no
// partial interleaving is visible downstream.
func (a *SearchAgent) gather(ctx context.Context, destination string, location geo.Coordinate) ([]parking.Spot, map[string]int, map[string]error) {
	var mu sync.Mutex
	bySource := make(map[string][]parking.Spot, len(a.sources))
	sourceErrs := make(map[string]error)

	g, gctx := errgroup.WithContext(ctx)
	for _, source := range a.sources {
		g.Go(func() error {
			queryCtx, cancel := context.WithTimeout(gctx, a.sourceTimeout)
			defer cancel()

			found, err := source.Search(queryCtx, fmt.Sprintf("parking near %s", destination), location)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.logger.Warn("Data source failed", "source", source.Name(), "error", err)
				sourceErrs[source.Name()] = err
				return nil // isolated: other sources keep going
			}
			bySource[source.Name()] = found
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are collected above

	// Merge in configured source order for deterministic output.
	var spots []parking.Spot
	provenance := make(map[string]int, len(a.sources))
	for _, source := range a.sources {
		found := bySource[source.Name()]
		provenance[source.Name()] = len(found)
		spots = append(spots, found...)
	}
	return spots, provenance, sourceErrs
}
