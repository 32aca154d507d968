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

	"github.com/mitchellh/mapstructure"

	"github.com/parkpilot/parkpilot/pkg/datasource"
)

// CueKeyDestination is the cue context key carrying an anticipated
// navigation destination.
const CueKeyDestination = "destination"

// NavigateInput is the parameter shape of a "navigate" task.
type NavigateInput struct {
	Destination string `mapstructure:"destination"`
}

// NavigateOutput is the result payload of a "navigate" task.
type NavigateOutput struct {
	Destination   string `json:"destination"`
	ETA           string `json:"eta"`
	Distance      string `json:"distance"`
	Route         string `json:"route"`
	TrafficStatus string `json:"trafficStatus,omitempty"`
	Weather       string `json:"weather,omitempty"`
	Cued          bool   `json:"cued,omitempty"`
}

// RoutingAgent turns a destination into a route. When a task arrives without
// a destination it falls back to the most recently cued one, so an upstream
// agent can prime it ahead of the actual handoff.
type RoutingAgent struct {
	BaseAgent
	router datasource.Router
	logger *slog.Logger
}

// NewRoutingAgent creates the routing agent around a route provider.
func NewRoutingAgent(router datasource.Router, logger *slog.Logger) (*RoutingAgent, error) {
	if router == nil {
		return nil, NewAgentError("RoutingAgent", "NewRoutingAgent", "router cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoutingAgent{
		BaseAgent: NewBaseAgent("routing",
			"Provides turn-by-turn guidance to a parking destination"),
		router: router,
		logger: logger,
	}, nil
}

func (a *RoutingAgent) Execute(ctx context.Context, task *Task) (*Result, error) {
	var input NavigateInput
	if err := mapstructure.Decode(task.Parameters, &input); err != nil {
		return NewFailedResult(task, a.Name(), ErrCodeInvalidParameters,
			fmt.Sprintf("malformed navigate parameters: %v", err)), nil
	}

	cued := false
	if input.Destination == "" {
		if v, ok := a.Cues().Get(CueKeyDestination); ok {
			if dest, ok := v.(string); ok && dest != "" {
				input.Destination = dest
				cued = true
				a.logger.Debug("Using cued destination", "destination", dest)
			}
		}
	}
	if input.Destination == "" {
		return NewFailedResult(task, a.Name(), ErrCodeInvalidParameters,
			"destination is required and none was cued"), nil
	}

	route, err := a.router.Route(ctx, input.Destination)
	if err != nil {
		a.logger.Warn("Routing failed", "destination", input.Destination, "error", err)
		return NewFailedResult(task, a.Name(), ErrCodeRoutingFailed,
			fmt.Sprintf("cannot route to %q: %v", input.Destination, err)), nil
	}

	return NewResult(task, a.Name(), &NavigateOutput{
		Destination:   input.Destination,
		ETA:           route.ETA,
		Distance:      route.Distance,
		Route:         route.Description,
		TrafficStatus: route.TrafficStatus,
		Weather:       route.Weather,
		Cued:          cued,
	}), nil
}
