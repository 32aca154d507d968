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

	"github.com/parkpilot/parkpilot/pkg/constraint"
	"github.com/parkpilot/parkpilot/pkg/profile"
)

// FindParkingInput is the parameter shape of a "find-parking" task.
type FindParkingInput struct {
	Destination string         `mapstructure:"destination"`
	Profile     string         `mapstructure:"profile"`
	Preferences constraint.Set `mapstructure:"preferences"`
	Constraints constraint.Set `mapstructure:"constraints"`
}

// FindParkingOutput wraps the search result with the user-facing framing the
// entry point adds: which profile shaped the request and whether the routing
// agent was primed for the follow-up navigation.
type FindParkingOutput struct {
	Status        string        `json:"status"`
	Profile       string        `json:"profile"`
	ProfileName   string        `json:"profileName"`
	Search        *SearchOutput `json:"search"`
	RoutingPrimed bool          `json:"routingPrimed"`
}

// InteractionAgent is the system's entry point. It resolves the user's
// profile into baseline preferences, hands the search off to the search
// agent, and cues the routing agent with the destination so a follow-up
// navigate request can run without repeating it.
type InteractionAgent struct {
	BaseAgent
	registry *Registry
	logger   *slog.Logger
}

// NewInteractionAgent creates the entry-point agent bound to a registry of
// downstream workers.
func NewInteractionAgent(registry *Registry, logger *slog.Logger) (*InteractionAgent, error) {
	if registry == nil {
		return nil, NewAgentError("InteractionAgent", "NewInteractionAgent", "registry cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InteractionAgent{
		BaseAgent: NewBaseAgent("interaction",
			"Entry point that shapes requests by user profile and delegates to specialist agents"),
		registry: registry,
		logger:   logger,
	}, nil
}

func (a *InteractionAgent) Execute(ctx context.Context, task *Task) (*Result, error) {
	switch task.Kind {
	case TaskKindFindParking:
		return a.findParking(ctx, task)
	case TaskKindNavigate:
		return a.registry.Handoff(ctx, a.Name(), "routing", task)
	default:
		return NewFailedResult(task, a.Name(), ErrCodeUnknownTaskKind,
			fmt.Sprintf("unknown task kind %q", task.Kind)), nil
	}
}

func (a *InteractionAgent) findParking(ctx context.Context, task *Task) (*Result, error) {
	var input FindParkingInput
	if err := mapstructure.Decode(task.Parameters, &input); err != nil {
		return NewFailedResult(task, a.Name(), ErrCodeInvalidParameters,
			fmt.Sprintf("malformed find-parking parameters: %v", err)), nil
	}

	prof, known := profile.Resolve(input.Profile)
	if input.Profile != "" && !known {
		a.logger.Warn("Unknown profile, using balanced baseline", "profile", input.Profile)
	}

	// Profile preferences are the baseline; the request's own preferences
	// override them key-wise. Hard constraints ride separately.
	preferences := constraint.Merge(prof.Preferences, input.Preferences)

	searchTask := &Task{
		ID:   task.ID,
		Kind: TaskKindSearch,
		Parameters: map[string]any{
			"destination": input.Destination,
			"preferences": preferences,
			"constraints": input.Constraints,
		},
	}

	result, err := a.registry.Handoff(ctx, a.Name(), "search", searchTask)
	if err != nil {
		return nil, NewAgentError("InteractionAgent", "findParking",
			"search handoff failed", err)
	}
	if result.Failed() {
		return result, nil
	}

	// Prime routing for the navigation that usually follows a successful
	// search. Best effort: a missing routing agent only skips the cue.
	primed := a.registry.Cue(a.Name(), "routing", map[string]any{
		CueKeyDestination: input.Destination,
	})

	search, _ := result.Output.(*SearchOutput)
	return NewResult(task, a.Name(), &FindParkingOutput{
		Status:        "completed",
		Profile:       prof.Key,
		ProfileName:   prof.Name,
		Search:        search,
		RoutingPrimed: primed,
	}), nil
}
