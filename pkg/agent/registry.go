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

	"github.com/parkpilot/parkpilot/pkg/registry"
)

// Registry holds the named agents of one system instance and implements the
// two cooperation primitives between them: handoff (synchronous delegation
// of a task, returning the target's result) and cueing (asynchronous
// priming of a target's context ahead of an anticipated handoff).
//
// A Registry is constructed explicitly and passed to whatever needs it;
// there is no process-global instance. It is populated once at startup and
// never torn down mid-run. No registry lock is held while a target agent
// executes, so an agent may block on external collaborators without
// stalling other lookups.
type Registry struct {
	agents *registry.BaseRegistry[Agent]
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	allowReplace bool
}

// WithReplace allows Register to overwrite an existing agent name instead
// of failing. Off by default: silently replacing a live agent is almost
// always a wiring mistake.
func WithReplace() RegistryOption {
	return func(o *registryOptions) {
		o.allowReplace = true
	}
}

// NewRegistry creates an empty agent registry. A nil logger falls back to
// the default slog logger.
func NewRegistry(logger *slog.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}

	var baseOpts []registry.Option
	if o.allowReplace {
		baseOpts = append(baseOpts, registry.WithReplace())
	}

	return &Registry{
		agents: registry.NewBaseRegistry[Agent](baseOpts...),
		logger: logger,
	}
}

// Register adds an agent under its own name.
func (r *Registry) Register(a Agent) error {
	if a == nil {
		return NewAgentError("Registry", "Register", "agent cannot be nil", nil)
	}
	if err := r.agents.Register(a.Name(), a); err != nil {
		return NewAgentError("Registry", "Register",
			fmt.Sprintf("failed to register agent %s", a.Name()), err)
	}
	r.logger.Debug("Registered agent", "agent", a.Name())
	return nil
}

// Get looks up an agent by name. Absence is a normal outcome.
func (r *Registry) Get(name string) (Agent, bool) {
	return r.agents.Get(name)
}

// Names returns the registered agent names in registration order.
func (r *Registry) Names() []string {
	return r.agents.Names()
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	return r.agents.Count()
}

// Handoff delegates a task from one agent to another and blocks until the
// target completes. The registry is a pure relay: it does not inspect,
// transform, or retry the payload. An unknown target yields a failed result
// tagged with the missing name, not an error. Cancelling ctx abandons the
// handoff from the caller's side; honoring the cancellation promptly is the
// target agent's responsibility.
func (r *Registry) Handoff(ctx context.Context, from, to string, task *Task) (*Result, error) {
	r.logger.Info("Handoff", "from", from, "to", to, "kind", task.Kind)

	target, ok := r.agents.Get(to)
	if !ok {
		r.logger.Warn("Handoff target not found", "from", from, "to", to)
		return NewFailedResult(task, to, ErrCodeAgentNotFound,
			fmt.Sprintf("agent %q not found", to)), nil
	}

	result, err := target.Execute(ctx, task)
	if err != nil {
		return nil, NewAgentError("Registry", "Handoff",
			fmt.Sprintf("handoff %s -> %s failed", from, to), err)
	}

	r.logger.Info("Handoff completed", "from", from, "to", to, "status", result.Status)
	return result, nil
}

// Cue merges context data into the cued agent's cue context ahead of an
// anticipated handoff. It never blocks on the cued agent's own execution
// and returns false when the cued agent does not exist.
func (r *Registry) Cue(cuer, cued string, contextData map[string]any) bool {
	target, ok := r.agents.Get(cued)
	if !ok {
		r.logger.Warn("Cued agent not found", "cuer", cuer, "cued", cued)
		return false
	}

	target.Cues().Merge(contextData)
	r.logger.Debug("Cue delivered", "cuer", cuer, "cued", cued, "keys", len(contextData))
	return true
}
