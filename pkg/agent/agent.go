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
	"time"
)

// Agent is the capability every worker in the system implements. Agents are
// created once at startup, owned by the registry for the life of the
// process, and execute one task at a time per invocation. Execute must honor
// context cancellation and must return failures as tagged results rather
// than panicking across the boundary.
type Agent interface {
	Name() string
	Description() string
	Execute(ctx context.Context, task *Task) (*Result, error)

	// Cues exposes the agent's cue context so the registry can prime it
	// ahead of an anticipated handoff.
	Cues() *CueContext
}

// AgentError represents an error in the agent system.
type AgentError struct {
	Component string
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Operation, e.Message)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// NewAgentError creates a new agent error.
func NewAgentError(component, operation, message string, err error) *AgentError {
	return &AgentError{
		Component: component,
		Operation: operation,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// BaseAgent carries the identity and cue context shared by every agent
// variant. Concrete agents embed it and provide Execute.
type BaseAgent struct {
	name        string
	description string
	cues        *CueContext
}

// NewBaseAgent initializes the shared agent state.
func NewBaseAgent(name, description string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: description,
		cues:        NewCueContext(),
	}
}

func (a *BaseAgent) Name() string { return a.name }

func (a *BaseAgent) Description() string { return a.description }

func (a *BaseAgent) Cues() *CueContext { return a.cues }

// StubAgent stands in for a journey phase that has no real behavior yet
// (access, micro-routing, on-spot monitoring, departure). Its tool list is
// static configuration data, not behavior; executing it acknowledges the
// task and reports the phase as not implemented.
type StubAgent struct {
	BaseAgent
	tools []string
}

// NewStubAgent creates a stub agent from static configuration.
func NewStubAgent(name, description string, tools []string) *StubAgent {
	return &StubAgent{
		BaseAgent: NewBaseAgent(name, description),
		tools:     tools,
	}
}

// Tools returns the configured tool names.
func (a *StubAgent) Tools() []string {
	out := make([]string, len(a.tools))
	copy(out, a.tools)
	return out
}

func (a *StubAgent) Execute(ctx context.Context, task *Task) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return NewResult(task, a.name, map[string]any{
		"status":      "not_implemented",
		"agent":       a.name,
		"description": a.description,
		"tools":       a.Tools(),
	}), nil
}
