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

// Package agent implements the worker model of the parking system: the task
// and result types exchanged between agents, the registry that routes tasks
// via handoff and primes agents via cueing, and the concrete agents for each
// phase of the parking journey.
package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task kinds understood by the entry-point agent.
const (
	TaskKindFindParking = "find-parking"
	TaskKindNavigate    = "navigate"
	TaskKindSearch      = "search"
)

// Task is one unit of work passed between agents. It is immutable once
// constructed; handoff shares it read-only with the target agent.
type Task struct {
	ID         string         `json:"taskId"`
	Kind       string         `json:"kind"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// NewTask builds a task with a fresh ID.
func NewTask(kind string, parameters map[string]any) *Task {
	return &Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		Parameters: parameters,
	}
}

// Status of a finished task.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Failure codes carried by TaskError.
const (
	ErrCodeAgentNotFound     = "agent_not_found"
	ErrCodeInvalidParameters = "invalid_parameters"
	ErrCodeGeocodeFailed     = "geocode_failed"
	ErrCodeAllSourcesFailed  = "all_sources_failed"
	ErrCodeRoutingFailed     = "routing_failed"
	ErrCodeUnknownTaskKind   = "unknown_task_kind"
	ErrCodeExecutionFailed   = "execution_failed"
)

// TaskError is a structured, tagged failure. Component failures surface as
// TaskErrors in results instead of crossing agent boundaries as faults.
type TaskError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *TaskError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Result is an agent's answer to a task.
type Result struct {
	TaskID    string     `json:"taskId"`
	Agent     string     `json:"agent"`
	Status    Status     `json:"status"`
	Output    any        `json:"output,omitempty"`
	Error     *TaskError `json:"error,omitempty"`
	StartedAt time.Time  `json:"startedAt,omitempty"`
	EndedAt   time.Time  `json:"endedAt,omitempty"`
}

// Failed reports whether the result carries a failure.
func (r *Result) Failed() bool {
	return r.Status == StatusFailed
}

// NewResult builds a completed result.
func NewResult(task *Task, agentName string, output any) *Result {
	return &Result{
		TaskID: task.ID,
		Agent:  agentName,
		Status: StatusCompleted,
		Output: output,
	}
}

// NewFailedResult builds a failed result tagged with a failure code.
func NewFailedResult(task *Task, agentName, code, message string) *Result {
	return &Result{
		TaskID: task.ID,
		Agent:  agentName,
		Status: StatusFailed,
		Error:  &TaskError{Code: code, Message: message},
	}
}

// CueContext is the per-agent priming state written by upstream cue calls
// and consumed by the agent's own execution. Merge semantics: a cue updates
// only the keys it carries, last writer wins per key. Cues carry no TTL and
// can go stale until overwritten or the process exits.
type CueContext struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewCueContext creates an empty cue context.
func NewCueContext() *CueContext {
	return &CueContext{values: make(map[string]any)}
}

// Merge folds data into the context key-wise.
func (c *CueContext) Merge(data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range data {
		c.values[k] = v
	}
}

// Get returns one cued value.
func (c *CueContext) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.values[key]
	return v, ok
}

// Snapshot returns a copy of all cued values.
func (c *CueContext) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Clear drops all cued values.
func (c *CueContext) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = make(map[string]any)
}

// Len returns the number of cued keys.
func (c *CueContext) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.values)
}
