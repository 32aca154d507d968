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

package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkpilot/parkpilot/pkg/agent"
	"github.com/parkpilot/parkpilot/pkg/constraint"
	"github.com/parkpilot/parkpilot/pkg/feedback"
)

// searchRequest is the body of POST /v1/parking/search.
type searchRequest struct {
	Destination string         `json:"destination"`
	Profile     string         `json:"profile,omitempty"`
	Preferences constraint.Set `json:"preferences,omitempty"`
	Constraints constraint.Set `json:"constraints,omitempty"`
}

// navigateRequest is the body of POST /v1/parking/navigate.
type navigateRequest struct {
	Destination string `json:"destination,omitempty"`
}

// dispatchRequest is the body of POST /v1/agents/{name}/tasks.
type dispatchRequest struct {
	Kind       string         `json:"kind"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeResult maps an agent result onto HTTP: completed results are 200,
// failed results keep their tagged error and get a 4xx/5xx by failure code.
func (s *HTTPServer) writeResult(w http.ResponseWriter, result *agent.Result) {
	if !result.Failed() {
		s.writeJSON(w, http.StatusOK, result)
		return
	}

	status := http.StatusInternalServerError
	switch result.Error.Code {
	case agent.ErrCodeInvalidParameters, agent.ErrCodeUnknownTaskKind:
		status = http.StatusBadRequest
	case agent.ErrCodeAgentNotFound:
		status = http.StatusNotFound
	case agent.ErrCodeGeocodeFailed:
		status = http.StatusUnprocessableEntity
	case agent.ErrCodeAllSourcesFailed, agent.ErrCodeRoutingFailed:
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, result)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"agents": s.system.Registry().Count(),
	})
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Destination == "" {
		s.writeError(w, http.StatusBadRequest, "destination is required")
		return
	}

	result, err := s.system.FindParking(r.Context(), req.Destination, req.Profile,
		req.Preferences, req.Constraints)
	if err != nil {
		s.logger.Error("Search request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeResult(w, result)
}

func (s *HTTPServer) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	result, err := s.system.Navigate(r.Context(), req.Destination)
	if err != nil {
		s.logger.Error("Navigate request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeResult(w, result)
}

func (s *HTTPServer) handleDispatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Kind == "" {
		s.writeError(w, http.StatusBadRequest, "kind is required")
		return
	}

	result, err := s.system.Dispatch(r.Context(), name, agent.NewTask(req.Kind, req.Parameters))
	if err != nil {
		s.logger.Error("Dispatch request failed", "agent", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeResult(w, result)
}

func (s *HTTPServer) handleAgents(w http.ResponseWriter, r *http.Request) {
	type agentInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	names := s.system.Registry().Names()
	agents := make([]agentInfo, 0, len(names))
	for _, name := range names {
		a, ok := s.system.Registry().Get(name)
		if !ok {
			continue
		}
		agents = append(agents, agentInfo{Name: a.Name(), Description: a.Description()})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"agents": agents})
}

func (s *HTTPServer) handleProfiles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"profiles": s.system.Profiles()})
}

func (s *HTTPServer) handleFeedbackSave(w http.ResponseWriter, r *http.Request) {
	store := s.system.Feedback()
	if store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "feedback store is disabled")
		return
	}

	var record feedback.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := store.Save(r.Context(), &record); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.system.Metrics().FeedbackReceived.Inc()
	s.writeJSON(w, http.StatusCreated, record)
}

func (s *HTTPServer) handleFeedbackSummary(w http.ResponseWriter, r *http.Request) {
	store := s.system.Feedback()
	if store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "feedback store is disabled")
		return
	}

	summaries, err := store.Summaries(r.Context())
	if err != nil {
		s.logger.Error("Feedback summary failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []feedback.Summary{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}
