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
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkpilot/parkpilot/pkg/config"
	"github.com/parkpilot/parkpilot/pkg/runtime"
	"github.com/parkpilot/parkpilot/pkg/testutils"
)

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()
	cfg := config.Default()
	cfg.Feedback.DatabasePath = filepath.Join(t.TempDir(), "feedback.db")

	sys, err := runtime.New(cfg, testutils.Logger(), runtime.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { sys.Close() })

	return NewHTTPServer(sys, testutils.Logger())
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 7, body["agents"])
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/parking/search",
		`{"destination":"Toronto City Hall","profile":"commuter_saver","constraints":{"maxPrice":5.0}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Status string `json:"status"`
		Output struct {
			Profile string `json:"profile"`
			Search  struct {
				TotalFound         int `json:"totalSpotsFound"`
				MeetingConstraints int `json:"spotsMeetingConstraints"`
			} `json:"search"`
		} `json:"output"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "completed", body.Status)
	assert.Equal(t, "commuter_saver", body.Output.Profile)
	assert.Equal(t, 4, body.Output.Search.TotalFound)
	assert.Greater(t, body.Output.Search.MeetingConstraints, 0)
}

func TestSearchEndpointRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/parking/search", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/v1/parking/search", `{"profile":"balanced"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigateEndpointUsesCuedDestination(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/parking/search",
		`{"destination":"Toronto City Hall"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/v1/parking/navigate", `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Output struct {
			Destination string `json:"destination"`
			Cued        bool   `json:"cued"`
		} `json:"output"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Toronto City Hall", body.Output.Destination)
	assert.True(t, body.Output.Cued)
}

func TestNavigateEndpointWithoutDestination(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/parking/navigate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/agents/access/tasks",
		`{"kind":"enter-facility"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/v1/agents/valet/tasks",
		`{"kind":"park"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfilesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Profiles []struct {
			Key string `json:"key"`
		} `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Profiles, 5)
}

func TestAgentsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Agents []struct {
			Name string `json:"name"`
		} `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Agents, 7)
}

func TestFeedbackEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/feedback",
		`{"destination":"Toronto City Hall","spotName":"Green P Carpark 36","rating":5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/v1/feedback",
		`{"destination":"Toronto City Hall","spotName":"Green P Carpark 36","rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/v1/feedback/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summaries []struct {
			SpotName      string  `json:"spotName"`
			Count         int     `json:"count"`
			AverageRating float64 `json:"averageRating"`
		} `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Summaries, 1)
	assert.Equal(t, "Green P Carpark 36", body.Summaries[0].SpotName)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv.Handler(), http.MethodPost, "/v1/parking/search",
		`{"destination":"Toronto City Hall"}`)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "parkpilot_searches_total")
	assert.Contains(t, rec.Body.String(), "parkpilot_http_requests_total")
}
