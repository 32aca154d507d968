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

// Package server exposes the parking system over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/parkpilot/parkpilot/pkg/runtime"
)

// HTTPServer serves the parkpilot REST API.
type HTTPServer struct {
	system *runtime.System
	logger *slog.Logger
	server *http.Server
}

// NewHTTPServer builds the server around an assembled system.
func NewHTTPServer(system *runtime.System, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}

	s := &HTTPServer{
		system: system,
		logger: logger,
	}

	cfg := system.Config().Server
	s.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout.Duration(),
		WriteTimeout: cfg.WriteTimeout.Duration(),
	}
	return s
}

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.system.Metrics().Middleware(func(req *http.Request) string {
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			return rctx.RoutePattern()
		}
		return ""
	}))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.system.Metrics().Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/parking/search", s.handleSearch)
		r.Post("/parking/navigate", s.handleNavigate)
		r.Post("/agents/{name}/tasks", s.handleDispatch)
		r.Get("/agents", s.handleAgents)
		r.Get("/profiles", s.handleProfiles)
		r.Post("/feedback", s.handleFeedbackSave)
		r.Get("/feedback/summary", s.handleFeedbackSummary)
	})
	return r
}

// Handler exposes the routed handler, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the context is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func (s *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		s.system.Config().Server.ShutdownTimeout.Duration())
	defer cancel()

	s.logger.Info("HTTP server shutting down")
	return s.server.Shutdown(shutdownCtx)
}
