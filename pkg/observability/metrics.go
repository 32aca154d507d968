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

// Package observability exposes the Prometheus metrics of the parking
// system.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the process metric registry and the instruments the system
// records into.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec

	SearchesTotal    *prometheus.CounterVec
	HandoffsTotal    *prometheus.CounterVec
	CandidatesFound  prometheus.Histogram
	FeedbackReceived prometheus.Counter
}

// NewMetrics creates and registers the parkpilot instruments on a fresh
// registry, together with the standard Go and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parkpilot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parkpilot_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parkpilot_searches_total",
			Help: "Total parking searches by outcome",
		}, []string{"status"}),
		HandoffsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parkpilot_handoffs_total",
			Help: "Total agent handoffs by target",
		}, []string{"target"}),
		CandidatesFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "parkpilot_search_candidates",
			Help:    "Candidates gathered per search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		FeedbackReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parkpilot_feedback_received_total",
			Help: "Total feedback records accepted",
		}),
	}

	registry.MustRegister(
		m.RequestDuration,
		m.RequestsTotal,
		m.SearchesTotal,
		m.HandoffsTotal,
		m.CandidatesFound,
		m.FeedbackReceived,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusWriter captures the response status for instrumentation.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware instruments every request with duration and count, labeled by
// the route pattern passed by the router.
func (m *Metrics) Middleware(pattern func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(sw, r)

			path := r.URL.Path
			if pattern != nil {
				if p := pattern(r); p != "" {
					path = p
				}
			}
			status := strconv.Itoa(sw.status)
			m.RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			m.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}
