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

// Package datasource defines the external collaborator contracts the search
// pipeline consumes, plus static in-process implementations used for demos
// and tests. Real connectors (web search, parking availability APIs, mapping
// services) implement the same interfaces and are injected at construction.
package datasource

import (
	"context"
	"errors"

	"github.com/parkpilot/parkpilot/pkg/geo"
	"github.com/parkpilot/parkpilot/pkg/parking"
)

// ErrNotGeocodable is returned when a destination cannot be resolved to a
// coordinate.
var ErrNotGeocodable = errors.New("destination could not be geocoded")

// Source produces raw parking candidates for a query around a location.
// Implementations may return an empty slice; they must never block
// indefinitely (the caller assumes a bounded timeout).
type Source interface {
	Name() string
	Search(ctx context.Context, query string, location geo.Coordinate) ([]parking.Spot, error)
}

// Geocoder resolves free-text destinations to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, destination string) (geo.Coordinate, error)
}

// Route is the routing collaborator's answer for one destination.
type Route struct {
	ETA           string `json:"eta"`
	Distance      string `json:"distance"`
	Description   string `json:"route"`
	TrafficStatus string `json:"trafficStatus,omitempty"`
	Weather       string `json:"weather,omitempty"`
}

// Router provides turn-level guidance to a destination.
type Router interface {
	Route(ctx context.Context, destination string) (Route, error)
}
