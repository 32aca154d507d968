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

package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/parkpilot/parkpilot/pkg/geo"
	"github.com/parkpilot/parkpilot/pkg/parking"
)

// TorontoCityHall is the reference destination used by the static
// collaborators.
var TorontoCityHall = geo.Coordinate{Lat: 43.6532, Lng: -79.3844}

// StaticWebSearch is a canned web-search source. It recognizes Toronto
// queries and returns the reference downtown facilities; anything else
// yields an empty result, which is a normal outcome.
type StaticWebSearch struct{}

func (s *StaticWebSearch) Name() string { return "web_search" }

func (s *StaticWebSearch) Search(ctx context.Context, query string, location geo.Coordinate) ([]parking.Spot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !strings.Contains(strings.ToLower(query), "toronto") {
		return nil, nil
	}

	return []parking.Spot{
		{
			Name:             "Green P Carpark 36 (Nathan Phillips Square)",
			Address:          "110 Queen St W, Toronto",
			Coordinate:       &geo.Coordinate{Lat: 43.6517, Lng: -79.3844},
			PricePerHalfHour: 4.00,
			EVCharging:       true,
			Accessible:       true,
			Rating:           4.2,
			Amenities:        []string{"covered", "security", "24/7"},
			Source:           s.Name(),
		},
		{
			Name:             "Parking Town Hall Garage",
			Address:          "361 University Ave, Toronto",
			Coordinate:       &geo.Coordinate{Lat: 43.6532, Lng: -79.3859},
			PricePerHalfHour: 2.50,
			EVCharging:       true,
			Accessible:       true,
			Rating:           4.8,
			Amenities:        []string{"underground", "valet", "security"},
			Source:           s.Name(),
		},
		{
			Name:             "Bell Trinity Square - Lot 235",
			Address:          "483 Bay St, Toronto",
			Coordinate:       &geo.Coordinate{Lat: 43.6544, Lng: -79.3828},
			PricePerHalfHour: 1.76,
			EVCharging:       true,
			Accessible:       false,
			Rating:           4.0,
			Amenities:        []string{"outdoor", "basic"},
			Source:           s.Name(),
		},
	}, nil
}

// StaticAvailabilityAPI is a canned real-time availability source standing
// in for a parking operator API.
type StaticAvailabilityAPI struct{}

func (s *StaticAvailabilityAPI) Name() string { return "parking_api" }

func (s *StaticAvailabilityAPI) Search(ctx context.Context, query string, location geo.Coordinate) ([]parking.Spot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc := location
	return []parking.Spot{
		{
			Name:             "City Hall Parking Garage",
			Address:          "100 Queen St W, Toronto",
			Coordinate:       &loc,
			PricePerHalfHour: 3.50,
			EVCharging:       true,
			Accessible:       true,
			Rating:           3.9,
			Amenities:        []string{"real-time availability"},
			Source:           s.Name(),
		},
	}, nil
}

// StaticGeocoder resolves destinations against a fixed table. When the
// destination matches no known entry, Fallback is used if set; otherwise
// the lookup fails with ErrNotGeocodable.
type StaticGeocoder struct {
	Known    map[string]geo.Coordinate
	Fallback *geo.Coordinate
}

// NewStaticGeocoder returns a geocoder that knows the Toronto reference
// destinations and falls back to Toronto City Hall.
func NewStaticGeocoder() *StaticGeocoder {
	fallback := TorontoCityHall
	return &StaticGeocoder{
		Known: map[string]geo.Coordinate{
			"toronto city hall":      TorontoCityHall,
			"nathan phillips square": {Lat: 43.6525, Lng: -79.3835},
		},
		Fallback: &fallback,
	}
}

func (g *StaticGeocoder) Geocode(ctx context.Context, destination string) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, err
	}

	normalized := strings.ToLower(strings.TrimSpace(destination))
	if normalized == "" {
		return geo.Coordinate{}, fmt.Errorf("empty destination: %w", ErrNotGeocodable)
	}

	for name, coord := range g.Known {
		if strings.Contains(normalized, name) {
			return coord, nil
		}
	}
	if g.Fallback != nil {
		return *g.Fallback, nil
	}
	return geo.Coordinate{}, fmt.Errorf("unknown destination %q: %w", destination, ErrNotGeocodable)
}

// StaticRouter returns a canned route, standing in for a live navigation
// service.
type StaticRouter struct{}

func (r *StaticRouter) Route(ctx context.Context, destination string) (Route, error) {
	if err := ctx.Err(); err != nil {
		return Route{}, err
	}
	return Route{
		ETA:           "12 minutes",
		Distance:      "3.2 km",
		Description:   fmt.Sprintf("via University Ave to %s", destination),
		TrafficStatus: "light",
		Weather:       "clear",
	}, nil
}
