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

// Package parking defines the parking-spot candidate model shared by the
// data sources, the optimization engine, and the agents.
package parking

import (
	"math"
	"strings"

	"github.com/parkpilot/parkpilot/pkg/geo"
)

// Spot is one parking candidate under evaluation. Identity and capability
// fields come from a data source; WalkingDistance, Score and
// MeetsConstraints are derived fields attached by the search pipeline.
// A Spot is never mutated by more than one pipeline stage at a time.
type Spot struct {
	Name             string          `json:"name"`
	Address          string          `json:"address,omitempty"`
	Coordinate       *geo.Coordinate `json:"coordinates,omitempty"`
	PricePerHalfHour float64         `json:"pricePerHalfHour"`
	EVCharging       bool            `json:"evCharging"`
	Accessible       bool            `json:"accessibility"`
	Rating           float64         `json:"rating"`
	Amenities        []string        `json:"amenities,omitempty"`
	Source           string          `json:"source"`

	// Derived fields.
	WalkingDistance  *float64 `json:"walkingDistance,omitempty"`
	Score            float64  `json:"optimizationScore"`
	MeetsConstraints bool     `json:"meetsConstraints"`
}

// WalkingDistanceOrInf returns the annotated walking distance, or +Inf when
// no distance could be computed.
func (s *Spot) WalkingDistanceOrInf() float64 {
	if s.WalkingDistance == nil {
		return math.Inf(1)
	}
	return *s.WalkingDistance
}

// Identity returns a normalized name+address key. Used only when candidate
// deduplication is enabled; two sources reporting the same facility under
// the same name and address collapse into one candidate.
func (s *Spot) Identity() string {
	return strings.ToLower(strings.TrimSpace(s.Name)) + "|" +
		strings.ToLower(strings.TrimSpace(s.Address))
}
