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

// Package constraint models the hard and soft constraints a parking search
// is solved under. Hard constraints gate admissibility; soft constraints
// contribute bounded, weighted terms to a ranking score.
package constraint

// Requirement expresses how strongly a capability is demanded.
type Requirement string

const (
	Required  Requirement = "required"
	Preferred Requirement = "preferred"
	Optional  Requirement = "optional"
)

// Priority expresses how much a soft criterion should influence ranking.
// Only PriorityHigh contributes to the score.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Scoring weights per soft constraint. Fixed by design; their sum is the
// whole score budget of 1.0.
const (
	PriceWeight    = 0.3
	RatingWeight   = 0.3
	DistanceWeight = 0.4
)

// Set is one request's merged constraint set. Zero values mean "not set":
// an unset requirement gates nothing, an unset bound is unbounded, an unset
// priority contributes nothing.
type Set struct {
	// Hard constraints.
	EVCharging         Requirement `json:"evCharging,omitempty" yaml:"ev_charging,omitempty" mapstructure:"evCharging"`
	Accessibility      Requirement `json:"accessibility,omitempty" yaml:"accessibility,omitempty" mapstructure:"accessibility"`
	MaxPrice           *float64    `json:"maxPrice,omitempty" yaml:"max_price,omitempty" mapstructure:"maxPrice"`
	MaxWalkingDistance *float64    `json:"maxWalkingDistance,omitempty" yaml:"max_walking_distance,omitempty" mapstructure:"maxWalkingDistance"`

	// Soft constraints.
	PricePriority    Priority `json:"pricePriority,omitempty" yaml:"price_priority,omitempty" mapstructure:"pricePriority"`
	RatingPriority   Priority `json:"ratingPriority,omitempty" yaml:"rating_priority,omitempty" mapstructure:"ratingPriority"`
	DistancePriority Priority `json:"distancePriority,omitempty" yaml:"distance_priority,omitempty" mapstructure:"distancePriority"`

	// Extras carries advisory preferences (crowd level, valet, atmosphere)
	// that shape no score but travel with the request for downstream agents.
	Extras map[string]string `json:"extras,omitempty" yaml:"extras,omitempty" mapstructure:"extras"`
}

// Merge combines base with override. Set fields of override win on
// collision; Extras are merged key-wise with override winning.
func Merge(base, override Set) Set {
	merged := base

	if override.EVCharging != "" {
		merged.EVCharging = override.EVCharging
	}
	if override.Accessibility != "" {
		merged.Accessibility = override.Accessibility
	}
	if override.MaxPrice != nil {
		merged.MaxPrice = override.MaxPrice
	}
	if override.MaxWalkingDistance != nil {
		merged.MaxWalkingDistance = override.MaxWalkingDistance
	}
	if override.PricePriority != "" {
		merged.PricePriority = override.PricePriority
	}
	if override.RatingPriority != "" {
		merged.RatingPriority = override.RatingPriority
	}
	if override.DistancePriority != "" {
		merged.DistancePriority = override.DistancePriority
	}

	if len(override.Extras) > 0 {
		extras := make(map[string]string, len(base.Extras)+len(override.Extras))
		for k, v := range base.Extras {
			extras[k] = v
		}
		for k, v := range override.Extras {
			extras[k] = v
		}
		merged.Extras = extras
	}

	return merged
}

// IsZero reports whether no constraint is set at all.
func (s Set) IsZero() bool {
	return s.EVCharging == "" && s.Accessibility == "" &&
		s.MaxPrice == nil && s.MaxWalkingDistance == nil &&
		s.PricePriority == "" && s.RatingPriority == "" &&
		s.DistancePriority == "" && len(s.Extras) == 0
}

// Float returns a pointer to v. Convenience for building bounds literals.
func Float(v float64) *float64 {
	return &v
}
