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

// Package profile holds the static catalog of preconfigured user profiles.
// Each profile is a constraint-shaping template resolved by name at request
// time; the catalog is read-only for the life of the process.
package profile

import "github.com/parkpilot/parkpilot/pkg/constraint"

// Profile is a named preference template.
type Profile struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Preferences constraint.Set `json:"preferences"`
}

// BalancedKey identifies the fallback profile used when no profile is named
// or the named profile is unknown.
const BalancedKey = "balanced"

var balanced = Profile{
	Key:         BalancedKey,
	Name:        "Balanced",
	Description: "Default profile with moderate priorities across price, time and distance.",
	Preferences: constraint.Set{
		PricePriority:    constraint.PriorityMedium,
		DistancePriority: constraint.PriorityMedium,
		EVCharging:       constraint.Optional,
		Extras: map[string]string{
			"time_priority": "medium",
			"accessibility": "standard",
		},
	},
}

// catalog order is stable so listings are deterministic.
var catalogOrder = []string{
	"commuter_saver",
	"efficient_multitasker",
	"creative_wanderer",
	"independent_elder",
	"green_professional",
}

var catalog = map[string]Profile{
	"commuter_saver": {
		Key:         "commuter_saver",
		Name:        "Commuter Saver",
		Description: "Drives an EV on a tight budget. Prioritizes lowest half-hour rate and a working charger.",
		Preferences: constraint.Set{
			PricePriority: constraint.PriorityHigh,
			EVCharging:    constraint.Required,
			Extras: map[string]string{
				"walk_distance": "flexible",
				"amenities":     "irrelevant",
			},
		},
	},
	"efficient_multitasker": {
		Key:         "efficient_multitasker",
		Name:        "Efficient Multitasker",
		Description: "Values time over money. Seeks closest, top-reviewed space with valet service.",
		Preferences: constraint.Set{
			DistancePriority: constraint.PriorityHigh,
			RatingPriority:   constraint.PriorityHigh,
			Extras: map[string]string{
				"time_priority": "highest",
				"valet_service": "preferred",
				"price":         "flexible",
			},
		},
	},
	"creative_wanderer": {
		Key:         "creative_wanderer",
		Name:        "Creative Wanderer",
		Description: "Wants memorable, off-beat location in artsy, less-touristy area.",
		Preferences: constraint.Set{
			EVCharging: constraint.Optional,
			Extras: map[string]string{
				"atmosphere":    "quirky",
				"area_type":     "artsy",
				"tourist_level": "low",
				"price":         "flexible",
			},
		},
	},
	"independent_elder": {
		Key:         "independent_elder",
		Name:        "Independent Elder",
		Description: "Uses wheelchair and avoids crowds. Requires accessible ground-level space.",
		Preferences: constraint.Set{
			Accessibility: constraint.Required,
			Extras: map[string]string{
				"crowd_level":        "low",
				"ground_level":       "required",
				"wide_bays":          "required",
				"entrance_proximity": "critical",
			},
		},
	},
	"green_professional": {
		Key:         "green_professional",
		Name:        "Green Professional",
		Description: "Business traveler with electric company car. Needs reliable fast charger.",
		Preferences: constraint.Set{
			EVCharging:     constraint.Required,
			RatingPriority: constraint.PriorityHigh,
			Extras: map[string]string{
				"charging_speed": "fast",
				"reliability":    "critical",
				"location":       "central",
				"lighting":       "good",
				"price":          "mid_range",
			},
		},
	},
}

// Get looks up a profile by key.
func Get(key string) (Profile, bool) {
	p, ok := catalog[key]
	return p, ok
}

// Resolve returns the profile for key, or the balanced default when key is
// empty or unknown. The second return reports whether the named profile was
// found; an unknown name is a normal outcome, not an error.
func Resolve(key string) (Profile, bool) {
	if key == "" {
		return balanced, false
	}
	if p, ok := catalog[key]; ok {
		return p, true
	}
	return balanced, false
}

// Balanced returns the default profile.
func Balanced() Profile {
	return balanced
}

// List returns all preconfigured profiles in catalog order.
func List() []Profile {
	out := make([]Profile, 0, len(catalogOrder))
	for _, key := range catalogOrder {
		out = append(out, catalog[key])
	}
	return out
}
