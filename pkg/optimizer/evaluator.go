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

// Package optimizer implements multi-criteria constrained optimization of
// parking candidates: hard-constraint admissibility gating plus weighted
// soft-constraint scoring and stable ranking.
package optimizer

import (
	"fmt"
	"math"
	"time"

	"github.com/parkpilot/parkpilot/pkg/constraint"
	"github.com/parkpilot/parkpilot/pkg/parking"
)

// Reference values the soft scoring terms are normalized against.
const (
	priceCeiling    = 10.0  // price per half-hour above which the price term is zero
	ratingCeiling   = 5.0   // maximum rating
	distanceCeiling = 500.0 // walking distance in meters above which the distance term is zero
)

// OptimizerError represents an error in the optimization system.
type OptimizerError struct {
	Component string
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *OptimizerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Operation, e.Message)
}

func (e *OptimizerError) Unwrap() error {
	return e.Err
}

// NewOptimizerError creates a new optimizer error.
func NewOptimizerError(component, operation, message string, err error) *OptimizerError {
	return &OptimizerError{
		Component: component,
		Operation: operation,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// Evaluate checks one candidate against a constraint set. It returns whether
// every applicable hard constraint is satisfied and the soft-constraint
// score in [0, 1]. The two are independent: a score is computed even for an
// inadmissible candidate, but callers must not let it influence ranking.
//
// An error marks the candidate as unevaluable (malformed fields); callers
// are expected to treat that as inadmissible with score 0 (fail-closed).
func Evaluate(spot *parking.Spot, constraints constraint.Set) (bool, float64, error) {
	if spot == nil {
		return false, 0, NewOptimizerError("Evaluator", "Evaluate", "spot cannot be nil", nil)
	}
	if math.IsNaN(spot.PricePerHalfHour) || math.IsNaN(spot.Rating) {
		return false, 0, NewOptimizerError("Evaluator", "Evaluate",
			fmt.Sprintf("spot %q has non-finite fields", spot.Name), nil)
	}

	admissible := true

	// Hard constraints. Each gates independently; order is irrelevant.
	if constraints.EVCharging == constraint.Required && !spot.EVCharging {
		admissible = false
	}
	if constraints.Accessibility == constraint.Required && !spot.Accessible {
		admissible = false
	}
	if constraints.MaxPrice != nil && spot.PricePerHalfHour > *constraints.MaxPrice {
		admissible = false
	}
	if constraints.MaxWalkingDistance != nil && spot.WalkingDistanceOrInf() > *constraints.MaxWalkingDistance {
		admissible = false
	}

	// Soft constraints. Additive, each term capped at its own weight.
	score := 0.0

	if constraints.PricePriority == constraint.PriorityHigh {
		score += clamp01((priceCeiling-spot.PricePerHalfHour)/priceCeiling) * constraint.PriceWeight
	}
	if constraints.RatingPriority == constraint.PriorityHigh {
		score += clamp01(spot.Rating/ratingCeiling) * constraint.RatingWeight
	}
	if constraints.DistancePriority == constraint.PriorityHigh {
		d := spot.WalkingDistanceOrInf()
		score += clamp01((distanceCeiling-d)/distanceCeiling) * constraint.DistanceWeight
	}

	return admissible, math.Min(score, 1.0), nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
