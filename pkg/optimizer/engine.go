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

package optimizer

import (
	"log/slog"
	"sort"

	"github.com/parkpilot/parkpilot/pkg/constraint"
	"github.com/parkpilot/parkpilot/pkg/parking"
)

// Engine ranks parking candidates under a constraint set.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an optimization engine. A nil logger falls back to the
// default slog logger.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Optimize evaluates every candidate independently, keeps only those that
// satisfy all hard constraints, annotates each survivor with its soft score,
// and returns them sorted by descending score. The sort is stable: equal
// scores keep their input order so output is deterministic. The engine does
// not truncate; bounding the result is the caller's concern.
//
// A candidate that cannot be evaluated is excluded and logged (fail-closed),
// but does not abort the batch. If the optimization stage itself fails, the
// original input is returned unfiltered together with a non-nil error so the
// caller can flag the result as degraded instead of losing all candidates.
func (e *Engine) Optimize(spots []parking.Spot, constraints constraint.Set) (ranked []parking.Spot, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Optimization stage failed, returning unranked input", "panic", r)
			ranked = append([]parking.Spot(nil), spots...)
			err = NewOptimizerError("Engine", "Optimize", "optimization stage failed", nil)
		}
	}()

	evaluated := make([]parking.Spot, 0, len(spots))
	for i := range spots {
		admissible, score, evalErr := Evaluate(&spots[i], constraints)
		if evalErr != nil {
			// Fail-closed: the candidate is dropped, the batch continues.
			e.logger.Warn("Excluding unevaluable candidate",
				"spot", spots[i].Name, "error", evalErr)
			continue
		}
		if !admissible {
			continue
		}

		spot := spots[i]
		spot.Score = score
		spot.MeetsConstraints = true
		evaluated = append(evaluated, spot)
	}

	sort.SliceStable(evaluated, func(i, j int) bool {
		return evaluated[i].Score > evaluated[j].Score
	})

	e.logger.Debug("Optimization complete",
		"candidates", len(spots), "admissible", len(evaluated))
	return evaluated, nil
}

// Dedupe collapses candidates that share a normalized name+address identity,
// keeping the first occurrence. Off by default; multiple sources reporting
// the same facility otherwise double-count in totals.
func Dedupe(spots []parking.Spot) []parking.Spot {
	seen := make(map[string]struct{}, len(spots))
	out := make([]parking.Spot, 0, len(spots))
	for _, spot := range spots {
		id := spot.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, spot)
	}
	return out
}
