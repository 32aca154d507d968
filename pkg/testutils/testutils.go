// Package testutils provides shared helpers for parkpilot tests.
package testutils

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/parkpilot/parkpilot/pkg/geo"
	"github.com/parkpilot/parkpilot/pkg/parking"
)

// Logger returns a logger that discards everything, keeping test output
// readable.
func Logger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Context returns a context that expires with a generous test deadline and
// is cancelled on test cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Spot builds a parking spot with sensible defaults for tests that only care
// about a few fields.
func Spot(name string, price, rating float64) parking.Spot {
	return parking.Spot{
		Name:             name,
		Address:          name + " Address",
		Coordinate:       &geo.Coordinate{Lat: 43.6532, Lng: -79.3844},
		PricePerHalfHour: price,
		EVCharging:       true,
		Accessible:       true,
		Rating:           rating,
		Source:           "test",
	}
}
