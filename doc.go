// Package parkpilot provides an agent-orchestrated parking search and
// guidance system.
//
// Parkpilot models the parking journey as a set of cooperating agents: an
// interaction agent shapes each request by user profile and delegates it, a
// search agent solves the request as a multi-criteria constrained
// optimization over candidates gathered from parallel data sources, and a
// routing agent turns the chosen destination into guidance. Agents cooperate
// through two primitives: handoff (synchronous delegation) and cueing
// (asynchronous priming of a downstream agent's context).
//
// # Quick Start
//
// Install parkpilot:
//
//	go install github.com/parkpilot/parkpilot/cmd/parkpilot@latest
//
// Search from the terminal:
//
//	parkpilot find "Toronto City Hall" --profile commuter_saver --max-price 5
//
// Or start the HTTP server:
//
//	parkpilot serve --config examples/parkpilot.yaml
//
// # Using as Go Library
//
// Assemble a system and run a search:
//
//	cfg := config.Default()
//	sys, err := runtime.New(cfg, slog.Default(), runtime.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sys.Close()
//
//	result, err := sys.FindParking(ctx, "Toronto City Hall", "balanced",
//		constraint.Set{}, constraint.Set{MaxPrice: constraint.Float(5)})
package parkpilot
