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

package agent

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/parkpilot/parkpilot/pkg/datasource"
	"github.com/parkpilot/parkpilot/pkg/geo"
	"github.com/parkpilot/parkpilot/pkg/parking"
)

type fakeSource struct {
	name  string
	spots []parking.Spot
	err   error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, query string, location geo.Coordinate) ([]parking.Spot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.spots, nil
}

type fakeGeocoder struct {
	coord geo.Coordinate
	err   error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, destination string) (geo.Coordinate, error) {
	if f.err != nil {
		return geo.Coordinate{}, f.err
	}
	return f.coord, nil
}

type fakeRouter struct {
	err error
}

func (f *fakeRouter) Route(ctx context.Context, destination string) (datasource.Route, error) {
	if f.err != nil {
		return datasource.Route{}, f.err
	}
	return datasource.Route{
		ETA:         "5 minutes",
		Distance:    "1.1 km",
		Description: "via Bay St to " + destination,
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testCandidates(source string) []parking.Spot {
	return []parking.Spot{
		{
			Name:             "Cheap Lot",
			Address:          "1 First St",
			Coordinate:       &geo.Coordinate{Lat: 43.6530, Lng: -79.3840},
			PricePerHalfHour: 2.00,
			EVCharging:       true,
			Accessible:       true,
			Rating:           4.0,
			Source:           source,
		},
		{
			Name:             "Premium Garage",
			Address:          "2 Second St",
			Coordinate:       &geo.Coordinate{Lat: 43.6531, Lng: -79.3841},
			PricePerHalfHour: 8.00,
			EVCharging:       true,
			Accessible:       true,
			Rating:           4.9,
			Source:           source,
		},
		{
			Name:             "Mid Lot",
			Address:          "3 Third St",
			Coordinate:       &geo.Coordinate{Lat: 43.6529, Lng: -79.3842},
			PricePerHalfHour: 4.00,
			EVCharging:       false,
			Accessible:       true,
			Rating:           3.5,
			Source:           source,
		},
	}
}

func newTestSearchAgent(t *testing.T, sources []datasource.Source, opts ...SearchAgentOption) *SearchAgent {
	t.Helper()
	a, err := NewSearchAgent(&fakeGeocoder{coord: geo.Coordinate{Lat: 43.6532, Lng: -79.3844}}, sources, testLogger(), opts...)
	if err != nil {
		t.Fatalf("NewSearchAgent() error = %v", err)
	}
	return a
}

func TestRegistryHandoff(t *testing.T) {
	reg := NewRegistry(testLogger())
	search := newTestSearchAgent(t, []datasource.Source{
		&fakeSource{name: "web_search", spots: testCandidates("web_search")},
	})
	if err := reg.Register(search); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	task := NewTask(TaskKindSearch, map[string]any{"destination": "Toronto City Hall"})
	result, err := reg.Handoff(context.Background(), "interaction", "search", task)
	if err != nil {
		t.Fatalf("Handoff() error = %v", err)
	}
	if result.Failed() {
		t.Fatalf("Handoff() result failed: %v", result.Error)
	}
	if result.Agent != "search" {
		t.Errorf("result.Agent = %q, want %q", result.Agent, "search")
	}
	if result.TaskID != task.ID {
		t.Errorf("result.TaskID = %q, want %q", result.TaskID, task.ID)
	}
}

func TestRegistryHandoffUnknownTarget(t *testing.T) {
	reg := NewRegistry(testLogger())

	task := NewTask(TaskKindNavigate, nil)
	result, err := reg.Handoff(context.Background(), "interaction", "valet", task)
	if err != nil {
		t.Fatalf("Handoff() to unknown target must not error, got %v", err)
	}
	if !result.Failed() {
		t.Fatal("Handoff() to unknown target must yield a failed result")
	}
	if result.Error.Code != ErrCodeAgentNotFound {
		t.Errorf("result.Error.Code = %q, want %q", result.Error.Code, ErrCodeAgentNotFound)
	}
	if result.Agent != "valet" {
		t.Errorf("result.Agent = %q, want the missing target name", result.Agent)
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	reg := NewRegistry(testLogger())
	stub := NewStubAgent("access", "Handles facility entry", nil)
	if err := reg.Register(stub); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(NewStubAgent("access", "Duplicate", nil)); err == nil {
		t.Fatal("Register() with a duplicate name must fail by default")
	}

	replacing := NewRegistry(testLogger(), WithReplace())
	if err := replacing.Register(stub); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := replacing.Register(NewStubAgent("access", "Replacement", nil)); err != nil {
		t.Fatalf("Register() with WithReplace must overwrite, got %v", err)
	}
	got, _ := replacing.Get("access")
	if got.Description() != "Replacement" {
		t.Errorf("Get() after replace returned %q, want the replacement", got.Description())
	}
}

func TestRegistryCue(t *testing.T) {
	reg := NewRegistry(testLogger())
	routing, err := NewRoutingAgent(&fakeRouter{}, testLogger())
	if err != nil {
		t.Fatalf("NewRoutingAgent() error = %v", err)
	}
	if err := reg.Register(routing); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if ok := reg.Cue("interaction", "nobody", map[string]any{"k": "v"}); ok {
		t.Error("Cue() to an unknown agent must return false")
	}

	if ok := reg.Cue("interaction", "routing", map[string]any{
		CueKeyDestination: "CN Tower",
		"note":            "first",
	}); !ok {
		t.Fatal("Cue() to a known agent must return true")
	}

	// A later cue updates only the keys it carries.
	reg.Cue("interaction", "routing", map[string]any{CueKeyDestination: "Union Station"})

	if v, _ := routing.Cues().Get(CueKeyDestination); v != "Union Station" {
		t.Errorf("cued destination = %v, want last writer's value", v)
	}
	if v, _ := routing.Cues().Get("note"); v != "first" {
		t.Errorf("cued note = %v, want untouched earlier value", v)
	}
}

func TestSearchAgentRanksAdmissibleCandidates(t *testing.T) {
	search := newTestSearchAgent(t, []datasource.Source{
		&fakeSource{name: "web_search", spots: testCandidates("web_search")},
	})

	task := NewTask(TaskKindSearch, map[string]any{
		"destination": "Toronto City Hall",
		"constraints": map[string]any{"maxPrice": 5.0},
	})
	result, err := search.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Failed() {
		t.Fatalf("Execute() result failed: %v", result.Error)
	}

	out, ok := result.Output.(*SearchOutput)
	if !ok {
		t.Fatalf("Output type = %T, want *SearchOutput", result.Output)
	}
	if out.TotalFound != 3 {
		t.Errorf("TotalFound = %d, want 3", out.TotalFound)
	}
	if out.MeetingConstraints != 2 {
		t.Errorf("MeetingConstraints = %d, want 2 (premium garage priced out)", out.MeetingConstraints)
	}
	for i := 1; i < len(out.Recommended); i++ {
		if out.Recommended[i].Score > out.Recommended[i-1].Score {
			t.Errorf("Recommended not in descending score order at %d", i)
		}
	}
	for _, spot := range out.Recommended {
		if spot.Name == "Premium Garage" {
			t.Error("Premium Garage exceeds maxPrice and must be excluded")
		}
		if spot.WalkingDistance == nil {
			t.Errorf("spot %q missing walking distance", spot.Name)
		}
	}
	if out.Provenance["web_search"] != 3 {
		t.Errorf("Provenance[web_search] = %d, want 3", out.Provenance["web_search"])
	}
}

func TestSearchAgentSourceIsolation(t *testing.T) {
	search := newTestSearchAgent(t, []datasource.Source{
		&fakeSource{name: "broken", err: errors.New("upstream 500")},
		&fakeSource{name: "web_search", spots: testCandidates("web_search")},
	})

	task := NewTask(TaskKindSearch, map[string]any{"destination": "Toronto City Hall"})
	result, err := search.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Failed() {
		t.Fatalf("a single source failure must not fail the search: %v", result.Error)
	}

	out := result.Output.(*SearchOutput)
	if out.TotalFound != 3 {
		t.Errorf("TotalFound = %d, want the surviving source's 3", out.TotalFound)
	}
	if out.Provenance["broken"] != 0 {
		t.Errorf("Provenance[broken] = %d, want 0", out.Provenance["broken"])
	}
}

func TestSearchAgentAllSourcesFailed(t *testing.T) {
	search := newTestSearchAgent(t, []datasource.Source{
		&fakeSource{name: "a", err: errors.New("down")},
		&fakeSource{name: "b", err: errors.New("down")},
	})

	task := NewTask(TaskKindSearch, map[string]any{"destination": "Toronto City Hall"})
	result, err := search.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Failed() || result.Error.Code != ErrCodeAllSourcesFailed {
		t.Fatalf("result = %+v, want failure %s", result, ErrCodeAllSourcesFailed)
	}
}

func TestSearchAgentGeocodeFailure(t *testing.T) {
	geocoder := &fakeGeocoder{err: datasource.ErrNotGeocodable}
	search, err := NewSearchAgent(geocoder, []datasource.Source{
		&fakeSource{name: "web_search", spots: testCandidates("web_search")},
	}, testLogger())
	if err != nil {
		t.Fatalf("NewSearchAgent() error = %v", err)
	}

	task := NewTask(TaskKindSearch, map[string]any{"destination": "nowhere"})
	result, err := search.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Failed() || result.Error.Code != ErrCodeGeocodeFailed {
		t.Fatalf("result = %+v, want failure %s", result, ErrCodeGeocodeFailed)
	}
}

func TestSearchAgentMissingDestination(t *testing.T) {
	search := newTestSearchAgent(t, []datasource.Source{
		&fakeSource{name: "web_search"},
	})

	task := NewTask(TaskKindSearch, map[string]any{})
	result, err := search.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Failed() || result.Error.Code != ErrCodeInvalidParameters {
		t.Fatalf("result = %+v, want failure %s", result, ErrCodeInvalidParameters)
	}
}

func TestSearchAgentTopK(t *testing.T) {
	search := newTestSearchAgent(t, []datasource.Source{
		&fakeSource{name: "web_search", spots: testCandidates("web_search")},
	}, WithTopK(1))

	task := NewTask(TaskKindSearch, map[string]any{"destination": "Toronto City Hall"})
	result, err := search.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := result.Output.(*SearchOutput)
	if len(out.Recommended) != 1 {
		t.Errorf("len(Recommended) = %d, want 1", len(out.Recommended))
	}
	if out.MeetingConstraints != 3 {
		t.Errorf("MeetingConstraints = %d, want 3 (truncation is presentation only)", out.MeetingConstraints)
	}
}

func newTestSystemRegistry(t *testing.T) (*Registry, *InteractionAgent, *RoutingAgent) {
	t.Helper()
	reg := NewRegistry(testLogger())

	search := newTestSearchAgent(t, []datasource.Source{
		&fakeSource{name: "web_search", spots: testCandidates("web_search")},
	})
	routing, err := NewRoutingAgent(&fakeRouter{}, testLogger())
	if err != nil {
		t.Fatalf("NewRoutingAgent() error = %v", err)
	}
	interaction, err := NewInteractionAgent(reg, testLogger())
	if err != nil {
		t.Fatalf("NewInteractionAgent() error = %v", err)
	}
	for _, a := range []Agent{search, routing, interaction} {
		if err := reg.Register(a); err != nil {
			t.Fatalf("Register(%s) error = %v", a.Name(), err)
		}
	}
	return reg, interaction, routing
}

func TestInteractionAgentFindParking(t *testing.T) {
	_, interaction, routing := newTestSystemRegistry(t)

	task := NewTask(TaskKindFindParking, map[string]any{
		"destination": "Toronto City Hall",
		"profile":     "commuter_saver",
		"constraints": map[string]any{"maxPrice": 5.0},
	})
	result, err := interaction.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Failed() {
		t.Fatalf("Execute() result failed: %v", result.Error)
	}

	out, ok := result.Output.(*FindParkingOutput)
	if !ok {
		t.Fatalf("Output type = %T, want *FindParkingOutput", result.Output)
	}
	if out.Profile != "commuter_saver" {
		t.Errorf("Profile = %q, want commuter_saver", out.Profile)
	}
	if out.Search == nil || out.Search.TotalFound != 3 {
		t.Fatalf("Search = %+v, want 3 candidates found", out.Search)
	}
	// commuter_saver requires EV charging, which drops Mid Lot; maxPrice
	// drops Premium Garage.
	if out.Search.MeetingConstraints != 1 {
		t.Errorf("MeetingConstraints = %d, want 1", out.Search.MeetingConstraints)
	}
	if !out.RoutingPrimed {
		t.Error("routing agent should be primed after a successful search")
	}
	if v, _ := routing.Cues().Get(CueKeyDestination); v != "Toronto City Hall" {
		t.Errorf("cued destination = %v, want Toronto City Hall", v)
	}
}

func TestInteractionAgentNavigateUsesCue(t *testing.T) {
	_, interaction, _ := newTestSystemRegistry(t)

	find := NewTask(TaskKindFindParking, map[string]any{"destination": "Toronto City Hall"})
	if _, err := interaction.Execute(context.Background(), find); err != nil {
		t.Fatalf("find-parking error = %v", err)
	}

	nav := NewTask(TaskKindNavigate, map[string]any{})
	result, err := interaction.Execute(context.Background(), nav)
	if err != nil {
		t.Fatalf("navigate error = %v", err)
	}
	if result.Failed() {
		t.Fatalf("navigate failed: %v", result.Error)
	}

	out, ok := result.Output.(*NavigateOutput)
	if !ok {
		t.Fatalf("Output type = %T, want *NavigateOutput", result.Output)
	}
	if out.Destination != "Toronto City Hall" {
		t.Errorf("Destination = %q, want the cued one", out.Destination)
	}
	if !out.Cued {
		t.Error("navigate without a destination should report the cued fallback")
	}
}

func TestInteractionAgentUnknownKind(t *testing.T) {
	_, interaction, _ := newTestSystemRegistry(t)

	task := NewTask("repaint-curb", nil)
	result, err := interaction.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Failed() || result.Error.Code != ErrCodeUnknownTaskKind {
		t.Fatalf("result = %+v, want failure %s", result, ErrCodeUnknownTaskKind)
	}
}

func TestRoutingAgentWithoutDestinationOrCue(t *testing.T) {
	routing, err := NewRoutingAgent(&fakeRouter{}, testLogger())
	if err != nil {
		t.Fatalf("NewRoutingAgent() error = %v", err)
	}

	task := NewTask(TaskKindNavigate, map[string]any{})
	result, err := routing.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Failed() || result.Error.Code != ErrCodeInvalidParameters {
		t.Fatalf("result = %+v, want failure %s", result, ErrCodeInvalidParameters)
	}
}

func TestStubAgentExecute(t *testing.T) {
	stub := NewStubAgent("departure", "Handles exit and payment settlement", []string{"payment_processor"})

	task := NewTask("depart", nil)
	result, err := stub.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Failed() {
		t.Fatalf("stub execution must complete, got %v", result.Error)
	}
	out := result.Output.(map[string]any)
	if out["status"] != "not_implemented" {
		t.Errorf("status = %v, want not_implemented", out["status"])
	}
}
