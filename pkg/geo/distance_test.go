package geo

import (
	"math"
	"testing"
)

func TestDistance_Zero(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 43.6532, Lng: -79.3844},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 89.9, Lng: 179.9},
	}

	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistance_Symmetry(t *testing.T) {
	a := Coordinate{Lat: 43.6532, Lng: -79.3844}
	b := Coordinate{Lat: 43.6426, Lng: -79.3871}

	if ab, ba := Distance(a, b), Distance(b, a); ab != ba {
		t.Errorf("Distance(a, b) = %v, Distance(b, a) = %v, want equal", ab, ba)
	}
}

func TestDistance_TorontoReference(t *testing.T) {
	// Toronto City Hall to Nathan Phillips Square carpark, roughly 167m apart.
	origin := Coordinate{Lat: 43.6532, Lng: -79.3844}
	destination := Coordinate{Lat: 43.6517, Lng: -79.3844}

	d := Distance(origin, destination)
	want := 167.0
	if math.Abs(d-want) > want*0.05 {
		t.Errorf("Distance() = %v, want %v +/- 5%%", d, want)
	}
}

func TestDistance_Rounding(t *testing.T) {
	a := Coordinate{Lat: 43.6532, Lng: -79.3844}
	b := Coordinate{Lat: 43.6544, Lng: -79.3828}

	d := Distance(a, b)
	if got := math.Round(d*10) / 10; got != d {
		t.Errorf("Distance() = %v, want value rounded to one decimal place", d)
	}
}
