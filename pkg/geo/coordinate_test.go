package geo

import (
	"math"
	"testing"
)

func TestBearingDueEast(t *testing.T) {
	a := FixedPointCoordinate{Lat: 0, Lon: 0}
	b := FixedPointCoordinate{Lat: 0, Lon: 1_000_000}
	got := Bearing(a, b)
	if math.Abs(got-90.0) > 1e-6 {
		t.Errorf("Bearing = %v, want ~90.0", got)
	}
}

func TestBearingDueNorth(t *testing.T) {
	a := FixedPointCoordinate{Lat: 0, Lon: 0}
	b := FixedPointCoordinate{Lat: 1_000_000, Lon: 0}
	got := Bearing(a, b)
	if math.Abs(got) > 1e-6 {
		t.Errorf("Bearing = %v, want ~0.0", got)
	}
}

func TestBearingInRange(t *testing.T) {
	coords := []FixedPointCoordinate{
		{Lat: 1_300_000, Lon: 103_800_000},
		{Lat: -1_300_000, Lon: -103_800_000},
		{Lat: 0, Lon: 0},
	}
	for _, a := range coords {
		for _, b := range coords {
			got := Bearing(a, b)
			if got < 0 || got >= 360 {
				t.Errorf("Bearing(%v,%v) = %v, want in [0,360)", a, b, got)
			}
		}
	}
}

func TestFixedPointRoundTrip(t *testing.T) {
	c := FromFloat(1.352083, 103.819836)
	lat, lon := c.ToFloat()
	if math.Abs(lat-1.352083) > 1e-5 || math.Abs(lon-103.819836) > 1e-5 {
		t.Errorf("round trip = (%v,%v), want ~(1.352083,103.819836)", lat, lon)
	}
}
