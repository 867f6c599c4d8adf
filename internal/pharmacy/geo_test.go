package pharmacy

import (
	"math"
	"testing"
)

func TestValidateAcceptsRealCoordinates(t *testing.T) {
	points := []GeoPoint{
		{Lat: 0, Lon: 0},
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: -90, Lon: 180},
		{Lat: 90, Lon: -180},
	}
	for _, p := range points {
		if err := p.Validate(); err != nil {
			t.Fatalf("Validate(%+v) = %v", p, err)
		}
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	points := []GeoPoint{
		{Lat: 91, Lon: 0},
		{Lat: -91, Lon: 0},
		{Lat: 0, Lon: 181},
		{Lat: 0, Lon: -181},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.NaN()},
	}
	for _, p := range points {
		if err := p.Validate(); err != ErrInvalidCoordinates {
			t.Fatalf("Validate(%+v) = %v, want ErrInvalidCoordinates", p, err)
		}
	}
}

func TestHaversineZeroForSamePoint(t *testing.T) {
	p := GeoPoint{Lat: 40.7128, Lon: -74.0060}
	if d := haversineKm(p, p); d != 0 {
		t.Fatalf("haversineKm(p, p) = %v, want 0", d)
	}
}

func TestHaversineIsSymmetric(t *testing.T) {
	a := GeoPoint{Lat: 40.7128, Lon: -74.0060}
	b := GeoPoint{Lat: 40.7589, Lon: -73.9851}
	d1 := haversineKm(a, b)
	d2 := haversineKm(b, a)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("asymmetric distances: %v vs %v", d1, d2)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Times Square to the Empire State Building, roughly 1.1 km.
	a := GeoPoint{Lat: 40.7580, Lon: -73.9855}
	b := GeoPoint{Lat: 40.7484, Lon: -73.9857}
	d := haversineKm(a, b)
	if d < 0.9 || d > 1.3 {
		t.Fatalf("haversineKm = %v, expected about 1.1", d)
	}
}

func TestRoundKmTwoDecimals(t *testing.T) {
	cases := map[float64]float64{
		1.23456: 1.23,
		1.236:   1.24,
		0:       0,
		9.999:   10,
	}
	for in, want := range cases {
		if got := roundKm(in); got != want {
			t.Fatalf("roundKm(%v) = %v, want %v", in, got, want)
		}
	}
}
