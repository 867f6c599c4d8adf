package pharmacy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestClampRadius(t *testing.T) {
	cases := map[int]int{
		100:            MinRadiusM,
		500:            500,
		5000:           5000,
		25000:          25000,
		999999:         MaxRadiusM,
		-42:            MinRadiusM,
		MaxRadiusM + 1: MaxRadiusM,
	}
	for in, want := range cases {
		if got := ClampRadius(in); got != want {
			t.Fatalf("ClampRadius(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBuildPriceLinks(t *testing.T) {
	links := BuildPriceLinks([]string{"Lisinopril", "lisinopril", "Metformin ER 500", "  ", "Tylenol"})
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %+v", links)
	}
	if links[0].Name != "Lisinopril" || links[0].URL != "https://www.goodrx.com/search?query=lisinopril" {
		t.Fatalf("unexpected first link: %+v", links[0])
	}
	// Only the first word of a multi-word name goes into the query.
	if links[1].URL != "https://www.goodrx.com/search?query=metformin" {
		t.Fatalf("unexpected multi-word link: %+v", links[1])
	}
}

func TestBuildPriceLinksEmptyInput(t *testing.T) {
	if links := BuildPriceLinks(nil); len(links) != 0 {
		t.Fatalf("expected no links, got %+v", links)
	}
}

const overpassReply = `{
	"elements": [
		{"type": "node", "lat": 40.7200, "lon": -74.0000, "tags": {"name": "Far Pharmacy"}},
		{"type": "node", "lat": 40.7130, "lon": -74.0061, "tags": {"name": "Near Pharmacy", "addr:housenumber": "12", "addr:street": "Main St", "addr:city": "New York"}},
		{"type": "node", "lat": 40.7140, "lon": -74.0050, "tags": {}},
		{"type": "way", "center": {"lat": 40.7150, "lon": -74.0040}, "tags": {"name": "Building Pharmacy"}}
	]
}`

func TestFindSortsByDistanceAndSkipsUnnamed(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		gotQuery = form.Get("data")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(overpassReply))
	}))
	defer server.Close()

	svc := New(server.URL, server.Client(), 5*time.Second, nil)
	center := GeoPoint{Lat: 40.7128, Lon: -74.0060}
	result, err := svc.Find(context.Background(), center, 5000, []string{"Lisinopril"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if len(result.Pharmacies) != 3 {
		t.Fatalf("expected 3 named pharmacies, got %+v", result.Pharmacies)
	}
	if result.Pharmacies[0].Name != "Near Pharmacy" {
		t.Fatalf("expected nearest first, got %q", result.Pharmacies[0].Name)
	}
	for i := 1; i < len(result.Pharmacies); i++ {
		if result.Pharmacies[i-1].DistanceKm > result.Pharmacies[i].DistanceKm {
			t.Fatalf("pharmacies not sorted ascending: %+v", result.Pharmacies)
		}
	}
	if result.Pharmacies[0].Address != "12 Main St, New York" {
		t.Fatalf("unexpected address: %q", result.Pharmacies[0].Address)
	}
	// Ways resolve via their computed center.
	found := false
	for _, p := range result.Pharmacies {
		if p.Name == "Building Pharmacy" && p.Lat == 40.7150 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected way element with center coordinates: %+v", result.Pharmacies)
	}

	if result.RadiusM != 5000 {
		t.Fatalf("radius = %d, want 5000", result.RadiusM)
	}
	if len(result.PriceLinks) != 1 || result.PriceLinks[0].Name != "Lisinopril" {
		t.Fatalf("unexpected price links: %+v", result.PriceLinks)
	}

	for _, fragment := range []string{`"amenity"="pharmacy"`, "around:5000", "out center"} {
		if !strings.Contains(gotQuery, fragment) {
			t.Fatalf("query missing %q: %s", fragment, gotQuery)
		}
	}
}

func TestFindEmptyAreaIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": []}`))
	}))
	defer server.Close()

	svc := New(server.URL, server.Client(), 5*time.Second, nil)
	result, err := svc.Find(context.Background(), GeoPoint{Lat: 40.7128, Lon: -74.0060}, 5000, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if result.Pharmacies == nil || len(result.Pharmacies) != 0 {
		t.Fatalf("expected empty non-nil slice, got %+v", result.Pharmacies)
	}
}

func TestFindClampsRadiusBeforeQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": []}`))
	}))
	defer server.Close()

	svc := New(server.URL, server.Client(), 5*time.Second, nil)
	result, err := svc.Find(context.Background(), GeoPoint{Lat: 1, Lon: 1}, 100, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if result.RadiusM != MinRadiusM {
		t.Fatalf("radius = %d, want %d", result.RadiusM, MinRadiusM)
	}
}

func TestFindRejectsInvalidCoordinatesWithoutCalling(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	svc := New(server.URL, server.Client(), 5*time.Second, nil)
	_, err := svc.Find(context.Background(), GeoPoint{Lat: 95, Lon: 0}, 5000, nil)
	if err != ErrInvalidCoordinates {
		t.Fatalf("Find() error = %v, want ErrInvalidCoordinates", err)
	}
	if calls != 0 {
		t.Fatalf("expected no upstream call, got %d", calls)
	}
}

func TestFindSurfacesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	var observed []int
	svc := New(server.URL, server.Client(), 5*time.Second, func(_ string, status int, _ time.Duration) {
		observed = append(observed, status)
	})
	_, err := svc.Find(context.Background(), GeoPoint{Lat: 1, Lon: 1}, 5000, nil)

	upstreamErr, ok := err.(*UpstreamError)
	if !ok {
		t.Fatalf("error type = %T, want *UpstreamError", err)
	}
	if upstreamErr.StatusCode != http.StatusTooManyRequests || upstreamErr.Body != "rate limited" {
		t.Fatalf("unexpected upstream error: %+v", upstreamErr)
	}
	if len(observed) != 1 || observed[0] != http.StatusTooManyRequests {
		t.Fatalf("observed statuses = %+v", observed)
	}
}
