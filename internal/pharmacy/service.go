package pharmacy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	MinRadiusM = 500
	MaxRadiusM = 25000
)

// Pharmacy is a named pharmacy point of interest with its distance from the
// query center. The list is rebuilt per request, never cached.
type Pharmacy struct {
	Name       string
	Lat        float64
	Lon        float64
	Address    string
	DistanceKm float64
}

// PriceLink is a deterministic price-comparison URL for one medication.
type PriceLink struct {
	Name string
	URL  string
}

type Result struct {
	Pharmacies []Pharmacy
	PriceLinks []PriceLink
	RadiusM    int
}

// UpstreamError is a non-2xx reply from the map-data service.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("overpass request failed with status %d", e.StatusCode)
}

type ObserverFunc func(service string, status int, duration time.Duration)

// Service queries the Overpass API for pharmacy-tagged points around a
// center and ranks them by great-circle distance.
type Service struct {
	overpassURL string
	httpClient  *http.Client
	timeout     time.Duration
	observer    ObserverFunc
}

func New(overpassURL string, httpClient *http.Client, timeout time.Duration, observer ObserverFunc) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Service{
		overpassURL: strings.TrimRight(overpassURL, "/"),
		httpClient:  httpClient,
		timeout:     timeout,
		observer:    observer,
	}
}

// Find validates the center, clamps the radius, queries the map-data service
// and returns pharmacies sorted ascending by distance plus price links for
// the supplied medication names. Zero pharmacies is a valid empty result.
func (s *Service) Find(ctx context.Context, center GeoPoint, radiusM int, medications []string) (Result, error) {
	if err := center.Validate(); err != nil {
		return Result{}, err
	}
	radiusM = ClampRadius(radiusM)

	elements, err := s.queryOverpass(ctx, center, radiusM)
	if err != nil {
		return Result{}, err
	}

	pharmacies := make([]Pharmacy, 0, len(elements))
	for _, el := range elements {
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			// Unnamed points are not actionable for a patient.
			continue
		}
		lat, lon, ok := el.coordinates()
		if !ok {
			continue
		}
		pharmacies = append(pharmacies, Pharmacy{
			Name:       name,
			Lat:        lat,
			Lon:        lon,
			Address:    formatAddress(el.Tags),
			DistanceKm: roundKm(haversineKm(center, GeoPoint{Lat: lat, Lon: lon})),
		})
	}

	sort.SliceStable(pharmacies, func(i, j int) bool {
		return pharmacies[i].DistanceKm < pharmacies[j].DistanceKm
	})

	return Result{
		Pharmacies: pharmacies,
		PriceLinks: BuildPriceLinks(medications),
		RadiusM:    radiusM,
	}, nil
}

// ClampRadius bounds a search radius to [MinRadiusM, MaxRadiusM]. Out-of-range
// input is a usability issue, not an error.
func ClampRadius(radiusM int) int {
	if radiusM < MinRadiusM {
		return MinRadiusM
	}
	if radiusM > MaxRadiusM {
		return MaxRadiusM
	}
	return radiusM
}

// BuildPriceLinks maps distinct medication names to price-lookup URLs. Pure
// string transform: only the first word of the name goes into the query.
func BuildPriceLinks(medications []string) []PriceLink {
	links := make([]PriceLink, 0, len(medications))
	seen := make(map[string]struct{}, len(medications))
	for _, med := range medications {
		name := strings.TrimSpace(med)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		firstWord := strings.ToLower(strings.Fields(name)[0])
		links = append(links, PriceLink{
			Name: name,
			URL:  "https://www.goodrx.com/search?query=" + url.QueryEscape(firstWord),
		})
	}
	return links
}

type overpassElement struct {
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// coordinates resolves the element position: nodes carry lat/lon directly,
// ways and relations report a computed center.
func (el overpassElement) coordinates() (float64, float64, bool) {
	if el.Type == "node" {
		return el.Lat, el.Lon, true
	}
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon, true
	}
	return 0, 0, false
}

func (s *Service) queryOverpass(ctx context.Context, center GeoPoint, radiusM int) ([]overpassElement, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	statusCode := 0
	defer func() { s.observe(statusCode, time.Since(started)) }()

	query := fmt.Sprintf(`[out:json][timeout:%d];(node["amenity"="pharmacy"](around:%d,%f,%f);way["amenity"="pharmacy"](around:%d,%f,%f);relation["amenity"="pharmacy"](around:%d,%f,%f););out center;`,
		int(s.timeout.Seconds()),
		radiusM, center.Lat, center.Lon,
		radiusM, center.Lat, center.Lon,
		radiusM, center.Lat, center.Lon,
	)

	form := url.Values{"data": []string{query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed struct {
		Elements []overpassElement `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return parsed.Elements, nil
}

func formatAddress(tags map[string]string) string {
	street := strings.TrimSpace(tags["addr:street"])
	houseNumber := strings.TrimSpace(tags["addr:housenumber"])
	city := strings.TrimSpace(tags["addr:city"])

	parts := make([]string, 0, 2)
	switch {
	case street != "" && houseNumber != "":
		parts = append(parts, houseNumber+" "+street)
	case street != "":
		parts = append(parts, street)
	}
	if city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

func (s *Service) observe(status int, duration time.Duration) {
	if s.observer != nil {
		s.observer("overpass", status, duration)
	}
}
