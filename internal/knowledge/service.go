package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Source reports where a lookup result came from.
type Source string

const (
	SourceEncyclopedia Source = "encyclopedia"
	SourceStaticTable  Source = "static_table"
	SourceNone         Source = "none"
)

type Result struct {
	Excerpt     string
	Medications []string
	Remedies    []string
	Source      Source
}

type ObserverFunc func(service string, status int, duration time.Duration)

// Service cross-references a term against the Wikipedia REST summary API and
// the bundled static table. Stateless; every lookup is a fresh fetch.
type Service struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	observer   ObserverFunc
}

func New(baseURL string, httpClient *http.Client, timeout time.Duration, observer ObserverFunc) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Service{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
		observer:   observer,
	}
}

// Lookup first tries the encyclopedia; any failure there degrades to the
// static table, and an unknown term yields SourceNone. Never returns an
// error: the static table is the designed fallback, not error suppression.
func (s *Service) Lookup(ctx context.Context, term string) Result {
	term = strings.TrimSpace(term)
	if term == "" {
		return Result{Source: SourceNone}
	}

	if excerpt, ok := s.fetchSummary(ctx, term); ok {
		result := Result{Excerpt: excerpt, Source: SourceEncyclopedia}
		if rec, found := staticLookup(term); found {
			result.Medications = rec.Medications
			result.Remedies = rec.Remedies
		}
		return result
	}

	if rec, found := staticLookup(term); found {
		return Result{Medications: rec.Medications, Remedies: rec.Remedies, Source: SourceStaticTable}
	}
	return Result{Source: SourceNone}
}

// Symptoms lists the static table's symptom keywords in deterministic order.
func Symptoms() []string {
	keys := make([]string, 0, len(staticTable))
	for key := range staticTable {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func staticLookup(term string) (Recommendation, bool) {
	rec, ok := staticTable[strings.ToLower(strings.TrimSpace(term))]
	return rec, ok
}

func (s *Service) fetchSummary(ctx context.Context, term string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	statusCode := 0
	defer func() { s.observe(statusCode, time.Since(started)) }()

	endpoint := s.baseURL + "/page/summary/" + url.PathEscape(term)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var parsed struct {
		Type    string `json:"type"`
		Extract string `json:"extract"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", false
	}
	// Disambiguation pages carry no usable summary.
	if parsed.Type == "disambiguation" || strings.TrimSpace(parsed.Extract) == "" {
		return "", false
	}
	return strings.TrimSpace(parsed.Extract), true
}

func (s *Service) observe(status int, duration time.Duration) {
	if s.observer != nil {
		s.observer("wikipedia", status, duration)
	}
}
