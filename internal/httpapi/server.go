package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"patientbrief/internal/config"
	"patientbrief/internal/model"
	"patientbrief/internal/pharmacy"
	"patientbrief/internal/provider"
	"patientbrief/internal/summary"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type SummaryService interface {
	Summarize(ctx context.Context, transcript string) (summary.Result, error)
}

type PharmacyService interface {
	Find(ctx context.Context, center pharmacy.GeoPoint, radiusM int, medications []string) (pharmacy.Result, error)
}

type ProviderPinger interface {
	Ping(ctx context.Context) error
	Kind() config.ProviderKind
}

type MetricsObserver interface {
	ObserveHTTP(route, method string, status int, duration time.Duration)
	IncKnowledgeFallback()
}

type Dependencies struct {
	Summary        SummaryService
	Pharmacy       PharmacyService
	Provider       ProviderPinger
	Metrics        MetricsObserver
	MetricsHandler http.Handler
}

type server struct {
	cfg          config.Config
	logger       *slog.Logger
	summarizer   SummaryService
	pharmacies   PharmacyService
	provider     ProviderPinger
	metrics      MetricsObserver
	metricsRoute http.Handler
}

type ctxKey string

const (
	requestIDHeader  = "X-Request-Id"
	requestIDContext = ctxKey("request_id")
	maxJSONBodyBytes = 1 << 20
)

func NewServer(cfg config.Config, logger *slog.Logger, deps Dependencies) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Summary == nil || deps.Pharmacy == nil || deps.Provider == nil {
		panic("httpapi: all dependencies are required")
	}

	s := &server{
		cfg:          cfg,
		logger:       logger,
		summarizer:   deps.Summary,
		pharmacies:   deps.Pharmacy,
		provider:     deps.Provider,
		metrics:      deps.Metrics,
		metricsRoute: deps.MetricsHandler,
	}

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleLiveness)
	if s.metricsRoute != nil {
		r.Handle("/metrics", s.metricsRoute)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/summarize", s.handleSummarize)
		r.Get("/pharmacy-finder", s.handlePharmacyFinder)
		r.Get("/health", s.handleHealth)
		r.Get("/test-ai", s.handleTestAI)
	})

	return r
}

func (s *server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.LivenessResponse{OK: true})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:             "healthy",
		AIProvider:         string(s.cfg.Provider),
		ProviderConfigured: s.cfg.ProviderConfigured(),
	})
}

// handleTestAI probes the configured provider with a tiny completion. Always
// answers 200; the ok flag carries the outcome.
func (s *server) handleTestAI(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AITimeout)
	defer cancel()

	if err := s.provider.Ping(ctx); err != nil {
		writeJSON(w, http.StatusOK, model.TestAIResponse{OK: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, model.TestAIResponse{
		OK:      true,
		Message: fmt.Sprintf("%s provider is working", s.provider.Kind()),
	})
}

func (s *server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	defer func() { _ = r.Body.Close() }()

	var req model.SummarizeRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.handleJSONDecodeError(w, r, err)
		return
	}
	if err := ensureBodyFullyConsumed(decoder); err != nil {
		s.handleJSONDecodeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Transcription) == "" {
		s.writeError(w, r, http.StatusBadRequest, "validation", "transcription is required", nil)
		return
	}

	result, err := s.summarizer.Summarize(r.Context(), req.Transcription)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	if result.Suggested && s.metrics != nil {
		s.metrics.IncKnowledgeFallback()
	}

	writeJSON(w, http.StatusOK, model.SummarizeResponse{
		Summary:              result.Summary,
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
		Medications:          nonNilStrings(result.Medications),
		MedicationPriceLinks: toModelPriceLinks(pharmacy.BuildPriceLinks(result.Medications)),
		SuggestedMedications: result.Suggested,
	})
}

func (s *server) handlePharmacyFinder(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, err := parseRequiredFloat(query.Get("lat"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "validation", "lat must be a valid number", nil)
		return
	}
	lon, err := parseRequiredFloat(query.Get("lon"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "validation", "lon must be a valid number", nil)
		return
	}

	radiusM := s.cfg.DefaultRadiusM
	if raw := strings.TrimSpace(query.Get("radius")); raw != "" {
		radiusM, err = strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "validation", "radius must be an integer number of meters", nil)
			return
		}
	}

	medications := splitMedications(query.Get("medications"))

	result, err := s.pharmacies.Find(r.Context(), pharmacy.GeoPoint{Lat: lat, Lon: lon}, radiusM, medications)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	entries := make([]model.PharmacyEntry, 0, len(result.Pharmacies))
	for _, p := range result.Pharmacies {
		entries = append(entries, model.PharmacyEntry{
			Name:       p.Name,
			Lat:        p.Lat,
			Lon:        p.Lon,
			Address:    p.Address,
			DistanceKm: p.DistanceKm,
		})
	}

	writeJSON(w, http.StatusOK, model.PharmacyFinderResponse{
		Pharmacies:           entries,
		MedicationPriceLinks: toModelPriceLinks(result.PriceLinks),
		Location:             model.Location{Lat: lat, Lon: lon},
		RadiusKm:             float64(result.RadiusM) / 1000,
	})
}

func (s *server) handleJSONDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, "request_too_large", "JSON body too large", nil)
		return
	}
	s.writeError(w, r, http.StatusBadRequest, "validation", "invalid JSON body", nil)
}

func (s *server) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "request failed"
	details := detailsForError(err)

	var providerErr *provider.Error
	var overpassErr *pharmacy.UpstreamError
	switch {
	case errors.Is(err, summary.ErrEmptyTranscript):
		status = http.StatusBadRequest
		code = "validation"
		message = "transcription is required"
	case errors.Is(err, pharmacy.ErrInvalidCoordinates):
		status = http.StatusBadRequest
		code = "validation"
		message = err.Error()
	case errors.As(err, &providerErr):
		status, code, message = mapProviderError(providerErr)
	case errors.As(err, &overpassErr):
		status = http.StatusBadGateway
		code = "upstream_unavailable"
		message = "map-data request failed"
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		code = "timeout"
		message = "request timed out"
	case errors.Is(err, context.Canceled):
		status = 499
		code = "canceled"
		message = "request canceled"
	}

	s.writeError(w, r, status, code, message, details)
}

func mapProviderError(err *provider.Error) (int, string, string) {
	switch err.Reason {
	case provider.ReasonAuth:
		return http.StatusBadGateway, "upstream_rejected", "AI provider rejected the configured credential"
	case provider.ReasonRateLimit:
		return http.StatusBadGateway, "upstream_rejected", "AI provider rate limit exceeded"
	case provider.ReasonTimeout:
		return http.StatusGatewayTimeout, "timeout", "AI provider request timed out"
	case provider.ReasonMalformedResponse:
		return http.StatusBadGateway, "malformed_upstream_response", "AI provider returned an unexpected response"
	default:
		return http.StatusBadGateway, "upstream_unavailable", "AI provider is unreachable"
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	if rid := requestIDFromContext(r.Context()); rid != "" {
		w.Header().Set(requestIDHeader, rid)
	}
	writeJSON(w, status, model.ErrorResponse{
		Error:     model.APIError{Code: code, Message: message, Details: details},
		RequestID: requestIDFromContext(r.Context()),
	})
}

func (s *server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = newRequestID()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDContext, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		duration := time.Since(started)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, r.Method, status, duration)
		}

		s.logger.Info("http_request",
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", duration.Milliseconds(),
		)
	})
}

func (s *server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "request_id", requestIDFromContext(r.Context()), "panic", rec)
				s.writeError(w, r, http.StatusInternalServerError, "internal_error", "internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func ensureBodyFullyConsumed(decoder *json.Decoder) error {
	var extra any
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("multiple JSON values")
		}
		return err
	}
	return nil
}

func parseRequiredFloat(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(value, 64)
}

func splitMedications(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	medications := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			medications = append(medications, trimmed)
		}
	}
	return medications
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func toModelPriceLinks(links []pharmacy.PriceLink) []model.PriceLink {
	out := make([]model.PriceLink, 0, len(links))
	for _, link := range links {
		out = append(out, model.PriceLink{Name: link.Name, GoodRxURL: link.URL})
	}
	return out
}

func requestIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(requestIDContext).(string)
	return value
}

func newRequestID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

func detailsForError(err error) map[string]any {
	if err == nil {
		return nil
	}
	details := map[string]any{"error": err.Error()}
	var providerErr *provider.Error
	if errors.As(err, &providerErr) {
		details["reason"] = string(providerErr.Reason)
		if providerErr.StatusCode > 0 {
			details["upstream_status"] = providerErr.StatusCode
		}
		if providerErr.Body != "" {
			details["upstream_body"] = providerErr.Body
		}
	}
	var overpassErr *pharmacy.UpstreamError
	if errors.As(err, &overpassErr) {
		details["upstream_status"] = overpassErr.StatusCode
		if overpassErr.Body != "" {
			details["upstream_body"] = overpassErr.Body
		}
	}
	return details
}
