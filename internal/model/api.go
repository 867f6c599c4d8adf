package model

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}

type LivenessResponse struct {
	OK bool `json:"ok"`
}

type HealthResponse struct {
	Status             string `json:"status"`
	AIProvider         string `json:"ai_provider"`
	ProviderConfigured bool   `json:"provider_configured"`
}

type TestAIResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SummarizeRequest struct {
	Transcription string `json:"transcription"`
}

type PriceLink struct {
	Name      string `json:"name"`
	GoodRxURL string `json:"goodrx_url"`
}

type SummarizeResponse struct {
	Summary              string      `json:"summary"`
	Timestamp            string      `json:"timestamp"`
	Medications          []string    `json:"medications"`
	MedicationPriceLinks []PriceLink `json:"medication_price_links"`
	// SuggestedMedications marks the list as symptom-based suggestions
	// rather than medications named in the visit.
	SuggestedMedications bool `json:"suggested_medications,omitempty"`
}

type PharmacyEntry struct {
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Address    string  `json:"address,omitempty"`
	DistanceKm float64 `json:"distance_km"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type PharmacyFinderResponse struct {
	Pharmacies           []PharmacyEntry `json:"pharmacies"`
	MedicationPriceLinks []PriceLink     `json:"medication_price_links"`
	Location             Location        `json:"location"`
	RadiusKm             float64         `json:"radius_km"`
}
