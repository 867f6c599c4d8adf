package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"patientbrief/internal/knowledge"
	"patientbrief/internal/provider"
)

// ErrEmptyTranscript rejects empty or whitespace-only input before any
// upstream call.
var ErrEmptyTranscript = errors.New("transcript is empty")

const systemPrompt = "You are a helpful medical assistant that translates clinical language into patient-friendly summaries."

const promptTemplate = `You are a medical assistant helping to translate clinical notes into patient-friendly language.

Convert the following clinical transcription into a clear, easy-to-understand summary for the patient. Use simple language, avoid medical jargon, and organize the information in a friendly, reassuring manner.

Clinical Transcription:
%s

Structure your response with exactly these three sections, using these exact headings:

**Summary of Visit**
A brief overview of what was discussed and any key findings.

**Terms Explained**
List each medical term and medication as a bullet line in the form:
- term = plain-language definition
For medications, mention in the definition that it is a medication and how it is taken.

**Recommendations**
Next steps, reminders, and anything the patient should watch for.`

const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

type CompletionClient interface {
	Complete(ctx context.Context, req provider.Request) (string, error)
}

type KnowledgeClient interface {
	Lookup(ctx context.Context, term string) knowledge.Result
}

// Result is the structured outcome of one summarization call.
type Result struct {
	Summary     string
	Sections    []Section
	Medications []string
	// Suggested is set when the medication list came from the symptom
	// fallback rather than the provider's reply.
	Suggested bool
}

// Service orchestrates the provider call and the deterministic extraction
// applied to its reply.
type Service struct {
	client    CompletionClient
	knowledge KnowledgeClient
	timeout   time.Duration
}

func New(client CompletionClient, knowledgeClient KnowledgeClient, timeout time.Duration) *Service {
	return &Service{
		client:    client,
		knowledge: knowledgeClient,
		timeout:   timeout,
	}
}

// Summarize validates the transcript, invokes the provider once, parses the
// reply into sections and extracts medications. Provider failures surface
// verbatim: fabricating a generic summary for clinical content would be
// unsafe.
func (s *Service) Summarize(ctx context.Context, transcript string) (Result, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Result{}, ErrEmptyTranscript
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.client.Complete(ctx, provider.Request{
		System:      systemPrompt,
		User:        fmt.Sprintf(promptTemplate, transcript),
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return Result{}, err
	}

	sections := ParseSections(text)
	medications := ExtractMedications(sections)

	result := Result{
		Summary:     RenderSections(sections),
		Sections:    sections,
		Medications: medications,
	}

	if len(medications) == 0 && s.knowledge != nil {
		result.Medications, result.Suggested = s.suggestFromSymptoms(ctx, transcript)
	}
	return result, nil
}

// suggestFromSymptoms is the designed fallback: when the reply yields no
// medications but the transcript names recognizable symptoms, the static
// knowledge source supplies typical suggestions.
func (s *Service) suggestFromSymptoms(ctx context.Context, transcript string) ([]string, bool) {
	symptoms := SymptomsIn(transcript, knowledge.Symptoms())
	if len(symptoms) == 0 {
		return nil, false
	}

	seen := make(map[string]struct{})
	var suggested []string
	for _, symptom := range symptoms {
		rec := s.knowledge.Lookup(ctx, symptom)
		for _, med := range rec.Medications {
			key := strings.ToLower(med)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			suggested = append(suggested, med)
		}
	}
	return suggested, len(suggested) > 0
}
