package summary

import (
	"context"
	"strings"
	"testing"
	"time"

	"patientbrief/internal/knowledge"
	"patientbrief/internal/provider"
)

type fakeCompletionClient struct {
	request provider.Request
	calls   int
	text    string
	err     error
}

func (f *fakeCompletionClient) Complete(_ context.Context, req provider.Request) (string, error) {
	f.calls++
	f.request = req
	return f.text, f.err
}

type fakeKnowledge struct {
	calls   []string
	results map[string]knowledge.Result
}

func (f *fakeKnowledge) Lookup(_ context.Context, term string) knowledge.Result {
	f.calls = append(f.calls, term)
	return f.results[term]
}

func TestSummarizeRejectsEmptyTranscript(t *testing.T) {
	client := &fakeCompletionClient{}
	svc := New(client, &fakeKnowledge{}, 2*time.Second)

	for _, transcript := range []string{"", "   ", "\n\t"} {
		_, err := svc.Summarize(context.Background(), transcript)
		if err != ErrEmptyTranscript {
			t.Fatalf("transcript %q: got %v want ErrEmptyTranscript", transcript, err)
		}
	}
	if client.calls != 0 {
		t.Fatalf("expected zero outbound calls, got %d", client.calls)
	}
}

func TestSummarizeSurfacesProviderError(t *testing.T) {
	provErr := &provider.Error{Reason: provider.ReasonTimeout}
	client := &fakeCompletionClient{err: provErr}
	svc := New(client, &fakeKnowledge{}, 2*time.Second)

	_, err := svc.Summarize(context.Background(), "Doctor: all good.")
	if err != provErr {
		t.Fatalf("expected provider error surfaced verbatim, got %v", err)
	}
}

func TestSummarizeExtractsMedicationsAndSections(t *testing.T) {
	client := &fakeCompletionClient{text: fullReply}
	svc := New(client, &fakeKnowledge{}, 2*time.Second)

	result, err := svc.Summarize(context.Background(), "Doctor: You have hypertension. Take lisinopril 10mg daily.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if len(result.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(result.Sections))
	}
	if !strings.Contains(result.Sections[0].Body, "blood pressure") {
		t.Fatalf("unexpected summary section: %q", result.Sections[0].Body)
	}
	if result.Suggested {
		t.Fatal("medications came from the reply, not the fallback")
	}

	foundLisinopril := false
	for _, med := range result.Medications {
		if strings.EqualFold(med, "lisinopril") {
			foundLisinopril = true
		}
	}
	if !foundLisinopril {
		t.Fatalf("expected Lisinopril in medications: %+v", result.Medications)
	}

	if !strings.Contains(client.request.User, "Take lisinopril 10mg daily.") {
		t.Fatalf("expected transcript in prompt: %q", client.request.User)
	}
	if client.request.MaxTokens != defaultMaxTokens || client.request.Temperature != defaultTemperature {
		t.Fatalf("unexpected request parameters: %+v", client.request)
	}
}

func TestSummarizeFallsBackToSymptomSuggestions(t *testing.T) {
	client := &fakeCompletionClient{text: "**Summary of Visit**\n\nYou should rest and drink plenty of fluids."}
	kb := &fakeKnowledge{results: map[string]knowledge.Result{
		"headache": {Medications: []string{"Ibuprofen", "Acetaminophen"}, Source: knowledge.SourceStaticTable},
		"fever":    {Medications: []string{"Acetaminophen"}, Source: knowledge.SourceStaticTable},
	}}
	svc := New(client, kb, 2*time.Second)

	result, err := svc.Summarize(context.Background(), "Patient: I have a headache and a fever.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !result.Suggested {
		t.Fatal("expected suggested medications")
	}
	if len(result.Medications) != 2 {
		t.Fatalf("expected 2 deduplicated suggestions, got %+v", result.Medications)
	}
	if len(kb.calls) == 0 {
		t.Fatal("expected knowledge lookups")
	}
}

func TestSummarizeNoFallbackWithoutSymptoms(t *testing.T) {
	client := &fakeCompletionClient{text: "**Summary of Visit**\n\nYour checkup went well and nothing needs to change."}
	kb := &fakeKnowledge{}
	svc := New(client, kb, 2*time.Second)

	result, err := svc.Summarize(context.Background(), "Doctor: everything looks normal.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if result.Suggested || len(result.Medications) != 0 {
		t.Fatalf("expected no medications, got %+v", result.Medications)
	}
	if len(kb.calls) != 0 {
		t.Fatalf("expected no knowledge lookups, got %+v", kb.calls)
	}
}
