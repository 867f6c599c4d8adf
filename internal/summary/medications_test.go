package summary

import (
	"reflect"
	"testing"
)

func TestExtractMedicationsFromTermBullets(t *testing.T) {
	sections := ParseSections(fullReply)
	medications := ExtractMedications(sections)

	if len(medications) == 0 {
		t.Fatal("expected at least one medication")
	}
	if medications[0] != "Lisinopril" {
		t.Fatalf("expected Lisinopril first, got %+v", medications)
	}
}

func TestExtractMedicationsDedupesPreservingOrder(t *testing.T) {
	sections := []Section{
		{
			Title: SectionTerms,
			Body:  "- Metformin = a diabetes medication\n- metformin = the same medication again",
			Terms: []Term{
				{Name: "Metformin", Definition: "a diabetes medication"},
				{Name: "metformin", Definition: "the same medication again"},
			},
		},
	}
	medications := ExtractMedications(sections)
	if !reflect.DeepEqual(medications, []string{"Metformin"}) {
		t.Fatalf("unexpected medications: %+v", medications)
	}
}

func TestExtractMedicationsIgnoresNonMedicationTerms(t *testing.T) {
	sections := []Section{
		{
			Title: SectionTerms,
			Body:  NotProvided,
			Terms: []Term{{Name: "Hypertension", Definition: "high blood pressure"}},
		},
	}
	medications := ExtractMedications(sections)
	if len(medications) != 0 {
		t.Fatalf("expected no medications, got %+v", medications)
	}
}

func TestIsMedicationCandidate(t *testing.T) {
	yes := []string{"Lisinopril", "Metformin", "Atorvastatin"}
	no := []string{"The", "Take", "Doctor", "ibuprofen", "BP", "Recommendations", "ALLCAPS"}

	for _, token := range yes {
		if !isMedicationCandidate(token) {
			t.Fatalf("expected %q to be a candidate", token)
		}
	}
	for _, token := range no {
		if isMedicationCandidate(token) {
			t.Fatalf("expected %q to be rejected", token)
		}
	}
}

func TestDisplayCase(t *testing.T) {
	cases := map[string]string{
		"lisinopril": "Lisinopril",
		"Lisinopril": "Lisinopril",
		"":           "",
	}
	for in, want := range cases {
		if got := displayCase(in); got != want {
			t.Fatalf("displayCase(%q): got %q want %q", in, got, want)
		}
	}
}

func TestSymptomsIn(t *testing.T) {
	keywords := []string{"back pain", "fever", "headache"}
	transcript := "Patient: I have had a headache and a mild fever since Monday."

	found := SymptomsIn(transcript, keywords)
	if !reflect.DeepEqual(found, []string{"fever", "headache"}) {
		t.Fatalf("unexpected symptoms: %+v", found)
	}
	if got := SymptomsIn("no complaints today", keywords); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
