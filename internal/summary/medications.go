package summary

import (
	"strings"
	"unicode"
)

// Common capitalized words that are never medication names. The scan below is
// deliberately permissive; this list only removes the obvious noise
// (sentence starters, clinical roles, section vocabulary).
var medicationStopwords = map[string]struct{}{
	"the": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"your": {}, "you": {}, "yours": {}, "please": {}, "thank": {},
	"take": {}, "taking": {}, "start": {}, "stop": {}, "continue": {},
	"doctor": {}, "patient": {}, "nurse": {}, "visit": {}, "clinic": {},
	"summary": {}, "terms": {}, "explained": {}, "recommendations": {},
	"during": {}, "after": {}, "before": {}, "today": {}, "tomorrow": {},
	"daily": {}, "twice": {}, "once": {}, "weekly": {}, "monthly": {},
	"blood": {}, "pressure": {}, "heart": {}, "also": {}, "follow": {},
	"remember": {}, "avoid": {}, "make": {}, "keep": {}, "call": {},
	"schedule": {}, "appointment": {}, "next": {}, "with": {}, "when": {},
	"what": {}, "where": {}, "while": {}, "will": {}, "would": {},
	"should": {}, "could": {}, "have": {}, "been": {}, "were": {},
	"there": {}, "here": {}, "about": {}, "from": {}, "into": {},
	"important": {}, "notes": {}, "reminders": {}, "overview": {},
}

// Words in a definition that mark the bulleted term itself as a medication.
var medicationCues = []string{
	"medication", "medicine", "drug", "tablet", "capsule", "pill",
	"dose", "dosage", "mg", "prescribed", "prescription",
}

// ExtractMedications scans parsed sections for medication names: bulleted
// terms whose definitions introduce them as medications, then a permissive
// capitalized-word pass over all section text. Deduplicated case-insensitively
// preserving first appearance. Over- and under-extraction is accepted; this
// is a best-effort scan, not clinical named-entity recognition.
func ExtractMedications(sections []Section) []string {
	seen := make(map[string]struct{})
	var medications []string

	add := func(name string) {
		name = displayCase(strings.TrimSpace(name))
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		medications = append(medications, name)
	}

	for _, section := range sections {
		for _, term := range section.Terms {
			if isMedicationTerm(term) {
				add(firstWord(term.Name))
			}
		}
	}

	for _, section := range sections {
		if section.Body == NotProvided {
			continue
		}
		for _, token := range strings.FieldsFunc(section.Body, isTokenBoundary) {
			if isMedicationCandidate(token) {
				add(token)
			}
		}
	}

	return medications
}

func isMedicationTerm(term Term) bool {
	definition := strings.ToLower(term.Definition)
	for _, cue := range medicationCues {
		if strings.Contains(definition, cue) {
			return true
		}
	}
	return false
}

// isMedicationCandidate keeps capitalized words with a lowercase tail of at
// least three letters that are not known non-drug words.
func isMedicationCandidate(token string) bool {
	runes := []rune(token)
	if len(runes) < 4 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	_, stop := medicationStopwords[strings.ToLower(token)]
	return !stop
}

func isTokenBoundary(r rune) bool {
	return !unicode.IsLetter(r)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// displayCase upper-cases the first rune, leaving the rest as written.
func displayCase(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// SymptomsIn reports which known symptom keywords occur in the transcript,
// in the keyword list's deterministic order.
func SymptomsIn(transcript string, keywords []string) []string {
	lower := strings.ToLower(transcript)
	var found []string
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			found = append(found, keyword)
		}
	}
	return found
}
