package summary

import (
	"strings"
)

const (
	SectionSummary         = "Summary of Visit"
	SectionTerms           = "Terms Explained"
	SectionRecommendations = "Recommendations"

	// NotProvided fills a section the provider failed to emit. Sections are
	// never omitted from the result structure.
	NotProvided = "Not provided."
)

var sectionTitles = []string{SectionSummary, SectionTerms, SectionRecommendations}

// Term is one parsed `name = definition` bullet under Terms Explained.
type Term struct {
	Name       string
	Definition string
}

// Section is one of the three fixed response sections in order.
type Section struct {
	Title string
	Body  string
	Terms []Term
}

// ParseSections splits a provider reply at the `**Title**` markers. Text
// between consecutive markers belongs to the preceding section; a missing
// marker yields the NotProvided placeholder. Always returns all three
// sections in fixed order.
func ParseSections(text string) []Section {
	lower := strings.ToLower(text)

	type span struct {
		title string
		start int // body start, after the marker
		order int // position of the marker itself
	}
	spans := make([]span, 0, len(sectionTitles))
	for _, title := range sectionTitles {
		marker := "**" + strings.ToLower(title) + "**"
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		spans = append(spans, span{title: title, start: idx + len(marker), order: idx})
	}

	bodies := make(map[string]string, len(spans))
	for _, sp := range spans {
		end := len(text)
		for _, other := range spans {
			if other.order > sp.order && other.order < end {
				end = other.order
			}
		}
		bodies[sp.title] = strings.TrimSpace(text[sp.start:end])
	}

	sections := make([]Section, 0, len(sectionTitles))
	for _, title := range sectionTitles {
		body, ok := bodies[title]
		if !ok || body == "" {
			body = NotProvided
		}
		section := Section{Title: title, Body: body}
		if title == SectionTerms && body != NotProvided {
			section.Terms = parseTerms(body)
		}
		sections = append(sections, section)
	}
	return sections
}

// parseTerms recognizes bulleted `term = definition` lines. Bullets that do
// not match stay in the body as plain text so no clinical information is
// dropped over a formatting mismatch.
func parseTerms(body string) []Term {
	var terms []Term
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		stripped, ok := stripBullet(line)
		if !ok {
			continue
		}
		name, definition, found := strings.Cut(stripped, "=")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		definition = strings.TrimSpace(definition)
		if name == "" || definition == "" {
			continue
		}
		terms = append(terms, Term{Name: name, Definition: definition})
	}
	return terms
}

func stripBullet(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "- "):
		return strings.TrimSpace(line[2:]), true
	case strings.HasPrefix(line, "-"):
		return strings.TrimSpace(line[1:]), true
	case strings.HasPrefix(line, "•"):
		return strings.TrimSpace(strings.TrimPrefix(line, "•")), true
	default:
		return "", false
	}
}

// RenderSections reassembles parsed sections into the markdown text the UI
// renders, with every section present.
func RenderSections(sections []Section) string {
	var b strings.Builder
	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("**" + section.Title + "**\n\n")
		b.WriteString(section.Body)
	}
	return b.String()
}
