package feedback

import (
	"strings"

	"github.com/MrWong99/salespractice/internal/catalog"
)

// ResearchSource is the source attributed to model-generated research.
const ResearchSource = "AI Research Assistant"

// ParseResearch extracts the SUMMARY: and KEY POINTS: sections of a research
// reply. Missing pieces are filled with generic text mentioning query. The
// returned record carries no timestamp.
func ParseResearch(query, text string) catalog.ResearchData {
	summary := researchSummary(text)
	points := researchPoints(text)

	switch {
	case summary == "" && len(points) == 0:
		summary = "Research completed for: " + query
		points = []string{
			"General information gathered about the topic",
			"Key business considerations identified",
			"Potential value propositions outlined",
			"Competitive landscape reviewed",
			"Market opportunities assessed",
		}
	case summary == "":
		summary = "Research summary for " + query
	case len(points) == 0:
		points = []string{
			"Key information gathered about the topic",
			"Business context and background researched",
			"Relevant talking points identified",
		}
	}

	return catalog.ResearchData{
		Query:     query,
		Summary:   summary,
		KeyPoints: points,
		Sources:   []string{ResearchSource},
	}
}

// researchSummary returns the text after SUMMARY: up to the end of its line
// or an inline KEY POINTS: marker, whichever comes first.
func researchSummary(text string) string {
	_, rest, ok := strings.Cut(text, "SUMMARY:")
	if !ok {
		return ""
	}
	rest = strings.TrimLeft(rest, " \t\r\n")
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.Index(rest, "KEY POINTS:"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

// researchPoints returns the bullet items of the block after KEY POINTS:,
// which ends at the first blank line.
func researchPoints(text string) []string {
	_, rest, ok := strings.Cut(text, "KEY POINTS:")
	if !ok {
		return nil
	}
	rest = strings.TrimLeft(rest, " \t\r\n")
	rest = strings.ReplaceAll(rest, "\r\n", "\n")
	if i := strings.Index(rest, "\n\n"); i >= 0 {
		rest = rest[:i]
	}
	var out []string
	for _, l := range strings.Split(rest, "\n") {
		if item, ok := bullet(l); ok {
			out = append(out, item)
		}
	}
	return out
}
