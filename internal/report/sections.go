package report

import "strings"

// Section selects one renderer block of the report.
type Section string

const (
	SectionOverview   Section = "overview"   // platform statistics
	SectionEngagement Section = "engagement" // WAU trend + activity heatmap
	SectionAdoption   Section = "adoption"   // site distribution
	SectionFeatures   Section = "features"   // usage label distribution
	SectionAskAI      Section = "askai"      // AskAI sites + keywords
)

// AllSections returns every section in render order.
func AllSections() []Section {
	return []Section{
		SectionOverview,
		SectionEngagement,
		SectionAdoption,
		SectionFeatures,
		SectionAskAI,
	}
}

// ParseSections turns a comma-separated selector into the section set. An
// empty selector means everything; unknown names are ignored rather than
// rejected, so stale renderer links keep working.
func ParseSections(raw string) map[Section]bool {
	selected := make(map[Section]bool)
	if strings.TrimSpace(raw) == "" {
		for _, s := range AllSections() {
			selected[s] = true
		}
		return selected
	}

	known := make(map[Section]bool, len(AllSections()))
	for _, s := range AllSections() {
		known[s] = true
	}
	for _, part := range strings.Split(raw, ",") {
		s := Section(strings.ToLower(strings.TrimSpace(part)))
		if known[s] {
			selected[s] = true
		}
	}
	if len(selected) == 0 {
		for _, s := range AllSections() {
			selected[s] = true
		}
	}
	return selected
}
