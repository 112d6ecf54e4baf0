package domain

import "strings"

// RepairReliability is the score given to every replacement source.
const RepairReliability = 0.95

// Replacement is a known-good source substituted for a placeholder when a
// linked promise mentions Keyword.
type Replacement struct {
	Keyword          string     `yaml:"keyword"           json:"keyword"`
	Title            string     `yaml:"title"             json:"title"`
	URL              string     `yaml:"url"               json:"url"`
	SourceType       SourceType `yaml:"source_type"       json:"source_type"`
	ReliabilityScore float64    `yaml:"reliability_score" json:"reliability_score"`
}

// DefaultReplacements is the built-in topic table, in match order.
func DefaultReplacements() []Replacement {
	return []Replacement{
		{
			Keyword:          "border",
			Title:            "Department of Homeland Security - Border Security",
			URL:              "https://www.dhs.gov/topic/border-security",
			SourceType:       SourceTypeOfficialStatement,
			ReliabilityScore: RepairReliability,
		},
		{
			Keyword:          "tax",
			Title:            "Internal Revenue Service - Tax Information",
			URL:              "https://www.irs.gov/",
			SourceType:       SourceTypeOfficialStatement,
			ReliabilityScore: RepairReliability,
		},
		{
			Keyword:          "healthcare",
			Title:            "Department of Health and Human Services",
			URL:              "https://www.hhs.gov/",
			SourceType:       SourceTypeOfficialStatement,
			ReliabilityScore: RepairReliability,
		},
		{
			Keyword:          "energy",
			Title:            "Department of Energy",
			URL:              "https://www.energy.gov/",
			SourceType:       SourceTypeOfficialStatement,
			ReliabilityScore: RepairReliability,
		},
		{
			Keyword:          "trade",
			Title:            "Office of the United States Trade Representative",
			URL:              "https://ustr.gov/",
			SourceType:       SourceTypeOfficialStatement,
			ReliabilityScore: RepairReliability,
		},
	}
}

// MatchReplacement picks the replacement for a placeholder source. Linked
// promises are tried in the given order; within a promise the table is
// scanned in declaration order against the lower-cased "text category".
// The first hit wins. ok is false when nothing matches.
func MatchReplacement(table []Replacement, promises []LinkedPromise) (Replacement, bool) {
	for _, p := range promises {
		haystack := strings.ToLower(p.Text + " " + p.Category)
		for _, r := range table {
			kw := strings.ToLower(strings.TrimSpace(r.Keyword))
			if kw != "" && strings.Contains(haystack, kw) {
				return r, true
			}
		}
	}
	return Replacement{}, false
}

// Update converts a replacement into the in-place source rewrite.
func (r Replacement) Update() SourceUpdate {
	return SourceUpdate{
		URL:              r.URL,
		Title:            r.Title,
		Type:             r.SourceType,
		ReliabilityScore: r.ReliabilityScore,
	}
}
