package domain

import (
	"strings"

	"github.com/fatih/camelcase"
)

// SourceType classifies where a citation comes from.
type SourceType string

const (
	SourceTypeRallySpeech       SourceType = "Rally Speech"
	SourceTypeCampaignWebsite   SourceType = "Campaign Website"
	SourceTypeInterview         SourceType = "Interview"
	SourceTypeSocialMedia       SourceType = "Social Media"
	SourceTypePolicyDocument    SourceType = "Policy Document"
	SourceTypeDebate            SourceType = "Debate"
	SourceTypePressConference   SourceType = "Press Conference"
	SourceTypeOfficialStatement SourceType = "Official Statement"
	SourceTypeOther             SourceType = "Other"
)

// ValidSourceTypes enumerates all recognized source types in display order.
var ValidSourceTypes = []SourceType{
	SourceTypeRallySpeech,
	SourceTypeCampaignWebsite,
	SourceTypeInterview,
	SourceTypeSocialMedia,
	SourceTypePolicyDocument,
	SourceTypeDebate,
	SourceTypePressConference,
	SourceTypeOfficialStatement,
	SourceTypeOther,
}

// ParseSourceType maps a stored or configured name onto a SourceType.
// It accepts the display form ("Official Statement"), the constant form
// ("OFFICIAL_STATEMENT") and the camel-case form ("OfficialStatement").
// Unknown names map to SourceTypeOther.
func ParseSourceType(name string) SourceType {
	key := sourceTypeKey(name)
	if key == "" {
		return SourceTypeOther
	}
	for _, st := range ValidSourceTypes {
		if sourceTypeKey(string(st)) == key {
			return st
		}
	}
	return SourceTypeOther
}

// IsKnownSourceType reports whether name resolves to a declared type
// rather than falling through to Other.
func IsKnownSourceType(name string) bool {
	st := ParseSourceType(name)
	return st != SourceTypeOther || sourceTypeKey(name) == "other"
}

func sourceTypeKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var words []string
	for _, field := range strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}) {
		if strings.ToUpper(field) == field {
			words = append(words, field)
			continue
		}
		words = append(words, camelcase.Split(field)...)
	}
	return strings.ToLower(strings.Join(words, " "))
}

// Source is a citation backing one or more promises. The persistence layer
// owns it; the validation pipeline reads every field and rewrites URL,
// Title, Type and ReliabilityScore only during auto-repair.
type Source struct {
	ID               int64      `json:"id"`
	URL              string     `json:"url"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Type             SourceType `json:"source_type"`
	ReliabilityScore float64    `json:"reliability_score"`
	PromiseIDs       []int64    `json:"promise_ids"`
}

// LinkedPromise is the promise text a placeholder source is matched against.
type LinkedPromise struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// RepairCandidate is a placeholder-domain source joined to its promises.
type RepairCandidate struct {
	Source   Source          `json:"source"`
	Promises []LinkedPromise `json:"promises"`
}

// SourceUpdate carries the fields auto-repair rewrites in place.
type SourceUpdate struct {
	URL              string
	Title            string
	Type             SourceType
	ReliabilityScore float64
}

// TypeCount is one row of the per-type source breakdown.
type TypeCount struct {
	Type  SourceType `json:"source_type"`
	Count int        `json:"count"`
}
