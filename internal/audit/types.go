package audit

import "time"

// Section identifies an independently selectable part of the audit.
type Section string

// Supported audit sections.
const (
	SectionTechDebt      Section = "tech_debt"
	SectionOpportunities Section = "opportunities"
)

// ReportFormat enumerates supported report encodings.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatYAML ReportFormat = "yaml"
)

// AuditFinding is a reported issue with severity, category, and recommendation.
type AuditFinding struct {
	ID             string   `json:"id" yaml:"id"`
	Severity       Severity `json:"severity" yaml:"severity"`
	Category       string   `json:"category" yaml:"category"`
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	AffectedFiles  []string `json:"affected_files" yaml:"affected_files"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
}

// SuggestedStory is a unit of work proposed to realise an opportunity.
type SuggestedStory struct {
	Title              string   `json:"title" yaml:"title"`
	Description        string   `json:"description" yaml:"description"`
	AcceptanceCriteria []string `json:"acceptance_criteria" yaml:"acceptance_criteria"`
	Priority           int      `json:"priority" yaml:"priority"`
}

// FeatureOpportunity is a missing-feature suggestion emitted by the opportunity rule engine.
type FeatureOpportunity struct {
	ID               string           `json:"id" yaml:"id"`
	Title            string           `json:"title" yaml:"title"`
	Rationale        string           `json:"rationale" yaml:"rationale"`
	Complexity       Complexity       `json:"complexity" yaml:"complexity"`
	SuggestedStories []SuggestedStory `json:"suggested_stories" yaml:"suggested_stories"`
}

// CommandOptions captures the configurable parameters for the audit command.
type CommandOptions struct {
	Root        string
	FactsPath   string
	OutputPath  string
	Format      ReportFormat
	Sections    []Section
	Answers     string
	Confidence  float64
	Interactive InteractiveConfig
	Clock       Clock
}

// Clock abstracts time-dependent functionality for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}

func cloneStories(stories []SuggestedStory) []SuggestedStory {
	cloned := make([]SuggestedStory, 0, len(stories))
	for _, story := range stories {
		story.AcceptanceCriteria = cloneStrings(story.AcceptanceCriteria)
		cloned = append(cloned, story)
	}
	return cloned
}
