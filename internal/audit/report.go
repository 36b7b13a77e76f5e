package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	auditVersionConstant = "1.0.0"

	jsonIndentPrefixConstant = ""
	jsonIndentConstant       = "  "
	yamlIndentConstant       = 2

	unsupportedFormatErrorTemplateConstant = "unsupported report format %q"
	encodeReportErrorTemplateConstant      = "unable to encode report: %w"
)

// AuditMetadata identifies a single audit run.
type AuditMetadata struct {
	AuditID              string    `json:"audit_id" yaml:"audit_id"`
	AuditVersion         string    `json:"audit_version" yaml:"audit_version"`
	Timestamp            time.Time `json:"timestamp" yaml:"timestamp"`
	ProjectRoot          string    `json:"project_root" yaml:"project_root"`
	DurationMilliseconds int64     `json:"duration_ms" yaml:"duration_ms"`
}

// FindingCounts tallies findings per severity.
type FindingCounts struct {
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
}

// AuditReport is the document emitted by the audit command.
type AuditReport struct {
	Metadata             AuditMetadata        `json:"metadata" yaml:"metadata"`
	Answers              UserAnswers          `json:"answers" yaml:"answers"`
	TechDebt             *TechDebtAnalysis    `json:"tech_debt,omitempty" yaml:"tech_debt,omitempty"`
	Opportunities        *OpportunityAnalysis `json:"opportunities,omitempty" yaml:"opportunities,omitempty"`
	Findings             []AuditFinding       `json:"findings" yaml:"findings"`
	FeatureOpportunities []FeatureOpportunity `json:"feature_opportunities" yaml:"feature_opportunities"`
	Counts               FindingCounts        `json:"counts" yaml:"counts"`
}

// NewAuditMetadata creates metadata with a fresh run identifier.
func NewAuditMetadata(projectRoot string, startedAt time.Time) AuditMetadata {
	return AuditMetadata{
		AuditID:      uuid.NewString(),
		AuditVersion: auditVersionConstant,
		Timestamp:    startedAt.UTC(),
		ProjectRoot:  projectRoot,
	}
}

// FindingsBySeverity returns the findings with the requested severity in report order.
func (report AuditReport) FindingsBySeverity(severity Severity) []AuditFinding {
	matching := make([]AuditFinding, 0)
	for _, finding := range report.Findings {
		if finding.Severity == severity {
			matching = append(matching, finding)
		}
	}
	return matching
}

// CountFindings tallies findings per severity. Unknown severities are ignored.
func CountFindings(findings []AuditFinding) FindingCounts {
	counts := FindingCounts{}
	for _, finding := range findings {
		switch finding.Severity {
		case SeverityCritical:
			counts.Critical++
		case SeverityHigh:
			counts.High++
		case SeverityMedium:
			counts.Medium++
		case SeverityLow:
			counts.Low++
		}
	}
	return counts
}

// EncodeReport renders the report in the requested format.
func EncodeReport(report AuditReport, format ReportFormat) ([]byte, error) {
	switch format {
	case ReportFormatJSON, "":
		encoded, encodeError := json.MarshalIndent(report, jsonIndentPrefixConstant, jsonIndentConstant)
		if encodeError != nil {
			return nil, fmt.Errorf(encodeReportErrorTemplateConstant, encodeError)
		}
		return append(encoded, '\n'), nil
	case ReportFormatYAML:
		var buffer bytes.Buffer
		encoder := yaml.NewEncoder(&buffer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(report); encodeError != nil {
			return nil, fmt.Errorf(encodeReportErrorTemplateConstant, encodeError)
		}
		if closeError := encoder.Close(); closeError != nil {
			return nil, fmt.Errorf(encodeReportErrorTemplateConstant, closeError)
		}
		return buffer.Bytes(), nil
	default:
		return nil, fmt.Errorf(unsupportedFormatErrorTemplateConstant, format)
	}
}

// WriteReport renders the report to writer.
func WriteReport(writer io.Writer, report AuditReport, format ReportFormat) error {
	encoded, encodeError := EncodeReport(report, format)
	if encodeError != nil {
		return encodeError
	}
	_, writeError := writer.Write(encoded)
	return writeError
}
