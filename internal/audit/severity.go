package audit

// Severity ranks how urgently a finding should be addressed.
type Severity string

// Severity values in ascending order of urgency.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the position of the severity in the order Low < Medium < High < Critical, or -1 when unknown.
func (severity Severity) Rank() int {
	rank, known := severityRanks[severity]
	if !known {
		return -1
	}
	return rank
}

// Less reports whether severity orders strictly before other.
func (severity Severity) Less(other Severity) bool {
	return severity.Rank() < other.Rank()
}

// ElevateSeverity moves a severity exactly one step up. Critical is absorbing.
func ElevateSeverity(severity Severity) Severity {
	switch severity {
	case SeverityLow:
		return SeverityMedium
	case SeverityMedium:
		return SeverityHigh
	case SeverityHigh, SeverityCritical:
		return SeverityCritical
	default:
		return severity
	}
}

// Complexity estimates the effort needed to implement an opportunity.
type Complexity string

// Complexity values in ascending order of effort.
const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)
