package audit

import "fmt"

const (
	opportunityIDTemplateConstant = "FEAT-%03d"

	noOpportunitiesObservationConstant               = "No significant feature opportunities detected. The project appears well-equipped."
	opportunitySummaryObservationTemplateConstant    = "Found %d feature opportunity(ies), %d of which are low-complexity quick wins."
	apiOpportunitiesObservationConstant              = "API-related opportunities detected. Consider improving API documentation and reliability."
	testingOpportunitiesObservationConstant          = "Testing-related opportunities detected. Consider expanding test coverage and adding benchmarks."
	developerExperienceObservationConstant           = "Developer experience opportunities detected. Consider improving tooling and automation."
	continuousIntegrationCoverageObservationConstant = "CI/CD is configured but test coverage reporting is not. Consider adding coverage tracking."
)

var (
	apiOpportunityTitleFragments                 = []string{"Health Check", "OpenAPI", "Rate Limiting"}
	testingOpportunityTitleFragments             = []string{"Test", "Coverage", "Benchmark"}
	developerExperienceOpportunityTitleFragments = []string{"Lint", "Pre-commit", "Shell Completions", "Docker Compose"}
)

// OpportunityContext is the immutable snapshot the opportunity predicates read.
// A nil analysis means the upstream analyzer did not run; predicates depending on it never match.
type OpportunityContext struct {
	API              *APIAnalysis
	Tests            *TestAnalysis
	Documentation    *DocumentationAnalysis
	ArchitectureGaps *ArchitectureGapsAnalysis

	HasCICD              bool
	HasDockerfile        bool
	HasDockerCompose     bool
	HasLintingConfig     bool
	HasPreCommitHooks    bool
	HasOpenAPIDocs       bool
	HasHealthCheck       bool
	HasMigrations        bool
	HasCoverageConfig    bool
	HasBenchmarks        bool
	HasShellCompletions  bool
	HasStructuredLogging bool
	HasRateLimiting      bool
	HasAuthentication    bool
}

// OpportunityAnalysis is the outcome of evaluating the catalog.
type OpportunityAnalysis struct {
	Opportunities      []FeatureOpportunity `json:"opportunities" yaml:"opportunities"`
	TotalOpportunities int                  `json:"total_opportunities" yaml:"total_opportunities"`
	HighValueCount     int                  `json:"high_value_count" yaml:"high_value_count"`
	Observations       []string             `json:"observations" yaml:"observations"`
}

// OpportunityRuleEngine evaluates a static catalog of opportunity patterns.
type OpportunityRuleEngine struct {
	catalog []OpportunityPattern
}

// NewOpportunityRuleEngine constructs an engine over the provided catalog, or the default catalog when none is given.
func NewOpportunityRuleEngine(catalog []OpportunityPattern) *OpportunityRuleEngine {
	if catalog == nil {
		catalog = DefaultOpportunityCatalog()
	}
	return &OpportunityRuleEngine{catalog: catalog}
}

// Analyze evaluates every pattern against the context. Identifiers follow the position in the emitted list.
func (engine *OpportunityRuleEngine) Analyze(context OpportunityContext) OpportunityAnalysis {
	matched := make([]OpportunityPattern, 0, len(engine.catalog))
	for _, pattern := range engine.catalog {
		if pattern.Matches != nil && pattern.Matches(context) {
			matched = append(matched, pattern)
		}
	}

	analysis := OpportunityAnalysis{Opportunities: make([]FeatureOpportunity, 0, len(matched))}
	for patternIndex, pattern := range matched {
		opportunity := FeatureOpportunity{
			ID:               fmt.Sprintf(opportunityIDTemplateConstant, patternIndex+1),
			Title:            pattern.Title,
			Rationale:        pattern.Rationale,
			Complexity:       pattern.Complexity,
			SuggestedStories: cloneStories(pattern.Stories),
		}
		if opportunity.Complexity == ComplexityLow {
			analysis.HighValueCount++
		}
		analysis.Opportunities = append(analysis.Opportunities, opportunity)
	}
	analysis.TotalOpportunities = len(analysis.Opportunities)
	analysis.Observations = opportunityObservations(analysis, context)
	return analysis
}

func opportunityObservations(analysis OpportunityAnalysis, context OpportunityContext) []string {
	if analysis.TotalOpportunities == 0 {
		return []string{noOpportunitiesObservationConstant}
	}

	observations := []string{
		fmt.Sprintf(opportunitySummaryObservationTemplateConstant, analysis.TotalOpportunities, analysis.HighValueCount),
	}
	if anyOpportunityTitleContains(analysis.Opportunities, apiOpportunityTitleFragments) {
		observations = append(observations, apiOpportunitiesObservationConstant)
	}
	if anyOpportunityTitleContains(analysis.Opportunities, testingOpportunityTitleFragments) {
		observations = append(observations, testingOpportunitiesObservationConstant)
	}
	if anyOpportunityTitleContains(analysis.Opportunities, developerExperienceOpportunityTitleFragments) {
		observations = append(observations, developerExperienceObservationConstant)
	}
	if context.HasCICD && !context.HasCoverageConfig && hasTestFiles(context) {
		observations = append(observations, continuousIntegrationCoverageObservationConstant)
	}
	return observations
}

func anyOpportunityTitleContains(opportunities []FeatureOpportunity, fragments []string) bool {
	for _, opportunity := range opportunities {
		if titleContainsAny(opportunity.Title, fragments...) {
			return true
		}
	}
	return false
}
