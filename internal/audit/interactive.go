package audit

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	defaultConfidenceThresholdConstant = 0.7
	minimumConfidenceThresholdConstant = 0.0
	maximumConfidenceThresholdConstant = 1.0

	questionCountConstant          = 4
	rawAnswerTemplateConstant      = "%d%c"
	structuredAnswerLengthConstant = 2
	answerSeparatorCommaConstant   = ','

	documentationCategoryKeywordConstant = "documentation"

	securityFocusPrefixConstant    = "[HIGH PRIORITY based on your security focus] "
	qualityFocusPrefixConstant     = "[HIGH PRIORITY based on your quality focus] "
	performanceFocusPrefixConstant = "[HIGH PRIORITY based on your performance focus] "
	speedFocusPrefixConstant       = "[Lower priority given speed focus] "
)

// ProjectPurpose answers question 1.
type ProjectPurpose string

// Supported project purposes.
const (
	ProjectPurposeInternalTool   ProjectPurpose = "internal_tool"
	ProjectPurposeCustomerFacing ProjectPurpose = "customer_facing"
	ProjectPurposeOpenSource     ProjectPurpose = "open_source"
	ProjectPurposePrototype      ProjectPurpose = "prototype"
)

// ProjectPriority answers question 2.
type ProjectPriority string

// Supported project priorities.
const (
	ProjectPrioritySpeed       ProjectPriority = "speed"
	ProjectPriorityQuality     ProjectPriority = "quality"
	ProjectPrioritySecurity    ProjectPriority = "security"
	ProjectPriorityPerformance ProjectPriority = "performance"
)

// TargetUsers answers question 3.
type TargetUsers string

// Supported target user groups.
const (
	TargetUsersDevelopers TargetUsers = "developers"
	TargetUsersEndUsers   TargetUsers = "end_users"
	TargetUsersEnterprise TargetUsers = "enterprise"
	TargetUsersMixed      TargetUsers = "mixed"
)

// ProjectStage answers question 4.
type ProjectStage string

// Supported project stages.
const (
	ProjectStageNew         ProjectStage = "new"
	ProjectStageActive      ProjectStage = "active"
	ProjectStageMaintenance ProjectStage = "maintenance"
	ProjectStageLegacy      ProjectStage = "legacy"
)

// QuestionOption is a lettered choice of a question.
type QuestionOption struct {
	Letter rune     `json:"letter" yaml:"letter"`
	Text   string   `json:"text" yaml:"text"`
	Tags   []string `json:"tags" yaml:"tags"`
}

// Question is one entry of the questionnaire.
type Question struct {
	Number  int              `json:"number" yaml:"number"`
	Text    string           `json:"text" yaml:"text"`
	Options []QuestionOption `json:"options" yaml:"options"`
}

// UserAnswers captures the questionnaire outcome. RawAnswers keeps the tokens that were applied, such as "1A".
type UserAnswers struct {
	Purpose     ProjectPurpose  `json:"purpose" yaml:"purpose"`
	Priority    ProjectPriority `json:"priority" yaml:"priority"`
	TargetUsers TargetUsers     `json:"target_users" yaml:"target_users"`
	Stage       ProjectStage    `json:"stage" yaml:"stage"`
	RawAnswers  []string        `json:"raw_answers" yaml:"raw_answers"`
}

// DefaultUserAnswers returns the answers used when the questionnaire is skipped.
func DefaultUserAnswers() UserAnswers {
	return UserAnswers{
		Purpose:     ProjectPurposePrototype,
		Priority:    ProjectPrioritySpeed,
		TargetUsers: TargetUsersDevelopers,
		Stage:       ProjectStageNew,
		RawAnswers:  []string{},
	}
}

// InteractiveConfig controls when the questionnaire is presented.
type InteractiveConfig struct {
	NoInteractive       bool
	SmartMode           bool
	ConfidenceThreshold float64
}

// NewInteractiveConfig returns the default configuration.
func NewInteractiveConfig() InteractiveConfig {
	return InteractiveConfig{ConfidenceThreshold: defaultConfidenceThresholdConstant}
}

// WithNoInteractive toggles skipping the questionnaire entirely.
func (config InteractiveConfig) WithNoInteractive(noInteractive bool) InteractiveConfig {
	config.NoInteractive = noInteractive
	return config
}

// WithSmartMode toggles asking only when confidence is below the threshold.
func (config InteractiveConfig) WithSmartMode(smartMode bool) InteractiveConfig {
	config.SmartMode = smartMode
	return config
}

// WithConfidenceThreshold sets the smart mode threshold clamped to [0, 1].
func (config InteractiveConfig) WithConfidenceThreshold(threshold float64) InteractiveConfig {
	config.ConfidenceThreshold = clampConfidence(threshold)
	return config
}

func clampConfidence(value float64) float64 {
	if value < minimumConfidenceThresholdConstant {
		return minimumConfidenceThresholdConstant
	}
	if value > maximumConfidenceThresholdConstant {
		return maximumConfidenceThresholdConstant
	}
	return value
}

// InteractiveSession presents the questionnaire and refines findings with the answers.
type InteractiveSession struct {
	config    InteractiveConfig
	questions []Question
}

// NewInteractiveSession constructs a session with the default configuration.
func NewInteractiveSession() *InteractiveSession {
	return NewInteractiveSessionWithConfig(NewInteractiveConfig())
}

// NewInteractiveSessionWithConfig constructs a session with the provided configuration.
func NewInteractiveSessionWithConfig(config InteractiveConfig) *InteractiveSession {
	config.ConfidenceThreshold = clampConfidence(config.ConfidenceThreshold)
	return &InteractiveSession{config: config, questions: defaultQuestions()}
}

// Questions returns the questionnaire in display order.
func (session *InteractiveSession) Questions() []Question {
	return append([]Question{}, session.questions...)
}

// ShouldAskQuestions reports whether the questionnaire should be presented for the given analysis confidence.
func (session *InteractiveSession) ShouldAskQuestions(confidence float64) bool {
	if session.config.NoInteractive {
		return false
	}
	if session.config.SmartMode {
		return confidence < session.config.ConfidenceThreshold
	}
	return true
}

// Run presents the questionnaire through the prompter when appropriate and parses the response.
func (session *InteractiveSession) Run(confidence float64, prompter AnswerPrompter) (UserAnswers, error) {
	if !session.ShouldAskQuestions(confidence) || prompter == nil {
		return DefaultUserAnswers(), nil
	}
	response, promptError := prompter.PromptAnswers(session.Questions())
	if promptError != nil {
		return UserAnswers{}, promptError
	}
	return session.ParseResponse(response), nil
}

// ParseResponse interprets answers such as "1A 2B", "A1,B2", or a bare letter sequence like "ABCD".
func (session *InteractiveSession) ParseResponse(input string) UserAnswers {
	answers := DefaultUserAnswers()
	normalized := strings.ToUpper(strings.TrimSpace(input))

	tokens := strings.FieldsFunc(normalized, func(character rune) bool {
		return unicode.IsSpace(character) || character == answerSeparatorCommaConstant
	})

	answered := [questionCountConstant]bool{}
	for _, token := range tokens {
		questionNumber, letter, parsed := parseAnswerToken(token)
		if !parsed || questionNumber < 1 || questionNumber > questionCountConstant {
			continue
		}
		if answered[questionNumber-1] {
			continue
		}
		answered[questionNumber-1] = true
		applyAnswer(&answers, questionNumber, letter)
	}

	if len(answers.RawAnswers) > 0 {
		return answers
	}

	questionNumber := 0
	for _, character := range normalized {
		if !isASCIILetter(character) {
			continue
		}
		questionNumber++
		if questionNumber > questionCountConstant {
			break
		}
		applyAnswer(&answers, questionNumber, character)
	}
	return answers
}

func parseAnswerToken(token string) (int, rune, bool) {
	characters := []rune(token)
	if len(characters) != structuredAnswerLengthConstant {
		return 0, 0, false
	}
	first, second := characters[0], characters[1]
	switch {
	case isASCIIDigit(first) && isASCIILetter(second):
		return int(first - '0'), second, true
	case isASCIILetter(first) && isASCIIDigit(second):
		return int(second - '0'), first, true
	default:
		return 0, 0, false
	}
}

func isASCIIDigit(character rune) bool {
	return character >= '0' && character <= '9'
}

func isASCIILetter(character rune) bool {
	return (character >= 'A' && character <= 'Z') || (character >= 'a' && character <= 'z')
}

func applyAnswer(answers *UserAnswers, questionNumber int, letter rune) {
	answers.RawAnswers = append(answers.RawAnswers, fmt.Sprintf(rawAnswerTemplateConstant, questionNumber, letter))
	switch questionNumber {
	case 1:
		answers.Purpose = pickOption(letter, []ProjectPurpose{ProjectPurposeInternalTool, ProjectPurposeCustomerFacing, ProjectPurposeOpenSource, ProjectPurposePrototype}, ProjectPurposePrototype)
	case 2:
		answers.Priority = pickOption(letter, []ProjectPriority{ProjectPrioritySpeed, ProjectPriorityQuality, ProjectPrioritySecurity, ProjectPriorityPerformance}, ProjectPrioritySpeed)
	case 3:
		answers.TargetUsers = pickOption(letter, []TargetUsers{TargetUsersDevelopers, TargetUsersEndUsers, TargetUsersEnterprise, TargetUsersMixed}, TargetUsersDevelopers)
	case 4:
		answers.Stage = pickOption(letter, []ProjectStage{ProjectStageNew, ProjectStageActive, ProjectStageMaintenance, ProjectStageLegacy}, ProjectStageActive)
	}
}

// pickOption maps A through D onto choices; any other letter selects fallback.
func pickOption[Choice any](letter rune, choices []Choice, fallback Choice) Choice {
	optionIndex := int(letter - 'A')
	if optionIndex < 0 || optionIndex >= len(choices) {
		return fallback
	}
	return choices[optionIndex]
}

// RefineFindings adjusts severity and annotates recommendations according to the answers.
// The returned slice preserves the order and identity of the input findings.
func (session *InteractiveSession) RefineFindings(findings []AuditFinding, answers UserAnswers) []AuditFinding {
	refined := make([]AuditFinding, 0, len(findings))
	for _, finding := range findings {
		finding.AffectedFiles = cloneStrings(finding.AffectedFiles)
		finding = adjustSeverityForAnswers(finding, answers)
		finding = annotateRecommendation(finding, answers)
		refined = append(refined, finding)
	}
	return refined
}

var (
	securityCategoryKeywords      = []string{"security", "vulnerability"}
	qualityCategoryKeywords       = []string{"debt", "quality", "maintainability"}
	performanceCategoryKeywords   = []string{"performance", "optimization"}
	modernizationCategoryKeywords = []string{"deprecated", "outdated"}
	stabilityCategoryKeywords     = []string{"breaking", "compatibility"}

	qualityPrefixCategoryKeywords = []string{"debt", "quality"}

	targetUserDocumentationSentences = map[TargetUsers]string{
		TargetUsersEndUsers:   "Consider adding user-focused documentation and guides.",
		TargetUsersDevelopers: "Include API documentation and code examples.",
		TargetUsersEnterprise: "Add enterprise deployment and integration guides.",
		TargetUsersMixed:      "Consider documentation for different audience levels.",
	}
)

func adjustSeverityForAnswers(finding AuditFinding, answers UserAnswers) AuditFinding {
	category := strings.ToLower(finding.Category)

	switch answers.Priority {
	case ProjectPrioritySecurity:
		if containsAnySubstring(category, securityCategoryKeywords) || strings.Contains(strings.ToLower(finding.Title), securityCategoryKeywords[0]) {
			finding.Severity = ElevateSeverity(finding.Severity)
		}
	case ProjectPriorityQuality:
		if containsAnySubstring(category, qualityCategoryKeywords) {
			finding.Severity = ElevateSeverity(finding.Severity)
		}
	case ProjectPriorityPerformance:
		if containsAnySubstring(category, performanceCategoryKeywords) || strings.Contains(strings.ToLower(finding.Title), performanceCategoryKeywords[0]) {
			finding.Severity = ElevateSeverity(finding.Severity)
		}
	}

	switch answers.Purpose {
	case ProjectPurposeCustomerFacing, ProjectPurposeOpenSource:
		if strings.Contains(category, documentationCategoryKeywordConstant) {
			finding.Severity = ElevateSeverity(finding.Severity)
		}
	}

	switch answers.Stage {
	case ProjectStageLegacy:
		if containsAnySubstring(category, modernizationCategoryKeywords) {
			finding.Severity = ElevateSeverity(finding.Severity)
		}
	case ProjectStageMaintenance:
		if containsAnySubstring(category, stabilityCategoryKeywords) {
			finding.Severity = ElevateSeverity(finding.Severity)
		}
	}

	return finding
}

// annotateRecommendation appends the audience sentence and then prepends the priority tag.
func annotateRecommendation(finding AuditFinding, answers UserAnswers) AuditFinding {
	if strings.Contains(finding.Category, documentationCategoryKeywordConstant) {
		if sentence, known := targetUserDocumentationSentences[answers.TargetUsers]; known {
			finding.Recommendation = finding.Recommendation + " " + sentence
		}
	}

	switch answers.Priority {
	case ProjectPrioritySecurity:
		if strings.Contains(finding.Category, securityCategoryKeywords[0]) {
			finding.Recommendation = securityFocusPrefixConstant + finding.Recommendation
		}
	case ProjectPriorityQuality:
		if containsAnySubstring(finding.Category, qualityPrefixCategoryKeywords) {
			finding.Recommendation = qualityFocusPrefixConstant + finding.Recommendation
		}
	case ProjectPriorityPerformance:
		if strings.Contains(finding.Category, performanceCategoryKeywords[0]) {
			finding.Recommendation = performanceFocusPrefixConstant + finding.Recommendation
		}
	case ProjectPrioritySpeed:
		if finding.Severity == SeverityLow {
			finding.Recommendation = speedFocusPrefixConstant + finding.Recommendation
		}
	}

	return finding
}

func defaultQuestions() []Question {
	return []Question{
		{
			Number: 1,
			Text:   "What is the primary purpose of this project?",
			Options: []QuestionOption{
				{Letter: 'A', Text: "Internal tool for our team/organization", Tags: []string{"internal", "tooling"}},
				{Letter: 'B', Text: "Customer-facing product or service", Tags: []string{"customer", "production"}},
				{Letter: 'C', Text: "Open source library or framework", Tags: []string{"opensource", "library"}},
				{Letter: 'D', Text: "Prototype or proof of concept", Tags: []string{"prototype", "experimental"}},
			},
		},
		{
			Number: 2,
			Text:   "What is your main priority for this codebase?",
			Options: []QuestionOption{
				{Letter: 'A', Text: "Speed of development (move fast)", Tags: []string{"speed", "velocity"}},
				{Letter: 'B', Text: "Code quality and maintainability", Tags: []string{"quality", "maintainability"}},
				{Letter: 'C', Text: "Security and compliance", Tags: []string{"security", "compliance"}},
				{Letter: 'D', Text: "Performance and scalability", Tags: []string{"performance", "scalability"}},
			},
		},
		{
			Number: 3,
			Text:   "Who are the primary users of this software?",
			Options: []QuestionOption{
				{Letter: 'A', Text: "Developers or technical users", Tags: []string{"developers", "technical"}},
				{Letter: 'B', Text: "Non-technical end users", Tags: []string{"endusers", "ux"}},
				{Letter: 'C', Text: "Enterprise customers", Tags: []string{"enterprise", "business"}},
				{Letter: 'D', Text: "Mixed audience (all of the above)", Tags: []string{"mixed", "general"}},
			},
		},
		{
			Number: 4,
			Text:   "What is the current stage of this project?",
			Options: []QuestionOption{
				{Letter: 'A', Text: "New project, just getting started", Tags: []string{"new", "greenfield"}},
				{Letter: 'B', Text: "Active development with regular releases", Tags: []string{"active", "developing"}},
				{Letter: 'C', Text: "Maintenance mode (bug fixes only)", Tags: []string{"maintenance", "stable"}},
				{Letter: 'D', Text: "Legacy system (needs modernization)", Tags: []string{"legacy", "modernization"}},
			},
		},
	}
}
