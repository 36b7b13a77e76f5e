package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultRootPathConstant = "."
	reportFilePermissions   = fs.FileMode(0o644)

	rootNotDirectoryErrorConstant = "audit root is not a directory"
	unknownSectionErrorTemplate   = "unknown audit section %q"
	answersPromptErrorTemplate    = "unable to read questionnaire answers: %w"
	writeReportErrorTemplate      = "unable to write report: %w"

	auditStartedMessageConstant       = "Audit started"
	techDebtCompletedMessageConstant  = "Technical debt analysis complete"
	opportunitiesCompletedMessage     = "Opportunity analysis complete"
	answersResolvedMessageConstant    = "Questionnaire answers resolved"
	reportWrittenMessageConstant      = "Audit report written"
	logFieldRootConstant              = "root"
	logFieldSectionsConstant          = "sections"
	logFieldTotalConstant             = "total"
	logFieldHighConstant              = "high"
	logFieldQuickWinsConstant         = "quick_wins"
	logFieldAnswersSourceConstant     = "source"
	logFieldRawAnswersConstant        = "raw_answers"
	logFieldFindingsConstant          = "findings"
	logFieldOutputConstant            = "output"
	answersSourceFlagConstant         = "flag"
	answersSourcePromptConstant       = "prompt"
	answersSourceDefaultConstant      = "default"
	standardOutputDescriptionConstant = "stdout"
)

// DefaultSections lists every section in execution order.
func DefaultSections() []Section {
	return []Section{SectionTechDebt, SectionOpportunities}
}

// ParseSection validates a section name.
func ParseSection(value string) (Section, error) {
	normalized := Section(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case SectionTechDebt, SectionOpportunities:
		return normalized, nil
	default:
		return "", fmt.Errorf(unknownSectionErrorTemplate, value)
	}
}

// Service runs the audit reasoning engine over a project and emits the report.
type Service struct {
	fileSystem   FileSystem
	walker       SourceFileWalker
	prompter     AnswerPrompter
	outputWriter io.Writer
	logger       *zap.Logger
	clock        Clock
}

// NewService constructs a Service using the provided dependencies.
func NewService(fileSystem FileSystem, walker SourceFileWalker, prompter AnswerPrompter, outputWriter io.Writer, logger *zap.Logger, clock Clock) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fileSystem:   fileSystem,
		walker:       walker,
		prompter:     prompter,
		outputWriter: outputWriter,
		logger:       logger,
		clock:        clock,
	}
}

// Run executes the audit and writes the report.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (AuditReport, error) {
	clock := options.Clock
	if clock == nil {
		clock = service.clock
	}
	startedAt := clock.Now()

	root, rootError := service.resolveRoot(options.Root)
	if rootError != nil {
		return AuditReport{}, rootError
	}

	sections := options.Sections
	if len(sections) == 0 {
		sections = DefaultSections()
	}
	service.logger.Info(auditStartedMessageConstant, zap.String(logFieldRootConstant, root), zap.Strings(logFieldSectionsConstant, sectionNames(sections)))

	facts, factsError := NewFactsLoader(service.fileSystem).Load(options.FactsPath)
	if factsError != nil {
		return AuditReport{}, factsError
	}

	report := AuditReport{
		Metadata:             NewAuditMetadata(root, startedAt),
		Findings:             []AuditFinding{},
		FeatureOpportunities: []FeatureOpportunity{},
	}

	var findings []AuditFinding
	for _, section := range sections {
		if contextError := executionContext.Err(); contextError != nil {
			return AuditReport{}, contextError
		}
		switch section {
		case SectionTechDebt:
			scanner := NewTechDebtScanner(root, service.walker, service.fileSystem, service.logger)
			techDebt, scanError := scanner.Analyze(facts.Dependencies)
			if scanError != nil {
				return AuditReport{}, scanError
			}
			report.TechDebt = &techDebt
			findings = append(findings, techDebt.ToFindings()...)
			service.logger.Info(techDebtCompletedMessageConstant, zap.Int(logFieldTotalConstant, techDebt.TotalItems), zap.Int(logFieldHighConstant, techDebt.HighSeverityCount))
		case SectionOpportunities:
			builder := NewContextBuilder(root, service.fileSystem, service.logger)
			opportunityContext := builder.BuildContext(facts.API, facts.Tests, facts.Documentation, facts.ArchitectureGaps)
			opportunities := NewOpportunityRuleEngine(nil).Analyze(opportunityContext)
			report.Opportunities = &opportunities
			report.FeatureOpportunities = opportunities.Opportunities
			service.logger.Info(opportunitiesCompletedMessage, zap.Int(logFieldTotalConstant, opportunities.TotalOpportunities), zap.Int(logFieldQuickWinsConstant, opportunities.HighValueCount))
		default:
			return AuditReport{}, fmt.Errorf(unknownSectionErrorTemplate, section)
		}
	}
	findings = append(findings, facts.Findings...)

	session := NewInteractiveSessionWithConfig(options.Interactive)
	answers, answersError := service.resolveAnswers(session, options)
	if answersError != nil {
		return AuditReport{}, answersError
	}
	report.Answers = answers
	report.Findings = session.RefineFindings(findings, answers)
	report.Counts = CountFindings(report.Findings)
	report.Metadata.DurationMilliseconds = clock.Now().Sub(startedAt).Milliseconds()

	if writeError := service.writeReport(report, options); writeError != nil {
		return AuditReport{}, writeError
	}
	return report, nil
}

func (service *Service) resolveRoot(candidateRoot string) (string, error) {
	root := strings.TrimSpace(candidateRoot)
	if len(root) == 0 {
		root = defaultRootPathConstant
	}

	absoluteRoot, absError := service.fileSystem.Abs(root)
	if absError != nil {
		return "", newError(ErrorKindIO, root, absError)
	}

	info, statError := service.fileSystem.Stat(absoluteRoot)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return "", newError(ErrorKindPathNotFound, absoluteRoot, nil)
		}
		return "", newError(ErrorKindIO, absoluteRoot, statError)
	}
	if !info.IsDir() {
		return "", newError(ErrorKindInvalidStructure, absoluteRoot, errors.New(rootNotDirectoryErrorConstant))
	}
	return absoluteRoot, nil
}

func (service *Service) resolveAnswers(session *InteractiveSession, options CommandOptions) (UserAnswers, error) {
	if len(strings.TrimSpace(options.Answers)) > 0 {
		answers := session.ParseResponse(options.Answers)
		service.logAnswers(answersSourceFlagConstant, answers)
		return answers, nil
	}

	if !session.ShouldAskQuestions(options.Confidence) || service.prompter == nil {
		answers := DefaultUserAnswers()
		service.logAnswers(answersSourceDefaultConstant, answers)
		return answers, nil
	}

	answers, promptError := session.Run(options.Confidence, service.prompter)
	if promptError != nil {
		return UserAnswers{}, newError(ErrorKindIO, "", fmt.Errorf(answersPromptErrorTemplate, promptError))
	}
	service.logAnswers(answersSourcePromptConstant, answers)
	return answers, nil
}

func (service *Service) logAnswers(source string, answers UserAnswers) {
	service.logger.Info(answersResolvedMessageConstant, zap.String(logFieldAnswersSourceConstant, source), zap.Strings(logFieldRawAnswersConstant, answers.RawAnswers))
}

func (service *Service) writeReport(report AuditReport, options CommandOptions) error {
	outputPath := strings.TrimSpace(options.OutputPath)
	destination := standardOutputDescriptionConstant
	switch {
	case len(outputPath) > 0:
		encoded, encodeError := EncodeReport(report, options.Format)
		if encodeError != nil {
			return encodeError
		}
		if writeError := service.fileSystem.WriteFile(outputPath, encoded, reportFilePermissions); writeError != nil {
			return newError(ErrorKindIO, outputPath, fmt.Errorf(writeReportErrorTemplate, writeError))
		}
		destination = outputPath
	case service.outputWriter != nil:
		if writeError := WriteReport(service.outputWriter, report, options.Format); writeError != nil {
			return newError(ErrorKindIO, "", fmt.Errorf(writeReportErrorTemplate, writeError))
		}
	}

	service.logger.Info(reportWrittenMessageConstant, zap.String(logFieldOutputConstant, destination), zap.Int(logFieldFindingsConstant, len(report.Findings)))
	return nil
}

func sectionNames(sections []Section) []string {
	names := make([]string, 0, len(sections))
	for _, section := range sections {
		names = append(names, string(section))
	}
	return names
}
