package audit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/temirov/codeaudit/internal/sourcewalk"
)

const (
	techDebtCategoryConstant          = "tech_debt"
	techDebtFindingIDTemplateConstant = "DEBT-%03d"

	minimumCommentedCodeRunLengthConstant = 3

	techDebtWalkErrorTemplateConstant = "unable to walk source files under %s: %w"

	unreadableFileLogMessageConstant    = "Skipping unreadable source file"
	nonUTF8FileLogMessageConstant       = "Skipping non UTF-8 source file"
	techDebtPassCompleteMessageConstant = "Technical debt pass complete"
	logFieldPathConstant                = "path"
	logFieldPassConstant                = "pass"
	logFieldItemsConstant               = "items"

	noTechDebtObservationConstant              = "No significant technical debt detected."
	techDebtSummaryObservationTemplateConstant = "Found %d technical debt item(s): %d high severity, %d medium, %d low."
	commentMarkerObservationTemplateConstant   = "Comment markers: %d TODO(s), %d FIXME(s), %d HACK(s). Consider creating tracked issues."
	outdatedObservationTemplateConstant        = "%d outdated dependency(ies). Regular updates reduce security risk."
	deadCodeObservationTemplateConstant        = "%d dead code indicator(s). Consider cleanup to improve maintainability."
	commentedCodeObservationTemplateConstant   = "%d block(s) of commented out code. Use version control instead."

	lineFeedConstant       = "\n"
	carriageReturnConstant = "\r"
)

// TechDebtType classifies a technical debt signal.
type TechDebtType string

// Supported technical debt types.
const (
	TechDebtTypeTodoComment        TechDebtType = "todo_comment"
	TechDebtTypeFixmeComment       TechDebtType = "fixme_comment"
	TechDebtTypeHackComment        TechDebtType = "hack_comment"
	TechDebtTypeXxxComment         TechDebtType = "xxx_comment"
	TechDebtTypeOutdatedDependency TechDebtType = "outdated_dependency"
	TechDebtTypeDeprecatedCode     TechDebtType = "deprecated_code"
	TechDebtTypeDeadCode           TechDebtType = "dead_code"
	TechDebtTypeCommentedOutCode   TechDebtType = "commented_out_code"
	TechDebtTypeTemporaryCode      TechDebtType = "temporary_code"
)

// Title returns the human readable finding title for the debt type.
func (debtType TechDebtType) Title() string {
	title, known := debtTypeTitles[debtType]
	if !known {
		return string(debtType)
	}
	return title
}

// TechDebtItem is a single technical debt signal. Line is zero when the item has no source line.
type TechDebtItem struct {
	DebtType       TechDebtType `json:"debt_type" yaml:"debt_type"`
	File           string       `json:"file" yaml:"file"`
	Line           int          `json:"line,omitempty" yaml:"line,omitempty"`
	Content        string       `json:"content" yaml:"content"`
	Severity       Severity     `json:"severity" yaml:"severity"`
	Recommendation string       `json:"recommendation" yaml:"recommendation"`
}

// TechDebtAnalysis aggregates the items found by every scanner pass.
type TechDebtAnalysis struct {
	Items               []TechDebtItem `json:"items" yaml:"items"`
	TypeCounts          map[string]int `json:"type_counts" yaml:"type_counts"`
	TotalItems          int            `json:"total_items" yaml:"total_items"`
	HighSeverityCount   int            `json:"high_severity_count" yaml:"high_severity_count"`
	MediumSeverityCount int            `json:"medium_severity_count" yaml:"medium_severity_count"`
	LowSeverityCount    int            `json:"low_severity_count" yaml:"low_severity_count"`
	Observations        []string       `json:"observations" yaml:"observations"`
}

// TechDebtScanner inspects source text beneath a root for technical debt signals.
type TechDebtScanner struct {
	root       string
	walker     SourceFileWalker
	fileReader FileReader
	logger     *zap.Logger
}

// NewTechDebtScanner constructs a scanner. A nil logger disables logging.
func NewTechDebtScanner(root string, walker SourceFileWalker, fileReader FileReader, logger *zap.Logger) *TechDebtScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TechDebtScanner{root: root, walker: walker, fileReader: fileReader, logger: logger}
}

type scanPass struct {
	name string
	run  func(*[]TechDebtItem) error
}

// Analyze runs every pass and aggregates the results. Each pass walks the tree on its own.
func (scanner *TechDebtScanner) Analyze(dependencies *DependencyAnalysis) (TechDebtAnalysis, error) {
	items := []TechDebtItem{}

	passes := []scanPass{
		{name: "comment_markers", run: scanner.detectCommentMarkers},
		{name: "outdated_dependencies", run: func(collected *[]TechDebtItem) error {
			*collected = append(*collected, outdatedDependencyItems(dependencies)...)
			return nil
		}},
		{name: "dead_code", run: scanner.detectDeadCodeIndicators},
		{name: "commented_out_code", run: scanner.detectCommentedOutCode},
		{name: "temporary_code", run: scanner.detectTemporaryCode},
	}

	for _, pass := range passes {
		before := len(items)
		if passError := pass.run(&items); passError != nil {
			return TechDebtAnalysis{}, newError(ErrorKindIO, scanner.root, fmt.Errorf(techDebtWalkErrorTemplateConstant, scanner.root, passError))
		}
		scanner.logger.Debug(techDebtPassCompleteMessageConstant, zap.String(logFieldPassConstant, pass.name), zap.Int(logFieldItemsConstant, len(items)-before))
	}

	return AggregateTechDebt(items), nil
}

// AggregateTechDebt counts items by severity and type and derives observations.
func AggregateTechDebt(items []TechDebtItem) TechDebtAnalysis {
	analysis := TechDebtAnalysis{
		Items:      items,
		TypeCounts: map[string]int{},
		TotalItems: len(items),
	}
	for _, item := range items {
		switch {
		case !item.Severity.Less(SeverityHigh):
			analysis.HighSeverityCount++
		case item.Severity == SeverityMedium:
			analysis.MediumSeverityCount++
		case item.Severity == SeverityLow:
			analysis.LowSeverityCount++
		}
		analysis.TypeCounts[string(item.DebtType)]++
	}
	analysis.Observations = techDebtObservations(analysis)
	return analysis
}

// ToFindings converts items one to one into findings numbered in item order.
func (analysis TechDebtAnalysis) ToFindings() []AuditFinding {
	findings := make([]AuditFinding, 0, len(analysis.Items))
	for itemIndex, item := range analysis.Items {
		findings = append(findings, AuditFinding{
			ID:             fmt.Sprintf(techDebtFindingIDTemplateConstant, itemIndex+1),
			Severity:       item.Severity,
			Category:       techDebtCategoryConstant,
			Title:          item.DebtType.Title(),
			Description:    item.Content,
			AffectedFiles:  []string{item.File},
			Recommendation: item.Recommendation,
		})
	}
	return findings
}

func techDebtObservations(analysis TechDebtAnalysis) []string {
	if len(analysis.Items) == 0 {
		return []string{noTechDebtObservationConstant}
	}

	observations := []string{
		fmt.Sprintf(techDebtSummaryObservationTemplateConstant, analysis.TotalItems, analysis.HighSeverityCount, analysis.MediumSeverityCount, analysis.LowSeverityCount),
	}

	todoCount := analysis.TypeCounts[string(TechDebtTypeTodoComment)]
	fixmeCount := analysis.TypeCounts[string(TechDebtTypeFixmeComment)]
	hackCount := analysis.TypeCounts[string(TechDebtTypeHackComment)]
	if todoCount+fixmeCount+hackCount > 0 {
		observations = append(observations, fmt.Sprintf(commentMarkerObservationTemplateConstant, todoCount, fixmeCount, hackCount))
	}
	if count := analysis.TypeCounts[string(TechDebtTypeOutdatedDependency)]; count > 0 {
		observations = append(observations, fmt.Sprintf(outdatedObservationTemplateConstant, count))
	}
	if count := analysis.TypeCounts[string(TechDebtTypeDeadCode)]; count > 0 {
		observations = append(observations, fmt.Sprintf(deadCodeObservationTemplateConstant, count))
	}
	if count := analysis.TypeCounts[string(TechDebtTypeCommentedOutCode)]; count > 0 {
		observations = append(observations, fmt.Sprintf(commentedCodeObservationTemplateConstant, count))
	}
	return observations
}

// forEachSourceFile reads every source file and hands its lines to visit. Unreadable and non UTF-8 files are skipped.
func (scanner *TechDebtScanner) forEachSourceFile(visit func(sourceFile sourcewalk.SourceFile, lines []string)) error {
	return scanner.walker.WalkSourceFiles(scanner.root, func(sourceFile sourcewalk.SourceFile) error {
		contents, readError := scanner.fileReader.ReadFile(sourceFile.AbsolutePath)
		if readError != nil {
			scanner.logger.Debug(unreadableFileLogMessageConstant, zap.String(logFieldPathConstant, sourceFile.RelativePath), zap.Error(readError))
			return nil
		}
		if !utf8.Valid(contents) {
			scanner.logger.Debug(nonUTF8FileLogMessageConstant, zap.String(logFieldPathConstant, sourceFile.RelativePath))
			return nil
		}
		visit(sourceFile, splitSourceLines(string(contents)))
		return nil
	})
}

func splitSourceLines(contents string) []string {
	if len(contents) == 0 {
		return nil
	}
	lines := strings.Split(contents, lineFeedConstant)
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	for lineIndex := range lines {
		lines[lineIndex] = strings.TrimSuffix(lines[lineIndex], carriageReturnConstant)
	}
	return lines
}

func (scanner *TechDebtScanner) detectCommentMarkers(items *[]TechDebtItem) error {
	return scanner.forEachSourceFile(func(sourceFile sourcewalk.SourceFile, lines []string) {
		for lineIndex, line := range lines {
			for _, rule := range commentMarkerRules {
				submatches := rule.expression.FindStringSubmatch(line)
				if submatches == nil {
					continue
				}
				content := rule.emptyContent
				if message := strings.TrimSpace(submatches[rule.messageGroup]); len(message) > 0 {
					content = fmt.Sprintf(commentMarkerContentTemplateConstant, rule.label, message)
				}
				*items = append(*items, TechDebtItem{
					DebtType:       rule.debtType,
					File:           sourceFile.RelativePath,
					Line:           lineIndex + 1,
					Content:        content,
					Severity:       rule.severity,
					Recommendation: rule.recommendation,
				})
			}
		}
	})
}

func outdatedDependencyItems(dependencies *DependencyAnalysis) []TechDebtItem {
	if dependencies == nil {
		return nil
	}
	var items []TechDebtItem
	for _, dependency := range dependencies.Dependencies {
		if dependency.Outdated == nil {
			continue
		}
		outdated := *dependency.Outdated

		item := TechDebtItem{
			DebtType: TechDebtTypeOutdatedDependency,
			File:     dependency.ManifestPath,
		}
		switch {
		case outdated.HasSecurityAdvisory():
			item.Severity = SeverityCritical
			item.Content = fmt.Sprintf(outdatedWithAdvisoryContentTemplateConstant, dependency.Name, dependency.Version, outdated.LatestVersion, outdated.SecurityAdvisory)
			item.Recommendation = outdatedAdvisoryRecommendationConstant
		case outdated.IsMajorBump:
			item.Severity = SeverityMedium
			item.Content = fmt.Sprintf(outdatedContentTemplateConstant, dependency.Name, dependency.Version, outdated.LatestVersion)
			item.Recommendation = outdatedMajorRecommendationConstant
		default:
			item.Severity = SeverityLow
			item.Content = fmt.Sprintf(outdatedContentTemplateConstant, dependency.Name, dependency.Version, outdated.LatestVersion)
			item.Recommendation = outdatedMinorRecommendationConstant
		}
		items = append(items, item)
	}
	return items
}

func (scanner *TechDebtScanner) detectDeadCodeIndicators(items *[]TechDebtItem) error {
	return scanner.forEachSourceFile(func(sourceFile sourcewalk.SourceFile, lines []string) {
		for lineIndex, line := range lines {
			for _, rule := range deadCodeRules {
				if !rule.appliesTo(sourceFile.Extension, line) || !rule.expression.MatchString(line) {
					continue
				}
				*items = append(*items, TechDebtItem{
					DebtType:       TechDebtTypeDeadCode,
					File:           sourceFile.RelativePath,
					Line:           lineIndex + 1,
					Content:        rule.content,
					Severity:       rule.severity,
					Recommendation: rule.recommendation,
				})
			}
		}
	})
}

func (rule deadCodeRule) appliesTo(extension string, line string) bool {
	if len(rule.extensions) > 0 && !containsString(rule.extensions, extension) {
		return false
	}
	if rule.rejectsDestructuring && (strings.Contains(line, destructuringBraceLiteral) || strings.Contains(line, destructuringArrayLiteral)) {
		return false
	}
	return true
}

// commentedCodeBlock is a completed run of consecutive commented code lines.
type commentedCodeBlock struct {
	startLine int
	length    int
}

// commentedCodeRun tracks consecutive lines that look like commented code within one file.
type commentedCodeRun struct {
	startLine int
	length    int
}

// observe records the classification of a line and returns a block when a qualifying run just ended.
func (run *commentedCodeRun) observe(lineNumber int, looksLikeCode bool) (commentedCodeBlock, bool) {
	if looksLikeCode {
		if run.length == 0 {
			run.startLine = lineNumber
		}
		run.length++
		return commentedCodeBlock{}, false
	}
	return run.finish()
}

// finish closes the current run and resets the accumulator.
func (run *commentedCodeRun) finish() (commentedCodeBlock, bool) {
	block := commentedCodeBlock{startLine: run.startLine, length: run.length}
	run.startLine = 0
	run.length = 0
	return block, block.length >= minimumCommentedCodeRunLengthConstant
}

func looksLikeCommentedCode(line string) bool {
	for _, expression := range commentedCodeExpressions {
		if expression.MatchString(line) {
			return true
		}
	}
	return false
}

func (scanner *TechDebtScanner) detectCommentedOutCode(items *[]TechDebtItem) error {
	return scanner.forEachSourceFile(func(sourceFile sourcewalk.SourceFile, lines []string) {
		report := func(block commentedCodeBlock) {
			*items = append(*items, TechDebtItem{
				DebtType:       TechDebtTypeCommentedOutCode,
				File:           sourceFile.RelativePath,
				Line:           block.startLine,
				Content:        fmt.Sprintf(commentedCodeContentTemplateConstant, block.length),
				Severity:       SeverityLow,
				Recommendation: commentedCodeRecommendationConstant,
			})
		}

		run := commentedCodeRun{}
		for lineIndex, line := range lines {
			if block, completed := run.observe(lineIndex+1, looksLikeCommentedCode(line)); completed {
				report(block)
			}
		}
		if block, completed := run.finish(); completed {
			report(block)
		}
	})
}

func isTestSourcePath(relativePath string) bool {
	loweredPath := strings.ToLower(relativePath)
	for _, marker := range testPathMarkers {
		if strings.Contains(loweredPath, marker) {
			return true
		}
	}
	return false
}

func isCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range commentLinePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func (scanner *TechDebtScanner) detectTemporaryCode(items *[]TechDebtItem) error {
	return scanner.forEachSourceFile(func(sourceFile sourcewalk.SourceFile, lines []string) {
		if isTestSourcePath(sourceFile.RelativePath) {
			return
		}
		for lineIndex, line := range lines {
			if isCommentLine(line) {
				continue
			}
			newItem := func(content string, recommendation string) TechDebtItem {
				return TechDebtItem{
					DebtType:       TechDebtTypeTemporaryCode,
					File:           sourceFile.RelativePath,
					Line:           lineIndex + 1,
					Content:        content,
					Severity:       SeverityLow,
					Recommendation: recommendation,
				}
			}
			if isDebugStatement(line) {
				*items = append(*items, newItem(debugStatementContentConstant, debugStatementRecommendationConstant))
			}
			if hasPlaceholderName(line) {
				*items = append(*items, newItem(placeholderContentConstant, placeholderRecommendationConstant))
			}
		}
	})
}

func isDebugStatement(line string) bool {
	for _, expression := range debugStatementExpressions {
		if !expression.MatchString(line) {
			continue
		}
		if strings.Contains(line, pythonPrintCallConstant) && !strings.Contains(line, debugKeywordConstant) {
			continue
		}
		return true
	}
	return false
}

func hasPlaceholderName(line string) bool {
	for _, expression := range placeholderExpressions {
		if !expression.MatchString(line) {
			continue
		}
		if containsAnySubstring(line, placeholderSuppressionTokens) {
			continue
		}
		return true
	}
	return false
}

func containsString(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}

func containsAnySubstring(text string, substrings []string) bool {
	for _, substring := range substrings {
		if strings.Contains(text, substring) {
			return true
		}
	}
	return false
}
