package audit

import "regexp"

const (
	commentMarkerContentTemplateConstant = "%s: %s"

	outdatedWithAdvisoryContentTemplateConstant = "Dependency '%s' is outdated (%s -> %s) and has security advisory: %s"
	outdatedContentTemplateConstant             = "Dependency '%s' is outdated: %s -> %s"
	outdatedAdvisoryRecommendationConstant      = "Update immediately to address security vulnerability."
	outdatedMajorRecommendationConstant         = "Plan migration to the new major version."
	outdatedMinorRecommendationConstant         = "Consider updating to the latest version."

	commentedCodeContentTemplateConstant = "Block of %d lines of commented out code."
	commentedCodeRecommendationConstant  = "Remove commented out code. Use version control to preserve history."

	debugStatementContentConstant        = "Debug/logging statement that may be temporary."
	debugStatementRecommendationConstant = "Remove debug statements or use proper logging."
	placeholderContentConstant           = "Temporary/placeholder naming suggests unfinished code."
	placeholderRecommendationConstant    = "Replace temporary names with meaningful ones."

	pythonPrintCallConstant   = "print("
	debugKeywordConstant      = "debug"
	destructuringBraceLiteral = "{"
	destructuringArrayLiteral = "["
)

var (
	testPathMarkers              = []string{"test", "spec", "_test."}
	commentLinePrefixes          = []string{"//", "#", "*"}
	placeholderSuppressionTokens = []string{"foobar", "template", "temporary"}
	underscoreDeclarationFiles   = []string{"ts", "js"}
)

type commentMarkerRule struct {
	debtType       TechDebtType
	label          string
	expression     *regexp.Regexp
	messageGroup   int
	emptyContent   string
	severity       Severity
	recommendation string
}

var commentMarkerRules = []commentMarkerRule{
	{
		debtType:       TechDebtTypeTodoComment,
		label:          "TODO",
		expression:     regexp.MustCompile(`(?i)\b(TODO|@todo)\b[:\s]*(.*)`),
		messageGroup:   2,
		emptyContent:   "TODO comment without description",
		severity:       SeverityLow,
		recommendation: "Address the TODO or create a tracked issue.",
	},
	{
		debtType:       TechDebtTypeFixmeComment,
		label:          "FIXME",
		expression:     regexp.MustCompile(`(?i)\b(FIXME|@fixme)\b[:\s]*(.*)`),
		messageGroup:   2,
		emptyContent:   "FIXME comment without description",
		severity:       SeverityMedium,
		recommendation: "Fix the issue or create a bug report.",
	},
	{
		debtType:       TechDebtTypeHackComment,
		label:          "HACK",
		expression:     regexp.MustCompile(`(?i)\b(HACK|@hack)\b[:\s]*(.*)`),
		messageGroup:   2,
		emptyContent:   "HACK comment without description",
		severity:       SeverityMedium,
		recommendation: "Refactor the hack into a proper solution when possible.",
	},
	{
		debtType:       TechDebtTypeXxxComment,
		label:          "XXX",
		expression:     regexp.MustCompile(`(?i)\bXXX\b[:\s]*(.*)`),
		messageGroup:   1,
		emptyContent:   "XXX comment indicating questionable code",
		severity:       SeverityLow,
		recommendation: "Review and address the concern marked by XXX.",
	},
}

type deadCodeRule struct {
	expression           *regexp.Regexp
	content              string
	severity             Severity
	recommendation       string
	extensions           []string
	rejectsDestructuring bool
}

var deadCodeRules = []deadCodeRule{
	{
		expression:     regexp.MustCompile(`#\[allow\(dead_code\)\]`),
		content:        "Suppressed dead_code warning indicates potentially unused code.",
		severity:       SeverityLow,
		recommendation: "Remove dead code or document why it needs to be kept.",
	},
	{
		expression:     regexp.MustCompile(`(?i)#\[allow\(unused_imports?\)\]`),
		content:        "Suppressed unused_imports warning.",
		severity:       SeverityLow,
		recommendation: "Remove unused imports.",
	},
	{
		expression:     regexp.MustCompile(`(?i)#\[allow\(unused_variables?\)\]`),
		content:        "Suppressed unused_variables warning.",
		severity:       SeverityLow,
		recommendation: "Remove or use the unused variables.",
	},
	{
		expression:     regexp.MustCompile(`(?i)#\[allow\(unused_mut\)\]`),
		content:        "Suppressed unused_mut warning.",
		severity:       SeverityLow,
		recommendation: "Remove unnecessary mut keyword.",
	},
	{
		expression:     regexp.MustCompile(`(?i)#\[allow\(unreachable_code\)\]`),
		content:        "Suppressed unreachable_code warning indicates dead code paths.",
		severity:       SeverityMedium,
		recommendation: "Remove unreachable code or fix the control flow.",
	},
	{
		expression:     regexp.MustCompile(`#\s*noqa:\s*F401`),
		content:        "Suppressed unused import warning (noqa: F401).",
		severity:       SeverityLow,
		recommendation: "Remove unused import or document why it's needed.",
	},
	{
		expression:     regexp.MustCompile(`//\s*eslint-disable.*no-unused-vars`),
		content:        "ESLint no-unused-vars disabled.",
		severity:       SeverityLow,
		recommendation: "Remove unused variables.",
	},
	{
		expression:     regexp.MustCompile(`//\s*@ts-ignore`),
		content:        "@ts-ignore directive suppresses TypeScript errors.",
		severity:       SeverityLow,
		recommendation: "Fix the TypeScript error instead of ignoring it.",
	},
	{
		expression:           regexp.MustCompile(`^\s*(?:let|const|var)\s+_\w+\s*=`),
		content:              "Underscore-prefixed variable may indicate intentionally unused code.",
		severity:             SeverityLow,
		recommendation:       "Remove if unused or rename if actually used.",
		extensions:           underscoreDeclarationFiles,
		rejectsDestructuring: true,
	},
}

var commentedCodeExpressions = []*regexp.Regexp{
	regexp.MustCompile(`^\s*//\s*(if|for|while|fn|let|const|var|function|class|return)\s`),
	regexp.MustCompile(`^\s*//\s*\w+\s*\([^)]*\)\s*[{;]?\s*$`),
	regexp.MustCompile(`^\s*//\s*\w+\s*=\s*.+;?\s*$`),
	regexp.MustCompile(`^\s*#\s*(if|for|while|def|class|return)\s`),
	regexp.MustCompile(`^\s*/\*[\s\S]*?(if|for|while|function|class)`),
}

var debugStatementExpressions = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bconsole\.(log|debug|info|warn|error)\s*\(`),
	regexp.MustCompile(`(?i)\bprint\s*\(`),
	regexp.MustCompile(`(?i)\bdbg!\s*\(`),
	regexp.MustCompile(`(?i)\bprintln!\s*\(.*debug`),
	regexp.MustCompile(`(?i)\bdebugger\s*;?`),
	regexp.MustCompile(`(?i)sleep\s*\(\s*\d+\s*\)`),
}

var placeholderExpressions = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btemp\b`),
	regexp.MustCompile(`(?i)\btest123\b`),
	regexp.MustCompile(`(?i)\bfoo\b`),
	regexp.MustCompile(`(?i)\bbar\b`),
	regexp.MustCompile(`(?i)\bbaz\b`),
	regexp.MustCompile(`(?i)"TODO:?\s*remove`),
}

var debtTypeTitles = map[TechDebtType]string{
	TechDebtTypeTodoComment:        "TODO Comment",
	TechDebtTypeFixmeComment:       "FIXME Comment",
	TechDebtTypeHackComment:        "HACK Workaround",
	TechDebtTypeXxxComment:         "XXX Comment",
	TechDebtTypeOutdatedDependency: "Outdated Dependency",
	TechDebtTypeDeprecatedCode:     "Deprecated Code Usage",
	TechDebtTypeDeadCode:           "Dead Code Indicator",
	TechDebtTypeCommentedOutCode:   "Commented Out Code",
	TechDebtTypeTemporaryCode:      "Temporary/Debug Code",
}
