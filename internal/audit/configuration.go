package audit

import (
	"strings"

	pathutils "github.com/temirov/codeaudit/internal/utils/path"
)

const (
	rootConfigurationKeyConstant                = "root"
	factsConfigurationKeyConstant               = "facts"
	formatConfigurationKeyConstant              = "format"
	sectionsConfigurationKeyConstant            = "sections"
	answersConfigurationKeyConstant             = "answers"
	outputConfigurationKeyConstant              = "output"
	noInteractiveConfigurationKeyConstant       = "interactive.no_interactive"
	smartModeConfigurationKeyConstant           = "interactive.smart_mode"
	confidenceThresholdConfigurationKeyConstant = "interactive.confidence_threshold"
	confidenceConfigurationKeyConstant          = "interactive.confidence"
	configurationKeySeparatorConstant           = "."
)

var auditConfigurationPathResolver = pathutils.NewConfiguredPathResolver(nil)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Root        string                   `mapstructure:"root"`
	Facts       string                   `mapstructure:"facts"`
	Format      string                   `mapstructure:"format"`
	Sections    []string                 `mapstructure:"sections"`
	Answers     string                   `mapstructure:"answers"`
	Output      string                   `mapstructure:"output"`
	Interactive InteractiveConfiguration `mapstructure:"interactive"`
}

// InteractiveConfiguration captures questionnaire settings.
type InteractiveConfiguration struct {
	NoInteractive       bool    `mapstructure:"no_interactive"`
	SmartMode           bool    `mapstructure:"smart_mode"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	Confidence          float64 `mapstructure:"confidence"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Root:     defaultRootPathConstant,
		Format:   string(ReportFormatJSON),
		Sections: sectionNames(DefaultSections()),
		Interactive: InteractiveConfiguration{
			ConfidenceThreshold: defaultConfidenceThresholdConstant,
		},
	}
}

// DefaultConfigurationValues exposes the defaults as flattened keys beneath prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := map[string]any{
		rootConfigurationKeyConstant:                defaults.Root,
		factsConfigurationKeyConstant:               defaults.Facts,
		formatConfigurationKeyConstant:              defaults.Format,
		sectionsConfigurationKeyConstant:            defaults.Sections,
		answersConfigurationKeyConstant:             defaults.Answers,
		outputConfigurationKeyConstant:              defaults.Output,
		noInteractiveConfigurationKeyConstant:       defaults.Interactive.NoInteractive,
		smartModeConfigurationKeyConstant:           defaults.Interactive.SmartMode,
		confidenceThresholdConfigurationKeyConstant: defaults.Interactive.ConfidenceThreshold,
		confidenceConfigurationKeyConstant:          defaults.Interactive.Confidence,
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return values
	}
	prefixed := make(map[string]any, len(values))
	for key, value := range values {
		prefixed[trimmedPrefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixed
}

// Sanitize trims values, expands home directories, and restores defaults for empty settings.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Root = expandConfiguredPath(configuration.Root)
	if len(sanitized.Root) == 0 {
		sanitized.Root = defaults.Root
	}
	sanitized.Facts = expandConfiguredPath(configuration.Facts)
	sanitized.Output = expandConfiguredPath(configuration.Output)

	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	if len(sanitized.Format) == 0 {
		sanitized.Format = defaults.Format
	}

	sanitized.Sections = sanitizeSectionNames(configuration.Sections)
	if len(sanitized.Sections) == 0 {
		sanitized.Sections = defaults.Sections
	}

	sanitized.Answers = strings.TrimSpace(configuration.Answers)
	sanitized.Interactive.ConfidenceThreshold = clampConfidence(configuration.Interactive.ConfidenceThreshold)
	sanitized.Interactive.Confidence = clampConfidence(configuration.Interactive.Confidence)
	return sanitized
}

func expandConfiguredPath(candidatePath string) string {
	return auditConfigurationPathResolver.Resolve(candidatePath)
}

func sanitizeSectionNames(rawSections []string) []string {
	sanitized := make([]string, 0, len(rawSections))
	seen := make(map[string]struct{}, len(rawSections))
	for _, rawSection := range rawSections {
		normalized := strings.ToLower(strings.TrimSpace(rawSection))
		if len(normalized) == 0 {
			continue
		}
		if _, duplicate := seen[normalized]; duplicate {
			continue
		}
		seen[normalized] = struct{}{}
		sanitized = append(sanitized, normalized)
	}
	return sanitized
}
