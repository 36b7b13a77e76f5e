package audit

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/codeaudit/internal/filesystem"
	"github.com/temirov/codeaudit/internal/sourcewalk"
	"github.com/temirov/codeaudit/internal/utils"
	"github.com/temirov/codeaudit/internal/utils/flags"
)

const (
	commandUseConstant                      = "audit [path]"
	commandShortDescriptionConstant         = "Audit a codebase for technical debt and feature opportunities"
	commandLongDescriptionConstant          = "audit scans the project at path (default: current directory) for technical debt, matches feature opportunities against extracted facts, optionally asks four prioritization questions, and writes a report."
	tooManyArgumentsErrorMessageConstant    = "audit accepts at most one project path"
	commandExecutionErrorTemplateConstant   = "audit failed: %w"
	formatParseErrorTemplateConstant        = "invalid report format: %w"
	sectionParseErrorTemplateConstant       = "invalid section: %w"
	factsFlagNameConstant                   = "facts"
	factsFlagDescriptionConstant            = "Path to a YAML or JSON facts document produced by upstream extractors"
	formatFlagNameConstant                  = "format"
	formatFlagDescriptionConstant           = "Report format."
	sectionFlagNameConstant                 = "section"
	sectionFlagDescriptionConstant          = "Audit sections to run (tech_debt, opportunities); repeatable"
	answersFlagNameConstant                 = "answers"
	answersFlagDescriptionConstant          = "Questionnaire answers such as \"1A 2C 3B 4D\"; skips prompting"
	outputFlagNameConstant                  = "output"
	outputFlagShorthandConstant             = "o"
	outputFlagDescriptionConstant           = "Write the report to this file instead of standard output"
	noInteractiveFlagNameConstant           = "no-interactive"
	noInteractiveFlagDescriptionConstant    = "Never prompt; use default answers"
	smartFlagNameConstant                   = "smart"
	smartFlagDescriptionConstant            = "Prompt only when analysis confidence is below the threshold"
	confidenceFlagNameConstant              = "confidence"
	confidenceFlagDescriptionConstant       = "Analysis confidence in [0,1] used by smart mode"
	confidenceThresholdFlagNameConstant     = "confidence-threshold"
	confidenceThresholdFlagDescription      = "Confidence below which smart mode prompts"
	commandOptionsResolvedMessageConstant   = "Audit options resolved"
	logFieldFormatConstant                  = "format"
	logFieldFactsConstant                   = "facts"
	logFieldInteractiveConstant             = "no_interactive"
	logFieldSmartModeConstant               = "smart_mode"
	logFieldConfidenceThresholdConstant     = "confidence_threshold"
	commandOptionsSectionSeparatorConstant  = ","
	commandOptionsDefaultSectionDescription = "all"
)

var reportFormatChoices = []string{string(ReportFormatJSON), string(ReportFormatYAML)}

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            FileSystem
	Walker                SourceFileWalker
	Prompter              AnswerPrompter
	Clock                 Clock
}

// Build constructs the cobra command for codebase audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(factsFlagNameConstant, "", factsFlagDescriptionConstant)
	command.Flags().String(formatFlagNameConstant, "", flags.FormatChoiceUsage(defaults.Format, reportFormatChoices, formatFlagDescriptionConstant))
	command.Flags().StringSlice(sectionFlagNameConstant, nil, sectionFlagDescriptionConstant)
	command.Flags().String(answersFlagNameConstant, "", answersFlagDescriptionConstant)
	command.Flags().StringP(outputFlagNameConstant, outputFlagShorthandConstant, "", outputFlagDescriptionConstant)
	command.Flags().Bool(noInteractiveFlagNameConstant, false, noInteractiveFlagDescriptionConstant)
	command.Flags().Bool(smartFlagNameConstant, false, smartFlagDescriptionConstant)
	command.Flags().Float64(confidenceFlagNameConstant, 0, confidenceFlagDescriptionConstant)
	command.Flags().Float64(confidenceThresholdFlagNameConstant, defaults.Interactive.ConfidenceThreshold, confidenceThresholdFlagDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 1 {
		return errors.New(tooManyArgumentsErrorMessageConstant)
	}

	options, optionsError := builder.parseOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	logger.Debug(
		commandOptionsResolvedMessageConstant,
		zap.String(logFieldRootConstant, options.Root),
		zap.String(logFieldFactsConstant, options.FactsPath),
		zap.String(logFieldFormatConstant, string(options.Format)),
		zap.String(logFieldSectionsConstant, describeSections(options.Sections)),
		zap.Bool(logFieldInteractiveConstant, options.Interactive.NoInteractive),
		zap.Bool(logFieldSmartModeConstant, options.Interactive.SmartMode),
		zap.Float64(logFieldConfidenceThresholdConstant, options.Interactive.ConfidenceThreshold),
	)

	service := NewService(
		builder.resolveFileSystem(),
		builder.resolveWalker(),
		builder.resolvePrompter(command.InOrStdin(), command.ErrOrStderr()),
		command.OutOrStdout(),
		logger,
		builder.Clock,
	)
	if _, runError := service.Run(command.Context(), options); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) (CommandOptions, error) {
	configuration := builder.resolveConfiguration()

	rootArgument := ""
	if len(arguments) == 1 {
		rootArgument = arguments[0]
	}
	rootValue := expandConfiguredPath(selectStringValue(rootArgument, configuration.Root))

	factsFlagValue, factsFlagError := command.Flags().GetString(factsFlagNameConstant)
	if factsFlagError != nil {
		return CommandOptions{}, factsFlagError
	}
	factsValue := expandConfiguredPath(selectStringValue(factsFlagValue, configuration.Facts))

	formatFlagValue, formatFlagError := command.Flags().GetString(formatFlagNameConstant)
	if formatFlagError != nil {
		return CommandOptions{}, formatFlagError
	}
	formatValue, formatParseError := flags.ParseChoice(selectStringValue(formatFlagValue, configuration.Format), string(ReportFormatJSON), reportFormatChoices)
	if formatParseError != nil {
		return CommandOptions{}, fmt.Errorf(formatParseErrorTemplateConstant, formatParseError)
	}

	sectionNamesValue := configuration.Sections
	if command.Flags().Changed(sectionFlagNameConstant) {
		flagSections, sectionFlagError := command.Flags().GetStringSlice(sectionFlagNameConstant)
		if sectionFlagError != nil {
			return CommandOptions{}, sectionFlagError
		}
		sectionNamesValue = sanitizeSectionNames(flagSections)
	}
	sections := make([]Section, 0, len(sectionNamesValue))
	for _, sectionName := range sectionNamesValue {
		section, sectionParseError := ParseSection(sectionName)
		if sectionParseError != nil {
			return CommandOptions{}, fmt.Errorf(sectionParseErrorTemplateConstant, sectionParseError)
		}
		sections = append(sections, section)
	}

	answersFlagValue, answersFlagError := command.Flags().GetString(answersFlagNameConstant)
	if answersFlagError != nil {
		return CommandOptions{}, answersFlagError
	}
	answersValue := selectStringValue(answersFlagValue, configuration.Answers)

	outputFlagValue, outputFlagError := command.Flags().GetString(outputFlagNameConstant)
	if outputFlagError != nil {
		return CommandOptions{}, outputFlagError
	}
	outputValue := expandConfiguredPath(selectStringValue(outputFlagValue, configuration.Output))

	noInteractiveValue := configuration.Interactive.NoInteractive
	if command.Flags().Changed(noInteractiveFlagNameConstant) {
		flagValue, flagError := command.Flags().GetBool(noInteractiveFlagNameConstant)
		if flagError != nil {
			return CommandOptions{}, flagError
		}
		noInteractiveValue = flagValue
	}

	smartModeValue := configuration.Interactive.SmartMode
	if command.Flags().Changed(smartFlagNameConstant) {
		flagValue, flagError := command.Flags().GetBool(smartFlagNameConstant)
		if flagError != nil {
			return CommandOptions{}, flagError
		}
		smartModeValue = flagValue
	}

	confidenceValue := configuration.Interactive.Confidence
	if command.Flags().Changed(confidenceFlagNameConstant) {
		flagValue, flagError := command.Flags().GetFloat64(confidenceFlagNameConstant)
		if flagError != nil {
			return CommandOptions{}, flagError
		}
		confidenceValue = clampConfidence(flagValue)
	}

	thresholdValue := configuration.Interactive.ConfidenceThreshold
	if command.Flags().Changed(confidenceThresholdFlagNameConstant) {
		flagValue, flagError := command.Flags().GetFloat64(confidenceThresholdFlagNameConstant)
		if flagError != nil {
			return CommandOptions{}, flagError
		}
		thresholdValue = flagValue
	}

	interactiveConfig := NewInteractiveConfig().
		WithNoInteractive(noInteractiveValue).
		WithSmartMode(smartModeValue).
		WithConfidenceThreshold(thresholdValue)

	return CommandOptions{
		Root:        rootValue,
		FactsPath:   factsValue,
		OutputPath:  outputValue,
		Format:      ReportFormat(formatValue),
		Sections:    sections,
		Answers:     answersValue,
		Confidence:  confidenceValue,
		Interactive: interactiveConfig,
		Clock:       builder.Clock,
	}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.OSFileSystem{}
}

func (builder *CommandBuilder) resolveWalker() SourceFileWalker {
	if builder.Walker != nil {
		return builder.Walker
	}
	return sourcewalk.NewFilesystemSourceWalker()
}

func (builder *CommandBuilder) resolvePrompter(input io.Reader, output io.Writer) AnswerPrompter {
	if builder.Prompter != nil {
		return builder.Prompter
	}
	return NewIOAnswerPrompter(input, utils.NewFlushingWriter(output))
}

func selectStringValue(primaryValue string, fallbackValue string) string {
	trimmedPrimary := strings.TrimSpace(primaryValue)
	if len(trimmedPrimary) > 0 {
		return trimmedPrimary
	}
	return strings.TrimSpace(fallbackValue)
}

func describeSections(sections []Section) string {
	if len(sections) == 0 {
		return commandOptionsDefaultSectionDescription
	}
	return strings.Join(sectionNames(sections), commandOptionsSectionSeparatorConstant)
}
