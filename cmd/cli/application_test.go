package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/codeaudit/internal/audit"
)

const (
	testAuditCommandNameConstant     = "audit"
	testSourceFileNameConstant       = "main.go"
	testSourceFileContentConstant    = "package main\n\n// TODO: handle shutdown signals\nfunc main() {}\n"
	testNoInteractiveFlagConstant    = "--no-interactive"
	testSectionFlagConstant          = "--section"
	testTechDebtSectionConstant      = "tech_debt"
	testFormatEnvironmentVariable    = "CODEAUDIT_TOOLS_AUDIT_FORMAT"
	testApplicationSubtestTemplate   = "%d_%s"
	testVersionValueConstant         = "v1.4.2"
	testExpectedVersionOutputPattern = "codeaudit version: %s\n"
)

type decodedReport struct {
	TechDebt struct {
		TotalItems int `json:"total_items"`
	} `json:"tech_debt"`
	Findings []struct {
		ID       string `json:"id"`
		Severity string `json:"severity"`
	} `json:"findings"`
}

func newIsolatedApplication(testInstance *testing.T) *Application {
	testInstance.Helper()
	testInstance.Setenv(configurationSearchPathEnvironmentName, testInstance.TempDir())
	return NewApplication()
}

func writeProjectFixture(testInstance *testing.T) string {
	testInstance.Helper()
	projectDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(projectDirectory, testSourceFileNameConstant), []byte(testSourceFileContentConstant), 0o600))
	return projectDirectory
}

func TestEmbeddedDefaultConfigurationMatchesAuditDefaults(testInstance *testing.T) {
	embeddedContent, embeddedType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, embeddedType)

	var rawConfiguration map[string]any
	require.NoError(testInstance, yaml.Unmarshal(embeddedContent, &rawConfiguration))

	var decodedConfiguration ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &decodedConfiguration,
		ErrorUnused: true,
	})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(rawConfiguration))

	require.Equal(testInstance, audit.DefaultCommandConfiguration(), decodedConfiguration.Tools.Audit)
	require.NotEmpty(testInstance, decodedConfiguration.Common.LogLevel)
	require.NotEmpty(testInstance, decodedConfiguration.Common.LogFormat)
}

func TestApplicationVersionFlagPrintsVersion(testInstance *testing.T) {
	application := newIsolatedApplication(testInstance)
	application.versionResolver = func(context.Context) string {
		return testVersionValueConstant
	}

	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetArgs([]string{"--version"})

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, fmt.Sprintf(testExpectedVersionOutputPattern, testVersionValueConstant), outputBuffer.String())
}

func TestApplicationAuditCommandWritesReport(testInstance *testing.T) {
	testCases := []struct {
		name              string
		environmentFormat string
		verifyOutput      func(testInstance *testing.T, output []byte)
	}{
		{
			name: "json_default",
			verifyOutput: func(testInstance *testing.T, output []byte) {
				var report decodedReport
				require.NoError(testInstance, json.Unmarshal(output, &report))
				require.Equal(testInstance, 1, report.TechDebt.TotalItems)
				require.Len(testInstance, report.Findings, 1)
				require.Equal(testInstance, "DEBT-001", report.Findings[0].ID)
			},
		},
		{
			name:              "yaml_from_environment",
			environmentFormat: "yaml",
			verifyOutput: func(testInstance *testing.T, output []byte) {
				require.True(testInstance, strings.HasPrefix(string(output), "metadata:"))
				var report map[string]any
				require.NoError(testInstance, yaml.Unmarshal(output, &report))
				require.Contains(testInstance, report, "tech_debt")
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testApplicationSubtestTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			if len(testCase.environmentFormat) > 0 {
				testInstance.Setenv(testFormatEnvironmentVariable, testCase.environmentFormat)
			}
			projectDirectory := writeProjectFixture(testInstance)
			application := newIsolatedApplication(testInstance)

			outputBuffer := &bytes.Buffer{}
			application.rootCommand.SetOut(outputBuffer)
			application.rootCommand.SetErr(&bytes.Buffer{})
			application.rootCommand.SetArgs([]string{testAuditCommandNameConstant, projectDirectory, testNoInteractiveFlagConstant, testSectionFlagConstant, testTechDebtSectionConstant})

			require.NoError(testInstance, application.Execute())
			testCase.verifyOutput(testInstance, outputBuffer.Bytes())
		})
	}
}

func TestApplicationRejectsUnsupportedLogLevel(testInstance *testing.T) {
	projectDirectory := writeProjectFixture(testInstance)
	application := newIsolatedApplication(testInstance)
	application.rootCommand.SetOut(&bytes.Buffer{})
	application.rootCommand.SetArgs([]string{"--log-level", "verbose", testAuditCommandNameConstant, projectDirectory, testNoInteractiveFlagConstant})

	executionError := application.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unable to create logger")
}

func TestApplicationConfigurationFileOverridesDefaults(testInstance *testing.T) {
	projectDirectory := writeProjectFixture(testInstance)
	configurationDirectory := testInstance.TempDir()
	configurationContent := fmt.Sprintf("tools:\n  audit:\n    root: %s\n    sections: [tech_debt]\n    interactive:\n      no_interactive: true\n", projectDirectory)
	require.NoError(testInstance, os.WriteFile(filepath.Join(configurationDirectory, "config.yaml"), []byte(configurationContent), 0o600))
	testInstance.Setenv(configurationSearchPathEnvironmentName, configurationDirectory)

	application := NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetArgs([]string{testAuditCommandNameConstant})

	require.NoError(testInstance, application.Execute())

	var report decodedReport
	require.NoError(testInstance, json.Unmarshal(outputBuffer.Bytes(), &report))
	require.Equal(testInstance, 1, report.TechDebt.TotalItems)
}
