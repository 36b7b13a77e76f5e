package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/temirov/codeaudit/internal/audit"
	"github.com/temirov/codeaudit/internal/filesystem"
	"github.com/temirov/codeaudit/internal/sourcewalk"
)

const (
	testServiceSourceConstant = "package main\n\n// TODO: handle shutdown signals\nfunc main() {}\n"
	testServiceFactsConstant  = "findings:\n  - id: SEC-001\n    severity: medium\n    category: security\n    title: Hardcoded credential\n    recommendation: Rotate it.\n"
)

type fixedClock struct {
	instants []time.Time
	calls    int
}

func (clock *fixedClock) Now() time.Time {
	instant := clock.instants[len(clock.instants)-1]
	if clock.calls < len(clock.instants) {
		instant = clock.instants[clock.calls]
	}
	clock.calls++
	return instant
}

type failingWriteFileSystem struct {
	filesystem.OSFileSystem
	writeError error
}

func (fileSystem failingWriteFileSystem) WriteFile(string, []byte, fs.FileMode) error {
	return fileSystem.writeError
}

type failingStreamWriter struct {
	writeError error
}

func (writer failingStreamWriter) Write([]byte) (int, error) {
	return 0, writer.writeError
}

func newTestService(outputBuffer *bytes.Buffer, prompter audit.AnswerPrompter, logger *zap.Logger) *audit.Service {
	clock := &fixedClock{instants: []time.Time{
		time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC),
		time.Date(2026, time.January, 2, 3, 4, 5, int(250*time.Millisecond), time.UTC),
	}}
	return audit.NewService(filesystem.OSFileSystem{}, sourcewalk.NewFilesystemSourceWalker(), prompter, outputBuffer, logger, clock)
}

func TestServiceRunProducesReport(testInstance *testing.T) {
	projectRoot := writeProjectFiles(testInstance, map[string]string{
		"main.go":    testServiceSourceConstant,
		"facts.yaml": testServiceFactsConstant,
	})

	observerCore, observedLogs := observer.New(zapcore.InfoLevel)
	outputBuffer := &bytes.Buffer{}
	service := newTestService(outputBuffer, nil, zap.New(observerCore))

	report, runError := service.Run(context.Background(), audit.CommandOptions{
		Root:        projectRoot,
		FactsPath:   filepath.Join(projectRoot, "facts.yaml"),
		Format:      audit.ReportFormatJSON,
		Answers:     "1A 2C 3A 4B",
		Interactive: audit.NewInteractiveConfig(),
	})
	require.NoError(testInstance, runError)

	require.Equal(testInstance, projectRoot, report.Metadata.ProjectRoot)
	require.Equal(testInstance, int64(250), report.Metadata.DurationMilliseconds)
	require.Equal(testInstance, audit.ProjectPrioritySecurity, report.Answers.Priority)
	require.NotNil(testInstance, report.TechDebt)
	require.NotNil(testInstance, report.Opportunities)
	require.Equal(testInstance, report.Opportunities.Opportunities, report.FeatureOpportunities)

	require.Len(testInstance, report.Findings, 2)
	require.Equal(testInstance, "DEBT-001", report.Findings[0].ID)
	require.Equal(testInstance, "SEC-001", report.Findings[1].ID)
	require.Equal(testInstance, audit.SeverityHigh, report.Findings[1].Severity)
	require.Equal(testInstance, "[HIGH PRIORITY based on your security focus] Rotate it.", report.Findings[1].Recommendation)
	require.Equal(testInstance, audit.FindingCounts{High: 1, Low: 1}, report.Counts)

	var decoded audit.AuditReport
	require.NoError(testInstance, json.Unmarshal(outputBuffer.Bytes(), &decoded))
	require.Equal(testInstance, report.Metadata.AuditID, decoded.Metadata.AuditID)

	require.Equal(testInstance, 1, observedLogs.FilterMessage("Audit started").Len())
	answerLogs := observedLogs.FilterMessage("Questionnaire answers resolved").All()
	require.Len(testInstance, answerLogs, 1)
	require.Equal(testInstance, "flag", answerLogs[0].ContextMap()["source"])
	require.Equal(testInstance, 1, observedLogs.FilterMessage("Audit report written").Len())
}

func TestServiceRunSectionsAndAnswerSources(testInstance *testing.T) {
	projectRoot := writeProjectFiles(testInstance, map[string]string{"main.go": testServiceSourceConstant})

	testCases := []struct {
		name                string
		options             audit.CommandOptions
		prompter            *stubAnswerPrompter
		expectedSource      string
		expectedPrompts     int
		expectTechDebt      bool
		expectOpportunities bool
	}{
		{
			name:                "tech_debt_only_without_prompting",
			options:             audit.CommandOptions{Sections: []audit.Section{audit.SectionTechDebt}, Interactive: audit.NewInteractiveConfig().WithNoInteractive(true)},
			prompter:            &stubAnswerPrompter{response: "1A"},
			expectedSource:      "default",
			expectTechDebt:      true,
			expectOpportunities: false,
		},
		{
			name:                "opportunities_only_with_prompt",
			options:             audit.CommandOptions{Sections: []audit.Section{audit.SectionOpportunities}, Interactive: audit.NewInteractiveConfig()},
			prompter:            &stubAnswerPrompter{response: "2B"},
			expectedSource:      "prompt",
			expectedPrompts:     1,
			expectTechDebt:      false,
			expectOpportunities: true,
		},
		{
			name:                "smart_mode_confident_skips_prompt",
			options:             audit.CommandOptions{Confidence: 0.95, Interactive: audit.NewInteractiveConfig().WithSmartMode(true)},
			prompter:            &stubAnswerPrompter{response: "2B"},
			expectedSource:      "default",
			expectTechDebt:      true,
			expectOpportunities: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.InfoLevel)
			service := newTestService(&bytes.Buffer{}, testCase.prompter, zap.New(observerCore))

			options := testCase.options
			options.Root = projectRoot
			report, runError := service.Run(context.Background(), options)
			require.NoError(testInstance, runError)

			require.Equal(testInstance, testCase.expectTechDebt, report.TechDebt != nil)
			require.Equal(testInstance, testCase.expectOpportunities, report.Opportunities != nil)
			require.Equal(testInstance, testCase.expectedPrompts, testCase.prompter.invocations)

			answerLogs := observedLogs.FilterMessage("Questionnaire answers resolved").All()
			require.Len(testInstance, answerLogs, 1)
			require.Equal(testInstance, testCase.expectedSource, answerLogs[0].ContextMap()["source"])
		})
	}
}

func TestServiceRunWritesYAMLFile(testInstance *testing.T) {
	projectRoot := writeProjectFiles(testInstance, map[string]string{"main.go": testServiceSourceConstant})
	outputPath := filepath.Join(testInstance.TempDir(), "reports", "audit.yaml")
	outputBuffer := &bytes.Buffer{}

	_, runError := newTestService(outputBuffer, nil, zap.NewNop()).Run(context.Background(), audit.CommandOptions{
		Root:        projectRoot,
		OutputPath:  outputPath,
		Format:      audit.ReportFormatYAML,
		Interactive: audit.NewInteractiveConfig().WithNoInteractive(true),
	})
	require.NoError(testInstance, runError)
	require.Zero(testInstance, outputBuffer.Len())

	contents, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	var decoded map[string]any
	require.NoError(testInstance, yaml.Unmarshal(contents, &decoded))
	require.Contains(testInstance, decoded, "findings")
	require.Contains(testInstance, decoded, "opportunities")
}

func TestServiceRunFailures(testInstance *testing.T) {
	projectRoot := writeProjectFiles(testInstance, map[string]string{"main.go": testServiceSourceConstant})
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	testCases := []struct {
		name          string
		service       *audit.Service
		context       context.Context
		options       audit.CommandOptions
		expectedError error
	}{
		{
			name:          "missing_root",
			service:       newTestService(&bytes.Buffer{}, nil, zap.NewNop()),
			context:       context.Background(),
			options:       audit.CommandOptions{Root: filepath.Join(projectRoot, "absent")},
			expectedError: audit.ErrPathNotFound,
		},
		{
			name:          "root_is_file",
			service:       newTestService(&bytes.Buffer{}, nil, zap.NewNop()),
			context:       context.Background(),
			options:       audit.CommandOptions{Root: filepath.Join(projectRoot, "main.go")},
			expectedError: audit.ErrInvalidStructure,
		},
		{
			name:          "missing_facts",
			service:       newTestService(&bytes.Buffer{}, nil, zap.NewNop()),
			context:       context.Background(),
			options:       audit.CommandOptions{Root: projectRoot, FactsPath: filepath.Join(projectRoot, "facts.yaml")},
			expectedError: audit.ErrIO,
		},
		{
			name:          "cancelled_context",
			service:       newTestService(&bytes.Buffer{}, nil, zap.NewNop()),
			context:       cancelledContext,
			options:       audit.CommandOptions{Root: projectRoot},
			expectedError: context.Canceled,
		},
		{
			name:          "prompter_failure",
			service:       newTestService(&bytes.Buffer{}, &stubAnswerPrompter{responseError: errors.New("closed")}, zap.NewNop()),
			context:       context.Background(),
			options:       audit.CommandOptions{Root: projectRoot, Interactive: audit.NewInteractiveConfig()},
			expectedError: audit.ErrIO,
		},
		{
			name:          "report_write_failure",
			service:       audit.NewService(failingWriteFileSystem{writeError: fs.ErrPermission}, sourcewalk.NewFilesystemSourceWalker(), nil, nil, nil, nil),
			context:       context.Background(),
			options:       audit.CommandOptions{Root: projectRoot, OutputPath: "report.json", Interactive: audit.NewInteractiveConfig().WithNoInteractive(true)},
			expectedError: fs.ErrPermission,
		},
		{
			name:          "standard_output_failure",
			service:       audit.NewService(filesystem.OSFileSystem{}, sourcewalk.NewFilesystemSourceWalker(), nil, failingStreamWriter{writeError: io.ErrClosedPipe}, nil, nil),
			context:       context.Background(),
			options:       audit.CommandOptions{Root: projectRoot, Format: audit.ReportFormatYAML, Interactive: audit.NewInteractiveConfig().WithNoInteractive(true)},
			expectedError: audit.ErrIO,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			_, runError := testCase.service.Run(testCase.context, testCase.options)
			require.ErrorIs(testInstance, runError, testCase.expectedError)
		})
	}
}

func TestParseSection(testInstance *testing.T) {
	section, parseError := audit.ParseSection("  Tech_Debt ")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, audit.SectionTechDebt, section)

	_, parseError = audit.ParseSection("security")
	require.EqualError(testInstance, parseError, `unknown audit section "security"`)
}
