package audit_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/codeaudit/internal/audit"
	"github.com/temirov/codeaudit/internal/filesystem"
)

func createProjectPaths(testInstance *testing.T, files []string, directories []string) string {
	testInstance.Helper()
	projectRoot := testInstance.TempDir()
	for _, directory := range directories {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(projectRoot, filepath.FromSlash(directory)), 0o755))
	}
	for _, file := range files {
		absolutePath := filepath.Join(projectRoot, filepath.FromSlash(file))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte("x"), 0o600))
	}
	return projectRoot
}

func TestContextBuilderProbesProjectPaths(testInstance *testing.T) {
	testCases := []struct {
		name        string
		files       []string
		directories []string
		verify      func(testInstance *testing.T, context audit.OpportunityContext)
	}{
		{
			name: "empty_project",
			verify: func(testInstance *testing.T, context audit.OpportunityContext) {
				require.Equal(testInstance, audit.OpportunityContext{}, context)
			},
		},
		{
			name:        "github_workflows_and_docker",
			files:       []string{"Dockerfile", "compose.yaml"},
			directories: []string{".github/workflows"},
			verify: func(testInstance *testing.T, context audit.OpportunityContext) {
				require.True(testInstance, context.HasCICD)
				require.True(testInstance, context.HasDockerfile)
				require.True(testInstance, context.HasDockerCompose)
				require.False(testInstance, context.HasLintingConfig)
			},
		},
		{
			name:  "tooling_configuration",
			files: []string{".golangci.yml", ".pre-commit-config.yaml", "openapi.yaml", "codecov.yml"},
			verify: func(testInstance *testing.T, context audit.OpportunityContext) {
				require.True(testInstance, context.HasLintingConfig)
				require.True(testInstance, context.HasPreCommitHooks)
				require.True(testInstance, context.HasOpenAPIDocs)
				require.True(testInstance, context.HasCoverageConfig)
			},
		},
		{
			name:        "directories_for_migrations_benchmarks_and_completions",
			directories: []string{"db/migrations", "benches", "contrib/completions"},
			verify: func(testInstance *testing.T, context audit.OpportunityContext) {
				require.True(testInstance, context.HasMigrations)
				require.True(testInstance, context.HasBenchmarks)
				require.True(testInstance, context.HasShellCompletions)
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			projectRoot := createProjectPaths(testInstance, testCase.files, testCase.directories)
			builder := audit.NewContextBuilder(projectRoot, filesystem.OSFileSystem{}, nil)
			testCase.verify(testInstance, builder.BuildContext(nil, nil, nil, nil))
		})
	}
}

func TestContextBuilderEndpointDetection(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		paths                  []string
		expectedHealthCheck    bool
		expectedAuthentication bool
	}{
		{name: "health_check_case_insensitive", paths: []string{"/API/HEALTHZ"}, expectedHealthCheck: true},
		{name: "authentication_lowercase", paths: []string{"/v1/oauth/token"}, expectedAuthentication: true},
		{name: "authentication_case_sensitive", paths: []string{"/LOGIN"}},
		{name: "status_endpoint", paths: []string{"/status", "/auth/refresh"}, expectedHealthCheck: true, expectedAuthentication: true},
		{name: "unrelated_endpoints", paths: []string{"/users", "/orders/{id}"}},
	}

	builder := audit.NewContextBuilder(testInstance.TempDir(), filesystem.OSFileSystem{}, nil)
	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			endpoints := make([]audit.HTTPEndpoint, 0, len(testCase.paths))
			for _, path := range testCase.paths {
				endpoints = append(endpoints, audit.HTTPEndpoint{Method: "GET", Path: path})
			}
			context := builder.BuildContext(&audit.APIAnalysis{Endpoints: endpoints}, nil, nil, nil)
			require.Equal(testInstance, testCase.expectedHealthCheck, context.HasHealthCheck)
			require.Equal(testInstance, testCase.expectedAuthentication, context.HasAuthentication)
			require.False(testInstance, context.HasRateLimiting)
			require.False(testInstance, context.HasStructuredLogging)
		})
	}
}

func TestContextBuilderBenchmarksFromTestPatterns(testInstance *testing.T) {
	builder := audit.NewContextBuilder(testInstance.TempDir(), filesystem.OSFileSystem{}, nil)

	withBenchmarks := builder.BuildContext(nil, &audit.TestAnalysis{TestPatterns: []audit.TestPatternInfo{{Pattern: audit.TestPatternBenchmark, Count: 2}}}, nil, nil)
	require.True(testInstance, withBenchmarks.HasBenchmarks)

	withoutBenchmarks := builder.BuildContext(nil, &audit.TestAnalysis{TestPatterns: []audit.TestPatternInfo{{Pattern: audit.TestPatternUnit, Count: 2}}}, nil, nil)
	require.False(testInstance, withoutBenchmarks.HasBenchmarks)
}

func TestContextBuilderCopiesAnalyses(testInstance *testing.T) {
	builder := audit.NewContextBuilder(testInstance.TempDir(), nil, nil)
	tests := &audit.TestAnalysis{TestFileCount: 3}
	documentation := &audit.DocumentationAnalysis{ReadmeExists: true}

	context := builder.BuildContext(nil, tests, documentation, nil)
	tests.TestFileCount = 99
	documentation.ReadmeExists = false

	require.Nil(testInstance, context.API)
	require.Nil(testInstance, context.ArchitectureGaps)
	require.Equal(testInstance, 3, context.Tests.TestFileCount)
	require.True(testInstance, context.Documentation.ReadmeExists)
	require.False(testInstance, context.HasCICD)
}
