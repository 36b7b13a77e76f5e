package audit

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	probePathLogMessageConstant = "Probed project path"
	logFieldExistsConstant      = "exists"
)

var (
	continuousIntegrationPaths = []string{".github/workflows", ".gitlab-ci.yml", ".circleci", "Jenkinsfile", ".travis.yml", "azure-pipelines.yml"}
	dockerfilePaths            = []string{"Dockerfile", "dockerfile"}
	dockerComposePaths         = []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"}
	lintingConfigurationPaths  = []string{
		".eslintrc", ".eslintrc.js", ".eslintrc.json", "eslint.config.js", ".prettierrc",
		"rustfmt.toml", ".rustfmt.toml", "clippy.toml", ".clippy.toml", "pyproject.toml", ".flake8", ".golangci.yml",
	}
	preCommitHookPaths      = []string{".pre-commit-config.yaml", ".husky", ".git/hooks/pre-commit"}
	openAPIDocumentPaths    = []string{"openapi.yaml", "openapi.yml", "openapi.json", "swagger.yaml", "swagger.yml", "swagger.json", "docs/api"}
	migrationPaths          = []string{"migrations", "db/migrations", "database/migrations", "src/migrations"}
	coverageConfigPaths     = []string{"codecov.yml", ".codecov.yml", "lcov.info", "coverage", ".nyc_output", "tarpaulin.toml"}
	benchmarkDirectoryPaths = []string{"benches", "benchmarks", "bench"}
	shellCompletionPaths    = []string{"completions", "shell-completions", "contrib/completions"}

	healthCheckPathMarkers    = []string{"/health", "/healthz", "/ready", "/readyz", "/live", "/livez", "/ping", "/status"}
	authenticationPathMarkers = []string{"/auth", "/login", "/oauth"}
)

// ContextBuilder derives an OpportunityContext from well-known project paths and upstream analyses.
type ContextBuilder struct {
	root   string
	prober PathProber
	logger *zap.Logger
}

// NewContextBuilder constructs a builder probing paths beneath root. A nil logger disables logging.
func NewContextBuilder(root string, prober PathProber, logger *zap.Logger) *ContextBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextBuilder{root: root, prober: prober, logger: logger}
}

// BuildContext assembles the context. The analyses are copied so later changes by the caller do not leak in.
func (builder *ContextBuilder) BuildContext(api *APIAnalysis, tests *TestAnalysis, documentation *DocumentationAnalysis, architectureGaps *ArchitectureGapsAnalysis) OpportunityContext {
	context := OpportunityContext{
		API:              copyPointer(api),
		Tests:            copyPointer(tests),
		Documentation:    copyPointer(documentation),
		ArchitectureGaps: copyPointer(architectureGaps),

		HasCICD:           builder.anyExists(continuousIntegrationPaths),
		HasDockerfile:     builder.anyExists(dockerfilePaths),
		HasDockerCompose:  builder.anyExists(dockerComposePaths),
		HasLintingConfig:  builder.anyExists(lintingConfigurationPaths),
		HasPreCommitHooks: builder.anyExists(preCommitHookPaths),
		HasOpenAPIDocs:    builder.anyExists(openAPIDocumentPaths),
		HasMigrations:     builder.anyExists(migrationPaths),
		HasCoverageConfig: builder.anyExists(coverageConfigPaths),

		HasShellCompletions: builder.anyExists(shellCompletionPaths),
	}

	if api != nil {
		context.HasHealthCheck = anyEndpointPathContains(api.Endpoints, healthCheckPathMarkers, true)
		context.HasAuthentication = anyEndpointPathContains(api.Endpoints, authenticationPathMarkers, false)
	}

	if tests != nil {
		context.HasBenchmarks = tests.HasPattern(TestPatternBenchmark)
	}
	if !context.HasBenchmarks {
		context.HasBenchmarks = builder.anyExists(benchmarkDirectoryPaths)
	}

	// Rate limiting and structured logging need content analysis that is not available yet.
	context.HasRateLimiting = false
	context.HasStructuredLogging = false

	return context
}

func (builder *ContextBuilder) anyExists(relativePaths []string) bool {
	for _, relativePath := range relativePaths {
		if builder.exists(relativePath) {
			return true
		}
	}
	return false
}

func (builder *ContextBuilder) exists(relativePath string) bool {
	if builder.prober == nil {
		return false
	}
	_, statError := builder.prober.Stat(filepath.Join(builder.root, filepath.FromSlash(relativePath)))
	exists := statError == nil
	builder.logger.Debug(probePathLogMessageConstant, zap.String(logFieldPathConstant, relativePath), zap.Bool(logFieldExistsConstant, exists))
	return exists
}

func anyEndpointPathContains(endpoints []HTTPEndpoint, markers []string, caseInsensitive bool) bool {
	for _, endpoint := range endpoints {
		endpointPath := endpoint.Path
		if caseInsensitive {
			endpointPath = strings.ToLower(endpointPath)
		}
		if containsAnySubstring(endpointPath, markers) {
			return true
		}
	}
	return false
}

func copyPointer[Value any](value *Value) *Value {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
