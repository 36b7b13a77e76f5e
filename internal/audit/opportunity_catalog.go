package audit

import "strings"

// OpportunityType identifies a catalog entry.
type OpportunityType string

// Supported opportunity types in catalog order.
const (
	OpportunityTypeMissingAuditCommand      OpportunityType = "missing_audit_command"
	OpportunityTypeMissingHealthCheck       OpportunityType = "missing_health_check"
	OpportunityTypeMissingAPIDocs           OpportunityType = "missing_api_docs"
	OpportunityTypeMissingCoverageReporting OpportunityType = "missing_coverage_reporting"
	OpportunityTypeMissingBenchmarks        OpportunityType = "missing_benchmarks"
	OpportunityTypeMissingShellCompletions  OpportunityType = "missing_shell_completions"
	OpportunityTypeMissingManPages          OpportunityType = "missing_man_pages"
	OpportunityTypeMissingConfigValidation  OpportunityType = "missing_config_validation"
	OpportunityTypeMissingStructuredLogging OpportunityType = "missing_structured_logging"
	OpportunityTypeMissingErrorCatalog      OpportunityType = "missing_error_catalog"
	OpportunityTypeMissingServiceDiscovery  OpportunityType = "missing_service_discovery"
	OpportunityTypeMissingMigrations        OpportunityType = "missing_migrations"
	OpportunityTypeMissingDockerCompose     OpportunityType = "missing_docker_compose"
	OpportunityTypeMissingIntegrationTests  OpportunityType = "missing_integration_tests"
	OpportunityTypeMissingE2ETests          OpportunityType = "missing_e2e_tests"
	OpportunityTypeMissingRateLimiting      OpportunityType = "missing_rate_limiting"
	OpportunityTypeMissingAuthentication    OpportunityType = "missing_authentication"
	OpportunityTypeMissingLinting           OpportunityType = "missing_linting"
	OpportunityTypeMissingPreCommitHooks    OpportunityType = "missing_pre_commit_hooks"
)

var databaseEndpointPathMarkers = []string{"/db", "/database", "/users", "/data"}

// OpportunityPattern pairs a suggestion template with the predicate deciding when it applies.
type OpportunityPattern struct {
	OpportunityType OpportunityType
	Title           string
	Rationale       string
	Complexity      Complexity
	Stories         []SuggestedStory
	Matches         func(OpportunityContext) bool
}

func hasEndpoints(context OpportunityContext) bool {
	return context.API != nil && len(context.API.Endpoints) > 0
}

func hasCommands(context OpportunityContext) bool {
	return context.API != nil && len(context.API.Commands) > 0
}

func hasTestFiles(context OpportunityContext) bool {
	return context.Tests != nil && context.Tests.TestFileCount > 0
}

func lacksTestPattern(pattern TestPattern) func(OpportunityContext) bool {
	return func(context OpportunityContext) bool {
		return hasTestFiles(context) && !context.Tests.HasPattern(pattern)
	}
}

func hasDatabaseEndpoints(context OpportunityContext) bool {
	if context.API == nil {
		return false
	}
	for _, endpoint := range context.API.Endpoints {
		if containsAnySubstring(endpoint.Path, databaseEndpointPathMarkers) {
			return true
		}
	}
	return false
}

func neverMatches(OpportunityContext) bool {
	return false
}

// DefaultOpportunityCatalog returns a fresh copy of the built-in opportunity catalog in evaluation order.
func DefaultOpportunityCatalog() []OpportunityPattern {
	return []OpportunityPattern{
		{
			OpportunityType: OpportunityTypeMissingAuditCommand,
			Title:           "Add Codebase Audit Command",
			Rationale:       "Project has CI/CD but no audit command to analyze code quality, architecture, and potential improvements.",
			Complexity:      ComplexityMedium,
			Stories: []SuggestedStory{{
				Title:       "Implement audit CLI command",
				Description: "Add a CLI command that runs comprehensive codebase analysis.",
				AcceptanceCriteria: []string{
					"Command accepts path to analyze",
					"Outputs findings in JSON and human-readable formats",
					"Integrates with CI/CD pipeline",
				},
				Priority: 1,
			}},
			Matches: func(context OpportunityContext) bool { return context.HasCICD },
		},
		{
			OpportunityType: OpportunityTypeMissingHealthCheck,
			Title:           "Add Health Check Endpoint",
			Rationale:       "API exists but lacks health check endpoint for monitoring and orchestration.",
			Complexity:      ComplexityLow,
			Stories: []SuggestedStory{{
				Title:       "Implement health check endpoint",
				Description: "Add /health endpoint that returns service health status.",
				AcceptanceCriteria: []string{
					"GET /health returns 200 when healthy",
					"Includes checks for database connectivity",
					"Includes checks for external dependencies",
					"Returns structured JSON response",
				},
				Priority: 1,
			}},
			Matches: func(context OpportunityContext) bool { return hasEndpoints(context) && !context.HasHealthCheck },
		},
		{
			OpportunityType: OpportunityTypeMissingAPIDocs,
			Title:           "Add OpenAPI Documentation",
			Rationale:       "API endpoints exist but lack OpenAPI/Swagger documentation for consumers.",
			Complexity:      ComplexityMedium,
			Stories: []SuggestedStory{
				{
					Title:       "Generate OpenAPI specification",
					Description: "Create OpenAPI 3.0 specification for all endpoints.",
					AcceptanceCriteria: []string{
						"All endpoints documented in OpenAPI format",
						"Request/response schemas defined",
						"Authentication requirements documented",
					},
					Priority: 1,
				},
				{
					Title:       "Add Swagger UI",
					Description: "Serve interactive API documentation via Swagger UI.",
					AcceptanceCriteria: []string{
						"Swagger UI accessible at /docs or /swagger",
						"Try-it-out functionality works",
					},
					Priority: 2,
				},
			},
			Matches: func(context OpportunityContext) bool { return hasEndpoints(context) && !context.HasOpenAPIDocs },
		},
		{
			OpportunityType: OpportunityTypeMissingCoverageReporting,
			Title:           "Add Test Coverage Reporting",
			Rationale:       "Tests exist but no coverage reporting is configured to track test coverage over time.",
			Complexity:      ComplexityLow,
			Stories: []SuggestedStory{{
				Title:       "Configure coverage reporting",
				Description: "Set up test coverage collection and reporting.",
				AcceptanceCriteria: []string{
					"Coverage reports generated on test runs",
					"Coverage integrated with CI/CD",
					"Coverage badge added to README",
				},
				Priority: 1,
			}},
			Matches: func(context OpportunityContext) bool { return hasTestFiles(context) && !context.HasCoverageConfig },
		},
		{
			OpportunityType: OpportunityTypeMissingBenchmarks,
			Title:           "Add Performance Benchmarks",
			Rationale:       "Tests exist but no benchmarks to track performance over time.",
			Complexity:      ComplexityMedium,
			Stories: []SuggestedStory{{
				Title:       "Implement benchmark suite",
				Description: "Add benchmarks for critical code paths.",
				AcceptanceCriteria: []string{
					"Benchmarks for key algorithms/operations",
					"Benchmark results tracked over time",
					"Performance regression detection in CI",
				},
				Priority: 2,
			}},
			Matches: func(context OpportunityContext) bool { return hasTestFiles(context) && !context.HasBenchmarks },
		},
		{
			OpportunityType: OpportunityTypeMissingShellCompletions,
			Title:           "Add Shell Completions",
			Rationale:       "CLI commands exist but no shell completions for better UX.",
			Complexity:      ComplexityLow,
			Stories: []SuggestedStory{{
				Title:       "Generate shell completions",
				Description: "Add shell completion scripts for bash, zsh, and fish.",
				AcceptanceCriteria: []string{
					"Bash completions generated",
					"Zsh completions generated",
					"Fish completions generated",
					"Installation instructions documented",
				},
				Priority: 3,
			}},
			Matches: func(context OpportunityContext) bool { return hasCommands(context) && !context.HasShellCompletions },
		},
		{
			OpportunityType: OpportunityTypeMissingManPages,
			Title:           "Add Man Pages",
			Rationale:       "CLI commands exist but no manual pages are generated for offline reference.",
			Complexity:      ComplexityLow,
			Stories: []SuggestedStory{{
				Title:       "Generate man pages",
				Description: "Produce manual pages for every CLI command from the command definitions.",
				AcceptanceCriteria: []string{
					"Man page generated for each command",
					"Man pages installed with the package",
				},
				Priority: 3,
			}},
			Matches: hasCommands,
		},
		{
			OpportunityType: OpportunityTypeMissingConfigValidation,
			Title:           "Add Configuration Validation",
			Rationale:       "Configuration is loaded without validation, so mistakes surface only at runtime.",
			Complexity:      ComplexityMedium,
			Stories: []SuggestedStory{{
				Title:       "Validate configuration on startup",
				Description: "Check configuration files against a schema before the application starts.",
				AcceptanceCriteria: []string{
					"Invalid configuration is rejected with a clear message",
					"Schema documented alongside the defaults",
				},
				Priority: 2,
			}},
			Matches: neverMatches,
		},
		{
			OpportunityType: OpportunityTypeMissingStructuredLogging,
			Title:           "Add Structured Logging",
			Rationale:       "API endpoints exist but logs are not emitted in a structured, machine-readable format.",
			Complexity:      ComplexityMedium,
			Stories: []SuggestedStory{{
				Title:       "Adopt structured logging",
				Description: "Emit logs as structured records with consistent fields.",
				AcceptanceCriteria: []string{
					"Logs emitted as JSON in production",
					"Request identifiers included in every log line",
					"Log level configurable at runtime",
				},
				Priority: 2,
			}},
			Matches: func(context OpportunityContext) bool { return !context.HasStructuredLogging && hasEndpoints(context) },
		},
		{
			OpportunityType: OpportunityTypeMissingErrorCatalog,
			Title:           "Add Error Catalog",
			Rationale:       "Errors are reported ad hoc without stable codes that users can look up.",
			Complexity:      ComplexityMedium,
			Stories: []SuggestedStory{{
				Title:       "Define an error catalog",
				Description: "Assign stable codes and documentation to user-facing errors.",
				AcceptanceCriteria: []string{
					"Every user-facing error has a stable code",
					"Error codes documented",
				},
				Priority: 3,
			}},
			Matches: neverMatches,
		},
		{
			OpportunityType: OpportunityTypeMissingServiceDiscovery,
			Title:           "Add Service Discovery",
			Rationale:       "Multiple services communicate through hard-coded addresses.",
			Complexity:      ComplexityHigh,
			Stories: []SuggestedStory{{
				Title:       "Introduce service discovery",
				Description: "Resolve service addresses through a registry instead of static configuration.",
				AcceptanceCriteria: []string{
					"Services register on startup",
					"Clients resolve peers through the registry",
				},
				Priority: 3,
			}},
			Matches: neverMatches,
		},
		{
			OpportunityType: OpportunityTypeMissingMigrations,
			Title:           "Add Database Migrations",
			Rationale:       "API endpoints suggest persistent data but no schema migrations are tracked.",
			Complexity:      ComplexityMedium,
			Stories: []SuggestedStory{{
				Title:       "Set up schema migrations",
				Description: "Version database schema changes with a migration tool.",
				AcceptanceCriteria: []string{
					"Migrations directory created",
					"Migrations applied automatically in CI",
					"Rollback procedure documented",
				},
				Priority: 1,
			}},
			Matches: func(context OpportunityContext) bool { return !context.HasMigrations && hasDatabaseEndpoints(context) },
		},
		{
			OpportunityType: OpportunityTypeMissingDockerCompose,
			Title:           "Add Docker Compose Configuration",
			Rationale:       "Dockerfile exists but no docker-compose for easy local development.",
			Complexity:      ComplexityLow,
			Stories: []SuggestedStory{{
				Title:       "Create docker-compose.yml",
				Description: "Add docker-compose configuration for local development.",
				AcceptanceCriteria: []string{
					"docker-compose up starts all services",
					"Includes all required dependencies (database, cache, etc.)",
					"Development and production configurations",
				},
				Priority: 1,
			}},
			Matches: func(context OpportunityContext) bool { return context.HasDockerfile && !context.HasDockerCompose },
		},
		{
			OpportunityType: OpportunityTypeMissingIntegrationTests,
			Title:           "Add Integration Tests",
			Rationale:       "Unit tests exist but no integration tests to verify component interactions.",
			Complexity:      ComplexityMedium,
			Stories: []SuggestedStory{{
				Title:       "Implement integration test suite",
				Description: "Add integration tests for critical workflows.",
				AcceptanceCriteria: []string{
					"Integration tests for main user flows",
					"Tests run in CI pipeline",
					"Test database/service isolation",
				},
				Priority: 1,
			}},
			Matches: lacksTestPattern(TestPatternIntegration),
		},
		{
			OpportunityType: OpportunityTypeMissingE2ETests,
			Title:           "Add End-to-End Tests",
			Rationale:       "Unit/integration tests exist but no e2e tests for full user journey validation.",
			Complexity:      ComplexityHigh,
			Stories: []SuggestedStory{{
				Title:       "Implement e2e test suite",
				Description: "Add end-to-end tests for critical user journeys.",
				AcceptanceCriteria: []string{
					"E2e tests for main user flows",
					"Tests run in CI pipeline",
					"Visual regression testing considered",
				},
				Priority: 2,
			}},
			Matches: lacksTestPattern(TestPatternE2E),
		},
		{
			OpportunityType: OpportunityTypeMissingRateLimiting,
			Title:           "Add Rate Limiting",
			Rationale:       "API endpoints exist without request rate limiting to protect the service from abuse.",
			Complexity:      ComplexityMedium,
			Stories: []SuggestedStory{{
				Title:       "Implement request rate limiting",
				Description: "Limit the request rate per client on public endpoints.",
				AcceptanceCriteria: []string{
					"Requests above the limit receive 429 responses",
					"Limits configurable per endpoint",
					"Rate limit headers included in responses",
				},
				Priority: 2,
			}},
			Matches: func(context OpportunityContext) bool { return hasEndpoints(context) && !context.HasRateLimiting },
		},
		{
			OpportunityType: OpportunityTypeMissingAuthentication,
			Title:           "Add Authentication",
			Rationale:       "API endpoints exist but no authentication routes were detected.",
			Complexity:      ComplexityHigh,
			Stories: []SuggestedStory{{
				Title:       "Implement authentication",
				Description: "Protect API endpoints with an authentication mechanism.",
				AcceptanceCriteria: []string{
					"Unauthenticated requests to protected endpoints are rejected",
					"Credentials are never logged",
					"Authentication flow documented",
				},
				Priority: 1,
			}},
			Matches: func(context OpportunityContext) bool { return hasEndpoints(context) && !context.HasAuthentication },
		},
		{
			OpportunityType: OpportunityTypeMissingLinting,
			Title:           "Add Linting Configuration",
			Rationale:       "Project lacks linting configuration to enforce code style and catch errors.",
			Complexity:      ComplexityLow,
			Stories: []SuggestedStory{{
				Title:       "Configure linting tools",
				Description: "Set up linting for consistent code style.",
				AcceptanceCriteria: []string{
					"Linter configured for the project language",
					"Linting runs in CI pipeline",
					"Documentation for running linting locally",
				},
				Priority: 1,
			}},
			Matches: func(context OpportunityContext) bool { return !context.HasLintingConfig },
		},
		{
			OpportunityType: OpportunityTypeMissingPreCommitHooks,
			Title:           "Add Pre-commit Hooks",
			Rationale:       "Project lacks pre-commit hooks to catch issues before they're committed.",
			Complexity:      ComplexityLow,
			Stories: []SuggestedStory{{
				Title:       "Configure pre-commit hooks",
				Description: "Set up pre-commit hooks for linting, formatting, and testing.",
				AcceptanceCriteria: []string{
					"Pre-commit framework configured",
					"Hooks for linting and formatting",
					"Documentation for hook installation",
				},
				Priority: 2,
			}},
			// Gated on the linting flag; there is no pre-commit specific positive signal yet.
			Matches: func(context OpportunityContext) bool { return context.HasLintingConfig && !context.HasPreCommitHooks },
		},
	}
}

func titleContainsAny(title string, fragments ...string) bool {
	for _, fragment := range fragments {
		if strings.Contains(title, fragment) {
			return true
		}
	}
	return false
}
