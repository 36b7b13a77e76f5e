package audit

import (
	"strings"

	"golang.org/x/mod/semver"
)

const (
	semanticVersionPrefixConstant = "v"
	versionRequirementOperators   = "^~=<>! "
)

// HTTPEndpoint is an HTTP route detected by an upstream API extractor.
type HTTPEndpoint struct {
	Method    string `json:"method" yaml:"method"`
	Path      string `json:"path" yaml:"path"`
	Handler   string `json:"handler,omitempty" yaml:"handler,omitempty"`
	File      string `json:"file" yaml:"file"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	Framework string `json:"framework" yaml:"framework"`
}

// CLICommand is a command-line entry point detected upstream.
type CLICommand struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Subcommands []string `json:"subcommands,omitempty" yaml:"subcommands,omitempty"`
	File        string   `json:"file" yaml:"file"`
	Line        int      `json:"line,omitempty" yaml:"line,omitempty"`
	Framework   string   `json:"framework" yaml:"framework"`
}

// MCPTool is a model-context-protocol tool detected upstream.
type MCPTool struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Inputs      []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	File        string   `json:"file" yaml:"file"`
	Line        int      `json:"line,omitempty" yaml:"line,omitempty"`
}

// APIAnalysis summarises the API surface of the project.
type APIAnalysis struct {
	Endpoints []HTTPEndpoint `json:"endpoints" yaml:"endpoints"`
	Commands  []CLICommand   `json:"commands" yaml:"commands"`
	MCPTools  []MCPTool      `json:"mcp_tools" yaml:"mcp_tools"`
}

// TestPattern classifies a family of tests.
type TestPattern string

// Supported test patterns.
const (
	TestPatternUnit        TestPattern = "unit"
	TestPatternIntegration TestPattern = "integration"
	TestPatternE2E         TestPattern = "e2e"
	TestPatternProperty    TestPattern = "property"
	TestPatternBenchmark   TestPattern = "benchmark"
	TestPatternSnapshot    TestPattern = "snapshot"
	TestPatternUnknown     TestPattern = "unknown"
)

// TestPatternInfo counts the tests following a pattern.
type TestPatternInfo struct {
	Pattern  TestPattern `json:"pattern" yaml:"pattern"`
	Count    int         `json:"count" yaml:"count"`
	Examples []string    `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// TestAnalysis summarises test coverage of the project.
type TestAnalysis struct {
	TestFileCount     int               `json:"test_file_count" yaml:"test_file_count"`
	TestFunctionCount int               `json:"test_function_count" yaml:"test_function_count"`
	TestPatterns      []TestPatternInfo `json:"test_patterns" yaml:"test_patterns"`
}

// HasPattern reports whether the analysis detected the provided pattern.
func (analysis TestAnalysis) HasPattern(pattern TestPattern) bool {
	for _, patternInfo := range analysis.TestPatterns {
		if patternInfo.Pattern == pattern {
			return true
		}
	}
	return false
}

// DocumentationAnalysis summarises documentation coverage.
type DocumentationAnalysis struct {
	ReadmeExists          bool     `json:"readme_exists" yaml:"readme_exists"`
	TotalPublicItems      int      `json:"total_public_items" yaml:"total_public_items"`
	DocumentedPublicItems int      `json:"documented_public_items" yaml:"documented_public_items"`
	DocCoveragePercentage float64  `json:"doc_coverage_percentage" yaml:"doc_coverage_percentage"`
	UndocumentedEndpoints []string `json:"undocumented_endpoints,omitempty" yaml:"undocumented_endpoints,omitempty"`
	Observations          []string `json:"observations,omitempty" yaml:"observations,omitempty"`
}

// ArchitectureGap is a structural weakness reported by an upstream detector.
type ArchitectureGap struct {
	GapType        string   `json:"gap_type" yaml:"gap_type"`
	Files          []string `json:"files,omitempty" yaml:"files,omitempty"`
	Description    string   `json:"description" yaml:"description"`
	Severity       Severity `json:"severity" yaml:"severity"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
}

// ArchitectureGapsAnalysis lists architecture gaps.
type ArchitectureGapsAnalysis struct {
	Gaps         []ArchitectureGap `json:"gaps" yaml:"gaps"`
	Observations []string          `json:"observations,omitempty" yaml:"observations,omitempty"`
}

// OutdatedInfo describes how far a dependency lags behind its latest release.
type OutdatedInfo struct {
	LatestVersion    string `json:"latest_version" yaml:"latest_version"`
	IsMajorBump      bool   `json:"is_major_bump" yaml:"is_major_bump"`
	SecurityAdvisory string `json:"security_advisory,omitempty" yaml:"security_advisory,omitempty"`
}

// HasSecurityAdvisory reports whether an advisory is attached.
func (info OutdatedInfo) HasSecurityAdvisory() bool {
	return len(strings.TrimSpace(info.SecurityAdvisory)) > 0
}

// NewOutdatedInfo builds OutdatedInfo, deriving the major-bump flag from the two versions.
func NewOutdatedInfo(currentVersion string, latestVersion string, securityAdvisory string) OutdatedInfo {
	return OutdatedInfo{
		LatestVersion:    latestVersion,
		IsMajorBump:      IsMajorVersionBump(currentVersion, latestVersion),
		SecurityAdvisory: securityAdvisory,
	}
}

// IsMajorVersionBump reports whether latestVersion has a higher major component than currentVersion.
// Versions that are not semantic versions never count as major bumps.
func IsMajorVersionBump(currentVersion string, latestVersion string) bool {
	canonicalCurrent := canonicalSemanticVersion(currentVersion)
	canonicalLatest := canonicalSemanticVersion(latestVersion)
	if !semver.IsValid(canonicalCurrent) || !semver.IsValid(canonicalLatest) {
		return false
	}
	return semver.Compare(semver.Major(canonicalLatest), semver.Major(canonicalCurrent)) > 0
}

func canonicalSemanticVersion(version string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(version), versionRequirementOperators)
	if len(trimmed) == 0 {
		return ""
	}
	if !strings.HasPrefix(trimmed, semanticVersionPrefixConstant) {
		trimmed = semanticVersionPrefixConstant + trimmed
	}
	return trimmed
}

// Dependency is a declared package dependency.
type Dependency struct {
	Name         string        `json:"name" yaml:"name"`
	Version      string        `json:"version" yaml:"version"`
	Ecosystem    string        `json:"ecosystem" yaml:"ecosystem"`
	IsDev        bool          `json:"is_dev" yaml:"is_dev"`
	ManifestPath string        `json:"manifest_path" yaml:"manifest_path"`
	Outdated     *OutdatedInfo `json:"outdated,omitempty" yaml:"outdated,omitempty"`
}

// DependencyAnalysis lists dependencies found in project manifests.
type DependencyAnalysis struct {
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
}
