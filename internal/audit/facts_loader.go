package audit

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const (
	factsDecodeErrorTemplateConstant     = "unable to decode facts document: %w"
	factsSchemaErrorTemplateConstant     = "unable to validate facts document: %w"
	factsViolationsErrorTemplateConstant = "facts document does not match schema: %s"
	factsViolationSeparatorConstant      = "; "
	unsupportedEcosystemErrorTemplate    = "dependency %q declares unsupported ecosystem %q"
)

// Package ecosystems whose manifests the dependency extractors understand. An empty ecosystem is accepted.
var supportedDependencyEcosystems = map[string]struct{}{
	"cargo":    {},
	"npm":      {},
	"yarn":     {},
	"pnpm":     {},
	"pip":      {},
	"pypi":     {},
	"poetry":   {},
	"go":       {},
	"maven":    {},
	"gradle":   {},
	"nuget":    {},
	"rubygems": {},
	"bundler":  {},
	"composer": {},
	"swift":    {},
	"hex":      {},
	"pub":      {},
}

//go:embed facts_schema.json
var factsSchemaJSON string

var factsSchemaLoader = gojsonschema.NewStringLoader(factsSchemaJSON)

// FactsDocument carries analyses produced by upstream extractors together with findings from other detectors.
type FactsDocument struct {
	API              *APIAnalysis              `json:"api,omitempty" yaml:"api,omitempty"`
	Tests            *TestAnalysis             `json:"tests,omitempty" yaml:"tests,omitempty"`
	Documentation    *DocumentationAnalysis    `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	ArchitectureGaps *ArchitectureGapsAnalysis `json:"architecture_gaps,omitempty" yaml:"architecture_gaps,omitempty"`
	Dependencies     *DependencyAnalysis       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Findings         []AuditFinding            `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// FactsLoader reads and validates facts documents.
type FactsLoader struct {
	fileReader FileReader
}

// NewFactsLoader constructs a loader reading through fileReader.
func NewFactsLoader(fileReader FileReader) *FactsLoader {
	return &FactsLoader{fileReader: fileReader}
}

// Load reads the document at path. An empty path yields an empty document.
func (loader *FactsLoader) Load(path string) (FactsDocument, error) {
	if len(strings.TrimSpace(path)) == 0 {
		return FactsDocument{}, nil
	}
	contents, readError := loader.fileReader.ReadFile(path)
	if readError != nil {
		return FactsDocument{}, newError(ErrorKindIO, path, readError)
	}
	document, parseError := ParseFacts(contents)
	if parseError != nil {
		return FactsDocument{}, newError(ErrorKindParse, path, parseError)
	}
	if ecosystemError := validateDependencyEcosystems(document.Dependencies); ecosystemError != nil {
		return FactsDocument{}, newError(ErrorKindUnsupportedLanguage, path, ecosystemError)
	}
	return document, nil
}

func validateDependencyEcosystems(dependencies *DependencyAnalysis) error {
	if dependencies == nil {
		return nil
	}
	for _, dependency := range dependencies.Dependencies {
		ecosystem := strings.ToLower(strings.TrimSpace(dependency.Ecosystem))
		if len(ecosystem) == 0 {
			continue
		}
		if _, supported := supportedDependencyEcosystems[ecosystem]; !supported {
			return fmt.Errorf(unsupportedEcosystemErrorTemplate, dependency.Name, dependency.Ecosystem)
		}
	}
	return nil
}

// ParseFacts decodes a YAML or JSON facts document after validating it against the embedded schema.
func ParseFacts(contents []byte) (FactsDocument, error) {
	var generic any
	if decodeError := yaml.Unmarshal(contents, &generic); decodeError != nil {
		return FactsDocument{}, fmt.Errorf(factsDecodeErrorTemplateConstant, decodeError)
	}
	if generic == nil {
		return FactsDocument{}, nil
	}

	result, validationError := gojsonschema.Validate(factsSchemaLoader, gojsonschema.NewGoLoader(generic))
	if validationError != nil {
		return FactsDocument{}, fmt.Errorf(factsSchemaErrorTemplateConstant, validationError)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, violation := range result.Errors() {
			violations = append(violations, violation.String())
		}
		return FactsDocument{}, fmt.Errorf(factsViolationsErrorTemplateConstant, strings.Join(violations, factsViolationSeparatorConstant))
	}

	var document FactsDocument
	if decodeError := yaml.Unmarshal(contents, &document); decodeError != nil {
		return FactsDocument{}, fmt.Errorf(factsDecodeErrorTemplateConstant, decodeError)
	}
	return document, nil
}

type outdatedDocument struct {
	LatestVersion    string `yaml:"latest_version"`
	IsMajorBump      *bool  `yaml:"is_major_bump"`
	SecurityAdvisory string `yaml:"security_advisory"`
}

type dependencyDocument struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	Ecosystem    string            `yaml:"ecosystem"`
	IsDev        bool              `yaml:"is_dev"`
	ManifestPath string            `yaml:"manifest_path"`
	Outdated     *outdatedDocument `yaml:"outdated"`
}

var errNilDependencyNode = errors.New("dependency node is empty")

// UnmarshalYAML decodes a dependency, deriving is_major_bump from the versions when it is omitted.
func (dependency *Dependency) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		return errNilDependencyNode
	}
	var decoded dependencyDocument
	if decodeError := node.Decode(&decoded); decodeError != nil {
		return decodeError
	}

	*dependency = Dependency{
		Name:         decoded.Name,
		Version:      decoded.Version,
		Ecosystem:    decoded.Ecosystem,
		IsDev:        decoded.IsDev,
		ManifestPath: decoded.ManifestPath,
	}
	if decoded.Outdated == nil {
		return nil
	}

	outdated := NewOutdatedInfo(decoded.Version, decoded.Outdated.LatestVersion, decoded.Outdated.SecurityAdvisory)
	if decoded.Outdated.IsMajorBump != nil {
		outdated.IsMajorBump = *decoded.Outdated.IsMajorBump
	}
	dependency.Outdated = &outdated
	return nil
}
