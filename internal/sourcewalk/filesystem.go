package sourcewalk

import (
	"io/fs"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	gitIgnoreFileNameConstant        = ".gitignore"
	extensionSeparatorConstant       = "."
	slashSeparatorConstant           = "/"
	currentDirectoryConstant         = "."
)

var defaultSourceExtensions = []string{
	"rs", "js", "ts", "tsx", "jsx", "py", "go", "java", "kt", "swift",
	"c", "cpp", "h", "hpp", "cs", "rb", "php", "scala", "vue", "svelte",
}

// SourceFile describes a file selected by the walker.
type SourceFile struct {
	AbsolutePath string
	RelativePath string
	Extension    string
}

// ignoreScope holds the rules of one .gitignore file and the slash-separated directory it applies to.
type ignoreScope struct {
	directory string
	rules     *ignore.GitIgnore
}

func (scope ignoreScope) matches(relativePath string, isDirectory bool) bool {
	scopedPath := relativePath
	if len(scope.directory) > 0 {
		if !strings.HasPrefix(relativePath, scope.directory+slashSeparatorConstant) {
			return false
		}
		scopedPath = strings.TrimPrefix(relativePath, scope.directory+slashSeparatorConstant)
	}
	if isDirectory {
		scopedPath += slashSeparatorConstant
	}
	return scope.rules.MatchesPath(scopedPath)
}

// FilesystemSourceWalker enumerates source files beneath a root using filepath.WalkDir.
// Paths matched by .gitignore files at the root or in any visited directory are skipped.
type FilesystemSourceWalker struct {
	allowedExtensions map[string]struct{}
}

// NewFilesystemSourceWalker constructs a walker restricted to the default source extensions.
func NewFilesystemSourceWalker() *FilesystemSourceWalker {
	return NewFilesystemSourceWalkerWithExtensions(defaultSourceExtensions)
}

// NewFilesystemSourceWalkerWithExtensions constructs a walker restricted to the provided extensions (without dots).
func NewFilesystemSourceWalkerWithExtensions(extensions []string) *FilesystemSourceWalker {
	allowedExtensions := make(map[string]struct{}, len(extensions))
	for _, extension := range extensions {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), extensionSeparatorConstant))
		if len(normalized) == 0 {
			continue
		}
		allowedExtensions[normalized] = struct{}{}
	}
	return &FilesystemSourceWalker{allowedExtensions: allowedExtensions}
}

// DefaultSourceExtensions returns the extensions treated as source code.
func DefaultSourceExtensions() []string {
	return append([]string{}, defaultSourceExtensions...)
}

// IsSourceExtension reports whether the lowercase extension (without dot) is accepted by the walker.
func (walker *FilesystemSourceWalker) IsSourceExtension(extension string) bool {
	_, allowed := walker.allowedExtensions[strings.ToLower(extension)]
	return allowed
}

// WalkSourceFiles visits every source file under root in lexical order.
// Unreadable entries are skipped; the .git metadata directory and git-ignored paths are never visited.
func (walker *FilesystemSourceWalker) WalkSourceFiles(root string, visit func(SourceFile) error) error {
	var scopes []ignoreScope
	return filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return nil
		}

		relativePath, relativeError := filepath.Rel(root, path)
		if relativeError != nil {
			relativePath = path
		}
		relativePath = filepath.ToSlash(relativePath)

		if directoryEntry.IsDir() {
			if directoryEntry.Name() == gitMetadataDirectoryNameConstant {
				return fs.SkipDir
			}
			if relativePath == currentDirectoryConstant {
				relativePath = ""
			} else if ignoredByScopes(scopes, relativePath, true) {
				return fs.SkipDir
			}
			if rules, compileError := ignore.CompileIgnoreFile(filepath.Join(path, gitIgnoreFileNameConstant)); compileError == nil {
				scopes = append(scopes, ignoreScope{directory: relativePath, rules: rules})
			}
			return nil
		}

		if !directoryEntry.Type().IsRegular() {
			return nil
		}

		extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), extensionSeparatorConstant))
		if !walker.IsSourceExtension(extension) {
			return nil
		}

		if ignoredByScopes(scopes, relativePath, false) {
			return nil
		}

		return visit(SourceFile{
			AbsolutePath: path,
			RelativePath: relativePath,
			Extension:    extension,
		})
	})
}

func ignoredByScopes(scopes []ignoreScope, relativePath string, isDirectory bool) bool {
	for _, scope := range scopes {
		if scope.matches(relativePath, isDirectory) {
			return true
		}
	}
	return false
}
