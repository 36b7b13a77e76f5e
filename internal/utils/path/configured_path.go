package pathutils

import (
	"os"
	"path/filepath"
	"strings"
)

const homeShortcutConstant = "~"

// HomeDirectoryLookup resolves the directory a leading "~" stands for.
type HomeDirectoryLookup func() (string, error)

// ConfiguredPathResolver normalizes the root, facts and output paths read from flags and configuration files.
type ConfiguredPathResolver struct {
	lookupHomeDirectory HomeDirectoryLookup
}

// NewConfiguredPathResolver constructs a resolver; a nil lookup falls back to os.UserHomeDir.
func NewConfiguredPathResolver(lookupHomeDirectory HomeDirectoryLookup) ConfiguredPathResolver {
	if lookupHomeDirectory == nil {
		lookupHomeDirectory = os.UserHomeDir
	}
	return ConfiguredPathResolver{lookupHomeDirectory: lookupHomeDirectory}
}

// Resolve trims the candidate and expands a "~" or "~/" prefix.
// Blank input yields an empty path. Paths naming another user's home, or any path when the lookup fails, are returned trimmed but otherwise untouched.
func (resolver ConfiguredPathResolver) Resolve(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if !strings.HasPrefix(trimmedPath, homeShortcutConstant) {
		return trimmedPath
	}

	remainder := strings.TrimPrefix(trimmedPath, homeShortcutConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return trimmedPath
	}

	homeDirectory, lookupError := resolver.lookupHomeDirectory()
	if lookupError != nil || len(homeDirectory) == 0 {
		return trimmedPath
	}
	return filepath.Join(homeDirectory, remainder)
}
