package audit

import (
	"io/fs"

	"github.com/temirov/codeaudit/internal/sourcewalk"
)

// SourceFileWalker enumerates the source files of a project.
type SourceFileWalker interface {
	WalkSourceFiles(root string, visit func(sourcewalk.SourceFile) error) error
}

// FileReader reads whole files.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// PathProber answers existence checks for well-known project paths.
type PathProber interface {
	Stat(path string) (fs.FileInfo, error)
}

// FileSystem provides filesystem operations required by the audit workflows.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// AnswerPrompter presents the questionnaire and returns the raw answer line.
type AnswerPrompter interface {
	PromptAnswers(questions []Question) (string, error)
}
