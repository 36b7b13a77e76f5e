package sourcewalk_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/codeaudit/internal/sourcewalk"
)

func createFiles(testInstance *testing.T, relativePaths []string) string {
	testInstance.Helper()
	root := testInstance.TempDir()
	for _, relativePath := range relativePaths {
		absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte("content"), 0o600))
	}
	return root
}

func collectRelativePaths(testInstance *testing.T, walker *sourcewalk.FilesystemSourceWalker, root string) []string {
	testInstance.Helper()
	var visited []string
	require.NoError(testInstance, walker.WalkSourceFiles(root, func(sourceFile sourcewalk.SourceFile) error {
		require.Equal(testInstance, filepath.Join(root, filepath.FromSlash(sourceFile.RelativePath)), sourceFile.AbsolutePath)
		visited = append(visited, sourceFile.RelativePath)
		return nil
	}))
	return visited
}

func TestFilesystemSourceWalkerSelectsSourceFiles(testInstance *testing.T) {
	root := createFiles(testInstance, []string{
		"main.go",
		"README.md",
		"web/App.TSX",
		"web/index.js",
		".git/hooks/pre-commit.py",
		"scripts/build.sh",
		"src/lib.rs",
	})

	visited := collectRelativePaths(testInstance, sourcewalk.NewFilesystemSourceWalker(), root)
	require.Equal(testInstance, []string{"main.go", "src/lib.rs", "web/App.TSX", "web/index.js"}, visited)
}

func TestFilesystemSourceWalkerCustomExtensions(testInstance *testing.T) {
	root := createFiles(testInstance, []string{"main.go", "notes.md", "script.sh"})

	walker := sourcewalk.NewFilesystemSourceWalkerWithExtensions([]string{".MD", " sh ", ""})
	require.True(testInstance, walker.IsSourceExtension("md"))
	require.True(testInstance, walker.IsSourceExtension("SH"))
	require.False(testInstance, walker.IsSourceExtension("go"))
	require.Equal(testInstance, []string{"notes.md", "script.sh"}, collectRelativePaths(testInstance, walker, root))
}

func TestFilesystemSourceWalkerReportsExtension(testInstance *testing.T) {
	root := createFiles(testInstance, []string{"component.Vue"})

	var extensions []string
	require.NoError(testInstance, sourcewalk.NewFilesystemSourceWalker().WalkSourceFiles(root, func(sourceFile sourcewalk.SourceFile) error {
		extensions = append(extensions, sourceFile.Extension)
		return nil
	}))
	require.Equal(testInstance, []string{"vue"}, extensions)
}

func TestFilesystemSourceWalkerStopsOnVisitorError(testInstance *testing.T) {
	root := createFiles(testInstance, []string{"a.go", "b.go"})
	expectedError := errors.New("stop")

	visits := 0
	walkError := sourcewalk.NewFilesystemSourceWalker().WalkSourceFiles(root, func(sourcewalk.SourceFile) error {
		visits++
		return expectedError
	})
	require.ErrorIs(testInstance, walkError, expectedError)
	require.Equal(testInstance, 1, visits)
}

func TestFilesystemSourceWalkerMissingRoot(testInstance *testing.T) {
	visits := 0
	walkError := sourcewalk.NewFilesystemSourceWalker().WalkSourceFiles(filepath.Join(testInstance.TempDir(), "absent"), func(sourcewalk.SourceFile) error {
		visits++
		return nil
	})
	require.NoError(testInstance, walkError)
	require.Zero(testInstance, visits)
}

func TestDefaultSourceExtensionsReturnsCopy(testInstance *testing.T) {
	extensions := sourcewalk.DefaultSourceExtensions()
	require.Contains(testInstance, extensions, "go")
	extensions[0] = "mutated"
	require.NotContains(testInstance, sourcewalk.DefaultSourceExtensions(), "mutated")
}

func TestFilesystemSourceWalkerHonorsGitIgnore(testInstance *testing.T) {
	root := createFiles(testInstance, []string{
		"src/main.rs",
		"node_modules/lib/index.js",
		"target/debug/build/out.rs",
		"web/app.js",
		"web/bundle.gen.js",
		"web/nested/page.gen.js",
		"logs/debug.py",
		"logs/keep.py",
	})
	ignoreFiles := map[string]string{
		".gitignore":     "node_modules/\ntarget/\n# comment\nlogs/*.py\n!logs/keep.py\n",
		"web/.gitignore": "*.gen.js\n",
	}
	for relativePath, contents := range ignoreFiles {
		require.NoError(testInstance, os.WriteFile(filepath.Join(root, filepath.FromSlash(relativePath)), []byte(contents), 0o600))
	}

	visited := collectRelativePaths(testInstance, sourcewalk.NewFilesystemSourceWalker(), root)
	require.Equal(testInstance, []string{"logs/keep.py", "src/main.rs", "web/app.js"}, visited)
}

func TestFilesystemSourceWalkerNestedGitIgnoreIsScoped(testInstance *testing.T) {
	root := createFiles(testInstance, []string{"web/util.gen.js", "api/util.gen.js"})
	require.NoError(testInstance, os.WriteFile(filepath.Join(root, "web", ".gitignore"), []byte("*.gen.js\n"), 0o600))

	visited := collectRelativePaths(testInstance, sourcewalk.NewFilesystemSourceWalker(), root)
	require.Equal(testInstance, []string{"api/util.gen.js"}, visited)
}
