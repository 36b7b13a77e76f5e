package pathutils_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/codeaudit/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/auditor"

func TestConfiguredPathResolverResolve(testInstance *testing.T) {
	testCases := []struct {
		name         string
		candidate    string
		expectedPath string
	}{
		{name: "empty", candidate: "", expectedPath: ""},
		{name: "blank", candidate: "   ", expectedPath: ""},
		{name: "tilde_only", candidate: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", candidate: " ~/reports/audit.json ", expectedPath: filepath.Join(testHomeDirectoryConstant, "reports", "audit.json")},
		{name: "tilde_prefix_cleaned", candidate: "~/facts/../facts.yaml", expectedPath: filepath.Join(testHomeDirectoryConstant, "facts.yaml")},
		{name: "absolute_unchanged", candidate: "/srv/project", expectedPath: "/srv/project"},
		{name: "relative_trimmed", candidate: "facts.yaml\n", expectedPath: "facts.yaml"},
		{name: "other_user_unchanged", candidate: "~other/project", expectedPath: "~other/project"},
	}

	resolver := pathutils.NewConfiguredPathResolver(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, resolver.Resolve(testCase.candidate))
		})
	}
}

func TestConfiguredPathResolverLookupFailureLeavesPath(testInstance *testing.T) {
	testCases := []struct {
		name   string
		lookup pathutils.HomeDirectoryLookup
	}{
		{name: "lookup_error", lookup: func() (string, error) { return "", errors.New("no home") }},
		{name: "empty_home", lookup: func() (string, error) { return "", nil }},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, "~/facts.yaml", pathutils.NewConfiguredPathResolver(testCase.lookup).Resolve(" ~/facts.yaml"))
		})
	}
}

func TestConfiguredPathResolverDefaultsToUserHome(testInstance *testing.T) {
	testInstance.Setenv("HOME", testHomeDirectoryConstant)
	require.Equal(testInstance, filepath.Join(testHomeDirectoryConstant, "audit.md"), pathutils.NewConfiguredPathResolver(nil).Resolve("~/audit.md"))
}
