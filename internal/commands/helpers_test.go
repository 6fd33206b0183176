package commands_test

import (
	"os"
	"path/filepath"
	"testing"
)

const (
	fixtureFilePermissions      = 0o600
	fixtureDirectoryPermissions = 0o755
)

func isolateGlobalIgnore(testingInstance *testing.T) {
	testingInstance.Helper()
	homeDirectory := testingInstance.TempDir()
	testingInstance.Setenv("HOME", homeDirectory)
	testingInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, ".config"))
}

func writeFixtureFile(testingInstance *testing.T, root string, relativePath string, content string) string {
	testingInstance.Helper()
	absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
	if mkdirError := os.MkdirAll(filepath.Dir(absolutePath), fixtureDirectoryPermissions); mkdirError != nil {
		testingInstance.Fatalf("create parent of %s: %v", relativePath, mkdirError)
	}
	if writeError := os.WriteFile(absolutePath, []byte(content), fixtureFilePermissions); writeError != nil {
		testingInstance.Fatalf("write %s: %v", relativePath, writeError)
	}
	return absolutePath
}

func makeDirectory(testingInstance *testing.T, root string, relativePath string) {
	testingInstance.Helper()
	if mkdirError := os.MkdirAll(filepath.Join(root, filepath.FromSlash(relativePath)), fixtureDirectoryPermissions); mkdirError != nil {
		testingInstance.Fatalf("create %s: %v", relativePath, mkdirError)
	}
}
