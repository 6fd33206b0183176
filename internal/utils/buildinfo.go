// Package utils provides helper functions, including version retrieval.
package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion = "unknown"
)

// GetApplicationVersion attempts to determine the application version using various methods.
// It checks Go build info first, then falls back to git describe commands if available.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return unknownVersion
	}
	repositoryRoot, repositoryFound := FindRepositoryRoot(workingDirectory)
	if repositoryFound {
		// #nosec G204
		gitExactCommand := exec.Command("git", "describe", "--tags", "--exact-match")
		gitExactCommand.Dir = repositoryRoot
		gitExactOutput, errorGitExact := gitExactCommand.Output()
		if errorGitExact == nil && len(gitExactOutput) > 0 {
			return strings.TrimSpace(string(gitExactOutput))
		}

		// #nosec G204
		gitLongCommand := exec.Command("git", "describe", "--tags", "--long", "--dirty")
		gitLongCommand.Dir = repositoryRoot
		gitLongOutput, errorGitLong := gitLongCommand.Output()
		if errorGitLong == nil && len(gitLongOutput) > 0 {
			return strings.TrimSpace(string(gitLongOutput))
		}
	}

	return unknownVersion
}

// FindRepositoryRoot searches upward from the provided absolute directory until it
// locates a directory containing a .git entry. The entry may be a directory or, for
// worktrees and submodules, a file.
func FindRepositoryRoot(startDirectory string) (string, bool) {
	currentDirectory := filepath.Clean(startDirectory)
	for {
		if HasRepositoryMetadata(currentDirectory) {
			return currentDirectory, true
		}

		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", false
		}
		currentDirectory = parentDirectory
	}
}

// HasRepositoryMetadata reports whether directory directly contains a .git entry.
func HasRepositoryMetadata(directory string) bool {
	_, statError := os.Lstat(filepath.Join(directory, GitDirectoryName))
	return statError == nil
}
