package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/cfl/internal/commands"
	"github.com/temirov/cfl/internal/services/clipboard"
	"github.com/temirov/cfl/internal/types"
	"github.com/temirov/cfl/internal/utils"
)

const (
	fixtureFilePermissions      = 0o600
	fixtureDirectoryPermissions = 0o755
)

type recordingCopier struct {
	copies    []string
	copyError error
}

func (copier *recordingCopier) Copy(text string) error {
	if copier.copyError != nil {
		return copier.copyError
	}
	copier.copies = append(copier.copies, text)
	return nil
}

// prepareWorkspace isolates HOME and switches into a fresh working directory.
func prepareWorkspace(testingInstance *testing.T) string {
	testingInstance.Helper()
	homeDirectory := testingInstance.TempDir()
	testingInstance.Setenv("HOME", homeDirectory)
	testingInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, ".config"))
	workingDirectory := testingInstance.TempDir()
	changeWorkingDirectory(testingInstance, workingDirectory)
	return workingDirectory
}

func writeFixtureFile(testingInstance *testing.T, root string, relativePath string, content string) {
	testingInstance.Helper()
	absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
	if mkdirError := os.MkdirAll(filepath.Dir(absolutePath), fixtureDirectoryPermissions); mkdirError != nil {
		testingInstance.Fatalf("create parent of %s: %v", relativePath, mkdirError)
	}
	if writeError := os.WriteFile(absolutePath, []byte(content), fixtureFilePermissions); writeError != nil {
		testingInstance.Fatalf("write %s: %v", relativePath, writeError)
	}
}

func runCommand(testingInstance *testing.T, copier *recordingCopier, arguments ...string) (string, error) {
	testingInstance.Helper()
	var stdout bytes.Buffer
	rootCommand := NewRootCommand(Dependencies{Clipboard: copier, Stdout: &stdout})
	rootCommand.SetErr(&bytes.Buffer{})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	executionError := rootCommand.Execute()
	return stdout.String(), executionError
}

func TestRootCommandCopiesMatchingFiles(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFixtureFile(testingInstance, workingDirectory, "a.rs", "x")
	writeFixtureFile(testingInstance, workingDirectory, "b.txt", "y")

	copier := &recordingCopier{}
	output, executionError := runCommand(testingInstance, copier, ".", "-i", "*.rs")
	if executionError != nil {
		testingInstance.Fatalf("command returned error: %v", executionError)
	}
	if len(copier.copies) != 1 || copier.copies[0] != "```a.rs\nx\n```\n" {
		testingInstance.Fatalf("clipboard received %q", copier.copies)
	}
	for _, expectedFragment := range []string{
		"Successfully copied 1 files to clipboard",
		"  • a.rs (1 bytes, 1 tokens)",
		"└── a.rs\n",
		"└── b.txt\n",
		"Include patterns: *.rs",
	} {
		if !strings.Contains(output, expectedFragment) {
			testingInstance.Errorf("output missing %q:\n%s", expectedFragment, output)
		}
	}
}

func TestRootCommandShowListsWithoutCopying(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFixtureFile(testingInstance, workingDirectory, "a.rs", "fn main() { println!(\"hello\"); }")

	copier := &recordingCopier{}
	output, executionError := runCommand(testingInstance, copier, "--show")
	if executionError != nil {
		testingInstance.Fatalf("command returned error: %v", executionError)
	}
	if len(copier.copies) != 0 {
		testingInstance.Fatalf("show mode wrote to the clipboard: %q", copier.copies)
	}
	if !strings.HasPrefix(output, "Target files:\n") {
		testingInstance.Errorf("unexpected show output:\n%s", output)
	}
	if !strings.Contains(output, "  a.rs (32 bytes, 4 tokens)\n") {
		testingInstance.Errorf("show output missing file line:\n%s", output)
	}
	if !strings.Contains(output, "Total: 1 files") {
		testingInstance.Errorf("show output missing total:\n%s", output)
	}
}

func TestRootCommandJSONReport(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFixtureFile(testingInstance, workingDirectory, "src/main.go", "package main")

	copier := &recordingCopier{}
	output, executionError := runCommand(testingInstance, copier, "--format", "JSON", "--clipboard=false")
	if executionError != nil {
		testingInstance.Fatalf("command returned error: %v", executionError)
	}
	if len(copier.copies) != 0 {
		testingInstance.Fatalf("clipboard disabled but received %q", copier.copies)
	}
	var report types.Report
	if decodeError := json.Unmarshal([]byte(output), &report); decodeError != nil {
		testingInstance.Fatalf("output is not JSON: %v\n%s", decodeError, output)
	}
	if report.Copied {
		testingInstance.Errorf("report.Copied = true with clipboard disabled")
	}
	if len(report.Files) != 1 || report.Files[0].Path != "src/main.go" {
		testingInstance.Fatalf("report files = %+v", report.Files)
	}
	if report.Summary.Model != "heuristic" {
		testingInstance.Errorf("summary model = %q", report.Summary.Model)
	}
	if report.DirectoryStructure != "└── src/\n  └── main.go\n" {
		testingInstance.Errorf("directory structure = %q", report.DirectoryStructure)
	}
}

func TestRootCommandAcceptsCommaSeparatedPaths(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFixtureFile(testingInstance, workingDirectory, "src/lib.rs", "pub fn f() {}")
	writeFixtureFile(testingInstance, workingDirectory, "Cargo.toml", "[package]")
	writeFixtureFile(testingInstance, workingDirectory, "README.md", "readme")

	copier := &recordingCopier{}
	if _, executionError := runCommand(testingInstance, copier, "src,Cargo.toml,src"); executionError != nil {
		testingInstance.Fatalf("command returned error: %v", executionError)
	}
	if len(copier.copies) != 1 {
		testingInstance.Fatalf("expected one clipboard write, got %d", len(copier.copies))
	}
	expected := "```src/lib.rs\npub fn f() {}\n```\n```Cargo.toml\n[package]\n```\n"
	if copier.copies[0] != expected {
		testingInstance.Fatalf("clipboard = %q, want %q", copier.copies[0], expected)
	}
}

func TestRootCommandMissingPath(testingInstance *testing.T) {
	prepareWorkspace(testingInstance)

	copier := &recordingCopier{}
	_, executionError := runCommand(testingInstance, copier, "does-not-exist")
	if !errors.Is(executionError, commands.ErrPathNotFound) {
		testingInstance.Fatalf("expected ErrPathNotFound, got %v", executionError)
	}
	if len(copier.copies) != 0 {
		testingInstance.Fatalf("clipboard written despite failure")
	}
}

func TestRootCommandRejectsMalformedPattern(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFixtureFile(testingInstance, workingDirectory, "a.rs", "x")

	_, executionError := runCommand(testingInstance, &recordingCopier{}, "-i", "[abc")
	if executionError == nil || !strings.Contains(executionError.Error(), "[abc") {
		testingInstance.Fatalf("expected pattern error naming the pattern, got %v", executionError)
	}
}

func TestRootCommandRejectsUnknownFormat(testingInstance *testing.T) {
	prepareWorkspace(testingInstance)

	_, executionError := runCommand(testingInstance, &recordingCopier{}, "--format", "xml")
	if executionError == nil || !strings.Contains(executionError.Error(), "invalid format") {
		testingInstance.Fatalf("expected invalid format error, got %v", executionError)
	}
}

func TestRootCommandClipboardFailure(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFixtureFile(testingInstance, workingDirectory, "a.rs", "x")

	copier := &recordingCopier{copyError: fmt.Errorf("%w: no display", clipboard.ErrUnavailable)}
	_, executionError := runCommand(testingInstance, copier)
	if !errors.Is(executionError, clipboard.ErrUnavailable) {
		testingInstance.Fatalf("expected ErrUnavailable, got %v", executionError)
	}
}

func TestRootCommandNoMatchesSkipsClipboard(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFixtureFile(testingInstance, workingDirectory, "a.rs", "x")

	copier := &recordingCopier{}
	output, executionError := runCommand(testingInstance, copier, "-i", "*.py")
	if executionError != nil {
		testingInstance.Fatalf("command returned error: %v", executionError)
	}
	if len(copier.copies) != 0 {
		testingInstance.Fatalf("clipboard written with no matches: %q", copier.copies)
	}
	if !strings.Contains(output, "No files were copied") {
		testingInstance.Errorf("output missing no-files hint:\n%s", output)
	}
}

func TestRootCommandConfigurationAndFlagPrecedence(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFixtureFile(testingInstance, workingDirectory, "a.rs", "x")
	writeFixtureFile(testingInstance, workingDirectory, "b.txt", "y")
	writeFixtureFile(testingInstance, workingDirectory, utils.ConfigFileName, "include: \"*.txt\"\nclipboard: false\n")

	testCases := []struct {
		name           string
		arguments      []string
		expectedFile   string
		unexpectedFile string
		expectCopy     bool
	}{
		{
			name:           "configuration_defaults",
			arguments:      nil,
			expectedFile:   "b.txt (1 bytes",
			unexpectedFile: "a.rs (1 bytes",
			expectCopy:     false,
		},
		{
			name:           "flags_override_configuration",
			arguments:      []string{"-i", "*.rs", "--clipboard", "true"},
			expectedFile:   "a.rs (1 bytes",
			unexpectedFile: "b.txt (1 bytes",
			expectCopy:     true,
		},
	}

	for _, testCase := range testCases {
		copier := &recordingCopier{}
		output, executionError := runCommand(testingInstance, copier, testCase.arguments...)
		if executionError != nil {
			testingInstance.Fatalf("%s: command returned error: %v", testCase.name, executionError)
		}
		if (len(copier.copies) == 1) != testCase.expectCopy {
			testingInstance.Errorf("%s: clipboard writes = %d, expect copy %t", testCase.name, len(copier.copies), testCase.expectCopy)
		}
		if !strings.Contains(output, testCase.expectedFile) {
			testingInstance.Errorf("%s: output missing %q:\n%s", testCase.name, testCase.expectedFile, output)
		}
		if strings.Contains(output, testCase.unexpectedFile) {
			testingInstance.Errorf("%s: output unexpectedly lists %q:\n%s", testCase.name, testCase.unexpectedFile, output)
		}
	}
}

func TestRootCommandSkipsGitDirectoryUnlessRequested(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFixtureFile(testingInstance, workingDirectory, ".git/config", "[core]")
	writeFixtureFile(testingInstance, workingDirectory, "main.go", "package main")

	copier := &recordingCopier{}
	if _, executionError := runCommand(testingInstance, copier); executionError != nil {
		testingInstance.Fatalf("command returned error: %v", executionError)
	}
	if len(copier.copies) != 1 || strings.Contains(copier.copies[0], ".git/config") {
		testingInstance.Fatalf("default run copied .git content: %q", copier.copies)
	}

	copier = &recordingCopier{}
	if _, executionError := runCommand(testingInstance, copier, "--git"); executionError != nil {
		testingInstance.Fatalf("command returned error: %v", executionError)
	}
	if len(copier.copies) != 1 || !strings.Contains(copier.copies[0], "```.git/config\n") {
		testingInstance.Fatalf("--git run did not copy .git content: %q", copier.copies)
	}
}

func TestRootCommandVersion(testingInstance *testing.T) {
	prepareWorkspace(testingInstance)

	output, executionError := runCommand(testingInstance, &recordingCopier{}, "--version")
	if executionError != nil {
		testingInstance.Fatalf("command returned error: %v", executionError)
	}
	if !strings.HasPrefix(output, "cfl version: ") {
		testingInstance.Fatalf("unexpected version output %q", output)
	}
}

func TestInitCommandWritesConfiguration(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)

	output, executionError := runCommand(testingInstance, &recordingCopier{}, "init")
	if executionError != nil {
		testingInstance.Fatalf("init returned error: %v", executionError)
	}
	configurationPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	if !strings.Contains(output, utils.ConfigFileName) {
		testingInstance.Errorf("init output %q does not name the file", output)
	}
	if _, statError := os.Stat(configurationPath); statError != nil {
		testingInstance.Fatalf("configuration not written: %v", statError)
	}

	if _, secondError := runCommand(testingInstance, &recordingCopier{}, "init"); secondError == nil {
		testingInstance.Fatalf("expected init to refuse overwriting without --force")
	}
	if _, forcedError := runCommand(testingInstance, &recordingCopier{}, "init", "--force"); forcedError != nil {
		testingInstance.Fatalf("init --force returned error: %v", forcedError)
	}
}

// changeWorkingDirectory switches into directory for the duration of the test
// and restores the previous working directory on cleanup.
func changeWorkingDirectory(testingInstance *testing.T, directory string) {
	testingInstance.Helper()
	previousDirectory, getwdError := os.Getwd()
	if getwdError != nil {
		testingInstance.Fatalf("getwd: %v", getwdError)
	}
	if chdirError := os.Chdir(directory); chdirError != nil {
		testingInstance.Fatalf("chdir: %v", chdirError)
	}
	testingInstance.Setenv("PWD", directory)
	testingInstance.Cleanup(func() {
		if restoreError := os.Chdir(previousDirectory); restoreError != nil {
			testingInstance.Fatalf("restore working directory: %v", restoreError)
		}
	})
}
