package config

import (
	"os"
	"path/filepath"
	"testing"
)

type configTestCase struct {
	name             string
	globalContent    string
	localContent     string
	explicitPath     string
	expectInclude    string
	expectExclude    string
	expectFormat     string
	expectShow       *bool
	expectClipboard  *bool
	expectModel      string
	expectIncludeGit *bool
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:             "local_overrides_global",
			globalContent:    "include: \"*.go\"\nformat: json\nshow: true\nclipboard: false\npaths:\n  include_git: true\n",
			localContent:     "include: \"*.rs\"\nexclude: \"*_test.rs\"\nshow: false\ntokens:\n  model: gpt-4o\n",
			expectInclude:    "*.rs",
			expectExclude:    "*_test.rs",
			expectFormat:     "json",
			expectShow:       boolPointer(false),
			expectClipboard:  boolPointer(false),
			expectModel:      "gpt-4o",
			expectIncludeGit: boolPointer(true),
		},
		{
			name:          "explicit_path_replaces_local_file",
			globalContent: "",
			localContent:  "format: json\n",
			explicitPath:  "custom.yaml",
			expectFormat:  "raw",
		},
		{
			name:          "no_files",
			globalContent: "",
			localContent:  "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDirectory := t.TempDir()
			t.Setenv("HOME", homeDirectory)
			t.Setenv("USERPROFILE", homeDirectory)
			workingDirectory := t.TempDir()

			if testCase.globalContent != "" {
				globalDirectory := filepath.Join(homeDirectory, ".cfl")
				if err := os.MkdirAll(globalDirectory, 0o755); err != nil {
					t.Fatalf("create global directory: %v", err)
				}
				if err := os.WriteFile(filepath.Join(globalDirectory, "config.yaml"), []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				if err := os.WriteFile(filepath.Join(workingDirectory, ".cfl.yaml"), []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				if err := os.WriteFile(filepath.Join(workingDirectory, testCase.explicitPath), []byte("format: raw\n"), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			configuration, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory, ExplicitFilePath: testCase.explicitPath})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}
			if configuration.Include != testCase.expectInclude {
				t.Errorf("include = %q, want %q", configuration.Include, testCase.expectInclude)
			}
			if configuration.Exclude != testCase.expectExclude {
				t.Errorf("exclude = %q, want %q", configuration.Exclude, testCase.expectExclude)
			}
			if configuration.Format != testCase.expectFormat {
				t.Errorf("format = %q, want %q", configuration.Format, testCase.expectFormat)
			}
			if configuration.Tokens.Model != testCase.expectModel {
				t.Errorf("model = %q, want %q", configuration.Tokens.Model, testCase.expectModel)
			}
			assertBoolPointer(t, "show", configuration.Show, testCase.expectShow)
			assertBoolPointer(t, "clipboard", configuration.Clipboard, testCase.expectClipboard)
			assertBoolPointer(t, "include_git", configuration.Paths.IncludeGit, testCase.expectIncludeGit)
		})
	}
}

func TestLoadApplicationConfigurationRejectsDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workingDirectory := t.TempDir()
	if err := os.Mkdir(filepath.Join(workingDirectory, ".cfl.yaml"), 0o755); err != nil {
		t.Fatalf("create directory: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory}); err == nil {
		t.Fatalf("expected error for directory configuration path")
	}
}

func TestBoolOrDefault(t *testing.T) {
	if !BoolOrDefault(nil, true) {
		t.Errorf("nil pointer should return fallback")
	}
	if BoolOrDefault(boolPointer(false), true) {
		t.Errorf("set pointer should win over fallback")
	}
}

func assertBoolPointer(t *testing.T, name string, actual *bool, expected *bool) {
	t.Helper()
	switch {
	case expected == nil && actual != nil:
		t.Errorf("%s = %v, want unset", name, *actual)
	case expected != nil && actual == nil:
		t.Errorf("%s unset, want %v", name, *expected)
	case expected != nil && *actual != *expected:
		t.Errorf("%s = %v, want %v", name, *actual, *expected)
	}
}
