// Package types defines every cross-package data structure used by the cfl CLI.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	FormatRaw  = "raw"
	FormatJSON = "json"
)

// ValidatedPath is an input path that already passed existence checks.
type ValidatedPath struct {
	// OriginalPath is the path exactly as the user supplied it.
	OriginalPath string
	AbsolutePath string
	IsDir        bool
}

// FileRecord describes one file admitted into the aggregated result.
type FileRecord struct {
	// Path is relative to the processor root when the file lies beneath it, otherwise as walked.
	Path       string `json:"path"`
	SizeBytes  int    `json:"sizeBytes"`
	TokenCount int    `json:"tokenCount"`
}

// TreeEntry is one line of the rendered directory structure.
type TreeEntry struct {
	// RelativePath uses forward slashes and is relative to the tree root.
	RelativePath string `json:"path"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Depth        int    `json:"depth"`
}

// IsDirectory reports whether the entry denotes a directory.
func (entry TreeEntry) IsDirectory() bool {
	return entry.Type == NodeTypeDirectory
}

// OutputSummary captures aggregate information about the copied files.
type OutputSummary struct {
	TotalFiles  int    `json:"totalFiles"`
	TotalSize   int    `json:"totalSize"`
	TotalTokens int    `json:"totalTokens"`
	Model       string `json:"model,omitempty"`
}

// Report is everything the console output renders after a run.
type Report struct {
	Files              []FileRecord  `json:"files"`
	Summary            OutputSummary `json:"summary"`
	DirectoryStructure string        `json:"directoryStructure"`
	IncludePatterns    []string      `json:"includePatterns,omitempty"`
	ExcludePatterns    []string      `json:"excludePatterns,omitempty"`
	Copied             bool          `json:"copied"`
}
