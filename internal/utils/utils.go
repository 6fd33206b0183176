// Package utils contains general helper functions used across the cfl tool.
package utils

import (
	"path/filepath"
	"strings"
)

// Repository and ignore file constants used across the project.
const (
	// IgnoreFileName is the name of the tool-agnostic ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository metadata directory.
	GitDirectoryName = ".git"
	// GitInfoExcludeRelativePath is the repository-local exclude file relative to the repository root.
	GitInfoExcludeRelativePath = GitDirectoryName + "/info/exclude"
	// ListSeparator separates the items of a pattern or path list.
	ListSeparator = ","
)

const pathSegmentSeparator = "/"

// SplitCommaSeparated splits a comma-separated list (patterns or paths) into trimmed, non-empty items.
// Order is preserved.
func SplitCommaSeparated(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	rawItems := strings.Split(list, ListSeparator)
	items := make([]string, 0, len(rawItems))
	for _, rawItem := range rawItems {
		trimmedItem := strings.TrimSpace(rawItem)
		if trimmedItem == "" {
			continue
		}
		items = append(items, trimmedItem)
	}
	return items
}

// RelativePathUnder reports the path of absolutePath relative to root when absolutePath
// lies strictly beneath root. The second return value is false for the root itself and
// for paths outside of it.
func RelativePathUnder(absolutePath, root string) (string, bool) {
	relativePath, relErr := filepath.Rel(filepath.Clean(root), filepath.Clean(absolutePath))
	if relErr != nil {
		return "", false
	}
	if relativePath == "." || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return "", false
	}
	return relativePath, true
}

// PathSegments splits a path into its non-empty components using forward slashes.
// Both separators are accepted so Windows-style paths split the same way.
func PathSegments(path string) []string {
	normalizedPath := strings.ReplaceAll(filepath.ToSlash(path), "\\", pathSegmentSeparator)
	rawSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	segments := make([]string, 0, len(rawSegments))
	for _, segment := range rawSegments {
		if segment == "" || segment == "." {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// CompareSegments orders two segment lists component by component. A list that is a
// prefix of the other sorts first, so a directory always precedes its descendants.
func CompareSegments(left, right []string) int {
	for index := 0; index < len(left) && index < len(right); index++ {
		if comparison := strings.Compare(left[index], right[index]); comparison != 0 {
			return comparison
		}
	}
	switch {
	case len(left) < len(right):
		return -1
	case len(left) > len(right):
		return 1
	default:
		return 0
	}
}
