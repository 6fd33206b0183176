// Package commands contains the core logic for collecting file content and directory structure.
package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/cfl/internal/types"
	"github.com/temirov/cfl/internal/utils"
	"github.com/temirov/cfl/internal/walker"
)

const (
	treeIndentUnit   = "  "
	treeBranchGlyph  = "└── "
	treeDirectoryTag = "/"
	treeLineBreak    = "\n"
)

// GetTreeData walks rootDirectoryPath and returns one entry per visible path, ancestors
// synthesized, ordered so that every directory precedes its descendants.
// Entries that fail during the walk are omitted.
func (treeBuilder *TreeBuilder) GetTreeData(ctx context.Context, rootDirectoryPath string) ([]types.TreeEntry, error) {
	if _, statError := os.Stat(rootDirectoryPath); statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return nil, &PathNotFoundError{Path: rootDirectoryPath}
		}
		return nil, &IoError{Path: rootDirectoryPath, Err: statError}
	}

	directoryFlags := make(map[string]bool)
	walkError := treeBuilder.Walker.Walk(ctx, rootDirectoryPath, func(entry walker.Entry, walkError error) error {
		if walkError != nil || entry.Depth == 0 {
			return nil
		}
		if isVersionControlEntry(entry.Name) {
			if entry.IsDir {
				return filepath.SkipDir
			}
			return nil
		}
		relativePath, relativeError := filepath.Rel(rootDirectoryPath, entry.Path)
		if relativeError != nil {
			return nil
		}
		segments := utils.PathSegments(relativePath)
		for index := 1; index < len(segments); index++ {
			directoryFlags[strings.Join(segments[:index], treeDirectoryTag)] = true
		}
		entryKey := strings.Join(segments, treeDirectoryTag)
		if _, alreadyKnown := directoryFlags[entryKey]; !alreadyKnown {
			directoryFlags[entryKey] = entry.IsDir
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	treeEntries := make([]types.TreeEntry, 0, len(directoryFlags))
	for relativePath, isDirectory := range directoryFlags {
		segments := strings.Split(relativePath, treeDirectoryTag)
		nodeType := types.NodeTypeFile
		if isDirectory {
			nodeType = types.NodeTypeDirectory
		}
		treeEntries = append(treeEntries, types.TreeEntry{
			RelativePath: relativePath,
			Name:         segments[len(segments)-1],
			Type:         nodeType,
			Depth:        len(segments),
		})
	}
	sort.Slice(treeEntries, func(leftIndex, rightIndex int) bool {
		return utils.CompareSegments(
			strings.Split(treeEntries[leftIndex].RelativePath, treeDirectoryTag),
			strings.Split(treeEntries[rightIndex].RelativePath, treeDirectoryTag),
		) < 0
	})
	return treeEntries, nil
}

// Render returns the indented tree text for rootDirectoryPath.
func (treeBuilder *TreeBuilder) Render(ctx context.Context, rootDirectoryPath string) (string, error) {
	treeEntries, treeError := treeBuilder.GetTreeData(ctx, rootDirectoryPath)
	if treeError != nil {
		return "", treeError
	}
	return RenderTreeEntries(treeEntries), nil
}

// RenderTreeEntries formats entries one per line, indenting each level below the first.
func RenderTreeEntries(treeEntries []types.TreeEntry) string {
	var treeText strings.Builder
	for _, treeEntry := range treeEntries {
		treeText.WriteString(strings.Repeat(treeIndentUnit, treeEntry.Depth-1))
		treeText.WriteString(treeBranchGlyph)
		treeText.WriteString(treeEntry.Name)
		if treeEntry.IsDirectory() {
			treeText.WriteString(treeDirectoryTag)
		}
		treeText.WriteString(treeLineBreak)
	}
	return treeText.String()
}

func isVersionControlEntry(name string) bool {
	return name == utils.GitDirectoryName || name == utils.GitIgnoreFileName
}
