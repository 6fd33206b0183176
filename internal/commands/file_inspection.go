package commands

import (
	"os"
	"path/filepath"

	"github.com/temirov/cfl/internal/tokenizer"
	"github.com/temirov/cfl/internal/utils"
)

type fileInspectionResult struct {
	Content    string
	TokenCount int
}

// canonicalIdentity resolves every symlink in path and returns the absolute result.
func canonicalIdentity(path string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return "", &IoError{Path: path, Err: absoluteError}
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return "", &IoError{Path: path, Err: resolveError}
	}
	return resolvedPath, nil
}

// inspectFile reads path as UTF-8 text and counts its tokens.
//
// #nosec G304
func inspectFile(path string, counter tokenizer.Counter) (fileInspectionResult, error) {
	fileBytes, readError := os.ReadFile(path)
	if readError != nil {
		return fileInspectionResult{}, &IoError{Path: path, Err: readError}
	}
	if !utils.IsDecodableText(fileBytes) {
		return fileInspectionResult{}, &IoError{Path: path, Err: ErrDecode}
	}
	content := string(fileBytes)
	tokenCount, countError := tokenizer.Count(counter, content)
	if countError != nil {
		return fileInspectionResult{}, &IoError{Path: path, Err: countError}
	}
	return fileInspectionResult{Content: content, TokenCount: tokenCount}, nil
}
