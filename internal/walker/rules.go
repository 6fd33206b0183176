package walker

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"
)

const (
	commentPrefix             = "#"
	carriageReturn            = "\r"
	readIgnoreFileErrorFormat = "read ignore file %s: %w"
	warnIgnoreFileMessage     = "skipping unreadable ignore file"
	warnCloseIgnoreFile       = "failed to close ignore file"
)

// tier identifies one precedence level of ignore rules. Lower values win.
type tier int

const (
	tierIgnoreFile tier = iota
	tierGitignore
	tierInfoExclude
	tierGlobal
)

// directoryRules holds the patterns declared by one directory and links to the rules of its parent.
type directoryRules struct {
	parent            *directoryRules
	path              string
	canonicalPath     string
	ignorePatterns    []gitignore.Pattern
	gitignorePatterns []gitignore.Pattern
}

func (rules *directoryRules) patternsFor(ruleTier tier) []gitignore.Pattern {
	if ruleTier == tierIgnoreFile {
		return rules.ignorePatterns
	}
	return rules.gitignorePatterns
}

// enteredCanonically reports whether canonicalPath is already an ancestor in this chain.
func (rules *directoryRules) enteredCanonically(canonicalPath string) bool {
	for current := rules; current != nil; current = current.parent {
		if current.canonicalPath == canonicalPath {
			return true
		}
	}
	return false
}

// repositoryRules holds the patterns that are not attached to a single directory.
type repositoryRules struct {
	gitEnabled          bool
	baseSegments        []string
	infoExcludePatterns []gitignore.Pattern
	globalPatterns      []gitignore.Pattern
}

// ignored reports whether the entry at absoluteSegments is excluded by any tier.
// The first tier with a decisive match wins; an Include result whitelists the entry.
func (walker *Walker) ignored(rules *directoryRules, repository *repositoryRules, absoluteSegments []string, isDirectory bool) bool {
	for _, ruleTier := range []tier{tierIgnoreFile, tierGitignore, tierInfoExclude, tierGlobal} {
		if ruleTier != tierIgnoreFile && !repository.gitEnabled {
			continue
		}
		var result gitignore.MatchResult
		switch ruleTier {
		case tierIgnoreFile, tierGitignore:
			result = matchDirectoryChain(rules, ruleTier, absoluteSegments, isDirectory)
		case tierInfoExclude:
			result = matchLastFirst(repository.infoExcludePatterns, absoluteSegments, isDirectory)
		case tierGlobal:
			relativeSegments, underBase := segmentsBelow(absoluteSegments, repository.baseSegments)
			if underBase {
				result = matchLastFirst(repository.globalPatterns, relativeSegments, isDirectory)
			}
		}
		switch result {
		case gitignore.Exclude:
			return true
		case gitignore.Include:
			return false
		}
	}
	return false
}

func matchDirectoryChain(rules *directoryRules, ruleTier tier, segments []string, isDirectory bool) gitignore.MatchResult {
	for current := rules; current != nil; current = current.parent {
		if result := matchLastFirst(current.patternsFor(ruleTier), segments, isDirectory); result != gitignore.NoMatch {
			return result
		}
	}
	return gitignore.NoMatch
}

func matchLastFirst(patterns []gitignore.Pattern, segments []string, isDirectory bool) gitignore.MatchResult {
	for index := len(patterns) - 1; index >= 0; index-- {
		if result := patterns[index].Match(segments, isDirectory); result != gitignore.NoMatch {
			return result
		}
	}
	return gitignore.NoMatch
}

func segmentsBelow(segments []string, baseSegments []string) ([]string, bool) {
	if len(segments) <= len(baseSegments) {
		return nil, false
	}
	for index, baseSegment := range baseSegments {
		if segments[index] != baseSegment {
			return nil, false
		}
	}
	return segments[len(baseSegments):], true
}

// loadDirectoryRules reads the ignore files declared directly inside directoryPath.
func (walker *Walker) loadDirectoryRules(parent *directoryRules, directoryPath string, canonicalPath string, directorySegments []string, gitEnabled bool) *directoryRules {
	rules := &directoryRules{parent: parent, path: directoryPath, canonicalPath: canonicalPath}
	rules.ignorePatterns = walker.readPatternsLogged(walker.filesystem.Join(directoryPath, IgnoreFileName), directorySegments)
	if gitEnabled {
		rules.gitignorePatterns = walker.readPatternsLogged(walker.filesystem.Join(directoryPath, GitIgnoreFileName), directorySegments)
	}
	return rules
}

func (walker *Walker) readPatternsLogged(ignoreFilePath string, domain []string) []gitignore.Pattern {
	patterns, readError := readIgnoreFile(walker.filesystem, walker.logger, ignoreFilePath, domain)
	if readError != nil {
		walker.logger.Warn(warnIgnoreFileMessage, zap.String(logFieldPath, ignoreFilePath), zap.Error(readError))
		return nil
	}
	return patterns
}

// readIgnoreFile parses one gitignore-format file. A missing file yields no patterns.
func readIgnoreFile(filesystem billy.Filesystem, logger *zap.Logger, ignoreFilePath string, domain []string) ([]gitignore.Pattern, error) {
	fileHandle, openError := filesystem.Open(ignoreFilePath)
	if openError != nil {
		if errors.Is(openError, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(readIgnoreFileErrorFormat, ignoreFilePath, openError)
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			logger.Warn(warnCloseIgnoreFile, zap.String(logFieldPath, ignoreFilePath), zap.Error(closeError))
		}
	}()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), carriageReturn)
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(readIgnoreFileErrorFormat, ignoreFilePath, scanError)
	}
	return patterns, nil
}
