// Package patterns compiles comma-separated glob lists and applies the include/exclude
// filter policy to bare file names.
package patterns

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/temirov/cfl/internal/utils"
)

// anyDirectoryPrefix is stripped from patterns because a base name never contains a separator.
const anyDirectoryPrefix = "**/"

const errorPatternFormat = "invalid glob pattern %q: %v"

const (
	literalBraces = "{}"
	classOpen     = '['
	classClose    = ']'
	globEscape    = '\\'
)

// ErrInvalidPattern is matched by every PatternError.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternError reports a glob that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (patternError *PatternError) Error() string {
	return fmt.Sprintf(errorPatternFormat, patternError.Pattern, patternError.Err)
}

func (patternError *PatternError) Unwrap() error {
	return patternError.Err
}

// Is lets errors.Is(err, ErrInvalidPattern) succeed for any PatternError.
func (patternError *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// Matcher is a single compiled glob tested against a base name.
type Matcher struct {
	source   string
	compiled glob.Glob
}

// Source returns the pattern text the matcher was compiled from.
func (matcher Matcher) Source() string {
	return matcher.source
}

// Matches reports whether name satisfies the glob. Matching is case-sensitive.
func (matcher Matcher) Matches(name string) bool {
	return matcher.compiled.Match(name)
}

// Set is an ordered, immutable collection of compiled matchers.
type Set struct {
	matchers []Matcher
}

// Compile parses a comma-separated pattern list. Empty input yields an empty Set.
func Compile(patternList string) (Set, error) {
	rawPatterns := utils.SplitCommaSeparated(patternList)
	matchers := make([]Matcher, 0, len(rawPatterns))
	for _, rawPattern := range rawPatterns {
		compiled, compileError := glob.Compile(escapeBraces(trimDirectoryPrefix(rawPattern)))
		if compileError != nil {
			return Set{}, &PatternError{Pattern: rawPattern, Err: compileError}
		}
		matchers = append(matchers, Matcher{source: rawPattern, compiled: compiled})
	}
	return Set{matchers: matchers}, nil
}

// MustCompile is like Compile but panics on malformed input. Intended for constants in tests.
func MustCompile(patternList string) Set {
	set, compileError := Compile(patternList)
	if compileError != nil {
		panic(compileError)
	}
	return set
}

// Empty reports whether the set holds no matchers.
func (set Set) Empty() bool {
	return len(set.matchers) == 0
}

// Len returns the number of matchers.
func (set Set) Len() int {
	return len(set.matchers)
}

// Sources returns the original pattern strings in order.
func (set Set) Sources() []string {
	sources := make([]string, 0, len(set.matchers))
	for _, matcher := range set.matchers {
		sources = append(sources, matcher.source)
	}
	return sources
}

// MatchesAny reports whether name matches at least one matcher in the set.
func (set Set) MatchesAny(name string) bool {
	for _, matcher := range set.matchers {
		if matcher.Matches(name) {
			return true
		}
	}
	return false
}

func trimDirectoryPrefix(pattern string) string {
	trimmed := pattern
	for strings.HasPrefix(trimmed, anyDirectoryPrefix) {
		trimmed = strings.TrimPrefix(trimmed, anyDirectoryPrefix)
	}
	return trimmed
}

// escapeBraces makes '{' and '}' outside character classes match literally, so only
// '*', '?' and bracket classes carry meaning.
func escapeBraces(pattern string) string {
	if !strings.ContainsAny(pattern, literalBraces) {
		return pattern
	}
	var escaped strings.Builder
	insideClass := false
	for _, character := range pattern {
		switch {
		case insideClass:
			if character == classClose {
				insideClass = false
			}
		case character == classOpen:
			insideClass = true
		case strings.ContainsRune(literalBraces, character):
			escaped.WriteRune(globEscape)
		}
		escaped.WriteRune(character)
	}
	return escaped.String()
}
