// Package walker enumerates a directory tree while honoring .ignore, .gitignore,
// .git/info/exclude and global gitignore rules.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/temirov/cfl/internal/utils"
)

const (
	// IgnoreFileName is the tool-neutral ignore file honored in every directory.
	IgnoreFileName = utils.IgnoreFileName
	// GitIgnoreFileName is honored inside git repositories.
	GitIgnoreFileName = utils.GitIgnoreFileName

	filesystemRootPath     = "/"
	logFieldPath           = "path"
	warnWalkEntryMessage   = "skipping unreadable entry"
	resolveRootErrorFormat = "resolve walk root %s: %w"
)

// ErrSymlinkLoop is reported for a directory whose canonical identity is already being walked.
var ErrSymlinkLoop = errors.New("symlink loop detected")

// Options configures a Walker.
type Options struct {
	Logger *zap.Logger

	// Filesystem serves ignore-file reads. Defaults to the host filesystem rooted at "/".
	Filesystem billy.Filesystem

	// SkipGitDirectory prunes every directory named .git.
	SkipGitDirectory bool

	// GitignoreOutsideRepository applies git ignore tiers even when no repository encloses the root.
	GitignoreOutsideRepository bool
	DisableGlobalGitignore     bool

	// GlobalGitignorePath overrides discovery of the global excludes file.
	GlobalGitignorePath string
}

// Entry describes one walked filesystem object.
type Entry struct {
	// Path is the walk root joined with the entry's relative location.
	Path  string
	Name  string
	Depth int
	IsDir bool

	// IsSymlink reports whether Path itself is a symbolic link. IsDir and IsRegular describe its target.
	IsSymlink bool

	// IsRegular is false for directories and for pipes, sockets and device nodes.
	IsRegular bool
}

// VisitFunc is called for each entry in pre-order. A non-nil walkError reports a failure to
// inspect the entry; returning nil then continues the walk. Returning filepath.SkipDir for a
// directory skips its contents, fs.SkipAll stops the walk, and any other error aborts it.
type VisitFunc func(entry Entry, walkError error) error

// Walker performs ignore-aware depth-first traversals. A Walker is safe for sequential reuse.
type Walker struct {
	options    Options
	logger     *zap.Logger
	filesystem billy.Filesystem
}

// New constructs a Walker.
func New(options Options) *Walker {
	filesystem := options.Filesystem
	if filesystem == nil {
		filesystem = osfs.New(filesystemRootPath)
	}
	return &Walker{
		options:    options,
		logger:     utils.LoggerOrNop(options.Logger),
		filesystem: filesystem,
	}
}

type pendingEntry struct {
	path   string
	name   string
	depth  int
	parent *directoryRules
}

// Walk traverses root. The root itself is visited first at depth zero and is never subject to
// ignore rules. Children are visited in lexicographic name order. An error is returned only when
// the root cannot be inspected, the context is cancelled, or visit aborts.
func (walker *Walker) Walk(ctx context.Context, root string, visit VisitFunc) error {
	rootInfo, statError := os.Stat(root)
	if statError != nil {
		return statError
	}
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return fmt.Errorf(resolveRootErrorFormat, root, absoluteError)
	}
	rootLinkInfo, lstatError := os.Lstat(root)
	rootIsSymlink := lstatError == nil && rootLinkInfo.Mode()&os.ModeSymlink != 0

	rootEntry := Entry{
		Path:      root,
		Name:      filepath.Base(absoluteRoot),
		IsDir:     rootInfo.IsDir(),
		IsSymlink: rootIsSymlink,
		IsRegular: rootInfo.Mode().IsRegular(),
	}
	if !rootInfo.IsDir() {
		return ignoreStop(visit(rootEntry, nil))
	}

	repository, ancestors := walker.prepareRepository(absoluteRoot)
	canonicalRoot, canonicalError := filepath.EvalSymlinks(absoluteRoot)
	if canonicalError != nil {
		canonicalRoot = absoluteRoot
	}

	if visitError := visit(rootEntry, nil); visitError != nil {
		if errors.Is(visitError, filepath.SkipDir) {
			return nil
		}
		return ignoreStop(visitError)
	}
	rootRules := walker.loadDirectoryRules(ancestors, absoluteRoot, canonicalRoot, utils.PathSegments(absoluteRoot), repository.gitEnabled)

	var stack []pendingEntry
	stack, abortError := walker.pushChildren(stack, rootEntry, rootRules, visit)
	if abortError != nil {
		return ignoreStop(abortError)
	}

	for len(stack) > 0 {
		if contextError := ctx.Err(); contextError != nil {
			return contextError
		}
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entry, isDirectory, inspectError := inspect(current)
		if inspectError != nil {
			if reportError := walker.report(visit, entry, inspectError); reportError != nil {
				return ignoreStop(reportError)
			}
			continue
		}
		if isDirectory && walker.options.SkipGitDirectory && entry.Name == utils.GitDirectoryName {
			continue
		}

		absoluteEntryPath := filepath.Join(current.parent.path, entry.Name)
		entrySegments := utils.PathSegments(absoluteEntryPath)
		if walker.ignored(current.parent, repository, entrySegments, isDirectory) {
			continue
		}

		if !isDirectory {
			if visitError := visit(entry, nil); visitError != nil && !errors.Is(visitError, filepath.SkipDir) {
				return ignoreStop(visitError)
			}
			continue
		}

		canonicalPath, resolveError := filepath.EvalSymlinks(absoluteEntryPath)
		if resolveError != nil {
			if reportError := walker.report(visit, entry, resolveError); reportError != nil {
				return ignoreStop(reportError)
			}
			continue
		}
		if current.parent.enteredCanonically(canonicalPath) {
			if reportError := walker.report(visit, entry, fmt.Errorf("%w: %s", ErrSymlinkLoop, entry.Path)); reportError != nil {
				return ignoreStop(reportError)
			}
			continue
		}

		if visitError := visit(entry, nil); visitError != nil {
			if errors.Is(visitError, filepath.SkipDir) {
				continue
			}
			return ignoreStop(visitError)
		}
		childRules := walker.loadDirectoryRules(current.parent, absoluteEntryPath, canonicalPath, entrySegments, repository.gitEnabled)
		stack, abortError = walker.pushChildren(stack, entry, childRules, visit)
		if abortError != nil {
			return ignoreStop(abortError)
		}
	}
	return nil
}

// pushChildren reads directory's children and pushes them in reverse order so they pop sorted.
func (walker *Walker) pushChildren(stack []pendingEntry, directory Entry, rules *directoryRules, visit VisitFunc) ([]pendingEntry, error) {
	directoryEntries, readError := os.ReadDir(rules.path)
	if readError != nil {
		return stack, walker.report(visit, directory, readError)
	}
	names := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		names = append(names, directoryEntry.Name())
	}
	sort.Strings(names)
	for index := len(names) - 1; index >= 0; index-- {
		stack = append(stack, pendingEntry{
			path:   filepath.Join(directory.Path, names[index]),
			name:   names[index],
			depth:  directory.Depth + 1,
			parent: rules,
		})
	}
	return stack, nil
}

// report hands a per-entry failure to visit and logs it when visit tolerates it.
func (walker *Walker) report(visit VisitFunc, entry Entry, walkError error) error {
	visitError := visit(entry, walkError)
	if visitError == nil || errors.Is(visitError, filepath.SkipDir) {
		walker.logger.Warn(warnWalkEntryMessage, zap.String(logFieldPath, entry.Path), zap.Error(walkError))
		return nil
	}
	return visitError
}

func inspect(current pendingEntry) (Entry, bool, error) {
	entry := Entry{Path: current.path, Name: current.name, Depth: current.depth}
	linkInfo, lstatError := os.Lstat(current.path)
	if lstatError != nil {
		return entry, false, lstatError
	}
	if linkInfo.Mode()&os.ModeSymlink == 0 {
		entry.IsDir = linkInfo.IsDir()
		entry.IsRegular = linkInfo.Mode().IsRegular()
		return entry, entry.IsDir, nil
	}
	entry.IsSymlink = true
	targetInfo, statError := os.Stat(current.path)
	if statError != nil {
		return entry, false, statError
	}
	entry.IsDir = targetInfo.IsDir()
	entry.IsRegular = targetInfo.Mode().IsRegular()
	return entry, entry.IsDir, nil
}

// prepareRepository discovers the enclosing repository, loads repository-wide patterns, and builds
// the rules chain for every ancestor of absoluteRoot.
func (walker *Walker) prepareRepository(absoluteRoot string) (*repositoryRules, *directoryRules) {
	repositoryRoot, insideRepository := utils.FindRepositoryRoot(absoluteRoot)
	repository := &repositoryRules{
		gitEnabled:   insideRepository || walker.options.GitignoreOutsideRepository,
		baseSegments: utils.PathSegments(absoluteRoot),
	}
	if repository.gitEnabled {
		if insideRepository {
			repository.baseSegments = utils.PathSegments(repositoryRoot)
			infoExcludePath := filepath.Join(repositoryRoot, filepath.FromSlash(utils.GitInfoExcludeRelativePath))
			repository.infoExcludePatterns = walker.readPatternsLogged(infoExcludePath, repository.baseSegments)
		}
		if !walker.options.DisableGlobalGitignore {
			repository.globalPatterns = loadGlobalPatterns(walker.filesystem, walker.logger, walker.options.GlobalGitignorePath)
		}
	}
	return repository, walker.loadAncestorRules(absoluteRoot, repositoryRoot, insideRepository, repository.gitEnabled)
}

// loadAncestorRules chains the rules of every directory above absoluteRoot, outermost first.
// .ignore files apply up to the filesystem root; inside a repository, .gitignore files above
// the repository root do not apply.
func (walker *Walker) loadAncestorRules(absoluteRoot string, repositoryRoot string, insideRepository bool, gitEnabled bool) *directoryRules {
	if absoluteRoot == filepath.Dir(absoluteRoot) {
		return nil
	}
	var ancestorPaths []string
	for current := filepath.Dir(absoluteRoot); ; current = filepath.Dir(current) {
		ancestorPaths = append(ancestorPaths, current)
		if current == filepath.Dir(current) {
			break
		}
	}
	var ancestors *directoryRules
	for index := len(ancestorPaths) - 1; index >= 0; index-- {
		ancestorPath := ancestorPaths[index]
		canonicalAncestor, resolveError := filepath.EvalSymlinks(ancestorPath)
		if resolveError != nil {
			canonicalAncestor = ancestorPath
		}
		ancestorGitEnabled := gitEnabled
		if insideRepository && ancestorPath != repositoryRoot {
			_, belowRepository := utils.RelativePathUnder(ancestorPath, repositoryRoot)
			ancestorGitEnabled = gitEnabled && belowRepository
		}
		ancestors = walker.loadDirectoryRules(ancestors, ancestorPath, canonicalAncestor, utils.PathSegments(ancestorPath), ancestorGitEnabled)
	}
	return ancestors
}

func ignoreStop(walkError error) error {
	if errors.Is(walkError, fs.SkipAll) {
		return nil
	}
	return walkError
}
