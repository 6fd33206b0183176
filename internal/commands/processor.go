package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/cfl/internal/patterns"
	"github.com/temirov/cfl/internal/tokenizer"
	"github.com/temirov/cfl/internal/types"
	"github.com/temirov/cfl/internal/utils"
	"github.com/temirov/cfl/internal/walker"
)

const (
	errorWorkingDirectoryFormat = "determine working directory: %w"
	errorAbsolutePathFormat     = "getting absolute path for %s: %w"
	debugFileAcceptedMessage    = "file accepted"
	logFieldPath                = "path"
	logFieldTokens              = "tokens"
)

// Options configures a Processor.
type Options struct {
	// Root anchors displayed relative paths and the directory structure. Empty means the working directory.
	Root            string
	IncludePatterns string
	ExcludePatterns string
	Logger          *zap.Logger

	// TokenCounter overrides the heuristic estimator.
	TokenCounter tokenizer.Counter

	SkipGitDirectory           bool
	GitignoreOutsideRepository bool
	DisableGlobalGitignore     bool
}

// Processor walks input paths, filters and deduplicates the files it finds, and accumulates
// their fenced content. A Processor is not safe for concurrent use.
type Processor struct {
	root         string
	filter       patterns.Filter
	logger       *zap.Logger
	tokenCounter tokenizer.Counter
	walker       *walker.Walker
	deduplicator *Deduplicator
	aggregator   ContentAggregator
}

// NewProcessor compiles the include and exclude patterns and fixes the root.
// A malformed pattern is reported here as a *patterns.PatternError.
func NewProcessor(options Options) (*Processor, error) {
	filter, filterError := patterns.NewFilter(options.IncludePatterns, options.ExcludePatterns)
	if filterError != nil {
		return nil, filterError
	}

	root := options.Root
	if root == "" {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return nil, fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
		}
		root = workingDirectory
	}
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, root, absoluteError)
	}

	logger := utils.LoggerOrNop(options.Logger)
	return &Processor{
		root:         absoluteRoot,
		filter:       filter,
		logger:       logger,
		tokenCounter: options.TokenCounter,
		walker: walker.New(walker.Options{
			Logger:                     logger,
			SkipGitDirectory:           options.SkipGitDirectory,
			GitignoreOutsideRepository: options.GitignoreOutsideRepository,
			DisableGlobalGitignore:     options.DisableGlobalGitignore,
		}),
		deduplicator: NewDeduplicator(),
	}, nil
}

// Root returns the absolute root the Processor was constructed with.
func (processor *Processor) Root() string {
	return processor.root
}

// Filter returns the compiled include and exclude patterns.
func (processor *Processor) Filter() patterns.Filter {
	return processor.filter
}

// Process is ProcessContext with a background context.
func (processor *Processor) Process(path string) error {
	return processor.ProcessContext(context.Background(), path)
}

// ProcessContext walks path, which may be a file or a directory, and accumulates every accepted
// regular file. Pipes, sockets and device nodes are skipped. Unreadable directory entries are
// logged and skipped. A file that passes the filter but
// cannot be read or decoded aborts the call with an *IoError; files accepted before it remain.
func (processor *Processor) ProcessContext(ctx context.Context, path string) error {
	if _, statError := os.Stat(path); statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return &PathNotFoundError{Path: path}
		}
		return &IoError{Path: path, Err: statError}
	}

	return processor.walker.Walk(ctx, path, func(entry walker.Entry, walkError error) error {
		if walkError != nil || !entry.IsRegular {
			return nil
		}
		return processor.processFile(entry)
	})
}

func (processor *Processor) processFile(entry walker.Entry) error {
	canonicalPath, canonicalError := canonicalIdentity(entry.Path)
	if canonicalError != nil {
		return canonicalError
	}
	if processor.deduplicator.Seen(canonicalPath) {
		return nil
	}
	if !processor.filter.Accepts(filepath.Base(entry.Path)) {
		return nil
	}

	inspection, inspectionError := inspectFile(entry.Path, processor.tokenCounter)
	if inspectionError != nil {
		return inspectionError
	}
	relativePath := processor.displayPath(entry.Path)
	processor.aggregator.Append(relativePath, inspection.Content, inspection.TokenCount)
	processor.deduplicator.Admit(canonicalPath)
	processor.logger.Debug(debugFileAcceptedMessage, zap.String(logFieldPath, relativePath), zap.Int(logFieldTokens, inspection.TokenCount))
	return nil
}

// displayPath strips the root from walkedPath, falling back to walkedPath when it lies outside the root.
func (processor *Processor) displayPath(walkedPath string) string {
	absolutePath, absoluteError := filepath.Abs(walkedPath)
	if absoluteError != nil {
		return walkedPath
	}
	relativePath, underRoot := utils.RelativePathUnder(absolutePath, processor.root)
	if !underRoot {
		return walkedPath
	}
	return filepath.ToSlash(relativePath)
}

// TargetFiles returns the accepted files in the order they were accepted.
func (processor *Processor) TargetFiles() []types.FileRecord {
	return processor.aggregator.Records()
}

// Result returns every fenced block accumulated so far.
func (processor *Processor) Result() string {
	return processor.aggregator.Result()
}

// TotalSize is the byte length of Result, fence markers included.
func (processor *Processor) TotalSize() int {
	return processor.aggregator.Len()
}

// TotalTokens sums the token counts of every accepted file.
func (processor *Processor) TotalTokens() int {
	return processor.aggregator.TotalTokens()
}

// DirectoryStructure is DirectoryStructureContext with a background context.
func (processor *Processor) DirectoryStructure() (string, error) {
	return processor.DirectoryStructureContext(context.Background())
}

// DirectoryStructureContext renders the tree of the Processor's root, recomputed on every call.
// It reads the filesystem only and never the accumulated records.
func (processor *Processor) DirectoryStructureContext(ctx context.Context) (string, error) {
	treeBuilder := TreeBuilder{Walker: processor.walker}
	return treeBuilder.Render(ctx, processor.root)
}
