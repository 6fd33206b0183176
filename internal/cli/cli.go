// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/cfl/internal/commands"
	"github.com/temirov/cfl/internal/config"
	"github.com/temirov/cfl/internal/output"
	"github.com/temirov/cfl/internal/services/clipboard"
	"github.com/temirov/cfl/internal/tokenizer"
	"github.com/temirov/cfl/internal/types"
	"github.com/temirov/cfl/internal/utils"
)

const (
	includeFlagName              = "include"
	includeFlagShorthand         = "i"
	excludeFlagName              = "exclude"
	excludeFlagShorthand         = "e"
	showFlagName                 = "show"
	showFlagShorthand            = "s"
	formatFlagName               = "format"
	modelFlagName                = "model"
	rootFlagName                 = "root"
	includeGitFlagName           = "git"
	clipboardFlagName            = "clipboard"
	gitignoreOutsideRepoFlagName = "gitignore-outside-repo"
	globalGitignoreFlagName      = "global-gitignore"
	configFlagName               = "config"
	versionFlagName              = "version"
	initGlobalFlagName           = "global"
	initForceFlagName            = "force"

	versionTemplate      = "cfl version: %s\n"
	defaultPath          = "."
	rootUse              = "cfl [paths]"
	rootShortDescription = "copy file contents to the clipboard for LLM prompts"
	rootLongDescription  = `cfl walks one or more comma-separated paths, keeps the files whose names match
the include patterns and none of the exclude patterns, skips anything ignored by
.ignore, .gitignore, .git/info/exclude or the global gitignore, and copies every
file as a fenced block to the clipboard. A summary, token estimate and directory
structure are printed afterwards.`
	rootUsageExample = `  # Copy every Rust and TOML file under src and the manifest
  cfl src,Cargo.toml -i "*.rs,*.toml"

  # List what would be copied without touching the clipboard
  cfl . -e "*_test.go" --show

  # Count tokens with an OpenAI encoding and print JSON
  cfl . --model gpt-4o --format json`
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a default configuration to ./.cfl.yaml, or to ~/.cfl/config.yaml with --global.
Existing files are kept unless --force is given.`

	includeFlagDescription              = "comma-separated glob patterns a file name must match"
	excludeFlagDescription              = "comma-separated glob patterns that reject a file name"
	showFlagDescription                 = "list target files without copying"
	formatFlagDescription               = "report format (raw or json)"
	modelFlagDescription                = "tokenizer model used for token counts (heuristic when empty)"
	rootFlagDescription                 = "directory that displayed paths and the structure are relative to"
	includeGitFlagDescription           = "walk into .git directories"
	clipboardFlagDescription            = "copy the collected content to the clipboard"
	gitignoreOutsideRepoFlagDescription = "honor .gitignore files outside git repositories"
	globalGitignoreFlagDescription      = "honor the global gitignore"
	configFlagDescription               = "configuration file path (defaults to ./.cfl.yaml)"
	versionFlagDescription              = "display application version"
	initGlobalFlagDescription           = "write the global configuration instead of the local one"
	initForceFlagDescription            = "overwrite an existing configuration file"

	invalidFormatMessageFormat = "invalid format value %q"
	loadConfigurationFormat    = "load configuration: %w"
	tokenizerFormat            = "configure tokenizer: %w"
	processPathFormat          = "process %s: %w"
	directoryStructureFormat   = "render directory structure: %w"
	clipboardCopyFormat        = "copy to clipboard: %w"
	configurationWrittenFormat = "Configuration written to %s\n"
	errorAbsolutePathFormat    = "abs failed for '%s': %w"
	errorStatFormat            = "stat failed for '%s': %w"
	clipboardCopiedMessage     = "content copied to clipboard"
	logFieldFiles              = "files"
	logFieldBytes              = "bytes"
)

// Dependencies holds the collaborators the root command uses.
type Dependencies struct {
	Logger    *zap.Logger
	Clipboard clipboard.Copier
	Stdout    io.Writer
}

// runOptions stores the raw flag values of the root command.
type runOptions struct {
	includePatterns      string
	excludePatterns      string
	show                 bool
	format               string
	model                string
	root                 string
	includeGit           bool
	clipboard            bool
	gitignoreOutsideRepo bool
	globalGitignore      bool
	configPath           string
	showVersion          bool
}

// settings is the effective configuration after merging files and flags.
type settings struct {
	includePatterns      string
	excludePatterns      string
	show                 bool
	format               string
	model                string
	includeGit           bool
	clipboard            bool
	gitignoreOutsideRepo bool
	globalGitignore      bool
}

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON:
		return true
	default:
		return false
	}
}

// Execute runs the cfl application against the process arguments.
func Execute(logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{
		Logger:    logger,
		Clipboard: clipboard.NewService(),
		Stdout:    os.Stdout,
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	if dependencies.Stdout == nil {
		dependencies.Stdout = os.Stdout
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	dependencies.Logger = utils.LoggerOrNop(dependencies.Logger)

	var options runOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, writeError := fmt.Fprintf(dependencies.Stdout, versionTemplate, utils.GetApplicationVersion())
				return writeError
			}
			return runCopy(command, dependencies, options, arguments)
		},
	}
	rootCommand.SetOut(dependencies.Stdout)

	flagSet := rootCommand.Flags()
	flagSet.StringVarP(&options.includePatterns, includeFlagName, includeFlagShorthand, "", includeFlagDescription)
	flagSet.StringVarP(&options.excludePatterns, excludeFlagName, excludeFlagShorthand, "", excludeFlagDescription)
	registerBooleanFlag(flagSet, &options.show, showFlagName, showFlagShorthand, false, showFlagDescription)
	flagSet.StringVar(&options.format, formatFlagName, types.FormatRaw, formatFlagDescription)
	flagSet.StringVar(&options.model, modelFlagName, "", modelFlagDescription)
	flagSet.StringVar(&options.root, rootFlagName, "", rootFlagDescription)
	registerBooleanFlag(flagSet, &options.includeGit, includeGitFlagName, "", false, includeGitFlagDescription)
	registerBooleanFlag(flagSet, &options.clipboard, clipboardFlagName, "", true, clipboardFlagDescription)
	registerBooleanFlag(flagSet, &options.gitignoreOutsideRepo, gitignoreOutsideRepoFlagName, "", false, gitignoreOutsideRepoFlagDescription)
	registerBooleanFlag(flagSet, &options.globalGitignore, globalGitignoreFlagName, "", true, globalGitignoreFlagDescription)
	flagSet.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	flagSet.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand(dependencies))
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var writeGlobal bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			_, writeError := fmt.Fprintf(dependencies.Stdout, configurationWrittenFormat, writtenPath)
			return writeError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &writeGlobal, initGlobalFlagName, "", false, initGlobalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, initForceFlagName, "", false, initForceFlagDescription)
	return initCommand
}

// resolveSettings overlays explicitly set flags onto the loaded configuration.
func resolveSettings(command *cobra.Command, options runOptions) (settings, error) {
	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: options.configPath})
	if loadError != nil {
		return settings{}, fmt.Errorf(loadConfigurationFormat, loadError)
	}
	flagSet := command.Flags()
	resolved := settings{
		includePatterns:      resolveStringSetting(flagSet, includeFlagName, options.includePatterns, loaded.Include, ""),
		excludePatterns:      resolveStringSetting(flagSet, excludeFlagName, options.excludePatterns, loaded.Exclude, ""),
		show:                 resolveBooleanSetting(flagSet, showFlagName, options.show, loaded.Show, false),
		format:               strings.ToLower(resolveStringSetting(flagSet, formatFlagName, options.format, loaded.Format, types.FormatRaw)),
		model:                resolveStringSetting(flagSet, modelFlagName, options.model, loaded.Tokens.Model, ""),
		includeGit:           resolveBooleanSetting(flagSet, includeGitFlagName, options.includeGit, loaded.Paths.IncludeGit, false),
		clipboard:            resolveBooleanSetting(flagSet, clipboardFlagName, options.clipboard, loaded.Clipboard, true),
		gitignoreOutsideRepo: resolveBooleanSetting(flagSet, gitignoreOutsideRepoFlagName, options.gitignoreOutsideRepo, loaded.Paths.GitignoreOutsideRepository, false),
		globalGitignore:      resolveBooleanSetting(flagSet, globalGitignoreFlagName, options.globalGitignore, loaded.Paths.GlobalGitignore, true),
	}
	if !isSupportedFormat(resolved.format) {
		return settings{}, fmt.Errorf(invalidFormatMessageFormat, resolved.format)
	}
	return resolved, nil
}

// runCopy processes every requested path and either lists or copies the result.
func runCopy(command *cobra.Command, dependencies Dependencies, options runOptions, arguments []string) error {
	resolved, settingsError := resolveSettings(command, options)
	if settingsError != nil {
		return settingsError
	}

	validatedPaths, pathValidationError := resolveAndValidatePaths(collectPathArguments(arguments))
	if pathValidationError != nil {
		return pathValidationError
	}

	tokenCounter, tokenModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: resolved.model})
	if counterError != nil {
		return fmt.Errorf(tokenizerFormat, counterError)
	}

	processor, processorError := commands.NewProcessor(commands.Options{
		Root:                       options.root,
		IncludePatterns:            resolved.includePatterns,
		ExcludePatterns:            resolved.excludePatterns,
		Logger:                     dependencies.Logger,
		TokenCounter:               tokenCounter,
		SkipGitDirectory:           !resolved.includeGit,
		GitignoreOutsideRepository: resolved.gitignoreOutsideRepo,
		DisableGlobalGitignore:     !resolved.globalGitignore,
	})
	if processorError != nil {
		return processorError
	}

	ctx := command.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for _, validatedPath := range validatedPaths {
		if processError := processor.ProcessContext(ctx, validatedPath.OriginalPath); processError != nil {
			return fmt.Errorf(processPathFormat, validatedPath.OriginalPath, processError)
		}
	}

	report := types.Report{
		Files: processor.TargetFiles(),
		Summary: types.OutputSummary{
			TotalFiles:  len(processor.TargetFiles()),
			TotalSize:   processor.TotalSize(),
			TotalTokens: processor.TotalTokens(),
			Model:       tokenModel,
		},
		IncludePatterns: processor.Filter().Include.Sources(),
		ExcludePatterns: processor.Filter().Exclude.Sources(),
	}

	if resolved.show {
		return writeShowList(dependencies.Stdout, resolved.format, report)
	}

	copyEnabled := resolved.clipboard && report.Summary.TotalFiles > 0
	group, groupContext := errgroup.WithContext(ctx)
	if copyEnabled {
		group.Go(func() error {
			if copyError := dependencies.Clipboard.Copy(processor.Result()); copyError != nil {
				return fmt.Errorf(clipboardCopyFormat, copyError)
			}
			dependencies.Logger.Debug(clipboardCopiedMessage,
				zap.Int(logFieldFiles, report.Summary.TotalFiles),
				zap.Int(logFieldBytes, report.Summary.TotalSize))
			return nil
		})
	}
	group.Go(func() error {
		structure, structureError := processor.DirectoryStructureContext(groupContext)
		if structureError != nil {
			return fmt.Errorf(directoryStructureFormat, structureError)
		}
		report.DirectoryStructure = structure
		return nil
	})
	if waitError := group.Wait(); waitError != nil {
		return waitError
	}
	report.Copied = copyEnabled

	rendered, renderError := output.Render(resolved.format, report)
	if renderError != nil {
		return renderError
	}
	_, writeError := io.WriteString(dependencies.Stdout, rendered)
	return writeError
}

func writeShowList(writer io.Writer, format string, report types.Report) error {
	if format == types.FormatJSON {
		rendered, renderError := output.RenderJSON(report)
		if renderError != nil {
			return renderError
		}
		_, writeError := io.WriteString(writer, rendered)
		return writeError
	}
	_, writeError := io.WriteString(writer, output.RenderShowList(report))
	return writeError
}

// collectPathArguments splits every argument on commas, defaulting to the working directory.
func collectPathArguments(arguments []string) []string {
	var paths []string
	for _, argument := range arguments {
		paths = append(paths, utils.SplitCommaSeparated(argument)...)
	}
	if len(paths) == 0 {
		return []string{defaultPath}
	}
	return paths
}

// resolveAndValidatePaths converts input paths to absolute form and validates their existence.
// Duplicate inputs are dropped; the first spelling is kept for display.
func resolveAndValidatePaths(inputs []string) ([]types.ValidatedPath, error) {
	seen := make(map[string]struct{})
	var result []types.ValidatedPath
	for _, inputPath := range inputs {
		absolutePath, absolutePathError := filepath.Abs(inputPath)
		if absolutePathError != nil {
			return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, ok := seen[cleanPath]; ok {
			continue
		}
		info, fileStatusError := os.Stat(cleanPath)
		if fileStatusError != nil {
			if errors.Is(fileStatusError, os.ErrNotExist) {
				return nil, &commands.PathNotFoundError{Path: inputPath}
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
		}
		seen[cleanPath] = struct{}{}
		result = append(result, types.ValidatedPath{OriginalPath: inputPath, AbsolutePath: cleanPath, IsDir: info.IsDir()})
	}
	return result, nil
}
