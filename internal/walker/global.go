package walker

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"
)

const (
	xdgConfigHomeVariable      = "XDG_CONFIG_HOME"
	defaultConfigDirectoryName = ".config"
	gitConfigDirectoryName     = "git"
	defaultGlobalIgnoreName    = "ignore"
	warnGlobalPatternsMessage  = "skipping global gitignore"
)

// loadGlobalPatterns resolves the user's global excludes file: core.excludesfile from ~/.gitconfig
// first, then $XDG_CONFIG_HOME/git/ignore (or ~/.config/git/ignore).
func loadGlobalPatterns(filesystem billy.Filesystem, logger *zap.Logger, explicitPath string) []gitignore.Pattern {
	if explicitPath != "" {
		patterns, readError := readIgnoreFile(filesystem, logger, explicitPath, nil)
		if readError != nil {
			logger.Warn(warnGlobalPatternsMessage, zap.String(logFieldPath, explicitPath), zap.Error(readError))
			return nil
		}
		return patterns
	}

	configuredPatterns, loadError := gitignore.LoadGlobalPatterns(filesystem)
	if loadError != nil {
		logger.Warn(warnGlobalPatternsMessage, zap.Error(loadError))
	}
	if len(configuredPatterns) > 0 {
		return configuredPatterns
	}

	fallbackPath := defaultGlobalIgnorePath()
	if fallbackPath == "" {
		return nil
	}
	fallbackPatterns, readError := readIgnoreFile(filesystem, logger, fallbackPath, nil)
	if readError != nil {
		logger.Warn(warnGlobalPatternsMessage, zap.String(logFieldPath, fallbackPath), zap.Error(readError))
		return nil
	}
	return fallbackPatterns
}

func defaultGlobalIgnorePath() string {
	if configHome := os.Getenv(xdgConfigHomeVariable); configHome != "" {
		return filepath.Join(configHome, gitConfigDirectoryName, defaultGlobalIgnoreName)
	}
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return ""
	}
	return filepath.Join(homeDirectory, defaultConfigDirectoryName, gitConfigDirectoryName, defaultGlobalIgnoreName)
}
