package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ProjectConfigName is the file name init writes.
const ProjectConfigName = ".gomobiledoc.yml"

// ConfigPaths holds the config files found for one load. Empty means absent.
type ConfigPaths struct {
	User     string
	Project  string
	Explicit string
}

// Project file names in order of preference. JSON is valid YAML, so every
// name goes through the same decoder.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{
	ProjectConfigName,
	".gomobiledoc.yaml",
	"gomobiledoc.yml",
	"gomobiledoc.yaml",
	".gomobiledoc.json",
}

//nolint:gochecknoglobals // Read-only lookup table.
var userConfigFiles = []string{"config.yaml", "config.yml"}

// DiscoverPaths locates the user config under UserConfigDir and the nearest
// project config at or above workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}
	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}
	paths := &ConfigPaths{Project: project}
	if dir, err := UserConfigDir(); err == nil {
		paths.User = firstFile(dir, userConfigFiles)
	}
	return paths, nil
}

// UserConfigDir returns $XDG_CONFIG_HOME/gomobiledoc, falling back to
// ~/.config/gomobiledoc.
func UserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gomobiledoc"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gomobiledoc"), nil
}

// FindProjectConfig walks from startDir toward the filesystem root and
// returns the first project config file it sees. The walk ends after a
// repository root (.git, .hg or .svn) or the home directory.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}
		if path := firstFile(dir, projectConfigFiles); path != "" {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir || dir == home || isRepositoryRoot(dir) {
			return "", nil
		}
		dir = parent
	}
}

func isRepositoryRoot(dir string) bool {
	for _, marker := range []string{".git", ".hg", ".svn"} {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}
