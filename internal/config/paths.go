package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths resolves the pipeline's file locations against a base directory
type Paths struct {
	BaseDir string
}

// NewPaths creates Paths rooted at baseDir
func NewPaths(baseDir string) *Paths {
	return &Paths{BaseDir: filepath.Clean(baseDir)}
}

// GetPaths returns Paths rooted at TRADE_BASE_DIR, or the working directory when unset
func GetPaths() (*Paths, error) {
	if base := os.Getenv(BaseDirEnv); base != "" {
		return NewPaths(base), nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewPaths(wd), nil
}

// Resolve returns path unchanged when absolute, otherwise joined to the base directory
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// EnsureParentDirs creates the parent directory of every given file path
func (p *Paths) EnsureParentDirs(files ...string) error {
	for _, file := range files {
		if file == "" {
			continue
		}
		dir := filepath.Dir(p.Resolve(file))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
