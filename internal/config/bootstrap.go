package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// DataDir resolves the engine's data directory: LEADHUNT_DATA_DIR, then the
// config value, then the working directory.
func DataDir(configured string) string {
	if d := os.Getenv("LEADHUNT_DATA_DIR"); d != "" {
		return d
	}
	if configured != "" {
		return configured
	}
	return "."
}

// EnsureUserConfig copies defaultPath into dataDir/config.yml on first run
// and returns the user copy's path.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
