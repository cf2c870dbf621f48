package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	ConfigName        = "wikiscrap"
	DefaultConfigDir  = "configs"
	DefaultConfigFile = ConfigName + ".json"
)

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir, DefaultConfigFile)
}

// SearchDirs lists where a wikiscrap.{json,yaml} file is looked up, in order.
func SearchDirs() []string {
	dirs := []string{".", DefaultConfigDir}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigName))
	}
	return uniqueDirs(dirs)
}

func uniqueDirs(dirs []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		normalized := strings.ToLower(filepath.Clean(trimmed))
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// ListFiles returns the config files found in the search dirs.
func ListFiles() ([]string, error) {
	var files []string
	for _, dir := range SearchDirs() {
		for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	return files, nil
}
