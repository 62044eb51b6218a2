package config

import (
	"os"
	"path/filepath"
)

var (
	homeDir string
)

func init() {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		homeDir = "~"
	}
}

// BratDir returns the brat config directory path
// ~/.config/brat/ (overridable with BRAT_CONFIG_DIR)
func BratDir() string {
	if dir := os.Getenv("BRAT_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir, ".config", "brat")
}

// ConfigPath returns the config.json file path
// ~/.config/brat/config.json
func ConfigPath() string {
	return filepath.Join(BratDir(), "config.json")
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
