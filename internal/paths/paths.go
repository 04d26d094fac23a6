// Package paths resolves the configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
)

// CWD-relative directory names used when nothing else is set.
const (
	DefaultConfigDirName = ".pantry"
	DefaultDataDirName   = ".pantry-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "PANTRY_CONFIG_DIR"
	EnvDataDir   = "PANTRY_DATA_DIR"
)

// getwd is swapped in tests.
var getwd = os.Getwd

// ResolveConfigDir returns the configuration directory:
// flag > PANTRY_CONFIG_DIR > $(CWD)/.pantry.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return cwdJoin(DefaultConfigDirName)
}

// ResolveDataDir returns the data directory:
// flag > PANTRY_DATA_DIR > config.yaml data_dir > $(CWD)/.pantry-db.
//
// A relative data_dir from config.yaml is taken relative to configDir so the
// config file keeps pointing at the same place wherever pantry runs from.
func ResolveDataDir(flag, configYAMLValue, configDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if configYAMLValue != "" {
		if filepath.IsAbs(configYAMLValue) || configDir == "" {
			return filepath.Abs(configYAMLValue)
		}
		return filepath.Join(configDir, configYAMLValue), nil
	}
	return cwdJoin(DefaultDataDirName)
}

func cwdJoin(name string) (string, error) {
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
