// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package xdg resolves lifefork's XDG base directories.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "lifefork"

// SettingsFile is the settings file looked up in ConfigDir when no
// --config flag is given.
const SettingsFile = "settings.yaml"

func resolve(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", oops.With("env", env).Errorf("neither %s nor HOME is set", env)
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...), nil
}

// ConfigDir returns $XDG_CONFIG_HOME/lifefork, defaulting to ~/.config.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/lifefork, defaulting to ~/.local/share.
func DataDir() (string, error) {
	return resolve("XDG_DATA_HOME", ".local", "share")
}

// RunsDir is where runs write their layer files unless output_dir is set.
func RunsDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "runs"), nil
}

// DefaultSettingsPath returns ConfigDir/settings.yaml if that file exists,
// and "" otherwise.
func DefaultSettingsPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, SettingsFile)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// EnsureDir creates path and its parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.With("path", path).Wrapf(err, "create directory")
	}
	return nil
}
