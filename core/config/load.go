package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory. A directory without a
// configuration file gets the defaults.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	path, err := configDir(path)
	if err != nil {
		return nil, err
	}

	configContents, err := afero.ReadFile(fsys, filepath.Join(path, ConfigurationName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return DefaultConfig(fsys, path), nil
	case err != nil:
		return nil, err
	}

	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	out.configFs = fsys
	out.configDir = path
	return &out, nil
}

// Initialize writes the default configuration to the directory if it doesn't
// already have one and loads it.
func Initialize(fsys afero.Fs, path string, logger *log.Logger) (*Configuration, error) {
	path, err := configDir(path)
	if err != nil {
		return nil, err
	}

	if err := fsys.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	configPath := filepath.Join(path, ConfigurationName)
	switch _, err := fsys.Stat(configPath); {
	case err == nil:
		logger.Printf("Configuration %q already exists, leaving it alone", configPath)
	case errors.Is(err, fs.ErrNotExist):
		if err := afero.WriteFile(fsys, configPath, defaultConfigData, 0600); err != nil {
			return nil, err
		}
		logger.Printf("Wrote configuration %q", configPath)
	default:
		return nil, err
	}

	return Load(fsys, path)
}

func configDir(path string) (string, error) {
	if path == "" {
		path = DefaultDirName
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}

	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}
	return path, nil
}
