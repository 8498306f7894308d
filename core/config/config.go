package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	DefaultDirName    = "~/.v6sh"
)

const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	configFs  afero.Fs
	configDir string

	Prompt string `json:"prompt" validate:"required"`

	HistoryFile  string `json:"history_file"`
	HistoryLimit int    `json:"history_limit" validate:"gte=-1"`

	EventLog string `json:"event_log"`

	Color string `json:"color" validate:"oneof=always auto never"`
	Trace bool   `json:"trace"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// Dir gets the directory the configuration was loaded from.
func (c *Configuration) Dir() string {
	return c.configDir
}

// resolve expands a leading ~ and makes relative paths relative to the
// configuration directory.
func (c *Configuration) resolve(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return expanded, nil
	}
	return filepath.Join(c.configDir, expanded), nil
}

// HistoryPath gets the path of the interactive history file, or the empty
// string if history isn't persisted.
func (c *Configuration) HistoryPath() (string, error) {
	if c.HistoryFile == "" {
		return "", nil
	}
	return c.resolve(c.HistoryFile)
}

// OpenEventLog opens the event log in an append only state. It returns nil
// if the event log is disabled.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, nil
	}

	path, err := c.resolve(c.EventLog)
	if err != nil {
		return nil, err
	}
	if err := c.fs().MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return c.fs().OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, os.ErrNotExist
	}

	path, err := c.resolve(c.EventLog)
	if err != nil {
		return nil, err
	}
	return c.fs().OpenFile(path, os.O_RDONLY, 0600)
}

// DefaultConfig returns the built-in configuration rooted at dir.
func DefaultConfig(fs afero.Fs, dir string) *Configuration {
	out := defaultConfig()
	out.configFs = fs
	out.configDir = dir
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
