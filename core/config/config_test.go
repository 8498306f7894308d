package config

import (
	"bytes"
	"io"
	"log"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, `\u@\h:\w\$ `, cfg.Prompt)
	assert.Equal(t, ColorAuto, cfg.Color)
}

func TestLoad(t *testing.T) {
	cases := map[string]struct {
		contents string
		wantErr  string
		check    func(t *testing.T, cfg *Configuration)
	}{
		"missing file uses defaults": {
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, defaultConfig().Prompt, cfg.Prompt)
			},
		},
		"overrides": {
			contents: "prompt: '% '\ncolor: never\ntrace: true\nhistory_limit: -1\n",
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "% ", cfg.Prompt)
				assert.Equal(t, ColorNever, cfg.Color)
				assert.True(t, cfg.Trace)
				assert.Equal(t, -1, cfg.HistoryLimit)
			},
		},
		"unknown field": {
			contents: "prompt: '$ '\ncolor: auto\nshell: /bin/sh\n",
			wantErr:  "shell",
		},
		"bad color": {
			contents: "prompt: '$ '\ncolor: sometimes\n",
			wantErr:  "color",
		},
		"missing prompt": {
			contents: "color: auto\n",
			wantErr:  "prompt",
		},
		"bad history limit": {
			contents: "prompt: '$ '\ncolor: auto\nhistory_limit: -2\n",
			wantErr:  "history_limit",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tc.contents != "" {
				require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte(tc.contents), 0600))
			}

			cfg, err := Load(fs, "/cfg")
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/cfg", cfg.Dir())
			tc.check(t, cfg)
		})
	}
}

func TestLoadConfigFilePath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte("prompt: '> '\ncolor: auto\n"), 0600))

	cfg, err := Load(fs, "/cfg/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/cfg", cfg.Dir())
	assert.Equal(t, "> ", cfg.Prompt)
}

func TestInitialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	cfg, err := Initialize(fs, "/home/ken/.v6sh", logger)
	require.NoError(t, err)
	assert.Equal(t, "Wrote configuration \"/home/ken/.v6sh/config.yaml\"\n", logs.String())

	written, err := afero.ReadFile(fs, "/home/ken/.v6sh/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultConfigData, written)

	// Existing configuration isn't overwritten.
	require.NoError(t, afero.WriteFile(fs, "/home/ken/.v6sh/config.yaml", []byte("prompt: '% '\ncolor: auto\n"), 0600))
	logs.Reset()
	cfg, err = Initialize(fs, "/home/ken/.v6sh", logger)
	require.NoError(t, err)
	assert.Equal(t, "% ", cfg.Prompt)
	assert.Contains(t, logs.String(), "already exists")

	t.Run("OpenEventLog", func(t *testing.T) {
		cfg.EventLog = "logs/events.jsonl"
		fd, err := cfg.OpenEventLog()
		require.NoError(t, err)
		_, err = io.WriteString(fd, "{}\n")
		assert.NoError(t, err)
		fd.Close()

		fd, err = cfg.ReadEventLog()
		require.NoError(t, err)
		defer fd.Close()
		contents, err := io.ReadAll(fd)
		assert.NoError(t, err)
		assert.Equal(t, "{}\n", string(contents))
	})

	t.Run("disabled event log", func(t *testing.T) {
		cfg.EventLog = ""
		fd, err := cfg.OpenEventLog()
		assert.NoError(t, err)
		assert.Nil(t, fd)
	})
}

func TestHistoryPath(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	cases := map[string]struct {
		file string
		want string
	}{
		"disabled": {file: "", want: ""},
		"relative": {file: "history", want: "/cfg/history"},
		"absolute": {file: "/tmp/h", want: "/tmp/h"},
		"home":     {file: "~/.v6sh_history", want: filepath.Join(home, ".v6sh_history")},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := DefaultConfig(afero.NewMemMapFs(), "/cfg")
			cfg.HistoryFile = tc.file

			got, err := cfg.HistoryPath()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
