package interp

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

const (
	EnvHome = "HOME"
	EnvPWD  = "PWD"
	EnvPath = "PATH"
	EnvUser = "USER"
)

// Env is the environment passed to commands started by the interpreter.
type Env struct {
	rw  sync.RWMutex
	env map[string]string
}

// NewEnv creates an environment from a list of "key=value" entries. Entries
// without a '=' get an empty value.
func NewEnv(environ []string) *Env {
	out := &Env{}

	for _, e := range environ {
		split := strings.SplitN(e, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		out.Setenv(key, value)
	}

	return out
}

// Setenv sets the value of key.
func (m *Env) Setenv(key, value string) {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	m.env[key] = value
}

// Unsetenv removes key.
func (m *Env) Unsetenv(key string) {
	m.rw.Lock()
	defer m.rw.Unlock()
	delete(m.env, key)
}

// LookupEnv gets the value of key and whether it was set.
func (m *Env) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv gets the value of key or the empty string.
func (m *Env) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// ExpandEnv replaces $var and ${var} in s.
func (m *Env) ExpandEnv(s string) string {
	return os.Expand(s, m.Getenv)
}

// Environ returns the environment in "key=value" form, sorted by key.
func (m *Env) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	env := make([]string, 0, len(m.env))
	for k, v := range m.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)

	return env
}

// Clone returns an independent copy of the environment.
func (m *Env) Clone() *Env {
	return NewEnv(m.Environ())
}
