package interp

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// resolve makes a path relative to the interpreter's working directory.
func (it *Interpreter) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(it.Dir, path)
}

func (it *Interpreter) findExecutable(file string) error {
	d, err := it.Fs.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// the PATH environment variable. If file contains a slash, it is tried directly
// and the PATH is not consulted. The result is always an absolute path.
func (it *Interpreter) LookPath(file string) (string, error) {
	if strings.Contains(file, "/") {
		path := it.resolve(file)
		if err := it.findExecutable(path); err != nil {
			return "", err
		}
		return path, nil
	}

	for _, dir := range filepath.SplitList(it.Env.Getenv(EnvPath)) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := it.resolve(filepath.Join(dir, file))
		if err := it.findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}
