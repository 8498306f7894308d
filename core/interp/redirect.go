package interp

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/josephlewis42/v6sh/core/plan"
)

// fileList holds files opened for a single command.
type fileList []io.Closer

func (fl fileList) Close() error {
	var lastErr error
	for _, v := range fl {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// openRedirect opens a redirection target. Failures are reported against the
// path with StatusRedirectFailed.
func (it *Interpreter) openRedirect(r *plan.Redirect, flag int) (io.ReadWriteCloser, *ExecutionError) {
	fd, err := it.Fs.OpenFile(it.resolve(r.Path), flag, 0666)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return nil, &ExecutionError{Command: r.Path, Err: err, Status: StatusRedirectFailed}
	}
	return fd, nil
}

// applyRedirects opens the redirection targets and swaps them into stdio. The
// returned files must be closed once the command using them is finished.
func (it *Interpreter) applyRedirects(stdin, stdout *plan.Redirect, stdio *Stdio) (fileList, *ExecutionError) {
	var files fileList

	if stdin != nil {
		fd, err := it.openRedirect(stdin, os.O_RDONLY)
		if err != nil {
			return nil, err
		}
		files = append(files, fd)
		stdio.In = fd
	}

	if stdout != nil {
		flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if stdout.Append {
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}

		fd, err := it.openRedirect(stdout, flag)
		if err != nil {
			files.Close()
			return nil, err
		}
		files = append(files, fd)
		stdio.Out = fd
	}

	return files, nil
}
