package interp

import (
	"errors"
	"io"
	"os/exec"
	"sync"
	"syscall"
)

// streams are the standard streams a plan node runs with.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	// inCloser and outCloser are pipe ends owned by the node. They're closed in
	// the shell once the node no longer needs them so readers see EOF.
	inCloser  io.Closer
	outCloser io.Closer
}

func (s streams) close() {
	if s.inCloser != nil {
		s.inCloser.Close()
	}
	if s.outCloser != nil {
		s.outCloser.Close()
	}
}

func (s streams) stdio() Stdio {
	return Stdio{In: s.in, Out: s.out, Err: s.err}
}

// task is a started node.
type task interface {
	// wait blocks until the node finishes and returns its exit status.
	wait() int
	// pids lists the operating system processes backing the node.
	pids() []int
}

// doneTask is a node that finished before start returned.
type doneTask int

func (t doneTask) wait() int   { return int(t) }
func (t doneTask) pids() []int { return nil }

// procTask is an external program.
type procTask struct {
	cmd   *exec.Cmd
	files fileList

	once   sync.Once
	status int
}

func (t *procTask) wait() int {
	t.once.Do(func() {
		err := t.cmd.Wait()
		t.files.Close()
		t.status = exitStatus(err)
	})
	return t.status
}

func (t *procTask) pids() []int {
	return []int{t.cmd.Process.Pid}
}

// builtinTask is a built-in running on its own goroutine.
type builtinTask struct {
	done   chan struct{}
	status int
}

func (t *builtinTask) wait() int {
	<-t.done
	return t.status
}

func (t *builtinTask) pids() []int { return nil }

// pipeTask is both sides of a pipe.
type pipeTask struct {
	left, right task
}

func (t *pipeTask) wait() int {
	status := t.right.wait()
	t.left.wait()
	return status
}

func (t *pipeTask) pids() []int {
	return append(t.left.pids(), t.right.pids()...)
}

// exitStatus converts the result of exec.Cmd.Wait into a shell exit status.
// Processes killed by a signal get 128 plus the signal number.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return exitErr.ExitCode()
	}
	return 1
}
