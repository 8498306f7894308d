// Package interp runs execution plans as operating system processes.
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/josephlewis42/v6sh/core/logger"
	"github.com/josephlewis42/v6sh/core/plan"
	"github.com/josephlewis42/v6sh/core/shell"
	"github.com/spf13/afero"
)

// Stdio holds the standard streams of a single command.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// EventRecorder stores shell events, *logger.SessionLogger implements it.
type EventRecorder interface {
	Record(event logger.LogType) error
}

// Interpreter holds the state commands run against. Built-ins may change it,
// external commands only ever see a copy.
type Interpreter struct {
	// Dir is the working directory for commands and relative paths.
	Dir string
	Env *Env

	Stdin io.Reader
	// Stdout and Stderr are written to by commands running at the same time.
	// New puts writers that aren't files behind a lock, each with its own.
	Stdout io.Writer
	Stderr io.Writer

	// Verbose prints each command to Stderr before it starts.
	Verbose bool
	// Interactive prints the job number and process IDs of background jobs.
	Interactive bool

	// ShellPath is the executable started for subshells.
	ShellPath string
	// Fs is used to find programs and open redirection targets.
	Fs       afero.Fs
	Builtins map[string]Builtin
	Jobs     *Jobs
	Events   EventRecorder

	// TraceColor and ErrColor style verbose output and error messages, nil
	// leaves them plain.
	TraceColor *color.Color
	ErrColor   *color.Color

	lastStatus int
	exited     bool
	exitStatus int

	// forked is set on the copy a concurrent built-in runs on. jobsAtFork are
	// the jobs it may wait for, which never include its own.
	forked     bool
	jobsAtFork []*Job
}

// New creates an interpreter for the current process: its working directory,
// environment and executable.
func New(stdin io.Reader, stdout, stderr io.Writer) *Interpreter {
	dir, _ := os.Getwd()
	shellPath, _ := os.Executable()

	builtins := make(map[string]Builtin, len(AllBuiltins))
	for name, builtin := range AllBuiltins {
		builtins[name] = builtin
	}

	return &Interpreter{
		Dir:       dir,
		Env:       NewEnv(os.Environ()),
		Stdin:     stdin,
		Stdout:    syncWriter(stdout),
		Stderr:    syncWriter(stderr),
		ShellPath: shellPath,
		Fs:        afero.NewOsFs(),
		Builtins:  builtins,
		Jobs:      NewJobs(),
	}
}

// LastStatus gets the exit status of the most recent foreground command.
func (it *Interpreter) LastStatus() int {
	return it.lastStatus
}

// SetLastStatus records the status of a line that failed before it ran.
func (it *Interpreter) SetLastStatus(status int) {
	it.lastStatus = status
}

// Exited reports whether the exit built-in ran, and with which status.
func (it *Interpreter) Exited() (bool, int) {
	return it.exited, it.exitStatus
}

// fork copies the interpreter for a built-in that runs concurrently with the
// shell. Changes to the copy aren't seen by the original.
func (it *Interpreter) fork() *Interpreter {
	child := *it
	child.Env = it.Env.Clone()
	child.exited = false
	child.exitStatus = 0
	child.forked = true
	child.jobsAtFork = it.Jobs.List()
	return &child
}

// waitableJobs lists the jobs the wait built-in may block on.
func (it *Interpreter) waitableJobs() []*Job {
	if it.forked {
		return it.jobsAtFork
	}
	return it.Jobs.List()
}

func (it *Interpreter) record(event logger.LogType) {
	if it.Events != nil {
		it.Events.Record(event)
	}
}

func sprintf(c *color.Color, format string, a ...interface{}) string {
	if c == nil {
		return fmt.Sprintf(format, a...)
	}
	return c.Sprintf(format, a...)
}

// Report prints an error to the interpreter's standard error.
func (it *Interpreter) Report(err error) {
	fmt.Fprintln(it.Stderr, sprintf(it.ErrColor, "v6sh: %v", err))
}

func (it *Interpreter) trace(argv []string) {
	if it.Verbose {
		fmt.Fprintln(it.Stderr, sprintf(it.TraceColor, "+ %s", shell.QuoteArgv(argv)))
	}
}

func (it *Interpreter) streams() streams {
	return streams{in: it.Stdin, out: it.Stdout, err: it.Stderr}
}

// Execute runs a plan and returns the exit status of its last foreground
// command. A nil plan does nothing and succeeds.
func (it *Interpreter) Execute(ctx context.Context, node plan.Node) int {
	switch n := node.(type) {
	case nil:
		return 0

	case *plan.Seq:
		status := it.Execute(ctx, n.First)
		if it.exited {
			return status
		}
		return it.Execute(ctx, n.Second)

	case *plan.Background:
		it.background(ctx, n)
		it.lastStatus = 0
		return 0

	default:
		it.lastStatus = it.start(ctx, node, it.streams(), false).wait()
		return it.lastStatus
	}
}

func (it *Interpreter) background(ctx context.Context, n *plan.Background) {
	// Background jobs don't read the terminal.
	s := streams{out: it.Stdout, err: it.Stderr}
	t := it.start(context.WithoutCancel(ctx), n.Inner, s, true)

	job := it.Jobs.add(plan.Serialize(n), t, func(job *Job) {
		it.record(&logger.JobDone{
			JobID:   job.ID,
			Pids:    job.Pids,
			Command: job.Command,
			Status:  job.status,
		})
	})

	if it.Interactive {
		var pids []string
		for _, pid := range job.Pids {
			pids = append(pids, fmt.Sprint(pid))
		}
		fmt.Fprintf(it.Stderr, "[%d] %s\n", job.ID, strings.Join(pids, " "))
	}
}

// start begins running a node without waiting for it. Concurrent is set when
// the node runs alongside the shell, in a pipeline or the background, which
// moves built-ins onto a forked interpreter.
func (it *Interpreter) start(ctx context.Context, node plan.Node, s streams, concurrent bool) task {
	switch n := node.(type) {
	case *plan.Exec:
		return it.startExec(ctx, n, s, concurrent)

	case *plan.Subshell:
		return it.startSubshell(ctx, n, s)

	case *plan.Pipe:
		return it.startPipe(ctx, n, s)

	default:
		s.close()
		it.Report(fmt.Errorf("can't run %q here", plan.Serialize(node)))
		return doneTask(StatusUsage)
	}
}

func (it *Interpreter) startPipe(ctx context.Context, n *plan.Pipe, s streams) task {
	pr, pw, err := os.Pipe()
	if err != nil {
		s.close()
		it.Report(err)
		return doneTask(1)
	}

	left := it.start(ctx, n.Left, streams{
		in:        s.in,
		inCloser:  s.inCloser,
		out:       pw,
		outCloser: pw,
		err:       s.err,
	}, true)

	right := it.start(ctx, n.Right, streams{
		in:        pr,
		inCloser:  pr,
		out:       s.out,
		outCloser: s.outCloser,
		err:       s.err,
	}, true)

	return &pipeTask{left: left, right: right}
}

func (it *Interpreter) startExec(ctx context.Context, n *plan.Exec, s streams, concurrent bool) task {
	stdio := s.stdio()
	files, redirErr := it.applyRedirects(n.Stdin, n.Stdout, &stdio)
	if redirErr != nil {
		return it.failRedirect(redirErr, n.Argv, s)
	}

	if len(n.Argv) == 0 {
		files.Close()
		s.close()
		return doneTask(0)
	}

	it.trace(n.Argv)

	if builtin, ok := it.Builtins[n.Argv[0]]; ok {
		it.record(&logger.RunCommand{Command: n.Argv, Builtin: true})
		return it.startBuiltin(builtin, n.Argv, stdio, files, s, concurrent)
	}

	path, err := it.LookPath(n.Argv[0])
	if err != nil {
		status := StatusCannotExecute
		if errors.Is(err, ErrNotFound) {
			status = StatusNotFound
		}
		return it.failStart(&ExecutionError{Command: n.Argv[0], Err: err, Status: status}, n.Argv, files, s)
	}

	cmd := exec.CommandContext(ctx, path, n.Argv[1:]...)
	cmd.Args = n.Argv
	t, err := it.startCmd(cmd, stdio, files, s)
	if err != nil {
		return it.failStart(&ExecutionError{Command: n.Argv[0], Err: err, Status: StatusCannotExecute}, n.Argv, files, s)
	}

	it.record(&logger.RunCommand{Command: n.Argv, ResolvedCommandPath: path, Pid: cmd.Process.Pid})
	return t
}

func (it *Interpreter) startSubshell(ctx context.Context, n *plan.Subshell, s streams) task {
	text := shell.Serialize(n.Source)

	stdio := s.stdio()
	files, redirErr := it.applyRedirects(n.Stdin, n.Stdout, &stdio)
	if redirErr != nil {
		return it.failRedirect(redirErr, []string{"(" + text + ")"}, s)
	}

	argv := []string{it.ShellPath}
	if it.Verbose {
		argv = append(argv, "-x")
	}
	argv = append(argv, "-c", text)

	it.trace(argv)

	if it.ShellPath == "" {
		return it.failStart(&ExecutionError{Command: "(" + text + ")", Err: ErrNoShell, Status: StatusCannotExecute}, argv, files, s)
	}

	cmd := exec.CommandContext(ctx, it.ShellPath, argv[1:]...)
	t, err := it.startCmd(cmd, stdio, files, s)
	if err != nil {
		return it.failStart(&ExecutionError{Command: it.ShellPath, Err: err, Status: StatusCannotExecute}, argv, files, s)
	}

	it.record(&logger.Subshell{Command: text, ShellPath: it.ShellPath, Pid: cmd.Process.Pid})
	return t
}

// startCmd starts an external process. On success the shell's copies of the
// pipe ends are closed because the child holds its own.
func (it *Interpreter) startCmd(cmd *exec.Cmd, stdio Stdio, files fileList, s streams) (task, error) {
	cmd.Dir = it.Dir
	cmd.Env = it.Env.Environ()
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	s.close()

	return &procTask{cmd: cmd, files: files}, nil
}

func (it *Interpreter) failStart(err *ExecutionError, argv []string, files fileList, s streams) task {
	files.Close()
	s.close()

	it.record(&logger.UnknownCommand{Command: argv, Status: err.Status, ErrorMessage: err.Err.Error()})
	it.Report(err)
	return doneTask(err.Status)
}

// failRedirect skips a command whose redirection target couldn't be opened.
func (it *Interpreter) failRedirect(err *ExecutionError, argv []string, s streams) task {
	s.close()

	it.record(&logger.RedirectFailed{
		Command:      argv,
		Path:         err.Command,
		Status:       err.Status,
		ErrorMessage: err.Error(),
	})
	it.Report(err)
	return doneTask(err.Status)
}

func (it *Interpreter) startBuiltin(builtin Builtin, argv []string, stdio Stdio, files fileList, s streams, concurrent bool) task {
	if stdio.In == nil {
		stdio.In = strings.NewReader("")
	}

	run := func(target *Interpreter) int {
		defer s.close()
		defer files.Close()
		return builtin.Main(target, stdio, argv)
	}

	if !concurrent {
		return doneTask(run(it))
	}

	child := it.fork()
	t := &builtinTask{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.status = run(child)
	}()
	return t
}
