package interp

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// AllBuiltins holds a list of all registered shell builtins. New interpreters
// start with a copy of it.
var AllBuiltins = make(map[string]Builtin)

// Builtin is a command run inside the shell process. It can change the
// interpreter it's given.
type Builtin interface {
	Main(it *Interpreter, stdio Stdio, args []string) int
}

type BuiltinFunc func(it *Interpreter, stdio Stdio, args []string) int

func (f BuiltinFunc) Main(it *Interpreter, stdio Stdio, args []string) int {
	return f(it, stdio, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// Cd is the cd shell builtin
func Cd(it *Interpreter, stdio Stdio, args []string) int {
	cmd := &BuiltinCommand{
		Use:   "cd [dir]",
		Short: "Change the shell working directory. With no dir, go to $HOME; '-' goes to the previous directory.",
	}

	return cmd.Run(stdio, args, func(args []string) int {
		var target string
		printDir := false
		switch len(args) {
		case 0:
			home, err := homeDir(it)
			if err != nil {
				fmt.Fprintf(stdio.Err, "cd: %v\n", err)
				return 1
			}
			target = home
		case 1:
			target = args[0]
			if target == "-" {
				target = it.Env.Getenv("OLDPWD")
				if target == "" {
					fmt.Fprintln(stdio.Err, "cd: OLDPWD not set")
					return 1
				}
				printDir = true
			}
		default:
			fmt.Fprintln(stdio.Err, "cd: too many arguments")
			return 1
		}

		path := filepath.Clean(it.resolve(target))
		info, err := it.Fs.Stat(path)
		switch {
		case err != nil:
			fmt.Fprintf(stdio.Err, "cd: %s: no such file or directory\n", target)
			return 1
		case !info.IsDir():
			fmt.Fprintf(stdio.Err, "cd: %s: not a directory\n", target)
			return 1
		}

		it.Env.Setenv("OLDPWD", it.Dir)
		it.Dir = path
		it.Env.Setenv(EnvPWD, path)
		if printDir {
			fmt.Fprintln(stdio.Out, path)
		}
		return 0
	})
}

func homeDir(it *Interpreter) (string, error) {
	if home := it.Env.Getenv(EnvHome); home != "" {
		return home, nil
	}
	return homedir.Dir()
}

// Exit quits the shell
func Exit(it *Interpreter, stdio Stdio, args []string) int {
	cmd := &BuiltinCommand{
		Use:   "exit [n]",
		Short: "Exit the shell with status n, or the status of the last command.",
	}

	return cmd.Run(stdio, args, func(args []string) int {
		status := it.lastStatus
		switch len(args) {
		case 0:
		case 1:
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(stdio.Err, "exit: %s: numeric argument required\n", args[0])
				n = StatusUsage
			}
			status = int(uint8(n))
		default:
			fmt.Fprintln(stdio.Err, "exit: too many arguments")
			return 1
		}

		it.exited = true
		it.exitStatus = status
		return status
	})
}

// Help lists the builtins, or shows help for one of them.
func Help(it *Interpreter, stdio Stdio, args []string) int {
	cmd := &BuiltinCommand{
		Use:   "help [name]",
		Short: "Display information about builtin commands.",
	}

	return cmd.Run(stdio, args, func(args []string) int {
		if len(args) > 0 {
			status := 0
			for _, name := range args {
				builtin, ok := it.Builtins[name]
				if !ok {
					fmt.Fprintf(stdio.Err, "help: no help topics match %q\n", name)
					status = 1
					continue
				}
				builtin.Main(it, stdio, []string{name, "--help"})
			}
			return status
		}

		var names []string
		for name := range it.Builtins {
			names = append(names, name)
		}
		sort.Strings(names)

		w := stdio.Out
		fmt.Fprintln(w, "These shell commands are defined internally.  Type `help' to see this list.")
		fmt.Fprintln(w, "Type `help name' to find out more about the function `name'.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Builtins:")
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.Join(names, "\n"))
		return 0
	})
}

// JobsBuiltin lists background jobs.
func JobsBuiltin(it *Interpreter, stdio Stdio, args []string) int {
	cmd := &BuiltinCommand{
		Use:   "jobs [-l]",
		Short: "Display the status of background jobs.",
	}
	long := cmd.Flags().Bool('l', "list process IDs in addition to the normal information")

	return cmd.Run(stdio, args, func(args []string) int {
		for _, job := range it.Jobs.List() {
			fmt.Fprintln(stdio.Out, job.Format(*long))
		}
		return 0
	})
}

// Wait waits for background jobs to finish. Arguments are process IDs, or job
// IDs prefixed with '%'. Run in the background or a pipeline it only sees the
// jobs started before it.
func Wait(it *Interpreter, stdio Stdio, args []string) int {
	cmd := &BuiltinCommand{
		Use:   "wait [pid | %job]...",
		Short: "Wait for background jobs and return the status of the last one.",
	}

	return cmd.Run(stdio, args, func(args []string) int {
		if len(args) == 0 {
			if jobs := it.waitableJobs(); len(jobs) > 0 {
				it.Jobs.Wait(context.Background(), jobs...)
			}
			return 0
		}

		status := 0
		for _, arg := range args {
			job, err := it.findJob(arg)
			if err != nil {
				fmt.Fprintf(stdio.Err, "wait: %v\n", err)
				status = StatusNotFound
				continue
			}
			it.Jobs.Wait(context.Background(), job)
			status = job.Status()
		}
		return status
	})
}

// findJob looks up the job named by a wait argument. A forked built-in can
// only find jobs started before it.
func (it *Interpreter) findJob(arg string) (*Job, error) {
	job, err := lookupJob(it.Jobs, arg)
	if err != nil || !it.forked {
		return job, err
	}

	for _, waitable := range it.jobsAtFork {
		if waitable == job {
			return job, nil
		}
	}
	return nil, fmt.Errorf("%s: no such job", arg)
}

func lookupJob(jobs *Jobs, arg string) (*Job, error) {
	if strings.HasPrefix(arg, "%") {
		id, err := strconv.Atoi(arg[1:])
		if err != nil {
			return nil, fmt.Errorf("%s: no such job", arg)
		}
		job, ok := jobs.Get(id)
		if !ok {
			return nil, fmt.Errorf("%s: no such job", arg)
		}
		return job, nil
	}

	pid, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("%s: not a pid or valid job spec", arg)
	}
	job, ok := jobs.ByPid(pid)
	if !ok {
		return nil, fmt.Errorf("pid %d is not a child of this shell", pid)
	}
	return job, nil
}

func init() {
	AllBuiltins["cd"] = BuiltinFunc(Cd)
	AllBuiltins["exit"] = BuiltinFunc(Exit)
	AllBuiltins["help"] = BuiltinFunc(Help)
	AllBuiltins["jobs"] = BuiltinFunc(JobsBuiltin)
	AllBuiltins["wait"] = BuiltinFunc(Wait)
}
