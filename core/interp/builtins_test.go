package interp

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCd(t *testing.T) {
	ti := newTestInterpreter(t)
	root := ti.Dir
	require.NoError(t, os.Mkdir(ti.path("sub"), 0755))
	require.NoError(t, os.WriteFile(ti.path("file"), nil, 0644))

	assert.Equal(t, 0, ti.run(t, "cd sub; echo x >made"))
	assert.Equal(t, filepath.Join(root, "sub"), ti.Dir)
	assert.Equal(t, filepath.Join(root, "sub"), ti.Env.Getenv(EnvPWD))
	assert.Equal(t, root, ti.Env.Getenv("OLDPWD"))
	assert.FileExists(t, filepath.Join(root, "sub", "made"))

	assert.Equal(t, 0, ti.run(t, "cd -"))
	assert.Equal(t, root, ti.Dir)
	assert.Equal(t, root+"\n", ti.stdout.String())

	assert.Equal(t, 0, ti.run(t, "cd "+ti.path("sub")+"/.."))
	assert.Equal(t, root, ti.Dir)

	ti.Env.Setenv(EnvHome, filepath.Join(root, "sub"))
	assert.Equal(t, 0, ti.run(t, "cd"))
	assert.Equal(t, filepath.Join(root, "sub"), ti.Dir)
	assert.Empty(t, ti.stderr.String())
}

func TestCdErrors(t *testing.T) {
	cases := map[string]struct {
		line   string
		status int
		stderr string
	}{
		"missing":   {"cd nowhere", 1, "cd: nowhere: no such file or directory\n"},
		"file":      {"cd file", 1, "cd: file: not a directory\n"},
		"too many":  {"cd a b", 1, "cd: too many arguments\n"},
		"no oldpwd": {"cd -", 1, "cd: OLDPWD not set\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ti := newTestInterpreter(t)
			ti.Env.Unsetenv("OLDPWD")
			require.NoError(t, os.WriteFile(ti.path("file"), nil, 0644))
			dir := ti.Dir

			assert.Equal(t, tc.status, ti.run(t, tc.line))
			assert.Equal(t, tc.stderr, ti.stderr.String())
			assert.Equal(t, dir, ti.Dir)
		})
	}
}

func TestCdMemFs(t *testing.T) {
	ti := newTestInterpreter(t)
	ti.Fs = afero.NewMemMapFs()
	ti.Dir = "/"
	require.NoError(t, ti.Fs.MkdirAll("/home/user", 0755))

	assert.Equal(t, 0, ti.run(t, "cd home/user; help >out"))
	assert.Equal(t, "/home/user", ti.Dir)

	out, err := afero.ReadFile(ti.Fs, "/home/user/out")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Builtins:")
}

func TestBuiltinsDontLeak(t *testing.T) {
	cases := map[string]string{
		"pipe left":  "cd sub | cat",
		"pipe right": "echo | cd sub",
		"background": "cd sub &",
		"exit pipe":  "exit 4 | cat",
		"exit bg":    "exit 4 &",
	}

	for tn, line := range cases {
		t.Run(tn, func(t *testing.T) {
			ti := newTestInterpreter(t)
			require.NoError(t, os.Mkdir(ti.path("sub"), 0755))
			dir := ti.Dir

			ti.run(t, line)
			ti.waitJobs(t)

			assert.Equal(t, dir, ti.Dir)
			exited, _ := ti.Exited()
			assert.False(t, exited)
		})
	}
}

func TestExit(t *testing.T) {
	cases := map[string]struct {
		line   string
		status int
		stderr string
		exited bool
	}{
		"explicit":    {"exit 3; echo no", 3, "", true},
		"last status": {"false; exit", 1, "", true},
		"wraps":       {"exit 258", 2, "", true},
		"not numeric": {"exit abc", 2, "exit: abc: numeric argument required\n", true},
		"too many":    {"exit 1 2; echo yes", 0, "exit: too many arguments\n", false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ti := newTestInterpreter(t)

			assert.Equal(t, tc.status, ti.run(t, tc.line))
			assert.Equal(t, tc.stderr, ti.stderr.String())

			exited, status := ti.Exited()
			assert.Equal(t, tc.exited, exited)
			if tc.exited {
				assert.Equal(t, tc.status, status)
				assert.Empty(t, ti.stdout.String())
			}
		})
	}
}

func TestHelp(t *testing.T) {
	ti := newTestInterpreter(t)

	assert.Equal(t, 0, ti.run(t, "help"))
	assert.Contains(t, ti.stdout.String(), "cd\nexit\nhelp\njobs\nwait\n")

	ti.stdout.Reset()
	assert.Equal(t, 0, ti.run(t, "help cd"))
	assert.Contains(t, ti.stdout.String(), "usage: cd [dir]")

	ti.stdout.Reset()
	assert.Equal(t, 1, ti.run(t, "help nope"))
	assert.Equal(t, "help: no help topics match \"nope\"\n", ti.stderr.String())
}

func TestBadFlags(t *testing.T) {
	ti := newTestInterpreter(t)

	assert.Equal(t, StatusUsage, ti.run(t, "jobs -z"))
	assert.Contains(t, ti.stderr.String(), "usage: jobs [-l]")
	assert.Empty(t, ti.stdout.String())
}

func TestJobsAndWait(t *testing.T) {
	ti := newTestInterpreter(t)

	assert.Equal(t, 0, ti.run(t, "sleep 5 &"))
	assert.Equal(t, 0, ti.run(t, "jobs"))
	assert.Equal(t, "[1] Running  sleep 5 &\n", ti.stdout.String())

	assert.Equal(t, 0, ti.run(t, "false &"))
	job, ok := ti.Jobs.Get(2)
	require.True(t, ok)
	assert.Equal(t, 1, ti.run(t, "wait %2"))
	assert.True(t, job.Finished())
	_, ok = ti.Jobs.Get(2)
	assert.False(t, ok)

	sleeper, ok := ti.Jobs.Get(1)
	require.True(t, ok)
	require.Len(t, sleeper.Pids, 1)
	found, ok := ti.Jobs.ByPid(sleeper.Pids[0])
	require.True(t, ok)
	assert.Equal(t, sleeper, found)

	ti.stdout.Reset()
	assert.Equal(t, 0, ti.run(t, "jobs -l"))
	assert.Regexp(t, `^\[1\] \d+ Running  sleep 5 &\n$`, ti.stdout.String())

	proc, err := os.FindProcess(sleeper.Pids[0])
	require.NoError(t, err)
	require.NoError(t, proc.Kill())
	assert.Equal(t, 137, ti.run(t, "wait "+strconv.Itoa(sleeper.Pids[0])))
	assert.Empty(t, ti.Jobs.List())
}

func TestWaitConcurrent(t *testing.T) {
	cases := map[string]struct {
		line   string
		status int
		stderr string
	}{
		"background":   {line: "wait &"},
		"own job":      {line: "wait %1 &", status: StatusNotFound, stderr: "wait: %1: no such job\n"},
		"pipeline":     {line: "wait | cat &"},
		"in pipe only": {line: "wait | cat"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ti := newTestInterpreter(t)

			assert.Equal(t, 0, ti.run(t, tc.line))
			job, ok := ti.Jobs.Get(1)
			if ok {
				ti.waitJobs(t)
				assert.Equal(t, tc.status, job.Status())
			}
			assert.Equal(t, tc.stderr, ti.stderr.String())

			// The shell's own wait isn't blocked by it.
			assert.Equal(t, 0, ti.run(t, "wait"))
		})
	}
}

func TestWaitConcurrentSeesEarlierJobs(t *testing.T) {
	ti := newTestInterpreter(t)

	require.Equal(t, 0, ti.run(t, "sleep 0.2 &"))
	require.Equal(t, 0, ti.run(t, "wait &"))
	sleeper, ok := ti.Jobs.Get(1)
	require.True(t, ok)
	waiter, ok := ti.Jobs.Get(2)
	require.True(t, ok)

	select {
	case <-waiter.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("background wait didn't finish")
	}
	assert.True(t, sleeper.Finished())
	assert.Equal(t, 0, waiter.Status())
}

func TestWaitErrors(t *testing.T) {
	cases := map[string]struct {
		line   string
		stderr string
	}{
		"unknown pid": {"wait 999999999", "wait: pid 999999999 is not a child of this shell\n"},
		"unknown job": {"wait %4", "wait: %4: no such job\n"},
		"bad job":     {"wait %x", "wait: %x: no such job\n"},
		"garbage":     {"wait abc", "wait: abc: not a pid or valid job spec\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ti := newTestInterpreter(t)

			assert.Equal(t, StatusNotFound, ti.run(t, tc.line))
			assert.Equal(t, tc.stderr, ti.stderr.String())
		})
	}
}
