package interp

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Job is a command started in the background.
type Job struct {
	ID      int
	Pids    []int
	Command string

	done   chan struct{}
	status int
}

// Done is closed once every process of the job has exited.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Finished reports whether the job has exited.
func (j *Job) Finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Status gets the job's exit status. It's only meaningful once the job has
// finished.
func (j *Job) Status() int {
	if !j.Finished() {
		return 0
	}
	return j.status
}

func (j *Job) state() string {
	switch {
	case !j.Finished():
		return "Running"
	case j.status == 0:
		return "Done"
	default:
		return fmt.Sprintf("Exit %d", j.status)
	}
}

// Format describes the job the way the jobs built-in prints it. Long output
// includes the process IDs.
func (j *Job) Format(long bool) string {
	if !long {
		return fmt.Sprintf("[%d] %-8s %s", j.ID, j.state(), j.Command)
	}

	pids := make([]string, len(j.Pids))
	for i, pid := range j.Pids {
		pids[i] = strconv.Itoa(pid)
	}
	return fmt.Sprintf("[%d] %s %-8s %s", j.ID, strings.Join(pids, ","), j.state(), j.Command)
}

func (j *Job) String() string {
	return j.Format(false)
}

// Jobs is a registry of background jobs. Each job is reaped by its own
// goroutine as soon as it exits and stays registered until it's collected.
type Jobs struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]*Job
	byPid  map[int]*Job
}

// NewJobs creates an empty registry.
func NewJobs() *Jobs {
	return &Jobs{
		jobs:  make(map[int]*Job),
		byPid: make(map[int]*Job),
	}
}

// add registers a started task and begins reaping it. onDone, if set, is
// called from the reaping goroutine once the job has exited but before it's
// marked finished.
func (j *Jobs) add(command string, t task, onDone func(*Job)) *Job {
	j.mu.Lock()
	if len(j.jobs) == 0 {
		j.nextID = 0
	}
	j.nextID++
	job := &Job{
		ID:      j.nextID,
		Pids:    t.pids(),
		Command: command,
		done:    make(chan struct{}),
	}
	j.jobs[job.ID] = job
	for _, pid := range job.Pids {
		j.byPid[pid] = job
	}
	j.mu.Unlock()

	go func() {
		job.status = t.wait()
		if onDone != nil {
			onDone(job)
		}
		close(job.done)
	}()

	return job
}

// Get looks up a job by its ID.
func (j *Jobs) Get(id int) (*Job, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.jobs[id]
	return job, ok
}

// ByPid looks up the job a process belongs to.
func (j *Jobs) ByPid(pid int) (*Job, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.byPid[pid]
	return job, ok
}

// List returns every registered job ordered by ID.
func (j *Jobs) List() []*Job {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*Job, 0, len(j.jobs))
	for _, job := range j.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Collect removes finished jobs from the registry and returns them ordered by
// ID.
func (j *Jobs) Collect() []*Job {
	var finished []*Job
	for _, job := range j.List() {
		if job.Finished() {
			j.remove(job)
			finished = append(finished, job)
		}
	}
	return finished
}

func (j *Jobs) remove(job *Job) {
	j.mu.Lock()
	defer j.mu.Unlock()

	delete(j.jobs, job.ID)
	for _, pid := range job.Pids {
		if j.byPid[pid] == job {
			delete(j.byPid, pid)
		}
	}
}

// Wait blocks until the given jobs, or all registered jobs if none are given,
// have finished and then removes them from the registry.
func (j *Jobs) Wait(ctx context.Context, jobs ...*Job) error {
	if len(jobs) == 0 {
		jobs = j.List()
	}

	for _, job := range jobs {
		select {
		case <-job.Done():
			j.remove(job)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
