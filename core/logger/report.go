package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

func NewFailureReport() *FailureReport {
	return &FailureReport{
		InvalidInputs:   NewPathCounter("stage", "error"),
		UnknownCommands: NewPathCounter("command", "status", "error"),
		FailedJobs:      NewPathCounter("command", "status"),
		Redirects:       NewPathCounter("path", "error"),
	}
}

// FailureReport pulls events where the user's commands didn't work.
type FailureReport struct {
	LogEntries int `json:"log_entries"`

	InvalidInputs   *PathCounter `json:"invalid_inputs"`
	UnknownCommands *PathCounter `json:"unknown_commands"`
	FailedJobs      *PathCounter `json:"failed_jobs"`
	Redirects       *PathCounter `json:"failed_redirects"`
}

func (r *FailureReport) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.GetLogType().(type) {
	case *InvalidInput:
		r.InvalidInputs.Increment(event.Stage, event.Error)
	case *UnknownCommand:
		name := ""
		if len(event.Command) > 0 {
			name = event.Command[0]
		}
		r.UnknownCommands.Increment(name, fmt.Sprintf("%d", event.Status), event.ErrorMessage)
	case *JobDone:
		if event.Status != 0 {
			r.FailedJobs.Increment(event.Command, fmt.Sprintf("%d", event.Status))
		}
	case *RedirectFailed:
		r.Redirects.Increment(event.Path, event.ErrorMessage)
	}
}

// SessionReport groups commands by the shell session that ran them.
type SessionReport struct {
	// Map of sessionID -> session
	sessions map[string]*Session
}

type Session struct {
	LogEntries int      `json:"log_entries"`
	Commands   []string `json:"commands"`
	Subshells  []string `json:"subshells,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

func (s *Session) Update(le *LogEntry) {
	s.LogEntries++

	switch event := le.GetLogType().(type) {
	case *RunCommand:
		s.Commands = append(s.Commands, strings.Join(event.Command, " "))
	case *UnknownCommand:
		s.Commands = append(s.Commands, strings.Join(event.Command, " "))
		s.Errors = append(s.Errors, event.ErrorMessage)
	case *Subshell:
		s.Subshells = append(s.Subshells, event.Command)
	case *InvalidInput:
		s.Errors = append(s.Errors, event.Error)
	case *RedirectFailed:
		s.Errors = append(s.Errors, event.ErrorMessage)
	}
}

func (i *SessionReport) init() {
	if i.sessions == nil {
		i.sessions = make(map[string]*Session)
	}
}

// MarshalJSON implements custom JSON marshaler.
func (i *SessionReport) MarshalJSON() ([]byte, error) {
	i.init()

	return json.Marshal(i.sessions)
}

func (i *SessionReport) Update(le *LogEntry) {
	i.init()

	sessionID := le.SessionID
	if sessionID == "" {
		return
	}
	report, ok := i.sessions[sessionID]
	if !ok {
		report = &Session{}
		i.sessions[sessionID] = report
	}

	report.Update(le)
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	RunCommand     RunCommandReport     `json:"run_command_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	InvalidInput   InvalidInputReport   `json:"invalid_input_report"`
	Subshell       SubshellReport       `json:"subshell_report"`
	JobDone        JobDoneReport        `json:"job_done_report"`
	RedirectFailed RedirectFailedReport `json:"redirect_failed_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.GetLogType().(type) {
	case *RunCommand:
		r.RunCommand.update(event)
	case *UnknownCommand:
		r.UnknownCommand.update(event)
	case *InvalidInput:
		r.InvalidInput.update(event)
	case *Subshell:
		r.Subshell.update(event)
	case *JobDone:
		r.JobDone.update(event)
	case *RedirectFailed:
		r.RedirectFailed.update(event)
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%T", event))
	}
}

type RunCommandReport struct {
	// Name of the resolved command
	ResolvedCommandPaths StrCounter `json:"resolved_command_names"`
	// Name of the command
	CommandNames StrCounter `json:"command_names"`
	Builtins     StrCounter `json:"builtins"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if len(rc.Command) == 0 {
		return
	}
	if rc.Builtin {
		r.Builtins.Increment(rc.Command[0])
		return
	}
	r.ResolvedCommandPaths.Increment(rc.ResolvedCommandPath)
	r.CommandNames.Increment(rc.Command[0])
}

type UnknownCommandReport struct {
	CommandNames    StrCounter `json:"command_names"`
	CommandStatuses StrCounter `json:"command_statuses"`
}

func (r *UnknownCommandReport) update(logEntry *UnknownCommand) {
	if len(logEntry.Command) > 0 {
		r.CommandNames.Increment(logEntry.Command[0])
	}

	r.CommandStatuses.Increment(fmt.Sprintf("%d", logEntry.Status))
}

type InvalidInputReport struct {
	Stages StrCounter `json:"stages"`
}

func (r *InvalidInputReport) update(logEntry *InvalidInput) {
	r.Stages.Increment(logEntry.Stage)
}

type SubshellReport struct {
	Count int `json:"count"`
}

func (r *SubshellReport) update(*Subshell) {
	r.Count++
}

type JobDoneReport struct {
	Count    int        `json:"count"`
	Statuses StrCounter `json:"statuses"`
}

func (r *JobDoneReport) update(j *JobDone) {
	r.Count++
	r.Statuses.Increment(fmt.Sprintf("%d", j.Status))
}

type RedirectFailedReport struct {
	Paths StrCounter `json:"paths"`
}

func (r *RedirectFailedReport) update(rf *RedirectFailed) {
	r.Paths.Increment(rf.Path)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count gets the number of times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implements custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of times each combination of column values
// was seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Count gets the number of times the combination of values was seen.
func (ctr *PathCounter) Count(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implements custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
