package logger

// LogEntry is a single line of the event log. Exactly one of the event
// pointers is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	InvalidInput   *InvalidInput   `json:"invalid_input,omitempty"`
	Subshell       *Subshell       `json:"subshell,omitempty"`
	JobDone        *JobDone        `json:"job_done,omitempty"`
	RedirectFailed *RedirectFailed `json:"redirect_failed,omitempty"`
}

// LogType is implemented by every event that can be stored in a LogEntry.
type LogType interface {
	setOn(le *LogEntry)
}

// GetLogType returns the event held by the entry, or nil if there isn't one.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.RunCommand != nil:
		return le.RunCommand
	case le.UnknownCommand != nil:
		return le.UnknownCommand
	case le.InvalidInput != nil:
		return le.InvalidInput
	case le.Subshell != nil:
		return le.Subshell
	case le.JobDone != nil:
		return le.JobDone
	case le.RedirectFailed != nil:
		return le.RedirectFailed
	default:
		return nil
	}
}

// RunCommand is logged when a built-in runs or a program is started.
type RunCommand struct {
	Command             []string `json:"command"`
	ResolvedCommandPath string   `json:"resolved_command_path,omitempty"`
	Builtin             bool     `json:"builtin,omitempty"`
	Pid                 int      `json:"pid,omitempty"`
}

// UnknownCommand is logged when a command can't be found or started.
type UnknownCommand struct {
	Command      []string `json:"command"`
	Status       int      `json:"status"`
	ErrorMessage string   `json:"error_message"`
}

// InvalidInput is logged when a line fails to scan, parse or translate.
type InvalidInput struct {
	Input string `json:"input"`
	// Stage is the processing stage that rejected the line.
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// Subshell is logged when a child shell is started for a parenthesized group.
type Subshell struct {
	Command   string `json:"command"`
	ShellPath string `json:"shell_path"`
	Pid       int    `json:"pid,omitempty"`
}

// JobDone is logged when a background job finishes.
type JobDone struct {
	JobID   int    `json:"job_id"`
	Pids    []int  `json:"pids,omitempty"`
	Command string `json:"command"`
	Status  int    `json:"status"`
}

// RedirectFailed is logged when a redirection target can't be opened. The
// command it belonged to doesn't run.
type RedirectFailed struct {
	Command      []string `json:"command"`
	Path         string   `json:"path"`
	Status       int      `json:"status"`
	ErrorMessage string   `json:"error_message"`
}

func (e *RunCommand) setOn(le *LogEntry)     { le.RunCommand = e }
func (e *UnknownCommand) setOn(le *LogEntry) { le.UnknownCommand = e }
func (e *InvalidInput) setOn(le *LogEntry)   { le.InvalidInput = e }
func (e *Subshell) setOn(le *LogEntry)       { le.Subshell = e }
func (e *JobDone) setOn(le *LogEntry)        { le.JobDone = e }
func (e *RedirectFailed) setOn(le *LogEntry) { le.RedirectFailed = e }
