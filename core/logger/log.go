package logger

// LogEntry is a single recorded event. Exactly one of the event fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionId       string `json:"session_id,omitempty"`

	ScriptStart     *ScriptStart     `json:"script_start,omitempty"`
	Pipeline        *Pipeline        `json:"pipeline,omitempty"`
	CommandNotFound *CommandNotFound `json:"command_not_found,omitempty"`
	ScriptError     *ScriptError     `json:"script_error,omitempty"`
	ScriptExit      *ScriptExit      `json:"script_exit,omitempty"`
}

// LogType is implemented by every event that can be stored in a LogEntry.
type LogType interface {
	isLogType()
}

// GetLogType returns the event held by the entry or nil if it holds none.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le == nil:
		return nil
	case le.ScriptStart != nil:
		return le.ScriptStart
	case le.Pipeline != nil:
		return le.Pipeline
	case le.CommandNotFound != nil:
		return le.CommandNotFound
	case le.ScriptError != nil:
		return le.ScriptError
	case le.ScriptExit != nil:
		return le.ScriptExit
	}
	return nil
}

func (le *LogEntry) setLogType(event LogType) {
	switch event := event.(type) {
	case *ScriptStart:
		le.ScriptStart = event
	case *Pipeline:
		le.Pipeline = event
	case *CommandNotFound:
		le.CommandNotFound = event
	case *ScriptError:
		le.ScriptError = event
	case *ScriptExit:
		le.ScriptExit = event
	}
}

// ScriptStart is recorded before the first statement of a script runs.
type ScriptStart struct {
	Script string   `json:"script"`
	Args   []string `json:"args,omitempty"`
}

// Pipeline is recorded after every pipeline finishes.
type Pipeline struct {
	Line           int        `json:"line"`
	Stages         [][]string `json:"stages"`
	ExitCode       int        `json:"exit_code"`
	Captured       bool       `json:"captured,omitempty"`
	DurationMicros int64      `json:"duration_micros"`
	// Signal names the signal that killed the last stage, if any.
	Signal string `json:"signal,omitempty"`
}

// CommandNotFound is recorded for each pipeline stage that couldn't start.
type CommandNotFound struct {
	Line         int      `json:"line"`
	Command      []string `json:"command"`
	Status       int      `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// ScriptError is recorded when a script stops because of a fatal error.
type ScriptError struct {
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ScriptExit is recorded when a script finishes.
type ScriptExit struct {
	ExitCode int `json:"exit_code"`
	// Variables holds the script's top level bindings as "key=value".
	Variables []string `json:"variables,omitempty"`
}

func (*ScriptStart) isLogType()     {}
func (*Pipeline) isLogType()        {}
func (*CommandNotFound) isLogType() {}
func (*ScriptError) isLogType()     {}
func (*ScriptExit) isLogType()      {}
