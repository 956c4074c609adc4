package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
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
		UnknownCommands: NewPathCounter("command", "status", "error"),
		ScriptErrors:    NewPathCounter("kind", "message"),
	}
}

// FailureReport pulls events where a script didn't do what its author meant.
type FailureReport struct {
	LogEntries int `json:"log_entries"`

	UnknownCommands *PathCounter `json:"unknown_commands"`
	ScriptErrors    *PathCounter `json:"script_errors"`
}

func (r *FailureReport) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.GetLogType().(type) {
	case *CommandNotFound:
		r.UnknownCommands.Increment(firstWord(event.Command), strconv.Itoa(event.Status), event.ErrorMessage)
	case *ScriptError:
		r.ScriptErrors.Increment(event.Kind, event.Message)
	}
}

// SessionReport groups events by the run of the script that produced them.
type SessionReport struct {
	// Map of sessionID -> session
	sessions map[string]*ScriptSession
}

type ScriptSession struct {
	Script     string   `json:"script"`
	Args       []string `json:"args,omitempty"`
	LogEntries int      `json:"log_entries"`
	Pipelines  []string `json:"pipelines"`
	Errors     []string `json:"errors,omitempty"`
	ExitCode   *int     `json:"exit_code,omitempty"`
	Variables  []string `json:"variables,omitempty"`
}

func (s *ScriptSession) Update(le *LogEntry) {
	s.LogEntries++

	switch event := le.GetLogType().(type) {
	case *ScriptStart:
		s.Script = event.Script
		s.Args = event.Args
	case *Pipeline:
		s.Pipelines = append(s.Pipelines, formatStages(event.Stages))
	case *ScriptError:
		s.Errors = append(s.Errors, fmt.Sprintf("line %d: %s", event.Line, event.Message))
	case *ScriptExit:
		code := event.ExitCode
		s.ExitCode = &code
		s.Variables = event.Variables
	}
}

func (s *SessionReport) init() {
	if s.sessions == nil {
		s.sessions = make(map[string]*ScriptSession)
	}
}

// MarshalJSON implements custom JSON marshaler.
func (s *SessionReport) MarshalJSON() ([]byte, error) {
	s.init()

	return json.Marshal(s.sessions)
}

func (s *SessionReport) Update(le *LogEntry) {
	s.init()

	sessionID := le.SessionId
	if sessionID == "" {
		return
	}
	session, ok := s.sessions[sessionID]
	if !ok {
		session = &ScriptSession{}
		s.sessions[sessionID] = session
	}

	session.Update(le)
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Script          ScriptReport          `json:"script_report"`
	Pipeline        PipelineReport        `json:"pipeline_report"`
	CommandNotFound CommandNotFoundReport `json:"command_not_found_report"`
	ScriptError     ScriptErrorReport     `json:"script_error_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.GetLogType().(type) {
	case *ScriptStart:
		r.Script.updateStart(event)
	case *ScriptExit:
		r.Script.updateExit(event)
	case *Pipeline:
		r.Pipeline.update(event)
	case *CommandNotFound:
		r.CommandNotFound.update(event)
	case *ScriptError:
		r.ScriptError.update(event)
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%T", event))
	}
}

type ScriptReport struct {
	// Scripts that were started and their counts.
	Names StrCounter `json:"names"`
	// Exit codes of finished scripts and their counts.
	ExitCodes StrCounter `json:"exit_codes"`
}

func (r *ScriptReport) updateStart(s *ScriptStart) {
	r.Names.Increment(s.Script)
}

func (r *ScriptReport) updateExit(s *ScriptExit) {
	r.ExitCodes.Increment(strconv.Itoa(s.ExitCode))
}

type PipelineReport struct {
	Count int `json:"count"`
	// Number of pipelines whose output was assigned to a variable.
	Captured int `json:"captured"`
	// Name of each stage's program
	CommandNames StrCounter `json:"command_names"`
	// Number of stages in each pipeline
	Lengths   StrCounter `json:"lengths"`
	ExitCodes StrCounter `json:"exit_codes"`
	// Signals that killed the last stage and their counts.
	Signals StrCounter `json:"signals"`
}

func (r *PipelineReport) update(p *Pipeline) {
	r.Count++
	if p.Captured {
		r.Captured++
	}
	for _, stage := range p.Stages {
		r.CommandNames.Increment(firstWord(stage))
	}
	r.Lengths.Increment(strconv.Itoa(len(p.Stages)))
	r.ExitCodes.Increment(strconv.Itoa(p.ExitCode))
	if p.Signal != "" {
		r.Signals.Increment(p.Signal)
	}
}

type CommandNotFoundReport struct {
	CommandNames    StrCounter `json:"command_names"`
	CommandStatuses StrCounter `json:"command_statuses"`
}

func (r *CommandNotFoundReport) update(logEntry *CommandNotFound) {
	if len(logEntry.Command) > 0 {
		r.CommandNames.Increment(logEntry.Command[0])
	}

	r.CommandStatuses.Increment(strconv.Itoa(logEntry.Status))
}

type ScriptErrorReport struct {
	Kinds StrCounter `json:"kinds"`
}

func (r *ScriptErrorReport) update(logEntry *ScriptError) {
	r.Kinds.Increment(logEntry.Kind)
}

func firstWord(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	return argv[0]
}

func formatStages(stages [][]string) string {
	parts := make([]string, len(stages))
	for i, argv := range stages {
		parts[i] = strings.Join(argv, " ")
	}
	return strings.Join(parts, " | ")
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

// Count returns the number of times the key was seen.
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

// PathCounter counts the number of distinct tuples seen.
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
