package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/josephlewis42/plsh/core/cursor"
	"github.com/josephlewis42/plsh/core/env"
	"github.com/josephlewis42/plsh/core/logger"
	"github.com/josephlewis42/plsh/core/proc"
)

// DefaultMaxArgs is the default limit on the number of words in a command.
const DefaultMaxArgs = 4096

// EventRecorder stores events describing what a script did.
type EventRecorder interface {
	Record(event logger.LogType) error
}

// Interpreter runs scripts against an environment stack, starting programs
// with an Executor.
type Interpreter struct {
	stack *env.Stack
	exec  proc.Executor
	cur   *cursor.Cursor
	pid   int

	// MaxArgs is the most words a single command may have; zero or less
	// means no limit.
	MaxArgs int
	// Trace, if set, receives every pipeline before it runs.
	Trace io.Writer
	// Stderr receives diagnostics about stages that couldn't be started.
	Stderr io.Writer
	// Events records pipelines, unknown commands and fatal errors.
	Events EventRecorder
	// Name prefixes diagnostics.
	Name string
}

// New creates an interpreter. The stack must hold the script's root frame.
func New(stack *env.Stack, executor proc.Executor) *Interpreter {
	return &Interpreter{
		stack:   stack,
		exec:    executor,
		pid:     os.Getpid(),
		MaxArgs: DefaultMaxArgs,
		Stderr:  io.Discard,
		Events:  logger.NewNopLogger().Sessionless(),
		Name:    "plsh",
	}
}

// Run executes the script read from r statement by statement. It returns the
// exit status of the last pipeline that ran, or 0 if none did. A non-nil error
// is always an *Error and means the script stopped early.
func (in *Interpreter) Run(r io.Reader) (int, error) {
	in.cur = cursor.New(r)

	script, args := "", []string(nil)
	if root := in.stack.Root(); root != nil && len(root.Args()) > 0 {
		script, args = root.Args()[0], root.Args()[1:]
	}
	in.record(&logger.ScriptStart{Script: script, Args: args})

	for {
		done, err := in.parseStart()
		if err != nil {
			var scriptErr *Error
			if errors.As(err, &scriptErr) {
				in.record(&logger.ScriptError{
					Line:    scriptErr.Line,
					Kind:    scriptErr.Kind.String(),
					Message: scriptErr.Msg,
				})
			}
			return in.stack.LastExitCode(), err
		}
		if done {
			break
		}
	}

	code := in.stack.LastExitCode()
	exit := &logger.ScriptExit{ExitCode: code}
	if root := in.stack.Root(); root != nil {
		exit.Variables = root.Environ()
	}
	in.record(exit)
	return code, nil
}

// pipeline assembles the rest of a pipeline whose first command has already
// been parsed, runs it and updates the last exit code. Each stage gets a frame
// on the stack for as long as the pipeline runs.
func (in *Interpreter) pipeline(line int, words []string, term rune, capture bool) (*proc.Result, error) {
	pushed := 0
	defer func() {
		for ; pushed > 0; pushed-- {
			in.stack.Pop()
		}
	}()

	for {
		if len(words) == 0 {
			if pushed == 0 {
				return nil, in.syntaxErrorf(in.cur.Line(), "missing command before '|'")
			}
			return nil, in.syntaxErrorf(in.cur.Line(), "missing command after '|'")
		}
		in.stack.Push(words)
		pushed++

		if term != '|' {
			break
		}
		in.cur.Next() // '|'

		var err error
		if words, term, err = in.parseWords(); err != nil {
			return nil, err
		}
	}

	stages := in.stack.Innermost(pushed)
	argvs := make([][]string, len(stages))
	for i, frame := range stages {
		argvs[i] = frame.Args()
	}
	in.trace(argvs)

	start := time.Now()
	res, err := in.exec.Run(stages, capture)
	if err != nil {
		if res != nil {
			res.Close()
		}
		return nil, in.errorf(KindIO, line, err, "running pipeline: %v", err)
	}
	in.stack.SetLastExitCode(res.Code)

	event := &logger.Pipeline{
		Line:           line,
		Stages:         argvs,
		ExitCode:       res.Code,
		Captured:       capture,
		DurationMicros: time.Since(start).Microseconds(),
	}
	if n := len(res.Stages); n > 0 {
		event.Signal = res.Stages[n-1].Signal
	}
	in.record(event)
	in.reportStages(line, res)
	return res, nil
}

// reportStages tells the user about stages that never started or were killed
// by a signal.
func (in *Interpreter) reportStages(line int, res *proc.Result) {
	for _, stage := range res.Stages {
		name := ""
		if len(stage.Argv) > 0 {
			name = stage.Argv[0]
		}

		if stage.Signal != "" {
			fmt.Fprintf(in.Stderr, "%s: line %d: %s: killed by %s\n", in.Name, line, name, stage.Signal)
			continue
		}
		if stage.Err == nil {
			continue
		}

		msg := stage.Err.Error()
		if errors.Is(stage.Err, proc.ErrNotFound) {
			msg = "command not found"
		} else if errors.Is(stage.Err, os.ErrPermission) {
			msg = "permission denied"
		}

		fmt.Fprintf(in.Stderr, "%s: line %d: %s: %s\n", in.Name, line, name, msg)
		in.record(&logger.CommandNotFound{
			Line:         line,
			Command:      stage.Argv,
			Status:       stage.Code,
			ErrorMessage: msg,
		})
	}
}

func (in *Interpreter) trace(argvs [][]string) {
	if in.Trace == nil {
		return
	}

	parts := make([]string, len(argvs))
	for i, argv := range argvs {
		quoted := make([]string, len(argv))
		for j, word := range argv {
			quoted[j] = quoteWord(word)
		}
		parts[i] = strings.Join(quoted, " ")
	}
	fmt.Fprintf(in.Trace, "+ %s\n", strings.Join(parts, " | "))
}

// quoteWord quotes a word if it would not read back as itself.
func quoteWord(word string) string {
	if word == "" || strings.ContainsAny(word, " \t\r\v\f\n;|\"$#\\") {
		return strconv.Quote(word)
	}
	return word
}

func (in *Interpreter) record(event logger.LogType) {
	if in.Events == nil {
		return
	}
	_ = in.Events.Record(event)
}

func (in *Interpreter) errorf(kind Kind, line int, cause error, format string, args ...interface{}) error {
	return &Error{
		Kind: kind,
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
		Err:  cause,
	}
}
