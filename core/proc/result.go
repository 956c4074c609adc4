package proc

import (
	"bytes"
	"io"
	"strings"
)

// Result is the outcome of evaluating an expression or running a pipeline.
type Result struct {
	// Output holds text produced without running a process, e.g. the value of
	// a quoted string.
	Output string
	// Code is the exit status; for pipelines it is the last stage's status.
	Code int
	// Stages describes each stage of a pipeline in order.
	Stages []StageStatus

	handle io.Reader
	owned  bool
	closed bool
}

// NewResult creates a successful result holding text output.
func NewResult(output string) *Result {
	return &Result{Output: output}
}

func newCapturedResult(code int, stages []StageStatus, captured []byte) *Result {
	return &Result{
		Code:   code,
		Stages: stages,
		handle: bytes.NewReader(captured),
		owned:  true,
	}
}

// Owned reports whether the result holds the last stage's output. If not, that
// output went straight to standard output.
func (r *Result) Owned() bool {
	return r.owned
}

// Reader returns the last stage's captured output. It reads nothing if the
// result does not own its output or has been closed.
func (r *Result) Reader() io.Reader {
	if !r.owned || r.closed {
		return strings.NewReader("")
	}
	return r.handle
}

// Text returns the value of the result: the captured output for pipelines
// run with capture, otherwise Output.
func (r *Result) Text() (string, error) {
	if !r.owned {
		return r.Output, nil
	}
	b, err := io.ReadAll(r.Reader())
	return string(b), err
}

// Close releases the output handle. It is safe to call more than once.
func (r *Result) Close() error {
	r.closed = true
	r.handle = nil
	return nil
}
