package shell

import "fmt"

// Kind classifies fatal script errors.
type Kind int

const (
	// KindSyntax is a script that can't be parsed.
	KindSyntax Kind = iota + 1
	// KindLimit is a command with more words than the interpreter allows.
	KindLimit
	// KindIO is a failure to read the script or to set up a pipeline.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "Invalid Syntax"
	case KindLimit:
		return "Too Many Arguments"
	case KindIO:
		return "I/O Error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a fatal error that stops a script.
type Error struct {
	Kind Kind
	Line int
	Msg  string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [line %d]: %s", e.Kind, e.Line, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}
