// Package env holds the interpreter's scoped variable bindings.
package env

import "errors"

// ErrEmptyStack is the panic value of Pop on a stack with no frames.
var ErrEmptyStack = errors.New("env: pop of empty stack")

// Stack is an ordered stack of frames plus the exit code of the last
// pipeline. Lookups walk from the innermost (most recently pushed) frame
// outwards. A Stack is not safe for concurrent use.
type Stack struct {
	frames   []*Frame
	lastExit int
}

// NewStack creates a stack holding a root frame for the given script name and
// trailing arguments.
func NewStack(root []string) *Stack {
	s := &Stack{}
	s.Push(root)
	return s
}

// Push adds a new innermost frame running argv.
func (s *Stack) Push(argv []string) *Frame {
	f := NewFrame(argv)
	s.frames = append(s.frames, f)
	return f
}

// Pop removes the innermost frame and releases its arguments and bindings.
// Popping an empty stack is a programming error and panics with
// ErrEmptyStack.
func (s *Stack) Pop() {
	if len(s.frames) == 0 {
		panic(ErrEmptyStack)
	}
	top := len(s.frames) - 1
	s.frames[top].release()
	s.frames[top] = nil
	s.frames = s.frames[:top]
}

// Len returns the number of frames on the stack.
func (s *Stack) Len() int {
	return len(s.frames)
}

// Root returns the outermost frame, or nil if the stack is empty.
func (s *Stack) Root() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[0]
}

// Top returns the innermost frame, or nil if the stack is empty.
func (s *Stack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Innermost returns the n innermost frames in the order they were pushed.
func (s *Stack) Innermost(n int) []*Frame {
	if n > len(s.frames) {
		n = len(s.frames)
	}
	if n <= 0 {
		return nil
	}
	return append([]*Frame(nil), s.frames[len(s.frames)-n:]...)
}

// LookupVar returns the value bound to name in the innermost frame that holds
// it.
func (s *Stack) LookupVar(name string) (string, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if val, ok := s.frames[i].LookupVar(name); ok {
			return val, true
		}
	}
	return "", false
}

// Lookup returns the value bound to name, or the empty string if it is
// unbound.
func (s *Stack) Lookup(name string) string {
	val, _ := s.LookupVar(name)
	return val
}

// Bind assigns value to name. If some frame already binds name, the innermost
// such binding is overwritten in place, even when it lives in an outer frame.
// Otherwise a new binding is created in the innermost frame.
func (s *Stack) Bind(name, value string) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i].LookupVar(name); ok {
			s.frames[i].SetVar(name, value)
			return
		}
	}
	if top := s.Top(); top != nil {
		top.SetVar(name, value)
	}
}

// LastExitCode returns the exit code of the last completed pipeline.
func (s *Stack) LastExitCode() int {
	return s.lastExit
}

// SetLastExitCode records the exit code of a completed pipeline.
func (s *Stack) SetLastExitCode(code int) {
	s.lastExit = code
}
