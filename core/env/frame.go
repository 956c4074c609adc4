package env

import (
	"fmt"
	"sort"
)

// Frame is one scope: an argument vector and the variables bound in it.
type Frame struct {
	argv []string
	vars map[string]string
}

// NewFrame creates a frame with a copy of argv and no bindings.
func NewFrame(argv []string) *Frame {
	return &Frame{argv: append([]string(nil), argv...)}
}

// Args returns the frame's argument vector. The first element, if any, is the
// program name.
func (f *Frame) Args() []string {
	return f.argv
}

// LookupVar returns the value bound to name in this frame.
func (f *Frame) LookupVar(name string) (string, bool) {
	val, ok := f.vars[name]
	return val, ok
}

// SetVar binds name to value in this frame, replacing any earlier value.
func (f *Frame) SetVar(name, value string) {
	if f.vars == nil {
		f.vars = make(map[string]string)
	}
	f.vars[name] = value
}

// Environ returns the frame's bindings in the form "key=value", sorted by key.
func (f *Frame) Environ() []string {
	var env []string
	for k, v := range f.vars {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)
	return env
}

func (f *Frame) release() {
	f.argv = nil
	f.vars = nil
}
