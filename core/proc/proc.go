// Package proc runs pipelines of operating system processes.
package proc

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/josephlewis42/plsh/core/env"
)

// Exit statuses reported for stages that did not run normally.
const (
	StatusFailure              = 1
	StatusCommandNotExecutable = 126
	StatusCommandNotFound      = 127
	StatusSignalBase           = 128
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

// Executor runs a pipeline built from the given frames, first stage first.
// When capture is set the last stage's output is collected into the result
// instead of going to standard output.
type Executor interface {
	Run(stages []*env.Frame, capture bool) (*Result, error)
}

// StageStatus describes how one stage of a pipeline ended.
type StageStatus struct {
	// Argv is the stage's argument vector.
	Argv []string
	// Code is the stage's exit status.
	Code int
	// Err is set if the stage could not be started.
	Err error
	// Signal names the signal that killed the stage, if any.
	Signal string
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// path, which has the same format as the PATH environment variable. If file
// contains a slash, it is tried directly and path is not consulted.
func LookPath(path, file string) (string, error) {
	if file == "" {
		return "", ErrNotFound
	}
	if strings.Contains(file, "/") {
		err := findExecutable(file)
		if err == nil {
			return file, nil
		}
		return "", err
	}
	var firstErr error
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		err := findExecutable(path)
		if err == nil {
			return path, nil
		}
		if firstErr == nil && !errors.Is(err, ErrNotFound) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return "", ErrNotFound
}

// launchStatus maps an error starting a stage to its exit status.
func launchStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return StatusCommandNotFound
	}
	return StatusCommandNotExecutable
}
