package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/josephlewis42/plsh/core/config"
	"github.com/josephlewis42/plsh/core/env"
	"github.com/josephlewis42/plsh/core/logger"
	"github.com/josephlewis42/plsh/core/proc"
	"github.com/josephlewis42/plsh/core/shell"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const (
	// StatusScriptError is the exit status for scripts that can't be parsed.
	StatusScriptError = 1
	// StatusIOError is the exit status for scripts that can't be read.
	StatusIOError = 2
)

// stdinName is the script name that reads the script from standard input.
const stdinName = "-"

// scriptRunner opens and runs scripts.
type scriptRunner struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	config *config.Configuration
	// executor overrides the executor built from the configuration.
	executor proc.Executor
}

func newScriptRunner(cmd *cobra.Command, configuration *config.Configuration) *scriptRunner {
	return &scriptRunner{
		fs:     afero.NewOsFs(),
		stdin:  cmd.InOrStdin(),
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		config: configuration,
	}
}

// run executes a script, returning the status of its last pipeline.
func (r *scriptRunner) run(name string, args []string) (int, error) {
	script, err := openScript(r.fs, name, r.stdin)
	if err != nil {
		return StatusScriptError, err
	}
	defer script.Close()

	executor := r.executor
	if executor == nil {
		pipelineStdin := r.stdin
		if name == stdinName {
			// The script itself is on stdin.
			pipelineStdin = nil
		}
		executor = &proc.Pipeline{
			Stdin:  pipelineStdin,
			Stdout: r.stdout,
			Stderr: r.stderr,
			Path:   r.config.Path,
		}
	}

	in := shell.New(env.NewStack(append([]string{name}, args...)), executor)
	in.MaxArgs = r.config.MaxArgs
	in.Stderr = r.stderr
	if r.config.Trace {
		in.Trace = &colorWriter{w: r.stderr, c: color.New(color.FgCyan)}
	}

	if r.config.HasEventLog() {
		fd, err := r.config.OpenEventLog()
		if err != nil {
			return StatusIOError, fmt.Errorf("opening event log: %w", err)
		}
		defer fd.Close()
		in.Events = logger.NewJsonLinesLogRecorder(fd).NewSession()
	}

	return in.Run(script)
}

// openScript opens the named script, transparently decompressing gzipped
// scripts.
func openScript(fs afero.Fs, name string, stdin io.Reader) (io.ReadCloser, error) {
	var rc io.ReadCloser
	if name == stdinName {
		rc = io.NopCloser(stdin)
	} else {
		fd, err := fs.Open(name)
		if err != nil {
			return nil, err
		}
		rc = fd
	}

	if filepath.Ext(name) != ".gz" {
		return rc, nil
	}

	zr, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &gzipScript{Reader: zr, underlying: rc}, nil
}

type gzipScript struct {
	*gzip.Reader
	underlying io.Closer
}

func (g *gzipScript) Close() error {
	err := g.Reader.Close()
	if cerr := g.underlying.Close(); err == nil {
		err = cerr
	}
	return err
}

// exitStatusFor maps a fatal error to the status plsh exits with.
func exitStatusFor(err error) int {
	var scriptErr *shell.Error
	if errors.As(err, &scriptErr) && scriptErr.Kind == shell.KindIO {
		return StatusIOError
	}
	return StatusScriptError
}

// colorWriter colors everything written through it.
type colorWriter struct {
	w io.Writer
	c *color.Color
}

func (cw *colorWriter) Write(p []byte) (int, error) {
	if _, err := cw.c.Fprint(cw.w, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
