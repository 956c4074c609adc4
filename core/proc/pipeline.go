package proc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/josephlewis42/plsh/core/env"
	"golang.org/x/sync/errgroup"
)

// Pipeline runs each stage as an operating system process, connecting the
// output of each stage to the input of the next with a pipe.
type Pipeline struct {
	// Stdin feeds the first stage; nil means the null device.
	Stdin io.Reader
	// Stdout receives the last stage's output unless it is captured.
	Stdout io.Writer
	// Stderr is shared by every stage.
	Stderr io.Writer

	// Path overrides the PATH used to find programs. If empty, the
	// interpreter's own PATH is searched.
	Path string
	// Env is the environment of every stage. If nil, stages inherit the
	// interpreter's environment.
	Env []string
}

var _ Executor = (*Pipeline)(nil)

// Run starts every stage, waits for all of them to terminate and returns the
// exit status of the last one. Stages that cannot be started get
// StatusCommandNotFound or StatusCommandNotExecutable and do not stop the
// rest of the pipeline. The returned error is only set if the pipeline itself
// could not be built, e.g. because no pipe could be created.
func (p *Pipeline) Run(stages []*env.Frame, capture bool) (*Result, error) {
	n := len(stages)
	if n == 0 {
		return NewResult(""), nil
	}

	var group errgroup.Group
	guard := acquireReapGuard(n)
	defer guard.release()

	statuses := make([]StageStatus, n)
	for i, frame := range stages {
		statuses[i].Argv = frame.Args()
	}

	var (
		runErr   error
		prev     *os.File // read end feeding the next stage
		launched int
	)

	// Stages share one stderr. A writer that isn't a file gets a single pipe
	// so only one goroutine ever writes to it.
	stderr := p.Stderr
	var errWrite *os.File
	if _, isFile := p.Stderr.(*os.File); p.Stderr != nil && !isFile {
		errRead, w, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("pipe: %w", err)
		}
		errWrite, stderr = w, w
		group.Go(func() error {
			defer errRead.Close()
			_, err := io.Copy(p.Stderr, errRead)
			return err
		})
	}

	for i := range stages {
		last := i == n-1

		var stdin io.Reader = p.Stdin
		if prev != nil {
			stdin = prev
		}
		var stdout io.Writer = p.Stdout
		var next, w *os.File
		if !last || capture {
			var err error
			if next, w, err = os.Pipe(); err != nil {
				runErr = fmt.Errorf("pipe: %w", err)
				for j := i; j < n; j++ {
					statuses[j].Code = StatusFailure
					statuses[j].Err = runErr
				}
				break
			}
			stdout = w
		}

		cmd, err := p.start(statuses[i].Argv, stdin, stdout, stderr)
		if err != nil {
			statuses[i].Code = launchStatus(err)
			statuses[i].Err = err
		} else {
			guard.watch(&group, i, cmd)
			launched++
		}

		// The child holds its own copies; closing ours lets readers see EOF
		// once the writer exits.
		if w != nil {
			w.Close()
		}
		if prev != nil {
			prev.Close()
		}
		prev = next
	}

	if errWrite != nil {
		errWrite.Close()
	}

	var captured bytes.Buffer
	if prev != nil {
		out := prev
		if capture && runErr == nil {
			group.Go(func() error {
				defer out.Close()
				_, err := io.Copy(&captured, out)
				return err
			})
		} else {
			out.Close()
		}
	}

	guard.release()
	for reaped := 0; reaped < launched; reaped++ {
		t := <-guard.notes
		statuses[t.index].Code, statuses[t.index].Signal = exitStatus(t.state)
	}

	if err := group.Wait(); err != nil && runErr == nil {
		runErr = fmt.Errorf("copying output: %w", err)
	}

	code := statuses[n-1].Code
	if capture {
		return newCapturedResult(code, statuses, captured.Bytes()), runErr
	}
	return &Result{Code: code, Stages: statuses}, runErr
}

func (p *Pipeline) start(argv []string, stdin io.Reader, stdout, stderr io.Writer) (*exec.Cmd, error) {
	if len(argv) == 0 {
		return nil, ErrNotFound
	}
	path := p.Path
	if path == "" {
		path = os.Getenv("PATH")
	}
	prog, err := LookPath(path, argv[0])
	if err != nil {
		return nil, err
	}

	cmd := &exec.Cmd{
		Path:   prog,
		Args:   argv,
		Env:    p.Env,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

type termination struct {
	index int
	state *os.ProcessState
}

// reapGuard holds back the reaping of launched stages until every stage of
// the pipeline has been started. Releasing it more than once is harmless, so
// callers defer release to cover early returns.
type reapGuard struct {
	gate  chan struct{}
	notes chan termination
	once  sync.Once
}

func acquireReapGuard(n int) *reapGuard {
	return &reapGuard{
		gate:  make(chan struct{}),
		notes: make(chan termination, n),
	}
}

func (g *reapGuard) watch(group *errgroup.Group, index int, cmd *exec.Cmd) {
	group.Go(func() error {
		<-g.gate
		// Wait only returns once the process has exited; stopped processes
		// keep it blocked.
		_ = cmd.Wait()
		g.notes <- termination{index: index, state: cmd.ProcessState}
		return nil
	})
}

func (g *reapGuard) release() {
	g.once.Do(func() {
		close(g.gate)
	})
}

// exitStatus converts a process state to a shell exit status.
func exitStatus(state *os.ProcessState) (int, string) {
	if state == nil {
		return StatusFailure, ""
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return StatusSignalBase + int(ws.Signal()), signalName(ws.Signal())
	}
	if code := state.ExitCode(); code >= 0 {
		return code, ""
	}
	return StatusFailure, ""
}
