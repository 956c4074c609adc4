package proc

import "github.com/josephlewis42/plsh/core/env"

// DryRun is an Executor that starts nothing. Every stage succeeds with no
// output, which lets a script be parsed end to end without side effects.
type DryRun struct {
	// Ran holds the argument vectors of every stage it was asked to run.
	Ran [][]string
}

var _ Executor = (*DryRun)(nil)

// Run implements Executor.Run.
func (d *DryRun) Run(stages []*env.Frame, capture bool) (*Result, error) {
	statuses := make([]StageStatus, len(stages))
	for i, frame := range stages {
		statuses[i].Argv = frame.Args()
		d.Ran = append(d.Ran, frame.Args())
	}
	if capture {
		return newCapturedResult(0, statuses, nil), nil
	}
	return &Result{Stages: statuses}, nil
}
