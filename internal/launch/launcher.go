// Package launch starts the external codecs and opens finished images in the
// desktop's default viewer.
package launch

import (
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"jp2mi/internal/errors"
	"jp2mi/internal/invocation"
	"jp2mi/internal/log"
)

// Launcher starts a codec invocation without waiting for it to finish
type Launcher interface {
	Launch(cmd invocation.CommandLine) error
}

// Result describes a finished codec process
type Result struct {
	Command  invocation.CommandLine
	Err      error
	Duration time.Duration
}

// Runner launches codec processes one at a time. A second Launch while a
// process is still running fails with a LaunchBusy error.
type Runner struct {
	// OnExit, if set, is called from the reaping goroutine
	OnExit func(Result)

	command func(name string, args ...string) *exec.Cmd
	busy    atomic.Bool
	wg      sync.WaitGroup
}

// NewRunner creates a runner backed by os/exec
func NewRunner() *Runner {
	return &Runner{command: exec.Command}
}

// Launch starts cmd and returns once the process is running. The process is
// reaped in the background.
func (r *Runner) Launch(cmd invocation.CommandLine) error {
	if !r.busy.CompareAndSwap(false, true) {
		log.LogWithFields(log.F("executable", cmd.Executable)).Warn("Launch refused, codec still running")
		return errors.ErrLaunchBusy
	}

	if _, err := os.Stat(cmd.Executable); err != nil {
		r.busy.Store(false)
		return errors.NewLaunchError("codec executable not found", cmd.Executable, errors.FileNotFound, err)
	}

	c := r.command(cmd.Executable, cmd.Args...)
	start := time.Now()
	if err := c.Start(); err != nil {
		r.busy.Store(false)
		return errors.NewLaunchError("failed to start codec", cmd.Executable, errors.LaunchFailed, err)
	}

	log.LogWithFields(
		log.F("executable", cmd.Executable),
		log.F("args", cmd.ArgString()),
		log.F("pid", c.Process.Pid),
	).Info("Codec started")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := c.Wait()
		res := Result{Command: cmd, Err: err, Duration: time.Since(start)}
		r.busy.Store(false)

		l := log.LogWithFields(log.F("executable", cmd.Executable), log.F("duration", res.Duration))
		if err != nil {
			l.WithError(err).Warn("Codec exited with error")
		} else {
			l.Info("Codec finished")
		}
		if r.OnExit != nil {
			r.OnExit(res)
		}
	}()
	return nil
}

// Busy reports whether a launched process has not been reaped yet
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Wait blocks until every launched process has exited
func (r *Runner) Wait() {
	r.wg.Wait()
}
