package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Result is the raw outcome of running a probe command: its command
// line, exit status, captured output and timing. The executor never
// interprets this — that is the parser package's job.
type Result struct {
	Command   string
	Args      []string
	ExitCode  int
	Stdout    string
	Stderr    string
	TimingMs  int64
	Truncated bool
}

const (
	defaultMaxOutputBytes    = 10 * 1024 * 1024
	gracefulShutdownTimeout  = 3 * time.Second
)

// Executor runs a whitelisted command with a deadline, in its own
// process group so a timeout can be delivered to the whole tree.
type Executor struct {
	sandbox        *Sandbox
	log            *zap.SugaredLogger
	maxOutputBytes int64
}

// NewExecutor builds an Executor around the given Sandbox.
func NewExecutor(sandbox *Sandbox, log *zap.SugaredLogger) *Executor {
	return &Executor{sandbox: sandbox, log: log, maxOutputBytes: defaultMaxOutputBytes}
}

// Run executes tool with args, killing it if deadline elapses. A
// non-zero exit code is not itself an error — callers decide whether it
// is expected (e.g. `systemctl is-active` on an inactive unit).
func (e *Executor) Run(ctx context.Context, tool string, args []string, deadline time.Duration) (*Result, error) {
	start := time.Now()

	binPath, err := e.sandbox.Resolve(tool)
	if err != nil {
		return nil, err
	}
	if err := e.sandbox.Verify(binPath); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cmd := exec.Command(binPath, args...)
	cmd.Env = e.sandbox.SanitizeEnv()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	lw := &limitedWriter{buf: &stdout, limit: e.maxOutputBytes}
	cmd.Stdout = lw
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("probe: start %s: %w", tool, err)
	}

	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		done <- cmd.Wait()
		close(exited)
	}()

	go func() {
		select {
		case <-ctx.Done():
			pgid := cmd.Process.Pid
			if err := syscall.Kill(-pgid, syscall.SIGINT); err != nil {
				_ = cmd.Process.Signal(syscall.SIGINT)
			}
			select {
			case <-exited:
			case <-time.After(gracefulShutdownTimeout):
				_ = syscall.Kill(-pgid, syscall.SIGKILL)
			}
		case <-exited:
		}
	}()

	waitErr := <-done

	result := &Result{
		Command:   tool,
		Args:      args,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		TimingMs:  time.Since(start).Milliseconds(),
		Truncated: lw.truncated,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() != nil {
		if e.log != nil {
			e.log.Warnw("probe deadline exceeded", "tool", tool, "deadline", deadline)
		}
		return result, nil
	}

	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); ok {
			return result, nil
		}
		return nil, fmt.Errorf("probe: execute %s: %w", tool, waitErr)
	}

	return result, nil
}

// Available reports whether tool can be resolved in the sandbox's
// allowed paths.
func (e *Executor) Available(tool string) bool {
	_, err := e.sandbox.Resolve(tool)
	return err == nil
}

// limitedWriter caps captured stdout at a byte limit while still
// reporting success to exec.Cmd so the child never sees a broken pipe.
type limitedWriter struct {
	buf       *bytes.Buffer
	limit     int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.written >= lw.limit {
		lw.truncated = true
		return len(p), nil
	}
	remaining := lw.limit - lw.written
	if int64(len(p)) > remaining {
		n, err := lw.buf.Write(p[:remaining])
		lw.written += int64(n)
		lw.truncated = true
		return len(p), err
	}
	n, err := lw.buf.Write(p)
	lw.written += int64(n)
	return n, err
}
