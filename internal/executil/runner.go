package executil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Runner spawns external programs and waits for them to finish. The child's
// output streams are forwarded to Stdout and Stderr, never captured.
type Runner struct {
	// Stdout receives the program's standard output. Defaults to os.Stdout.
	Stdout io.Writer
	// Stderr receives the program's standard error. Defaults to os.Stderr.
	Stderr io.Writer
	// Env is appended to the current process environment.
	Env    []string
	Logger *zap.Logger
}

func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	logger.Debug("invoking command",
		zap.String("program", name),
		zap.Strings("args", args),
	)
	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	logger.Debug("command finished",
		zap.String("program", name),
		zap.Int("exit_code", exitCode),
		zap.Duration("duration", duration),
	)

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("command %s interrupted: %w", name, errors.Join(ctx.Err(), err))
		}
		return fmt.Errorf("command %s failed: %w", name, err)
	}

	return nil
}

// ExitCode returns the exit status carried by err, or -1 if the process never
// produced one (spawn failure, signal, no error at all).
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Which resolves name against PATH. It returns false when the program cannot
// be found or is not executable.
func Which(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
