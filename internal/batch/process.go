package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
)

const stderrTailBytes = 4096

// runTool launches the tool and blocks until it exits.
// Cancelling ctx sends SIGTERM, then SIGKILL after cfg.KillGrace.
func runTool(ctx context.Context, cfg Config, spec CommandSpec, sessionID string, log zerolog.Logger) (int, error) {
	cmd := exec.CommandContext(ctx, spec.Executable, spec.Args()...)
	cmd.Env = mergeEnv(os.Environ(), cfg.Env)
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = cfg.KillGrace

	tail := &tailBuffer{max: stderrTailBytes}
	cmd.Stdout = &lineLogger{log: log, stream: "stdout"}
	cmd.Stderr = io.MultiWriter(tail, &lineLogger{log: log, stream: "stderr"})

	if err := cmd.Start(); err != nil {
		return -1, &ProcessExecutionError{Session: sessionID, ExitCode: -1, Err: fmt.Errorf("start tool: %w", err)}
	}
	log.Debug().Int("pid", cmd.Process.Pid).Msg("tool started")

	err := cmd.Wait()
	if ctx.Err() != nil {
		return exitCodeFromError(err), fmt.Errorf("session %s: %w", sessionID, ctx.Err())
	}
	// A child of the tool may keep stdout/stderr open after a clean exit.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		log.Warn().Err(err).Msg("tool exited 0 but its output streams stayed open")
		return 0, nil
	}
	if err != nil {
		code := exitCodeFromError(err)
		return code, &ProcessExecutionError{Session: sessionID, ExitCode: code, StderrTail: tail.String(), Err: err}
	}
	return 0, nil
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return 124
	}
	return -1
}

func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	merged := make([]string, 0, len(base)+len(overrides))
	for _, entry := range base {
		key := entry
		if idx := strings.IndexByte(entry, '='); idx >= 0 {
			key = entry[:idx]
		}
		if _, ok := overrides[key]; ok {
			continue
		}
		merged = append(merged, entry)
	}
	for key, value := range overrides {
		merged = append(merged, fmt.Sprintf("%s=%s", key, value))
	}
	return merged
}
