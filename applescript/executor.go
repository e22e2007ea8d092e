package applescript

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"go.jetify.com/typeid"

	"github.com/openmac/achrome/retry"
)

const (
	// OsascriptExecutable is the default scripting interpreter binary.
	OsascriptExecutable = "/usr/bin/osascript"

	osascriptExecuteFlag = "-e"

	// osascript -s s prints results as recompilable AppleScript source,
	// which is the literal form Loads parses.
	osascriptOutputFlag  = "-s"
	osascriptOutputStyle = "s"
)

// NewRunID returns a new typed id identifying one interpreter invocation.
func NewRunID() string {
	id, err := typeid.WithPrefix("osa")
	if err != nil {
		panic(err)
	}
	return id.String()
}

// Executor runs AppleScript source through the osascript interpreter and
// returns its stdout with the trailing newline stripped. The zero value is
// not usable; construct with NewExecutor.
type Executor struct {
	executable string
	logger     *slog.Logger
	maxRetries int
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutable overrides the interpreter binary path.
func WithExecutable(path string) ExecutorOption {
	return func(e *Executor) { e.executable = path }
}

// WithLogger sets the logger used for per-run debug records.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// WithMaxRetries enables retrying of recoverable interpreter failures, such
// as Apple event timeouts while Chrome is still launching.
func WithMaxRetries(n int) ExecutorOption {
	return func(e *Executor) { e.maxRetries = n }
}

// NewExecutor returns an Executor configured with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		executable: OsascriptExecutable,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one script. An all-whitespace script is rejected before the
// interpreter is spawned. Non-zero interpreter exits are reported with the
// exit code and trimmed stderr.
func (e *Executor) Execute(ctx context.Context, script string) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", fmt.Errorf("AppleScript cannot be empty")
	}

	logger := e.logger.With("run_id", NewRunID())

	var output string
	run := func() error {
		started := time.Now()
		result, err := e.runOnce(ctx, script)
		if err != nil {
			logger.Debug("osascript run failed",
				"duration", time.Since(started), "error", err)
			return err
		}
		logger.Debug("osascript run completed",
			"duration", time.Since(started), "output_bytes", len(result))
		output = result
		return nil
	}

	if e.maxRetries > 0 {
		if err := retry.Do(ctx, run, retry.WithMaxRetries(e.maxRetries)); err != nil {
			return "", err
		}
		return output, nil
	}
	if err := run(); err != nil {
		return "", err
	}
	return output, nil
}

func (e *Executor) runOnce(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, e.executable,
		osascriptOutputFlag, osascriptOutputStyle, osascriptExecuteFlag, script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", executionError(exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to execute AppleScript using %q: %w", e.executable, err)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

func executionError(exitCode int, stderr string) error {
	if stderr != "" {
		return fmt.Errorf("AppleScript execution failed with exit code %d: %s", exitCode, stderr)
	}
	return fmt.Errorf("AppleScript execution failed with exit code %d", exitCode)
}
