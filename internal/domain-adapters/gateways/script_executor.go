package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
)

// ScriptExecutor runs POSIX shell scripts through an embedded interpreter,
// so build steps behave the same on Windows and POSIX hosts.
type ScriptExecutor struct {
	defaultTimeout time.Duration
	logger         interfaces.Logger
}

// NewScriptExecutor creates a new script executor
func NewScriptExecutor(logger interfaces.Logger) *ScriptExecutor {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ScriptExecutor{
		defaultTimeout: 30 * time.Minute,
		logger:         logger,
	}
}

// ExecuteScriptConfig contains configuration for executing a shell script.
type ExecuteScriptConfig struct {
	Script      string
	WorkingDir  string
	Env         map[string]string
	Timeout     time.Duration
	Description string
}

// ExecuteResult contains the result of script execution
type ExecuteResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// ExecuteScript runs a shell script with the given configuration
func (se *ScriptExecutor) ExecuteScript(ctx context.Context, config ExecuteScriptConfig) *ExecuteResult {
	startTime := time.Now()
	result := &ExecuteResult{ExitCode: -1}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = se.defaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prog, err := syntax.NewParser().Parse(strings.NewReader(config.Script), config.Description)
	if err != nil {
		result.Error = fmt.Errorf("script syntax error: %w", err)
		return result
	}

	env := os.Environ()
	for key, value := range config.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	var stdout, stderr bytes.Buffer
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, &stdout, &stderr),
	}
	if config.WorkingDir != "" {
		opts = append(opts, interp.Dir(config.WorkingDir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		result.Error = fmt.Errorf("failed to create interpreter: %w", err)
		return result
	}

	if config.Description != "" {
		se.logger.Info("executing", interfaces.F("step", config.Description))
	}

	err = runner.Run(execCtx, prog)
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		exitStatus, isExit := interp.IsExitStatus(err)
		switch {
		case errors.Is(execCtx.Err(), context.DeadlineExceeded):
			result.Error = fmt.Errorf("script execution timeout after %v", timeout)
		case isExit:
			result.ExitCode = int(exitStatus)
			result.Error = fmt.Errorf("exit status %d", result.ExitCode)
		default:
			result.Error = err
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}

// ValidateScript performs basic validation on a shell script
func (se *ScriptExecutor) ValidateScript(script string) error {
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("script is empty")
	}

	if _, err := syntax.NewParser().Parse(strings.NewReader(script), "script"); err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}

	return nil
}
