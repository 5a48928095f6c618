package gateways

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
)

// CMakeConfig selects the cmake binaries and per-step limits
type CMakeConfig struct {
	Command      string // cmake executable, default "cmake"
	CTestCommand string // ctest executable, default "ctest"
	Generator    string // optional -G value
	BuildType    string // CMAKE_BUILD_TYPE, default "Release"
	Timeout      time.Duration
}

// CMake implements the BuildTool contract on top of cmake and ctest
type CMake struct {
	executor *ScriptExecutor
	config   CMakeConfig
	logger   interfaces.Logger
}

// NewCMake creates a cmake driver
func NewCMake(executor *ScriptExecutor, config CMakeConfig, logger interfaces.Logger) *CMake {
	if config.Command == "" {
		config.Command = "cmake"
	}
	if config.CTestCommand == "" {
		config.CTestCommand = "ctest"
	}
	if config.BuildType == "" {
		config.BuildType = "Release"
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &CMake{executor: executor, config: config, logger: logger}
}

// DefinitionArgs renders build variables as -D arguments, followed by the
// extra definitions sorted by name.
func DefinitionArgs(config entities.BuildConfig, extra map[string]string) []string {
	args := make([]string, 0, len(config)+len(extra))
	for _, v := range config {
		value := "OFF"
		if v.Value {
			value = "ON"
		}
		args = append(args, fmt.Sprintf("-D%s=%s", v.Name, value))
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, fmt.Sprintf("-D%s=%s", k, extra[k]))
	}

	return args
}

// ConfigureScript returns the shell command that configures buildDir from sourceDir
func (c *CMake) ConfigureScript(sourceDir, buildDir string, config entities.BuildConfig, extra map[string]string) (string, error) {
	args := []string{c.config.Command, "-S", sourceDir, "-B", buildDir}
	if c.config.Generator != "" {
		args = append(args, "-G", c.config.Generator)
	}
	args = append(args, "-DCMAKE_BUILD_TYPE="+c.config.BuildType)
	args = append(args, DefinitionArgs(config, extra)...)
	return quoteCommand(args)
}

// Configure runs the cmake configure step
func (c *CMake) Configure(ctx context.Context, sourceDir, buildDir string, config entities.BuildConfig, extra map[string]string) error {
	script, err := c.ConfigureScript(sourceDir, buildDir, config, extra)
	if err != nil {
		return err
	}
	return c.run(ctx, script, "", "configure")
}

// Build runs the cmake build step
func (c *CMake) Build(ctx context.Context, buildDir string) error {
	script, err := quoteCommand([]string{c.config.Command, "--build", buildDir, "--config", c.config.BuildType})
	if err != nil {
		return err
	}
	return c.run(ctx, script, "", "build")
}

// Test runs ctest inside buildDir
func (c *CMake) Test(ctx context.Context, buildDir string) error {
	script, err := quoteCommand([]string{c.config.CTestCommand, "--output-on-failure", "-C", c.config.BuildType})
	if err != nil {
		return err
	}
	return c.run(ctx, script, buildDir, "test")
}

func (c *CMake) run(ctx context.Context, script, workingDir, step string) error {
	result := c.executor.ExecuteScript(ctx, ExecuteScriptConfig{
		Script:      script,
		WorkingDir:  workingDir,
		Timeout:     c.config.Timeout,
		Description: step,
	})

	if result.Stdout != "" {
		c.logger.Debug(step+" output", interfaces.F("stdout", result.Stdout))
	}

	if !result.Success {
		return fmt.Errorf("%s step failed (exit %d): %w\nStderr: %s",
			step, result.ExitCode, result.Error, result.Stderr)
	}

	c.logger.Info(step+" completed", interfaces.F("duration", result.Duration))
	return nil
}

func quoteCommand(args []string) (string, error) {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		q, err := syntax.Quote(a, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("cannot quote argument %q: %w", a, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}
