// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Options configures one script run.
type Options struct {
	// Name labels the script in parse errors.
	Name string
	// Dir is the working directory. Empty means the process directory.
	Dir string
	// Env is added on top of the filtered process environment.
	Env map[string]string
	// Params are the positional parameters ($1, $2, ...).
	Params []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Validate parses script without running it.
func Validate(script, name string) error {
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), name); err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}
	return nil
}

// Run executes script. A non-zero exit status is reported as *ExitError
// together with the code; other failures return code 1.
func Run(ctx context.Context, script string, opts Options) (ExitCode, error) {
	name := opts.Name
	if name == "" {
		name = "script"
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return 1, fmt.Errorf("failed to parse script: %w", err)
	}

	environ := FilterArgVars(os.Environ())
	environ = append(environ, EnvToSlice(opts.Env)...)

	runnerOpts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(opts.Stdin, opts.Stdout, opts.Stderr),
	}
	if opts.Dir != "" {
		runnerOpts = append(runnerOpts, interp.Dir(opts.Dir))
	}

	// Prepend "--" so that arguments like "-v" are not taken as shell options.
	if len(opts.Params) > 0 {
		params := append([]string{"--"}, opts.Params...)
		runnerOpts = append(runnerOpts, interp.Params(params...))
	}

	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return 1, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			code := ExitCode(exitStatus)
			return code, &ExitError{Code: code}
		}
		return 1, fmt.Errorf("script execution failed: %w", err)
	}

	return 0, nil
}
