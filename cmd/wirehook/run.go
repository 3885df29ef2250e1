// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"

	"github.com/wirehook/wirehook/internal/autoload"
	"github.com/wirehook/wirehook/internal/inject"
	"github.com/wirehook/wirehook/internal/module"
	"github.com/wirehook/wirehook/internal/shell"

	"github.com/spf13/cobra"
)

func newRunCommand(app *App) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <command> [--name=value ...] [args...]",
		Short: "Run a command module",
		Long: `Run the command module commands/<command> of the highest ranked plugin
that provides it.

Everything after the command name belongs to the command: --name=value,
--name value and bare --flag arguments are passed as named arguments and
the rest as positional ones. An unknown command only logs a warning.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runCommand(cmd.Context(), args)
		},
	}
	// Flags after the command name belong to the command.
	runCmd.Flags().SetInterspersed(false)
	return runCmd
}

// runCommand boots a container over the command dispatch resolver and runs
// COMMAND. A script's non-zero status becomes the process exit status.
func (a *App) runCommand(ctx context.Context, argv []string) (err error) {
	sess, err := a.open(ctx)
	if err != nil {
		return err
	}

	resolver := autoload.NewCommandResolver(sess.resolver(), argv)
	container := inject.New(inject.WithAutoloader(resolver), inject.WithLogger(sess.logger))
	defer func() {
		if derr := container.Destroy(context.WithoutCancel(ctx)); derr != nil {
			err = errors.Join(err, derr)
		}
	}()

	deps, err := container.Inject(ctx, []string{module.NameCommand})
	if err != nil {
		return err
	}
	command, err := module.AsCommand(deps[module.NameCommand])
	if err != nil {
		return err
	}

	if err := command(ctx); err != nil {
		var scriptErr *shell.ExitError
		if errors.As(err, &scriptErr) {
			return &ExitError{Code: int(scriptErr.Code)}
		}
		return err
	}
	return nil
}
