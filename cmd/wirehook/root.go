// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wirehook/wirehook/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// issueStyle is the glamour style used for catalog help pages.
const issueStyle = "dark"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath  string
	projectDir  string
	environment string
	logFormat   string
	verbose     bool
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "wirehook",
		Short: "Convention-based dependency wiring for plugin projects",
		Long: TitleStyle.Render("wirehook") + SubtitleStyle.Render(" - convention-based dependency wiring") + `

wirehook resolves dependency names to module files found in the
routes/, handlers/, commands/ and services/ directories of a project and
its plugins, and injects them into one another.

` + SubtitleStyle.Render("Examples:") + `
  wirehook plugins            List the project and its plugins
  wirehook list handlers      Show the handlers registry
  wirehook resolve db         Show where "db" resolves from
  wirehook run migrate --to=3 Run the "migrate" command
  wirehook build -o plan.json Write the build manifest`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is <project>/wirehook.cue)")
	pf.StringVarP(&app.flags.projectDir, "project", "C", "", "project directory (default is the working directory)")
	pf.StringVar(&app.flags.environment, "env", "", "application environment, overriding config and APP_ENV")
	pf.StringVar(&app.flags.logFormat, "log-format", "", "log format: text, json or logfmt")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and verbose errors")

	root.AddCommand(
		newRunCommand(app),
		newResolveCommand(app),
		newListCommand(app),
		newPluginsCommand(app),
		newBuildCommand(app),
		newWatchCommand(app),
		newConfigCommand(app),
	)
	return root
}

// versionString returns a formatted version string for display.
func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with the process arguments and exits.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], Dependencies{}))
}

// Run executes the CLI with args and returns the process exit status.
func Run(ctx context.Context, args []string, deps Dependencies) int {
	app := NewApp(deps)
	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.renderError),
		fang.WithoutManpage(),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// renderError prints a failure. Coded failures get their detail and the
// catalog help page; anything else goes to fang's default handler.
func (a *App) renderError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	code := issue.CodeOf(err)
	if code == "" {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error:"), formatErrorForDisplay(err, a.flags.verbose))
	if entry := issue.Get(code); entry != nil {
		rendered, rerr := entry.Render(issueStyle)
		if rerr != nil {
			return
		}
		fmt.Fprint(w, rendered)
	}
}

// formatErrorForDisplay prefers the operation context of an ActionableError
// and falls back to the coded error's detail.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	var coded *issue.Error
	if errors.As(err, &coded) {
		return coded.Detail(verbose)
	}
	return err.Error()
}
