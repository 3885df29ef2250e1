// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/wirehook/wirehook/internal/autoload"

	"github.com/spf13/cobra"
)

func newResolveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name...>",
		Short: "Show how dependency names resolve",
		Long: `Resolve each name the way the container would and print where it came
from, its initializer kind and what it injects. Nothing is instantiated.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.resolveNames(cmd.Context(), args)
		},
	}
}

func (a *App) resolveNames(ctx context.Context, names []string) error {
	sess, err := a.open(ctx)
	if err != nil {
		return err
	}
	r := sess.resolver()
	for _, name := range names {
		entry, err := r.Autoload(ctx, name)
		if err != nil {
			return err
		}
		printEntry(a.stdout, sess.cfg.ProjectDir, entry)
	}
	return nil
}

func printEntry(w io.Writer, projectDir string, entry autoload.Entry) {
	fmt.Fprintln(w, NameStyle.Render(entry.Name))
	if entry.Resolved != "" && entry.Resolved != entry.Name {
		fmt.Fprintf(w, "  alias:  %s\n", entry.Resolved)
	}
	fmt.Fprintf(w, "  path:   %s\n", displayPath(projectDir, entry.Path))
	fmt.Fprintf(w, "  kind:   %s\n", entry.Initializer.Kind)
	if len(entry.Initializer.Inject) > 0 {
		fmt.Fprintf(w, "  inject: %s\n", strings.Join(entry.Initializer.Inject, ", "))
	}
}

// displayPath shortens file locations below the project directory.
func displayPath(projectDir, p string) string {
	if !filepath.IsAbs(p) || projectDir == "" {
		return p
	}
	rel, err := filepath.Rel(projectDir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}
