// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/wirehook/wirehook/internal/autoload"
	"github.com/wirehook/wirehook/internal/bundle"
	"github.com/wirehook/wirehook/internal/inject"
	"github.com/wirehook/wirehook/internal/module"

	"github.com/spf13/cobra"
)

// defaultManifestName is written below the project directory when -o is
// not given.
const defaultManifestName = "wirehook-build.json"

type buildFlags struct {
	output string
	host   map[string]string
}

func newBuildCommand(app *App) *cobra.Command {
	var flags buildFlags
	buildCmd := &cobra.Command{
		Use:   "build [roots...]",
		Short: "Write the build manifest for a set of root dependencies",
		Long: `Resolve the roots and everything they inject at build time and write the
result as a JSON manifest for an external bundler.

Build constants from the config are folded into literals. Names that only
exist in a running process become placeholders. The default roots are
HANDLERS and API_DEFINITIONS. Use "-o -" to write to standard output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				roots = []string{module.NameHandlers, module.NameAPIDefinitions}
			}
			return app.build(cmd.Context(), roots, flags)
		},
	}
	buildCmd.Flags().StringVarP(&flags.output, "output", "o", "", "manifest path (default is <project>/"+defaultManifestName+")")
	buildCmd.Flags().StringToStringVar(&flags.host, "host", nil, "host constant available to the build, as name=value")
	return buildCmd
}

func (a *App) build(ctx context.Context, roots []string, flags buildFlags) error {
	sess, err := a.open(ctx)
	if err != nil {
		return err
	}

	host := inject.New(inject.WithLogger(sess.logger))
	for name, value := range flags.host {
		if err := host.RegisterConstant(name, value); err != nil {
			return err
		}
	}

	b := autoload.NewBuildResolver(sess.resolver(), host, sess.cfg.BuildConstants)
	m, err := bundle.Plan(ctx, b, roots)
	if err != nil {
		return err
	}

	switch flags.output {
	case "-":
		return bundle.Write(a.stdout, m)
	case "":
		flags.output = filepath.Join(sess.cfg.ProjectDir, defaultManifestName)
	default:
		if !filepath.IsAbs(flags.output) {
			flags.output = filepath.Join(sess.cfg.ProjectDir, flags.output)
		}
	}
	if err := bundle.WriteFile(a.FS, flags.output, m); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s %s (%d entries)\n", SuccessStyle.Render("wrote"), displayPath(sess.cfg.ProjectDir, flags.output), len(m.Entries))
	return nil
}
