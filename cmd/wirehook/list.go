// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/wirehook/wirehook/internal/gather"
	"github.com/wirehook/wirehook/internal/plugin"

	"github.com/spf13/cobra"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "list [category]",
		Short:     "Show gathered module registries",
		Long:      `Gather the routes, handlers, commands and services of every plugin and print the merged registries with shadowed and excluded files.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: categoryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := parseCategories(args)
			if err != nil {
				return err
			}
			return app.list(cmd.Context(), categories)
		},
	}
}

func (a *App) list(ctx context.Context, categories []plugin.Category) error {
	sess, err := a.open(ctx)
	if err != nil {
		return err
	}
	r := sess.resolver()
	for i, c := range categories {
		reg, err := r.Registry(ctx, c)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}
		a.printRegistry(sess.cfg.ProjectDir, reg)
	}
	return nil
}

func (a *App) printRegistry(projectDir string, reg *gather.Registry) {
	w := a.stdout
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render(reg.Category.Dir()), SubtitleStyle.Render(fmt.Sprintf("(%d)", len(reg.Names))))
	for _, name := range reg.Names {
		desc := reg.Modules[name]
		fmt.Fprintf(w, "  %s  %s  %s\n", NameStyle.Render(name), desc.Plugin.Name, SubtitleStyle.Render(displayPath(projectDir, desc.Location)))
	}
	for _, kind := range slices.Sorted(maps.Keys(reg.Components)) {
		names := slices.Sorted(maps.Keys(reg.Components[kind]))
		fmt.Fprintf(w, "  %s %s: %s\n", SubtitleStyle.Render("components"), kind, strings.Join(names, ", "))
	}
	for _, s := range reg.Shadowed {
		fmt.Fprintf(w, "  %s %s (%s) by %s\n", WarningStyle.Render("shadowed"), s.Name, s.Plugin, s.By)
	}
	for _, e := range reg.Excluded {
		fmt.Fprintf(w, "  %s %s (%s): %s\n", WarningStyle.Render("excluded"), e.Name, e.Plugin, e.Reason)
	}
}

// parseCategories returns the named category, or every category.
func parseCategories(args []string) ([]plugin.Category, error) {
	if len(args) == 0 {
		return plugin.Categories(), nil
	}
	c, err := plugin.ParseCategory(args[0])
	if err != nil {
		return nil, err
	}
	return []plugin.Category{c}, nil
}

func categoryNames() []string {
	var names []string
	for _, c := range plugin.Categories() {
		names = append(names, c.String())
	}
	return names
}
