// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPluginsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the project and its plugins in rank order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.listPlugins(cmd.Context())
		},
	}
}

func (a *App) listPlugins(ctx context.Context) error {
	sess, err := a.open(ctx)
	if err != nil {
		return err
	}
	for _, p := range sess.plugins {
		caps := make([]string, 0, len(p.Capabilities))
		for _, c := range p.Capabilities {
			caps = append(caps, c.String())
		}
		fmt.Fprintf(a.stdout, "%d  %s  %s\n", p.Rank, NameStyle.Render(p.Name), SubtitleStyle.Render(p.Base))
		if len(caps) > 0 {
			fmt.Fprintf(a.stdout, "   provides: %s\n", strings.Join(caps, ", "))
		}
		if p.Description != "" {
			fmt.Fprintf(a.stdout, "   %s\n", p.Description)
		}
	}
	return nil
}
