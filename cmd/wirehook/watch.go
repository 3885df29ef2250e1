// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/wirehook/wirehook/internal/gather"
	"github.com/wirehook/wirehook/internal/plugin"
	"github.com/wirehook/wirehook/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCommand(app *App) *cobra.Command {
	var debounce time.Duration
	watchCmd := &cobra.Command{
		Use:       "watch [category]",
		Short:     "Re-gather registries when module files change",
		Long:      `Watch the category directories of every plugin and re-gather the affected registries with fresh caches after each batch of changes. Stop with Ctrl+C.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: categoryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := parseCategories(args)
			if err != nil {
				return err
			}
			return app.watch(cmd.Context(), categories, debounce)
		},
	}
	watchCmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before re-gathering (default 300ms)")
	return watchCmd
}

func (a *App) watch(ctx context.Context, categories []plugin.Category, debounce time.Duration) error {
	sess, err := a.open(ctx)
	if err != nil {
		return err
	}

	regather := func(ctx context.Context) error {
		r := sess.resolver()
		for _, c := range categories {
			reg, err := r.Registry(ctx, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s %d modules, %d shadowed, %d excluded\n",
				TitleStyle.Render(c.Dir()), len(reg.Names), len(reg.Shadowed), len(reg.Excluded))
		}
		return nil
	}
	if err := regather(ctx); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Plugins:    sess.plugins,
		Categories: categories,
		Ignore:     gather.NewIgnore(sess.cfg.Ignore),
		Debounce:   debounce,
		Logger:     sess.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			for _, p := range changed {
				fmt.Fprintf(a.stdout, "%s %s\n", SubtitleStyle.Render("changed"), displayPath(sess.cfg.ProjectDir, p))
			}
			return regather(ctx)
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s %d directories\n", SuccessStyle.Render("watching"), len(w.Watched()))
	return w.Run(ctx)
}
