// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"github.com/wirehook/wirehook/internal/config"
	"github.com/wirehook/wirehook/internal/gather"
	"github.com/wirehook/wirehook/internal/plugin"

	"github.com/charmbracelet/log"
)

// Options configures a Resolver. The tables are copied on construction.
type Options struct {
	// Environment gates modules by their config.environments list.
	Environment string
	// ProjectDir anchors relative path overrides.
	ProjectDir string
	// Constants are consulted before any module lookup and override the
	// built-in constants.
	Constants map[string]any
	// Aliases remap a requested name to another name, one hop.
	Aliases map[string]string
	// PathOverrides map a name to an explicit module file.
	PathOverrides map[string]string
	// Wrappers are handler wrapper service names, outermost first.
	Wrappers []string
	// Ignore excludes directory entries while gathering.
	Ignore config.IgnoreConfig
	// Predicates filter gathered modules per category.
	Predicates map[plugin.Category]gather.Predicate
	// Logger receives resolution diagnostics. Nil discards them.
	Logger *log.Logger
}

// OptionsFromConfig derives resolver options from the project config.
func OptionsFromConfig(cfg *config.Config, logger *log.Logger) Options {
	return Options{
		Environment:   cfg.Environment,
		ProjectDir:    cfg.ProjectDir,
		Constants:     cfg.Constants,
		Aliases:       cfg.Aliases,
		PathOverrides: cfg.PathOverrides,
		Wrappers:      cfg.Wrappers,
		Ignore:        cfg.Ignore,
		Logger:        logger,
	}
}
