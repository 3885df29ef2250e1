// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/logging"
	"github.com/wirehook/wirehook/internal/module"
	"github.com/wirehook/wirehook/internal/plugin"

	"github.com/charmbracelet/log"
)

type (
	// CommandResolver resolves COMMAND and COMMAND_ARGS from a command line
	// and delegates every other name to its Resolver.
	CommandResolver struct {
		base    *Resolver
		argv    []string
		raw     module.Args
		match   *Cache[commandMatch]
		entries *Cache[Entry]
		logger  *log.Logger
	}

	// commandMatch is the located command module, if any.
	commandMatch struct {
		desc     *module.Descriptor
		attempts []string
	}
)

var _ Autoloader = (*CommandResolver)(nil)

// NewCommandResolver wraps base for the command line argv. The first
// positional argument names the command.
func NewCommandResolver(base *Resolver, argv []string) *CommandResolver {
	return &CommandResolver{
		base:    base,
		argv:    argv,
		raw:     ParseArgs(argv),
		match:   NewCache[commandMatch](),
		entries: NewCache[Entry](),
		logger:  logging.Component(base.opts.Logger, logging.PrefixCommand),
	}
}

// Name returns the requested command name.
func (c *CommandResolver) Name() string {
	return c.raw.Command
}

// Autoload resolves name.
func (c *CommandResolver) Autoload(ctx context.Context, name string) (Entry, error) {
	switch name {
	case module.NameCommand, module.NameCommandArgs:
	default:
		return c.base.Autoload(ctx, name)
	}

	return c.entries.Do(ctx, name, func(ctx context.Context) (Entry, error) {
		m, err := c.locate(ctx)
		if err != nil {
			return Entry{}, err
		}
		var entry Entry
		if name == module.NameCommand {
			entry = c.command(m)
		} else {
			entry, err = c.args(m)
			if err != nil {
				return Entry{}, err
			}
		}
		entry.Name, entry.Resolved = name, name
		c.logger.Debug("resolved", "name", name, "command", c.raw.Command, "path", entry.Path)
		return entry, nil
	})
}

// Located returns the command module location, or false when no plugin
// provides the command.
func (c *CommandResolver) Located(ctx context.Context) (string, bool, error) {
	m, err := c.locate(ctx)
	if err != nil || m.desc == nil {
		return "", false, err
	}
	return m.desc.Location, true, nil
}

// Attempts returns the locations tried for the command.
func (c *CommandResolver) Attempts(ctx context.Context) ([]string, error) {
	m, err := c.locate(ctx)
	return m.attempts, err
}

// locate tries <plugin>/commands/<name><ext> in rank order.
func (c *CommandResolver) locate(ctx context.Context) (commandMatch, error) {
	return c.match.Do(ctx, module.NameCommand, func(ctx context.Context) (commandMatch, error) {
		var m commandMatch
		if c.raw.Command == "" {
			return m, nil
		}
		if err := validateCommandName(c.raw.Command); err != nil {
			return m, issue.New(issue.ErrBadInjection, "%v", err).WithResource(c.raw.Command)
		}
		for _, p := range c.base.plugins {
			if !p.Declares(plugin.Command) {
				continue
			}
			for _, ext := range module.Extensions() {
				desc, err := c.base.try(ctx, module.Source{
					LogicalName: c.raw.Command,
					Category:    plugin.Command,
					Plugin:      p,
					Location:    filepath.Join(p.Dir(plugin.Command), c.raw.Command+ext),
				}, &m.attempts)
				if err != nil {
					return m, err
				}
				if desc != nil {
					m.desc = desc
					return m, nil
				}
			}
		}
		return m, nil
	})
}

func (c *CommandResolver) command(m commandMatch) Entry {
	if m.desc != nil {
		return entryOf(m.desc)
	}

	name, logger := c.raw.Command, c.logger
	noop := module.Command(func(context.Context) error {
		logger.Warn("command not found", "command", name)
		return nil
	})
	return Entry{
		Path:        PathBuiltin + "command-not-found",
		Initializer: module.Constant(module.NameCommand, noop),
	}
}

func (c *CommandResolver) args(m commandMatch) (Entry, error) {
	args := c.raw
	if m.desc != nil {
		declared, err := m.desc.Definition.Arguments()
		if err != nil {
			return Entry{}, badDefinition(m.desc, err)
		}
		if args, err = BindArgs(c.argv, declared); err != nil {
			return Entry{}, err
		}
	}
	return Entry{
		Path:        PathConstant + module.NameCommandArgs,
		Initializer: module.Constant(module.NameCommandArgs, args),
	}, nil
}

// validateCommandName rejects names that would leave the commands directory.
func validateCommandName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return fmt.Errorf("command name %q must be a plain file name", name)
	}
	return nil
}
