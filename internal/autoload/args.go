// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"fmt"
	"io"
	"strings"

	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/module"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// ParseArgs splits a command line into the command name, named arguments
// and positional arguments. Named arguments are "--key=value", "--key
// value" or a bare "--flag", which is true. "--" ends named arguments. The
// first positional argument is the command name.
func ParseArgs(argv []string) module.Args {
	args := module.Args{Named: make(map[string]any), Positional: []string{}}
	positional := func(s string) {
		if args.Command == "" {
			args.Command = s
			return
		}
		args.Positional = append(args.Positional, s)
	}

	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		if tok == "--" {
			for _, rest := range argv[i+1:] {
				positional(rest)
			}
			break
		}
		key, ok := strings.CutPrefix(tok, "--")
		if !ok || key == "" {
			positional(tok)
			continue
		}
		if k, v, found := strings.Cut(key, "="); found {
			args.Named[k] = v
			continue
		}
		if i+1 < len(argv) && !strings.HasPrefix(argv[i+1], "-") {
			args.Named[key] = argv[i+1]
			i++
			continue
		}
		args.Named[key] = true
	}
	return args
}

// BindArgs parses argv against the declared arguments of a command and
// returns args with the declared values coerced to their types. Defaults
// fill missing values; a missing required argument is E_BAD_INJECTION.
// Undeclared named arguments are kept as parsed by ParseArgs.
func BindArgs(argv []string, declared []module.Argument) (module.Args, error) {
	args := ParseArgs(argv)
	if len(declared) == 0 {
		return args, nil
	}

	fs := pflag.NewFlagSet(args.Command, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsAllowlist.UnknownFlags = true
	for _, arg := range declared {
		if err := define(fs, arg); err != nil {
			return args, issue.New(issue.ErrBadInjection, "argument %s: %v", arg.Name, err).WithResource(args.Command)
		}
	}
	if err := fs.Parse(argv); err != nil {
		return args, issue.New(issue.ErrBadInjection, "%v", err).WithResource(args.Command)
	}
	// Declared booleans never consume the next token.
	if rest := fs.Args(); len(rest) > 0 {
		args.Command, args.Positional = rest[0], append([]string{}, rest[1:]...)
	}

	for _, arg := range declared {
		if arg.Required && arg.Default == nil && !fs.Changed(arg.Name) {
			return args, issue.New(issue.ErrBadInjection, "missing required argument --%s", arg.Name).
				WithResource(args.Command).
				WithParam("argument", arg.Name)
		}
		if !fs.Changed(arg.Name) && arg.Default == nil {
			continue
		}
		var (
			v   any
			err error
		)
		switch arg.Type {
		case module.ArgNumber:
			v, err = fs.GetFloat64(arg.Name)
		case module.ArgBoolean:
			v, err = fs.GetBool(arg.Name)
		default:
			v, err = fs.GetString(arg.Name)
		}
		if err != nil {
			return args, issue.New(issue.ErrBadInjection, "argument %s: %v", arg.Name, err).WithResource(args.Command)
		}
		args.Named[arg.Name] = v
	}
	return args, nil
}

func define(fs *pflag.FlagSet, arg module.Argument) error {
	switch arg.Type {
	case module.ArgNumber:
		def, err := cast.ToFloat64E(orZero(arg.Default, 0))
		if err != nil {
			return fmt.Errorf("default: %w", err)
		}
		fs.Float64(arg.Name, def, arg.Description)
	case module.ArgBoolean:
		def, err := cast.ToBoolE(orZero(arg.Default, false))
		if err != nil {
			return fmt.Errorf("default: %w", err)
		}
		fs.Bool(arg.Name, def, arg.Description)
	default:
		def, err := cast.ToStringE(orZero(arg.Default, ""))
		if err != nil {
			return fmt.Errorf("default: %w", err)
		}
		fs.String(arg.Name, def, arg.Description)
	}
	return nil
}

func orZero(v, zero any) any {
	if v == nil {
		return zero
	}
	return v
}
