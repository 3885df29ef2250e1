// SPDX-License-Identifier: MPL-2.0

package module

import (
	"context"
	"fmt"

	"github.com/wirehook/wirehook/internal/shell"
)

// scriptInitializer builds a command whose body is a shell script. Named
// arguments are exported as WIREHOOK_ARG_<NAME>, declared defaults
// included; positional arguments become $1, $2, ...
func (l *FileLoader) scriptInitializer(src Source, def Definition, script string, inject []string) Initializer {
	deps := []string{NameCommandArgs, optionalPrefix + NameProjectDir}
	deps = append(deps, inject...)

	return Initializer{
		Name:   src.LogicalName,
		Kind:   KindService,
		Inject: deps,
		Init: func(_ context.Context, injected map[string]any) (any, error) {
			args, _ := injected[NameCommandArgs].(Args)

			dir := src.Plugin.Base
			if projectDir, ok := injected[NameProjectDir].(string); ok && projectDir != "" {
				dir = projectDir
			}

			env := make(map[string]string)
			declared, err := def.Arguments()
			if err != nil {
				return nil, err
			}
			for _, arg := range declared {
				if arg.Default != nil {
					env[shell.ArgEnvName(arg.Name)] = fmt.Sprint(arg.Default)
				}
			}
			for name, value := range args.Named {
				env[shell.ArgEnvName(name)] = fmt.Sprint(value)
			}

			run := func(ctx context.Context) error {
				l.logger.Debug("running command script", "command", src.LogicalName, "location", src.Location)
				_, err := shell.Run(ctx, script, shell.Options{
					Name:   src.Location,
					Dir:    dir,
					Env:    env,
					Params: args.Positional,
					Stdin:  l.stdio.Stdin,
					Stdout: l.stdio.Stdout,
					Stderr: l.stdio.Stderr,
				})
				return err
			}
			return Command(run), nil
		},
	}
}
