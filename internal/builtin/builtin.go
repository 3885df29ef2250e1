// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wirehook/wirehook/internal/autoload"
	"github.com/wirehook/wirehook/internal/module"

	"github.com/charmbracelet/log"
	"github.com/spf13/cast"
)

// Factory names.
const (
	Static         = "static"
	Env            = "env"
	LogWrapper     = "logWrapper"
	TimeoutWrapper = "timeoutWrapper"
	Ping           = "getPing"
	Routes         = "routes"
)

// Catalog returns a catalog holding every builtin factory. Output of
// command factories goes to stdout.
func Catalog(stdout io.Writer) *module.Catalog {
	if stdout == nil {
		stdout = os.Stdout
	}
	c := module.NewCatalog()
	c.MustRegister(Static, module.Factory{Kind: module.KindService, New: static})
	c.MustRegister(Env, module.Factory{Kind: module.KindService, Inject: []string{module.NameEnv}, New: env})
	c.MustRegister(LogWrapper, module.Func(module.KindService, []string{module.NameLogger}, logWrapper))
	c.MustRegister(TimeoutWrapper, module.Factory{Kind: module.KindService, New: timeoutWrapper})
	c.MustRegister(Ping, module.Func(module.KindService, nil, ping))
	c.MustRegister(Routes, module.Func(module.KindService, []string{module.NameAPIDefinitions}, routes(stdout)))
	return c
}

// static returns options.value.
func static(opts module.Options) (module.InitFunc, error) {
	v, ok := opts["value"]
	if !ok {
		return nil, fmt.Errorf("options.value is required")
	}
	return func(context.Context, map[string]any) (any, error) { return v, nil }, nil
}

// env reads one process environment variable, options.name, falling back
// to options.default.
func env(opts module.Options) (module.InitFunc, error) {
	name, err := cast.ToStringE(opts["name"])
	if err != nil || name == "" {
		return nil, fmt.Errorf("options.name is required")
	}
	def, err := cast.ToStringE(opts["default"])
	if err != nil {
		return nil, fmt.Errorf("options.default: %w", err)
	}
	return func(_ context.Context, deps map[string]any) (any, error) {
		vars, _ := deps[module.NameEnv].(map[string]string)
		if v, ok := vars[name]; ok {
			return v, nil
		}
		return def, nil
	}, nil
}

func logWrapper(_ context.Context, deps map[string]any) (any, error) {
	logger, ok := deps[module.NameLogger].(*log.Logger)
	if !ok {
		return nil, fmt.Errorf("%s is %T, want *log.Logger", module.NameLogger, deps[module.NameLogger])
	}
	return module.Wrapper(func(next module.Handler) module.Handler {
		return func(ctx context.Context, params map[string]any) (any, error) {
			start := time.Now()
			v, err := next(ctx, params)
			logger.Info("handled", "duration", time.Since(start), "err", err)
			return v, err
		}
	}), nil
}

// timeoutWrapper bounds each call by options.timeout, default 30s.
func timeoutWrapper(opts module.Options) (module.InitFunc, error) {
	timeout := 30 * time.Second
	if raw, ok := opts["timeout"]; ok {
		d, err := cast.ToDurationE(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("options.timeout: invalid duration %v", raw)
		}
		timeout = d
	}
	return func(context.Context, map[string]any) (any, error) {
		return module.Wrapper(func(next module.Handler) module.Handler {
			return func(ctx context.Context, params map[string]any) (any, error) {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				return next(ctx, params)
			}
		}), nil
	}, nil
}

func ping(context.Context, map[string]any) (any, error) {
	return module.Handler(func(context.Context, map[string]any) (any, error) {
		return map[string]any{"pong": true}, nil
	}), nil
}

// routes prints every gathered operation.
func routes(stdout io.Writer) module.InitFunc {
	return func(_ context.Context, deps map[string]any) (any, error) {
		defs, ok := deps[module.NameAPIDefinitions].(autoload.APIDefinitions)
		if !ok {
			return nil, fmt.Errorf("%s is %T", module.NameAPIDefinitions, deps[module.NameAPIDefinitions])
		}
		return module.Command(func(context.Context) error {
			for _, op := range defs.Operations {
				if _, err := fmt.Fprintf(stdout, "%-7s %-24s %s\n", op.Method, op.Path, op.OperationID); err != nil {
					return err
				}
			}
			return nil
		}), nil
	}
}
