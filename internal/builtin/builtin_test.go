// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wirehook/wirehook/internal/autoload"
	"github.com/wirehook/wirehook/internal/module"

	"github.com/charmbracelet/log"
)

func newInit(t *testing.T, name string, opts module.Options) module.InitFunc {
	t.Helper()
	f, ok := Catalog(nil).Lookup(name)
	if !ok {
		t.Fatalf("Lookup(%s) = false", name)
	}
	fn, err := f.New(opts)
	if err != nil {
		t.Fatalf("%s New() error = %v", name, err)
	}
	return fn
}

func TestCatalog_Names(t *testing.T) {
	t.Parallel()
	want := []string{Static, Env, Ping, LogWrapper, Routes, TimeoutWrapper}
	for _, name := range want {
		if _, ok := Catalog(nil).Lookup(name); !ok {
			t.Errorf("Lookup(%s) = false", name)
		}
	}
}

func TestEnv(t *testing.T) {
	t.Parallel()

	fn := newInit(t, Env, module.Options{"name": "REGION", "default": "local"})
	ctx := context.Background()

	got, err := fn(ctx, map[string]any{module.NameEnv: map[string]string{"REGION": "eu"}})
	if err != nil || got != "eu" {
		t.Errorf("env = %v, %v, want eu", got, err)
	}
	got, err = fn(ctx, map[string]any{module.NameEnv: map[string]string{}})
	if err != nil || got != "local" {
		t.Errorf("env = %v, %v, want local", got, err)
	}

	f, _ := Catalog(nil).Lookup(Env)
	if _, err := f.New(module.Options{}); err == nil {
		t.Error("New() without name error = nil")
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	got, err := newInit(t, Static, module.Options{"value": 3.0})(context.Background(), nil)
	if err != nil || got != 3.0 {
		t.Errorf("static = %v, %v", got, err)
	}
}

func TestWrappers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var logs bytes.Buffer
	v, err := newInit(t, LogWrapper, nil)(ctx, map[string]any{module.NameLogger: log.New(&logs)})
	if err != nil {
		t.Fatalf("logWrapper error = %v", err)
	}
	logged, _ := module.AsWrapper(v)

	v, err = newInit(t, TimeoutWrapper, module.Options{"timeout": "10ms"})(ctx, nil)
	if err != nil {
		t.Fatalf("timeoutWrapper error = %v", err)
	}
	bounded, _ := module.AsWrapper(v)

	slow := module.Handler(func(ctx context.Context, _ map[string]any) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return "late", nil
		}
	})
	_, err = logged(bounded(slow))(ctx, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if !bytes.Contains(logs.Bytes(), []byte("handled")) {
		t.Errorf("missing log, got %q", logs.String())
	}
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	f, _ := Catalog(&out).Lookup(Routes)
	fn, err := f.New(nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	v, err := fn(context.Background(), map[string]any{module.NameAPIDefinitions: autoload.APIDefinitions{
		Operations: []autoload.Operation{{OperationID: "getPing", Path: "/ping", Method: "get"}},
	}})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	cmd, _ := module.AsCommand(v)
	if err := cmd(context.Background()); err != nil {
		t.Fatalf("command error = %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("/ping")) {
		t.Errorf("output = %q", out.String())
	}
}
