// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/wirehook/wirehook/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := FilePath(dir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, source, err := LoadWithSource(context.Background(), LoadOptions{ProjectDir: dir})
	if err != nil {
		t.Fatalf("LoadWithSource() error = %v", err)
	}

	if source != "" {
		t.Errorf("source = %q, want empty", source)
	}
	if cfg.ProjectDir != dir {
		t.Errorf("ProjectDir = %q, want %q", cfg.ProjectDir, dir)
	}
	if cfg.Log.Level != LogLevelInfo {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, LogLevelInfo)
	}
	if !slices.Equal(cfg.PluginPaths, []string{"plugins"}) {
		t.Errorf("PluginPaths = %v, want [plugins]", cfg.PluginPaths)
	}
	if !slices.Contains(cfg.Ignore.Patterns, "*_test.*") {
		t.Errorf("Ignore.Patterns = %v, want test files excluded", cfg.Ignore.Patterns)
	}
	if cfg.Aliases == nil || cfg.Constants == nil {
		t.Error("tables must be non-nil")
	}
}

func TestLoad_FileKeepsNameCase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `
environment: "staging"
plugins: ["@acme/auth", "metrics"]
aliases: {
	getPingLegacy: "getPing"
}
constants: {
	API_URL: "http://localhost"
	maxItems: 10
}
build_constants: {
	BUILD_TAG: "v1"
}
log: level: "debug"
`)

	cfg, source, err := LoadWithSource(context.Background(), LoadOptions{ProjectDir: dir})
	if err != nil {
		t.Fatalf("LoadWithSource() error = %v", err)
	}

	if source != path {
		t.Errorf("source = %q, want %q", source, path)
	}
	if cfg.Environment != "staging" {
		t.Errorf("Environment = %q, want staging", cfg.Environment)
	}
	if !slices.Equal(cfg.Plugins, []string{"@acme/auth", "metrics"}) {
		t.Errorf("Plugins = %v", cfg.Plugins)
	}
	if got := cfg.Aliases["getPingLegacy"]; got != "getPing" {
		t.Errorf("Aliases[getPingLegacy] = %q, want getPing", got)
	}
	if _, ok := cfg.Constants["API_URL"]; !ok {
		t.Errorf("Constants = %v, want API_URL key with original case", cfg.Constants)
	}
	if got := cfg.BuildConstants["BUILD_TAG"]; got != "v1" {
		t.Errorf("BuildConstants[BUILD_TAG] = %v, want v1", got)
	}
	if cfg.Log.Level != LogLevelDebug {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// Untouched defaults survive the merge.
	if cfg.Log.Format != LogFormatText {
		t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Run("prefixed variable", func(t *testing.T) {
		t.Setenv("WIREHOOK_ENVIRONMENT", "test")

		cfg, err := NewProvider().Load(context.Background(), LoadOptions{ProjectDir: t.TempDir()})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Environment != "test" {
			t.Errorf("Environment = %q, want test", cfg.Environment)
		}
	})

	t.Run("APP_ENV fallback", func(t *testing.T) {
		t.Setenv("WIREHOOK_ENVIRONMENT", "")
		t.Setenv("APP_ENV", "production")

		cfg, err := NewProvider().Load(context.Background(), LoadOptions{ProjectDir: t.TempDir()})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Environment != "production" {
			t.Errorf("Environment = %q, want production", cfg.Environment)
		}
	})

	t.Run("env beats file", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, `environment: "staging"`)
		t.Setenv("WIREHOOK_ENVIRONMENT", "test")

		cfg, err := NewProvider().Load(context.Background(), LoadOptions{ProjectDir: dir})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Environment != "test" {
			t.Errorf("Environment = %q, want test", cfg.Environment)
		}
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "schema violation",
			content: `log: level: "verbose"`,
			wantMsg: "log.level",
		},
		{
			name:    "unknown field",
			content: `container_engine: "podman"`,
			wantMsg: "container_engine",
		},
		{
			name:    "duplicate plugin",
			content: `plugins: ["auth", "auth"]`,
			wantMsg: "duplicate plugin",
		},
		{
			name:    "self alias",
			content: `aliases: {logger: "logger"}`,
			wantMsg: "maps to itself",
		},
		{
			name:    "bad glob",
			content: `ignore: patterns: ["[unclosed"]`,
			wantMsg: "invalid glob",
		},
		{
			name:    "syntax error",
			content: `environment: `,
			wantMsg: "wirehook.cue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{ProjectDir: dir})
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !errors.Is(err, issue.ErrBadConfig) {
				t.Errorf("Load() error = %v, want E_BAD_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Load() error = %q, want it to mention %q", err.Error(), tt.wantMsg)
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Errorf("Load() error = %T, want *issue.ActionableError", err)
			}
		})
	}
}

func TestLoad_ForcedFileMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: missing})
	if !errors.Is(err, issue.ErrBadConfig) {
		t.Fatalf("Load() error = %v, want E_BAD_CONFIG", err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error should name the file, got: %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ProjectDir: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Environment = "test"
	cfg.Plugins = []string{"@pluginA"}
	cfg.Aliases = map[string]string{"db": "database"}
	cfg.Constants = map[string]any{"PORT": 8080, "NAME": "svc"}
	cfg.Wrappers = []string{"logWrapper"}

	dir := t.TempDir()
	if err := Save(cfg, FilePath(dir)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := NewProvider().Load(context.Background(), LoadOptions{ProjectDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v\n%s", err, GenerateCUE(cfg))
	}

	if got.Environment != "test" {
		t.Errorf("Environment = %q, want test", got.Environment)
	}
	if !slices.Equal(got.Plugins, cfg.Plugins) {
		t.Errorf("Plugins = %v, want %v", got.Plugins, cfg.Plugins)
	}
	if got.Aliases["db"] != "database" {
		t.Errorf("Aliases = %v", got.Aliases)
	}
	if got.Constants["NAME"] != "svc" {
		t.Errorf("Constants = %v", got.Constants)
	}
	if !slices.Equal(got.Wrappers, cfg.Wrappers) {
		t.Errorf("Wrappers = %v, want %v", got.Wrappers, cfg.Wrappers)
	}
}

func TestCreateDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, created, err := CreateDefault(dir)
	if err != nil {
		t.Fatalf("CreateDefault() error = %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}

	_, created, err = CreateDefault(dir)
	if err != nil {
		t.Fatalf("second CreateDefault() error = %v", err)
	}
	if created {
		t.Error("second call must not overwrite the existing file")
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file missing: %v", err)
	}
}
