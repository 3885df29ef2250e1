// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wirehook/wirehook/internal/cueutil"
	"github.com/wirehook/wirehook/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "wirehook"
	// EnvPrefix is the prefix of environment variable overrides.
	EnvPrefix = "WIREHOOK"
	// ConfigFileName is the name of the project config file (without extension).
	ConfigFileName = "wirehook"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema []byte

// FilePath returns the conventional config file location for a project.
func FilePath(projectDir string) string {
	return filepath.Join(projectDir, ConfigFileName+"."+ConfigFileExt)
}

// loadWithOptions performs option-driven config loading. It returns the
// config and the path of the file it was read from ("" when defaults only).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	projectDir, err := resolveProjectDir(opts.ProjectDir)
	if err != nil {
		return nil, "", err
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("environment", defaults.Environment)
	v.SetDefault("plugins", defaults.Plugins)
	v.SetDefault("plugin_paths", defaults.PluginPaths)
	v.SetDefault("ignore.prefixes", defaults.Ignore.Prefixes)
	v.SetDefault("ignore.suffixes", defaults.Ignore.Suffixes)
	v.SetDefault("ignore.patterns", defaults.Ignore.Patterns)
	v.SetDefault("wrappers", defaults.Wrappers)
	v.SetDefault("log.level", string(defaults.Log.Level))
	v.SetDefault("log.format", string(defaults.Log.Format))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// APP_ENV is honored as a fallback for the environment name.
	if err := v.BindEnv("environment", EnvPrefix+"_ENVIRONMENT", "APP_ENV"); err != nil {
		return nil, "", fmt.Errorf("bind environment: %w", err)
	}

	resolvedPath := ""
	var tbl tables

	// If a config file path is forced via --config, use it exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			cause := issue.New(issue.ErrBadConfig, "config file not found").WithResource(opts.ConfigFilePath)
			return nil, "", issue.Actionable("load configuration", cause).
				On(opts.ConfigFilePath).
				Suggest("Verify the file path is correct",
					"Use 'wirehook config init' to create a default configuration")
		}
		resolvedPath = opts.ConfigFilePath
	} else if cuePath := FilePath(projectDir); fileExists(cuePath) {
		resolvedPath = cuePath
	}

	if resolvedPath != "" {
		tbl, err = loadCUEIntoViper(v, resolvedPath)
		if err != nil {
			cause := issue.New(issue.ErrBadConfig, "invalid config file").WithResource(resolvedPath).Wrap(err)
			return nil, "", issue.Actionable("load configuration", cause).
				On(resolvedPath).
				Suggest("Check that the file contains valid CUE syntax",
					"Verify the configuration values match the expected schema",
					"See 'wirehook config show' for the effective configuration")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", issue.New(issue.ErrBadConfig, "failed to parse config").Wrap(err)
	}

	cfg.PluginLocations = orEmpty(tbl.PluginLocations)
	cfg.Aliases = orEmpty(tbl.Aliases)
	cfg.PathOverrides = orEmpty(tbl.PathOverrides)
	cfg.Constants = orEmpty(tbl.Constants)
	cfg.BuildConstants = orEmpty(tbl.BuildConstants)
	cfg.ProjectDir = projectDir

	// Validate constraints that CUE cannot express.
	if ok, errs := cfg.IsValid(); !ok {
		cause := issue.New(issue.ErrBadConfig, "invalid configuration").Wrap(errs[0])
		return nil, "", issue.Actionable("validate configuration", cause).
			On(resolvedPath).
			Suggest("Ensure every plugin name is declared once",
				"Ensure no alias maps a name to itself")
	}

	return &cfg, resolvedPath, nil
}

func resolveProjectDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return abs, nil
}

// loadCUEIntoViper validates a CUE file against the #Config schema, merges
// its scalar and list fields into Viper and returns the keyed tables.
//
// The tables bypass Viper because Viper lowercases map keys, and dependency
// names are case-sensitive.
func loadCUEIntoViper(v *viper.Viper, path string) (tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tables{}, fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Unify(configSchema, data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return tables{}, err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return tables{}, cueutil.FormatError(err, path)
	}

	var tbl tables
	if err := unified.Decode(&tbl); err != nil {
		return tables{}, cueutil.FormatError(err, path)
	}

	for _, key := range tableKeys {
		delete(configMap, key)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return tables{}, fmt.Errorf("failed to merge config: %w", err)
	}

	return tbl, nil
}

func orEmpty[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return m
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefault writes a default config file into projectDir unless one
// already exists. It returns the path and whether a file was written.
func CreateDefault(projectDir string) (string, bool, error) {
	cfgPath := FilePath(projectDir)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := Save(DefaultConfig(), cfgPath); err != nil {
		return cfgPath, false, err
	}
	return cfgPath, true, nil
}

// Save writes cfg to path in CUE form.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// wirehook project configuration\n\n")

	fmt.Fprintf(&sb, "environment: %q\n", cfg.Environment)
	writeList(&sb, "", "plugins", cfg.Plugins)
	writeList(&sb, "", "plugin_paths", cfg.PluginPaths)
	writeStringTable(&sb, "plugin_locations", cfg.PluginLocations)

	sb.WriteString("\nignore: {\n")
	writeList(&sb, "\t", "prefixes", cfg.Ignore.Prefixes)
	writeList(&sb, "\t", "suffixes", cfg.Ignore.Suffixes)
	writeList(&sb, "\t", "patterns", cfg.Ignore.Patterns)
	sb.WriteString("}\n")

	writeStringTable(&sb, "aliases", cfg.Aliases)
	writeStringTable(&sb, "path_overrides", cfg.PathOverrides)
	writeValueTable(&sb, "constants", cfg.Constants)
	writeValueTable(&sb, "build_constants", cfg.BuildConstants)
	writeList(&sb, "", "wrappers", cfg.Wrappers)

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel:  %q\n", cfg.Log.Level)
	fmt.Fprintf(&sb, "\tformat: %q\n", cfg.Log.Format)
	sb.WriteString("}\n")

	return sb.String()
}

func writeList(sb *strings.Builder, indent, key string, values []string) {
	quoted := make([]string, 0, len(values))
	for _, s := range values {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	fmt.Fprintf(sb, "%s%s: [%s]\n", indent, key, strings.Join(quoted, ", "))
}

func writeStringTable(sb *strings.Builder, key string, table map[string]string) {
	if len(table) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s: {\n", key)
	for _, k := range sortedKeys(table) {
		fmt.Fprintf(sb, "\t%q: %q\n", k, table[k])
	}
	sb.WriteString("}\n")
}

func writeValueTable(sb *strings.Builder, key string, table map[string]any) {
	if len(table) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s: {\n", key)
	for _, k := range sortedKeys(table) {
		fmt.Fprintf(sb, "\t%q: %s\n", k, cueLiteral(table[k]))
	}
	sb.WriteString("}\n")
}

// cueLiteral renders a decoded config value. JSON is a subset of CUE.
func cueLiteral(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return "_"
	}
	return string(data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
