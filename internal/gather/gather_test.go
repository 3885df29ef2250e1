// SPDX-License-Identifier: MPL-2.0

package gather

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/wirehook/wirehook/internal/config"
	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/module"
	"github.com/wirehook/wirehook/internal/plugin"
	"github.com/wirehook/wirehook/internal/testutil"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type fixture struct {
	fs      afero.Fs
	cache   *module.Cache
	plugins []plugin.Descriptor
	logs    *bytes.Buffer
	logger  *log.Logger
}

func newFixture(t *testing.T, files map[string]string, pluginNames ...string) *fixture {
	t.Helper()

	plugins := []plugin.Descriptor{{Name: plugin.ProjectName, Rank: 0, Base: "/proj", Capabilities: plugin.Categories()}}
	for i, name := range pluginNames {
		plugins = append(plugins, plugin.Descriptor{
			Name:         name,
			Rank:         i + 1,
			Base:         "/proj/plugins/" + name,
			Capabilities: plugin.Categories(),
		})
	}
	bases := make([]string, 0, len(plugins))
	for _, p := range plugins {
		bases = append(bases, p.Base)
	}
	fsys := testutil.MemFs(t, files, bases...)

	catalog := module.NewCatalog()
	for _, name := range []string{"getPing", "getUser", "getHealth", "db"} {
		catalog.MustRegister(name, module.Func(module.KindService, nil, func(context.Context, map[string]any) (any, error) {
			return name, nil
		}))
	}

	logger, logs := testutil.Logger()
	return &fixture{
		fs:      fsys,
		cache:   module.NewCache(module.NewFileLoader(fsys, catalog)),
		plugins: plugins,
		logs:    logs,
		logger:  logger,
	}
}

func (f *fixture) gatherer(env string, opts ...Option) *Gatherer {
	opts = append([]Option{WithLogger(f.logger), WithIgnore(NewIgnore(config.DefaultConfig().Ignore))}, opts...)
	return New(f.fs, f.cache, env, opts...)
}

func handler(op string) string {
	return `{"definition": {"method": "get", "path": "/` + op + `", "operation": {"operationId": "` + op + `"}}}`
}

func TestGather_ShadowingScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		"/proj/handlers/getPing.cue":                   `definition: operation: operationId: "getPing"`,
		"/proj/plugins/@pluginA/handlers/getPing.json": handler("getPing"),
		"/proj/plugins/@pluginA/handlers/getUser.json": handler("getUser"),
	}, "@pluginA")

	reg, err := f.gatherer("development").Gather(context.Background(), plugin.Handler, f.plugins)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	if !slices.Equal(reg.Names, []string{"getPing", "getUser"}) {
		t.Fatalf("Names = %v, want [getPing getUser]", reg.Names)
	}
	if got := reg.Modules["getPing"].Plugin.Name; got != plugin.ProjectName {
		t.Errorf("getPing from %q, want project", got)
	}
	if got := reg.Modules["getUser"].Plugin.Name; got != "@pluginA" {
		t.Errorf("getUser from %q, want @pluginA", got)
	}

	if !strings.Contains(f.logs.String(), "skipped getPing.json since already loaded upstream") {
		t.Errorf("missing shadow log, got:\n%s", f.logs.String())
	}
	if f.cache.Loaded("/proj/plugins/@pluginA/handlers/getPing.json") {
		t.Error("shadowed module was loaded")
	}
	if f.cache.Loads() != 2 {
		t.Errorf("Loads() = %d, want 2", f.cache.Loads())
	}
	if len(reg.Shadowed) != 1 || reg.Shadowed[0].By != plugin.ProjectName {
		t.Errorf("Shadowed = %+v", reg.Shadowed)
	}
}

func TestGather_ShadowedBrokenModuleIsNeverLoaded(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		"/proj/services/db.cue":            `factory: "db"`,
		"/proj/plugins/p1/services/db.cue": `this is not cue`,
	}, "p1")

	reg, err := f.gatherer("development").Gather(context.Background(), plugin.Service, f.plugins)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if reg.Modules["db"].Plugin.Name != plugin.ProjectName {
		t.Errorf("db from %q, want project", reg.Modules["db"].Plugin.Name)
	}
}

func TestGather_EnvironmentGate(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"/proj/handlers/getHealth.cue": `definition: config: environments: ["dev"]`,
		"/proj/handlers/getPing.cue":   `definition: config: environments: "all"`,
	}

	t.Run("excluded in test", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, files)
		reg, err := f.gatherer("test").Gather(context.Background(), plugin.Handler, f.plugins)
		if err != nil {
			t.Fatalf("Gather() error = %v", err)
		}
		if _, ok := reg.Lookup("getHealth"); ok {
			t.Error("getHealth present in test environment")
		}
		if _, ok := reg.Lookup("getPing"); !ok {
			t.Error("getPing missing")
		}
		if !strings.Contains(f.logs.String(), "excluded handlers/getHealth.cue") ||
			!strings.Contains(f.logs.String(), `disabled in environment "test"`) {
			t.Errorf("missing exclusion log, got:\n%s", f.logs.String())
		}
		if len(reg.Excluded) != 1 || reg.Excluded[0].Name != "getHealth" {
			t.Errorf("Excluded = %+v", reg.Excluded)
		}
	})

	t.Run("included in dev", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, files)
		reg, err := f.gatherer("dev").Gather(context.Background(), plugin.Handler, f.plugins)
		if err != nil {
			t.Fatalf("Gather() error = %v", err)
		}
		if _, ok := reg.Lookup("getHealth"); !ok {
			t.Error("getHealth missing in dev environment")
		}
	})
}

func TestGather_ExcludedModuleDoesNotClaimName(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		"/proj/handlers/getHealth.cue":            `definition: config: environments: ["prod"]`,
		"/proj/plugins/p1/handlers/getHealth.cue": `definition: path: "/health"`,
	}, "p1")

	reg, err := f.gatherer("test").Gather(context.Background(), plugin.Handler, f.plugins)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	desc, ok := reg.Lookup("getHealth")
	if !ok || desc.Plugin.Name != "p1" {
		t.Errorf("getHealth = %+v, want module from p1", desc)
	}
}

func TestGather_Predicate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		"/proj/handlers/getPing.cue": `definition: tags: ["internal"]`,
		"/proj/handlers/getUser.cue": `definition: tags: ["public"]`,
	})

	onlyPublic := func(d *module.Descriptor) bool {
		tags, _ := d.Definition["tags"].([]any)
		return slices.Contains(tags, any("public"))
	}

	reg, err := f.gatherer("development", WithPredicate(plugin.Handler, onlyPublic)).
		Gather(context.Background(), plugin.Handler, f.plugins)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if !slices.Equal(reg.Names, []string{"getUser"}) {
		t.Errorf("Names = %v, want [getUser]", reg.Names)
	}
	if !strings.Contains(f.logs.String(), "rejected by predicate") {
		t.Errorf("missing predicate log, got:\n%s", f.logs.String())
	}
}

func TestGather_IgnoreAndNormalization(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		"/proj/services/db.cue":          `factory: "db"`,
		"/proj/services/db.yaml":         `factory: nope`,
		"/proj/services/db_test.cue":     `broken`,
		"/proj/services/.hidden.cue":     `broken`,
		"/proj/services/db.cue.map":      `broken`,
		"/proj/services/types.d.cue":     `broken`,
		"/proj/services/README.md":       `docs`,
		"/proj/services/nested/x.cue":    `broken`,
		"/proj/services/getUser.test.go": `broken`,
	})

	reg, err := f.gatherer("development").Gather(context.Background(), plugin.Service, f.plugins)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if !slices.Equal(reg.Names, []string{"db"}) {
		t.Fatalf("Names = %v, want [db]", reg.Names)
	}
	if got := reg.Modules["db"].Location; got != "/proj/services/db.cue" {
		t.Errorf("db location = %q, want the .cue file", got)
	}
	if f.cache.Loads() != 1 {
		t.Errorf("Loads() = %d, want 1", f.cache.Loads())
	}
}

func TestGather_DirectoryErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing category directory is empty", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil, "p1")
		reg, err := f.gatherer("development").Gather(context.Background(), plugin.Command, f.plugins)
		if err != nil {
			t.Fatalf("Gather() error = %v", err)
		}
		if len(reg.Names) != 0 {
			t.Errorf("Names = %v, want empty", reg.Names)
		}
	})

	t.Run("missing plugin root is fatal", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil)
		plugins := append(slices.Clone(f.plugins), plugin.Descriptor{
			Name: "ghost", Rank: 1, Base: "/nowhere", Capabilities: plugin.Categories(),
		})
		reg, err := f.gatherer("development").Gather(context.Background(), plugin.Service, plugins)
		if reg != nil {
			t.Error("partial registry returned")
		}
		if !errors.Is(err, issue.ErrBadPluginDir) {
			t.Errorf("Gather() error = %v, want E_BAD_PLUGIN_DIR", err)
		}
	})
}

func TestGather_LoadErrorIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		"/proj/handlers/getPing.cue": `factory: "getPing"`,
	})

	reg, err := f.gatherer("development").Gather(context.Background(), plugin.Handler, f.plugins)
	if reg != nil {
		t.Error("partial registry returned")
	}
	if !errors.Is(err, issue.ErrNoDefinition) {
		t.Errorf("Gather() error = %v, want E_NO_DEFINITION", err)
	}
}

func TestGather_Capabilities(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		"/proj/plugins/p1/services/db.cue": `factory: "db"`,
	}, "p1")
	f.plugins[1].Capabilities = []plugin.Category{plugin.Handler}

	reg, err := f.gatherer("development").Gather(context.Background(), plugin.Service, f.plugins)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(reg.Names) != 0 {
		t.Errorf("Names = %v, want none from a plugin without the service category", reg.Names)
	}
}

func TestGather_AsideLastWriteWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		"/proj/routes/getPing.cue": `
definition: path: "/ping"
factory: "getPing"
pingSchema: {name: "Ping", type: "object"}
`,
		"/proj/plugins/p1/routes/getUser.cue": `
definition: path: "/user"
factory: "getUser"
otherSchema: {name: "Ping", type: "string"}
`,
	}, "p1")

	reg, err := f.gatherer("development").Gather(context.Background(), plugin.Route, f.plugins)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	got, ok := reg.Component(module.AsideSchema, "Ping")
	if !ok {
		t.Fatal("Ping schema missing")
	}
	if got.Value["type"] != "string" {
		t.Errorf("Ping schema = %v, want the later module's value", got.Value)
	}
	if !strings.Contains(f.logs.String(), "aside component overridden") {
		t.Errorf("missing override diagnostic, got:\n%s", f.logs.String())
	}
}

func TestGather_Deterministic(t *testing.T) {
	t.Parallel()

	files := map[string]string{}
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, n := range names {
		files["/proj/plugins/p1/services/"+n+".cue"] = `value: "p1"`
		files["/proj/plugins/p2/services/"+n+".cue"] = `value: "p2"`
	}

	for range 5 {
		f := newFixture(t, files, "p1", "p2")
		reg, err := f.gatherer("development").Gather(context.Background(), plugin.Service, f.plugins)
		if err != nil {
			t.Fatalf("Gather() error = %v", err)
		}
		for _, n := range names {
			if got := reg.Modules[n].Initializer.Value; got != "p1" {
				t.Fatalf("%s = %v, want p1", n, got)
			}
		}
		if f.cache.Loads() != len(names) {
			t.Fatalf("Loads() = %d, want %d", f.cache.Loads(), len(names))
		}
	}
}

func TestSet_GathersOncePerCategory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		"/proj/services/db.cue": `factory: "db"`,
	})

	var gathers int
	counting := module.LoaderFunc(func(ctx context.Context, src module.Source) (*module.Descriptor, error) {
		gathers++
		return f.cache.Load(ctx, src)
	})
	set := NewSet(New(f.fs, counting, "development"), f.plugins)

	first, err := set.Get(context.Background(), plugin.Service)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, _ := set.Get(context.Background(), plugin.Service)
	if first != second {
		t.Error("Get() returned a different registry on the second call")
	}
	if gathers != 1 {
		t.Errorf("loader calls = %d, want 1", gathers)
	}
	if len(set.Plugins()) != 1 {
		t.Errorf("Plugins() = %v", set.Plugins())
	}
}

func TestIgnore_Match(t *testing.T) {
	t.Parallel()

	ig := NewIgnore(config.DefaultConfig().Ignore)
	tests := map[string]bool{
		"getPing.cue":      false,
		"getPing_test.go":  true,
		"getPing.test.cue": true,
		"api.d.cue":        true,
		"bundle.json.map":  true,
		".env.cue":         true,
	}
	for file, want := range tests {
		if got, rule := ig.Match(file); got != want {
			t.Errorf("Match(%q) = %v (%s), want %v", file, got, rule, want)
		}
	}
}
