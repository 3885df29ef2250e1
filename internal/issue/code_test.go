// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Is(t *testing.T) {
	t.Parallel()

	cause := errors.New("permission denied")
	err := New(ErrBadPluginDir, "cannot list %s", "routes").Wrap(cause)
	wrapped := fmt.Errorf("gather: %w", err)

	if !errors.Is(wrapped, ErrBadPluginDir) {
		t.Error("errors.Is(wrapped, ErrBadPluginDir) = false, want true")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is(wrapped, cause) = false, want true")
	}
	if errors.Is(wrapped, ErrBadPlugin) {
		t.Error("errors.Is(wrapped, ErrBadPlugin) = true, want false")
	}
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "code only",
			err:  &Error{Code: ErrBadConfig},
			want: "E_BAD_CONFIG",
		},
		{
			name: "message and resource",
			err:  New(ErrUnmatchedDependency, "no module provides %q", "db").WithResource("db"),
			want: `E_UNMATCHED_DEPENDENCY: no module provides "db" (db)`,
		},
		{
			name: "with cause",
			err:  New(ErrModuleLoad, "cannot load").Wrap(errors.New("bad syntax")),
			want: "E_MODULE_LOAD: cannot load: bad syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Detail(t *testing.T) {
	t.Parallel()

	err := New(ErrUnmatchedDependency, "no module provides %q", "db").
		WithAttempts("/p/services/db.cue", "/q/services/db.cue").
		WithParam("name", "db").
		Wrap(errors.New("not found"))

	short := err.Detail(false)
	if !strings.Contains(short, "  - /p/services/db.cue\n  - /q/services/db.cue") {
		t.Errorf("Detail(false) should list attempts in order, got:\n%s", short)
	}
	if strings.Contains(short, "Params:") {
		t.Errorf("Detail(false) should not include params, got:\n%s", short)
	}

	long := err.Detail(true)
	if !strings.Contains(long, "name: db") {
		t.Errorf("Detail(true) should include params, got:\n%s", long)
	}
	if !strings.Contains(long, "1. not found") {
		t.Errorf("Detail(true) should include the error chain, got:\n%s", long)
	}
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	if got := CodeOf(fmt.Errorf("x: %w", New(ErrBadModule, "bad"))); got != ErrBadModule {
		t.Errorf("CodeOf(coded) = %q, want %q", got, ErrBadModule)
	}
	if got := CodeOf(fmt.Errorf("x: %w", ErrCircularDependency)); got != ErrCircularDependency {
		t.Errorf("CodeOf(bare code) = %q, want %q", got, ErrCircularDependency)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestAttemptsOf(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", New(ErrBadPlugin, "missing").WithAttempts("a", "b"))
	got := AttemptsOf(err)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("AttemptsOf() = %v, want [a b]", got)
	}
	if AttemptsOf(errors.New("plain")) != nil {
		t.Error("AttemptsOf(plain) should be nil")
	}
}
