// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestRun_ArgsAndEnv(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	code, err := Run(context.Background(), `echo "$1 $2 $WIREHOOK_ARG_NAME"`, Options{
		Env:    map[string]string{ArgEnvName("name"): "world"},
		Params: []string{"-v", "hello"},
		Stdout: &stdout,
		Stderr: &stdout,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !code.IsSuccess() {
		t.Errorf("code = %d, want 0", code)
	}
	if got, want := strings.TrimSpace(stdout.String()), "-v hello world"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_WorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var stdout bytes.Buffer
	if _, err := Run(context.Background(), `pwd`, Options{Dir: dir, Stdout: &stdout}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != dir {
		t.Errorf("pwd = %q, want %q", got, dir)
	}
}

func TestRun_ExitStatus(t *testing.T) {
	t.Parallel()

	code, err := Run(context.Background(), `exit 3`, Options{})
	if code != 3 {
		t.Errorf("code = %d, want 3", code)
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Errorf("Run() error = %v, want *ExitError with code 3", err)
	}
	if !errors.Is(err, ErrNonZeroExit) {
		t.Error("error does not wrap ErrNonZeroExit")
	}
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	if _, err := Run(context.Background(), `if then fi (`, Options{Name: "broken"}); err == nil {
		t.Fatal("Run() error = nil, want parse error")
	}
	if err := Validate(`echo ok`, "ok"); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := Validate(`echo "unterminated`, "bad"); err == nil {
		t.Error("Validate() error = nil, want parse error")
	}
}

func TestArgEnvName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"name":    "WIREHOOK_ARG_NAME",
		"dry-run": "WIREHOOK_ARG_DRY_RUN",
		"log.dir": "WIREHOOK_ARG_LOG_DIR",
	}
	for in, want := range tests {
		if got := ArgEnvName(in); got != want {
			t.Errorf("ArgEnvName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilterArgVars(t *testing.T) {
	t.Parallel()

	got := FilterArgVars([]string{"PATH=/bin", "WIREHOOK_ARG_NAME=x", "WIREHOOK_ENVIRONMENT=test", "MALFORMED"})
	want := []string{"PATH=/bin", "WIREHOOK_ENVIRONMENT=test", "MALFORMED"}
	if !slices.Equal(got, want) {
		t.Errorf("FilterArgVars() = %v, want %v", got, want)
	}
}
