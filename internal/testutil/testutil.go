// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// MemFs returns an in-memory filesystem holding files, keyed by absolute
// path, and the empty directories dirs. The test fails immediately on any
// write error.
func MemFs(t testing.TB, files map[string]string, dirs ...string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		MustWriteFile(t, fsys, path, content)
	}
	for _, d := range dirs {
		if err := fsys.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("failed to create directory %s: %v", d, err)
		}
	}
	return fsys
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t testing.TB, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteTree writes files below dir on the real filesystem. Keys are
// slash-separated paths relative to dir.
func WriteTree(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// Logger returns a debug level logger and the buffer it writes to.
func Logger() (*log.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel}), buf
}
