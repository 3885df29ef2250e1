// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Item: {
	name:  string & !=""
	count: int & >=0 | *1
	tags?: [...string]
}
`

type testItem struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	item, err := ParseAndDecode[testItem]([]byte(testSchema), []byte(`name: "ping", tags: ["a"]`), "#Item")
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if item.Name != "ping" {
		t.Errorf("Name = %q, want ping", item.Name)
	}
	if item.Count != 1 {
		t.Errorf("Count = %d, want default 1", item.Count)
	}
	if len(item.Tags) != 1 || item.Tags[0] != "a" {
		t.Errorf("Tags = %v, want [a]", item.Tags)
	}
}

func TestUnify_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		wantMsg string
	}{
		{
			name:    "constraint violation carries path",
			data:    `name: "x", count: -1`,
			opts:    []Option{WithFilename("item.cue")},
			wantMsg: "item.cue: count",
		},
		{
			name:    "incomplete when concrete",
			data:    `count: 2`,
			opts:    []Option{WithFilename("item.cue")},
			wantMsg: "name",
		},
		{
			name:    "syntax error",
			data:    `name: `,
			opts:    []Option{WithFilename("broken.cue")},
			wantMsg: "broken.cue",
		},
		{
			name:    "file too large",
			data:    `name: "abcdefghijklmnop"`,
			opts:    []Option{WithFilename("big.cue"), WithMaxFileSize(4)},
			wantMsg: "exceeds maximum",
		},
		{
			name:    "default filename",
			data:    `name: 1`,
			wantMsg: "<input>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Unify([]byte(testSchema), []byte(tt.data), "#Item", tt.opts...)
			if err == nil {
				t.Fatal("Unify() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Unify() error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestUnify_NonConcrete(t *testing.T) {
	t.Parallel()

	_, err := Unify([]byte(testSchema), []byte(`count: 2`), "#Item", WithConcrete(false))
	if err != nil {
		t.Errorf("Unify(concrete=false) error = %v, want nil", err)
	}
}

func TestUnify_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := Unify([]byte(testSchema), []byte(`name: "x"`), "#Missing")
	if err == nil || !strings.Contains(err.Error(), "#Missing") {
		t.Errorf("Unify() error = %v, want missing definition error", err)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if err := FormatError(nil, "test.cue"); err != nil {
		t.Errorf("FormatError(nil) = %v, want nil", err)
	}

	err := FormatError(errors.New("some error"), "test.cue")
	if got, want := err.Error(), "test.cue: some error"; got != want {
		t.Errorf("FormatError() = %q, want %q", got, want)
	}
}

func TestJSONPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"name"}, "name"},
		{[]string{"definition", "operation", "operationId"}, "definition.operation.operationId"},
		{[]string{"inject", "0"}, "inject[0]"},
		{[]string{"arguments", "1", "name"}, "arguments[1].name"},
	}

	for _, tt := range tests {
		if got := jsonPath(tt.path); got != tt.want {
			t.Errorf("jsonPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParseAndDecode_Map(t *testing.T) {
	t.Parallel()

	m, err := ParseAndDecode[map[string]any]([]byte(testSchema), []byte(`name: "ping"`), "#Item", WithFilename("m.cue"))
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if m["name"] != "ping" {
		t.Errorf("name = %v, want ping", m["name"])
	}
}
