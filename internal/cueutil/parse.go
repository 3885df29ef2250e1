// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// MaxFileSize is the largest input accepted unless WithMaxFileSize says
// otherwise.
const MaxFileSize int64 = 5 << 20

type (
	// Option configures Unify and ParseAndDecode.
	Option func(*settings)

	settings struct {
		maxSize  int64
		concrete bool
		filename string
	}
)

// WithMaxFileSize bounds the input size in bytes.
func WithMaxFileSize(size int64) Option {
	return func(s *settings) { s.maxSize = size }
}

// WithConcrete controls whether every field must be concrete after
// unification. Config files pass false since all their fields are optional.
func WithConcrete(concrete bool) Option {
	return func(s *settings) { s.concrete = concrete }
}

// WithFilename names the input in error messages.
func WithFilename(name string) Option {
	return func(s *settings) { s.filename = name }
}

func apply(opts []Option) settings {
	s := settings{maxSize: MaxFileSize, concrete: true, filename: "<input>"}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Unify compiles data, unifies it with the schema definition at schemaPath
// and validates the result.
func Unify(schema, data []byte, schemaPath string, opts ...Option) (cue.Value, error) {
	s := apply(opts)
	if size := int64(len(data)); size > s.maxSize {
		return cue.Value{}, fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", s.filename, size, s.maxSize)
	}

	ctx := cuecontext.New()
	def := ctx.CompileBytes(schema).LookupPath(cue.ParsePath(schemaPath))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("schema definition %s: %w", schemaPath, err)
	}

	input := ctx.CompileBytes(data, cue.Filename(s.filename))
	if err := input.Err(); err != nil {
		return cue.Value{}, FormatError(err, s.filename)
	}

	unified := def.Unify(input)
	if err := unified.Validate(cue.Concrete(s.concrete)); err != nil {
		return cue.Value{}, FormatError(err, s.filename)
	}
	return unified, nil
}

// ParseAndDecode unifies data with the schema and decodes the result into
// a T.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (T, error) {
	var out T
	unified, err := Unify(schema, data, schemaPath, opts...)
	if err != nil {
		return out, err
	}
	if err := unified.Decode(&out); err != nil {
		return out, FormatError(err, apply(opts).filename)
	}
	return out, nil
}
