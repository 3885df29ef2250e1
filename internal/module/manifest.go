// SPDX-License-Identifier: MPL-2.0

package module

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/wirehook/wirehook/internal/cueutil"

	"gopkg.in/yaml.v3"
)

//go:embed module_schema.cue
var moduleSchema []byte

// decodeCUE validates CUE or JSON data against #Module and returns the
// top-level exports.
func decodeCUE(data []byte, filename string) (map[string]any, error) {
	return cueutil.ParseAndDecode[map[string]any](moduleSchema, data, "#Module", cueutil.WithFilename(filename))
}

// decodeYAML converts YAML to JSON and validates it like any other manifest,
// so every format shares one schema.
func decodeYAML(data []byte, filename string) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return decodeCUE(asJSON, filename)
}
