// SPDX-License-Identifier: MPL-2.0

package gather

import (
	"strings"

	"github.com/wirehook/wirehook/internal/config"

	"github.com/bmatcuk/doublestar/v4"
)

// Ignore decides which directory entries are not module candidates.
type Ignore struct {
	prefixes []string
	suffixes []string
	patterns []string
}

// NewIgnore builds the rules from configuration.
func NewIgnore(cfg config.IgnoreConfig) Ignore {
	return Ignore{
		prefixes: cfg.Prefixes,
		suffixes: cfg.Suffixes,
		patterns: cfg.Patterns,
	}
}

// Match reports whether fileName is ignored and which rule matched.
func (i Ignore) Match(fileName string) (bool, string) {
	for _, p := range i.prefixes {
		if strings.HasPrefix(fileName, p) {
			return true, "prefix " + p
		}
	}
	for _, s := range i.suffixes {
		if strings.HasSuffix(fileName, s) {
			return true, "suffix " + s
		}
	}
	for _, pattern := range i.patterns {
		if ok, _ := doublestar.Match(pattern, fileName); ok {
			return true, "pattern " + pattern
		}
	}
	return false, ""
}
