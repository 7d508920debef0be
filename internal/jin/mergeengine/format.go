// Package mergeengine is the hardest subsystem in Jin (§4.3, C3): it
// merges file content drawn from multiple layers into a single
// materialized result for the workspace. It handles structured
// deep-merge, keyed-array unification, 3-way text merge, and the
// .jinmerge conflict file format.
package mergeengine

import (
	"path/filepath"
	"strings"
)

// Format is the closed enum of file formats the engine understands.
// Adding a format means a new variant plus a parser/serializer pair —
// format handlers are selected by a switch, not a plugin registry
// (spec.md §9 "Dynamic dispatch").
type Format int

const (
	Text Format = iota
	Json
	Yaml
	Toml
	Ini
)

func (f Format) String() string {
	switch f {
	case Json:
		return "json"
	case Yaml:
		return "yaml"
	case Toml:
		return "toml"
	case Ini:
		return "ini"
	default:
		return "text"
	}
}

// DetectFormat classifies path by extension, case-insensitively, per
// spec.md §4.3.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return Json
	case ".yaml", ".yml":
		return Yaml
	case ".toml":
		return Toml
	case ".ini", ".cfg", ".conf":
		return Ini
	default:
		return Text
	}
}

// IsStructured reports whether f parses into mergeval.Value (as opposed
// to Text, which is merged as raw bytes/lines).
func (f Format) IsStructured() bool {
	return f != Text
}
