package mergeengine

import (
	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/mergeval"
)

// Parse decodes data per f into the common mergeval.Value. Calling it
// with Text is a programmer error: text content is merged as raw bytes
// and never passes through this path.
func Parse(f Format, data []byte) (mergeval.Value, error) {
	switch f {
	case Json:
		return parseJSON(data)
	case Yaml:
		return parseYAML(data)
	case Toml:
		return parseTOML(data)
	case Ini:
		return parseINI(data)
	default:
		return mergeval.Value{}, jinerr.New(jinerr.KindConfig, "Parse called with Text format")
	}
}

// Serialize renders v back to bytes per f.
func Serialize(f Format, v mergeval.Value) ([]byte, error) {
	switch f {
	case Json:
		return serializeJSON(v)
	case Yaml:
		return serializeYAML(v)
	case Toml:
		return serializeTOML(v)
	case Ini:
		return serializeINI(v)
	default:
		return nil, jinerr.New(jinerr.KindConfig, "Serialize called with Text format")
	}
}
