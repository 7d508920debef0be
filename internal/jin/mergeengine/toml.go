package mergeengine

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/mergeval"
)

// parseTOML decodes data with BurntSushi/toml into a generic map, then
// recovers key order from the returned MetaData.Keys() walk —
// BurntSushi/toml does not preserve order through a bare Decode into a
// map, but its metadata keys are emitted in file order.
func parseTOML(data []byte) (mergeval.Value, error) {
	var raw map[string]interface{}
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return mergeval.Value{}, jinerr.Wrap(jinerr.KindParse, "parse toml", err)
	}

	root := mergeval.NewObject()
	seeded := map[string]bool{}
	for _, key := range meta.Keys() {
		parts := key
		cur := root
		for i, part := range parts {
			last := i == len(parts)-1
			path := strings.Join(parts[:i+1], ".")
			if last {
				v, ok := lookupTOML(raw, parts)
				if !ok {
					continue
				}
				cur.Set(part, tomlRawToValue(v))
				continue
			}
			if seeded[path] {
				// descend into the existing nested object
				existing, _ := cur.Get(part)
				if existing.Kind == mergeval.KindObject {
					cur = existing.Object
				}
				continue
			}
			seeded[path] = true
			child := mergeval.NewObject()
			cur.Set(part, mergeval.Obj(child))
			cur = child
		}
	}
	return mergeval.Obj(root), nil
}

func lookupTOML(raw map[string]interface{}, keyPath []string) (interface{}, bool) {
	var cur interface{} = raw
	for _, part := range keyPath {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func tomlRawToValue(v interface{}) mergeval.Value {
	switch t := v.(type) {
	case nil:
		return mergeval.Null()
	case bool:
		return mergeval.Bool(t)
	case string:
		return mergeval.String(t)
	case int64:
		return mergeval.Number(strconv.FormatInt(t, 10))
	case float64:
		s := strconv.FormatFloat(t, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0" // keep a whole-valued float from reading back as an integer
		}
		return mergeval.Number(s)
	case []interface{}:
		items := make([]mergeval.Value, 0, len(t))
		for _, e := range t {
			items = append(items, tomlRawToValue(e))
		}
		return mergeval.Value{Kind: mergeval.KindArray, Array: items}
	case map[string]interface{}:
		obj := mergeval.NewObject()
		for k, e := range t {
			obj.Set(k, tomlRawToValue(e))
		}
		return mergeval.Obj(obj)
	default:
		return mergeval.String(fmt.Sprintf("%v", t))
	}
}

// serializeTOML renders v back to TOML text, preserving object key
// order directly (unlike decode, encoding walks the ordered Object so
// no metadata trick is needed).
func serializeTOML(v mergeval.Value) ([]byte, error) {
	if v.Kind != mergeval.KindObject {
		return nil, jinerr.New(jinerr.KindParse, "toml root must be a table")
	}
	var buf bytes.Buffer
	if err := writeTOMLTable(&buf, v.Object, nil); err != nil {
		return nil, jinerr.Wrap(jinerr.KindIO, "serialize toml", err)
	}
	return buf.Bytes(), nil
}

func writeTOMLTable(buf *bytes.Buffer, obj *mergeval.Object, path []string) error {
	var subtables []string
	for _, k := range obj.Keys() {
		val, _ := obj.Get(k)
		if val.Kind == mergeval.KindObject {
			subtables = append(subtables, k)
			continue
		}
		fmt.Fprintf(buf, "%s = %s\n", k, tomlScalarLiteral(val))
	}
	for _, k := range subtables {
		val, _ := obj.Get(k)
		childPath := append(append([]string{}, path...), k)
		fmt.Fprintf(buf, "\n[%s]\n", strings.Join(childPath, "."))
		if err := writeTOMLTable(buf, val.Object, childPath); err != nil {
			return err
		}
	}
	return nil
}

func tomlScalarLiteral(v mergeval.Value) string {
	switch v.Kind {
	case mergeval.KindNull:
		return `""`
	case mergeval.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case mergeval.KindNumber:
		return v.Number
	case mergeval.KindString:
		return strconv.Quote(v.String)
	case mergeval.KindArray:
		parts := make([]string, len(v.Array))
		for i, e := range v.Array {
			parts[i] = tomlScalarLiteral(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return `""`
	}
}
