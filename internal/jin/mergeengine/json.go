package mergeengine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/mergeval"
)

// parseJSON decodes data into a mergeval.Value. A plain json.Unmarshal
// into map[string]interface{} would lose the key order the deep merge
// in spec.md §4.3 has to preserve ("preserve base key order, append new
// overlay keys"), so the decoder is driven token-by-token instead.
func parseJSON(data []byte) (mergeval.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return mergeval.Value{}, jinerr.Wrap(jinerr.KindParse, "parse json", err)
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (mergeval.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return mergeval.Value{}, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (mergeval.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := mergeval.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return mergeval.Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return mergeval.Value{}, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return mergeval.Value{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return mergeval.Value{}, err
			}
			return mergeval.Obj(obj), nil
		case '[':
			var items []mergeval.Value
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return mergeval.Value{}, err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return mergeval.Value{}, err
			}
			return mergeval.Value{Kind: mergeval.KindArray, Array: items}, nil
		default:
			return mergeval.Value{}, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		return mergeval.Number(t.String()), nil
	case string:
		return mergeval.String(t), nil
	case bool:
		return mergeval.Bool(t), nil
	case nil:
		return mergeval.Null(), nil
	default:
		return mergeval.Value{}, fmt.Errorf("unexpected json token %v (%T)", tok, tok)
	}
}

// serializeJSON renders v back to indented JSON, preserving object key
// order.
func serializeJSON(v mergeval.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONValue(&buf, v, 0); err != nil {
		return nil, jinerr.Wrap(jinerr.KindIO, "serialize json", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, v mergeval.Value, indent int) error {
	pad := bytes.Repeat([]byte("  "), indent)
	childPad := bytes.Repeat([]byte("  "), indent+1)
	switch v.Kind {
	case mergeval.KindNull:
		buf.WriteString("null")
	case mergeval.KindBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case mergeval.KindNumber:
		buf.WriteString(v.Number)
	case mergeval.KindString:
		enc, err := json.Marshal(v.String)
		if err != nil {
			return err
		}
		buf.Write(enc)
	case mergeval.KindArray:
		if len(v.Array) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, e := range v.Array {
			buf.Write(childPad)
			if err := writeJSONValue(buf, e, indent+1); err != nil {
				return err
			}
			if i < len(v.Array)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.Write(pad)
		buf.WriteByte(']')
	case mergeval.KindObject:
		keys := v.Object.Keys()
		if len(keys) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, k := range keys {
			val, _ := v.Object.Get(k)
			buf.Write(childPad)
			keyEnc, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyEnc)
			buf.WriteString(": ")
			if err := writeJSONValue(buf, val, indent+1); err != nil {
				return err
			}
			if i < len(keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.Write(pad)
		buf.WriteByte('}')
	}
	return nil
}
