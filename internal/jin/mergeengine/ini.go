package mergeengine

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/mergeval"
)

// parseINI reads an INI document into a two-level mergeval.Object: top
// level keys are section names (the implicit top section is keyed
// ""), each mapping to an object of key=value string pairs. No INI
// library appears anywhere in the retrieved corpus, so this is a small
// line-oriented reader over bufio.Scanner, in the same spirit as the
// line-oriented file parsers the rest of the codebase hand-rolls for
// formats with no ecosystem library. Order is free: line order is
// preserved by construction since sections/keys are appended as seen.
func parseINI(data []byte) (mergeval.Value, error) {
	root := mergeval.NewObject()
	section := mergeval.NewObject()
	root.Set("", mergeval.Obj(section))

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return mergeval.Value{}, jinerr.Newf(jinerr.KindParse, "ini line %d: malformed section header", lineNo)
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			existing, ok := root.Get(name)
			if ok && existing.Kind == mergeval.KindObject {
				section = existing.Object
			} else {
				section = mergeval.NewObject()
				root.Set(name, mergeval.Obj(section))
			}
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return mergeval.Value{}, jinerr.Newf(jinerr.KindParse, "ini line %d: expected key=value", lineNo)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		section.Set(key, mergeval.String(val))
	}
	if err := scanner.Err(); err != nil {
		return mergeval.Value{}, jinerr.Wrap(jinerr.KindParse, "scan ini", err)
	}
	return mergeval.Obj(root), nil
}

// serializeINI renders v (the two-level object parseINI produces) back
// to INI text, top (unnamed) section first.
func serializeINI(v mergeval.Value) ([]byte, error) {
	if v.Kind != mergeval.KindObject {
		return nil, jinerr.New(jinerr.KindParse, "ini root must be a section map")
	}
	var buf bytes.Buffer

	writeSection := func(name string, sec *mergeval.Object) {
		if name != "" {
			fmt.Fprintf(&buf, "[%s]\n", name)
		}
		for _, k := range sec.Keys() {
			val, _ := sec.Get(k)
			fmt.Fprintf(&buf, "%s = %s\n", k, iniScalarLiteral(val))
		}
	}

	if top, ok := v.Object.Get(""); ok && top.Kind == mergeval.KindObject {
		writeSection("", top.Object)
	}
	for _, name := range v.Object.Keys() {
		if name == "" {
			continue
		}
		val, _ := v.Object.Get(name)
		if val.Kind != mergeval.KindObject {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		writeSection(name, val.Object)
	}
	return buf.Bytes(), nil
}

func iniScalarLiteral(v mergeval.Value) string {
	switch v.Kind {
	case mergeval.KindString:
		return v.String
	case mergeval.KindNumber:
		return v.Number
	case mergeval.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case mergeval.KindNull:
		return ""
	default:
		return ""
	}
}
