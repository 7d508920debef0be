package mergeengine

import (
	"testing"

	"github.com/jinvcs/jin/internal/jin/mergeval"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path string
		want Format
	}{
		{"config.json", Json},
		{"config.JSON", Json},
		{"values.yaml", Yaml},
		{"values.yml", Yaml},
		{"Cargo.toml", Toml},
		{"settings.ini", Ini},
		{"settings.cfg", Ini},
		{"settings.conf", Ini},
		{"README.md", Text},
		{"noext", Text},
	}
	for _, tc := range cases {
		if got := DetectFormat(tc.path); got != tc.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestFormatIsStructured(t *testing.T) {
	if Text.IsStructured() {
		t.Error("Text.IsStructured() = true, want false")
	}
	for _, f := range []Format{Json, Yaml, Toml, Ini} {
		if !f.IsStructured() {
			t.Errorf("%v.IsStructured() = false, want true", f)
		}
	}
}

func TestFormatString(t *testing.T) {
	cases := map[Format]string{Json: "json", Yaml: "yaml", Toml: "toml", Ini: "ini", Text: "text"}
	for f, want := range cases {
		if got := f.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", int(f), got, want)
		}
	}
}

func TestParseSerializeJSONRoundTrip(t *testing.T) {
	data := []byte(`{"name":"jin","port":8080,"enabled":true,"tags":["a","b"],"meta":null}`)
	v, err := Parse(Json, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Serialize(Json, v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	v2, err := Parse(Json, out)
	if err != nil {
		t.Fatalf("re-Parse serialized output: %v", err)
	}
	name, _ := v2.Object.Get("name")
	if name.String != "jin" {
		t.Errorf("name = %v, want jin", name)
	}
	port, _ := v2.Object.Get("port")
	if port.Number != "8080" {
		t.Errorf("port = %v, want 8080", port.Number)
	}
	tags, _ := v2.Object.Get("tags")
	if len(tags.Array) != 2 || tags.Array[0].String != "a" {
		t.Errorf("tags = %v, want [a b]", tags.Array)
	}
}

func TestParseJSONPreservesKeyOrder(t *testing.T) {
	v, err := Parse(Json, []byte(`{"z":1,"a":2,"m":3}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"z", "a", "m"}
	keys := v.Object.Keys()
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], k)
		}
	}
}

func TestParseJSONMalformedIsError(t *testing.T) {
	if _, err := Parse(Json, []byte(`{not json`)); err == nil {
		t.Fatal("expected error parsing malformed JSON")
	}
}

func TestParseSerializeYAMLRoundTrip(t *testing.T) {
	data := []byte("name: jin\nport: 8080\nenabled: true\ntags:\n  - a\n  - b\n")
	v, err := Parse(Yaml, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Serialize(Yaml, v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	v2, err := Parse(Yaml, out)
	if err != nil {
		t.Fatalf("re-Parse serialized output: %v", err)
	}
	name, _ := v2.Object.Get("name")
	if name.String != "jin" {
		t.Errorf("name = %v, want jin", name)
	}
	enabled, _ := v2.Object.Get("enabled")
	if enabled.Bool != true {
		t.Errorf("enabled = %v, want true", enabled.Bool)
	}
}

func TestParseSerializeTOMLRoundTrip(t *testing.T) {
	data := []byte("name = \"jin\"\nport = 8080\n\n[server]\nhost = \"localhost\"\n")
	v, err := Parse(Toml, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Serialize(Toml, v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	v2, err := Parse(Toml, out)
	if err != nil {
		t.Fatalf("re-Parse serialized output: %v", err)
	}
	name, _ := v2.Object.Get("name")
	if name.String != "jin" {
		t.Errorf("name = %v, want jin", name)
	}
	server, ok := v2.Object.Get("server")
	if !ok || server.Kind != mergeval.KindObject {
		t.Fatalf("server table missing or wrong kind: %+v", server)
	}
	host, _ := server.Object.Get("host")
	if host.String != "localhost" {
		t.Errorf("server.host = %v, want localhost", host.String)
	}
}

func TestParseSerializeINIRoundTrip(t *testing.T) {
	data := []byte("key = value\n\n[section]\nfoo = bar\n")
	v, err := Parse(Ini, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Serialize(Ini, v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	v2, err := Parse(Ini, out)
	if err != nil {
		t.Fatalf("re-Parse serialized output: %v", err)
	}
	top, ok := v2.Object.Get("")
	if !ok {
		t.Fatal("missing implicit top section")
	}
	key, _ := top.Object.Get("key")
	if key.String != "value" {
		t.Errorf("key = %v, want value", key.String)
	}
	section, ok := v2.Object.Get("section")
	if !ok {
		t.Fatal("missing [section]")
	}
	foo, _ := section.Object.Get("foo")
	if foo.String != "bar" {
		t.Errorf("section.foo = %v, want bar", foo.String)
	}
}

func TestParseINIMalformedSectionIsError(t *testing.T) {
	if _, err := Parse(Ini, []byte("[unterminated\n")); err == nil {
		t.Fatal("expected error for malformed section header")
	}
}

func TestParseTextIsProgrammerError(t *testing.T) {
	if _, err := Parse(Text, []byte("hello")); err == nil {
		t.Fatal("expected error calling Parse with Text format")
	}
}
