package workspace

import (
	"testing"

	"github.com/jinvcs/jin/internal/jin/layer"
)

func TestLoadContextMissingIsZeroValue(t *testing.T) {
	ctx, err := LoadContext(t.TempDir())
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if ctx != (layer.Context{}) {
		t.Errorf("ctx = %+v, want zero value", ctx)
	}
}

func TestSaveLoadContextRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := layer.Context{Mode: "dev", Scope: "team", Project: "api"}
	if err := SaveContext(dir, want); err != nil {
		t.Fatalf("SaveContext: %v", err)
	}
	got, err := LoadContext(dir)
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if got != want {
		t.Errorf("LoadContext = %+v, want %+v", got, want)
	}
}
