package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if len(c.Merge.KeyFields) != 2 || c.Merge.KeyFields[0] != "id" || c.Merge.KeyFields[1] != "name" {
		t.Errorf("Default().Merge.KeyFields = %v, want [id name]", c.Merge.KeyFields)
	}
	if c.Stage.DefaultLayer != "project" {
		t.Errorf("Default().Stage.DefaultLayer = %q, want project", c.Stage.DefaultLayer)
	}
}

func TestLoadMissingReturnsDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stage.DefaultLayer != "project" {
		t.Errorf("Stage.DefaultLayer = %q, want project", cfg.Stage.DefaultLayer)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Default()
	want.Author.Name = "ada"
	want.Author.Email = "ada@example.com"
	want.Stage.DefaultLayer = "local"
	want.Merge.KeyFields = []string{"uuid"}

	if err := Save(dir, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Author.Name != "ada" || got.Author.Email != "ada@example.com" {
		t.Errorf("Author = %+v, want ada/ada@example.com", got.Author)
	}
	if got.Stage.DefaultLayer != "local" {
		t.Errorf("Stage.DefaultLayer = %q, want local", got.Stage.DefaultLayer)
	}
	if len(got.Merge.KeyFields) != 1 || got.Merge.KeyFields[0] != "uuid" {
		t.Errorf("Merge.KeyFields = %v, want [uuid]", got.Merge.KeyFields)
	}
}

func TestLoadFillsMissingKeyFieldsDefault(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir), []byte("[author]\nname = \"ada\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Merge.KeyFields) != 2 || cfg.Merge.KeyFields[0] != "id" {
		t.Errorf("Merge.KeyFields = %v, want default [id name]", cfg.Merge.KeyFields)
	}
}

func TestLoadMalformedTomlIsError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir), []byte("not valid = [toml"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error loading malformed config.toml")
	}
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "config.toml")
	if got := Path(dir); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestRootRespectsEnvDir(t *testing.T) {
	t.Setenv(EnvDir, "/tmp/custom-jin-dir")
	root, err := Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if root != "/tmp/custom-jin-dir" {
		t.Errorf("Root() = %q, want /tmp/custom-jin-dir", root)
	}
}
