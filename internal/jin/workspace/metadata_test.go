package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMetadataMissingReturnsNil(t *testing.T) {
	m, err := LoadMetadata(t.TempDir())
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if m != nil {
		t.Errorf("m = %+v, want nil", m)
	}
}

func TestSaveLoadMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := &Metadata{
		Timestamp:     time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC),
		AppliedLayers: []string{"refs/jin/global/base", "refs/jin/user/local"},
		Files:         map[string]string{"README.md": "deadbeef"},
	}
	if err := SaveMetadata(dir, want); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}
	got, err := LoadMetadata(dir)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if !got.Timestamp.Equal(want.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, want.Timestamp)
	}
	if len(got.AppliedLayers) != 2 || got.AppliedLayers[0] != want.AppliedLayers[0] {
		t.Errorf("AppliedLayers = %v, want %v", got.AppliedLayers, want.AppliedLayers)
	}
	if got.Files["README.md"] != "deadbeef" {
		t.Errorf("Files[README.md] = %q, want deadbeef", got.Files["README.md"])
	}
}

func TestSaveMetadataOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	first := &Metadata{Timestamp: time.Now(), Files: map[string]string{"a.txt": "1"}}
	second := &Metadata{Timestamp: time.Now(), Files: map[string]string{"b.txt": "2"}}
	if err := SaveMetadata(dir, first); err != nil {
		t.Fatalf("SaveMetadata first: %v", err)
	}
	if err := SaveMetadata(dir, second); err != nil {
		t.Fatalf("SaveMetadata second: %v", err)
	}
	got, err := LoadMetadata(dir)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if _, ok := got.Files["a.txt"]; ok {
		t.Error("Files still contains stale entry from first save")
	}
	if got.Files["b.txt"] != "2" {
		t.Errorf("Files[b.txt] = %q, want 2", got.Files["b.txt"])
	}
}

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash([]byte("hello\n"))
	b := ContentHash([]byte("hello\n"))
	if a != b {
		t.Errorf("ContentHash not deterministic: %q != %q", a, b)
	}
	c := ContentHash([]byte("world\n"))
	if a == c {
		t.Error("ContentHash collided for different content")
	}
}

func TestRemoveMetadataMissingIsNoop(t *testing.T) {
	dir := t.TempDir()
	if err := RemoveMetadata(dir); err != nil {
		t.Fatalf("RemoveMetadata on missing file: %v", err)
	}
}

func TestRemoveMetadataDeletesFile(t *testing.T) {
	dir := t.TempDir()
	m := &Metadata{Timestamp: time.Now(), Files: map[string]string{}}
	if err := SaveMetadata(dir, m); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}
	if err := RemoveMetadata(dir); err != nil {
		t.Fatalf("RemoveMetadata: %v", err)
	}
	if _, err := os.Stat(MetadataPath(dir)); !os.IsNotExist(err) {
		t.Error("metadata file still present after RemoveMetadata")
	}
}

func TestMetadataPathUnderDotJin(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, ".jin", "workspace", "last_applied.json")
	if got := MetadataPath(dir); got != want {
		t.Errorf("MetadataPath = %q, want %q", got, want)
	}
}
