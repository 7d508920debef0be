package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanForExternalChangesNilMetadataIsNoop(t *testing.T) {
	changes, err := ScanForExternalChanges(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("ScanForExternalChanges: %v", err)
	}
	if changes != nil {
		t.Errorf("changes = %v, want nil", changes)
	}
}

func TestScanForExternalChangesNoDrift(t *testing.T) {
	dir := t.TempDir()
	data := []byte("hello\n")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	meta := &Metadata{Files: map[string]string{"README.md": ContentHash(data)}}

	changes, err := ScanForExternalChanges(dir, meta)
	if err != nil {
		t.Fatalf("ScanForExternalChanges: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("changes = %v, want none", changes)
	}
}

func TestScanForExternalChangesDetectsModify(t *testing.T) {
	dir := t.TempDir()
	original := []byte("hello\n")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("tampered\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	meta := &Metadata{Files: map[string]string{"README.md": ContentHash(original)}}

	changes, err := ScanForExternalChanges(dir, meta)
	if err != nil {
		t.Fatalf("ScanForExternalChanges: %v", err)
	}
	if len(changes) != 1 || changes[0].Path != "README.md" || changes[0].Op != OpModify {
		t.Errorf("changes = %+v, want one OpModify for README.md", changes)
	}
}

func TestScanForExternalChangesDetectsDelete(t *testing.T) {
	dir := t.TempDir()
	meta := &Metadata{Files: map[string]string{"README.md": ContentHash([]byte("hello\n"))}}

	changes, err := ScanForExternalChanges(dir, meta)
	if err != nil {
		t.Fatalf("ScanForExternalChanges: %v", err)
	}
	if len(changes) != 1 || changes[0].Path != "README.md" || changes[0].Op != OpDelete {
		t.Errorf("changes = %+v, want one OpDelete for README.md", changes)
	}
}

func TestScanForExternalChangesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a\n"), 0o644); err != nil {
		t.Fatalf("WriteFile a.txt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("tampered\n"), 0o644); err != nil {
		t.Fatalf("WriteFile b.txt: %v", err)
	}
	meta := &Metadata{Files: map[string]string{
		"a.txt": ContentHash([]byte("a\n")),
		"b.txt": ContentHash([]byte("b\n")),
		"c.txt": ContentHash([]byte("c\n")),
	}}

	changes, err := ScanForExternalChanges(dir, meta)
	if err != nil {
		t.Fatalf("ScanForExternalChanges: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %+v, want 2 entries", changes)
	}
	byPath := map[string]EventOp{}
	for _, c := range changes {
		byPath[c.Path] = c.Op
	}
	if byPath["b.txt"] != OpModify {
		t.Errorf("b.txt op = %v, want OpModify", byPath["b.txt"])
	}
	if byPath["c.txt"] != OpDelete {
		t.Errorf("c.txt op = %v, want OpDelete", byPath["c.txt"])
	}
}

func TestEventOpString(t *testing.T) {
	cases := map[EventOp]string{
		OpCreate: "create",
		OpModify: "modify",
		OpDelete: "delete",
		EventOp(99): "unknown",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("EventOp(%d).String() = %q, want %q", op, got, want)
		}
	}
}
