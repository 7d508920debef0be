package mergeengine

import "testing"

func TestTextMerge3WayDisjointEdits(t *testing.T) {
	base := "line1\nline2\nline3\n"
	ours := "line1 changed\nline2\nline3\n"
	theirs := "line1\nline2\nline3 changed\n"

	result := TextMerge3Way(base, ours, theirs)
	if !result.Clean {
		t.Fatalf("disjoint edits produced a conflict: %q", result.Merged)
	}
	want := "line1 changed\nline2\nline3 changed\n"
	if result.Merged != want {
		t.Errorf("Merged = %q, want %q", result.Merged, want)
	}
}

func TestTextMerge3WayIdenticalEdits(t *testing.T) {
	base := "line1\nline2\n"
	ours := "line1 changed\nline2\n"
	theirs := "line1 changed\nline2\n"

	result := TextMerge3Way(base, ours, theirs)
	if !result.Clean {
		t.Fatalf("identical edits on both sides produced a conflict: %q", result.Merged)
	}
}

func TestTextMerge3WayOverlappingEditsConflict(t *testing.T) {
	base := "line1\n"
	ours := "ours version\n"
	theirs := "theirs version\n"

	result := TextMerge3Way(base, ours, theirs)
	if result.Clean {
		t.Fatalf("overlapping edits to the same line did not conflict: %q", result.Merged)
	}
	if !result.Conflict {
		t.Error("Conflict = false, want true")
	}
}

func TestTextMerge3WayOnlyOneSideChanged(t *testing.T) {
	base := "line1\nline2\n"
	ours := "line1\nline2\n"
	theirs := "line1 changed\nline2\n"

	result := TextMerge3Way(base, ours, theirs)
	if !result.Clean {
		t.Fatalf("unchanged side vs. changed side produced a conflict: %q", result.Merged)
	}
	if result.Merged != theirs {
		t.Errorf("Merged = %q, want %q", result.Merged, theirs)
	}
}
