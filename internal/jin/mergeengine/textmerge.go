package mergeengine

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// TextMergeResult is the outcome of a 3-way text merge.
type TextMergeResult struct {
	Clean    bool
	Merged   string
	Conflict bool
}

// TextMerge3Way runs a line-diff 3-way merge over base/ours/theirs,
// using diffmatchpatch's line-mode idiom (DiffLinesToChars /
// DiffCharsToLines around DiffMain) to diff base->ours and
// base->theirs, then reconciles the two edit scripts diff3-style,
// anchored to base line positions: a base range changed by only one
// side is taken as-is, a range changed identically by both sides is
// taken once, and any other overlap is a conflict.
func TextMerge3Way(base, ours, theirs string) TextMergeResult {
	dmp := diffmatchpatch.New()

	baseOursChars, oursChars, lineArray := dmp.DiffLinesToChars(base, ours)
	diffOurs := dmp.DiffCharsToLines(dmp.DiffMain(baseOursChars, oursChars, false), lineArray)

	baseTheirsChars, theirsChars, lineArray2 := dmp.DiffLinesToChars(base, theirs)
	diffTheirs := dmp.DiffCharsToLines(dmp.DiffMain(baseTheirsChars, theirsChars, false), lineArray2)

	baseLines := splitLines(base)
	oursEdits := editsFromDiff(diffOurs)
	theirsEdits := editsFromDiff(diffTheirs)

	merged, conflict := reconcileEdits(baseLines, oursEdits, theirsEdits)
	return TextMergeResult{Clean: !conflict, Merged: merged, Conflict: conflict}
}

// splitLines splits s into lines, each keeping its trailing "\n" (the
// last line keeps whatever trails it, including none).
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// baseEdit is one contiguous change to the base text: the half-open
// [StartLine, EndLine) range of base lines it replaces, and the
// replacement text (empty for a pure deletion).
type baseEdit struct {
	StartLine int
	EndLine   int
	Text      string
}

// editsFromDiff walks a base-anchored line diff and collapses it into
// a list of baseEdit values. Equal runs advance the base-line cursor
// without producing an edit; a contiguous run of Delete/Insert ops
// between two Equal runs becomes one edit spanning the base lines the
// Deletes consumed, carrying the concatenated Insert text.
func editsFromDiff(diffs []diffmatchpatch.Diff) []baseEdit {
	var edits []baseEdit
	pos := 0
	start := -1
	var insert strings.Builder

	flush := func() {
		if start < 0 {
			return
		}
		edits = append(edits, baseEdit{StartLine: start, EndLine: pos, Text: insert.String()})
		start = -1
		insert.Reset()
	}

	for _, d := range diffs {
		n := len(splitLines(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			pos += n
		case diffmatchpatch.DiffDelete:
			if start < 0 {
				start = pos
			}
			pos += n
		case diffmatchpatch.DiffInsert:
			if start < 0 {
				start = pos
			}
			insert.WriteString(d.Text)
		}
	}
	flush()
	return edits
}

// reconcileEdits merges oursEdits and theirsEdits, both anchored to
// baseLines, into a single text. Edits are visited in base-line order;
// two edits starting at the same base position are reconciled
// together (identical edits collapse to one, divergent edits conflict).
func reconcileEdits(baseLines []string, oursEdits, theirsEdits []baseEdit) (string, bool) {
	var out strings.Builder
	conflict := false
	pos, oi, ti := 0, 0, 0

	for pos < len(baseLines) || oi < len(oursEdits) || ti < len(theirsEdits) {
		// An edit starting inside a range the other side already
		// replaced overlaps it.
		for oi < len(oursEdits) && oursEdits[oi].StartLine < pos {
			conflict = true
			out.WriteString("\x00JINCONFLICT\x00")
			out.WriteString(oursEdits[oi].Text)
			oi++
		}
		for ti < len(theirsEdits) && theirsEdits[ti].StartLine < pos {
			conflict = true
			out.WriteString("\x00JINCONFLICT\x00")
			out.WriteString(theirsEdits[ti].Text)
			ti++
		}
		var oEdit, tEdit *baseEdit
		if oi < len(oursEdits) && oursEdits[oi].StartLine == pos {
			oEdit = &oursEdits[oi]
		}
		if ti < len(theirsEdits) && theirsEdits[ti].StartLine == pos {
			tEdit = &theirsEdits[ti]
		}

		switch {
		case oEdit == nil && tEdit == nil:
			if pos >= len(baseLines) {
				pos++ // no more base lines and no pending edits at this position; done
				continue
			}
			out.WriteString(baseLines[pos])
			pos++
		case oEdit != nil && tEdit == nil:
			out.WriteString(oEdit.Text)
			pos = oEdit.EndLine
			oi++
		case oEdit == nil && tEdit != nil:
			out.WriteString(tEdit.Text)
			pos = tEdit.EndLine
			ti++
		default:
			if oEdit.Text == tEdit.Text && oEdit.EndLine == tEdit.EndLine {
				out.WriteString(oEdit.Text)
			} else {
				conflict = true
				out.WriteString(oEdit.Text)
				out.WriteString("\x00JINCONFLICT\x00")
				out.WriteString(tEdit.Text)
			}
			if oEdit.EndLine > tEdit.EndLine {
				pos = oEdit.EndLine
			} else {
				pos = tEdit.EndLine
			}
			oi++
			ti++
		}
	}
	return out.String(), conflict
}
