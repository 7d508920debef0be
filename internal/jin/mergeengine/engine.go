package mergeengine

import "bytes"

// LayerContent is one layer's raw content for a single path, in
// precedence order (lowest first) among the layers that contain the
// path at all.
type LayerContent struct {
	RefPath string
	Content []byte
}

// PathResult is the outcome of merging one path across its contributing
// layers.
type PathResult struct {
	// Merged holds the resolved bytes when Conflict is false.
	Merged []byte
	// Conflict is true when the path could not be resolved
	// automatically and must be captured into a paused apply.
	Conflict bool
	// Sources lists every layer ref that contributed to Merged
	// (bookkeeping, per spec.md §4.3 step 4).
	Sources []string
	// Err is set when a structured parse failed; the path becomes a
	// conflict rather than aborting the whole apply (spec.md §4.3
	// step 6 and the "Failure model" in §4.3).
	Err error
}

// MergePath implements the cross-layer merge flow of spec.md §4.3 for
// a single path. contents must be supplied in ascending precedence
// order and contain only the layers that have this path.
func MergePath(path string, contents []LayerContent, keyFields []string) PathResult {
	if len(contents) == 0 {
		return PathResult{}
	}
	if len(contents) == 1 {
		return PathResult{Merged: contents[0].Content, Sources: []string{contents[0].RefPath}}
	}

	if allIdentical(contents) {
		refs := make([]string, len(contents))
		for i, c := range contents {
			refs[i] = c.RefPath
		}
		return PathResult{Merged: contents[0].Content, Sources: refs}
	}

	format := DetectFormat(path)

	if format == Text {
		// Collision gate: any pairwise difference in raw text content
		// across contributing layers promotes the path to a conflict.
		// Structured formats skip this gate entirely — they have a
		// deterministic resolution under precedence; text does not.
		return PathResult{Conflict: true}
	}

	return mergeStructured(contents, format, keyFields)
}

func allIdentical(contents []LayerContent) bool {
	for i := 1; i < len(contents); i++ {
		if !bytes.Equal(contents[i].Content, contents[0].Content) {
			return false
		}
	}
	return true
}

func mergeStructured(contents []LayerContent, format Format, keyFields []string) PathResult {
	if keyFields == nil {
		keyFields = DefaultKeyFields
	}

	acc, err := Parse(format, contents[0].Content)
	if err != nil {
		return PathResult{Conflict: true, Err: err}
	}
	refs := []string{contents[0].RefPath}

	for _, c := range contents[1:] {
		overlay, err := Parse(format, c.Content)
		if err != nil {
			return PathResult{Conflict: true, Err: err}
		}
		acc = DeepMerge(acc, overlay, keyFields)
		refs = append(refs, c.RefPath)
	}

	merged, err := Serialize(format, acc)
	if err != nil {
		return PathResult{Conflict: true, Err: err}
	}
	return PathResult{Merged: merged, Sources: refs}
}
