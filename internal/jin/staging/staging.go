// Package staging implements the per-file pending-change table routed
// to target layers (§4.5, C5).
package staging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/objstore"
)

// Op is the kind of pending change recorded for a path.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
	OpRename Op = "rename"
)

// Entry is one pending staged change.
type Entry struct {
	Path        string       `json:"path"`
	TargetLayer layer.Layer  `json:"target_layer"`
	ContentOID  objstore.OID `json:"content_oid,omitempty"`
	Mode        objstore.Mode `json:"mode"`
	Op          Op           `json:"op"`
	RenameTo    string       `json:"rename_to,omitempty"`
}

const indexVersion = 1

// fileFormat is the on-disk JSON shape described in spec.md §6.
type fileFormat struct {
	Version uint32           `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Index is the in-memory staging table. Keys (paths) are unique;
// insertion order is irrelevant, but grouped queries by target layer
// must be stable (spec.md §4.5), which Index achieves by sorting paths
// on every read.
type Index struct {
	path    string
	entries map[string]Entry
}

// IndexPath returns the path to the staging index file under a
// project's .jin directory.
func IndexPath(projectDir string) string {
	return filepath.Join(projectDir, ".jin", "staging", "index.json")
}

// Load reads the staging index for a project, returning an empty index
// if none exists yet. Unknown on-disk versions are refused outright
// (spec.md §6: "Version bumps require an explicit migration").
func Load(projectDir string) (*Index, error) {
	path := IndexPath(projectDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{path: path, entries: map[string]Entry{}}, nil
		}
		return nil, jinerr.Wrap(jinerr.KindIO, "read staging index", err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, jinerr.Wrap(jinerr.KindParse, "parse staging index", err)
	}
	if ff.Version != indexVersion {
		return nil, jinerr.Newf(jinerr.KindParse, "staging index version %d is not supported (want %d)", ff.Version, indexVersion)
	}
	if ff.Entries == nil {
		ff.Entries = map[string]Entry{}
	}
	return &Index{path: path, entries: ff.Entries}, nil
}

// Save writes the index atomically (temp-then-rename).
func (idx *Index) Save() error {
	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "create staging directory", err)
	}
	ff := fileFormat{Version: indexVersion, Entries: idx.entries}
	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "marshal staging index", err)
	}
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "write staging index temp file", err)
	}
	if err := os.Rename(tmp, idx.path); err != nil {
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "rename staging index into place", err)
	}
	return nil
}

// Add inserts or overwrites the entry for e.Path. Re-staging a path
// already present (even to a different target layer) overwrites it,
// per spec.md §4.5 ("A file may be staged to exactly one layer at a
// time; re-staging to a different layer overwrites").
func (idx *Index) Add(e Entry) {
	idx.entries[e.Path] = e
}

// Remove deletes the entry for path, if present.
func (idx *Index) Remove(path string) {
	delete(idx.entries, path)
}

// Get returns the entry for path, if present.
func (idx *Index) Get(path string) (Entry, bool) {
	e, ok := idx.entries[path]
	return e, ok
}

// EntriesForLayer returns every entry targeting l, sorted by path for
// stable, reproducible grouping.
func (idx *Index) EntriesForLayer(l layer.Layer) []Entry {
	var out []Entry
	for _, e := range idx.entries {
		if e.TargetLayer == l {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// AffectedLayers returns the distinct set of layers with at least one
// staged entry, sorted by precedence ascending.
func (idx *Index) AffectedLayers() []layer.Layer {
	seen := map[layer.Layer]bool{}
	for _, e := range idx.entries {
		seen[e.TargetLayer] = true
	}
	var out []layer.Layer
	for l := range seen {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return layer.Precedence(out[i]) < layer.Precedence(out[j]) })
	return out
}

// Len returns the number of staged entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Clear empties the index in memory; callers must still call Save.
func (idx *Index) Clear() {
	idx.entries = map[string]Entry{}
}

// Paths returns every staged path, sorted.
func (idx *Index) Paths() []string {
	out := make([]string, 0, len(idx.entries))
	for p := range idx.entries {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
