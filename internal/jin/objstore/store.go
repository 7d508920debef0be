package objstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jinvcs/jin/internal/jin/jinerr"
)

// Store is a handle to a bare content-addressed repository rooted at
// Root. Objects live at objects/<aa>/<bb...> (first two hex characters
// as a fan-out directory, matching git's loose-object layout) so no
// single directory accumulates unbounded entries; refs are plain UTF-8
// files containing a hex OID and a trailing newline.
type Store struct {
	Root string
}

// Open returns a Store handle for root. It does not require root to
// exist yet; Init creates the on-disk layout.
func Open(root string) *Store {
	return &Store{Root: root}
}

// Init creates the on-disk layout described in spec.md §6 under Root,
// if it does not already exist.
func (s *Store) Init() error {
	dirs := []string{
		filepath.Join(s.Root, "objects"),
		filepath.Join(s.Root, "refs", "jin", "layers"),
		filepath.Join(s.Root, "refs", "jin", "modes"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return jinerr.Wrap(jinerr.KindIO, "create store directory "+d, err)
		}
	}
	return nil
}

func (s *Store) objectPath(oid OID) string {
	h := string(oid)
	return filepath.Join(s.Root, "objects", h[:2], h[2:])
}

func (s *Store) writeObject(k kind, payload []byte) (OID, error) {
	oid := hashPayload(k, payload)
	path := s.objectPath(oid)
	if _, err := os.Stat(path); err == nil {
		return oid, nil // content-addressed: already present, nothing to do
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", jinerr.Wrap(jinerr.KindIO, "create object directory", err)
	}
	tmp := path + ".tmp"
	full := append(header(k, len(payload)), payload...)
	if err := os.WriteFile(tmp, full, 0o444); err != nil {
		return "", jinerr.Wrap(jinerr.KindIO, "write object temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", jinerr.Wrap(jinerr.KindIO, "rename object into place", err)
	}
	return oid, nil
}

func (s *Store) readObject(oid OID, want kind) ([]byte, error) {
	path := s.objectPath(oid)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, jinerr.Newf(jinerr.KindNotFound, "object %s not found", oid)
		}
		return nil, jinerr.Wrap(jinerr.KindIO, "read object", err)
	}
	nul := -1
	for i, b := range raw {
		if b == 0 {
			nul = i
			break
		}
	}
	if nul < 0 {
		return nil, jinerr.Newf(jinerr.KindParse, "object %s missing header terminator", oid)
	}
	hdr := string(raw[:nul])
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || parts[0] != string(want) {
		return nil, jinerr.Newf(jinerr.KindParse, "object %s has unexpected kind (want %s)", oid, want)
	}
	return raw[nul+1:], nil
}

// CreateBlob stores raw bytes and returns its OID.
func (s *Store) CreateBlob(data []byte) (OID, error) {
	return s.writeObject(kindBlob, data)
}

// BlobOID computes the OID data would get from CreateBlob, without
// writing anything. Used by callers (workspace attachment validation)
// that need to compare content against a recorded OID without forcing
// a write.
func BlobOID(data []byte) OID {
	return hashPayload(kindBlob, data)
}

// FindBlob reads back the bytes stored under oid.
func (s *Store) FindBlob(oid OID) ([]byte, error) {
	return s.readObject(oid, kindBlob)
}

// CreateTree stores an ordered mapping of name -> (mode, oid).
func (s *Store) CreateTree(entries []TreeEntry) (OID, error) {
	payload, err := encodeTree(entries)
	if err != nil {
		return "", err
	}
	return s.writeObject(kindTree, payload)
}

// FindTree reads back the entries stored under oid.
func (s *Store) FindTree(oid OID) ([]TreeEntry, error) {
	payload, err := s.readObject(oid, kindTree)
	if err != nil {
		return nil, err
	}
	return decodeTree(payload)
}

// PathOID is one (slash-separated path, content oid) pair handed to
// CreateTreeFromPaths.
type PathOID struct {
	Path string
	OID  OID
	Mode Mode
}

// CreateTreeFromPaths builds the intermediate tree objects needed to
// represent a flat file list as a directory tree, and returns the root
// tree's OID. Per §4.1's contract, the result depends only on the set
// of (path, oid) pairs, never on the order files is supplied in, and
// empty path components are rejected.
func (s *Store) CreateTreeFromPaths(files []PathOID) (OID, error) {
	type node struct {
		oid      OID
		mode     Mode
		isLeaf   bool
		children map[string]*node
	}
	root := &node{children: map[string]*node{}}

	for _, f := range files {
		if f.Path == "" {
			return "", jinerr.New(jinerr.KindConfig, "empty path in tree construction")
		}
		parts := strings.Split(f.Path, "/")
		cur := root
		for i, part := range parts {
			if part == "" {
				return "", jinerr.Newf(jinerr.KindConfig, "empty path component in %q", f.Path)
			}
			last := i == len(parts)-1
			child, ok := cur.children[part]
			if !ok {
				child = &node{children: map[string]*node{}}
				cur.children[part] = child
			}
			if last {
				child.isLeaf = true
				child.oid = f.OID
				child.mode = f.Mode
			}
			cur = child
		}
	}

	var build func(n *node) (OID, error)
	build = func(n *node) (OID, error) {
		names := make([]string, 0, len(n.children))
		for name := range n.children {
			names = append(names, name)
		}
		sort.Strings(names)

		entries := make([]TreeEntry, 0, len(names))
		for _, name := range names {
			child := n.children[name]
			if child.isLeaf && len(child.children) == 0 {
				entries = append(entries, TreeEntry{Name: name, Mode: child.mode, OID: child.oid})
				continue
			}
			sub, err := build(child)
			if err != nil {
				return "", err
			}
			entries = append(entries, TreeEntry{Name: name, Mode: ModeTree, OID: sub})
		}
		return s.CreateTree(entries)
	}

	return build(root)
}

// WalkedEntry is one file discovered by WalkTree.
type WalkedEntry struct {
	Path string
	Mode Mode
	OID  OID
}

// WalkTree enumerates the files reachable from the tree at oid. With
// recursive set, subtrees are descended and only leaf (blob) entries
// are returned, each labeled with its full slash-joined path.
func (s *Store) WalkTree(oid OID, recursive bool) ([]WalkedEntry, error) {
	entries, err := s.FindTree(oid)
	if err != nil {
		return nil, err
	}
	var out []WalkedEntry
	for _, e := range entries {
		if e.Mode == ModeTree {
			if !recursive {
				out = append(out, WalkedEntry{Path: e.Name, Mode: e.Mode, OID: e.OID})
				continue
			}
			sub, err := s.WalkTree(e.OID, true)
			if err != nil {
				return nil, err
			}
			for _, se := range sub {
				out = append(out, WalkedEntry{Path: e.Name + "/" + se.Path, Mode: se.Mode, OID: se.OID})
			}
			continue
		}
		out = append(out, WalkedEntry{Path: e.Name, Mode: e.Mode, OID: e.OID})
	}
	return out, nil
}

// CreateCommit stores a commit object pointing at tree with the given
// parents, and returns its OID.
func (s *Store) CreateCommit(tree OID, parents []OID, author, committer Signature, message string) (OID, error) {
	payload := encodeCommit(Commit{Tree: tree, Parents: parents, Author: author, Committer: committer, Message: message})
	return s.writeObject(kindCommit, payload)
}

// FindCommit reads back the commit stored under oid.
func (s *Store) FindCommit(oid OID) (Commit, error) {
	payload, err := s.readObject(oid, kindCommit)
	if err != nil {
		return Commit{}, err
	}
	return decodeCommit(payload)
}
