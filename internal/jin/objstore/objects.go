// Package objstore is the content-addressed object/ref store façade
// (§4.1, C1). Blobs, trees and commits are immutable objects named by
// the SHA-256 hash of a type-prefixed header plus payload — the same
// loose-object shape as git (and, in the retrieved corpus, the layout
// `go-git` builds on top of) — while refs are mutable named pointers
// layered on top, kept in a single `refs/jin/…` namespace.
package objstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jinvcs/jin/internal/jin/jinerr"
)

// OID is a 64-character lowercase hex SHA-256 digest identifying an
// object in the store.
type OID string

// Empty reports whether the OID is the zero value (no object).
func (o OID) Empty() bool { return o == "" }

func (o OID) String() string { return string(o) }

// Mode describes the type of a tree entry. Executable preservation and
// subtree nesting both need more than "regular file", hence a byte
// rather than a bool (§9 Open Question: executable bit preservation).
type Mode byte

const (
	ModeRegular Mode = iota
	ModeExecutable
	ModeTree
)

func (m Mode) String() string {
	switch m {
	case ModeExecutable:
		return "exec"
	case ModeTree:
		return "tree"
	default:
		return "regular"
	}
}

// kind tags an object's payload before hashing, so the OID commits to
// the object's type as well as its bytes (classic loose-object header
// convention: "<type> <size>\0<payload>").
type kind string

const (
	kindBlob   kind = "blob"
	kindTree   kind = "tree"
	kindCommit kind = "commit"
)

func header(k kind, size int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", k, size))
}

func hashPayload(k kind, payload []byte) OID {
	h := sha256.New()
	h.Write(header(k, len(payload)))
	h.Write(payload)
	return OID(hex.EncodeToString(h.Sum(nil)))
}

// TreeEntry is one (name, mode, object-id) mapping inside a tree.
type TreeEntry struct {
	Name string
	Mode Mode
	OID  OID
}

// encodeTree serializes entries, sorted by Name, into the tree payload.
// Format per entry: mode(1) | namelen(uint16 BE) | name | oid(32 raw
// bytes). Sorting by name is what makes the resulting OID depend only
// on the entry set, never on construction order (spec.md §8 property 3).
func encodeTree(entries []TreeEntry) ([]byte, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	for _, e := range sorted {
		if e.Name == "" {
			return nil, jinerr.New(jinerr.KindConfig, "tree entry name must not be empty")
		}
		raw, err := hex.DecodeString(string(e.OID))
		if err != nil || len(raw) != sha256.Size {
			return nil, jinerr.Newf(jinerr.KindConfig, "invalid object id %q for tree entry %q", e.OID, e.Name)
		}
		buf.WriteByte(byte(e.Mode))
		var nameLen [2]byte
		binary.BigEndian.PutUint16(nameLen[:], uint16(len(e.Name)))
		buf.Write(nameLen[:])
		buf.WriteString(e.Name)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

func decodeTree(payload []byte) ([]TreeEntry, error) {
	var out []TreeEntry
	r := bytes.NewReader(payload)
	for r.Len() > 0 {
		modeByte, err := r.ReadByte()
		if err != nil {
			return nil, jinerr.Wrap(jinerr.KindParse, "decode tree: read mode", err)
		}
		var nameLenBuf [2]byte
		if _, err := r.Read(nameLenBuf[:]); err != nil {
			return nil, jinerr.Wrap(jinerr.KindParse, "decode tree: read name length", err)
		}
		nameLen := binary.BigEndian.Uint16(nameLenBuf[:])
		nameBuf := make([]byte, nameLen)
		if _, err := r.Read(nameBuf); err != nil {
			return nil, jinerr.Wrap(jinerr.KindParse, "decode tree: read name", err)
		}
		oidBuf := make([]byte, sha256.Size)
		if _, err := r.Read(oidBuf); err != nil {
			return nil, jinerr.Wrap(jinerr.KindParse, "decode tree: read oid", err)
		}
		out = append(out, TreeEntry{
			Name: string(nameBuf),
			Mode: Mode(modeByte),
			OID:  OID(hex.EncodeToString(oidBuf)),
		})
	}
	return out, nil
}

// Signature identifies an author or committer on a commit.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

func encodeSignature(s Signature) string {
	return fmt.Sprintf("%s <%s> %d", s.Name, s.Email, s.When.Unix())
}

func decodeSignature(line string) (Signature, error) {
	// "Name <email> unixSeconds"
	lt := strings.LastIndex(line, "<")
	gt := strings.LastIndex(line, ">")
	if lt < 0 || gt < 0 || gt < lt {
		return Signature{}, jinerr.Newf(jinerr.KindParse, "malformed signature %q", line)
	}
	name := strings.TrimSpace(line[:lt])
	email := line[lt+1 : gt]
	rest := strings.TrimSpace(line[gt+1:])
	var sec int64
	if _, err := fmt.Sscanf(rest, "%d", &sec); err != nil {
		return Signature{}, jinerr.Wrap(jinerr.KindParse, "malformed signature timestamp", err)
	}
	return Signature{Name: name, Email: email, When: time.Unix(sec, 0).UTC()}, nil
}

// Commit is the decoded form of a commit object.
type Commit struct {
	Tree      OID
	Parents   []OID
	Author    Signature
	Committer Signature
	Message   string
}

func encodeCommit(c Commit) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&b, "parent %s\n", p)
	}
	fmt.Fprintf(&b, "author %s\n", encodeSignature(c.Author))
	fmt.Fprintf(&b, "committer %s\n", encodeSignature(c.Committer))
	b.WriteString("\n")
	b.WriteString(c.Message)
	return []byte(b.String())
}

func decodeCommit(payload []byte) (Commit, error) {
	var c Commit
	lines := strings.Split(string(payload), "\n")
	i := 0
	for ; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			i++
			break
		}
		switch {
		case strings.HasPrefix(line, "tree "):
			c.Tree = OID(strings.TrimPrefix(line, "tree "))
		case strings.HasPrefix(line, "parent "):
			c.Parents = append(c.Parents, OID(strings.TrimPrefix(line, "parent ")))
		case strings.HasPrefix(line, "author "):
			sig, err := decodeSignature(strings.TrimPrefix(line, "author "))
			if err != nil {
				return Commit{}, err
			}
			c.Author = sig
		case strings.HasPrefix(line, "committer "):
			sig, err := decodeSignature(strings.TrimPrefix(line, "committer "))
			if err != nil {
				return Commit{}, err
			}
			c.Committer = sig
		}
	}
	c.Message = strings.Join(lines[i:], "\n")
	return c, nil
}
