package objstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jinvcs/jin/internal/jin/jinerr"
)

func (s *Store) refPath(name string) string {
	return filepath.Join(s.Root, filepath.FromSlash(name))
}

// RefExists reports whether name currently resolves to an object.
// resolve_ref's contract (§4.1) requires callers to check this first:
// it fails with NotFound if and only if RefExists is false.
func (s *Store) RefExists(name string) bool {
	_, err := os.Stat(s.refPath(name))
	return err == nil
}

// ResolveRef reads the OID name currently points at.
func (s *Store) ResolveRef(name string) (OID, error) {
	data, err := os.ReadFile(s.refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", jinerr.Newf(jinerr.KindNotFound, "ref %s not found", name)
		}
		return "", jinerr.Wrap(jinerr.KindIO, "read ref "+name, err)
	}
	return OID(strings.TrimSpace(string(data))), nil
}

// SetRef points name at oid, creating or overwriting it atomically.
// reason is accepted for parity with the reflog-style API other stores
// in the corpus expose, but Jin does not maintain a reflog; it is
// accepted only for future logging hooks.
func (s *Store) SetRef(name string, oid OID, reason string) error {
	path := s.refPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "create ref directory", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(string(oid)+"\n"), 0o644); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "write ref temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "rename ref into place", err)
	}
	return nil
}

// DeleteRef removes name. Deleting an absent ref is not an error.
func (s *Store) DeleteRef(name string) error {
	if err := os.Remove(s.refPath(name)); err != nil && !os.IsNotExist(err) {
		return jinerr.Wrap(jinerr.KindIO, "delete ref "+name, err)
	}
	return nil
}

// ListRefs enumerates every ref name under prefix, sorted.
func (s *Store) ListRefs(prefix string) ([]string, error) {
	root := s.refPath(prefix)
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".tmp") {
			return nil
		}
		rel, rerr := filepath.Rel(s.Root, path)
		if rerr != nil {
			return rerr
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, jinerr.Wrap(jinerr.KindIO, "list refs under "+prefix, err)
	}
	sort.Strings(out)
	return out, nil
}
