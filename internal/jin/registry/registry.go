// Package registry tracks the set of known mode/scope/project names so
// the CLI's lifecycle commands (create/use/list/delete/unset, spec.md
// §6) can enumerate them before any layer ref has ever been committed.
// It piggybacks on the object store's ref namespace with marker files
// at the paths spec.md's on-disk layout names for modes
// (refs/jin/modes/<m>/_mode, refs/jin/modes/<m>/scopes/<s>), extended
// in the same idiom for a project registry the layout doesn't show —
// DESIGN.md records that as a resolved ambiguity, not a spec deviation.
package registry

import (
	"strings"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/objstore"
)

const (
	modesPrefix    = "refs/jin/modes"
	projectsPrefix = "refs/jin/projects"
)

func modeMarker(mode string) string {
	return modesPrefix + "/" + mode + "/_mode"
}

func scopeMarker(mode, scope string) string {
	return modesPrefix + "/" + mode + "/scopes/" + scope
}

func projectMarker(project string) string {
	return projectsPrefix + "/" + project
}

// CreateMode registers mode as known. Idempotent.
func CreateMode(store *objstore.Store, mode string) error {
	return store.SetRef(modeMarker(mode), objstore.BlobOID([]byte(mode)), "registry: create mode")
}

// DeleteMode removes mode's marker. Does not touch any layer refs
// already committed under it.
func DeleteMode(store *objstore.Store, mode string) error {
	return store.DeleteRef(modeMarker(mode))
}

// ModeExists reports whether mode was registered.
func ModeExists(store *objstore.Store, mode string) bool {
	return store.RefExists(modeMarker(mode))
}

// ListModes returns every registered mode name, sorted.
func ListModes(store *objstore.Store) ([]string, error) {
	refs, err := store.ListRefs(modesPrefix)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range refs {
		if strings.HasSuffix(r, "/_mode") {
			name := strings.TrimSuffix(strings.TrimPrefix(r, modesPrefix+"/"), "/_mode")
			out = append(out, name)
		}
	}
	return out, nil
}

// CreateScope registers scope as known within mode. Idempotent.
func CreateScope(store *objstore.Store, mode, scope string) error {
	return store.SetRef(scopeMarker(mode, scope), objstore.BlobOID([]byte(scope)), "registry: create scope")
}

// DeleteScope removes scope's marker from mode.
func DeleteScope(store *objstore.Store, mode, scope string) error {
	return store.DeleteRef(scopeMarker(mode, scope))
}

// ScopeExists reports whether scope was registered within mode.
func ScopeExists(store *objstore.Store, mode, scope string) bool {
	return store.RefExists(scopeMarker(mode, scope))
}

// ListScopes returns every scope registered within mode, sorted.
func ListScopes(store *objstore.Store, mode string) ([]string, error) {
	refs, err := store.ListRefs(modesPrefix + "/" + mode + "/scopes")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range refs {
		out = append(out, strings.TrimPrefix(r, modesPrefix+"/"+mode+"/scopes/"))
	}
	return out, nil
}

// CreateProject registers project as known. Idempotent.
func CreateProject(store *objstore.Store, project string) error {
	return store.SetRef(projectMarker(project), objstore.BlobOID([]byte(project)), "registry: create project")
}

// DeleteProject removes project's marker.
func DeleteProject(store *objstore.Store, project string) error {
	return store.DeleteRef(projectMarker(project))
}

// ProjectExists reports whether project was registered.
func ProjectExists(store *objstore.Store, project string) bool {
	return store.RefExists(projectMarker(project))
}

// ListProjects returns every registered project name, sorted.
func ListProjects(store *objstore.Store) ([]string, error) {
	refs, err := store.ListRefs(projectsPrefix)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range refs {
		out = append(out, strings.TrimPrefix(r, projectsPrefix+"/"))
	}
	return out, nil
}

// RequireMode returns a NotFound error if mode has not been registered.
func RequireMode(store *objstore.Store, mode string) error {
	if !ModeExists(store, mode) {
		return jinerr.Newf(jinerr.KindNotFound, "mode %q is not known; run 'jin mode create %s' first", mode, mode)
	}
	return nil
}

// RequireScope returns a NotFound error if scope has not been registered
// within mode.
func RequireScope(store *objstore.Store, mode, scope string) error {
	if !ScopeExists(store, mode, scope) {
		return jinerr.Newf(jinerr.KindNotFound, "scope %q is not known under mode %q; run 'jin scope create %s --mode %s' first", scope, mode, scope, mode)
	}
	return nil
}

// RequireProject returns a NotFound error if project has not been
// registered.
func RequireProject(store *objstore.Store, project string) error {
	if !ProjectExists(store, project) {
		return jinerr.Newf(jinerr.KindNotFound, "project %q is not known; run 'jin project create %s' first", project, project)
	}
	return nil
}
