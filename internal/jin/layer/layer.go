// Package layer implements the precedence lattice of Jin layers (§4.2,
// C2). It is pure and stateless: every function is a deterministic
// computation over its arguments, with no I/O.
package layer

import (
	"fmt"
	"strings"

	"github.com/jinvcs/jin/internal/jin/jinerr"
)

// Layer is one of the nine precedence-ordered namespaces defined in
// spec.md §3. Lower Precedence values sort before higher ones.
type Layer int

const (
	GlobalBase Layer = iota
	ModeBase
	ModeScope
	ModeScopeProject
	ModeProject
	ScopeBase
	ProjectBase
	UserLocal
	WorkspaceActive
)

// String renders the layer name for logging and .jinmerge labels.
func (l Layer) String() string {
	switch l {
	case GlobalBase:
		return "GlobalBase"
	case ModeBase:
		return "ModeBase"
	case ModeScope:
		return "ModeScope"
	case ModeScopeProject:
		return "ModeScopeProject"
	case ModeProject:
		return "ModeProject"
	case ScopeBase:
		return "ScopeBase"
	case ProjectBase:
		return "ProjectBase"
	case UserLocal:
		return "UserLocal"
	case WorkspaceActive:
		return "WorkspaceActive"
	default:
		return fmt.Sprintf("Layer(%d)", int(l))
	}
}

// Precedence returns the total order rank of l: lower values lose to
// higher values when content from both is present for the same path.
// This is a strict total order over all nine variants, matching the
// table in spec.md §3.
func Precedence(l Layer) uint8 {
	return uint8(l)
}

// all is the full enum in ascending precedence order.
var all = []Layer{
	GlobalBase, ModeBase, ModeScope, ModeScopeProject, ModeProject,
	ScopeBase, ProjectBase, UserLocal, WorkspaceActive,
}

// AllInPrecedenceOrder returns every layer, low to high precedence.
func AllInPrecedenceOrder() []Layer {
	out := make([]Layer, len(all))
	copy(out, all)
	return out
}

// RequiresMode reports whether l needs a mode to be set in the context
// to be applicable.
func RequiresMode(l Layer) bool {
	switch l {
	case ModeBase, ModeScope, ModeScopeProject, ModeProject:
		return true
	default:
		return false
	}
}

// RequiresScope reports whether l needs a scope to be set in the context
// to be applicable.
func RequiresScope(l Layer) bool {
	switch l {
	case ModeScope, ModeScopeProject, ScopeBase:
		return true
	default:
		return false
	}
}

// RequiresProject reports whether l needs a project to be set in the
// context to be applicable.
func RequiresProject(l Layer) bool {
	switch l {
	case ModeScopeProject, ModeProject, ProjectBase:
		return true
	default:
		return false
	}
}

// Context is the active selection triple. Empty string means unset.
// WorkspaceActive never consults a Context; it is never persisted.
type Context struct {
	Mode    string
	Scope   string
	Project string
}

// Applicable reports whether l's required fields are all present in ctx.
func Applicable(l Layer, ctx Context) bool {
	if l == WorkspaceActive {
		return false // pseudo-layer, never directly applicable
	}
	if RequiresMode(l) && ctx.Mode == "" {
		return false
	}
	if RequiresScope(l) && ctx.Scope == "" {
		return false
	}
	if RequiresProject(l) && ctx.Project == "" {
		return false
	}
	return true
}

// ApplicableLayers returns every layer applicable under ctx, in
// ascending precedence order.
func ApplicableLayers(ctx Context) []Layer {
	out := make([]Layer, 0, len(all))
	for _, l := range all {
		if Applicable(l, ctx) {
			out = append(out, l)
		}
	}
	return out
}

// validSegment rejects path components that would escape the ref
// namespace: empty names and names containing "/" or "..".
func validSegment(name, field string) error {
	if name == "" {
		return jinerr.Newf(jinerr.KindConfig, "%s must not be empty", field)
	}
	if strings.Contains(name, "/") {
		return jinerr.Newf(jinerr.KindConfig, "%s must not contain '/': %q", field, name)
	}
	if name == ".." || strings.Contains(name, "..") {
		return jinerr.Newf(jinerr.KindConfig, "%s must not contain '..': %q", field, name)
	}
	return nil
}

// RefPath computes the ref path for l under ctx, per the table in
// spec.md §3. It fails if a required field is missing, or if a scope
// identifier contains invalid characters (no "/", no ".."; a colon
// category such as "language:rust" is substituted verbatim once
// validated).
func RefPath(l Layer, ctx Context) (string, error) {
	if !Applicable(l, ctx) {
		return "", jinerr.Newf(jinerr.KindConfig, "layer %s is not applicable under context %+v", l, ctx)
	}
	if RequiresMode(l) {
		if err := validSegment(ctx.Mode, "mode"); err != nil {
			return "", err
		}
	}
	if RequiresScope(l) {
		if err := validSegment(ctx.Scope, "scope"); err != nil {
			return "", err
		}
	}
	if RequiresProject(l) {
		if err := validSegment(ctx.Project, "project"); err != nil {
			return "", err
		}
	}

	switch l {
	case GlobalBase:
		return "refs/jin/layers/global", nil
	case ModeBase:
		return fmt.Sprintf("refs/jin/layers/mode/%s/_", ctx.Mode), nil
	case ModeScope:
		return fmt.Sprintf("refs/jin/layers/mode/%s/scope/%s/_", ctx.Mode, ctx.Scope), nil
	case ModeScopeProject:
		return fmt.Sprintf("refs/jin/layers/mode/%s/scope/%s/project/%s", ctx.Mode, ctx.Scope, ctx.Project), nil
	case ModeProject:
		return fmt.Sprintf("refs/jin/layers/mode/%s/project/%s", ctx.Mode, ctx.Project), nil
	case ScopeBase:
		return fmt.Sprintf("refs/jin/layers/scope/%s", ctx.Scope), nil
	case ProjectBase:
		return fmt.Sprintf("refs/jin/layers/project/%s", ctx.Project), nil
	case UserLocal:
		return "refs/jin/layers/local", nil
	case WorkspaceActive:
		return "", jinerr.New(jinerr.KindConfig, "WorkspaceActive has no ref path; it is the live workspace")
	default:
		return "", jinerr.Newf(jinerr.KindConfig, "unknown layer %d", int(l))
	}
}

// Parse maps a CLI-facing layer name to a Layer value. Names match the
// table in spec.md §3, case-insensitively, plus the short aliases
// "global" (GlobalBase), "mode" (ModeBase), "scope" (ScopeBase),
// "project" (ProjectBase, add's default target per spec.md §4.5),
// "local" (UserLocal) and "workspace" (WorkspaceActive).
func Parse(name string) (Layer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "globalbase", "global":
		return GlobalBase, nil
	case "modebase", "mode":
		return ModeBase, nil
	case "modescope":
		return ModeScope, nil
	case "modescopeproject":
		return ModeScopeProject, nil
	case "modeproject":
		return ModeProject, nil
	case "scopebase", "scope":
		return ScopeBase, nil
	case "projectbase", "project":
		return ProjectBase, nil
	case "userlocal", "local":
		return UserLocal, nil
	case "workspaceactive", "workspace":
		return WorkspaceActive, nil
	default:
		return 0, jinerr.Newf(jinerr.KindConfig, "unknown layer name %q", name)
	}
}
