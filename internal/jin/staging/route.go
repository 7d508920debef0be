package staging

import (
	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/layer"
)

// TargetFlags mirrors the CLI flags `add` accepts to pick a staging
// target layer (spec.md §4.5). Exactly the combinations below map onto
// a target layer; anything else is a Config error surfaced
// before any side effect, per spec.md §7.
type TargetFlags struct {
	Mode    string
	Scope   string
	Project string
	Local   bool
}

// Resolve maps flags onto a single target Layer, given the context
// fields available for defaulting. --local is mutually exclusive with
// any other layer flag; with no flags at all, the default layer comes
// from store config (spec.md §4.5's "defaulted to ProjectBase").
func (f TargetFlags) Resolve(defaultLayer layer.Layer) (layer.Layer, error) {
	if f.Local && (f.Mode != "" || f.Scope != "" || f.Project != "") {
		return 0, jinerr.New(jinerr.KindConfig, "--local cannot be combined with --mode/--scope/--project")
	}
	if f.Local {
		return layer.UserLocal, nil
	}

	switch {
	case f.Mode != "" && f.Scope != "" && f.Project != "":
		return layer.ModeScopeProject, nil
	case f.Mode != "" && f.Scope != "":
		return layer.ModeScope, nil
	case f.Mode != "" && f.Project != "":
		return layer.ModeProject, nil
	case f.Mode != "":
		return layer.ModeBase, nil
	case f.Scope != "" && f.Project != "":
		return 0, jinerr.New(jinerr.KindConfig, "scope+project with no mode does not name a layer; add --mode")
	case f.Scope != "":
		return layer.ScopeBase, nil
	case f.Project != "":
		return layer.ProjectBase, nil
	default:
		return defaultLayer, nil
	}
}
