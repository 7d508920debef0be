// Package hostvcs is a tiny best-effort adapter onto a host Git
// checkout, used only to warn at stage time when a path a user is
// about to add to Jin is also tracked or ignored by git (spec.md §9
// Open Questions: "Host-VCS exclusivity"). It is not a VCS engine —
// it shells out to the git binary the way internal/vcs/git does in
// the teacher repo, and every check is advisory: a git binary that is
// missing, or a working tree that isn't a git repository, just means
// no warning is produced, never an error that blocks staging.
package hostvcs

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Available reports whether dir sits inside a git working tree with a
// usable git binary. Checks here are advisory only; callers should
// treat a false result as "nothing to warn about", not as an error.
func Available(dir string) bool {
	if _, err := exec.LookPath("git"); err != nil {
		return false
	}
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// IsIgnored reports whether path (relative to dir) matches a
// .gitignore rule, via `git check-ignore`. A non-repository dir, a
// missing git binary, or any other shell-out failure is treated as
// "not ignored" rather than propagated as an error.
func IsIgnored(dir, path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", "check-ignore", "-q", filepath.ToSlash(path))
	cmd.Dir = dir
	return cmd.Run() == nil
}

// Tracked reports whether path (relative to dir) is already tracked
// by git, via `git ls-files --error-unmatch`. Failures of any kind —
// no repository, no git binary, the path genuinely untracked — all
// report false.
func Tracked(dir, path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--error-unmatch", "--", filepath.ToSlash(path))
	cmd.Dir = dir
	return cmd.Run() == nil
}

// Warning describes why a staged path may collide with the host VCS,
// for the CLI to render as an advisory note (never a staging failure).
type Warning struct {
	Path   string
	Reason string
}

// Check runs the best-effort exclusivity check for one path and
// returns a Warning if git either ignores or already tracks it. It
// returns the zero Warning (ok=false) when git is unavailable or the
// path raises no concern.
func Check(dir, path string) (Warning, bool) {
	if !Available(dir) {
		return Warning{}, false
	}
	if IsIgnored(dir, path) {
		return Warning{Path: path, Reason: "ignored by the host git repository's .gitignore"}, true
	}
	if Tracked(dir, path) {
		return Warning{Path: path, Reason: "already tracked by the host git repository"}, true
	}
	return Warning{}, false
}
