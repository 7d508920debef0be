package registry

import (
	"testing"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/objstore"
)

func newTestStore(t *testing.T) *objstore.Store {
	t.Helper()
	s := objstore.Open(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func TestModeLifecycle(t *testing.T) {
	s := newTestStore(t)
	if ModeExists(s, "dev") {
		t.Fatal("ModeExists = true before CreateMode")
	}
	if err := CreateMode(s, "dev"); err != nil {
		t.Fatalf("CreateMode: %v", err)
	}
	if !ModeExists(s, "dev") {
		t.Fatal("ModeExists = false after CreateMode")
	}
	if err := DeleteMode(s, "dev"); err != nil {
		t.Fatalf("DeleteMode: %v", err)
	}
	if ModeExists(s, "dev") {
		t.Fatal("ModeExists = true after DeleteMode")
	}
}

func TestCreateModeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := CreateMode(s, "dev"); err != nil {
		t.Fatalf("CreateMode first: %v", err)
	}
	if err := CreateMode(s, "dev"); err != nil {
		t.Fatalf("CreateMode second: %v", err)
	}
}

func TestListModesSorted(t *testing.T) {
	s := newTestStore(t)
	for _, m := range []string{"staging", "dev", "prod"} {
		if err := CreateMode(s, m); err != nil {
			t.Fatalf("CreateMode(%s): %v", m, err)
		}
	}
	got, err := ListModes(s)
	if err != nil {
		t.Fatalf("ListModes: %v", err)
	}
	want := []string{"dev", "prod", "staging"}
	if len(got) != len(want) {
		t.Fatalf("ListModes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListModes[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScopeLifecycleUnderMode(t *testing.T) {
	s := newTestStore(t)
	if err := CreateMode(s, "dev"); err != nil {
		t.Fatalf("CreateMode: %v", err)
	}
	if ScopeExists(s, "dev", "team-a") {
		t.Fatal("ScopeExists = true before CreateScope")
	}
	if err := CreateScope(s, "dev", "team-a"); err != nil {
		t.Fatalf("CreateScope: %v", err)
	}
	if !ScopeExists(s, "dev", "team-a") {
		t.Fatal("ScopeExists = false after CreateScope")
	}
	if err := DeleteScope(s, "dev", "team-a"); err != nil {
		t.Fatalf("DeleteScope: %v", err)
	}
	if ScopeExists(s, "dev", "team-a") {
		t.Fatal("ScopeExists = true after DeleteScope")
	}
}

func TestListScopesScopedToMode(t *testing.T) {
	s := newTestStore(t)
	if err := CreateMode(s, "dev"); err != nil {
		t.Fatalf("CreateMode dev: %v", err)
	}
	if err := CreateMode(s, "prod"); err != nil {
		t.Fatalf("CreateMode prod: %v", err)
	}
	if err := CreateScope(s, "dev", "team-a"); err != nil {
		t.Fatalf("CreateScope: %v", err)
	}
	if err := CreateScope(s, "prod", "team-b"); err != nil {
		t.Fatalf("CreateScope: %v", err)
	}

	got, err := ListScopes(s, "dev")
	if err != nil {
		t.Fatalf("ListScopes: %v", err)
	}
	if len(got) != 1 || got[0] != "team-a" {
		t.Errorf("ListScopes(dev) = %v, want [team-a]", got)
	}
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestStore(t)
	if ProjectExists(s, "api") {
		t.Fatal("ProjectExists = true before CreateProject")
	}
	if err := CreateProject(s, "api"); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if !ProjectExists(s, "api") {
		t.Fatal("ProjectExists = false after CreateProject")
	}
	if err := DeleteProject(s, "api"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if ProjectExists(s, "api") {
		t.Fatal("ProjectExists = true after DeleteProject")
	}
}

func TestListProjectsSorted(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"web", "api", "jobs"} {
		if err := CreateProject(s, p); err != nil {
			t.Fatalf("CreateProject(%s): %v", p, err)
		}
	}
	got, err := ListProjects(s)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	want := []string{"api", "jobs", "web"}
	if len(got) != len(want) {
		t.Fatalf("ListProjects = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListProjects[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRequireModeMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	err := RequireMode(s, "dev")
	if err == nil {
		t.Fatal("expected error for unregistered mode")
	}
	if jinerr.KindOf(err) != jinerr.KindNotFound {
		t.Errorf("KindOf = %v, want KindNotFound", jinerr.KindOf(err))
	}
}

func TestRequireModeSucceedsWhenRegistered(t *testing.T) {
	s := newTestStore(t)
	if err := CreateMode(s, "dev"); err != nil {
		t.Fatalf("CreateMode: %v", err)
	}
	if err := RequireMode(s, "dev"); err != nil {
		t.Errorf("RequireMode: %v", err)
	}
}

func TestRequireScopeMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := CreateMode(s, "dev"); err != nil {
		t.Fatalf("CreateMode: %v", err)
	}
	err := RequireScope(s, "dev", "team-a")
	if err == nil {
		t.Fatal("expected error for unregistered scope")
	}
	if jinerr.KindOf(err) != jinerr.KindNotFound {
		t.Errorf("KindOf = %v, want KindNotFound", jinerr.KindOf(err))
	}
}

func TestRequireProjectMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	err := RequireProject(s, "api")
	if err == nil {
		t.Fatal("expected error for unregistered project")
	}
	if jinerr.KindOf(err) != jinerr.KindNotFound {
		t.Errorf("KindOf = %v, want KindNotFound", jinerr.KindOf(err))
	}
}
