package rbac

import "testing"

func TestAllowAdministratorBypass(t *testing.T) {
	// An Administrator identity needs no grants at all.
	id := NewIdentity(1, "admin@test.local", "Admin", RoleAdministrator, nil)
	if !Allow(id, ModuleUsers, ActionDelete) {
		t.Fatalf("administrator must pass every check")
	}
	if !Allow(id, "unknown-module", "unknown-action") {
		t.Fatalf("administrator bypass must not depend on the catalog")
	}
}

func TestAllowExactGrant(t *testing.T) {
	id := NewIdentity(2, "hr@test.local", "HR", RoleHRSpecialist, []Permission{
		{Module: ModuleEmployees, Action: ActionRead},
	})
	if !Allow(id, ModuleEmployees, ActionRead) {
		t.Fatalf("expected employees:read to be allowed")
	}
	if Allow(id, ModuleEmployees, ActionDelete) {
		t.Fatalf("employees:delete was never granted")
	}
	if Allow(id, ModuleUsers, ActionRead) {
		t.Fatalf("users:read was never granted")
	}
}

func TestAllowManageWildcard(t *testing.T) {
	id := NewIdentity(3, "lead@test.local", "Lead", RoleHRSpecialist, []Permission{
		{Module: ModuleDocuments, Action: ActionManage},
	})
	for _, action := range []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		if !Allow(id, ModuleDocuments, action) {
			t.Fatalf("manage grant must cover documents:%s", action)
		}
	}
	if Allow(id, ModuleEmployees, ActionRead) {
		t.Fatalf("manage grant is scoped to its module")
	}
}

func TestAllowEmptyIdentity(t *testing.T) {
	id := NewIdentity(4, "nobody@test.local", "Nobody", "", nil)
	if Allow(id, ModuleDashboard, ActionRead) {
		t.Fatalf("no role, no grants, no access")
	}
}

func TestCatalogRoleMatrix(t *testing.T) {
	cases := []struct {
		role   string
		module string
		action string
		want   bool
	}{
		{RoleHRSpecialist, ModuleEmployees, ActionCreate, true},
		{RoleHRSpecialist, ModuleEmployees, ActionDelete, false},
		{RoleHRSpecialist, ModuleUsers, ActionRead, false},
		{RoleHRSpecialist, ModuleDashboard, ActionRead, true},
		{RoleDirector, ModuleTasks, ActionRead, true},
		{RoleDirector, ModuleTasks, ActionCreate, false},
		{RoleDirector, ModuleUsers, ActionRead, true},
		{RoleAdministrator, ModuleWorkspaces, ActionDelete, true},
		{"Unknown", ModuleDashboard, ActionRead, false},
	}
	for _, tc := range cases {
		entry := CatalogEntry{Module: tc.module, Action: tc.action}
		if got := entry.GrantedTo(tc.role); got != tc.want {
			t.Errorf("%s on %s:%s = %v, want %v", tc.role, tc.module, tc.action, got, tc.want)
		}
	}
}

func TestCatalogDashboardReadOnly(t *testing.T) {
	count := 0
	for _, entry := range Catalog() {
		if entry.Module != ModuleDashboard {
			continue
		}
		count++
		if entry.Action != ActionRead {
			t.Fatalf("dashboard carries unexpected action %q", entry.Action)
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one dashboard entry, got %d", count)
	}
}
