package rbac

// Canonical role names. The set is fixed and materialized by the seeder;
// request-time code never creates roles.
const (
	RoleAdministrator = "Administrator"
	RoleDirector      = "Director"
	RoleHRSpecialist  = "HR Specialist"
)

// Actions understood by the permission catalog. ActionManage is a grant-level
// wildcard covering every action within a module; routes never require it.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

// Module names subject to access control.
const (
	ModuleDashboard  = "dashboard"
	ModuleUsers      = "users"
	ModuleEmployees  = "employees"
	ModuleAttendance = "attendance"
	ModuleDocuments  = "documents"
	ModuleWorkspaces = "workspaces"
	ModuleBoards     = "boards"
	ModuleTasks      = "tasks"
)

// CatalogEntry pairs a module with an action in the seedable vocabulary.
type CatalogEntry struct {
	Module string
	Action string
}

var crudActions = []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

var crudModules = []string{
	ModuleUsers,
	ModuleEmployees,
	ModuleAttendance,
	ModuleDocuments,
	ModuleWorkspaces,
	ModuleBoards,
	ModuleTasks,
}

// Catalog returns the full permission vocabulary: dashboard is read-only,
// every other module carries the four CRUD actions.
func Catalog() []CatalogEntry {
	entries := []CatalogEntry{{Module: ModuleDashboard, Action: ActionRead}}
	for _, module := range crudModules {
		for _, action := range crudActions {
			entries = append(entries, CatalogEntry{Module: module, Action: action})
		}
	}
	return entries
}

// hrModules are the modules the HR Specialist role may create/read/update in.
var hrModules = map[string]struct{}{
	ModuleDashboard:  {},
	ModuleEmployees:  {},
	ModuleAttendance: {},
	ModuleDocuments:  {},
}

// hrActions are the actions granted to HR Specialist within hrModules.
var hrActions = map[string]struct{}{
	ActionCreate: {},
	ActionRead:   {},
	ActionUpdate: {},
}

// directorModules are readable by the Director role. Directors get read
// access across the whole catalog and nothing else.
var directorModules = map[string]struct{}{
	ModuleDashboard:  {},
	ModuleUsers:      {},
	ModuleEmployees:  {},
	ModuleAttendance: {},
	ModuleDocuments:  {},
	ModuleWorkspaces: {},
	ModuleBoards:     {},
	ModuleTasks:      {},
}

// GrantedTo reports whether the role receives the catalog entry at seed time.
// Administrator is granted everything; its request-time bypass in Allow is on
// top of that, not instead of it.
func (e CatalogEntry) GrantedTo(role string) bool {
	switch role {
	case RoleAdministrator:
		return true
	case RoleHRSpecialist:
		if _, ok := hrModules[e.Module]; !ok {
			return false
		}
		if e.Module == ModuleDashboard {
			return e.Action == ActionRead
		}
		_, ok := hrActions[e.Action]
		return ok
	case RoleDirector:
		if e.Action != ActionRead {
			return false
		}
		_, ok := directorModules[e.Module]
		return ok
	default:
		return false
	}
}

// roleDescriptions holds the canonical description text the seeder resets on
// every run.
var roleDescriptions = map[string]string{
	RoleAdministrator: "Full access to every module",
	RoleDirector:      "Read-only access across the organization",
	RoleHRSpecialist:  "Manage employee records, attendance and documents",
}
