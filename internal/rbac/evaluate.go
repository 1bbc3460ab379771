package rbac

// Allow decides whether the identity may perform action on module. It is a
// pure function evaluated once per guarded operation.
//
// Administrator bypasses the grant set entirely; the branch is explicit so the
// seeder never needs a synthetic "manage everything" grant row. For every
// other role the decision consults the resolved grant set: either the exact
// (module, action) pair or the module-wide manage wildcard.
func Allow(id Identity, module, action string) bool {
	if id.Role == RoleAdministrator {
		return true
	}
	if id.HasGrant(module, action) {
		return true
	}
	return id.HasGrant(module, ActionManage)
}
