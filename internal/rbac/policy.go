// Package rbac gates operations with a static role/module/permission table.
package rbac

// Role is a high-level permission grouping carried on the user record.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleUser       Role = "user"
)

// Module names a functional area of the application.
type Module string

const (
	ModuleSales      Module = "sales"
	ModuleInventory  Module = "inventory"
	ModuleCustomers  Module = "customers"
	ModuleAccounting Module = "accounting"
	ModuleReports    Module = "reports"
	ModuleUsers      Module = "users"
	ModuleSettings   Module = "settings"
)

// Permission is an atomic capability within a module.
type Permission string

const (
	PermView   Permission = "view"
	PermCreate Permission = "create"
	PermEdit   Permission = "edit"
	PermDelete Permission = "delete"
	PermExport Permission = "export"
)

var allPerms = []Permission{PermView, PermCreate, PermEdit, PermDelete, PermExport}

// policy is the authorization table. It is plain data: no runtime
// reflection, no database round-trips.
var policy = map[Role]map[Module][]Permission{
	RoleAdmin: {
		ModuleSales:      allPerms,
		ModuleInventory:  allPerms,
		ModuleCustomers:  allPerms,
		ModuleAccounting: allPerms,
		ModuleReports:    allPerms,
		ModuleUsers:      allPerms,
		ModuleSettings:   allPerms,
	},
	RoleSupervisor: {
		ModuleSales:      {PermView, PermCreate, PermEdit, PermExport},
		ModuleInventory:  {PermView, PermCreate, PermEdit, PermExport},
		ModuleCustomers:  {PermView, PermCreate, PermEdit, PermExport},
		ModuleAccounting: {PermView, PermCreate, PermExport},
		ModuleReports:    {PermView, PermExport},
		ModuleUsers:      {PermView},
	},
	RoleUser: {
		ModuleSales:     {PermView, PermCreate},
		ModuleInventory: {PermView},
		ModuleCustomers: {PermView, PermCreate},
		ModuleReports:   {PermView},
	},
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleUser:
		return true
	}
	return false
}

// Can reports whether the role grants the permission on the module.
func Can(role Role, module Module, perm Permission) bool {
	modules, ok := policy[role]
	if !ok {
		return false
	}
	for _, p := range modules[module] {
		if p == perm {
			return true
		}
	}
	return false
}

// Grants returns the full permission table for a role. The result is a
// copy; mutating it does not affect the policy.
func Grants(role Role) map[Module][]Permission {
	modules, ok := policy[role]
	if !ok {
		return nil
	}
	out := make(map[Module][]Permission, len(modules))
	for m, perms := range modules {
		cp := make([]Permission, len(perms))
		copy(cp, perms)
		out[m] = cp
	}
	return out
}
