package shared

// Core platform permissions. Names are the canonical capability keys stored
// in the permissions table.
const (
	PermManageUsers = "manage_users"
	PermCreateUsers = "create_users"
	PermEditUsers   = "edit_users"
	PermDeleteUsers = "delete_users"

	PermManageRoles = "manage_roles"
)

// CoreScopes lists all permissions the platform ships with.
func CoreScopes() []string {
	return []string{
		PermManageUsers,
		PermCreateUsers,
		PermEditUsers,
		PermDeleteUsers,
		PermManageRoles,
	}
}
