package entities

// Role representa o papel de um usuário no sistema
type Role string

const (
	RoleUser       Role = "USER"
	RolePremium    Role = "PREMIUM"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// AdminRoles são os papéis que liberam o console administrativo
var AdminRoles = []Role{RoleAdmin, RoleSuperAdmin}

// Permission representa uma permissão específica
type Permission string

const (
	// Profile permissions
	PermissionProfileRead  Permission = "profile.read"
	PermissionProfileWrite Permission = "profile.write"

	// Admin console permissions
	PermissionUserRead        Permission = "users.read"
	PermissionUserWrite       Permission = "users.write"
	PermissionUserDelete      Permission = "users.delete"
	PermissionActivityLogRead Permission = "activity_logs.read"

	// Conceder ou revogar papéis administrativos
	PermissionAdminRolesManage Permission = "admin_roles.manage"
)

// RolePermissions mapeia roles para suas permissões
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionProfileRead,
		PermissionProfileWrite,
		PermissionUserRead,
		PermissionUserWrite,
		PermissionUserDelete,
		PermissionActivityLogRead,
		PermissionAdminRolesManage,
	},
	RoleAdmin: {
		PermissionProfileRead,
		PermissionProfileWrite,
		PermissionUserRead,
		PermissionUserWrite,
		PermissionUserDelete,
		PermissionActivityLogRead,
	},
	RolePremium: {
		PermissionProfileRead,
		PermissionProfileWrite,
	},
	RoleUser: {
		PermissionProfileRead,
		PermissionProfileWrite,
	},
}

// IsValid verifica se o role é conhecido
func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}

// IsAdmin verifica se o role dá acesso ao console administrativo
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// GetPermissions retorna permissões de um role
func (r Role) GetPermissions() []Permission {
	return RolePermissions[r]
}

// HasPermission verifica se role tem permissão
func (r Role) HasPermission(permission Permission) bool {
	permissions := RolePermissions[r]
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ParseRole converte uma string em Role, aceitando apenas valores conhecidos
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}
