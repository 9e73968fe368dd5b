package models

// Role is the workspace role hierarchy, ordered OWNER > ADMIN > EDITOR > MEMBER > VIEWER.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

var roleRanks = map[Role]int{
	RoleOwner:  5,
	RoleAdmin:  4,
	RoleEditor: 3,
	RoleMember: 2,
	RoleViewer: 1,
}

// Rank returns the role's position in the hierarchy; 0 for no role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether r is one of the five known roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether r ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}
