package workflow

// Role identifies the kind of actor performing an action. Role assignment
// itself happens upstream; the engine trusts the role it is handed.
type Role string

const (
	RoleNone       Role = ""
	RoleEmployee   Role = "employee"
	RoleManager    Role = "manager"
	RoleFinance    Role = "finance"
	RoleTravelDesk Role = "travel-desk"
	RoleHR         Role = "hr"
	RoleDirector   Role = "director"
	RoleSystem     Role = "system"
)

var validRoles = map[Role]bool{
	RoleEmployee:   true,
	RoleManager:    true,
	RoleFinance:    true,
	RoleTravelDesk: true,
	RoleHR:         true,
	RoleDirector:   true,
	RoleSystem:     true,
}

// IsValid returns true if the role is a known actor role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Actor is an established caller identity. Authentication happens outside
// the engine; an Actor is whatever the auth collaborator resolved.
type Actor struct {
	ID   string
	Role Role
}

// SystemActor is the identity escalation and other scheduler-driven
// transitions run under.
var SystemActor = Actor{ID: "system", Role: RoleSystem}
