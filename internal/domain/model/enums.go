package model

// Role governs administrative capability on a board.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Permission governs mutation capability on a board.
type Permission string

const (
	PermissionView Permission = "VIEW"
	PermissionEdit Permission = "EDIT"
)

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

// CardStatus is the Kanban column a card sits in.
type CardStatus string

const (
	CardStatusTodo  CardStatus = "TODO"
	CardStatusDoing CardStatus = "DOING"
	CardStatusDone  CardStatus = "DONE"
)

func (s CardStatus) Valid() bool {
	return s == CardStatusTodo || s == CardStatusDoing || s == CardStatusDone
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
