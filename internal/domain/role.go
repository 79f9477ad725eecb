package domain

import "time"

// Role is the authorization role of a principal.
type Role string

const (
	RoleNone  Role = ""
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// RoleAssignment maps one principal to exactly one role.
type RoleAssignment struct {
	ID        string
	UserID    string
	Role      Role
	CreatedAt time.Time
}

// UserWithRole is a row of the admin user manager.
type UserWithRole struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}
