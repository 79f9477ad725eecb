package dto

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	Role string `json:"role"`
}

// RoleResponse carries a resolved role; null for anonymous callers.
type RoleResponse struct {
	Role *string `json:"role"`
}
