package dto

import "time"

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FullName      string `json:"full_name"`
	RequestedRole string `json:"requested_role"`
}

// SignInRequest payload for login.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of a principal.
type UserResponse struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}
