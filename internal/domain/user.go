package domain

import "time"

// User is an identity stored by the in-house identity provider.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Metadata     map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal returns the read-only view of the user handed to services.
func (u *User) Principal() *Principal {
	if u == nil {
		return nil
	}
	return &Principal{ID: u.ID, Email: u.Email, FullName: u.FullName, Metadata: u.Metadata}
}
