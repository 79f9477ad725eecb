package domain

import (
	"strings"
	"time"
)

// Metadata keys carrying the role requested at signup.
const (
	MetadataRequestedRole = "requested_role"
	MetadataUserType      = "user_type"
	MetadataFullName      = "full_name"
)

// Principal is an authenticated identity. Services receive it explicitly.
type Principal struct {
	ID       string
	Email    string
	FullName string
	Metadata map[string]any
}

// RequestedRole returns the signup role hint, defaulting to RoleUser.
func (p *Principal) RequestedRole() Role {
	if p == nil {
		return RoleUser
	}
	for _, key := range []string{MetadataRequestedRole, MetadataUserType} {
		raw, ok := p.Metadata[key].(string)
		if !ok {
			continue
		}
		if role := Role(strings.ToLower(strings.TrimSpace(raw))); role.Valid() {
			return role
		}
		return RoleUser
	}
	return RoleUser
}

// DisplayName prefers the full name and falls back to the email.
func (p *Principal) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FullName != "" {
		return p.FullName
	}
	if name, ok := p.Metadata[MetadataFullName].(string); ok && name != "" {
		return name
	}
	return p.Email
}

// Session is the result of a successful sign-in or sign-up.
type Session struct {
	Principal   *Principal
	AccessToken string
	ExpiresAt   time.Time
}
