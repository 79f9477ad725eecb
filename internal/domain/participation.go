package domain

import "time"

// RegistrationStatus is the state of an event registration.
type RegistrationStatus string

const (
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// EventRegistration links a member to an event. One row per (user, event).
type EventRegistration struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	EventID      string             `json:"event_id"`
	Status       RegistrationStatus `json:"status"`
	Notes        string             `json:"notes,omitempty"`
	RegisteredAt time.Time          `json:"registered_at"`
}

// MembershipStatus is the state of a ministry membership.
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

// MembershipRoleMember is the role given to members who join on their own.
const MembershipRoleMember = "member"

// MinistryMembership links a member to a ministry. One row per (user, ministry).
type MinistryMembership struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	MinistryID string           `json:"ministry_id"`
	Status     MembershipStatus `json:"status"`
	Role       string           `json:"role"`
	JoinedAt   time.Time        `json:"joined_at"`
}
