package domain

import "time"

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	MessageType string    `json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContactResult carries provider ids of the two emails sent for a message.
type ContactResult struct {
	Success             bool   `json:"success"`
	ConfirmationEmailID string `json:"confirmationEmailId"`
	NotificationEmailID string `json:"notificationEmailId"`
}
