package domain

import "encoding/json"

// ContentType names a kind of published content.
type ContentType string

const (
	ContentEvent    ContentType = "event"
	ContentBlog     ContentType = "blog"
	ContentMinistry ContentType = "ministry"
	ContentSermon   ContentType = "sermon"
)

// Known reports whether t has a dedicated template and preference flag.
func (t ContentType) Known() bool {
	switch t {
	case ContentEvent, ContentBlog, ContentMinistry, ContentSermon:
		return true
	}
	return false
}

// NotificationEvent describes freshly published content.
type NotificationEvent struct {
	ContentType  ContentType `json:"type"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	ContentID    string      `json:"content_id"`
	AuthorName   string      `json:"author_name,omitempty"`
	EventDate    string      `json:"event_date,omitempty"`
	PreacherName string      `json:"preacher_name,omitempty"`
}

// UnmarshalJSON accepts content_type as an alias of type.
func (e *NotificationEvent) UnmarshalJSON(data []byte) error {
	type plain NotificationEvent
	var wire struct {
		plain
		AliasType ContentType `json:"content_type"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = NotificationEvent(wire.plain)
	if e.ContentType == "" {
		e.ContentType = wire.AliasType
	}
	return nil
}

// SubscriberPreference holds per-content-type opt-ins of one principal.
type SubscriberPreference struct {
	UserID     string `json:"user_id"`
	Events     bool   `json:"events"`
	BlogPosts  bool   `json:"blog_posts"`
	Ministries bool   `json:"ministries"`
	Sermons    bool   `json:"sermons"`
}

// OptedIn reports whether the preference covers t.
func (p SubscriberPreference) OptedIn(t ContentType) bool {
	switch t {
	case ContentEvent:
		return p.Events
	case ContentBlog:
		return p.BlogPosts
	case ContentMinistry:
		return p.Ministries
	case ContentSermon:
		return p.Sermons
	}
	return p.Events || p.BlogPosts || p.Ministries || p.Sermons
}

// Email is one outbound message.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// RecipientResult records the outcome of one send.
type RecipientResult struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`
	EmailID string `json:"email_id,omitempty"`
}

// DispatchSummary is returned by a fan-out dispatch.
type DispatchSummary struct {
	Message string            `json:"message"`
	Sent    int               `json:"sent"`
	Total   int               `json:"total"`
	Results []RecipientResult `json:"-"`
}
