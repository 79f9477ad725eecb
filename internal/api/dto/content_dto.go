package dto

// CreateEventRequest payload for POST /api/events and PUT /api/events/:id.
type CreateEventRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	EventDate       string  `json:"event_date"`
	Location        string  `json:"location"`
	Price           float64 `json:"price"`
	MaxParticipants *int    `json:"max_participants"`
}

// CreateSermonRequest payload for POST /api/sermons and PUT /api/sermons/:id.
type CreateSermonRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PreacherName string `json:"preacher_name"`
	SermonDate   string `json:"sermon_date"`
	MediaURL     string `json:"media_url"`
}

// CreateMinistryRequest payload for POST /api/ministries and PUT /api/ministries/:id.
type CreateMinistryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LeaderName  string `json:"leader_name"`
}

// CreateBlogPostRequest payload for POST /api/blog.
type CreateBlogPostRequest struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	AuthorName string `json:"author_name"`
	Category   string `json:"category"`
}

// EventRegistrationRequest payload for POST /api/events/:id/registration.
type EventRegistrationRequest struct {
	Notes string `json:"notes"`
}
