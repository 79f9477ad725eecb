package domain

import "time"

// Event is a church event, optionally paid.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	EventDate       time.Time `json:"event_date"`
	Location        string    `json:"location,omitempty"`
	Price           float64   `json:"price"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Sermon is a recorded preaching.
type Sermon struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	PreacherName string    `json:"preacher_name"`
	SermonDate   time.Time `json:"sermon_date"`
	MediaURL     string    `json:"media_url,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Ministry is a church ministry members can join.
type Ministry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	LeaderName  string    `json:"leader_name,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlogPost is a published article.
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Content     string    `json:"content"`
	AuthorID    string    `json:"author_id,omitempty"`
	AuthorName  string    `json:"author_name"`
	Category    string    `json:"category,omitempty"`
	ViewCount   int       `json:"view_count"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlogArticle is a post opened by slug together with posts of the same category.
type BlogArticle struct {
	Post    BlogPost   `json:"post"`
	Related []BlogPost `json:"related"`
}
