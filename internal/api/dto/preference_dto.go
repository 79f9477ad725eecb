package dto

// EmailPreferencesRequest replaces the caller's notification opt-ins.
type EmailPreferencesRequest struct {
	Events     bool `json:"events"`
	BlogPosts  bool `json:"blog_posts"`
	Ministries bool `json:"ministries"`
	Sermons    bool `json:"sermons"`
}
