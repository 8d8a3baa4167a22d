package model

import "time"

// Content is a post or event shared into one or more circles. Content is
// immutable after creation except for deletion.
type Content struct {
	ID        string
	CreatedBy string
	Title     string
	CircleIDs []string
	// DateTime distinguishes an event (set) from a plain post (nil).
	DateTime    *time.Time
	Description string
	Link        string
	Privacy     Privacy
	Categories  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsEvent reports whether the content is an event rather than a post.
func (c *Content) IsEvent() bool {
	return c.DateTime != nil
}
