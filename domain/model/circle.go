package model

import "time"

// Frequency is how often a circle's members receive a circulation digest.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"

	// FrequencyAll marks an in-memory record consolidated across every due
	// frequency bucket for one user. It is never persisted.
	FrequencyAll Frequency = "all"
)

// Frequencies lists every persistable frequency.
func Frequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly}
}

// Valid reports whether f is a persistable frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// Privacy controls who can see a circle or a piece of content.
type Privacy string

const (
	PrivacyPrivate Privacy = "private"
	PrivacyPublic  Privacy = "public"
)

// Valid reports whether p is a known privacy setting.
func (p Privacy) Valid() bool {
	return p == PrivacyPrivate || p == PrivacyPublic
}

// Circle is a group of users who share content and receive a periodic
// digest of it.
type Circle struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	Members     []string
	// ContentIDs is every content id ever posted into the circle.
	ContentIDs []string
	// UpcomingContentIDs are content ids not yet included in a sent
	// circulation; cleared after each send cycle.
	UpcomingContentIDs []string
	Frequency          Frequency
	Privacy            Privacy
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasMember reports whether userID belongs to the circle.
func (c *Circle) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsPublic reports whether the circle is publicly visible.
func (c *Circle) IsPublic() bool {
	return c.Privacy == PrivacyPublic
}
