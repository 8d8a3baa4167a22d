package model

import (
	"sort"
	"time"
)

// DigestItem is one piece of content prepared for display in an email.
type DigestItem struct {
	Title       string
	Description string
	Link        string
	// CreatorLabel is the human-readable "FirstName L." form of the
	// creator, or their raw user id when the creator cannot be resolved.
	CreatorLabel string
	CircleID     string
	CircleName   string
	// When is set for events only, already shifted into the recipient's
	// timezone.
	When *time.Time
}

// DigestCircle groups a circle's non-event content for display.
type DigestCircle struct {
	ID    string
	Name  string
	Posts []DigestItem
}

// DigestDay groups events across all circles by calendar date in the
// recipient's timezone.
type DigestDay struct {
	Date   time.Time
	Events []DigestItem
}

// Digest is the fully joined, display-ready structure for one recipient's
// circulation email.
type Digest struct {
	CirculationID string
	UserID        string
	Circles       []DigestCircle
	Days          []DigestDay
}

// HasEvents reports whether any event content made it into the digest.
func (d *Digest) HasEvents() bool {
	return len(d.Days) > 0
}

// HasPosts reports whether any circle carries non-event content.
func (d *Digest) HasPosts() bool {
	for _, c := range d.Circles {
		if len(c.Posts) > 0 {
			return true
		}
	}
	return false
}

// Empty reports whether the digest has nothing to show.
func (d *Digest) Empty() bool {
	return !d.HasEvents() && !d.HasPosts()
}

// BuildDigest joins one consolidated circulation with the resolved circle,
// content and user maps. Content ids referenced by a circle but missing
// from the content map are skipped. Events are grouped by calendar date in
// the recipient's timezone; posts stay grouped by circle.
func BuildDigest(
	circulation *UpcomingCirculation,
	circles map[string]*Circle,
	content map[string]*Content,
	users map[string]*User,
	loc *time.Location,
) *Digest {
	if loc == nil {
		loc = time.UTC
	}

	digest := &Digest{
		CirculationID: circulation.CirculationID,
		UserID:        circulation.UserID,
	}

	eventsByDate := make(map[time.Time][]DigestItem)

	for _, circleID := range circulation.Circles {
		circle, ok := circles[circleID]
		if !ok {
			continue
		}

		digestCircle := DigestCircle{ID: circle.ID, Name: circle.Name}

		for _, contentID := range circle.UpcomingContentIDs {
			item, ok := content[contentID]
			if !ok {
				continue
			}

			entry := DigestItem{
				Title:        item.Title,
				Description:  item.Description,
				Link:         item.Link,
				CreatorLabel: creatorLabel(item.CreatedBy, users),
				CircleID:     circle.ID,
				CircleName:   circle.Name,
			}

			if item.IsEvent() {
				local := item.DateTime.In(loc)
				entry.When = &local
				day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
				eventsByDate[day] = append(eventsByDate[day], entry)
			} else {
				digestCircle.Posts = append(digestCircle.Posts, entry)
			}
		}

		if len(digestCircle.Posts) > 0 {
			digest.Circles = append(digest.Circles, digestCircle)
		}
	}

	for day, events := range eventsByDate {
		sort.Slice(events, func(i, j int) bool { return events[i].When.Before(*events[j].When) })
		digest.Days = append(digest.Days, DigestDay{Date: day, Events: events})
	}
	sort.Slice(digest.Days, func(i, j int) bool { return digest.Days[i].Date.Before(digest.Days[j].Date) })

	return digest
}

func creatorLabel(userID string, users map[string]*User) string {
	if user, ok := users[userID]; ok {
		return user.DisplayLabel()
	}
	return userID
}
