package model

import "time"

// DefaultTimezone is assumed for users whose identity provider record does
// not carry one.
const DefaultTimezone = "UTC"

// User mirrors the identity provider's view of an account. It is upserted
// by the sync trigger on every authentication and read-only otherwise.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayLabel renders the "FirstName L." label shown next to content a
// user created.
func (u *User) DisplayLabel() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	label := u.FirstName
	if u.LastName != "" {
		if label != "" {
			label += " "
		}
		label += u.LastName[:1] + "."
	}
	return label
}

// Location resolves the user's timezone, falling back to UTC when the
// stored name is absent or unknown.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
