package model

import (
	"fmt"
	"sort"
	"time"
)

// AllFrequenciesSuffix is the urn suffix of an in-memory consolidated
// record.
const AllFrequenciesSuffix = "allFrequencies"

// CirculationUrn builds the natural key of an UpcomingCirculation record.
func CirculationUrn(userID string, frequency Frequency) string {
	return fmt.Sprintf("%s:%s", userID, frequency)
}

// UpcomingCirculation accumulates, per (user, frequency), the circles that
// have unsent content. At most one record exists per pair; the urn is the
// primary key.
type UpcomingCirculation struct {
	Urn           string
	CirculationID string
	UserID        string
	Frequency     Frequency
	Circles       []string
	// DispatchID and DispatchClaimedAt stamp the record as claimed by a
	// sender run, so a concurrent or replayed run does not double-send it.
	DispatchID        string
	DispatchClaimedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ClaimedWithin reports whether the record carries a live dispatch claim.
func (u *UpcomingCirculation) ClaimedWithin(grace time.Duration, now time.Time) bool {
	if u.DispatchID == "" || u.DispatchClaimedAt == nil {
		return false
	}
	return now.Sub(*u.DispatchClaimedAt) < grace
}

// Consolidate merges every record belonging to one user into a single
// in-memory record keyed `<userId>:allFrequencies`, with the circle set
// equal to the union of the source records' circles. Output order is
// deterministic (sorted by user id) so runs are reproducible.
func Consolidate(records []*UpcomingCirculation) []*UpcomingCirculation {
	byUser := make(map[string]*UpcomingCirculation)
	for _, rec := range records {
		merged, ok := byUser[rec.UserID]
		if !ok {
			merged = &UpcomingCirculation{
				Urn:           fmt.Sprintf("%s:%s", rec.UserID, AllFrequenciesSuffix),
				CirculationID: rec.CirculationID,
				UserID:        rec.UserID,
				Frequency:     FrequencyAll,
			}
			byUser[rec.UserID] = merged
		}
		merged.Circles = unionStrings(merged.Circles, rec.Circles)
	}

	out := make([]*UpcomingCirculation, 0, len(byUser))
	for _, rec := range byUser {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// unionStrings appends the elements of add that are not already in base,
// preserving first-seen order.
func unionStrings(base, add []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			base = append(base, s)
		}
	}
	return base
}
