// Package circulation implements the digest pipeline: fanning content out
// into per-(user, frequency) aggregates when it is posted, and sending the
// accumulated digests on schedule.
package circulation

import (
	"time"

	"circulate-backend/domain/model"
)

// DueFrequencies returns the frequency buckets whose circulations go out on
// the given date. Daily goes out every day; weekly on Fridays; biweekly on
// Fridays of even ISO weeks; monthly on the last day of the month. The
// caller picks the reference timezone by passing now already localized.
func DueFrequencies(now time.Time) []model.Frequency {
	due := []model.Frequency{model.FrequencyDaily}

	if now.Weekday() == time.Friday {
		due = append(due, model.FrequencyWeekly)
		if _, week := now.ISOWeek(); week%2 == 0 {
			due = append(due, model.FrequencyBiweekly)
		}
	}

	if isLastDayOfMonth(now) {
		due = append(due, model.FrequencyMonthly)
	}

	return due
}

func isLastDayOfMonth(now time.Time) bool {
	return now.AddDate(0, 0, 1).Month() != now.Month()
}
