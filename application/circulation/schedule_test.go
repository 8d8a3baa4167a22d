package circulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"circulate-backend/domain/model"
)

func TestDueFrequencies(t *testing.T) {
	day := func(value string) time.Time {
		d, err := time.Parse("2006-01-02", value)
		if err != nil {
			t.Fatalf("bad date %s: %v", value, err)
		}
		return d
	}

	tests := []struct {
		name string
		date time.Time
		want []model.Frequency
	}{
		{
			name: "plain weekday",
			date: day("2025-06-04"), // Wednesday
			want: []model.Frequency{model.FrequencyDaily},
		},
		{
			name: "friday of an odd iso week",
			date: day("2025-06-06"), // Friday, ISO week 23
			want: []model.Frequency{model.FrequencyDaily, model.FrequencyWeekly},
		},
		{
			name: "friday of an even iso week",
			date: day("2025-06-13"), // Friday, ISO week 24
			want: []model.Frequency{model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyBiweekly},
		},
		{
			name: "last day of month midweek",
			date: day("2025-06-30"), // Monday
			want: []model.Frequency{model.FrequencyDaily, model.FrequencyMonthly},
		},
		{
			name: "month end on an even-week friday",
			date: day("2025-10-31"), // Friday, ISO week 44
			want: []model.Frequency{model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyBiweekly, model.FrequencyMonthly},
		},
		{
			name: "february month end",
			date: day("2025-02-28"), // Friday, ISO week 9
			want: []model.Frequency{model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly},
		},
		{
			name: "leap year february 29",
			date: day("2024-02-29"), // Thursday
			want: []model.Frequency{model.FrequencyDaily, model.FrequencyMonthly},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueFrequencies(tt.date))
		})
	}
}
