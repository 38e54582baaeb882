package schedule

import (
	"testing"
	"time"

	"github.com/eink-server/eink-display-server/internal/models"
)

// at builds a UTC instant on a fixed reference week. 2024-01-01 is a Monday.
func at(day time.Weekday, hour, min int) time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(day) - int(time.Monday) + 7) % 7
	return base.AddDate(0, 0, offset).Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestCalculateRefreshRate(t *testing.T) {
	tests := []struct {
		name     string
		schedule *models.RefreshSchedule
		now      time.Time
		want     int
	}{
		{
			name:     "nil schedule returns default",
			schedule: nil,
			now:      at(time.Monday, 10, 0),
			want:     900,
		},
		{
			name:     "empty schedule returns default",
			schedule: &models.RefreshSchedule{},
			now:      at(time.Monday, 10, 0),
			want:     900,
		},
		{
			name: "inside window",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "09:00", End: "17:00", Rate: 300},
			}},
			now:  at(time.Monday, 10, 0),
			want: 300,
		},
		{
			name: "start minute is included",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "09:00", End: "17:00", Rate: 300},
			}},
			now:  at(time.Monday, 9, 0),
			want: 300,
		},
		{
			name: "end minute is excluded",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "09:00", End: "17:00", Rate: 300},
			}},
			now:  at(time.Monday, 17, 0),
			want: 900,
		},
		{
			name: "day filter excludes other days",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "09:00", End: "17:00", Days: []time.Weekday{time.Tuesday}, Rate: 300},
			}},
			now:  at(time.Monday, 10, 0),
			want: 900,
		},
		{
			name: "empty days means every day",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "09:00", End: "17:00", Rate: 300},
			}},
			now:  at(time.Sunday, 10, 0),
			want: 300,
		},
		{
			name: "first matching window wins",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "08:00", End: "12:00", Rate: 120},
				{Start: "09:00", End: "17:00", Rate: 600},
			}},
			now:  at(time.Monday, 10, 0),
			want: 120,
		},
		{
			name: "window order decides overlap",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "09:00", End: "17:00", Rate: 600},
				{Start: "08:00", End: "12:00", Rate: 120},
			}},
			now:  at(time.Monday, 10, 0),
			want: 600,
		},
		{
			name: "midnight wrap matches the evening side",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "22:00", End: "06:00", Days: []time.Weekday{time.Friday}, Rate: 3600},
			}},
			now:  at(time.Friday, 23, 30),
			want: 3600,
		},
		{
			name: "midnight wrap matches the following morning",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "22:00", End: "06:00", Days: []time.Weekday{time.Friday}, Rate: 3600},
			}},
			now:  at(time.Saturday, 3, 0),
			want: 3600,
		},
		{
			name: "midnight wrap excludes the gap",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "22:00", End: "06:00", Days: []time.Weekday{time.Friday}, Rate: 3600},
			}},
			now:  at(time.Saturday, 7, 0),
			want: 900,
		},
		{
			name: "malformed clock is skipped",
			schedule: &models.RefreshSchedule{Windows: []models.TimeWindow{
				{Start: "bogus", End: "17:00", Rate: 300},
				{Start: "09:00", End: "17:00", Rate: 600},
			}},
			now:  at(time.Monday, 10, 0),
			want: 600,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRefreshRate(tt.schedule, 900, "UTC", tt.now)
			if got != tt.want {
				t.Errorf("CalculateRefreshRate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateRefreshRateTimezone(t *testing.T) {
	schedule := &models.RefreshSchedule{Windows: []models.TimeWindow{
		{Start: "09:00", End: "17:00", Rate: 300},
	}}

	// 14:00 UTC is 09:00 in New York during winter.
	now := time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC)

	if got := CalculateRefreshRate(schedule, 900, "America/New_York", now); got != 300 {
		t.Errorf("New York clock should match, got %d", got)
	}
	if got := CalculateRefreshRate(schedule, 900, "UTC", now); got != 300 {
		t.Errorf("14:00 UTC should match directly, got %d", got)
	}

	// 02:00 UTC is 21:00 the previous evening in New York.
	night := time.Date(2024, 1, 8, 2, 0, 0, 0, time.UTC)
	if got := CalculateRefreshRate(schedule, 900, "America/New_York", night); got != 900 {
		t.Errorf("New York night should not match, got %d", got)
	}
}

func TestCalculateRefreshRateBadTimezone(t *testing.T) {
	schedule := &models.RefreshSchedule{Windows: []models.TimeWindow{
		{Start: "09:00", End: "17:00", Rate: 300},
	}}

	// Unknown zones fall back to UTC instead of failing the poll.
	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	if got := CalculateRefreshRate(schedule, 900, "Not/AZone", now); got != 300 {
		t.Errorf("bad timezone should fall back to UTC, got %d", got)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseClock(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseClock(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
