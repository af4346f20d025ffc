package stats

import (
	"testing"
	"time"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

func day(d int) time.Time {
	return time.Date(2026, time.May, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekRangeFrom(t *testing.T) {
	// May 11 2026 is a Monday, May 17 a Sunday.
	tests := []struct {
		name      string
		ref       time.Time
		offset    int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "midweek reference",
			ref:       time.Date(2026, time.May, 13, 15, 4, 5, 0, time.UTC),
			wantStart: day(11),
			wantEnd:   day(18),
		},
		{
			name:      "sunday belongs to the closing week",
			ref:       time.Date(2026, time.May, 17, 23, 0, 0, 0, time.UTC),
			wantStart: day(11),
			wantEnd:   day(18),
		},
		{
			name:      "monday starts its own week",
			ref:       time.Date(2026, time.May, 11, 0, 0, 0, 0, time.UTC),
			wantStart: day(11),
			wantEnd:   day(18),
		},
		{
			name:      "previous week",
			ref:       time.Date(2026, time.May, 13, 12, 0, 0, 0, time.UTC),
			offset:    -1,
			wantStart: day(4),
			wantEnd:   day(11),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekRangeFrom(tt.ref, tt.offset)
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("start: got %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.wantEnd) {
				t.Errorf("end: got %v, want %v", got.End, tt.wantEnd)
			}
		})
	}
}

func TestMonthRangeFrom(t *testing.T) {
	got := MonthRangeFrom(time.Date(2026, time.May, 20, 10, 0, 0, 0, time.UTC), 0)
	if !got.Start.Equal(day(1)) {
		t.Errorf("start: got %v, want %v", got.Start, day(1))
	}
	if !got.End.Equal(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end: got %v, want June 1", got.End)
	}

	// Offsets cross year boundaries.
	prev := MonthRangeFrom(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), -1)
	if !prev.Start.Equal(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start: got %v, want December 2025", prev.Start)
	}
	if prev.MonthName() != "December 2025" {
		t.Errorf("month name: got %s, want December 2025", prev.MonthName())
	}
}

func TestTimeRangeContains(t *testing.T) {
	tr := TimeRange{Start: day(11), End: day(18)}

	if !tr.Contains(day(11)) {
		t.Error("expected start to be inclusive")
	}
	if !tr.Contains(day(17)) {
		t.Error("expected last day to be inside")
	}
	if tr.Contains(day(18)) {
		t.Error("expected end to be exclusive")
	}
	if tr.Contains(day(10)) {
		t.Error("expected day before start to be outside")
	}
}

func TestFormatPeriod(t *testing.T) {
	tr := TimeRange{Start: day(11), End: day(18)}
	if got := tr.FormatPeriod(); got != "2026-05-11 to 2026-05-17" {
		t.Errorf("unexpected period format: %s", got)
	}
}

func TestFilterGames(t *testing.T) {
	d10, d13, d20 := day(10), day(13), day(20)
	games := []*models.Game{
		{ID: "before", Date: &d10},
		{ID: "inside", Date: &d13},
		{ID: "after", Date: &d20},
		{ID: "undated"},
	}

	in := FilterGames(games, TimeRange{Start: day(11), End: day(18)})
	if len(in) != 1 || in[0].ID != "inside" {
		t.Errorf("expected only the in-range game, got %v", in)
	}
}

func TestRecentForm(t *testing.T) {
	if got := RecentForm(nil, 5); got != "No games" {
		t.Errorf("expected No games for empty input, got %q", got)
	}
	if got := RecentForm([]*models.Game{{ID: "undated", TeamScore: 1}}, 5); got != "No games" {
		t.Errorf("expected No games for undated input, got %q", got)
	}

	games := resultGames("WLTWW")
	if got := RecentForm(games, 3); got != "W-W-T" {
		t.Errorf("expected newest-first W-W-T, got %q", got)
	}
	if got := RecentForm(games, 10); got != "W-W-T-L-W" {
		t.Errorf("expected all five results, got %q", got)
	}
}

func TestPeriodLabels(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{WeekLabel(0), "This Week"},
		{WeekLabel(-1), "Last Week"},
		{WeekLabel(-4), "4 Weeks Ago"},
		{WeekLabel(2), "2 Weeks From Now"},
		{MonthLabel(0), "This Month"},
		{MonthLabel(-1), "Last Month"},
		{MonthLabel(-6), "6 Months Ago"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
