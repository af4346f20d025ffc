package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

// TimeRange is a half-open interval: Start inclusive, End exclusive.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekRange returns the Monday-to-Sunday week at the given offset from
// the current week. 0 is this week, -1 last week.
func WeekRange(offset int) TimeRange {
	return WeekRangeFrom(time.Now(), offset)
}

// WeekRangeFrom returns the Monday-to-Sunday week at the given offset
// from the week containing ref.
func WeekRangeFrom(ref time.Time, offset int) TimeRange {
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7 // ISO 8601: Sunday closes the week
	}
	start := startOfDay(ref).AddDate(0, 0, -weekday+1+offset*7)
	return TimeRange{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthRange returns the calendar month at the given offset from the
// current month. 0 is this month, -1 last month.
func MonthRange(offset int) TimeRange {
	return MonthRangeFrom(time.Now(), offset)
}

// MonthRangeFrom returns the calendar month at the given offset from
// the month containing ref.
func MonthRangeFrom(ref time.Time, offset int) TimeRange {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	start = start.AddDate(0, offset, 0)
	return TimeRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// Contains reports whether t falls inside the range.
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}

// FormatPeriod renders the range as "2026-05-11 to 2026-05-17". The
// exclusive end is pulled back a day for display.
func (tr TimeRange) FormatPeriod() string {
	return fmt.Sprintf("%s to %s",
		tr.Start.Format("2006-01-02"),
		tr.End.AddDate(0, 0, -1).Format("2006-01-02"),
	)
}

// MonthName renders the range's starting month, e.g. "May 2026".
func (tr TimeRange) MonthName() string {
	return tr.Start.Format("January 2006")
}

// FilterGames returns the games whose date falls inside the range.
// Undated games never match a time window.
func FilterGames(games []*models.Game, tr TimeRange) []*models.Game {
	var in []*models.Game
	for _, g := range games {
		if g.Date != nil && tr.Contains(*g.Date) {
			in = append(in, g)
		}
	}
	return in
}

// RecentForm renders the last n dated results newest first, e.g.
// "W-W-L-T-W". Returns "No games" when nothing is dated.
func RecentForm(games []*models.Game, n int) string {
	dated := ChronologicalGames(games)
	if len(dated) == 0 || n <= 0 {
		return "No games"
	}
	if len(dated) > n {
		dated = dated[len(dated)-n:]
	}

	codes := make([]string, 0, len(dated))
	for i := len(dated) - 1; i >= 0; i-- {
		codes = append(codes, dated[i].ResultCode())
	}
	return strings.Join(codes, "-")
}

// WeekLabel names a week offset for report headings.
func WeekLabel(offset int) string {
	switch offset {
	case 0:
		return "This Week"
	case -1:
		return "Last Week"
	default:
		if offset < 0 {
			return fmt.Sprintf("%d Weeks Ago", -offset)
		}
		return fmt.Sprintf("%d Weeks From Now", offset)
	}
}

// MonthLabel names a month offset for report headings.
func MonthLabel(offset int) string {
	switch offset {
	case 0:
		return "This Month"
	case -1:
		return "Last Month"
	default:
		if offset < 0 {
			return fmt.Sprintf("%d Months Ago", -offset)
		}
		return fmt.Sprintf("%d Months From Now", offset)
	}
}
