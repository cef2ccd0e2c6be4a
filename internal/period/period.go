// Package period computes the effective date window for a budget
// period. Resolution is a pure function of the reference instant so
// callers inject the current time.
package period

import (
	"time"

	"centavo/internal/models"
)

// Window is an inclusive [Start, End] date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Resolve computes the window for the given period anchored at now,
// then applies the optional custom start/end overrides independently:
// one may override without the other.
//
//   - daily: [midnight, end of day]
//   - weekly: Monday through Sunday of now's week
//   - monthly: first through last day of now's month
//   - yearly: Jan 1 through Dec 31 of now's year
func Resolve(p models.BudgetPeriod, customStart, customEnd *time.Time, now time.Time) Window {
	var start, end time.Time
	loc := now.Location()

	switch p {
	case models.BudgetPeriodDaily:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		end = endOfDay(start)
	case models.BudgetPeriodWeekly:
		// Weeks start on Monday; Sunday belongs to the preceding week.
		dow := int(now.Weekday())
		diff := now.Day() - dow
		if dow == 0 {
			diff -= 6
		} else {
			diff++
		}
		start = time.Date(now.Year(), now.Month(), diff, 0, 0, 0, 0, loc)
		end = endOfDay(start.AddDate(0, 0, 6))
	case models.BudgetPeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		end = endOfDay(start.AddDate(0, 1, -1))
	case models.BudgetPeriodYearly:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = time.Date(now.Year(), time.December, 31, 23, 59, 59, 999999999, loc)
	}

	if customStart != nil {
		start = *customStart
	}
	if customEnd != nil {
		end = *customEnd
	}

	return Window{Start: start, End: end}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
