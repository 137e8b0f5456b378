package util

import "time"

const daysPerYear = 365.0

// YearsBetween returns the elapsed time between from and to in years, using
// a 365-day year. The result is floored at one day's worth so annualized
// ratios never divide by zero on same-day flows.
func YearsBetween(from, to time.Time) float64 {
	d := to.Sub(from)
	if d < 24*time.Hour {
		d = 24 * time.Hour
	}
	return d.Hours() / 24 / daysPerYear
}

// WholeMonthsBetween returns the whole-month difference between two dates
// using calendar year/month components only (day-of-month is ignored).
// Negative differences are clamped to zero.
func WholeMonthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if months < 0 {
		return 0
	}
	return months
}

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns midnight UTC on the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}
