package sla

import "time"

// Business days are Monday through Friday. Holidays are not excluded.

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// AddBusinessDays advances start one calendar day at a time until n business
// days have been counted, keeping the time of day. n <= 0 returns start. A
// zero start has no value and yields the zero time.
func AddBusinessDays(start time.Time, n int) time.Time {
	if start.IsZero() {
		return time.Time{}
	}
	current := start
	for added := 0; added < n; {
		current = current.AddDate(0, 0, 1)
		if isBusinessDay(current) {
			added++
		}
	}
	return current
}

// BusinessDaysBetween counts the business days in the inclusive calendar
// date range [start, end] minus one, floored at zero. Two timestamps on the
// same business day are 0 apart. It never returns a negative count, so
// callers needing signed distances must compare the endpoints themselves.
func BusinessDaysBetween(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	from := startOfDay(start)
	to := startOfDay(end.In(start.Location()))
	if to.Before(from) {
		return 0
	}
	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if isBusinessDay(d) {
			count++
		}
	}
	return max(count-1, 0)
}

// NextMonday returns 23:59 on the first Monday strictly after t's calendar
// date. A Monday maps to the following week's Monday.
func NextMonday(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	daysAhead := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	d := startOfDay(t).AddDate(0, 0, daysAhead)
	return d.Add(23*time.Hour + 59*time.Minute)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
