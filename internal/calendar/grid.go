package calendar

import (
	"time"
)

// MonthGrid computes the padded month view: full weeks covering the given
// month, each day annotated with its events from the store. Weeks start on
// the given weekday.
func MonthGrid(store Store, year int, month time.Month, weekStart time.Weekday) []DayInfo {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)

	// Walk back to the first day of the week containing the 1st.
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	cursor := first.AddDate(0, 0, -lead)

	last := first.AddDate(0, 1, -1)
	now := time.Now()

	var days []DayInfo
	for cursor.Before(last) || SameLocalDay(cursor, last) || (int(cursor.Weekday()) != int(weekStart)) {
		days = append(days, DayInfo{
			Date:           cursor,
			InCurrentMonth: cursor.Month() == month && cursor.Year() == year,
			IsToday:        SameLocalDay(cursor, now),
			Events:         store.EventsOn(cursor),
		})
		cursor = cursor.AddDate(0, 0, 1)
	}

	return days
}
