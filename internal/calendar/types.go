package calendar

import (
	"time"
)

// Event is a single calendar entry.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Color       string    `json:"color"`
}

// Origin identifies which surface created an event. It selects the display
// color when the input does not carry one.
type Origin int

const (
	OriginDefault Origin = iota
	OriginForm
	OriginVoice
)

// EventInput carries the fields of an event before the store assigns an
// identifier and color.
type EventInput struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Color       string
	Origin      Origin
}

// DayInfo is one cell of the month grid.
type DayInfo struct {
	Date           time.Time `json:"date"`
	InCurrentMonth bool      `json:"inCurrentMonth"`
	IsToday        bool      `json:"isToday"`
	Events         []Event   `json:"events"`
}

// ColorPolicy maps event origins to display colors.
type ColorPolicy struct {
	Default string
	Form    string
	Voice   string
}

// ColorFor returns the color for the given origin.
func (p ColorPolicy) ColorFor(origin Origin) string {
	switch origin {
	case OriginForm:
		return p.Form
	case OriginVoice:
		return p.Voice
	default:
		return p.Default
	}
}

// SameLocalDay reports whether two instants fall on the same calendar day
// in local time.
func SameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()

	return ay == by && am == bm && ad == bd
}
