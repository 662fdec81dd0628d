package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sosorry9853-png/Calendar/internal/calendar"
	"github.com/sosorry9853-png/Calendar/internal/config"
)

func testConfig(seed bool) *config.Config {
	cfg := &config.Config{}
	cfg.Calendar.SeedDemoEvents = seed
	cfg.Calendar.Colors = config.ColorConfig{
		Default: "bg-indigo-500",
		Form:    "bg-blue-500",
		Voice:   "bg-purple-500",
	}

	return cfg
}

func TestStore_AddAssignsIDAndColor(t *testing.T) {
	store := calendar.NewStore(zaptest.NewLogger(t), testConfig(false))

	tests := map[string]struct {
		input         calendar.EventInput
		expectedColor string
	}{
		"default_origin": {
			input:         calendar.EventInput{Title: "A"},
			expectedColor: "bg-indigo-500",
		},
		"form_origin": {
			input:         calendar.EventInput{Title: "B", Origin: calendar.OriginForm},
			expectedColor: "bg-blue-500",
		},
		"voice_origin": {
			input:         calendar.EventInput{Title: "C", Origin: calendar.OriginVoice},
			expectedColor: "bg-purple-500",
		},
		"explicit_color_wins": {
			input:         calendar.EventInput{Title: "D", Color: "bg-red-500", Origin: calendar.OriginVoice},
			expectedColor: "bg-red-500",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			event := store.Add(tt.input)

			assert.NotEmpty(t, event.ID)
			assert.Equal(t, tt.expectedColor, event.Color)

			stored, ok := store.Get(event.ID)
			require.True(t, ok)
			assert.Equal(t, event, stored)
		})
	}
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	store := calendar.NewStore(zaptest.NewLogger(t), testConfig(false))

	event := store.Add(calendar.EventInput{Title: "Gone"})

	store.Remove(event.ID)
	store.Remove(event.ID)
	store.Remove("never-existed")

	_, ok := store.Get(event.ID)
	assert.False(t, ok)
	assert.Empty(t, store.List(nil))
}

func TestStore_ListSortsByStart(t *testing.T) {
	store := calendar.NewStore(zaptest.NewLogger(t), testConfig(false))

	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.Local)
	store.Add(calendar.EventInput{Title: "Third", Start: base.Add(4 * time.Hour)})
	store.Add(calendar.EventInput{Title: "First", Start: base})
	store.Add(calendar.EventInput{Title: "Second", Start: base.Add(2 * time.Hour)})

	events := store.List(nil)

	require.Len(t, events, 3)
	assert.Equal(t, "First", events[0].Title)
	assert.Equal(t, "Second", events[1].Title)
	assert.Equal(t, "Third", events[2].Title)
}

func TestStore_EventsOn(t *testing.T) {
	store := calendar.NewStore(zaptest.NewLogger(t), testConfig(false))

	day := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local)
	store.Add(calendar.EventInput{Title: "Early", Start: day.Add(1 * time.Minute)})
	store.Add(calendar.EventInput{Title: "Late", Start: day.Add(23*time.Hour + 59*time.Minute)})
	store.Add(calendar.EventInput{Title: "Tomorrow", Start: day.AddDate(0, 0, 1)})

	events := store.EventsOn(day.Add(12 * time.Hour))

	require.Len(t, events, 2)
	assert.Equal(t, "Early", events[0].Title)
	assert.Equal(t, "Late", events[1].Title)
}

func TestStore_SeedDemoEvents(t *testing.T) {
	store := calendar.NewStore(zaptest.NewLogger(t), testConfig(true))

	events := store.List(nil)

	require.Len(t, events, 3)
	assert.Equal(t, "Team Sync", events[0].Title)
	assert.Equal(t, "Lunch with Sarah", events[1].Title)
	assert.Equal(t, "Project Deadline", events[2].Title)

	// All demo events land on today so the fresh UI has something to show.
	for _, event := range events {
		assert.True(t, calendar.SameLocalDay(event.Start, time.Now()))
	}
}

func TestSameLocalDay(t *testing.T) {
	day := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local)

	assert.True(t, calendar.SameLocalDay(day, day.Add(23*time.Hour+59*time.Minute)))
	assert.False(t, calendar.SameLocalDay(day, day.AddDate(0, 0, 1)))
	assert.False(t, calendar.SameLocalDay(day, day.Add(-time.Minute)))
}
