package calendar

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sosorry9853-png/Calendar/internal/config"
)

// Store holds calendar events in memory for the lifetime of the process.
type Store interface {
	// Add assigns an identifier (and a color per policy if none is set)
	// and stores the event.
	Add(input EventInput) Event

	// Remove deletes an event. No-op if the id is absent.
	Remove(id string)

	// Get returns the event with the given id, if present.
	Get(id string) (Event, bool)

	// List returns events matching the predicate, sorted by start time.
	// A nil predicate matches everything.
	List(predicate func(Event) bool) []Event

	// EventsOn returns events whose start falls on the same local calendar
	// day as the given instant.
	EventsOn(day time.Time) []Event
}

type store struct {
	logger *zap.Logger
	colors ColorPolicy

	mu     sync.RWMutex
	events map[string]Event
}

// NewStore creates the in-memory event store, optionally pre-populated with
// the demo events of the original app.
func NewStore(logger *zap.Logger, cfg *config.Config) Store {
	s := &store{
		logger: logger,
		colors: ColorPolicy{
			Default: cfg.Calendar.Colors.Default,
			Form:    cfg.Calendar.Colors.Form,
			Voice:   cfg.Calendar.Colors.Voice,
		},
		events: make(map[string]Event),
	}

	if cfg.Calendar.SeedDemoEvents {
		s.seedDemoEvents()
	}

	return s
}

func (s *store) Add(input EventInput) Event {
	color := input.Color
	if color == "" {
		color = s.colors.ColorFor(input.Origin)
	}

	event := Event{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Start:       input.Start,
		End:         input.End,
		Color:       color,
	}

	s.mu.Lock()
	s.events[event.ID] = event
	s.mu.Unlock()

	s.logger.Info("Event added",
		zap.String("id", event.ID),
		zap.String("title", event.Title),
		zap.Time("start", event.Start))

	return event
}

func (s *store) Remove(id string) {
	s.mu.Lock()
	_, existed := s.events[id]
	delete(s.events, id)
	s.mu.Unlock()

	if existed {
		s.logger.Info("Event removed", zap.String("id", id))
	}
}

func (s *store) Get(id string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]

	return event, ok
}

func (s *store) List(predicate func(Event) bool) []Event {
	s.mu.RLock()
	matched := make([]Event, 0, len(s.events))
	for _, event := range s.events {
		if predicate == nil || predicate(event) {
			matched = append(matched, event)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Start.Before(matched[j].Start)
	})

	return matched
}

func (s *store) EventsOn(day time.Time) []Event {
	return s.List(func(e Event) bool {
		return SameLocalDay(e.Start, day)
	})
}

// seedDemoEvents recreates the sample events shipped with the original app,
// anchored to today.
func (s *store) seedDemoEvents() {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	demo := []EventInput{
		{
			Title:       "Team Sync",
			Description: "Weekly sync with the design team.",
			Location:    "Conference Room A",
			Start:       today.Add(10 * time.Hour),
			End:         today.Add(11 * time.Hour),
			Color:       "bg-blue-500",
		},
		{
			Title:       "Lunch with Sarah",
			Description: "Discussing the new project roadmap.",
			Location:    "Downtown Cafe",
			Start:       today.Add(13 * time.Hour),
			End:         today.Add(14 * time.Hour),
			Color:       "bg-green-500",
		},
		{
			Title:       "Project Deadline",
			Description: "Final submission for the Q3 report.",
			Location:    "Remote",
			Start:       today.Add(17 * time.Hour),
			End:         today.Add(18 * time.Hour),
			Color:       "bg-red-500",
		},
	}

	for _, input := range demo {
		s.Add(input)
	}
}
