package voice

import (
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/sosorry9853-png/Calendar/internal/calendar"
)

// Tool names declared to the remote session.
const (
	ToolAddEvent   = "addEvent"
	ToolListEvents = "listEvents"
)

// seenCallCacheSize bounds the dedupe cache of consumed call ids.
const seenCallCacheSize = 256

// Bridge maps inbound tool-call requests onto the event store and turns
// their outcomes into protocol responses. Every call yields exactly one
// result tagged with the call's id; one call's failure never blocks its
// siblings.
type Bridge interface {
	// Handle consumes one tool call and produces its result.
	Handle(call PendingToolCall) ToolResult

	// HandleBatch consumes an inbound batch, returning one result per call.
	HandleBatch(calls []PendingToolCall) []ToolResult
}

type bridge struct {
	logger *zap.Logger
	store  calendar.Store
	seen   *lru.Cache[string, struct{}]
}

// NewBridge creates the tool invocation bridge over the given store.
func NewBridge(logger *zap.Logger, store calendar.Store) (Bridge, error) {
	seen, err := lru.New[string, struct{}](seenCallCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create call cache: %w", err)
	}

	return &bridge{
		logger: logger,
		store:  store,
		seen:   seen,
	}, nil
}

func (b *bridge) HandleBatch(calls []PendingToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, b.Handle(call))
	}

	return results
}

func (b *bridge) Handle(call PendingToolCall) ToolResult {
	if call.ID != "" {
		if _, dup := b.seen.Get(call.ID); dup {
			b.logger.Warn("Duplicate tool call ignored",
				zap.String("id", call.ID),
				zap.String("name", call.Name))

			return errorResult(call, "duplicate call")
		}
		b.seen.Add(call.ID, struct{}{})
	}

	b.logger.Info("Handling tool call",
		zap.String("id", call.ID),
		zap.String("name", call.Name))

	switch call.Name {
	case ToolAddEvent:
		return b.addEvent(call)
	case ToolListEvents:
		return b.listEvents(call)
	default:
		return errorResult(call, "Unknown tool")
	}
}

func (b *bridge) addEvent(call PendingToolCall) ToolResult {
	title := strings.TrimSpace(stringArg(call.Args, "title"))
	if title == "" {
		return errorResult(call, "title is required")
	}

	start, err := parseInstant(stringArg(call.Args, "start"))
	if err != nil {
		return errorResult(call, fmt.Sprintf("invalid start time: %v", err))
	}
	end, err := parseInstant(stringArg(call.Args, "end"))
	if err != nil {
		return errorResult(call, fmt.Sprintf("invalid end time: %v", err))
	}

	event := b.store.Add(calendar.EventInput{
		Title:       title,
		Description: stringArg(call.Args, "description"),
		Location:    stringArg(call.Args, "location"),
		Start:       start,
		End:         end,
		Origin:      calendar.OriginVoice,
	})

	b.logger.Info("Event created by voice assistant",
		zap.String("event_id", event.ID),
		zap.String("title", event.Title))

	return ToolResult{
		ID:       call.ID,
		Name:     call.Name,
		Response: map[string]any{"success": true, "id": event.ID},
	}
}

func (b *bridge) listEvents(call PendingToolCall) ToolResult {
	day, err := parseInstant(stringArg(call.Args, "date"))
	if err != nil {
		return errorResult(call, fmt.Sprintf("invalid date: %v", err))
	}

	events := b.store.EventsOn(day)

	summaries := make([]map[string]any, 0, len(events))
	for _, e := range events {
		summary := map[string]any{
			"title": e.Title,
			"start": e.Start.Format(time.RFC3339),
			"end":   e.End.Format(time.RFC3339),
		}
		if e.Location != "" {
			summary["location"] = e.Location
		}
		summaries = append(summaries, summary)
	}

	return ToolResult{
		ID:       call.ID,
		Name:     call.Name,
		Response: map[string]any{"events": summaries, "count": len(summaries)},
	}
}

func errorResult(call PendingToolCall, message string) ToolResult {
	return ToolResult{
		ID:       call.ID,
		Name:     call.Name,
		Response: map[string]any{"error": message},
	}
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)

	return s
}

// instantLayouts are accepted in order. Times without a zone are taken as
// local, matching how the assistant speaks about the user's day.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseInstant(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}

	for _, layout := range instantLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}

			continue
		}
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable instant %q", value)
}
