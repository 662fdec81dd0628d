package voice

import (
	"context"
)

// EventType discriminates inbound session events. All server activity
// (handshake completion, tool calls, audio, interruption, closure) arrives
// through one ordered stream so the state machine never races two
// independently scheduled callbacks.
type EventType int

const (
	// EventOpen: the remote handshake completed.
	EventOpen EventType = iota
	// EventToolCall: the model requested one or more function invocations.
	EventToolCall
	// EventAudio: one chunk of model speech (16-bit PCM at 24 kHz).
	EventAudio
	// EventInterrupted: the model was cut off; discard queued speech.
	EventInterrupted
	// EventClosed: the remote session ended.
	EventClosed
	// EventError: the remote session reported a fatal error.
	EventError
)

// Event is one inbound session event.
type Event struct {
	Type  EventType
	Calls []PendingToolCall // EventToolCall
	Audio []byte            // EventAudio
	Err   error             // EventError
}

// SessionConfig is declared to the remote model at connect time.
type SessionConfig struct {
	SystemInstruction string
	Tools             []ToolDeclaration
}

// ToolDeclaration describes one callable function to the remote model.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  map[string]ParamSpec
	Required    []string
}

// ParamSpec describes one tool argument.
type ParamSpec struct {
	Type        string
	Description string
}

// SessionHandle is the minimal capability surface of an open remote
// session. Concrete transports (Gemini Live, OpenAI Realtime) implement
// it; tests substitute fakes.
type SessionHandle interface {
	// SendAudio streams one captured frame to the model.
	SendAudio(ctx context.Context, pcm []byte) error

	// SendToolResults returns a batch of tool outcomes to the model.
	SendToolResults(ctx context.Context, results []ToolResult) error

	// Close tears the session down. Idempotent.
	Close() error
}

// Transport opens remote sessions. Connect blocks until the transport can
// deliver events; the handshake outcome arrives as EventOpen or EventError
// on the events channel. The channel is closed after EventClosed or
// EventError is delivered.
type Transport interface {
	Connect(ctx context.Context, cfg SessionConfig, events chan<- Event) (SessionHandle, error)
}

// calendarToolDeclarations is the tool surface offered to the model.
func calendarToolDeclarations() []ToolDeclaration {
	return []ToolDeclaration{
		{
			Name:        ToolAddEvent,
			Description: "Create a calendar event. Times are ISO 8601 instants.",
			Parameters: map[string]ParamSpec{
				"title":       {Type: "string", Description: "Event title"},
				"start":       {Type: "string", Description: "Start time, e.g. 2024-06-01T12:00:00"},
				"end":         {Type: "string", Description: "End time"},
				"description": {Type: "string", Description: "Optional details"},
				"location":    {Type: "string", Description: "Optional location"},
			},
			Required: []string{"title", "start", "end"},
		},
		{
			Name:        ToolListEvents,
			Description: "List the calendar events on a given date.",
			Parameters: map[string]ParamSpec{
				"date": {Type: "string", Description: "Date to list, e.g. 2024-06-01"},
			},
			Required: []string{"date"},
		},
	}
}
