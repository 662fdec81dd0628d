package voice

import (
	"time"
)

// Protocol-mandated audio parameters. Capture feeds the remote session at
// 16 kHz; model speech comes back at 24 kHz. Both are 16-bit mono PCM.
const (
	CaptureSampleRate  = 16000
	PlaybackSampleRate = 24000
	CaptureBlockSize   = 4096 // samples per microphone callback

	CaptureMimeType = "audio/pcm;rate=16000"
)

// Status is the session state surfaced to the UI. Exactly one value holds
// at any instant.
type Status int32

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusSpeaking
)

// String returns the lowercase wire form used by the UI.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusSpeaking:
		return "speaking"
	default:
		return "disconnected"
	}
}

// Frame is one fixed-size block of captured microphone audio, already
// converted to 16-bit little-endian PCM. Immutable once produced.
type Frame struct {
	PCM []byte
	RMS float64 // amplitude estimate, clamped to [0,1]
}

// PendingToolCall is a structured function-call request from the remote
// session. Consumed exactly once by the bridge.
type PendingToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is the response to one PendingToolCall, keyed by the same id.
// Failures are reported inside Response under an "error" key so the model
// can recover conversationally.
type ToolResult struct {
	ID       string
	Name     string
	Response map[string]any
}

// Chunk is a decoded playback buffer plus its duration at the playback
// sample rate.
type Chunk struct {
	PCM      []byte
	Duration time.Duration
}
