package voice

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sosorry9853-png/Calendar/internal/config"
)

// Module provides the voice session stack.
var Module = fx.Module("voice",
	fx.Provide(
		NewCaptureSink,
		NewPlaybackQueue,
		NewOutputDevice,
		NewBridge,
		NewTransport,
		NewManager,
	),
)

// NewTransport selects the realtime backend from configuration.
func NewTransport(logger *zap.Logger, cfg *config.Config) (Transport, error) {
	switch cfg.Voice.Provider {
	case "", "gemini":
		return NewGeminiTransport(logger, cfg), nil
	case "openai":
		return NewOpenAITransport(logger, cfg), nil
	default:
		return nil, newError(KindConnect, "unknown voice provider %q", cfg.Voice.Provider)
	}
}
