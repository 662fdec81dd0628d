package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	openairt "github.com/WqyJh/go-openai-realtime"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sosorry9853-png/Calendar/internal/config"
)

// openaiTransport maps the session contract onto the OpenAI Realtime API.
// Selected with voice.provider: "openai". Output audio is pcm16 at 24 kHz,
// matching the playback timeline; interruption is derived from server-VAD
// speech-start events.
type openaiTransport struct {
	logger *zap.Logger
	cfg    *config.OpenAIConfig
}

// NewOpenAITransport creates the OpenAI Realtime transport.
func NewOpenAITransport(logger *zap.Logger, cfg *config.Config) Transport {
	return &openaiTransport{logger: logger, cfg: &cfg.OpenAI}
}

func (t *openaiTransport) Connect(ctx context.Context, cfg SessionConfig, events chan<- Event) (SessionHandle, error) {
	if t.cfg.APIKey == "" {
		return nil, newError(KindConnect, "openai api key is not configured")
	}

	client := openairt.NewClient(t.cfg.APIKey)

	conn, err := client.Connect(ctx, openairt.WithModel(t.cfg.Model))
	if err != nil {
		return nil, wrapError(KindConnect, err, "failed to connect to openai realtime")
	}

	handle := &openaiHandle{logger: t.logger, conn: conn}

	readCtx, cancel := context.WithCancel(context.Background())
	handle.cancel = cancel
	go handle.receiveLoop(readCtx, events)

	sessionUpdate := &openairt.SessionUpdateEvent{
		Session: openairt.ClientSession{
			Modalities:        []openairt.Modality{openairt.ModalityText, openairt.ModalityAudio},
			Voice:             toOpenAIVoice(t.cfg.VoiceProfile),
			OutputAudioFormat: openairt.AudioFormatPcm16,
			Instructions:      cfg.SystemInstruction,
			Tools:             toOpenAITools(cfg.Tools),
			InputAudioTranscription: &openairt.InputAudioTranscription{
				Model: openai.Whisper1,
			},
		},
	}
	if err := conn.SendMessage(ctx, sessionUpdate); err != nil {
		cancel()
		_ = conn.Close()

		return nil, wrapError(KindConnect, err, "failed to configure session")
	}

	t.logger.Info("OpenAI realtime session opened", zap.String("model", t.cfg.Model))

	return handle, nil
}

type openaiHandle struct {
	logger *zap.Logger
	conn   *openairt.Conn
	cancel context.CancelFunc

	mu        sync.Mutex
	closed    bool
	announced bool // EventOpen delivered
}

func (h *openaiHandle) SendAudio(ctx context.Context, pcm []byte) error {
	return h.conn.SendMessage(ctx, &openairt.InputAudioBufferAppendEvent{
		Audio: base64.StdEncoding.EncodeToString(pcm),
	})
}

func (h *openaiHandle) SendToolResults(ctx context.Context, results []ToolResult) error {
	for _, result := range results {
		payload, err := json.Marshal(result.Response)
		if err != nil {
			return fmt.Errorf("failed to encode tool result %s: %w", result.ID, err)
		}
		item := &openairt.ConversationItemCreateEvent{
			Item: openairt.MessageItem{
				Type:   openairt.MessageItemTypeFunctionCallOutput,
				CallID: result.ID,
				Output: string(payload),
			},
		}
		if err := h.conn.SendMessage(ctx, item); err != nil {
			return err
		}
	}

	// Resume generation once the whole batch is delivered.
	return h.conn.SendMessage(ctx, &openairt.ResponseCreateEvent{
		Response: openairt.ResponseCreateParams{
			Modalities: []openairt.Modality{openairt.ModalityText, openairt.ModalityAudio},
		},
	})
}

func (h *openaiHandle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()

		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.cancel()

	return h.conn.Close()
}

// receiveLoop reads server events and translates them into the ordered
// event stream, closing it when the connection ends.
func (h *openaiHandle) receiveLoop(ctx context.Context, events chan<- Event) {
	defer close(events)

	for {
		serverEvent, err := h.conn.ReadMessage(ctx)
		if err != nil {
			events <- Event{Type: EventClosed}

			return
		}
		if out, ok := h.translate(serverEvent); ok {
			events <- out
		}
	}
}

func (h *openaiHandle) translate(event openairt.ServerEvent) (Event, bool) {
	switch event.ServerEventType() {
	case openairt.ServerEventTypeSessionUpdated:
		h.mu.Lock()
		first := !h.announced
		h.announced = true
		h.mu.Unlock()

		return Event{Type: EventOpen}, first

	case openairt.ServerEventTypeResponseAudioDelta:
		delta := event.(openairt.ResponseAudioDeltaEvent)
		if delta.Delta == "" {
			return Event{}, false
		}
		pcm, err := base64.StdEncoding.DecodeString(delta.Delta)
		if err != nil {
			h.logger.Warn("Failed to decode audio delta", zap.Error(err))

			return Event{}, false
		}

		return Event{Type: EventAudio, Audio: pcm}, true

	case openairt.ServerEventTypeResponseOutputItemDone:
		done := event.(openairt.ResponseOutputItemDoneEvent)
		item := done.Item
		if item.Type != openairt.MessageItemTypeFunctionCall {
			return Event{}, false
		}
		var args map[string]any
		if err := json.Unmarshal([]byte(item.Arguments), &args); err != nil {
			h.logger.Warn("Malformed tool call arguments",
				zap.String("call_id", item.CallID),
				zap.Error(err))
			args = nil
		}

		return Event{Type: EventToolCall, Calls: []PendingToolCall{{
			ID:   item.CallID,
			Name: item.Name,
			Args: args,
		}}}, true

	case openairt.ServerEventTypeInputAudioBufferSpeechStarted:
		// Server VAD detected the user talking over the model.
		return Event{Type: EventInterrupted}, true

	case openairt.ServerEventTypeError:
		errorEvent := event.(openairt.ErrorEvent)

		return Event{
			Type: EventError,
			Err:  newError(KindProtocol, "remote error: %s", errorEvent.Error.Message),
		}, true
	}

	return Event{}, false
}

func toOpenAIVoice(profile string) openairt.Voice {
	switch profile {
	case "alloy":
		return openairt.VoiceAlloy
	case "echo":
		return openairt.VoiceEcho
	default:
		return openairt.VoiceShimmer
	}
}

func toOpenAITools(tools []ToolDeclaration) []openairt.Tool {
	out := make([]openairt.Tool, 0, len(tools))
	for _, tool := range tools {
		properties := make(map[string]any, len(tool.Parameters))
		for name, param := range tool.Parameters {
			properties[name] = map[string]any{
				"type":        param.Type,
				"description": param.Description,
			}
		}
		out = append(out, openairt.Tool{
			Type:        openairt.ToolTypeFunction,
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   tool.Required,
			},
		})
	}

	return out
}
