package voice

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/sosorry9853-png/Calendar/internal/config"
)

// geminiTransport speaks the Gemini Live API: realtime PCM input blobs,
// server content with inline audio parts, and function-call batches.
type geminiTransport struct {
	logger *zap.Logger
	cfg    *config.GeminiConfig
}

// NewGeminiTransport creates the default remote transport.
func NewGeminiTransport(logger *zap.Logger, cfg *config.Config) Transport {
	return &geminiTransport{logger: logger, cfg: &cfg.Gemini}
}

func (t *geminiTransport) Connect(ctx context.Context, cfg SessionConfig, events chan<- Event) (SessionHandle, error) {
	if t.cfg.APIKey == "" {
		return nil, newError(KindConnect, "gemini api key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  t.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, wrapError(KindConnect, err, "failed to create gemini client")
	}

	connectCfg := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: cfg.SystemInstruction}},
		},
		Tools: []*genai.Tool{{
			FunctionDeclarations: toGeminiDeclarations(cfg.Tools),
		}},
	}

	session, err := client.Live.Connect(ctx, t.cfg.Model, connectCfg)
	if err != nil {
		return nil, wrapError(KindConnect, err, "failed to open live session")
	}

	t.logger.Info("Gemini live session opened", zap.String("model", t.cfg.Model))

	handle := &geminiHandle{logger: t.logger, session: session}
	go handle.receiveLoop(events)

	return handle, nil
}

type geminiHandle struct {
	logger  *zap.Logger
	session *genai.Session

	closeOnce sync.Once
}

func (h *geminiHandle) SendAudio(_ context.Context, pcm []byte) error {
	return h.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{
			MIMEType: CaptureMimeType,
			Data:     pcm,
		},
	})
}

func (h *geminiHandle) SendToolResults(_ context.Context, results []ToolResult) error {
	responses := make([]*genai.FunctionResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, &genai.FunctionResponse{
			ID:       r.ID,
			Name:     r.Name,
			Response: r.Response,
		})
	}

	return h.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: responses,
	})
}

func (h *geminiHandle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		err = h.session.Close()
	})

	return err
}

// receiveLoop translates server messages into the ordered event stream.
// The connection setup message maps to EventOpen; read failure after Close
// maps to a plain EventClosed.
func (h *geminiHandle) receiveLoop(events chan<- Event) {
	defer close(events)

	for {
		message, err := h.session.Receive()
		if err != nil {
			// Receive fails both on remote errors and after a local Close;
			// either way the session is over. The manager treats Closed
			// and Error the same: full teardown.
			events <- Event{Type: EventClosed}

			return
		}
		if message == nil {
			continue
		}

		if message.SetupComplete != nil {
			events <- Event{Type: EventOpen}
		}

		if tc := message.ToolCall; tc != nil && len(tc.FunctionCalls) > 0 {
			calls := make([]PendingToolCall, 0, len(tc.FunctionCalls))
			for _, fc := range tc.FunctionCalls {
				calls = append(calls, PendingToolCall{
					ID:   fc.ID,
					Name: fc.Name,
					Args: fc.Args,
				})
			}
			events <- Event{Type: EventToolCall, Calls: calls}
		}

		if sc := message.ServerContent; sc != nil {
			if sc.Interrupted {
				events <- Event{Type: EventInterrupted}
			}
			if sc.ModelTurn != nil {
				for _, part := range sc.ModelTurn.Parts {
					if part.InlineData != nil && len(part.InlineData.Data) > 0 {
						events <- Event{Type: EventAudio, Audio: part.InlineData.Data}
					}
				}
			}
		}
	}
}

func toGeminiDeclarations(tools []ToolDeclaration) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		properties := make(map[string]*genai.Schema, len(tool.Parameters))
		for name, param := range tool.Parameters {
			properties[name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: param.Description,
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   tool.Required,
			},
		})
	}

	return decls
}
