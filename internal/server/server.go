package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sosorry9853-png/Calendar/internal/calendar"
	"github.com/sosorry9853-png/Calendar/internal/config"
	"github.com/sosorry9853-png/Calendar/internal/voice"
)

// Server exposes the calendar and the voice session over HTTP for the
// browser UI.
type Server struct {
	logger *zap.Logger
	cfg    *config.Config
	store  calendar.Store
	voice  voice.Manager

	httpServer *http.Server
}

// NewServer builds the server and its routes. Start must be called to
// begin serving.
func NewServer(logger *zap.Logger, cfg *config.Config, store calendar.Store, manager voice.Manager) *Server {
	s := &Server{
		logger: logger,
		cfg:    cfg,
		store:  store,
		voice:  manager,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/events/", s.handleEventByID)
	mux.HandleFunc("/api/voice/connect", s.handleVoiceConnect)
	mux.HandleFunc("/api/voice/disconnect", s.handleVoiceDisconnect)
	mux.HandleFunc("/api/voice/status", s.handleVoiceStatus)
	mux.HandleFunc("/ws/voice", s.handleVoiceSocket)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the route table, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	listener, err := newListener(s.httpServer.Addr)
	if err != nil {
		return err
	}

	s.logger.Info("HTTP server listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleEvents serves the month grid and event creation.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleMonthGrid(w, r)
	case http.MethodPost:
		s.handleCreateEvent(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleMonthGrid(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01", raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be formatted as YYYY-MM")

			return
		}
		year, month = parsed.Year(), parsed.Month()
	}

	grid := calendar.MonthGrid(s.store, year, month, time.Sunday)

	writeJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": int(month),
		"days":  grid,
	})
}

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Color       string `json:"color"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")

		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")

		return
	}

	start, err := parseEventTime(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be an RFC 3339 timestamp")

		return
	}
	end, err := parseEventTime(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be an RFC 3339 timestamp")

		return
	}
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "end must be after start")

		return
	}

	event := s.store.Add(calendar.EventInput{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		Start:       start,
		End:         end,
		Color:       req.Color,
		Origin:      calendar.OriginForm,
	})

	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleEventByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")

		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/events/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid event id")

		return
	}

	s.store.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVoiceConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")

		return
	}

	// Connecting can block on the realtime handshake, so it runs off the
	// request goroutine and the UI polls status.
	go func() {
		if err := s.voice.Connect(context.Background()); err != nil {
			s.logger.Warn("Voice connect failed", zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, statusPayload(s.voice))
}

func (s *Server) handleVoiceDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")

		return
	}

	go s.voice.Disconnect()

	writeJSON(w, http.StatusAccepted, statusPayload(s.voice))
}

func (s *Server) handleVoiceStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")

		return
	}

	writeJSON(w, http.StatusOK, statusPayload(s.voice))
}

func newListener(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

func parseEventTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}

func statusPayload(m voice.Manager) map[string]any {
	return map[string]any{
		"status": m.Status().String(),
		"volume": m.Volume(),
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
