package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// statusPushInterval paces the status/volume stream driving the UI
// visualizer.
const statusPushInterval = 100 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The server binds locally and serves its own UI.
		return true
	},
}

// handleVoiceSocket streams session status and microphone volume to the
// browser until the client goes away.
func (s *Server) handleVoiceSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))

		return
	}
	defer conn.Close()

	s.logger.Debug("Voice status client connected", zap.String("remote", conn.RemoteAddr().String()))

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			// Inbound frames are ignored; reading surfaces the close.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(statusPayload(s.voice)); err != nil {
				return
			}
		}
	}
}
