package voice

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sosorry9853-png/Calendar/internal/config"
)

// Manager owns the live voice session lifecycle: microphone capture,
// the realtime transport, tool dispatch and the playback timeline.
// At most one session exists at a time; Connect and Disconnect are
// idempotent and safe from any goroutine.
type Manager interface {
	// Connect opens a session. It is a no-op when a session is already
	// active or being established.
	Connect(ctx context.Context) error

	// Disconnect tears the active session down. It is a no-op when no
	// session is active.
	Disconnect()

	Status() Status

	// Volume reports the current microphone level in [0, 1] for the UI.
	Volume() float64
}

type manager struct {
	logger    *zap.Logger
	cfg       *config.VoiceConfig
	transport Transport
	capture   CaptureSink
	queue     PlaybackQueue
	device    OutputDevice
	bridge    Bridge
	volume    *VolumeMeter

	status atomic.Int32

	mu      sync.Mutex
	current *liveSession
}

// liveSession holds the per-connection state torn down as a unit.
type liveSession struct {
	handle SessionHandle

	// ctx is cancelled on teardown so in-flight sends abort.
	ctx    context.Context
	cancel context.CancelFunc

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (s *liveSession) requestStop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// NewManager creates the session manager.
func NewManager(
	logger *zap.Logger,
	cfg *config.Config,
	transport Transport,
	capture CaptureSink,
	queue PlaybackQueue,
	device OutputDevice,
	bridge Bridge,
) Manager {
	return &manager{
		logger:    logger,
		cfg:       &cfg.Voice,
		transport: transport,
		capture:   capture,
		queue:     queue,
		device:    device,
		bridge:    bridge,
		volume:    NewVolumeMeter(500 * time.Millisecond),
	}
}

func (m *manager) Status() Status {
	return Status(m.status.Load())
}

func (m *manager) Volume() float64 {
	return m.volume.Value()
}

func (m *manager) setStatus(s Status) {
	m.status.Store(int32(s))
}

func (m *manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.current != nil {
		m.mu.Unlock()

		return nil
	}
	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &liveSession{
		ctx:    sessCtx,
		cancel: cancel,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	m.current = sess
	m.mu.Unlock()

	m.setStatus(StatusConnecting)

	events := make(chan Event, 32)
	handle, err := m.transport.Connect(ctx, SessionConfig{
		SystemInstruction: m.systemInstruction(),
		Tools:             calendarToolDeclarations(),
	}, events)
	if err != nil {
		m.abortConnect(sess)
		m.logger.Error("Voice session connect failed", zap.Error(err))

		return err
	}
	sess.handle = handle

	if err := m.device.Start(m.queue); err != nil {
		_ = handle.Close()
		m.abortConnect(sess)
		m.logger.Error("Audio output unavailable", zap.Error(err))

		return err
	}

	if err := m.capture.Start(func(frame Frame) {
		m.volume.Observe(frame.RMS)
		// Streaming starts once the remote handshake completes; frames
		// captured while still connecting are dropped.
		if s := m.Status(); s != StatusConnected && s != StatusSpeaking {
			return
		}
		if err := handle.SendAudio(sess.ctx, frame.PCM); err != nil {
			m.logger.Debug("Dropping captured audio", zap.Error(err))
		}
	}); err != nil {
		_ = m.device.Close()
		_ = handle.Close()
		m.abortConnect(sess)
		m.logger.Error("Microphone unavailable", zap.Error(err))

		return err
	}

	go m.run(sess, events)

	m.logger.Info("Voice session starting")

	return nil
}

func (m *manager) Disconnect() {
	m.mu.Lock()
	sess := m.current
	m.mu.Unlock()
	if sess == nil {
		return
	}

	sess.requestStop()
	<-sess.done
}

// abortConnect unwinds a session that never reached the event loop.
func (m *manager) abortConnect(sess *liveSession) {
	sess.cancel()
	close(sess.done)
	m.mu.Lock()
	if m.current == sess {
		m.current = nil
	}
	m.mu.Unlock()
	m.setStatus(StatusDisconnected)
}

// run is the single consumer of the inbound event stream. All state
// transitions happen here, so drain and interrupt signals apply in the
// order the transport produced them.
func (m *manager) run(sess *liveSession, events <-chan Event) {
	defer m.teardown(sess)

	for {
		select {
		case <-sess.stop:
			return

		case <-m.queue.Drained():
			// Stale after an interrupt already reset the timeline;
			// the transition below is then a no-op.
			if m.Status() == StatusSpeaking {
				m.setStatus(StatusConnected)
			}

		case event, ok := <-events:
			if !ok {
				return
			}
			if done := m.handleEvent(sess, event); done {
				return
			}
		}
	}
}

func (m *manager) handleEvent(sess *liveSession, event Event) bool {
	switch event.Type {
	case EventOpen:
		m.setStatus(StatusConnected)
		m.logger.Info("Voice session established")

	case EventAudio:
		if err := m.queue.Enqueue(event.Audio); err != nil {
			m.logger.Warn("Dropping malformed audio chunk", zap.Error(err))

			return false
		}
		m.setStatus(StatusSpeaking)

	case EventInterrupted:
		m.queue.Interrupt()
		m.setStatus(StatusConnected)
		m.logger.Debug("Model turn interrupted")

	case EventToolCall:
		results := m.bridge.HandleBatch(event.Calls)
		if err := sess.handle.SendToolResults(sess.ctx, results); err != nil {
			m.logger.Error("Failed to deliver tool results", zap.Error(err))
		}

	case EventError:
		m.logger.Error("Voice session error", zap.Error(event.Err))

		return true

	case EventClosed:
		m.logger.Info("Voice session closed by remote")

		return true
	}

	return false
}

func (m *manager) teardown(sess *liveSession) {
	m.capture.Stop()
	m.queue.Interrupt()
	_ = m.device.Close()
	if sess.handle != nil {
		_ = sess.handle.Close()
	}
	sess.cancel()
	m.volume.Reset()
	m.setStatus(StatusDisconnected)

	m.mu.Lock()
	if m.current == sess {
		m.current = nil
	}
	m.mu.Unlock()

	close(sess.done)

	m.logger.Info("Voice session ended")
}

func (m *manager) systemInstruction() string {
	return "You are " + m.cfg.AssistantName + ", a friendly voice assistant for a personal calendar. " +
		"Today is " + time.Now().Format("Monday, January 2, 2006") + ". " +
		"Help the user manage their schedule. Use the addEvent tool to create events " +
		"and the listEvents tool to look up what is planned for a day. " +
		"Confirm event details back to the user after creating them. Keep replies short and conversational."
}
