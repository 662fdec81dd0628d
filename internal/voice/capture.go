package voice

import (
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"

	"github.com/sosorry9853-png/Calendar/pkg/util"
)

// CaptureSink owns the microphone. While started it invokes the frame
// callback once per fixed-size block of 16 kHz mono audio, converted to
// 16-bit PCM, together with an RMS amplitude in [0,1] for visualization.
type CaptureSink interface {
	// Start acquires the microphone and begins delivering frames.
	// Returns a KindDevice error if the device is unavailable or denied.
	Start(onFrame func(Frame)) error

	// Stop releases the microphone and silences further callbacks.
	// Idempotent and safe after a failed Start.
	Stop()
}

type malgoCapture struct {
	logger *zap.Logger

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	active  bool
	pending []float32
}

// NewCaptureSink creates the microphone capture sink.
func NewCaptureSink(logger *zap.Logger) CaptureSink {
	return &malgoCapture{logger: logger}
}

func (c *malgoCapture) Start(onFrame func(Frame)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return newError(KindDevice, "capture already started")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return wrapError(KindDevice, err, "failed to init audio context")
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = CaptureSampleRate
	deviceConfig.PeriodSizeInFrames = CaptureBlockSize

	// Device callbacks fire on an OS audio thread at arbitrary block
	// sizes; accumulate until a full protocol block is available.
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			c.onData(input, onFrame)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()

		return wrapError(KindDevice, err, "failed to open microphone")
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()

		return wrapError(KindDevice, err, "failed to start microphone")
	}

	c.ctx = ctx
	c.device = device
	c.active = true
	c.pending = c.pending[:0]

	c.logger.Info("Microphone capture started",
		zap.Int("sample_rate", CaptureSampleRate),
		zap.Int("block_size", CaptureBlockSize))

	return nil
}

func (c *malgoCapture) onData(input []byte, onFrame func(Frame)) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()

		return
	}

	c.pending = append(c.pending, bytesToFloat32(input)...)

	var frames []Frame
	for len(c.pending) >= CaptureBlockSize {
		block := c.pending[:CaptureBlockSize]
		frames = append(frames, Frame{
			PCM: float32ToPCM16(block),
			RMS: rmsAmplitude(block),
		})
		c.pending = c.pending[CaptureBlockSize:]
	}
	c.mu.Unlock()

	for _, frame := range frames {
		onFrame(frame)
	}
}

func (c *malgoCapture) Stop() {
	// Release the lock before stopping the device: malgo waits for the
	// data callback to return, and the callback takes the same lock.
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()

		return
	}
	c.active = false
	c.pending = nil
	device, ctx := c.device, c.ctx
	c.device, c.ctx = nil, nil
	c.mu.Unlock()

	if device != nil {
		_ = device.Stop()
		device.Uninit()
	}
	if ctx != nil {
		_ = ctx.Uninit()
		ctx.Free()
	}

	c.logger.Info("Microphone capture stopped")
}

// VolumeMeter tracks the most recent capture amplitude and decays it to
// zero shortly after frames stop arriving, so the UI visualizer settles.
type VolumeMeter struct {
	mu      sync.Mutex
	volume  float64
	decay   *util.Debouncer
	done    chan struct{}
	stopped bool
}

// NewVolumeMeter creates a meter that zeroes itself after the given quiet
// period without observations.
func NewVolumeMeter(quiet time.Duration) *VolumeMeter {
	m := &VolumeMeter{
		decay: util.NewDebouncer(quiet),
		done:  make(chan struct{}),
	}
	go m.run()

	return m
}

func (m *VolumeMeter) run() {
	for {
		select {
		case <-m.decay.C():
			m.mu.Lock()
			m.volume = 0
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// Observe records a new amplitude sample.
func (m *VolumeMeter) Observe(rms float64) {
	m.mu.Lock()
	m.volume = rms
	m.mu.Unlock()
	m.decay.Reset()
}

// Value returns the current amplitude.
func (m *VolumeMeter) Value() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.volume
}

// Reset zeroes the amplitude immediately.
func (m *VolumeMeter) Reset() {
	m.mu.Lock()
	m.volume = 0
	m.mu.Unlock()
}

// Close stops the decay goroutine.
func (m *VolumeMeter) Close() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()

		return
	}
	m.stopped = true
	m.mu.Unlock()

	m.decay.Stop()
	close(m.done)
}
