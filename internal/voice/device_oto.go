package voice

import (
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// OutputDevice runs the speaker side of a session: it continuously pulls
// the playback timeline, serving silence between turns so the timeline
// clock keeps advancing.
type OutputDevice interface {
	Start(queue PlaybackQueue) error
	Close() error
}

type otoDevice struct {
	logger *zap.Logger
	ctx    *oto.Context
	player *oto.Player
}

// NewOutputDevice creates the speaker output at the playback sample rate.
func NewOutputDevice(logger *zap.Logger) OutputDevice {
	return &otoDevice{logger: logger}
}

func (d *otoDevice) Start(queue PlaybackQueue) error {
	if d.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   PlaybackSampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   100 * time.Millisecond,
		})
		if err != nil {
			return wrapError(KindDevice, err, "failed to open audio output")
		}
		<-ready
		d.ctx = ctx
	}

	d.player = d.ctx.NewPlayer(&queueReader{queue: queue})
	d.player.Play()

	d.logger.Debug("Audio output started",
		zap.Int("sample_rate", PlaybackSampleRate))

	return nil
}

func (d *otoDevice) Close() error {
	if d.player != nil {
		err := d.player.Close()
		d.player = nil
		if err != nil {
			d.logger.Warn("Error closing audio output", zap.Error(err))
		}
	}

	return nil
}

// queueReader adapts the playback timeline's pull API to io.Reader for oto.
type queueReader struct {
	queue PlaybackQueue
}

func (r *queueReader) Read(p []byte) (int, error) {
	return r.queue.Fill(p), nil
}
