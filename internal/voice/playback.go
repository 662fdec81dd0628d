package voice

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// PlaybackQueue schedules decoded model speech on a monotonic output
// timeline. Chunks arrive at irregular intervals but play back-to-back:
// each chunk starts at max(nextFree, now) and advances nextFree by its
// duration, so a streamed utterance has no gaps and no overlaps.
//
// "Now" on the timeline is defined by how many samples the output device
// has pulled via Fill, not by the wall clock, which keeps the schedule
// exact even when the device buffers ahead or stalls.
type PlaybackQueue interface {
	// Enqueue validates and schedules one inbound audio payload.
	// Returns a KindDecode error if the payload is not valid 16-bit PCM.
	Enqueue(pcm []byte) error

	// Interrupt discards everything scheduled or playing and resets the
	// next free slot to the current timeline position. An undelivered
	// drain signal is discarded with it. Safe to call at any time; a
	// no-op when nothing is queued.
	Interrupt()

	// Drained fires once each time the last scheduled chunk finishes
	// naturally (not via Interrupt).
	Drained() <-chan struct{}

	// Fill is the device pull: it copies scheduled audio (or silence when
	// nothing is due) into p and advances the timeline by len(p) bytes.
	// Returns len(p).
	Fill(p []byte) int

	// Position returns the current timeline position.
	Position() time.Duration

	// NextFree returns the scheduled end of the last queued chunk, or the
	// current position when the queue is idle.
	NextFree() time.Duration

	// Pending returns the number of chunks scheduled but not fully played.
	Pending() int
}

type playbackQueue struct {
	logger *zap.Logger

	mu       sync.Mutex
	chunks   []Chunk // scheduled, in play order; chunks[0] is partially consumed by offset
	offset   int     // bytes of chunks[0] already pulled
	consumed int64   // total bytes pulled since creation; defines timeline "now"
	queued   bool    // true while at least one chunk is scheduled

	drained chan struct{}
}

// NewPlaybackQueue creates an empty playback timeline.
func NewPlaybackQueue(logger *zap.Logger) PlaybackQueue {
	return &playbackQueue{
		logger:  logger,
		drained: make(chan struct{}, 1),
	}
}

func (q *playbackQueue) Enqueue(pcm []byte) error {
	if len(pcm) == 0 {
		return newError(KindDecode, "empty audio payload")
	}
	if len(pcm)%2 != 0 {
		return newError(KindDecode, "audio payload length %d is not a whole number of 16-bit samples", len(pcm))
	}

	chunk := Chunk{PCM: pcm, Duration: pcmDuration(pcm, PlaybackSampleRate)}

	q.mu.Lock()
	q.chunks = append(q.chunks, chunk)
	q.queued = true
	pending := len(q.chunks)
	q.mu.Unlock()

	q.logger.Debug("Playback chunk scheduled",
		zap.Duration("duration", chunk.Duration),
		zap.Int("pending", pending))

	return nil
}

func (q *playbackQueue) Interrupt() {
	q.mu.Lock()
	discarded := len(q.chunks)
	q.chunks = nil
	q.offset = 0
	q.queued = false

	// Discard a drain that fired before the interrupt but has not been
	// consumed yet. Without this a stale token would be applied to the
	// next turn's audio.
	select {
	case <-q.drained:
	default:
	}
	q.mu.Unlock()

	if discarded > 0 {
		q.logger.Debug("Playback interrupted", zap.Int("discarded_chunks", discarded))
	}
}

func (q *playbackQueue) Drained() <-chan struct{} {
	return q.drained
}

func (q *playbackQueue) Fill(p []byte) int {
	q.mu.Lock()

	n := 0
	for n < len(p) && len(q.chunks) > 0 {
		head := q.chunks[0].PCM[q.offset:]
		copied := copy(p[n:], head)
		n += copied
		q.offset += copied
		if q.offset == len(q.chunks[0].PCM) {
			q.chunks = q.chunks[1:]
			q.offset = 0
		}
	}

	// Silence between turns.
	for i := n; i < len(p); i++ {
		p[i] = 0
	}

	q.consumed += int64(len(p))

	// A natural drain: audio was queued and the device has now pulled past
	// the last scheduled byte. The token goes out under the lock so an
	// Interrupt cannot slip between the state change and the send.
	if q.queued && len(q.chunks) == 0 {
		q.queued = false
		select {
		case q.drained <- struct{}{}:
		default:
		}
	}
	q.mu.Unlock()

	return len(p)
}

func (q *playbackQueue) Position() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	return bytesToDuration(q.consumed)
}

func (q *playbackQueue) NextFree() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	remaining := int64(0)
	for i, c := range q.chunks {
		n := int64(len(c.PCM))
		if i == 0 {
			n -= int64(q.offset)
		}
		remaining += n
	}

	return bytesToDuration(q.consumed + remaining)
}

func (q *playbackQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.chunks)
}

func bytesToDuration(b int64) time.Duration {
	samples := b / 2

	return time.Duration(samples) * time.Second / PlaybackSampleRate
}
