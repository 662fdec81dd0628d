package voice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sosorry9853-png/Calendar/internal/voice"
)

// pcmChunk builds a payload of the given sample count with a recognizable
// byte pattern so tests can check ordering after Fill.
func pcmChunk(samples int, fill byte) []byte {
	chunk := make([]byte, samples*2)
	for i := range chunk {
		chunk[i] = fill
	}

	return chunk
}

func TestPlaybackQueue_EnqueueValidation(t *testing.T) {
	queue := voice.NewPlaybackQueue(zaptest.NewLogger(t))

	tests := map[string]struct {
		input       []byte
		expectError bool
		description string
	}{
		"empty_payload": {
			input:       []byte{},
			expectError: true,
			description: "Should reject empty audio",
		},
		"nil_payload": {
			input:       nil,
			expectError: true,
			description: "Should reject nil audio",
		},
		"odd_length": {
			input:       []byte{0x01, 0x02, 0x03},
			expectError: true,
			description: "Should reject a payload that is not whole 16-bit samples",
		},
		"valid_payload": {
			input:       pcmChunk(480, 0x10),
			expectError: false,
			description: "Should accept aligned 16-bit PCM",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := queue.Enqueue(tt.input)

			if tt.expectError {
				assert.Error(t, err, tt.description)
				assert.True(t, voice.IsKind(err, voice.KindDecode), "validation failures should be decode errors")
			} else {
				assert.NoError(t, err, tt.description)
			}
		})
	}
}

func TestPlaybackQueue_GaplessScheduling(t *testing.T) {
	queue := voice.NewPlaybackQueue(zaptest.NewLogger(t))

	// Two chunks streamed in; they must play back-to-back with no silence
	// inserted between them.
	require.NoError(t, queue.Enqueue(pcmChunk(240, 0xAA)))
	require.NoError(t, queue.Enqueue(pcmChunk(240, 0xBB)))
	assert.Equal(t, 2, queue.Pending())

	buf := make([]byte, 480*2)
	n := queue.Fill(buf)
	require.Equal(t, len(buf), n)

	assert.Equal(t, byte(0xAA), buf[0])
	assert.Equal(t, byte(0xAA), buf[240*2-1])
	assert.Equal(t, byte(0xBB), buf[240*2])
	assert.Equal(t, byte(0xBB), buf[480*2-1])
	assert.Equal(t, 0, queue.Pending())
}

func TestPlaybackQueue_NextFreeTracksQueuedAudio(t *testing.T) {
	queue := voice.NewPlaybackQueue(zaptest.NewLogger(t))

	// 2400 samples at 24 kHz is 100ms of audio.
	require.NoError(t, queue.Enqueue(pcmChunk(2400, 0x01)))

	assert.Equal(t, 100*time.Millisecond, queue.NextFree()-queue.Position())

	// Consuming half the chunk moves both ends of the window forward.
	queue.Fill(make([]byte, 2400))
	assert.Equal(t, 50*time.Millisecond, queue.Position())
	assert.Equal(t, 100*time.Millisecond, queue.NextFree())
}

func TestPlaybackQueue_SilenceWhenIdle(t *testing.T) {
	queue := voice.NewPlaybackQueue(zaptest.NewLogger(t))

	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	n := queue.Fill(buf)

	require.Equal(t, len(buf), n)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf, "idle timeline should serve silence")
	assert.Equal(t, queue.Position(), queue.NextFree())

	select {
	case <-queue.Drained():
		t.Fatal("drain must not fire when nothing was ever queued")
	default:
	}
}

func TestPlaybackQueue_DrainFiresOnNaturalCompletion(t *testing.T) {
	queue := voice.NewPlaybackQueue(zaptest.NewLogger(t))

	require.NoError(t, queue.Enqueue(pcmChunk(100, 0x01)))

	// Pull past the end of the scheduled audio.
	queue.Fill(make([]byte, 400))

	select {
	case <-queue.Drained():
	default:
		t.Fatal("expected drain signal after the last chunk played out")
	}
}

func TestPlaybackQueue_InterruptResetsTimeline(t *testing.T) {
	queue := voice.NewPlaybackQueue(zaptest.NewLogger(t))

	// A long utterance is scheduled, then the user talks over it.
	require.NoError(t, queue.Enqueue(pcmChunk(36000, 0xAA))) // 1.5s
	queue.Interrupt()

	assert.Equal(t, 0, queue.Pending())
	assert.Equal(t, queue.Position(), queue.NextFree(), "interrupt must reset the next free slot to now")

	// The model's next reply starts immediately, not after the discarded
	// 1.5 seconds.
	require.NoError(t, queue.Enqueue(pcmChunk(240, 0xBB)))
	buf := make([]byte, 240*2)
	queue.Fill(buf)
	assert.Equal(t, byte(0xBB), buf[0])

	// One drain fires for the new chunk finishing; none for the discard.
	select {
	case <-queue.Drained():
	default:
		t.Fatal("expected drain for the post-interrupt chunk")
	}
	select {
	case <-queue.Drained():
		t.Fatal("interrupt itself must not produce a drain signal")
	default:
	}
}

func TestPlaybackQueue_InterruptDiscardsQueuedDrain(t *testing.T) {
	queue := voice.NewPlaybackQueue(zaptest.NewLogger(t))

	// A turn finishes naturally, queuing a drain token that nobody has
	// consumed yet when the user interrupts.
	require.NoError(t, queue.Enqueue(pcmChunk(100, 0x01)))
	queue.Fill(make([]byte, 400))
	queue.Interrupt()

	// The next turn's audio is scheduled; the pre-interrupt token must
	// not make it look finished.
	require.NoError(t, queue.Enqueue(pcmChunk(24000, 0xAA))) // 1s
	select {
	case <-queue.Drained():
		t.Fatal("stale pre-interrupt drain observed while a new chunk is still scheduled")
	default:
	}

	// Playing the new turn out produces exactly one fresh drain.
	queue.Fill(make([]byte, 24000*2))
	select {
	case <-queue.Drained():
	default:
		t.Fatal("expected drain once the new chunk played out")
	}
	select {
	case <-queue.Drained():
		t.Fatal("only one drain may fire per completed turn")
	default:
	}
}

func TestPlaybackQueue_InterruptWhileIdleIsNoop(t *testing.T) {
	queue := voice.NewPlaybackQueue(zaptest.NewLogger(t))

	queue.Interrupt()

	queue.Fill(make([]byte, 64))
	select {
	case <-queue.Drained():
		t.Fatal("idle interrupt must not arm a drain")
	default:
	}
}
