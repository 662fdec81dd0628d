package voice

import (
	"math"
	"time"
)

// float32ToPCM16 converts normalized float samples to 16-bit little-endian
// PCM, clamping out-of-range values.
func float32ToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, f := range samples {
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		v := int16(f * 32767)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}

	return out
}

// pcm16Sample decodes one little-endian 16-bit sample at offset i*2.
func pcm16Sample(pcm []byte, i int) int16 {
	return int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
}

// rmsAmplitude computes the root-mean-square amplitude of normalized float
// samples, scaled for visualization and clamped to [0,1].
func rmsAmplitude(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, f := range samples {
		sum += float64(f) * float64(f)
	}
	rms := math.Sqrt(sum / float64(len(samples)))

	// Speech RMS rarely exceeds ~0.25; scale up so the visualizer moves.
	scaled := rms * 4
	if scaled > 1 {
		scaled = 1
	}

	return scaled
}

// pcmDuration returns the playback duration of 16-bit mono PCM at the
// given sample rate.
func pcmDuration(pcm []byte, sampleRate int) time.Duration {
	samples := len(pcm) / 2

	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// bytesToFloat32 converts captured raw bytes to float32 samples
// (little-endian IEEE 754), as delivered by a float-format capture device.
func bytesToFloat32(raw []byte) []float32 {
	n := len(raw) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}

	return out
}
