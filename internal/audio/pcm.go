package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
)

// DefaultSampleRate is used when a backend does not report one.
const DefaultSampleRate = 16000

// Clip is raw PCM16LE audio with its format.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 || c.Channels <= 0 || len(c.PCM) == 0 {
		return 0
	}
	return float64(len(c.PCM)) / float64(2*c.Channels*c.SampleRate)
}

func (c Clip) frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.PCM) / (2 * c.Channels)
}

func (c Clip) sampleAt(frame, channel int) int16 {
	idx := (frame*c.Channels + channel) * 2
	return int16(binary.LittleEndian.Uint16(c.PCM[idx : idx+2]))
}

// Silence produces a clip of zero samples with the given duration.
func Silence(seconds float64, sampleRate, channels int) Clip {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = 1
	}
	if seconds < 0 {
		seconds = 0
	}
	frames := int(math.Round(seconds * float64(sampleRate)))
	return Clip{
		PCM:        make([]byte, frames*channels*2),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Normalize converts the clip to the target sample rate and channel count.
// Channel conversion averages (downmix) or duplicates (upmix); resampling is
// nearest-neighbor, which is adequate for speech and keeps the package free
// of DSP dependencies.
func Normalize(c Clip, sampleRate, channels int) (Clip, error) {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return Clip{}, fmt.Errorf("clip has invalid format: channels=%d sample_rate=%d", c.Channels, c.SampleRate)
	}
	if sampleRate <= 0 || channels <= 0 {
		return Clip{}, fmt.Errorf("invalid target format: channels=%d sample_rate=%d", channels, sampleRate)
	}
	if c.SampleRate == sampleRate && c.Channels == channels {
		return c, nil
	}

	srcFrames := c.frames()
	dstFrames := srcFrames
	if c.SampleRate != sampleRate {
		dstFrames = int(math.Round(float64(srcFrames) * float64(sampleRate) / float64(c.SampleRate)))
	}

	out := make([]byte, dstFrames*channels*2)
	for f := 0; f < dstFrames; f++ {
		srcFrame := f
		if c.SampleRate != sampleRate {
			srcFrame = int(float64(f) * float64(c.SampleRate) / float64(sampleRate))
			if srcFrame >= srcFrames {
				srcFrame = srcFrames - 1
			}
		}
		if srcFrame < 0 {
			continue
		}

		var mono int32
		for ch := 0; ch < c.Channels; ch++ {
			mono += int32(c.sampleAt(srcFrame, ch))
		}
		mono /= int32(c.Channels)

		for ch := 0; ch < channels; ch++ {
			sample := int16(mono)
			if ch < c.Channels && channels == c.Channels {
				sample = c.sampleAt(srcFrame, ch)
			}
			binary.LittleEndian.PutUint16(out[(f*channels+ch)*2:], uint16(sample))
		}
	}

	return Clip{PCM: out, SampleRate: sampleRate, Channels: channels}, nil
}

// Concat joins clips that already share one format.
func Concat(clips ...Clip) (Clip, error) {
	if len(clips) == 0 {
		return Clip{}, fmt.Errorf("no clips to concatenate")
	}
	first := clips[0]
	total := 0
	for _, c := range clips {
		if c.SampleRate != first.SampleRate || c.Channels != first.Channels {
			return Clip{}, fmt.Errorf("format mismatch: %dHz/%dch vs %dHz/%dch",
				c.SampleRate, c.Channels, first.SampleRate, first.Channels)
		}
		total += len(c.PCM)
	}
	out := make([]byte, 0, total)
	for _, c := range clips {
		out = append(out, c.PCM...)
	}
	return Clip{PCM: out, SampleRate: first.SampleRate, Channels: first.Channels}, nil
}

// OverlayNoise mixes a low-level noise bed across the whole clip at the
// given gain in dB (negative values attenuate). The noise is deterministic
// for a given seed so mixes are reproducible.
func OverlayNoise(c Clip, gainDB float64, seed int64) Clip {
	if len(c.PCM) == 0 {
		return c
	}
	amp := math.Pow(10, gainDB/20) * 32767
	rng := rand.New(rand.NewSource(seed))

	out := make([]byte, len(c.PCM))
	copy(out, c.PCM)
	for i := 0; i+1 < len(out); i += 2 {
		sample := int32(int16(binary.LittleEndian.Uint16(out[i : i+2])))
		noise := int32((rng.Float64()*2 - 1) * amp)
		mixed := sample + noise
		if mixed > math.MaxInt16 {
			mixed = math.MaxInt16
		} else if mixed < math.MinInt16 {
			mixed = math.MinInt16
		}
		binary.LittleEndian.PutUint16(out[i:i+2], uint16(int16(mixed)))
	}
	return Clip{PCM: out, SampleRate: c.SampleRate, Channels: c.Channels}
}
