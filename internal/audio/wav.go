package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// EncodeWAV wraps a PCM16LE clip in a WAV container.
func EncodeWAV(clip Clip) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWAVTo(&buf, clip); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWAVFile writes a PCM16LE clip as a WAV file.
func WriteWAVFile(path string, clip Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteWAVTo(f, clip)
}

// WriteWAVTo writes a PCM16LE clip to out as a WAV stream.
func WriteWAVTo(out io.Writer, clip Clip) error {
	const (
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	sampleRate := clip.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	channels := clip.Channels
	if channels <= 0 {
		channels = 1
	}

	dataSize := uint32(len(clip.PCM))
	byteRate := uint32(sampleRate * channels * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)

	w := bufio.NewWriter(out)

	// RIFF header.
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}

	// fmt chunk.
	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(audioFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(channels)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}

	// data chunk.
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if _, err := w.Write(clip.PCM); err != nil {
		return err
	}
	return w.Flush()
}

// DecodeWAV extracts a PCM16LE clip from a WAV container. Only uncompressed
// 16-bit PCM is supported; other encodings must be converted by the backend.
func DecodeWAV(data []byte) (Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		clip     Clip
		sawFmt   bool
		sawData  bool
		bitDepth uint16
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return Clip{}, fmt.Errorf("fmt chunk too short: %d bytes", chunkSize)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return Clip{}, fmt.Errorf("unsupported WAV format code %d (want PCM)", format)
			}
			clip.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = binary.LittleEndian.Uint16(data[body+14 : body+16])
			sawFmt = true
		case "data":
			clip.PCM = append([]byte(nil), data[body:body+chunkSize]...)
			sawData = true
		}

		// Chunks are word-aligned.
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !sawFmt || !sawData {
		return Clip{}, fmt.Errorf("missing fmt or data chunk")
	}
	if bitDepth != 16 {
		return Clip{}, fmt.Errorf("unsupported bit depth %d (want 16)", bitDepth)
	}
	if clip.Channels <= 0 || clip.SampleRate <= 0 {
		return Clip{}, fmt.Errorf("invalid format: channels=%d sample_rate=%d", clip.Channels, clip.SampleRate)
	}
	return clip, nil
}
