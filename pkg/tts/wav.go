package tts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// DefaultGap is the silence inserted between concatenated segments.
const DefaultGap = 200 * time.Millisecond

// wavFormat is the decoded "fmt " chunk of a PCM WAV file.
type wavFormat struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// ConcatWAV joins PCM WAV segments into one WAV file, inserting gap of
// silence between consecutive segments. All segments must share the same
// sample format.
func ConcatWAV(segments [][]byte, gap time.Duration) ([]byte, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrInvalidWAV)
	}

	var format wavFormat
	var pcm [][]byte

	for i, seg := range segments {
		f, data, err := parseWAV(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if i == 0 {
			format = f
		} else if f != format {
			return nil, fmt.Errorf("%w: segment %d has a different sample format", ErrInvalidWAV, i)
		}
		pcm = append(pcm, data)
	}

	// Round the gap down to a whole number of frames.
	gapBytes := int(gap.Seconds() * float64(format.ByteRate))
	gapBytes -= gapBytes % int(format.BlockAlign)
	silence := make([]byte, gapBytes)

	var body bytes.Buffer
	for i, data := range pcm {
		body.Write(data)
		if i < len(pcm)-1 {
			body.Write(silence)
		}
	}

	return writeWAV(format, body.Bytes()), nil
}

// Duration reports the playback length of a PCM WAV file.
func Duration(wav []byte) (time.Duration, error) {
	format, data, err := parseWAV(wav)
	if err != nil {
		return 0, err
	}
	seconds := float64(len(data)) / float64(format.ByteRate)
	return time.Duration(seconds * float64(time.Second)), nil
}

func parseWAV(b []byte) (wavFormat, []byte, error) {
	var format wavFormat

	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return format, nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var data []byte
	haveFormat := false

	// Walk the chunk list; providers sometimes emit LIST or fact chunks
	// between fmt and data.
	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		payloadEnd := off + 8 + size
		if payloadEnd > len(b) {
			// Streamed files sometimes carry a short final chunk; clamp.
			payloadEnd = len(b)
		}
		payload := b[off+8 : payloadEnd]

		switch id {
		case "fmt ":
			if len(payload) < 16 {
				return format, nil, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			format.AudioFormat = binary.LittleEndian.Uint16(payload[0:2])
			format.NumChannels = binary.LittleEndian.Uint16(payload[2:4])
			format.SampleRate = binary.LittleEndian.Uint32(payload[4:8])
			format.ByteRate = binary.LittleEndian.Uint32(payload[8:12])
			format.BlockAlign = binary.LittleEndian.Uint16(payload[12:14])
			format.BitsPerSample = binary.LittleEndian.Uint16(payload[14:16])
			haveFormat = true
		case "data":
			data = payload
		}

		off = payloadEnd
		if size%2 == 1 {
			off++ // chunks are word-aligned
		}
	}

	if !haveFormat {
		return format, nil, fmt.Errorf("%w: no fmt chunk", ErrInvalidWAV)
	}
	if format.AudioFormat != 1 {
		return format, nil, fmt.Errorf("%w: audio format %d is not PCM", ErrInvalidWAV, format.AudioFormat)
	}
	if data == nil {
		return format, nil, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
	}
	if format.ByteRate == 0 || format.BlockAlign == 0 {
		return format, nil, fmt.Errorf("%w: zero byte rate", ErrInvalidWAV)
	}

	return format, data, nil
}

func writeWAV(format wavFormat, data []byte) []byte {
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, format.AudioFormat)
	binary.Write(&buf, binary.LittleEndian, format.NumChannels)
	binary.Write(&buf, binary.LittleEndian, format.SampleRate)
	binary.Write(&buf, binary.LittleEndian, format.ByteRate)
	binary.Write(&buf, binary.LittleEndian, format.BlockAlign)
	binary.Write(&buf, binary.LittleEndian, format.BitsPerSample)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}
