package testutils

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/thinkbooklabs/thinkbook/pkg/tts"
)

// MockSynthesizer is a test synthesizer producing tiny PCM WAV files.
// Each call emits SamplesPerCall 16-bit mono samples at SampleRate.
type MockSynthesizer struct {
	SampleRate     uint32
	SamplesPerCall int

	// Err causes Synthesize to fail when set
	Err error

	// Texts and Voices record each call for assertions
	Texts  []string
	Voices []string
}

func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{
		SampleRate:     1000,
		SamplesPerCall: 100,
	}
}

func (m *MockSynthesizer) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.Texts = append(m.Texts, text)
	m.Voices = append(m.Voices, voice)

	data := make([]byte, m.SamplesPerCall*2)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, m.SampleRate)
	binary.Write(&buf, binary.LittleEndian, m.SampleRate*2)
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes(), nil
}

func (m *MockSynthesizer) Close() error {
	return nil
}

// Ensure MockSynthesizer implements tts.Synthesizer
var _ tts.Synthesizer = (*MockSynthesizer)(nil)
