package tts_test

import (
	"bytes"
	"encoding/binary"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thinkbooklabs/thinkbook/pkg/tts"
)

// makeWAV builds a minimal 16-bit mono PCM WAV with the given samples.
func makeWAV(sampleRate uint32, samples []int16) []byte {
	data := new(bytes.Buffer)
	binary.Write(data, binary.LittleEndian, samples)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	binary.Write(&buf, binary.LittleEndian, sampleRate*2) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))    // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))   // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	return buf.Bytes()
}

func constantSamples(n int, v int16) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = v
	}
	return s
}

var _ = Describe("ConcatWAV", func() {
	const rate = 1000 // 1000 samples/sec keeps the arithmetic readable

	It("joins segments with silence between them", func() {
		a := makeWAV(rate, constantSamples(100, 7)) // 100ms
		b := makeWAV(rate, constantSamples(50, 9))  // 50ms

		out, err := tts.ConcatWAV([][]byte{a, b}, 200*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())

		// 100ms + 200ms gap + 50ms = 350ms
		d, err := tts.Duration(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(350 * time.Millisecond))
	})

	It("inserts no trailing gap after the last segment", func() {
		a := makeWAV(rate, constantSamples(100, 1))

		out, err := tts.ConcatWAV([][]byte{a}, 200*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())

		d, err := tts.Duration(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(100 * time.Millisecond))
	})

	It("produces a parseable WAV", func() {
		a := makeWAV(rate, constantSamples(10, 3))
		b := makeWAV(rate, constantSamples(10, 4))

		out, err := tts.ConcatWAV([][]byte{a, b}, 100*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())

		Expect(string(out[0:4])).To(Equal("RIFF"))
		Expect(string(out[8:12])).To(Equal("WAVE"))

		// Round-trip through ConcatWAV again to prove it parses.
		_, err = tts.ConcatWAV([][]byte{out}, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects empty input", func() {
		_, err := tts.ConcatWAV(nil, time.Second)
		Expect(err).To(MatchError(tts.ErrInvalidWAV))
	})

	It("rejects non-WAV data", func() {
		_, err := tts.ConcatWAV([][]byte{[]byte("not audio")}, time.Second)
		Expect(err).To(MatchError(tts.ErrInvalidWAV))
	})

	It("rejects segments with mismatched formats", func() {
		a := makeWAV(1000, constantSamples(10, 1))
		b := makeWAV(2000, constantSamples(10, 1))

		_, err := tts.ConcatWAV([][]byte{a, b}, time.Second)
		Expect(err).To(MatchError(tts.ErrInvalidWAV))
		Expect(err.Error()).To(ContainSubstring("different sample format"))
	})
})
