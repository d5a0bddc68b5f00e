package chunk_test

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
)

var _ = Describe("SplitTranscript", func() {
	audioSrc := chunk.Source{File: "meeting.wav", Type: chunk.SourceAudio}

	utterances := []chunk.Utterance{
		{Speaker: "A", Start: 0, End: 4000, Text: "Welcome everyone to the meeting."},
		{Speaker: "B", Start: 4000, End: 9000, Text: "Thanks, glad to be here today."},
		{Speaker: "A", Start: 9000, End: 15000, Text: "Let's start with the quarterly numbers."},
		{Speaker: "B", Start: 15000, End: 21000, Text: "Revenue grew twelve percent over last quarter."},
	}

	It("returns no chunks for an empty transcript", func() {
		s, err := chunk.NewSplitter(100, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.SplitTranscript(nil, audioSrc)).To(BeEmpty())
	})

	It("keeps a short transcript in a single chunk with speaker metadata", func() {
		s, err := chunk.NewSplitter(1000, 100)
		Expect(err).NotTo(HaveOccurred())

		chunks := s.SplitTranscript(utterances, audioSrc)
		Expect(chunks).To(HaveLen(1))

		c := chunks[0]
		Expect(c.SourceType).To(Equal(chunk.SourceAudio))
		Expect(c.Metadata["speakers"]).To(Equal([]string{"Speaker A", "Speaker B"}))
		Expect(c.Metadata["speaker_count"]).To(Equal(2))
		Expect(c.Metadata["start_timestamp"]).To(Equal(0))
		Expect(c.Metadata["end_timestamp"]).To(Equal(21000))
	})

	It("never splits an utterance across chunks", func() {
		s, err := chunk.NewSplitter(80, 20)
		Expect(err).NotTo(HaveOccurred())

		chunks := s.SplitTranscript(utterances, audioSrc)
		Expect(len(chunks)).To(BeNumerically(">", 1))

		// Every utterance's text must appear whole in exactly one chunk body.
		for _, u := range utterances {
			found := 0
			for _, c := range chunks {
				if strings.Contains(c.Content, u.Text) {
					found++
				}
			}
			Expect(found).To(BeNumerically(">=", 1), "utterance %q missing or torn", u.Text)
		}
	})

	It("carries overlap text into the next chunk", func() {
		s, err := chunk.NewSplitter(80, 20)
		Expect(err).NotTo(HaveOccurred())

		chunks := s.SplitTranscript(utterances, audioSrc)
		Expect(len(chunks)).To(BeNumerically(">", 1))

		// The second chunk starts with the tail of the first chunk's raw text.
		Expect(chunks[0].Content).NotTo(BeEmpty())
		tail := chunks[0].Content[len(chunks[0].Content)-10:]
		Expect(chunks[1].Content).To(ContainSubstring(strings.TrimSpace(tail)))
	})

	It("carries overlap on character boundaries for multi-byte text", func() {
		s, err := chunk.NewSplitter(60, 15)
		Expect(err).NotTo(HaveOccurred())

		japanese := []chunk.Utterance{
			{Speaker: "A", Start: 0, End: 3000, Text: "本日の会議へようこそ、皆さんお集まりいただきありがとうございます"},
			{Speaker: "B", Start: 3000, End: 7000, Text: "こちらこそ、参加できて嬉しいです"},
			{Speaker: "A", Start: 7000, End: 12000, Text: "それでは四半期の数字から始めましょう"},
			{Speaker: "B", Start: 12000, End: 16000, Text: "売上は前四半期比で十二パーセント成長しました"},
		}

		chunks := s.SplitTranscript(japanese, audioSrc)
		Expect(len(chunks)).To(BeNumerically(">", 1))

		for _, c := range chunks {
			Expect(utf8.ValidString(c.Content)).To(BeTrue(),
				"chunk %d contains invalid UTF-8: %q", c.ChunkIndex, c.Content)
		}
	})

	It("prefixes lines with timestamps and speaker labels", func() {
		s, err := chunk.NewSplitter(1000, 0)
		Expect(err).NotTo(HaveOccurred())

		chunks := s.SplitTranscript(utterances, audioSrc)
		Expect(chunks).To(HaveLen(1))
		Expect(chunks[0].Content).To(HavePrefix("[00:00] Speaker A: Welcome"))
		Expect(chunks[0].Content).To(ContainSubstring("[00:09] Speaker A: Let's start"))
	})

	It("formats millisecond offsets as mm:ss", func() {
		Expect(chunk.FormatMillis(0)).To(Equal("00:00"))
		Expect(chunk.FormatMillis(65000)).To(Equal("01:05"))
		Expect(chunk.FormatMillis(600000)).To(Equal("10:00"))
	})
})
