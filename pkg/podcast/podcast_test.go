package podcast_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/podcast"
	"github.com/thinkbooklabs/thinkbook/pkg/tts"
	testutils "github.com/thinkbooklabs/thinkbook/pkg/utils/test"
)

const scriptJSON = `[
  {"speaker": "Speaker 1", "line": "Welcome to the show! Today we discuss attention."},
  {"speaker": "Speaker 2", "line": "Thanks for having me. Attention lets models weigh context."},
  {"speaker": "Speaker 1", "line": "That wraps it up, thanks for listening!"}
]`

var _ = Describe("Generator", func() {
	var (
		llmMock *testutils.MockGenerator
		gen     *podcast.Generator
	)

	BeforeEach(func() {
		llmMock = testutils.NewMockGenerator(scriptJSON)

		var err error
		gen, err = podcast.NewGenerator(llmMock, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a language model", func() {
		_, err := podcast.NewGenerator(nil, zap.NewNop())
		Expect(err).To(HaveOccurred())
	})

	Describe("GenerateScript", func() {
		It("parses speaker and line pairs from the model output", func() {
			script, err := gen.GenerateScript(context.Background(), "Attention is all you need.", "paper.pdf")
			Expect(err).NotTo(HaveOccurred())

			Expect(script.Lines).To(HaveLen(3))
			Expect(script.Lines[0].Speaker).To(Equal(podcast.SpeakerOne))
			Expect(script.Lines[1].Speaker).To(Equal(podcast.SpeakerTwo))
			Expect(script.SourceLabel).To(Equal("paper.pdf"))
			Expect(script.TotalLines).To(Equal(3))
			Expect(script.EstimatedDuration).To(Equal("1 minute"))
		})

		It("includes the source material in the prompt", func() {
			_, err := gen.GenerateScript(context.Background(), "Attention is all you need.", "paper.pdf")
			Expect(err).NotTo(HaveOccurred())

			Expect(llmMock.LastRequest.Prompt).To(ContainSubstring("Attention is all you need."))
			Expect(llmMock.LastRequest.Prompt).To(ContainSubstring("JSON array"))
			Expect(llmMock.LastRequest.System).To(ContainSubstring("podcast script writer"))
		})

		It("tolerates prose and code fences around the JSON", func() {
			llmMock.Response = "Sure! Here is the script:\n```json\n" + scriptJSON + "\n```\nEnjoy!"

			script, err := gen.GenerateScript(context.Background(), "content", "src")
			Expect(err).NotTo(HaveOccurred())
			Expect(script.Lines).To(HaveLen(3))
		})

		It("drops empty lines and defaults missing speakers", func() {
			llmMock.Response = `[
				{"speaker": "", "line": "An unattributed line."},
				{"speaker": "Speaker 2", "line": "   "}
			]`

			script, err := gen.GenerateScript(context.Background(), "content", "src")
			Expect(err).NotTo(HaveOccurred())
			Expect(script.Lines).To(HaveLen(1))
			Expect(script.Lines[0].Speaker).To(Equal(podcast.SpeakerOne))
		})

		It("fails when the output has no JSON array", func() {
			llmMock.Response = "I cannot produce a script."

			_, err := gen.GenerateScript(context.Background(), "content", "src")
			Expect(err).To(MatchError(podcast.ErrScript))
		})

		It("fails when every line is empty", func() {
			llmMock.Response = `[{"speaker": "Speaker 1", "line": ""}]`

			_, err := gen.GenerateScript(context.Background(), "content", "src")
			Expect(err).To(MatchError(podcast.ErrScript))
		})
	})
})

var _ = Describe("Renderer", func() {
	var (
		synth    *testutils.MockSynthesizer
		renderer *podcast.Renderer
		script   *podcast.Script
	)

	BeforeEach(func() {
		synth = testutils.NewMockSynthesizer()

		var err error
		renderer, err = podcast.NewRenderer(synth, nil, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		script = &podcast.Script{
			Lines: []podcast.Line{
				{Speaker: podcast.SpeakerOne, Text: "Welcome everyone"},
				{Speaker: podcast.SpeakerTwo, Text: "Glad to be here!!"},
			},
			SourceLabel: "paper.pdf",
			TotalLines:  2,
		}
	})

	It("requires a synthesizer", func() {
		_, err := podcast.NewRenderer(nil, nil, zap.NewNop())
		Expect(err).To(HaveOccurred())
	})

	It("synthesizes one segment per line with per-speaker voices", func() {
		audio, err := renderer.Render(context.Background(), script)
		Expect(err).NotTo(HaveOccurred())
		Expect(audio).NotTo(BeEmpty())

		Expect(synth.Voices).To(Equal([]string{"nova", "onyx"}))
	})

	It("cleans text before synthesis", func() {
		_, err := renderer.Render(context.Background(), script)
		Expect(err).NotTo(HaveOccurred())

		Expect(synth.Texts[0]).To(Equal("Welcome everyone."))
		Expect(synth.Texts[1]).To(Equal("Glad to be here!"))
	})

	It("joins segments with a pause between them", func() {
		audio, err := renderer.Render(context.Background(), script)
		Expect(err).NotTo(HaveOccurred())

		// Two 100ms mock segments plus one 200ms gap.
		d, err := tts.Duration(audio)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(400 * time.Millisecond))
	})

	It("rejects an empty script", func() {
		_, err := renderer.Render(context.Background(), &podcast.Script{})
		Expect(err).To(MatchError(podcast.ErrScript))
	})
})
