package assemblyai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/transcribe"
	"github.com/thinkbooklabs/thinkbook/pkg/transcribe/assemblyai"
)

var _ = Describe("Transcriber", func() {
	var audioPath string

	BeforeEach(func() {
		audioPath = filepath.Join(GinkgoT().TempDir(), "call.wav")
		Expect(os.WriteFile(audioPath, []byte("RIFF fake audio"), 0o644)).To(Succeed())
	})

	Describe("NewTranscriber", func() {
		It("requires an API key", func() {
			_, err := assemblyai.NewTranscriber(assemblyai.Config{}, zap.NewNop())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("API key is required"))
		})
	})

	Describe("Transcribe", func() {
		It("uploads, submits, and polls until the transcript completes", func() {
			var polls atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Header.Get("Authorization")).To(Equal("aai-test-key"))
				w.Header().Set("Content-Type", "application/json")

				switch {
				case r.Method == "POST" && r.URL.Path == "/v2/upload":
					json.NewEncoder(w).Encode(map[string]string{
						"upload_url": "https://cdn.example.com/audio/abc",
					})
				case r.Method == "POST" && r.URL.Path == "/v2/transcript":
					var req map[string]any
					Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
					Expect(req["audio_url"]).To(Equal("https://cdn.example.com/audio/abc"))
					Expect(req["speaker_labels"]).To(Equal(true))
					json.NewEncoder(w).Encode(map[string]string{
						"id":     "job-123",
						"status": "queued",
					})
				case r.Method == "GET" && r.URL.Path == "/v2/transcript/job-123":
					if polls.Add(1) < 2 {
						json.NewEncoder(w).Encode(map[string]string{
							"id":     "job-123",
							"status": "processing",
						})
						return
					}
					json.NewEncoder(w).Encode(map[string]any{
						"id":             "job-123",
						"status":         "completed",
						"text":           "Hello there. Hi, welcome.",
						"audio_duration": 6.5,
						"confidence":     0.93,
						"utterances": []map[string]any{
							{"speaker": "A", "start": 0, "end": 3000, "text": "Hello there.", "confidence": 0.95},
							{"speaker": "B", "start": 3000, "end": 6500, "text": "Hi, welcome.", "confidence": 0.91},
						},
					})
				default:
					http.NotFound(w, r)
				}
			}))
			defer server.Close()

			tr, err := assemblyai.NewTranscriber(assemblyai.Config{
				APIKey:       "aai-test-key",
				BaseURL:      server.URL,
				PollInterval: 5 * time.Millisecond,
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			result, err := tr.Transcribe(context.Background(), audioPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.ID).To(Equal("job-123"))
			Expect(result.Text).To(Equal("Hello there. Hi, welcome."))
			Expect(result.DurationSeconds).To(Equal(6.5))
			Expect(result.Confidence).To(Equal(0.93))
			Expect(result.AudioURL).To(Equal("https://cdn.example.com/audio/abc"))

			Expect(result.Utterances).To(HaveLen(2))
			Expect(result.Utterances[0].Speaker).To(Equal("A"))
			Expect(result.Utterances[0].Start).To(Equal(0))
			Expect(result.Utterances[0].End).To(Equal(3000))
			Expect(result.Utterances[1].Text).To(Equal("Hi, welcome."))
			Expect(polls.Load()).To(BeNumerically(">=", int32(2)))
		})

		It("falls back to one utterance when diarization returns none", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				switch {
				case r.URL.Path == "/v2/upload":
					json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/audio/solo"})
				case r.Method == "POST" && r.URL.Path == "/v2/transcript":
					json.NewEncoder(w).Encode(map[string]string{"id": "job-solo", "status": "queued"})
				default:
					json.NewEncoder(w).Encode(map[string]any{
						"id":             "job-solo",
						"status":         "completed",
						"text":           "A monologue.",
						"audio_duration": 2.0,
						"confidence":     0.9,
					})
				}
			}))
			defer server.Close()

			tr, err := assemblyai.NewTranscriber(assemblyai.Config{
				APIKey:       "aai-test-key",
				BaseURL:      server.URL,
				PollInterval: 5 * time.Millisecond,
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			result, err := tr.Transcribe(context.Background(), audioPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Utterances).To(HaveLen(1))
			Expect(result.Utterances[0].Text).To(Equal("A monologue."))
			Expect(result.Utterances[0].End).To(Equal(2000))
		})

		It("surfaces provider job failures", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				switch {
				case r.URL.Path == "/v2/upload":
					json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/audio/bad"})
				case r.Method == "POST" && r.URL.Path == "/v2/transcript":
					json.NewEncoder(w).Encode(map[string]string{"id": "job-bad", "status": "queued"})
				default:
					json.NewEncoder(w).Encode(map[string]string{
						"id":     "job-bad",
						"status": "error",
						"error":  "unsupported audio format",
					})
				}
			}))
			defer server.Close()

			tr, err := assemblyai.NewTranscriber(assemblyai.Config{
				APIKey:       "aai-test-key",
				BaseURL:      server.URL,
				PollInterval: 5 * time.Millisecond,
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			_, err = tr.Transcribe(context.Background(), audioPath)
			Expect(err).To(MatchError(transcribe.ErrTranscription))
			Expect(err.Error()).To(ContainSubstring("unsupported audio format"))
		})

		It("fails upload for a missing file", func() {
			tr, err := assemblyai.NewTranscriber(assemblyai.Config{
				APIKey:  "aai-test-key",
				BaseURL: "http://localhost:0",
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			_, err = tr.Transcribe(context.Background(), "/nonexistent/audio.wav")
			Expect(err).To(MatchError(transcribe.ErrUpload))
		})
	})

	Describe("Interface compliance", func() {
		It("implements transcribe.Transcriber", func() {
			var _ transcribe.Transcriber = (*assemblyai.Transcriber)(nil)
		})
	})
})
