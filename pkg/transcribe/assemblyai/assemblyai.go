// Package assemblyai implements pkg/transcribe's Transcriber client for the AssemblyAI API
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
	"github.com/thinkbooklabs/thinkbook/pkg/transcribe"
)

const (
	// DefaultBaseURL is the AssemblyAI API endpoint.
	DefaultBaseURL = "https://api.assemblyai.com"

	// defaultPollInterval is how often a pending transcript is re-checked.
	defaultPollInterval = 3 * time.Second
)

// Transcriber wraps AssemblyAI's transcription API.
type Transcriber struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

// Config holds configuration for the AssemblyAI transcriber.
type Config struct {
	// APIKey is the AssemblyAI API key.
	APIKey string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// PollInterval overrides how often a pending transcript is re-checked.
	PollInterval time.Duration
}

// uploadResponse is the response from AssemblyAI's upload API.
type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

// transcriptRequest is the request body to create a transcription job.
type transcriptRequest struct {
	AudioURL      string `json:"audio_url"`
	SpeakerLabels bool   `json:"speaker_labels"`
}

// transcriptResponse is the transcription job state returned by AssemblyAI.
type transcriptResponse struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	Text          string  `json:"text"`
	Error         string  `json:"error"`
	AudioDuration float64 `json:"audio_duration"`
	Confidence    float64 `json:"confidence"`
	Utterances    []struct {
		Speaker    string  `json:"speaker"`
		Start      int     `json:"start"`
		End        int     `json:"end"`
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"utterances"`
}

// NewTranscriber creates a new transcriber using AssemblyAI's API.
func NewTranscriber(cfg Config, logger *zap.Logger) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assemblyai API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = defaultPollInterval
	}

	return &Transcriber{
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		pollInterval: pollInterval,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}, nil
}

// Transcribe uploads the audio file, submits a diarized transcription job,
// and polls until the job completes or ctx is done.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (*transcribe.Transcript, error) {
	audioURL, err := t.upload(ctx, path)
	if err != nil {
		return nil, err
	}

	jobID, err := t.submit(ctx, audioURL)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("submitted transcription job",
		zap.String("path", path),
		zap.String("job_id", jobID),
	)

	for {
		tr, err := t.fetch(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch tr.Status {
		case "completed":
			return t.transcript(tr, audioURL), nil
		case "error":
			return nil, fmt.Errorf("%w: %s", transcribe.ErrTranscription, tr.Error)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", transcribe.ErrTranscription, ctx.Err())
		case <-time.After(t.pollInterval):
		}
	}
}

// Close releases resources held by the transcriber.
func (t *Transcriber) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

func (t *Transcriber) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening audio file: %v", transcribe.ErrUpload, err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/v2/upload", f)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", transcribe.ErrUpload, err)
	}
	req.Header.Set("Authorization", t.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", transcribe.ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: assemblyai returned status %d: %s", transcribe.ErrUpload, resp.StatusCode, string(body))
	}

	var uploadResp uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", transcribe.ErrUpload, err)
	}

	return uploadResp.UploadURL, nil
}

func (t *Transcriber) submit(ctx context.Context, audioURL string) (string, error) {
	jsonBody, err := json.Marshal(transcriptRequest{
		AudioURL:      audioURL,
		SpeakerLabels: true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", transcribe.ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/v2/transcript", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", transcribe.ErrTranscription, err)
	}
	req.Header.Set("Authorization", t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", transcribe.ErrTranscription, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: assemblyai returned status %d: %s", transcribe.ErrTranscription, resp.StatusCode, string(body))
	}

	var tr transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", transcribe.ErrTranscription, err)
	}

	return tr.ID, nil
}

func (t *Transcriber) fetch(ctx context.Context, jobID string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+"/v2/transcript/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", transcribe.ErrTranscription, err)
	}
	req.Header.Set("Authorization", t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", transcribe.ErrTranscription, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: assemblyai returned status %d: %s", transcribe.ErrTranscription, resp.StatusCode, string(body))
	}

	var tr transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", transcribe.ErrTranscription, err)
	}

	return &tr, nil
}

func (t *Transcriber) transcript(tr *transcriptResponse, audioURL string) *transcribe.Transcript {
	out := &transcribe.Transcript{
		ID:              tr.ID,
		Text:            tr.Text,
		DurationSeconds: tr.AudioDuration,
		Confidence:      tr.Confidence,
		AudioURL:        audioURL,
	}

	// Single-speaker audio may come back with no utterances; fall back to
	// the full text as one anonymous span so downstream chunking still works.
	if len(tr.Utterances) == 0 && tr.Text != "" {
		out.Utterances = []chunk.Utterance{{
			Speaker:    "A",
			Start:      0,
			End:        int(tr.AudioDuration * 1000),
			Text:       tr.Text,
			Confidence: tr.Confidence,
		}}
		return out
	}

	for _, u := range tr.Utterances {
		out.Utterances = append(out.Utterances, chunk.Utterance{
			Speaker:    u.Speaker,
			Start:      u.Start,
			End:        u.End,
			Text:       u.Text,
			Confidence: u.Confidence,
		})
	}

	return out
}

// Ensure Transcriber implements transcribe.Transcriber
var _ transcribe.Transcriber = (*Transcriber)(nil)
