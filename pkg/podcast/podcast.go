// Package podcast turns retrieved source content into a two-speaker audio
// script and optionally renders it to audio.
package podcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/llm"
	"github.com/thinkbooklabs/thinkbook/pkg/tts"
)

const (
	// SpeakerOne and SpeakerTwo are the canonical speaker labels.
	SpeakerOne = "Speaker 1"
	SpeakerTwo = "Speaker 2"

	// wordsPerMinute drives the estimated duration of a script.
	wordsPerMinute = 150

	scriptTemperature = 0.7
	scriptMaxTokens   = 3000
)

// ErrScript is returned when the model output cannot be parsed as a script.
var ErrScript = errors.New("script generation failed")

// Line is one utterance of the script.
type Line struct {
	Speaker string `json:"speaker"`
	Text    string `json:"line"`
}

// Script is a complete two-speaker conversation over some source content.
type Script struct {
	Lines             []Line `json:"script"`
	SourceLabel       string `json:"source_document"`
	TotalLines        int    `json:"total_lines"`
	EstimatedDuration string `json:"estimated_duration"`
}

// Generator produces podcast scripts from source content.
type Generator struct {
	llm    llm.Generator
	logger *zap.Logger
}

// NewGenerator creates a script generator backed by the given language model.
func NewGenerator(g llm.Generator, logger *zap.Logger) (*Generator, error) {
	if g == nil {
		return nil, fmt.Errorf("llm generator is required")
	}
	return &Generator{llm: g, logger: logger}, nil
}

const scriptSystemPrompt = `You are a podcast script writer. You turn source material into an engaging conversation between two hosts: Speaker 1 (the curious host who asks questions and guides the discussion) and Speaker 2 (the expert who explains the material).`

// GenerateScript asks the model for a two-speaker conversation covering the
// content and parses the reply leniently: the first JSON array found in the
// output is used, fenced or not.
func (g *Generator) GenerateScript(ctx context.Context, content, sourceLabel string) (*Script, error) {
	prompt := fmt.Sprintf(`Create a podcast script based on the following source material.

SOURCE MATERIAL:
%s

REQUIREMENTS:
- Alternate between "Speaker 1" and "Speaker 2"
- Speaker 1 opens and closes the episode
- Cover the key points of the source material accurately
- Keep each line conversational, one to three sentences

Respond with ONLY a JSON array in this exact format:
[
  {"speaker": "Speaker 1", "line": "Welcome to the show..."},
  {"speaker": "Speaker 2", "line": "Thanks for having me..."}
]`, content)

	raw, err := g.llm.Complete(ctx, llm.Request{
		System:      scriptSystemPrompt,
		Prompt:      prompt,
		Temperature: scriptTemperature,
		MaxTokens:   scriptMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	lines, err := parseScript(raw)
	if err != nil {
		return nil, err
	}

	script := &Script{
		Lines:             lines,
		SourceLabel:       sourceLabel,
		TotalLines:        len(lines),
		EstimatedDuration: estimateDuration(lines),
	}

	g.logger.Info("generated podcast script",
		zap.String("source", sourceLabel),
		zap.Int("lines", len(lines)),
		zap.String("estimated_duration", script.EstimatedDuration),
	)

	return script, nil
}

// parseScript extracts the speaker/line pairs from model output. Models wrap
// JSON in prose or code fences often enough that we slice from the first '['
// to the last ']' before unmarshaling.
func parseScript(raw string) ([]Line, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON array in model output", ErrScript)
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw[start:end+1]), &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	// Drop empty lines and normalize missing speaker labels.
	out := lines[:0]
	for _, l := range lines {
		l.Text = strings.TrimSpace(l.Text)
		if l.Text == "" {
			continue
		}
		if l.Speaker == "" {
			l.Speaker = SpeakerOne
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: script has no lines", ErrScript)
	}

	return out, nil
}

func estimateDuration(lines []Line) string {
	words := 0
	for _, l := range lines {
		words += len(strings.Fields(l.Text))
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// Renderer converts scripts to audio, one voice per speaker.
type Renderer struct {
	synth  tts.Synthesizer
	voices map[string]string
	logger *zap.Logger
}

// NewRenderer creates a renderer with the given speaker-to-voice mapping.
// A nil mapping uses the defaults: nova for Speaker 1, onyx for Speaker 2.
func NewRenderer(synth tts.Synthesizer, voices map[string]string, logger *zap.Logger) (*Renderer, error) {
	if synth == nil {
		return nil, fmt.Errorf("synthesizer is required")
	}
	if voices == nil {
		voices = map[string]string{
			SpeakerOne: "nova",
			SpeakerTwo: "onyx",
		}
	}
	return &Renderer{synth: synth, voices: voices, logger: logger}, nil
}

// Render synthesizes each line and joins the segments into one WAV file with
// a short pause between lines.
func (r *Renderer) Render(ctx context.Context, script *Script) ([]byte, error) {
	if script == nil || len(script.Lines) == 0 {
		return nil, fmt.Errorf("%w: empty script", ErrScript)
	}

	segments := make([][]byte, 0, len(script.Lines))
	for i, line := range script.Lines {
		audio, err := r.synth.Synthesize(ctx, cleanForSpeech(line.Text), r.voices[line.Speaker])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		segments = append(segments, audio)
	}

	combined, err := tts.ConcatWAV(segments, tts.DefaultGap)
	if err != nil {
		return nil, err
	}

	if d, err := tts.Duration(combined); err == nil {
		r.logger.Info("rendered podcast audio",
			zap.String("source", script.SourceLabel),
			zap.Int("segments", len(segments)),
			zap.Duration("duration", d.Round(time.Second)),
		)
	}

	return combined, nil
}

// cleanForSpeech normalizes punctuation that trips up speech synthesis.
func cleanForSpeech(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.ReplaceAll(clean, "...", ".")
	clean = strings.ReplaceAll(clean, "!!", "!")
	clean = strings.ReplaceAll(clean, "??", "?")
	if clean != "" && !strings.ContainsRune(".!?", rune(clean[len(clean)-1])) {
		clean += "."
	}
	return clean
}
