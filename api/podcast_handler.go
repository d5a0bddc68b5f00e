package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/podcast"
	"github.com/thinkbooklabs/thinkbook/pkg/rag"
	"github.com/thinkbooklabs/thinkbook/pkg/session"
)

// PodcastScriptRequest is the body for podcast script generation. Topic
// optionally focuses the script; when empty the whole collection is used.
type PodcastScriptRequest struct {
	Topic string `json:"topic"`
}

// handlePodcastScript turns the session's retrieved content into a
// two-speaker conversation script.
func (s *Server) handlePodcastScript(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	script, ok := s.generateScript(c, sess)
	if !ok {
		return nil
	}

	return c.JSON(script)
}

// handlePodcastAudio generates a script and renders it to a single WAV file
// with alternating voices per speaker.
func (s *Server) handlePodcastAudio(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	if sess.Renderer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "speech synthesis is not configured"})
	}

	script, ok := s.generateScript(c, sess)
	if !ok {
		return nil
	}

	audio, err := sess.Renderer.Render(c.Context(), script)
	if err != nil {
		s.logger.Error("podcast rendering failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to render audio"})
	}

	c.Set(fiber.HeaderContentType, "audio/wav")
	return c.Send(audio)
}

// generateScript builds the retrieval context and turns it into a script.
// On failure it writes the error response itself and returns ok=false.
func (s *Server) generateScript(c *fiber.Ctx, sess *session.Session) (*podcast.Script, bool) {
	if sess.Podcast == nil {
		_ = c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "podcast generation is not configured"})
		return nil, false
	}

	var req PodcastScriptRequest
	_ = c.BodyParser(&req)

	probe := req.Topic
	if probe == "" {
		probe = rag.SummaryProbeQuery
	}

	assembled, err := sess.Pipeline.BuildContext(c.Context(), probe,
		rag.DefaultSummaryChunks, rag.DefaultSummaryChunks, rag.DefaultSummaryContextChars)
	if err != nil {
		_ = s.pipelineError(c, sess.ID, err)
		return nil, false
	}
	if assembled.Text == "" {
		_ = c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "no sources available for a script"})
		return nil, false
	}

	label := "session sources"
	if sources := sess.Sources(); len(sources) > 0 {
		label = sources[0].SourceFile
	}

	script, err := sess.Podcast.GenerateScript(c.Context(), assembled.Text, label)
	if err != nil {
		s.logger.Error("podcast script generation failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		_ = c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to generate script"})
		return nil, false
	}

	return script, true
}
