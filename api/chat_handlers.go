package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/eventstream"
	"github.com/thinkbooklabs/thinkbook/pkg/memory"
	"github.com/thinkbooklabs/thinkbook/pkg/rag"
	"github.com/thinkbooklabs/thinkbook/pkg/session"
)

// ChatRequest is the body for an answer turn.
type ChatRequest struct {
	Query string `json:"query"`
}

// SummaryRequest is the body for a collection summary.
type SummaryRequest struct {
	Length string `json:"length"`
}

// HistoryResponse lists past question/answer turns for a session.
type HistoryResponse struct {
	Turns []memory.Turn `json:"turns"`
	Count int           `json:"count"`
}

// PreviewResponse carries a chunk content preview.
type PreviewResponse struct {
	ChunkID string `json:"chunk_id"`
	Preview string `json:"preview"`
}

// handleChat runs one answer turn against the session's sources.
func (s *Server) handleChat(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query field required"})
	}

	started := time.Now()
	result, err := sess.Pipeline.Answer(c.Context(), req.Query)
	if err != nil {
		return s.pipelineError(c, sess.ID, err)
	}

	// Blank queries never reach the pipeline; don't record them.
	if result.Stage != rag.StageQueryReceived {
		s.recordTurn(c.Context(), sess, result, time.Since(started))
	}

	return c.JSON(result)
}

// handleSummary builds a cited summary over everything in the session.
func (s *Server) handleSummary(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	var req SummaryRequest
	_ = c.BodyParser(&req)
	if req.Length == "" {
		req.Length = "medium"
	}

	result, err := sess.Pipeline.Summarize(c.Context(), req.Length)
	if err != nil {
		return s.pipelineError(c, sess.ID, err)
	}

	return c.JSON(result)
}

// handleHistory returns past turns from the session's conversation memory.
// Sessions without memory configured report an empty history.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	if sess.Memory == nil {
		return c.JSON(HistoryResponse{Turns: []memory.Turn{}})
	}

	turns, err := sess.Memory.History(c.Context())
	if err != nil {
		s.logger.Error("failed to load history",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load history"})
	}
	if turns == nil {
		turns = []memory.Turn{}
	}

	return c.JSON(HistoryResponse{Turns: turns, Count: len(turns)})
}

// handlePreviewChunk returns a bounded preview of one indexed chunk.
func (s *Server) handlePreviewChunk(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	chunkID := c.Params("chunkID")
	preview := sess.Pipeline.PreviewChunk(c.Context(), chunkID)
	if preview == rag.PreviewUnavailable {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "chunk not found"})
	}

	return c.JSON(PreviewResponse{
		ChunkID: chunkID,
		Preview: preview,
	})
}

// pipelineError maps a pipeline failure to a stage-specific error response.
func (s *Server) pipelineError(c *fiber.Ctx, sessionID string, err error) error {
	if errors.Is(err, rag.ErrEmptyQuery) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	resp := ErrorResponse{Error: "failed to answer query"}
	if stage, ok := rag.FailedStage(err); ok {
		resp.Stage = string(stage)
	}

	s.logger.Error("pipeline turn failed",
		zap.String("session_id", sessionID),
		zap.String("stage", resp.Stage),
		zap.Error(err),
	)

	return c.Status(fiber.StatusBadGateway).JSON(resp)
}

// recordTurn persists the turn to conversation memory and publishes the
// turn-completed event. Neither failure aborts the response.
func (s *Server) recordTurn(ctx context.Context, sess *session.Session, result *rag.Result, elapsed time.Duration) {
	turnID := uuid.NewString()

	if sess.Memory != nil {
		err := sess.Memory.Store(ctx, memory.Turn{
			ID:        turnID,
			Query:     result.Query,
			Answer:    result.Annotated,
			Citations: result.Citations,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			s.logger.Warn("failed to store turn in memory",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
		}
	}

	event := &eventstream.TurnCompletedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeTurnCompleted,
		EventID:       turnID,
		EmittedAt:     time.Now().UTC(),
		SessionID:     sess.ID,
		Query:         result.Query,
		Answer:        result.Answer,
		Citations:     result.Citations,
		RetrievalHits: result.RetrievalCount,
		DurationMs:    elapsed.Milliseconds(),
	}

	if err := s.publisher.PublishTurnCompleted(ctx, event); err != nil {
		s.logger.Warn("failed to publish turn event",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}
}
