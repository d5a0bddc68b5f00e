package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/session"
)

// CreateSessionResponse is returned after a session is created.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

// SourcesResponse lists the sources ingested into a session.
type SourcesResponse struct {
	Sources []session.SourceRecord `json:"sources"`
	Count   int                    `json:"count"`
}

// handleCreateSession builds a new isolated retrieval session.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	id := uuid.NewString()

	sess, err := s.sessions.Create(c.Context(), id)
	if err != nil {
		s.logger.Error("failed to create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to create session"})
	}

	return c.Status(fiber.StatusCreated).JSON(CreateSessionResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// handleDeleteSession tears down a session and its vector collection.
func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.sessions.Delete(c.Context(), id); err != nil {
		if err == session.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
		}
		s.logger.Error("failed to delete session",
			zap.String("session_id", id),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete session"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// handleListSources returns the sources ingested into the session.
func (s *Server) handleListSources(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	sources := sess.Sources()
	return c.JSON(SourcesResponse{
		Sources: sources,
		Count:   len(sources),
	})
}
