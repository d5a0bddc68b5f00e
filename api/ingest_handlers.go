package api

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
	"github.com/thinkbooklabs/thinkbook/pkg/eventstream"
	"github.com/thinkbooklabs/thinkbook/pkg/session"
)

// IngestResponse is returned after a source is chunked and indexed.
type IngestResponse struct {
	SourceFile string `json:"source_file"`
	SourceType string `json:"source_type"`
	ChunkCount int    `json:"chunk_count"`
}

// IngestWebRequest is the body for web page ingestion.
type IngestWebRequest struct {
	URL string `json:"url"`
}

// IngestYouTubeRequest is the body for video transcript ingestion.
type IngestYouTubeRequest struct {
	URL string `json:"url"`
}

// handleUploadDocument accepts a multipart file upload (PDF or plain text),
// chunks it, and indexes it into the session's collection.
func (s *Server) handleUploadDocument(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "file field required"})
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+"_"+filepath.Base(file.Filename))
	if err := c.SaveFile(file, tmpPath); err != nil {
		s.logger.Error("failed to save upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save upload"})
	}
	defer os.Remove(tmpPath)

	var count int
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".pdf":
		count, err = sess.Ingestor.IngestPDF(c.Context(), tmpPath, file.Filename)
	default:
		var content []byte
		content, err = os.ReadFile(tmpPath)
		if err == nil {
			count, err = sess.Ingestor.IngestText(c.Context(), string(content), chunk.Source{
				File: file.Filename,
				Type: chunk.SourceDocument,
			})
		}
	}
	if err != nil {
		s.logger.Error("document ingest failed",
			zap.String("session_id", sess.ID),
			zap.String("file", file.Filename),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "failed to process document"})
	}

	sess.RecordSource(file.Filename, string(chunk.SourceDocument), count)
	s.publishIngested(c.Context(), sess, file.Filename, string(chunk.SourceDocument), count)

	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		SourceFile: file.Filename,
		SourceType: string(chunk.SourceDocument),
		ChunkCount: count,
	})
}

// handleIngestWeb scrapes a page and indexes its content.
func (s *Server) handleIngestWeb(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	if sess.Scraper == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "web scraping is not configured"})
	}

	var req IngestWebRequest
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "url field required"})
	}

	page, err := sess.Scraper.Scrape(c.Context(), req.URL)
	if err != nil {
		s.logger.Error("scrape failed",
			zap.String("session_id", sess.ID),
			zap.String("url", req.URL),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "failed to scrape page"})
	}

	metadata := map[string]any{
		"scraped_at":   time.Now().Format(time.RFC3339),
		"original_url": req.URL,
	}
	if page.Title != "" {
		metadata["title"] = page.Title
	}
	if page.Description != "" {
		metadata["description"] = page.Description
	}
	if page.Language != "" {
		metadata["language"] = page.Language
	}

	count, err := sess.Ingestor.IngestWebPage(c.Context(), page.Content, req.URL, metadata)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "failed to index page"})
	}

	sess.RecordSource(req.URL, string(chunk.SourceWeb), count)
	s.publishIngested(c.Context(), sess, req.URL, string(chunk.SourceWeb), count)

	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		SourceFile: req.URL,
		SourceType: string(chunk.SourceWeb),
		ChunkCount: count,
	})
}

// handleIngestYouTube downloads a video's audio, transcribes it, and indexes
// one chunk per utterance.
func (s *Server) handleIngestYouTube(c *fiber.Ctx) error {
	sess, ok := s.lookupSession(c)
	if !ok {
		return nil
	}

	if sess.Transcriber == nil || sess.Downloader == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "video transcription is not configured"})
	}

	var req IngestYouTubeRequest
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "url field required"})
	}

	audioPath, err := sess.Downloader.Download(c.Context(), req.URL)
	if err != nil {
		s.logger.Error("youtube download failed",
			zap.String("session_id", sess.ID),
			zap.String("url", req.URL),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "failed to download video audio"})
	}

	transcript, err := sess.Transcriber.Transcribe(c.Context(), audioPath)
	if err != nil {
		s.logger.Error("transcription failed",
			zap.String("session_id", sess.ID),
			zap.String("url", req.URL),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "failed to transcribe video"})
	}

	metadata := map[string]any{
		"transcription_id": transcript.ID,
		"duration_seconds": transcript.DurationSeconds,
		"confidence":       transcript.Confidence,
	}

	count, err := sess.Ingestor.IngestYouTube(c.Context(), transcript.Utterances, req.URL, metadata)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "failed to index transcript"})
	}

	sess.RecordSource(req.URL, string(chunk.SourceYouTube), count)
	s.publishIngested(c.Context(), sess, req.URL, string(chunk.SourceYouTube), count)

	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		SourceFile: req.URL,
		SourceType: string(chunk.SourceYouTube),
		ChunkCount: count,
	})
}

func (s *Server) publishIngested(ctx context.Context, sess *session.Session, sourceFile, sourceType string, count int) {
	event := &eventstream.SourceIngestedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeSourceIngested,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		SessionID:     sess.ID,
		SourceFile:    sourceFile,
		SourceType:    sourceType,
		ChunkCount:    count,
	}

	if err := s.publisher.PublishSourceIngested(ctx, event); err != nil {
		s.logger.Warn("failed to publish ingest event",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}
}
