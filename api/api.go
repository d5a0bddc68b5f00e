package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/api/mcp"
	"github.com/thinkbooklabs/thinkbook/pkg/eventstream"
	"github.com/thinkbooklabs/thinkbook/pkg/session"
)

// ErrorResponse is the JSON error payload for failed requests. Stage names
// the pipeline stage that could not complete, when one applies.
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// Server is the API server for managing sessions and querying their sources
type Server struct {
	config    Config
	sessions  *session.Manager
	publisher eventstream.Publisher
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The session manager and publisher are
// injected so they can be shared with other components. A nil mcpServer
// leaves the /mcp endpoint unmounted.
func NewServer(config Config, sessions *session.Manager, publisher eventstream.Publisher, mcpServer *mcp.Server, logger *zap.Logger) *Server {
	fiberConfig := fiber.Config{
		DisableStartupMessage: true,
	}
	if config.MaxUploadBytes > 0 {
		fiberConfig.BodyLimit = config.MaxUploadBytes
	}
	app := fiber.New(fiberConfig)

	s := &Server{
		config:    config,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		app:       app,
	}

	app.Get("/health", s.handleHealth)

	v1 := app.Group("/v1")
	v1.Post("/sessions", s.handleCreateSession)
	v1.Delete("/sessions/:id", s.handleDeleteSession)
	v1.Get("/sessions/:id/sources", s.handleListSources)
	v1.Post("/sessions/:id/documents", s.handleUploadDocument)
	v1.Post("/sessions/:id/web", s.handleIngestWeb)
	v1.Post("/sessions/:id/youtube", s.handleIngestYouTube)
	v1.Post("/sessions/:id/chat", s.handleChat)
	v1.Post("/sessions/:id/summary", s.handleSummary)
	v1.Get("/sessions/:id/history", s.handleHistory)
	v1.Get("/sessions/:id/chunks/:chunkID", s.handlePreviewChunk)
	v1.Post("/sessions/:id/podcast/script", s.handlePodcastScript)
	v1.Post("/sessions/:id/podcast/audio", s.handlePodcastAudio)

	if mcpServer != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

// lookupSession resolves the :id path parameter to a live session. When the
// session is missing it writes the 404 response and reports ok=false.
func (s *Server) lookupSession(c *fiber.Ctx) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		_ = c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
		return nil, false
	}
	return sess, true
}
