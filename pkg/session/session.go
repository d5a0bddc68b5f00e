// Package session owns the per-session retrieval pipeline and its lifecycle.
//
// Each session carries its own vector collection, embedder, generator, and
// assembled RAG pipeline, plus optional collaborators (scraper, transcriber,
// conversation memory, podcast generator). Deleting a session drops its
// vector collection and closes every driver it owns. No pipeline state lives
// outside the Manager.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/embeddings"
	"github.com/thinkbooklabs/thinkbook/pkg/ingest"
	"github.com/thinkbooklabs/thinkbook/pkg/llm"
	"github.com/thinkbooklabs/thinkbook/pkg/memory"
	"github.com/thinkbooklabs/thinkbook/pkg/podcast"
	"github.com/thinkbooklabs/thinkbook/pkg/rag"
	"github.com/thinkbooklabs/thinkbook/pkg/scrape"
	"github.com/thinkbooklabs/thinkbook/pkg/transcribe"
	"github.com/thinkbooklabs/thinkbook/pkg/transcribe/youtube"
	"github.com/thinkbooklabs/thinkbook/pkg/vector"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("session not found")

// SourceRecord describes one source ingested into a session.
type SourceRecord struct {
	SourceFile string    `json:"source_file"`
	SourceType string    `json:"source_type"`
	ChunkCount int       `json:"chunk_count"`
	AddedAt    time.Time `json:"added_at"`
}

// Session is one user's isolated retrieval context.
type Session struct {
	ID        string
	CreatedAt time.Time

	Store     vector.VectorDriver
	Embedder  embeddings.Embedder
	Generator llm.Generator
	Ingestor  *ingest.Ingestor
	Pipeline  *rag.Pipeline

	// Optional collaborators; nil when not configured.
	Scraper     scrape.Scraper
	Transcriber transcribe.Transcriber
	Downloader  *youtube.Downloader
	Memory      memory.Driver
	Podcast     *podcast.Generator
	Renderer    *podcast.Renderer

	mu      sync.RWMutex
	sources []SourceRecord
}

// RecordSource notes that a source was ingested into the session.
func (s *Session) RecordSource(sourceFile, sourceType string, chunkCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = append(s.sources, SourceRecord{
		SourceFile: sourceFile,
		SourceType: sourceType,
		ChunkCount: chunkCount,
		AddedAt:    time.Now(),
	})
}

// Sources returns the sources ingested so far, in insertion order.
func (s *Session) Sources() []SourceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SourceRecord, len(s.sources))
	copy(out, s.sources)
	return out
}

// Teardown drops the session's vector collection and closes every driver it
// owns. Errors are collected so one failing driver does not leak the rest.
func (s *Session) Teardown(ctx context.Context) error {
	var errs []error

	if s.Store != nil {
		if err := s.Store.Drop(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := s.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Embedder != nil {
		if err := s.Embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Generator != nil {
		if err := s.Generator.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Scraper != nil {
		if err := s.Scraper.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Transcriber != nil {
		if err := s.Transcriber.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Memory != nil {
		if err := s.Memory.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Factory builds a fully wired session for the given ID. The Manager calls
// it under its own lock, so factories should not call back into the Manager.
type Factory func(ctx context.Context, sessionID string) (*Session, error)

// Manager owns all live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  Factory
	logger   *zap.Logger
}

// NewManager creates a session manager using the factory to build sessions.
func NewManager(factory Factory, logger *zap.Logger) (*Manager, error) {
	if factory == nil {
		return nil, errors.New("session factory is required")
	}

	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		logger:   logger,
	}, nil
}

// Create builds a new session with the given ID and registers it.
func (m *Manager) Create(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.factory(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.ID = id
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}

	m.sessions[id] = sess

	m.logger.Info("created session", zap.String("session_id", id))
	return sess, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete tears down the session and removes it from the manager.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	if err := sess.Teardown(ctx); err != nil {
		m.logger.Warn("session teardown reported errors",
			zap.String("session_id", id),
			zap.Error(err),
		)
		return err
	}

	m.logger.Info("deleted session", zap.String("session_id", id))
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Close tears down every live session.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for id, sess := range sessions {
		if err := sess.Teardown(ctx); err != nil {
			m.logger.Warn("session teardown reported errors",
				zap.String("session_id", id),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
