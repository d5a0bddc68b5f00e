package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/embeddings"
	"github.com/thinkbooklabs/thinkbook/pkg/llm"
	"github.com/thinkbooklabs/thinkbook/pkg/vector"
)

const (
	// DefaultTopK is how many hits are requested from the vector index.
	DefaultTopK = 10

	// DefaultSummaryChunks is how many hits feed a collection summary.
	DefaultSummaryChunks = 15

	// DefaultSummaryContextChars is the character budget for summary context.
	DefaultSummaryContextChars = 6000

	// defaultTemperature keeps answers grounded in the supplied context.
	defaultTemperature = 0.1

	// defaultMaxTokens caps answer length.
	defaultMaxTokens = 2000

	// AnswerEmptyQuery is returned for blank questions.
	AnswerEmptyQuery = "Please provide a valid question."

	// AnswerNoResults is returned when retrieval finds nothing relevant.
	AnswerNoResults = "I couldn't find any relevant information in the available documents to answer your question."

	// AnswerNoSummarySources is returned when there is nothing to summarize.
	AnswerNoSummarySources = "No documents available for summarization."
)

// Config holds the collaborators and tuning knobs for a Pipeline.
type Config struct {
	// Embedder converts queries into vectors.
	Embedder embeddings.Embedder

	// Store is the vector index holding ingested chunks.
	Store vector.VectorDriver

	// Generator produces answer text from the assembled prompt.
	Generator llm.Generator

	// TopK is the number of hits requested per query.
	// Defaults to DefaultTopK if zero.
	TopK int

	// MaxChunks caps how many hits enter the context.
	// Defaults to DefaultMaxChunks if zero.
	MaxChunks int

	// MaxContextChars is the context character budget.
	// Defaults to DefaultMaxContextChars if zero.
	MaxContextChars int
}

// Result is the outcome of one answer turn.
type Result struct {
	// Query is the question as asked.
	Query string `json:"query"`

	// Answer is the raw model output with inline reference markers.
	Answer string `json:"answer"`

	// Annotated is the answer with matched markers linked to their chunks.
	Annotated string `json:"annotated"`

	// Citations lists one record per chunk admitted into the context.
	Citations []CitationRecord `json:"citations"`

	// RetrievalCount is how many hits the index returned before packing.
	RetrievalCount int `json:"retrieval_count"`

	// Stage is the final stage the turn reached.
	Stage Stage `json:"stage"`
}

// Pipeline orchestrates one query turn: embed, retrieve, assemble, generate,
// resolve. It is stateless across calls and safe for concurrent use.
type Pipeline struct {
	embedder  embeddings.Embedder
	retriever *Retriever
	resolver  *Resolver
	generator llm.Generator

	topK            int
	maxChunks       int
	maxContextChars int

	logger *zap.Logger
}

// NewPipeline creates an answer pipeline from the given collaborators.
func NewPipeline(c Config, logger *zap.Logger) (*Pipeline, error) {
	if c.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if c.Store == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if c.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}

	topK := c.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	maxChunks := c.MaxChunks
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	maxContextChars := c.MaxContextChars
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}

	return &Pipeline{
		embedder:        c.Embedder,
		retriever:       NewRetriever(c.Store, logger),
		resolver:        NewResolver(c.Store, logger),
		generator:       c.Generator,
		topK:            topK,
		maxChunks:       maxChunks,
		maxContextChars: maxContextChars,
		logger:          logger,
	}, nil
}

// Answer runs a full query turn. A blank query and a query with zero hits
// are not errors; both produce a canned answer with no citations.
// Collaborator failures return a StageError naming the stage that could not
// complete.
func (p *Pipeline) Answer(ctx context.Context, query string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return &Result{
			Query:  query,
			Answer: AnswerEmptyQuery,
			Stage:  StageQueryReceived,
		}, nil
	}

	p.logger.Info("answering query",
		zap.String("query", truncate(query, 50)),
	)

	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, failAt(StageEmbedded, err)
	}

	hits, err := p.retriever.Search(ctx, embedding, p.topK)
	if err != nil {
		return nil, failAt(StageRetrieved, err)
	}

	if len(hits) == 0 {
		return &Result{
			Query:  query,
			Answer: AnswerNoResults,
			Stage:  StageResolved,
		}, nil
	}

	assembled := Assemble(hits, p.maxChunks, p.maxContextChars)

	answer, err := p.generator.Complete(ctx, llm.Request{
		Prompt:      BuildAnswerPrompt(query, assembled.Text),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return nil, failAt(StageGenerated, err)
	}

	result := &Result{
		Query:          query,
		Answer:         answer,
		Annotated:      Resolve(answer, assembled.Citations),
		Citations:      assembled.Citations,
		RetrievalCount: len(hits),
		Stage:          StageResolved,
	}

	p.logger.Info("answer generated",
		zap.Int("sources", len(result.Citations)),
		zap.Int("retrieved", result.RetrievalCount),
	)

	return result, nil
}

// Summarize builds a collection summary by probing the index with a broad
// query and asking the generator for a cited summary. Length is "short",
// "medium", or "long".
func (p *Pipeline) Summarize(ctx context.Context, length string) (*Result, error) {
	embedding, err := p.embedder.Embed(ctx, SummaryProbeQuery)
	if err != nil {
		return nil, failAt(StageEmbedded, err)
	}

	hits, err := p.retriever.Search(ctx, embedding, DefaultSummaryChunks)
	if err != nil {
		return nil, failAt(StageRetrieved, err)
	}

	if len(hits) == 0 {
		return &Result{
			Query:  "Document Summary",
			Answer: AnswerNoSummarySources,
			Stage:  StageResolved,
		}, nil
	}

	assembled := Assemble(hits, DefaultSummaryChunks, DefaultSummaryContextChars)

	answer, err := p.generator.Complete(ctx, llm.Request{
		Prompt:      BuildSummaryPrompt(assembled.Text, length),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return nil, failAt(StageGenerated, err)
	}

	return &Result{
		Query:          "Document Summary",
		Answer:         answer,
		Annotated:      Resolve(answer, assembled.Citations),
		Citations:      assembled.Citations,
		RetrievalCount: len(hits),
		Stage:          StageResolved,
	}, nil
}

// BuildContext embeds the query and assembles a bounded context without
// invoking the generator.
func (p *Pipeline) BuildContext(ctx context.Context, query string, topK, maxChunks, maxContextChars int) (AssembledContext, error) {
	if strings.TrimSpace(query) == "" {
		return AssembledContext{}, ErrEmptyQuery
	}

	if topK <= 0 {
		topK = p.topK
	}

	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return AssembledContext{}, failAt(StageEmbedded, err)
	}

	hits, err := p.retriever.Search(ctx, embedding, topK)
	if err != nil {
		return AssembledContext{}, failAt(StageRetrieved, err)
	}

	return Assemble(hits, maxChunks, maxContextChars), nil
}

// AnnotateAnswer binds reference markers in the answer to the citations.
func (p *Pipeline) AnnotateAnswer(answer string, citations []CitationRecord) string {
	return Resolve(answer, citations)
}

// PreviewChunk returns a chunk content preview by ID, or the
// PreviewUnavailable sentinel.
func (p *Pipeline) PreviewChunk(ctx context.Context, chunkID string) string {
	return p.resolver.PreviewChunk(ctx, chunkID)
}

// truncate caps s at n runes so the cut never lands inside a multi-byte
// character.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
