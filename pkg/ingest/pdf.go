package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
)

// IngestPDF extracts text per page and stores the resulting chunks.
// Each chunk carries its 1-based page number and the document's total page
// count in metadata. Pages with no extractable text are skipped.
func (g *Ingestor) IngestPDF(ctx context.Context, path, sourceName string) (int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	var chunks []chunk.Chunk

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			g.logger.Warn("skipping unreadable pdf page",
				zap.String("source", sourceName),
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		src := chunk.Source{
			File:       sourceName,
			Type:       chunk.SourceDocument,
			PageNumber: pageNum,
			Metadata: map[string]any{
				"total_pages": totalPages,
			},
		}

		pageChunks := g.splitter.Split(text, src)

		// Chunk indexes are assigned per call; continue the sequence
		// across pages so they stay strictly increasing per source.
		for i := range pageChunks {
			c := &pageChunks[i]
			c.ChunkIndex = len(chunks) + i
			c.ChunkID = chunk.ID(c.SourceType, c.ChunkIndex, c.Content)
		}
		chunks = append(chunks, pageChunks...)
	}

	g.logger.Info("processed pdf",
		zap.String("source", sourceName),
		zap.Int("pages", totalPages),
		zap.Int("chunks", len(chunks)),
	)

	return g.IngestChunks(ctx, chunks)
}
