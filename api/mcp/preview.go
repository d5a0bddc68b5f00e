package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thinkbooklabs/thinkbook/pkg/rag"
)

var (
	previewToolName    = "preview_chunk"
	previewDescription = "Preview the content of one indexed source passage by its chunk ID, as referenced by the citations returned from the query tool."
)

// PreviewInput represents the input arguments for the preview tool.
type PreviewInput struct {
	SessionID string `json:"session_id" jsonschema:"the session holding the chunk"`
	ChunkID   string `json:"chunk_id" jsonschema:"the chunk identifier from a citation record"`
}

// PreviewOutput represents the output of the preview tool.
type PreviewOutput struct {
	ChunkID string `json:"chunk_id"`
	Preview string `json:"preview"`
}

// handlePreview processes a chunk preview request.
func (s *Server) handlePreview(ctx context.Context, req *mcp.CallToolRequest, input PreviewInput) (*mcp.CallToolResult, PreviewOutput, error) {
	sess, err := s.config.Sessions.Get(input.SessionID)
	if err != nil {
		return toolError(fmt.Sprintf("Unknown session: %s", input.SessionID)), PreviewOutput{}, nil
	}

	preview := sess.Pipeline.PreviewChunk(ctx, input.ChunkID)
	if preview == rag.PreviewUnavailable {
		return toolError(fmt.Sprintf("Chunk not found: %s", input.ChunkID)), PreviewOutput{}, nil
	}

	output := PreviewOutput{
		ChunkID: input.ChunkID,
		Preview: preview,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: preview},
		},
	}, output, nil
}
