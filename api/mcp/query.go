package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/rag"
)

var (
	queryToolName    = "query"
	queryDescription = "Answer a question using the sources ingested into a thinkbook session. Returns the answer text with inline reference markers plus one citation record per source passage used."
)

// QueryInput represents the input arguments for the query tool.
type QueryInput struct {
	SessionID string `json:"session_id" jsonschema:"the session whose sources should be queried"`
	Query     string `json:"query" jsonschema:"the question to answer"`
}

// QueryOutput represents the output of the query tool.
type QueryOutput struct {
	Query          string               `json:"query"`
	Answer         string               `json:"answer"`
	Annotated      string               `json:"annotated"`
	Citations      []rag.CitationRecord `json:"citations"`
	RetrievalCount int                  `json:"retrieval_count"`
}

// handleQuery processes a query request.
func (s *Server) handleQuery(ctx context.Context, req *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP query request",
		zap.String("session_id", input.SessionID),
		zap.String("query", input.Query),
	)

	sess, err := s.config.Sessions.Get(input.SessionID)
	if err != nil {
		return toolError(fmt.Sprintf("Unknown session: %s", input.SessionID)), QueryOutput{}, nil
	}

	result, err := sess.Pipeline.Answer(ctx, input.Query)
	if err != nil {
		logger.Error("failed to answer query", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to answer query: %v", err)), QueryOutput{}, nil
	}

	output := QueryOutput{
		Query:          result.Query,
		Answer:         result.Answer,
		Annotated:      result.Annotated,
		Citations:      result.Citations,
		RetrievalCount: result.RetrievalCount,
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal query output", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), QueryOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
