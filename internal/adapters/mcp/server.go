package mcpadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

const (
	serverName    = "document-summarizer"
	serverVersion = "1.0.0"

	toolRecentDocuments = "recent_documents"
	toolGetSummary      = "get_summary"
)

// Server exposes the summary history as MCP tools.
type Server struct {
	history ports.HistoryReader
	logger  *slog.Logger
	mcp     *server.MCPServer
}

func NewServer(history ports.HistoryReader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		history: history,
		logger:  logger,
		mcp:     server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false), server.WithRecovery()),
	}

	s.mcp.AddTool(mcp.NewTool(toolRecentDocuments,
		mcp.WithDescription("List the most recently summarized documents with their summaries and key points."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of documents to return (1-100, default 10)."),
			mcp.Min(1),
			mcp.Max(100),
		),
	), s.recentDocuments)

	s.mcp.AddTool(mcp.NewTool(toolGetSummary,
		mcp.WithDescription("Fetch the latest summary stored for a document."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Identifier of the document."),
		),
	), s.getSummary)

	return s
}

// ServeStdio blocks serving JSON-RPC over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) recentDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 0)
	rows, err := s.history.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("mcp_tool_failed", "tool", toolRecentDocuments, "error", err)
		return mcp.NewToolResultError(domain.UserMessage(err)), nil
	}
	if rows == nil {
		rows = []domain.DocumentWithSummary{}
	}
	return jsonResult(rows)
}

func (s *Server) getSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := s.history.Summary(ctx, documentID)
	if err != nil {
		if !domain.IsKind(err, domain.ErrSummaryNotFound) {
			s.logger.Error("mcp_tool_failed", "tool", toolGetSummary, "document_id", documentID, "error", err)
		}
		return mcp.NewToolResultError(domain.UserMessage(err)), nil
	}
	return jsonResult(summary)
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}
