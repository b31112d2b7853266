package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string, logger *slog.Logger) *MCPServer {
	mcpServer := server.NewMCPServer(
		"ytt-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_youtube_transcripts",
		mcp.WithDescription("List the caption tracks of a YouTube video: language, language code, whether it is auto-generated and whether YouTube can translate it."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
	), s.handleListTranscripts)

	s.mcpServer.AddTool(mcp.NewTool("get_youtube_transcript",
		mcp.WithDescription("Fetch the captions of a YouTube video. Picks the first available language from 'languages', preferring manually created tracks over auto-generated ones."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
		mcp.WithString("languages",
			mcp.Description("Comma-separated language codes in priority order (default: en)"),
		),
		mcp.WithString("translate",
			mcp.Description("Language code to machine-translate the transcript into"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: text, json, pretty, srt or webvtt (default: text)"),
		),
	), s.handleGetTranscript)
}

// handleListTranscripts implements the list_youtube_transcripts tool
func (s *MCPServer) handleListTranscripts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	_, videoID := ParseArg(url)
	s.logger.Info("list transcripts", slog.String("video_id", videoID))

	list, err := s.app.ListTranscripts(ctx, videoID)
	if err != nil {
		s.logger.Error("list transcripts failed", slog.String("video_id", videoID), slog.Any("error", err))
		return mcp.NewToolResultErrorFromErr("listing transcripts failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(list.String())},
	}, nil
}

// handleGetTranscript implements the get_youtube_transcript tool
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	opts := FetchOptions{
		Languages:          s.app.config.Languages,
		TranslateTo:        request.GetString("translate", ""),
		PreserveFormatting: s.app.config.PreserveFormatting,
	}
	if languages := request.GetString("languages", ""); languages != "" {
		opts.Languages = splitLanguages(strings.Split(languages, ","))
	}

	format := request.GetString("format", "text")
	if err := ValidateFormat(format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, videoID := ParseArg(url)
	s.logger.Info("get transcript",
		slog.String("video_id", videoID),
		slog.Any("languages", opts.Languages),
		slog.String("format", format))

	fetched, err := s.app.FetchTranscript(ctx, videoID, opts)
	if err != nil {
		s.logger.Error("get transcript failed", slog.String("video_id", videoID), slog.Any("error", err))
		return mcp.NewToolResultErrorFromErr("fetching transcript failed", err), nil
	}

	out, err := s.app.FormatTranscript(fetched, format)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("formatting transcript failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(out)},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	switch transport {
	case "http":
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Info("serving MCP over HTTP", slog.String("addr", addr))

		errCh := make(chan error, 1)
		go func() { errCh <- httpServer.Start(addr) }()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return httpServer.Shutdown(context.Background())
		}
	case "stdio":
		s.logger.Info("serving MCP over stdio")
		return server.ServeStdio(s.mcpServer)
	default:
		return fmt.Errorf("unsupported transport %q (use stdio or http)", transport)
	}
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
