// Package mcpserver exposes the library, transcripts and chat as MCP tools
// over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/jwulff/scribe/internal/api"
	"github.com/jwulff/scribe/internal/library"
	"github.com/jwulff/scribe/internal/transcript"
)

// Backend is the part of the API client the tools use.
type Backend interface {
	Structure(ctx context.Context) (library.Structure, error)
	Session(ctx context.Context, id string) (api.SessionDetail, error)
	Chat(ctx context.Context, req api.ChatRequest) (string, error)
	Move(ctx context.Context, itemID string, kind library.Kind, targetFolderID string) error
}

// Tools holds the tool handlers.
type Tools struct {
	backend Backend
	log     zerolog.Logger
}

// NewTools creates handlers backed by b.
func NewTools(b Backend, log zerolog.Logger) *Tools {
	return &Tools{backend: b, log: log.With().Str("component", "mcp").Logger()}
}

// New builds an MCP server with every tool registered.
func New(b Backend, version string, log zerolog.Logger) *server.MCPServer {
	s := server.NewMCPServer("scribe", version, server.WithToolCapabilities(true))
	NewTools(b, log).Register(s)
	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// Register adds the tools to s.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_library",
		mcp.WithDescription("List every folder, meeting session and document in the note library as an indented tree with ids."),
	), t.ListLibrary)

	s.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the timestamped, speaker-labelled transcript of a meeting session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from list_library")),
		mcp.WithString("format", mcp.Description("txt (default) or md")),
	), t.GetTranscript)

	s.AddTool(mcp.NewTool("get_minutes",
		mcp.WithDescription("Get the generated meeting minutes (markdown) of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from list_library")),
	), t.GetMinutes)

	s.AddTool(mcp.NewTool("ask",
		mcp.WithDescription("Ask the meeting assistant a question over one or more sessions, or over the whole library when none are given."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question")),
		mcp.WithString("session_ids", mcp.Description("Comma-separated session ids")),
		mcp.WithString("chat_id", mcp.Description("Existing chat thread to continue")),
	), t.Ask)

	s.AddTool(mcp.NewTool("move_item",
		mcp.WithDescription("Move a folder, session or document into another folder, or to the top level."),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Id of the item to move")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("folder, session or document")),
		mcp.WithString("target_folder_id", mcp.Description("Destination folder id; empty for the top level")),
	), t.MoveItem)
}

// ListLibrary renders the library tree.
func (t *Tools) ListLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := t.backend.Structure(ctx)
	if err != nil {
		return t.fail("list library", err), nil
	}
	var b strings.Builder
	if err := library.WriteText(&b, library.BuildTree(data)); err != nil {
		return t.fail("list library", err), nil
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("The library is empty."), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

// GetTranscript returns a session's transcript.
func (t *Tools) GetTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := transcript.ParseFormat(req.GetString("format", "txt"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s, err := t.backend.Session(ctx, id)
	if err != nil {
		return t.fail("get transcript", err), nil
	}
	text, err := transcript.Render(s.Segments, format)
	if errors.Is(err, transcript.ErrEmpty) {
		return mcp.NewToolResultText(fmt.Sprintf("Session %q has no transcript yet.", s.Meta.Title)), nil
	}
	if err != nil {
		return t.fail("get transcript", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("# %s\n\n%s", s.Meta.Title, text)), nil
}

// GetMinutes returns a session's minutes.
func (t *Tools) GetMinutes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s, err := t.backend.Session(ctx, id)
	if err != nil {
		return t.fail("get minutes", err), nil
	}
	if strings.TrimSpace(s.Minutes) == "" {
		return mcp.NewToolResultText(fmt.Sprintf("Session %q has no minutes.", s.Meta.Title)), nil
	}
	return mcp.NewToolResultText(s.Minutes), nil
}

// Ask forwards a question to the chat backend.
func (t *Tools) Ask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	answer, err := t.backend.Chat(ctx, api.ChatRequest{
		Question:   q,
		SessionIDs: splitIDs(req.GetString("session_ids", "")),
		ChatID:     req.GetString("chat_id", ""),
	})
	if err != nil {
		return t.fail("ask", err), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// MoveItem reparents an item.
func (t *Tools) MoveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawKind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, ok := library.ParseKind(rawKind)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q (want folder, session or document)", rawKind)), nil
	}
	move, err := library.NewMoveRequest(id, kind, req.GetString("target_folder_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.backend.Move(ctx, move.ItemID, move.Kind, move.TargetFolderID); err != nil {
		return t.fail("move item", err), nil
	}
	dest := "the top level"
	if move.TargetFolderID != library.RootSentinel {
		dest = "folder " + move.TargetFolderID
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved %s %s to %s.", move.Kind, move.ItemID, dest)), nil
}

func (t *Tools) fail(op string, err error) *mcp.CallToolResult {
	t.log.Warn().Err(err).Str("tool", op).Msg("tool failed")
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", op, api.Detail(err)))
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
