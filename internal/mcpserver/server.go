// Package mcpserver provides an MCP (Model Context Protocol) server
// that lets LLM clients append and read notes over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/noteservice"
)

// FormatURI is the resource URI of the note format contract.
const FormatURI = "quill://note-format"

// Server wraps the MCP server with quill tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all quill tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"quill",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Append a note to the store. Every field is optional and stored as given; "+
			"content is HTML-escaped and keywords are split on commas. Returns the stored note with its id."),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Free-text body")),
		mcp.WithString("keywords", mcp.Description("Comma-separated keywords, e.g. \"go, notes\"")),
		mcp.WithString("category", mcp.Description("Category name")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("Return every stored note as a JSON array, in store order."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Return one note by its integer id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.getNote)

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Note Format",
			mcp.WithResourceDescription("Shape of a stored note record."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := models.Draft{
		Title:    req.GetString("title", ""),
		Content:  req.GetString("content", ""),
		Keywords: req.GetString("keywords", ""),
		Category: req.GetString("category", ""),
	}
	note, err := s.svc.AddNote(ctx, d)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to insert note: %v", err)), nil
	}
	return jsonResult(note)
}

func (s *Server) listNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(notes)
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("note %d not found", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(note)
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
