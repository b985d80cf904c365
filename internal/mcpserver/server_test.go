package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	svc, path := testutil.TestService(t)
	return New(svc, "test"), path
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "add_note":
		result, err = srv.addNote(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_note":
		result, err = srv.getNote(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddAndGetNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "add_note", map[string]interface{}{
		"title":    "From MCP",
		"content":  "a < b",
		"keywords": "x, y",
	})
	if r.IsError {
		t.Fatalf("add_note failed: %s", resultText(r))
	}
	var added models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &added); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if added.ID != 1 || added.Content != "a &lt; b" {
		t.Errorf("added = %+v", added)
	}

	r = callTool(t, srv, "get_note", map[string]interface{}{"id": float64(1)})
	if r.IsError {
		t.Fatalf("get_note failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"title": "From MCP"`) {
		t.Errorf("get result = %q", resultText(r))
	}
}

func TestAddNoteWithoutArguments(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "add_note", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("add_note with no args failed: %s", resultText(r))
	}
}

func TestListNotes(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "add_note", map[string]interface{}{"title": "a"})
	_ = callTool(t, srv, "add_note", map[string]interface{}{"title": "b"})

	r := callTool(t, srv, "list_notes", map[string]interface{}{})
	var notes []models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &notes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(notes) != 2 || notes[1].ID != 2 {
		t.Errorf("notes = %+v", notes)
	}
}

func TestGetNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note", map[string]interface{}{"id": float64(9)})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestAddNoteCorruptStore(t *testing.T) {
	srv, path := testServer(t)
	_ = os.WriteFile(path, []byte("{"), 0o644)

	r := callTool(t, srv, "add_note", map[string]interface{}{"title": "x"})
	if !r.IsError {
		t.Fatal("expected tool error")
	}
	if !strings.HasPrefix(resultText(r), "failed to insert note:") {
		t.Errorf("text = %q", resultText(r))
	}
}

func TestFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != FormatURI || !strings.Contains(tc.Text, "keywords") {
		t.Errorf("resource = %+v", contents[0])
	}
}
