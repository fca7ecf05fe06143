// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes journaling tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/psycho-baller/obsidian-journal/internal/capture"
	"github.com/psycho-baller/obsidian-journal/internal/draft"
	"github.com/psycho-baller/obsidian-journal/internal/journal"
	"github.com/psycho-baller/obsidian-journal/internal/storage"
)

// Server wraps the MCP server with journaling tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *capture.Service
	drafts  *draft.Manager
	journal *journal.Service
	vault   storage.Provider
}

// New creates a new MCP server with all journaling tools registered.
func New(svc *capture.Service, drafts *draft.Manager, js *journal.Service, vault storage.Provider) *Server {
	s := &Server{svc: svc, drafts: drafts, journal: js, vault: vault}

	s.mcp = server.NewMCPServer(
		"ObsidianJournal",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("capture_text",
		mcp.WithDescription("Capture a journal entry from free-form text. The text is "+
			"imported as a draft and run through the extraction pipeline: structured "+
			"signals (metrics, gratitude, tasks, reflections) are merged into the "+
			"day's note. Sections are never invented; read the contract via the "+
			"get_daily_note_contract tool or the journal://daily-note-format resource."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The journal entry text or transcript")),
	), s.captureText)

	s.mcp.AddTool(mcp.NewTool("submit_draft",
		mcp.WithDescription("Submit a pending draft through the extraction and merge pipeline."),
		mcp.WithString("id", mcp.Description("Draft id (the current draft when omitted)")),
	), s.submitDraft)

	s.mcp.AddTool(mcp.NewTool("read_day",
		mcp.WithDescription("Read a journal day's Markdown note."),
		mcp.WithString("day", mcp.Description("Day in yyyy-MM-dd form (today's journal day when omitted)")),
	), s.readDay)

	s.mcp.AddTool(mcp.NewTool("search_journal",
		mcp.WithDescription("Full-text search through journal days."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchJournal)

	s.mcp.AddTool(mcp.NewTool("get_template",
		mcp.WithDescription("Get the cached daily-note template, if one has been inferred."),
	), s.getTemplate)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find journal days whose notes link to the specified day."),
		mcp.WithString("day", mcp.Required(), mcp.Description("Day in yyyy-MM-dd form")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("upload_recording",
		mcp.WithDescription("Save a voice recording into the vault's recordings folder. "+
			"Accepts a base64 data URI or an http(s) URL. Returns the saved path and "+
			"a wikilink embed for referencing the recording from a daily note."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Data URI (data:audio/...;base64,...) or http(s) URL of the recording")),
		mcp.WithString("filename", mcp.Description("Filename to save as (derived from the URL when omitted)")),
	), s.uploadRecording)

	s.mcp.AddTool(mcp.NewTool("get_daily_note_contract",
		mcp.WithDescription("Returns the canonical daily-note format contract. "+
			"Call this before writing content destined for a day's note."),
	), s.getContract)

	// Resource: daily-note format contract.
	s.mcp.AddResource(
		mcp.NewResource("journal://daily-note-format", "Daily Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown format that all journal days follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) captureText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is empty"), nil
	}

	d, err := s.drafts.Import(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Submit(ctx, d.ID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) submitDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := ""
	if v, err := req.RequireString("id"); err == nil {
		id = v
	}
	res, err := s.svc.Submit(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day := ""
	if v, err := req.RequireString("day"); err == nil {
		day = v
	}
	if day == "" {
		day = s.journal.DayKey(time.Now())
	} else if _, err := time.Parse(journal.DayLayout, day); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid day: %s (want yyyy-MM-dd)", day)), nil
	}

	content, err := s.journal.Read(day)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no journal note for %s", day)), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) searchJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tmpl, err := s.svc.Template()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if tmpl == nil {
		return mcp.NewToolResultText("no template cached"), nil
	}
	out, _ := json.MarshalIndent(tmpl, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := req.RequireString("day")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetDay(ctx, day)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no journal note for %s", day)), nil
	}
	if len(detail.Backlinks) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(detail.Backlinks, "\n")), nil
}

func (s *Server) getContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DailyNoteContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "journal://daily-note-format",
			MIMEType: "text/markdown",
			Text:     DailyNoteContract,
		},
	}, nil
}
