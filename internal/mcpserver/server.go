// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes docwarden checks for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docwarden/internal/frontmatter"
	"github.com/starford/docwarden/internal/navigation"
	"github.com/starford/docwarden/internal/report"
	"github.com/starford/docwarden/internal/storage"
	"github.com/starford/docwarden/internal/versioning"
)

// FormatResourceURI addresses the frontmatter contract resource.
const FormatResourceURI = "docwarden://frontmatter-format"

// Service runs the documentation passes. Implementations must not write to
// stdout, which carries the MCP transport.
type Service interface {
	ValidateReport(path string, strict bool) (*report.Report, error)
	ScopeReport() (*report.Report, error)
	SyncReport() (*report.Report, error)
	Bump(path, kind string, dryRun bool) ([]versioning.Result, error)
	Navigate(path string, all, dryRun bool) (navigation.Stats, error)
}

// Server wraps the MCP server with docwarden tools.
type Server struct {
	mcp   *server.MCPServer
	svc   Service
	store storage.Provider
}

// New creates a new MCP server with all docwarden tools registered.
func New(svc Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"docwarden",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("validate_docs",
		mcp.WithDescription("Validate document frontmatter, references and scope dependencies. "+
			"Returns the report as JSON."),
		mcp.WithString("path", mcp.Description("Optional file or directory to restrict the check to")),
		mcp.WithBoolean("strict", mcp.Description("Treat warnings as failures")),
	), s.validateDocs)

	s.mcp.AddTool(mcp.NewTool("check_scope",
		mcp.WithDescription("Check that shared framework documents never depend on game documents."),
	), s.checkScope)

	s.mcp.AddTool(mcp.NewTool("check_sync",
		mcp.WithDescription("List originals modified after their paired translation."),
	), s.checkSync)

	s.mcp.AddTool(mcp.NewTool("bump_version",
		mcp.WithDescription("Bump the semantic version of a document and its paired document. "+
			"Also sets the modified date to today."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path, root-relative or relative to the marker directory")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("major, minor or patch")),
		mcp.WithBoolean("dry_run", mcp.Description("Report the change without writing")),
	), s.bumpVersion)

	s.mcp.AddTool(mcp.NewTool("add_navigation",
		mcp.WithDescription("Insert or refresh the navigation block of a document or of every document in a directory."),
		mcp.WithString("path", mcp.Description("File or directory; empty for the whole knowledge base")),
		mcp.WithBoolean("dry_run", mcp.Description("Report the change without writing")),
	), s.addNavigation)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all documents or documents in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional root-relative folder (empty for all)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter",
		mcp.WithDescription("Return the parsed frontmatter of a document as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Root-relative document path")),
	), s.getFrontmatter)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the frontmatter contract every document must follow. "+
			"Call this before editing document metadata."),
	), s.getFrontmatterContract)

	s.mcp.AddResource(
		mcp.NewResource(FormatResourceURI, "Frontmatter Contract",
			mcp.WithResourceDescription("Frontmatter grammar and required fields of knowledge base documents."),
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

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func reportResult(r *report.Report, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, r, report.FormatJSON); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) validateDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return reportResult(s.svc.ValidateReport(req.GetString("path", ""), req.GetBool("strict", false)))
}

func (s *Server) checkScope(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return reportResult(s.svc.ScopeReport())
}

func (s *Server) checkSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return reportResult(s.svc.SyncReport())
}

func (s *Server) bumpVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := s.svc.Bump(path, kind, req.GetBool("dry_run", false))
	var lines []string
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%s: %s -> %s", r.Path, r.From, r.To))
	}
	if err != nil {
		lines = append(lines, "error: "+err.Error())
		return mcp.NewToolResultError(strings.Join(lines, "\n")), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) addNavigation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	st, err := s.svc.Navigate(path, path == "", req.GetBool("dry_run", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]int{
		"processed": st.Processed,
		"updated":   st.Updated,
		"skipped":   st.Skipped,
		"errors":    st.Errors,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.store.List(req.GetString("folder", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getFrontmatter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	res, ok := frontmatter.Parse(string(data))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no frontmatter: %s", path)), nil
	}
	out, _ := json.MarshalIndent(res.Metadata.Plain(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFrontmatterContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatResourceURI,
			MIMEType: "text/markdown",
			Text:     FrontmatterContract,
		},
	}, nil
}
