package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/docwarden/internal/models"
	"github.com/starford/docwarden/internal/navigation"
	"github.com/starford/docwarden/internal/report"
	"github.com/starford/docwarden/internal/storage"
	"github.com/starford/docwarden/internal/testutil"
	"github.com/starford/docwarden/internal/versioning"
)

type fakeService struct {
	validatePath   string
	validateStrict bool
	bumpErr        error
	navPath        string
	navAll         bool
	navDryRun      bool
}

func (f *fakeService) ValidateReport(path string, strict bool) (*report.Report, error) {
	f.validatePath, f.validateStrict = path, strict
	return &report.Report{
		Title:     "Documentation Validation",
		Documents: 2,
		Strict:    strict,
		Findings: []models.Finding{
			models.NewWarning("a.md", "Broken Reference", "Referenced document not found: x.md"),
		},
	}, nil
}

func (f *fakeService) ScopeReport() (*report.Report, error) {
	return nil, errors.New("scope failed")
}

func (f *fakeService) SyncReport() (*report.Report, error) {
	return &report.Report{Title: "Translation Sync", Documents: 1}, nil
}

func (f *fakeService) Bump(path, kind string, dryRun bool) ([]versioning.Result, error) {
	results := []versioning.Result{{
		Path: path,
		From: versioning.Version{Major: 1},
		To:   versioning.Version{Major: 1, Minor: 1},
	}}
	return results, f.bumpErr
}

func (f *fakeService) Navigate(path string, all, dryRun bool) (navigation.Stats, error) {
	f.navPath, f.navAll, f.navDryRun = path, all, dryRun
	return navigation.Stats{Processed: 3, Updated: 2, Skipped: 1}, nil
}

func testServer(t *testing.T) (*Server, *fakeService, storage.Provider) {
	t.Helper()
	_, store := testutil.TestStore(t, map[string]string{
		".claude/a.md":     testutil.Doc("# A\n", "title: A", "tags: [x, y]"),
		".claude/sub/b.md": "# B\n",
	})
	svc := &fakeService{}
	return New(svc, store), svc, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "validate_docs":
		result, err = srv.validateDocs(ctx, req)
	case "check_scope":
		result, err = srv.checkScope(ctx, req)
	case "check_sync":
		result, err = srv.checkSync(ctx, req)
	case "bump_version":
		result, err = srv.bumpVersion(ctx, req)
	case "add_navigation":
		result, err = srv.addNavigation(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "get_frontmatter":
		result, err = srv.getFrontmatter(ctx, req)
	case "get_frontmatter_contract":
		result, err = srv.getFrontmatterContract(ctx, req)
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

func TestValidateDocs(t *testing.T) {
	srv, svc, _ := testServer(t)
	r := callTool(t, srv, "validate_docs", map[string]interface{}{"path": "sub", "strict": true})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if svc.validatePath != "sub" || !svc.validateStrict {
		t.Errorf("service got path %q strict %v", svc.validatePath, svc.validateStrict)
	}

	var out struct {
		Warnings int  `json:"warnings"`
		Failed   bool `json:"failed"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if out.Warnings != 1 || !out.Failed {
		t.Errorf("report = %+v", out)
	}
}

func TestCheckScopeError(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "check_scope", nil)
	if !r.IsError || !strings.Contains(resultText(r), "scope failed") {
		t.Errorf("expected error result, got %q", resultText(r))
	}
}

func TestCheckSync(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "check_sync", nil)
	if r.IsError || !strings.Contains(resultText(r), `"title": "Translation Sync"`) {
		t.Errorf("sync result = %q", resultText(r))
	}
}

func TestBumpVersion(t *testing.T) {
	srv, svc, _ := testServer(t)
	r := callTool(t, srv, "bump_version", map[string]interface{}{"path": "a.md", "kind": "minor"})
	if r.IsError || resultText(r) != "a.md: 1.0.0 -> 1.1.0" {
		t.Errorf("bump result = %q", resultText(r))
	}

	r = callTool(t, srv, "bump_version", map[string]interface{}{"path": "a.md"})
	if !r.IsError {
		t.Error("expected error for missing kind")
	}

	svc.bumpErr = errors.New("paired document broken")
	r = callTool(t, srv, "bump_version", map[string]interface{}{"path": "a.md", "kind": "patch"})
	if !r.IsError || !strings.Contains(resultText(r), "a.md: 1.0.0 -> 1.1.0") {
		t.Errorf("partial result = %q", resultText(r))
	}
}

func TestAddNavigation(t *testing.T) {
	srv, svc, _ := testServer(t)
	r := callTool(t, srv, "add_navigation", map[string]interface{}{"dry_run": true})
	if r.IsError {
		t.Fatal(resultText(r))
	}
	if !svc.navAll || !svc.navDryRun {
		t.Errorf("service got all %v dry run %v", svc.navAll, svc.navDryRun)
	}
	if !strings.Contains(resultText(r), `"updated": 2`) {
		t.Errorf("stats = %q", resultText(r))
	}

	callTool(t, srv, "add_navigation", map[string]interface{}{"path": ".claude/a.md"})
	if svc.navAll || svc.navPath != ".claude/a.md" {
		t.Errorf("service got path %q all %v", svc.navPath, svc.navAll)
	}
}

func TestListDocuments(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "list_documents", map[string]interface{}{})
	if text := resultText(r); text != ".claude/a.md\n.claude/sub/b.md" {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "list_documents", map[string]interface{}{"folder": ".claude/sub"})
	if text := resultText(r); text != ".claude/sub/b.md" {
		t.Errorf("folder list = %q", text)
	}
}

func TestGetFrontmatter(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_frontmatter", map[string]interface{}{"path": ".claude/a.md"})
	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(r)), &meta); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if meta["title"] != "A" {
		t.Errorf("title = %v", meta["title"])
	}
	if tags, ok := meta["tags"].([]interface{}); !ok || len(tags) != 2 {
		t.Errorf("tags = %v", meta["tags"])
	}

	r = callTool(t, srv, "get_frontmatter", map[string]interface{}{"path": ".claude/sub/b.md"})
	if !r.IsError {
		t.Error("expected error for a document without frontmatter")
	}
	r = callTool(t, srv, "get_frontmatter", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for a missing document")
	}
}

func TestFrontmatterContract(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_frontmatter_contract", nil)
	if resultText(r) != FrontmatterContract {
		t.Error("contract tool returned unexpected text")
	}

	contents, err := srv.readFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != FormatResourceURI {
		t.Errorf("resource contents = %+v", contents[0])
	}
}
