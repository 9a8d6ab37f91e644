package validate

import (
	"strings"
	"testing"

	"github.com/starford/docwarden/internal/docgraph"
	"github.com/starford/docwarden/internal/models"
	"github.com/starford/docwarden/internal/testutil"
)

var testRules = Rules{
	RequiredFields: []string{"title", "version", "scope", "created", "modified", "category", "tags", "paired_document", "status"},
	Statuses:       []string{"draft", "review", "approved", "deprecated", "active"},
}

func validDoc(extra ...string) string {
	lines := []string{
		"title: Guide",
		"version: 1.0.0",
		"scope: framework",
		"created: 2024-01-01",
		"modified: 2024-02-01",
		"category: guide",
		"tags: [a, b]",
		"paired_document: guide_KOR.md",
		"status: active",
	}
	return testutil.Doc("# Guide\n", append(lines, extra...)...)
}

func loadGraph(t *testing.T, files map[string]string) *docgraph.Graph {
	t.Helper()
	_, store := testutil.TestStore(t, files)
	g, err := docgraph.Load(store, docgraph.Options{
		Dir:           ".claude",
		VariantSuffix: "_KOR",
		ExcludedNames: []string{"CLAUDE.md", "README.md"},
		ExcludedDirs:  []string{"commands", "skills"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return g
}

func byCategory(findings []models.Finding, category string) []models.Finding {
	var out []models.Finding
	for _, f := range findings {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

func TestRun_ValidDocumentHasNoFindings(t *testing.T) {
	g := loadGraph(t, map[string]string{
		".claude/docs/guide.md":     validDoc(),
		".claude/docs/guide_KOR.md": "번역",
	})
	checked, findings := Run(g, MetadataPasses(testRules), nil, nil)
	if checked != 1 {
		t.Errorf("checked = %d, want 1", checked)
	}
	if len(findings) != 0 {
		t.Errorf("unexpected findings: %+v", findings)
	}
}

func TestRun_OneErrorPerMissingField(t *testing.T) {
	g := loadGraph(t, map[string]string{
		".claude/docs/partial.md": testutil.Doc("", "title: Partial", "version: 1.0.0", "tags:", "status: \"\""),
	})
	_, findings := Run(g, MetadataPasses(testRules), nil, nil)

	missing := byCategory(findings, CategoryMissingField)
	// scope, created, modified, category, tags, paired_document, status
	if len(missing) != 7 {
		t.Fatalf("missing-field findings = %d, want 7: %+v", len(missing), missing)
	}
	for _, f := range missing {
		if f.Severity != models.SeverityError {
			t.Errorf("severity = %s", f.Severity)
		}
		if f.Path != ".claude/docs/partial.md" {
			t.Errorf("path = %s", f.Path)
		}
	}
	if len(findings) != len(missing) {
		t.Errorf("empty values must not trigger format checks: %+v", findings)
	}
}

func TestRun_MissingFrontmatter(t *testing.T) {
	g := loadGraph(t, map[string]string{
		".claude/docs/raw.md": "# No metadata\n",
	})
	_, findings := Run(g, MetadataPasses(testRules), nil, nil)
	if len(findings) != 1 || findings[0].Category != CategoryMissingFrontmatter {
		t.Fatalf("findings = %+v", findings)
	}
}

func TestRun_VersionAndStatus(t *testing.T) {
	g := loadGraph(t, map[string]string{
		".claude/docs/guide.md":     strings.Replace(strings.Replace(validDoc(), "version: 1.0.0", "version: 1.0", 1), "status: active", "status: published", 1),
		".claude/docs/guide_KOR.md": "x",
	})
	_, findings := Run(g, MetadataPasses(testRules), nil, nil)
	if len(byCategory(findings, CategoryInvalidVersion)) != 1 {
		t.Errorf("expected one version finding: %+v", findings)
	}
	st := byCategory(findings, CategoryInvalidStatus)
	if len(st) != 1 || !strings.Contains(st[0].Message, "draft, review, approved, deprecated, active") {
		t.Errorf("status findings = %+v", st)
	}
}

func TestRun_References(t *testing.T) {
	g := loadGraph(t, map[string]string{
		".claude/docs/a/guide.md": validDoc(
			"references:",
			"  - ./sibling.md",
			"  - ../other.md",
			"  - gone.md",
			"parent_documents: [../missing-parent.md, ./sibling.md]",
		),
		".claude/docs/a/sibling.md": "x",
		".claude/docs/other.md":     "x",
	})
	_, findings := Run(g, MetadataPasses(testRules), func(d *models.Document) bool {
		return strings.HasSuffix(d.Path, "guide.md")
	}, nil)

	paired := byCategory(findings, CategoryMissingPaired)
	if len(paired) != 1 || paired[0].Severity != models.SeverityError {
		t.Errorf("paired = %+v", paired)
	}
	broken := byCategory(findings, CategoryBrokenReference)
	if len(broken) != 1 || broken[0].Severity != models.SeverityWarning || !strings.Contains(broken[0].Message, "gone.md") {
		t.Errorf("broken = %+v", broken)
	}
	parents := byCategory(findings, CategoryMissingParent)
	if len(parents) != 1 || parents[0].Severity != models.SeverityError || !strings.Contains(parents[0].Message, "missing-parent.md") {
		t.Errorf("parents = %+v", parents)
	}
}

func TestRun_IncludeFilter(t *testing.T) {
	g := loadGraph(t, map[string]string{
		".claude/a/one.md": "raw",
		".claude/b/two.md": "raw",
	})
	checked, findings := Run(g, MetadataPasses(testRules), func(d *models.Document) bool {
		return strings.HasPrefix(d.Path, ".claude/a/")
	}, nil)
	if checked != 1 || len(findings) != 1 {
		t.Errorf("checked = %d findings = %d", checked, len(findings))
	}
}
