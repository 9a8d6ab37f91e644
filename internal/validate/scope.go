package validate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/docwarden/internal/docgraph"
	"github.com/starford/docwarden/internal/models"
)

// ScopeRules configures the tier dependency check. Documents of SharedTier
// must never depend on documents of ConsumerTier.
type ScopeRules struct {
	// Fields are the metadata keys holding a document's tier, in lookup order.
	Fields           []string
	SharedTier       string
	ConsumerTier     string
	SharedPathHint   string
	ConsumerPathHint string
}

// ScopePass returns the tier dependency pass.
func ScopePass(r ScopeRules) Pass {
	return scopePass{rules: r}
}

type scopePass struct {
	rules ScopeRules
}

func (scopePass) Name() string { return "scope-dependency" }

func (p scopePass) Check(g *docgraph.Graph, doc *models.Document) []models.Finding {
	if normalizeTier(doc.Metadata.First(p.rules.Fields...)) != normalizeTier(p.rules.SharedTier) {
		return nil
	}

	relations := []struct {
		kind string
		refs []string
	}{
		{"reference", doc.Metadata.Strings(KeyReferences)},
		{"parent", doc.Metadata.Strings(KeyParentDocuments)},
	}

	var out []models.Finding
	for _, rel := range relations {
		for _, ref := range rel.refs {
			target := docgraph.Resolve(doc.Abs, ref)
			tier, source := p.classify(g, target)
			switch {
			case tier == normalizeTier(p.rules.ConsumerTier):
				out = append(out, models.NewError(doc.Path, CategoryScopeViolation,
					fmt.Sprintf("%s → %s: %s '%s' (target classified by %s)",
						p.rules.SharedTier, p.rules.ConsumerTier, rel.kind, ref, source)))
			case tier == "":
				out = append(out, models.NewWarning(doc.Path, CategoryAmbiguousScope,
					fmt.Sprintf("Could not determine the scope of %s '%s'", rel.kind, ref)))
			}
		}
	}
	return out
}

// classify returns the tier of the file at abs and how it was determined.
// Metadata wins; the path hint match is a best-effort fallback.
func (p scopePass) classify(g *docgraph.Graph, abs string) (tier, source string) {
	if meta, ok := g.Lookup(abs); ok {
		if t := meta.First(p.rules.Fields...); t != "" {
			return normalizeTier(t), "metadata"
		}
	}

	// Match against the root-relative path so that directories above the
	// project root cannot influence the result.
	path := filepath.ToSlash(abs)
	if rel, err := filepath.Rel(g.Root(), abs); err == nil && !strings.HasPrefix(rel, "..") {
		path = "/" + filepath.ToSlash(rel)
	}
	switch {
	case p.rules.ConsumerPathHint != "" && strings.Contains(path, p.rules.ConsumerPathHint):
		return normalizeTier(p.rules.ConsumerTier), "path"
	case p.rules.SharedPathHint != "" && strings.Contains(path, p.rules.SharedPathHint):
		return normalizeTier(p.rules.SharedTier), "path"
	}
	return "", ""
}

func normalizeTier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
