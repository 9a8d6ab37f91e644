// Package docgraph loads every document of a knowledge base into memory and
// resolves the relationships declared in their frontmatter.
package docgraph

import (
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/docwarden/internal/frontmatter"
	"github.com/starford/docwarden/internal/models"
	"github.com/starford/docwarden/internal/storage"
)

// Options selects which files become graph documents.
type Options struct {
	// Dir is the directory to enumerate, relative to the project root.
	Dir string
	// VariantSuffix marks secondary-language files (e.g. "_KOR").
	VariantSuffix string
	// ExcludedNames are file names that are never loaded.
	ExcludedNames []string
	// ExcludedDirs are directory names whose subtrees are never loaded.
	ExcludedDirs []string
	Logger       *slog.Logger
}

// Graph is the in-memory working set of one run.
type Graph struct {
	store  storage.Provider
	logger *slog.Logger

	Docs  []*models.Document
	byAbs map[string]*models.Document

	// lookups memoizes metadata of files outside Docs.
	lookups map[string]lookup
}

type lookup struct {
	meta frontmatter.Metadata
	ok   bool
}

// Load enumerates and parses documents. Unreadable files are logged and
// skipped; files without frontmatter are kept with empty metadata.
func Load(store storage.Provider, opts Options) (*Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &Graph{
		store:   store,
		logger:  logger,
		byAbs:   make(map[string]*models.Document),
		lookups: make(map[string]lookup),
	}

	metas, err := store.List(opts.Dir)
	if err != nil {
		return nil, err
	}

	for _, m := range metas {
		if !opts.includes(m.Path) {
			logger.Debug("graph: excluded", slog.String("path", m.Path))
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("graph: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		doc := NewDocument(store.Root(), m.Path, string(data))
		if !doc.HasFrontmatter {
			logger.Debug("graph: no frontmatter", slog.String("path", m.Path))
		}
		g.Docs = append(g.Docs, doc)
		g.byAbs[doc.Abs] = doc
	}

	logger.Debug("graph: loaded", slog.Int("documents", len(g.Docs)))
	return g, nil
}

// NewDocument parses content into a Document located at rel under root.
func NewDocument(root, rel, content string) *models.Document {
	doc := &models.Document{
		Path:     rel,
		Abs:      filepath.Join(root, filepath.FromSlash(rel)),
		Metadata: frontmatter.Metadata{},
		Body:     content,
	}
	if res, ok := frontmatter.Parse(content); ok {
		doc.Metadata = res.Metadata
		doc.Body = res.Body
		doc.HasFrontmatter = true
	}
	return doc
}

func (o Options) includes(rel string) bool {
	name := path.Base(rel)
	if IsVariant(name, o.VariantSuffix) {
		return false
	}
	for _, n := range o.ExcludedNames {
		if name == n {
			return false
		}
	}
	for _, dir := range strings.Split(path.Dir(rel), "/") {
		for _, ex := range o.ExcludedDirs {
			if dir == ex {
				return false
			}
		}
	}
	return true
}

// Get returns the loaded document at abs.
func (g *Graph) Get(abs string) (*models.Document, bool) {
	doc, ok := g.byAbs[abs]
	return doc, ok
}

// Exists reports whether a file exists at abs.
func (g *Graph) Exists(abs string) bool {
	return g.store.Exists(abs)
}

// Lookup returns the metadata of the file at abs. Files outside the loaded
// set are read and parsed once per graph. ok is false when the file cannot be
// read or has no frontmatter.
func (g *Graph) Lookup(abs string) (frontmatter.Metadata, bool) {
	if doc, ok := g.byAbs[abs]; ok {
		return doc.Metadata, doc.HasFrontmatter
	}
	if l, ok := g.lookups[abs]; ok {
		return l.meta, l.ok
	}

	var l lookup
	if data, err := g.store.Read(abs); err == nil {
		if res, ok := frontmatter.Parse(string(data)); ok {
			l = lookup{meta: res.Metadata, ok: true}
		}
	}
	g.lookups[abs] = l
	return l.meta, l.ok
}

// Root returns the absolute project root.
func (g *Graph) Root() string { return g.store.Root() }
