// Package navigation computes and injects the navigation block placed right
// after a document's frontmatter.
package navigation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/starford/docwarden/internal/docgraph"
	"github.com/starford/docwarden/internal/frontmatter"
	"github.com/starford/docwarden/internal/storage"
)

// Marker opens a navigation block.
const Marker = "<!-- Navigation -->"

// Config locates the navigation targets.
type Config struct {
	// MarkerDir holds the home index, relative to the project root.
	MarkerDir       string
	HomeIndex       string
	HomeTitle       string
	CategoryIndexes []string
	VariantSuffix   string
}

// Link is one navigation target.
type Link struct {
	Title string
	Path  string
}

// Links are the three targets rendered in a block.
type Links struct {
	Home, Category, Parent Link
}

// Render formats the block for links.
func Render(l Links) string {
	return fmt.Sprintf("%s\n**🏠 [%s](%s)** | **📂 [%s](%s)** | **⬆️ [%s](%s)**\n\n---\n",
		Marker,
		l.Home.Title, l.Home.Path,
		l.Category.Title, l.Category.Path,
		l.Parent.Title, l.Parent.Path)
}

// Inject removes any navigation block from content and inserts block right
// after the frontmatter, or at the very start when there is none. Content
// outside the blocks is preserved, so injecting twice is a no-op.
func Inject(content, block string) string {
	if fm, ok := frontmatter.Split(content); ok {
		head, rest := content[:fm.End], content[fm.End:]
		if !strings.HasSuffix(head, "\n") {
			head += "\n" // closing delimiter at EOF
		}
		return head + "\n" + block + removeBlocks(rest, true)
	}
	return block + "\n" + removeBlocks(content, false)
}

// removeBlocks deletes every block from the marker through the next "---"
// line. The blank separator Inject writes next to a block at the injection
// site goes with it.
func removeBlocks(s string, afterFrontmatter bool) string {
	const terminator = "\n" + frontmatter.Delimiter + "\n"
	for {
		i := strings.Index(s, Marker)
		if i < 0 {
			return s
		}
		var end int
		if j := strings.Index(s[i:], terminator); j >= 0 {
			end = i + j + len(terminator)
		} else if strings.HasSuffix(s, "\n"+frontmatter.Delimiter) {
			end = len(s)
		} else {
			return s // unterminated marker is left alone
		}

		start := i
		if afterFrontmatter && i == 1 && s[0] == '\n' {
			start = 0
		}
		if !afterFrontmatter && i == 0 && end < len(s) && s[end] == '\n' {
			end++
		}
		s = s[:start] + s[end:]
	}
}

// Stats counts the outcome of a run.
type Stats struct {
	Processed int
	Updated   int
	Skipped   int
	Errors    int
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithDryRun reports changes without writing files.
func WithDryRun(dryRun bool) Option {
	return func(n *Navigator) { n.dryRun = dryRun }
}

// Navigator injects navigation into documents.
type Navigator struct {
	store  storage.Provider
	cfg    Config
	titles *TitleCache
	logger *slog.Logger
	dryRun bool
}

// New creates a Navigator. titles is shared by every file of the run.
func New(store storage.Provider, cfg Config, titles *TitleCache, logger *slog.Logger, opts ...Option) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	if titles == nil {
		titles = NewTitleCache(store)
	}
	n := &Navigator{store: store, cfg: cfg, titles: titles, logger: logger}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Links computes the navigation targets of the document at abs.
func (n *Navigator) Links(abs string, meta frontmatter.Metadata) Links {
	dir := filepath.Dir(abs)
	variant := docgraph.IsVariant(filepath.Base(abs), n.cfg.VariantSuffix)

	homeName := n.cfg.HomeIndex
	if variant {
		homeName = docgraph.VariantName(homeName, n.cfg.VariantSuffix)
	}
	homeAbs := filepath.Join(n.store.Root(), filepath.FromSlash(n.cfg.MarkerDir), homeName)
	home := Link{Title: n.cfg.HomeTitle, Path: relPath(dir, homeAbs)}
	if home.Title == "" {
		home.Title = n.titles.Title(homeAbs)
	}

	category := n.category(abs, variant)

	parent := category
	if parents := meta.Strings("parent_documents"); len(parents) > 0 {
		ref := parents[0]
		if variant {
			ref = docgraph.VariantName(ref, n.cfg.VariantSuffix)
		}
		if target := docgraph.Resolve(abs, ref); n.store.Exists(target) {
			parent = Link{Title: n.titles.Title(target), Path: relPath(dir, target)}
		} else {
			n.logger.Debug("nav: parent not found, using category",
				slog.String("path", abs), slog.String("parent", ref))
		}
	}

	return Links{Home: home, Category: category, Parent: parent}
}

// category links to the first index file found in the document's directory,
// or to the document itself.
func (n *Navigator) category(abs string, variant bool) Link {
	dir := filepath.Dir(abs)
	for _, name := range n.cfg.CategoryIndexes {
		if variant {
			name = docgraph.VariantName(name, n.cfg.VariantSuffix)
		}
		candidate := filepath.Join(dir, name)
		if n.store.Exists(candidate) {
			return Link{Title: n.titles.Title(candidate), Path: relPath(dir, candidate)}
		}
	}
	return Link{Title: n.titles.Title(abs), Path: "./"}
}

// ProcessFile injects navigation into one file and reports whether its
// content changed.
func (n *Navigator) ProcessFile(abs string) (bool, error) {
	data, err := n.store.Read(abs)
	if err != nil {
		return false, err
	}
	content := string(data)

	var meta frontmatter.Metadata
	if res, ok := frontmatter.Parse(content); ok {
		meta = res.Metadata
	} else {
		n.logger.Warn("nav: no frontmatter, prepending navigation", slog.String("path", abs))
	}

	updated := Inject(content, Render(n.Links(abs, meta)))
	if updated == content {
		n.logger.Debug("nav: no changes needed", slog.String("path", abs))
		return false, nil
	}
	if n.dryRun {
		n.logger.Info("nav: would update", slog.String("path", abs))
		return true, nil
	}
	if err := n.store.Backup(abs, data); err != nil {
		return false, err
	}
	if err := n.store.Write(abs, []byte(updated)); err != nil {
		return false, err
	}
	n.logger.Info("nav: updated", slog.String("path", abs))
	return true, nil
}

// ProcessDir injects navigation into every document under dirAbs. Failures
// are counted and logged; they do not stop the run.
func (n *Navigator) ProcessDir(dirAbs string) (Stats, error) {
	rel, err := filepath.Rel(n.store.Root(), dirAbs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return Stats{}, fmt.Errorf("nav: %s is outside the project root", dirAbs)
	}
	metas, err := n.store.List(filepath.ToSlash(rel))
	if err != nil {
		return Stats{}, err
	}
	n.logger.Info("nav: found documents", slog.Int("count", len(metas)), slog.String("dir", rel))

	var st Stats
	for _, m := range metas {
		n.Apply(&st, filepath.Join(n.store.Root(), filepath.FromSlash(m.Path)))
	}
	return st, nil
}

// Apply processes one file and records the outcome in st.
func (n *Navigator) Apply(st *Stats, abs string) {
	st.Processed++
	changed, err := n.ProcessFile(abs)
	switch {
	case err != nil:
		st.Errors++
		n.logger.Error("nav: processing failed", slog.String("path", abs), slog.String("error", err.Error()))
	case changed:
		st.Updated++
	default:
		st.Skipped++
	}
}

func relPath(fromDir, target string) string {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}
