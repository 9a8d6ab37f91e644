package navigation

import (
	"bytes"
	"path/filepath"
	"strings"

	yamlfm "github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/docwarden/internal/frontmatter"
	"github.com/starford/docwarden/internal/storage"
)

// TitleCache memoizes document titles for one run. It is never invalidated,
// so it must not outlive the run that created it.
type TitleCache struct {
	store  storage.Provider
	titles map[string]string
}

// NewTitleCache returns an empty cache reading through store. Paths the
// store refuses get a file name title.
func NewTitleCache(store storage.Provider) *TitleCache {
	return &TitleCache{store: store, titles: make(map[string]string)}
}

// Title returns the frontmatter title of the file at abs, or a title derived
// from its file name.
func (c *TitleCache) Title(abs string) string {
	if t, ok := c.titles[abs]; ok {
		return t
	}
	t := c.readTitle(abs)
	if t == "" {
		t = FilenameTitle(abs)
	}
	c.titles[abs] = t
	return t
}

// Len returns the number of cached titles.
func (c *TitleCache) Len() int { return len(c.titles) }

func (c *TitleCache) readTitle(abs string) string {
	data, err := c.store.Read(abs)
	if err != nil {
		return ""
	}

	var meta struct {
		Title string `yaml:"title"`
	}
	if _, err := yamlfm.Parse(bytes.NewReader(data), &meta); err == nil && meta.Title != "" {
		return meta.Title
	}

	// Blocks that are not strict YAML still follow the flat grammar.
	if res, ok := frontmatter.Parse(string(data)); ok {
		return res.Metadata.String("title")
	}
	return ""
}

// FilenameTitle derives a title from a file name: separators become spaces
// and every word is title-cased.
func FilenameTitle(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return cases.Title(language.Und).String(stem)
}
