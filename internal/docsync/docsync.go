// Package docsync detects translations that lag behind their originals.
package docsync

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/docwarden/internal/docgraph"
	"github.com/starford/docwarden/internal/models"
	"github.com/starford/docwarden/internal/validate"
	"github.com/starford/docwarden/internal/versioning"
)

// CategoryOutOfSync is the finding category for drifted pairs.
const CategoryOutOfSync = "Translation Out Of Sync"

// Drift describes an original modified after its paired document.
type Drift struct {
	Original       string `json:"original" yaml:"original"`
	Paired         string `json:"paired" yaml:"paired"`
	OriginalDate   string `json:"original_modified" yaml:"original_modified"`
	PairedModified string `json:"paired_modified" yaml:"paired_modified"`
}

// Pass returns the drift check as a validation pass. Variant documents are
// never loaded into the graph, so every checked document is an original.
func Pass(logger *slog.Logger) validate.Pass {
	if logger == nil {
		logger = slog.Default()
	}
	return syncPass{logger: logger}
}

type syncPass struct {
	logger *slog.Logger
}

func (syncPass) Name() string { return "translation-sync" }

func (p syncPass) Check(g *docgraph.Graph, doc *models.Document) []models.Finding {
	d, ok := Compare(g, doc)
	if !ok {
		return nil
	}
	p.logger.Debug("sync: checked pair",
		slog.String("original", d.Original), slog.String("paired", d.Paired),
		slog.String("original_modified", d.OriginalDate), slog.String("paired_modified", d.PairedModified))
	if !Newer(d.OriginalDate, d.PairedModified) {
		return nil
	}
	return []models.Finding{models.NewWarning(doc.Path, CategoryOutOfSync,
		fmt.Sprintf("Modified %s but paired document %s was modified %s",
			d.OriginalDate, d.Paired, d.PairedModified))}
}

// Compare collects the modified dates of doc and its paired document. ok is
// false when there is no pair, the pair is missing, or either date is empty.
func Compare(g *docgraph.Graph, doc *models.Document) (Drift, bool) {
	paired := doc.Metadata.String(validate.KeyPairedDocument)
	if paired == "" {
		return Drift{}, false
	}
	target := docgraph.Resolve(doc.Abs, paired)
	if !g.Exists(target) {
		return Drift{}, false
	}
	meta, ok := g.Lookup(target)
	if !ok {
		return Drift{}, false
	}
	d := Drift{
		Original:       doc.Path,
		Paired:         paired,
		OriginalDate:   doc.Metadata.String(validate.KeyModified),
		PairedModified: meta.String(validate.KeyModified),
	}
	if d.OriginalDate == "" || d.PairedModified == "" {
		return Drift{}, false
	}
	return d, true
}

// Newer reports whether date a is after date b. Dates that do not parse are
// compared as strings.
func Newer(a, b string) bool {
	ta, errA := time.Parse(versioning.DateLayout, a)
	tb, errB := time.Parse(versioning.DateLayout, b)
	if errA != nil || errB != nil {
		return a > b
	}
	return ta.After(tb)
}
