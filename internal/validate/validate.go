// Package validate implements the document validation passes. Each pass is
// independent and inspects one document of a loaded graph at a time.
package validate

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/docwarden/internal/docgraph"
	"github.com/starford/docwarden/internal/models"
)

// Finding categories.
const (
	CategoryMissingFrontmatter = "Missing Frontmatter"
	CategoryMissingField       = "Missing Required Field"
	CategoryInvalidVersion     = "Invalid Version Format"
	CategoryInvalidStatus      = "Invalid Status"
	CategoryMissingPaired      = "Missing Paired Document"
	CategoryBrokenReference    = "Broken Reference"
	CategoryMissingParent      = "Missing Parent Document"
	CategoryScopeViolation     = "Scope Dependency Violation"
	CategoryAmbiguousScope     = "Ambiguous Scope"
)

// Metadata keys with validation meaning.
const (
	KeyVersion         = "version"
	KeyStatus          = "status"
	KeyModified        = "modified"
	KeyPairedDocument  = "paired_document"
	KeyReferences      = "references"
	KeyParentDocuments = "parent_documents"
)

// VersionPattern matches MAJOR.MINOR.PATCH.
var VersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Pass checks one document.
type Pass interface {
	Name() string
	Check(g *docgraph.Graph, doc *models.Document) []models.Finding
}

// Rules configures the metadata passes.
type Rules struct {
	RequiredFields []string
	Statuses       []string
}

// MetadataPasses returns the field, format and reference passes in the order
// they report.
func MetadataPasses(r Rules) []Pass {
	return []Pass{
		requiredFields{fields: r.RequiredFields},
		versionFormat{},
		status{allowed: r.Statuses},
		pairedDocument{},
		references{},
		parentDocuments{},
	}
}

// Run applies passes to every document accepted by include (nil accepts all)
// and returns how many documents were checked along with their findings.
// Documents without frontmatter get a single finding and are not passed on.
func Run(g *docgraph.Graph, passes []Pass, include func(*models.Document) bool, logger *slog.Logger) (int, []models.Finding) {
	if logger == nil {
		logger = slog.Default()
	}
	checked := 0
	var out []models.Finding
	for _, doc := range g.Docs {
		if include != nil && !include(doc) {
			continue
		}
		checked++

		if !doc.HasFrontmatter || len(doc.Metadata) == 0 {
			out = append(out, models.NewError(doc.Path, CategoryMissingFrontmatter,
				"Document has no frontmatter metadata"))
			logger.Debug("validate: no frontmatter", slog.String("path", doc.Path))
			continue
		}

		n := len(out)
		for _, p := range passes {
			out = append(out, p.Check(g, doc)...)
		}
		logger.Debug("validate: checked",
			slog.String("path", doc.Path),
			slog.Int("findings", len(out)-n))
	}
	return checked, out
}

type requiredFields struct {
	fields []string
}

func (requiredFields) Name() string { return "required-fields" }

func (p requiredFields) Check(_ *docgraph.Graph, doc *models.Document) []models.Finding {
	var out []models.Finding
	for _, f := range p.fields {
		if !doc.Metadata.Has(f) {
			out = append(out, models.NewError(doc.Path, CategoryMissingField,
				fmt.Sprintf("Required field '%s' is missing or empty", f)))
		}
	}
	return out
}

type versionFormat struct{}

func (versionFormat) Name() string { return "version-format" }

func (versionFormat) Check(_ *docgraph.Graph, doc *models.Document) []models.Finding {
	v := doc.Metadata.String(KeyVersion)
	if v == "" {
		return nil // reported as a missing field
	}
	if err := validation.Validate(v, validation.Match(VersionPattern)); err != nil {
		return []models.Finding{models.NewError(doc.Path, CategoryInvalidVersion,
			fmt.Sprintf("Version '%s' must follow MAJOR.MINOR.PATCH format (e.g., 1.0.0)", v))}
	}
	return nil
}

type status struct {
	allowed []string
}

func (status) Name() string { return "status" }

func (p status) Check(_ *docgraph.Graph, doc *models.Document) []models.Finding {
	s := doc.Metadata.String(KeyStatus)
	if s == "" {
		return nil
	}
	allowed := make([]interface{}, len(p.allowed))
	for i, a := range p.allowed {
		allowed[i] = a
	}
	if err := validation.Validate(s, validation.In(allowed...)); err != nil {
		return []models.Finding{models.NewError(doc.Path, CategoryInvalidStatus,
			fmt.Sprintf("Status '%s' must be one of: %s", s, strings.Join(p.allowed, ", ")))}
	}
	return nil
}

type pairedDocument struct{}

func (pairedDocument) Name() string { return "paired-document" }

func (pairedDocument) Check(g *docgraph.Graph, doc *models.Document) []models.Finding {
	paired := doc.Metadata.String(KeyPairedDocument)
	if paired == "" {
		return nil
	}
	if !g.Exists(docgraph.Resolve(doc.Abs, paired)) {
		return []models.Finding{models.NewError(doc.Path, CategoryMissingPaired,
			fmt.Sprintf("Paired document '%s' does not exist", paired))}
	}
	return nil
}

type references struct{}

func (references) Name() string { return "references" }

func (references) Check(g *docgraph.Graph, doc *models.Document) []models.Finding {
	var out []models.Finding
	for _, ref := range doc.Metadata.Strings(KeyReferences) {
		if !g.Exists(docgraph.Resolve(doc.Abs, ref)) {
			out = append(out, models.NewWarning(doc.Path, CategoryBrokenReference,
				fmt.Sprintf("Referenced file '%s' does not exist", ref)))
		}
	}
	return out
}

type parentDocuments struct{}

func (parentDocuments) Name() string { return "parent-documents" }

func (parentDocuments) Check(g *docgraph.Graph, doc *models.Document) []models.Finding {
	var out []models.Finding
	for _, parent := range doc.Metadata.Strings(KeyParentDocuments) {
		if !g.Exists(docgraph.Resolve(doc.Abs, parent)) {
			out = append(out, models.NewError(doc.Path, CategoryMissingParent,
				fmt.Sprintf("Parent document '%s' does not exist", parent)))
		}
	}
	return out
}
