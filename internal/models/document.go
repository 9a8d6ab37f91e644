// Package models defines the domain types for docwarden.
package models

import "github.com/starford/docwarden/internal/frontmatter"

// Document represents a parsed Markdown file in the knowledge base.
type Document struct {
	Path           string               `json:"path"` // relative to project root, slash-separated
	Abs            string               `json:"-"`
	Metadata       frontmatter.Metadata `json:"-"`
	Body           string               `json:"-"`
	HasFrontmatter bool                 `json:"has_frontmatter"`
}

// DocumentMetadata is a lightweight representation returned by list operations.
type DocumentMetadata struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem reported by a pass. Findings live for a single run.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Category string   `json:"category" yaml:"category"`
	Message  string   `json:"message" yaml:"message"`
	Path     string   `json:"path" yaml:"path"`
}

// NewError builds an error-level finding for path.
func NewError(path, category, message string) Finding {
	return Finding{Severity: SeverityError, Category: category, Message: message, Path: path}
}

// NewWarning builds a warning-level finding for path.
func NewWarning(path, category, message string) Finding {
	return Finding{Severity: SeverityWarning, Category: category, Message: message, Path: path}
}
