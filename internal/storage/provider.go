// Package storage defines the knowledge-base file-system abstraction.
package storage

import "github.com/starford/docwarden/internal/models"

// Provider is the interface for document file operations. Paths are relative
// to the project root unless stated otherwise.
type Provider interface {
	// Root returns the absolute project root.
	Root() string
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Backup stores content next to path with the backup suffix.
	Backup(path string, content []byte) error
	// Exists reports whether a file exists. Absolute paths are accepted and
	// are not confined to the root.
	Exists(path string) bool
}
