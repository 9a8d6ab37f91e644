// Package apperr holds the sentinel errors shared by docwarden commands.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrRootNotFound   = errors.New("project root not found")
	ErrNoFrontmatter  = errors.New("no frontmatter block")
	ErrNoVersion      = errors.New("no version field")
	ErrInvalidVersion = errors.New("invalid version format")
	ErrInvalidKind    = errors.New("invalid bump kind")

	// ErrValidationFailed signals that a pass completed but produced
	// findings that should fail the run.
	ErrValidationFailed = errors.New("validation failed")
	// ErrFilesFailed signals that a batch skipped files it could not process.
	ErrFilesFailed = errors.New("some files could not be processed")
)
