package assets

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSheet is the name of the built-in preview stylesheet.
const DefaultSheet = "default"

var (
	// ErrSheetNotFound indicates the requested stylesheet does not exist.
	ErrSheetNotFound = errors.New("stylesheet not found")

	// ErrInvalidName indicates a sheet name with path separators, dots or
	// nothing at all.
	ErrInvalidName = errors.New("invalid stylesheet name")

	// ErrInvalidBasePath indicates the sheet directory is not a readable
	// directory.
	ErrInvalidBasePath = errors.New("invalid stylesheet directory")

	// ErrSheetRead indicates an I/O error while reading a sheet.
	ErrSheetRead = errors.New("failed to read stylesheet")

	// ErrPathTraversal indicates a sheet path outside the base directory.
	ErrPathTraversal = errors.New("path traversal detected")
)

// Loader loads a stylesheet by name, without the .css extension.
type Loader interface {
	LoadSheet(name string) (string, error)
}

// ValidateName checks that name is usable as a file name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
