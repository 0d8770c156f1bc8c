package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/alnah/go-makdo"
	"github.com/alnah/go-makdo/internal/assets"
	"github.com/alnah/go-makdo/internal/config"
	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/fileutil"
	"github.com/alnah/go-makdo/internal/hints"
	"github.com/alnah/go-makdo/internal/logging"
)

// Exit codes for the makdo CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // Conversion or unexpected error
	ExitUsage   = 2 // Invalid flags, config, or settings
	ExitIO      = 3 // File not found, permission denied, destination refused
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, makdo.ErrDestinationNewer) ||
		errors.Is(err, makdo.ErrDestinationUnwritable) ||
		errors.Is(err, fileutil.ErrUnsafeMediaName) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrOutOfRange) ||
		errors.Is(err, logging.ErrUnknownLevel) ||
		errors.Is(err, logging.ErrUnknownFormat) ||
		errors.Is(err, document.ErrInvalidValue) ||
		errors.Is(err, document.ErrUnknownKey) ||
		errors.Is(err, makdo.ErrInvalidSetting) ||
		errors.Is(err, makdo.ErrSheetNotFound) ||
		errors.Is(err, makdo.ErrSheetDir) ||
		errors.Is(err, assets.ErrInvalidName) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, makdo.ErrDestinationNewer):
		return hints.ForDestinationNewer()
	case errors.Is(err, makdo.ErrDestinationUnwritable):
		return hints.ForOutputDirectory()
	case errors.Is(err, makdo.ErrUndecodable):
		return hints.ForUndecodable()
	case errors.Is(err, makdo.ErrInvalidArchive):
		return hints.ForInvalidArchive()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, makdo.ErrInvalidSetting):
		return hints.ForInvalidSetting()
	case errors.Is(err, config.ErrConfigNotFound):
		msg := err.Error()
		if _, tried, ok := strings.Cut(msg, "tried "); ok {
			return hints.ForConfigNotFound(strings.Split(tried, ", "))
		}
		return hints.ForConfigNotFound(nil)
	}
	return ""
}
