package makdo

import (
	"errors"

	"github.com/alnah/go-makdo/internal/assets"
	"github.com/alnah/go-makdo/internal/docx"
	"github.com/alnah/go-makdo/internal/fileutil"
	"github.com/alnah/go-makdo/internal/mdtoken"
	"github.com/alnah/go-makdo/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyInput     = errors.New("input cannot be empty")
	ErrInvalidSetting = errors.New("invalid setting")
	ErrInternal       = errors.New("internal error")

	// Input decoding errors.
	ErrInvalidArchive = docx.ErrInvalidArchive
	ErrMissingPart    = docx.ErrMissingPart
	ErrUndecodable    = mdtoken.ErrUndecodable

	// Conversion errors.
	ErrInvalidConfig  = pipeline.ErrInvalidConfig
	ErrHTMLConversion = pipeline.ErrHTMLConversion

	// Preview stylesheet errors, returned by NewConverter.
	ErrSheetNotFound = assets.ErrSheetNotFound
	ErrSheetDir      = assets.ErrInvalidBasePath

	// Output errors, returned by WriteFile.
	ErrDestinationNewer      = fileutil.ErrDestinationNewer
	ErrDestinationUnwritable = fileutil.ErrDestinationUnwritable
)
