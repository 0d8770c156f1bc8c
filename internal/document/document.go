// Package document holds the document-wide configuration shared by both
// conversion directions: paper, margins, fonts, base lengths and the
// per-depth section spacing tables.
package document

import (
	"fmt"

	"github.com/alnah/go-makdo/internal/length"
	"github.com/alnah/go-makdo/internal/numbering"
)

// Paper is a named paper preset.
type Paper string

const (
	PaperA3  Paper = "A3"
	PaperA3L Paper = "A3L"
	PaperA3P Paper = "A3P"
	PaperA4  Paper = "A4"
	PaperA4L Paper = "A4L"
	PaperA4P Paper = "A4P"
)

// paperSizes gives width and height in cm.
var paperSizes = map[Paper][2]float64{
	PaperA3:  {42.0, 29.7},
	PaperA3L: {42.0, 29.7},
	PaperA3P: {29.7, 42.0},
	PaperA4:  {21.0, 29.7},
	PaperA4L: {29.7, 21.0},
	PaperA4P: {21.0, 29.7},
}

// Size returns the width and height of p in cm. Unknown names fall back to
// A4 portrait.
func (p Paper) Size() (width, height float64) {
	s, ok := paperSizes[p]
	if !ok {
		s = paperSizes[PaperA4]
	}
	return s[0], s[1]
}

// Landscape reports whether p is wider than it is tall.
func (p Paper) Landscape() bool {
	w, h := p.Size()
	return w > h
}

// PaperFromSize returns the preset matching width and height in cm within
// a millimetre, or A4 when none does.
func PaperFromSize(width, height float64) Paper {
	near := func(a, b float64) bool { return a-b < 0.1 && b-a < 0.1 }
	for _, p := range []Paper{PaperA3L, PaperA3P, PaperA4L, PaperA4} {
		w, h := p.Size()
		if near(w, width) && near(h, height) {
			return p
		}
	}
	return PaperA4
}

// Defaults of a new document.
const (
	DefaultStyle        = numbering.StyleNormal
	DefaultPaper        = PaperA4
	DefaultTopMargin    = 3.5
	DefaultBottomMargin = 2.2
	DefaultLeftMargin   = 3.0
	DefaultRightMargin  = 2.0
	DefaultPageNumber   = "n"
	DefaultMinchoFont   = "ＭＳ 明朝"
	DefaultGothicFont   = "ＭＳ ゴシック"
	DefaultIVSFont      = "IPAmj明朝"
	DefaultFontSize     = 12.0
	DefaultLineSpacing  = 2.14
)

// Config is the document configuration. It is built once per conversion
// and read-only after discovery.
type Config struct {
	Title        string
	Style        string // numbering.StyleNormal, StyleContract or StyleStatute
	Paper        Paper
	TopMargin    float64 // cm
	BottomMargin float64
	LeftMargin   float64
	RightMargin  float64
	Header       string // header template; n and N are page fields
	PageNumber   string // footer template, "" for none
	LineNumber   bool
	MinchoFont   string
	GothicFont   string
	IVSFont      string
	FontSize     float64 // pt
	LineSpacing  float64 // multiple of FontSize
	// SpaceBefore and SpaceAfter are the extra spacing of section
	// headings, in lines, indexed by heading depth minus one.
	SpaceBefore  []float64
	SpaceAfter   []float64
	AutoSpace    bool
	OriginalFile string
}

// Default returns the configuration of a document with no settings.
func Default() Config {
	return Config{
		Style:        DefaultStyle,
		Paper:        DefaultPaper,
		TopMargin:    DefaultTopMargin,
		BottomMargin: DefaultBottomMargin,
		LeftMargin:   DefaultLeftMargin,
		RightMargin:  DefaultRightMargin,
		PageNumber:   DefaultPageNumber,
		MinchoFont:   DefaultMinchoFont,
		GothicFont:   DefaultGothicFont,
		IVSFont:      DefaultIVSFont,
		FontSize:     DefaultFontSize,
		LineSpacing:  DefaultLineSpacing,
	}
}

// Metrics returns the base units of the length engine.
func (c Config) Metrics() length.Metrics {
	return length.Metrics{FontSize: c.FontSize, LineSpacing: c.LineSpacing}
}

// Validate checks the numeric settings.
func (c Config) Validate() error {
	switch c.Style {
	case numbering.StyleNormal, numbering.StyleContract, numbering.StyleStatute:
	default:
		return fmt.Errorf("%w: document style %q", ErrInvalidValue, c.Style)
	}
	if _, ok := paperSizes[c.Paper]; !ok {
		return fmt.Errorf("%w: paper size %q", ErrInvalidValue, c.Paper)
	}
	for _, m := range []float64{c.TopMargin, c.BottomMargin, c.LeftMargin, c.RightMargin} {
		if m < 0 {
			return fmt.Errorf("%w: negative margin %v", ErrInvalidValue, m)
		}
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("%w: font size %v", ErrInvalidValue, c.FontSize)
	}
	if c.LineSpacing <= 0 {
		return fmt.Errorf("%w: line spacing %v", ErrInvalidValue, c.LineSpacing)
	}
	if len(c.SpaceBefore) > MaxSpaces || len(c.SpaceAfter) > MaxSpaces {
		return fmt.Errorf("%w: more than %d section spaces", ErrInvalidValue, MaxSpaces)
	}
	return nil
}

// MaxSpaces is the number of heading depths with configurable spacing.
const MaxSpaces = 6
