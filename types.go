package makdo

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-makdo/internal/warning"
)

// Input is one document to convert.
type Input struct {
	// Data is the source: Markdown text in UTF-8, UTF-16 with a BOM,
	// Shift_JIS, EUC-JP or ISO-2022-JP, or the bytes of a .docx archive.
	Data []byte
	// SourceDir is the directory of the Markdown file. Image paths are
	// resolved against it; empty disables images in ToDocx and leaves
	// them relative in ToHTML.
	SourceDir string
	// MediaDir is the directory name ToMarkdown writes into image
	// references, usually fileutil.MediaDir of the output base name.
	MediaDir string
}

// Warning is a recoverable anomaly found during a conversion.
type Warning struct {
	Line    int // source line or paragraph number, 0 if unknown
	Source  string
	Message string
}

func (w Warning) String() string {
	return warning.Warning(w).String()
}

// Result is the output of a successful conversion.
type Result struct {
	Data []byte
	// Media holds the images extracted by ToMarkdown, by file name.
	Media map[string][]byte
	// Encoding is the detected text encoding of Markdown input.
	Encoding string
	Warnings []Warning
}

// Option configures a Converter.
type Option func(*Converter)

// defaultTimeout bounds a single conversion.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the per-conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("makdo: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.timeout = d
	}
}

// WithLogger sets the logger; conversions log at Debug level and each
// warning at Warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSettings adds configuration lines such as "document_style: k" or
// "文字サ: 10.5 pt". For Markdown input they are defaults the document's
// own configuration block overrides; for .docx input they override what
// the document declares.
func WithSettings(lines ...string) Option {
	return func(c *Converter) {
		c.settings = append(c.settings, lines...)
	}
}

// WithPreviewStyle names the chroma style of code blocks in ToHTML.
func WithPreviewStyle(name string) Option {
	return func(c *Converter) {
		c.previewStyle = name
	}
}

// WithPreviewSheet names the page stylesheet of ToHTML. Built-in sheets
// are default, plain and print.
func WithPreviewSheet(name string) Option {
	return func(c *Converter) {
		c.sheetName = name
	}
}

// WithSheetDir adds a directory of {name}.css files searched before the
// built-in sheets.
func WithSheetDir(dir string) Option {
	return func(c *Converter) {
		c.sheetDir = dir
	}
}

// WithVersion sets the application version recorded in docx properties.
func WithVersion(v string) Option {
	return func(c *Converter) {
		c.version = v
	}
}

// WithClock sets the time source of docx timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

func toWarnings(c *warning.Collector) []Warning {
	all := c.All()
	if len(all) == 0 {
		return nil
	}
	out := make([]Warning, len(all))
	for i, w := range all {
		out[i] = Warning(w)
	}
	return out
}

func recoverError(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrInternal, r)
	}
}
