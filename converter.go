package makdo

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-makdo/internal/assets"
	"github.com/alnah/go-makdo/internal/config"
	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/mdtoken"
	"github.com/alnah/go-makdo/internal/pipeline"
	"github.com/alnah/go-makdo/internal/warning"
)

// Converter converts between makdo Markdown and Word documents. It holds
// no per-document state and is safe for concurrent use.
type Converter struct {
	logger       *slog.Logger
	timeout      time.Duration
	settings     []string
	base         document.Config
	previewStyle string
	sheetName    string
	sheetDir     string
	sheet        string
	version      string
	now          func() time.Time
}

// NewConverter creates a Converter. Settings given with WithSettings are
// checked here; a malformed one returns ErrInvalidSetting. The preview
// stylesheet is loaded once, so a missing one fails here too.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		logger:  slog.New(slog.DiscardHandler),
		timeout: defaultTimeout,
		version: "dev",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.base = document.Default()
	for _, s := range c.settings {
		if err := c.base.Apply(s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
		}
	}
	if err := c.base.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	if c.previewStyle != "" {
		probe := config.Config{Preview: config.PreviewConfig{Style: c.previewStyle}}
		if err := probe.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
		}
	}
	if c.sheetName != "" || c.sheetDir != "" {
		if c.sheetName == "" {
			c.sheetName = assets.DefaultSheet
		}
		r, err := assets.NewResolver(c.sheetDir)
		if err != nil {
			return nil, err
		}
		if c.sheet, err = r.LoadSheet(c.sheetName); err != nil {
			return nil, err
		}
		c.logger.Debug("preview sheet loaded", "name", c.sheetName, "custom", r.HasCustomLoader())
	}
	return c, nil
}

// ToDocx converts Markdown to the bytes of a .docx archive.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) ToDocx(ctx context.Context, in Input) (res *Result, err error) {
	defer recoverError(&err)

	text, enc, err := c.decode(in)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var images fs.FS
	if in.SourceDir != "" {
		images = os.DirFS(in.SourceDir)
	}
	w := warning.NewCollector(c.logger)
	start := time.Now()
	c.logger.Debug("conversion started", "direction", "md2docx", "bytes", len(in.Data), "encoding", enc)
	e := &pipeline.Exporter{Base: c.base, Images: images, Logger: c.logger, Now: c.now, Version: c.version}
	data, err := e.Export(ctx, text, w)
	if err != nil {
		return nil, fmt.Errorf("converting to docx: %w", err)
	}
	c.logger.Debug("conversion finished", "direction", "md2docx", "warnings", w.Len(), "elapsed", time.Since(start))
	return &Result{Data: data, Encoding: enc, Warnings: toWarnings(w)}, nil
}

// ToMarkdown converts the bytes of a .docx archive to Markdown. The
// extracted images are returned in Result.Media.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) ToMarkdown(ctx context.Context, in Input) (res *Result, err error) {
	defer recoverError(&err)

	if len(in.Data) == 0 {
		return nil, ErrEmptyInput
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	w := warning.NewCollector(c.logger)
	start := time.Now()
	c.logger.Debug("conversion started", "direction", "docx2md", "bytes", len(in.Data))
	im := &pipeline.Importer{MediaDir: in.MediaDir, Settings: c.settings, Logger: c.logger}
	out, err := im.Import(ctx, in.Data, w)
	if err != nil {
		return nil, fmt.Errorf("converting to markdown: %w", err)
	}
	c.logger.Debug("conversion finished", "direction", "docx2md", "media", len(out.Media), "warnings", w.Len(), "elapsed", time.Since(start))
	return &Result{Data: []byte(out.Markdown), Media: out.Media, Encoding: "UTF-8", Warnings: toWarnings(w)}, nil
}

// ToHTML renders Markdown as a standalone HTML preview page.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) ToHTML(ctx context.Context, in Input) (res *Result, err error) {
	defer recoverError(&err)

	text, enc, err := c.decode(in)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	w := warning.NewCollector(c.logger)
	start := time.Now()
	c.logger.Debug("conversion started", "direction", "md2html", "bytes", len(in.Data), "encoding", enc)
	pv := &pipeline.Previewer{Base: c.base, Style: c.previewStyle, Sheet: c.sheet, ImageDir: in.SourceDir, Logger: c.logger}
	page, err := pv.Preview(ctx, text, w)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}
	c.logger.Debug("conversion finished", "direction", "md2html", "warnings", w.Len(), "elapsed", time.Since(start))
	return &Result{Data: []byte(page), Encoding: enc, Warnings: toWarnings(w)}, nil
}

func (c *Converter) decode(in Input) (text, encoding string, err error) {
	if len(in.Data) == 0 {
		return "", "", ErrEmptyInput
	}
	return mdtoken.Decode(in.Data)
}
