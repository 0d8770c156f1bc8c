package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/docx"
	"github.com/alnah/go-makdo/internal/mdtoken"
	"github.com/alnah/go-makdo/internal/warning"
)

// ErrInvalidConfig is returned when the document configuration cannot be
// used to lay out a document.
var ErrInvalidConfig = errors.New("invalid document configuration")

// Exporter converts makdo Markdown to a Word document.
type Exporter struct {
	// Base is the configuration before the document's own block is read.
	Base document.Config
	// Images resolves the image paths of the document. Nil disables
	// images; they are then written as literal text.
	Images fs.FS
	Logger *slog.Logger
	// Now stamps the document properties; nil means time.Now.
	Now     func() time.Time
	Version string
}

// Export converts text and returns the .docx bytes. Recoverable problems
// are recorded in w.
func (e *Exporter) Export(ctx context.Context, text string, w *warning.Collector) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := e.Base
	cfg.SpaceBefore = slices.Clone(cfg.SpaceBefore)
	cfg.SpaceAfter = slices.Clone(cfg.SpaceAfter)
	lines := mdtoken.Lines(text)
	configure(&cfg, lines, w)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	raws := mdtoken.Split(lines)
	ps := newMDBuilder(&cfg, w).build(raws)
	modifyExport(ps, cfg.Style)
	logger.Debug("paragraphs built", "raw", len(raws), "paragraphs", len(ps))

	arc := docx.New()
	rels := &docx.Rels{}
	rels.Add(docx.RelStyles, relTarget(docx.PartStyles))
	rels.Add(docx.RelSettings, relTarget(docx.PartSettings))
	var headerID, footerID string
	if cfg.Header != "" {
		headerID = rels.Add(docx.RelHeader, relTarget(docx.PartHeader))
		arc.Set(docx.PartHeader, templatePart("hdr", cfg.Header, &cfg, false))
	}
	if cfg.PageNumber != "" {
		footerID = rels.Add(docx.RelFooter, relTarget(docx.PartFooter))
		arc.Set(docx.PartFooter, templatePart("ftr", cfg.PageNumber, &cfg, true))
	}

	wr := newDocxWriter(&cfg, e.Images, arc, rels, w)
	for i, p := range ps {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		wr.write(p)
	}
	logger.Debug("body written", "images", len(wr.pictures))

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	version := e.Version
	if version == "" {
		version = "dev"
	}
	arc.Set(docx.PartDocument, documentPart(wr.sb.String(), &cfg, headerID, footerID))
	arc.Set(docx.PartDocumentRels, rels.Bytes())
	arc.Set(docx.PartStyles, stylesPart(&cfg))
	arc.Set(docx.PartSettings, settingsPart())
	arc.Set(docx.PartCore, corePart(&cfg, version, uuid.New(), now()))
	arc.Set(docx.PartApp, appPart(version))
	arc.Set(docx.PartRootRels, rootRels())

	data, err := arc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("writing archive: %w", err)
	}
	return data, nil
}

// relTarget is a part name relative to word/document.xml.
func relTarget(part string) string { return strings.TrimPrefix(part, "word/") }

func isUnknownKey(err error) bool { return errors.Is(err, document.ErrUnknownKey) }
