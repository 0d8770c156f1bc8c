package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/docx"
	"github.com/alnah/go-makdo/internal/markdown"
	"github.com/alnah/go-makdo/internal/ooxml"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/warning"
)

// Importer converts a Word document to makdo Markdown.
type Importer struct {
	// MediaDir is the directory image references point into, relative to
	// the Markdown file.
	MediaDir string
	// Settings are configuration lines applied over what the document
	// declares, such as "document_style: k".
	Settings []string
	Logger   *slog.Logger
}

// Imported is the result of an import.
type Imported struct {
	Markdown string
	// Media maps file names in MediaDir to their content.
	Media  map[string][]byte
	Config document.Config
}

// Import converts the .docx bytes. Recoverable problems are recorded in w.
func (im *Importer) Import(ctx context.Context, data []byte, w *warning.Collector) (*Imported, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := im.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	arc, err := docx.Read(data)
	if err != nil {
		return nil, err
	}
	body, err := arc.Require(docx.PartDocument)
	if err != nil {
		return nil, err
	}
	cfg := document.Default()
	cfg.Header, cfg.PageNumber = "", ""
	r, err := newDocxReader(arc, &cfg, im.MediaDir, w)
	if err != nil {
		return nil, err
	}
	styled := r.readCore()
	r.readStyles()
	r.readNumbering()

	nodes := r.bodyBlocks(body)
	for _, n := range nodes {
		if ooxml.Is(n, "w:sectPr") {
			r.readSection(n)
			cfg.Header = r.readTemplate(r.templatePartName(n, exprHeaderRef, docx.PartHeader))
			cfg.PageNumber = r.readTemplate(r.templatePartName(n, exprFooterRef, docx.PartFooter))
		}
	}

	b := newDocxBuilder(r)
	ps := make([]*docxParagraph, 0, len(nodes))
	texts := make([]string, 0, len(nodes))
	for i, n := range nodes {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		p := &docxParagraph{node: n, number: i + 1, r: w.At(i+1, docx.PartDocument)}
		b.read(p)
		ps = append(ps, p)
		texts = append(texts, p.plain)
	}
	if !styled {
		cfg.Style = detectStyle(texts)
	}
	for _, s := range im.Settings {
		if err := cfg.Apply(s); err != nil {
			w.Add(0, s, "%v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		w.Add(0, docx.PartStyles, "%v", err)
		cfg = fallbackMetrics(cfg)
	}
	b.m = cfg.Metrics()

	for _, p := range ps {
		p.kind = paragraph.Classify(b.rules, p)
		b.prepare(p)
	}
	ps = b.modifyImport(ps)
	mds := make([]markdown.Paragraph, 0, len(ps))
	for _, p := range ps {
		b.render(p)
		mds = append(mds, p.md)
	}
	logger.Debug("paragraphs read", "blocks", len(nodes), "paragraphs", len(mds), "style", cfg.Style)

	media := make(map[string][]byte, len(r.media.order))
	for _, target := range r.media.order {
		data, ok := arc.Part(target)
		if !ok {
			w.Add(0, docx.PartDocumentRels, "image %q not found", target)
			continue
		}
		media[r.media.names[target]] = data
	}

	text := cfg.Block() + markdown.Join(mds)
	return &Imported{
		Markdown: strings.TrimRight(text, "\n") + "\n",
		Media:    media,
		Config:   cfg,
	}, nil
}

// fallbackMetrics replaces unusable base metrics with the defaults so
// that lengths can still be computed.
func fallbackMetrics(cfg document.Config) document.Config {
	def := document.Default()
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	if cfg.LineSpacing <= 0 {
		cfg.LineSpacing = def.LineSpacing
	}
	return cfg
}
