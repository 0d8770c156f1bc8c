package pipeline

// Notes:
// - Export is checked through the archive it produces: parts present,
//   a few landmarks in document.xml, and relationships for media
// - The round trip tests feed the export back through Import, which is
//   the contract both directions share; exact XML is not asserted
// - Images are generated with image/png so no binary fixtures are needed

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/docx"
	"github.com/alnah/go-makdo/internal/numbering"
	"github.com/alnah/go-makdo/internal/warning"
)

var fixedNow = func() time.Time { return time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC) }

func newTestExporter(images fstest.MapFS) *Exporter {
	e := &Exporter{Base: document.Default(), Now: fixedNow, Version: "test"}
	if images != nil {
		e.Images = images
	}
	return e
}

func exportArchive(t *testing.T, e *Exporter, text string) (*docx.Archive, *warning.Collector) {
	t.Helper()
	w := &warning.Collector{}
	data, err := e.Export(context.Background(), text, w)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	arc, err := docx.Read(data)
	if err != nil {
		t.Fatalf("docx.Read() error = %v", err)
	}
	return arc, w
}

func partString(t *testing.T, arc *docx.Archive, name string) string {
	t.Helper()
	data, ok := arc.Part(name)
	if !ok {
		t.Fatalf("part %s missing", name)
	}
	return string(data)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// TestExport - Package Parts
// ---------------------------------------------------------------------------

func TestExport_Parts(t *testing.T) {
	t.Parallel()

	arc, w := exportArchive(t, newTestExporter(nil), "本文です。\n")
	for _, name := range []string{
		docx.PartContentTypes, docx.PartRootRels, docx.PartDocument, docx.PartDocumentRels,
		docx.PartStyles, docx.PartSettings, docx.PartCore, docx.PartApp, docx.PartFooter,
	} {
		if _, ok := arc.Part(name); !ok {
			t.Errorf("part %s missing", name)
		}
	}
	if _, ok := arc.Part(docx.PartHeader); ok {
		t.Error("header written without a header template")
	}
	if w.Len() != 0 {
		t.Errorf("warnings = %v, want none", w.All())
	}

	core := partString(t, arc, docx.PartCore)
	for _, want := range []string{"（普通）", "2024-04-01T09:30:00Z", "makdo (test)"} {
		if !strings.Contains(core, want) {
			t.Errorf("core.xml lacks %q", want)
		}
	}
	if doc := partString(t, arc, docx.PartDocument); !strings.Contains(doc, "本文です。") {
		t.Errorf("document.xml lacks the text:\n%s", doc)
	}
}

func TestExport_Headings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		style string
		want  string
	}{
		{"normal", numbering.StyleNormal, "第１"},
		{"statute", numbering.StyleStatute, "第１条"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestExporter(nil)
			e.Base.Style = tt.style
			arc, _ := exportArchive(t, e, "## 目的\n\n本文\n")
			doc := partString(t, arc, docx.PartDocument)
			if !strings.Contains(doc, tt.want) || !strings.Contains(doc, "目的") {
				t.Errorf("document.xml lacks %q and the title:\n%s", tt.want, doc)
			}
		})
	}
}

func TestExport_Header(t *testing.T) {
	t.Parallel()

	e := newTestExporter(nil)
	e.Base.Header = "別紙 :"
	e.Base.PageNumber = ""
	arc, _ := exportArchive(t, e, "本文\n")
	if hdr := partString(t, arc, docx.PartHeader); !strings.Contains(hdr, "別紙") || !strings.Contains(hdr, `w:val="right"`) {
		t.Errorf("header1.xml = %s", hdr)
	}
	if _, ok := arc.Part(docx.PartFooter); ok {
		t.Error("footer written without a page number template")
	}
}

// ---------------------------------------------------------------------------
// TestExport_Images - Embedding and Fallback
// ---------------------------------------------------------------------------

func TestExport_Images(t *testing.T) {
	t.Parallel()

	images := fstest.MapFS{"fig/a.png": {Data: pngBytes(t, 4, 2)}}
	arc, w := exportArchive(t, newTestExporter(images), "![a](fig/a.png)\n")
	if _, ok := arc.Part(docx.MediaDir + "image1.png"); !ok {
		t.Errorf("media missing, parts = %v", arc.Names())
	}
	if rels := partString(t, arc, docx.PartDocumentRels); !strings.Contains(rels, "media/image1.png") {
		t.Errorf("document.xml.rels lacks the image:\n%s", rels)
	}
	if w.Len() != 0 {
		t.Errorf("warnings = %v, want none", w.All())
	}
}

func TestExport_MissingImage(t *testing.T) {
	t.Parallel()

	arc, w := exportArchive(t, newTestExporter(fstest.MapFS{}), "![b](fig/none.png)\n")
	if w.Len() == 0 {
		t.Error("expected a warning for the missing image")
	}
	if doc := partString(t, arc, docx.PartDocument); !strings.Contains(doc, "fig/none.png") {
		t.Errorf("document.xml lacks the literal reference:\n%s", doc)
	}
	if len(arc.Media()) != 0 {
		t.Errorf("Media() = %v, want none", arc.Media())
	}
}

// ---------------------------------------------------------------------------
// TestExport_Errors - Sentinel Errors
// ---------------------------------------------------------------------------

func TestExport_InvalidConfig(t *testing.T) {
	t.Parallel()

	e := newTestExporter(nil)
	e.Base.FontSize = 0
	_, err := e.Export(context.Background(), "本文\n", nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Export() error = %v, want ErrInvalidConfig", err)
	}
	if !errors.Is(err, document.ErrInvalidValue) {
		t.Errorf("Export() error = %v, want it to wrap ErrInvalidValue", err)
	}
}

func TestExport_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestExporter(nil).Export(ctx, "本文\n", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Export() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestRoundTrip - Export Then Import
// ---------------------------------------------------------------------------

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"title and section", "# 契約書\n\n## 目的\n\n本文です。\n"},
		{"lists", "## 目的\n\n- 項目\n\n1. 一つ目\n"},
		{"chapter", "$ 総則\n\n## 目的\n"},
		{"alignment", "以上 :\n"},
		{"page break", "前\n\n<pgbr>\n\n後\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := newTestExporter(nil).Export(context.Background(), tt.text, nil)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			body, _, _ := importBody(t, data)
			if body != tt.text {
				t.Errorf("round trip = %q, want %q", body, tt.text)
			}
		})
	}
}

func TestRoundTrip_Config(t *testing.T) {
	t.Parallel()

	e := newTestExporter(nil)
	e.Base.Style = numbering.StyleContract
	e.Base.Paper = document.PaperA4L
	e.Base.Header = ": 写し :"
	e.Base.TopMargin = 2.5
	data, err := e.Export(context.Background(), "本文\n", nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	_, got, _ := importBody(t, data)
	cfg := got.Config
	if cfg.Style != numbering.StyleContract {
		t.Errorf("Style = %q, want %q", cfg.Style, numbering.StyleContract)
	}
	if cfg.Paper != document.PaperA4L {
		t.Errorf("Paper = %q, want %q", cfg.Paper, document.PaperA4L)
	}
	if cfg.Header != ": 写し :" {
		t.Errorf("Header = %q, want %q", cfg.Header, ": 写し :")
	}
	if cfg.PageNumber != document.DefaultPageNumber {
		t.Errorf("PageNumber = %q, want %q", cfg.PageNumber, document.DefaultPageNumber)
	}
	if cfg.TopMargin != 2.5 {
		t.Errorf("TopMargin = %v, want 2.5", cfg.TopMargin)
	}
	if cfg.OriginalFile == "" {
		t.Error("OriginalFile not taken from the modification time")
	}
}

func TestRoundTrip_Image(t *testing.T) {
	t.Parallel()

	images := fstest.MapFS{"fig/a.png": {Data: pngBytes(t, 4, 2)}}
	data, err := newTestExporter(images).Export(context.Background(), "![a](fig/a.png)\n", nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	body, got, _ := importBody(t, data)
	if !strings.HasPrefix(body, "![a.png:") || !strings.HasSuffix(body, "](fig/a.png)\n") {
		t.Errorf("body = %q, want a sized reference to fig/a.png", body)
	}
	if _, ok := got.Media["a.png"]; !ok {
		t.Errorf("Media = %v, want a.png", got.Media)
	}
}
