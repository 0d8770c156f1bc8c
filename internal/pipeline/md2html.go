package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-makdo/internal/assets"
	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/mdtoken"
	"github.com/alnah/go-makdo/internal/warning"
)

// ErrHTMLConversion indicates the preview could not be rendered.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultPreviewStyle is the chroma style of fenced code blocks.
const DefaultPreviewStyle = "github"

// previewTemplate wraps the rendered body: title, page CSS, sheet, code
// CSS, body.
const previewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s
%s
</style>
<style>
%s
</style>
</head>
<body>
%s
</body>
</html>`

// Previewer renders makdo Markdown as a standalone HTML page: numbered
// headings, indents, alignment and fonts as the exported document would
// show them.
type Previewer struct {
	// Base is the configuration before the document's own block is read.
	Base document.Config
	// Style names the chroma style of fenced code; "" is
	// DefaultPreviewStyle.
	Style string
	// ImageDir, when set, turns relative image paths into file URLs
	// under it.
	ImageDir string
	// Sheet is the stylesheet text of the page; "" is the embedded
	// default sheet.
	Sheet  string
	Logger *slog.Logger
}

// Preview converts text. Recoverable problems are recorded in w.
// Goldmark has no context support, so conversion runs in a goroutine and
// the call returns early on cancellation.
func (pv *Previewer) Preview(ctx context.Context, text string, w *warning.Collector) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger := pv.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := pv.Base
	cfg.SpaceBefore = slices.Clone(cfg.SpaceBefore)
	cfg.SpaceAfter = slices.Clone(cfg.SpaceAfter)
	lines := mdtoken.Lines(text)
	configure(&cfg, lines, w)
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	ps := newMDBuilder(&cfg, w).build(mdtoken.Split(lines))

	name := pv.Style
	if name == "" {
		name = DefaultPreviewStyle
	}
	style := styles.Get(name)
	tags := &htmlTags{}
	src := newPreviewSource(&cfg, tags).render(ps)
	logger.Debug("preview source built", "paragraphs", len(ps), "tags", len(tags.list))

	type result struct {
		body string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		var buf bytes.Buffer
		if err := newGoldmark(name).Convert([]byte(src), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{body: tags.restore(buf.String())}
	}()

	var body string
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		body = r.body
	}

	if pv.ImageDir != "" {
		var err error
		if body, err = absoluteImages(body, pv.ImageDir); err != nil {
			return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
		}
	}
	code, err := codeCSS(style)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	sheet := pv.Sheet
	if sheet == "" {
		if sheet, err = (assets.EmbeddedLoader{}).LoadSheet(assets.DefaultSheet); err != nil {
			return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
		}
	}
	title := cfg.Title
	if title == "" {
		title = "makdo"
	}
	return fmt.Sprintf(previewTemplate, html.EscapeString(title), pageCSS(&cfg), sheet, code, body), nil
}

// newGoldmark configures goldmark for preview sources. Raw HTML stays
// disabled; markup the dialect needs travels as placeholders.
func newGoldmark(style string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
}

// codeCSS writes the class rules of the chroma style.
func codeCSS(style *chroma.Style) (string, error) {
	var sb strings.Builder
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&sb, style); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// pageCSS sets the body in the document font and the width of its text
// box. The sheet carries the rest.
func pageCSS(cfg *document.Config) string {
	pw, _ := cfg.Paper.Size()
	box := pw - cfg.LeftMargin - cfg.RightMargin
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return "body { font-family: " + cssFont(cfg.MinchoFont) + ", serif; font-size: " + num(cfg.FontSize) + "pt;" +
		" line-height: " + num(cfg.LineSpacing) + "; width: " + num(box) + "cm; margin: 2em auto; }"
}

// cssFont quotes a font family name.
func cssFont(name string) string {
	return `"` + strings.NewReplacer(`"`, "", `\`, "", "<", "", ">", "").Replace(name) + `"`
}
