package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-makdo/internal/decorator"
	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/length"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/table"
)

// Tag placeholders wrap a decimal index into htmlTags. Plane 15 private
// use characters pass through goldmark as text and are rare in documents.
const (
	tagOpen  = "\U000F0000"
	tagClose = "\U000F0001"
)

var tagPattern = regexp.MustCompile("\U000F0000([0-9]+)\U000F0001")

// htmlTags holds the markup goldmark must not see.
type htmlTags struct {
	list []string
}

// put records tag and returns its placeholder.
func (t *htmlTags) put(tag string) string {
	t.list = append(t.list, tag)
	return tagOpen + strconv.Itoa(len(t.list)-1) + tagClose
}

// restore replaces the placeholders in rendered HTML.
func (t *htmlTags) restore(s string) string {
	return tagPattern.ReplaceAllStringFunc(s, func(m string) string {
		i, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(m, tagOpen), tagClose))
		if err != nil || i >= len(t.list) {
			return ""
		}
		return t.list[i]
	})
}

// previewSource writes built paragraphs as CommonMark for goldmark.
type previewSource struct {
	cfg   *document.Config
	tags  *htmlTags
	state decorator.Attrs
}

func newPreviewSource(cfg *document.Config, tags *htmlTags) *previewSource {
	return &previewSource{cfg: cfg, tags: tags}
}

func (s *previewSource) render(ps []*mdParagraph) string {
	blocks := make([]string, 0, len(ps))
	for _, p := range ps {
		if b := s.block(p); b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func (s *previewSource) block(p *mdParagraph) string {
	switch p.kind {
	case paragraph.Empty, paragraph.Blank, paragraph.Breakdown, paragraph.Configuration:
		return ""
	case paragraph.Section:
		level := min(max(p.depths.Tail, 1), 6)
		return strings.Repeat("#", level) + " " + s.box(p, s.inline(oneLine(p.text)))
	case paragraph.Chapter:
		level := min(p.depths.Proper+1, 6)
		return strings.Repeat("#", level) + " " + s.box(p, s.inline(oneLine(p.text)))
	case paragraph.Table:
		return s.table(p)
	case paragraph.Preformatted:
		return fenced(p.info, p.lines)
	case paragraph.HorizontalLine:
		return "---"
	case paragraph.Pagebreak:
		return s.tags.put(`<span class="makdo-pagebreak" style="display:block"></span>`)
	case paragraph.Image:
		p.align = paragraph.AlignCenter
	}
	if strings.TrimSpace(p.text) == "" {
		return ""
	}
	return s.box(p, s.inline(p.text))
}

// box wraps content in a block span carrying the spacing, indents and
// alignment of the paragraph.
func (s *previewSource) box(p *mdParagraph, content string) string {
	style := boxStyle(p.length.Total(), p.align, s.cfg.LineSpacing)
	if style == "" {
		if strings.HasPrefix(content, " ") || strings.HasPrefix(content, "\t") {
			// Leading spaces would start a code block.
			return s.tags.put("") + content
		}
		return content
	}
	return s.tags.put(`<span style="display:block;`+style+`">`) + content + s.tags.put("</span>")
}

func boxStyle(a length.Attrs, align paragraph.Align, lineSpacing float64) string {
	var sb strings.Builder
	em := func(prop string, v float64) {
		if v != 0 {
			sb.WriteString(prop + ":" + strconv.FormatFloat(length.Round(v), 'f', -1, 64) + "em;")
		}
	}
	em("margin-top", a.SpaceBefore*lineSpacing)
	em("margin-bottom", a.SpaceAfter*lineSpacing)
	em("text-indent", a.FirstIndent)
	em("margin-left", a.LeftIndent)
	em("margin-right", a.RightIndent)
	if a.LineSpacing != 0 {
		sb.WriteString("line-height:" + strconv.FormatFloat(length.Round(lineSpacing*(1+a.LineSpacing)), 'f', -1, 64) + ";")
	}
	switch align {
	case paragraph.AlignLeft, paragraph.AlignCenter, paragraph.AlignRight:
		sb.WriteString("text-align:" + align.String() + ";")
	case paragraph.AlignJustify:
		sb.WriteString("text-align:justify;")
	}
	return sb.String()
}

func oneLine(s string) string { return strings.ReplaceAll(s, "\n", " ") }

// inline writes scanned segments as escaped text with styled spans. The
// attribute state runs on from one paragraph to the next.
func (s *previewSource) inline(text string) string {
	var sb strings.Builder
	for _, seg := range decorator.Scan(text, &s.state, decorator.Options{}) {
		switch seg.Kind {
		case decorator.Break:
			sb.WriteString(s.tags.put("<br />"))
		case decorator.Image:
			alt := seg.Alt
			if m := imageSize.FindStringSubmatch(alt); m != nil {
				alt = m[1]
			}
			sb.WriteString("![" + escapeMarkdown(alt) + "](<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(seg.Path) + ">)")
		default:
			style := s.spanStyle(seg)
			if style == "" {
				sb.WriteString(escapeMarkdown(seg.Text))
				continue
			}
			sb.WriteString(s.tags.put(`<span style="` + style + `">`))
			sb.WriteString(escapeMarkdown(seg.Text))
			sb.WriteString(s.tags.put("</span>"))
		}
	}
	return sb.String()
}

// highlightColors are the CSS colors of the Word highlight values.
var highlightColors = map[string]string{
	"black": "#000000", "blue": "#0000FF", "cyan": "#00FFFF", "green": "#00FF00",
	"magenta": "#FF00FF", "red": "#FF0000", "yellow": "#FFFF00", "white": "#FFFFFF",
	"darkBlue": "#000080", "darkCyan": "#008080", "darkGreen": "#008000", "darkMagenta": "#800080",
	"darkRed": "#800000", "darkYellow": "#808000", "darkGray": "#808080", "lightGray": "#C0C0C0",
}

func (s *previewSource) spanStyle(seg decorator.Segment) string {
	a := seg.Attrs
	var sb strings.Builder
	switch {
	case seg.IVS:
		sb.WriteString("font-family:" + html.EscapeString(cssFont(s.cfg.IVSFont)) + ";")
	case a.Font != "":
		sb.WriteString("font-family:" + html.EscapeString(cssFont(a.Font)) + ";")
	case a.Mono:
		sb.WriteString("font-family:" + html.EscapeString(cssFont(s.cfg.GothicFont)) + ",sans-serif;")
	}
	if a.Bold {
		sb.WriteString("font-weight:bold;")
	}
	if a.Italic {
		sb.WriteString("font-style:italic;")
	}
	if a.Size != decorator.SizeM {
		sb.WriteString("font-size:" + strconv.FormatFloat(a.Size.Scale(), 'f', -1, 64) + "em;")
	}
	if a.Color != "" {
		sb.WriteString("color:#" + a.Color + ";")
	}
	if c, ok := highlightColors[a.Highlight]; ok {
		sb.WriteString("background-color:" + c + ";")
	}
	var lines []string
	if a.Underline != "" {
		lines = append(lines, "underline")
	}
	if a.Strike {
		lines = append(lines, "line-through")
	}
	if len(lines) > 0 {
		sb.WriteString("text-decoration:" + strings.Join(lines, " ") + underlineStyle(a.Underline) + ";")
	}
	return sb.String()
}

func underlineStyle(u string) string {
	switch {
	case u == "double":
		return " double"
	case strings.HasPrefix(u, "wav"):
		return " wavy"
	case strings.HasPrefix(u, "dotted"):
		return " dotted"
	case strings.HasPrefix(u, "dash"):
		return " dashed"
	}
	return ""
}

// escapeMarkdown backslash-escapes ASCII punctuation so that only the
// structure written here reaches goldmark.
func escapeMarkdown(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// table writes a GFM table. The first row above the alignment row is the
// header; without one the header is empty.
func (s *previewSource) table(p *mdParagraph) string {
	g := table.Parse(p.lines)
	cols := g.Columns()
	if cols == 0 {
		return ""
	}
	row := func(i int) string {
		cells := make([]string, cols)
		for j := range cols {
			cells[j] = s.inline(oneLine(g.CellText(i, j)))
		}
		return "| " + strings.Join(cells, " | ") + " |"
	}
	var lines []string
	start := 0
	if g.HeadRows > 0 {
		lines = append(lines, row(0))
		start = 1
	} else {
		lines = append(lines, "|"+strings.Repeat("  |", cols))
	}
	delim := make([]string, cols)
	for j, a := range g.Aligns {
		switch a {
		case paragraph.AlignCenter:
			delim[j] = ":-:"
		case paragraph.AlignRight:
			delim[j] = "--:"
		default:
			delim[j] = ":--"
		}
	}
	lines = append(lines, "|"+strings.Join(delim, "|")+"|")
	for i := start; i < len(g.Rows); i++ {
		lines = append(lines, row(i))
	}
	return strings.Join(lines, "\n")
}

// fenced writes a code block with a fence longer than any backtick run
// inside it.
func fenced(info string, lines []string) string {
	fence := mdFence
	for _, l := range lines {
		for strings.Contains(l, fence) {
			fence += "`"
		}
	}
	return fence + info + "\n" + strings.Join(lines, "\n") + "\n" + fence
}
