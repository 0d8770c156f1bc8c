package pipeline

import (
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"

	"github.com/alnah/go-makdo/internal/decorator"
	"github.com/alnah/go-makdo/internal/docx"
	"github.com/alnah/go-makdo/internal/length"
	"github.com/alnah/go-makdo/internal/markdown"
	"github.com/alnah/go-makdo/internal/numbering"
	"github.com/alnah/go-makdo/internal/ooxml"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/table"
)

// horizontalRule is the Markdown written for a horizontal line.
const horizontalRule = "---"

var (
	escapedHead     = regexp.MustCompile(`^(?:[$#]|[-+]\s|v=|V=|X=|<<=|<=|>=|:(?:\s|$))`)
	escapedNumbered = regexp.MustCompile(`^([0-9]+)([.)]\s)`)
	escapedTail     = regexp.MustCompile(`\s:$`)
	previewInfo     = regexp.MustCompile(`^\[([^\[\]]+)\]$`)
)

// docxBuilder turns body blocks into Markdown paragraphs. It holds the
// numbering state and the section context of one run.
type docxBuilder struct {
	*docxReader
	m     length.Metrics
	state *numbering.State
	rules paragraph.Rules[*docxParagraph]

	prevTail int
}

func newDocxBuilder(r *docxReader) *docxBuilder {
	b := &docxBuilder{docxReader: r, m: r.cfg.Metrics(), state: numbering.NewState()}
	b.rules = b.docxRules()
	return b
}

// bodyBlocks splits document.xml into its top-level elements. Content
// controls are opened; elements other than paragraphs, tables and section
// properties are dropped.
func (r *docxReader) bodyBlocks(data []byte) []*xmlquery.Node {
	var out []*xmlquery.Node
	for i, blk := range ooxml.SplitBlocks(ooxml.Flatten(data)) {
		if blk.Name == "" {
			continue
		}
		n, err := ooxml.ParseBlock(blk)
		if err != nil {
			r.w.Add(0, docx.PartDocument, "block %d: %v", i+1, err)
			continue
		}
		out = append(out, openContent(n)...)
	}
	return out
}

func openContent(n *xmlquery.Node) []*xmlquery.Node {
	switch {
	case ooxml.Is(n, "w:sdt"):
		var out []*xmlquery.Node
		for _, c := range ooxml.All(n, exprSdtBlocks) {
			out = append(out, openContent(c)...)
		}
		return out
	case ooxml.Is(n, "w:p"), ooxml.Is(n, "w:tbl"), ooxml.Is(n, "w:sectPr"):
		return []*xmlquery.Node{n}
	}
	return nil
}

// prepare numbers p and fills its depths and length layers. Paragraphs
// must be prepared in document order.
func (b *docxBuilder) prepare(p *docxParagraph) {
	switch p.kind {
	case paragraph.Blank, paragraph.Configuration:
		return
	case paragraph.List, paragraph.SystemList:
	default:
		b.state.ResetList()
	}
	p.articles = b.state.Section[1][0]
	p.body = p.content
	switch p.kind {
	case paragraph.Chapter:
		b.chapter(p)
	case paragraph.Section:
		b.section(p)
	case paragraph.List:
		b.list(p)
	case paragraph.SystemList:
		b.systemList(p)
	case paragraph.Preformatted, paragraph.Sentence:
		p.depths = paragraph.Depths{Head: b.prevTail, Tail: b.prevTail}
	}
	if p.content.pagebreak && p.kind != paragraph.Pagebreak {
		p.md.Pre = "<pgbr>\n"
	}
	b.docxLayer(p)
	b.layers(p)
}

func (b *docxBuilder) chapter(p *docxParagraph) {
	h, rest, _ := numbering.ParseChapter(p.plain)
	p.md.NumberingRevisers = b.state.Sync(numbering.ChapterBank, h.Depth, h.Values, p.r)
	p.depths.Proper = h.Depth + 1
	p.head = numbering.Symbol(numbering.ChapterBank, h.Depth, h.Branch()) + " "
	p.body = p.content.trimPrefix(headLength(p.plain, rest))
}

func (b *docxBuilder) section(p *docxParagraph) {
	heads, rest, ok := numbering.ParseSection(p.plain)
	if !ok {
		// A centered title in the largest size.
		b.state.Step(numbering.SectionBank, 0, 0, p.r)
		p.title = true
		p.depths = paragraph.Depths{Head: 1, Tail: 1}
		b.prevTail = 1
		return
	}
	var syms []string
	for _, h := range heads {
		values := slices.Clone(h.Values)
		if b.cfg.Style == numbering.StyleStatute && h.Depth == 2 && b.state.Section[1][0] != 0 {
			values[0]--
		}
		p.md.NumberingRevisers = append(p.md.NumberingRevisers, b.state.Sync(numbering.SectionBank, h.Depth, values, p.r)...)
		syms = append(syms, numbering.Symbol(numbering.SectionBank, h.Depth, h.Branch()))
	}
	p.depths = paragraph.Depths{Head: heads[0].Depth + 1, Tail: heads[len(heads)-1].Depth + 1}
	b.prevTail = p.depths.Tail
	p.head = strings.Join(syms, " ") + " "
	p.body = p.content.trimPrefix(headLength(p.plain, rest))
}

func (b *docxBuilder) list(p *docxParagraph) {
	depth, numbered, value, rest, _ := numbering.ParseList(p.plain)
	marker := "- "
	if numbered {
		p.md.NumberingRevisers = b.state.Sync(numbering.ListBank, depth, []int{value}, p.r)
		marker = "1. "
	}
	p.depths = paragraph.Depths{Head: b.prevTail, Tail: b.prevTail, Proper: depth + 1}
	p.head = strings.Repeat("  ", depth) + marker
	p.body = p.content.trimPrefix(headLength(p.plain, rest))
}

// systemList writes a list Word numbers itself. Its visible numbers are
// not in the text, so only the counters advance.
func (b *docxBuilder) systemList(p *docxParagraph) {
	depth := min(p.ilvl, numbering.ListDepths-1)
	bullet := strings.HasPrefix(p.style, "List Bullet")
	if levels, ok := b.bullets[p.numID]; ok {
		bullet = levels[strconv.Itoa(p.ilvl)]
	}
	marker := "- "
	if !bullet {
		b.state.Step(numbering.ListBank, depth, 0, p.r)
		marker = "1. "
	}
	p.depths = paragraph.Depths{Head: b.prevTail, Tail: b.prevTail, Proper: depth + 1}
	p.head = strings.Repeat("  ", depth) + marker
}

// headLength is the number of leading runes of plain the parsed number
// took up.
func headLength(plain, rest string) int {
	return utf8.RuneCountInString(plain) - utf8.RuneCountInString(rest)
}

// docxLayer reads the native geometry into the docx layer.
func (b *docxBuilder) docxLayer(p *docxParagraph) {
	switch {
	case p.kind == paragraph.HorizontalLine && p.border != borderNone:
		p.length.Docx = b.m.ImportRule(p.native)
	case p.kind == paragraph.Table:
		p.length.Docx = b.m.Import(length.Native{TableIndent: p.native.TableIndent})
	default:
		p.length.Docx = b.m.Import(p.native)
	}
}

// layers computes the class and config layers from the kind and depths.
func (b *docxBuilder) layers(p *docxParagraph) {
	kind := p.kind
	if kind == paragraph.SystemList {
		kind = paragraph.List
	}
	p.length.Class = length.ClassDefault(length.Context{
		Kind:     kind,
		Depths:   p.depths,
		Articles: p.articles,
		Statute:  b.cfg.Style == numbering.StyleStatute,
	})
	p.length.Config = length.ConfigDefault(kind, p.depths, b.cfg.SpaceBefore, b.cfg.SpaceAfter)
	// Word indents its own lists from numbering.xml.
	if p.kind == paragraph.SystemList && p.native.Left == 0 && p.native.FirstLine == 0 && p.native.Hanging == 0 {
		p.length.Docx.FirstIndent = p.length.Class.FirstIndent
		p.length.Docx.LeftIndent = p.length.Class.LeftIndent
	}
}

// render writes the Markdown of p. Blank and configuration paragraphs
// render as nothing.
func (b *docxBuilder) render(p *docxParagraph) {
	switch p.kind {
	case paragraph.Blank, paragraph.Configuration:
		p.md = markdown.Paragraph{}
		return
	}
	base := b.cfg.FontSize
	switch p.kind {
	case paragraph.Section:
		if p.title {
			head, body, tail := decorator.SplitRevisers(p.content.emit(base*decorator.SizeXL.Scale(), b.mediaDir))
			p.md.HeadFont, p.md.TailFont = head, tail
			p.md.Text = "# " + body
			break
		}
		p.md.Text = p.head + p.body.emit(base, b.mediaDir)
	case paragraph.Chapter, paragraph.List, paragraph.SystemList:
		p.md.Text = p.head + p.body.emit(base, b.mediaDir)
	case paragraph.Table:
		p.md.Text = b.tableText(p)
	case paragraph.Image:
		p.md.Text = b.imageText(p)
	case paragraph.Alignment:
		p.md.Text = alignText(p.content.emit(base, b.mediaDir), p.align)
	case paragraph.Preformatted:
		p.md.Text = preformattedText(p.plain)
	case paragraph.Pagebreak:
		p.md.Text = "<pgbr>"
	case paragraph.HorizontalLine:
		p.md.Text = horizontalRule
		if text := strings.TrimSpace(p.plain); text != "" {
			wrapped := markdown.Wrap(escapeBlock(p.content.emit(base, b.mediaDir)))
			if p.border == borderTop {
				p.md.Post = "\n" + wrapped
			} else {
				p.md.Pre += wrapped + "\n"
			}
		}
	default:
		head, body, tail := decorator.SplitRevisers(p.content.emit(base, b.mediaDir))
		p.md.HeadFont, p.md.TailFont = head, tail
		p.md.Text = markdown.Wrap(escapeBlock(body))
	}
	if p.setter > 0 {
		if sb := length.Format(length.Attrs{SpaceBefore: p.setterSpace}); len(sb) > 0 {
			p.md.Pre += strings.Join(sb, " ") + "\n"
		}
		p.md.Pre += strings.Repeat("#", p.setter) + "\n"
	}
	p.md.LengthRevisers = length.Format(p.length.Residual())
}

// tableText renders the cells in the small table font.
func (b *docxBuilder) tableText(p *docxParagraph) string {
	base := b.cfg.FontSize * table.SmallScale
	rows := make([][]table.Cell, len(p.cells))
	for i, row := range p.cells {
		for _, c := range row {
			rows[i] = append(rows[i], table.Cell{Text: c.content.emit(base, b.mediaDir), Align: c.align})
		}
	}
	widths := make([]int, len(p.grid))
	for j, w := range p.grid {
		widths[j] = table.GridWidth(w, b.cfg.FontSize)
	}
	return table.Render(rows, widths)
}

// imageText writes one sized reference per picture. A size filling the
// text box, or half of it, is written as a fraction of the box.
func (b *docxBuilder) imageText(p *docxParagraph) string {
	pw, ph := b.cfg.Paper.Size()
	bw := pw - b.cfg.LeftMargin - b.cfg.RightMargin
	bh := ph - b.cfg.TopMargin - b.cfg.BottomMargin
	lines := make([]string, 0, len(p.content.images))
	for _, img := range p.content.images {
		ref := "![" + img.name + ":" + boxFraction(img.width, bw) + "x" + boxFraction(img.height, bh) +
			"](" + path.Join(b.mediaDir, img.name) + ")"
		switch p.align {
		case paragraph.AlignLeft:
			ref = ": " + ref
		case paragraph.AlignRight:
			ref += " :"
		}
		lines = append(lines, ref)
	}
	return strings.Join(lines, "\n")
}

func boxFraction(v, box float64) string {
	if box > 0 {
		switch r := v / box; {
		case r >= 0.98 && r <= 1.02:
			return "-1"
		case r >= 0.48 && r <= 0.52:
			return "-0.5"
		}
	}
	return formatCM(v)
}

// alignText wraps every non-empty line in the alignment colons.
func alignText(s string, a paragraph.Align) string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		switch a {
		case paragraph.AlignLeft:
			l = ": " + escapeLeading(l)
		case paragraph.AlignCenter:
			l = ": " + escapeLeading(escapeTrailing(l)) + " :"
		case paragraph.AlignRight:
			l = escapeTrailing(l) + " :"
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

// preformattedText fences the plain text. A first line in brackets is
// the info string.
func preformattedText(text string) string {
	info := ""
	first, rest, found := strings.Cut(text, "\n")
	if m := previewInfo.FindStringSubmatch(first); m != nil {
		info = m[1]
		text = rest
		if !found {
			text = ""
		}
	}
	return "```" + info + "\n" + text + "\n```"
}

func escapeLeading(s string) string {
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
		return `\` + s
	}
	return s
}

func escapeTrailing(s string) string {
	if r, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(r) {
		return s + decorator.Relax
	}
	return s
}

// escapeBlock keeps running text from reading as another kind of
// paragraph.
func escapeBlock(s string) string {
	switch {
	case s == "":
		return s
	case s == "<pgbr>", mdHorizontalLine.MatchString(s), mdTable.MatchString(s):
		return `\` + s
	}
	if m := escapedNumbered.FindStringSubmatch(s); m != nil {
		s = m[1] + `\` + s[len(m[1]):]
	} else if escapedHead.MatchString(s) {
		s = `\` + s
	}
	s = escapeLeading(s)
	if escapedTail.MatchString(s) {
		s = s[:len(s)-1] + `\:`
	}
	return escapeTrailing(s)
}

// trimPrefix drops the first n visible runes of the text. Deleted text
// and placeholders are kept and not counted.
func (t docxText) trimPrefix(n int) docxText {
	out := t
	out.runs = make([]docxRun, 0, len(t.runs))
	del := false
	for _, r := range t.runs {
		if n <= 0 || r.image != 0 {
			out.runs = append(out.runs, r)
			continue
		}
		var kept strings.Builder
		for _, c := range r.text {
			switch {
			case c == markDelOpen:
				del = true
				kept.WriteRune(c)
			case c == markDelClose:
				del = false
				kept.WriteRune(c)
			case c >= markImage || del || n <= 0:
				kept.WriteRune(c)
			default:
				n--
			}
		}
		r.text = kept.String()
		out.runs = append(out.runs, r)
	}
	return out
}
