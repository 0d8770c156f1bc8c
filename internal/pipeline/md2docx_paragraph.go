package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-makdo/internal/decorator"
	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/length"
	"github.com/alnah/go-makdo/internal/mdtoken"
	"github.com/alnah/go-makdo/internal/numbering"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/warning"
)

// mdParagraph is one Markdown paragraph on its way to document.xml.
type mdParagraph struct {
	raw    mdtoken.RawParagraph
	kind   paragraph.Kind
	depths paragraph.Depths
	align  paragraph.Align
	length length.Layers
	// docx is the value written to document.xml: the leak-corrected total,
	// then adjusted by the neighbour passes.
	docx  length.Attrs
	lines []string // line texts after editing
	text  string   // text to write, font revisers included
	info  string   // fence info string of a preformatted paragraph
	r     warning.Reporter
}

var (
	bareSymbol   = regexp.MustCompile(`^#+(?:-#+)*$`)
	leadingSpace = regexp.MustCompile(`^\s`)
	parenHead    = regexp.MustCompile(`^.*\(.*\)$`)
	alignLeading = regexp.MustCompile(`^:\s{2,}.*$`)
	alignTrail   = regexp.MustCompile(`^.*\s{2,}:$`)
	alignOpen    = regexp.MustCompile(`^:\s`)
	alignClose   = regexp.MustCompile(`\s:$`)
	reviserValue = regexp.MustCompile(`^(\s*)([^=]+)=([0-9]+)$`)
)

// mdBuilder turns raw paragraphs into paragraphs ready to write. It holds
// the numbering state and the section context of one run.
type mdBuilder struct {
	cfg   *document.Config
	state *numbering.State
	w     *warning.Collector

	prevHead, prevTail int
}

func newMDBuilder(cfg *document.Config, w *warning.Collector) *mdBuilder {
	return &mdBuilder{cfg: cfg, state: numbering.NewState(), w: w}
}

// build classifies raws, folds empty and blank paragraphs into the next
// one and prepares every remaining paragraph. Revisers left pending at
// the end of the document are dropped.
func (b *mdBuilder) build(raws []mdtoken.RawParagraph) []*mdParagraph {
	var out []*mdParagraph
	var pending mdtoken.RawParagraph
	for _, raw := range raws {
		kind := paragraph.Classify(mdRules, raw)
		if kind == paragraph.Empty || kind == paragraph.Blank {
			carry(&pending, raw, kind)
			continue
		}
		out = append(out, b.paragraph(absorb(raw, pending), kind))
		pending = mdtoken.RawParagraph{}
	}
	return out
}

// carry moves the revisers of an empty or blank paragraph into pending.
// Only the space before survives; a space after becomes a space before,
// and a blank paragraph adds one line per break.
func carry(pending *mdtoken.RawParagraph, raw mdtoken.RawParagraph, kind paragraph.Kind) {
	pending.ChapterRevisers = append(pending.ChapterRevisers, raw.ChapterRevisers...)
	pending.SectionRevisers = append(pending.SectionRevisers, raw.SectionRevisers...)
	pending.ListRevisers = append(pending.ListRevisers, raw.ListRevisers...)
	for _, tok := range raw.LengthRevisers {
		switch {
		case strings.HasPrefix(tok, "v="):
			pending.LengthRevisers = append(pending.LengthRevisers, tok)
		case strings.HasPrefix(tok, "V="):
			pending.LengthRevisers = append(pending.LengthRevisers, "v="+tok[2:])
		}
	}
	if kind == paragraph.Blank {
		n := len(mdBreak.FindAllString(raw.Text, -1))
		pending.LengthRevisers = append(pending.LengthRevisers, "v=+"+strconv.Itoa(n))
	}
	pending.HeadFont = append(pending.HeadFont, raw.HeadFont...)
	pending.HeadFont = append(pending.HeadFont, raw.TailFont...)
	pending.DepthSetters = append(pending.DepthSetters, raw.DepthSetters...)
}

// absorb prepends pending revisers to raw.
func absorb(raw, pending mdtoken.RawParagraph) mdtoken.RawParagraph {
	join := func(a, b []string) []string {
		if len(a) == 0 {
			return b
		}
		return append(append([]string(nil), a...), b...)
	}
	raw.ChapterRevisers = join(pending.ChapterRevisers, raw.ChapterRevisers)
	raw.SectionRevisers = join(pending.SectionRevisers, raw.SectionRevisers)
	raw.ListRevisers = join(pending.ListRevisers, raw.ListRevisers)
	raw.LengthRevisers = join(pending.LengthRevisers, raw.LengthRevisers)
	raw.HeadFont = join(pending.HeadFont, raw.HeadFont)
	raw.DepthSetters = join(pending.DepthSetters, raw.DepthSetters)
	return raw
}

func (b *mdBuilder) paragraph(raw mdtoken.RawParagraph, kind paragraph.Kind) *mdParagraph {
	p := &mdParagraph{raw: raw, kind: kind, r: b.w.At(raw.Number(), "")}
	for _, l := range raw.Lines {
		p.lines = append(p.lines, l.Text)
	}
	for _, s := range raw.DepthSetters {
		b.prevHead, b.prevTail = len(s), len(s)
	}
	p.depths = b.depths(kind, raw.Text)
	p.align = alignment(kind, p.depths, raw.Text)
	b.revise(p)
	if kind != paragraph.List {
		b.state.ResetList()
	}
	b.lengths(p)
	b.check(p)
	switch kind {
	case paragraph.Chapter:
		b.editHeading(p, numbering.ChapterBank, mdChapter, "$")
	case paragraph.Section:
		b.editHeading(p, numbering.SectionBank, mdSection, "#")
	case paragraph.List:
		b.editList(p)
	case paragraph.Alignment:
		editAlignment(p)
	case paragraph.Preformatted:
		editPreformatted(p)
	}
	p.text = decorator.JoinRevisers(raw.HeadFont, textOf(p), raw.TailFont)
	return p
}

// depths resolves the section context. Headings update it; lists,
// preformatted text and sentences inherit the last heading depth.
func (b *mdBuilder) depths(kind paragraph.Kind, text string) paragraph.Depths {
	var d paragraph.Depths
	switch kind {
	case paragraph.Section:
		for m := mdSection.FindStringSubmatch(text); m != nil; m = mdSection.FindStringSubmatch(text) {
			if d.Head == 0 {
				d.Head = len(m[1])
			}
			d.Tail = len(m[1])
			text = m[3]
		}
		b.prevHead, b.prevTail = d.Head, d.Tail
	case paragraph.Chapter:
		d.Proper = len(mdChapter.FindStringSubmatch(text)[1])
	case paragraph.List:
		d.Head, d.Tail = b.prevTail, b.prevTail
		d.Proper = listIndent(text) + 1
	case paragraph.Preformatted, paragraph.Sentence:
		d.Head, d.Tail = b.prevTail, b.prevTail
	}
	return d
}

// listIndent counts leading spaces; an ideographic space or a tab is two
// spaces and two spaces are one step.
func listIndent(text string) int {
	text = strings.NewReplacer("　", "  ", "\t", "  ").Replace(text)
	text = strings.ReplaceAll(text, "  ", " ")
	return len(text) - len(strings.TrimLeft(text, " "))
}

func alignment(kind paragraph.Kind, d paragraph.Depths, text string) paragraph.Align {
	switch {
	case kind == paragraph.Section && d.Head == 1:
		return paragraph.AlignCenter
	case kind == paragraph.Alignment:
		return alignmentOf(text)
	}
	return paragraph.AlignNone
}

// revise applies the numbering revisers of p.
func (b *mdBuilder) revise(p *mdParagraph) {
	apply := func(bank numbering.Bank, sym string, toks []string) {
		for _, tok := range toks {
			m := reviserValue.FindStringSubmatch(tok)
			if m == nil {
				continue
			}
			value, _ := strconv.Atoi(m[3])
			if bank == numbering.ListBank {
				depth := len(strings.ReplaceAll(m[1], "  ", " "))
				b.state.Revise(bank, depth, 0, value, p.r)
				continue
			}
			trunk := len(m[2]) - len(strings.TrimLeft(m[2], sym))
			branch := strings.Count(m[2][trunk:], sym)
			b.state.Revise(bank, trunk-1, branch, value, p.r)
		}
	}
	apply(numbering.ChapterBank, "$", p.raw.ChapterRevisers)
	apply(numbering.SectionBank, "#", p.raw.SectionRevisers)
	apply(numbering.ListBank, "", p.raw.ListRevisers)
}

func (b *mdBuilder) lengths(p *mdParagraph) {
	for _, tok := range p.raw.LengthRevisers {
		if !length.ParseReviser(tok, &p.length.Reviser) {
			p.r.Warn("invalid length reviser %q", tok)
		}
	}
	p.length.Config = length.ConfigDefault(p.kind, p.depths, b.cfg.SpaceBefore, b.cfg.SpaceAfter)
	p.length.Class = length.ClassDefault(length.Context{
		Kind:     p.kind,
		Depths:   p.depths,
		Articles: b.state.Section[1][0],
		Statute:  b.cfg.Style == numbering.StyleStatute,
	})
	p.docx = length.LeakExport(p.length.Total())
}

// check reports trailing white space and a break closing the paragraph.
func (b *mdBuilder) check(p *mdParagraph) {
	if p.kind == paragraph.Preformatted {
		return
	}
	for i, l := range p.raw.Lines {
		if l.Trailing == "" {
			continue
		}
		if i == 0 && l.Trailing == " " && bareSymbol.MatchString(l.Text) {
			continue
		}
		b.w.Add(l.Number, "", "white spaces at the end of the line")
	}
	for i := len(p.raw.Lines) - 1; i >= 0; i-- {
		l := p.raw.Lines[i]
		if l.Text == "" {
			continue
		}
		if strings.HasSuffix(l.Text, "<br>") {
			b.w.Add(l.Number, "", "breaking line at the end of the last line")
		}
		break
	}
}

// editHeading replaces the heading symbols of the first lines with the
// rendered numbers, stepping the counters as it goes.
func (b *mdBuilder) editHeading(p *mdParagraph, bank numbering.Bank, re *regexp.Regexp, sym string) {
	lines := p.lines
	var head, title, body string
	pdepth := -1
	inBody := false
	for i := range lines {
		if !inBody {
			t := lines[i]
			for m := re.FindStringSubmatch(t); m != nil; m = re.FindStringSubmatch(t) {
				x := len(m[1]) - 1
				y := strings.Count(m[2], sym)
				t = m[3]
				if pdepth > 0 && x != pdepth+1 {
					p.r.Warn("%s depth is not continuous", bank)
				}
				pdepth = x
				if bank == numbering.ChapterBank {
					head += b.state.ChapterHead(x, y, p.r)
				} else {
					head += b.state.SectionHead(x, y, b.cfg.Style, p.r)
				}
				b.state.Step(bank, x, y, p.r)
			}
			if t != lines[i] {
				title = t
				if leadingSpace.MatchString(title) {
					p.r.Warn("%s title has spaces at the beginning", bank)
				}
				lines[i] = ""
			}
			if t != "" {
				inBody = true
			}
		}
		if body == "" && leadingSpace.MatchString(lines[i]) {
			p.r.Warn("%s body has spaces at the beginning", bank)
		}
		body += lines[i]
	}
	if title+body == "" {
		return
	}
	switch {
	case bank == numbering.SectionBank && p.depths.Tail == 1:
		lines[0] = title
	case parenHead.MatchString(head):
		lines[0] = head + " " + title
	default:
		lines[0] = head + "　" + title
	}
}

func (b *mdBuilder) editList(p *mdParagraph) {
	n := 0
	for n < len(p.lines)-1 && p.lines[n] == "" {
		n++
	}
	line := mdListSymbol.ReplaceAllString(p.lines[n], "")
	numbered := mdNumberedList.MatchString(p.raw.Text)
	p.lines[n] = b.state.ListHead(p.depths.Proper-1, numbered, p.r) + "　" + line
}

func editAlignment(p *mdParagraph) {
	r := p.r
	for i, t := range p.lines {
		if t != "" {
			switch p.align {
			case paragraph.AlignLeft:
				if !mdLeft.MatchString(t) {
					r.Warn("not left alignment")
				}
			case paragraph.AlignCenter:
				if !mdCenter.MatchString(t) {
					r.Warn("not center alignment")
				}
			case paragraph.AlignRight:
				if !mdRight.MatchString(t) {
					r.Warn("not right alignment")
				}
			}
		}
		left := p.align == paragraph.AlignLeft || p.align == paragraph.AlignCenter
		right := p.align == paragraph.AlignCenter || p.align == paragraph.AlignRight
		if left && alignLeading.MatchString(t) {
			r.Warn(`spaces at the beginning (if necessary, insert "\")`)
		}
		if right && alignTrail.MatchString(t) {
			r.Warn("spaces at the end")
		}
		if left {
			t = alignOpen.ReplaceAllString(t, "")
		}
		if right {
			t = alignClose.ReplaceAllString(t, "")
		}
		if t == ":" {
			t = ""
		}
		p.lines[i] = t
	}
}

// editPreformatted keeps the fenced lines verbatim, indentation included,
// and takes the info string off the opening fence.
func editPreformatted(p *mdParagraph) {
	ls := p.raw.Lines
	p.info = strings.Join(strings.Fields(strings.TrimPrefix(strings.TrimSpace(ls[0].Spaced), mdFence)), "")
	var body []string
	for i, l := range ls[1:] {
		s := strings.TrimRight(l.Spaced, " \t\r")
		if i == len(ls)-2 {
			s = strings.TrimSuffix(s, mdFence)
			if strings.TrimSpace(s) == "" {
				break
			}
		}
		body = append(body, s)
	}
	p.lines = body
}

// textOf assembles the text to write from the edited lines.
func textOf(p *mdParagraph) string {
	switch p.kind {
	case paragraph.Alignment:
		var kept []string
		for _, l := range p.lines {
			if l != "" {
				kept = append(kept, l)
			}
		}
		return strings.Join(kept, "\n")
	case paragraph.Preformatted, paragraph.Table:
		return strings.Join(p.lines, "\n")
	}
	var s string
	for _, l := range p.lines {
		s = mdtoken.Concatenate(s, l)
	}
	return s
}

// modifyExport adjusts the spacing between neighbours: the article title
// of statute documents, the document title, and tables, whose spacing
// moves into the paragraphs around them.
func modifyExport(ps []*mdParagraph, style string) {
	if style == numbering.StyleStatute {
		for i, p := range ps {
			if i == 0 || p.kind != paragraph.Section || p.depths.Head != 2 || p.depths.Tail != 2 {
				continue
			}
			prev := ps[i-1]
			if prev.kind == paragraph.Alignment && prev.align == paragraph.AlignLeft {
				prev.docx.SpaceBefore += p.length.Config.SpaceBefore
				p.docx.SpaceBefore -= p.length.Config.SpaceBefore
			}
		}
	}
	grow := func(v *float64) {
		switch {
		case *v >= 0.1:
			*v += 0.1
		case *v >= 0:
			*v *= 2
		}
	}
	shrink := func(v *float64) {
		switch {
		case *v >= 0.2:
			*v -= 0.1
		case *v >= 0:
			*v /= 2
		}
	}
	last := len(ps) - 1
	for i, p := range ps {
		if p.kind == paragraph.Section && p.depths.Head == 1 && p.depths.Tail == 1 {
			if i > 0 {
				grow(&ps[i-1].docx.SpaceAfter)
			}
			grow(&p.docx.SpaceBefore)
			shrink(&p.docx.SpaceAfter)
			if i < last {
				shrink(&ps[i+1].docx.SpaceBefore)
			}
		}
		if p.kind != paragraph.Table {
			continue
		}
		if i > 0 {
			if p.docx.SpaceBefore < 0 {
				p.r.Warn(`"space before" is too small`)
				p.docx.SpaceBefore = 0
			}
			prev := &ps[i-1].docx.SpaceAfter
			*prev = absorbed(*prev, p.docx.SpaceBefore-length.TableSpaceBefore) + length.TableSpaceBefore
			p.docx.SpaceBefore = 0
		}
		if i < last {
			if p.docx.SpaceAfter < 0 {
				p.r.Warn(`"space after" is too small`)
				p.docx.SpaceAfter = 0
			}
			next := &ps[i+1].docx.SpaceBefore
			*next = absorbed(p.docx.SpaceAfter-length.TableSpaceAfter, *next) + length.TableSpaceAfter
			p.docx.SpaceAfter = 0
		}
	}
}

// absorbed merges two facing spaces: the larger positive one wins,
// otherwise the more negative one.
func absorbed(a, b float64) float64 {
	mx, mn := max(0, a, b), min(0, a, b)
	if mx > 0 {
		return mx
	}
	return mn
}
