package pipeline

import (
	"math"
	"strings"

	"github.com/alnah/go-makdo/internal/length"
	"github.com/alnah/go-makdo/internal/numbering"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/textwidth"
)

// modifyImport undoes the neighbour adjustments of an export and folds
// blank paragraphs into the spacing of the next one. It returns the
// paragraphs left to render.
func (b *docxBuilder) modifyImport(ps []*docxParagraph) []*docxParagraph {
	b.leftAlignment(ps)
	ps = foldBlanks(ps)
	if b.cfg.Style == numbering.StyleStatute {
		articleTitles(ps)
	}
	titleSpacing(ps)
	b.spacedTitles(ps)
	tableSpacing(ps)
	b.depthSetters(ps)
	b.oneLine(ps)
	return ps
}

// leftAlignment reads a sentence under a heading that lacks the body
// indent as left aligned.
func (b *docxBuilder) leftAlignment(ps []*docxParagraph) {
	for _, p := range ps {
		if p.kind != paragraph.Sentence || p.depths.Tail == 0 {
			continue
		}
		if p.length.Docx.FirstIndent != 0 || p.length.Docx.LeftIndent != 0 {
			continue
		}
		p.kind = paragraph.Alignment
		p.align = paragraph.AlignLeft
		p.depths = paragraph.Depths{}
		b.layers(p)
	}
}

// foldBlanks turns blank paragraphs into space before the next paragraph.
// A blank paragraph is one line high plus one line per break; where its
// own space after meets the next space before, the larger one counts.
func foldBlanks(ps []*docxParagraph) []*docxParagraph {
	out := ps[:0]
	for i, p := range ps {
		if p.kind == paragraph.Configuration {
			continue
		}
		if p.kind != paragraph.Blank {
			out = append(out, p)
			continue
		}
		next := nextContent(ps, i)
		if next == nil {
			break
		}
		p.length.Extra.SpaceBefore += float64(strings.Count(p.plain, "\n") + 1)
		res := p.length.Residual()
		sb, sa := res.SpaceBefore, res.SpaceAfter
		nx := next.length.Residual().SpaceBefore
		if sa < nx {
			next.length.Extra.SpaceBefore += sb
		} else {
			next.length.Extra.SpaceBefore += sa + sb - nx
		}
	}
	return out
}

// nextContent returns the paragraph after i, blank ones included, or nil.
func nextContent(ps []*docxParagraph, i int) *docxParagraph {
	for _, q := range ps[i+1:] {
		if q.kind != paragraph.Configuration {
			return q
		}
	}
	return nil
}

// articleTitles moves the space before an article back from the caption
// set left aligned above it.
func articleTitles(ps []*docxParagraph) {
	for i, p := range ps {
		if i == 0 || p.kind != paragraph.Section || p.depths.Head != 2 || p.depths.Tail != 2 {
			continue
		}
		prev := ps[i-1]
		if prev.kind == paragraph.Alignment && prev.align == paragraph.AlignLeft {
			prev.length.Config.SpaceBefore = p.length.Config.SpaceBefore
			p.length.Config.SpaceBefore = 0
		}
	}
}

// titleSpacing reverses the spacing an export gives the document title.
func titleSpacing(ps []*docxParagraph) {
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
		if p.kind != paragraph.Section || p.depths.Head != 1 || p.depths.Tail != 1 {
			continue
		}
		if i > 0 {
			shrink(&ps[i-1].length.Docx.SpaceAfter)
		}
		shrink(&p.length.Docx.SpaceBefore)
		grow(&p.length.Docx.SpaceAfter)
		if i < last {
			grow(&ps[i+1].length.Docx.SpaceBefore)
		}
	}
}

// tableSpacing moves the fixed table spacing back from the neighbours
// that absorbed it. Next to a page break or at either end of the
// document nothing absorbed it.
func tableSpacing(ps []*docxParagraph) {
	last := len(ps) - 1
	for i, p := range ps {
		if p.kind != paragraph.Table {
			continue
		}
		if i == 0 || ps[i-1].kind == paragraph.Pagebreak {
			p.length.Extra.SpaceBefore += length.TableSpaceBefore
		} else {
			prev := &ps[i-1].length.Docx
			p.length.Docx.SpaceBefore = prev.SpaceAfter
			prev.SpaceAfter = 0
		}
		if i == last || ps[i+1].kind == paragraph.Pagebreak {
			p.length.Extra.SpaceAfter += length.TableSpaceAfter
		} else {
			next := &ps[i+1].length.Docx
			p.length.Docx.SpaceAfter = next.SpaceBefore
			next.SpaceBefore = 0
		}
	}
}

// spacedTitles reads a centered line one line below its neighbour as a
// title without heading text: the space moves before a depth 1 setter
// and the body after it joins depth 1.
func (b *docxBuilder) spacedTitles(ps []*docxParagraph) {
	for i, p := range ps {
		if p.kind != paragraph.Alignment || p.align != paragraph.AlignCenter {
			continue
		}
		if p.length.Residual().SpaceBefore != 1 {
			continue
		}
		p.setter = 1
		p.setterSpace = 1
		p.length.Extra.SpaceBefore--
		b.propagate(ps[i+1:], 1)
	}
}

// depthSetters finds sentences indented as if under a shallower heading
// and declares that depth before them. The new depth holds until the
// next section heading.
func (b *docxBuilder) depthSetters(ps []*docxParagraph) {
	for i, p := range ps {
		if p.kind != paragraph.Sentence || p.depths.Tail < 2 {
			continue
		}
		res := p.length.Residual()
		li := res.LeftIndent
		if li >= 0 || li != math.Trunc(li) || res != (length.Attrs{LeftIndent: li}) {
			continue
		}
		for d := p.depths.Tail - 1; d >= 1; d-- {
			probe := *p
			probe.depths = paragraph.Depths{Head: d, Tail: d}
			b.layers(&probe)
			if !probe.length.Residual().IsZero() {
				continue
			}
			p.setter = d
			b.propagate(ps[i:], d)
			break
		}
	}
}

// propagate moves the body paragraphs up to the next section heading to
// depth d.
func (b *docxBuilder) propagate(ps []*docxParagraph, d int) {
	for _, q := range ps {
		switch q.kind {
		case paragraph.Section:
			return
		case paragraph.List, paragraph.SystemList, paragraph.Preformatted, paragraph.Sentence:
			q.depths.Head, q.depths.Tail = d, d
			b.layers(q)
		}
	}
}

// oneLine drops indent revisers that only trade the first line indent
// against the left indent where that cannot show: on tables and images,
// and on paragraphs that fit on one line.
func (b *docxBuilder) oneLine(ps []*docxParagraph) {
	pw, _ := b.cfg.Paper.Size()
	cmPerChar := b.cfg.FontSize * cmPerPt
	for _, p := range ps {
		res := p.length.Residual()
		if res.FirstIndent == 0 && res.LeftIndent == 0 {
			continue
		}
		if length.Round(res.FirstIndent+res.LeftIndent) != 0 {
			continue
		}
		switch p.kind {
		case paragraph.Table, paragraph.Image:
		case paragraph.Sentence, paragraph.Alignment, paragraph.Section, paragraph.Chapter,
			paragraph.List, paragraph.SystemList:
			d := p.length.Docx
			box := pw - b.cfg.LeftMargin - b.cfg.RightMargin - (d.FirstIndent+d.LeftIndent+d.RightIndent)*cmPerChar
			if strings.Contains(p.plain, "\n") || textwidth.Printed(p.plain)*cmPerChar/2 > box {
				continue
			}
		default:
			continue
		}
		p.length.Extra.FirstIndent -= res.FirstIndent
		p.length.Extra.LeftIndent -= res.LeftIndent
	}
}
