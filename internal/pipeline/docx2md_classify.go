package pipeline

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/antchfx/xmlquery"

	"github.com/alnah/go-makdo/internal/decorator"
	"github.com/alnah/go-makdo/internal/docx"
	"github.com/alnah/go-makdo/internal/length"
	"github.com/alnah/go-makdo/internal/markdown"
	"github.com/alnah/go-makdo/internal/numbering"
	"github.com/alnah/go-makdo/internal/ooxml"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/warning"
)

var (
	exprPStyle    = ooxml.Compile("./w:pPr/w:pStyle")
	exprNumPr     = ooxml.Compile("./w:pPr/w:numPr")
	exprNumID     = ooxml.Compile("./w:numId")
	exprIlvl      = ooxml.Compile("./w:ilvl")
	exprSpacing   = ooxml.Compile("./w:pPr/w:spacing")
	exprInd       = ooxml.Compile("./w:pPr/w:ind")
	exprBorderTop = ooxml.Compile("./w:pPr/w:pBdr/w:top")
	exprBorderBot = ooxml.Compile("./w:pPr/w:pBdr/w:bottom")
	exprTblInd    = ooxml.Compile("./w:tblPr/w:tblInd")
	exprGridCol   = ooxml.Compile("./w:tblGrid/w:gridCol")
	exprRows      = ooxml.Compile("./w:tr")
	exprCells     = ooxml.Compile("./w:tc")
	exprCellParas = ooxml.Compile(".//w:p")
	exprSdtBlocks = ooxml.Compile("./w:sdtContent/*")
)

// Border sides of a horizontal line paragraph.
const (
	borderNone = iota
	borderTop
	borderBottom
)

// docxCell is one table cell.
type docxCell struct {
	content docxText
	align   paragraph.Align
}

// docxParagraph is one body block on its way to Markdown.
type docxParagraph struct {
	node   *xmlquery.Node
	number int // position in the body, from 1
	kind   paragraph.Kind
	r      warning.Reporter

	style   string // style name
	align   paragraph.Align
	numID   string
	ilvl    int
	list    bool // numPr or a list style
	border  int
	content docxText
	plain   string
	native  length.Native

	cells [][]docxCell
	grid  []float64 // column widths in twentieths of a point

	depths   paragraph.Depths
	articles int // article counter before this paragraph's heading
	length   length.Layers
	// setter is the depth declared before the paragraph, 0 for none.
	// setterSpace is a space before written ahead of the setter.
	setter      int
	setterSpace float64

	// head is the Markdown heading or list marker that replaces the
	// visible number, and body the text after that number.
	head  string
	body  docxText
	title bool

	md markdown.Paragraph
}

// isBlank reports a paragraph with no visible content.
func (p *docxParagraph) isBlank() bool {
	if p.node == nil || !ooxml.Is(p.node, "w:p") {
		return false
	}
	c := p.content
	if len(c.images) > 0 || c.pagebreak || c.rule || p.border != borderNone {
		return false
	}
	return strings.TrimFunc(p.plain, unicode.IsSpace) == ""
}

func (p *docxParagraph) isParagraph() bool { return p.node != nil && ooxml.Is(p.node, "w:p") }

// docxRules classifies body blocks. Empty and Breakdown have no docx
// form; an empty w:p is Blank.
func (b *docxBuilder) docxRules() paragraph.Rules[*docxParagraph] {
	return paragraph.Rules[*docxParagraph]{
		paragraph.Blank: (*docxParagraph).isBlank,
		paragraph.Chapter: func(p *docxParagraph) bool {
			if !p.isParagraph() {
				return false
			}
			_, _, ok := numbering.ParseChapter(p.plain)
			return ok
		},
		paragraph.Section: func(p *docxParagraph) bool {
			if !p.isParagraph() {
				return false
			}
			if _, _, ok := numbering.ParseSection(p.plain); ok {
				return true
			}
			return b.isTitle(p)
		},
		paragraph.SystemList: func(p *docxParagraph) bool { return p.isParagraph() && p.list },
		paragraph.List: func(p *docxParagraph) bool {
			if !p.isParagraph() {
				return false
			}
			_, _, _, _, ok := numbering.ParseList(p.plain)
			return ok
		},
		paragraph.Table: func(p *docxParagraph) bool { return p.node != nil && ooxml.Is(p.node, "w:tbl") },
		paragraph.Image: func(p *docxParagraph) bool {
			return p.isParagraph() && len(p.content.images) > 0 && strings.TrimSpace(p.plain) == ""
		},
		paragraph.Alignment: func(p *docxParagraph) bool {
			if !p.isParagraph() {
				return false
			}
			switch p.align {
			case paragraph.AlignLeft, paragraph.AlignCenter, paragraph.AlignRight:
				return true
			}
			return false
		},
		paragraph.Preformatted: func(p *docxParagraph) bool { return p.isParagraph() && p.style == "makdo-g" },
		paragraph.HorizontalLine: func(p *docxParagraph) bool {
			return p.isParagraph() && (p.border != borderNone || p.content.rule)
		},
		paragraph.Pagebreak: func(p *docxParagraph) bool {
			return p.isParagraph() && p.content.pagebreak && strings.TrimSpace(p.plain) == ""
		},
		paragraph.Configuration: func(p *docxParagraph) bool { return p.node != nil && ooxml.Is(p.node, "w:sectPr") },
	}
}

// isTitle reports a centered paragraph set entirely in the largest size.
func (b *docxBuilder) isTitle(p *docxParagraph) bool {
	if p.align != paragraph.AlignCenter || strings.TrimSpace(p.plain) == "" {
		return false
	}
	size, ok := p.content.uniformSize(b.cfg.FontSize)
	return ok && size == decorator.SizeXL
}

// read fills the block properties the rules and the length layers need.
func (b *docxBuilder) read(p *docxParagraph) {
	n := p.node
	switch {
	case ooxml.Is(n, "w:p"):
		id := ooxml.Attr(n, exprPStyle, "w:val")
		p.style = id
		if name, ok := b.styles[id]; ok && name != "" {
			p.style = name
		}
		p.align = alignOf(ooxml.Attr(n, exprJc, "w:val"))
		if numPr := ooxml.One(n, exprNumPr); numPr != nil {
			p.numID = ooxml.Attr(numPr, exprNumID, "w:val")
			if v, ok := ooxml.Float(numPr, exprIlvl, "w:val"); ok {
				p.ilvl = int(v)
			}
			p.list = p.numID != "" && p.numID != "0"
		}
		if strings.HasPrefix(p.style, "List Bullet") || strings.HasPrefix(p.style, "List Number") {
			p.list = true
			p.ilvl = listStyleLevel(p.style)
		}
		if visible(ooxml.One(n, exprBorderBot)) {
			p.border = borderBottom
		} else if visible(ooxml.One(n, exprBorderTop)) {
			p.border = borderTop
		}
		rw := newRunWalker(b.docxReader, docx.PartDocument, false)
		rw.walk(n)
		p.content = rw.result()
		p.plain = p.content.plain()
		p.native = nativeOf(n)
	case ooxml.Is(n, "w:tbl"):
		b.readTable(p)
	}
}

// listStyleLevel reads the level of "List Bullet 2" and the like.
func listStyleLevel(style string) int {
	f := strings.Fields(style)
	if len(f) < 3 {
		return 0
	}
	switch f[2] {
	case "2":
		return 1
	case "3":
		return 2
	case "4", "5":
		return 3
	}
	return 0
}

func visible(border *xmlquery.Node) bool {
	if border == nil {
		return false
	}
	switch border.SelectAttr("w:val") {
	case "", "none", "nil":
		return false
	}
	return true
}

// nativeOf reads the paragraph geometry. A line height is taken only
// when it is a fixed height; automatic spacing is a multiple of the
// font and leaves the line spacing alone.
func nativeOf(n *xmlquery.Node) length.Native {
	var nt length.Native
	num := func(e ooxml.Expr, names ...string) float64 {
		for _, name := range names {
			if v, ok := ooxml.Float(n, e, name); ok {
				return v
			}
		}
		return 0
	}
	nt.Before = num(exprSpacing, "w:before")
	nt.After = num(exprSpacing, "w:after")
	switch ooxml.Attr(n, exprSpacing, "w:lineRule") {
	case "exact", "atLeast":
		nt.Line = num(exprSpacing, "w:line")
	}
	nt.Left = num(exprInd, "w:left", "w:start")
	nt.Right = num(exprInd, "w:right", "w:end")
	nt.FirstLine = num(exprInd, "w:firstLine")
	nt.Hanging = num(exprInd, "w:hanging")
	return nt
}

// readTable reads the cells, their first alignment and the grid widths.
func (b *docxBuilder) readTable(p *docxParagraph) {
	n := p.node
	if v, ok := ooxml.Float(n, exprTblInd, "w:w"); ok {
		p.native.TableIndent = v
	}
	for _, col := range ooxml.All(n, exprGridCol) {
		w, _ := strconv.ParseFloat(col.SelectAttr("w:w"), 64)
		p.grid = append(p.grid, w)
	}
	for _, tr := range ooxml.All(n, exprRows) {
		var row []docxCell
		for _, tc := range ooxml.All(tr, exprCells) {
			var cell docxCell
			rw := newRunWalker(b.docxReader, docx.PartDocument, false)
			for i, cp := range ooxml.All(tc, exprCellParas) {
				if i > 0 {
					rw.add(docxRun{}, "\n")
				}
				if cell.align == paragraph.AlignNone {
					cell.align = alignOf(ooxml.Attr(cp, exprJc, "w:val"))
				}
				rw.walk(cp)
			}
			cell.content = rw.result()
			row = append(row, cell)
		}
		p.cells = append(p.cells, row)
	}
}
