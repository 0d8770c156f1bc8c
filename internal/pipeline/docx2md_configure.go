package pipeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/alnah/go-makdo/internal/dateutil"
	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/docx"
	"github.com/alnah/go-makdo/internal/numbering"
	"github.com/alnah/go-makdo/internal/ooxml"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/warning"
)

// twipsPerCM is the rounded factor Word itself uses for page geometry.
const twipsPerCM = 567

var (
	exprPgSz      = ooxml.Compile("./w:pgSz")
	exprPgMar     = ooxml.Compile("./w:pgMar")
	exprLnNumType = ooxml.Compile("./w:lnNumType")
	exprHeaderRef = ooxml.Compile("./w:headerReference")
	exprFooterRef = ooxml.Compile("./w:footerReference")

	exprTitle    = ooxml.Compile("//dc:title")
	exprCategory = ooxml.Compile("//cp:category")
	exprModified = ooxml.Compile("//dcterms:modified")

	exprStyle         = ooxml.Compile("//w:style")
	exprStyleName     = ooxml.Compile("./w:name")
	exprStyleFonts    = ooxml.Compile("./w:rPr/w:rFonts")
	exprStyleSize     = ooxml.Compile("./w:rPr/w:sz")
	exprStyleSpacing  = ooxml.Compile("./w:pPr/w:spacing")
	exprStyleAutoDE   = ooxml.Compile("./w:pPr/w:autoSpaceDE")
	exprStyleAutoDN   = ooxml.Compile("./w:pPr/w:autoSpaceDN")
	exprNum           = ooxml.Compile("//w:num")
	exprAbstractNumID = ooxml.Compile("./w:abstractNumId")
	exprAbstractNum   = ooxml.Compile("//w:abstractNum")
	exprLvl           = ooxml.Compile("./w:lvl")
	exprNumFmt        = ooxml.Compile("./w:numFmt")

	exprParagraphs = ooxml.Compile("//w:p")
	exprJc         = ooxml.Compile("./w:pPr/w:jc")
)

// Plain paragraph texts that decide the document style when core.xml
// does not name one.
var (
	firstArticle = regexp.MustCompile(`^第[1１]+条[\s　]`)
	firstItem    = regexp.MustCompile(`^[1１][\s　]`)
)

// docxReader holds what one import knows about the archive beside the
// body: the configuration discovered so far, the styles, the list
// formats and the media collected from the paragraphs.
type docxReader struct {
	arc  *docx.Archive
	cfg  *document.Config
	rels map[string]docx.Relationship
	w    *warning.Collector

	// styles maps a style id to its name.
	styles map[string]string
	// bullets maps a numId to the bullet flag of each level.
	bullets map[string]map[string]bool

	mediaDir string
	media    *mediaSet
}

func newDocxReader(arc *docx.Archive, cfg *document.Config, mediaDir string, w *warning.Collector) (*docxReader, error) {
	rels, err := arc.Relationships(docx.PartDocumentRels)
	if err != nil {
		return nil, err
	}
	return &docxReader{
		arc:      arc,
		cfg:      cfg,
		rels:     rels,
		w:        w,
		styles:   map[string]string{},
		bullets:  map[string]map[string]bool{},
		mediaDir: mediaDir,
		media:    newMediaSet(),
	}, nil
}

// part parses an optional part. A missing or malformed part reads as
// absent; the latter is reported.
func (r *docxReader) part(name string) *xmlquery.Node {
	data, ok := r.arc.Part(name)
	if !ok {
		return nil
	}
	doc, err := ooxml.Parse(data)
	if err != nil {
		r.w.Add(0, name, "%v", err)
		return nil
	}
	return doc
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// readSection takes the page setup from the body's section properties.
func (r *docxReader) readSection(sect *xmlquery.Node) {
	if sect == nil {
		return
	}
	w, okW := ooxml.Float(sect, exprPgSz, "w:w")
	h, okH := ooxml.Float(sect, exprPgSz, "w:h")
	if okW && okH {
		r.cfg.Paper = document.PaperFromSize(w/twipsPerCM, h/twipsPerCM)
	}
	margins := []struct {
		attr string
		dst  *float64
	}{
		{"w:top", &r.cfg.TopMargin},
		{"w:bottom", &r.cfg.BottomMargin},
		{"w:left", &r.cfg.LeftMargin},
		{"w:right", &r.cfg.RightMargin},
	}
	for _, m := range margins {
		if v, ok := ooxml.Float(sect, exprPgMar, m.attr); ok && v > 0 {
			*m.dst = roundTo(v/twipsPerCM, 1)
		}
	}
	if ooxml.Has(sect, exprLnNumType) {
		r.cfg.LineNumber = true
	}
}

// readCore takes the title, the document style and the modification time
// from the core properties.
func (r *docxReader) readCore() (styled bool) {
	doc := r.part(docx.PartCore)
	if doc == nil {
		return false
	}
	if n := ooxml.One(doc, exprTitle); n != nil {
		r.cfg.Title = strings.TrimSpace(n.InnerText())
	}
	if n := ooxml.One(doc, exprCategory); n != nil {
		for style, category := range categories {
			if strings.Contains(n.InnerText(), category) {
				r.cfg.Style = style
				styled = true
			}
		}
	}
	if n := ooxml.One(doc, exprModified); n != nil {
		t, err := dateutil.ParseW3CDTF(n.InnerText())
		if err != nil {
			r.w.Add(0, docx.PartCore, "%v", err)
		} else {
			r.cfg.OriginalFile = dateutil.Stamp(t)
		}
	}
	return styled
}

// readStyles takes fonts, size, spacing and the section spacing tables
// from the makdo styles, and records every style name for the paragraph
// reader.
func (r *docxReader) readStyles() {
	doc := r.part(docx.PartStyles)
	if doc == nil {
		return
	}
	byName := map[string]*xmlquery.Node{}
	for _, s := range ooxml.All(doc, exprStyle) {
		name := ooxml.Attr(s, exprStyleName, "w:val")
		if id := s.SelectAttr("w:styleId"); id != "" {
			r.styles[id] = name
		}
		if _, seen := byName[name]; !seen {
			byName[name] = s
		}
	}
	if s := byName["makdo"]; s != nil {
		if f := styleFont(s); f != "" {
			r.cfg.MinchoFont = f
		}
		if sz, ok := ooxml.Float(s, exprStyleSize, "w:val"); ok && sz > 0 {
			r.cfg.FontSize = roundTo(sz/2, 1)
		}
		if line, ok := ooxml.Float(s, exprStyleSpacing, "w:line"); ok && line > 0 {
			r.cfg.LineSpacing = roundTo(line/20/r.cfg.FontSize, 2)
		}
		off := func(e ooxml.Expr) bool {
			n := ooxml.One(s, e)
			return n != nil && n.SelectAttr("w:val") == "0"
		}
		r.cfg.AutoSpace = !(off(exprStyleAutoDE) && off(exprStyleAutoDN))
	}
	if s := byName["makdo-g"]; s != nil {
		if f := styleFont(s); f != "" {
			r.cfg.GothicFont = f
		}
	}
	if s := byName["makdo-i"]; s != nil {
		if f := styleFont(s); f != "" {
			r.cfg.IVSFont = f
		}
	}
	line := r.cfg.FontSize * r.cfg.LineSpacing * 20
	var before, after []float64
	found := false
	for i := range document.MaxSpaces {
		var sb, sa float64
		if s := byName["makdo-"+strconv.Itoa(i+1)]; s != nil {
			found = true
			if v, ok := ooxml.Float(s, exprStyleSpacing, "w:before"); ok {
				sb = roundTo(v/line, 2)
			}
			if v, ok := ooxml.Float(s, exprStyleSpacing, "w:after"); ok {
				sa = roundTo(v/line, 2)
			}
		}
		before = append(before, sb)
		after = append(after, sa)
	}
	if found {
		r.cfg.SpaceBefore, r.cfg.SpaceAfter = trimZeros(before), trimZeros(after)
	}
}

// trimZeros drops the trailing zero entries of a spacing table.
func trimZeros(v []float64) []float64 {
	for len(v) > 0 && v[len(v)-1] == 0 {
		v = v[:len(v)-1]
	}
	if len(v) == 0 {
		return nil
	}
	return v
}

func styleFont(s *xmlquery.Node) string {
	n := ooxml.One(s, exprStyleFonts)
	if n == nil {
		return ""
	}
	if f := n.SelectAttr("w:eastAsia"); f != "" {
		return f
	}
	return n.SelectAttr("w:ascii")
}

// readNumbering records which list levels are bullets.
func (r *docxReader) readNumbering() {
	doc := r.part("word/numbering.xml")
	if doc == nil {
		return
	}
	abstract := map[string]map[string]bool{}
	for _, a := range ooxml.All(doc, exprAbstractNum) {
		levels := map[string]bool{}
		for _, lvl := range ooxml.All(a, exprLvl) {
			levels[lvl.SelectAttr("w:ilvl")] = ooxml.Attr(lvl, exprNumFmt, "w:val") == "bullet"
		}
		abstract[a.SelectAttr("w:abstractNumId")] = levels
	}
	for _, n := range ooxml.All(doc, exprNum) {
		if levels, ok := abstract[ooxml.Attr(n, exprAbstractNumID, "w:val")]; ok {
			r.bullets[n.SelectAttr("w:numId")] = levels
		}
	}
}

// templatePartName resolves the header or footer of the section through
// the document relationships, falling back to the conventional name.
func (r *docxReader) templatePartName(sect *xmlquery.Node, ref ooxml.Expr, fallback string) string {
	for _, n := range ooxml.All(sect, ref) {
		if t := n.SelectAttr("w:type"); t != "" && t != "default" {
			continue
		}
		if rel, ok := r.rels[n.SelectAttr("r:id")]; ok {
			return "word/" + strings.TrimPrefix(rel.Target, "/word/")
		}
	}
	return fallback
}

// readTemplate reads a header or footer back into its template: the
// text with n and N for the page fields, wrapped in the alignment
// colons. A missing part yields "".
func (r *docxReader) readTemplate(name string) string {
	doc := r.part(name)
	if doc == nil {
		return ""
	}
	var text string
	align := paragraph.AlignNone
	for _, p := range ooxml.All(doc, exprParagraphs) {
		rw := newRunWalker(r, name, true)
		rw.walk(p)
		if t := rw.result().emit(r.cfg.FontSize, r.mediaDir); strings.TrimSpace(t) != "" {
			text = t
			align = alignOf(ooxml.Attr(p, exprJc, "w:val"))
			break
		}
	}
	switch {
	case text == "":
		return ""
	case align == paragraph.AlignCenter:
		return ": " + text + " :"
	case align == paragraph.AlignRight:
		return text + " :"
	}
	return text
}

func alignOf(jc string) paragraph.Align {
	switch jc {
	case "left", "start":
		return paragraph.AlignLeft
	case "center":
		return paragraph.AlignCenter
	case "right", "end":
		return paragraph.AlignRight
	case "both", "distribute":
		return paragraph.AlignJustify
	}
	return paragraph.AlignNone
}

// detectStyle guesses the document style from the plain paragraph
// texts: articles with numbered paragraphs are a contract, articles alone
// a statute.
func detectStyle(texts []string) string {
	var article, item bool
	for _, t := range texts {
		if firstArticle.MatchString(t) {
			article = true
		}
		if firstItem.MatchString(t) {
			item = true
		}
	}
	switch {
	case article && item:
		return numbering.StyleContract
	case article:
		return numbering.StyleStatute
	}
	return numbering.StyleNormal
}
