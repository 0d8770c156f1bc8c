package pipeline

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/alnah/go-makdo/internal/decorator"
	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/docx"
	"github.com/alnah/go-makdo/internal/length"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/table"
	"github.com/alnah/go-makdo/internal/warning"
)

// ErrImageUnavailable is recorded, never returned, when an image cannot be
// embedded.
var ErrImageUnavailable = errors.New("image unavailable")

// Units of DrawingML extents.
const (
	emuPerCM = 360000
	cmPerPt  = 2.54 / 72
)

// imageSize reads ":WxH" at the end of an alt text. Negative values are
// fractions of the text box.
var imageSize = regexp.MustCompile(`^(.*):([-+]?(?:[0-9]+(?:\.[0-9]+)?|\.[0-9]+))?(?:x([-+]?(?:[0-9]+(?:\.[0-9]+)?|\.[0-9]+))?)?$`)

// picture is an image embedded in the archive.
type picture struct {
	rid           string
	name          string
	width, height int // pixels
}

// docxWriter renders paragraphs as WordprocessingML. The font state is
// carried from one paragraph to the next like the Markdown markers.
type docxWriter struct {
	cfg    *document.Config
	m      length.Metrics
	images fs.FS
	arc    *docx.Archive
	rels   *docx.Rels
	w      *warning.Collector

	state    decorator.Attrs
	pictures map[string]picture
	drawings int
	sb       strings.Builder
}

func newDocxWriter(cfg *document.Config, images fs.FS, arc *docx.Archive, rels *docx.Rels, w *warning.Collector) *docxWriter {
	return &docxWriter{
		cfg:      cfg,
		m:        cfg.Metrics(),
		images:   images,
		arc:      arc,
		rels:     rels,
		w:        w,
		pictures: map[string]picture{},
	}
}

// props are the paragraph properties the writer emits.
type props struct {
	style  string
	noWrap bool // break lines inside words
	border bool // bottom border of a horizontal line
	jc     paragraph.Align
	native length.Native
	exact  bool // write w:line as an exact height
}

func twips(v float64) string { return strconv.Itoa(int(math.Round(v))) }

func (w *docxWriter) pPr(pr props) string {
	var sb strings.Builder
	sb.WriteString("<w:pPr>")
	if pr.style != "" {
		sb.WriteString(`<w:pStyle w:val="` + pr.style + `"/>`)
	}
	sb.WriteString(`<w:widowControl w:val="0"/>`)
	if pr.border {
		sb.WriteString(`<w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr>`)
	}
	if pr.noWrap {
		sb.WriteString(`<w:wordWrap w:val="0"/>`)
	}
	if !w.cfg.AutoSpace {
		sb.WriteString(`<w:autoSpaceDE w:val="0"/><w:autoSpaceDN w:val="0"/>`)
	}
	n := pr.native
	sb.WriteString(`<w:spacing w:before="` + twips(n.Before) + `" w:after="` + twips(n.After) + `"`)
	if pr.exact {
		sb.WriteString(` w:line="` + twips(n.Line) + `" w:lineRule="exact"`)
	}
	sb.WriteString("/>")
	if n.FirstLine != 0 || n.Hanging != 0 || n.Left != 0 || n.Right != 0 {
		sb.WriteString("<w:ind")
		if n.Left != 0 {
			sb.WriteString(` w:left="` + twips(n.Left) + `"`)
		}
		if n.Right != 0 {
			sb.WriteString(` w:right="` + twips(n.Right) + `"`)
		}
		if n.Hanging != 0 {
			sb.WriteString(` w:hanging="` + twips(n.Hanging) + `"`)
		} else if n.FirstLine != 0 {
			sb.WriteString(` w:firstLine="` + twips(n.FirstLine) + `"`)
		}
		sb.WriteString("/>")
	}
	if pr.jc != paragraph.AlignNone {
		sb.WriteString(`<w:jc w:val="` + pr.jc.String() + `"/>`)
	}
	sb.WriteString("</w:pPr>")
	return sb.String()
}

// write renders one paragraph into the body.
func (w *docxWriter) write(p *mdParagraph) {
	switch p.kind {
	case paragraph.Table:
		w.table(p)
	case paragraph.Image:
		w.imageParagraph(p)
	case paragraph.Pagebreak:
		w.sb.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
	case paragraph.HorizontalLine:
		n := w.m.ExportRule(p.length.Total())
		w.sb.WriteString("<w:p>" + w.pPr(props{style: "makdo-h", border: true, native: n, exact: true}) + "</w:p>")
	case paragraph.Preformatted:
		w.preformatted(p)
	default:
		w.text(p)
	}
}

func (w *docxWriter) text(p *mdParagraph) {
	if p.text == "" {
		return
	}
	pr := props{style: "makdo", jc: p.align, native: w.m.ToNative(p.docx, p.r), exact: true}
	if p.kind == paragraph.Alignment {
		pr.noWrap = true
	}
	if pr.jc == paragraph.AlignNone {
		switch {
		case p.kind == paragraph.Section && len(p.lines) > 0 && strings.TrimSpace(afterHead(p.lines[0])) == "":
			pr.jc = paragraph.AlignJustify
		case p.kind == paragraph.Sentence && !strings.Contains(p.text, "\n"):
			pr.jc = paragraph.AlignJustify
		}
	}
	base := w.cfg.FontSize
	if p.kind == paragraph.Section && p.depths.Tail == 1 {
		base *= decorator.SizeXL.Scale()
	}
	w.sb.WriteString("<w:p>" + w.pPr(pr))
	w.runs(decorator.Scan(p.text, &w.state, decorator.Options{}), base, textBox{w.boxWidth(p.docx), w.boxHeight()}, p.r)
	w.sb.WriteString("</w:p>")
}

// afterHead drops the leading number of a heading line.
func afterHead(line string) string {
	i := strings.IndexFunc(line, isSpaceRune)
	if i < 0 {
		return ""
	}
	return line[i:]
}

func isSpaceRune(r rune) bool { return r == ' ' || r == '\t' || r == '　' }

func (w *docxWriter) preformatted(p *mdParagraph) {
	pr := props{style: "makdo-g", native: w.m.ToNative(p.docx, p.r), exact: true}
	w.sb.WriteString("<w:p>" + w.pPr(pr))
	lines := p.lines
	if p.info != "" {
		lines = append([]string{"[" + p.info + "]"}, lines...)
	}
	for i, l := range lines {
		if i > 0 {
			w.sb.WriteString("<w:r><w:br/></w:r>")
		}
		if l != "" {
			w.sb.WriteString("<w:r>" + textElement(l) + "</w:r>")
		}
	}
	w.sb.WriteString("</w:p>")
}

func textElement(s string) string {
	var sb strings.Builder
	sb.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(&sb, []byte(s))
	sb.WriteString("</w:t>")
	return sb.String()
}

// textBox is the space an image may fill, in cm.
type textBox struct{ width, height float64 }

// boxWidth is the text width left by the margins and the paragraph
// indents.
func (w *docxWriter) boxWidth(a length.Attrs) float64 {
	pw, _ := w.cfg.Paper.Size()
	indent := a.FirstIndent + a.LeftIndent + a.RightIndent
	return pw - w.cfg.LeftMargin - w.cfg.RightMargin - indent*w.cfg.FontSize*cmPerPt
}

func (w *docxWriter) boxHeight() float64 {
	_, ph := w.cfg.Paper.Size()
	return ph - w.cfg.TopMargin - w.cfg.BottomMargin
}

// runs writes scanned segments. base is the font size of a medium run.
func (w *docxWriter) runs(segs []decorator.Segment, base float64, box textBox, r warning.Reporter) {
	for _, s := range segs {
		switch s.Kind {
		case decorator.Text:
			w.sb.WriteString("<w:r>" + w.rPr(s, base) + textElement(s.Text) + "</w:r>")
		case decorator.Break:
			w.sb.WriteString("<w:r><w:br/></w:r>")
		case decorator.Field:
			rpr := w.rPr(s, base)
			w.sb.WriteString(`<w:r>` + rpr + `<w:fldChar w:fldCharType="begin"/></w:r>`)
			w.sb.WriteString(`<w:r>` + rpr + `<w:instrText xml:space="preserve">` + s.Text + `</w:instrText></w:r>`)
			w.sb.WriteString(`<w:r>` + rpr + `<w:fldChar w:fldCharType="end"/></w:r>`)
		case decorator.Image:
			height := base * s.Attrs.Size.Scale()
			d, err := w.drawing(s.Alt, s.Path, height, box)
			if err != nil {
				r.Warn("can't open %q", s.Path)
				s.Text = "![" + s.Alt + "](" + s.Path + ")"
				w.sb.WriteString("<w:r>" + w.rPr(s, base) + textElement(s.Text) + "</w:r>")
				continue
			}
			w.sb.WriteString("<w:r>" + w.rPr(s, base) + d + "</w:r>")
		}
	}
}

// rPr renders the run properties of s. Properties equal to the paragraph
// style are left out.
func (w *docxWriter) rPr(s decorator.Segment, base float64) string {
	a := s.Attrs
	var sb strings.Builder
	font := ""
	switch {
	case s.IVS:
		font = w.cfg.IVSFont
	case a.Font != "":
		font = a.Font
	case a.Mono:
		font = w.cfg.GothicFont
	}
	if font != "" {
		f := attrEscape(font)
		sb.WriteString(`<w:rFonts w:ascii="` + f + `" w:eastAsia="` + f + `" w:hAnsi="` + f + `"/>`)
	}
	if a.Bold {
		sb.WriteString("<w:b/>")
	}
	if a.Italic {
		sb.WriteString("<w:i/>")
	}
	if a.Strike {
		sb.WriteString("<w:strike/>")
	}
	if a.Color != "" {
		sb.WriteString(`<w:color w:val="` + a.Color + `"/>`)
	}
	if size := base * a.Size.Scale(); size != w.cfg.FontSize {
		hp := strconv.Itoa(int(math.Round(size * 2)))
		sb.WriteString(`<w:sz w:val="` + hp + `"/><w:szCs w:val="` + hp + `"/>`)
	}
	if a.Highlight != "" {
		sb.WriteString(`<w:highlight w:val="` + a.Highlight + `"/>`)
	}
	if a.Underline != "" {
		sb.WriteString(`<w:u w:val="` + a.Underline + `"/>`)
	}
	if sb.Len() == 0 {
		return ""
	}
	return "<w:rPr>" + sb.String() + "</w:rPr>"
}

func attrEscape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// load embeds the image at p once and returns it.
func (w *docxWriter) load(p string) (picture, error) {
	if pic, ok := w.pictures[p]; ok {
		return pic, nil
	}
	name := strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, `\`, "/")), "./")
	if w.images == nil || !fs.ValidPath(name) {
		return picture{}, fmt.Errorf("%w: %s", ErrImageUnavailable, p)
	}
	ext := strings.ToLower(path.Ext(name))
	if _, ok := docx.MediaTypes[ext]; !ok {
		return picture{}, fmt.Errorf("%w: %s: unsupported type", ErrImageUnavailable, p)
	}
	data, err := fs.ReadFile(w.images, name)
	if err != nil {
		return picture{}, fmt.Errorf("%w: %w", ErrImageUnavailable, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return picture{}, fmt.Errorf("%w: %s: undecodable", ErrImageUnavailable, p)
	}
	target := "media/image" + strconv.Itoa(len(w.pictures)+1) + ext
	w.arc.Set("word/"+target, data)
	pic := picture{
		rid:    w.rels.Add(docx.RelImage, target),
		name:   path.Base(name),
		width:  cfg.Width,
		height: cfg.Height,
	}
	w.pictures[p] = pic
	return pic, nil
}

// extent computes the displayed size in cm. height is the default height
// in points, or 0 for the natural size at 72 dpi.
func extent(alt string, pic picture, height float64, box textBox) (cw, ch float64) {
	if m := imageSize.FindStringSubmatch(alt); m != nil {
		if m[2] != "" {
			cw, _ = strconv.ParseFloat(m[2], 64)
			if cw < 0 {
				cw = box.width * -cw
			}
		}
		if m[3] != "" {
			ch, _ = strconv.ParseFloat(m[3], 64)
			if ch < 0 {
				ch = box.height * -ch
			}
		}
	}
	ratio := float64(pic.height) / float64(pic.width)
	switch {
	case cw > 0 && ch > 0:
	case cw > 0:
		ch = cw * ratio
	case ch > 0:
		cw = ch / ratio
	case height > 0:
		ch = height * cmPerPt
		cw = ch / ratio
	default:
		cw = float64(pic.width) * cmPerPt
		ch = float64(pic.height) * cmPerPt
	}
	return cw, ch
}

// drawing renders an inline picture.
func (w *docxWriter) drawing(alt, p string, height float64, box textBox) (string, error) {
	pic, err := w.load(p)
	if err != nil {
		return "", err
	}
	cw, ch := extent(alt, pic, height, box)
	cx := strconv.FormatInt(int64(math.Round(cw*emuPerCM)), 10)
	cy := strconv.FormatInt(int64(math.Round(ch*emuPerCM)), 10)
	w.drawings++
	id := strconv.Itoa(w.drawings)
	descr := alt
	if m := imageSize.FindStringSubmatch(alt); m != nil {
		descr = m[1]
	}
	return `<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">` +
		`<wp:extent cx="` + cx + `" cy="` + cy + `"/>` +
		`<wp:docPr id="` + id + `" name="Picture ` + id + `" descr="` + attrEscape(descr) + `"/>` +
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>` +
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="0" name="` + attrEscape(pic.name) + `"/><pic:cNvPicPr/></pic:nvPicPr>` +
		`<pic:blipFill><a:blip r:embed="` + pic.rid + `"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>` +
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="` + cx + `" cy="` + cy + `"/></a:xfrm>` +
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic>` +
		`</a:graphicData></a:graphic></wp:inline></w:drawing>`, nil
}

// imageParagraph writes the images of an image paragraph centered, one
// per line, at their natural or requested size.
func (w *docxWriter) imageParagraph(p *mdParagraph) {
	pr := props{style: "makdo", jc: paragraph.AlignCenter, native: w.m.ToNative(p.docx, p.r)}
	w.sb.WriteString("<w:p>" + w.pPr(pr))
	box := textBox{w.boxWidth(length.Attrs{}), w.boxHeight()}
	first := true
	for _, s := range decorator.Scan(p.text, &w.state, decorator.Options{}) {
		if s.Kind != decorator.Image {
			continue
		}
		if !first {
			w.sb.WriteString("<w:r><w:br/></w:r>")
		}
		first = false
		d, err := w.drawing(s.Alt, s.Path, 0, box)
		if err != nil {
			p.r.Warn("can't open %q", s.Path)
			w.sb.WriteString("<w:r>" + textElement("!["+s.Alt+"]("+s.Path+")") + "</w:r>")
			continue
		}
		w.sb.WriteString("<w:r>" + d + "</w:r>")
	}
	w.sb.WriteString("</w:p>")
}

// table writes a pipe table as a centered grid with one body-less
// paragraph per cell.
func (w *docxWriter) table(p *mdParagraph) {
	g := table.Parse(p.lines)
	if g.Columns() == 0 {
		return
	}
	small := w.cfg.FontSize * table.SmallScale
	w.sb.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="0" w:type="auto"/>` +
		`<w:jc w:val="center"/><w:tblLook w:val="04A0"/></w:tblPr><w:tblGrid>`)
	widths := make([]string, g.Columns())
	for j := range widths {
		widths[j] = twips(g.ColumnWidth(j, w.cfg.FontSize) * 20)
		w.sb.WriteString(`<w:gridCol w:w="` + widths[j] + `"/>`)
	}
	w.sb.WriteString("</w:tblGrid>")
	line := w.cfg.FontSize * 1.2 * 20
	for i := range g.Rows {
		w.sb.WriteString("<w:tr>")
		for j := range g.Columns() {
			w.sb.WriteString(`<w:tc><w:tcPr><w:tcW w:w="` + widths[j] + `" w:type="dxa"/><w:vAlign w:val="center"/></w:tcPr><w:p>`)
			pr := props{style: "makdo-t", noWrap: true, jc: g.CellAlign(i, j), native: length.Native{Line: line}, exact: true}
			w.sb.WriteString(w.pPr(pr))
			segs := decorator.Scan(g.CellText(i, j), &w.state, decorator.Options{})
			w.runs(segs, small, textBox{g.ColumnWidth(j, w.cfg.FontSize) * cmPerPt, w.boxHeight()}, p.r)
			w.sb.WriteString("</w:p></w:tc>")
		}
		w.sb.WriteString("</w:tr>")
	}
	w.sb.WriteString("</w:tbl>")
}
