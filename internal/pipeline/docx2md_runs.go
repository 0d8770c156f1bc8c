package pipeline

import (
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/alnah/go-makdo/internal/decorator"
	"github.com/alnah/go-makdo/internal/ooxml"
)

// Placeholders stand in the run text for what Emit must not escape. They
// are taken from the last plane of private use, which documents do not
// use for glyphs.
const (
	markDelOpen  = '\U0010FFF0'
	markDelClose = '\U0010FFF1'
	markInsOpen  = '\U0010FFF2'
	markInsClose = '\U0010FFF3'
	markPage     = '\U0010FFF4' // PAGE field
	markPages    = '\U0010FFF5' // NUMPAGES field
	markLetterN  = '\U0010FFF6' // literal n of a template
	markLetterNN = '\U0010FFF7' // literal N of a template
	markImage    = 0x100000     // plus the image index
)

const emuPerCMF = float64(emuPerCM)

var (
	exprRunProps  = ooxml.Compile("./w:rPr")
	exprItalic    = ooxml.Compile("./w:i")
	exprBold      = ooxml.Compile("./w:b")
	exprStrike    = ooxml.Compile("./w:strike")
	exprDStrike   = ooxml.Compile("./w:dstrike")
	exprRFonts    = ooxml.Compile("./w:rFonts")
	exprUnderline = ooxml.Compile("./w:u")
	exprColor     = ooxml.Compile("./w:color")
	exprHighlight = ooxml.Compile("./w:highlight")
	exprSize      = ooxml.Compile("./w:sz")
	exprScale     = ooxml.Compile("./w:w")

	exprBlip    = ooxml.Compile(".//a:blip")
	exprPicName = ooxml.Compile(".//pic:cNvPr")
	exprDocPr   = ooxml.Compile(".//wp:docPr")
	exprExtent  = ooxml.Compile(".//wp:extent")
	exprVMLData = ooxml.Compile(".//v:imagedata")
	exprVMLRect = ooxml.Compile(".//v:rect")
	exprVMLBox  = ooxml.Compile(".//v:shape")
	exprChoice  = ooxml.Compile("./mc:Choice")

	exprSimpleProps = ooxml.Compile("./w:r/w:rPr")
)

var vmlLength = regexp.MustCompile(`(width|height):\s*([0-9.]+)(pt|in|cm|mm|px)?`)

// docxImage is a picture placed in a paragraph.
type docxImage struct {
	name          string  // file name in the media directory
	width, height float64 // cm
}

// docxRun is a run of text with uniform properties. The size is kept in
// points so that it can be read against the base size of the paragraph
// kind once that is known.
type docxRun struct {
	text  string
	attrs decorator.Attrs // Size is unset
	pt    float64         // w:sz in points, 0 when absent
	scale float64         // w:w in percent, 0 when absent
	image int             // 1 + index into the images, 0 for text
}

// docxText is the content of a paragraph or a table cell.
type docxText struct {
	runs      []docxRun
	images    []docxImage
	pagebreak bool
	// rule is set by a VML rectangle drawn as a horizontal line.
	rule bool
}

// plain returns the text without placeholders, fields or deletions.
func (t docxText) plain() string {
	var sb strings.Builder
	del := false
	for _, r := range t.runs {
		if r.image != 0 {
			continue
		}
		for _, c := range r.text {
			switch {
			case c == markDelOpen:
				del = true
			case c == markDelClose:
				del = false
			case c == markLetterN:
				sb.WriteByte('n')
			case c == markLetterNN:
				sb.WriteByte('N')
			case c >= markDelOpen:
			case !del:
				sb.WriteRune(c)
			}
		}
	}
	return sb.String()
}

// uniformSize returns the size every text run shares against base, or
// false when the runs differ or there is no text.
func (t docxText) uniformSize(base float64) (decorator.Size, bool) {
	var size decorator.Size
	seen := false
	for _, r := range t.runs {
		if r.image != 0 || strings.TrimSpace(r.text) == "" {
			continue
		}
		s := sizeOf(r.pt, r.scale, base)
		if seen && s != size {
			return 0, false
		}
		size, seen = s, true
	}
	return size, seen
}

// sizeOf classifies a run size against base. Without a point size the
// character scale is read instead.
func sizeOf(pt, scale, base float64) decorator.Size {
	switch {
	case (pt > 0 && pt < base*0.7) || (pt == 0 && scale > 0 && scale < 70):
		return decorator.SizeXS
	case (pt > 0 && pt < base*0.9) || (pt == 0 && scale > 0 && scale < 90):
		return decorator.SizeS
	case (pt > 0 && pt > base*1.3) || (pt == 0 && scale > 130):
		return decorator.SizeXL
	case (pt > 0 && pt > base*1.1) || (pt == 0 && scale > 110):
		return decorator.SizeL
	}
	return decorator.SizeM
}

var imageSizes = []decorator.Size{decorator.SizeM, decorator.SizeXS, decorator.SizeS, decorator.SizeL, decorator.SizeXL}

// imageSizeOf matches an inline picture against the run sizes: its height
// is the font height of one of them within two percent.
func imageSizeOf(img docxImage, base float64) (decorator.Size, bool) {
	for _, s := range imageSizes {
		want := base * s.Scale() * cmPerPt
		if img.height >= want*0.98 && img.height <= want*1.02 {
			return s, true
		}
	}
	return 0, false
}

// emit renders the text as marked-up Markdown against the base size of
// a medium run. Images are written against dir.
func (t docxText) emit(base float64, dir string) string {
	runs := make([]decorator.Run, 0, len(t.runs))
	explicit := map[int]bool{}
	for _, r := range t.runs {
		a := r.attrs
		if r.image != 0 {
			if s, ok := imageSizeOf(t.images[r.image-1], base); ok {
				a.Size = s
			} else {
				explicit[r.image-1] = true
			}
		} else {
			a.Size = sizeOf(r.pt, r.scale, base)
		}
		runs = append(runs, decorator.Run{Text: r.text, Attrs: a})
	}
	return t.resolve(decorator.Emit(runs), dir, explicit)
}

// resolve replaces the placeholders of an emitted text.
func (t docxText) resolve(s, dir string, explicit map[int]bool) string {
	s = strings.NewReplacer(
		string(markDelClose)+string(markDelOpen), "",
		string(markInsClose)+string(markInsOpen), "",
	).Replace(s)
	var sb strings.Builder
	for _, c := range s {
		switch {
		case c == markDelOpen:
			sb.WriteString("<!--")
		case c == markDelClose:
			sb.WriteString("-->")
		case c == markInsOpen:
			sb.WriteString("<!+>")
		case c == markInsClose:
			sb.WriteString("<+>")
		case c == markPage:
			sb.WriteByte('n')
		case c == markPages:
			sb.WriteByte('N')
		case c == markLetterN:
			sb.WriteString(`\n`)
		case c == markLetterNN:
			sb.WriteString(`\N`)
		case c >= markImage && c < markDelOpen:
			i := int(c - markImage)
			sb.WriteString(imageRef(t.images[i], dir, explicit[i]))
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// imageRef writes an image reference, with its size when no run size
// reproduces it.
func imageRef(img docxImage, dir string, sized bool) string {
	alt := img.name
	if sized {
		alt += ":" + formatCM(img.width) + "x" + formatCM(img.height)
	}
	return "![" + alt + "](" + path.Join(dir, img.name) + ")"
}

// formatCM rounds to one decimal, or two below one centimetre.
func formatCM(v float64) string {
	places := 1
	if math.Abs(v) < 1 {
		places = 2
	}
	s := strconv.FormatFloat(roundTo(v, places), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// runWalker collects the runs of one paragraph in document order.
type runWalker struct {
	r      *docxReader
	source string
	// fields writes page fields as n and N, as in header and footer
	// templates.
	fields bool

	out docxText

	fieldDepth   int
	fieldInstr   strings.Builder
	fieldWritten bool
	ins, del     bool
}

func newRunWalker(r *docxReader, source string, fields bool) *runWalker {
	return &runWalker{r: r, source: source, fields: fields}
}

func (rw *runWalker) result() docxText { return rw.out }

// walk visits the content of a paragraph element.
func (rw *runWalker) walk(n *xmlquery.Node) {
	for _, c := range ooxml.Elements(n) {
		switch {
		case ooxml.Is(c, "w:pPr"), ooxml.Is(c, "w:rPr"), ooxml.Is(c, "mc:Fallback"):
		case ooxml.Is(c, "w:r"):
			rw.run(c)
		case ooxml.Is(c, "w:fldSimple"):
			if rw.fields {
				rw.field(c.SelectAttr("w:instr"), rw.props(ooxml.One(c, exprSimpleProps)))
				continue
			}
			rw.walk(c)
		case ooxml.Is(c, "w:ins"):
			rw.ins = true
			rw.walk(c)
			rw.ins = false
		case ooxml.Is(c, "w:del"), ooxml.Is(c, "w:moveFrom"):
			rw.del = true
			rw.walk(c)
			rw.del = false
		default:
			// w:hyperlink, w:smartTag, w:sdt, w:customXml and the like
			// only wrap runs.
			rw.walk(c)
		}
	}
}

// props reads run properties.
func (rw *runWalker) props(rpr *xmlquery.Node) docxRun {
	var run docxRun
	if rpr == nil {
		return run
	}
	a := &run.attrs
	a.Italic = ooxml.Toggle(rpr, exprItalic)
	a.Bold = ooxml.Toggle(rpr, exprBold)
	a.Strike = ooxml.Toggle(rpr, exprStrike) || ooxml.Toggle(rpr, exprDStrike)
	if f := ooxml.One(rpr, exprRFonts); f != nil {
		font := f.SelectAttr("w:eastAsia")
		if font == "" {
			font = f.SelectAttr("w:ascii")
		}
		cfg := rw.r.cfg
		switch font {
		case "", cfg.MinchoFont, cfg.IVSFont:
		case cfg.GothicFont:
			a.Mono = true
		default:
			a.Font = font
		}
	}
	if u := ooxml.One(rpr, exprUnderline); u != nil {
		switch v := u.SelectAttr("w:val"); v {
		case "none":
		case "":
			a.Underline = "single"
		default:
			a.Underline = v
		}
	}
	if c := strings.ToUpper(ooxml.Attr(rpr, exprColor, "w:val")); len(c) == 6 && c != "AUTO" {
		a.Color = c
	}
	if h := ooxml.Attr(rpr, exprHighlight, "w:val"); h != "none" {
		if _, ok := decorator.Highlight[h]; ok {
			a.Highlight = h
		}
	}
	if sz, ok := ooxml.Float(rpr, exprSize, "w:val"); ok {
		run.pt = sz / 2
	}
	if w, ok := ooxml.Float(rpr, exprScale, "w:val"); ok {
		run.scale = w
	}
	return run
}

// add appends text with the properties of base, wrapped in the track
// change placeholders that are open.
func (rw *runWalker) add(base docxRun, text string) {
	if text == "" {
		return
	}
	if rw.fields {
		text = strings.NewReplacer("n", string(markLetterN), "N", string(markLetterNN)).Replace(text)
	}
	switch {
	case rw.del:
		text = string(markDelOpen) + text + string(markDelClose)
	case rw.ins:
		text = string(markInsOpen) + text + string(markInsClose)
	}
	base.text = text
	rw.out.runs = append(rw.out.runs, base)
}

// run reads one w:r.
func (rw *runWalker) run(n *xmlquery.Node) {
	base := rw.props(ooxml.One(n, exprRunProps))
	rw.content(n, base)
}

func (rw *runWalker) content(n *xmlquery.Node, base docxRun) {
	for _, c := range ooxml.Elements(n) {
		switch {
		case ooxml.Is(c, "w:rPr"):
		case ooxml.Is(c, "w:t"), ooxml.Is(c, "w:delText"):
			if rw.fields && rw.fieldDepth > 0 {
				continue
			}
			rw.add(base, c.InnerText())
		case ooxml.Is(c, "w:br"), ooxml.Is(c, "w:cr"):
			switch c.SelectAttr("w:type") {
			case "page":
				rw.out.pagebreak = true
			case "", "textWrapping":
				rw.add(base, "\n")
			}
		case ooxml.Is(c, "w:fldChar"):
			rw.fieldChar(c.SelectAttr("w:fldCharType"), base)
		case ooxml.Is(c, "w:instrText"):
			if rw.fieldDepth > 0 {
				rw.fieldInstr.WriteString(c.InnerText())
			}
		case ooxml.Is(c, "w:drawing"):
			rw.drawing(c, base)
		case ooxml.Is(c, "w:pict"), ooxml.Is(c, "w:object"):
			rw.pict(c, base)
		case ooxml.Is(c, "mc:AlternateContent"):
			if choice := ooxml.One(c, exprChoice); choice != nil {
				rw.content(choice, base)
			}
		}
	}
}

// fieldChar advances the complex field state. Only template walks write
// anything for a field; elsewhere the displayed result is kept as text.
func (rw *runWalker) fieldChar(kind string, base docxRun) {
	switch kind {
	case "begin":
		rw.fieldDepth++
		rw.fieldInstr.Reset()
		rw.fieldWritten = false
	case "separate":
		if rw.fields && !rw.fieldWritten {
			rw.field(rw.fieldInstr.String(), base)
			rw.fieldWritten = true
		}
	case "end":
		if rw.fields && !rw.fieldWritten {
			rw.field(rw.fieldInstr.String(), base)
		}
		rw.fieldWritten = false
		rw.fieldDepth = max(0, rw.fieldDepth-1)
	}
}

// field writes a page field of a template.
func (rw *runWalker) field(instr string, base docxRun) {
	words := strings.Fields(instr)
	if len(words) == 0 {
		return
	}
	var mark rune
	switch strings.ToUpper(words[0]) {
	case "PAGE":
		mark = markPage
	case "NUMPAGES", "SECTIONPAGES":
		mark = markPages
	default:
		return
	}
	base.text = string(mark)
	rw.out.runs = append(rw.out.runs, base)
}

// drawing reads a DrawingML picture.
func (rw *runWalker) drawing(n *xmlquery.Node, base docxRun) {
	rid := ooxml.Attr(n, exprBlip, "r:embed")
	if rid == "" {
		return
	}
	hint := ooxml.Attr(n, exprPicName, "name")
	if hint == "" {
		hint = ooxml.Attr(n, exprDocPr, "name")
	}
	cx, _ := ooxml.Float(n, exprExtent, "cx")
	cy, _ := ooxml.Float(n, exprExtent, "cy")
	rw.image(rid, hint, cx/emuPerCMF, cy/emuPerCMF, base)
}

// pict reads a VML picture, or the rectangle older documents draw as a
// horizontal line.
func (rw *runWalker) pict(n *xmlquery.Node, base docxRun) {
	if rect := ooxml.One(n, exprVMLRect); rect != nil {
		style := strings.ReplaceAll(rect.SelectAttr("style"), " ", "")
		if strings.Contains(style, "width:0;height:1.5pt") || rect.SelectAttr("o:hr") == "t" {
			rw.out.rule = true
			return
		}
	}
	data := ooxml.One(n, exprVMLData)
	if data == nil {
		return
	}
	var w, h float64
	if shape := ooxml.One(n, exprVMLBox); shape != nil {
		for _, m := range vmlLength.FindAllStringSubmatch(shape.SelectAttr("style"), -1) {
			v, _ := strconv.ParseFloat(m[2], 64)
			switch m[3] {
			case "", "pt":
				v *= cmPerPt
			case "in":
				v *= 2.54
			case "mm":
				v /= 10
			case "px":
				v *= 0.75 * cmPerPt
			}
			if m[1] == "width" {
				w = v
			} else {
				h = v
			}
		}
	}
	rw.image(data.SelectAttr("r:id"), data.SelectAttr("o:title"), w, h, base)
}

func (rw *runWalker) image(rid, hint string, w, h float64, base docxRun) {
	rel, ok := rw.r.rels[rid]
	if !ok {
		rw.r.w.Add(0, rw.source, "image relationship %q not found", rid)
		return
	}
	target := "word/" + strings.TrimPrefix(rel.Target, "/word/")
	name := rw.r.media.name(target, hint)
	rw.out.images = append(rw.out.images, docxImage{name: name, width: w, height: h})
	base.text = string(rune(markImage + len(rw.out.images) - 1))
	base.image = len(rw.out.images)
	rw.out.runs = append(rw.out.runs, base)
}

// mediaSet names the pictures of one import. Each archive part gets one
// file name, unique within the media directory.
type mediaSet struct {
	names map[string]string // archive part to file name
	taken map[string]bool
	order []string // archive parts in naming order
}

func newMediaSet() *mediaSet {
	return &mediaSet{names: map[string]string{}, taken: map[string]bool{}}
}

var unsafeName = regexp.MustCompile(`[\s\[\]\(\)/\\]`)

// name returns the file name of target, deriving a new one from hint.
func (m *mediaSet) name(target, hint string) string {
	if n, ok := m.names[target]; ok {
		return n
	}
	ext := path.Ext(target)
	stem := strings.TrimSuffix(hint, path.Ext(hint))
	if stem == "" {
		stem = strings.TrimSuffix(path.Base(target), ext)
	}
	stem = unsafeName.ReplaceAllString(stem, "_")
	n := stem + ext
	for i := 1; m.taken[n]; i++ {
		n = stem + strconv.Itoa(i) + ext
	}
	m.names[target] = n
	m.taken[n] = true
	m.order = append(m.order, target)
	return n
}
