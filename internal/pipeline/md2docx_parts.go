package pipeline

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-makdo/internal/dateutil"
	"github.com/alnah/go-makdo/internal/decorator"
	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/docx"
	"github.com/alnah/go-makdo/internal/mdtoken"
	"github.com/alnah/go-makdo/internal/numbering"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/table"
	"github.com/alnah/go-makdo/internal/warning"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Namespace declarations of the parts holding paragraphs.
const wordNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
	` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
	` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
	` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
	` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"`

// Header and footer distances from the page edge, in twips.
const edgeDistance = "567"

func cmToTwips(cm float64) string { return twips(cm / 2.54 * 1440) }

// documentPart wraps the body and the section properties.
func documentPart(body string, cfg *document.Config, headerID, footerID string) []byte {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<w:document ` + wordNamespaces + `><w:body>`)
	sb.WriteString(body)
	sb.WriteString("<w:sectPr>")
	if headerID != "" {
		sb.WriteString(`<w:headerReference w:type="default" r:id="` + headerID + `"/>`)
	}
	if footerID != "" {
		sb.WriteString(`<w:footerReference w:type="default" r:id="` + footerID + `"/>`)
	}
	pw, ph := cfg.Paper.Size()
	sb.WriteString(`<w:pgSz w:w="` + cmToTwips(pw) + `" w:h="` + cmToTwips(ph) + `"`)
	if cfg.Paper.Landscape() {
		sb.WriteString(` w:orient="landscape"`)
	}
	sb.WriteString("/>")
	sb.WriteString(`<w:pgMar w:top="` + cmToTwips(cfg.TopMargin) +
		`" w:right="` + cmToTwips(cfg.RightMargin) +
		`" w:bottom="` + cmToTwips(cfg.BottomMargin) +
		`" w:left="` + cmToTwips(cfg.LeftMargin) +
		`" w:header="` + edgeDistance + `" w:footer="` + edgeDistance + `" w:gutter="0"/>`)
	if cfg.LineNumber {
		sb.WriteString(`<w:lnNumType w:countBy="5" w:distance="` + edgeDistance + `" w:restart="newPage"/>`)
	}
	sb.WriteString(`<w:cols w:space="425"/><w:docGrid w:type="lines" w:linePitch="360"/>`)
	sb.WriteString("</w:sectPr></w:body></w:document>")
	return []byte(sb.String())
}

// templatePart renders a header or footer template as its own part. The
// template is read like an alignment paragraph and aligned left when it
// has no colon.
func templatePart(tag, template string, cfg *document.Config, fields bool) []byte {
	raws := mdtoken.Split(mdtoken.Lines(template))
	var body string
	for _, raw := range raws {
		if paragraph.Classify(mdRules, raw) == paragraph.Empty {
			continue
		}
		p := newMDBuilder(cfg, nil).paragraph(raw, paragraph.Alignment)
		if p.align == paragraph.AlignNone {
			p.align = paragraph.AlignLeft
		}
		w := newDocxWriter(cfg, nil, docx.New(), &docx.Rels{}, nil)
		w.sb.WriteString("<w:p>" + w.pPr(props{style: "makdo", jc: p.align}))
		var st decorator.Attrs
		w.runs(decorator.Scan(p.text, &st, decorator.Options{Fields: fields}), cfg.FontSize, textBox{}, p.r)
		w.sb.WriteString("</w:p>")
		body = w.sb.String()
		break
	}
	if body == "" {
		body = "<w:p/>"
	}
	return []byte(xmlHeader + `<w:` + tag + ` ` + wordNamespaces + `>` + body + `</w:` + tag + `>`)
}

func halfPoints(pt float64) string { return twips(pt * 2) }

func fonts(name string) string {
	f := attrEscape(name)
	return `<w:rFonts w:ascii="` + f + `" w:eastAsia="` + f + `" w:hAnsi="` + f + `" w:cs="` + f + `"/>`
}

// stylesPart defines the paragraph styles the body refers to. makdo-1 to
// makdo-6 are never applied; they record the section spacing tables so
// that a conversion back can restore them.
func stylesPart(cfg *document.Config) []byte {
	m := cfg.FontSize
	line := cfg.LineSpacing * m * 20
	var sb strings.Builder
	style := func(id, based, ppr, rpr string) {
		sb.WriteString(`<w:style w:type="paragraph" w:customStyle="1" w:styleId="` + id + `"><w:name w:val="` + id + `"/>`)
		if based != "" {
			sb.WriteString(`<w:basedOn w:val="` + based + `"/>`)
		}
		sb.WriteString(`<w:qFormat/>`)
		if ppr != "" {
			sb.WriteString("<w:pPr>" + ppr + "</w:pPr>")
		}
		if rpr != "" {
			sb.WriteString("<w:rPr>" + rpr + "</w:rPr>")
		}
		sb.WriteString("</w:style>")
	}
	sb.WriteString(xmlHeader)
	sb.WriteString(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	sb.WriteString(`<w:docDefaults><w:rPrDefault><w:rPr>` + fonts(cfg.MinchoFont) +
		`<w:sz w:val="` + halfPoints(m) + `"/><w:szCs w:val="` + halfPoints(m) + `"/>` +
		`<w:lang w:val="en-US" w:eastAsia="ja-JP" w:bidi="ar-SA"/></w:rPr></w:rPrDefault>` +
		`<w:pPrDefault/></w:docDefaults>`)
	sb.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/>` +
		`<w:pPr><w:widowControl w:val="0"/><w:jc w:val="both"/></w:pPr>` +
		`<w:rPr><w:sz w:val="` + halfPoints(m) + `"/></w:rPr></w:style>`)
	sb.WriteString(`<w:style w:type="character" w:default="1" w:styleId="DefaultParagraphFont">` +
		`<w:name w:val="Default Paragraph Font"/><w:uiPriority w:val="1"/><w:semiHidden/></w:style>`)
	autoSpace := ""
	if !cfg.AutoSpace {
		autoSpace = `<w:autoSpaceDE w:val="0"/><w:autoSpaceDN w:val="0"/>`
	}
	style("makdo", "Normal", autoSpace+`<w:spacing w:line="`+twips(line)+`" w:lineRule="exact"/>`,
		fonts(cfg.MinchoFont)+`<w:sz w:val="`+halfPoints(m)+`"/><w:szCs w:val="`+halfPoints(m)+`"/>`)
	style("makdo-g", "makdo", "", fonts(cfg.GothicFont))
	style("makdo-i", "makdo", "", fonts(cfg.IVSFont))
	style("makdo-t", "makdo", `<w:spacing w:line="`+twips(m*1.2*20)+`" w:lineRule="exact"/>`,
		`<w:sz w:val="`+halfPoints(m*table.SmallScale)+`"/>`)
	for i := range document.MaxSpaces {
		var spacing string
		if i < len(cfg.SpaceBefore) {
			spacing += ` w:before="` + twips(cfg.SpaceBefore[i]*line) + `"`
		}
		if i < len(cfg.SpaceAfter) {
			spacing += ` w:after="` + twips(cfg.SpaceAfter[i]*line) + `"`
		}
		ppr := ""
		if spacing != "" {
			ppr = "<w:spacing" + spacing + "/>"
		}
		style("makdo-"+strconv.Itoa(i+1), "Normal", ppr, "")
	}
	style("makdo-h", "makdo", `<w:spacing w:line="0" w:lineRule="exact"/>`, `<w:sz w:val="`+halfPoints(m*0.5)+`"/>`)
	sb.WriteString(`<w:style w:type="table" w:default="1" w:styleId="TableNormal"><w:name w:val="Normal Table"/>` +
		`<w:tblPr><w:tblInd w:w="0" w:type="dxa"/><w:tblCellMar><w:top w:w="0" w:type="dxa"/>` +
		`<w:left w:w="108" w:type="dxa"/><w:bottom w:w="0" w:type="dxa"/><w:right w:w="108" w:type="dxa"/>` +
		`</w:tblCellMar></w:tblPr></w:style>`)
	sb.WriteString(`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:basedOn w:val="TableNormal"/>` +
		`<w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`</w:tblBorders></w:tblPr></w:style>`)
	sb.WriteString("</w:styles>")
	return []byte(sb.String())
}

func settingsPart() []byte {
	return []byte(xmlHeader + `<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:defaultTabStop w:val="840"/><w:characterSpacingControl w:val="doNotCompress"/>` +
		`<w:compat><w:compatSetting w:name="compatibilityMode" w:uri="http://schemas.microsoft.com/office/word" w:val="15"/></w:compat>` +
		`</w:settings>`)
}

func appPart(version string) []byte {
	return []byte(xmlHeader + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
		`<Application>makdo ` + attrEscape(version) + `</Application><DocSecurity>0</DocSecurity></Properties>`)
}

// categories name the document styles in core.xml.
var categories = map[string]string{
	numbering.StyleNormal:   "（普通）",
	numbering.StyleContract: "（契約）",
	numbering.StyleStatute:  "（条文）",
}

// identifier stamps a document with the converter version, a random
// document id and the creation time.
func identifier(version string, id uuid.UUID, now time.Time) string {
	return "makdo(" + version + ");" + id.String() + ";" + dateutil.W3CDTF(now)
}

func corePart(cfg *document.Config, version string, id uuid.UUID, now time.Time) []byte {
	esc := func(s string) string {
		var sb strings.Builder
		_ = xml.EscapeText(&sb, []byte(s))
		return sb.String()
	}
	stamp := dateutil.W3CDTF(now)
	author := "makdo (" + version + ")"
	return []byte(xmlHeader + `<cp:coreProperties` +
		` xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
		` xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:dcmitype="http://purl.org/dc/dcmitype/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + esc(cfg.Title) + `</dc:title>` +
		`<dc:creator>` + esc(author) + `</dc:creator>` +
		`<dc:identifier>` + esc(identifier(version, id, now)) + `</dc:identifier>` +
		`<cp:category>` + categories[cfg.Style] + `</cp:category>` +
		`<cp:lastModifiedBy>` + esc(author) + `</cp:lastModifiedBy>` +
		`<cp:revision>1</cp:revision>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`)
}

// rootRels points the package at the document and its properties.
func rootRels() []byte {
	var r docx.Rels
	r.Add(docx.RelOfficeDocument, docx.PartDocument)
	r.Add(docx.RelCore, docx.PartCore)
	r.Add(docx.RelApp, docx.PartApp)
	return r.Bytes()
}

// configure applies the configuration block that opens the document: the
// leading run of comment lines. Unknown names are skipped; malformed
// values are reported and left at their previous setting.
func configure(cfg *document.Config, lines []mdtoken.Line, w *warning.Collector) {
	for _, l := range lines {
		if !l.HasComment {
			return
		}
		if err := cfg.Apply(l.Comment); err != nil && !isUnknownKey(err) {
			w.Add(l.Number, l.Raw, "%v", err)
		}
	}
}
