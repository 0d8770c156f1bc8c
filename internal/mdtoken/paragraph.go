package mdtoken

import (
	"regexp"
	"strings"

	"github.com/alnah/go-makdo/internal/decorator"
)

// Reviser and symbol patterns of the three numbering banks.
const (
	chapterSymbol  = `\$+(?:-\$+)*`
	sectionSymbol  = `#+(?:-#+)*`
	listSymbol     = `(?:-|\+|[0-9]+\.|[0-9]+\))`
	chapterReviser = chapterSymbol + `=[0-9]+`
	sectionReviser = sectionSymbol + `=[0-9]+`
	listReviser    = `\s*(?:[0-9]+\.|[0-9]+\))=[0-9]+`
	number         = `[-+]?(?:[0-9]+(?:\.[0-9]+)?|\.[0-9]+)`
)

var (
	// atomic lines: a numbering reviser or a numbered heading. Two of the
	// same bank in a row belong to separate paragraphs.
	atomicPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\s*(?:` + chapterReviser + `(?:\s.*)?|` + chapterSymbol + `\s+\S+.*)$`),
		regexp.MustCompile(`^\s*(?:` + sectionReviser + `(?:\s.*)?|` + sectionSymbol + `\s+\S+.*)$`),
		regexp.MustCompile(`^\s*(?:` + listReviser + `(?:\s.*)?|` + listSymbol + `\s+\S+.*)$`),
	}

	chapterReviserHead = regexp.MustCompile(`^\s*(` + chapterReviser + `)\s*(.*)$`)
	sectionReviserHead = regexp.MustCompile(`^\s*(` + sectionReviser + `)\s*(.*)$`)
	listReviserHead    = regexp.MustCompile(`^(` + listReviser + `)\s*(.*)$`)
	lengthReviserHead  = regexp.MustCompile(`^\s*((?:v|V|X|<<|<|>)=` + number + `)\s*(.*)$`)
	horizontalLine     = regexp.MustCompile(`^(?:\s*[-*]\s*){3,}$`)
	symbolWithRevisers = regexp.MustCompile(`^\s*(` + sectionSymbol + `)((?:\s+` + sectionReviser + `)+)\s*$`)
	depthSetter        = regexp.MustCompile(`^#{1,8}$`)
	listStart          = regexp.MustCompile(`^` + listSymbol)
	spaceRun           = regexp.MustCompile(` +`)
)

// RawParagraph is one block of lines with its revisers separated.
type RawParagraph struct {
	Lines []Line

	ChapterRevisers []string // "$$=3"
	SectionRevisers []string // "###-#=2"
	ListRevisers    []string // "  1.=4"
	LengthRevisers  []string // "v=+0.5"
	HeadFont        []string // reading order
	TailFont        []string // reading order

	// DepthSetters are bare "##" paragraphs that move the section context
	// without producing output.
	DepthSetters []string

	// Text is the paragraph text on one line with runs of white space
	// collapsed, as seen by the classifier. A list keeps its indentation.
	Text string
}

// Number returns the number of the first source line.
func (p RawParagraph) Number() int {
	if len(p.Lines) == 0 {
		return 0
	}
	return p.Lines[0].Number
}

// Body joins the line texts as running text.
func (p RawParagraph) Body() string {
	var s string
	for _, l := range p.Lines {
		s = Concatenate(s, l.Text)
	}
	return s
}

// Split groups lines into raw paragraphs. Blank lines end a paragraph,
// except inside a fence opened by "```", and two consecutive atomic lines
// of the same bank are split apart.
func Split(lines []Line) []RawParagraph {
	var out []RawParagraph
	var block []Line
	for _, l := range lines {
		end := l.Raw == ""
		if len(block) > 0 && !end {
			prev := block[len(block)-1].Raw
			for _, re := range atomicPatterns {
				if re.MatchString(prev) && re.MatchString(l.Raw) {
					end = true
					break
				}
			}
		}
		if end {
			if len(block) == 0 {
				if l.Raw != "" {
					block = append(block, l)
				}
				continue
			}
			if strings.HasPrefix(block[0].Raw, "```") {
				if len(block) == 1 || !strings.HasSuffix(block[len(block)-1].Raw, "```") {
					block = append(block, l)
					continue
				}
			}
			out = append(out, newRawParagraph(block))
			block = nil
		}
		if l.Raw != "" {
			block = append(block, l)
		}
	}
	if len(block) > 0 {
		out = append(out, newRawParagraph(block))
	}
	return out
}

func newRawParagraph(lines []Line) RawParagraph {
	p := RawParagraph{Lines: append([]Line(nil), lines...)}
	if !strings.HasPrefix(lines[0].Raw, "```") {
		p.extractHead()
		p.extractTail()
		p.extractSymbolRevisers()
	}
	p.Text = fullText(p.Lines)
	if depthSetter.MatchString(p.Text) {
		p.DepthSetters = []string{p.Text}
		p.Text = ""
	}
	return p
}

// withoutBreak removes a hard break so that revisers at the end of a line
// can be matched; restore puts it back if text remains.
func withoutBreak(l *Line) (restore func()) {
	had := strings.HasSuffix(l.Text, "<br>") &&
		(strings.HasSuffix(l.Spaced, "  ") || strings.HasSuffix(l.Spaced, "\t") || strings.HasSuffix(l.Spaced, "　"))
	if had {
		l.Text = strings.TrimSuffix(l.Text, "<br>")
	}
	return func() {
		if had && l.Text != "" {
			l.Text += "<br>"
		}
	}
}

func (p *RawParagraph) extractHead() {
	for i := range p.Lines {
		l := &p.Lines[i]
		if listReviserHead.MatchString(l.Indent + l.Text) {
			l.Text = l.Indent + l.Text
		}
		restore := withoutBreak(l)
		for l.Text != "" {
			if m := chapterReviserHead.FindStringSubmatch(l.Text); m != nil {
				p.ChapterRevisers = append(p.ChapterRevisers, m[1])
				l.Text = m[2]
			} else if m := sectionReviserHead.FindStringSubmatch(l.Text); m != nil {
				p.SectionRevisers = append(p.SectionRevisers, m[1])
				l.Text = m[2]
			} else if m := listReviserHead.FindStringSubmatch(l.Text); m != nil {
				p.ListRevisers = append(p.ListRevisers, m[1])
				l.Text = m[2]
			} else if m := lengthReviserHead.FindStringSubmatch(l.Text); m != nil {
				p.LengthRevisers = append(p.LengthRevisers, m[1])
				l.Text = m[2]
			} else if f := decorator.HeadMarker(l.Text); f != "" && !horizontalLine.MatchString(l.Text) {
				p.HeadFont = append(p.HeadFont, f)
				l.Text = l.Text[len(f):]
			} else {
				break
			}
		}
		restore()
		if l.Text != "" {
			return
		}
	}
}

func (p *RawParagraph) extractTail() {
	for i := len(p.Lines) - 1; i >= 0; i-- {
		l := &p.Lines[i]
		restore := withoutBreak(l)
		for !horizontalLine.MatchString(l.Text) {
			f := decorator.TailMarker(l.Text)
			if f == "" {
				break
			}
			p.TailFont = append([]string{f}, p.TailFont...)
			l.Text = l.Text[:len(l.Text)-len(f)]
		}
		restore()
		if l.Text != "" {
			return
		}
	}
}

// extractSymbolRevisers handles "# ###=1": a bare section symbol followed
// only by section revisers.
func (p *RawParagraph) extractSymbolRevisers() {
	var parts []string
	for _, l := range p.Lines {
		parts = append(parts, l.Text)
	}
	m := symbolWithRevisers.FindStringSubmatch(strings.Join(parts, " "))
	if m == nil {
		return
	}
	for i := range p.Lines {
		p.Lines[i].Text = ""
	}
	p.Lines[0].Text = m[1]
	p.SectionRevisers = append(p.SectionRevisers, strings.Fields(m[2])...)
}

func fullText(lines []Line) string {
	var parts []string
	for _, l := range lines {
		if l.Text != "" {
			parts = append(parts, l.Text)
		}
	}
	s := strings.ReplaceAll(strings.Join(parts, " "), "\t", " ")
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	if listStart.MatchString(s) {
		for _, l := range lines {
			if listStart.MatchString(l.Text) {
				return l.Indent + s
			}
		}
	}
	return s
}
