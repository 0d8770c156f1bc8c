// Package markdown writes converted paragraphs as Markdown text: reviser
// lines, font markers and prose wrapped at the ideal width.
package markdown

import (
	"strings"
)

// Paragraph is one output paragraph before serialization.
type Paragraph struct {
	Pre  string // written on its own line before the paragraph
	Post string // written on its own line after the paragraph

	NumberingRevisers []string // "$=2", "###=4", "  1.=3"
	LengthRevisers    []string // "v=+0.5"
	HeadFont          []string // reading order
	TailFont          []string // reading order

	Text string
}

// String renders p: numbering revisers on one line, length revisers on
// the next, then the text wrapped in its font revisers. A leading "# " or
// ": " and a trailing " :" stay outside the font revisers.
func (p Paragraph) String() string {
	text := p.Text
	var left, right string
	switch {
	case strings.HasPrefix(text, "# "):
		left, text = "# ", text[2:]
	case strings.HasPrefix(text, ": "):
		left, text = ": ", text[2:]
	}
	if strings.HasSuffix(text, " :") {
		right, text = " :", text[:len(text)-2]
	}

	var sb strings.Builder
	if p.Pre != "" {
		sb.WriteString(p.Pre + "\n")
	}
	if len(p.NumberingRevisers) > 0 {
		sb.WriteString(strings.Join(p.NumberingRevisers, " ") + "\n")
	}
	if len(p.LengthRevisers) > 0 {
		sb.WriteString(strings.Join(p.LengthRevisers, " ") + "\n")
	}
	sb.WriteString(left)
	sb.WriteString(strings.Join(p.HeadFont, ""))
	sb.WriteString(text)
	sb.WriteString(strings.Join(p.TailFont, ""))
	sb.WriteString(right)
	if p.Post != "" {
		sb.WriteString("\n" + p.Post)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// IsZero reports whether p renders as nothing.
func (p Paragraph) IsZero() bool { return p.String() == "" }

// Join writes paragraphs separated by blank lines. Paragraphs rendering
// as nothing are dropped.
func Join(ps []Paragraph) string {
	var sb strings.Builder
	for _, p := range ps {
		s := p.String()
		if s == "" {
			continue
		}
		sb.WriteString(s + "\n\n")
	}
	return sb.String()
}
