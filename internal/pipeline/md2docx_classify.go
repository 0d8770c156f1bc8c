package pipeline

import (
	"regexp"
	"strings"

	"github.com/alnah/go-makdo/internal/mdtoken"
	"github.com/alnah/go-makdo/internal/paragraph"
)

// Features of Markdown paragraphs, matched against the reviser-free text
// of a raw paragraph.
var (
	mdBlank          = regexp.MustCompile(`^(?:<br/?>\s*)+$`)
	mdBreak          = regexp.MustCompile(`<br/?>`)
	mdChapter        = regexp.MustCompile(`^(\$+)((?:-\$+)*)(?:\s(.*))?$`)
	mdSection        = regexp.MustCompile(`^(#+)((?:-#+)*)(?:\s(.*))?$`)
	mdOrnament       = regexp.MustCompile(`^#{15,}`)
	mdList           = regexp.MustCompile(`^\s*(-|\+|[0-9]+\.|[0-9]+\))\s(.*)$`)
	mdNumberedList   = regexp.MustCompile(`^\s*[0-9]+(?:\.|\))\s`)
	mdListSymbol     = regexp.MustCompile(`^\s*(?:-|\+|[0-9]+\.|[0-9]+\))\s*`)
	mdTable          = regexp.MustCompile(`^\|.*\|$`)
	mdImage          = regexp.MustCompile(`^(?:\s*! *\[([^\[\]]*)\] *\(([^\(\)]+)\)\s*)+$`)
	mdAlignment      = regexp.MustCompile(`^(?::|:\s+.*|.*\s+:)$`)
	mdCenter         = regexp.MustCompile(`^:\s.*\s:$`)
	mdLeft           = regexp.MustCompile(`^:\s.*$`)
	mdRight          = regexp.MustCompile(`^.*\s:$`)
	mdPagebreak      = regexp.MustCompile(`^(?:<div style="break-.*: page;"></div>|<pgbr/?>)$`)
	mdHorizontalLine = regexp.MustCompile(`^(?:\s*[-*]\s*){3,}$`)
	mdBreakdown      = regexp.MustCompile(`^(?:(?:\\\\)*|.*[^\\](?:\\\\)*)!.*!$`)
	mdFence          = "```"
)

// mdRules classifies Markdown raw paragraphs. SystemList and Configuration
// have no Markdown form.
var mdRules = paragraph.Rules[mdtoken.RawParagraph]{
	paragraph.Empty: func(p mdtoken.RawParagraph) bool { return p.Text == "" },
	paragraph.Blank: func(p mdtoken.RawParagraph) bool { return mdBlank.MatchString(p.Text) },
	paragraph.Chapter: func(p mdtoken.RawParagraph) bool {
		return !isFenced(p) && mdChapter.MatchString(p.Text)
	},
	paragraph.Section: func(p mdtoken.RawParagraph) bool {
		return !isFenced(p) && mdSection.MatchString(p.Text) && !mdOrnament.MatchString(p.Text)
	},
	paragraph.List: func(p mdtoken.RawParagraph) bool {
		return !isFenced(p) && mdList.MatchString(p.Text)
	},
	paragraph.Table: func(p mdtoken.RawParagraph) bool {
		return !isFenced(p) && mdTable.MatchString(p.Text)
	},
	paragraph.Image: func(p mdtoken.RawParagraph) bool {
		return !isFenced(p) && mdImage.MatchString(p.Text)
	},
	paragraph.Alignment: func(p mdtoken.RawParagraph) bool {
		return !isFenced(p) && mdAlignment.MatchString(p.Text)
	},
	paragraph.Preformatted: isFenced,
	paragraph.Pagebreak:    func(p mdtoken.RawParagraph) bool { return mdPagebreak.MatchString(p.Text) },
	paragraph.HorizontalLine: func(p mdtoken.RawParagraph) bool {
		return mdHorizontalLine.MatchString(p.Text)
	},
	paragraph.Breakdown: func(p mdtoken.RawParagraph) bool {
		return mdBreakdown.MatchString(p.Text)
	},
}

// isFenced reports a paragraph opened and closed by a code fence.
func isFenced(p mdtoken.RawParagraph) bool {
	if len(p.Lines) < 2 {
		return false
	}
	last := strings.TrimRight(p.Lines[len(p.Lines)-1].Raw, " \t")
	return strings.HasPrefix(p.Lines[0].Raw, mdFence) && strings.HasSuffix(last, mdFence)
}

// alignmentOf returns the alignment an alignment paragraph asks for.
func alignmentOf(text string) paragraph.Align {
	switch {
	case mdCenter.MatchString(text):
		return paragraph.AlignCenter
	case mdLeft.MatchString(text):
		return paragraph.AlignLeft
	case mdRight.MatchString(text):
		return paragraph.AlignRight
	}
	return paragraph.AlignNone
}
