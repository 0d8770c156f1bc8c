// Package ooxml reads WordprocessingML parts as a flat stream of lines,
// one tag or one text run per line, and splits the document body into
// top-level blocks. Blocks and whole parts are queried with XPath.
package ooxml

import (
	"regexp"
	"strings"
)

// BodyTag is the element whose children are the paragraph blocks.
const BodyTag = "w:body"

var (
	// LibreOffice writes anchor positions that carry no layout for us.
	anchorNoise = regexp.MustCompile(`<wp:align>[a-z]+</wp:align>|<wp:posOffset>[0-9]+</wp:posOffset>`)
	tagName     = regexp.MustCompile(`^</?([^\s/>]+)`)
)

// Flatten splits an XML part into lines holding one tag or one text run
// each. Line breaks of the source are dropped and empty lines removed.
func Flatten(data []byte) []string {
	s := strings.NewReplacer("\r", "", "\n", "").Replace(string(data))
	s = anchorNoise.ReplaceAllString(s, "")
	var out []string
	for len(s) > 0 {
		i := strings.IndexByte(s, '<')
		if i < 0 {
			out = append(out, s)
			break
		}
		if i > 0 {
			out = append(out, s[:i])
			s = s[i:]
		}
		j := strings.IndexByte(s, '>')
		if j < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:j+1])
		s = s[j+1:]
	}
	return out
}

// Name returns the tag name of a flattened line, or "" for text.
func Name(line string) string {
	m := tagName.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

func isOpen(line string) bool {
	return strings.HasPrefix(line, "<") && !strings.HasPrefix(line, "</") &&
		!strings.HasPrefix(line, "<?") && !strings.HasPrefix(line, "<!") &&
		!strings.HasSuffix(line, "/>")
}

func isSelfClosing(line string) bool {
	return strings.HasPrefix(line, "<") && strings.HasSuffix(line, "/>")
}

func isClose(line string) bool { return strings.HasPrefix(line, "</") }

// Body returns the lines strictly inside the first element named tag. An
// unterminated element runs to the end of input.
func Body(lines []string, tag string) []string {
	start := -1
	for i, l := range lines {
		if Name(l) != tag {
			continue
		}
		if start < 0 && isOpen(l) {
			start = i + 1
			continue
		}
		if start >= 0 && isClose(l) {
			return lines[start:i]
		}
	}
	if start < 0 {
		return nil
	}
	return lines[start:]
}

// Block is one top-level element of the body.
type Block struct {
	Lines []string
	// Name is the tag name of the element, such as "w:p", "w:tbl" or
	// "w:sectPr"; it is empty for stray text.
	Name string
}

// XML joins the lines back into markup.
func (b Block) XML() string { return strings.Join(b.Lines, "") }

// SplitBlocks splits the body of document.xml into top-level elements by
// counting nested tags of the same name. A self-closing element is a
// one-line block. Text outside any element is collected until the next
// opening tag. If lines hold a <w:body>, only its content is split.
func SplitBlocks(lines []string) []Block {
	if body := Body(lines, BodyTag); body != nil {
		lines = body
	}
	var (
		out   []Block
		cur   Block
		depth int
	)
	flush := func() {
		if len(cur.Lines) > 0 {
			out = append(out, cur)
		}
		cur, depth = Block{}, 0
	}
	for _, l := range lines {
		switch {
		case len(cur.Lines) == 0:
			cur.Lines = append(cur.Lines, l)
			switch {
			case isSelfClosing(l):
				cur.Name = Name(l)
				flush()
			case isOpen(l):
				cur.Name = Name(l)
				depth = 1
			}
		case cur.Name == "":
			if isOpen(l) || isSelfClosing(l) {
				flush()
				cur.Lines = append(cur.Lines, l)
				cur.Name = Name(l)
				if isSelfClosing(l) {
					flush()
				} else {
					depth = 1
				}
				continue
			}
			cur.Lines = append(cur.Lines, l)
		default:
			cur.Lines = append(cur.Lines, l)
			if Name(l) != cur.Name {
				continue
			}
			switch {
			case isOpen(l):
				depth++
			case isClose(l):
				depth--
				if depth == 0 {
					flush()
				}
			}
		}
	}
	flush()
	return out
}
