// Package mdtoken splits Markdown source into physical lines and raw
// paragraphs. It separates comments and spacing from the text, and pulls
// the numbering, length and font revisers off the head and tail of each
// paragraph.
package mdtoken

import (
	"strings"
	"unicode"
)

// Comment delimiters. A line comment runs from ";;" to the end of the line;
// a block comment may span lines.
const (
	CommentOpen  = "<!--"
	CommentClose = "-->"
	LineComment  = ";;"
)

// commentSeparator joins the comment pieces of one line.
const commentSeparator = " / "

// Line is one physical line of the source.
type Line struct {
	Number int    // 1-based
	Raw    string // as read
	// Spaced is Raw without comments and track-change markers.
	Spaced     string
	Comment    string
	HasComment bool
	Indent     string // leading white space of Spaced
	Text       string // Spaced without surrounding space; a hard break becomes "<br>"
	Trailing   string // trailing white space not turned into a break
}

// Lines splits text into lines. A leading BOM is dropped and line endings
// are normalised. Like a file with a final newline, the result always ends
// with an empty line.
func Lines(text string) []Line {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := append(strings.Split(text, "\n"), "")
	lines := make([]Line, len(raw))
	inComment := false
	for i, r := range raw {
		l := Line{Number: i + 1, Raw: r}
		l.Spaced, l.Comment, l.HasComment = separateComment(r, &inComment)
		l.Indent, l.Text, l.Trailing = separateSpaces(l.Spaced)
		lines[i] = l
	}
	return lines
}

// separateComment splits raw into text and comment. inComment carries an
// open block comment from one line to the next.
func separateComment(raw string, inComment *bool) (text, comment string, has bool) {
	var txt, com, tmp strings.Builder
	has = *inComment
	pieces := 0
	flushComment := func() {
		if pieces > 0 {
			com.WriteString(commentSeparator)
		}
		com.WriteString(tmp.String())
		tmp.Reset()
		pieces++
	}
	rs := []rune(raw)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '\\' && i+1 < len(rs) {
			tmp.WriteRune(r)
			tmp.WriteRune(rs[i+1])
			i++
			continue
		}
		switch {
		case !*inComment && hasPrefix(rs[i:], CommentOpen):
			txt.WriteString(tmp.String())
			tmp.Reset()
			*inComment, has = true, true
			i += len(CommentOpen) - 1
			continue
		case *inComment && hasPrefix(rs[i:], CommentClose):
			flushComment()
			*inComment = false
			i += len(CommentClose) - 1
			continue
		case !*inComment && hasPrefix(rs[i:], LineComment):
			txt.WriteString(tmp.String())
			tmp.Reset()
			tmp.WriteString(string(rs[i+len(LineComment):]))
			flushComment()
			has = true
			return stripTrackChanges(txt.String()), com.String(), has
		}
		tmp.WriteRune(r)
	}
	if *inComment {
		flushComment()
	} else {
		txt.WriteString(tmp.String())
	}
	return stripTrackChanges(txt.String()), com.String(), has
}

func hasPrefix(rs []rune, p string) bool {
	return strings.HasPrefix(string(rs[:min(len(rs), len(p))]), p)
}

// stripTrackChanges removes the unescaped insertion markers "<+>" and
// "<!+>".
func stripTrackChanges(s string) string {
	if !strings.Contains(s, "+>") {
		return s
	}
	var sb strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if rs[i] == '\\' && i+1 < len(rs) {
			sb.WriteRune(rs[i])
			sb.WriteRune(rs[i+1])
			i++
			continue
		}
		if hasPrefix(rs[i:], "<+>") {
			i += 2
			continue
		}
		if hasPrefix(rs[i:], "<!+>") {
			i += 3
			continue
		}
		sb.WriteRune(rs[i])
	}
	return sb.String()
}

// separateSpaces splits off the indentation and the trailing space. Two
// spaces, a tab or an ideographic space at the end of a line is a hard
// break.
func separateSpaces(s string) (indent, text, trailing string) {
	text = strings.TrimLeftFunc(s, unicode.IsSpace)
	indent = s[:len(s)-len(text)]
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	trailing = text[len(trimmed):]
	text = trimmed
	if text == ":" && (trailing == " " || trailing == "\t" || trailing == "　") {
		return indent, text + trailing, ""
	}
	for _, brk := range []string{"  ", "\t", "　"} {
		if strings.HasSuffix(trailing, brk) {
			return indent, text + "<br>", strings.TrimSuffix(trailing, brk)
		}
	}
	return indent, text, trailing
}

// Concatenate joins two pieces of running text, inserting a space only
// between two Latin word characters.
func Concatenate(a, b string) string {
	if a == "" || b == "" {
		return a + b
	}
	last := []rune(a)[len([]rune(a))-1]
	first := []rune(b)[0]
	if isWordEnd(last) && isWordEnd(first) {
		return a + " " + b
	}
	return a + b
}

func isWordEnd(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
		strings.ContainsRune(",.)}]", r)
}
