package decorator

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Run is a piece of text with uniform attributes, as read from a docx run.
// A "\n" in Text is a line break.
type Run struct {
	Text  string
	Attrs Attrs
}

// Emit renders runs as marked-up text. Attribute changes between runs
// become toggles: closing markers innermost first, then opening markers
// outermost first. Markup characters in the text are escaped.
func Emit(runs []Run) string {
	var w writer
	var prev Attrs
	for _, r := range merge(runs) {
		w.transition(prev, r.Attrs)
		w.text(r.Text)
		prev = r.Attrs
	}
	w.transition(prev, Attrs{})
	return w.sb.String()
}

// merge joins adjacent runs with equal attributes.
func merge(runs []Run) []Run {
	var out []Run
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Attrs == r.Attrs {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

type writer struct {
	sb   strings.Builder
	last rune
}

// markupRunes can form a marker when doubled across a boundary.
const markupRunes = "*-+_^@~`/!<"

func (w *writer) piece(s string) {
	if s == "" {
		return
	}
	first, _ := utf8.DecodeRuneInString(s)
	if first == w.last && strings.ContainsRune(markupRunes, first) {
		w.sb.WriteString(Relax)
	}
	w.sb.WriteString(s)
	w.last, _ = utf8.DecodeLastRuneInString(s)
}

// layers lists the attribute markers from outermost to innermost, except
// italic and bold which share the innermost position.
var layers = []func(Attrs) string{
	func(a Attrs) string {
		if a.Font == "" {
			return ""
		}
		return "@" + a.Font + "@"
	},
	func(a Attrs) string {
		if a.Highlight == "" {
			return ""
		}
		return "_" + Highlight[a.Highlight] + "_"
	},
	func(a Attrs) string {
		if a.Color == "" {
			return ""
		}
		return "^" + ColorCode(a.Color) + "^"
	},
	func(a Attrs) string {
		if a.Underline == "" {
			return ""
		}
		code, ok := underlineCode[a.Underline]
		if !ok {
			code = ""
		}
		return "_" + code + "_"
	},
	func(a Attrs) string { return a.Size.Marker() },
	func(a Attrs) string {
		if a.Mono {
			return "`"
		}
		return ""
	},
	func(a Attrs) string {
		if a.Strike {
			return "~~"
		}
		return ""
	},
}

func emphasis(from, to Attrs) string {
	di, db := from.Italic != to.Italic, from.Bold != to.Bold
	switch {
	case di && db:
		return "***"
	case db:
		return "**"
	case di:
		return "*"
	}
	return ""
}

func (w *writer) transition(from, to Attrs) {
	if from == to {
		return
	}
	em := emphasis(from, to)
	closing := (from.Italic && !to.Italic) || (from.Bold && !to.Bold)
	if closing {
		w.piece(em)
	}
	for i := len(layers) - 1; i >= 0; i-- {
		f, t := layers[i](from), layers[i](to)
		if f != "" && f != t {
			w.piece(f)
		}
	}
	for _, layer := range layers {
		f, t := layer(from), layer(to)
		if t != "" && f != t {
			w.piece(t)
		}
	}
	if !closing {
		w.piece(em)
	}
}

// text escapes markup in s and writes it.
func (w *writer) text(s string) {
	rs := []rune(s)
	var sb strings.Builder
	for i, r := range rs {
		if r >= ivsFirst && r <= ivsLast {
			sb.WriteString(strconv.Itoa(int(r-ivsFirst)) + ";")
			continue
		}
		if needsEscape(rs, i) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	w.piece(sb.String())
}

func needsEscape(rs []rune, i int) bool {
	r := rs[i]
	next := rune(0)
	if i+1 < len(rs) {
		next = rs[i+1]
	}
	switch r {
	case '\\', '*', '`':
		return true
	case '~', '-', '+':
		return next == r
	case '/':
		return next == '/' && !afterScheme(rs, i)
	case '_', '^', '@':
		n, _ := probe(rs, i)
		return n > 0
	case '<':
		return hasPrefix(rs[i:], "<br>") || hasPrefix(rs[i:], "<br/>") || hasPrefix(rs[i:], Relax)
	case '!':
		_, _, n := matchImage(rs[i:])
		return n > 0
	}
	if r >= '0' && r <= '9' && i > 0 {
		prev := rs[i-1]
		if prev >= '0' && prev <= '9' {
			return false
		}
		j := i
		for j < len(rs) && rs[j] >= '0' && rs[j] <= '9' {
			j++
		}
		return j < len(rs) && rs[j] == ';'
	}
	return false
}

// SplitRevisers removes the markers at the very start and end of text.
// Both head and tail are in reading order.
func SplitRevisers(text string) (head []string, body string, tail []string) {
	for {
		m := HeadMarker(text)
		if m == "" {
			break
		}
		head = append(head, m)
		text = text[len(m):]
	}
	for {
		m := TailMarker(text)
		if m == "" {
			break
		}
		tail = append([]string{m}, tail...)
		text = text[:len(text)-len(m)]
	}
	return head, text, tail
}

// JoinRevisers is the inverse of SplitRevisers.
func JoinRevisers(head []string, body string, tail []string) string {
	return strings.Join(head, "") + body + strings.Join(tail, "")
}

// HeadMarker returns the marker at the start of s, or "".
func HeadMarker(s string) string {
	rs := []rune(s)
	if len(rs) == 0 {
		return ""
	}
	n, _ := probe(rs, 0)
	return string(rs[:n])
}

// TailMarker returns the unescaped marker ending s, or "".
func TailMarker(s string) string {
	rs := []rune(s)
	n := suffixMarker(rs)
	return string(rs[len(rs)-n:])
}

// suffixMarker returns the width of the longest unescaped marker ending
// at the end of rs.
func suffixMarker(rs []rune) int {
	const longest = 68
	start := max(0, len(rs)-longest)
	for j := start; j < len(rs); j++ {
		if j > 0 && rs[j-1] == '\\' {
			continue
		}
		if !strings.ContainsRune("*~`/-+_^@", rs[j]) {
			continue
		}
		if n, _ := probe(rs, j); n > 0 && j+n == len(rs) {
			return n
		}
	}
	return 0
}
