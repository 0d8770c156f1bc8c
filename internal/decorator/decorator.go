// Package decorator implements the inline font markers of the Markdown
// dialect: a single-pass scanner that turns marked-up text into runs with
// attributes, and an emitter that turns runs back into marked-up text.
//
// Every marker is a toggle. The attribute state is carried from one call
// of Scan to the next so that a marker opened in one paragraph may be
// closed in a later one.
package decorator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Size is a relative font size.
type Size int

const (
	SizeM Size = iota
	SizeXS
	SizeS
	SizeL
	SizeXL
)

// Scale returns the factor applied to the document font size.
func (s Size) Scale() float64 {
	switch s {
	case SizeXS:
		return 0.6
	case SizeS:
		return 0.8
	case SizeL:
		return 1.2
	case SizeXL:
		return 1.4
	}
	return 1
}

// Marker returns the toggle that selects s, or "" for the medium size.
func (s Size) Marker() string {
	switch s {
	case SizeXS:
		return "---"
	case SizeS:
		return "--"
	case SizeL:
		return "++"
	case SizeXL:
		return "+++"
	}
	return ""
}

// Attrs is the run-level attribute set.
type Attrs struct {
	Italic    bool
	Bold      bool
	Strike    bool
	Mono      bool   // gothic font
	Size      Size
	Underline string // w:u value, "" for none
	Color     string // RRGGBB, "" for automatic
	Highlight string // w:highlight value
	Font      string // explicit font, "" for the document font
}

// Kind of a scanned segment.
type Kind int

const (
	Text Kind = iota
	Break
	Image
	Field
)

// Segment is one output unit of Scan.
type Segment struct {
	Kind  Kind
	Text  string // Text: content; Field: PAGE or NUMPAGES
	Attrs Attrs
	// IVS is set when Text is one base character followed by an
	// ideographic variation selector.
	IVS  bool
	Alt  string // Image: alternative text, possibly with ":WxH"
	Path string // Image: source path
}

// Options tune Scan.
type Options struct {
	// Fields turns bare "n" and "N" into PAGE and NUMPAGES fields, as in
	// header and footer templates.
	Fields bool
}

// Variation selectors U+E0100 to U+E01EF, numbered 0 to 239.
const (
	ivsFirst = 0xE0100
	ivsLast  = 0xE01EF
)

// Relax separates two markers that would otherwise read as one.
const Relax = "<>"

type scanner struct {
	rs  []rune
	i   int
	st  *Attrs
	opt Options
	buf []rune
	out []Segment
}

// Scan splits text into segments, toggling st at each marker. A marker
// preceded by a backslash is literal text; the backslash is dropped.
func Scan(text string, st *Attrs, opt Options) []Segment {
	if st == nil {
		st = &Attrs{}
	}
	s := &scanner{rs: []rune(text), st: st, opt: opt}
	for s.i < len(s.rs) {
		r := s.rs[s.i]
		if r == '\\' && s.i+1 < len(s.rs) {
			s.buf = append(s.buf, s.rs[s.i+1])
			s.i += 2
			continue
		}
		if n := s.marker(); n > 0 {
			s.i += n
			continue
		}
		s.buf = append(s.buf, r)
		s.i++
	}
	s.flush()
	return s.out
}

func (s *scanner) flush() {
	if len(s.buf) == 0 {
		return
	}
	s.out = append(s.out, Segment{Kind: Text, Text: string(s.buf), Attrs: *s.st})
	s.buf = s.buf[:0]
}

func (s *scanner) emit(seg Segment) {
	s.flush()
	seg.Attrs = *s.st
	s.out = append(s.out, seg)
}

// marker applies the marker at the cursor and returns its width, or 0.
func (s *scanner) marker() int {
	r := s.rs[s.i]
	switch r {
	case '*', '~', '`', '/', '-', '+', '_', '^', '@':
		n, apply := probe(s.rs, s.i)
		if n == 0 {
			return 0
		}
		s.flush()
		apply(s.st)
		return n
	case '<':
		switch {
		case hasPrefix(s.rs[s.i:], "<br>"):
			s.emit(Segment{Kind: Break})
			return 4
		case hasPrefix(s.rs[s.i:], "<br/>"):
			s.emit(Segment{Kind: Break})
			return 5
		case hasPrefix(s.rs[s.i:], Relax):
			return 2
		}
	case '\n':
		s.emit(Segment{Kind: Break})
		return 1
	case '!':
		if alt, path, n := matchImage(s.rs[s.i:]); n > 0 {
			s.emit(Segment{Kind: Image, Alt: alt, Path: path})
			return n
		}
	case 'n', 'N':
		if s.opt.Fields {
			field := "PAGE"
			if r == 'N' {
				field = "NUMPAGES"
			}
			s.emit(Segment{Kind: Field, Text: field})
			return 1
		}
	}
	if r >= '0' && r <= '9' {
		return s.ivs()
	}
	return 0
}

// ivs handles "字12;": the character before the digits takes variation
// selector 12 and is set in the IVS font.
func (s *scanner) ivs() int {
	if len(s.buf) == 0 || s.i == 0 {
		return 0
	}
	prev := s.rs[s.i-1]
	if (prev >= '0' && prev <= '9') || prev == '\\' {
		return 0
	}
	j := s.i
	n := 0
	for j < len(s.rs) && s.rs[j] >= '0' && s.rs[j] <= '9' {
		n = n*10 + int(s.rs[j]-'0')
		if n > ivsLast-ivsFirst {
			return 0
		}
		j++
	}
	if j >= len(s.rs) || s.rs[j] != ';' {
		return 0
	}
	base := s.buf[len(s.buf)-1]
	s.buf = s.buf[:len(s.buf)-1]
	s.flush()
	s.out = append(s.out, Segment{Kind: Text, Text: string([]rune{base, rune(ivsFirst + n)}), Attrs: *s.st, IVS: true})
	return j + 1 - s.i
}

// probe recognises the marker starting at rs[i] and returns its width and
// the state change it applies.
func probe(rs []rune, i int) (int, func(*Attrs)) {
	run := func(c rune) int {
		n := 0
		for i+n < len(rs) && rs[i+n] == c {
			n++
		}
		return n
	}
	switch rs[i] {
	case '*':
		switch n := run('*'); {
		case n >= 3:
			return 3, func(a *Attrs) { a.Italic, a.Bold = !a.Italic, !a.Bold }
		case n == 2:
			return 2, func(a *Attrs) { a.Bold = !a.Bold }
		default:
			return 1, func(a *Attrs) { a.Italic = !a.Italic }
		}
	case '~':
		if run('~') >= 2 {
			return 2, func(a *Attrs) { a.Strike = !a.Strike }
		}
	case '`':
		return 1, func(a *Attrs) { a.Mono = !a.Mono }
	case '/':
		if run('/') >= 2 && !inURL(rs, i) {
			return 2, func(a *Attrs) { a.Italic = !a.Italic }
		}
	case '-', '+':
		small, big := SizeS, SizeXS
		if rs[i] == '+' {
			small, big = SizeL, SizeXL
		}
		switch n := run(rs[i]); {
		case n >= 3:
			return 3, toggleSize(big)
		case n == 2:
			return 2, toggleSize(small)
		}
	case '_':
		body, ok := delimited(rs, i, '_', 4)
		if ok {
			if u, found := Underline[body]; found {
				return utf8.RuneCountInString(body) + 2, func(a *Attrs) { a.Underline = toggle(a.Underline, u) }
			}
		}
		body, ok = delimited(rs, i, '_', 11)
		if ok {
			if h, found := Highlight[body]; found {
				return utf8.RuneCountInString(body) + 2, func(a *Attrs) { a.Highlight = toggle(a.Highlight, h) }
			}
		}
	case '^':
		body, ok := delimited(rs, i, '^', 11)
		if !ok || !isAlnum(body) {
			break
		}
		if hex, found := ResolveColor(body); found {
			return utf8.RuneCountInString(body) + 2, func(a *Attrs) {
				if a.Color == "" {
					a.Color = hex
				} else {
					a.Color = ""
				}
			}
		}
	case '@':
		body, ok := delimited(rs, i, '@', 66)
		if ok && body != "" && !strings.Contains(body, "\n") {
			return utf8.RuneCountInString(body) + 2, func(a *Attrs) { a.Font = toggle(a.Font, body) }
		}
	}
	return 0, nil
}

func toggleSize(target Size) func(*Attrs) {
	return func(a *Attrs) {
		if a.Size == target {
			a.Size = SizeM
		} else {
			a.Size = target
		}
	}
}

// toggle switches cur to v, or off when cur already is v.
func toggle(cur, v string) string {
	if cur == v {
		return ""
	}
	return v
}

// delimited returns the text between rs[i] and the next occurrence of the
// same delimiter, if it is at most limit runes long.
func delimited(rs []rune, i int, delim rune, limit int) (string, bool) {
	for j := i + 1; j < len(rs) && j-i-1 <= limit; j++ {
		if rs[j] == delim {
			return string(rs[i+1 : j]), true
		}
		if rs[j] == '\\' {
			return "", false
		}
	}
	return "", false
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !(r >= '0' && r <= '9') && !(r >= 'A' && r <= 'Z') && !(r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}

// afterScheme reports "http://"-like text where the slashes follow a
// run of lower-case letters and a colon.
func afterScheme(rs []rune, i int) bool {
	if i < 2 || rs[i-1] != ':' {
		return false
	}
	return rs[i-2] >= 'a' && rs[i-2] <= 'z'
}

// inURL reports slashes inside a URL: the text from the last white space
// up to and including i holds a scheme such as "https://".
func inURL(rs []rune, i int) bool {
	for j := i; j >= 0 && !unicode.IsSpace(rs[j]); j-- {
		if rs[j] == '/' && j+1 < len(rs) && rs[j+1] == '/' && afterScheme(rs, j) {
			return true
		}
	}
	return false
}

func hasPrefix(rs []rune, prefix string) bool {
	for _, p := range prefix {
		if len(rs) == 0 || rs[0] != p {
			return false
		}
		rs = rs[1:]
	}
	return true
}

// matchImage recognises "![alt](path)" with optional spaces after "!" and
// between the brackets and the parentheses.
func matchImage(rs []rune) (alt, path string, n int) {
	i := 1
	for i < len(rs) && rs[i] == ' ' {
		i++
	}
	if i >= len(rs) || rs[i] != '[' {
		return "", "", 0
	}
	start := i + 1
	for i = start; i < len(rs) && rs[i] != ']'; i++ {
		if rs[i] == '[' {
			return "", "", 0
		}
	}
	if i >= len(rs) {
		return "", "", 0
	}
	alt = string(rs[start:i])
	i++
	for i < len(rs) && rs[i] == ' ' {
		i++
	}
	if i >= len(rs) || rs[i] != '(' {
		return "", "", 0
	}
	start = i + 1
	for i = start; i < len(rs) && rs[i] != ')'; i++ {
		if rs[i] == '(' {
			return "", "", 0
		}
	}
	if i >= len(rs) || i == start {
		return "", "", 0
	}
	return alt, string(rs[start:i]), i + 1
}

// IsImage reports whether s is exactly one image reference.
func IsImage(s string) bool {
	rs := []rune(s)
	if len(rs) == 0 || rs[0] != '!' {
		return false
	}
	_, _, n := matchImage(rs)
	return n == len(rs)
}

// MatchImage returns the alt text and path of an image reference at the
// start of s and the number of bytes it spans.
func MatchImage(s string) (alt, path string, width int) {
	rs := []rune(s)
	if len(rs) == 0 || rs[0] != '!' {
		return "", "", 0
	}
	alt, path, n := matchImage(rs)
	return alt, path, len(string(rs[:n]))
}
