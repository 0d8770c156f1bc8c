package numbering

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alnah/go-makdo/internal/numeral"
)

// Head is one heading number recognised at the start of a docx paragraph.
type Head struct {
	Depth  int   // bank depth
	Values []int // trunk value, then one counter per "のN" branch (N-1)
}

// Branch returns the branch index the head addresses.
func (h Head) Branch() int { return len(h.Values) - 1 }

// cursor walks a string rune by rune without backtracking past a mark.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) peek() rune {
	if c.pos >= len(c.s) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(c.s[c.pos:])
	return r
}

func (c *cursor) next() rune {
	r, n := utf8.DecodeRuneInString(c.s[c.pos:])
	c.pos += n
	return r
}

func (c *cursor) eat(prefix string) bool {
	if strings.HasPrefix(c.s[c.pos:], prefix) {
		c.pos += len(prefix)
		return true
	}
	return false
}

func (c *cursor) rest() string { return c.s[c.pos:] }

func isDigit(r rune) bool { return (r >= '0' && r <= '9') || (r >= '０' && r <= '９') }

func isLatin(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'ａ' && r <= 'ｚ') }

func isKata(r rune) bool { return numeral.Decode(numeral.NKata, string(r)) > 0 }

func isOpenParen(r rune) bool  { return r == '(' || r == '（' }
func isCloseParen(r rune) bool { return r == ')' || r == '）' }

// digits consumes a run of half or full width digits.
func (c *cursor) digits() (string, bool) {
	start := c.pos
	for isDigit(c.peek()) {
		c.next()
	}
	return c.s[start:c.pos], c.pos > start
}

// branches consumes "の２の３" and returns the branch counters (value-1).
func (c *cursor) branches() []int {
	var out []int
	for {
		mark := c.pos
		if !c.eat("の") {
			return out
		}
		d, ok := c.digits()
		if !ok {
			c.pos = mark
			return out
		}
		out = append(out, numeral.Decode(numeral.NArab, d)-1)
	}
}

// headSeparator consumes " ", "  ", a tab or U+3000.
func (c *cursor) headSeparator() bool {
	switch {
	case c.eat("  "), c.eat(" "), c.eat("\t"), c.eat("　"):
		return true
	}
	return false
}

// sectionSeparator additionally accepts ". ", "." and "．".
func (c *cursor) sectionSeparator() bool {
	switch {
	case c.headSeparator(), c.eat(". "), c.eat("."), c.eat("．"):
		return true
	}
	return false
}

func hasText(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
}

// ParseChapter recognises "第N編", "第N章の２" and so on, followed by a
// separator and some text. It returns the head and the remaining text.
func ParseChapter(text string) (Head, string, bool) {
	c := cursor{s: text}
	if !c.eat("第") {
		return Head{}, "", false
	}
	d, ok := c.digits()
	if !ok {
		return Head{}, "", false
	}
	depth := -1
	for i, u := range ChapterUnits {
		if c.eat(u) {
			depth = i
			break
		}
	}
	if depth < 0 {
		return Head{}, "", false
	}
	values := append([]int{numeral.Decode(numeral.NArab, d)}, c.branches()...)
	if !c.headSeparator() || !hasText(c.rest()) {
		return Head{}, "", false
	}
	return Head{Depth: depth, Values: values}, c.rest(), true
}

// sectionSymbol consumes the numbering symbol of one section depth (2..7)
// and its branches.
func (c *cursor) sectionSymbol(depth int) (Head, bool) {
	mark := c.pos
	fail := func() (Head, bool) { c.pos = mark; return Head{}, false }
	var v int
	switch depth {
	case 2:
		d, ok := c.digits()
		if !ok {
			return fail()
		}
		v = numeral.Decode(numeral.NArab, d)
	case 3, 5, 7:
		r := c.peek()
		switch {
		case depth == 3 && r >= '⑴' && r <= '⒇':
			c.next()
			v = numeral.Decode(numeral.PArab, string(r))
		case depth == 7 && r >= '⒜' && r <= '⒵':
			c.next()
			v = numeral.Decode(numeral.PAlph, string(r))
		case isOpenParen(r):
			c.next()
			var inner string
			switch depth {
			case 3:
				d, ok := c.digits()
				if !ok {
					return fail()
				}
				inner, v = d, numeral.Decode(numeral.NArab, d)
			case 5:
				k := c.next()
				if !isKata(k) {
					return fail()
				}
				inner, v = string(k), numeral.Decode(numeral.NKata, string(k))
			case 7:
				k := c.next()
				if !isLatin(k) {
					return fail()
				}
				inner, v = string(k), numeral.Decode(numeral.NAlph, string(k))
			}
			if inner == "" || !isCloseParen(c.next()) {
				return fail()
			}
		default:
			return fail()
		}
	case 4:
		r := c.next()
		if !isKata(r) {
			return fail()
		}
		v = numeral.Decode(numeral.NKata, string(r))
	case 6:
		r := c.next()
		if !isLatin(r) {
			return fail()
		}
		v = numeral.Decode(numeral.NAlph, string(r))
	default:
		return fail()
	}
	return Head{Depth: depth, Values: append([]int{v}, c.branches()...)}, true
}

// isNumericRange reports text such as "1.5" or "３，０００" that starts like
// a section number but is a number.
func isNumericRange(text string) bool {
	c := cursor{s: text}
	if _, ok := c.digits(); !ok {
		return false
	}
	if !(c.eat(", ") || c.eat(",") || c.eat(". ") || c.eat(".") || c.eat("，") || c.eat("．")) {
		return false
	}
	_, ok := c.digits()
	return ok
}

// ParseSection recognises the section numbers at the start of text. A
// paragraph may carry several in increasing depth ("１⑴　..."); "第N条"
// stands alone. Depths are section bank depths (1..7).
func ParseSection(text string) ([]Head, string, bool) {
	if isNumericRange(text) {
		return nil, "", false
	}
	c := cursor{s: text}
	if c.eat("第") {
		if d, ok := c.digits(); ok {
			c.eat("条")
			h := Head{Depth: 1, Values: append([]int{numeral.Decode(numeral.NArab, d)}, c.branches()...)}
			if c.sectionSeparator() && hasText(c.rest()) {
				return []Head{h}, c.rest(), true
			}
		}
		return nil, "", false
	}
	var heads []Head
	for depth := 2; depth < SectionDepths; depth++ {
		if h, ok := c.sectionSymbol(depth); ok {
			heads = append(heads, h)
		}
	}
	if len(heads) == 0 || !c.sectionSeparator() || !hasText(c.rest()) {
		return nil, "", false
	}
	return heads, strings.TrimPrefix(c.rest(), "　"), true
}

// ParseList recognises a bullet or a circled list number at the start of
// text. value is the decoded number, or 0 for a bullet.
func ParseList(text string) (depth int, numbered bool, value int, rest string, ok bool) {
	c := cursor{s: text}
	r := c.next()
	depth, numbered = -1, true
	for i, b := range ListBullets {
		if string(r) == b {
			depth, numbered = i, false
			break
		}
	}
	if numbered {
		for i, sys := range ListSystems {
			if v := numeral.Decode(sys, string(r)); v >= 0 {
				depth, value = i, v
				break
			}
		}
	}
	if depth < 0 || !c.headSeparator() || !hasText(c.rest()) {
		return 0, false, 0, "", false
	}
	return depth, numbered, value, c.rest(), true
}
