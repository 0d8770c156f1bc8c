package markdown

import (
	"regexp"
	"strings"

	"github.com/alnah/go-makdo/internal/decorator"
	"github.com/alnah/go-makdo/internal/mdtoken"
	"github.com/alnah/go-makdo/internal/textwidth"
)

// Wrap breaks running text into lines of at most textwidth.Ideal units.
// Each "\n" of text is a hard line break and is written as "<br>" at the
// end of its line; a trailing double space keeps its meaning with a "\".
func Wrap(text string) string {
	text = strings.ReplaceAll(text, "  \n", "  \\\n")
	src := strings.Split(text, "\n")
	out := make([]string, len(src))
	for i, line := range src {
		out[i] = pack(phrases(line))
	}
	return strings.Join(out, "<br>\n")
}

const (
	asciiClosing = ",.)}]"
	wideOpening  = "『「｛（＜"
	wideClosing  = "，、．。＞）｝」』"
)

var (
	commentOpen  = []string{"<!--", "<!+>"}
	commentClose = []string{"-->", "<+>"}
)

func isDigit(r rune) bool { return (r >= '0' && r <= '9') || (r >= '０' && r <= '９') }

// decimalMark reports a "," or "." between two digits, as in "1,000".
func decimalMark(rs []rune, i int, marks string) bool {
	return strings.ContainsRune(marks, rs[i]) &&
		i > 0 && isDigit(rs[i-1]) && i+1 < len(rs) && isDigit(rs[i+1])
}

// phrases splits one source line into the units the packer never breaks:
// images, words after a space, and runs ending with closing punctuation.
func phrases(line string) []string {
	var out []string
	for line != "" {
		i := unescapedImage(line)
		if i < 0 {
			out = append(out, splitPhrases(line)...)
			break
		}
		_, _, n := decorator.MatchImage(line[i:])
		out = append(out, splitPhrases(line[:i])...)
		out = append(out, line[i:i+n])
		line = line[i+n:]
	}
	return out
}

// unescapedImage returns the byte offset of the first image reference not
// preceded by a backslash, or -1.
func unescapedImage(s string) int {
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '!':
			if _, _, n := decorator.MatchImage(s[i:]); n > 0 {
				return i
			}
		}
	}
	return -1
}

func splitPhrases(line string) []string {
	rs := []rune(line)
	var out []string
	var tmp []rune
	cut := func() {
		if len(tmp) > 0 {
			out = append(out, string(tmp))
			tmp = nil
		}
	}
	for i, c := range rs {
		tmp = append(tmp, c)
		if i == len(rs)-1 {
			break
		}
		c2 := rs[i+1]
		if c2 == ' ' {
			continue
		}
		if c == ' ' && spaceSurvives(string(rs[:i+1]), string(rs[i+1:])) {
			cut()
		}
		if strings.ContainsRune(asciiClosing, c) && !strings.ContainsRune(asciiClosing, c2) {
			if decimalMark(rs, i, ",.") {
				continue
			}
			cut()
		}
		if !strings.ContainsRune(wideOpening, c) && strings.ContainsRune(wideOpening, c2) {
			cut()
		}
		if strings.ContainsRune(wideClosing, c) && !strings.ContainsRune(wideClosing, c2) {
			if decimalMark(rs, i, "，．") {
				continue
			}
			cut()
		}
		if !endsEscaped(tmp) && hasAnyPrefix(string(rs[i+1:]), commentOpen, commentClose) {
			cut()
		}
		if hasAnySuffix(string(tmp), commentOpen, commentClose) {
			cut()
		}
	}
	cut()
	return out
}

// endsEscaped reports an odd number of trailing backslashes.
func endsEscaped(rs []rune) bool {
	n := 0
	for i := len(rs) - 1; i >= 0 && rs[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func hasAnyPrefix(s string, sets ...[]string) bool {
	for _, set := range sets {
		for _, p := range set {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
	}
	return false
}

func hasAnySuffix(s string, sets ...[]string) bool {
	for _, set := range sets {
		for _, p := range set {
			if strings.HasSuffix(s, p) {
				return true
			}
		}
	}
	return false
}

var (
	symbolOnly   = regexp.MustCompile(`^(?:#+(?:-#)* )+$`)
	symbolPrefix = regexp.MustCompile(`^(?:#+(?:-#)* )+`)
)

// pack joins phrases into lines no wider than the ideal width.
func pack(ps []string) string {
	var lines []string
	var tmp string
	flush := func() {
		if tmp != "" {
			lines = append(lines, tmp)
			tmp = ""
		}
	}
	fits := func(s string) bool { return textwidth.Of(s) <= textwidth.Ideal }
	for _, p := range ps {
		if len(lines) == 0 && symbolOnly.MatchString(tmp) && !symbolPrefix.MatchString(p) &&
			hasAnySuffix(ps[len(ps)-1], []string{".", "．", "。"}) {
			flush()
			tmp = p
			continue
		}
		if decorator.IsImage(p) {
			flush()
			lines = append(lines, p)
			continue
		}
		if fits(tmp) {
			if hasAnySuffix(tmp, []string{"．", "。"}) || hasAnyPrefix(p, commentOpen) ||
				hasAnySuffix(tmp, commentClose) {
				flush()
			}
		}
		if !fits(tmp + p) {
			flush()
		}
		tmp += p
		if fits(tmp) && (isConjunction(tmp) || hasAnySuffix(tmp, []string{"．", "。"})) {
			flush()
		}
		for !fits(tmp) {
			rs := []rune(tmp)
			i := preferredBreak(rs)
			if i <= 0 {
				i = anyBreak(rs)
			}
			if i <= 0 {
				flush()
				break
			}
			lines = append(lines, string(rs[:i]))
			tmp = string(rs[i:])
		}
	}
	flush()
	return strings.Join(lines, "\n")
}

func isHiragana(r rune) bool { return r >= 'ぁ' && r <= 'ん' }

func isSoftEnd(r rune) bool { return isHiragana(r) || strings.ContainsRune("，、．。", r) }

// preferredBreak returns the rightmost break that fits and follows "を",
// or a kana or comma followed by something else; 0 if none.
func preferredBreak(rs []rune) int {
	for i := len(rs); i > 0; i-- {
		if textwidth.Of(string(rs[:i])) > textwidth.Ideal {
			continue
		}
		last := rs[i-1]
		if strings.ContainsRune("，．", last) && i >= 2 && rs[i-2] >= '０' && rs[i-2] <= '９' &&
			i < len(rs) && rs[i] >= '０' && rs[i] <= '９' {
			continue
		}
		if last == 'を' {
			return i
		}
		if isSoftEnd(last) && i < len(rs) && !isSoftEnd(rs[i]) {
			return i
		}
	}
	return 0
}

// unbreakable pairs: a break between a text matching left and one
// matching right would split a marker or a tag.
var unbreakable = []struct{ left, right *regexp.Regexp }{
	{regexp.MustCompile(`\\$`), regexp.MustCompile(``)},
	{regexp.MustCompile(`\*$`), regexp.MustCompile(`^\*`)},
	{regexp.MustCompile(`~$`), regexp.MustCompile(`^~`)},
	{regexp.MustCompile("`$"), regexp.MustCompile("^`")},
	{regexp.MustCompile(`/$`), regexp.MustCompile(`^/`)},
	{regexp.MustCompile(`-$`), regexp.MustCompile(`^-`)},
	{regexp.MustCompile(`\+$`), regexp.MustCompile(`^\+`)},
	{regexp.MustCompile(`_[$=.#\-~+]*$`), regexp.MustCompile(`^[$=.#\-~+]*_`)},
	{regexp.MustCompile(`\^[0-9A-Za-z]*$`), regexp.MustCompile(`^[0-9A-Za-z]*\^`)},
	{regexp.MustCompile(`_[0-9A-Za-z]+$`), regexp.MustCompile(`^[0-9A-Za-z]+_`)},
	{regexp.MustCompile(`@.{1,66}$`), regexp.MustCompile(`^.{1,66}@`)},
	{regexp.MustCompile(` $`), regexp.MustCompile(`^ `)},
	{regexp.MustCompile(`<!?$`), regexp.MustCompile(`^!?[-+]`)},
	{regexp.MustCompile(`[-+]$`), regexp.MustCompile(`^>`)},
	{regexp.MustCompile(`</?[0-9a-z]*$`), regexp.MustCompile(`^/?[0-9a-z]*>`)},
}

// anyBreak returns the rightmost break that fits and splits no marker; 0
// if none.
func anyBreak(rs []rune) int {
	for i := len(rs); i > 0; i-- {
		s1, s2 := string(rs[:i]), string(rs[i:])
		if textwidth.Of(s1) > textwidth.Ideal || !breakable(s1, s2) || !spaceSurvives(s1, s2) {
			continue
		}
		return i
	}
	return 0
}

// spaceSurvives reports whether a break between s1 and s2 reads back with
// the spaces around it. Reading drops spaces at either end of a line and
// puts one back only between ASCII words.
func spaceSurvives(s1, s2 string) bool {
	a, b := strings.TrimRight(s1, " "), strings.TrimLeft(s2, " ")
	if a == s1 && b == s2 {
		return true
	}
	return mdtoken.Concatenate(a, b) != a+b
}

func breakable(s1, s2 string) bool {
	for _, u := range unbreakable {
		if u.left.MatchString(s1) && u.right.MatchString(s2) {
			return false
		}
	}
	return true
}
