package numeral

import (
	"strings"
	"unicode/utf8"
)

// Decode parses s as a numeral of system s and returns its value, or
// Invalid when s is not a numeral of that system.
func Decode(sys System, s string) int {
	if s == "" {
		return Invalid
	}
	switch sys {
	case NArab:
		return decodeDigits(s)
	case PArab:
		if r, ok := single(s); ok && r >= 9332 && r <= 9351 {
			return int(r) - 9331
		}
		if inner, ok := unparen(s); ok {
			return decodeDigits(inner)
		}
	case CArab:
		if r, ok := single(s); ok {
			switch {
			case r == 9450 || r == 0x1F10B:
				return 0
			case r >= 9312 && r <= 9331:
				return int(r) - 9311
			case r >= 12881 && r <= 12895:
				return int(r) - 12860
			case r >= 12977 && r <= 12991:
				return int(r) - 12941
			case r >= 10112 && r <= 10121:
				return int(r) - 10111
			}
		}
	case NKata:
		if r, ok := single(s); ok {
			return decodeKata(r)
		}
	case PKata:
		if inner, ok := unparen(s); ok {
			if r, ok := single(inner); ok {
				return decodeKata(r)
			}
		}
	case CKata:
		if r, ok := single(s); ok && r >= 13008 && r <= 13054 {
			return int(r) - 13007
		}
	case NAlph:
		if r, ok := single(s); ok {
			switch {
			case r >= 65345 && r <= 65370:
				return int(r) - 65344
			case r >= 'a' && r <= 'z':
				return int(r-'a') + 1
			}
		}
	case PAlph:
		if r, ok := single(s); ok && r >= 9372 && r <= 9397 {
			return int(r) - 9371
		}
		if inner, ok := unparen(s); ok {
			return Decode(NAlph, inner)
		}
	case CAlph:
		if r, ok := single(s); ok && r >= 9424 && r <= 9449 {
			return int(r) - 9423
		}
	case NKanj:
		return decodeKanji(s)
	case PKanj:
		if r, ok := single(s); ok && r >= 12832 && r <= 12841 {
			return int(r) - 12831
		}
		if inner, ok := unparen(s); ok {
			if v := decodeKanji(inner); v >= 1 && v <= 10 {
				return v
			}
		}
	case CKanj:
		if r, ok := single(s); ok && r >= 12928 && r <= 12937 {
			return int(r) - 12927
		}
	}
	return Invalid
}

func single(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, false
	}
	return r, true
}

// unparen strips one pair of half or full width parentheses.
func unparen(s string) (string, bool) {
	for _, open := range []string{"(", "（"} {
		if !strings.HasPrefix(s, open) {
			continue
		}
		rest := s[len(open):]
		for _, closing := range []string{")", "）"} {
			if strings.HasSuffix(rest, closing) {
				return rest[:len(rest)-len(closing)], len(rest) > len(closing)
			}
		}
	}
	return "", false
}

func decodeDigits(s string) int {
	n := 0
	for _, r := range s {
		var d int
		switch {
		case r >= '0' && r <= '9':
			d = int(r - '0')
		case r >= 0xFF10 && r <= 0xFF19:
			d = int(r - 0xFF10)
		default:
			return Invalid
		}
		if n > (Unbounded-d)/10 {
			return Invalid
		}
		n = n*10 + d
	}
	return n
}

var fullKata = func() map[rune]int {
	m := make(map[rune]int, 48)
	for n := 1; n <= 48; n++ {
		m[kataRune(n)] = n
	}
	return m
}()

func decodeKata(r rune) int {
	switch {
	case r >= 0xFF71 && r <= 0xFF9C: // ｱ..ﾜ
		return int(r) - 65392
	case r == 0xFF66: // ｦ
		return 45
	case r == 0xFF9D: // ﾝ
		return 46
	}
	if n, ok := fullKata[r]; ok {
		return n
	}
	return Invalid
}

var kanjiValue = map[rune]int{
	'〇': 0, '零': 0,
	'一': 1, '壱': 1, '二': 2, '弐': 2, '三': 3, '参': 3, '四': 4,
	'五': 5, '伍': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var kanjiUnit = map[rune]int{
	'十': 10, '拾': 10,
	'百': 100, '佰': 100, '陌': 100,
	'千': 1000, '仟': 1000, '阡': 1000,
}

var kanjiLarge = map[rune]int{
	'万': 1e4, '萬': 1e4,
	'億': 1e8,
	'兆': 1e12,
	'京': 1e16,
}

// decodeKanji accepts both positional (一二〇) and multiplicative (百二十)
// writing. Values above Unbounded are invalid.
func decodeKanji(s string) int {
	total, group, digit := 0, 0, -1
	positional := true
	for _, r := range s {
		if _, ok := kanjiValue[r]; !ok {
			positional = false
			break
		}
	}
	if positional {
		n := 0
		for _, r := range s {
			v := kanjiValue[r]
			if n > (Unbounded-v)/10 {
				return Invalid
			}
			n = n*10 + v
		}
		return n
	}
	for _, r := range s {
		if v, ok := kanjiValue[r]; ok {
			if digit < 0 {
				digit = 0
			}
			if digit > (Unbounded-v)/10 {
				return Invalid
			}
			digit = digit*10 + v
			continue
		}
		if u, ok := kanjiUnit[r]; ok {
			if digit < 0 {
				digit = 1
			}
			if digit > Unbounded/u || group > Unbounded-digit*u {
				return Invalid
			}
			group += digit * u
			digit = -1
			continue
		}
		if u, ok := kanjiLarge[r]; ok {
			if digit >= 0 {
				group += digit
			}
			if group == 0 {
				group = 1
			}
			if group > Unbounded/u || total > Unbounded-group*u {
				return Invalid
			}
			total += group * u
			group, digit = 0, -1
			continue
		}
		return Invalid
	}
	if digit >= 0 {
		group += digit
	}
	if total > Unbounded-group {
		return Invalid
	}
	return total + group
}
