// Package numeral encodes and decodes the numeral systems used by
// Japanese legal numbering: plain, parenthesized and circled forms of
// arabic digits, katakana, alphabet and kanji.
package numeral

import (
	"errors"
	"fmt"
	"strings"
)

// System identifies one numeral notation.
type System int

const (
	NArab System = iota // ０１２…, 10, 11, …
	PArab               // ⑴⑵…⒇, (21), …
	CArab               // ⓪①…㊿
	NKata               // アイウ…ン
	PKata               // (ｱ)(ｲ)…(ﾝ)
	CKata               // ㋐㋑…㋾
	NAlph               // ａｂ…ｚ
	PAlph               // ⒜⒝…⒵
	CAlph               // ⓐⓑ…ⓩ
	NKanj               // 一二…十一…万…
	PKanj               // ㈠…㈩
	CKanj               // ㊀…㊉
)

// Overflow is written in place of a value the system cannot represent.
const Overflow = "〓"

// Invalid is returned by Decode for text that is not a numeral of the system.
const Invalid = -1

// ErrOverflow reports a value outside the representable range.
var ErrOverflow = errors.New("numeral out of range")

var systemNames = [...]string{
	NArab: "arabic",
	PArab: "parenthesized arabic",
	CArab: "circled arabic",
	NKata: "katakana",
	PKata: "parenthesized katakana",
	CKata: "circled katakana",
	NAlph: "alphabet",
	PAlph: "parenthesized alphabet",
	CAlph: "circled alphabet",
	NKanj: "kanji",
	PKanj: "parenthesized kanji",
	CKanj: "circled kanji",
}

func (s System) String() string {
	if s < 0 || int(s) >= len(systemNames) {
		return fmt.Sprintf("System(%d)", int(s))
	}
	return systemNames[s]
}

// Unbounded is the upper bound reported by Range for open-ended systems.
const Unbounded = 1<<31 - 1

// Range returns the smallest and largest encodable value of s.
func Range(s System) (lo, hi int) {
	switch s {
	case NArab, PArab, NKanj:
		return 0, Unbounded
	case CArab:
		return 0, 50
	case NKata:
		return 1, 48
	case PKata:
		return 1, 46
	case CKata:
		return 1, 47
	case NAlph, PAlph, CAlph:
		return 1, 26
	case PKanj, CKanj:
		return 1, 10
	}
	return 0, -1
}

// Encode renders n in system s. Out of range it returns Overflow together
// with an error wrapping ErrOverflow; callers keep the glyph and go on.
func Encode(s System, n int) (string, error) {
	lo, hi := Range(s)
	if n < lo || n > hi {
		return Overflow, fmt.Errorf("%w: %s %d", ErrOverflow, s, n)
	}
	switch s {
	case NArab:
		if n <= 9 {
			return string(rune(0xFF10 + n)), nil
		}
		return fmt.Sprint(n), nil
	case PArab:
		switch {
		case n == 0:
			return "(0)", nil
		case n <= 20:
			return string(rune(9331 + n)), nil
		}
		return fmt.Sprintf("(%d)", n), nil
	case CArab:
		switch {
		case n == 0:
			return string(rune(9450)), nil
		case n <= 20:
			return string(rune(9311 + n)), nil
		case n <= 35:
			return string(rune(12860 + n)), nil
		}
		return string(rune(12941 + n)), nil
	case NKata:
		return string(kataRune(n)), nil
	case PKata:
		return "(" + string(halfKataRune(n)) + ")", nil
	case CKata:
		return string(rune(13007 + n)), nil
	case NAlph:
		return string(rune(65344 + n)), nil
	case PAlph:
		return string(rune(9371 + n)), nil
	case CAlph:
		return string(rune(9423 + n)), nil
	case NKanj:
		return kanji(n), nil
	case PKanj:
		return string(rune(12831 + n)), nil
	case CKanj:
		return string(rune(12927 + n)), nil
	}
	return Overflow, fmt.Errorf("%w: %s %d", ErrOverflow, s, n)
}

// kataRune maps 1..48 onto the gojuon order アイウエオ…ワヰヱヲン.
// The katakana block interleaves small kana and voiced forms, so the
// stride changes per syllable row.
func kataRune(n int) rune {
	const base = 12448
	switch {
	case n <= 5:
		return rune(base + 2*n)
	case n <= 17:
		return rune(base + 2*n - 1)
	case n <= 20:
		return rune(base + 2*n)
	case n <= 25:
		return rune(base + n + 21)
	case n <= 30:
		return rune(base + 3*n - 31)
	case n <= 35:
		return rune(base + n + 31)
	case n <= 38:
		return rune(base + 2*n - 4)
	case n <= 43:
		return rune(base + n + 34)
	}
	return rune(base + n + 35)
}

// halfKataRune maps 1..46 onto half-width ｱ…ﾜ, ｦ, ﾝ.
func halfKataRune(n int) rune {
	switch n {
	case 45:
		return 0xFF66 // ｦ
	case 46:
		return 0xFF9D // ﾝ
	}
	return rune(65392 + n)
}

var kanjiDigits = []rune("〇一二三四五六七八九")

var kanjiGroups = []string{"", "万", "億", "兆", "京"}

// kanji renders n positionally, eliding zero places and a leading 一 before
// 十百千 inside each four-digit group.
func kanji(n int) string {
	if n == 0 {
		return string(kanjiDigits[0])
	}
	var groups []string
	for g := 0; n > 0 && g < len(kanjiGroups); g++ {
		part := n % 10000
		n /= 10000
		if part == 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, kanjiGroup(part)+kanjiGroups[g])
	}
	var b strings.Builder
	for i := len(groups) - 1; i >= 0; i-- {
		b.WriteString(groups[i])
	}
	return b.String()
}

func kanjiGroup(n int) string {
	var b strings.Builder
	for _, p := range []struct {
		div  int
		unit string
	}{{1000, "千"}, {100, "百"}, {10, "十"}} {
		d := n / p.div % 10
		if d == 0 {
			continue
		}
		if d > 1 {
			b.WriteRune(kanjiDigits[d])
		}
		b.WriteString(p.unit)
	}
	if d := n % 10; d > 0 {
		b.WriteRune(kanjiDigits[d])
	}
	return b.String()
}
