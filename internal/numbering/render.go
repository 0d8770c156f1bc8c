package numbering

import (
	"strings"

	"github.com/alnah/go-makdo/internal/numeral"
	"github.com/alnah/go-makdo/internal/warning"
)

// Document styles that change how section numbers are printed.
const (
	StyleNormal   = "n" // 第１, １, ⑴, …
	StyleContract = "k" // 第１条, １, ⑴, …
	StyleStatute  = "j" // 第１条, ２ (the first paragraph of an article is unnumbered), ⑴, …
)

// ChapterUnits are the unit characters of chapter depths 0..4.
var ChapterUnits = []string{"編", "章", "節", "款", "目"}

// SectionSystems are the numeral systems of section depths 2..7.
// Depth 0 is the untitled document title, depth 1 is "第N".
var SectionSystems = []numeral.System{
	2: numeral.NArab,
	3: numeral.PArab,
	4: numeral.NKata,
	5: numeral.PKata,
	6: numeral.NAlph,
	7: numeral.PAlph,
}

// ListSystems are the numeral systems of numbered list depths 0..3.
var ListSystems = []numeral.System{numeral.CArab, numeral.CKata, numeral.CAlph, numeral.CKanj}

// ListBullets are the bullets of unnumbered list depths 0..3.
var ListBullets = []string{"・", "○", "△", "◇"}

func encode(sys numeral.System, n int, r warning.Reporter) string {
	s, err := numeral.Encode(sys, n)
	if err != nil {
		r.Warn("overflowed %s number", sys)
	}
	return s
}

// next returns the value the counter at (depth, branch) takes after a
// Step, and for earlier branches their current value.
func (s *State) next(b Bank, depth, y, branch int) int {
	v := s.Value(b, depth, y)
	if y == branch {
		v++
	}
	return v
}

// branchSuffix renders "の２の３" for branches 1..branch. A branch counter
// c prints as c+1, so the first branch of 第３条 reads 第３条の２.
func (s *State) branchSuffix(b Bank, depth, branch int, r warning.Reporter) string {
	var sb strings.Builder
	for y := 1; y <= branch; y++ {
		if y >= b.Branches() {
			sb.WriteString("の" + numeral.Overflow)
			continue
		}
		sb.WriteString("の" + encode(numeral.NArab, s.next(b, depth, y, branch)+1, r))
	}
	return sb.String()
}

// ChapterHead renders the heading number the next Step at (depth, branch)
// produces, such as "第２章" or "第１編の２".
func (s *State) ChapterHead(depth, branch int, r warning.Reporter) string {
	if depth < 0 || depth >= ChapterDepths {
		return "第" + numeral.Overflow + numeral.Overflow
	}
	value := numeral.Overflow
	if branch < ChapterBranches {
		value = encode(numeral.NArab, s.next(ChapterBank, depth, 0, branch), r)
	}
	return "第" + value + ChapterUnits[depth] + s.branchSuffix(ChapterBank, depth, branch, r)
}

// SectionHead renders the heading number the next Step at (depth, branch)
// produces in document style.
func (s *State) SectionHead(depth, branch int, style string, r warning.Reporter) string {
	if depth < 0 || depth >= SectionDepths {
		return numeral.Overflow
	}
	v := s.next(SectionBank, depth, 0, branch)
	var head string
	switch depth {
	case 0:
		head = ""
	case 1:
		head = "第" + encode(numeral.NArab, v, r)
		if style != StyleNormal {
			head += "条"
		}
	case 2:
		if style == StyleStatute && s.Section[1][0] != 0 {
			v++
		}
		head = encode(numeral.NArab, v, r)
	default:
		head = encode(SectionSystems[depth], v, r)
	}
	return head + s.branchSuffix(SectionBank, depth, branch, r)
}

// ListHead renders the marker of a list item at depth. Numbered items
// advance the list bank; bullets leave it untouched.
func (s *State) ListHead(depth int, numbered bool, r warning.Reporter) string {
	if depth < 0 || depth >= ListDepths {
		r.Warn("list depth exceeds limit")
		return numeral.Overflow
	}
	if !numbered {
		return ListBullets[depth]
	}
	head := encode(ListSystems[depth], s.List[depth][0]+1, r)
	s.Step(ListBank, depth, 0, r)
	return head
}
