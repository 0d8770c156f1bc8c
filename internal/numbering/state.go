// Package numbering keeps the counters behind chapter, section and list
// headings and renders or parses their visible numbers.
//
// A counter is addressed by depth and branch. Branch 0 is the trunk
// ("第３条"); branch b > 0 is the b-th sub-branch ("第３条の２"). All
// indices are zero-based.
package numbering

import (
	"fmt"
	"strings"

	"github.com/alnah/go-makdo/internal/warning"
)

// Bank selects one of the three independent counter banks.
type Bank int

const (
	ChapterBank Bank = iota
	SectionBank
	ListBank
)

// Bank shapes: depths x branches.
const (
	ChapterDepths   = 5
	ChapterBranches = 10
	SectionDepths   = 8
	SectionBranches = 10
	ListDepths      = 4
	ListBranches    = 1
)

func (b Bank) String() string {
	switch b {
	case ChapterBank:
		return "chapter"
	case SectionBank:
		return "section"
	case ListBank:
		return "list"
	}
	return fmt.Sprintf("Bank(%d)", int(b))
}

// symbol is the Markdown character that spells depth in reviser tokens.
func (b Bank) symbol() string {
	if b == ChapterBank {
		return "$"
	}
	return "#"
}

// State is the numbering state of one conversion run. The zero value is
// ready to use.
type State struct {
	Chapter [ChapterDepths][ChapterBranches]int
	Section [SectionDepths][SectionBranches]int
	List    [ListDepths][ListBranches]int
}

// NewState returns a zeroed State.
func NewState() *State { return &State{} }

func (s *State) row(b Bank, depth int) []int {
	switch b {
	case ChapterBank:
		return s.Chapter[depth][:]
	case SectionBank:
		return s.Section[depth][:]
	}
	return s.List[depth][:]
}

// Depths returns the number of depths of bank b.
func (b Bank) Depths() int {
	switch b {
	case ChapterBank:
		return ChapterDepths
	case SectionBank:
		return SectionDepths
	case ListBank:
		return ListDepths
	}
	return 0
}

// Branches returns the number of branches per depth of bank b.
func (b Bank) Branches() int {
	switch b {
	case ChapterBank:
		return ChapterBranches
	case SectionBank:
		return SectionBranches
	case ListBank:
		return ListBranches
	}
	return 0
}

func inRange(b Bank, depth, branch int) bool {
	return depth >= 0 && depth < b.Depths() && branch >= 0 && branch < b.Branches()
}

// Value returns the counter at (depth, branch), or 0 outside the bank.
func (s *State) Value(b Bank, depth, branch int) int {
	if !inRange(b, depth, branch) {
		return 0
	}
	return s.row(b, depth)[branch]
}

// Step increments the counter at (depth, branch).
func (s *State) Step(b Bank, depth, branch int, r warning.Reporter) {
	s.set(b, depth, branch, nil, r)
}

// Set stores value at (depth, branch).
func (s *State) Set(b Bank, depth, branch, value int, r warning.Reporter) {
	s.set(b, depth, branch, &value, r)
}

// Revise applies an explicit "=n" override: the next Step at (depth,
// branch) yields n.
func (s *State) Revise(b Bank, depth, branch, n int, r warning.Reporter) {
	s.Set(b, depth, branch, n-1, r)
}

// set updates one counter, then zeroes the later branches of the same
// depth and every counter at a greater depth.
func (s *State) set(b Bank, depth, branch int, value *int, r warning.Reporter) {
	switch {
	case depth < 0 || depth >= b.Depths():
		r.Warn("%s depth exceeds limit", b)
		return
	case branch < 0 || branch >= b.Branches():
		r.Warn("%s branch exceeds limit", b)
		return
	}
	row := s.row(b, depth)
	for y := 0; y < branch; y++ {
		if row[y] == 0 {
			r.Warn("%s branch has \"0\"", b)
			break
		}
	}
	if value == nil {
		row[branch]++
	} else {
		row[branch] = *value
	}
	for y := branch + 1; y < len(row); y++ {
		row[y] = 0
	}
	for x := depth + 1; x < b.Depths(); x++ {
		deeper := s.row(b, x)
		for y := range deeper {
			deeper[y] = 0
		}
	}
}

// ResetList zeroes the list bank; a list ends at the first non-list
// paragraph.
func (s *State) ResetList() {
	s.List = [ListDepths][ListBranches]int{}
}

// Sync records a heading observed with the given values at depth: the
// trunk value, then one counter per branch. It returns the reviser tokens
// ("###=3", "$$-$=1", "  1.=4") that make Step reproduce the values when
// applied in order before the step, and leaves s as after that step.
func (s *State) Sync(b Bank, depth int, values []int, r warning.Reporter) []string {
	if len(values) == 0 {
		return nil
	}
	branch := len(values) - 1
	if !inRange(b, depth, branch) {
		s.Step(b, depth, branch, r)
		return nil
	}
	var revisers []string
	for y, v := range values {
		probe := *s
		probe.Step(b, depth, branch, warning.Reporter{})
		if v < 0 || probe.row(b, depth)[y] == v {
			continue
		}
		// Earlier branches are not touched by the step.
		n := v
		if y < branch {
			n = v + 1
		}
		revisers = append(revisers, Reviser(b, depth, y, n))
		s.Revise(b, depth, y, n, r)
	}
	s.Step(b, depth, branch, r)
	return revisers
}

// Reviser formats an override token for (depth, branch).
func Reviser(b Bank, depth, branch, value int) string {
	if b == ListBank {
		return strings.Repeat("  ", depth) + "1.=" + fmt.Sprint(value)
	}
	sym := b.symbol()
	return strings.Repeat(sym, depth+1) + strings.Repeat("-"+sym, branch) + "=" + fmt.Sprint(value)
}

// Symbol formats the heading marker for (depth, branch): "###" or "$$-$".
func Symbol(b Bank, depth, branch int) string {
	sym := b.symbol()
	return strings.Repeat(sym, depth+1) + strings.Repeat("-"+sym, branch)
}
