package numbering_test

// Notes:
// - Counters are zero-based by depth and branch; a branch counter c
//   renders as c+1, so the first branch of 第３条 is の２.
// - Warnings are checked through a warning.Collector bound to line 1.

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alnah/go-makdo/internal/numbering"
	"github.com/alnah/go-makdo/internal/warning"
)

func reporter() (*warning.Collector, warning.Reporter) {
	c := &warning.Collector{}
	return c, c.At(1, "")
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

func TestChapterHeading_FirstVolume(t *testing.T) {
	t.Parallel()

	c, r := reporter()
	s := numbering.NewState()

	head, rest, ok := numbering.ParseChapter("第１編　総則")
	if !ok {
		t.Fatal("ParseChapter did not match")
	}
	if head.Depth != 0 || rest != "総則" {
		t.Fatalf("head = %+v, rest = %q", head, rest)
	}
	if revisers := s.Sync(numbering.ChapterBank, head.Depth, head.Values, r); len(revisers) != 0 {
		t.Errorf("revisers = %v, want none", revisers)
	}
	if s.Chapter[0][0] != 1 {
		t.Errorf("Chapter[0][0] = %d, want 1", s.Chapter[0][0])
	}
	md := numbering.Symbol(numbering.ChapterBank, head.Depth, head.Branch()) + " " + rest
	if md != "$ 総則" {
		t.Errorf("markdown = %q, want %q", md, "$ 総則")
	}
	if c.Len() != 0 {
		t.Errorf("unexpected warnings: %v", c.All())
	}
}

func TestStep_Monotonic(t *testing.T) {
	t.Parallel()

	_, r := reporter()
	s := numbering.NewState()
	var got []string
	for range 3 {
		got = append(got, s.SectionHead(2, 0, numbering.StyleNormal, r))
		s.Step(numbering.SectionBank, 2, 0, r)
	}
	want := []string{"１", "２", "３"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("heads = %v, want %v", got, want)
	}
}

func TestSet_ResetsLaterBranchesAndDeeperDepths(t *testing.T) {
	t.Parallel()

	_, r := reporter()
	s := numbering.NewState()
	s.Set(numbering.SectionBank, 2, 0, 4, r)
	s.Set(numbering.SectionBank, 2, 1, 2, r)
	s.Set(numbering.SectionBank, 3, 0, 7, r)
	s.Set(numbering.SectionBank, 2, 0, 5, r)

	if s.Section[2][0] != 5 || s.Section[2][1] != 0 {
		t.Errorf("depth 2 = %v", s.Section[2])
	}
	if s.Section[3][0] != 0 {
		t.Errorf("depth 3 not reset: %v", s.Section[3])
	}
}

func TestRevise_NextStepYieldsValue(t *testing.T) {
	t.Parallel()

	_, r := reporter()
	s := numbering.NewState()
	s.Revise(numbering.SectionBank, 2, 0, 5, r)
	if got := s.SectionHead(2, 0, numbering.StyleNormal, r); got != "５" {
		t.Errorf("head after =5 = %q, want ５", got)
	}
}

func TestResetList(t *testing.T) {
	t.Parallel()

	_, r := reporter()
	s := numbering.NewState()
	s.Step(numbering.ListBank, 0, 0, r)
	s.Step(numbering.ListBank, 1, 0, r)
	s.ResetList()
	if s.List != [numbering.ListDepths][numbering.ListBranches]int{} {
		t.Errorf("list bank = %v, want zero", s.List)
	}
}

// ---------------------------------------------------------------------------
// Warnings
// ---------------------------------------------------------------------------

func TestWarnings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		run  func(*numbering.State, warning.Reporter)
		want string
	}{
		{
			name: "depth overflow",
			run: func(s *numbering.State, r warning.Reporter) {
				s.Step(numbering.SectionBank, numbering.SectionDepths, 0, r)
			},
			want: "section depth exceeds limit",
		},
		{
			name: "branch overflow",
			run: func(s *numbering.State, r warning.Reporter) {
				s.Step(numbering.ChapterBank, 0, numbering.ChapterBranches, r)
			},
			want: "chapter branch exceeds limit",
		},
		{
			name: "branch with zero trunk",
			run: func(s *numbering.State, r warning.Reporter) {
				s.Step(numbering.SectionBank, 2, 1, r)
			},
			want: `section branch has "0"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, r := reporter()
			tt.run(numbering.NewState(), r)
			all := c.All()
			if len(all) != 1 || all[0].Message != tt.want {
				t.Errorf("warnings = %v, want [%s]", all, tt.want)
			}
		})
	}
}

func TestDepthOverflow_LeavesStateUntouched(t *testing.T) {
	t.Parallel()

	_, r := reporter()
	s := numbering.NewState()
	s.Step(numbering.SectionBank, 2, 0, r)
	s.Step(numbering.SectionBank, 99, 0, r)
	if s.Section[2][0] != 1 {
		t.Errorf("Section[2][0] = %d, want 1", s.Section[2][0])
	}
}

// ---------------------------------------------------------------------------
// Revisers and symbols
// ---------------------------------------------------------------------------

func TestSync_EmitsRevisersForJumps(t *testing.T) {
	t.Parallel()

	_, r := reporter()
	s := numbering.NewState()

	got := s.Sync(numbering.SectionBank, 2, []int{3}, r)
	if !reflect.DeepEqual(got, []string{"###=3"}) {
		t.Errorf("first Sync = %v", got)
	}
	if got := s.Sync(numbering.SectionBank, 2, []int{4}, r); len(got) != 0 {
		t.Errorf("second Sync = %v, want none", got)
	}
	got = s.Sync(numbering.SectionBank, 2, []int{4, 2}, r)
	if !reflect.DeepEqual(got, []string{"###-#=2"}) {
		t.Errorf("branch Sync = %v", got)
	}
}

func TestSync_TrunkOfBranchHeading(t *testing.T) {
	t.Parallel()

	_, r := reporter()
	s := numbering.NewState()
	got := s.Sync(numbering.SectionBank, 2, []int{3, 1}, r)
	if !reflect.DeepEqual(got, []string{"###=4"}) {
		t.Fatalf("Sync = %v", got)
	}
	if s.Section[2][0] != 3 || s.Section[2][1] != 1 {
		t.Errorf("state = %v", s.Section[2])
	}

	// Replaying the revisers before the step reproduces the state.
	replay := numbering.NewState()
	replay.Revise(numbering.SectionBank, 2, 0, 4, r)
	replay.Step(numbering.SectionBank, 2, 1, r)
	if replay.Section != s.Section {
		t.Errorf("replay = %v, want %v", replay.Section[2], s.Section[2])
	}
}

func TestReviserAndSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got, want string
	}{
		{numbering.Reviser(numbering.ChapterBank, 1, 1, 2), "$$-$=2"},
		{numbering.Reviser(numbering.SectionBank, 0, 0, 1), "#=1"},
		{numbering.Reviser(numbering.ListBank, 1, 0, 4), "  1.=4"},
		{numbering.Symbol(numbering.SectionBank, 3, 0), "####"},
		{numbering.Symbol(numbering.ChapterBank, 0, 2), "$-$-$"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func TestChapterHead(t *testing.T) {
	t.Parallel()

	_, r := reporter()
	s := numbering.NewState()
	if got := s.ChapterHead(0, 0, r); got != "第１編" {
		t.Errorf("ChapterHead(0,0) = %q", got)
	}
	s.Step(numbering.ChapterBank, 0, 0, r)
	if got := s.ChapterHead(0, 1, r); got != "第１編の２" {
		t.Errorf("ChapterHead(0,1) = %q", got)
	}
	if got := s.ChapterHead(1, 0, r); got != "第１章" {
		t.Errorf("ChapterHead(1,0) = %q", got)
	}
}

func TestSectionHead_Styles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		style string
		prep  func(*numbering.State, warning.Reporter)
		depth int
		want  string
	}{
		{"normal article", numbering.StyleNormal, nil, 1, "第１"},
		{"contract article", numbering.StyleContract, nil, 1, "第１条"},
		{"statute paragraph after article", numbering.StyleStatute, func(s *numbering.State, r warning.Reporter) {
			s.Step(numbering.SectionBank, 1, 0, r)
		}, 2, "２"},
		{"statute paragraph without article", numbering.StyleStatute, nil, 2, "１"},
		{"parenthesized", numbering.StyleNormal, nil, 3, "⑴"},
		{"katakana", numbering.StyleNormal, nil, 4, "ア"},
		{"parenthesized katakana", numbering.StyleNormal, nil, 5, "(ｱ)"},
		{"latin", numbering.StyleNormal, nil, 6, "ａ"},
		{"parenthesized latin", numbering.StyleNormal, nil, 7, "⒜"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, r := reporter()
			s := numbering.NewState()
			if tt.prep != nil {
				tt.prep(s, r)
			}
			if got := s.SectionHead(tt.depth, 0, tt.style, r); got != tt.want {
				t.Errorf("SectionHead(%d) = %q, want %q", tt.depth, got, tt.want)
			}
		})
	}
}

func TestListHead(t *testing.T) {
	t.Parallel()

	_, r := reporter()
	s := numbering.NewState()
	got := []string{
		s.ListHead(0, true, r),
		s.ListHead(0, true, r),
		s.ListHead(1, false, r),
		s.ListHead(1, true, r),
	}
	want := []string{"①", "②", "○", "㋐"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("heads = %v, want %v", got, want)
	}
}

func TestListHead_Overflow(t *testing.T) {
	t.Parallel()

	c, r := reporter()
	s := numbering.NewState()
	s.Set(numbering.ListBank, 0, 0, 50, r)
	if got := s.ListHead(0, true, r); got != "〓" {
		t.Errorf("ListHead = %q, want overflow glyph", got)
	}
	if c.Len() != 1 || !strings.Contains(c.All()[0].Message, "overflowed") {
		t.Errorf("warnings = %v", c.All())
	}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

func TestParseSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		heads []numbering.Head
		rest  string
		ok    bool
	}{
		{"第３条の２　見出し", []numbering.Head{{Depth: 1, Values: []int{3, 1}}}, "見出し", true},
		{"第１　総論", []numbering.Head{{Depth: 1, Values: []int{1}}}, "総論", true},
		{"１⑴　本文", []numbering.Head{{Depth: 2, Values: []int{1}}, {Depth: 3, Values: []int{1}}}, "本文", true},
		{"(ｱ) 項目", []numbering.Head{{Depth: 5, Values: []int{1}}}, "項目", true},
		{"ウ　項目", []numbering.Head{{Depth: 4, Values: []int{3}}}, "項目", true},
		{"2. text", []numbering.Head{{Depth: 2, Values: []int{2}}}, "text", true},
		{"1.5倍の長さ", nil, "", false},
		{"３，０００円", nil, "", false},
		{"本文のみ", nil, "", false},
		{"１　", nil, "", false},
	}

	for _, tt := range tests {
		heads, rest, ok := numbering.ParseSection(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseSection(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if !reflect.DeepEqual(heads, tt.heads) || rest != tt.rest {
			t.Errorf("ParseSection(%q) = %+v, %q; want %+v, %q", tt.in, heads, rest, tt.heads, tt.rest)
		}
	}
}

func TestParseChapter_Branch(t *testing.T) {
	t.Parallel()

	head, rest, ok := numbering.ParseChapter("第２章の３ 雑則")
	if !ok || head.Depth != 1 || !reflect.DeepEqual(head.Values, []int{2, 2}) || rest != "雑則" {
		t.Errorf("ParseChapter = %+v, %q, %v", head, rest, ok)
	}
	if _, _, ok := numbering.ParseChapter("第２種　免許"); ok {
		t.Error("unknown unit must not match")
	}
}

func TestParseList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		depth    int
		numbered bool
		value    int
		rest     string
	}{
		{"②　項目", 0, true, 2, "項目"},
		{"○ 項目", 1, false, 0, "項目"},
		{"ⓒ\t項目", 2, true, 3, "項目"},
		{"◇　項目", 3, false, 0, "項目"},
	}
	for _, tt := range tests {
		depth, numbered, value, rest, ok := numbering.ParseList(tt.in)
		if !ok || depth != tt.depth || numbered != tt.numbered || value != tt.value || rest != tt.rest {
			t.Errorf("ParseList(%q) = %d %v %d %q %v", tt.in, depth, numbered, value, rest, ok)
		}
	}
	if _, _, _, _, ok := numbering.ParseList("①"); ok {
		t.Error("list head without text must not match")
	}
}
