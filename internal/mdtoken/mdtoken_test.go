package mdtoken_test

import (
	"errors"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/japanese"

	"github.com/alnah/go-makdo/internal/mdtoken"
)

func split(t *testing.T, text string) []mdtoken.RawParagraph {
	t.Helper()
	return mdtoken.Split(mdtoken.Lines(text))
}

// ---------------------------------------------------------------------------
// Lines
// ---------------------------------------------------------------------------

func TestLines_Comments(t *testing.T) {
	t.Parallel()

	lines := mdtoken.Lines("a<!--x-->b;;rest\n<!-- open\nstill\nclose -->c")
	tests := []struct {
		text    string
		comment string
	}{
		{"ab", "x / rest"},
		{"", " open"},
		{"", "still"},
		{"c", "close "},
	}
	for i, tt := range tests {
		l := lines[i]
		if l.Text != tt.text || l.Comment != tt.comment || !l.HasComment {
			t.Errorf("line %d = {Text:%q Comment:%q Has:%v}, want {%q %q true}", i+1, l.Text, l.Comment, l.HasComment, tt.text, tt.comment)
		}
	}
	if last := lines[len(lines)-1]; last.Raw != "" || last.HasComment {
		t.Errorf("final line = %+v, want empty", last)
	}
}

func TestLines_ByteOrderMarkAndLineEndings(t *testing.T) {
	t.Parallel()

	lines := mdtoken.Lines("\uFEFFa\r\nb\rc")
	if len(lines) != 4 {
		t.Fatalf("len(Lines) = %d, want 4", len(lines))
	}
	for i, want := range []string{"a", "b", "c", ""} {
		if lines[i].Raw != want {
			t.Errorf("line %d Raw = %q, want %q", i+1, lines[i].Raw, want)
		}
	}
	if lines[0].Number != 1 {
		t.Errorf("first Number = %d, want 1", lines[0].Number)
	}
}

func TestLines_EscapedCommentAndTrackChanges(t *testing.T) {
	t.Parallel()

	lines := mdtoken.Lines(`a\<!--b c<+>d<!+>e`)
	if lines[0].HasComment {
		t.Errorf("escaped opener started a comment: %+v", lines[0])
	}
	if lines[0].Text != `a\<!--b cde` {
		t.Errorf("Text = %q", lines[0].Text)
	}
}

func TestLines_Spaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw, indent, text, trailing string
	}{
		{"  text", "  ", "text", ""},
		{"text  ", "", "text<br>", ""},
		{"text\t", "", "text<br>", ""},
		{"text　", "", "text<br>", ""},
		{"text ", "", "text", " "},
		{": ", "", ": ", ""},
	}
	for _, tt := range tests {
		l := mdtoken.Lines(tt.raw)[0]
		if l.Indent != tt.indent || l.Text != tt.text || l.Trailing != tt.trailing {
			t.Errorf("Lines(%q) = %q|%q|%q, want %q|%q|%q", tt.raw, l.Indent, l.Text, l.Trailing, tt.indent, tt.text, tt.trailing)
		}
	}
}

// ---------------------------------------------------------------------------
// Split
// ---------------------------------------------------------------------------

func TestSplit_Blocks(t *testing.T) {
	t.Parallel()

	ps := split(t, "one\ntwo\n\n\nthree\n\n```\ncode\n\nmore\n```\n\nafter")
	var texts []string
	for _, p := range ps {
		texts = append(texts, p.Text)
	}
	want := []string{"one two", "three", "``` code more ```", "after"}
	if !reflect.DeepEqual(texts, want) {
		t.Errorf("texts = %q, want %q", texts, want)
	}
}

func TestSplit_AtomicLines(t *testing.T) {
	t.Parallel()

	ps := split(t, "## 第一\n### 第二\n\n- a\n- b")
	if len(ps) != 4 {
		t.Fatalf("paragraphs = %d, want 4", len(ps))
	}
	if ps[1].Number() != 2 || ps[2].Number() != 4 || ps[3].Text != "- b" {
		t.Errorf("unexpected split: %+v", ps)
	}
}

func TestSplit_Revisers(t *testing.T) {
	t.Parallel()

	p := split(t, "$$=3 ###-#=2 v=+0.5 <=-1.0 **^R^本文^R^**")[0]
	if !reflect.DeepEqual(p.ChapterRevisers, []string{"$$=3"}) {
		t.Errorf("chapter = %q", p.ChapterRevisers)
	}
	if !reflect.DeepEqual(p.SectionRevisers, []string{"###-#=2"}) {
		t.Errorf("section = %q", p.SectionRevisers)
	}
	if !reflect.DeepEqual(p.LengthRevisers, []string{"v=+0.5", "<=-1.0"}) {
		t.Errorf("length = %q", p.LengthRevisers)
	}
	if !reflect.DeepEqual(p.HeadFont, []string{"**", "^R^"}) || !reflect.DeepEqual(p.TailFont, []string{"^R^", "**"}) {
		t.Errorf("font = %q / %q", p.HeadFont, p.TailFont)
	}
	if p.Text != "本文" {
		t.Errorf("Text = %q", p.Text)
	}
}

func TestSplit_ListReviserKeepsIndent(t *testing.T) {
	t.Parallel()

	p := split(t, "  1.=4\n  1. item")[0]
	if !reflect.DeepEqual(p.ListRevisers, []string{"  1.=4"}) {
		t.Errorf("list revisers = %q", p.ListRevisers)
	}
	p = split(t, "  1. item")[0]
	if p.Text != "  1. item" {
		t.Errorf("Text = %q", p.Text)
	}
}

func TestSplit_SymbolWithRevisersAndSetters(t *testing.T) {
	t.Parallel()

	p := split(t, "# ###=1")[0]
	if p.Text != "" || !reflect.DeepEqual(p.SectionRevisers, []string{"###=1"}) ||
		!reflect.DeepEqual(p.DepthSetters, []string{"#"}) {
		t.Errorf("symbol revisers = %q / %q / %q", p.Text, p.SectionRevisers, p.DepthSetters)
	}

	p = split(t, "##")[0]
	if p.Text != "" || !reflect.DeepEqual(p.DepthSetters, []string{"##"}) {
		t.Errorf("depth setter = %q / %q", p.Text, p.DepthSetters)
	}

	p = split(t, "v=+1.0\n#")[0]
	if p.Text != "" || !reflect.DeepEqual(p.DepthSetters, []string{"#"}) ||
		!reflect.DeepEqual(p.LengthRevisers, []string{"v=+1.0"}) {
		t.Errorf("spaced setter = %q / %q / %q", p.Text, p.DepthSetters, p.LengthRevisers)
	}
}

func TestSplit_HorizontalLineIsNotAReviser(t *testing.T) {
	t.Parallel()

	p := split(t, "---")[0]
	if p.Text != "---" || len(p.HeadFont) != 0 {
		t.Errorf("horizontal line = %+v", p)
	}
}

func TestBody_Concatenate(t *testing.T) {
	t.Parallel()

	p := split(t, "word\nnext\n日本\n語")[0]
	if got := p.Body(); got != "word next日本語" {
		t.Errorf("Body = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Decode
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	t.Parallel()

	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("第１条　目的"))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		data []byte
		want string
		enc  string
	}{
		{"utf8", []byte("本文"), "本文", "UTF-8"},
		{"shift_jis", sjis, "第１条　目的", "Shift_JIS"},
	}
	for _, tt := range tests {
		got, enc, err := mdtoken.Decode(tt.data)
		if err != nil || got != tt.want || enc != tt.enc {
			t.Errorf("%s: Decode = %q, %q, %v", tt.name, got, enc, err)
		}
	}

	if _, _, err := mdtoken.Decode([]byte{0x81, 0xFF, 0xFF, 0x8E}); !errors.Is(err, mdtoken.ErrUndecodable) {
		t.Errorf("Decode(garbage) = %v, want ErrUndecodable", err)
	}
}
