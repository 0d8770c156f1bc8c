package markdown

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alnah/go-makdo/internal/mdtoken"
	"github.com/alnah/go-makdo/internal/textwidth"
)

// ---------------------------------------------------------------------------
// Wrap
// ---------------------------------------------------------------------------

func TestWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "短い文です。", "短い文です。"},
		{"one sentence per line", "一文目です。二文目です。", "一文目です。\n二文目です。"},
		{"conjunction", "しかし、本件は違う。", "しかし、\n本件は違う。"},
		{"not a conjunction", "しかも本件は、違う。", "しかも本件は、違う。"},
		{
			"after wo",
			strings.Repeat("漢", 30) + "を" + strings.Repeat("字", 10) + "。",
			strings.Repeat("漢", 30) + "を\n" + strings.Repeat("字", 10) + "。",
		},
		{
			"after kana",
			strings.Repeat("漢", 30) + "ですが" + strings.Repeat("漢", 10),
			strings.Repeat("漢", 30) + "ですが\n" + strings.Repeat("漢", 10),
		},
		{
			"marker kept whole",
			strings.Repeat("a", 67) + "**b",
			strings.Repeat("a", 67) + "\n**b",
		},
		{
			"escape kept whole",
			strings.Repeat("a", 67) + `\*b`,
			strings.Repeat("a", 67) + "\n" + `\*b`,
		},
		{
			"image on its own line",
			strings.Repeat("文", 10) + "![図](a.png)" + "文文文",
			strings.Repeat("文", 10) + "\n![図](a.png)\n文文文",
		},
		{"hard breaks", "一行目\n二行目", "一行目<br>\n二行目"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Wrap(tt.in)
			if got != tt.want {
				t.Errorf("Wrap(%q) =\n%s\nwant\n%s", tt.in, got, tt.want)
			}
		})
	}
}

func TestWrap_LinesFit(t *testing.T) {
	t.Parallel()

	// Notes:
	// - lines may only exceed the ideal width when no break point exists
	in := strings.Repeat("本件契約について、当事者は誠実に協議するものとする。", 4) +
		strings.Repeat("甲は乙に対し売買代金を支払う", 3)
	for _, l := range strings.Split(Wrap(in), "\n") {
		if w := textwidth.Of(l); w > textwidth.Ideal {
			t.Errorf("line %q is %d wide", l, w)
		}
	}
}

func TestWrap_SpacesReadBack(t *testing.T) {
	t.Parallel()

	in := strings.Repeat("word ", 12) + `_L_黄_L_ \*エスケープ` + strings.Repeat("です", 10)
	out := Wrap(in)
	if !strings.Contains(out, "\n") {
		t.Fatalf("Wrap() did not break %q", out)
	}
	if got := mdtoken.Split(mdtoken.Lines(out))[0].Body(); got != in {
		t.Errorf("read back = %q, want %q\nwrapped:\n%s", got, in, out)
	}
}

func TestPhrases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"金1,000円を", []string{"金1,000円を"}},
		{"金１，０００円", []string{"金１，０００円"}},
		{"甲は、乙に", []string{"甲は、", "乙に"}},
		{"「引用」の", []string{"「引用」", "の"}},
		{"one two", []string{"one ", "two"}},
		{"one 二", []string{"one 二"}},
		{"黄 \\*エ", []string{"黄 \\*エ"}},
		{"a<!--c-->b", []string{"a", "<!--", "c", "-->", "b"}},
		{"前![図](x.png)後", []string{"前", "![図](x.png)", "後"}},
		{`前\![図](x.png)`, []string{`前\![図]`, "(x.", "png)"}},
	}
	for _, tt := range tests {
		if got := phrases(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("phrases(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Paragraph
// ---------------------------------------------------------------------------

func TestParagraph_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Paragraph
		want string
	}{
		{
			"revisers and fonts",
			Paragraph{
				NumberingRevisers: []string{"###=4"},
				LengthRevisers:    []string{"v=+0.5", "<=+1.0"},
				HeadFont:          []string{"**"},
				TailFont:          []string{"**"},
				Text:              "# 本文",
			},
			"###=4\nv=+0.5 <=+1.0\n# **本文**",
		},
		{
			"colons stay outside",
			Paragraph{HeadFont: []string{"---"}, TailFont: []string{"---"}, Text: ": 右寄せ :"},
			": ---右寄せ--- :",
		},
		{
			"pre and post",
			Paragraph{Pre: "<!-- a -->", Post: "<!-- b -->", Text: "本文"},
			"<!-- a -->\n本文\n<!-- b -->",
		},
		{"empty", Paragraph{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.p.String(); got != tt.want {
				t.Errorf("String() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	got := Join([]Paragraph{{Text: "a"}, {}, {LengthRevisers: []string{"v=+1.0"}}, {Text: "b"}})
	want := "a\n\nv=+1.0\n\nb\n\n"
	if got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
}
