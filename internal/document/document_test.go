package document_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/numbering"
)

// ---------------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------------

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line  string
		check func(document.Config) bool
	}{
		{"書題名: 準備書面", func(c document.Config) bool { return c.Title == "準備書面" }},
		{"document_style: k", func(c document.Config) bool { return c.Style == numbering.StyleContract }},
		{"文書式: 条文", func(c document.Config) bool { return c.Style == numbering.StyleStatute }},
		{"用紙サ: Ａ３横", func(c document.Config) bool { return c.Paper == document.PaperA3L }},
		{"上余白: ２.５ cm", func(c document.Config) bool { return c.TopMargin == 2.5 }},
		{"right_margin：1", func(c document.Config) bool { return c.RightMargin == 1 }},
		{"頁番号: 無", func(c document.Config) bool { return c.PageNumber == "" }},
		{"頁番号: n/N", func(c document.Config) bool { return c.PageNumber == "n/N" }},
		{"行番号: 有", func(c document.Config) bool { return c.LineNumber }},
		{"文字サ: 10.5 pt", func(c document.Config) bool { return c.FontSize == 10.5 }},
		{"行間高: 2 倍", func(c document.Config) bool { return c.LineSpacing == 2 }},
		{"前余白: 0.5 倍,, 1倍", func(c document.Config) bool {
			return reflect.DeepEqual(c.SpaceBefore, []float64{0.5, 0, 1})
		}},
		{"字間整: 有", func(c document.Config) bool { return c.AutoSpace }},
		{"# 書題名: ignored", func(c document.Config) bool { return c.Title == "" }},
		{"no setting here", func(c document.Config) bool { return reflect.DeepEqual(c, document.Default()) }},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			c := document.Default()
			if err := c.Apply(tt.line); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !tt.check(c) {
				t.Errorf("config after %q = %+v", tt.line, c)
			}
		})
	}
}

func TestApply_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want error
	}{
		{"色: 赤", document.ErrUnknownKey},
		{"文書式: 小説", document.ErrInvalidValue},
		{"用紙サ: B5", document.ErrInvalidValue},
		{"上余白: wide", document.ErrInvalidValue},
		{"行番号: たぶん", document.ErrInvalidValue},
		{"前余白: 1,2,3,4,5,6,7", document.ErrInvalidValue},
	}
	for _, tt := range tests {
		c := document.Default()
		err := c.Apply(tt.line)
		if !errors.Is(err, tt.want) {
			t.Errorf("Apply(%q) = %v, want %v", tt.line, err, tt.want)
		}
		if !reflect.DeepEqual(c, document.Default()) {
			t.Errorf("Apply(%q) changed config", tt.line)
		}
	}
}

// ---------------------------------------------------------------------------
// Block
// ---------------------------------------------------------------------------

func TestBlock_RoundTrip(t *testing.T) {
	t.Parallel()

	want := document.Default()
	want.Title = "訴状"
	want.Style = numbering.StyleStatute
	want.Paper = document.PaperA4L
	want.TopMargin = 2.5
	want.Header = "別紙 :"
	want.PageNumber = "-n-"
	want.LineNumber = true
	want.FontSize = 11
	want.SpaceBefore = []float64{0.5, 0, 0.25}
	want.SpaceAfter = []float64{0.5}
	want.OriginalFile = "2024-01-02T03:04:05+09:00"

	block := want.Block()
	if !strings.HasPrefix(block, "<!--") || !strings.Contains(block, "-->") {
		t.Fatalf("block is not a comment:\n%s", block)
	}

	got := document.Default()
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimPrefix(line, "<!--")
		line = strings.TrimSuffix(line, "-->")
		if err := got.Apply(line); err != nil {
			t.Fatalf("Apply(%q): %v", line, err)
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, want)
	}
}

func TestBlock_DefaultValues(t *testing.T) {
	t.Parallel()

	block := document.Default().Block()
	for _, line := range []string{"文書式: 普通", "用紙サ: A4縦", "上余白: 3.5 cm", "頁番号: 有", "行間高: 2.14 倍", "文字サ: 12.0 pt"} {
		if !strings.Contains(block, line+"\n") {
			t.Errorf("block lacks %q", line)
		}
	}
}

// ---------------------------------------------------------------------------
// Paper and validation
// ---------------------------------------------------------------------------

func TestPaper(t *testing.T) {
	t.Parallel()

	if w, h := document.PaperA4L.Size(); w != 29.7 || h != 21.0 {
		t.Errorf("A4L = %v x %v", w, h)
	}
	if !document.PaperA3.Landscape() || document.PaperA4.Landscape() {
		t.Error("Landscape mismatch")
	}
	if got := document.PaperFromSize(29.7, 42.0); got != document.PaperA3P {
		t.Errorf("PaperFromSize = %v, want A3P", got)
	}
	if got := document.PaperFromSize(18.2, 25.7); got != document.PaperA4 {
		t.Errorf("PaperFromSize(B5) = %v, want A4", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := document.Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	bad := document.Default()
	bad.FontSize = 0
	if err := bad.Validate(); !errors.Is(err, document.ErrInvalidValue) {
		t.Errorf("Validate(font 0) = %v", err)
	}
}
