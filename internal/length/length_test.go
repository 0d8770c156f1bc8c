package length_test

// Notes:
// - Metrics use the default document: 12pt, line spacing 2.14.
// - 280 twips before resolves to 0.55 lines (280/20/12/2.14 = 0.545);
//   257 twips is the value that lands on exactly 0.5.

import (
	"reflect"
	"testing"

	"github.com/alnah/go-makdo/internal/length"
	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/warning"
)

var metrics = length.Metrics{FontSize: 12, LineSpacing: 2.14}

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

func TestImport_SpaceBeforeReviser(t *testing.T) {
	t.Parallel()

	docx := metrics.Import(length.Native{Before: 257})
	if docx.SpaceBefore != 0.5 {
		t.Fatalf("SpaceBefore = %v, want 0.5", docx.SpaceBefore)
	}
	layers := length.Layers{Docx: docx}
	got := length.Format(layers.Residual())
	if !reflect.DeepEqual(got, []string{"v=+0.5"}) {
		t.Errorf("revisers = %v, want [v=+0.5]", got)
	}
}

func TestImport_Rounding(t *testing.T) {
	t.Parallel()

	if got := metrics.Import(length.Native{Before: 280}).SpaceBefore; got != 0.55 {
		t.Errorf("SpaceBefore(280) = %v, want 0.55", got)
	}
}

func TestImport_Indents(t *testing.T) {
	t.Parallel()

	got := metrics.Import(length.Native{Hanging: 240, Left: 480, Right: 120, TableIndent: 240})
	want := length.Attrs{FirstIndent: -1, LeftIndent: 3, RightIndent: 0.5}
	if got != want {
		t.Errorf("Import = %+v, want %+v", got, want)
	}
}

// ---------------------------------------------------------------------------
// Round trips
// ---------------------------------------------------------------------------

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []length.Attrs{
		{SpaceBefore: 0.5},
		{SpaceBefore: 0.5, LineSpacing: 0.2},
		{SpaceBefore: 1, SpaceAfter: 0.5, LineSpacing: -0.2},
		{SpaceBefore: 0.1, LineSpacing: 0.5},
		{FirstIndent: -1, LeftIndent: 2, RightIndent: 1.5},
		{FirstIndent: 1},
	}

	for _, want := range tests {
		var c warning.Collector
		native := metrics.Export(want, c.At(1, ""))
		if got := metrics.Import(native); got != want {
			t.Errorf("Import(Export(%+v)) = %+v", want, got)
		}
		if c.Len() != 0 {
			t.Errorf("Export(%+v) warnings = %v", want, c.All())
		}
	}
}

func TestRule_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []length.Attrs{
		{},
		{SpaceBefore: 0.5},
		{LineSpacing: 0.4},
		{SpaceBefore: 1, SpaceAfter: 0.5, LeftIndent: 2},
	}
	for _, want := range tests {
		if got := metrics.ImportRule(metrics.ExportRule(want)); got != want {
			t.Errorf("ImportRule(ExportRule(%+v)) = %+v", want, got)
		}
	}
}

func TestExport_Clamps(t *testing.T) {
	t.Parallel()

	var c warning.Collector
	n := metrics.Export(length.Attrs{SpaceBefore: -2, LineSpacing: -0.9}, c.At(3, ""))
	if n.Before != 0 {
		t.Errorf("Before = %v, want 0", n.Before)
	}
	if n.Line != 12*20 {
		t.Errorf("Line = %v, want %v", n.Line, 12*20)
	}
	if c.Len() != 2 {
		t.Errorf("warnings = %v, want 2", c.All())
	}
}

// ---------------------------------------------------------------------------
// Layers
// ---------------------------------------------------------------------------

func TestClassDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  length.Context
		want length.Attrs
	}{
		{"chapter", length.Context{Kind: paragraph.Chapter, Depths: paragraph.Depths{Proper: 1}},
			length.Attrs{FirstIndent: -1, LeftIndent: 1}},
		{"title", length.Context{Kind: paragraph.Section, Depths: paragraph.Depths{Head: 1, Tail: 1}}, length.Attrs{}},
		{"section depth 3", length.Context{Kind: paragraph.Section, Depths: paragraph.Depths{Head: 3, Tail: 3}, Articles: 1},
			length.Attrs{FirstIndent: -1, LeftIndent: 2}},
		{"section depth 3 without article", length.Context{Kind: paragraph.Section, Depths: paragraph.Depths{Head: 3, Tail: 3}},
			length.Attrs{FirstIndent: -1, LeftIndent: 1}},
		{"composite section", length.Context{Kind: paragraph.Section, Depths: paragraph.Depths{Head: 3, Tail: 4}, Articles: 1},
			length.Attrs{FirstIndent: -2, LeftIndent: 3}},
		{"sentence", length.Context{Kind: paragraph.Sentence, Depths: paragraph.Depths{Head: 2, Tail: 2}},
			length.Attrs{FirstIndent: 1, LeftIndent: 1}},
		{"statute sentence", length.Context{Kind: paragraph.Sentence, Depths: paragraph.Depths{Head: 3, Tail: 3}, Articles: 2, Statute: true},
			length.Attrs{FirstIndent: 1, LeftIndent: 1}},
		{"list", length.Context{Kind: paragraph.List, Depths: paragraph.Depths{Head: 2, Tail: 2, Proper: 1}},
			length.Attrs{FirstIndent: -1, LeftIndent: 2}},
		{"table", length.Context{Kind: paragraph.Table},
			length.Attrs{SpaceBefore: length.TableSpaceBefore, SpaceAfter: length.TableSpaceAfter}},
		{"preformatted", length.Context{Kind: paragraph.Preformatted, Depths: paragraph.Depths{Tail: 2}},
			length.Attrs{LeftIndent: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := length.ClassDefault(tt.ctx); got != tt.want {
				t.Errorf("ClassDefault = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfigDefault(t *testing.T) {
	t.Parallel()

	before := []float64{0.5, 0, 0.25}
	after := []float64{0.5, 0.1}
	got := length.ConfigDefault(paragraph.Section, paragraph.Depths{Head: 1, Tail: 2}, before, after)
	if got != (length.Attrs{SpaceBefore: 0.5, SpaceAfter: 0.1}) {
		t.Errorf("ConfigDefault = %+v", got)
	}
	if got := length.ConfigDefault(paragraph.Section, paragraph.Depths{Head: 7, Tail: 7}, before, after); !got.IsZero() {
		t.Errorf("out of table = %+v, want zero", got)
	}
	if got := length.ConfigDefault(paragraph.Sentence, paragraph.Depths{Head: 1, Tail: 1}, before, after); !got.IsZero() {
		t.Errorf("sentence = %+v, want zero", got)
	}
}

func TestLayers_ResidualAndTotal(t *testing.T) {
	t.Parallel()

	l := length.Layers{
		Docx:   length.Attrs{SpaceBefore: 1, FirstIndent: -1, LeftIndent: 3},
		Class:  length.Attrs{FirstIndent: -1, LeftIndent: 2},
		Config: length.Attrs{SpaceBefore: 0.5},
	}
	res := l.Residual()
	if res != (length.Attrs{SpaceBefore: 0.5, LeftIndent: 1}) {
		t.Fatalf("Residual = %+v", res)
	}
	l.Reviser = res
	if l.Total() != l.Docx {
		t.Errorf("Total = %+v, want %+v", l.Total(), l.Docx)
	}
}

func TestLayers_ResidualExtra(t *testing.T) {
	t.Parallel()

	// Notes:
	// - two blank paragraphs absorbed into the next one add two lines
	l := length.Layers{
		Docx:  length.Attrs{SpaceBefore: 0.5},
		Extra: length.Attrs{SpaceBefore: 2},
	}
	if got := length.Format(l.Residual()); len(got) != 1 || got[0] != "v=+2.5" {
		t.Errorf("Residual tokens = %q, want [v=+2.5]", got)
	}
}

// ---------------------------------------------------------------------------
// Reviser tokens
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	t.Parallel()

	got := length.Format(length.Attrs{SpaceBefore: 0.5, SpaceAfter: -0.25, LineSpacing: 0.1, FirstIndent: -1, LeftIndent: 2, RightIndent: 1})
	want := []string{"v=+0.5", "V=-0.25", "X=+0.1", "<<=+1.0", "<=-2.0", ">=-1.0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Format = %v, want %v", got, want)
	}
}

func TestParseReviser(t *testing.T) {
	t.Parallel()

	var a length.Attrs
	for _, tok := range []string{"v=+0.5", "V=-0.25", "X=.1", "<<=1", "<=-2", ">=-1.0"} {
		if !length.ParseReviser(tok, &a) {
			t.Errorf("ParseReviser(%q) = false", tok)
		}
	}
	want := length.Attrs{SpaceBefore: 0.5, SpaceAfter: -0.25, LineSpacing: 0.1, FirstIndent: -1, LeftIndent: 2, RightIndent: 1}
	if a != want {
		t.Errorf("attrs = %+v, want %+v", a, want)
	}
	for _, tok := range []string{"v=", "v=abc", "v=1.", "w=1", "v=+-1"} {
		if length.ParseReviser(tok, &a) {
			t.Errorf("ParseReviser(%q) = true", tok)
		}
	}
}
