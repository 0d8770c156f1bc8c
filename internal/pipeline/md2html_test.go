package pipeline

// Notes:
// - Preview output is checked by landmarks, not by full HTML: goldmark and
//   chroma own the exact markup
// - Inline styles are asserted as the strings boxStyle and spanStyle
//   write, which keeps those helpers and the page in step

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/length"
	"github.com/alnah/go-makdo/internal/paragraph"
)

func preview(t *testing.T, pv *Previewer, text string) string {
	t.Helper()
	out, err := pv.Preview(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestPreview - Page Landmarks
// ---------------------------------------------------------------------------

func TestPreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "numbered headings",
			text:         "# 契約書\n\n## 目的\n",
			wantContains: []string{"<h1><span style=\"display:block;text-align:center;\">契約書", "<h2>", "第１", "目的"},
		},
		{
			name:         "body indent and bold",
			text:         "## 目的\n\n**太字**です。\n",
			wantContains: []string{"text-indent:1em;margin-left:1em;", `<span style="font-weight:bold;">太字</span>です。`},
		},
		{
			name:         "alignment",
			text:         ": 中央 :\n",
			wantContains: []string{"text-align:center;", "中央"},
		},
		{
			name:         "code block highlighted",
			text:         "```go\nx := 1\n```\n",
			wantContains: []string{`class="chroma"`, ".chroma"},
		},
		{
			name:         "table",
			text:         "|a|b|\n|:-|-:|\n|c|d|\n",
			wantContains: []string{"<table>", "<td", ">d<"},
		},
		{
			name:         "page break",
			text:         "前\n\n<pgbr>\n\n後\n",
			wantContains: []string{"makdo-pagebreak"},
		},
		{
			name:         "raw html escaped",
			text:         "<script>alert(1)</script>\n",
			wantContains: []string{"&lt;script&gt;"},
			wantExcludes: []string{"<script>"},
		},
		{
			name:         "default title",
			text:         "本文\n",
			wantContains: []string{"<title>makdo</title>", "font-size: 12pt;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := preview(t, &Previewer{Base: document.Default()}, tt.text)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output lacks %q:\n%s", want, got)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(got, bad) {
					t.Errorf("output contains %q:\n%s", bad, got)
				}
			}
		})
	}
}

func TestPreview_Sheet(t *testing.T) {
	t.Parallel()

	got := preview(t, &Previewer{Base: document.Default()}, "本文\n")
	if !strings.Contains(got, ".makdo-pagebreak") {
		t.Errorf("default sheet missing:\n%s", got)
	}
	got = preview(t, &Previewer{Base: document.Default(), Sheet: "p { color: navy; }"}, "本文\n")
	if !strings.Contains(got, "p { color: navy; }") || strings.Contains(got, ".makdo-pagebreak {") {
		t.Errorf("custom sheet not used:\n%s", got)
	}
}

func TestPreview_ImageDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got := preview(t, &Previewer{Base: document.Default(), ImageDir: dir}, "![図](fig/a.png)\n")
	want := "file://" + filepath.ToSlash(filepath.Join(dir, "fig", "a.png"))
	if !strings.Contains(got, want) {
		t.Errorf("output lacks %q:\n%s", want, got)
	}
}

func TestPreview_Errors(t *testing.T) {
	t.Parallel()

	base := document.Default()
	base.LineSpacing = 0
	_, err := (&Previewer{Base: base}).Preview(context.Background(), "本文\n", nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Preview() error = %v, want ErrInvalidConfig", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Previewer{Base: document.Default()}).Preview(ctx, "本文\n", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Preview() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestHTMLTags(t *testing.T) {
	t.Parallel()

	tags := &htmlTags{}
	s := tags.put("<b>") + "x" + tags.put("</b>") + tagOpen + "9" + tagClose
	if got := tags.restore(s); got != "<b>x</b>" {
		t.Errorf("restore() = %q, want %q", got, "<b>x</b>")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"本文", "本文"},
		{"*a*", `\*a\*`},
		{"1. x", `1\. x`},
		{"<b>", `\<b\>`},
	}

	for _, tt := range tests {
		if got := escapeMarkdown(tt.in); got != tt.want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBoxStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attrs length.Attrs
		align paragraph.Align
		want  string
	}{
		{"empty", length.Attrs{}, paragraph.AlignNone, ""},
		{"indents", length.Attrs{FirstIndent: -1, LeftIndent: 2}, paragraph.AlignNone, "text-indent:-1em;margin-left:2em;"},
		{"space before in lines", length.Attrs{SpaceBefore: 1}, paragraph.AlignNone, "margin-top:2em;"},
		{"right", length.Attrs{}, paragraph.AlignRight, "text-align:right;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := boxStyle(tt.attrs, tt.align, 2); got != tt.want {
				t.Errorf("boxStyle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsUnder(t *testing.T) {
	t.Parallel()

	dir := filepath.FromSlash("/docs")
	tests := []struct {
		p    string
		want bool
	}{
		{filepath.FromSlash("/docs/fig/a.png"), true},
		{filepath.FromSlash("/docs/../etc/passwd"), false},
		{filepath.FromSlash("/other/a.png"), false},
	}

	for _, tt := range tests {
		if got := isUnder(filepath.Clean(tt.p), dir); got != tt.want {
			t.Errorf("isUnder(%q) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
