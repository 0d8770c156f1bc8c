package table

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/textwidth"
)

// Cell is one cell read from a docx table.
type Cell struct {
	Text  string // Markdown text; "\n" is a line break
	Align paragraph.Align
}

// GridWidth converts a w:gridCol width in twentieths of a point into the
// number of dashes of the configuration row.
func GridWidth(twips, fontSize float64) int {
	return max(2, int(math.Round(twips/(fontSize*SmallScale)/10))-4)
}

var (
	breakSpace = regexp.MustCompile(`<br>(\s+)`)
	breakText  = regexp.MustCompile(`<br>([^|\\\n])`)
)

// Render writes rows as a pipe table. The configuration row is placed
// above the first row whose alignments equal those of the middle row, so
// that the rows above it read as centered headers. Rows wider than the
// ideal width are folded into one cell per line with "\" continuations.
func Render(rows [][]Cell, widths []int) string {
	if len(rows) == 0 {
		return ""
	}
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	for len(widths) < cols {
		widths = append(widths, 2)
	}
	aligns := make([][]string, len(rows))
	for i, r := range rows {
		aligns[i] = make([]string, cols)
		for j := range cols {
			a := paragraph.AlignLeft
			if j < len(r) {
				a = r[j].Align
			}
			aligns[i][j] = configCellFor(a, widths[j])
		}
	}
	middle := aligns[len(rows)/2]

	var lines []string
	inHead := true
	for i, r := range rows {
		if inHead && slices.Equal(aligns[i], middle) {
			lines = append(lines, "|"+strings.Join(middle, "|")+"|")
			inHead = false
		}
		cells := make([]string, cols)
		for j := range cols {
			if j < len(r) {
				cells[j] = escapeCell(r[j].Text)
			}
		}
		lines = append(lines, "|"+strings.Join(cells, "|")+"|")
	}

	for _, l := range lines {
		if textwidth.Of(l) > textwidth.Ideal {
			return fold(lines)
		}
	}
	return strings.Join(lines, "\n")
}

func configCellFor(a paragraph.Align, w int) string {
	switch a {
	case paragraph.AlignCenter:
		return ":" + strings.Repeat("-", max(1, w-2)) + ":"
	case paragraph.AlignRight:
		return strings.Repeat("-", max(1, w-1)) + ":"
	}
	return ":" + strings.Repeat("-", max(1, w-1))
}

func escapeCell(s string) string {
	var sb strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		switch {
		case rs[i] == '\\' && i+1 < len(rs):
			sb.WriteRune(rs[i])
			sb.WriteRune(rs[i+1])
			i++
		case rs[i] == '|':
			sb.WriteString(`\|`)
		case rs[i] == '\n':
			sb.WriteString("<br>")
		default:
			sb.WriteRune(rs[i])
		}
	}
	return sb.String()
}

// fold puts every cell on its own line.
func fold(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		cells := splitCells(strings.TrimSuffix(strings.TrimPrefix(l, "|"), "|"))
		for j, c := range cells {
			c = breakSpace.ReplaceAllString(c, `<br>\$1`)
			c = breakText.ReplaceAllString(c, "<br>\\\n    $1")
			cells[j] = c
		}
		out[i] = "|" + strings.Join(cells, "\\\n  |") + "|"
	}
	return strings.Join(out, "\n")
}
