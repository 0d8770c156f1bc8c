// Package table converts between pipe tables and table grids.
//
// A pipe table may have a configuration row whose cells hold only colons,
// dashes and spaces ("|:--|:-:|--:|"). It sets the alignment and width of
// each column; rows above it are headers and are centered.
package table

import (
	"math"
	"regexp"
	"strings"

	"github.com/alnah/go-makdo/internal/paragraph"
	"github.com/alnah/go-makdo/internal/textwidth"
)

// SmallScale is the font size of table text relative to the body.
const SmallScale = 0.8

var configCell = regexp.MustCompile(`^ *:?-*:? *$`)

// Grid is a parsed pipe table.
type Grid struct {
	Rows [][]string // without the configuration row, padded to equal length
	// Aligns holds one alignment per column.
	Aligns []paragraph.Align
	// Widths holds the column widths in body characters.
	Widths []float64
	// HeadRows is the number of rows above the configuration row.
	HeadRows int
}

// Columns returns the number of columns.
func (g Grid) Columns() int { return len(g.Aligns) }

// CellAlign returns the alignment of cell (i, j).
func (g Grid) CellAlign(i, j int) paragraph.Align {
	if i < g.HeadRows {
		return paragraph.AlignCenter
	}
	return g.Aligns[j]
}

// CellText returns the text of cell (i, j) with the spaces its alignment
// ignores removed.
func (g Grid) CellText(i, j int) string {
	s := g.Rows[i][j]
	switch g.Aligns[j] {
	case paragraph.AlignCenter:
		return strings.TrimSpace(s)
	case paragraph.AlignRight:
		return strings.TrimLeft(s, " \t")
	}
	return strings.TrimRight(s, " \t")
}

// ColumnWidth returns the docx width of column j in points.
func (g Grid) ColumnWidth(j int, fontSize float64) float64 {
	return (g.Widths[j] + 2) * fontSize * SmallScale
}

// Parse reads pipe table lines. A line ending with "\" continues on the
// next line whose leading space is dropped.
func Parse(lines []string) Grid {
	var rows [][]string
	var line string
	for _, l := range lines {
		if l == "" || l == `\` {
			continue
		}
		if line != "" {
			line = strings.TrimSuffix(line, `\`) + strings.TrimLeft(l, " \t")
		} else {
			line += l
		}
		if strings.HasSuffix(line, `\`) && !strings.HasSuffix(line, `\\`) {
			continue
		}
		line = strings.TrimPrefix(line, "|")
		line = strings.TrimSuffix(line, "|")
		rows = append(rows, splitCells(line))
		line = ""
	}
	if line != "" {
		rows = append(rows, splitCells(strings.Trim(line, "|")))
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}

	var g Grid
	conf := -1
	for i, r := range rows {
		if isConfigRow(r) {
			conf = i
			break
		}
	}
	if conf >= 0 {
		for _, c := range rows[conf] {
			c = strings.ReplaceAll(c, " ", "")
			g.Aligns = append(g.Aligns, cellAlign(c))
			g.Widths = append(g.Widths, float64(len(c))/2)
		}
		g.HeadRows = conf
		rows = append(rows[:conf:conf], rows[conf+1:]...)
	} else {
		g.Aligns = make([]paragraph.Align, width)
		for j := range g.Aligns {
			g.Aligns[j] = paragraph.AlignLeft
		}
		g.Widths = make([]float64, width)
		for _, r := range rows {
			for j, c := range r {
				g.Widths[j] = math.Max(g.Widths[j], textwidth.Printed(c)/2)
			}
		}
	}
	g.Rows = rows
	return g
}

func isConfigRow(r []string) bool {
	for _, c := range r {
		if !configCell.MatchString(c) {
			return false
		}
	}
	return len(r) > 0
}

func cellAlign(c string) paragraph.Align {
	switch {
	case len(c) >= 2 && strings.HasPrefix(c, ":") && strings.HasSuffix(c, ":"):
		return paragraph.AlignCenter
	case len(c) >= 2 && strings.HasSuffix(c, ":"):
		return paragraph.AlignRight
	}
	return paragraph.AlignLeft
}

// splitCells splits on "|" not escaped by a backslash. Escapes are kept.
func splitCells(line string) []string {
	var cells []string
	var sb strings.Builder
	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		switch {
		case rs[i] == '\\' && i+1 < len(rs):
			sb.WriteRune(rs[i])
			sb.WriteRune(rs[i+1])
			i++
		case rs[i] == '|':
			cells = append(cells, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(rs[i])
		}
	}
	return append(cells, sb.String())
}
