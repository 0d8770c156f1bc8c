// Package length models the six spacing and indentation quantities of a
// paragraph in character-relative units and converts them to and from the
// twentieths of a point stored in document.xml.
//
// Vertical quantities (space before and after) are measured in line
// heights, horizontal ones (indents) in character widths, and line
// spacing as a delta over the document line spacing. A paragraph's value
// is the sum of four independently computed layers: Docx, Class, Config
// and Reviser.
package length

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alnah/go-makdo/internal/paragraph"
)

// Table paragraphs carry fixed spacing so that the grid lines do not
// touch the surrounding text.
const (
	TableSpaceBefore = 0.45
	TableSpaceAfter  = 0.2
)

// Attrs is one value of every length quantity.
type Attrs struct {
	SpaceBefore float64
	SpaceAfter  float64
	LineSpacing float64
	FirstIndent float64
	LeftIndent  float64
	RightIndent float64
}

func (a Attrs) values() [6]float64 {
	return [6]float64{a.SpaceBefore, a.SpaceAfter, a.LineSpacing, a.FirstIndent, a.LeftIndent, a.RightIndent}
}

func fromValues(v [6]float64) Attrs {
	return Attrs{v[0], v[1], v[2], v[3], v[4], v[5]}
}

// Plus returns a + b.
func (a Attrs) Plus(b Attrs) Attrs {
	av, bv := a.values(), b.values()
	for i := range av {
		av[i] += bv[i]
	}
	return fromValues(av)
}

// Minus returns a - b.
func (a Attrs) Minus(b Attrs) Attrs {
	av, bv := a.values(), b.values()
	for i := range av {
		av[i] -= bv[i]
	}
	return fromValues(av)
}

// Rounded rounds every quantity to two decimals.
func (a Attrs) Rounded() Attrs {
	v := a.values()
	for i := range v {
		v[i] = Round(v[i])
	}
	return fromValues(v)
}

// IsZero reports whether every quantity is zero.
func (a Attrs) IsZero() bool { return a == Attrs{} }

// Round rounds half away from zero to two decimals.
func Round(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

// Layers holds the four additive layers of a paragraph.
type Layers struct {
	Docx    Attrs // read from document.xml, or the computed export value
	Class   Attrs // paragraph kind and depth
	Config  Attrs // per-depth space tables of the document
	Reviser Attrs // explicit v=, V=, X=, <<=, <=, >= tokens

	// Extra is spacing an import moved into this paragraph from a
	// neighbour, such as the blank paragraphs before it.
	Extra Attrs
}

// Residual is the reviser layer an import must emit to reproduce Docx:
// Docx - Class - Config + Extra, rounded.
func (l Layers) Residual() Attrs {
	return l.Docx.Minus(l.Class).Minus(l.Config).Plus(l.Extra).Rounded()
}

// Total is the export value before leakage correction: Reviser + Config +
// Class.
func (l Layers) Total() Attrs {
	return l.Reviser.Plus(l.Config).Plus(l.Class)
}

// Context is what the class layer depends on.
type Context struct {
	Kind   paragraph.Kind
	Depths paragraph.Depths
	// Articles is the current value of the 第N counter; 0 means no
	// article heading has been seen yet.
	Articles int
	// Statute is set for documents in article-paragraph style, where a
	// paragraph under an article is unnumbered.
	Statute bool
}

// ClassDefault returns the class layer.
func ClassDefault(c Context) Attrs {
	var a Attrs
	hd, td := float64(c.Depths.Head), float64(c.Depths.Tail)
	switch c.Kind {
	case paragraph.Chapter:
		a.FirstIndent = -1
		a.LeftIndent = float64(c.Depths.Proper)
	case paragraph.Section:
		if c.Depths.Head > 1 {
			a.FirstIndent = hd - td - 1
		}
		if c.Depths.Tail > 1 {
			a.LeftIndent = td - 1
		}
	case paragraph.List:
		a.FirstIndent = -1
		a.LeftIndent = float64(c.Depths.Proper)
		if c.Depths.Tail > 0 {
			a.LeftIndent += td - 1
		}
	case paragraph.Table:
		a.SpaceBefore = TableSpaceBefore
		a.SpaceAfter = TableSpaceAfter
	case paragraph.Preformatted:
		if c.Depths.Tail > 0 {
			a.LeftIndent = td
		}
	case paragraph.Sentence:
		if c.Depths.Tail > 0 {
			a.FirstIndent = 1
			a.LeftIndent = td - 1
		}
	}
	switch c.Kind {
	case paragraph.Section, paragraph.List, paragraph.Preformatted, paragraph.Sentence:
		if c.Articles <= 0 && c.Depths.Tail > 2 {
			a.LeftIndent--
		}
	}
	if c.Statute && c.Articles > 0 && c.Depths.Tail > 2 {
		a.LeftIndent--
	}
	return a
}

// ConfigDefault returns the config layer: section headings take the space
// before of their first depth and the space after of their last depth.
// Entries are indexed by depth-1; missing entries count as zero.
func ConfigDefault(kind paragraph.Kind, d paragraph.Depths, before, after []float64) Attrs {
	var a Attrs
	if kind != paragraph.Section {
		return a
	}
	if d.Head >= 1 && d.Head <= len(before) {
		a.SpaceBefore = before[d.Head-1]
	}
	if d.Tail >= 1 && d.Tail <= len(after) {
		a.SpaceAfter = after[d.Tail-1]
	}
	return a
}

// LeakExport turns a total into the docx layer. Word adds part of the
// line spacing delta above and below each line: 75% before, 25% after.
func LeakExport(a Attrs) Attrs {
	ls75 := a.LineSpacing * .75
	ls25 := a.LineSpacing * .25
	if a.LineSpacing <= 0 {
		a.SpaceBefore = leakDown(a.SpaceBefore, ls75, 1)
		a.SpaceAfter = leakDown(a.SpaceAfter, ls25, 1)
	} else {
		a.SpaceBefore = leakDown(a.SpaceBefore, ls75, 2)
		a.SpaceAfter = leakDown(a.SpaceAfter, ls25, 2)
	}
	return a
}

// leakDown subtracts share when v >= share*k, otherwise scales a small
// non-negative v: doubled when k is 1, halved when k is 2.
func leakDown(v, share, k float64) float64 {
	switch {
	case v >= share*k:
		return v - share
	case v >= 0 && k == 1:
		return v * 2
	case v >= 0:
		return v / 2
	}
	return v
}

// LeakImport is the inverse of LeakExport, applied to values already
// rounded to two decimals.
func LeakImport(a Attrs) Attrs {
	ls75 := Round(a.LineSpacing * .75)
	ls25 := Round(a.LineSpacing * .25)
	if a.LineSpacing <= 0 {
		a.SpaceBefore = leakUp(a.SpaceBefore, ls75, 2)
		a.SpaceAfter = leakUp(a.SpaceAfter, ls25, 2)
	} else {
		a.SpaceBefore = leakUp(a.SpaceBefore, ls75, 1)
		a.SpaceAfter = leakUp(a.SpaceAfter, ls25, 1)
	}
	return a
}

func leakUp(v, share, k float64) float64 {
	switch {
	case v >= share*k:
		return v + share
	case v >= 0 && k == 2:
		return v / 2
	case v >= 0:
		return v * 2
	}
	return v
}

// Reviser token prefixes in output order.
var reviserKeys = [6]string{"v=", "V=", "X=", "<<=", "<=", ">="}

// indent revisers are written as positive distances to the left.
var reviserSign = [6]float64{1, 1, 1, -1, -1, -1}

// Format renders the non-zero quantities of a residual as reviser tokens,
// such as "v=+0.5", "<=+1.0".
func Format(a Attrs) []string {
	var out []string
	for i, v := range a.values() {
		if v == 0 {
			continue
		}
		out = append(out, reviserKeys[i]+FormatNumber(v*reviserSign[i]))
	}
	return out
}

// FormatNumber renders v with an explicit sign and at least one decimal.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(Round(v), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	if v >= 0 {
		s = "+" + s
	}
	return s
}

// ParseReviser applies one v=, V=, X=, <<=, <= or >= token to a reviser
// layer. ok is false when tok is not a length reviser.
func ParseReviser(tok string, a *Attrs) (ok bool) {
	for i, key := range reviserKeys {
		rest, found := strings.CutPrefix(tok, key)
		if !found {
			continue
		}
		v, err := parseNumber(rest)
		if err != nil {
			return false
		}
		*a.ptrs()[i] += v * reviserSign[i]
		return true
	}
	return false
}

func (a *Attrs) ptrs() [6]*float64 {
	return [6]*float64{&a.SpaceBefore, &a.SpaceAfter, &a.LineSpacing, &a.FirstIndent, &a.LeftIndent, &a.RightIndent}
}

func parseNumber(s string) (float64, error) {
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 || body == "" || strings.HasSuffix(body, ".") {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	for _, r := range body {
		if (r < '0' || r > '9') && r != '.' {
			return 0, fmt.Errorf("invalid number %q", s)
		}
	}
	return strconv.ParseFloat(s, 64)
}
