package length

import "github.com/alnah/go-makdo/internal/warning"

// Native is the paragraph geometry as stored in document.xml, in
// twentieths of a point. Zero means absent.
type Native struct {
	Before      float64 // w:spacing/@w:before
	After       float64 // w:spacing/@w:after
	Line        float64 // w:spacing/@w:line
	FirstLine   float64 // w:ind/@w:firstLine
	Hanging     float64 // w:ind/@w:hanging
	Left        float64 // w:ind/@w:left
	Right       float64 // w:ind/@w:right
	TableIndent float64 // w:tblInd/@w:w
}

// Metrics are the document-wide base units.
type Metrics struct {
	FontSize    float64 // pt
	LineSpacing float64 // multiple of the font size
}

// line is the height of one line in points.
func (m Metrics) line() float64 { return m.FontSize * m.LineSpacing }

// Import converts native geometry into the docx layer, applying leakage
// correction and two-decimal rounding at each step.
func (m Metrics) Import(n Native) Attrs {
	var a Attrs
	a.SpaceBefore = Round(n.Before / 20 / m.line())
	a.SpaceAfter = Round(n.After / 20 / m.line())
	if n.Line > 0 {
		a.LineSpacing = Round(n.Line/20/m.line() - 1)
	}
	a = LeakImport(a)
	a.SpaceBefore = Round(a.SpaceBefore)
	a.SpaceAfter = Round(a.SpaceAfter)
	a.FirstIndent = Round((n.FirstLine - n.Hanging) / 20 / m.FontSize)
	a.LeftIndent = Round((n.Left + n.TableIndent) / 20 / m.FontSize)
	a.RightIndent = Round(n.Right / 20 / m.FontSize)
	return a
}

// Export converts a total into native geometry. Negative spacing and a
// line shorter than the font are clamped with a warning.
func (m Metrics) Export(total Attrs, r warning.Reporter) Native {
	return m.ToNative(LeakExport(total), r)
}

// ToNative converts a docx layer, already corrected for leakage, into
// native geometry.
func (m Metrics) ToNative(a Attrs, r warning.Reporter) Native {
	var n Native
	if a.SpaceBefore >= 0 {
		n.Before = a.SpaceBefore * m.line() * 20
	} else {
		r.Warn(`"space before" is too small`)
	}
	if a.SpaceAfter >= 0 {
		n.After = a.SpaceAfter * m.line() * 20
	} else {
		r.Warn(`"space after" is too small`)
	}
	ls := m.LineSpacing * (1 + a.LineSpacing)
	if ls < 1 {
		r.Warn("too small line spacing")
		ls = 1
	}
	n.Line = ls * m.FontSize * 20
	if a.FirstIndent >= 0 {
		n.FirstLine = a.FirstIndent * m.FontSize * 20
	} else {
		n.Hanging = -a.FirstIndent * m.FontSize * 20
	}
	n.Left = a.LeftIndent * m.FontSize * 20
	n.Right = a.RightIndent * m.FontSize * 20
	return n
}

// Horizontal lines are drawn as the bottom border of an empty paragraph
// with zero line height, so the whole line height moves into the spacing.

// ExportRule returns the spacing of a horizontal line paragraph.
func (m Metrics) ExportRule(total Attrs) Native {
	size, lnsp := m.FontSize, m.LineSpacing
	n := Native{
		Before: ((lnsp-1)*0.75+0.5)*size + 0.5*total.LineSpacing*lnsp*size + total.SpaceBefore*lnsp*size,
		After:  ((lnsp-1)*0.25+0.5)*size + 0.5*total.LineSpacing*lnsp*size + total.SpaceAfter*lnsp*size,
	}
	n.Before *= 20
	n.After *= 20
	if total.FirstIndent >= 0 {
		n.FirstLine = total.FirstIndent * size * 20
	} else {
		n.Hanging = -total.FirstIndent * size * 20
	}
	n.Left = total.LeftIndent * size * 20
	n.Right = total.RightIndent * size * 20
	return n
}

// ImportRule inverts ExportRule. When the recovered spaces are equal they
// are read as a line spacing change instead.
func (m Metrics) ImportRule(n Native) Attrs {
	size, lnsp := m.FontSize, m.LineSpacing
	sb := (n.Before/20 - ((lnsp-1)*0.75+0.5)*size) / lnsp / size
	sa := (n.After/20 - ((lnsp-1)*0.25+0.5)*size) / lnsp / size
	a := Attrs{
		SpaceBefore: Round(sb),
		SpaceAfter:  Round(sa),
		FirstIndent: Round((n.FirstLine - n.Hanging) / 20 / size),
		LeftIndent:  Round((n.Left + n.TableIndent) / 20 / size),
		RightIndent: Round(n.Right / 20 / size),
	}
	if a.SpaceBefore == a.SpaceAfter && a.SpaceBefore != 0 {
		a.LineSpacing = Round(a.SpaceBefore + a.SpaceAfter)
		a.SpaceBefore, a.SpaceAfter = 0, 0
	}
	return a
}
