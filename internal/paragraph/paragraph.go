// Package paragraph defines the structural roles a block of content can
// hold and the first-match-wins classifier shared by both conversion
// directions.
package paragraph

import "fmt"

// Kind is the classified role of one paragraph.
type Kind int

const (
	Empty Kind = iota
	Blank
	Chapter
	Section
	SystemList
	List
	Table
	Image
	Alignment
	Preformatted
	HorizontalLine
	Pagebreak
	Breakdown
	Configuration
	Sentence
)

var kindNames = [...]string{
	Empty:          "empty",
	Blank:          "blank",
	Chapter:        "chapter",
	Section:        "section",
	SystemList:     "system list",
	List:           "list",
	Table:          "table",
	Image:          "image",
	Alignment:      "alignment",
	Preformatted:   "preformatted",
	HorizontalLine: "horizontal line",
	Pagebreak:      "pagebreak",
	Breakdown:      "breakdown",
	Configuration:  "configuration",
	Sentence:       "sentence",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Order is the fixed evaluation priority. Sentence is the fallback and is
// never tested.
var Order = []Kind{
	Empty, Blank, Chapter, Section, SystemList, List, Table, Image,
	Alignment, Preformatted, HorizontalLine, Pagebreak, Breakdown,
	Configuration,
}

// Predicate tests whether a raw paragraph belongs to one kind. It must
// not modify its argument.
type Predicate[T any] func(raw T) bool

// Rules maps kinds to their predicates. A kind without a predicate never
// matches.
type Rules[T any] map[Kind]Predicate[T]

// Classify evaluates the predicates in Order and returns the first match,
// or Sentence.
func Classify[T any](rules Rules[T], raw T) Kind {
	for _, k := range Order {
		if p, ok := rules[k]; ok && p != nil && p(raw) {
			return k
		}
	}
	return Sentence
}

// Depths is the section context of a paragraph: the depth of its first and
// last section heading, or the enclosing depth for body paragraphs, and its
// own numbering depth for chapters and lists.
type Depths struct {
	Head   int
	Tail   int
	Proper int
}

// Alignment of a paragraph's lines.
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "both"
	}
	return ""
}
