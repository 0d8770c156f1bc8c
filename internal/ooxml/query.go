package ooxml

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// ErrMalformed is returned when a part or block is not well-formed XML.
var ErrMalformed = errors.New("malformed XML")

// Namespaces of the WordprocessingML vocabularies used in document parts.
var Namespaces = map[string]string{
	"w":       "http://schemas.openxmlformats.org/wordprocessingml/2006/main",
	"r":       "http://schemas.openxmlformats.org/officeDocument/2006/relationships",
	"wp":      "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing",
	"a":       "http://schemas.openxmlformats.org/drawingml/2006/main",
	"pic":     "http://schemas.openxmlformats.org/drawingml/2006/picture",
	"mc":      "http://schemas.openxmlformats.org/markup-compatibility/2006",
	"v":       "urn:schemas-microsoft-com:vml",
	"o":       "urn:schemas-microsoft-com:office:office",
	"w14":     "http://schemas.microsoft.com/office/word/2010/wordml",
	"wps":     "http://schemas.microsoft.com/office/word/2010/wordprocessingShape",
	"cp":      "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
	"dc":      "http://purl.org/dc/elements/1.1/",
	"dcterms": "http://purl.org/dc/terms/",
	"xsi":     "http://www.w3.org/2001/XMLSchema-instance",
}

var prefixUse = regexp.MustCompile(`[<\s/]([A-Za-z][A-Za-z0-9]*):[A-Za-z]`)

// Parse parses a whole part.
func Parse(data []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return doc, nil
}

// ParseBlock parses a block on its own. The prefixes it uses are declared
// on a wrapping element so that no ancestor is needed; the returned node is
// the block's element.
func ParseBlock(b Block) (*xmlquery.Node, error) {
	body := b.XML()
	var sb strings.Builder
	sb.WriteString("<fragment")
	for _, p := range usedPrefixes(body) {
		if p == "xml" || p == "xmlns" {
			continue
		}
		uri, ok := Namespaces[p]
		if !ok {
			uri = "urn:makdo:" + p
		}
		fmt.Fprintf(&sb, ` xmlns:%s="%s"`, p, uri)
	}
	sb.WriteString(">")
	sb.WriteString(body)
	sb.WriteString("</fragment>")
	doc, err := Parse([]byte(sb.String()))
	if err != nil {
		return nil, err
	}
	root := xmlquery.FindOne(doc, "/fragment")
	if root == nil {
		return nil, ErrMalformed
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c, nil
		}
	}
	return root, nil
}

func usedPrefixes(s string) []string {
	seen := map[string]bool{}
	for _, m := range prefixUse.FindAllStringSubmatch(s, -1) {
		seen[m[1]] = true
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Expr is a compiled XPath expression.
type Expr = *xpath.Expr

// Compile compiles an XPath expression once, panicking on a syntax error
// like regexp.MustCompile.
func Compile(expr string) Expr { return xpath.MustCompile(expr) }

// All returns the nodes under top that match e.
func All(top *xmlquery.Node, e Expr) []*xmlquery.Node {
	if top == nil {
		return nil
	}
	return xmlquery.QuerySelectorAll(top, e)
}

// One returns the first node under top that matches e, or nil.
func One(top *xmlquery.Node, e Expr) *xmlquery.Node {
	if top == nil {
		return nil
	}
	return xmlquery.QuerySelector(top, e)
}

// Has reports whether a node matching e exists under top.
func Has(top *xmlquery.Node, e Expr) bool { return One(top, e) != nil }

// Attr returns the attribute of the first node matching e, or "".
func Attr(top *xmlquery.Node, e Expr, name string) string {
	n := One(top, e)
	if n == nil {
		return ""
	}
	return n.SelectAttr(name)
}

// Float returns a numeric attribute of the first node matching e.
func Float(top *xmlquery.Node, e Expr, name string) (float64, bool) {
	s := Attr(top, e, name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Toggle reads an on/off run property like <w:b/>, <w:b w:val="0"/> or
// <w:i w:val="false"/>.
func Toggle(top *xmlquery.Node, e Expr) bool {
	n := One(top, e)
	if n == nil {
		return false
	}
	switch strings.ToLower(n.SelectAttr("w:val")) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// Is reports whether n is the element prefix:local.
func Is(n *xmlquery.Node, name string) bool {
	if n == nil || n.Type != xmlquery.ElementNode {
		return false
	}
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return n.Prefix == "" && n.Data == name
	}
	return n.Prefix == prefix && n.Data == local
}

// Elements returns the element children of n.
func Elements(n *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}
