package docx

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/alnah/go-makdo/internal/ooxml"
)

// Relationship types referenced by the converter.
const (
	RelOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelCore           = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RelApp            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	RelStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RelSettings       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	RelFontTable      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/fontTable"
	RelHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	RelFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	RelImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID     string
	Type   string
	Target string
}

var exprRelationship = ooxml.Compile("//Relationship")

// Relationships parses a .rels part into a map keyed by ID. A missing
// part yields an empty map.
func (a *Archive) Relationships(name string) (map[string]Relationship, error) {
	out := map[string]Relationship{}
	data, ok := a.Part(name)
	if !ok {
		return out, nil
	}
	doc, err := ooxml.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for _, n := range ooxml.All(doc, exprRelationship) {
		r := Relationship{ID: n.SelectAttr("Id"), Type: n.SelectAttr("Type"), Target: n.SelectAttr("Target")}
		out[r.ID] = r
	}
	return out, nil
}

// Rels accumulates relationships for writing, numbering IDs rId1, rId2, ...
type Rels struct {
	items []Relationship
}

// Add appends a relationship and returns its ID.
func (r *Rels) Add(typ, target string) string {
	id := fmt.Sprintf("rId%d", len(r.items)+1)
	r.items = append(r.items, Relationship{ID: id, Type: typ, Target: target})
	return id
}

// Bytes renders the .rels part.
func (r *Rels) Bytes() []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, it := range r.items {
		sb.WriteString(`<Relationship Id="` + it.ID + `" Type="` + it.Type + `" Target="`)
		_ = xml.EscapeText(&sb, []byte(it.Target))
		sb.WriteString(`"`)
		if it.Type == RelHyperlink {
			sb.WriteString(` TargetMode="External"`)
		}
		sb.WriteString(`/>`)
	}
	sb.WriteString(`</Relationships>`)
	return []byte(sb.String())
}
