// Package docx reads and writes the zip container of a Word document.
// Parts are held in memory by their archive path.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// Well-known part names.
const (
	PartContentTypes = "[Content_Types].xml"
	PartRootRels     = "_rels/.rels"
	PartDocument     = "word/document.xml"
	PartDocumentRels = "word/_rels/document.xml.rels"
	PartStyles       = "word/styles.xml"
	PartSettings     = "word/settings.xml"
	PartFontTable    = "word/fontTable.xml"
	PartHeader       = "word/header1.xml"
	PartFooter       = "word/footer1.xml"
	PartCore         = "docProps/core.xml"
	PartApp          = "docProps/app.xml"
	MediaDir         = "word/media/"
)

// MaxPartSize bounds a single decompressed part.
const MaxPartSize = 64 << 20

var (
	ErrInvalidArchive = errors.New("invalid docx archive")
	ErrMissingPart    = errors.New("missing part")
	ErrPartTooLarge   = errors.New("part too large")
)

// Archive is a docx package in memory.
type Archive struct {
	parts map[string][]byte
}

// New returns an empty archive.
func New() *Archive {
	return &Archive{parts: make(map[string][]byte)}
}

// Read loads every part of a docx file.
func Read(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}
	a := New()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		b, err := readFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArchive, f.Name, err)
		}
		a.parts[f.Name] = b
	}
	if _, ok := a.parts[PartDocument]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, PartDocument)
	}
	return a, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
	if err != nil {
		return nil, err
	}
	if len(b) > MaxPartSize {
		return nil, ErrPartTooLarge
	}
	return b, nil
}

// Part returns the content of a part.
func (a *Archive) Part(name string) ([]byte, bool) {
	b, ok := a.parts[name]
	return b, ok
}

// Require returns a part that must exist.
func (a *Archive) Require(name string) ([]byte, error) {
	b, ok := a.parts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
	}
	return b, nil
}

// Set adds or replaces a part.
func (a *Archive) Set(name string, data []byte) {
	a.parts[name] = data
}

// Names returns the part names in sorted order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.parts))
	for n := range a.parts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Media returns the names of the parts under word/media/.
func (a *Archive) Media() []string {
	var out []string
	for _, n := range a.Names() {
		if strings.HasPrefix(n, MediaDir) {
			out = append(out, n)
		}
	}
	return out
}

// Bytes writes the archive. [Content_Types].xml is generated from the
// parts and written first, as Word expects.
func (a *Archive) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, data []byte) error {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	if err := write(PartContentTypes, ContentTypes(a.Names())); err != nil {
		return nil, err
	}
	for _, n := range a.Names() {
		if n == PartContentTypes {
			continue
		}
		if err := write(n, a.parts[n]); err != nil {
			return nil, fmt.Errorf("writing %s: %w", n, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MediaTypes maps image extensions to MIME types.
var MediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".svg":  "image/svg+xml",
}

var overrideTypes = map[string]string{
	PartDocument:  "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml",
	PartStyles:    "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml",
	PartSettings:  "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml",
	PartFontTable: "application/vnd.openxmlformats-officedocument.wordprocessingml.fontTable+xml",
	PartHeader:    "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml",
	PartFooter:    "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml",
	PartCore:      "application/vnd.openxmlformats-package.core-properties+xml",
	PartApp:       "application/vnd.openxmlformats-officedocument.extended-properties+xml",
}

// ContentTypes builds [Content_Types].xml for the given part names.
func ContentTypes(names []string) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	seen := map[string]bool{}
	for _, n := range names {
		ext := strings.ToLower(path.Ext(n))
		if mt, ok := MediaTypes[ext]; ok && !seen[ext] {
			seen[ext] = true
			fmt.Fprintf(&sb, `<Default Extension="%s" ContentType="%s"/>`, ext[1:], mt)
		}
	}
	for _, n := range names {
		if ct, ok := overrideTypes[n]; ok {
			fmt.Fprintf(&sb, `<Override PartName="/%s" ContentType="%s"/>`, n, ct)
		}
	}
	sb.WriteString(`</Types>`)
	return []byte(sb.String())
}
