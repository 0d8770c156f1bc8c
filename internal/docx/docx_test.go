package docx_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alnah/go-makdo/internal/docx"
)

func TestArchive_RoundTrip(t *testing.T) {
	t.Parallel()

	var rels docx.Rels
	styles := rels.Add(docx.RelStyles, "styles.xml")
	image := rels.Add(docx.RelImage, "media/a&b.png")

	a := docx.New()
	a.Set(docx.PartDocument, []byte("<w:document/>"))
	a.Set(docx.PartDocumentRels, rels.Bytes())
	a.Set(docx.MediaDir+"a&b.png", []byte{0x89, 'P', 'N', 'G'})

	data, err := a.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if zr.File[0].Name != docx.PartContentTypes {
		t.Errorf("first entry = %q", zr.File[0].Name)
	}

	b, err := docx.Read(data)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := b.Part(docx.PartDocument); string(got) != "<w:document/>" {
		t.Errorf("document = %q", got)
	}
	if got := b.Media(); !reflect.DeepEqual(got, []string{"word/media/a&b.png"}) {
		t.Errorf("Media = %q", got)
	}
	ct, _ := b.Part(docx.PartContentTypes)
	if !strings.Contains(string(ct), `Extension="png"`) || !strings.Contains(string(ct), `PartName="/word/document.xml"`) {
		t.Errorf("content types = %s", ct)
	}

	got, err := b.Relationships(docx.PartDocumentRels)
	if err != nil {
		t.Fatal(err)
	}
	if got[styles].Target != "styles.xml" || got[image].Target != "media/a&b.png" || got[image].Type != docx.RelImage {
		t.Errorf("relationships = %+v", got)
	}
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	if _, err := docx.Read([]byte("not a zip")); !errors.Is(err, docx.ErrInvalidArchive) {
		t.Errorf("Read(garbage) = %v, want ErrInvalidArchive", err)
	}

	a := docx.New()
	a.Set(docx.PartStyles, []byte("<w:styles/>"))
	data, err := a.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := docx.Read(data); !errors.Is(err, docx.ErrMissingPart) {
		t.Errorf("Read(no document) = %v, want ErrMissingPart", err)
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	a := docx.New()
	if _, err := a.Require(docx.PartStyles); !errors.Is(err, docx.ErrMissingPart) {
		t.Errorf("Require = %v, want ErrMissingPart", err)
	}
	rels, err := a.Relationships(docx.PartDocumentRels)
	if err != nil || len(rels) != 0 {
		t.Errorf("Relationships(missing) = %v, %v", rels, err)
	}
}
