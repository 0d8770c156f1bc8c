package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed sheets/*.css
var sheets embed.FS

// EmbeddedLoader loads the sheets compiled into the binary.
type EmbeddedLoader struct{}

// LoadSheet returns the embedded sheet called name.
func (EmbeddedLoader) LoadSheet(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	content, err := sheets.ReadFile("sheets/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return string(content), nil
}

// Names lists the embedded sheets in order.
func Names() []string {
	entries, _ := fs.ReadDir(sheets, "sheets")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	slices.Sort(names)
	return names
}

var _ Loader = EmbeddedLoader{}
