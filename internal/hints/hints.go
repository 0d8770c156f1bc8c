// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"
)

// ForDestinationNewer suggests how to replace an output edited after its
// source was last saved.
func ForDestinationNewer() string {
	return format("the output was modified after its source; use --force to overwrite (the old file is kept with a ~ suffix)")
}

// ForUndecodable suggests saving the source in a supported encoding.
func ForUndecodable() string {
	return format("save the file as UTF-8 (Shift_JIS, EUC-JP and ISO-2022-JP are also read)")
}

// ForInvalidArchive explains which Word files can be read.
func ForInvalidArchive() string {
	return format("only .docx files (Word 2007 or later) can be read; save .doc files as .docx first")
}

// ForTimeout returns a hint about increasing timeout for slow conversions.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound suggests --config and the user config location among
// the searched paths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/makdo/") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForInvalidSetting lists the configuration line forms.
func ForInvalidSetting() string {
	return format(`settings look like "document_style: k" or "文字サ: 10.5 pt"`)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
