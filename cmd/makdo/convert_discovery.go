package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-makdo/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrInvalidExtension = errors.New("file must have .md, .markdown or .docx extension")
)

// mode is the conversion applied to one file.
type mode int

const (
	modeDocx     mode = iota // Markdown to .docx
	modeHTML                 // Markdown to .html preview
	modeMarkdown             // .docx to Markdown
)

func (m mode) ext() string {
	switch m {
	case modeHTML:
		return ".html"
	case modeMarkdown:
		return ".md"
	}
	return ".docx"
}

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	Mode       mode
}

// modeFor picks the conversion from the source extension.
func modeFor(path string, html bool) (mode, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		if html {
			return modeHTML, true
		}
		return modeDocx, true
	case ".docx":
		return modeMarkdown, true
	}
	return 0, false
}

// skipName reports Word lock files ("~$doc.docx") and hidden files.
func skipName(name string) bool {
	return strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".")
}

// discoverFiles expands the positional arguments into conversions. Files
// must have a known extension; directories are walked and unknown files
// skipped.
func discoverFiles(inputs []string, outputDir string, html bool) ([]FileToConvert, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	var files []FileToConvert
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			m, ok := modeFor(input, html)
			if !ok {
				return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(input))
			}
			files = append(files, FileToConvert{
				InputPath:  input,
				OutputPath: resolveOutputPath(input, outputDir, "", m),
				Mode:       m,
			})
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				if path != input && skipName(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if skipName(d.Name()) {
				return nil
			}
			m, ok := modeFor(path, html)
			if !ok {
				return nil
			}
			files = append(files, FileToConvert{
				InputPath:  path,
				OutputPath: resolveOutputPath(path, outputDir, input, m),
				Mode:       m,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// resolveOutputPath places the output next to the source, or under
// outputDir keeping the path relative to baseInputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir string, m mode) string {
	name := fileutil.ReplaceExt(filepath.Base(inputPath), m.ext())

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), name)
	}
	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), name)
		}
	}
	return filepath.Join(outputDir, name)
}
