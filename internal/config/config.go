// Package config loads the YAML tool configuration: output placement,
// logging and the document defaults applied before a file's own settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-makdo/internal/assets"
	"github.com/alnah/go-makdo/internal/document"
	"github.com/alnah/go-makdo/internal/fileutil"
	"github.com/alnah/go-makdo/internal/logging"
	"github.com/alnah/go-makdo/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrOutOfRange      = errors.New("value out of range")
)

// Field length limits.
const (
	MaxPathLength       = 4096
	MaxFontNameLength   = 100
	MaxTemplateLength   = 500 // header and page number templates
	MaxStyleNameLength  = 50
	MaxMargin           = 20.0 // cm
	MaxFontSize         = 100.0
	MaxLineSpacing      = 10.0
	configDirName       = "makdo"
	configFileExtension = ".yaml"
)

// Config holds the tool configuration.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
	Document DocumentConfig `yaml:"document"`
	Preview  PreviewConfig  `yaml:"preview"`
}

// OutputConfig places converted files.
type OutputConfig struct {
	Directory string `yaml:"directory"` // empty = next to the source
	Force     bool   `yaml:"force"`     // overwrite newer destinations
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DocumentConfig overrides the built-in document defaults. Zero values
// keep the default. Style, paper and page number accept the values of the
// Markdown configuration block, Japanese ones included.
type DocumentConfig struct {
	Style        string  `yaml:"style"`
	Paper        string  `yaml:"paper"`
	TopMargin    float64 `yaml:"topMargin"`
	BottomMargin float64 `yaml:"bottomMargin"`
	LeftMargin   float64 `yaml:"leftMargin"`
	RightMargin  float64 `yaml:"rightMargin"`
	Header       string  `yaml:"header"`
	PageNumber   string  `yaml:"pageNumber"`
	LineNumber   bool    `yaml:"lineNumber"`
	MinchoFont   string  `yaml:"minchoFont"`
	GothicFont   string  `yaml:"gothicFont"`
	IVSFont      string  `yaml:"ivsFont"`
	FontSize     float64 `yaml:"fontSize"`
	LineSpacing  float64 `yaml:"lineSpacing"`
	AutoSpace    bool    `yaml:"autoSpace"`
}

// PreviewConfig tunes the HTML preview.
type PreviewConfig struct {
	Style    string `yaml:"style"`    // chroma style of code blocks
	Sheet    string `yaml:"sheet"`    // page stylesheet name
	SheetDir string `yaml:"sheetDir"` // directory of custom sheets
}

// Validate checks lengths, ranges and enumerated values. Called by
// LoadConfig; callers that build a Config by hand call it themselves.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.directory", c.Output.Directory, MaxPathLength); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}

	d := c.Document
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"document.header", d.Header, MaxTemplateLength},
		{"document.pageNumber", d.PageNumber, MaxTemplateLength},
		{"document.minchoFont", d.MinchoFont, MaxFontNameLength},
		{"document.gothicFont", d.GothicFont, MaxFontNameLength},
		{"document.ivsFont", d.IVSFont, MaxFontNameLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name     string
		v, limit float64
	}{
		{"document.topMargin", d.TopMargin, MaxMargin},
		{"document.bottomMargin", d.BottomMargin, MaxMargin},
		{"document.leftMargin", d.LeftMargin, MaxMargin},
		{"document.rightMargin", d.RightMargin, MaxMargin},
		{"document.fontSize", d.FontSize, MaxFontSize},
		{"document.lineSpacing", d.LineSpacing, MaxLineSpacing},
	} {
		if f.v < 0 || f.v > f.limit {
			return fmt.Errorf("%w: %s must be between 0 and %v, got %v", ErrOutOfRange, f.name, f.limit, f.v)
		}
	}
	// Enumerated values are checked by applying them to a scratch document.
	scratch := document.Default()
	if err := d.Apply(&scratch); err != nil {
		return err
	}

	if err := validateFieldLength("preview.style", c.Preview.Style, MaxStyleNameLength); err != nil {
		return err
	}
	if c.Preview.Style != "" {
		if _, ok := styles.Registry[strings.ToLower(c.Preview.Style)]; !ok {
			return fmt.Errorf("preview.style: unknown chroma style %q", c.Preview.Style)
		}
	}
	if c.Preview.Sheet != "" {
		if err := assets.ValidateName(c.Preview.Sheet); err != nil {
			return fmt.Errorf("preview.sheet: %w", err)
		}
	}
	if err := validateFieldLength("preview.sheetDir", c.Preview.SheetDir, MaxPathLength); err != nil {
		return err
	}
	return nil
}

// Settings returns the set fields as configuration lines, the form the
// converter applies before a document's own block.
func (d DocumentConfig) Settings() []string {
	var out []string
	add := func(key, value string) {
		if value != "" {
			out = append(out, key+": "+value)
		}
	}
	num := func(v float64) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	flag := func(b bool) string {
		if !b {
			return ""
		}
		return "True"
	}
	add("document_style", d.Style)
	add("paper_size", d.Paper)
	add("top_margin", num(d.TopMargin))
	add("bottom_margin", num(d.BottomMargin))
	add("left_margin", num(d.LeftMargin))
	add("right_margin", num(d.RightMargin))
	add("header_string", d.Header)
	add("page_number", d.PageNumber)
	add("line_number", flag(d.LineNumber))
	add("mincho_font", d.MinchoFont)
	add("gothic_font", d.GothicFont)
	add("ivs_font", d.IVSFont)
	add("font_size", num(d.FontSize))
	add("line_spacing", num(d.LineSpacing))
	add("auto_space", flag(d.AutoSpace))
	return out
}

// Apply overlays the set fields onto cfg.
func (d DocumentConfig) Apply(cfg *document.Config) error {
	for _, line := range d.Settings() {
		if err := cfg.Apply(line); err != nil {
			return fmt.Errorf("document: %w", err)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// resolveConfigPath tries name.yaml then name.yml, in the working
// directory first and then in the user config directory under makdo/.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{configFileExtension, ".yml"}
	dirs := []string{""}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userConfigDir, configDirName))
	}

	tried := make([]string, 0, len(extensions)*len(dirs))
	for _, dir := range dirs {
		for _, ext := range extensions {
			p := filepath.Join(dir, name+ext)
			if fileutil.FileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
