package document

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-makdo/internal/numbering"
)

// Sentinel errors for configuration lines.
var (
	ErrUnknownKey   = errors.New("unknown configuration name")
	ErrInvalidValue = errors.New("invalid configuration value")
)

var (
	settingPattern = regexp.MustCompile(`^\s*([^:：]+)[:：]\s*(.*)$`)
	numberPattern  = regexp.MustCompile(`^[-+]?(?:[0-9]+(?:\.[0-9]+)?|\.[0-9]+)$`)
)

// keys maps the Japanese configuration names to the English ones.
var keys = map[string]string{
	"書題名": "document_title",
	"文書式": "document_style",
	"用紙サ": "paper_size",
	"上余白": "top_margin",
	"下余白": "bottom_margin",
	"左余白": "left_margin",
	"右余白": "right_margin",
	"頭書き": "header_string",
	"頁番号": "page_number",
	"行番号": "line_number",
	"明朝体": "mincho_font",
	"ゴシ体": "gothic_font",
	"異字体": "ivs_font",
	"文字サ": "font_size",
	"行間高": "line_spacing",
	"前余白": "space_before",
	"後余白": "space_after",
	"字間整": "auto_space",
	"元原稿": "original_file",
}

// Apply reads one line of the configuration block. Lines starting with "#"
// and lines that are not "name: value" are ignored. An unknown name or a
// malformed value leaves c unchanged and returns a wrapped sentinel.
func (c *Config) Apply(line string) error {
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return nil
	}
	m := settingPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	name := strings.TrimRight(m[1], " \t")
	value := strings.TrimRight(m[2], " \t")
	key := name
	if en, ok := keys[name]; ok {
		key = en
	}
	if err := c.set(key, value); err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	return nil
}

func (c *Config) set(key, value string) error {
	nfkc := norm.NFKC.String(value)
	switch key {
	case "document_title":
		c.Title = value
	case "document_style":
		switch value {
		case "n", "普通", "-":
			c.Style = numbering.StyleNormal
		case "k", "契約":
			c.Style = numbering.StyleContract
		case "j", "条文":
			c.Style = numbering.StyleStatute
		default:
			return fmt.Errorf("%w: must be 普通, 契約 or 条文", ErrInvalidValue)
		}
	case "paper_size":
		p, ok := map[string]Paper{
			"A3": PaperA3, "A3L": PaperA3L, "A3横": PaperA3L, "A3P": PaperA3P, "A3縦": PaperA3P,
			"A4": PaperA4, "A4L": PaperA4L, "A4横": PaperA4L, "A4P": PaperA4P, "A4縦": PaperA4P,
		}[nfkc]
		if !ok {
			return fmt.Errorf("%w: must be A3横, A3縦, A4横 or A4縦", ErrInvalidValue)
		}
		c.Paper = p
	case "top_margin", "bottom_margin", "left_margin", "right_margin":
		v, err := number(nfkc, "cm")
		if err != nil {
			return err
		}
		*map[string]*float64{
			"top_margin": &c.TopMargin, "bottom_margin": &c.BottomMargin,
			"left_margin": &c.LeftMargin, "right_margin": &c.RightMargin,
		}[key] = v
	case "header_string":
		c.Header = value
	case "page_number":
		switch nfkc {
		case "True", "有":
			c.PageNumber = DefaultPageNumber
		case "False", "無", "-":
			c.PageNumber = ""
		default:
			c.PageNumber = nfkc
		}
	case "line_number":
		b, err := flag(nfkc)
		if err != nil {
			return err
		}
		c.LineNumber = b
	case "mincho_font":
		c.MinchoFont = value
	case "gothic_font":
		c.GothicFont = value
	case "ivs_font":
		c.IVSFont = value
	case "font_size":
		v, err := number(nfkc, "pt")
		if err != nil {
			return err
		}
		c.FontSize = v
	case "line_spacing":
		v, err := number(nfkc, "倍")
		if err != nil {
			return err
		}
		c.LineSpacing = v
	case "space_before", "space_after":
		v, err := ParseSpaces(nfkc)
		if err != nil {
			return err
		}
		if key == "space_before" {
			c.SpaceBefore = v
		} else {
			c.SpaceAfter = v
		}
	case "auto_space":
		b, err := flag(nfkc)
		if err != nil {
			return err
		}
		c.AutoSpace = b
	case "original_file":
		c.OriginalFile = value
	default:
		return ErrUnknownKey
	}
	return nil
}

func number(s, unit string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(s, unit))
	if !numberPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: must be an integer or a decimal", ErrInvalidValue)
	}
	return strconv.ParseFloat(s, 64)
}

func flag(s string) (bool, error) {
	switch s {
	case "True", "有":
		return true, nil
	case "False", "無":
		return false, nil
	}
	return false, fmt.Errorf("%w: must be 有 or 無", ErrInvalidValue)
}

// ParseSpaces reads a spacing table such as "0.5倍, , 1倍". Empty entries
// are zero; a trailing comma is allowed.
func ParseSpaces(s string) ([]float64, error) {
	s = strings.NewReplacer("、", ",", "倍", "", " ", "").Replace(s)
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) > MaxSpaces {
		return nil, fmt.Errorf("%w: at most %d values", ErrInvalidValue, MaxSpaces)
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		if !numberPattern.MatchString(p) {
			return nil, fmt.Errorf("%w: must be integers or decimals separated by commas", ErrInvalidValue)
		}
		out[i], _ = strconv.ParseFloat(p, 64)
	}
	return out, nil
}

// decimal formats v rounded to places, keeping at least one decimal.
func decimal(v float64, places int) string {
	p := math.Pow(10, float64(places))
	v = math.Round(v*p) / p
	if v == 0 {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Block renders the configuration as the commented block that opens a
// Markdown document.
func (c Config) Block() string {
	var sb strings.Builder
	line := func(comment, name, value string) {
		sb.WriteString("# " + comment + "\n")
		sb.WriteString(name + ": " + value + "\n\n")
	}
	sb.WriteString("<!--------------------------【設定】-----------------------------\n\n")
	line("プロパティに表示される書面のタイトルを指定ください。", "書題名", c.Title)
	style := "普通"
	switch c.Style {
	case numbering.StyleContract:
		style = "契約"
	case numbering.StyleStatute:
		style = "条文"
	}
	line("3つの書式（普通、契約、条文）を指定できます。", "文書式", style)
	paper := "A4縦"
	switch c.Paper {
	case PaperA3, PaperA3L:
		paper = "A3横"
	case PaperA3P:
		paper = "A3縦"
	case PaperA4L:
		paper = "A4横"
	}
	line("用紙のサイズ（A3横、A3縦、A4横、A4縦）を指定できます。", "用紙サ", paper)
	sb.WriteString("# 用紙の上下左右の余白をセンチメートル単位で指定できます。\n")
	sb.WriteString("上余白: " + decimal(c.TopMargin, 1) + " cm\n")
	sb.WriteString("下余白: " + decimal(c.BottomMargin, 1) + " cm\n")
	sb.WriteString("左余白: " + decimal(c.LeftMargin, 1) + " cm\n")
	sb.WriteString("右余白: " + decimal(c.RightMargin, 1) + " cm\n\n")
	line("ページのヘッダーに表示する文字列（別紙 :等）を指定できます。", "頭書き", c.Header)
	page := c.PageNumber
	switch page {
	case "":
		page = "無"
	case DefaultPageNumber:
		page = "有"
	}
	line("ページ番号の書式（無、有、n :、-n-、n/N等）を指定できます。", "頁番号", page)
	line("行番号の記載（無、有）を指定できます。", "行番号", yesNo(c.LineNumber))
	sb.WriteString("# 明朝体とゴシック体と異字体（IVS）のフォントを指定できます。\n")
	sb.WriteString("明朝体: " + c.MinchoFont + "\n")
	sb.WriteString("ゴシ体: " + c.GothicFont + "\n")
	sb.WriteString("異字体: " + c.IVSFont + "\n\n")
	line("基本の文字の大きさをポイント単位で指定できます。", "文字サ", decimal(c.FontSize, 1)+" pt")
	line("行間の高さを基本の文字の高さの何倍にするかを指定できます。", "行間高", decimal(c.LineSpacing, 2)+" 倍")
	sb.WriteString("# セクションタイトル前後の余白を行間の高さの倍数で指定できます。\n")
	sb.WriteString("前余白: " + spacesWithUnit(c.SpaceBefore) + "\n")
	sb.WriteString("後余白: " + spacesWithUnit(c.SpaceAfter) + "\n\n")
	line("半角文字と全角文字の間の間隔調整（無、有）を指定できます。", "字間整", yesNo(c.AutoSpace))
	line("変換元のWordファイルの最終更新日時が自動で指定されます。", "元原稿", c.OriginalFile)
	sb.WriteString("---------------------------------------------------------------->\n\n")
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "有"
	}
	return "無"
}

func spacesWithUnit(v []float64) string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = decimal(f, 2) + " 倍"
	}
	return strings.Join(parts, ",")
}
