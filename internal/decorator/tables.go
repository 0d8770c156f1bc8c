package decorator

import "strings"

// Underline maps the style code between the underscores of "_=_" to the
// w:u value.
var Underline = map[string]string{
	"":     "single",
	"$":    "words",
	"=":    "double",
	".":    "dotted",
	"#":    "thick",
	"-":    "dash",
	".-":   "dotDash",
	"..-":  "dotDotDash",
	"~":    "wave",
	".#":   "dottedHeavy",
	"-#":   "dashedHeavy",
	".-#":  "dashDotHeavy",
	"..-#": "dashDotDotHeavy",
	"~#":   "wavyHeavy",
	"-+":   "dashLong",
	"~=":   "wavyDouble",
	"-+#":  "dashLongHeavy",
}

// underlineCode is the inverse of Underline.
var underlineCode = invert(Underline)

// Color maps the names accepted between carets to RRGGBB. Each standard
// color has a long and a short name; a000 to a350 are hues in 10 degree
// steps at equal lightness.
var Color = map[string]string{
	"red": "FF0000", "R": "FF0000",
	"darkRed": "7F0000", "DR": "7F0000",
	"yellow": "FFFF00", "Y": "FFFF00",
	"darkYellow": "7F7F00", "DY": "7F7F00",
	"green": "00FF00", "G": "00FF00",
	"darkGreen": "007F00", "DG": "007F00",
	"cyan": "00FFFF", "C": "00FFFF",
	"darkCyan": "007F7F", "DC": "007F7F",
	"blue": "0000FF", "B": "0000FF",
	"darkBlue": "00007F", "DB": "00007F",
	"magenta": "FF00FF", "M": "FF00FF",
	"darkMagenta": "7F007F", "DM": "7F007F",
	"lightGray": "BFBFBF", "G1": "BFBFBF",
	"darkGray": "7F7F7F", "G2": "7F7F7F",
	"black": "000000", "BK": "000000",
	"a000": "FF5D5D", "a010": "FF603C", "a020": "FF6512", "a030": "E07000",
	"a040": "BC7A00", "a050": "A08300", "a060": "898900", "a070": "758F00",
	"a080": "619500", "a090": "4E9B00", "a100": "38A200", "a110": "1FA900",
	"a120": "00B200", "a130": "00AF20", "a140": "00AC3C", "a150": "00AA55",
	"a160": "00A76D", "a170": "00A586", "a180": "00A2A2", "a190": "009FC3",
	"a200": "009AED", "a210": "1F8FFF", "a220": "4385FF", "a230": "5F7CFF",
	"a240": "7676FF", "a250": "8A70FF", "a260": "9E6AFF", "a270": "B164FF",
	"a280": "C75DFF", "a290": "E056FF", "a300": "FF4DFF", "a310": "FF50DF",
	"a320": "FF53C3", "a330": "FF55AA", "a340": "FF5892", "a350": "FF5A79",
}

// colorName gives the name written back for a hex value. Long names win
// over short ones; 77-based dark tones written by older documents read as
// the same names.
var colorName = func() map[string]string {
	m := map[string]string{
		"770000": "darkRed", "777700": "darkYellow", "007700": "darkGreen",
		"007777": "darkCyan", "000077": "darkBlue", "770077": "darkMagenta",
		"BBBBBB": "lightGray", "777777": "darkGray",
	}
	for name, hex := range Color {
		if len(name) <= 2 {
			continue
		}
		m[hex] = name
	}
	return m
}()

// Highlight maps the names accepted between underscores to w:highlight
// values.
var Highlight = map[string]string{
	"red": "red", "R": "red",
	"darkRed": "darkRed", "DR": "darkRed",
	"yellow": "yellow", "Y": "yellow",
	"darkYellow": "darkYellow", "DY": "darkYellow",
	"green": "green", "G": "green",
	"darkGreen": "darkGreen", "DG": "darkGreen",
	"cyan": "cyan", "C": "cyan",
	"darkCyan": "darkCyan", "DC": "darkCyan",
	"blue": "blue", "B": "blue",
	"darkBlue": "darkBlue", "DB": "darkBlue",
	"magenta": "magenta", "M": "magenta",
	"darkMagenta": "darkMagenta", "DM": "darkMagenta",
	"lightGray": "lightGray", "G1": "lightGray",
	"darkGray": "darkGray", "G2": "darkGray",
	"black": "black", "BK": "black",
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// ResolveColor turns the text between carets into RRGGBB. An empty name is
// white; three upper-case hex digits are doubled.
func ResolveColor(name string) (string, bool) {
	switch {
	case name == "":
		return "FFFFFF", true
	case len(name) == 3 && isUpperHex(name):
		var sb strings.Builder
		for _, r := range name {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		return sb.String(), true
	}
	if hex, ok := Color[name]; ok {
		return hex, true
	}
	if len(name) == 6 && isUpperHex(name) {
		return name, true
	}
	return "", false
}

// ColorCode is the text written between carets for hex.
func ColorCode(hex string) string {
	hex = strings.ToUpper(hex)
	if name, ok := colorName[hex]; ok {
		return name
	}
	if hex == "FFFFFF" {
		return ""
	}
	return hex
}

func isUpperHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}
