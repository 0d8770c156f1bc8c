package mdtoken

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUndecodable is returned when the input is in none of the supported
// encodings.
var ErrUndecodable = errors.New("undecodable text")

// candidates are tried in order after UTF-8.
var candidates = []struct {
	name string
	enc  encoding.Encoding
}{
	{"Shift_JIS", japanese.ShiftJIS},
	{"EUC-JP", japanese.EUCJP},
	{"ISO-2022-JP", japanese.ISO2022JP},
}

// Decode converts Markdown source to a string. UTF-8 and UTF-16 with a BOM
// are recognised first; otherwise the Japanese legacy encodings are tried
// and the first that decodes without replacement characters wins. The name
// of the detected encoding is returned for logging.
func Decode(data []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}), bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		s, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrUndecodable, err)
		}
		return string(s), "UTF-16", nil
	case utf8.Valid(data):
		return string(data), "UTF-8", nil
	}
	for _, c := range candidates {
		s, _, err := transform.Bytes(c.enc.NewDecoder(), data)
		if err != nil || bytes.ContainsRune(s, utf8.RuneError) {
			continue
		}
		return string(s), c.name, nil
	}
	return "", "", ErrUndecodable
}
