package convert

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// decodeText converts raw file bytes to a UTF-8 string, trying the encodings
// Chinese-language documents show up in most often. A UTF-8/UTF-16 BOM wins
// outright; otherwise the first decoder whose output survives a clean
// round-trip is used. The Latin-1 terminal fallback never fails, so callers
// always get text back, possibly with a warning attached by the caller.
func decodeText(raw []byte) (string, string, error) {
	if text, name, ok := decodeBOM(raw); ok {
		return text, name, nil
	}

	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}

	candidates := []struct {
		name string
		enc  encoding.Encoding
	}{
		{"gbk", simplifiedchinese.GBK},
		{"gb18030", simplifiedchinese.GB18030},
		{"big5", traditionalchinese.Big5},
	}
	for _, c := range candidates {
		decoded, err := c.enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		// Strict decoders still map some invalid sequences to U+FFFD;
		// treat that as a miss so the cascade keeps going.
		if bytes.ContainsRune(decoded, utf8.RuneError) {
			continue
		}
		return string(decoded), c.name, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("decode text: %w", err)
	}
	return string(decoded), "latin-1", nil
}

func decodeBOM(raw []byte) (string, string, bool) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return string(raw[3:]), "utf-8-sig", true
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}), bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := dec.Bytes(raw)
		if err != nil {
			return "", "", false
		}
		return string(decoded), "utf-16", true
	}
	return "", "", false
}
