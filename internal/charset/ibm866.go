// Package charset decodes the legacy Cyrillic code page used for all
// FTN packet text fields.
package charset

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeStrict decodes b from IBM866 (codepage 866) into a UTF-8 string.
// Any byte with no mapping in the code page is a hard error, matching the
// wire contract: packet text is always IBM866, never UTF-8.
func DecodeStrict(b []byte) (string, error) {
	out := make([]rune, 0, len(b))

	for _, c := range b {
		r := charmap.CodePage866.DecodeByte(c)
		if r == utf8.RuneError {
			return "", fmt.Errorf("charset: byte 0x%02x has no IBM866 mapping", c)
		}
		out = append(out, r)
	}

	return string(out), nil
}
