package picture

import "golang.org/x/text/encoding/charmap"

// DecodeText converts bytes stored in a file, taken as ISO-8859-1, to a
// string. Decoding stops at the first NUL.
func DecodeText(b []byte) string {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// EncodeText converts s to ISO-8859-1 bytes for storing in a file.
// Characters outside the charset become '?'.
func EncodeText(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return out
}
