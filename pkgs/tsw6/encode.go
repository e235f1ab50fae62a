package tsw6

import "strings"

// EncodePath percent-encodes a TSW6 endpoint path for the URL, preserving
// the separators "/" and "." literally. The probe tooling uses several
// slightly different spellings; this one is canonical and any endpoint
// spelled differently simply does not match.
func EncodePath(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	var segment []byte
	flush := func() {
		for _, c := range segment {
			if isUnreserved(c) {
				b.WriteByte(c)
			} else {
				b.WriteByte('%')
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0x0F])
			}
		}
		segment = segment[:0]
	}
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' || c == '.' {
			flush()
			b.WriteByte(c)
			continue
		}
		segment = append(segment, c)
	}
	flush()
	return b.String()
}

const hexDigits = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '~'
}
