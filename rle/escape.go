package rle

import "bytes"

// Order selects the layout of an escaped run.
type Order int

const (
	// CountValue runs are stored as escape, count, value.
	CountValue Order = iota
	// ValueCount runs are stored as escape, value, count.
	ValueCount
)

// escapeRun decodes the run starting at src[i], which must hold the escape
// code. ok is false when the run is cut short or has a zero count; both end
// the stream.
func escapeRun(src []byte, i int, order Order) (value byte, count int, ok bool) {
	if i+2 >= len(src) {
		return 0, 0, false
	}
	if order == ValueCount {
		value, count = src[i+1], int(src[i+2])
	} else {
		count, value = int(src[i+1]), src[i+2]
	}
	return value, count, count != 0
}

// MeasureEscape returns the number of bytes UnpackEscape will produce for
// src. It is the first of the two passes needed to size the destination
// buffer exactly.
func MeasureEscape(src []byte, code byte, order Order) int {
	n := 0
	for i := 0; i < len(src); {
		if src[i] != code {
			n++
			i++
			continue
		}
		_, count, ok := escapeRun(src, i, order)
		if !ok {
			break
		}
		n += count
		i += 3
	}
	return n
}

// UnpackEscape expands src into dst and returns the number of bytes written.
// dst should have been sized with MeasureEscape; errOverflow is returned if
// it is too small.
func UnpackEscape(dst, src []byte, code byte, order Order) (int, error) {
	n := 0
	for i := 0; i < len(src); {
		if src[i] != code {
			if n >= len(dst) {
				return n, errOverflow
			}
			dst[n] = src[i]
			n++
			i++
			continue
		}
		value, count, ok := escapeRun(src, i, order)
		if !ok {
			break
		}
		if n+count > len(dst) {
			return n, errOverflow
		}
		for j := 0; j < count; j++ {
			dst[n+j] = value
		}
		n += count
		i += 3
	}
	return n, nil
}

// Escape measures and unpacks src in one call, allocating exactly the
// measured length.
func Escape(src []byte, code byte, order Order) ([]byte, error) {
	dst := make([]byte, MeasureEscape(src, code, order))
	n, err := UnpackEscape(dst, src, code, order)
	return dst[:n], err
}

// PackEscape encodes src so that UnpackEscape reproduces it. Runs of four or
// more bytes, and any byte equal to code, are escaped; runs are at most 255
// long.
func PackEscape(src []byte, code byte, order Order) []byte {
	var b bytes.Buffer
	for i := 0; i < len(src); {
		c := src[i]
		n := 1
		for i+n < len(src) && src[i+n] == c && n < 255 {
			n++
		}
		i += n
		if n < 4 && c != code {
			for ; n > 0; n-- {
				b.WriteByte(c)
			}
			continue
		}
		if order == ValueCount {
			b.Write([]byte{code, c, byte(n)})
		} else {
			b.Write([]byte{code, byte(n), c})
		}
	}
	return b.Bytes()
}
