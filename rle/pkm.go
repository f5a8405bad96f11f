package rle

import (
	"bytes"
	"math"
)

const maxPKMRun = 65535

// ChooseRecognition returns the two escape values for a PKM stream given a
// histogram of pixel values. r1 is the least used value in 1..255 and r2 the
// least used in 0..255 other than r1; ties go to the lowest value.
func ChooseRecognition(histogram *[256]int) (r1, r2 byte) {
	best := math.MaxInt
	r1 = 1
	for i := 1; i < 256; i++ {
		if histogram[i] < best {
			r1, best = byte(i), histogram[i]
		}
	}
	best = math.MaxInt
	r2 = 0
	for i := 0; i < 256; i++ {
		if histogram[i] < best && byte(i) != r1 {
			r2, best = byte(i), histogram[i]
		}
	}
	return
}

// Histogram counts the occurrences of each value in pixels.
func Histogram(pixels []byte) *[256]int {
	var h [256]int
	for _, p := range pixels {
		h[p]++
	}
	return &h
}

// PackPKM encodes pixels using r1 and r2 as escapes. Runs of one or two
// pixels are stored raw unless the value collides with an escape, longer
// runs as r1,value,count or r2,value,count(big-endian 16-bit).
func PackPKM(pixels []byte, r1, r2 byte) []byte {
	var b bytes.Buffer
	for i := 0; i < len(pixels); {
		c := pixels[i]
		n := 1
		for i+n < len(pixels) && pixels[i+n] == c && n < maxPKMRun {
			n++
		}
		i += n

		escaped := c == r1 || c == r2
		switch {
		case !escaped && n == 1:
			b.WriteByte(c)
		case !escaped && n == 2:
			b.WriteByte(c)
			b.WriteByte(c)
		case n < 256:
			b.Write([]byte{r1, c, byte(n)})
		default:
			b.Write([]byte{r2, c, byte(n >> 8), byte(n)})
		}
	}
	return b.Bytes()
}

// UnpackPKM decodes at most n pixels from src. It returns the pixels and the
// number of source bytes consumed. Decoding stops early when src runs out;
// a run crossing n is clipped. errTruncated is returned when an escape
// sequence is cut short.
func UnpackPKM(src []byte, n int, r1, r2 byte) ([]byte, int, error) {
	dst := make([]byte, 0, n)
	i := 0
	for len(dst) < n && i < len(src) {
		c := src[i]
		if c != r1 && c != r2 {
			dst = append(dst, c)
			i++
			continue
		}

		var run int
		if c == r1 {
			if i+3 > len(src) {
				return dst, i, errTruncated
			}
			c, run = src[i+1], int(src[i+2])
			i += 3
		} else {
			if i+4 > len(src) {
				return dst, i, errTruncated
			}
			c, run = src[i+1], int(src[i+2])<<8|int(src[i+3])
			i += 4
		}
		if run > n-len(dst) {
			run = n - len(dst)
		}
		for ; run > 0; run-- {
			dst = append(dst, c)
		}
	}
	return dst, i, nil
}
