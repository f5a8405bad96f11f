/*
Package pal implements the PAL palette formats.

Three layouts are recognised: a headerless 768 byte dump of 6-bit R, G, B
triples, the "JASC-PAL" text format of Paint Shop Pro and the Microsoft RIFF
"PAL " form. Palettes are always saved in the JASC layout with CRLF line
endings.

A palette file carries no pixels: Load only replaces the palette of the
picture and never calls PreLoad.
*/
package pal

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
)

const rawSize = palette.Size * 3

var (
	jascSignature = []byte("JASC-PAL")
	riffSignature = []byte("RIFF")
	riffPalette   = []byte("PAL data")
)

var (
	errBadHeader  = fmt.Errorf("pal: %w: unknown palette layout", codec.ErrFormat)
	errBadVersion = fmt.Errorf("pal: %w: unsupported JASC version", codec.ErrFormat)
	errBadEntry   = fmt.Errorf("pal: %w: malformed color entry", codec.ErrFormat)
)

// Detect reports whether src holds a PAL palette.
func Detect(src *codec.Source) bool {
	size := src.Size()
	if size == rawSize {
		return true
	}
	if size <= 8 {
		return false
	}
	hdr := src.Peek(16)
	switch {
	case bytes.HasPrefix(hdr, jascSignature):
		return true
	case bytes.HasPrefix(hdr, riffSignature):
		return len(hdr) == 16 && bytes.Equal(hdr[8:16], riffPalette)
	}
	return false
}

// Load reads a palette into p.
func Load(src *codec.Source, p *picture.Picture) error {
	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	if src.Size() == rawSize {
		return loadRaw(src, p)
	}
	hdr := src.Peek(8)
	switch {
	case bytes.HasPrefix(hdr, jascSignature):
		return loadJASC(src, p)
	case bytes.HasPrefix(hdr, riffSignature):
		return loadRIFF(src, p)
	}
	return errBadHeader
}

func loadRaw(src *codec.Source, p *picture.Picture) error {
	r, err := src.Rewind()
	if err != nil {
		return err
	}
	b := r.Bytes(rawSize)
	if err := r.Err(); err != nil {
		return err
	}
	var pal palette.Palette
	pal.SetBytes(b)
	pal.Scale64To256()
	p.Palette = pal
	return nil
}

func loadJASC(src *codec.Source, p *picture.Picture) error {
	if _, err := src.Rewind(); err != nil {
		return err
	}
	s := bufio.NewScanner(src)
	s.Split(bufio.ScanWords)

	next := func() (int, error) {
		if !s.Scan() {
			if err := s.Err(); err != nil {
				return 0, err
			}
			return 0, codec.ErrTruncated
		}
		return strconv.Atoi(s.Text())
	}

	// Signature
	if !s.Scan() {
		return codec.ErrTruncated
	}
	if v, err := next(); err != nil || v != 100 {
		return errBadVersion
	}
	n, err := next()
	if err != nil {
		return errBadEntry
	}
	for i := 0; i < n; i++ {
		var c [3]int
		for j := range c {
			if c[j], err = next(); err != nil {
				return errBadEntry
			}
		}
		if i < palette.Size {
			p.Palette[i] = palette.RGB{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2])}
		}
	}
	return nil
}

// Save writes the palette of p in JASC-PAL format.
func Save(dst *codec.Sink, p *picture.Picture) error {
	w := binio.NewWriter(dst)
	w.String("JASC-PAL\r\n0100\r\n256\r\n")
	for _, c := range p.Palette {
		w.String(fmt.Sprintf("%d %d %d\r\n", c.R, c.G, c.B))
	}
	return w.Err()
}
