package c64

import (
	"fmt"
	"path"
	"strings"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/picture"
)

// What selects the parts of the picture a save writes.
type What int

// Parts to save.
const (
	WhatAll What = iota
	WhatBitmap
	WhatScreen
	WhatColor
)

// Options controls Save.
type Options struct {
	Format Format
	What   What
	// LoadAddress is written first when non-zero.
	LoadAddress uint16
}

// DefaultOptions returns the options Save uses for p written to name: hires
// for 320 pixel wide pictures, multicolor otherwise, and FLI for a .fli
// file name.
func DefaultOptions(name string, p *picture.Picture) Options {
	o := Options{Format: FormatMulti}
	if p.Width == 320 {
		o.Format = FormatHires
	}
	if strings.EqualFold(path.Ext(name), ".fli") {
		o.Format = FormatFLI
	}
	return o
}

var (
	errSize       = fmt.Errorf("c64: %w: picture must be 320x200 or 160x200", codec.ErrConstraint)
	errColorRange = fmt.Errorf("c64: %w: color above 15 used", codec.ErrConstraint)
)

type cellError struct {
	colors, cx, cy, w, h int
}

func (e *cellError) Error() string {
	return fmt.Sprintf("c64: more than %d colors in %dx%d cell (%d, %d)", e.colors, e.w, e.h, e.cx, e.cy)
}

func (e *cellError) Unwrap() error {
	return codec.ErrConstraint
}

// Save encodes p with DefaultOptions.
func Save(dst *codec.Sink, p *picture.Picture) error {
	return SaveWith(dst, p, DefaultOptions(dst.Name, p))
}

// SaveWith encodes p as a hires, multicolor or FLI dump. Hires and
// multicolor read layer 0; FLI reads the background, color RAM and pixel
// layers of a picture with at least 3 layers, and works out the first two
// itself from layer 0 otherwise.
func SaveWith(dst *codec.Sink, p *picture.Picture, o Options) error {
	if (p.Width != 320 && p.Width != 160) || p.Height != 200 || len(p.Layers) == 0 {
		return errSize
	}
	var (
		parts [][]byte
		err   error
	)
	switch o.Format {
	case FormatFLI:
		parts, err = saveFLI(p, o.What)
	case FormatMulti:
		parts, err = saveMulti(p, o.What)
	case FormatBitmap:
		parts, err = saveHires(p, WhatBitmap)
	default:
		parts, err = saveHires(p, o.What)
	}
	if err != nil {
		return err
	}
	w := binio.NewWriter(dst)
	if o.LoadAddress != 0 {
		w.WordLE(o.LoadAddress)
	}
	for _, b := range parts {
		w.Bytes(b)
	}
	return w.Err()
}

func saveHires(p *picture.Picture, what What) ([][]byte, error) {
	if p.Width != 320 {
		return nil, errSize
	}
	screen := make([]byte, screenSize)
	bitmap := make([]byte, 0, bitmapSize)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < columns; cx++ {
			var c [2]byte
			n := 0
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					px := p.Pixel(0, cx*8+x, cy*8+y)
					if px > 15 {
						return nil, errColorRange
					}
					i := 0
					for i < n && c[i] != px {
						i++
					}
					if i == n {
						if n == 2 {
							return nil, &cellError{2, cx, cy, 8, 8}
						}
						c[n] = px
						n++
					}
				}
			}
			var fg, bg byte
			switch {
			case n == 1 && c[0] == 0:
				fg = 1
			case n == 1:
				fg = c[0]
			case c[0] < c[1]:
				fg, bg = c[1], c[0]
			default:
				fg, bg = c[0], c[1]
			}
			screen[cy*columns+cx] = fg<<4 | bg
			for y := 0; y < 8; y++ {
				var bits byte
				for x := 0; x < 8; x++ {
					bits <<= 1
					if p.Pixel(0, cx*8+x, cy*8+y) == fg {
						bits |= 1
					}
				}
				bitmap = append(bitmap, bits)
			}
		}
	}
	var parts [][]byte
	if what == WhatAll || what == WhatBitmap {
		parts = append(parts, bitmap)
	}
	if what == WhatAll || what == WhatScreen {
		parts = append(parts, screen)
	}
	return parts, nil
}

// multiBackground finds the shared background: it must appear in every
// cell using four colors.
func multiBackground(p *picture.Picture) (byte, error) {
	var candidates, invalids uint16
	for y := 0; y < 200; y += 8 {
		for x := 0; x < 160; x += 4 {
			var cols uint16
			for cy := 0; cy < 8; cy++ {
				for cx := 0; cx < 4; cx++ {
					px := p.Pixel(0, x+cx, y+cy)
					if px > 15 {
						return 0, errColorRange
					}
					cols |= 1 << px
				}
			}
			if bitCount(cols) <= 3 {
				continue
			}
			cand := 0
			for n := uint(0); n < 16; n++ {
				bit := uint16(1) << n
				if cols&bit != 0 && (candidates|invalids)&bit == 0 {
					candidates |= bit
				}
				if cols&bit == 0 {
					invalids |= bit
					candidates &^= bit
				}
				if candidates&bit != 0 {
					cand++
				}
			}
			if cand == 0 {
				return 0, fmt.Errorf("c64: %w: no possible global background color", codec.ErrConstraint)
			}
		}
	}
	for n := 0; n < 16; n++ {
		if candidates&(1<<uint(n)) != 0 {
			return byte(n), nil
		}
	}
	return 0, nil
}

func bitCount(v uint16) int {
	n := 0
	for ; v != 0; v &= v - 1 {
		n++
	}
	return n
}

func saveMulti(p *picture.Picture, what What) ([][]byte, error) {
	if p.Width != 160 {
		return nil, errSize
	}
	background, err := multiBackground(p)
	if err != nil {
		return nil, err
	}
	screen := make([]byte, screenSize)
	color := make([]byte, screenSize)
	bitmap := make([]byte, 0, bitmapSize)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < columns; cx++ {
			var used [16]bool
			for y := 0; y < 8; y++ {
				for x := 0; x < 4; x++ {
					used[p.Pixel(0, cx*4+x, cy*8+y)] = true
				}
			}
			var lut [16]byte
			c := [4]byte{background}
			n := 1
			for i, u := range used {
				if !u || byte(i) == background {
					continue
				}
				if n == 4 {
					return nil, &cellError{4, cx, cy, 4, 8}
				}
				lut[i] = byte(n)
				c[n] = byte(i)
				n++
			}
			screen[cy*columns+cx] = c[1]<<4 | c[2]
			color[cy*columns+cx] = c[3]
			for y := 0; y < 8; y++ {
				var bits byte
				for x := 0; x < 4; x++ {
					bits = bits<<2 | lut[p.Pixel(0, cx*4+x, cy*8+y)]
				}
				bitmap = append(bitmap, bits)
			}
		}
	}
	var parts [][]byte
	if what == WhatAll || what == WhatBitmap {
		parts = append(parts, bitmap)
	}
	if what == WhatAll || what == WhatScreen {
		parts = append(parts, screen)
	}
	if what == WhatAll || what == WhatColor {
		parts = append(parts, color)
	}
	if what == WhatAll {
		parts = append(parts, []byte{background})
	}
	return parts, nil
}
