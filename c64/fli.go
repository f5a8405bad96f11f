package c64

import (
	"fmt"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/picture"
)

const (
	fliBackSize  = 256
	fliColorSize = 1024
	noColor      = 0xff
)

var errNoBackground = fmt.Errorf("c64: %w: no possible background color for a line", codec.ErrConstraint)

// fliGroup returns the set of colors used by the 4x1 pixel group starting
// at (x, y) of layer.
func fliGroup(p *picture.Picture, layer, x, y int) uint16 {
	var set uint16
	for i := 0; i < 4; i++ {
		set |= 1 << (p.Pixel(layer, x+i, y) & 15)
	}
	return set
}

func lowest(set uint16) (byte, bool) {
	for n := 0; n < 16; n++ {
		if set&(1<<uint(n)) != 0 {
			return byte(n), true
		}
	}
	return 0, false
}

// fliChoose picks the line backgrounds and cell color RAM of a single
// layer picture. A line background must belong to every 4x1 group of the
// line using four colors; the lowest possible one is used. The color RAM
// of a cell is then the lowest color leaving at most two other colors in
// each of its groups.
func fliChoose(p *picture.Picture) (background, color []byte, err error) {
	background = make([]byte, fliLines)
	color = make([]byte, screenSize)
	for y := 0; y < fliLines; y++ {
		possible := uint16(0xffff)
		for x := 0; x < 160; x += 4 {
			if g := fliGroup(p, 0, x, y); bitCount(g) == 4 {
				possible &= g
			}
		}
		c, ok := lowest(possible)
		if !ok {
			return nil, nil, errNoBackground
		}
		background[y] = c
	}
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < columns; cx++ {
			possible := uint16(0xffff)
			for y := 0; y < 8; y++ {
				line := cy*8 + y
				rest := fliGroup(p, 0, cx*4, line) &^ (1 << background[line])
				switch bitCount(rest) {
				case 3:
					possible &= rest
				case 4:
					possible = 0
				}
			}
			c, ok := lowest(possible)
			if !ok {
				return nil, nil, &cellError{3, cx, cy, 4, 8}
			}
			color[cy*columns+cx] = c
		}
	}
	return background, color, nil
}

// fliEncode packs the pixels of layer given the line backgrounds and the
// color RAM. Each 4x1 group may use two colors besides those, stored in its
// line's screen RAM bank.
func fliEncode(p *picture.Picture, layer int, background, color []byte) (bitmap, screens []byte, err error) {
	bitmap = make([]byte, bitmapSize)
	screens = make([]byte, fliScreenSize)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < columns; cx++ {
			cell := cy*columns + cx
			for y := 0; y < 8; y++ {
				line := cy*8 + y
				slots := [2]byte{noColor, noColor}
				var bits byte
				for x := 0; x < 4; x++ {
					px := p.Pixel(layer, cx*4+x, line)
					if px > 15 {
						return nil, nil, errColorRange
					}
					var code byte
					switch {
					case px == background[line]:
						code = 0
					case px == color[cell]:
						code = 3
					case slots[0] == noColor || slots[0] == px:
						slots[0], code = px, 1
					case slots[1] == noColor || slots[1] == px:
						slots[1], code = px, 2
					default:
						return nil, nil, &cellError{2, cx, line, 4, 1}
					}
					bits = bits<<2 | code
				}
				s := slots
				for i := range s {
					if s[i] == noColor {
						s[i] = 0
					}
				}
				screens[y*1024+cell] = s[0]<<4 | s[1]
				bitmap[cy*320+cx*8+y] = bits
			}
		}
	}
	return bitmap, screens, nil
}

func saveFLI(p *picture.Picture, what What) ([][]byte, error) {
	if p.Width != 160 {
		return nil, errSize
	}
	var (
		background, color []byte
		layer             int
		err               error
	)
	if len(p.Layers) >= 3 {
		background = make([]byte, fliLines)
		color = make([]byte, screenSize)
		for y := range background {
			background[y] = p.Pixel(0, 0, y) & 15
		}
		for i := range color {
			color[i] = p.Pixel(1, (i%columns)*4, (i/columns)*8) & 15
		}
		layer = 2
	} else if background, color, err = fliChoose(p); err != nil {
		return nil, err
	}
	bitmap, screens, err := fliEncode(p, layer, background, color)
	if err != nil {
		return nil, err
	}

	var parts [][]byte
	if what == WhatAll {
		parts = append(parts, pad(background, fliBackSize))
	}
	if what == WhatAll || what == WhatColor {
		parts = append(parts, pad(color, fliColorSize))
	}
	if what == WhatAll || what == WhatScreen {
		parts = append(parts, screens)
	}
	if what == WhatAll || what == WhatBitmap {
		parts = append(parts, bitmap)
	}
	return parts, nil
}

func pad(b []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, b)
	return out
}
