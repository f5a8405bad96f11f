package c64

import "github.com/Abhisheknishant/grafx2/picture"

// Cell grid of the VIC-II bitmap modes.
const (
	columns = 40
	rows    = 25
)

// Colors used by hires pictures without screen RAM: the BASIC start up
// blue on light blue.
const (
	defaultBackground = 6
	defaultForeground = 14
)

// DecodeHires draws a 320x200 hires bitmap into layer. Each screen RAM byte
// holds the foreground color in its high nibble and the background in its
// low nibble; a nil screen uses the default colors.
func DecodeHires(p *picture.Picture, layer int, bitmap, screen []byte) {
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < columns; cx++ {
			c := [2]byte{defaultBackground, defaultForeground}
			if screen != nil {
				s := screen[cy*columns+cx]
				c = [2]byte{s & 15, s >> 4}
			}
			for y := 0; y < 8; y++ {
				bits := bitmap[cy*320+cx*8+y]
				for x := 0; x < 8; x++ {
					p.SetPixel(layer, cx*8+x, cy*8+y, c[bits>>uint(7-x)&1])
				}
			}
		}
	}
}

// DecodeMulti draws a 160x200 multicolor bitmap into layer. Bit pairs 00
// select the background, 01 the high nibble of the screen RAM, 10 its low
// nibble and 11 the color RAM.
func DecodeMulti(p *picture.Picture, layer int, bitmap, screen, color []byte, background byte) {
	var c [4]byte
	c[0] = background & 15
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < columns; cx++ {
			cell := cy*columns + cx
			c[1] = screen[cell] >> 4
			c[2] = screen[cell] & 15
			c[3] = color[cell] & 15
			for y := 0; y < 8; y++ {
				bits := bitmap[cy*320+cx*8+y]
				for x := 3; x >= 0; x-- {
					p.SetPixel(layer, cx*4+x, cy*8+y, c[bits&3])
					bits >>= 2
				}
			}
		}
	}
}

// DecodeFLI fills the four layers of an FLI picture: layer 0 holds the
// background color of each line, layer 1 the color RAM of each 4x8 cell,
// layer 2 the resolved pixels and layer 3 the transparent color. Line y
// reads its screen RAM from bank y&7, banks being 1024 bytes apart. A nil
// background means black lines.
func DecodeFLI(p *picture.Picture, bitmap, screens, color, background []byte) {
	bg := func(y int) byte {
		if background == nil {
			return 0
		}
		return background[y] & 15
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.SetPixel(0, x, y, bg(y))
			p.SetPixel(1, x, y, color[(y>>3)*columns+(x>>2)]&15)
			p.SetPixel(3, x, y, TransparentColor)
		}
	}
	var c [4]byte
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < columns; cx++ {
			cell := cy*columns + cx
			c[3] = color[cell] & 15
			for y := 0; y < 8; y++ {
				s := screens[y*1024+cell]
				c[0] = bg(cy*8 + y)
				c[1] = s >> 4
				c[2] = s & 15
				bits := bitmap[cy*320+cx*8+y]
				for x := 3; x >= 0; x-- {
					p.SetPixel(2, cx*4+x, cy*8+y, c[bits&3])
					bits >>= 2
				}
			}
		}
	}
}
