/*
Package palette implements the 256-entry RGB palette shared by every codec,
the conversions between 6-bit and 8-bit color channels and the fixed color
sets of the supported home computers.
*/
package palette

import "image/color"

// Size is the number of entries in a Palette.
const Size = 256

// RGB is a single palette entry with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 0xff}.RGBA()
}

// Palette is the fixed 256 color table of a picture.
type Palette [Size]RGB

// To8Bit scales a 0-63 channel to 0-255, truncating.
func To8Bit(c uint8) uint8 {
	return uint8(int(c) * 255 / 63)
}

// To6Bit scales a 0-255 channel to 0-63, truncating.
func To6Bit(c uint8) uint8 {
	return uint8(int(c) * 63 / 255)
}

// Scale64To256 converts every channel from 6-bit to 8-bit.
func (p *Palette) Scale64To256() {
	for i := range p {
		p[i] = RGB{To8Bit(p[i].R), To8Bit(p[i].G), To8Bit(p[i].B)}
	}
}

// Scale256To64 converts every channel from 8-bit to 6-bit.
func (p *Palette) Scale256To64() {
	for i := range p {
		p[i] = RGB{To6Bit(p[i].R), To6Bit(p[i].G), To6Bit(p[i].B)}
	}
}

// Bytes returns the palette as 768 bytes of R, G, B triples.
func (p *Palette) Bytes() []byte {
	b := make([]byte, 0, Size*3)
	for _, c := range p {
		b = append(b, c.R, c.G, c.B)
	}
	return b
}

// SetBytes fills the palette from R, G, B triples. Entries not covered by b
// are left untouched.
func (p *Palette) SetBytes(b []byte) {
	for i := 0; i < Size && i*3+2 < len(b); i++ {
		p[i] = RGB{b[i*3], b[i*3+1], b[i*3+2]}
	}
}

// Color returns the first n entries as a color.Palette.
func (p *Palette) Color(n int) color.Palette {
	if n <= 0 || n > Size {
		n = Size
	}
	cp := make(color.Palette, n)
	for i := range cp {
		cp[i] = color.RGBA{p[i].R, p[i].G, p[i].B, 0xff}
	}
	return cp
}

// FromColor copies a color.Palette into p, ignoring entries past Size.
func FromColor(cp color.Palette) Palette {
	var p Palette
	for i, c := range cp {
		if i >= Size {
			break
		}
		r, g, b, _ := c.RGBA()
		p[i] = RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
	}
	return p
}

// Index returns the first entry in p[lo:hi] equal to c, or -1.
func (p *Palette) Index(c RGB, lo, hi int) int {
	for i := lo; i < hi && i < Size; i++ {
		if p[i] == c {
			return i
		}
	}
	return -1
}
