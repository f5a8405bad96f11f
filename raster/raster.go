/*
Package raster maps the video memory layouts of the supported machines to
linear scanlines.
*/
package raster

// CPCAddress returns the address of the first byte of scanline y on an
// Amstrad CPC screen starting at base and columns bytes wide. The CRTC
// steps each character row by columns bytes inside a 2 KiB block, and each
// of the 8 lines of a character row lives 0x800 bytes after the previous
// one.
func CPCAddress(base, columns, y int) int {
	addr := base + (y>>3)*columns
	addr = (addr & 0xc7ff) | ((addr & 0x800) << 3)
	addr += (y & 7) << 11
	return addr & 0xffff
}

// CPCUnscramble copies lines scanlines of columns bytes out of a 64 KiB
// memory image into a linear buffer.
func CPCUnscramble(ram []byte, base, columns, lines int) []byte {
	out := make([]byte, columns*lines)
	for y := 0; y < lines; y++ {
		addr := CPCAddress(base, columns, y)
		for i := 0; i < columns; i++ {
			out[y*columns+i] = ram[(addr+i)&0xffff]
		}
	}
	return out
}

// CPCScramble is the inverse of CPCUnscramble: it stores linear scanlines
// into ram at their hardware addresses.
func CPCScramble(ram, linear []byte, base, columns, lines int) {
	for y := 0; y < lines; y++ {
		addr := CPCAddress(base, columns, y)
		for i := 0; i < columns; i++ {
			ram[(addr+i)&0xffff] = linear[y*columns+i]
		}
	}
}

// CPCDecode unpacks one byte of screen memory into its pixels for the given
// mode: 2 pixels of 4 bits in mode 0, 4 of 2 bits in mode 1 and 8 of 1 bit
// in mode 2.
func CPCDecode(mode int, b byte) []byte {
	switch mode {
	case 0:
		return []byte{
			(b&0x80)>>7 | (b&0x08)>>2 | (b&0x20)>>3 | (b&0x02)<<2,
			(b&0x40)>>6 | (b&0x04)>>1 | (b&0x10)>>2 | (b&0x01)<<3,
		}
	case 1:
		px := make([]byte, 4)
		for i := range px {
			px[i] = (b&0x80)>>7 | (b&0x08)>>2
			b <<= 1
		}
		return px
	default:
		px := make([]byte, 8)
		for i := range px {
			px[i] = (b & 0x80) >> 7
			b <<= 1
		}
		return px
	}
}

// CPCEncode packs pixels into one byte of screen memory for the given mode.
// It is the inverse of CPCDecode; px must hold 2, 4 or 8 pixels.
func CPCEncode(mode int, px []byte) byte {
	var b byte
	switch mode {
	case 0:
		p0, p1 := px[0], px[1]
		b = (p0&1)<<7 | (p0&2)<<2 | (p0&4)<<3 | (p0&8)>>2 |
			(p1&1)<<6 | (p1&2)<<1 | (p1&4)<<2 | (p1&8)>>3
	case 1:
		for i := 0; i < 4; i++ {
			b |= (px[i]&1)<<uint(7-i) | (px[i]>>1&1)<<uint(3-i)
		}
	default:
		for i := 0; i < 8; i++ {
			b |= (px[i] & 1) << uint(7-i)
		}
	}
	return b
}

// PixelsPerByte returns how many pixels one byte holds in a CPC mode.
func PixelsPerByte(mode int) int {
	switch mode {
	case 0:
		return 2
	case 1:
		return 4
	default:
		return 8
	}
}

// HGROffset returns the offset of scanline y in an Apple II hi-res page.
func HGROffset(y int) int {
	return ((y & 7) << 10) + ((y & 070) << 4) + (y>>6)*40
}

// Planes assembles the value of pixel x on a row from bit-planes. Each
// plane stores 8 pixels per byte, least significant bit first, starting
// at offset; plane n provides bit n of the result.
func Planes(planes [][]byte, offset, x int) byte {
	var v byte
	for n, plane := range planes {
		i := offset + x>>3
		if i < len(plane) {
			v |= ((plane[i] >> uint(x&7)) & 1) << uint(n)
		}
	}
	return v
}
