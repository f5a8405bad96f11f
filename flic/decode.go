package flic

import (
	"bytes"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/palette"
)

func reader(b []byte) *binio.Reader {
	return binio.NewReader(bytes.NewReader(b))
}

// scale6 widens a 6-bit color component to 8 bits.
func scale6(c byte) byte {
	return c<<2 | c>>4
}

// color applies a COLOR_256 or COLOR_64 palette update: packets of a skip
// count and a color count, where a count of 0 means 256.
func (l *loader) color(b []byte, sixBit bool) error {
	r := reader(b)
	packets := int(r.WordLE())
	i := 0
	for ; packets > 0 && r.Err() == nil; packets-- {
		i += int(r.Byte())
		n := int(r.Byte())
		if n == 0 {
			n = 256
		}
		for ; n > 0; n-- {
			rgb := r.Bytes(3)
			if rgb == nil {
				break
			}
			if sixBit {
				rgb[0], rgb[1], rgb[2] = scale6(rgb[0]), scale6(rgb[1]), scale6(rgb[2])
			}
			if i < palette.Size {
				l.p.Palette[i] = palette.RGB{R: rgb[0], G: rgb[1], B: rgb[2]}
			}
			i++
		}
	}
	return r.Err()
}

// brun decodes a full frame: each line starts with an unreliable packet
// count, then packets of a signed count, positive for a run of the next
// byte and negative for that many literal bytes.
func (l *loader) brun(b []byte) error {
	r := reader(b)
	for y := 0; y < l.height && r.Err() == nil; y++ {
		r.Byte()
		for x := 0; x < l.width && r.Err() == nil; {
			n := int(int8(r.Byte()))
			if n >= 0 {
				c := r.Byte()
				for ; n > 0 && x < l.width; n-- {
					l.set(x, y, c)
					x++
				}
				continue
			}
			for ; n < 0 && x < l.width; n++ {
				c := r.Byte()
				if r.Err() != nil {
					break
				}
				l.set(x, y, c)
				x++
			}
		}
	}
	return r.Err()
}

// lc decodes an FLI delta: a first line, a line count, then for each line
// packets of a column skip and a signed count, positive for literal bytes
// and negative for a run.
func (l *loader) lc(b []byte) error {
	r := reader(b)
	y := int(r.WordLE())
	lines := int(r.WordLE())
	for ; lines > 0 && r.Err() == nil; lines-- {
		x := 0
		for packets := int(r.Byte()); packets > 0 && r.Err() == nil; packets-- {
			x += int(r.Byte())
			n := int(int8(r.Byte()))
			if n < 0 {
				c := r.Byte()
				for ; n < 0; n++ {
					l.set(x, y, c)
					x++
				}
				continue
			}
			for ; n > 0; n-- {
				l.set(x, y, r.Byte())
				x++
			}
		}
		y++
	}
	return r.Err()
}

// ss2 decodes an FLC word oriented delta. Each line starts with opcodes:
// a negative value skips lines, 0x8000 flags set the last pixel of the line
// and a positive value is the packet count. Packets work on pixel pairs.
func (l *loader) ss2(b []byte) error {
	r := reader(b)
	lines := int(r.WordLE())
	y := 0
	for lines > 0 && r.Err() == nil {
		op := r.WordLE()
		switch op & 0xc000 {
		case 0xc000:
			y -= int(int16(op))
			continue
		case 0x8000:
			l.set(l.width-1, y, byte(op))
			continue
		case 0x4000:
			l.src.Logf("flic: unsupported opcode %04x", op)
			return errOpcode
		}
		x := 0
		for packets := int(op); packets > 0 && r.Err() == nil; packets-- {
			x += int(r.Byte())
			n := int(int8(r.Byte()))
			if n < 0 {
				c1, c2 := r.Byte(), r.Byte()
				for ; n < 0; n++ {
					l.set(x, y, c1)
					l.set(x+1, y, c2)
					x += 2
				}
				continue
			}
			for ; n > 0; n-- {
				l.set(x, y, r.Byte())
				l.set(x+1, y, r.Byte())
				x += 2
			}
		}
		y++
		lines--
	}
	return r.Err()
}

// black clears the frame to color 0.
func (l *loader) black() {
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			l.set(x, y, 0)
		}
	}
}

// copy stores an uncompressed frame.
func (l *loader) copy(b []byte) {
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			if i := y*l.width + x; i < len(b) {
				l.set(x, y, b[i])
			}
		}
	}
}
