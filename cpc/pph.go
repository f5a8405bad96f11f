package cpc

import (
	"fmt"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/raster"
)

// Perfect Pix modes. Modes 0 to 2 wrap a standard screen; R, B0 and B1 show
// two interleaved pictures, the .ODD and .EVE files, on alternate frames.
const (
	PPHMode0 = iota
	PPHMode1
	PPHMode2
	PPHModeR
	PPHModeB0
	PPHModeB1
)

const (
	pphHeaderSize  = 6
	pphMaxWidth    = 384
	pphMaxHeight   = 272
	pphMaxPalettes = 28
)

var (
	errPPHMode    = fmt.Errorf("cpc: %w: Perfect Pix mode not supported", codec.ErrUnsupported)
	errPPHHeader  = fmt.Errorf("cpc: %w: bad Perfect Pix header", codec.ErrFormat)
	errPPHPalette = fmt.Errorf("cpc: %w: bad Perfect Pix color", codec.ErrFormat)
)

// pphColors are the 27 firmware colors as measured on a CPC monitor.
var pphColors = [27]palette.RGB{
	{R: 0x00, G: 0x02, B: 0x01}, {R: 0x00, G: 0x02, B: 0x6b}, {R: 0x0c, G: 0x02, B: 0xf4},
	{R: 0x6c, G: 0x02, B: 0x01}, {R: 0x69, G: 0x02, B: 0x68}, {R: 0x6c, G: 0x02, B: 0xf2},
	{R: 0xf3, G: 0x05, B: 0x06}, {R: 0xf0, G: 0x02, B: 0x68}, {R: 0xf3, G: 0x02, B: 0xf4},
	{R: 0x02, G: 0x78, B: 0x01}, {R: 0x00, G: 0x78, B: 0x68}, {R: 0x0c, G: 0x7b, B: 0xf4},
	{R: 0x6e, G: 0x7b, B: 0x01}, {R: 0x6e, G: 0x7d, B: 0x6b}, {R: 0x6e, G: 0x7b, B: 0xf6},
	{R: 0xf3, G: 0x7d, B: 0x0d}, {R: 0xf3, G: 0x7d, B: 0x6b}, {R: 0xfa, G: 0x80, B: 0xf9},
	{R: 0x02, G: 0xf0, B: 0x01}, {R: 0x00, G: 0xf3, B: 0x6b}, {R: 0x0f, G: 0xf3, B: 0xf2},
	{R: 0x71, G: 0xf5, B: 0x04}, {R: 0x71, G: 0xf3, B: 0x6b}, {R: 0x71, G: 0xf3, B: 0xf4},
	{R: 0xf3, G: 0xf3, B: 0x0d}, {R: 0xf3, G: 0xf3, B: 0x6d}, {R: 0xff, G: 0xf3, B: 0xf9},
}

// PPHHeader is the Perfect Pix header.
type PPHHeader struct {
	Mode          byte
	Width, Height uint16
	Palettes      byte
}

func (h *PPHHeader) read(r *binio.Reader) error {
	h.Mode = r.Byte()
	h.Width = r.WordLE()
	h.Height = r.WordLE()
	h.Palettes = r.Byte()
	return r.Err()
}

// paletteSize returns the number of palette bytes following the header, or
// -1 when the palette count does not suit the mode.
func (h *PPHHeader) paletteSize() int {
	switch h.Mode {
	case PPHMode0, PPHModeR, PPHModeB0:
		if h.Palettes != 1 {
			return -1
		}
		return 16
	case PPHMode1, PPHModeB1:
		return int(h.Palettes)*5 - 1
	case PPHMode2:
		if h.Palettes != 1 {
			return -1
		}
		return 2
	}
	return -1
}

func (h *PPHHeader) valid() bool {
	return h.Mode <= PPHModeB1 &&
		h.Width >= 2 && h.Width <= pphMaxWidth &&
		h.Height >= 1 && h.Height <= pphMaxHeight &&
		h.Palettes >= 1 && h.Palettes <= pphMaxPalettes &&
		h.paletteSize() >= 0
}

// pageSize is the size of each of the .ODD and .EVE files.
func (h *PPHHeader) pageSize() int {
	return int(h.Width) * int(h.Height) / 4
}

// DetectPPH reports whether src is a Perfect Pix header with its .ODD and
// .EVE pages next to it.
func DetectPPH(src *codec.Source) bool {
	size := src.Size()
	if size < 11 {
		return false
	}
	r, err := src.Rewind()
	if err != nil {
		return false
	}
	var h PPHHeader
	if h.read(r) != nil || !h.valid() {
		return false
	}
	if size != int64(pphHeaderSize+h.paletteSize()) {
		return false
	}
	for _, ext := range []string{"odd", "eve"} {
		b, err := src.Companion(ext)
		if err != nil || len(b) != h.pageSize() {
			return false
		}
	}
	return true
}

// blend mixes two colors shown on alternate frames, weighting the brighter.
func blend(a, b uint8) uint8 {
	h, l := uint32(a), uint32(b)
	if l > h {
		h, l = l, h
	}
	return uint8((23*h + 9*l) / 32)
}

func blendRGB(a, b palette.RGB) palette.RGB {
	return palette.RGB{R: blend(a.R, b.R), G: blend(a.G, b.G), B: blend(a.B, b.B)}
}

func pphColor(n byte) (palette.RGB, error) {
	if int(n) >= len(pphColors) {
		return palette.RGB{}, errPPHPalette
	}
	return pphColors[n], nil
}

// readPPHPalette fills p from the palette bytes b. For B1 pictures it
// returns the number of lines each 16 color palette covers.
func readPPHPalette(h *PPHHeader, b []byte, p *picture.Picture) ([]int, error) {
	switch h.Mode {
	case PPHMode0, PPHModeR:
		for i := 0; i < 16; i++ {
			c, err := pphColor(b[i])
			if err != nil {
				return nil, err
			}
			p.Palette[i] = c
		}
	case PPHModeB0:
		var base [16]palette.RGB
		for i := range base {
			c, err := pphColor(b[i])
			if err != nil {
				return nil, err
			}
			base[i] = c
		}
		for i := 0; i < palette.Size; i++ {
			p.Palette[i] = blendRGB(base[i&15], base[i>>4])
		}
	case PPHMode1, PPHModeB1:
		n := int(h.Palettes)
		if n > 16 {
			n = 16
		}
		lines := make([]int, n)
		for j := 0; j < n; j++ {
			var base [4]palette.RGB
			for i := range base {
				c, err := pphColor(b[j*5+i])
				if err != nil {
					return nil, err
				}
				base[i] = c
			}
			for i := 0; i < 16; i++ {
				p.Palette[16*j+i] = blendRGB(base[i&3], base[i>>2])
			}
			if j*5+4 < len(b) {
				lines[j] = int(b[j*5+4])
			}
		}
		lines[n-1] = 255
		return lines, nil
	}
	return nil, nil
}

func mode0Pixels(b byte) (byte, byte) {
	px := raster.CPCDecode(0, b)
	return px[0], px[1]
}

// LoadPPH decodes the R, B0 and B1 Perfect Pix modes into p.
func LoadPPH(src *codec.Source, p *picture.Picture) error {
	r, err := src.Rewind()
	if err != nil {
		return err
	}
	var h PPHHeader
	if err := h.read(r); err != nil {
		return err
	}
	if !h.valid() {
		return errPPHHeader
	}
	pal := r.Bytes(h.paletteSize())
	if err := r.Err(); err != nil {
		return err
	}

	width, ratio := int(h.Width), picture.RatioSimple
	switch h.Mode {
	case PPHMode0, PPHModeB0:
		width /= 2
		ratio = picture.RatioWide
	case PPHMode2:
		ratio = picture.RatioTall
	}
	if h.Mode < PPHModeR {
		return errPPHMode
	}

	odd, err := src.Companion("odd")
	if err != nil {
		return err
	}
	even, err := src.Companion("eve")
	if err != nil {
		return err
	}
	if len(odd) < h.pageSize() || len(even) < h.pageSize() {
		return codec.ErrTruncated
	}

	if err := p.PreLoad(width, int(h.Height), 1, 8, ratio); err != nil {
		return err
	}
	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	lines, err := readPPHPalette(&h, pal, p)
	if err != nil {
		return err
	}

	k := 0
	bank, line := 0, 0
	for y := 0; y < p.Height; y++ {
		for x := 0; x < width; k++ {
			if k >= len(even) || k >= len(odd) {
				return codec.ErrTruncated
			}
			e, o := even[k], odd[k]
			switch h.Mode {
			case PPHModeB0:
				a0, b0 := mode0Pixels(e)
				a1, b1 := mode0Pixels(o)
				p.SetPixel(0, x, y, a0<<4|a1)
				p.SetPixel(0, x+1, y, b0<<4|b1)
				x += 2
			case PPHModeR:
				a, c := mode0Pixels(e)
				b, d := mode0Pixels(o)
				if y&1 != 0 {
					a, b, c, d = b, a, d, c
				}
				for i, v := range [4]byte{a, b, c, d} {
					p.SetPixel(0, x+i, y, v)
				}
				x += 4
			case PPHModeB1:
				if line >= lines[bank] && bank+1 < len(lines) {
					line = 0
					bank++
				}
				for i := 0; i < 4; i++ {
					shift := uint(3 - i)
					a := (e>>(shift+4)&1)<<1 | (e>>shift)&1
					b := (o>>(shift+4)&1)<<1 | (o>>shift)&1
					p.SetPixel(0, x+i, y, a+(b<<2)+byte(bank)*16)
				}
				x += 4
			}
		}
		line++
	}
	return nil
}
