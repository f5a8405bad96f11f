/*
Package hgr implements raw Apple II hi-res screen dumps: 8 KiB HGR pages of
280x192 pixels and 16 KiB double hi-res pages of 560x192 pixels, the
auxiliary memory bank stored first.

A loaded picture has two layers. Layer 0 is monochrome and holds the raw
bits together with the palette selection of each byte, layer 1 shows the
colors a "Le Chat Mauve" RGB adapter would display. Only layer 0 is saved.
*/
package hgr

import (
	"fmt"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/raster"
)

// Sizes of a hi-res page and of the pictures.
const (
	PageSize   = 8192
	Height     = 192
	Width      = 280
	WidthDHGR  = 560
	columns    = 40
	bitsPerCol = 7
)

// Layers of a loaded picture.
const (
	LayerMono  = 0
	LayerColor = 1
)

var errSize = fmt.Errorf("hgr: %w: picture must be 280x192 or 560x192", codec.ErrConstraint)

// Detect reports whether src is the size of one or two hi-res pages.
func Detect(src *codec.Source) bool {
	size := src.Size()
	return size == PageSize || size == 2*PageSize
}

// Load decodes a HGR or DHGR page into p.
func Load(src *codec.Source, p *picture.Picture) error {
	dhgr := src.Size() == 2*PageSize
	r, err := src.Rewind()
	if err != nil {
		return err
	}
	banks := [][]byte{r.Bytes(PageSize)}
	if dhgr {
		banks = append(banks, r.Bytes(PageSize))
	}
	if err := r.Err(); err != nil {
		return err
	}

	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	if dhgr {
		p.Palette.SetDHGR()
		if err := p.PreLoad(WidthDHGR, Height, 2, 4, picture.RatioTall); err != nil {
			return err
		}
		p.Mode = picture.ModeDHGR
	} else {
		p.Palette.SetHGR()
		if err := p.PreLoad(Width, Height, 2, 2, picture.RatioSimple); err != nil {
			return err
		}
		p.Mode = picture.ModeHGR
	}

	for y := 0; y < Height; y++ {
		if dhgr {
			decodeDHGRLine(p, banks, y)
		} else {
			decodeHGRLine(p, banks[0], y)
		}
	}
	logHoles(src, banks[0])
	return nil
}

// decodeHGRLine follows the bit stream of a line three pixels at a time:
// two adjacent ones are white, isolated ones take the color of their
// column parity and the palette of their byte, anything else is black.
func decodeHGRLine(p *picture.Picture, page []byte, y int) {
	off := raster.HGROffset(y)
	var bits, prev byte
	x := 0
	for column := 0; column < columns; column++ {
		b := page[off+column]
		var pal byte
		if b&0x80 != 0 {
			pal = 4
		}
		for i := 0; i < bitsPerCol; i++ {
			p.SetPixel(LayerMono, x, y, (b&1)*3+pal)
			bits = bits<<1 | b&1
			switch {
			case bits&3 == 3:
				p.SetPixel(LayerColor, x-1, y, 3+prev)
				p.SetPixel(LayerColor, x, y, 3+pal)
			case bits&1 == 0:
				p.SetPixel(LayerColor, x, y, pal)
			default:
				if bits&7 == 5 {
					p.SetPixel(LayerColor, x-1, y, 2-byte(x&1)+prev)
				}
				p.SetPixel(LayerColor, x, y, 2-byte(x&1)+pal)
			}
			prev = pal
			b >>= 1
			x++
		}
	}
}

// decodeDHGRLine reads columns alternately from the auxiliary and main
// banks. Groups of four pixels show one of 16 colors, unless the first of
// them comes from a byte with its high bit clear, which shows them in black
// and white (mixed mode).
func decodeDHGRLine(p *picture.Picture, banks [][]byte, y int) {
	off := raster.HGROffset(y)
	var bits, groupPal byte
	x := 0
	for column := 0; column < columns; column++ {
		for _, bank := range banks {
			b := bank[off+column]
			var pal byte
			if b&0x80 == 0 {
				pal = 16
			}
			for i := 0; i < bitsPerCol; i++ {
				p.SetPixel(LayerMono, x, y, (b&1)*15+pal)
				bits = bits<<1 | b&1
				if x&3 == 0 {
					groupPal = pal
				}
				switch {
				case groupPal != 0:
					p.SetPixel(LayerColor, x, y, (b&1)*15+pal)
				case x&3 == 3:
					for j := 0; j < 4; j++ {
						p.SetPixel(LayerColor, x-j, y, bits&15+pal)
					}
				}
				b >>= 1
				x++
			}
		}
	}
}

// logHoles reports data stored in the unused 8 bytes at the end of each
// 128 byte block of the page.
func logHoles(src *codec.Source, page []byte) {
	for i := 0; i < PageSize/128; i++ {
		hole := page[i*128+120 : i*128+128]
		for _, b := range hole {
			if b != 0 {
				src.Logf("hgr: hidden data at $%04X: % x", i*128+120, hole)
				break
			}
		}
	}
}

// Save writes layer 0 of p as one (280 pixels wide) or two (560 pixels
// wide) hi-res pages. Bit 0 of each pixel is the bit stored; the palette
// of each byte comes from its first pixel: bit 2 sets the high bit in HGR,
// bit 4 clears it in DHGR.
func Save(dst *codec.Sink, p *picture.Picture) error {
	if p.Height != Height || (p.Width != Width && p.Width != WidthDHGR) {
		return errSize
	}
	dhgr := p.Width == WidthDHGR
	banks := [][]byte{make([]byte, PageSize)}
	if dhgr {
		banks = append(banks, make([]byte, PageSize))
	}

	for y := 0; y < Height; y++ {
		off := raster.HGROffset(y)
		x := 0
		for column := 0; x < p.Width; column++ {
			for _, bank := range banks {
				first := p.Pixel(LayerMono, x, y)
				var b byte
				switch {
				case dhgr && first&16 == 0:
					b = 0x80
				case !dhgr && first&4 != 0:
					b = 0x80
				}
				for i := 0; i < bitsPerCol; i++ {
					b |= (p.Pixel(LayerMono, x, y) & 1) << uint(i)
					x++
				}
				bank[off+column] = b
			}
		}
	}

	w := binio.NewWriter(dst)
	for _, bank := range banks {
		w.Bytes(bank)
	}
	return w.Err()
}
