package cpc

import (
	"fmt"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/raster"
)

// Mode 5 pictures are a 288x256 mode 1 bitmap in the .GFX file and a .CM5
// file of inks: ink 0 for the whole picture, inks 1 and 2 for each line and
// ink 3 for each 48 pixel block of a line. They load into five layers, the
// four ink layers followed by the bitmap.
const (
	cm5Width    = 288
	cm5Height   = 256
	cm5Block    = 48
	cm5Blocks   = cm5Width / cm5Block
	cm5Size     = 1 + cm5Height*(2+cm5Blocks)
	cm5GFXSize  = cm5Width / 4 * cm5Height
	cm5Layers   = 5
	cm5Bitmap   = 4
	cm5LineInks = 2 + cm5Blocks
)

var (
	errGFXSize  = fmt.Errorf("cpc: %w: .GFX file is not %d bytes", codec.ErrFormat, cm5GFXSize)
	errCM5Shape = fmt.Errorf("cpc: %w: Mode 5 pictures need 5 layers of 288x256", codec.ErrConstraint)
)

// DetectCM5 reports whether src is a 2049 byte ink file with its .GFX
// bitmap next to it.
func DetectCM5(src *codec.Source) bool {
	if src.Size() != cm5Size {
		return false
	}
	b, err := src.Companion("gfx")
	return err == nil && len(b) == cm5GFXSize
}

// LoadCM5 decodes a Mode 5 picture into p.
func LoadCM5(src *codec.Source, p *picture.Picture) error {
	inks, err := src.ReadAll()
	if err != nil {
		return err
	}
	if len(inks) == 0 {
		return codec.ErrTruncated
	}
	gfx, err := src.Companion("gfx")
	if err != nil {
		return err
	}
	if len(gfx) < cm5GFXSize {
		return errGFXSize
	}

	if err := p.PreLoad(cm5Width, cm5Height, cm5Layers, 8, picture.RatioSimple); err != nil {
		return err
	}
	if src.ClearPalette {
		p.Palette = palette.Palette{}
		// Something visible for ink numbers 1-3 of the bitmap layer
		p.Palette[1].R = 60
		p.Palette[2].B = 60
		p.Palette[3].G = 60
	}
	p.Palette.SetCPCHardware()

	for i := range p.Layers[0] {
		p.Layers[0][i] = inks[0]
	}
	for i, ink := range inks[1:] {
		y, mod := i/cm5LineInks, i%cm5LineInks
		if y >= cm5Height {
			break
		}
		switch mod {
		case 0, 1:
			for x := 0; x < cm5Width; x++ {
				p.SetPixel(1+mod, x, y, ink)
			}
		default:
			for x := (mod - 2) * cm5Block; x < (mod-1)*cm5Block; x++ {
				p.SetPixel(3, x, y, ink)
			}
		}
	}

	i := 0
	for y := 0; y < cm5Height; y++ {
		for x := 0; x < cm5Width; i++ {
			for _, c := range raster.CPCDecode(1, gfx[i]) {
				p.SetPixel(cm5Bitmap, x, y, 3^c)
				x++
			}
		}
	}
	return nil
}

// SaveCM5 writes the ink layers of p to the .CM5 file and its bitmap layer
// to the .GFX companion. Each ink is taken from the first pixel of the
// area it covers.
func SaveCM5(dst *codec.Sink, p *picture.Picture) error {
	if len(p.Layers) < cm5Layers || p.Width < cm5Width || p.Height < cm5Height {
		return errCM5Shape
	}

	w := binio.NewWriter(dst)
	w.Byte(p.Pixel(0, 0, 0))
	for y := 0; y < cm5Height; y++ {
		w.Byte(p.Pixel(1, 0, y))
		w.Byte(p.Pixel(2, 0, y))
		for b := 0; b < cm5Blocks; b++ {
			w.Byte(p.Pixel(3, b*cm5Block, y))
		}
	}
	if err := w.Err(); err != nil {
		return err
	}

	gfx := make([]byte, 0, cm5GFXSize)
	px := make([]byte, 4)
	for y := 0; y < cm5Height; y++ {
		for x := 0; x < cm5Width; x += 4 {
			for j := range px {
				px[j] = 3 ^ p.Pixel(cm5Bitmap, x+j, y)&3
			}
			gfx = append(gfx, raster.CPCEncode(1, px))
		}
	}
	return dst.WriteCompanion("gfx", gfx)
}
