package cpc

import (
	"errors"
	"fmt"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/raster"
)

// Graphos pictures cover the whole CPC Plus overscan display. The .GO1 file
// holds the top 168 lines and the .GO2 file the rest.
const (
	gosWidth   = 192
	gosHeight  = 272
	gosSplit   = 168
	gosColumns = gosWidth / 2
	gosPage    = 0x4000
	kitSize    = 32
)

var errHalfSize = fmt.Errorf("cpc: %w: Graphos half is not 16 KiB", codec.ErrFormat)

func gosHalf(size int) bool {
	return size == gosPage-1 || size == gosPage
}

// DetectGOS reports whether src is the .GO1 half of a Graphos picture with
// its .GO2 half next to it.
func DetectGOS(src *codec.Source) bool {
	if !gosHalf(dataSize(src.Peek(AMSDOSSize + gosPage))) {
		return false
	}
	b, err := src.Companion("GO2")
	return err == nil && gosHalf(dataSize(b))
}

// decodeGOS draws lines y0 to y1 from a 16 KiB mode 0 page.
func decodeGOS(p *picture.Picture, page []byte, y0, y1 int) {
	buf := make([]byte, gosPage)
	copy(buf, page)
	i := 0
	for y := y0; y < y1; y++ {
		for x := 0; x < gosWidth; i++ {
			for _, c := range raster.CPCDecode(0, buf[i]) {
				p.SetPixel(0, x, y, c)
				x++
			}
		}
		i += 0x800
		if i >= gosPage {
			i -= gosPage
		} else {
			i -= gosColumns
		}
	}
}

// loadKIT reads a Graphos palette. A 32 byte file holds 16 little-endian
// words with green in bits 8-11, red in bits 4-7 and blue in bits 0-3; any
// other size holds hardware ink numbers.
func loadKIT(p *picture.Picture, b []byte) error {
	if len(b) == kitSize {
		for i := 0; i < palInks; i++ {
			w := binio.LE16(b, i*2)
			p.Palette[i] = palette.RGB{
				R: uint8(w>>4&15) * 0x11,
				G: uint8(w>>8&15) * 0x11,
				B: uint8(w&15) * 0x11,
			}
		}
		return nil
	}
	if len(b) < palInks {
		return codec.ErrTruncated
	}
	p.Palette.SetCPCHardware()
	for i, ink := range b[:palInks] {
		p.Palette[i] = p.Palette[ink]
	}
	return nil
}

// LoadGOS decodes a Graphos picture into p. The .KIT palette is optional.
func LoadGOS(src *codec.Source, p *picture.Picture) error {
	raw, err := src.ReadAll()
	if err != nil {
		return err
	}
	_, top, err := splitAMSDOS(raw)
	if err != nil {
		return err
	}
	bottom, err := companion(src, "GO2")
	if err != nil {
		return err
	}
	if !gosHalf(len(top)) || !gosHalf(len(bottom)) {
		return errHalfSize
	}

	if err := p.PreLoad(gosWidth, gosHeight, 1, 4, picture.RatioWide); err != nil {
		return err
	}
	decodeGOS(p, top, 0, gosSplit)
	decodeGOS(p, bottom, gosSplit, gosHeight)

	kit, err := companion(src, "KIT")
	if errors.Is(err, codec.ErrNoCompanion) {
		src.Logf("cpc: no .KIT palette")
		return nil
	}
	if err != nil {
		return err
	}
	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	return loadKIT(p, kit)
}
