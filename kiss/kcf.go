package kiss

import (
	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
)

const (
	oldKCFSize  = 320
	oldKCFBanks = 10
	bankSize    = 16
)

// decode12 expands a 12-bit KiSS color stored as RRRRBBBB 0000GGGG.
func decode12(b0, b1 byte) palette.RGB {
	return palette.RGB{R: b0 & 0xf0, G: (b1 & 15) << 4, B: (b0 & 15) << 4}
}

func encode12(c palette.RGB) (byte, byte) {
	return c.R&0xf0 | c.B>>4, c.G >> 4
}

// DetectKCF reports whether src holds an old or new style KiSS palette.
// Old palettes are recognised by their size and the unused high nibble of
// every second byte.
func DetectKCF(src *codec.Source) bool {
	if src.Size() == oldKCFSize {
		b := src.Peek(oldKCFSize)
		if len(b) != oldKCFSize {
			return false
		}
		for i := 1; i < len(b); i += 2 {
			if b[i]>>4 != 0 {
				return false
			}
		}
		return true
	}
	_, _, err := readHeader(src, KindPalette)
	return err == nil
}

// LoadKCF reads a KiSS palette into p. 12-bit palettes fill entries from
// 16 onwards and entries 0 to 15 repeat the first bank.
func LoadKCF(src *codec.Source, p *picture.Picture) error {
	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	if src.Size() == oldKCFSize {
		r, err := src.Rewind()
		if err != nil {
			return err
		}
		b := r.Bytes(oldKCFSize)
		if err := r.Err(); err != nil {
			return err
		}
		for i := 0; i < oldKCFBanks*bankSize; i++ {
			p.Palette[bankSize+i] = decode12(b[i*2], b[i*2+1])
		}
		copy(p.Palette[:bankSize], p.Palette[bankSize:2*bankSize])
		return nil
	}

	h, r, err := readHeader(src, KindPalette)
	if err != nil {
		return err
	}
	var width int
	switch h.Bits {
	case 12:
		width = 2
	case 24:
		width = 3
	default:
		return errDepth
	}
	index := 0
	if h.Bits == 12 {
		index = bankSize
	}
	for n := int(h.Width) * int(h.Height); n > 0 && index < palette.Size; n-- {
		b := r.Bytes(width)
		if err := r.Err(); err != nil {
			return err
		}
		if width == 2 {
			p.Palette[index] = decode12(b[0], b[1])
		} else {
			p.Palette[index] = palette.RGB{R: b[0], G: b[1], B: b[2]}
		}
		index++
	}
	if h.Bits == 12 {
		copy(p.Palette[:bankSize], p.Palette[bankSize:2*bankSize])
	}
	return nil
}

// SaveKCF writes an old style palette when the picture only uses the first
// 16 colors, and a single bank 24-bit new style palette otherwise.
func SaveKCF(dst *codec.Sink, p *picture.Picture) error {
	high := false
	for l := range p.Layers {
		high = high || usesHighColors(p.Layers[l])
	}
	w := binio.NewWriter(dst)
	if !high {
		for _, c := range p.Palette[bankSize : bankSize+oldKCFBanks*bankSize] {
			b0, b1 := encode12(c)
			w.Byte(b0)
			w.Byte(b1)
		}
		return w.Err()
	}
	h := Header{Kind: KindPalette, Bits: 24, Width: palette.Size, Height: 1}
	h.write(w)
	w.Bytes(p.Palette.Bytes())
	return w.Err()
}
