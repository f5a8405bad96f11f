package kiss

import (
	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/picture"
)

const oldCelHeader = 4

func oldCelSize(width, height int) int64 {
	return int64((width+1)>>1) * int64(height)
}

// isOldCel reports whether the first four bytes describe a picture whose
// pixels exactly fill the rest of a stream of size bytes.
func isOldCel(hdr []byte, size int64) bool {
	if len(hdr) < oldCelHeader || size <= oldCelHeader {
		return false
	}
	w, h := int(binio.LE16(hdr, 0)), int(binio.LE16(hdr, 2))
	return oldCelSize(w, h) == size-oldCelHeader
}

// DetectCEL reports whether src holds an old or new style KiSS cel.
func DetectCEL(src *codec.Source) bool {
	if isOldCel(src.Peek(oldCelHeader), src.Size()) {
		return true
	}
	_, _, err := readHeader(src, KindCel)
	return err == nil
}

func readNibbles(r *binio.Reader, p *picture.Picture, width, height, x0, y0 int) error {
	row := make([]byte, (width+1)>>1)
	for y := 0; y < height; y++ {
		if err := r.Full(row); err != nil {
			return err
		}
		for x := 0; x < width; x++ {
			c := row[x>>1]
			if x&1 == 0 {
				c >>= 4
			}
			p.SetPixel(0, x0+x, y0+y, c&15)
		}
	}
	return nil
}

// LoadCEL decodes a KiSS cel. New style cels are placed at their offset,
// the area above and left of it is left at color 0.
func LoadCEL(src *codec.Source, p *picture.Picture) error {
	size := src.Size()
	r, err := src.Rewind()
	if err != nil {
		return err
	}
	hdr := r.Bytes(oldCelHeader)
	if err := r.Err(); err != nil {
		return err
	}
	if isOldCel(hdr, size) {
		w, h := int(binio.LE16(hdr, 0)), int(binio.LE16(hdr, 2))
		if err := p.PreLoad(w, h, 1, 4, picture.RatioSimple); err != nil {
			return err
		}
		p.Screen.X, p.Screen.Y = w, h
		return readNibbles(r, p, w, h, 0, 0)
	}

	hd, r, err := readHeader(src, KindCel)
	if err != nil {
		return err
	}
	w, h := int(hd.Width)+int(hd.XOffset), int(hd.Height)+int(hd.YOffset)
	if hd.Bits != 4 && hd.Bits != 8 {
		return errDepth
	}
	if err := p.PreLoad(w, h, 1, int(hd.Bits), picture.RatioSimple); err != nil {
		return err
	}
	p.Screen.X, p.Screen.Y = w, h
	x0, y0 := int(hd.XOffset), int(hd.YOffset)
	if hd.Bits == 4 {
		return readNibbles(r, p, int(hd.Width), int(hd.Height), x0, y0)
	}
	row := make([]byte, hd.Width)
	for y := 0; y < int(hd.Height); y++ {
		if err := r.Full(row); err != nil {
			return err
		}
		copy(p.Layers[0][(y0+y)*w+x0:], row)
	}
	return nil
}

// offsets returns the first row and the first column holding a non-zero
// pixel, or 0, 0 for a blank picture.
func offsets(pixels []byte, width, height int) (int, int) {
	top := -1
	for i, c := range pixels {
		if c != 0 {
			top = i / width
			break
		}
	}
	if top < 0 {
		return 0, 0
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if pixels[y*width+x] != 0 {
				return x, top
			}
		}
	}
	return 0, top
}

// SaveCEL writes a 16 color picture as an old style cel and anything else
// as an 8-bit new style cel cropped to its non-zero area.
func SaveCEL(dst *codec.Sink, p *picture.Picture) error {
	if p.Width > 0xffff || p.Height > 0xffff {
		return errTooLarge
	}
	m, err := p.Flatten()
	if err != nil {
		return err
	}
	pix := m.Pix
	w := binio.NewWriter(dst)

	if !usesHighColors(pix) {
		w.WordLE(uint16(p.Width))
		w.WordLE(uint16(p.Height))
		row := make([]byte, (p.Width+1)>>1)
		for y := 0; y < p.Height; y++ {
			for i := range row {
				row[i] = 0
			}
			for x := 0; x < p.Width; x++ {
				c := pix[y*p.Width+x] & 15
				if x&1 == 0 {
					c <<= 4
				}
				row[x>>1] |= c
			}
			w.Bytes(row)
		}
		return w.Err()
	}

	x0, y0 := offsets(pix, p.Width, p.Height)
	h := Header{
		Kind:    KindCel,
		Bits:    8,
		Width:   uint16(p.Width - x0),
		Height:  uint16(p.Height - y0),
		XOffset: uint16(x0),
		YOffset: uint16(y0),
	}
	h.write(w)
	for y := y0; y < p.Height; y++ {
		w.Bytes(pix[y*p.Width+x0 : (y+1)*p.Width])
	}
	return w.Err()
}
