/*
Package grb loads HP-48 calculator graphic objects (GROB) saved to disk with
the "HPHP48-R" binary header.

After the 8 byte magic come four 20-bit values addressed in nibbles, least
significant nibble first: the object prologue, its size in nibbles, the
height and the width. Grayscale grobs stack their bit-planes vertically, so
the plane count is guessed from the height.
*/
package grb

import (
	"bytes"
	"fmt"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/raster"
)

// Magic starts every file.
const Magic = "HPHP48-R"

// Prologue identifies a graphic object.
const Prologue = 0x02b1e

const headerSize = len(Magic) + 10

var errPlanes = fmt.Errorf("grb: %w: bit-planes do not fit", codec.ErrFormat)

// Header is the decoded object header.
type Header struct {
	Prologue uint32
	// Size of the object in nibbles, from the size field itself.
	Size          uint32
	Width, Height int
}

// address reads a 20-bit value starting at nibble offset.
func address(b []byte, offset int) uint32 {
	var v uint32
	for i := 4; i >= 0; i-- {
		n := b[(offset+i)>>1]
		if (offset+i)&1 != 0 {
			n >>= 4
		}
		v = v<<4 | uint32(n&15)
	}
	return v
}

func parseHeader(b []byte) (Header, bool) {
	if len(b) < headerSize || !bytes.HasPrefix(b, []byte(Magic)) {
		return Header{}, false
	}
	b = b[len(Magic):]
	return Header{
		Prologue: address(b, 0),
		Size:     address(b, 5),
		Height:   int(address(b, 10)),
		Width:    int(address(b, 15)),
	}, true
}

// Depth returns the number of bit-planes of a grob of the given height.
func Depth(height int) int {
	switch {
	case height >= 256:
		return 4
	case height >= 192:
		return 3
	case height >= 128:
		return 2
	}
	return 1
}

func rowSize(width int) int {
	return (width + 7) >> 3
}

// Detect reports whether src holds a grob whose pixel data fits the file.
func Detect(src *codec.Source) bool {
	h, ok := parseHeader(src.Peek(headerSize))
	if !ok || h.Prologue != Prologue {
		return false
	}
	size := src.Size()
	if size-int64(len(Magic)) < int64(h.Size+5)/2 {
		return false
	}
	return size >= int64(headerSize+rowSize(h.Width)*h.Height)
}

// Load decodes src into p. A set bit is a dark pixel on the calculator
// display, so pixel values are inverted and color 0 is the darkest.
func Load(src *codec.Source, p *picture.Picture) error {
	data, err := src.ReadAll()
	if err != nil {
		return err
	}
	h, ok := parseHeader(data)
	if !ok {
		return codec.ErrTruncated
	}
	depth := Depth(h.Height)
	height := h.Height / depth
	src.Logf("grb: prologue %05X size=%d %dx%d, %d planes", h.Prologue, h.Size, h.Width, h.Height, depth)

	if err := p.PreLoad(h.Width, height, 1, depth, picture.RatioSimple); err != nil {
		return err
	}
	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	max := 1<<uint(depth) - 1
	for i := 0; i <= max; i++ {
		v := uint8(i * 255 / max)
		p.Palette[i] = palette.RGB{R: v, G: v, B: 127}
	}

	stride := rowSize(h.Width)
	planeSize := stride * height
	body := data[headerSize:]
	if len(body) < planeSize*depth {
		return errPlanes
	}
	planes := make([][]byte, depth)
	for i := range planes {
		planes[i] = body[i*planeSize : (i+1)*planeSize]
	}
	for y := 0; y < height; y++ {
		for x := 0; x < h.Width; x++ {
			p.SetPixel(0, x, y, raster.Planes(planes, y*stride, x)^byte(max))
		}
	}
	return nil
}
