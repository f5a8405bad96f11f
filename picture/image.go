package picture

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/ericpauley/go-quantize/quantize"
	xdraw "golang.org/x/image/draw"
)

var errNoLayer = errors.New("picture: no such layer")

// Paletted returns layer as an image.Paletted sharing the picture's pixels.
func (p *Picture) Paletted(layer int) (*image.Paletted, error) {
	if layer < 0 || layer >= len(p.Layers) {
		return nil, errNoLayer
	}
	cp := p.Palette.Color(palette.Size)
	if p.Transparent >= 0 && p.Transparent < len(cp) {
		cp[p.Transparent] = color.RGBA{}
	}
	return &image.Paletted{
		Pix:     p.Layers[layer],
		Stride:  p.Width,
		Rect:    image.Rect(0, 0, p.Width, p.Height),
		Palette: cp,
	}, nil
}

// Flatten composites every layer of a layered picture, later layers on top,
// treating the transparent index as see-through. For other modes it returns
// layer 0 for animations, and the last layer otherwise.
func (p *Picture) Flatten() (*image.Paletted, error) {
	switch p.Mode {
	case ModeAnimation:
		return p.Paletted(0)
	case ModeHGR, ModeDHGR:
		return p.Paletted(len(p.Layers) - 1)
	}
	if len(p.Layers) == 1 || p.Transparent < 0 {
		return p.Paletted(len(p.Layers) - 1)
	}
	out := make([]byte, p.Width*p.Height)
	copy(out, p.Layers[0])
	for _, l := range p.Layers[1:] {
		for i, c := range l {
			if int(c) != p.Transparent {
				out[i] = c
			}
		}
	}
	flat := *p
	flat.Layers = [][]byte{out}
	flat.Transparent = NoTransparency
	return flat.Paletted(0)
}

// FromImage converts m into a single layer picture. A paletted image keeps
// its palette and indices; anything else is reduced to at most colors
// entries with a median cut quantizer.
func FromImage(m image.Image, colors int) *Picture {
	if colors <= 0 || colors > palette.Size {
		colors = palette.Size
	}
	b := m.Bounds()

	pm, _ := m.(*image.Paletted)
	if pm == nil || len(pm.Palette) > colors {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	p := New(b.Dx(), b.Dy())
	if p == nil {
		return nil
	}
	p.Palette = palette.FromColor(pm.Palette)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.Layers[0][y*p.Width+x] = pm.ColorIndexAt(b.Min.X+x, b.Min.Y+y)
		}
	}
	return p
}

// Aspect returns m scaled so that pixels display square according to r:
// wide pixels double the width, tall pixels double the height and double
// pixels double both.
func Aspect(m image.Image, r Ratio) image.Image {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	switch r {
	case RatioWide:
		w *= 2
	case RatioTall:
		h *= 2
	case RatioDouble:
		w, h = w*2, h*2
	default:
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), m, b, xdraw.Src, nil)
	return dst
}
