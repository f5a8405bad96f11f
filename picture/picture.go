/*
Package picture implements the in-memory picture exchanged between callers
and format codecs.

A Picture is filled in two steps. A loader first calls PreLoad once the
dimensions are known, which sizes every layer; only then may it write
pixels. A loader that fails leaves the pixel data undefined and callers must
not use it.
*/
package picture

import (
	"fmt"
	"image"
	"time"
	"unicode/utf8"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
)

// CommentSize is the longest comment a loader keeps.
const CommentSize = 32

// MaxPixels bounds width*height*layers accepted by PreLoad.
var MaxPixels = 64 << 20

var (
	errNoSize   = fmt.Errorf("picture: %w: zero width or height", codec.ErrFormat)
	errTooLarge = fmt.Errorf("picture: %w: picture too large", codec.ErrResource)
)

// Ratio is a display aspect hint. It does not affect decoding.
type Ratio int

// Pixel ratios.
const (
	RatioSimple Ratio = iota
	RatioWide
	RatioTall
	RatioDouble
)

func (r Ratio) String() string {
	switch r {
	case RatioWide:
		return "wide"
	case RatioTall:
		return "tall"
	case RatioDouble:
		return "double"
	default:
		return "simple"
	}
}

// Mode describes how the layers of a picture relate to each other.
type Mode int

// Layer modes.
const (
	// ModeLayered layers are stacked, index 0 at the back.
	ModeLayered Mode = iota
	// ModeAnimation layers are successive frames.
	ModeAnimation
	// ModeHGR layers are the monochrome and color views of an Apple II
	// hi-res screen.
	ModeHGR
	// ModeDHGR is ModeHGR for double hi-res.
	ModeDHGR
)

func (m Mode) String() string {
	switch m {
	case ModeAnimation:
		return "animation"
	case ModeHGR:
		return "hgr"
	case ModeDHGR:
		return "dhgr"
	default:
		return "layered"
	}
}

// NoTransparency is the Transparent value of a picture without one.
const NoTransparency = -1

// Frame is one animation frame.
type Frame struct {
	Layer    int
	Duration time.Duration
}

// Picture is a paletted, possibly multi-layer, image.
type Picture struct {
	Width, Height int
	Palette       palette.Palette
	Ratio         Ratio
	Mode          Mode
	// Depth is the number of significant bits per pixel announced by the
	// loader, or 0 when unknown.
	Depth int
	// Layers all hold Width*Height bytes, row-major.
	Layers [][]byte
	// Transparent is a palette index or NoTransparency.
	Transparent int
	Comment     string
	Frames      []Frame

	// Screen is the resolution the picture was drawn on, when the file
	// records it.
	Screen image.Point
	// BackColor is the drawing background color, when the file records it.
	BackColor uint8
}

// New returns a single layer picture of the given size.
func New(width, height int) *Picture {
	p := &Picture{Transparent: NoTransparency}
	if err := p.PreLoad(width, height, 1, 8, RatioSimple); err != nil {
		return nil
	}
	return p
}

// PreLoad announces the final dimensions and allocates the layers. It must
// be called before any pixel is written.
func (p *Picture) PreLoad(width, height, layers, depth int, ratio Ratio) error {
	if width <= 0 || height <= 0 {
		return errNoSize
	}
	if layers < 1 {
		layers = 1
	}
	if width*height > MaxPixels/layers {
		return errTooLarge
	}
	p.Width, p.Height = width, height
	p.Depth = depth
	p.Ratio = ratio
	p.Layers = make([][]byte, layers)
	for i := range p.Layers {
		p.Layers[i] = make([]byte, width*height)
	}
	return nil
}

// Reset clears everything a loader may set, keeping the palette unless
// clearPalette is true.
func (p *Picture) Reset(clearPalette bool) {
	pal := p.Palette
	*p = Picture{Transparent: NoTransparency}
	if !clearPalette {
		p.Palette = pal
	}
}

// In reports whether (x, y) lies inside the picture.
func (p *Picture) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < p.Width && y < p.Height
}

// Pixel returns the pixel at (x, y) in the given layer, or 0 outside.
func (p *Picture) Pixel(layer, x, y int) byte {
	if !p.In(x, y) || layer < 0 || layer >= len(p.Layers) {
		return 0
	}
	return p.Layers[layer][y*p.Width+x]
}

// SetPixel writes a pixel. Writes outside the picture are dropped.
func (p *Picture) SetPixel(layer, x, y int, c byte) {
	if !p.In(x, y) || layer < 0 || layer >= len(p.Layers) {
		return
	}
	p.Layers[layer][y*p.Width+x] = c
}

// AddLayer appends a layer holding a copy of the last one and returns its
// index. Animation loaders use it so each frame starts from the previous
// one.
func (p *Picture) AddLayer() (int, error) {
	if (len(p.Layers)+1)*p.Width*p.Height > MaxPixels {
		return 0, errTooLarge
	}
	l := make([]byte, p.Width*p.Height)
	if n := len(p.Layers); n > 0 {
		copy(l, p.Layers[n-1])
	}
	p.Layers = append(p.Layers, l)
	return len(p.Layers) - 1, nil
}

// AddFrame records the duration of the frame stored in layer.
func (p *Picture) AddFrame(layer int, d time.Duration) {
	p.Frames = append(p.Frames, Frame{Layer: layer, Duration: d})
}

// SetComment stores c truncated to CommentSize bytes.
func (p *Picture) SetComment(c string) {
	if len(c) > CommentSize {
		c = c[:CommentSize]
		for !utf8.ValidString(c) {
			c = c[:len(c)-1]
		}
	}
	p.Comment = c
}

// Histogram counts how often each index is used in layer.
func (p *Picture) Histogram(layer int) *[256]int {
	var h [256]int
	if layer >= 0 && layer < len(p.Layers) {
		for _, c := range p.Layers[layer] {
			h[c]++
		}
	}
	return &h
}

// MaxIndex returns the highest index used in layer.
func (p *Picture) MaxIndex(layer int) int {
	h := p.Histogram(layer)
	for i := 255; i > 0; i-- {
		if h[i] > 0 {
			return i
		}
	}
	return 0
}
