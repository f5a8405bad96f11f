package picture

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreLoad(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		layers        int
		err           error
	}{
		{"ok", 320, 200, 4, nil},
		{"zero width", 0, 200, 1, codec.ErrFormat},
		{"zero height", 10, 0, 1, codec.ErrFormat},
		{"too large", 1 << 14, 1 << 14, 2, codec.ErrResource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Picture
			err := p.PreLoad(tt.width, tt.height, tt.layers, 8, RatioWide)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, p.Layers)
				return
			}
			require.NoError(t, err)
			assert.Len(t, p.Layers, tt.layers)
			for _, l := range p.Layers {
				assert.Len(t, l, tt.width*tt.height)
			}
			assert.Equal(t, RatioWide, p.Ratio)
		})
	}
}

func TestPixelAccessIsClipped(t *testing.T) {
	p := New(4, 3)
	require.NotNil(t, p)
	p.SetPixel(0, 3, 2, 7)
	p.SetPixel(0, 4, 0, 9)
	p.SetPixel(0, -1, 0, 9)
	p.SetPixel(1, 0, 0, 9)
	assert.Equal(t, byte(7), p.Pixel(0, 3, 2))
	assert.Equal(t, byte(0), p.Pixel(0, 4, 0))
	assert.Equal(t, byte(0), p.Pixel(5, 0, 0))
	assert.Equal(t, 7, p.MaxIndex(0))
}

func TestAddLayerCopiesPrevious(t *testing.T) {
	p := New(2, 2)
	p.SetPixel(0, 1, 1, 5)
	l, err := p.AddLayer()
	require.NoError(t, err)
	assert.Equal(t, 1, l)
	assert.Equal(t, byte(5), p.Pixel(1, 1, 1))
	p.SetPixel(1, 0, 0, 3)
	assert.Equal(t, byte(0), p.Pixel(0, 0, 0))

	p.AddFrame(l, 40*time.Millisecond)
	assert.Equal(t, []Frame{{Layer: 1, Duration: 40 * time.Millisecond}}, p.Frames)
}

func TestSetComment(t *testing.T) {
	p := New(1, 1)
	p.SetComment("short")
	assert.Equal(t, "short", p.Comment)
	p.SetComment("0123456789012345678901234567890é")
	assert.Equal(t, "0123456789012345678901234567890", p.Comment)
}

func TestText(t *testing.T) {
	assert.Equal(t, "café", DecodeText([]byte{'c', 'a', 'f', 0xe9, 0, 'x'}))
	assert.Equal(t, []byte{'c', 'a', 'f', 0xe9, '?'}, EncodeText("café€"))
}

func TestPalettedSharesPixels(t *testing.T) {
	p := New(3, 2)
	p.Palette[1] = palette.RGB{R: 255}
	p.SetPixel(0, 2, 1, 1)
	m, err := p.Paletted(0)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, m.At(2, 1))
	assert.Equal(t, uint8(1), m.ColorIndexAt(2, 1))

	_, err = p.Paletted(3)
	assert.Error(t, err)
}

func TestFlattenLayers(t *testing.T) {
	var p Picture
	require.NoError(t, p.PreLoad(2, 1, 2, 4, RatioSimple))
	p.Transparent = 16
	p.Layers[0] = []byte{1, 2}
	p.Layers[1] = []byte{16, 3}
	m, err := p.Flatten()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 3}, m.Pix)
}

func TestFromImageKeepsPalettedIndices(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	src.SetColorIndex(1, 0, 1)
	p := FromImage(src, 16)
	require.NotNil(t, p)
	assert.Equal(t, []byte{0, 1, 0, 0}, p.Layers[0])
	assert.Equal(t, palette.RGB{R: 255, G: 255, B: 255}, p.Palette[1])
}

func TestFromImageQuantizes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.RGBA{uint8(x * 32), uint8(y * 32), 0, 255})
		}
	}
	p := FromImage(src, 4)
	require.NotNil(t, p)
	assert.LessOrEqual(t, p.MaxIndex(0), 3)
}

func TestAspect(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 4, 3))
	assert.Equal(t, image.Rect(0, 0, 8, 3), Aspect(m, RatioWide).Bounds())
	assert.Equal(t, image.Rect(0, 0, 4, 6), Aspect(m, RatioTall).Bounds())
	assert.Equal(t, image.Rect(0, 0, 8, 6), Aspect(m, RatioDouble).Bounds())
	assert.Same(t, m, Aspect(m, RatioSimple))
}
