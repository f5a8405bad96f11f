package hgr

import (
	"bytes"
	"testing"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, b []byte) *picture.Picture {
	t.Helper()
	src := codec.NewSource(bytes.NewReader(b))
	require.True(t, Detect(src))
	var p picture.Picture
	require.NoError(t, Load(src, &p))
	return &p
}

func save(t *testing.T, p *picture.Picture) []byte {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, Save(codec.NewSink(&b), p))
	return b.Bytes()
}

func TestDetect(t *testing.T) {
	for _, n := range []int{0, 1, PageSize - 1, PageSize + 1, 3 * PageSize} {
		assert.False(t, Detect(codec.NewSource(bytes.NewReader(make([]byte, n)))), "size %d", n)
	}
	assert.True(t, Detect(codec.NewSource(bytes.NewReader(make([]byte, PageSize)))))
	assert.True(t, Detect(codec.NewSource(bytes.NewReader(make([]byte, 2*PageSize)))))
}

func TestHGRColors(t *testing.T) {
	tests := []struct {
		name  string
		b     byte
		color []byte
		mono  []byte
	}{
		{"isolated", 0x01, []byte{2, 0, 0}, []byte{3, 0, 0}},
		{"white pair", 0x03, []byte{3, 3, 0}, []byte{3, 3, 0}},
		{"101", 0x05, []byte{2, 2, 2, 0}, []byte{3, 0, 3, 0}},
		{"odd column", 0x02, []byte{0, 1, 0}, []byte{0, 3, 0}},
		{"high palette", 0x81, []byte{6, 4}, []byte{7, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := make([]byte, PageSize)
			page[raster.HGROffset(1)] = tt.b
			p := load(t, page)
			assert.Equal(t, Width, p.Width)
			assert.Equal(t, picture.ModeHGR, p.Mode)
			require.Len(t, p.Layers, 2)
			row := p.Layers[LayerColor][Width : Width+len(tt.color)]
			assert.Equal(t, tt.color, row)
			assert.Equal(t, tt.mono, p.Layers[LayerMono][Width:Width+len(tt.mono)])
		})
	}
}

func TestDHGRMixedMode(t *testing.T) {
	page := make([]byte, 2*PageSize)
	page[0] = 0x0f        // aux, high bit clear: black and white
	page[PageSize] = 0x8f // main, high bit set: color
	p := load(t, page)

	assert.Equal(t, WidthDHGR, p.Width)
	assert.Equal(t, picture.ModeDHGR, p.Mode)
	assert.Equal(t, picture.RatioTall, p.Ratio)
	assert.Equal(t, []byte{31, 31, 31, 31, 16, 16, 16}, p.Layers[LayerColor][:7])
	assert.Equal(t, []byte{31, 31, 31, 31, 16, 16, 16}, p.Layers[LayerMono][:7])
	// x=8..10 are set and x=11 is clear in the main byte
	assert.Equal(t, []byte{14, 14, 14, 14}, p.Layers[LayerColor][8:12])
	assert.Equal(t, palette.DHGR[15], p.Palette[15])
	assert.Equal(t, palette.RGB{R: 255, G: 255, B: 255}, p.Palette[31])
}

func monoPicture(width int, one, high, low byte) *picture.Picture {
	p := picture.New(width, Height)
	for y := 0; y < Height; y++ {
		for x := 0; x < width; x++ {
			pal := low
			if (x/7+y)%3 == 0 {
				pal = high
			}
			var bit byte
			if (x*x+y)%5 < 2 {
				bit = one
			}
			p.SetPixel(0, x, y, bit+pal)
		}
	}
	return p
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   *picture.Picture
		size int
	}{
		{"hgr", monoPicture(Width, 3, 4, 0), PageSize},
		{"dhgr", monoPicture(WidthDHGR, 15, 0, 16), 2 * PageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := save(t, tt.in)
			assert.Len(t, b, tt.size)
			out := load(t, b)
			assert.Equal(t, tt.in.Layers[0], out.Layers[LayerMono])
		})
	}
}

func TestSaveSize(t *testing.T) {
	var b bytes.Buffer
	assert.ErrorIs(t, Save(codec.NewSink(&b), picture.New(320, 200)), codec.ErrConstraint)
	assert.Zero(t, b.Len())
}
