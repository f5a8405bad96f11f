package c64

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/rle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func source(b []byte) *codec.Source {
	return codec.NewSource(bytes.NewReader(b))
}

func saveBytes(t *testing.T, p *picture.Picture, o Options) []byte {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, SaveWith(codec.NewSink(&b), p, o))
	return b.Bytes()
}

func load(t *testing.T, b []byte) *picture.Picture {
	t.Helper()
	src := source(b)
	require.True(t, Detect(src))
	var p picture.Picture
	require.NoError(t, Load(src, &p))
	return &p
}

// multiPicture uses background 0 and three colors per cell.
func multiPicture() *picture.Picture {
	p := picture.New(160, 200)
	for y := 0; y < 200; y++ {
		for x := 0; x < 160; x++ {
			cell := (y/8)*40 + x/4
			var c byte
			switch (x + y) % 4 {
			case 1:
				c = byte(1 + cell%5)
			case 2:
				c = byte(6 + cell%4)
			case 3:
				c = byte(10 + cell%6)
			}
			p.SetPixel(0, x, y, c)
		}
	}
	return p
}

func hiresPicture() *picture.Picture {
	p := picture.New(320, 200)
	for y := 0; y < 200; y++ {
		for x := 0; x < 320; x++ {
			cell := (y/8)*40 + x/8
			if (x^y)&1 == 0 {
				p.SetPixel(0, x, y, byte(cell%16))
			} else {
				p.SetPixel(0, x, y, byte((cell+3)%16))
			}
		}
	}
	return p
}

func TestDetectBoundaries(t *testing.T) {
	for _, data := range [][]byte{{}, {0}, make([]byte, 15), make([]byte, 12345)} {
		assert.False(t, Detect(source(data)), "%d bytes", len(data))
	}
	assert.True(t, Detect(source(make([]byte, 8000))))
	assert.False(t, Detect(source(append([]byte{0x00, 0x10}, make([]byte, 10240)...))))
	assert.True(t, Detect(source(append([]byte{0x00, 0xa0}, make([]byte, 10240)...))))
}

func TestMultiRoundTrip(t *testing.T) {
	p := multiPicture()
	b := saveBytes(t, p, Options{Format: FormatMulti, LoadAddress: 0x6000})
	require.Len(t, b, 10003)

	q := load(t, b)
	assert.Equal(t, 160, q.Width)
	assert.Equal(t, picture.RatioWide, q.Ratio)
	assert.Equal(t, "Multicolor, load at $6000", q.Comment)
	assert.Equal(t, p.Layers[0], q.Layers[0])
	assert.Equal(t, palette.C64[5], q.Palette[5])
}

func TestHiresRoundTrip(t *testing.T) {
	p := hiresPicture()
	b := saveBytes(t, p, Options{Format: FormatHires})
	require.Len(t, b, 9000)

	q := load(t, b)
	assert.Equal(t, "Hires, no addr", q.Comment)
	assert.Equal(t, p.Layers[0], q.Layers[0])
	assert.Equal(t, TransparentColor, q.Transparent)
}

func TestSaveHiresCells(t *testing.T) {
	p := picture.New(320, 200)
	b := saveBytes(t, p, Options{Format: FormatHires, What: WhatScreen})
	require.Len(t, b, 1000)
	// A black cell gets white as foreground
	assert.Equal(t, byte(0x10), b[0])

	p.SetPixel(0, 1, 0, 7)
	p.SetPixel(0, 2, 0, 3)
	var out bytes.Buffer
	err := SaveWith(codec.NewSink(&out), p, Options{Format: FormatHires})
	assert.ErrorIs(t, err, codec.ErrConstraint)

	p.SetPixel(0, 2, 0, 16)
	err = SaveWith(codec.NewSink(&out), p, Options{Format: FormatHires})
	assert.ErrorIs(t, err, codec.ErrConstraint)
}

func TestSaveBitmapOnly(t *testing.T) {
	b := saveBytes(t, hiresPicture(), Options{Format: FormatBitmap, What: WhatAll, LoadAddress: 0x2000})
	require.Len(t, b, 8002)
	q := load(t, b)
	assert.Equal(t, "Bitmap, load at $2000", q.Comment)
}

func TestSaveMultiConstraints(t *testing.T) {
	p := picture.New(160, 200)
	for x := 0; x < 4; x++ {
		p.SetPixel(0, x, 0, byte(x+1))
	}
	p.SetPixel(0, 0, 1, 5)
	var out bytes.Buffer
	assert.ErrorIs(t, SaveWith(codec.NewSink(&out), p, Options{Format: FormatMulti}), codec.ErrConstraint)

	assert.ErrorIs(t, SaveWith(codec.NewSink(&out), picture.New(100, 200), Options{}), codec.ErrConstraint)
}

func TestDefaultOptions(t *testing.T) {
	assert.Equal(t, FormatHires, DefaultOptions("a.koa", picture.New(320, 200)).Format)
	assert.Equal(t, FormatMulti, DefaultOptions("a.koa", picture.New(160, 200)).Format)
	assert.Equal(t, FormatFLI, DefaultOptions("dir/A.FLI", picture.New(160, 200)).Format)
}

func TestFLILayeredRoundTrip(t *testing.T) {
	var p picture.Picture
	require.NoError(t, p.PreLoad(160, 200, 4, 4, picture.RatioWide))
	for y := 0; y < 200; y++ {
		for x := 0; x < 160; x++ {
			bg := byte(y % 16)
			cram := byte(((y/8)*40 + x/4) % 16)
			p.SetPixel(0, x, y, bg)
			p.SetPixel(1, x, y, cram)
			c := [4]byte{bg, byte((y + 3) % 16), byte((y + 7) % 16), cram}
			p.SetPixel(2, x, y, c[(x*3+y)%4])
			p.SetPixel(3, x, y, TransparentColor)
		}
	}
	b := saveBytes(t, &p, Options{Format: FormatFLI})
	require.Len(t, b, 17472)

	q := load(t, b)
	require.Len(t, q.Layers, 4)
	for l := 0; l < 4; l++ {
		assert.Equal(t, p.Layers[l], q.Layers[l], "layer %d", l)
	}
	assert.Equal(t, TransparentColor, q.Transparent)
	assert.Equal(t, "FLI, no addr", q.Comment)
}

func TestFLISingleLayer(t *testing.T) {
	p := multiPicture()
	b := saveBytes(t, p, Options{Format: FormatFLI, LoadAddress: 0x3b00})
	require.Len(t, b, 17474)
	q := load(t, b)
	assert.Equal(t, p.Layers[0], q.Layers[2])
}

func TestAmicaUnpack(t *testing.T) {
	data := make([]byte, 10257)
	for i := 8000; i < 9000; i++ {
		data[i] = 0x21
	}
	data[0] = 0xc2
	file := append([]byte{0x00, 0x40}, rle.PackEscape(data, amicaCode, rle.CountValue)...)
	file = append(file, amicaCode, 0)

	q := load(t, file)
	assert.Equal(t, "Multicolor, load at $4000", q.Comment)
	// first pixel group 0xc2 = 11 00 00 10
	assert.Equal(t, []byte{0, 0, 0, 1}, q.Layers[0][:4])
}

func TestDoodleUnpack(t *testing.T) {
	data := make([]byte, 10001)
	for i := 8000; i < 9000; i++ {
		data[i] = 0x12
	}
	data[10000] = 3
	file := append([]byte{0x00, 0x60}, rle.PackEscape(data, doodleCode, rle.ValueCount)...)
	require.Less(t, len(file), 8000)

	q := load(t, file)
	assert.Equal(t, "Multicolor, no addr", q.Comment)
	assert.Equal(t, byte(3), q.Layers[0][0])
}

func TestDrazUnpack(t *testing.T) {
	data := make([]byte, 10049)
	data[10048] = 9
	hdr := append([]byte{0x00, 0x58}, []byte("DRAZPAINT 2.0")...)
	hdr = append(hdr, 0xc3)
	require.Len(t, hdr, 16)
	file := append(hdr, rle.PackEscape(data, 0xc3, rle.CountValue)...)

	q := load(t, file)
	assert.Equal(t, "Multicolor, load at $5800", q.Comment)
	assert.Equal(t, byte(9), q.Layers[0][0])
}

func TestRegionView(t *testing.T) {
	_, err := region{off: 8, n: 4}.view(make([]byte, 10))
	assert.ErrorIs(t, err, codec.ErrFormat)
	b, err := region{off: 2, n: 4}.view(make([]byte, 10))
	require.NoError(t, err)
	assert.Len(t, b, 4)
}

func TestLayoutsFitTheirSize(t *testing.T) {
	for _, l := range layouts {
		_, err := l.resolve(make([]byte, l.size))
		assert.NoError(t, err, "%s (%d)", l.name, l.size)
	}
}

func TestPicassoBackground(t *testing.T) {
	buf := make([]byte, 10050)
	buf[0], buf[1] = 0x00, 0x18
	buf[2049] = 5
	buf[1025] = 9

	q := load(t, buf)
	assert.Equal(t, "Multicolor, load at $1800", q.Comment)
	assert.Equal(t, byte(5), q.Pixel(0, 0, 0))
	assert.Equal(t, byte(5), q.Pixel(0, 159, 199))
}

func TestLayoutOffsets(t *testing.T) {
	const none = -1
	tests := []struct {
		size                              int
		addr                              uint16
		bitmap, screen, color, background int
	}{
		{8000, 0, 0, none, none, none},
		{8002, 0x2000, 2, none, none, none},
		{9000, 0, 0, 8000, none, none},
		{9002, 0x2000, 2, 8002, none, none},
		{9003, 0x2000, 2, 8002, none, none},
		{9009, 0x2000, 2, 8002, none, none},
		{9024, 0, 1024, 0, none, none},
		{9216, 0, 1024, 0, none, none},
		{9218, 0x5c00, 1026, 2, none, none},
		{9332, 0x3f8e, 116, 8308, none, 8116},
		{10001, 0, 0, 8000, 9000, 10000},
		{10070, 0, 0, 8000, 9000, 10000},
		{10003, 0x6000, 2, 8002, 9002, 10002},
		{10004, 0x6000, 2, 8002, 9002, 10002},
		{10006, 0x6000, 2, 8002, 9002, 10002},
		{10018, 0x2000, 2, 8002, 9018, 9003},
		{10022, 0x1800, 2022, 22, 1022, none},
		{10049, 0x5800, 2048, 1024, 0, 10048},
		{10050, 0x1800, 2050, 1026, 2, 2049},
		{10218, 0x3c00, 1026, 9218, 2, 9217},
		{10219, 0x7800, 1026, 2, 9218, 1010},
		{10242, 0x4000, 2, 8194, 9218, 10241},
		{10242, 0xa000, 2, 8194, 9218, 8066},
		{10242, 0x5c00, 1026, 2, 9218, 0},
		{10257, 0x4000, 0, 8000, 9000, 10000},
		{10277, 0x7eef, 275, 8275, 9275, 10275},
		{10608, 0x0801, 569, 8571, 9571, 8570},
		{17472, 0, 9472, 1280, 256, 0},
		{17474, 0x3b00, 9474, 1282, 258, 2},
		{17218, 0x3c00, 9218, 1026, 2, none},
		{17409, 0x3c00, 9218, 1026, 2, none},
		{17410, 0x3c00, 9218, 1026, 2, none},
		{17666, 0x3b00, 9474, 1282, 258, 2},
		{17665, 0x3b00, 9474, 1282, 258, 8},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%04x", tt.size, tt.addr), func(t *testing.T) {
			l := findLayout(tt.size, tt.addr)
			require.NotNil(t, l)

			// Each offset holds a distinct byte
			buf := make([]byte, tt.size)
			for i := range buf {
				buf[i] = byte(i ^ i>>8)
			}
			buf[0], buf[1] = byte(tt.addr), byte(tt.addr>>8)

			v, err := l.resolve(buf)
			require.NoError(t, err)

			screenLen, backgroundLen := screenSize, 1
			if l.format == FormatFLI {
				screenLen, backgroundLen = fliScreenSize, fliLines
			}
			slice := func(off, n int) []byte {
				if off == none {
					return nil
				}
				return buf[off : off+n]
			}
			assert.Equal(t, slice(tt.bitmap, bitmapSize), v.bitmap, "bitmap")
			assert.Equal(t, slice(tt.screen, screenLen), v.screen, "screen")
			assert.Equal(t, slice(tt.background, backgroundLen), v.background, "background")
			if l.colorFill.present() {
				assert.Equal(t, bytes.Repeat(buf[8119:8120], screenSize), v.color, "color")
			} else {
				assert.Equal(t, slice(tt.color, screenSize), v.color, "color")
			}
		})
	}
}
