package grb

import (
	"bytes"
	"testing"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putAddress(b []byte, offset int, v uint32) {
	for i := 0; i < 5; i++ {
		n := byte(v>>(4*uint(i))) & 15
		j := (offset + i) >> 1
		if (offset+i)&1 != 0 {
			b[j] |= n << 4
		} else {
			b[j] |= n
		}
	}
}

func makeGROB(width, height int, planes ...[]byte) []byte {
	hdr := make([]byte, 10)
	body := bytes.Join(planes, nil)
	putAddress(hdr, 0, Prologue)
	putAddress(hdr, 5, uint32(15+2*len(body)))
	putAddress(hdr, 10, uint32(height))
	putAddress(hdr, 15, uint32(width))
	return append(append([]byte(Magic), hdr...), body...)
}

func TestAddress(t *testing.T) {
	b := []byte{0x1e, 0x2b, 0x50, 0x34, 0x12}
	assert.Equal(t, uint32(Prologue), address(b, 0))
	assert.Equal(t, uint32(0x12345), address(b, 5))
}

func TestDepth(t *testing.T) {
	for height, depth := range map[int]int{64: 1, 127: 1, 128: 2, 191: 2, 192: 3, 256: 4, 512: 4} {
		assert.Equal(t, depth, Depth(height), "height %d", height)
	}
}

func TestDetect(t *testing.T) {
	good := makeGROB(10, 2, []byte{0x01, 0x02, 0x80, 0x00})
	wrongPrologue := append([]byte(nil), good...)
	wrongPrologue[8] = 0x1f

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, false},
		{"one byte", []byte{'H'}, false},
		{"grob", good, true},
		{"short pixels", good[:len(good)-1], false},
		{"prologue", wrongPrologue, false},
		{"magic", append([]byte("HPHP49-R"), good[8:]...), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(codec.NewSource(bytes.NewReader(tt.data))))
		})
	}
}

func TestLoadMono(t *testing.T) {
	src := codec.NewSource(bytes.NewReader(makeGROB(10, 2, []byte{0x01, 0x02, 0x80, 0x00})))
	require.True(t, Detect(src))
	var p picture.Picture
	require.NoError(t, Load(src, &p))

	assert.Equal(t, 10, p.Width)
	assert.Equal(t, 2, p.Height)
	assert.Equal(t, 1, p.Depth)
	assert.Equal(t, []byte{
		0, 1, 1, 1, 1, 1, 1, 1, 1, 0,
		1, 1, 1, 1, 1, 1, 1, 0, 1, 1,
	}, p.Layers[0])
	assert.Equal(t, palette.RGB{B: 127}, p.Palette[0])
	assert.Equal(t, palette.RGB{R: 255, G: 255, B: 127}, p.Palette[1])
}

func TestLoadGrayscale(t *testing.T) {
	// 128 lines are two planes of 64 lines
	lo, hi := make([]byte, 64), make([]byte, 64)
	lo[0], hi[0] = 0x05, 0x03
	lo[63], hi[63] = 0x80, 0x80
	src := codec.NewSource(bytes.NewReader(makeGROB(8, 128, lo, hi)))
	require.True(t, Detect(src))
	var p picture.Picture
	require.NoError(t, Load(src, &p))

	assert.Equal(t, 64, p.Height)
	assert.Equal(t, 2, p.Depth)
	assert.Equal(t, []byte{0, 1, 2, 3}, p.Layers[0][:4])
	assert.Equal(t, byte(0), p.Pixel(0, 7, 63))
	assert.Equal(t, palette.RGB{R: 85, G: 85, B: 127}, p.Palette[1])
}

func TestLoadErrors(t *testing.T) {
	var p picture.Picture
	err := Load(codec.NewSource(bytes.NewReader(makeGROB(8, 128, make([]byte, 64)))), &p)
	assert.ErrorIs(t, err, codec.ErrFormat)

	err = Load(codec.NewSource(bytes.NewReader([]byte(Magic))), &p)
	assert.ErrorIs(t, err, codec.ErrTruncated)
}
