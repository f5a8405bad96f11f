package flic

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func le16(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func chunk(kind uint16, body ...[]byte) []byte {
	b := concat(body...)
	return concat(binary.LittleEndian.AppendUint32(nil, uint32(len(b)+chunkHeaderSize)), le16(kind), b)
}

func frame(delay uint16, subs ...[]byte) []byte {
	hdr := concat(le16(uint16(len(subs))), le16(delay), make([]byte, 6))
	return chunk(chunkFrame, append([][]byte{hdr}, subs...)...)
}

func makeFLIC(typ uint16, width, height uint16, speed uint32, frames ...[]byte) []byte {
	h := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(h[4:], typ)
	binary.LittleEndian.PutUint16(h[6:], uint16(len(frames)))
	binary.LittleEndian.PutUint16(h[8:], width)
	binary.LittleEndian.PutUint16(h[10:], height)
	binary.LittleEndian.PutUint16(h[12:], 8)
	binary.LittleEndian.PutUint32(h[16:], speed)
	b := concat(append([][]byte{h}, frames...)...)
	binary.LittleEndian.PutUint32(b, uint32(len(b)))
	return b
}

func load(t *testing.T, b []byte) *picture.Picture {
	t.Helper()
	src := codec.NewSource(bytes.NewReader(b))
	require.True(t, Detect(src))
	var p picture.Picture
	require.NoError(t, Load(src, &p))
	return &p
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, false},
		{"one byte", []byte{0x11}, false},
		{"fli", makeFLIC(TypeFLI, 1, 1, 0), true},
		{"flc", makeFLIC(TypeFLC, 1, 1, 0), true},
		{"short header", makeFLIC(TypeFLI, 1, 1, 0)[:HeaderSize-1], false},
		{"other type", makeFLIC(0xaf44, 1, 1, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(codec.NewSource(bytes.NewReader(tt.data))))
		})
	}
}

func TestFLIFrameInheritance(t *testing.T) {
	b := makeFLIC(TypeFLI, 4, 2, 5,
		frame(7,
			chunk(chunkColor64, le16(1), []byte{0, 2, 63, 0, 0, 0, 63, 0}),
			chunk(chunkBRun, []byte{1, 4, 1, 1, 0xfc, 1, 2, 3, 4}),
		),
		frame(0,
			chunk(chunkLC, le16(1), le16(1), []byte{1, 2, 0xfe, 9}),
		),
		frame(14),
	)
	p := load(t, b)

	assert.Equal(t, picture.ModeAnimation, p.Mode)
	require.Len(t, p.Layers, 3)
	assert.Equal(t, []byte{1, 1, 1, 1, 1, 2, 3, 4}, p.Layers[0])
	assert.Equal(t, []byte{1, 1, 1, 1, 1, 2, 9, 9}, p.Layers[1])
	assert.Equal(t, p.Layers[1], p.Layers[2])
	assert.Equal(t, []picture.Frame{
		{Layer: 0, Duration: 100 * time.Millisecond},
		{Layer: 1, Duration: 71 * time.Millisecond},
		{Layer: 2, Duration: 200 * time.Millisecond},
	}, p.Frames)
	assert.Equal(t, palette.RGB{R: 255}, p.Palette[0])
	assert.Equal(t, palette.RGB{G: 255}, p.Palette[1])
}

func TestFLCDelta(t *testing.T) {
	b := makeFLIC(TypeFLC, 4, 2, 0,
		frame(0,
			chunk(chunkColor256, le16(1), []byte{1, 1, 10, 20, 30}),
			chunk(chunkCopy, []byte{0, 1, 2, 3, 4, 5, 6, 7}),
		),
		frame(0,
			chunk(chunkSS2, le16(1), le16(0xffff), le16(0x8042), le16(1), []byte{0, 1, 0x10, 0x11}),
		),
		frame(0, chunk(chunkBlack)),
	)
	p := load(t, b)

	require.Len(t, p.Layers, 3)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, p.Layers[0])
	assert.Equal(t, []byte{0, 1, 2, 3, 0x10, 0x11, 6, 0x42}, p.Layers[1])
	assert.Equal(t, make([]byte, 8), p.Layers[2])
	for _, f := range p.Frames {
		assert.Equal(t, 10*time.Millisecond, f.Duration)
	}
	assert.Equal(t, palette.RGB{R: 10, G: 20, B: 30}, p.Palette[1])
}

func TestMagicCarpet(t *testing.T) {
	hdr := concat(
		binary.LittleEndian.AppendUint32(nil, magicCarpetSize),
		le16(TypeFLI), le16(1), le16(2), le16(1),
	)
	// The frame chunk size is wrong on purpose
	fr := frame(0,
		chunk(chunkColor256, le16(1), []byte{0, 1, 63, 63, 63}),
		chunk(chunkBRun, []byte{1, 2, 5}),
	)
	binary.LittleEndian.PutUint32(fr, chunkHeaderSize)
	b := concat(hdr, fr)
	for len(b) < HeaderSize {
		b = append(b, chunk(0)...)
	}

	p := load(t, b)
	assert.Equal(t, 8, p.Depth)
	assert.Equal(t, []byte{5, 5}, p.Layers[0])
	assert.Equal(t, palette.RGB{R: 255, G: 255, B: 255}, p.Palette[0])
	assert.Equal(t, 942*time.Millisecond, p.Frames[0].Duration)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"no frame", makeFLIC(TypeFLI, 4, 2, 0)},
		{"bad sub-chunk size", makeFLIC(TypeFLI, 4, 2, 0, concat(frame(0), []byte{}), chunk(chunkFrame, le16(1), make([]byte, 6), []byte{2, 0, 0, 0, 4, 0}))},
		{"ss2 opcode", makeFLIC(TypeFLC, 4, 2, 0, frame(0, chunk(chunkSS2, le16(1), le16(0x4000))))},
		{"chunk too small", makeFLIC(TypeFLI, 4, 2, 0, []byte{1, 0, 0, 0, 0xfa, 0xf1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p picture.Picture
			assert.ErrorIs(t, Load(codec.NewSource(bytes.NewReader(tt.data)), &p), codec.ErrFormat)
		})
	}
}

func TestTruncatedRun(t *testing.T) {
	b := makeFLIC(TypeFLI, 4, 1, 0, frame(0, chunk(chunkBRun, []byte{1, 0xfc, 1})))
	var p picture.Picture
	assert.ErrorIs(t, Load(codec.NewSource(bytes.NewReader(b)), &p), codec.ErrTruncated)
}

func TestDeltaRegion(t *testing.T) {
	fill := bytes.Repeat([]byte{1, 4, 1}, 4)
	b := makeFLIC(TypeFLI, 4, 4, 0,
		frame(0, chunk(chunkBRun, fill)),
		frame(0, chunk(chunkLC, le16(1), le16(2), []byte{1, 1, 2, 9, 9}, []byte{1, 1, 2, 9, 9})),
		frame(0),
	)
	p := load(t, b)

	require.Len(t, p.Layers, 3)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := byte(1)
			if x >= 1 && x <= 2 && y >= 1 && y <= 2 {
				want = 9
			}
			assert.Equal(t, byte(1), p.Pixel(0, x, y))
			assert.Equal(t, want, p.Pixel(1, x, y), "frame 2 at %d,%d", x, y)
		}
	}
	assert.Equal(t, p.Layers[1], p.Layers[2])
}
