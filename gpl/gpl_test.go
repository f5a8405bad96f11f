package gpl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func source(s string) *codec.Source {
	return codec.NewSource(strings.NewReader(s))
}

const sample = "GIMP Palette\nName: Bears\nColumns: 16\n#\n" +
	"# a comment\n" +
	"  0   0   0\tBlack\n" +
	"255 128   7\tOrange glow\n" +
	"\n" +
	" 17  34  51\n"

func TestDetect(t *testing.T) {
	assert.True(t, Detect(source(sample)))
	assert.False(t, Detect(source("")))
	assert.False(t, Detect(source("G")))
	assert.False(t, Detect(source("GIMP Palette\n")))
	assert.False(t, Detect(source(strings.Repeat("x", 64))))
}

func TestLoad(t *testing.T) {
	var p picture.Picture
	require.NoError(t, Load(source(sample), &p))
	assert.Equal(t, "GPL: Bears", p.Comment)
	assert.Equal(t, palette.RGB{}, p.Palette[0])
	assert.Equal(t, palette.RGB{R: 255, G: 128, B: 7}, p.Palette[1])
	assert.Equal(t, palette.RGB{R: 17, G: 34, B: 51}, p.Palette[2])
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no columns", "GIMP Palette\nName: x\n0 0 0\n"},
		{"no colors", "GIMP Palette\nName: x\nColumns: 4\n#\n"},
		{"bad first entry", "GIMP Palette\nName: x\nColumns: 4\nred green blue\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p picture.Picture
			assert.ErrorIs(t, Load(source(tt.in), &p), codec.ErrFormat)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	p := picture.New(1, 1)
	for i := range p.Palette {
		p.Palette[i] = palette.RGB{R: uint8(i), G: 3, B: uint8(255 - i)}
	}
	var b bytes.Buffer
	sink := codec.NewSink(&b)
	sink.Name = "out/warm.gpl"
	require.NoError(t, Save(sink, p))
	assert.True(t, strings.HasPrefix(b.String(), "GIMP Palette\nName: warm.gpl\nColumns: 16\n#\n0 3 255\tUntitled\n"))

	var q picture.Picture
	require.NoError(t, Load(codec.NewSource(bytes.NewReader(b.Bytes())), &q))
	assert.Equal(t, p.Palette, q.Palette)
	assert.Equal(t, "GPL: warm.gpl", q.Comment)
}
