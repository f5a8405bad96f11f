/*
Package c64 implements the Commodore 64 bitmap formats.

C64 picture files are memory dumps of the VIC-II bitmap, screen RAM and
color RAM, laid out differently by every paint program. They are told apart
by their exact size and load address; a few programs pack the dump with a
simple escape RLE (Amica Paint, Drazpaint, Doodle and Koala Painter 2) and
are unpacked before matching.

Hires pictures are 320x200 with two colors per 8x8 cell. Multicolor pictures
are 160x200 wide pixels with three colors per 4x8 cell plus a shared
background. FLI pictures change the screen RAM on every line and the
background color per line; they load into four layers: background, color
RAM, pixels and a transparent overlay.
*/
package c64

import (
	"bytes"
	"fmt"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/rle"
)

// Format is a C64 graphics mode.
type Format int

// Graphics modes.
const (
	FormatHires Format = iota
	FormatMulti
	FormatBitmap
	FormatFLI
)

func (f Format) String() string {
	switch f {
	case FormatMulti:
		return "Multicolor"
	case FormatBitmap:
		return "Bitmap"
	case FormatFLI:
		return "FLI"
	default:
		return "Hires"
	}
}

const (
	minSize = 16
	maxSize = 48 << 10

	amicaCode  = 0xc2
	doodleCode = 0xfe

	// TransparentColor is the transparent color of loaded pictures and the
	// overlay color of FLI pictures, just past the 16 hardware colors.
	TransparentColor = 16
)

var drazSignature = []byte("DRAZPAINT")

var (
	errLayout   = codec.ErrFormat
	errUnknown  = fmt.Errorf("c64: %w: unknown file size", codec.ErrFormat)
	errTooShort = fmt.Errorf("c64: %w: packed file too short", codec.ErrFormat)
)

func isAmica(buf []byte) bool {
	n := len(buf)
	return n > 2 && binio.LE16(buf, 0) == 0x4000 && buf[n-2] == amicaCode && buf[n-1] == 0
}

func isDraz(buf []byte) bool {
	return len(buf) >= 2+len(drazSignature) && bytes.Equal(buf[2:2+len(drazSignature)], drazSignature)
}

func isDoodleAddr(addr uint16) bool {
	return addr == 0x6000 || addr == 0x5c00
}

// unpack expands a packed file. Drazpaint stores its escape code in the
// header, the others use a fixed one. Unpacked data starts without load
// address.
func unpack(buf []byte) ([]byte, bool, error) {
	if len(buf) <= minSize {
		return nil, false, errTooShort
	}
	addr := binio.LE16(buf, 0)
	var (
		out []byte
		err error
	)
	switch {
	case isDraz(buf):
		out, err = rle.Escape(buf[16:], buf[15], rle.CountValue)
	case isAmica(buf):
		out, err = rle.Escape(buf[2:], amicaCode, rle.CountValue)
	case len(buf) < bitmapSize && isDoodleAddr(addr):
		out, err = rle.Escape(buf[2:], doodleCode, rle.ValueCount)
	default:
		return buf, false, nil
	}
	return out, true, err
}

// Detect reports whether src looks like a C64 picture, from its size, its
// load address and packer signatures.
func Detect(src *codec.Source) bool {
	size := src.Size()
	if size < minSize || size > maxSize {
		return false
	}
	switch size {
	case 8000, 9000, 10001, 17472:
		return true
	}
	buf, err := src.ReadAll()
	if err != nil || len(buf) < minSize {
		return false
	}
	addr := binio.LE16(buf, 0)
	if isDraz(buf) || isAmica(buf) {
		return true
	}
	if l := findLayout(len(buf), addr); l != nil && !l.unpacked && l.loadAddr {
		if l.size == 10242 {
			return addr == 0x4000 || addr == 0xa000 || addr == 0x5c00
		}
		return true
	}
	if isDoodleAddr(addr) {
		out, err := rle.Escape(buf[2:], doodleCode, rle.ValueCount)
		if err != nil {
			return false
		}
		switch len(out) {
		case 9024, 9216, 10001, 10070:
			return true
		}
	}
	return false
}

// views holds the regions of a file resolved to byte slices. Absent
// regions are nil.
type views struct {
	bitmap, screen, color, background []byte
}

func (l *layout) resolve(buf []byte) (*views, error) {
	var v views
	var err error
	for _, r := range []struct {
		reg region
		dst *[]byte
	}{
		{l.bitmap, &v.bitmap},
		{l.screen, &v.screen},
		{l.color, &v.color},
		{l.background, &v.background},
	} {
		if !r.reg.present() {
			continue
		}
		if *r.dst, err = r.reg.view(buf); err != nil {
			return nil, err
		}
	}
	if l.colorFill.present() {
		b, err := l.colorFill.view(buf)
		if err != nil {
			return nil, err
		}
		v.color = bytes.Repeat(b, screenSize)
	}
	return &v, nil
}

// Load decodes a C64 picture into p. The comment records the mode and the
// load address, if the file has one.
func Load(src *codec.Source, p *picture.Picture) error {
	buf, err := src.ReadAll()
	if err != nil {
		return err
	}
	if len(buf) < 2 {
		return codec.ErrTruncated
	}
	addr := binio.LE16(buf, 0)

	data := buf
	if len(buf) > minSize {
		var packed bool
		if data, packed, err = unpack(buf); err != nil {
			return err
		}
		if packed {
			src.Logf("c64: unpacked %d bytes to %d", len(buf), len(data))
		}
	}

	l := findLayout(len(data), addr)
	if l == nil {
		return errUnknown
	}
	v, err := l.resolve(data)
	if err != nil {
		return err
	}
	src.Logf("c64: %s layout, %d bytes, load address $%04X", l.name, len(data), addr)

	width, ratio, layers := 320, picture.RatioSimple, 1
	switch l.format {
	case FormatMulti:
		width, ratio = 160, picture.RatioWide
	case FormatFLI:
		width, ratio, layers = 160, picture.RatioWide, 4
	}
	if err := p.PreLoad(width, fliLines, layers, 4, ratio); err != nil {
		return err
	}
	if l.loadAddr {
		p.SetComment(fmt.Sprintf("%s, load at $%04X", l.format, addr))
	} else {
		p.SetComment(fmt.Sprintf("%s, no addr", l.format))
	}
	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	p.Palette.SetC64()
	p.Transparent = TransparentColor

	switch l.format {
	case FormatFLI:
		DecodeFLI(p, v.bitmap, v.screen, v.color, v.background)
	case FormatMulti:
		var bg byte
		if v.background != nil {
			bg = v.background[0]
		}
		DecodeMulti(p, 0, v.bitmap, v.screen, v.color, bg)
	default:
		DecodeHires(p, 0, v.bitmap, v.screen)
	}
	return nil
}
