/*
Package gpx loads pictures saved by Pixcen, a C64 paint program.

A GPX file is a zlib stream. Once inflated it starts with a version and a
mode, then from version 4 on a list of keys, each a NUL terminated ASCII
name followed by a NUL terminated UTF-16LE decimal value. The keys give the
picture size and the length of the bitmap, color and screen buffers that
follow a fixed block of settings.
*/
package gpx

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/c64"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/rle"
	"golang.org/x/text/encoding/unicode"
)

// Modes. Odd modes are multicolor.
const (
	ModeBitmap   = 0
	ModeMCBitmap = 1
)

const minVersion = 4

// Offsets within the block preceding the first back buffer.
const (
	settingsSize = 64
	borderOffset = 47 + 6 + 6
	bufferOffset = borderOffset + 2 + 3
)

var (
	errVersion = fmt.Errorf("gpx: %w: unsupported version", codec.ErrUnsupported)
	errKeys    = fmt.Errorf("gpx: %w: malformed key list", codec.ErrFormat)
	errBuffers = fmt.Errorf("gpx: %w: buffers do not fit", codec.ErrFormat)
	errNoImage = fmt.Errorf("gpx: %w: no back buffer", codec.ErrFormat)
)

// Detect reports whether src starts with a zlib header using deflate.
func Detect(src *codec.Source) bool {
	h := src.Peek(2)
	if len(h) < 2 || h[0]&0x0f != 8 {
		return false
	}
	return (int(h[0])<<8|int(h[1]))%31 == 0
}

// Header holds the decoded keys.
type Header struct {
	Version, Mode uint32
	Keys          map[string]int
}

func (h *Header) key(name string) int {
	if v, ok := h.Keys[name]; ok {
		return v
	}
	return -1
}

var utf16 = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// parseKeys decodes count key/value pairs from b and returns the remaining
// bytes.
func parseKeys(b []byte, count uint32) (map[string]int, []byte, error) {
	keys := make(map[string]int)
	for ; count > 0; count-- {
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			return nil, nil, errKeys
		}
		name := string(b[:i])
		b = b[i+1:]
		end := -1
		for j := 0; j+1 < len(b); j += 2 {
			if b[j] == 0 && b[j+1] == 0 {
				end = j
				break
			}
		}
		if end < 0 {
			return nil, nil, errKeys
		}
		value, err := utf16.NewDecoder().Bytes(b[:end])
		if err != nil {
			return nil, nil, fmt.Errorf("gpx: %w", err)
		}
		b = b[end+2:]
		n, err := strconv.Atoi(string(value))
		if err != nil {
			n = -1
		}
		keys[name] = n
	}
	return keys, b, nil
}

// Load inflates and decodes a GPX picture into p.
func Load(src *codec.Source, p *picture.Picture) error {
	packed, err := src.ReadAll()
	if err != nil {
		return err
	}
	data, err := rle.Inflate(packed)
	if err != nil {
		return err
	}
	src.Logf("gpx: inflated %d bytes to %d", len(packed), len(data))
	if len(data) < 12 {
		return codec.ErrTruncated
	}
	h := Header{Version: binio.LE32(data, 0), Mode: binio.LE32(data, 4)}
	if h.Version < minVersion {
		return errVersion
	}
	keys, rest, err := parseKeys(data[12:], binio.LE32(data, 8))
	if err != nil {
		return err
	}
	h.Keys = keys
	for k, v := range keys {
		src.Logf("gpx: %s=%d", k, v)
	}

	if h.key("backbuffers") < 1 {
		return errNoImage
	}
	mapSize, colorSize, screenSize := h.key("mapsize"), h.key("colorsize"), h.key("screensize")
	if mapSize < 8000 || colorSize < 1000 || screenSize < 1000 {
		return errBuffers
	}
	if len(rest) < settingsSize+bufferOffset+mapSize+colorSize+screenSize {
		return errBuffers
	}
	rest = rest[settingsSize:]
	border, background := rest[borderOffset], rest[borderOffset+1]
	src.Logf("gpx: background color #%d, border color #%d", background, border)
	rest = rest[bufferOffset:]
	bitmap := rest[:mapSize]
	color := rest[mapSize : mapSize+colorSize]
	screen := rest[mapSize+colorSize : mapSize+colorSize+screenSize]

	ratio := picture.RatioSimple
	if h.Mode&ModeMCBitmap != 0 {
		ratio = picture.RatioWide
	}
	if err := p.PreLoad(h.key("xsize"), h.key("ysize"), 1, 4, ratio); err != nil {
		return err
	}
	p.SetComment(fmt.Sprintf("pixcen file version %d mode %d", h.Version, h.Mode))
	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	p.Palette.SetC64()
	p.Transparent = c64.TransparentColor
	if h.Mode&ModeMCBitmap != 0 {
		c64.DecodeMulti(p, 0, bitmap, screen, color, background)
	} else {
		c64.DecodeHires(p, 0, bitmap, screen)
	}
	return nil
}
