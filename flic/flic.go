/*
Package flic loads Autodesk Animator FLI and FLC animations.

Every FRAME chunk becomes one layer of the picture; a frame starts as a copy
of the previous one and its delta sub-chunks only update what changed.
Frame durations are kept in the picture's frame list. There is no saver.
*/
package flic

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
)

// HeaderSize is the size of the file header.
const HeaderSize = 128

// File types.
const (
	TypeFLI = 0xaf11
	TypeFLC = 0xaf12
)

// Chunk types.
const (
	chunkFrame = 0xf1fa

	chunkSS2      = 0x07
	chunkColor256 = 0x04
	chunkColor64  = 0x0b
	chunkLC       = 0x0c
	chunkBlack    = 0x0d
	chunkBRun     = 0x0f
	chunkCopy     = 0x10
)

const (
	chunkHeaderSize = 6
	frameHeaderSize = 16

	// Files whose header claims 12 bytes come from the game Magic Carpet.
	// Their palette is 6-bit and frame chunk sizes are not reliable.
	magicCarpetSize  = 12
	magicCarpetSpeed = 66
)

var (
	errChunk   = fmt.Errorf("flic: %w: chunk size out of range", codec.ErrFormat)
	errNoFrame = fmt.Errorf("flic: %w: no frame", codec.ErrFormat)
	errOpcode  = fmt.Errorf("flic: %w: unsupported SS2 opcode", codec.ErrFormat)
)

// Header is the FLIC file header. Fields after Speed are only meaningful in
// FLC files.
type Header struct {
	Size          uint32
	Type          uint16
	Frames        uint16
	Width, Height uint16
	Depth         uint16
	Flags         uint16
	Speed         uint32
	Created       uint32
	Creator       uint32
	Updated       uint32
	Updater       uint32
	AspectX       uint16
	AspectY       uint16
	Frame1        uint32
	Frame2        uint32
}

func (h *Header) read(r *binio.Reader) error {
	h.Size = r.DwordLE()
	h.Type = r.WordLE()
	h.Frames = r.WordLE()
	h.Width = r.WordLE()
	h.Height = r.WordLE()
	h.Depth = r.WordLE()
	h.Flags = r.WordLE()
	h.Speed = r.DwordLE()
	r.Skip(2)
	h.Created = r.DwordLE()
	h.Creator = r.DwordLE()
	h.Updated = r.DwordLE()
	h.Updater = r.DwordLE()
	h.AspectX = r.WordLE()
	h.AspectY = r.WordLE()
	// EGI extensions
	r.Skip(2 + 2 + 2 + 4 + 2 + 2 + 24)
	h.Frame1 = r.DwordLE()
	h.Frame2 = r.DwordLE()
	r.Skip(40)
	return r.Err()
}

func (h *Header) magicCarpet() bool {
	return h.Size == magicCarpetSize
}

// duration converts a frame delay to a duration: FLI files count in 1/70th
// of a second, FLC files in milliseconds.
func (h *Header) duration(delay uint32) time.Duration {
	if h.Type == TypeFLI {
		return time.Duration(delay*100/7) * time.Millisecond
	}
	return time.Duration(delay) * time.Millisecond
}

// Detect reports whether src starts with a complete FLI or FLC header.
func Detect(src *codec.Source) bool {
	r, err := src.Rewind()
	if err != nil {
		return false
	}
	var h Header
	if h.read(r) != nil {
		return false
	}
	return h.Type == TypeFLI || h.Type == TypeFLC
}

// loader holds the decoding state of one file.
type loader struct {
	src    *codec.Source
	h      Header
	p      *picture.Picture
	layer  int
	frames int

	// size of the frame being decoded
	width, height int
}

// Load decodes every frame of the animation into p.
func Load(src *codec.Source, p *picture.Picture) error {
	data, err := src.ReadAll()
	if err != nil {
		return err
	}
	l := &loader{src: src, p: p}
	if err := l.h.read(binio.NewReader(bytes.NewReader(data))); err != nil {
		return err
	}

	off := HeaderSize
	if l.h.magicCarpet() {
		l.h.Depth = 8
		l.h.Speed = magicCarpetSpeed
		off = magicCarpetSize
	} else if int(l.h.Size) != len(data) {
		src.Logf("flic: file size mismatch in header %d != %d", len(data), l.h.Size)
	}
	if l.h.Speed == 0 {
		if l.h.Type == TypeFLI {
			l.h.Speed = 1
		} else {
			l.h.Speed = 10
		}
	}

	for off+chunkHeaderSize <= len(data) {
		size := int(binio.LE32(data, off))
		kind := binio.LE16(data, off+4)
		if size < chunkHeaderSize {
			return errChunk
		}
		end := off + size
		if end > len(data) || l.h.magicCarpet() {
			end = len(data)
		}
		body := data[off+chunkHeaderSize : end]

		next := off + size
		switch kind {
		case chunkFrame:
			used, err := l.frame(body)
			if err != nil {
				return err
			}
			if l.h.magicCarpet() {
				next = off + chunkHeaderSize + used
			}
		default:
			src.Logf("flic: unrecognized chunk %04x", kind)
			if l.h.magicCarpet() {
				next = off + chunkHeaderSize
			}
		}
		off = next
	}
	if l.frames == 0 {
		return errNoFrame
	}
	return nil
}

// frame decodes a FRAME chunk body and returns the number of bytes its
// sub-chunks used.
func (l *loader) frame(body []byte) (int, error) {
	if len(body) < frameHeaderSize-chunkHeaderSize {
		return 0, codec.ErrTruncated
	}
	count := int(binio.LE16(body, 0))
	delay := uint32(binio.LE16(body, 2))
	l.width, l.height = int(binio.LE16(body, 6)), int(binio.LE16(body, 8))
	if l.width == 0 {
		l.width = int(l.h.Width)
	}
	if l.height == 0 {
		l.height = int(l.h.Height)
	}
	if delay == 0 {
		delay = l.h.Speed
	}

	if l.frames == 0 {
		if err := l.p.PreLoad(int(l.h.Width), int(l.h.Height), 1, int(l.h.Depth), picture.RatioSimple); err != nil {
			return 0, err
		}
		l.p.Mode = picture.ModeAnimation
		if l.src.ClearPalette {
			l.p.Palette = palette.Palette{}
		}
		l.layer = 0
	} else {
		layer, err := l.p.AddLayer()
		if err != nil {
			return 0, err
		}
		l.layer = layer
	}
	l.p.AddFrame(l.layer, l.h.duration(delay))
	l.frames++

	pos := frameHeaderSize - chunkHeaderSize
	for i := 0; i < count; i++ {
		if pos+chunkHeaderSize > len(body) {
			return pos, codec.ErrTruncated
		}
		size := int(binio.LE32(body, pos))
		kind := binio.LE16(body, pos+4)
		if size < chunkHeaderSize || pos+size > len(body) {
			return pos, errChunk
		}
		sub := body[pos+chunkHeaderSize : pos+size]
		var err error
		switch kind {
		case chunkColor256:
			err = l.color(sub, l.h.magicCarpet())
		case chunkColor64:
			err = l.color(sub, true)
		case chunkBRun:
			err = l.brun(sub)
		case chunkLC:
			err = l.lc(sub)
		case chunkSS2:
			err = l.ss2(sub)
		case chunkBlack:
			l.black()
		case chunkCopy:
			l.copy(sub)
		default:
			l.src.Logf("flic: skipping sub-chunk %04x", kind)
		}
		if err != nil {
			return pos, err
		}
		pos += size
	}
	return pos, nil
}

func (l *loader) set(x, y int, c byte) {
	l.p.SetPixel(l.layer, x, y, c)
}
