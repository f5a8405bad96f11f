/*
Package kiss implements the cel and palette formats of KiSS, the Kisekae
Set System.

Both formats come in two generations. Old cels are a bare width and height
followed by 4-bit pixels; old palettes are 320 bytes holding ten 16 color
banks of 12-bit colors. New files start with a 32 byte "KiSS" header whose
kind byte tells cels (0x20) from palettes (0x10).
*/
package kiss

import (
	"bytes"
	"fmt"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
)

// HeaderSize is the size of the new style header.
const HeaderSize = 32

// Header kinds.
const (
	KindPalette = 0x10
	KindCel     = 0x20
)

var signature = []byte("KiSS")

var (
	errSignature = fmt.Errorf("kiss: %w: bad signature", codec.ErrFormat)
	errKind      = fmt.Errorf("kiss: %w: unexpected header kind", codec.ErrFormat)
	errDepth     = fmt.Errorf("kiss: %w: unsupported bits per pixel", codec.ErrFormat)
	errTooLarge  = fmt.Errorf("kiss: %w: picture larger than 65535x65535", codec.ErrConstraint)
)

// Header is the new style KiSS header. For palettes Width is the number of
// colors per bank and Height the number of banks.
type Header struct {
	Kind             byte
	Bits             byte
	Width, Height    uint16
	XOffset, YOffset uint16
}

func (h *Header) read(r *binio.Reader) error {
	sig := r.Bytes(4)
	h.Kind = r.Byte()
	h.Bits = r.Byte()
	r.Skip(2)
	h.Width = r.WordLE()
	h.Height = r.WordLE()
	h.XOffset = r.WordLE()
	h.YOffset = r.WordLE()
	r.Skip(16)
	if err := r.Err(); err != nil {
		return err
	}
	if !bytes.Equal(sig, signature) {
		return errSignature
	}
	return nil
}

func (h *Header) write(w *binio.Writer) error {
	w.Bytes(signature)
	w.Byte(h.Kind)
	w.Byte(h.Bits)
	w.WordLE(0)
	w.WordLE(h.Width)
	w.WordLE(h.Height)
	w.WordLE(h.XOffset)
	w.WordLE(h.YOffset)
	return w.Repeat(0, 16)
}

// readHeader reads a new style header of the given kind from the start of
// src.
func readHeader(src *codec.Source, kind byte) (*Header, *binio.Reader, error) {
	r, err := src.Rewind()
	if err != nil {
		return nil, nil, err
	}
	h := new(Header)
	if err := h.read(r); err != nil {
		return nil, nil, err
	}
	if h.Kind != kind {
		return nil, nil, errKind
	}
	return h, r, nil
}

// usesHighColors reports whether any index of 16 or more appears in pixels.
func usesHighColors(pixels []byte) bool {
	for _, c := range pixels {
		if c >= 16 {
			return true
		}
	}
	return false
}
