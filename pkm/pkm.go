/*
Package pkm implements the PKM format, the native run-length encoded format
of the editor.

The file starts with a 780 byte header: "PKM", a method byte (always 0),
two recognition bytes, the width and height, a 6-bit palette and the length
of a list of tagged fields that follows the header. The pixels come next,
packed with rle.PackPKM.
*/
package pkm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/rle"
)

// HeaderSize is the size of the fixed header.
const HeaderSize = 780

// Field ids.
const (
	fieldComment = 0
	fieldScreen  = 1
	fieldBack    = 2
)

const maxSavedComment = 255

var (
	errSignature = fmt.Errorf("pkm: %w: bad signature", codec.ErrFormat)
	errBadField  = fmt.Errorf("pkm: %w: bad field size", codec.ErrFormat)
	errJump      = fmt.Errorf("pkm: %w: fields overrun header jump", codec.ErrFormat)
	errSize      = fmt.Errorf("pkm: %w: picture larger than 65535x65535", codec.ErrConstraint)
)

type header struct {
	Method         byte
	Recog1, Recog2 byte
	Width, Height  uint16
	Palette        palette.Palette
	Jump           uint16
}

func (h *header) read(r *binio.Reader) error {
	ident := r.Bytes(3)
	h.Method = r.Byte()
	h.Recog1 = r.Byte()
	h.Recog2 = r.Byte()
	h.Width = r.WordLE()
	h.Height = r.WordLE()
	h.Palette.SetBytes(r.Bytes(palette.Size * 3))
	h.Jump = r.WordLE()
	if err := r.Err(); err != nil {
		return err
	}
	if !bytes.Equal(ident, []byte("PKM")) || h.Method != 0 {
		return errSignature
	}
	return nil
}

func (h *header) write(w *binio.Writer) error {
	w.String("PKM")
	w.Byte(h.Method)
	w.Byte(h.Recog1)
	w.Byte(h.Recog2)
	w.WordLE(h.Width)
	w.WordLE(h.Height)
	w.Bytes(h.Palette.Bytes())
	return w.WordLE(h.Jump)
}

// Detect reports whether src starts with a complete PKM header with
// non-zero dimensions.
func Detect(src *codec.Source) bool {
	r, err := src.Rewind()
	if err != nil {
		return false
	}
	var h header
	if h.read(r) != nil {
		return false
	}
	return h.Width != 0 && h.Height != 0
}

// readFields decodes the tagged fields following the header. Each field is
// an id byte, a size byte and size bytes of data. The last field must end
// exactly at jump.
func readFields(r *binio.Reader, jump int, p *picture.Picture) error {
	for n := 0; n < jump; {
		id, size := r.Byte(), int(r.Byte())
		if err := r.Err(); err != nil {
			return err
		}
		n += 2 + size
		switch id {
		case fieldComment:
			keep := size
			if keep > picture.CommentSize {
				keep = picture.CommentSize
			}
			p.SetComment(picture.DecodeText(r.Bytes(keep)))
			r.Skip(int64(size - keep))
		case fieldScreen:
			if size != 4 {
				return errBadField
			}
			p.Screen.X = int(r.WordLE())
			p.Screen.Y = int(r.WordLE())
		case fieldBack:
			if size != 1 {
				return errBadField
			}
			p.BackColor = r.Byte()
		default:
			r.Skip(int64(size))
		}
		if err := r.Err(); err != nil {
			return err
		}
		if n > jump {
			return errJump
		}
	}
	return nil
}

// Load decodes a PKM picture into p.
func Load(src *codec.Source, p *picture.Picture) error {
	size := src.Size()
	r, err := src.Rewind()
	if err != nil {
		return err
	}
	var h header
	if err := h.read(r); err != nil {
		return err
	}
	p.Comment = ""
	if err := readFields(r, int(h.Jump), p); err != nil {
		return err
	}
	if err := p.PreLoad(int(h.Width), int(h.Height), 1, 8, picture.RatioSimple); err != nil {
		return err
	}
	src.Logf("pkm: original screen %dx%d", p.Screen.X, p.Screen.Y)
	p.Palette = h.Palette
	p.Palette.Scale64To256()

	packed := size - HeaderSize - int64(h.Jump)
	if packed < 0 {
		packed = 0
	}
	data, err := io.ReadAll(io.LimitReader(src, packed))
	if err != nil {
		return err
	}
	pixels, _, err := rle.UnpackPKM(data, p.Width*p.Height, h.Recog1, h.Recog2)
	copy(p.Layers[0], pixels)
	return err
}

// Save encodes the flattened picture. The comment is stored up to 255
// bytes, followed by the screen size and background color fields.
func Save(dst *codec.Sink, p *picture.Picture) error {
	if p.Width > 0xffff || p.Height > 0xffff {
		return errSize
	}
	m, err := p.Flatten()
	if err != nil {
		return err
	}

	h := header{
		Width:   uint16(p.Width),
		Height:  uint16(p.Height),
		Palette: p.Palette,
		Jump:    9,
	}
	h.Palette.Scale256To64()
	h.Recog1, h.Recog2 = rle.ChooseRecognition(rle.Histogram(m.Pix))

	comment := picture.EncodeText(p.Comment)
	if len(comment) > maxSavedComment {
		comment = comment[:maxSavedComment]
	}
	if len(comment) > 0 {
		h.Jump += uint16(len(comment) + 2)
	}

	w := binio.NewWriter(dst)
	h.write(w)
	if len(comment) > 0 {
		w.Byte(fieldComment)
		w.Byte(byte(len(comment)))
		w.Bytes(comment)
	}
	w.Byte(fieldScreen)
	w.Byte(4)
	w.WordLE(uint16(p.Screen.X))
	w.WordLE(uint16(p.Screen.Y))
	w.Byte(fieldBack)
	w.Byte(1)
	w.Byte(p.BackColor)
	w.Bytes(rle.PackPKM(m.Pix, h.Recog1, h.Recog2))
	return w.Err()
}
