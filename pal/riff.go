package pal

import (
	"fmt"
	"io"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"golang.org/x/image/riff"
)

var (
	palForm   = riff.FourCC{'P', 'A', 'L', ' '}
	dataChunk = riff.FourCC{'d', 'a', 't', 'a'}
)

var errNoData = fmt.Errorf("pal: %w: no data chunk", codec.ErrFormat)

func loadRIFF(src *codec.Source, p *picture.Picture) error {
	if _, err := src.Rewind(); err != nil {
		return err
	}
	form, rr, err := riff.NewReader(src)
	if err != nil {
		return fmt.Errorf("pal: %w", err)
	}
	if form != palForm {
		return errBadHeader
	}
	for {
		id, _, data, err := rr.Next()
		if err == io.EOF {
			return errNoData
		}
		if err != nil {
			return fmt.Errorf("pal: %w", err)
		}
		if id != dataChunk {
			continue
		}
		return loadLogPalette(data, p)
	}
}

// loadLogPalette reads a LOGPALETTE: version, entry count, then R, G, B,
// flags quadruplets.
func loadLogPalette(data io.Reader, p *picture.Picture) error {
	r := binio.NewReader(data)
	_ = r.WordLE()
	n := int(r.WordLE())
	if err := r.Err(); err != nil {
		return err
	}
	if n > palette.Size {
		n = palette.Size
	}
	for i := 0; i < n; i++ {
		b := r.Bytes(4)
		if err := r.Err(); err != nil {
			return err
		}
		p.Palette[i] = palette.RGB{R: b[0], G: b[1], B: b[2]}
	}
	return nil
}
