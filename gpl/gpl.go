// Package gpl implements the GIMP palette text format.
package gpl

import (
	"bufio"
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
)

const signature = "GIMP Palette"

var (
	errNoColumns = fmt.Errorf("gpl: %w: missing Columns line", codec.ErrFormat)
	errNoColors  = fmt.Errorf("gpl: %w: no color entries", codec.ErrFormat)
	errHeader    = fmt.Errorf("gpl: %w: bad signature", codec.ErrFormat)
)

// Detect reports whether src starts with the GIMP palette signature.
func Detect(src *codec.Source) bool {
	if src.Size() <= 33 {
		return false
	}
	return bytes.HasPrefix(src.Peek(len(signature)), []byte(signature))
}

func parseEntry(line string) (palette.RGB, string, bool) {
	f := strings.Fields(line)
	if len(f) < 3 {
		return palette.RGB{}, "", false
	}
	var c [3]uint8
	for i := range c {
		v, err := strconv.Atoi(f[i])
		if err != nil {
			return palette.RGB{}, "", false
		}
		c[i] = uint8(v)
	}
	return palette.RGB{R: c[0], G: c[1], B: c[2]}, strings.Join(f[3:], " "), true
}

// Load reads up to 256 colors into the palette of p. The Name header, when
// present, becomes the picture comment.
func Load(src *codec.Source, p *picture.Picture) error {
	if _, err := src.Rewind(); err != nil {
		return err
	}
	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	s := bufio.NewScanner(src)
	if !s.Scan() || !strings.HasPrefix(s.Text(), signature) {
		return errHeader
	}
	if !s.Scan() {
		return errNoColumns
	}
	line := strings.TrimRight(s.Text(), "\r")
	if name := strings.TrimPrefix(line, "Name: "); name != line {
		p.SetComment("GPL: " + name)
		if !s.Scan() {
			return errNoColumns
		}
		line = s.Text()
	}
	var columns int
	if _, err := fmt.Sscanf(line, "Columns: %d", &columns); err != nil {
		return errNoColumns
	}

	n := 0
	for n < palette.Size && s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		c, name, ok := parseEntry(line)
		if !ok {
			break
		}
		src.Logf("gpl: %3d: RGB(%3d,%3d,%3d) %s", n, c.R, c.G, c.B, name)
		p.Palette[n] = c
		n++
	}
	if err := s.Err(); err != nil {
		return err
	}
	if n == 0 {
		return errNoColors
	}
	return nil
}

// Save writes all 256 palette entries of p, naming the palette after the
// output file.
func Save(dst *codec.Sink, p *picture.Picture) error {
	name := path.Base(dst.Name)
	if dst.Name == "" {
		name = "Untitled"
	}
	w := binio.NewWriter(dst)
	w.String(fmt.Sprintf("%s\nName: %s\nColumns: 16\n#\n", signature, name))
	for _, c := range p.Palette {
		w.String(fmt.Sprintf("%d %d %d\tUntitled\n", c.R, c.G, c.B))
	}
	return w.Err()
}
