package grafx2

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Abhisheknishant/grafx2/c64"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/cpc"
	"github.com/Abhisheknishant/grafx2/flic"
	"github.com/Abhisheknishant/grafx2/gpl"
	"github.com/Abhisheknishant/grafx2/gpx"
	"github.com/Abhisheknishant/grafx2/grb"
	"github.com/Abhisheknishant/grafx2/hgr"
	"github.com/Abhisheknishant/grafx2/kiss"
	"github.com/Abhisheknishant/grafx2/pal"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/pkm"
)

// Format identifies one of the supported file formats. Detection tries them
// in the order they are declared.
type Format int

// Supported formats.
const (
	PAL Format = iota
	GPL
	PKM
	CEL
	KCF
	C64
	GPX
	SCR
	GOS
	CM5
	PPH
	FLI
	HGR
	GRB
	numFormats
)

var formatNames = [numFormats]string{
	PAL: "PAL",
	GPL: "GPL",
	PKM: "PKM",
	CEL: "CEL",
	KCF: "KCF",
	C64: "C64",
	GPX: "GPX",
	SCR: "SCR",
	GOS: "GOS",
	CM5: "CM5",
	PPH: "PPH",
	FLI: "FLI",
	HGR: "HGR",
	GRB: "GRB",
}

// Default file extensions, used when converting.
var formatExtensions = [numFormats]string{
	PAL: ".pal",
	GPL: ".gpl",
	PKM: ".pkm",
	CEL: ".cel",
	KCF: ".kcf",
	C64: ".koa",
	GPX: ".gpx",
	SCR: ".scr",
	GOS: ".go1",
	CM5: ".cm5",
	PPH: ".pph",
	FLI: ".fli",
	HGR: ".hgr",
	GRB: ".grb",
}

var (
	errUnknownFormat = errors.New("grafx2: unknown format")
	errNoMatch       = errors.New("grafx2: no format recognized")
)

func (f Format) valid() bool {
	return f >= 0 && f < numFormats
}

func (f Format) String() string {
	if !f.valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Extension returns the usual file extension of the format, with its dot.
func (f Format) Extension() string {
	if !f.valid() {
		return ""
	}
	return formatExtensions[f]
}

// CanSave reports whether the format has a saver.
func (f Format) CanSave() bool {
	if !f.valid() {
		return false
	}
	_, ok := registry[f].(loadOnly)
	return !ok
}

// ParseFormat returns the format named s, ignoring case.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", errUnknownFormat, s)
}

// FormatByExtension returns the format whose usual extension is the one of
// file.
func FormatByExtension(file string) (Format, bool) {
	ext := filepath.Ext(file)
	for f, e := range formatExtensions {
		if strings.EqualFold(ext, e) {
			return Format(f), true
		}
	}
	if f, err := ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		return f, true
	}
	return 0, false
}

// Formats returns every format in detection order.
func Formats() []Format {
	formats := make([]Format, numFormats)
	for i := range formats {
		formats[i] = Format(i)
	}
	return formats
}

// Codec is the capability every format provides.
type Codec interface {
	Detect(src *codec.Source) bool
	Load(src *codec.Source, p *picture.Picture) error
	Save(dst *codec.Sink, p *picture.Picture) error
}

type codecFuncs struct {
	detect func(*codec.Source) bool
	load   func(*codec.Source, *picture.Picture) error
	save   func(*codec.Sink, *picture.Picture) error
}

func (c codecFuncs) Detect(src *codec.Source) bool                   { return c.detect(src) }
func (c codecFuncs) Load(src *codec.Source, p *picture.Picture) error { return c.load(src, p) }
func (c codecFuncs) Save(dst *codec.Sink, p *picture.Picture) error   { return c.save(dst, p) }

type loadOnly struct {
	codecFuncs
}

func (loadOnly) Save(*codec.Sink, *picture.Picture) error {
	return codec.ErrUnsupported
}

func readOnly(detect func(*codec.Source) bool, load func(*codec.Source, *picture.Picture) error) loadOnly {
	return loadOnly{codecFuncs{detect: detect, load: load}}
}

var registry = [numFormats]Codec{
	PAL: codecFuncs{pal.Detect, pal.Load, pal.Save},
	GPL: codecFuncs{gpl.Detect, gpl.Load, gpl.Save},
	PKM: codecFuncs{pkm.Detect, pkm.Load, pkm.Save},
	CEL: codecFuncs{kiss.DetectCEL, kiss.LoadCEL, kiss.SaveCEL},
	KCF: codecFuncs{kiss.DetectKCF, kiss.LoadKCF, kiss.SaveKCF},
	C64: codecFuncs{c64.Detect, c64.Load, c64.Save},
	GPX: readOnly(gpx.Detect, gpx.Load),
	SCR: codecFuncs{cpc.DetectSCR, cpc.LoadSCR, cpc.SaveSCR},
	GOS: readOnly(cpc.DetectGOS, cpc.LoadGOS),
	CM5: codecFuncs{cpc.DetectCM5, cpc.LoadCM5, cpc.SaveCM5},
	PPH: readOnly(cpc.DetectPPH, cpc.LoadPPH),
	FLI: readOnly(flic.Detect, flic.Load),
	HGR: codecFuncs{hgr.Detect, hgr.Load, hgr.Save},
	GRB: readOnly(grb.Detect, grb.Load),
}

// Codec returns the implementation of the format.
func (f Format) Codec() Codec {
	if !f.valid() {
		return nil
	}
	return registry[f]
}

// Detect tries every format in order and returns the first one whose
// detector accepts src. The read position of src is left unchanged.
func Detect(src *codec.Source) (Format, bool) {
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	defer src.Seek(pos, io.SeekStart)

	for f, c := range registry {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return 0, false
		}
		if c.Detect(src) {
			return Format(f), true
		}
	}
	return 0, false
}

// PaletteOnly reports whether the format holds a palette and no pixels.
func (f Format) PaletteOnly() bool {
	return f == PAL || f == GPL
}

// Load decodes src as format f into p. Unless the palette is cleared by
// src.ClearPalette, colors the format does not define keep their value. A
// palette only format replaces the palette and comment of p and keeps its
// pixels. p is left untouched when loading fails.
func Load(src *codec.Source, f Format, p *picture.Picture) error {
	if !f.valid() {
		return errUnknownFormat
	}
	q := *p
	if !f.PaletteOnly() {
		q.Reset(src.ClearPalette)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := registry[f].Load(src, &q); err != nil {
		return fmt.Errorf("grafx2: loading %v: %w", f, err)
	}
	if f.PaletteOnly() {
		p.Palette, p.Comment = q.Palette, q.Comment
		return nil
	}
	*p = q
	return nil
}

// Save encodes p as format f to dst.
func Save(dst *codec.Sink, p *picture.Picture, f Format) error {
	if !f.valid() {
		return errUnknownFormat
	}
	if err := registry[f].Save(dst, p); err != nil {
		return fmt.Errorf("grafx2: saving %v: %w", f, err)
	}
	return nil
}
