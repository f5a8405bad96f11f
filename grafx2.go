/*
Package grafx2 detects, loads and saves pictures and palettes in the file
formats of retro computers and old paint programs, and keeps a catalog of
the pictures found on disk.

Each format lives in its own package; this package ties them together in a
fixed table searched in priority order.
*/
package grafx2

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/picture"
)

// Engine loads and saves files on the local filesystem.
type Engine struct {
	catalog *Catalog
	logger  *log.Logger

	// ClearPalette zeroes the palette before loading.
	ClearPalette bool
}

// New returns an Engine. The catalog is only needed by Scan; a nil logger
// discards messages.
func New(catalog *Catalog, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		catalog: catalog,
		logger:  logger,
	}
}

func (e *Engine) source(file string, rs io.ReadSeeker) *codec.Source {
	return &codec.Source{
		ReadSeeker:   rs,
		Name:         filepath.Base(file),
		FS:           os.DirFS(filepath.Dir(file)),
		Logger:       e.logger,
		ClearPalette: e.ClearPalette,
	}
}

// DetectFile returns the format of file.
func (e *Engine) DetectFile(file string) (Format, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	format, ok := Detect(e.source(file, f))
	if !ok {
		return 0, errNoMatch
	}
	return format, nil
}

// LoadFile detects the format of file and loads it. Companion files are
// looked up in the same directory.
func (e *Engine) LoadFile(file string) (*picture.Picture, Format, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, 0, err
	}
	return e.load(file, b)
}

func (e *Engine) load(file string, b []byte) (*picture.Picture, Format, error) {
	src := e.source(file, bytes.NewReader(b))
	format, ok := Detect(src)
	if !ok {
		return nil, 0, errNoMatch
	}
	p := &picture.Picture{Transparent: picture.NoTransparency}
	if err := Load(src, format, p); err != nil {
		return nil, format, err
	}
	return p, format, nil
}

// SaveFile saves p to file as format f. When saving fails, file and any
// companion file written are removed.
func (e *Engine) SaveFile(file string, p *picture.Picture, f Format) (err error) {
	out, err := os.Create(file)
	if err != nil {
		return err
	}
	dir := filepath.Dir(file)
	dst := &codec.Sink{
		Writer: out,
		Name:   filepath.Base(file),
		Logger: e.logger,
		Create: func(name string) (io.WriteCloser, error) {
			return os.Create(filepath.Join(dir, filepath.FromSlash(name)))
		},
	}

	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			removeOutputs(dir, file, dst.Created(), e.logger)
		}
	}()

	return Save(dst, p, f)
}

func removeOutputs(dir, file string, companions []string, logger *log.Logger) {
	files := []string{file}
	for _, name := range companions {
		files = append(files, filepath.Join(dir, filepath.FromSlash(name)))
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Printf("Unable to remove \"%s\": %v\n", f, err)
		}
	}
}

var defaultEngine = New(nil, nil)

// LoadFile loads file with a default Engine.
func LoadFile(file string) (*picture.Picture, Format, error) {
	return defaultEngine.LoadFile(file)
}

// SaveFile saves p to file with a default Engine.
func SaveFile(file string, p *picture.Picture, f Format) error {
	return defaultEngine.SaveFile(file, p, f)
}
