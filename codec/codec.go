/*
Package codec holds what every format unit shares: the streams it reads from
and writes to, and the error kinds it reports.

A Source wraps the stream being loaded together with the means to open
companion files (an Amstrad .PAL next to a .SCR, for instance). A Sink wraps
the stream being saved and records every companion file it creates so the
caller can remove them all when a save fails.
*/
package codec

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/Abhisheknishant/grafx2/binio"
)

// Error kinds. Format packages wrap these so callers can use errors.Is.
var (
	// ErrTruncated means a required byte range could not be read.
	ErrTruncated = io.ErrUnexpectedEOF
	// ErrFormat means the data failed a structural consistency rule.
	ErrFormat = errors.New("format mismatch")
	// ErrConstraint means the picture cannot be represented by the format.
	ErrConstraint = errors.New("picture not representable")
	// ErrResource means an allocation limit was exceeded.
	ErrResource = errors.New("resource limit exceeded")
	// ErrUnsupported means the format has no saver.
	ErrUnsupported = errors.New("operation not supported")
	// ErrNoCompanion means a required companion file is missing.
	ErrNoCompanion = errors.New("companion file not found")
)

var discard = log.New(io.Discard, "", 0)

// Source is a stream to detect or load.
type Source struct {
	io.ReadSeeker

	// Name is the slash separated path of the file within FS. Companion
	// files are looked up by replacing its extension.
	Name string
	// FS is used to open companion files. Companions are unavailable when
	// nil.
	FS fs.FS
	// Logger receives diagnostics; nil discards them.
	Logger *log.Logger
	// ClearPalette zeroes the palette before a loader fills it.
	ClearPalette bool
}

// NewSource returns a Source reading rs with no companions.
func NewSource(rs io.ReadSeeker) *Source {
	return &Source{ReadSeeker: rs}
}

// Logf logs a diagnostic message.
func (s *Source) Logf(format string, v ...interface{}) {
	if s.Logger == nil {
		discard.Printf(format, v...)
		return
	}
	s.Logger.Printf(format, v...)
}

// Size returns the stream length without moving the read position.
func (s *Source) Size() int64 {
	n, err := binio.Size(s)
	if err != nil {
		return 0
	}
	return n
}

// Peek returns up to n bytes from the start of the stream and restores the
// read position. It returns fewer bytes when the stream is shorter, and nil
// if the stream cannot be repositioned.
func (s *Source) Peek(n int) []byte {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil
	}
	defer s.Seek(cur, io.SeekStart)
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	b := make([]byte, n)
	m, _ := io.ReadFull(s, b)
	return b[:m]
}

// ReadAll returns the whole stream, starting from offset 0.
func (s *Source) ReadAll() ([]byte, error) {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(s)
}

// Rewind positions the stream at offset 0 and returns a binio.Reader on it.
func (s *Source) Rewind() (*binio.Reader, error) {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return binio.NewReader(s), nil
}

func alternateNames(name, ext string) []string {
	base := strings.TrimSuffix(name, path.Ext(name))
	return []string{
		base + "." + strings.ToLower(ext),
		base + "." + strings.ToUpper(ext),
	}
}

// Companion returns the contents of the file named like the source but with
// extension ext. Both lower and upper case extensions are tried.
func (s *Source) Companion(ext string) ([]byte, error) {
	if s.FS == nil || s.Name == "" {
		return nil, ErrNoCompanion
	}
	for _, name := range alternateNames(s.Name, ext) {
		b, err := fs.ReadFile(s.FS, name)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, ErrNoCompanion
}

// Sink is a stream to save to.
type Sink struct {
	io.Writer

	// Name is the path of the main file; companion names derive from it.
	Name string
	// Create opens a companion file for writing. Companions cannot be
	// written when nil.
	Create func(name string) (io.WriteCloser, error)
	// Logger receives diagnostics; nil discards them.
	Logger *log.Logger

	created []string
}

// NewSink returns a Sink writing to w with no companions.
func NewSink(w io.Writer) *Sink {
	return &Sink{Writer: w}
}

// Logf logs a diagnostic message.
func (s *Sink) Logf(format string, v ...interface{}) {
	if s.Logger == nil {
		discard.Printf(format, v...)
		return
	}
	s.Logger.Printf(format, v...)
}

// WriteCompanion writes b to the file named like the sink but with
// extension ext in lower case.
func (s *Sink) WriteCompanion(ext string, b []byte) error {
	if s.Create == nil || s.Name == "" {
		return ErrNoCompanion
	}
	name := alternateNames(s.Name, ext)[0]
	f, err := s.Create(name)
	if err != nil {
		return err
	}
	s.created = append(s.created, name)
	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Created lists the companion files written so far.
func (s *Sink) Created() []string {
	return s.created
}
