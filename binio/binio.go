/*
Package binio implements the endian-aware fixed-width reads and writes used by
every format codec.

Errors are sticky. Once a read or write fails every later call on the same
Reader or Writer does nothing and Err reports the first failure, so a codec
can issue a run of reads and check the result once. A stream that ends before
a value is complete always reports io.ErrUnexpectedEOF, even when no byte of
the value could be read.
*/
package binio

import (
	"encoding/binary"
	"io"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// Reader reads fixed-width values from an underlying io.Reader.
type Reader struct {
	r   io.Reader
	err error
	n   int64

	tmp [4]byte
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Count returns the number of bytes successfully consumed.
func (r *Reader) Count() int64 {
	return r.n
}

// Full fills b completely.
func (r *Reader) Full(b []byte) error {
	if r.err != nil {
		return r.err
	}
	if r.err = readFull(r.r, b); r.err == nil {
		r.n += int64(len(b))
	}
	return r.err
}

// Bytes reads and returns the next n bytes.
func (r *Reader) Bytes(n int) []byte {
	b := make([]byte, n)
	if r.Full(b) != nil {
		return nil
	}
	return b
}

// Skip discards the next n bytes.
func (r *Reader) Skip(n int64) error {
	if r.err != nil {
		return r.err
	}
	if s, ok := r.r.(io.Seeker); ok {
		if _, r.err = s.Seek(n, io.SeekCurrent); r.err == nil {
			r.n += n
		}
		return r.err
	}
	m, err := io.CopyN(io.Discard, r.r, n)
	r.n += m
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	r.err = err
	return r.err
}

// Byte reads a single byte.
func (r *Reader) Byte() byte {
	if r.Full(r.tmp[:1]) != nil {
		return 0
	}
	return r.tmp[0]
}

// WordLE reads a little-endian 16-bit value.
func (r *Reader) WordLE() uint16 {
	if r.Full(r.tmp[:2]) != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(r.tmp[:2])
}

// WordBE reads a big-endian 16-bit value.
func (r *Reader) WordBE() uint16 {
	if r.Full(r.tmp[:2]) != nil {
		return 0
	}
	return binary.BigEndian.Uint16(r.tmp[:2])
}

// DwordLE reads a little-endian 32-bit value.
func (r *Reader) DwordLE() uint32 {
	if r.Full(r.tmp[:4]) != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.tmp[:4])
}

// DwordBE reads a big-endian 32-bit value.
func (r *Reader) DwordBE() uint32 {
	if r.Full(r.tmp[:4]) != nil {
		return 0
	}
	return binary.BigEndian.Uint32(r.tmp[:4])
}

// Writer writes fixed-width values to an underlying io.Writer.
type Writer struct {
	w   io.Writer
	err error
	n   int64

	tmp [4]byte
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Count returns the number of bytes successfully written.
func (w *Writer) Count() int64 {
	return w.n
}

// Bytes writes b.
func (w *Writer) Bytes(b []byte) error {
	if w.err != nil {
		return w.err
	}
	n, err := w.w.Write(b)
	w.n += int64(n)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	w.err = err
	return w.err
}

// String writes s without any terminator.
func (w *Writer) String(s string) error {
	return w.Bytes([]byte(s))
}

// Repeat writes n copies of b.
func (w *Writer) Repeat(b byte, n int) error {
	for ; n > 0 && w.err == nil; n-- {
		w.Byte(b)
	}
	return w.err
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) error {
	w.tmp[0] = b
	return w.Bytes(w.tmp[:1])
}

// WordLE writes a little-endian 16-bit value.
func (w *Writer) WordLE(v uint16) error {
	binary.LittleEndian.PutUint16(w.tmp[:2], v)
	return w.Bytes(w.tmp[:2])
}

// WordBE writes a big-endian 16-bit value.
func (w *Writer) WordBE(v uint16) error {
	binary.BigEndian.PutUint16(w.tmp[:2], v)
	return w.Bytes(w.tmp[:2])
}

// DwordLE writes a little-endian 32-bit value.
func (w *Writer) DwordLE(v uint32) error {
	binary.LittleEndian.PutUint32(w.tmp[:4], v)
	return w.Bytes(w.tmp[:4])
}

// DwordBE writes a big-endian 32-bit value.
func (w *Writer) DwordBE(v uint32) error {
	binary.BigEndian.PutUint32(w.tmp[:4], v)
	return w.Bytes(w.tmp[:4])
}

// Size returns the total length of s, leaving the current position
// unchanged.
func Size(s io.Seeker) (int64, error) {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// LE16 returns the little-endian 16-bit value at b[off:].
func LE16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off:])
}

// BE16 returns the big-endian 16-bit value at b[off:].
func BE16(b []byte, off int) uint16 {
	return binary.BigEndian.Uint16(b[off:])
}

// LE32 returns the little-endian 32-bit value at b[off:].
func LE32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

// PutLE16 stores v little-endian at b[off:].
func PutLE16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:], v)
}
