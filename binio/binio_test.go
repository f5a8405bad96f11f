package binio

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteWords(t *testing.T) {
	var b bytes.Buffer
	w := NewWriter(&b)
	w.WordLE(0x3412)
	w.WordBE(0x5678)
	w.Byte(0x90)
	require.NoError(t, w.Err())
	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78, 0x90}, b.Bytes())
	assert.Equal(t, int64(5), w.Count())

	r := NewReader(bytes.NewReader(b.Bytes()))
	assert.Equal(t, byte(0x12), r.Byte())
	assert.Equal(t, uint16(0x3456), r.WordBE())
	assert.Equal(t, uint16(0x9078), r.WordLE())
	require.NoError(t, r.Err())
}

func TestReadWriteDwords(t *testing.T) {
	var b bytes.Buffer
	w := NewWriter(&b)
	w.DwordLE(0x78563412)
	w.DwordBE(0x9abcdef0)
	require.NoError(t, w.Err())

	r := NewReader(&b)
	assert.Equal(t, uint32(0x78563412), r.DwordLE())
	assert.Equal(t, uint32(0x9abcdef0), r.DwordBE())
	require.NoError(t, r.Err())
}

func TestShortReadIsSticky(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"one byte", []byte{1}},
		{"three bytes", []byte{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.input))
			r.DwordLE()
			assert.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)
			// Later reads must not succeed even if bytes remain
			assert.Equal(t, byte(0), r.Byte())
			assert.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)
		})
	}
}

type limitedWriter struct {
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if len(p) > l.n {
		n := l.n
		l.n = 0
		return n, errors.New("disk full")
	}
	l.n -= len(p)
	return len(p), nil
}

func TestShortWriteIsSticky(t *testing.T) {
	w := NewWriter(&limitedWriter{n: 3})
	w.DwordLE(1)
	require.Error(t, w.Err())
	first := w.Err()
	w.Byte(1)
	assert.Equal(t, first, w.Err())
	assert.Equal(t, int64(3), w.Count())
}

func TestSkipAndSize(t *testing.T) {
	rs := bytes.NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	n, err := Size(rs)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	r := NewReader(rs)
	require.NoError(t, r.Skip(6))
	assert.Equal(t, uint16(0x0706), r.WordLE())

	// Non-seeking readers are drained instead
	r = NewReader(io.MultiReader(bytes.NewReader([]byte{1, 2})))
	assert.ErrorIs(t, r.Skip(3), io.ErrUnexpectedEOF)
}

func TestSliceHelpers(t *testing.T) {
	b := make([]byte, 6)
	PutLE16(b, 1, 0xbeef)
	assert.Equal(t, uint16(0xbeef), LE16(b, 1))
	assert.Equal(t, uint16(0xefbe), BE16(b, 1))
	b[5] = 0x80
	assert.Equal(t, uint32(0x800000be), LE32(b, 2))
}
