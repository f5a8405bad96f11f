package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcePeek(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte("abcdef")))
	_, err := src.Seek(2, io.SeekStart)
	require.NoError(t, err)

	assert.Equal(t, []byte("abcd"), src.Peek(4))
	assert.Equal(t, []byte("abcdef"), src.Peek(10))
	assert.Equal(t, int64(6), src.Size())

	pos, err := src.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)

	b, err := src.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), b)
}

func TestSourceCompanion(t *testing.T) {
	fsys := fstest.MapFS{
		"dir/pic.PAL": {Data: []byte{1}},
		"dir/pic.gfx": {Data: []byte{2}},
	}
	src := &Source{ReadSeeker: bytes.NewReader(nil), Name: "dir/pic.scr", FS: fsys}

	tests := []struct {
		ext  string
		want []byte
		err  error
	}{
		{"pal", []byte{1}, nil},
		{"GFX", []byte{2}, nil},
		{"kit", nil, ErrNoCompanion},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			b, err := src.Companion(tt.ext)
			assert.Equal(t, tt.want, b)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := NewSource(bytes.NewReader(nil)).Companion("pal")
	assert.ErrorIs(t, err, ErrNoCompanion)
}

type closer struct {
	bytes.Buffer
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestSinkCompanion(t *testing.T) {
	files := make(map[string]*closer)
	dst := &Sink{
		Writer: io.Discard,
		Name:   "pic.CM5",
		Create: func(name string) (io.WriteCloser, error) {
			if name == "pic.bad" {
				return nil, errors.New("denied")
			}
			files[name] = new(closer)
			return files[name], nil
		},
	}

	require.NoError(t, dst.WriteCompanion("GFX", []byte("pixels")))
	require.Contains(t, files, "pic.gfx")
	assert.Equal(t, "pixels", files["pic.gfx"].String())
	assert.True(t, files["pic.gfx"].closed)

	assert.Error(t, dst.WriteCompanion("bad", nil))
	assert.Equal(t, []string{"pic.gfx"}, dst.Created())

	assert.ErrorIs(t, NewSink(io.Discard).WriteCompanion("pal", nil), ErrNoCompanion)
}
