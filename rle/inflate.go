package rle

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

const inflateStep = 64 << 10

// MaxInflate bounds the output of Inflate.
var MaxInflate = 64 << 20

// Inflate decompresses a zlib stream. The output buffer starts at 64 KiB
// and doubles until the whole stream fits; errTooLarge is returned once it
// would exceed MaxInflate.
func Inflate(src []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	buf := make([]byte, inflateStep)
	n := 0
	for {
		m, err := io.ReadFull(zr, buf[n:])
		n += m
		switch err {
		case io.EOF, io.ErrUnexpectedEOF:
			return buf[:n], nil
		case nil:
		default:
			return nil, err
		}
		if len(buf)*2 > MaxInflate {
			return nil, errTooLarge
		}
		grown := make([]byte, len(buf)*2)
		copy(grown, buf[:n])
		buf = grown
	}
}
