package rle

import (
	"bytes"
	"encoding/binary"
)

var mjhSignature = []byte("MJH")

const (
	mjhHeader   = 5
	mjhMaxBlock = 0x4000
)

// IsMJH reports whether src starts with an OCP Art Studio packed block.
func IsMJH(src []byte) bool {
	return len(src) >= mjhHeader && bytes.Equal(src[:3], mjhSignature) &&
		binary.LittleEndian.Uint16(src[3:]) <= mjhMaxBlock
}

// UnpackMJH expands OCP Art Studio "MJH" blocks from src into dst and returns
// the number of bytes written. Each block is "MJH", a 16-bit little-endian
// unpacked length, then codes: 0x01,count,value is a run (count 0 means
// 256), any other byte is a literal. Unpacking stops at the first block
// without a signature, when src is exhausted, or once 16 KiB are produced.
func UnpackMJH(dst, src []byte) int {
	n, i := 0, 0
	for i+mjhHeader <= len(src) && n < mjhMaxBlock {
		if !bytes.Equal(src[i:i+3], mjhSignature) {
			break
		}
		remaining := int(binary.LittleEndian.Uint16(src[i+3:]))
		i += mjhHeader
		for remaining > 0 && i < len(src) {
			code := src[i]
			i++
			if code != 1 {
				if n < len(dst) {
					dst[n] = code
				}
				n++
				remaining--
				continue
			}
			if i+2 > len(src) {
				return n
			}
			count, value := int(src[i]), src[i+1]
			i += 2
			if count == 0 {
				count = 256
			}
			for ; count > 0; count-- {
				if n < len(dst) {
					dst[n] = value
				}
				n++
				remaining--
			}
		}
	}
	if n > len(dst) {
		n = len(dst)
	}
	return n
}

// PackMJH packs src into a sequence of MJH blocks of at most 16 KiB
// each. Runs of three or more bytes, and the literal 0x01, are encoded as
// 0x01,count,value.
func PackMJH(src []byte) []byte {
	var b bytes.Buffer
	for start := 0; start < len(src); start += mjhMaxBlock {
		end := start + mjhMaxBlock
		if end > len(src) {
			end = len(src)
		}
		block := src[start:end]
		b.Write(mjhSignature)
		var length [2]byte
		binary.LittleEndian.PutUint16(length[:], uint16(len(block)))
		b.Write(length[:])
		for i := 0; i < len(block); {
			c := block[i]
			n := 1
			for i+n < len(block) && block[i+n] == c && n < 256 {
				n++
			}
			i += n
			if n < 3 && c != 1 {
				for ; n > 0; n-- {
					b.WriteByte(c)
				}
				continue
			}
			b.Write([]byte{1, byte(n), c})
		}
	}
	return b.Bytes()
}
