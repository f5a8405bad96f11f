/*
Package cpc implements the Amstrad CPC picture formats: OCP Art Studio
screens and windows (SCR and WIN, with their .PAL file), the iMPdraw and
HARLEY overscan variants, Graphos GO1/GO2/KIT, "Mode 5" CM5/GFX and Perfect
Pix PPH/ODD/EVE.

Files copied off a CPC disc often keep the 128 byte AMSDOS header in front
of their data. Every loader accepts files with or without it.
*/
package cpc

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Abhisheknishant/grafx2/codec"
)

// AMSDOSSize is the size of an AMSDOS file header.
const AMSDOSSize = 128

// AMSDOS file types.
const (
	TypeBASIC  = 0
	TypeBinary = 2
)

var errAMSDOSLength = fmt.Errorf("cpc: %w: file shorter than its AMSDOS header says", codec.ErrTruncated)

// AMSDOS is the header the CPC disc operating system writes in front of a
// file.
type AMSDOS struct {
	User        byte
	Name        string // 8.3, space padded, without the dot
	Type        byte
	LoadAddress uint16
	Length      uint16
	Entry       uint16
}

func amsdosChecksum(b []byte) uint16 {
	var sum uint16
	for _, c := range b[:67] {
		sum += uint16(c)
	}
	return sum
}

// UnmarshalBinary decodes an AMSDOS header. The file name must be printable
// and the checksum over the first 67 bytes must match.
func (h *AMSDOS) UnmarshalBinary(b []byte) error {
	if len(b) < AMSDOSSize {
		return codec.ErrTruncated
	}
	for _, c := range b[1:12] {
		if c < ' ' || c >= 0x7f {
			return fmt.Errorf("cpc: %w: bad AMSDOS file name", codec.ErrFormat)
		}
	}
	if amsdosChecksum(b) != binary.LittleEndian.Uint16(b[67:]) {
		return fmt.Errorf("cpc: %w: bad AMSDOS checksum", codec.ErrFormat)
	}
	h.User = b[0]
	h.Name = string(b[1:12])
	h.Type = b[18]
	h.LoadAddress = binary.LittleEndian.Uint16(b[21:])
	h.Length = binary.LittleEndian.Uint16(b[24:])
	h.Entry = binary.LittleEndian.Uint16(b[26:])
	return nil
}

// MarshalBinary encodes the header with a valid checksum.
func (h *AMSDOS) MarshalBinary() ([]byte, error) {
	b := make([]byte, AMSDOSSize)
	b[0] = h.User
	name := strings.ToUpper(h.Name)
	copy(b[1:12], "           ")
	copy(b[1:12], name)
	b[18] = h.Type
	binary.LittleEndian.PutUint16(b[21:], h.LoadAddress)
	binary.LittleEndian.PutUint16(b[24:], h.Length)
	binary.LittleEndian.PutUint16(b[26:], h.Entry)
	b[64] = byte(h.Length)
	b[65] = byte(h.Length >> 8)
	binary.LittleEndian.PutUint16(b[67:], amsdosChecksum(b))
	return b, nil
}

// AMSDOSName turns a file name into the 8.3 form stored in a header.
func AMSDOSName(name string) string {
	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		base, ext = name[:i], name[i+1:]
	}
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	pad := func(s string, n int) string {
		if len(s) > n {
			s = s[:n]
		}
		return s + strings.Repeat(" ", n-len(s))
	}
	return strings.ToUpper(pad(base, 8) + pad(ext, 3))
}

// splitAMSDOS returns the header of b, if it has a valid one, and the file
// contents that follow it. Contents are cut to the length recorded in the
// header.
func splitAMSDOS(b []byte) (*AMSDOS, []byte, error) {
	var h AMSDOS
	if h.UnmarshalBinary(b) != nil {
		return nil, b, nil
	}
	data := b[AMSDOSSize:]
	if len(data) < int(h.Length) {
		return &h, nil, errAMSDOSLength
	}
	return &h, data[:h.Length], nil
}

// dataSize returns the size of the contents of b, after any AMSDOS header.
func dataSize(b []byte) int {
	var h AMSDOS
	if h.UnmarshalBinary(b) != nil {
		return len(b)
	}
	return int(h.Length)
}

// companion reads a companion file and strips its AMSDOS header.
func companion(src *codec.Source, ext string) ([]byte, error) {
	b, err := src.Companion(ext)
	if err != nil {
		return nil, err
	}
	_, data, err := splitAMSDOS(b)
	return data, err
}
