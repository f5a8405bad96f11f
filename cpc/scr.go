package cpc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Abhisheknishant/grafx2/binio"
	"github.com/Abhisheknishant/grafx2/codec"
	"github.com/Abhisheknishant/grafx2/palette"
	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/Abhisheknishant/grafx2/raster"
	"github.com/Abhisheknishant/grafx2/rle"
)

// Load addresses with a known meaning.
const (
	addrOCP     = 0x4000
	addrIMPdraw = 0x170
	addrHarley  = 0x200
	addrScreen  = 0xc000
)

const (
	ramSize       = 0x10000
	maxScreenSize = 0x8000
	overscanSize  = 30000
	palFileSize   = 239
	palInks       = 16
	palFrames     = 12
	borderBlack   = 0x54
)

var (
	errMode     = fmt.Errorf("cpc: %w: unknown screen mode", codec.ErrFormat)
	errNoMode   = fmt.Errorf("cpc: %w: screen mode unknown without a .PAL file", codec.ErrNoCompanion)
	errPalFile  = fmt.Errorf("cpc: %w: bad .PAL file", codec.ErrFormat)
	errPixel    = fmt.Errorf("cpc: %w: color index too large for the screen mode", codec.ErrConstraint)
	errTooWide  = fmt.Errorf("cpc: %w: picture does not fit in 32 KiB of screen memory", codec.ErrConstraint)
	errNoPixels = fmt.Errorf("cpc: %w: no pixel data", codec.ErrFormat)
)

// PalFile is the OCP Art Studio palette file saved next to a SCR. Inks
// hold hardware color numbers for each of the 12 animation frames.
type PalFile struct {
	Mode          byte
	AnimationFlag byte
	Delay         byte
	Inks          [palInks][palFrames]byte
	Border        [palFrames]byte
	Excluded      [16]byte
	Protected     [16]byte
}

// UnmarshalBinary decodes a palette file with its AMSDOS header removed.
func (f *PalFile) UnmarshalBinary(b []byte) error {
	r := binio.NewReader(bytes.NewReader(b))
	f.Mode = r.Byte()
	f.AnimationFlag = r.Byte()
	f.Delay = r.Byte()
	for i := range f.Inks {
		r.Full(f.Inks[i][:])
	}
	r.Full(f.Border[:])
	r.Full(f.Excluded[:])
	r.Full(f.Protected[:])
	return r.Err()
}

// MarshalBinary encodes the palette file.
func (f *PalFile) MarshalBinary() ([]byte, error) {
	var b bytes.Buffer
	w := binio.NewWriter(&b)
	w.Byte(f.Mode)
	w.Byte(f.AnimationFlag)
	w.Byte(f.Delay)
	for i := range f.Inks {
		w.Bytes(f.Inks[i][:])
	}
	w.Bytes(f.Border[:])
	w.Bytes(f.Excluded[:])
	w.Bytes(f.Protected[:])
	return b.Bytes(), w.Err()
}

func (f *PalFile) valid() bool {
	return f.Mode <= 2 && (f.AnimationFlag == 0 || f.AnimationFlag == 0xff)
}

// DetectSCR reports whether src is an OCP Art Studio screen or window.
// Files with an AMSDOS header loading at the iMPdraw address, or at &200 or
// &C000 with more than 16000 bytes, are accepted on their own; anything else
// needs a valid .PAL file next to it.
func DetectSCR(src *codec.Source) bool {
	var h AMSDOS
	size := src.Size()
	if h.UnmarshalBinary(src.Peek(AMSDOSSize)) == nil {
		switch {
		case h.LoadAddress == addrIMPdraw:
			return true
		case (h.LoadAddress == addrHarley || h.LoadAddress == addrScreen) && h.Length > 16000:
			return true
		}
		size = int64(h.Length)
	}
	if size < 2 || size > maxScreenSize {
		return false
	}
	b, err := companion(src, "pal")
	if err != nil || len(b) != palFileSize {
		return false
	}
	var f PalFile
	return f.UnmarshalBinary(b) == nil && f.valid()
}

// screen is the state gathered before decoding pixels.
type screen struct {
	ram          []byte
	loadAddress  int
	displayStart int
	length       int
	mode         int
	columns      int
	height       int
	win          bool
	inks         [palInks]byte
	plus         []byte
	comment      string
}

func (s *screen) at(addr int) byte {
	return s.ram[addr&0xffff]
}

// crtc applies 6845 register values stored as register, value pairs from
// addr on, stopping at the first byte outside 1..15 (or 0..15 when zero is
// allowed).
func (s *screen) crtc(src *codec.Source, addr int, allowZero bool, keepLow bool) {
	for ; ; addr += 2 {
		reg := s.at(addr)
		if reg >= 16 || (reg == 0 && !allowZero) {
			return
		}
		v := int(s.at(addr + 1))
		src.Logf("cpc: R%d = &%02X", reg, v)
		switch reg {
		case 1:
			s.columns = v * 2
		case 6:
			s.height = v * 8
		case 12:
			page := (v&0x30)<<10 | (v&0x03)<<9
			if keepLow {
				s.displayStart = s.displayStart&0x00ff | page
			} else {
				s.displayStart = page
			}
		case 13:
			if keepLow {
				s.displayStart = s.displayStart&0xff00 | v
			}
		}
	}
}

// cString returns the NUL terminated string at addr.
func (s *screen) cString(addr int) string {
	var b []byte
	for c := s.at(addr); c != 0 && len(b) < 64; c = s.at(addr) {
		b = append(b, c)
		addr++
	}
	return string(b)
}

func (s *screen) impdraw(src *codec.Source) {
	base := s.loadAddress
	src.Logf("cpc: iMPdraw file %q", s.cString(base+6))
	s.mode = int(s.at(base+0x14)) - 0x0e
	plus := s.at(base + 0x3c)
	s.crtc(src, base+0x1d, true, false)
	s.comment = fmt.Sprintf("%s mode %d", s.cString(base+7), s.mode)
	if plus != 0 {
		s.comment += " CPC+"
		s.plus = s.ram[0x801 : 0x801+2*palInks]
		return
	}
	copy(s.inks[:], s.ram[0x7f00:0x7f00+palInks])
}

func (s *screen) harley(src *codec.Source) {
	s.mode = int(s.ram[0x800])
	for i := range s.inks {
		if n := int(s.ram[0x801+i]); n < len(palette.CPCFirmwareToHardware) {
			s.inks[i] = palette.CPCFirmwareToHardware[n]
		}
	}
	addr := 0x847
	if s.ram[0x80bb] == 1 {
		addr = 0x80bb
	}
	s.crtc(src, addr, false, true)
}

// geometry works out the layout of the unpacked data: a WIN file ends with
// its width in bits and its height, anything else is a CRTC screen.
func (s *screen) geometry(src *codec.Source) {
	n := s.length
	if n <= 5 {
		return
	}
	end := s.loadAddress + n
	winWidth := int(s.at(end-4)) | int(s.at(end-3))<<8
	winHeight := int(s.at(end - 2))
	if ((winWidth+7)>>3)*winHeight+5 == n {
		s.win = true
		s.columns = (winWidth + 7) >> 3
		s.height = winHeight
		s.displayStart = s.loadAddress
		src.Logf("cpc: WIN file %d bits x %d lines", winWidth, winHeight)
		return
	}
	switch s.loadAddress {
	case addrIMPdraw:
		s.impdraw(src)
	case addrHarley:
		s.harley(src)
	}
	if n >= overscanSize {
		s.height, s.columns = 272, 96
	}
}

// LoadSCR decodes an OCP Art Studio screen or window into p.
func LoadSCR(src *codec.Source, p *picture.Picture) error {
	s := screen{
		ram:          make([]byte, ramSize),
		loadAddress:  addrOCP,
		displayStart: addrOCP,
		mode:         -1,
		columns:      80,
		height:       200,
	}

	b, err := companion(src, "pal")
	switch {
	case err == nil:
		var f PalFile
		if err := f.UnmarshalBinary(b); err != nil {
			return errPalFile
		}
		src.Logf("cpc: mode=%d color animation flag=%02X delay=%d", f.Mode, f.AnimationFlag, f.Delay)
		s.mode = int(f.Mode)
		for i := range s.inks {
			s.inks[i] = f.Inks[i][0]
		}
	case !errors.Is(err, codec.ErrNoCompanion):
		return err
	}

	raw, err := src.ReadAll()
	if err != nil {
		return err
	}
	h, data, err := splitAMSDOS(raw)
	if err != nil {
		return err
	}
	if h != nil {
		s.loadAddress = int(h.LoadAddress)
		s.displayStart = s.loadAddress
		if extra := len(raw) - AMSDOSSize - int(h.Length); extra > 0 {
			src.Logf("cpc: %d extra bytes at end of file", extra)
		}
	}
	if len(data) == 0 {
		return errNoPixels
	}

	if rle.IsMJH(data) {
		s.length = rle.UnpackMJH(s.ram[s.loadAddress:], data)
		src.Logf("cpc: unpacked %d bytes of MJH data", s.length)
	} else {
		s.length = copy(s.ram[s.loadAddress:], data)
	}
	s.geometry(src)

	if s.mode < 0 {
		return errNoMode
	}
	if s.mode > 2 {
		return errMode
	}
	ratio := [3]picture.Ratio{picture.RatioWide, picture.RatioSimple, picture.RatioTall}[s.mode]
	width := s.columns * raster.PixelsPerByte(s.mode)
	if err := p.PreLoad(width, s.height, 1, 4>>uint(s.mode), ratio); err != nil {
		return err
	}
	if s.comment != "" {
		p.SetComment(s.comment)
	}

	if src.ClearPalette {
		p.Palette = palette.Palette{}
	}
	p.Palette.SetCPCHardware()
	if s.plus != nil {
		for i := 0; i < palInks; i++ {
			rb, g := s.plus[i*2], s.plus[i*2+1]
			p.Palette[i] = palette.RGB{R: (rb >> 4) * 0x11, G: (g & 15) * 0x11, B: (rb & 15) * 0x11}
		}
	} else {
		for i, ink := range s.inks {
			p.Palette[i] = p.Palette[ink]
		}
	}

	for y := 0; y < s.height; y++ {
		addr := s.displayStart + y*s.columns
		if !s.win {
			addr = raster.CPCAddress(s.displayStart, s.columns, y)
		}
		x := 0
		for i := 0; i < s.columns; i++ {
			for _, c := range raster.CPCDecode(s.mode, s.at(addr+i)) {
				p.SetPixel(0, x, y, c)
				x++
			}
		}
	}
	return nil
}

// SCROptions control how SaveSCRWith lays out the screen file.
type SCROptions struct {
	// Mode is the CPC screen mode, 0 to 2.
	Mode int
	// Pack compresses the screen with MJH blocks.
	Pack bool
	// AMSDOS prepends a header loading the screen at &C000.
	AMSDOS bool
}

// DefaultSCROptions picks the screen mode from the pixel ratio: wide pixels
// are mode 0, tall pixels mode 2 and square pixels mode 1.
func DefaultSCROptions(p *picture.Picture) SCROptions {
	switch p.Ratio {
	case picture.RatioWide:
		return SCROptions{Mode: 0}
	case picture.RatioTall:
		return SCROptions{Mode: 2}
	default:
		return SCROptions{Mode: 1}
	}
}

// SaveSCR writes p as an unpacked screen and its .PAL file using
// DefaultSCROptions.
func SaveSCR(dst *codec.Sink, p *picture.Picture) error {
	return SaveSCRWith(dst, p, DefaultSCROptions(p))
}

// levels quantizes a color to the three gun levels of the gate array.
func levels(c palette.RGB) [3]uint8 {
	l := func(v uint8) uint8 { return v / 0x56 }
	return [3]uint8{l(c.R), l(c.G), l(c.B)}
}

// hardwareInk returns the hardware color number of palette entry i, looked
// up among the gate array colors at 0x40-0x5F.
func hardwareInk(p *picture.Picture, i int) (byte, bool) {
	want := levels(p.Palette[i])
	for n := palette.CPCHardwareBase; n < palette.CPCHardwareBase+len(palette.CPCHardware); n++ {
		if levels(p.Palette[n]) == want {
			return byte(n), true
		}
	}
	return 0, false
}

// palFile builds the .PAL file for p. Colors missing from the hardware
// palette fall back to a default ink.
func palFile(dst *codec.Sink, p *picture.Picture, mode int) *PalFile {
	f := &PalFile{Mode: byte(mode)}
	for i := range f.Inks {
		ink, ok := hardwareInk(p, i)
		if !ok {
			dst.Logf("cpc: color #%d not found in the CPC hardware palette", i)
			ink = byte(borderBlack - i)
		}
		for j := range f.Inks[i] {
			f.Inks[i][j] = ink
		}
	}
	for j := range f.Border {
		f.Border[j] = borderBlack
	}
	return f
}

// crtcScreen lays out layer 0 of p the way the CRTC reads it from a screen
// starting at offset 0. Screens of up to 2 KiB per character line fill
// 16 KiB, larger ones 32 KiB.
func crtcScreen(p *picture.Picture, mode int) ([]byte, int, error) {
	ppb := raster.PixelsPerByte(mode)
	columns := (p.Width + ppb - 1) / ppb
	rows := (p.Height + 7) >> 3
	size := 0x4000
	switch {
	case columns*rows > 0x1000 || columns > 0xff*2:
		return nil, 0, errTooWide
	case columns*rows > 0x800:
		size = 0x8000
	}
	limit := byte(1) << uint(8/ppb)
	linear := make([]byte, columns*p.Height)
	px := make([]byte, ppb)
	for y := 0; y < p.Height; y++ {
		for i := 0; i < columns; i++ {
			for j := range px {
				c := p.Pixel(0, i*ppb+j, y)
				if c >= limit {
					return nil, 0, errPixel
				}
				px[j] = c
			}
			linear[y*columns+i] = raster.CPCEncode(mode, px)
		}
	}
	ram := make([]byte, ramSize)
	raster.CPCScramble(ram, linear, 0, columns, p.Height)
	return ram[:size], columns, nil
}

// SaveSCRWith writes p as a CPC screen and its .PAL file.
func SaveSCRWith(dst *codec.Sink, p *picture.Picture, opts SCROptions) error {
	if opts.Mode < 0 || opts.Mode > 2 {
		return errMode
	}
	scr, columns, err := crtcScreen(p, opts.Mode)
	if err != nil {
		return err
	}
	dst.Logf("cpc: mode %d, %d bytes, R1=&%02X", opts.Mode, len(scr), columns/2)

	pal, err := palFile(dst, p, opts.Mode).MarshalBinary()
	if err != nil {
		return err
	}
	if err := dst.WriteCompanion("pal", pal); err != nil {
		return err
	}

	if opts.Pack {
		scr = rle.PackMJH(scr)
	}
	w := binio.NewWriter(dst)
	if opts.AMSDOS {
		h := AMSDOS{
			Name:        AMSDOSName(dst.Name),
			Type:        TypeBinary,
			LoadAddress: addrScreen,
			Length:      uint16(len(scr)),
		}
		b, _ := h.MarshalBinary()
		w.Bytes(b)
	}
	w.Bytes(scr)
	return w.Err()
}
