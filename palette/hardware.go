package palette

// C64 is the 16 color VIC-II palette.
var C64 = [16]RGB{
	{0x00, 0x00, 0x00},
	{0xff, 0xff, 0xff},
	{0x88, 0x00, 0x00},
	{0xaa, 0xff, 0xee},
	{0xcc, 0x44, 0xcc},
	{0x00, 0xcc, 0x55},
	{0x00, 0x00, 0xaa},
	{0xee, 0xee, 0x77},
	{0xdd, 0x88, 0x55},
	{0x66, 0x44, 0x00},
	{0xff, 0x77, 0x77},
	{0x33, 0x33, 0x33},
	{0x77, 0x77, 0x77},
	{0xaa, 0xff, 0x66},
	{0x00, 0x88, 0xff},
	{0xbb, 0xbb, 0xbb},
}

// SetC64 copies the C64 palette into the first 16 entries of p.
func (p *Palette) SetC64() {
	copy(p[:], C64[:])
}

// CPCHardwareBase is where SetCPCHardware places the gate array colors so
// that a palette index equals the hardware color number.
const CPCHardwareBase = 0x40

// Amstrad gate array levels.
const (
	cpcOff  = 0x00
	cpcHalf = 0x80
	cpcFull = 0xff
)

// CPCHardware holds the 32 gate array colors in hardware number order
// (0x40 to 0x5f).
var CPCHardware = [32]RGB{
	{cpcHalf, cpcHalf, cpcHalf},
	{cpcHalf, cpcHalf, cpcHalf},
	{cpcOff, cpcFull, cpcHalf},
	{cpcFull, cpcFull, cpcHalf},
	{cpcOff, cpcOff, cpcHalf},
	{cpcFull, cpcOff, cpcHalf},
	{cpcOff, cpcHalf, cpcHalf},
	{cpcFull, cpcHalf, cpcHalf},
	{cpcFull, cpcOff, cpcHalf},
	{cpcFull, cpcFull, cpcHalf},
	{cpcFull, cpcFull, cpcOff},
	{cpcFull, cpcFull, cpcFull},
	{cpcFull, cpcOff, cpcOff},
	{cpcFull, cpcOff, cpcFull},
	{cpcFull, cpcHalf, cpcOff},
	{cpcFull, cpcHalf, cpcFull},
	{cpcOff, cpcOff, cpcHalf},
	{cpcOff, cpcFull, cpcHalf},
	{cpcOff, cpcFull, cpcOff},
	{cpcOff, cpcFull, cpcFull},
	{cpcOff, cpcOff, cpcOff},
	{cpcOff, cpcOff, cpcFull},
	{cpcOff, cpcHalf, cpcOff},
	{cpcOff, cpcHalf, cpcFull},
	{cpcHalf, cpcOff, cpcHalf},
	{cpcHalf, cpcFull, cpcHalf},
	{cpcHalf, cpcFull, cpcOff},
	{cpcHalf, cpcFull, cpcFull},
	{cpcHalf, cpcOff, cpcOff},
	{cpcHalf, cpcOff, cpcFull},
	{cpcHalf, cpcHalf, cpcOff},
	{cpcHalf, cpcHalf, cpcFull},
}

// SetCPCHardware copies the gate array colors to p[0x40:0x60].
func (p *Palette) SetCPCHardware() {
	copy(p[CPCHardwareBase:], CPCHardware[:])
}

// CPCFirmwareToHardware maps the 27 firmware ink numbers to gate array
// color numbers.
var CPCFirmwareToHardware = [27]byte{
	0x54, 0x44, 0x55, 0x5c, 0x58, 0x5d, 0x4c, 0x45, 0x4d,
	0x56, 0x46, 0x57, 0x5e, 0x40, 0x5f, 0x4e, 0x47, 0x4f,
	0x52, 0x42, 0x53, 0x5a, 0x59, 0x5b, 0x4a, 0x43, 0x4b,
}

// CPCFirmware returns firmware color n (0-26). Firmware numbers encode the
// three levels of each gun as n = 9*G + 3*R + B.
func CPCFirmware(n int) RGB {
	level := [3]uint8{cpcOff, cpcHalf, cpcFull}
	return RGB{level[(n/3)%3], level[n/9], level[n%3]}
}

// HGR holds the Apple II hi-res colors. Entries 0-3 are used when the high
// bit of a byte is clear, 4-7 when it is set.
var HGR = [8]RGB{
	{0x00, 0x00, 0x00},
	{0x14, 0xf5, 0x3c},
	{0xff, 0x44, 0xfd},
	{0xff, 0xff, 0xff},
	{0x00, 0x00, 0x00},
	{0xff, 0x6a, 0x3c},
	{0x14, 0xcf, 0xfd},
	{0xff, 0xff, 0xff},
}

// SetHGR copies the hi-res colors to the first 8 entries of p.
func (p *Palette) SetHGR() {
	copy(p[:], HGR[:])
}

// DHGR holds the Apple II double hi-res colors indexed by the 4-bit pattern
// of a pixel group.
var DHGR = [16]RGB{
	{0x00, 0x00, 0x00},
	{0x90, 0x17, 0x40},
	{0x40, 0x2c, 0xa5},
	{0xd0, 0x43, 0xe5},
	{0x00, 0x69, 0x40},
	{0x80, 0x80, 0x80},
	{0x2f, 0x95, 0xe5},
	{0xbf, 0xab, 0xff},
	{0x40, 0x54, 0x00},
	{0xd0, 0x6a, 0x1a},
	{0x80, 0x80, 0x80},
	{0xff, 0x96, 0xbf},
	{0x2f, 0xbc, 0x1a},
	{0xbf, 0xd3, 0x5a},
	{0x6f, 0xe8, 0xbf},
	{0xff, 0xff, 0xff},
}

// SetDHGR copies the double hi-res colors to the first 16 entries of p and a
// monochrome ramp to the next 16, black at 16 and white at 31.
func (p *Palette) SetDHGR() {
	copy(p[:], DHGR[:])
	for i := 0; i < 16; i++ {
		v := uint8(i * 17)
		p[16+i] = RGB{v, v, v}
	}
}
