package c64

import "fmt"

// region is a byte range of an unpacked file. A zero length region is
// absent.
type region struct {
	off, n int
}

func (r region) present() bool {
	return r.n > 0
}

// view returns the bytes of r within buf, failing when r does not fit.
func (r region) view(buf []byte) ([]byte, error) {
	if r.off < 0 || r.off+r.n > len(buf) {
		return nil, fmt.Errorf("c64: %w: region %d+%d outside %d byte file", errLayout, r.off, r.n, len(buf))
	}
	return buf[r.off : r.off+r.n], nil
}

// layout describes where one C64 program stores its picture data. Layouts
// are matched on the exact unpacked size and, when addr is set, on the
// load address.
type layout struct {
	size     int
	addr     uint16
	name     string
	loadAddr bool
	format   Format
	// unpacked layouts only result from unpacking a compressed file.
	unpacked bool

	bitmap, screen, color, background region
	// colorFill is a single byte replicated over the whole color RAM.
	colorFill region
}

const (
	bitmapSize    = 8000
	screenSize    = 1000
	fliScreenSize = 8192
	fliLines      = 200
)

func hires(off int) region      { return region{off, bitmapSize} }
func screen(off int) region     { return region{off, screenSize} }
func single(off int) region     { return region{off, 1} }
func fliScreens(off int) region { return region{off, fliScreenSize} }
func fliBack(off int) region    { return region{off, fliLines} }

// layouts lists every known layout in matching order.
var layouts = []layout{
	{size: 8000, name: "raw bitmap", format: FormatBitmap, bitmap: hires(0)},
	{size: 8002, name: "raw bitmap", loadAddr: true, format: FormatBitmap, bitmap: hires(2)},
	{size: 9000, name: "hires", format: FormatHires, bitmap: hires(0), screen: screen(8000)},
	{size: 9002, name: "InterPaint hires", loadAddr: true, format: FormatHires, bitmap: hires(2), screen: screen(8002)},
	{size: 9003, name: "hires", loadAddr: true, format: FormatHires, bitmap: hires(2), screen: screen(8002)},
	{size: 9009, name: "Art Studio", loadAddr: true, format: FormatHires, bitmap: hires(2), screen: screen(8002)},
	{size: 9024, unpacked: true, name: "Doodle", format: FormatHires, screen: screen(0), bitmap: hires(1024)},
	{size: 9216, unpacked: true, name: "Doodle", format: FormatHires, screen: screen(0), bitmap: hires(1024)},
	{size: 9218, name: "Doodle", loadAddr: true, format: FormatHires, screen: screen(2), bitmap: hires(1026)},
	{size: 9332, name: "Paint Magic", loadAddr: true, format: FormatMulti,
		bitmap: hires(116), background: single(8116), colorFill: single(8119), screen: screen(8308)},
	{size: 10001, name: "Koala", format: FormatMulti,
		bitmap: hires(0), screen: screen(8000), color: screen(9000), background: single(10000)},
	{size: 10070, unpacked: true, name: "Koala", format: FormatMulti,
		bitmap: hires(0), screen: screen(8000), color: screen(9000), background: single(10000)},
	{size: 10003, name: "Koala", loadAddr: true, format: FormatMulti,
		bitmap: hires(2), screen: screen(8002), color: screen(9002), background: single(10002)},
	{size: 10004, name: "Face Paint", loadAddr: true, format: FormatMulti,
		bitmap: hires(2), screen: screen(8002), color: screen(9002), background: single(10002)},
	{size: 10006, name: "Run Paint", loadAddr: true, format: FormatMulti,
		bitmap: hires(2), screen: screen(8002), color: screen(9002), background: single(10002)},
	{size: 10018, name: "Advanced Art Studio", loadAddr: true, format: FormatMulti,
		bitmap: hires(2), screen: screen(8002), color: screen(9018), background: single(9003)},
	{size: 10022, name: "Micro Illustrator", loadAddr: true, format: FormatMulti,
		screen: screen(22), color: screen(1022), bitmap: hires(2022)},
	{size: 10049, unpacked: true, name: "Drazpaint", loadAddr: true, format: FormatMulti,
		color: screen(0), screen: screen(1024), bitmap: hires(2048), background: single(10048)},
	{size: 10050, name: "Picasso64", loadAddr: true, format: FormatMulti,
		color: screen(2), screen: screen(1026), bitmap: hires(2050), background: single(2049)},
	{size: 10218, name: "Image System", loadAddr: true, format: FormatMulti,
		color: screen(2), bitmap: hires(1026), screen: screen(9218), background: single(9217)},
	{size: 10219, name: "Saracen Paint", loadAddr: true, format: FormatMulti,
		screen: screen(2), background: single(1010), bitmap: hires(1026), color: screen(9218)},
	{size: 10242, addr: 0xa000, name: "Blazing Paddles", loadAddr: true, format: FormatMulti,
		bitmap: hires(2), screen: screen(8194), color: screen(9218), background: single(8066)},
	{size: 10242, addr: 0x5c00, name: "Rainbow Painter", loadAddr: true, format: FormatMulti,
		screen: screen(2), bitmap: hires(1026), color: screen(9218), background: single(0)},
	{size: 10242, name: "Artist 64", loadAddr: true, format: FormatMulti,
		bitmap: hires(2), screen: screen(8194), color: screen(9218), background: single(10241)},
	{size: 10257, unpacked: true, name: "Amica Paint", loadAddr: true, format: FormatMulti,
		bitmap: hires(0), screen: screen(8000), color: screen(9000), background: single(10000)},
	{size: 10277, name: "CDU-Paint", loadAddr: true, format: FormatMulti,
		bitmap: hires(275), screen: screen(8275), color: screen(9275), background: single(10275)},
	{size: 10608, name: "BASIC viewer", loadAddr: true, format: FormatMulti,
		bitmap: hires(0x239), background: single(0x239 + 8001), screen: screen(0x239 + 8002), color: screen(0x239 + 9002)},
	{size: 17472, name: "FLI Graph", format: FormatFLI,
		background: fliBack(0), color: screen(256), screen: fliScreens(1280), bitmap: hires(9472)},
	{size: 17474, name: "FLI Graph 2", loadAddr: true, format: FormatFLI,
		background: fliBack(2), color: screen(258), screen: fliScreens(1282), bitmap: hires(9474)},
	{size: 17218, name: "FLI Designer", loadAddr: true, format: FormatFLI,
		color: screen(2), screen: fliScreens(1026), bitmap: hires(9218)},
	{size: 17409, name: "FLI Designer", loadAddr: true, format: FormatFLI,
		color: screen(2), screen: fliScreens(1026), bitmap: hires(9218)},
	{size: 17410, name: "FLI MATIC", loadAddr: true, format: FormatFLI,
		color: screen(2), screen: fliScreens(1026), bitmap: hires(9218)},
	{size: 17666, name: "FLI Graph", loadAddr: true, format: FormatFLI,
		background: fliBack(2), color: screen(258), screen: fliScreens(1282), bitmap: hires(9474)},
	{size: 17665, name: "FLI Editor", loadAddr: true, format: FormatFLI,
		background: fliBack(8), color: screen(258), screen: fliScreens(1282), bitmap: hires(9474)},
}

// findLayout returns the first layout matching size and load address.
func findLayout(size int, addr uint16) *layout {
	for i := range layouts {
		l := &layouts[i]
		if l.size == size && (l.addr == 0 || l.addr == addr) {
			return l
		}
	}
	return nil
}
