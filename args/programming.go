package args

// Pcmd is the command byte of a programming track slot write.
//
// Bit layout: 0x40 write, 0x20 byte mode, 0x10 and 0x08 programming type bits TY1 and
// TY0, 0x04 operations mode (programming on the main). Bits 0x03 are reserved.
// A direct mode byte write is 0x68, an operations mode byte write 0x64.
type Pcmd byte

const (
	pcmdWrite    Pcmd = 0x40
	pcmdByteMode Pcmd = 0x20
	pcmdTy1      Pcmd = 0x10
	pcmdTy0      Pcmd = 0x08
	pcmdOpsMode  Pcmd = 0x04

	pcmdMask = pcmdWrite | pcmdByteMode | pcmdTy1 | pcmdTy0 | pcmdOpsMode
)

// NewPcmd composes a programming command byte.
func NewPcmd(write, byteMode, opsMode, ty0, ty1 bool) Pcmd {
	var p Pcmd
	for _, f := range []struct {
		on  bool
		bit Pcmd
	}{{write, pcmdWrite}, {byteMode, pcmdByteMode}, {opsMode, pcmdOpsMode}, {ty0, pcmdTy0}, {ty1, pcmdTy1}} {
		if f.on {
			p |= f.bit
		}
	}

	return p
}

// ParsePcmd decodes a PCMD byte.
func ParsePcmd(b byte) Pcmd {
	return Pcmd(b) & pcmdMask
}

func (p Pcmd) Write() bool    { return p&pcmdWrite != 0 }
func (p Pcmd) ByteMode() bool { return p&pcmdByteMode != 0 }
func (p Pcmd) OpsMode() bool  { return p&pcmdOpsMode != 0 }
func (p Pcmd) Ty0() bool      { return p&pcmdTy0 != 0 }
func (p Pcmd) Ty1() bool      { return p&pcmdTy1 != 0 }

// Wire returns the PCMD byte.
func (p Pcmd) Wire() byte { return byte(p & pcmdMask) }

// MaxCV is the highest configuration variable number that fits into a programming request.
const MaxCV = 0x03FF

// CvData is a configuration variable number together with a data byte.
//
// Wire layout: CVH bit 0 holds CV bit 7, CVH bits 4-5 hold CV bits 8-9 and CVH bit 1
// holds data bit 7; CVL and DATA7 hold the seven low bits of the CV number and the data.
type CvData struct {
	cv   uint16
	data byte
}

// NewCvData returns a CV/data pair. cv is masked to 10 bits.
func NewCvData(cv uint16, data byte) CvData {
	return CvData{cv: cv & MaxCV, data: data}
}

// ParseCvData decodes CVH, CVL and DATA7.
func ParseCvData(cvh, cvl, data7 byte) CvData {
	cv := uint16(cvl&0x7F) | uint16(cvh&0x01)<<7 | uint16(cvh&0x30)<<4
	data := data7&0x7F | (cvh&0x02)<<6

	return CvData{cv: cv, data: data}
}

// CV returns the configuration variable number.
func (c CvData) CV() uint16 { return c.cv }

// Data returns the data byte.
func (c CvData) Data() byte { return c.data }

// Wire returns CVH, CVL and DATA7.
func (c CvData) Wire() (cvh, cvl, data7 byte) {
	cvh = byte(c.cv>>7)&0x01 | byte(c.cv>>4)&0x30
	if c.data&0x80 != 0 {
		cvh |= 0x02
	}

	return cvh, byte(c.cv) & 0x7F, c.data & 0x7F
}

// FastClock is the fast clock state carried by a fast clock slot write.
type FastClock struct {
	Rate    byte   // clock rate, 0 stops the clock
	Frac    uint16 // 14 bit fractional minute counter
	Minutes byte
	Hours   byte
	Days    byte
	Control byte // clock control flags, 0x40 marks a valid clock
}

// NewFastClock returns a fast clock state with all fields masked to their wire widths.
func NewFastClock(rate byte, frac uint16, minutes, hours, days, control byte) FastClock {
	return FastClock{
		Rate:    rate & 0x7F,
		Frac:    frac & 0x3FFF,
		Minutes: minutes & 0x7F,
		Hours:   hours & 0x7F,
		Days:    days & 0x7F,
		Control: control & 0x7F,
	}
}

// ParseFastClock decodes the fast clock fields of a slot write.
func ParseFastClock(rate, fracl, frach, minutes, hours, days, control byte) FastClock {
	return NewFastClock(rate, uint16(fracl&0x7F)|uint16(frach&0x7F)<<7, minutes, hours, days, control)
}

// FracWire returns the low and high fractional minute bytes.
func (c FastClock) FracWire() (byte, byte) {
	return byte(c.Frac) & 0x7F, byte(c.Frac>>7) & 0x7F
}
