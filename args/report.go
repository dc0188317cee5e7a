package args

import "fmt"

// Report selectors carried in the first argument byte of a report message.
const (
	ReportLissy    byte = 0x00
	ReportWheelcnt byte = 0x40
	ReportRFID     byte = 0x41
)

// Lissy is an infrared train identification report.
type Lissy struct {
	Unit    uint16 // 13 bit detector unit
	Reverse bool
	Address uint16 // 14 bit locomotive address
}

// NewLissy returns a Lissy report with unit masked to 13 and address to 14 bits.
func NewLissy(unit uint16, reverse bool, address uint16) Lissy {
	return Lissy{Unit: unit & 0x1FFF, Reverse: reverse, Address: address & 0x3FFF}
}

// ParseLissy decodes the four bytes following the selector.
func ParseLissy(hiUnit, loUnit, hiAdr, loAdr byte) Lissy {
	unit, reverse := parseUnit(hiUnit, loUnit)
	return Lissy{Unit: unit, Reverse: reverse, Address: join14(hiAdr, loAdr)}
}

// Wire returns the four bytes following the selector.
func (l Lissy) Wire() [4]byte {
	hiUnit, loUnit := unitWire(l.Unit, l.Reverse)
	hiAdr, loAdr := split14(l.Address)

	return [4]byte{hiUnit, loUnit, hiAdr, loAdr}
}

// Wheelcnt is a wheel counter report.
type Wheelcnt struct {
	Unit    uint16 // 13 bit counter unit
	Reverse bool
	Count   uint16 // 14 bit axle count
}

// NewWheelcnt returns a wheel counter report with unit masked to 13 and count to 14 bits.
func NewWheelcnt(unit uint16, reverse bool, count uint16) Wheelcnt {
	return Wheelcnt{Unit: unit & 0x1FFF, Reverse: reverse, Count: count & 0x3FFF}
}

// ParseWheelcnt decodes the four bytes following the selector.
func ParseWheelcnt(hiUnit, loUnit, hiCount, loCount byte) Wheelcnt {
	unit, reverse := parseUnit(hiUnit, loUnit)
	return Wheelcnt{Unit: unit, Reverse: reverse, Count: join14(hiCount, loCount)}
}

// Wire returns the four bytes following the selector.
func (w Wheelcnt) Wire() [4]byte {
	hiUnit, loUnit := unitWire(w.Unit, w.Reverse)
	hiCount, loCount := split14(w.Count)

	return [4]byte{hiUnit, loUnit, hiCount, loCount}
}

// RFID is an RFID tag report with either 5 or 7 tag bytes.
//
// The tag bytes are transported as 7 bit values; bit i of the trailing RFID_HI byte
// carries bit 7 of tag byte i.
type RFID struct {
	Address uint16 // 14 bit reader address
	tag     [7]byte
	size    byte
}

// NewRFID returns an RFID report. tag must hold 5 or 7 bytes.
func NewRFID(address uint16, tag []byte) (RFID, error) {
	if len(tag) != 5 && len(tag) != 7 {
		return RFID{}, fmt.Errorf("args: rfid tag must have 5 or 7 bytes, got %d", len(tag))
	}

	r := RFID{Address: address & 0x3FFF, size: byte(len(tag))}
	copy(r.tag[:], tag)

	return r, nil
}

// ParseRFID decodes an RFID report from the address bytes, the 7 bit tag bytes and RFID_HI.
func ParseRFID(hiAdr, loAdr byte, tag []byte, rfidHi byte) RFID {
	r := RFID{Address: join14(hiAdr, loAdr), size: byte(min(len(tag), 7))}
	for i := range int(r.size) {
		r.tag[i] = tag[i]&0x7F | ((rfidHi>>i)&0x01)<<7
	}

	return r
}

// Tag returns a copy of the tag bytes.
func (r RFID) Tag() []byte {
	out := make([]byte, r.size)
	copy(out, r.tag[:r.size])

	return out
}

// Size returns the number of tag bytes, 5 or 7.
func (r RFID) Size() int { return int(r.size) }

// Wire returns the address bytes, the 7 bit tag bytes and RFID_HI.
func (r RFID) Wire() (hiAdr, loAdr byte, tag []byte, rfidHi byte) {
	hiAdr, loAdr = split14(r.Address)
	tag = make([]byte, r.size)
	for i := range int(r.size) {
		tag[i] = r.tag[i] & 0x7F
		rfidHi |= (r.tag[i] >> 7) << i
	}

	return hiAdr, loAdr, tag, rfidHi
}

func parseUnit(hi, lo byte) (uint16, bool) {
	return uint16(hi&0x3F)<<7 | uint16(lo&0x7F), hi&0x40 != 0
}

func unitWire(unit uint16, reverse bool) (byte, byte) {
	hi := byte(unit>>7) & 0x3F
	if reverse {
		hi |= 0x40
	}

	return hi, byte(unit) & 0x7F
}

func join14(hi, lo byte) uint16 {
	return uint16(hi&0x7F)<<7 | uint16(lo&0x7F)
}

func split14(v uint16) (byte, byte) {
	return byte(v>>7) & 0x7F, byte(v) & 0x7F
}
