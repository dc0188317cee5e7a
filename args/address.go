package args

import "fmt"

// Address is a 14 bit locomotive address transported as two 7 bit bytes.
type Address uint16

// NewAddress returns the address adr, masked to 14 bits.
func NewAddress(adr uint16) Address {
	return Address(adr & 0x3FFF)
}

// ParseAddress builds an Address from its low and high 7 bit wire bytes.
func ParseAddress(lo, hi byte) Address {
	return Address(uint16(lo&0x7F) | uint16(hi&0x7F)<<7)
}

// Value returns the numeric address.
func (a Address) Value() uint16 { return uint16(a) & 0x3FFF }

// Lo returns the seven least significant address bits.
func (a Address) Lo() byte { return byte(a) & 0x7F }

// Hi returns the seven most significant address bits.
func (a Address) Hi() byte { return byte(a>>7) & 0x7F }

// IsShort reports whether the address fits into a short (7 bit) DCC address.
func (a Address) IsShort() bool { return a.Value() < 128 }

func (a Address) String() string { return fmt.Sprintf("%d", a.Value()) }

// Slot numbers with a reserved system meaning.
const (
	// DispatchSlot is used to hand a locomotive over to another throttle.
	DispatchSlot Slot = 0
	// FastClockSlot holds the fast clock state.
	FastClockSlot Slot = 123
	// ProgrammingSlot addresses the programming track.
	ProgrammingSlot Slot = 124
	// OptionsSlot holds the command station option switches.
	OptionsSlot Slot = 127

	// firstSystemSlot is the lowest slot number of the 120..127 system range.
	firstSystemSlot Slot = 120
)

// Slot is a 7 bit command station slot number.
type Slot byte

// NewSlot returns slot n, masked to 7 bits.
func NewSlot(n byte) Slot { return Slot(n & 0x7F) }

// ParseSlot decodes a slot from its wire byte.
func ParseSlot(b byte) Slot { return NewSlot(b) }

// Value returns the slot number.
func (s Slot) Value() byte { return byte(s) & 0x7F }

// Wire returns the wire byte of the slot.
func (s Slot) Wire() byte { return s.Value() }

// IsSystem reports whether the slot is the dispatch slot or one of the system slots 120..127.
func (s Slot) IsSystem() bool {
	v := Slot(s.Value())
	return v == DispatchSlot || v >= firstSystemSlot
}

func (s Slot) String() string {
	switch Slot(s.Value()) {
	case DispatchSlot:
		return "dispatch"
	case FastClockSlot:
		return "fast-clock"
	case ProgrammingSlot:
		return "programming"
	case OptionsSlot:
		return "options"
	}

	return fmt.Sprintf("%d", s.Value())
}

// ID is the 14 bit identifier of the device that controls a slot.
//
// 0 means no ID is used, 0x0080-0x00FF identifies a PC and values from 0x0200
// belong to normal throttles.
type ID uint16

// NewID returns id masked to 14 bits.
func NewID(id uint16) ID { return ID(id & 0x3FFF) }

// ParseID decodes an ID from its two wire bytes.
func ParseID(id1, id2 byte) ID {
	return ID(uint16(id1&0x7F) | uint16(id2&0x7F)<<7)
}

// Value returns the numeric ID.
func (id ID) Value() uint16 { return uint16(id) & 0x3FFF }

// Wire returns the two wire bytes ID1 and ID2.
func (id ID) Wire() (byte, byte) {
	return byte(id) & 0x7F, byte(id>>7) & 0x7F
}

// Dst is the 14 bit destination of a peer to peer transfer.
type Dst uint16

// NewDst returns dst masked to 14 bits.
func NewDst(dst uint16) Dst { return Dst(dst & 0x3FFF) }

// ParseDst decodes a destination from its low and high wire bytes.
func ParseDst(lo, hi byte) Dst {
	return Dst(uint16(lo&0x7F) | uint16(hi&0x7F)<<7)
}

// Value returns the numeric destination.
func (d Dst) Value() uint16 { return uint16(d) & 0x3FFF }

// Wire returns the low and high wire bytes.
func (d Dst) Wire() (byte, byte) {
	return byte(d) & 0x7F, byte(d>>7) & 0x7F
}
