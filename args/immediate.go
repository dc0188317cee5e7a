package args

import (
	"errors"
	"fmt"
)

// MaxImmediateBytes is the maximum number of DCC packet bytes an immediate packet carries.
const MaxImmediateBytes = 5

// ErrPacketTooLong is returned when a DCC packet does not fit into an immediate packet.
var ErrPacketTooLong = errors.New("args: dcc packet exceeds 5 bytes")

// ImmediatePacket is a raw DCC packet the command station sends to the track.
//
// Wire layout: REPS holds the packet length in bits 4-6 and the repeat count in bits
// 0-2, DHI holds bit 7 of packet byte i in bit i, IM1-IM5 hold the seven low bits of
// each packet byte. The DCC error detection byte is added by the command station.
type ImmediatePacket struct {
	repeat byte
	length byte
	packet [MaxImmediateBytes]byte
}

// NewImmediatePacket returns an immediate packet for the DCC bytes packet, sent repeat+1 times.
func NewImmediatePacket(repeat byte, packet []byte) (ImmediatePacket, error) {
	if len(packet) > MaxImmediateBytes {
		return ImmediatePacket{}, fmt.Errorf("%w: %d bytes", ErrPacketTooLong, len(packet))
	}

	p := ImmediatePacket{repeat: repeat & 0x07, length: byte(len(packet))}
	copy(p.packet[:], packet)

	return p, nil
}

// ParseImmediatePacket decodes REPS, DHI and IM1-IM5.
func ParseImmediatePacket(reps, dhi byte, im [MaxImmediateBytes]byte) ImmediatePacket {
	p := ImmediatePacket{repeat: reps & 0x07, length: (reps >> 4) & 0x07}
	if p.length > MaxImmediateBytes {
		p.length = MaxImmediateBytes
	}
	for i := range p.length {
		p.packet[i] = im[i]&0x7F | ((dhi>>i)&0x01)<<7
	}

	return p
}

// Repeat returns the repeat count (0..7).
func (p ImmediatePacket) Repeat() byte { return p.repeat }

// Packet returns a copy of the DCC packet bytes.
func (p ImmediatePacket) Packet() []byte {
	out := make([]byte, p.length)
	copy(out, p.packet[:p.length])

	return out
}

// Wire returns REPS, DHI and IM1-IM5.
func (p ImmediatePacket) Wire() (reps, dhi byte, im [MaxImmediateBytes]byte) {
	reps = p.length<<4 | p.repeat
	for i := range p.length {
		im[i] = p.packet[i] & 0x7F
		dhi |= (p.packet[i] >> 7) << i
	}

	return reps, dhi, im
}

// DCC function packet instruction prefixes.
const (
	dccF9ToF12   byte = 0xA0
	dccF13ToF20  byte = 0xDE
	dccF21ToF28  byte = 0xDF
	dccLongAdrHi byte = 0xC0
)

// DCCFunctionRange selects the functions carried by a DCC function packet.
type DCCFunctionRange byte

const (
	DCCF9ToF12 DCCFunctionRange = iota
	DCCF13ToF20
	DCCF21ToF28
)

func (r DCCFunctionRange) first() int {
	switch r {
	case DCCF13ToF20:
		return 13
	case DCCF21ToF28:
		return 21
	}
	return 9
}

func (r DCCFunctionRange) count() int {
	if r == DCCF9ToF12 {
		return 4
	}
	return 8
}

// DCCFunctionPacket builds the DCC function packet for address with the listed functions on.
//
// Addresses below 128 use the short address form.
func DCCFunctionPacket(address Address, r DCCFunctionRange, on ...int) []byte {
	var bits byte
	first := r.first()
	for _, n := range on {
		if n >= first && n < first+r.count() {
			bits |= 1 << (n - first)
		}
	}

	var pkt []byte
	if address.IsShort() {
		pkt = append(pkt, byte(address.Value()))
	} else {
		pkt = append(pkt, dccLongAdrHi|byte(address.Value()>>8), byte(address.Value()))
	}

	switch r {
	case DCCF9ToF12:
		pkt = append(pkt, dccF9ToF12|bits&0x0F)
	case DCCF13ToF20:
		pkt = append(pkt, dccF13ToF20, bits)
	case DCCF21ToF28:
		pkt = append(pkt, dccF21ToF28, bits)
	}

	return pkt
}

// DCCFunctionState is a DCC function packet decoded from an immediate packet.
type DCCFunctionState struct {
	Address Address
	Range   DCCFunctionRange
	bits    byte
}

// F reports whether function n is on.
func (s DCCFunctionState) F(n int) bool {
	first := s.Range.first()
	if n < first || n >= first+s.Range.count() {
		return false
	}

	return s.bits&(1<<(n-first)) != 0
}

// DecodeDCCFunctionPacket decodes packet bytes created by DCCFunctionPacket.
// ok is false when pkt is not a function packet in one of the supported ranges.
func DecodeDCCFunctionPacket(pkt []byte) (DCCFunctionState, bool) {
	var st DCCFunctionState
	if len(pkt) < 2 {
		return st, false
	}

	rest := pkt[1:]
	if pkt[0]&0xC0 == dccLongAdrHi && pkt[0] != 0xFF {
		st.Address = NewAddress(uint16(pkt[0]&0x3F)<<8 | uint16(pkt[1]))
		rest = pkt[2:]
	} else if pkt[0] < 0x80 {
		st.Address = NewAddress(uint16(pkt[0]))
	} else {
		return st, false
	}

	switch {
	case len(rest) == 1 && rest[0]&0xF0 == dccF9ToF12:
		st.Range, st.bits = DCCF9ToF12, rest[0]&0x0F
	case len(rest) == 2 && rest[0] == dccF13ToF20:
		st.Range, st.bits = DCCF13ToF20, rest[1]
	case len(rest) == 2 && rest[0] == dccF21ToF28:
		st.Range, st.bits = DCCF21ToF28, rest[1]
	default:
		return st, false
	}

	return st, true
}
