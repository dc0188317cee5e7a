package args

import (
	"fmt"
	"strings"
)

// Dirf holds the direction and functions F0-F4 of a slot.
//
// Bit layout: 0x20 direction (set = reverse), 0x10 F0, 0x01-0x08 F1-F4.
type Dirf byte

// NewDirf returns a Dirf with the given direction and the listed functions (0..4) switched on.
func NewDirf(reverse bool, functions ...int) Dirf {
	var d Dirf
	if reverse {
		d |= 0x20
	}
	for _, f := range functions {
		d = d.WithF(f, true)
	}

	return d
}

// ParseDirf decodes a DIRF byte.
func ParseDirf(b byte) Dirf { return Dirf(b & 0x3F) }

// Reverse reports whether the slot drives in reverse direction.
func (d Dirf) Reverse() bool { return d&0x20 != 0 }

// F reports whether function n (0..4) is on. Other function numbers report false.
func (d Dirf) F(n int) bool {
	mask := dirfMask(n)
	return mask != 0 && byte(d)&mask != 0
}

// WithReverse returns a copy of d with the direction set.
func (d Dirf) WithReverse(reverse bool) Dirf {
	if reverse {
		return d | 0x20
	}
	return d &^ 0x20
}

// WithF returns a copy of d with function n (0..4) set to on.
func (d Dirf) WithF(n int, on bool) Dirf {
	mask := Dirf(dirfMask(n))
	if on {
		return d | mask
	}
	return d &^ mask
}

func dirfMask(n int) byte {
	switch {
	case n == 0:
		return 0x10
	case n >= 1 && n <= 4:
		return 1 << (n - 1)
	}

	return 0
}

// Wire returns the DIRF byte.
func (d Dirf) Wire() byte { return byte(d) & 0x3F }

func (d Dirf) String() string {
	return fmt.Sprintf("dirf(reverse=%t, f0-f4=%s)", d.Reverse(), functionBits(d.F, 0, 4))
}

// Snd holds the functions F5-F8 of a slot, bits 0x01-0x08.
type Snd byte

// NewSnd returns a Snd with the listed functions (5..8) switched on.
func NewSnd(functions ...int) Snd {
	var s Snd
	for _, f := range functions {
		s = s.WithF(f, true)
	}

	return s
}

// ParseSnd decodes a SND byte.
func ParseSnd(b byte) Snd { return Snd(b & 0x0F) }

// F reports whether function n (5..8) is on.
func (s Snd) F(n int) bool {
	if n < 5 || n > 8 {
		return false
	}

	return byte(s)&(1<<(n-5)) != 0
}

// WithF returns a copy of s with function n (5..8) set to on.
func (s Snd) WithF(n int, on bool) Snd {
	if n < 5 || n > 8 {
		return s
	}
	mask := Snd(1 << (n - 5))
	if on {
		return s | mask
	}
	return s &^ mask
}

// Wire returns the SND byte.
func (s Snd) Wire() byte { return byte(s) & 0x0F }

func (s Snd) String() string {
	return "snd(f5-f8=" + functionBits(s.F, 5, 8) + ")"
}

func functionBits(f func(int) bool, from, to int) string {
	var sb strings.Builder
	for n := from; n <= to; n++ {
		if f(n) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}

// Trk is the global track status reported in slot data.
//
// Bit layout: 0x01 power on, 0x02 clear while the track is idle, 0x04 MLOK1
// (LocoNet 1.1 capable master), 0x08 programming track busy.
type Trk byte

// NewTrk returns a track status byte.
func NewTrk(powerOn, idle, mlok1, progBusy bool) Trk {
	var t Trk
	if powerOn {
		t |= 0x01
	}
	if !idle {
		t |= 0x02
	}
	if mlok1 {
		t |= 0x04
	}
	if progBusy {
		t |= 0x08
	}

	return t
}

// ParseTrk decodes a TRK byte.
func ParseTrk(b byte) Trk { return Trk(b & 0x0F) }

func (t Trk) PowerOn() bool { return t&0x01 != 0 }

// Idle reports whether the track is idle (bit 0x02 clear).
func (t Trk) Idle() bool { return t&0x02 == 0 }

func (t Trk) MLOK1() bool { return t&0x04 != 0 }

// ProgrammingBusy reports whether the programming track is in use.
func (t Trk) ProgrammingBusy() bool { return t&0x08 != 0 }

// Wire returns the TRK byte.
func (t Trk) Wire() byte { return byte(t) & 0x0F }

// Consist is the consist state of a slot.
type Consist byte

const (
	ConsistFree      Consist = 0x00
	ConsistTop       Consist = 0x08
	ConsistSubMember Consist = 0x40
	ConsistMid       Consist = 0x48
)

const (
	consistMask     byte = 0x48
	slotStateMask   byte = 0x30
	decoderTypeMask byte = 0x07
)

func (c Consist) String() string {
	switch c {
	case ConsistTop:
		return "top"
	case ConsistSubMember:
		return "sub-member"
	case ConsistMid:
		return "mid"
	}
	return "free"
}

// SlotState is the activity state of a slot.
type SlotState byte

const (
	SlotFree   SlotState = 0x00
	SlotCommon SlotState = 0x10
	SlotIdle   SlotState = 0x20
	SlotInUse  SlotState = 0x30
)

func (s SlotState) String() string {
	switch s {
	case SlotCommon:
		return "common"
	case SlotIdle:
		return "idle"
	case SlotInUse:
		return "in-use"
	}
	return "free"
}

// DecoderType is the speed step mode of the decoder assigned to a slot.
type DecoderType byte

const (
	DecoderRegular28   DecoderType = 0x00
	DecoderAdrMobile28 DecoderType = 0x01
	DecoderStep14      DecoderType = 0x02
	DecoderSpeed128    DecoderType = 0x03
	DecoderDCC28       DecoderType = 0x04
	DecoderDCC128      DecoderType = 0x07
)

func (d DecoderType) valid() bool {
	switch d {
	case DecoderRegular28, DecoderAdrMobile28, DecoderStep14, DecoderSpeed128, DecoderDCC28, DecoderDCC128:
		return true
	}
	return false
}

func (d DecoderType) String() string {
	switch d {
	case DecoderRegular28:
		return "28-step"
	case DecoderAdrMobile28:
		return "28-step-trinary"
	case DecoderStep14:
		return "14-step"
	case DecoderSpeed128:
		return "128-step"
	case DecoderDCC28:
		return "28-step-advanced-consist"
	case DecoderDCC128:
		return "128-step-advanced-consist"
	}
	return fmt.Sprintf("unknown(%d)", byte(d))
}

// Stat1 is the first slot status byte.
//
// Bit layout: 0x48 consist, 0x30 slot state, 0x07 decoder type. The slot purge flag
// some command stations keep in bit 7 is internal to them and never put on the bus.
type Stat1 byte

// NewStat1 composes a STAT1 byte.
func NewStat1(consist Consist, state SlotState, decoder DecoderType) Stat1 {
	return Stat1(byte(consist)&consistMask | byte(state)&slotStateMask | byte(decoder)&decoderTypeMask)
}

// ParseStat1 decodes a STAT1 byte.
//
// It fails with ErrUnmapped when the decoder type bits hold one of the two
// unassigned patterns 0b101 and 0b110.
func ParseStat1(b byte) (Stat1, error) {
	if !DecoderType(b & decoderTypeMask).valid() {
		return 0, unmappedError("stat1 decoder type", b&decoderTypeMask)
	}

	return Stat1(b & 0x7F), nil
}

func (s Stat1) Consist() Consist { return Consist(byte(s) & consistMask) }

func (s Stat1) State() SlotState { return SlotState(byte(s) & slotStateMask) }

func (s Stat1) DecoderType() DecoderType { return DecoderType(byte(s) & decoderTypeMask) }

// WithState returns a copy of s with slot state state.
func (s Stat1) WithState(state SlotState) Stat1 {
	return NewStat1(s.Consist(), state, s.DecoderType())
}

// Wire returns the STAT1 byte.
func (s Stat1) Wire() byte { return byte(s) & 0x7F }

func (s Stat1) String() string {
	return fmt.Sprintf("stat1(consist=%s, state=%s, decoder=%s)", s.Consist(), s.State(), s.DecoderType())
}

// Stat2 is the second slot status byte.
//
// Bit layout: 0x01 advanced consist suppressed, 0x04 ID not used, 0x08 ID encoded alias.
type Stat2 byte

// NewStat2 composes a STAT2 byte.
func NewStat2(hasAdv, noIDUsage, idEncodedAlias bool) Stat2 {
	var s Stat2
	if hasAdv {
		s |= 0x01
	}
	if noIDUsage {
		s |= 0x04
	}
	if idEncodedAlias {
		s |= 0x08
	}

	return s
}

// ParseStat2 decodes a STAT2 byte.
func ParseStat2(b byte) Stat2 { return Stat2(b & 0x0D) }

func (s Stat2) HasAdv() bool { return s&0x01 != 0 }

func (s Stat2) NoIDUsage() bool { return s&0x04 != 0 }

func (s Stat2) IDEncodedAlias() bool { return s&0x08 != 0 }

// Wire returns the STAT2 byte.
func (s Stat2) Wire() byte { return byte(s) & 0x0D }
