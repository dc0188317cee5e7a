package args

import "fmt"

// MaxSwitchAddress is the highest 11 bit switch or sensor address.
const MaxSwitchAddress = 0x07FF

// Direction is the position of a turnout.
type Direction bool

const (
	// Curved (thrown) turnout position.
	Curved Direction = false
	// Straight (closed) turnout position.
	Straight Direction = true
)

func (d Direction) String() string {
	if d == Straight {
		return "straight"
	}
	return "curved"
}

// Switch addresses a turnout together with its requested direction and output state.
//
// Wire layout: SW1 carries the seven low address bits, SW2 carries the four high
// address bits, the direction (0x20) and the output state (0x10).
type Switch struct {
	sw1 byte
	sw2 byte
}

// NewSwitch returns a switch for address (masked to 11 bits), direction and output state.
func NewSwitch(address uint16, dir Direction, on bool) Switch {
	address &= MaxSwitchAddress
	s := Switch{sw1: byte(address) & 0x7F, sw2: byte(address>>7) & 0x0F}
	if dir == Straight {
		s.sw2 |= 0x20
	}
	if on {
		s.sw2 |= 0x10
	}

	return s
}

// ParseSwitch decodes a switch from SW1 and SW2.
func ParseSwitch(sw1, sw2 byte) Switch {
	return Switch{sw1: sw1 & 0x7F, sw2: sw2 & 0x3F}
}

// Address returns the 11 bit switch address.
func (s Switch) Address() uint16 {
	return uint16(s.sw1) | uint16(s.sw2&0x0F)<<7
}

// Direction returns the requested turnout position.
func (s Switch) Direction() Direction { return s.sw2&0x20 != 0 }

// On reports whether the output is activated.
func (s Switch) On() bool { return s.sw2&0x10 != 0 }

// WithDirection returns a copy of s with direction dir.
func (s Switch) WithDirection(dir Direction) Switch {
	return NewSwitch(s.Address(), dir, s.On())
}

// WithOn returns a copy of s with the output state on.
func (s Switch) WithOn(on bool) Switch {
	return NewSwitch(s.Address(), s.Direction(), on)
}

// Wire returns SW1 and SW2.
func (s Switch) Wire() (byte, byte) { return s.sw1, s.sw2 }

func (s Switch) String() string {
	return fmt.Sprintf("switch(%d, %s, on=%t)", s.Address(), s.Direction(), s.On())
}

// SourceType identifies which input of a DS54 style decoder produced a sensor report.
type SourceType bool

const (
	// SourceAux is the auxiliary input.
	SourceAux SourceType = false
	// SourceSwitch is the switch input.
	SourceSwitch SourceType = true
)

// SensorLevel is the level of a sensor input.
type SensorLevel bool

const (
	Low  SensorLevel = false
	High SensorLevel = true
)

// In is the payload of a sensor input report.
//
// Wire layout: IN1 carries the seven low address bits, IN2 the four high address bits,
// the source (0x20), the level (0x10) and a reserved control bit (0x40).
type In struct {
	in1 byte
	in2 byte
}

// NewIn returns a sensor report payload; the address is masked to 11 bits.
func NewIn(address uint16, source SourceType, level SensorLevel, control bool) In {
	address &= MaxSwitchAddress
	in := In{in1: byte(address) & 0x7F, in2: byte(address>>7) & 0x0F}
	if source == SourceSwitch {
		in.in2 |= 0x20
	}
	if level == High {
		in.in2 |= 0x10
	}
	if control {
		in.in2 |= 0x40
	}

	return in
}

// ParseIn decodes a sensor report from IN1 and IN2.
func ParseIn(in1, in2 byte) In {
	return In{in1: in1 & 0x7F, in2: in2 & 0x7F}
}

// Address returns the 11 bit sensor address.
func (in In) Address() uint16 {
	return uint16(in.in1) | uint16(in.in2&0x0F)<<7
}

// AddressDS54 returns the 12 bit address that uses the input source as its least significant bit.
func (in In) AddressDS54() uint16 {
	adr := in.Address() << 1
	if in.Source() == SourceSwitch {
		adr |= 1
	}

	return adr
}

func (in In) Source() SourceType { return in.in2&0x20 != 0 }

func (in In) Level() SensorLevel { return in.in2&0x10 != 0 }

// Control returns the reserved control bit.
func (in In) Control() bool { return in.in2&0x40 != 0 }

// Wire returns IN1 and IN2.
func (in In) Wire() (byte, byte) { return in.in1, in.in2 }

// Sn is the payload of a switch sensor report.
//
// When the format bit (0x40 of SN2) is set the report describes the switch type,
// otherwise it describes the levels of the straight and curved outputs.
type Sn struct {
	sn1 byte
	sn2 byte
}

// NewSnSwitchType returns a report in switch type format.
func NewSnSwitchType(address uint16, isSwitch bool, active bool) Sn {
	sn := newSn(address)
	sn.sn2 |= 0x40
	if isSwitch {
		sn.sn2 |= 0x20
	}
	if active {
		sn.sn2 |= 0x10
	}

	return sn
}

// NewSnOutputLevels returns a report in output level format.
func NewSnOutputLevels(address uint16, straight SensorLevel, curved SensorLevel) Sn {
	sn := newSn(address)
	if straight == High {
		sn.sn2 |= 0x20
	}
	if curved == High {
		sn.sn2 |= 0x10
	}

	return sn
}

func newSn(address uint16) Sn {
	address &= MaxSwitchAddress
	return Sn{sn1: byte(address) & 0x7F, sn2: byte(address>>7) & 0x0F}
}

// ParseSn decodes a switch sensor report from SN1 and SN2.
func ParseSn(sn1, sn2 byte) Sn {
	return Sn{sn1: sn1 & 0x7F, sn2: sn2 & 0x7F}
}

// Address returns the 11 bit switch address.
func (sn Sn) Address() uint16 {
	return uint16(sn.sn1) | uint16(sn.sn2&0x0F)<<7
}

// IsSwitchTypeFormat reports whether the report uses the switch type format.
func (sn Sn) IsSwitchTypeFormat() bool { return sn.sn2&0x40 != 0 }

// SwitchType returns the switch flag and the active flag of a switch type report.
// ok is false for output level reports.
func (sn Sn) SwitchType() (isSwitch bool, active bool, ok bool) {
	if !sn.IsSwitchTypeFormat() {
		return false, false, false
	}

	return sn.sn2&0x20 != 0, sn.sn2&0x10 != 0, true
}

// OutputLevels returns the straight and curved output levels of an output level report.
// ok is false for switch type reports.
func (sn Sn) OutputLevels() (straight SensorLevel, curved SensorLevel, ok bool) {
	if sn.IsSwitchTypeFormat() {
		return Low, Low, false
	}

	return sn.sn2&0x20 != 0, sn.sn2&0x10 != 0, true
}

// Wire returns SN1 and SN2.
func (sn Sn) Wire() (byte, byte) { return sn.sn1, sn.sn2 }
