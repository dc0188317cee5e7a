package args

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot_Masking(t *testing.T) {
	require := require.New(t)

	s := NewSlot(200)
	require.Equal(byte(72), s.Value())
	require.Equal(byte(72), s.Wire())
	require.Equal(s, ParseSlot(s.Wire()))

	require.True(DispatchSlot.IsSystem())
	require.True(NewSlot(120).IsSystem())
	require.True(OptionsSlot.IsSystem())
	require.False(NewSlot(1).IsSystem())
	require.False(NewSlot(119).IsSystem())
	require.Equal("programming", ProgrammingSlot.String())
}

func TestAddress(t *testing.T) {
	require := require.New(t)

	a := NewAddress(0xFFFF)
	require.Equal(uint16(0x3FFF), a.Value())

	a = NewAddress(3210)
	require.Equal(byte(3210&0x7F), a.Lo())
	require.Equal(byte(3210>>7), a.Hi())
	require.Equal(a, ParseAddress(a.Lo(), a.Hi()))
	require.False(a.IsShort())
	require.True(NewAddress(3).IsShort())
}

func TestSpeed(t *testing.T) {
	tests := []struct {
		desc  string
		speed Speed
		wire  byte
		step  byte
		drive bool
	}{
		{"stop", SpeedStop, 0, 0, false},
		{"emergency stop", SpeedEmergencyStop, 1, 0, false},
		{"drive 0 is stop", SpeedDrive(0), 0, 0, false},
		{"drive 1", SpeedDrive(1), 2, 1, true},
		{"drive 122", SpeedDrive(122), 123, 122, true},
		{"drive max", SpeedDrive(126), 127, 126, true},
		{"drive clamped", SpeedDrive(200), 127, 126, true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			require.Equal(t, tt.wire, tt.speed.Wire())
			step, ok := tt.speed.Drive()
			require.Equal(t, tt.drive, ok)
			require.Equal(t, tt.step, step)
			require.Equal(t, tt.speed, ParseSpeed(tt.speed.Wire()))
		})
	}

	require.True(t, ParseSpeed(0x80).IsStop())
	require.Equal(t, "drive(122)", SpeedDrive(122).String())
}

func TestSwitch(t *testing.T) {
	require := require.New(t)

	sw := NewSwitch(0x0ABC, Straight, true)
	require.Equal(uint16(0x02BC), sw.Address(), "address is masked to 11 bits")
	require.Equal(Straight, sw.Direction())
	require.True(sw.On())

	sw1, sw2 := sw.Wire()
	require.Equal(byte(0x3C), sw1)
	require.Equal(byte(0x05|0x20|0x10), sw2)
	require.Equal(sw, ParseSwitch(sw1, sw2))

	curved := sw.WithDirection(Curved).WithOn(false)
	_, sw2 = curved.Wire()
	require.Equal(byte(0x05), sw2)
}

func TestIn(t *testing.T) {
	require := require.New(t)

	in := NewIn(1025, SourceSwitch, High, false)
	require.Equal(uint16(1025), in.Address())
	require.Equal(uint16(2051), in.AddressDS54())
	require.Equal(SourceSwitch, in.Source())
	require.Equal(High, in.Level())
	require.False(in.Control())
	require.Equal(in, ParseIn(in.Wire()))
}

func TestSn(t *testing.T) {
	require := require.New(t)

	sn := NewSnSwitchType(17, true, false)
	isSwitch, active, ok := sn.SwitchType()
	require.True(ok)
	require.True(isSwitch)
	require.False(active)
	_, _, ok = sn.OutputLevels()
	require.False(ok)
	require.Equal(sn, ParseSn(sn.Wire()))

	sn = NewSnOutputLevels(2047, Low, High)
	straight, curved, ok := sn.OutputLevels()
	require.True(ok)
	require.Equal(Low, straight)
	require.Equal(High, curved)
	require.Equal(uint16(2047), sn.Address())
	require.Equal(sn, ParseSn(sn.Wire()))
}

func TestDirfSnd(t *testing.T) {
	require := require.New(t)

	d := NewDirf(true, 0, 2, 4)
	require.True(d.Reverse())
	require.True(d.F(0))
	require.False(d.F(1))
	require.True(d.F(2))
	require.True(d.F(4))
	require.False(d.F(5))
	require.Equal(byte(0x20|0x10|0x02|0x08), d.Wire())
	require.Equal(d, ParseDirf(d.Wire()))
	require.False(d.WithReverse(false).Reverse())
	require.False(d.WithF(0, false).F(0))

	s := NewSnd(5, 8)
	require.True(s.F(5))
	require.False(s.F(6))
	require.True(s.F(8))
	require.Equal(byte(0x09), s.Wire())
	require.Equal(s, ParseSnd(s.Wire()))
}

func TestTrk(t *testing.T) {
	require := require.New(t)

	trk := NewTrk(true, true, false, true)
	require.Equal(byte(0x09), trk.Wire(), "idle is encoded by a cleared 0x02 bit")
	require.True(trk.PowerOn())
	require.True(trk.Idle())
	require.False(trk.MLOK1())
	require.True(trk.ProgrammingBusy())
	require.False(ParseTrk(0x02).Idle())
}

func TestStat1(t *testing.T) {
	require := require.New(t)

	s := NewStat1(ConsistMid, SlotInUse, DecoderDCC128)
	require.Equal(byte(0x48|0x30|0x07), s.Wire())

	parsed, err := ParseStat1(s.Wire())
	require.NoError(err)
	require.Equal(s, parsed)
	require.Equal(ConsistMid, parsed.Consist())
	require.Equal(SlotInUse, parsed.State())
	require.Equal(DecoderDCC128, parsed.DecoderType())
	require.Equal(SlotIdle, parsed.WithState(SlotIdle).State())

	for _, b := range []byte{0x05, 0x06, 0x35} {
		_, err := ParseStat1(b)
		require.ErrorIs(err, ErrUnmapped)
	}

	// bit 7 is never carried over to the bus
	parsed, err = ParseStat1(0x80 | 0x30 | 0x04)
	require.NoError(err)
	require.Equal(byte(0x34), parsed.Wire())
	require.Equal(SlotInUse, parsed.State())
	require.Zero(NewStat1(0xFF, 0xFF, DecoderDCC128).Wire() & 0x80)
}

func TestStat2(t *testing.T) {
	s := NewStat2(true, false, true)
	assert.True(t, s.HasAdv())
	assert.False(t, s.NoIDUsage())
	assert.True(t, s.IDEncodedAlias())
	assert.Equal(t, s, ParseStat2(s.Wire()))
}

func TestLopcAck1(t *testing.T) {
	require := require.New(t)

	l := NewLopc(0xBF)
	require.Equal(byte(0x3F), l.Wire())
	require.True(l.Matches(0xBF))
	require.False(l.Matches(0xBD))
	require.Equal(byte(0xBF), l.Opcode())

	require.True(AckSuccess.Success())
	require.True(AckSuccess.LimitedSuccess())
	require.True(AckFailed.Failed())
	require.False(AckFailed.LimitedSuccess())
	require.True(ParseAck1(0x01).Accepted())
	require.True(ParseAck1(0x40).AcceptedBlind())
	require.Equal("limited(0x23)", ParseAck1(0x23).String())
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		group FunctionGroup
		on    []int
		bits  byte
	}{
		{FunctionsF9ToF11, []int{9, 11}, 0x50},
		{FunctionsF12F20F28, []int{12, 28}, 0x50},
		{FunctionsF12F20F28, []int{20}, 0x20},
		{FunctionsF13ToF19, []int{13, 19}, 0x41},
		{FunctionsF21ToF27, []int{22, 23}, 0x06},
	}

	for _, tt := range tests {
		t.Run(tt.group.String(), func(t *testing.T) {
			require := require.New(t)

			f, err := NewFunctions(tt.group, tt.on...)
			require.NoError(err)
			group, bits := f.Wire()
			require.Equal(byte(tt.group), group)
			require.Equal(tt.bits, bits)
			for _, n := range tt.group.Functions() {
				require.Equal(contains(tt.on, n), f.F(n), "f%d", n)
			}

			parsed, err := ParseFunctions(group, bits)
			require.NoError(err)
			require.Equal(f, parsed)
		})
	}

	f, err := NewFunctions(FunctionsF9ToF11, 13)
	require.NoError(t, err)
	_, bits := f.Wire()
	require.Zero(t, bits, "functions outside the group are ignored")

	_, err = ParseFunctions(0x06, 0)
	require.ErrorIs(t, err, ErrUnmapped)

	for _, g := range []FunctionGroup{0x06, 0x42, 0x87} {
		_, err := NewFunctions(g, 9)
		require.ErrorIs(t, err, ErrUnmapped, "group %s", g)
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func TestCvData(t *testing.T) {
	tests := []struct {
		cv    uint16
		data  byte
		cvh   byte
		cvl   byte
		data7 byte
	}{
		{1, 3, 0x00, 0x01, 0x03},
		{0x80, 0x80, 0x03, 0x00, 0x00},
		{0x3FF, 0xFF, 0x33, 0x7F, 0x7F},
		{0x1F0, 0x10, 0x11, 0x70, 0x10},
	}

	for _, tt := range tests {
		c := NewCvData(tt.cv, tt.data)
		cvh, cvl, data7 := c.Wire()
		require.Equal(t, tt.cvh, cvh, "cvh for cv %d", tt.cv)
		require.Equal(t, tt.cvl, cvl)
		require.Equal(t, tt.data7, data7)
		require.Equal(t, c, ParseCvData(cvh, cvl, data7))
	}

	require.Equal(t, uint16(MaxCV), NewCvData(0xFFFF, 0).CV())
}

func TestPcmd(t *testing.T) {
	require := require.New(t)

	p := NewPcmd(true, true, false, false, true)
	require.Equal(byte(0x70), p.Wire())
	require.True(p.Write())
	require.True(p.ByteMode())
	require.False(p.OpsMode())
	require.False(p.Ty0())
	require.True(p.Ty1())
	require.Equal(p, ParsePcmd(p.Wire()))

	require.Equal(byte(0x68), NewPcmd(true, true, false, true, false).Wire(), "direct byte write")
	require.Equal(byte(0x64), NewPcmd(true, true, true, false, false).Wire(), "ops byte write")

	for i := 0; i < 32; i++ {
		p := NewPcmd(i&1 != 0, i&2 != 0, i&4 != 0, i&8 != 0, i&16 != 0)
		require.Zero(p.Wire()&0x80, "pcmd %02X", p.Wire())
		require.Equal(i&8 != 0, p.Ty0())
		require.Equal(p, ParsePcmd(p.Wire()))
	}
	require.Equal(byte(0x7C), ParsePcmd(0xFF).Wire())
}

func TestFastClock(t *testing.T) {
	c := NewFastClock(10, 0x3FFF, 59, 23, 2, 0x40)
	lo, hi := c.FracWire()
	require.Equal(t, byte(0x7F), lo)
	require.Equal(t, byte(0x7F), hi)
	require.Equal(t, c, ParseFastClock(c.Rate, lo, hi, c.Minutes, c.Hours, c.Days, c.Control))
}

func TestImmediatePacket(t *testing.T) {
	require := require.New(t)

	pkt := []byte{0xC3, 0xE8, 0xDE, 0x81}
	p, err := NewImmediatePacket(2, pkt)
	require.NoError(err)
	require.Equal(pkt, p.Packet())
	require.Equal(byte(2), p.Repeat())

	reps, dhi, im := p.Wire()
	require.Equal(byte(0x42), reps)
	require.Equal(byte(0x0F), dhi)
	require.Equal([5]byte{0x43, 0x68, 0x5E, 0x01, 0x00}, im)
	require.Equal(p, ParseImmediatePacket(reps, dhi, im))

	_, err = NewImmediatePacket(0, make([]byte, 6))
	require.ErrorIs(err, ErrPacketTooLong)
}

func TestDCCFunctionPacket(t *testing.T) {
	tests := []struct {
		desc    string
		address Address
		r       DCCFunctionRange
		on      []int
		want    []byte
	}{
		{"short f9-f12", NewAddress(3), DCCF9ToF12, []int{9, 12}, []byte{0x03, 0xA9}},
		{"long f13-f20", NewAddress(1000), DCCF13ToF20, []int{13, 20}, []byte{0xC3, 0xE8, 0xDE, 0x81}},
		{"short f21-f28", NewAddress(100), DCCF21ToF28, []int{22}, []byte{0x64, 0xDF, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			pkt := DCCFunctionPacket(tt.address, tt.r, tt.on...)
			require.Equal(t, tt.want, pkt)

			st, ok := DecodeDCCFunctionPacket(pkt)
			require.True(t, ok)
			require.Equal(t, tt.address, st.Address)
			require.Equal(t, tt.r, st.Range)
			for _, n := range tt.on {
				require.True(t, st.F(n), "f%d", n)
			}
		})
	}

	_, ok := DecodeDCCFunctionPacket([]byte{0x03, 0x3F, 0x10})
	require.False(t, ok)
}

func TestPeerData(t *testing.T) {
	require := require.New(t)

	data := [PeerDataSize]byte{0x00, 0x81, 0x7F, 0xFF, 0x10, 0x20, 0x80, 0x01}
	p := NewPeerData(0x2D, data)

	pxct1, d1, pxct2, d2 := p.Wire()
	require.Equal(byte(0x50|0x0A), pxct1)
	require.Equal(byte(0x50|0x04), pxct2)
	require.Equal([4]byte{0x00, 0x01, 0x7F, 0x7F}, d1)
	require.Equal([4]byte{0x10, 0x20, 0x00, 0x01}, d2)

	parsed := ParsePeerData(pxct1, d1, pxct2, d2)
	require.Equal(p, parsed)
	require.Equal(byte(0x2D), parsed.PXC())
	require.Equal(data, parsed.Data())
}

func TestReports(t *testing.T) {
	require := require.New(t)

	l := NewLissy(0x1ABC, true, 0x3ABC)
	w := l.Wire()
	require.Equal(l, ParseLissy(w[0], w[1], w[2], w[3]))

	c := NewWheelcnt(42, false, 9999)
	w = c.Wire()
	require.Equal(c, ParseWheelcnt(w[0], w[1], w[2], w[3]))

	for _, tag := range [][]byte{{0x01, 0x82, 0x03, 0xF4, 0x05}, {0x01, 0x82, 0x03, 0xF4, 0x05, 0x86, 0x07}} {
		r, err := NewRFID(77, tag)
		require.NoError(err)
		require.Equal(len(tag), r.Size())

		hi, lo, raw, rfidHi := r.Wire()
		for _, b := range raw {
			require.Zero(b & 0x80)
		}
		parsed := ParseRFID(hi, lo, raw, rfidHi)
		require.Equal(r, parsed)
		require.Equal(tag, parsed.Tag())
	}

	_, err := NewRFID(1, []byte{1, 2, 3})
	require.Error(err)
}
