package protocol

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-loconet/args"
)

// uhliFunMarker is the fixed first argument of OPC_UHLI_FUN.
const uhliFunMarker byte = 0x20

// immPacketMarker is the fixed first payload byte of OPC_IMM_PACKET.
const immPacketMarker byte = 0x7F

// Frame lengths of the variable length messages with a fixed layout.
const (
	immPacketLength        = 0x0B
	peerXferLength         = 0x10
	progAbortedShortLength = 0x10
	progAbortedLongLength  = 0x15
	repShortLength         = 0x08
	repRFID5Length         = 0x0C
	repRFID7Length         = 0x0E
)

// MultiSense is a transponding report (OPC_MULTI_SENSE).
type MultiSense struct {
	Sense   args.MultiSense
	Address args.Address // transponder address
}

func (MultiSense) Opcode() byte { return OpMultiSense }

func (m MultiSense) String() string {
	return fmt.Sprintf("MultiSense(kind=%d, present=%t, board=%d, zone=%d, address=%s)",
		m.Sense.Kind(), m.Sense.Present(), m.Sense.Board(), m.Sense.Zone(), m.Address)
}

func (m MultiSense) appendFrame(dst []byte) []byte {
	mHigh, zas := m.Sense.Wire()
	return append(dst, m.Opcode(), mHigh, zas, m.Address.Hi(), m.Address.Lo())
}

// UhliFun sets functions F9-F28 of a slot (OPC_UHLI_FUN).
type UhliFun struct {
	Slot      args.Slot
	Functions args.Functions
}

func (UhliFun) Opcode() byte { return OpUhliFun }

func (m UhliFun) String() string {
	return fmt.Sprintf("UhliFun(slot=%s, %s)", m.Slot, m.Functions)
}

func (m UhliFun) appendFrame(dst []byte) []byte {
	group, bits := m.Functions.Wire()
	return append(dst, m.Opcode(), uhliFunMarker, m.Slot.Wire(), group, bits)
}

// ImmPacket asks the command station to send a raw DCC packet (OPC_IMM_PACKET).
type ImmPacket struct {
	Packet args.ImmediatePacket
}

func (ImmPacket) Opcode() byte { return OpImmPacket }

func (m ImmPacket) String() string {
	return fmt.Sprintf("ImmPacket(repeat=%d, packet=% X)", m.Packet.Repeat(), m.Packet.Packet())
}

func (m ImmPacket) appendFrame(dst []byte) []byte {
	reps, dhi, im := m.Packet.Wire()
	dst = append(dst, m.Opcode(), immPacketLength, immPacketMarker, reps, dhi)

	return append(dst, im[:]...)
}

// Report is the payload of a report message. It is one of LissyReport,
// WheelcntReport and RFIDReport.
type Report interface {
	isReport()
	String() string
}

// LissyReport is an infrared train identification.
type LissyReport struct{ args.Lissy }

// WheelcntReport is a wheel counter reading.
type WheelcntReport struct{ args.Wheelcnt }

// RFIDReport is an RFID tag reading with 5 or 7 tag bytes.
type RFIDReport struct{ args.RFID }

func (LissyReport) isReport()    {}
func (WheelcntReport) isReport() {}
func (RFIDReport) isReport()     {}

func (r LissyReport) String() string {
	return fmt.Sprintf("lissy(unit=%d, reverse=%t, address=%d)", r.Unit, r.Reverse, r.Address)
}

func (r WheelcntReport) String() string {
	return fmt.Sprintf("wheelcnt(unit=%d, reverse=%t, count=%d)", r.Unit, r.Reverse, r.Count)
}

func (r RFIDReport) String() string {
	return fmt.Sprintf("rfid(address=%d, tag=% X)", r.Address, r.Tag())
}

// Rep is a detector report (OPC_REP).
//
// The first payload byte selects the report kind: 0x00 Lissy, 0x40 wheel counter
// and 0x41 RFID, where the frame length distinguishes 5 and 7 byte tags.
type Rep struct {
	Report Report
}

func (Rep) Opcode() byte { return OpRep }

func (m Rep) String() string {
	if m.Report == nil {
		return "Rep(<nil>)"
	}

	return "Rep(" + m.Report.String() + ")"
}

func (m Rep) appendFrame(dst []byte) []byte {
	switch r := m.Report.(type) {
	case WheelcntReport:
		w := r.Wire()
		return append(append(dst, m.Opcode(), repShortLength, args.ReportWheelcnt), w[:]...)
	case RFIDReport:
		hi, lo, tag, rfidHi := r.Wire()
		n := byte(repRFID5Length)
		if len(tag) == 7 {
			n = repRFID7Length
		}
		dst = append(dst, m.Opcode(), n, args.ReportRFID, hi, lo)
		return append(append(dst, tag...), rfidHi)
	case LissyReport:
		w := r.Wire()
		return append(append(dst, m.Opcode(), repShortLength, args.ReportLissy), w[:]...)
	}

	// a nil report writes an empty Lissy report
	return append(dst, m.Opcode(), repShortLength, args.ReportLissy, 0, 0, 0, 0)
}

// PeerXfer transfers eight data bytes between two bus devices (OPC_PEER_XFER).
type PeerXfer struct {
	Src  args.Slot
	Dst  args.Dst
	Data args.PeerData
}

func (PeerXfer) Opcode() byte { return OpPeerXfer }

func (m PeerXfer) String() string {
	data := m.Data.Data()
	return fmt.Sprintf("PeerXfer(src=%d, dst=%d, pxc=%d, data=% X)", m.Src.Value(), m.Dst.Value(), m.Data.PXC(), data[:])
}

func (m PeerXfer) appendFrame(dst []byte) []byte {
	lo, hi := m.Dst.Wire()
	pxct1, d1, pxct2, d2 := m.Data.Wire()
	dst = append(dst, m.Opcode(), peerXferLength, m.Src.Wire(), lo, hi, pxct1)
	dst = append(append(dst, d1[:]...), pxct2)

	return append(dst, d2[:]...)
}

// Argument counts of the two programming aborted frame variants.
const (
	ProgrammingAbortedShortArgs = progAbortedShortLength - 3
	ProgrammingAbortedLongArgs  = progAbortedLongLength - 3
)

// ErrProgrammingAbortedArgs is returned for an argument count other than 13 or 18.
var ErrProgrammingAbortedArgs = errors.New("protocol: programming aborted takes 13 or 18 arguments")

// ProgrammingAborted reports an aborted programming operation (OPC_PROG_ABORTED).
//
// The arguments are kept as raw 7 bit bytes; the frame has either 13 or 18 of them.
type ProgrammingAborted struct {
	raw  [ProgrammingAbortedLongArgs]byte
	long bool
}

// NewProgrammingAborted returns a programming aborted message with the given arguments.
func NewProgrammingAborted(raw []byte) (ProgrammingAborted, error) {
	var m ProgrammingAborted
	switch len(raw) {
	case ProgrammingAbortedShortArgs:
	case ProgrammingAbortedLongArgs:
		m.long = true
	default:
		return m, fmt.Errorf("%w: got %d", ErrProgrammingAbortedArgs, len(raw))
	}
	for i, b := range raw {
		m.raw[i] = b & 0x7F
	}

	return m, nil
}

// Args returns a copy of the raw arguments.
func (m ProgrammingAborted) Args() []byte {
	n := ProgrammingAbortedShortArgs
	if m.long {
		n = ProgrammingAbortedLongArgs
	}
	out := make([]byte, n)
	copy(out, m.raw[:n])

	return out
}

func (ProgrammingAborted) Opcode() byte { return OpProgrammingAborted }

func (m ProgrammingAborted) String() string {
	return fmt.Sprintf("ProgrammingAborted(args=% X)", m.Args())
}

func (m ProgrammingAborted) appendFrame(dst []byte) []byte {
	n := byte(progAbortedShortLength)
	if m.long {
		n = progAbortedLongLength
	}

	return append(append(dst, m.Opcode(), n), m.Args()...)
}
