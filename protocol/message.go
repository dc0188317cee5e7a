package protocol

import (
	"fmt"

	"github.com/arloliu/go-loconet/args"
)

// Message is a decoded LocoNet message.
//
// The set of implementations is closed; every type of this package that implements
// Message corresponds to one opcode.
type Message interface {
	// Opcode returns the opcode byte of the message.
	Opcode() byte
	// String returns a human readable representation of the message.
	String() string

	// appendFrame appends the frame bytes without the checksum to dst.
	appendFrame(dst []byte) []byte
}

// Encode returns the complete frame of m, including the checksum byte.
func Encode(m Message) []byte {
	frame := m.appendFrame(make([]byte, 0, 16))
	return append(frame, Checksum(frame))
}

// Name returns the opcode mnemonic of m.
func Name(m Message) string {
	return OpcodeName(m.Opcode())
}

// Idle forces the bus into the idle state (OPC_IDLE).
type Idle struct{}

// GpOn switches global track power on (OPC_GPON).
type GpOn struct{}

// GpOff switches global track power off (OPC_GPOFF).
type GpOff struct{}

// Busy is sent by the master while it is busy (OPC_BUSY).
type Busy struct{}

func (Idle) Opcode() byte  { return OpIdle }
func (GpOn) Opcode() byte  { return OpGpOn }
func (GpOff) Opcode() byte { return OpGpOff }
func (Busy) Opcode() byte  { return OpBusy }

func (Idle) String() string  { return "Idle" }
func (GpOn) String() string  { return "GpOn" }
func (GpOff) String() string { return "GpOff" }
func (Busy) String() string  { return "Busy" }

func (m Idle) appendFrame(dst []byte) []byte  { return append(dst, m.Opcode()) }
func (m GpOn) appendFrame(dst []byte) []byte  { return append(dst, m.Opcode()) }
func (m GpOff) appendFrame(dst []byte) []byte { return append(dst, m.Opcode()) }
func (m Busy) appendFrame(dst []byte) []byte  { return append(dst, m.Opcode()) }

// LocoAdr requests the slot of a locomotive address (OPC_LOCO_ADR).
// The command station answers with a slot data read or a long acknowledgment.
type LocoAdr struct {
	Address args.Address
}

func (LocoAdr) Opcode() byte { return OpLocoAdr }

func (m LocoAdr) String() string { return fmt.Sprintf("LocoAdr(address=%s)", m.Address) }

// The high address byte comes first.
func (m LocoAdr) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Address.Hi(), m.Address.Lo())
}

// SwAck requests a switch change and asks for an acknowledgment (OPC_SW_ACK).
type SwAck struct {
	Switch args.Switch
}

// SwState requests the state of a switch (OPC_SW_STATE).
type SwState struct {
	Switch args.Switch
}

// SwReq requests a switch change (OPC_SW_REQ).
type SwReq struct {
	Switch args.Switch
}

func (SwAck) Opcode() byte   { return OpSwAck }
func (SwState) Opcode() byte { return OpSwState }
func (SwReq) Opcode() byte   { return OpSwReq }

func (m SwAck) String() string   { return "SwAck(" + m.Switch.String() + ")" }
func (m SwState) String() string { return "SwState(" + m.Switch.String() + ")" }
func (m SwReq) String() string   { return "SwReq(" + m.Switch.String() + ")" }

func (m SwAck) appendFrame(dst []byte) []byte   { return appendSwitch(dst, m.Opcode(), m.Switch) }
func (m SwState) appendFrame(dst []byte) []byte { return appendSwitch(dst, m.Opcode(), m.Switch) }
func (m SwReq) appendFrame(dst []byte) []byte   { return appendSwitch(dst, m.Opcode(), m.Switch) }

func appendSwitch(dst []byte, opc byte, sw args.Switch) []byte {
	sw1, sw2 := sw.Wire()
	return append(dst, opc, sw1, sw2)
}

// RqSlData requests the data of a slot (OPC_RQ_SL_DATA).
type RqSlData struct {
	Slot args.Slot
}

func (RqSlData) Opcode() byte { return OpRqSlData }

func (m RqSlData) String() string { return fmt.Sprintf("RqSlData(slot=%s)", m.Slot) }

func (m RqSlData) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Slot.Wire(), 0x00)
}

// MoveSlots moves the data of slot Src to slot Dst (OPC_MOVE_SLOTS).
// Moving a slot to itself marks it in use; moving slot 0 dispatches.
type MoveSlots struct {
	Src args.Slot
	Dst args.Slot
}

// LinkSlots links slot Slave into the consist of slot Master (OPC_LINK_SLOTS).
type LinkSlots struct {
	Slave  args.Slot
	Master args.Slot
}

// UnlinkSlots removes slot Slave from the consist of slot Master (OPC_UNLINK_SLOTS).
type UnlinkSlots struct {
	Slave  args.Slot
	Master args.Slot
}

func (MoveSlots) Opcode() byte   { return OpMoveSlots }
func (LinkSlots) Opcode() byte   { return OpLinkSlots }
func (UnlinkSlots) Opcode() byte { return OpUnlinkSlots }

func (m MoveSlots) String() string {
	return fmt.Sprintf("MoveSlots(src=%s, dst=%s)", m.Src, m.Dst)
}

func (m LinkSlots) String() string {
	return fmt.Sprintf("LinkSlots(slave=%s, master=%s)", m.Slave, m.Master)
}

func (m UnlinkSlots) String() string {
	return fmt.Sprintf("UnlinkSlots(slave=%s, master=%s)", m.Slave, m.Master)
}

func (m MoveSlots) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Src.Wire(), m.Dst.Wire())
}

func (m LinkSlots) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Slave.Wire(), m.Master.Wire())
}

func (m UnlinkSlots) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Slave.Wire(), m.Master.Wire())
}

// ConsistFunc sets direction and F0-F4 of a consist member (OPC_CONSIST_FUNC).
type ConsistFunc struct {
	Slot args.Slot
	Dirf args.Dirf
}

func (ConsistFunc) Opcode() byte { return OpConsistFunc }

func (m ConsistFunc) String() string {
	return fmt.Sprintf("ConsistFunc(slot=%s, %s)", m.Slot, m.Dirf)
}

func (m ConsistFunc) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Slot.Wire(), m.Dirf.Wire())
}

// SlotStat1 writes the first status byte of a slot (OPC_SLOT_STAT1).
type SlotStat1 struct {
	Slot  args.Slot
	Stat1 args.Stat1
}

func (SlotStat1) Opcode() byte { return OpSlotStat1 }

func (m SlotStat1) String() string {
	return fmt.Sprintf("SlotStat1(slot=%s, %s)", m.Slot, m.Stat1)
}

func (m SlotStat1) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Slot.Wire(), m.Stat1.Wire())
}

// LongAck answers a request whose opcode copy is Lopc (OPC_LONG_ACK).
type LongAck struct {
	Lopc args.Lopc
	Ack1 args.Ack1
}

func (LongAck) Opcode() byte { return OpLongAck }

func (m LongAck) String() string {
	return fmt.Sprintf("LongAck(%s, %s)", OpcodeName(m.Lopc.Opcode()), m.Ack1)
}

func (m LongAck) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Lopc.Wire(), m.Ack1.Wire())
}

// Answers reports whether m acknowledges the request req.
func (m LongAck) Answers(req Message) bool {
	return req != nil && m.Lopc.Matches(req.Opcode())
}

// InputRep reports a sensor input (OPC_INPUT_REP).
type InputRep struct {
	In args.In
}

func (InputRep) Opcode() byte { return OpInputRep }

func (m InputRep) String() string {
	return fmt.Sprintf("InputRep(address=%d, source=%t, level=%t)", m.In.Address(), m.In.Source(), m.In.Level())
}

func (m InputRep) appendFrame(dst []byte) []byte {
	in1, in2 := m.In.Wire()
	return append(dst, m.Opcode(), in1, in2)
}

// SwRep reports a switch sensor state (OPC_SW_REP).
type SwRep struct {
	Sn args.Sn
}

func (SwRep) Opcode() byte { return OpSwRep }

func (m SwRep) String() string {
	if isSwitch, active, ok := m.Sn.SwitchType(); ok {
		return fmt.Sprintf("SwRep(address=%d, switch=%t, active=%t)", m.Sn.Address(), isSwitch, active)
	}
	straight, curved, _ := m.Sn.OutputLevels()

	return fmt.Sprintf("SwRep(address=%d, straight=%t, curved=%t)", m.Sn.Address(), straight, curved)
}

func (m SwRep) appendFrame(dst []byte) []byte {
	sn1, sn2 := m.Sn.Wire()
	return append(dst, m.Opcode(), sn1, sn2)
}

// LocoSnd sets functions F5-F8 of a slot (OPC_LOCO_SND).
type LocoSnd struct {
	Slot args.Slot
	Snd  args.Snd
}

// LocoDirf sets direction and functions F0-F4 of a slot (OPC_LOCO_DIRF).
type LocoDirf struct {
	Slot args.Slot
	Dirf args.Dirf
}

// LocoSpd sets the speed of a slot (OPC_LOCO_SPD).
type LocoSpd struct {
	Slot  args.Slot
	Speed args.Speed
}

func (LocoSnd) Opcode() byte  { return OpLocoSnd }
func (LocoDirf) Opcode() byte { return OpLocoDirf }
func (LocoSpd) Opcode() byte  { return OpLocoSpd }

func (m LocoSnd) String() string  { return fmt.Sprintf("LocoSnd(slot=%s, %s)", m.Slot, m.Snd) }
func (m LocoDirf) String() string { return fmt.Sprintf("LocoDirf(slot=%s, %s)", m.Slot, m.Dirf) }
func (m LocoSpd) String() string  { return fmt.Sprintf("LocoSpd(slot=%s, %s)", m.Slot, m.Speed) }

func (m LocoSnd) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Slot.Wire(), m.Snd.Wire())
}

func (m LocoDirf) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Slot.Wire(), m.Dirf.Wire())
}

func (m LocoSpd) appendFrame(dst []byte) []byte {
	return append(dst, m.Opcode(), m.Slot.Wire(), m.Speed.Wire())
}
