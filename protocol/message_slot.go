package protocol

import (
	"fmt"

	"github.com/arloliu/go-loconet/args"
)

// slotDataLength is the frame length of slot data reads and writes.
const slotDataLength = 0x0E

// Selectors of the special slot write payloads; they coincide with the slot numbers
// of the programming and fast clock slots.
const (
	wrSlProgramming byte = 0x7C
	wrSlFastClock   byte = 0x7B
)

// SlotData is the content of a regular command station slot.
//
// Wire layout after opcode and length: SLOT, STAT1, ADR, SPD, DIRF, TRK, STAT2, ADR2,
// SND, ID1, ID2. The high address byte sits after STAT2.
type SlotData struct {
	Slot    args.Slot
	Stat1   args.Stat1
	Address args.Address
	Speed   args.Speed
	Dirf    args.Dirf
	Trk     args.Trk
	Stat2   args.Stat2
	Snd     args.Snd
	ID      args.ID
}

func parseSlotData(p []byte) (SlotData, error) {
	stat1, err := args.ParseStat1(p[1])
	if err != nil {
		return SlotData{}, err
	}

	return SlotData{
		Slot:    args.ParseSlot(p[0]),
		Stat1:   stat1,
		Address: args.ParseAddress(p[2], p[7]),
		Speed:   args.ParseSpeed(p[3]),
		Dirf:    args.ParseDirf(p[4]),
		Trk:     args.ParseTrk(p[5]),
		Stat2:   args.ParseStat2(p[6]),
		Snd:     args.ParseSnd(p[8]),
		ID:      args.ParseID(p[9], p[10]),
	}, nil
}

func (d SlotData) appendPayload(dst []byte) []byte {
	id1, id2 := d.ID.Wire()
	return append(dst,
		d.Slot.Wire(), d.Stat1.Wire(), d.Address.Lo(), d.Speed.Wire(), d.Dirf.Wire(),
		d.Trk.Wire(), d.Stat2.Wire(), d.Address.Hi(), d.Snd.Wire(), id1, id2)
}

func (d SlotData) String() string {
	return fmt.Sprintf("slot=%s, address=%s, %s, %s, %s, %s, id=%d",
		d.Slot, d.Address, d.Speed, d.Dirf, d.Snd, d.Stat1, d.ID.Value())
}

func (SlotData) isWrSlPayload() {}

// SlRdData reports the content of a slot (OPC_SL_RD_DATA).
type SlRdData struct {
	SlotData
}

func (SlRdData) Opcode() byte { return OpSlRdData }

func (m SlRdData) String() string { return "SlRdData(" + m.SlotData.String() + ")" }

func (m SlRdData) appendFrame(dst []byte) []byte {
	return m.appendPayload(append(dst, m.Opcode(), slotDataLength))
}

// WrSlPayload is the payload of a slot write. It is one of SlotData, ClockData
// and ProgrammingData.
type WrSlPayload interface {
	isWrSlPayload()
	String() string
}

// ClockData sets the fast clock (slot write to the fast clock slot).
//
// Wire layout: 0x7B, CLK_RATE, FRAC_MINSL, FRAC_MINSH, MINS, TRK, HRS, DAYS, CLK_CNTRL, ID1, ID2.
type ClockData struct {
	Clock args.FastClock
	Trk   args.Trk
	ID    args.ID
}

func (ClockData) isWrSlPayload() {}

func (d ClockData) String() string {
	return fmt.Sprintf("clock(rate=%d, %02d:%02d, day=%d, control=0x%02X, id=%d)",
		d.Clock.Rate, d.Clock.Hours, d.Clock.Minutes, d.Clock.Days, d.Clock.Control, d.ID.Value())
}

// ProgrammingData starts a programming track operation (slot write to the programming slot).
//
// Wire layout: 0x7C, PCMD, 0x00, HOPSA, LOPSA, TRK, CVH, CVL, DATA7, 0x00, 0x00.
type ProgrammingData struct {
	Pcmd    args.Pcmd
	Address args.Address // operations mode address
	Trk     args.Trk
	CvData  args.CvData
}

func (ProgrammingData) isWrSlPayload() {}

func (d ProgrammingData) String() string {
	return fmt.Sprintf("programming(write=%t, ops=%t, address=%s, cv=%d, data=0x%02X)",
		d.Pcmd.Write(), d.Pcmd.OpsMode(), d.Address, d.CvData.CV(), d.CvData.Data())
}

// WrSlData writes slot data (OPC_WR_SL_DATA).
//
// The first payload byte selects the layout: 0x7C writes the programming slot,
// 0x7B writes the fast clock slot and every other value is a regular slot number.
// A SlotData payload for slot 123 or 124 therefore decodes as ClockData or ProgrammingData.
type WrSlData struct {
	Payload WrSlPayload
}

func (WrSlData) Opcode() byte { return OpWrSlData }

func (m WrSlData) String() string {
	if m.Payload == nil {
		return "WrSlData(<nil>)"
	}

	return "WrSlData(" + m.Payload.String() + ")"
}

func (m WrSlData) appendFrame(dst []byte) []byte {
	dst = append(dst, m.Opcode(), slotDataLength)

	switch p := m.Payload.(type) {
	case ProgrammingData:
		cvh, cvl, data7 := p.CvData.Wire()
		return append(dst, wrSlProgramming, p.Pcmd.Wire(), 0x00, p.Address.Hi(), p.Address.Lo(),
			p.Trk.Wire(), cvh, cvl, data7, 0x00, 0x00)
	case ClockData:
		fracl, frach := p.Clock.FracWire()
		id1, id2 := p.ID.Wire()
		return append(dst, wrSlFastClock, p.Clock.Rate, fracl, frach, p.Clock.Minutes,
			p.Trk.Wire(), p.Clock.Hours, p.Clock.Days, p.Clock.Control, id1, id2)
	case SlotData:
		return p.appendPayload(dst)
	}

	// a nil payload writes an empty dispatch slot
	return SlotData{}.appendPayload(dst)
}

func parseWrSlData(p []byte) (WrSlData, error) {
	switch p[0] {
	case wrSlProgramming:
		return WrSlData{Payload: ProgrammingData{
			Pcmd:    args.ParsePcmd(p[1]),
			Address: args.ParseAddress(p[4], p[3]),
			Trk:     args.ParseTrk(p[5]),
			CvData:  args.ParseCvData(p[6], p[7], p[8]),
		}}, nil
	case wrSlFastClock:
		return WrSlData{Payload: ClockData{
			Clock: args.ParseFastClock(p[1], p[2], p[3], p[4], p[6], p[7], p[8]),
			Trk:   args.ParseTrk(p[5]),
			ID:    args.ParseID(p[9], p[10]),
		}}, nil
	}

	d, err := parseSlotData(p)
	if err != nil {
		return WrSlData{}, err
	}

	return WrSlData{Payload: d}, nil
}
