package protocol

import (
	"fmt"

	"github.com/arloliu/go-loconet/args"
)

// Parse decodes the frame at the start of frame.
//
// Parse reads exactly the number of bytes the opcode declares; trailing bytes are ignored.
// The returned error is a *ParseError whose Kind is ErrUnknownOpcode, ErrUnexpectedEnd,
// ErrInvalidChecksum or ErrInvalidFormat.
func Parse(frame []byte) (Message, error) {
	n, err := FrameLength(frame)
	if err != nil {
		return nil, err
	}

	opc := frame[0]
	if len(frame) < n {
		return nil, newParseError(ErrUnexpectedEnd, opc, fmt.Sprintf("got %d of %d bytes", len(frame), n))
	}

	frame = frame[:n]
	if !Validate(frame) {
		return nil, newParseError(ErrInvalidChecksum, opc, fmt.Sprintf("checksum 0x%02X", frame[n-1]))
	}

	switch n {
	case 2:
		return parse2(opc)
	case 4:
		return parse4(opc, frame[1:3])
	case 6:
		return parse6(opc, frame[1:5])
	}

	// payload without opcode, length and checksum
	return parseVar(opc, frame[2:n-1])
}

func parse2(opc byte) (Message, error) {
	switch opc {
	case OpIdle:
		return Idle{}, nil
	case OpGpOn:
		return GpOn{}, nil
	case OpGpOff:
		return GpOff{}, nil
	case OpBusy:
		return Busy{}, nil
	}

	return nil, newParseError(ErrUnknownOpcode, opc, "")
}

func parse4(opc byte, a []byte) (Message, error) {
	switch opc {
	case OpLocoAdr:
		return LocoAdr{Address: args.ParseAddress(a[1], a[0])}, nil
	case OpSwAck:
		return SwAck{Switch: args.ParseSwitch(a[0], a[1])}, nil
	case OpSwState:
		return SwState{Switch: args.ParseSwitch(a[0], a[1])}, nil
	case OpSwReq:
		return SwReq{Switch: args.ParseSwitch(a[0], a[1])}, nil
	case OpRqSlData:
		return RqSlData{Slot: args.ParseSlot(a[0])}, nil
	case OpMoveSlots:
		return MoveSlots{Src: args.ParseSlot(a[0]), Dst: args.ParseSlot(a[1])}, nil
	case OpLinkSlots:
		return LinkSlots{Slave: args.ParseSlot(a[0]), Master: args.ParseSlot(a[1])}, nil
	case OpUnlinkSlots:
		return UnlinkSlots{Slave: args.ParseSlot(a[0]), Master: args.ParseSlot(a[1])}, nil
	case OpConsistFunc:
		return ConsistFunc{Slot: args.ParseSlot(a[0]), Dirf: args.ParseDirf(a[1])}, nil
	case OpSlotStat1:
		stat1, err := args.ParseStat1(a[1])
		if err != nil {
			return nil, formatError(opc, err)
		}
		return SlotStat1{Slot: args.ParseSlot(a[0]), Stat1: stat1}, nil
	case OpLongAck:
		return LongAck{Lopc: args.ParseLopc(a[0]), Ack1: args.ParseAck1(a[1])}, nil
	case OpInputRep:
		return InputRep{In: args.ParseIn(a[0], a[1])}, nil
	case OpSwRep:
		return SwRep{Sn: args.ParseSn(a[0], a[1])}, nil
	case OpLocoSnd:
		return LocoSnd{Slot: args.ParseSlot(a[0]), Snd: args.ParseSnd(a[1])}, nil
	case OpLocoDirf:
		return LocoDirf{Slot: args.ParseSlot(a[0]), Dirf: args.ParseDirf(a[1])}, nil
	case OpLocoSpd:
		return LocoSpd{Slot: args.ParseSlot(a[0]), Speed: args.ParseSpeed(a[1])}, nil
	}

	return nil, newParseError(ErrUnknownOpcode, opc, "")
}

func parse6(opc byte, a []byte) (Message, error) {
	switch opc {
	case OpMultiSense:
		return MultiSense{
			Sense:   args.ParseMultiSense(a[0], a[1]),
			Address: args.ParseAddress(a[3], a[2]),
		}, nil
	case OpUhliFun:
		if a[0] != uhliFunMarker {
			return nil, newParseError(ErrInvalidFormat, opc,
				fmt.Sprintf("expected 0x%02X as first argument, got 0x%02X", uhliFunMarker, a[0]))
		}
		fn, err := args.ParseFunctions(a[2], a[3])
		if err != nil {
			return nil, formatError(opc, err)
		}
		return UhliFun{Slot: args.ParseSlot(a[1]), Functions: fn}, nil
	}

	return nil, newParseError(ErrUnknownOpcode, opc, "")
}

// checkLength compares the declared frame length with the length a format requires.
func checkLength(opc byte, p []byte, want int) error {
	got := len(p) + 3
	switch {
	case got < want:
		return newParseError(ErrUnexpectedEnd, opc, fmt.Sprintf("frame length %d, format requires %d", got, want))
	case got > want:
		return newParseError(ErrInvalidFormat, opc, fmt.Sprintf("frame length %d, format requires %d", got, want))
	}

	return nil
}

func parseVar(opc byte, p []byte) (Message, error) {
	switch opc {
	case OpSlRdData:
		if err := checkLength(opc, p, slotDataLength); err != nil {
			return nil, err
		}
		d, err := parseSlotData(p)
		if err != nil {
			return nil, formatError(opc, err)
		}
		return SlRdData{SlotData: d}, nil

	case OpWrSlData:
		if err := checkLength(opc, p, slotDataLength); err != nil {
			return nil, err
		}
		m, err := parseWrSlData(p)
		if err != nil {
			return nil, formatError(opc, err)
		}
		return m, nil

	case OpImmPacket:
		if err := checkLength(opc, p, immPacketLength); err != nil {
			return nil, err
		}
		if p[0] != immPacketMarker {
			return nil, newParseError(ErrInvalidFormat, opc,
				fmt.Sprintf("expected 0x%02X as first argument, got 0x%02X", immPacketMarker, p[0]))
		}
		var im [args.MaxImmediateBytes]byte
		copy(im[:], p[3:8])
		return ImmPacket{Packet: args.ParseImmediatePacket(p[1], p[2], im)}, nil

	case OpRep:
		return parseRep(opc, p)

	case OpPeerXfer:
		if err := checkLength(opc, p, peerXferLength); err != nil {
			return nil, err
		}
		return PeerXfer{
			Src:  args.ParseSlot(p[0]),
			Dst:  args.ParseDst(p[1], p[2]),
			Data: args.ParsePeerData(p[3], [4]byte(p[4:8]), p[8], [4]byte(p[9:13])),
		}, nil

	case OpProgrammingAborted:
		n := len(p) + 3
		if n < progAbortedShortLength {
			return nil, newParseError(ErrUnexpectedEnd, opc, fmt.Sprintf("frame length %d", n))
		}
		m, err := NewProgrammingAborted(p)
		if err != nil {
			return nil, formatError(opc, err)
		}
		return m, nil
	}

	return nil, newParseError(ErrUnknownOpcode, opc, "")
}

func parseRep(opc byte, p []byte) (Message, error) {
	if len(p) == 0 {
		return nil, newParseError(ErrUnexpectedEnd, opc, "missing report selector")
	}

	switch p[0] {
	case args.ReportLissy, args.ReportWheelcnt:
		if err := checkLength(opc, p, repShortLength); err != nil {
			return nil, err
		}
		if p[0] == args.ReportLissy {
			return Rep{Report: LissyReport{args.ParseLissy(p[1], p[2], p[3], p[4])}}, nil
		}
		return Rep{Report: WheelcntReport{args.ParseWheelcnt(p[1], p[2], p[3], p[4])}}, nil

	case args.ReportRFID:
		n := len(p) + 3
		switch {
		case n < repRFID5Length:
			return nil, newParseError(ErrUnexpectedEnd, opc, fmt.Sprintf("rfid report length %d", n))
		case n == repRFID5Length, n == repRFID7Length:
			tag := p[3 : len(p)-1]
			return Rep{Report: RFIDReport{args.ParseRFID(p[1], p[2], tag, p[len(p)-1])}}, nil
		}
		return nil, newParseError(ErrInvalidFormat, opc, fmt.Sprintf("rfid report length %d", n))
	}

	return nil, newParseError(ErrInvalidFormat, opc, fmt.Sprintf("unknown report selector 0x%02X", p[0]))
}
