package protocol

import "fmt"

// LocoNet opcodes.
const (
	OpBusy               byte = 0x81
	OpGpOff              byte = 0x82
	OpGpOn               byte = 0x83
	OpIdle               byte = 0x85
	OpLocoSpd            byte = 0xA0
	OpLocoDirf           byte = 0xA1
	OpLocoSnd            byte = 0xA2
	OpSwReq              byte = 0xB0
	OpSwRep              byte = 0xB1
	OpInputRep           byte = 0xB2
	OpLongAck            byte = 0xB4
	OpSlotStat1          byte = 0xB5
	OpConsistFunc        byte = 0xB6
	OpUnlinkSlots        byte = 0xB8
	OpLinkSlots          byte = 0xB9
	OpMoveSlots          byte = 0xBA
	OpRqSlData           byte = 0xBB
	OpSwState            byte = 0xBC
	OpSwAck              byte = 0xBD
	OpLocoAdr            byte = 0xBF
	OpMultiSense         byte = 0xD0
	OpUhliFun            byte = 0xD4
	OpRep                byte = 0xE4
	OpPeerXfer           byte = 0xE5
	OpProgrammingAborted byte = 0xE6
	OpSlRdData           byte = 0xE7
	OpImmPacket          byte = 0xED
	OpWrSlData           byte = 0xEF
)

// MaxFrameLength is the longest frame a variable length opcode can declare.
const MaxFrameLength = 0x7F

var opcodeNames = map[byte]string{
	OpBusy:               "OPC_BUSY",
	OpGpOff:              "OPC_GPOFF",
	OpGpOn:               "OPC_GPON",
	OpIdle:               "OPC_IDLE",
	OpLocoSpd:            "OPC_LOCO_SPD",
	OpLocoDirf:           "OPC_LOCO_DIRF",
	OpLocoSnd:            "OPC_LOCO_SND",
	OpSwReq:              "OPC_SW_REQ",
	OpSwRep:              "OPC_SW_REP",
	OpInputRep:           "OPC_INPUT_REP",
	OpLongAck:            "OPC_LONG_ACK",
	OpSlotStat1:          "OPC_SLOT_STAT1",
	OpConsistFunc:        "OPC_CONSIST_FUNC",
	OpUnlinkSlots:        "OPC_UNLINK_SLOTS",
	OpLinkSlots:          "OPC_LINK_SLOTS",
	OpMoveSlots:          "OPC_MOVE_SLOTS",
	OpRqSlData:           "OPC_RQ_SL_DATA",
	OpSwState:            "OPC_SW_STATE",
	OpSwAck:              "OPC_SW_ACK",
	OpLocoAdr:            "OPC_LOCO_ADR",
	OpMultiSense:         "OPC_MULTI_SENSE",
	OpUhliFun:            "OPC_UHLI_FUN",
	OpRep:                "OPC_REP",
	OpPeerXfer:           "OPC_PEER_XFER",
	OpProgrammingAborted: "OPC_PROG_ABORTED",
	OpSlRdData:           "OPC_SL_RD_DATA",
	OpImmPacket:          "OPC_IMM_PACKET",
	OpWrSlData:           "OPC_WR_SL_DATA",
}

// OpcodeName returns the mnemonic of opc, or a hex representation for unknown opcodes.
func OpcodeName(opc byte) string {
	if name, ok := opcodeNames[opc]; ok {
		return name
	}

	return fmt.Sprintf("OPC_0x%02X", opc)
}

// IsKnownOpcode reports whether opc belongs to the message catalog.
func IsKnownOpcode(opc byte) bool {
	_, ok := opcodeNames[opc]
	return ok
}

// IsVariableLength reports whether the frame length of opc is carried in the second frame byte.
func IsVariableLength(opc byte) bool {
	return opc&0xE0 == 0xE0
}

// FixedLength returns the frame length of a fixed length opcode class.
// ok is false for variable length opcodes and for bytes that are not opcodes.
func FixedLength(opc byte) (n int, ok bool) {
	switch opc & 0xE0 {
	case 0x80:
		return 2, true
	case 0xA0:
		return 4, true
	case 0xC0:
		return 6, true
	}

	return 0, false
}

// FrameLength returns the total length of the frame starting with prefix.
//
// For variable length opcodes prefix must contain at least the opcode and the length byte.
func FrameLength(prefix []byte) (int, error) {
	if len(prefix) == 0 {
		return 0, newParseError(ErrUnexpectedEnd, 0, "empty frame")
	}

	opc := prefix[0]
	if n, ok := FixedLength(opc); ok {
		return n, nil
	}
	if !IsVariableLength(opc) {
		return 0, newParseError(ErrUnknownOpcode, opc, "")
	}
	if len(prefix) < 2 {
		return 0, newParseError(ErrUnexpectedEnd, opc, "missing length byte")
	}

	n := int(prefix[1])
	if n < 3 || n > MaxFrameLength {
		return 0, newParseError(ErrInvalidFormat, opc, fmt.Sprintf("frame length %d out of range [3, %d]", n, MaxFrameLength))
	}

	return n, nil
}
