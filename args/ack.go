package args

import "fmt"

// Lopc is the copy of a request opcode carried by a long acknowledgment, with its
// most significant bit removed.
type Lopc byte

// NewLopc returns the lopc byte for request opcode opc.
func NewLopc(opc byte) Lopc { return Lopc(opc & 0x7F) }

// ParseLopc decodes a LOPC byte.
func ParseLopc(b byte) Lopc { return Lopc(b & 0x7F) }

// Matches reports whether l is the opcode copy of opc.
func (l Lopc) Matches(opc byte) bool { return byte(l) == opc&0x7F }

// Opcode returns the acknowledged opcode with its most significant bit restored.
func (l Lopc) Opcode() byte { return byte(l) | 0x80 }

// Wire returns the LOPC byte.
func (l Lopc) Wire() byte { return byte(l) & 0x7F }

// Ack1 is the response code of a long acknowledgment.
type Ack1 byte

const (
	// AckFailed rejects the request.
	AckFailed Ack1 = 0x00
	// AckAccepted accepts the request for later processing.
	AckAccepted Ack1 = 0x01
	// AckAcceptedBlind accepts the request without a completion reply.
	AckAcceptedBlind Ack1 = 0x40
	// AckSuccess confirms the request.
	AckSuccess Ack1 = 0x7F
)

// NewAck1 returns a success or failure response code.
func NewAck1(success bool) Ack1 {
	if success {
		return AckSuccess
	}
	return AckFailed
}

// ParseAck1 decodes an ACK1 byte.
func ParseAck1(b byte) Ack1 { return Ack1(b & 0x7F) }

func (a Ack1) Success() bool { return a == AckSuccess }

func (a Ack1) Failed() bool { return a == AckFailed }

func (a Ack1) Accepted() bool { return a == AckAccepted }

func (a Ack1) AcceptedBlind() bool { return a == AckAcceptedBlind }

// LimitedSuccess reports whether the request did not fail; the code carries a
// request specific result.
func (a Ack1) LimitedSuccess() bool { return a != AckFailed }

// Wire returns the ACK1 byte.
func (a Ack1) Wire() byte { return byte(a) & 0x7F }

func (a Ack1) String() string {
	switch a {
	case AckSuccess:
		return "success"
	case AckFailed:
		return "failed"
	case AckAccepted:
		return "accepted"
	case AckAcceptedBlind:
		return "accepted-blind"
	}
	return fmt.Sprintf("limited(0x%02X)", byte(a))
}
