// Package protocol implements the LocoNet message catalog.
//
// A LocoNet frame is laid out as [opcode, args..., checksum]. The three most significant
// bits of the opcode select the frame length:
//
//	0x80  2 bytes
//	0xA0  4 bytes
//	0xC0  6 bytes
//	0xE0  variable, the second byte holds the total frame length
//
// The checksum byte makes the XOR of all frame bytes equal 0xFF.
//
// Parse decodes a frame into one of the Message types of this package and Encode
// produces the frame of a Message, including its checksum. For every message m built
// from the constructors in this package and in package args, Parse(Encode(m)) returns m.
package protocol
