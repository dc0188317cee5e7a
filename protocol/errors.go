package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode indicates that the opcode of a frame is not part of the message catalog.
	ErrUnknownOpcode = errors.New("protocol: unknown opcode")
	// ErrUnexpectedEnd indicates that a frame ended before all bytes its format requires were read.
	ErrUnexpectedEnd = errors.New("protocol: unexpected end of frame")
	// ErrInvalidChecksum indicates that the XOR of all frame bytes is not 0xFF.
	ErrInvalidChecksum = errors.New("protocol: invalid checksum")
	// ErrInvalidFormat indicates that a fixed byte or a sub-format selector of a known message
	// holds an unsupported value.
	ErrInvalidFormat = errors.New("protocol: invalid format")
)

// ParseError describes why a frame could not be decoded.
//
// Kind is one of ErrUnknownOpcode, ErrUnexpectedEnd, ErrInvalidChecksum and ErrInvalidFormat,
// so callers can test for the error class with errors.Is.
type ParseError struct {
	Kind   error
	Opcode byte
	Detail string
	Err    error // underlying field codec error, if any
}

func newParseError(kind error, opc byte, detail string) *ParseError {
	return &ParseError{Kind: kind, Opcode: opc, Detail: detail}
}

func formatError(opc byte, err error) *ParseError {
	return &ParseError{Kind: ErrInvalidFormat, Opcode: opc, Detail: err.Error(), Err: err}
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s (opcode 0x%02X)", e.Kind, e.Opcode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}

	return []error{e.Kind}
}
