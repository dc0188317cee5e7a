package controller

import "errors"

// Errors returned by SendMessage and the lifecycle methods.
var (
	// ErrIllegalState is returned when an operation does not fit the reader state,
	// e.g. a send while the reader is not running.
	ErrIllegalState = errors.New("controller: illegal state")
	// ErrNotWritable is returned when the port rejects a write.
	ErrNotWritable = errors.New("controller: port not writable")
	// ErrTimeout is returned when a send is not echoed within the send timeout.
	ErrTimeout = errors.New("controller: send timeout")
	// ErrCloseTimeout is returned by Close when the reader does not exit in time.
	ErrCloseTimeout = errors.New("controller: close timeout")
)

// errFrameTimeout ends a frame whose bytes stopped arriving.
var errFrameTimeout = errors.New("frame timeout")

// errStopping ends a read because the reader was asked to stop.
var errStopping = errors.New("reader stopping")
