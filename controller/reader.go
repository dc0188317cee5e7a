package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-loconet/protocol"
	"github.com/arloliu/go-loconet/transport"
)

// readerTask reads one frame per call. It returns false to end the reader.
func (c *Controller) readerTask(_ context.Context) bool {
	if c.stopping.Load() {
		return false
	}

	return c.readFrame()
}

// readFrame reads the next frame from the port and hands it to handleFrame.
//
// The opcode byte is read with the poll timeout, so an idle bus returns after one
// interval. Once an opcode has arrived, the rest of the frame must follow with gaps no
// longer than the frame timeout.
func (c *Controller) readFrame() bool {
	buf := c.rbuf[:]

	n, err := c.readPort(buf[:1])
	if err != nil {
		c.fatal(err)
		return false
	}
	if n == 0 {
		return true
	}

	read := 1
	size, err := protocol.FrameLength(buf[:read])
	if errors.Is(err, protocol.ErrUnexpectedEnd) {
		// variable length opcode, the length byte follows
		m, rerr := c.readFull(buf[read : read+1])
		read += m
		if c.resync(buf[:read]) {
			return true
		}
		if rerr != nil {
			return c.incomplete(buf[:read], rerr)
		}
		size, err = protocol.FrameLength(buf[:read])
	}
	if err != nil {
		c.reportError(bytes.Clone(buf[:read]), err)
		return true
	}

	n, err = c.readFull(buf[read:size])
	read += n
	if c.resync(buf[:read]) {
		return true
	}
	if err != nil {
		return c.incomplete(buf[:read], err)
	}

	c.metrics.incFrameRecvCount()
	c.handleFrame(bytes.Clone(buf[:size]))

	return true
}

// readFull fills buf, allowing at most the frame timeout between two bytes.
func (c *Controller) readFull(buf []byte) (int, error) {
	deadline := time.Now().Add(c.cfg.frameTimeout)

	read := 0
	for read < len(buf) {
		if c.stopping.Load() {
			return read, errStopping
		}

		n, err := c.readPort(buf[read:])
		read += n
		if err != nil {
			return read, err
		}

		if n > 0 {
			deadline = time.Now().Add(c.cfg.frameTimeout)
		} else if time.Now().After(deadline) {
			return read, errFrameTimeout
		}
	}

	return read, nil
}

// readPort reads into buf, serving bytes held back by resync before reading the port.
func (c *Controller) readPort(buf []byte) (int, error) {
	if len(c.carry) > 0 {
		n := copy(buf, c.carry)
		c.carry = c.carry[n:]

		return n, nil
	}

	return c.port.Read(buf)
}

// resync cuts frame at the first byte after the opcode that has the high bit set.
// That byte opens the next frame, so it and the bytes after it are held back. The cut
// prefix is reported as truncated. It returns whether frame was cut.
func (c *Controller) resync(frame []byte) bool {
	for i := 1; i < len(frame); i++ {
		if frame[i]&0x80 == 0 {
			continue
		}

		_, err := protocol.Parse(frame[:i])
		c.reportError(bytes.Clone(frame[:i]), err)
		c.carry = append(bytes.Clone(frame[i:]), c.carry...)

		return true
	}

	return false
}

// incomplete handles a frame that ended early. It returns whether the reader goes on.
func (c *Controller) incomplete(partial []byte, err error) bool {
	switch {
	case errors.Is(err, errStopping):
		return false
	case errors.Is(err, errFrameTimeout):
		// parsing the partial frame yields the unexpected end error for its opcode
		_, perr := protocol.Parse(partial)
		c.reportError(bytes.Clone(partial), fmt.Errorf("no data for %v: %w", c.cfg.frameTimeout, perr))
		return true
	}

	// the stream ended inside a frame
	if !c.stopping.Load() {
		_, perr := protocol.Parse(partial)
		c.reportError(bytes.Clone(partial), perr)
	}
	c.fatal(err)

	return false
}

// handleFrame confirms a pending echo, decodes frame and delivers the resulting events.
func (c *Controller) handleFrame(frame []byte) {
	echo := c.sess.confirm(frame)
	if echo {
		c.metrics.incEchoCount()
		c.logger.Debug("controller: echo confirmed", "frame", hexFrame(frame))
	}

	msg, err := protocol.Parse(frame)
	if err != nil {
		c.sess.observeError()
		c.deliver(Event{Kind: EventError, Raw: frame, Echo: echo, Err: err})
		c.metrics.incParseErrCount()
		c.logger.Warn("controller: malformed frame", "frame", hexFrame(frame), "error", err)

		return
	}

	c.logger.Debug("controller: frame received", "opcode", protocol.OpcodeName(msg.Opcode()), "message", msg)

	if req := c.sess.observe(msg); req != nil {
		c.metrics.incAnswerCount()
		c.deliver(Event{Kind: EventAnswer, Message: msg, Request: req, Raw: frame, Echo: echo})
	}

	if echo && c.cfg.ignoreEcho {
		return
	}

	c.deliver(Event{Kind: EventMessage, Message: msg, Raw: frame, Echo: echo})
}

// reportError delivers a framing error that happened before a frame was complete.
func (c *Controller) reportError(raw []byte, err error) {
	c.sess.observeError()
	c.metrics.incParseErrCount()
	c.logger.Warn("controller: framing error", "bytes", hexFrame(raw), "error", err)
	c.deliver(Event{Kind: EventError, Raw: raw, Err: err})
}

// fatal reports the transport error that ends the reader.
func (c *Controller) fatal(err error) {
	if c.stopping.Load() && transport.IsClosed(err) {
		c.logger.Debug("controller: port closed during stop", "error", err)
		return
	}

	c.logger.Error("controller: transport failed, reader exits", "error", err)
	c.deliver(Event{Kind: EventFatal, Err: fmt.Errorf("controller: read: %w", err)})
}

// deliver passes ev to the sink. A panicking sink is logged and does not stop the reader.
func (c *Controller) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("controller: panic in sink", "event", ev.Kind, "panic", r)
		}
	}()

	c.sink.Deliver(ev)
}
