package controller

import (
	"fmt"

	"github.com/arloliu/go-loconet/protocol"
)

// EventKind classifies an Event.
type EventKind uint8

const (
	// EventMessage carries a decoded frame.
	EventMessage EventKind = iota + 1
	// EventAnswer carries an acknowledgment together with the message it answers.
	// It precedes the EventMessage of the same frame.
	EventAnswer
	// EventError carries a frame that could not be decoded. The reader continues.
	EventError
	// EventFatal carries the transport error that ended the reader. It is the last event of a run.
	EventFatal
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventAnswer:
		return "answer"
	case EventError:
		return "error"
	case EventFatal:
		return "fatal"
	}

	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is one item the reader delivers to a Sink.
type Event struct {
	Kind EventKind
	// Message is the decoded frame of EventMessage and the acknowledgment of EventAnswer.
	Message protocol.Message
	// Request is the message an EventAnswer answers.
	Request protocol.Message
	// Raw holds the bytes of the frame, possibly incomplete for EventError.
	Raw []byte
	// Echo is set when the frame confirmed a send of this controller.
	Echo bool
	// Err is set for EventError and EventFatal.
	Err error
}

func (e Event) String() string {
	switch e.Kind {
	case EventMessage:
		return fmt.Sprintf("message %s [% X]", e.Message, e.Raw)
	case EventAnswer:
		return fmt.Sprintf("answer %s to %s", e.Message, e.Request)
	case EventError:
		return fmt.Sprintf("error %v [% X]", e.Err, e.Raw)
	case EventFatal:
		return fmt.Sprintf("fatal %v", e.Err)
	}

	return e.Kind.String()
}

// Sink receives the events of a controller.
//
// Deliver is called from the reader goroutine, one event at a time and in wire order.
// A slow sink delays reading, which may make sends time out.
type Sink interface {
	Deliver(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

// Deliver calls f(ev).
func (f SinkFunc) Deliver(ev Event) { f(ev) }

// ChanSink delivers events to a channel. Deliver blocks until the event is received.
type ChanSink chan<- Event

// Deliver sends ev on the channel.
func (c ChanSink) Deliver(ev Event) { c <- ev }
