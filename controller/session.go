package controller

import (
	"bytes"
	"sync"

	"github.com/arloliu/go-loconet/protocol"
)

// session is the state shared by the reader and the senders: the frame that waits for
// its echo and the last message that expects an answer.
type session struct {
	mu sync.Mutex

	pending []byte
	echoed  chan struct{}

	awaiting protocol.Message
}

// arm records frame as pending. The returned channel is closed when the reader sees the echo.
func (s *session) arm(frame []byte) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = frame
	s.echoed = make(chan struct{})

	return s.echoed
}

// disarm clears the pending frame unless it was confirmed in the meantime.
func (s *session) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	s.echoed = nil
}

// confirm reports whether frame is the echo of the pending frame and, if so, releases the sender.
func (s *session) confirm(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || !bytes.Equal(s.pending, frame) {
		return false
	}

	close(s.echoed)
	s.pending = nil
	s.echoed = nil

	return true
}

// observe updates the answer tracking with a decoded message. It returns the message
// that msg answers, or nil.
func (s *session) observe(msg protocol.Message) protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	var answered protocol.Message
	if s.awaiting != nil && protocol.IsAnswerTo(msg, s.awaiting) {
		answered = s.awaiting
	}

	switch {
	case isIdle(msg):
		// idle frames fill bus gaps and do not break a request/answer pair
	case protocol.ExpectsAnswer(msg):
		s.awaiting = msg
	default:
		s.awaiting = nil
	}

	return answered
}

// observeError forgets the awaited message after a frame failed to decode.
func (s *session) observeError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.awaiting = nil
}

func (s *session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	s.echoed = nil
	s.awaiting = nil
}

func isIdle(msg protocol.Message) bool {
	_, ok := msg.(protocol.Idle)
	return ok
}
