package protocol

// ExpectsAck reports whether the bus confirms m with a later long acknowledgment or
// slot data read. These are the messages a long acknowledgment follows.
func ExpectsAck(m Message) bool {
	switch m.(type) {
	case LocoAdr, SwAck, SwState, SwReq, WrSlData, ImmPacket:
		return true
	}

	return false
}

// ExpectsSlotData reports whether m completes with a slot data read instead of a
// long acknowledgment.
func ExpectsSlotData(m Message) bool {
	switch m.(type) {
	case LocoAdr, RqSlData, MoveSlots, LinkSlots, UnlinkSlots:
		return true
	}

	return false
}

// ExpectsAnswer reports whether m expects any kind of correlated answer.
func ExpectsAnswer(m Message) bool {
	return ExpectsAck(m) || ExpectsSlotData(m)
}

// IsAnswerTo reports whether answer is the correlated reply to the request req:
// a long acknowledgment whose opcode copy matches req, or a slot data read when
// req expects slot data.
func IsAnswerTo(answer Message, req Message) bool {
	if req == nil {
		return false
	}

	switch a := answer.(type) {
	case LongAck:
		return a.Answers(req)
	case SlRdData:
		return ExpectsSlotData(req)
	}

	return false
}
