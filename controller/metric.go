package controller

import "sync/atomic"

// Metrics contains atomic counters of a Controller.
// The values can back a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// FrameRecvCount is the number of complete frames read, valid or not.
	FrameRecvCount atomic.Uint64
	// FrameSendCount is the number of frames written.
	FrameSendCount atomic.Uint64
	// EchoCount is the number of sends confirmed by their echo.
	EchoCount atomic.Uint64
	// AnswerCount is the number of correlated acknowledgments.
	AnswerCount atomic.Uint64
	// ParseErrCount is the number of frames that failed to decode.
	ParseErrCount atomic.Uint64
	// SendTimeoutCount is the number of sends that timed out.
	SendTimeoutCount atomic.Uint64
	// WriteErrCount is the number of failed port writes.
	WriteErrCount atomic.Uint64
	// SendInflight is 1 while a sent frame waits for its echo.
	SendInflight atomic.Int32
}

func (m *Metrics) incFrameRecvCount()   { m.FrameRecvCount.Add(1) }
func (m *Metrics) incFrameSendCount()   { m.FrameSendCount.Add(1) }
func (m *Metrics) incEchoCount()        { m.EchoCount.Add(1) }
func (m *Metrics) incAnswerCount()      { m.AnswerCount.Add(1) }
func (m *Metrics) incParseErrCount()    { m.ParseErrCount.Add(1) }
func (m *Metrics) incSendTimeoutCount() { m.SendTimeoutCount.Add(1) }
func (m *Metrics) incWriteErrCount()    { m.WriteErrCount.Add(1) }

// Snapshot returns the current counter values keyed by name, for logging.
func (m *Metrics) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"frames_recv":   m.FrameRecvCount.Load(),
		"frames_sent":   m.FrameSendCount.Load(),
		"echoes":        m.EchoCount.Load(),
		"answers":       m.AnswerCount.Load(),
		"parse_errors":  m.ParseErrCount.Load(),
		"send_timeouts": m.SendTimeoutCount.Load(),
		"write_errors":  m.WriteErrCount.Load(),
	}
}
