package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arloliu/go-loconet/args"
	"github.com/arloliu/go-loconet/protocol"
	"github.com/arloliu/go-loconet/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidArguments(t *testing.T) {
	local, _ := newPipeConn(t)
	port := transport.FromConn(local)

	_, err := New(nil, &recorder{})
	require.Error(t, err)

	_, err = New(port, nil)
	require.Error(t, err)

	_, err = New(port, &recorder{}, WithSendTimeout(time.Hour))
	require.Error(t, err)
}

func TestController_SendMessage_EchoAndAnswer(t *testing.T) {
	require := require.New(t)

	ctrl, remote, rec := newTestController(t)
	startBus(t, remote, echoAndAck)

	req := protocol.SwReq{Switch: args.NewSwitch(12, args.Straight, true)}
	require.NoError(ctrl.SendMessage(context.Background(), req))

	ack := protocol.LongAck{Lopc: args.NewLopc(protocol.OpSwReq), Ack1: args.AckSuccess}
	rec.waitMessage(t, ack)

	events := rec.all()
	require.Len(events, 3)

	require.Equal(EventMessage, events[0].Kind)
	require.Equal(req, events[0].Message)
	require.True(events[0].Echo)
	require.Equal(protocol.Encode(req), events[0].Raw)

	require.Equal(EventAnswer, events[1].Kind)
	require.Equal(ack, events[1].Message)
	require.Equal(req, events[1].Request)
	require.False(events[1].Echo)

	require.Equal(EventMessage, events[2].Kind)
	require.Equal(ack, events[2].Message)

	m := ctrl.Metrics()
	require.Equal(uint64(1), m.FrameSendCount.Load())
	require.Equal(uint64(1), m.EchoCount.Load())
	require.Equal(uint64(1), m.AnswerCount.Load())
	require.Equal(uint64(2), m.FrameRecvCount.Load())
	require.Zero(m.SendInflight.Load())
}

func TestController_SendMessage_IgnoreEcho(t *testing.T) {
	require := require.New(t)

	ctrl, remote, rec := newTestController(t, WithIgnoreEcho(true))
	startBus(t, remote, echoAndAck)

	req := protocol.LocoAdr{Address: args.NewAddress(3)}
	require.NoError(ctrl.SendMessage(context.Background(), req))

	ack := protocol.LongAck{Lopc: args.NewLopc(protocol.OpLocoAdr), Ack1: args.AckSuccess}
	rec.waitMessage(t, ack)

	events := rec.all()
	require.Len(events, 2)
	require.Equal(EventAnswer, events[0].Kind)
	require.Equal(req, events[0].Request)
	require.Equal(EventMessage, events[1].Kind)
	require.Equal(ack, events[1].Message)
}

func TestController_SendMessage_Timeout(t *testing.T) {
	require := require.New(t)

	ctrl, remote, rec := newTestController(t, WithSendTimeout(50*time.Millisecond))
	bus := startBus(t, remote, nil)

	begin := time.Now()
	err := ctrl.SendMessage(context.Background(), protocol.GpOn{})
	require.ErrorIs(err, ErrTimeout)
	require.GreaterOrEqual(time.Since(begin), 45*time.Millisecond)

	require.Equal(protocol.Encode(protocol.GpOn{}), <-bus.frames)
	require.Equal(uint64(1), ctrl.Metrics().SendTimeoutCount.Load())
	require.Empty(rec.all())

	// a late echo confirms nothing and is delivered as an ordinary message
	mustWrite(t, remote, protocol.Encode(protocol.GpOn{}))
	rec.waitMessage(t, protocol.GpOn{})
	require.False(rec.all()[0].Echo)
}

func TestController_SendMessage_ContextCanceled(t *testing.T) {
	ctrl, remote, _ := newTestController(t)
	startBus(t, remote, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := ctrl.SendMessage(ctx, protocol.GpOff{})
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrTimeout)
}

func TestController_SendMessage_BackToBack(t *testing.T) {
	require := require.New(t)

	ctrl, remote, rec := newTestController(t, WithSendTimeout(2*time.Second))

	var echoing atomic.Bool
	bus := startBus(t, remote, func(frame []byte) [][]byte {
		if echoing.Load() {
			return echo(frame)
		}
		return nil
	})

	first := protocol.SwReq{Switch: args.NewSwitch(1, args.Curved, true)}
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- ctrl.SendMessage(context.Background(), first)
	}()

	firstFrame := <-bus.frames
	require.Equal(protocol.Encode(first), firstFrame)

	// the write slot is taken by the unconfirmed first frame
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	second := protocol.LocoSpd{Slot: args.NewSlot(3), Speed: args.SpeedDrive(10)}
	err := ctrl.SendMessage(ctx, second)
	require.ErrorIs(err, ErrTimeout)
	require.ErrorIs(err, context.DeadlineExceeded)

	select {
	case frame := <-bus.frames:
		t.Fatalf("second frame reached the bus: % X", frame)
	default:
	}

	// the pending echo of the first frame is intact
	mustWrite(t, remote, firstFrame)
	require.NoError(<-firstDone)

	echoing.Store(true)
	require.NoError(ctrl.SendMessage(context.Background(), second))
	rec.waitMessage(t, second)
	require.Equal(uint64(2), ctrl.Metrics().EchoCount.Load())
}

func TestController_SendMessage_Concurrent(t *testing.T) {
	require := require.New(t)

	ctrl, remote, rec := newTestController(t, WithSendTimeout(5*time.Second))
	startBus(t, remote, echoAndAck)

	const senders = 10

	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(addr uint16) {
			defer wg.Done()
			errs <- ctrl.SendMessage(context.Background(), protocol.SwReq{Switch: args.NewSwitch(addr, args.Straight, true)})
		}(uint16(i + 1))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(err)
	}

	require.Eventually(func() bool {
		return len(rec.ofKind(EventAnswer)) == senders
	}, 2*time.Second, 5*time.Millisecond)

	seen := make(map[uint16]bool)
	for _, ev := range rec.ofKind(EventAnswer) {
		req, ok := ev.Request.(protocol.SwReq)
		require.True(ok)
		seen[req.Switch.Address()] = true
	}
	require.Len(seen, senders)
}

func TestController_AnswerCorrelation(t *testing.T) {
	swReq := protocol.SwReq{Switch: args.NewSwitch(7, args.Straight, true)}
	swAck := protocol.LongAck{Lopc: args.NewLopc(protocol.OpSwReq), Ack1: args.AckSuccess}
	locoAdr := protocol.LocoAdr{Address: args.NewAddress(1234)}
	slot := protocol.SlRdData{SlotData: protocol.SlotData{Slot: args.NewSlot(4), Address: args.NewAddress(1234)}}

	badChecksum := protocol.Encode(protocol.GpOn{})
	badChecksum[1] ^= 0x01

	tests := []struct {
		desc    string
		frames  [][]byte
		answers int
	}{
		{"long ack", [][]byte{protocol.Encode(swReq), protocol.Encode(swAck)}, 1},
		{"slot data", [][]byte{protocol.Encode(locoAdr), protocol.Encode(slot)}, 1},
		{"idle in between", [][]byte{protocol.Encode(swReq), protocol.Encode(protocol.Idle{}), protocol.Encode(swAck)}, 1},
		{"other message in between", [][]byte{protocol.Encode(swReq), protocol.Encode(protocol.GpOn{}), protocol.Encode(swAck)}, 0},
		{"malformed frame in between", [][]byte{protocol.Encode(swReq), badChecksum, protocol.Encode(swAck)}, 0},
		{"ack for another opcode", [][]byte{protocol.Encode(locoAdr), protocol.Encode(swAck)}, 0},
		{"unsolicited ack", [][]byte{protocol.Encode(swAck)}, 0},
		{"second ack", [][]byte{protocol.Encode(swReq), protocol.Encode(swAck), protocol.Encode(swAck)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, remote, rec := newTestController(t)

			for _, frame := range tt.frames {
				mustWrite(t, remote, frame)
			}

			marker := protocol.Busy{}
			mustWrite(t, remote, protocol.Encode(marker))
			rec.waitMessage(t, marker)

			require.Len(t, rec.ofKind(EventAnswer), tt.answers)
		})
	}
}

func TestController_MalformedFrames(t *testing.T) {
	require := require.New(t)

	ctrl, remote, rec := newTestController(t)

	badChecksum := protocol.Encode(protocol.LocoSpd{Slot: args.NewSlot(1)})
	badChecksum[3] ^= 0x10

	mustWrite(t, remote, badChecksum)
	mustWrite(t, remote, []byte{0x05})                      // data byte without opcode
	mustWrite(t, remote, []byte{0x84, 0xFF ^ 0x84})         // unassigned 2 byte opcode
	mustWrite(t, remote, []byte{protocol.OpSlRdData, 0x02}) // length below minimum
	mustWrite(t, remote, []byte{protocol.OpLocoSpd, 0x01})  // truncated
	time.Sleep(3 * ctrl.Config().FrameTimeout())
	mustWrite(t, remote, protocol.Encode(protocol.GpOn{}))

	rec.waitMessage(t, protocol.GpOn{})

	errs := rec.ofKind(EventError)
	require.Len(errs, 5)
	require.ErrorIs(errs[0].Err, protocol.ErrInvalidChecksum)
	require.Equal(badChecksum, errs[0].Raw)
	require.ErrorIs(errs[1].Err, protocol.ErrUnknownOpcode)
	require.ErrorIs(errs[2].Err, protocol.ErrUnknownOpcode)
	require.ErrorIs(errs[3].Err, protocol.ErrInvalidFormat)
	require.ErrorIs(errs[4].Err, protocol.ErrUnexpectedEnd)
	require.Equal([]byte{protocol.OpLocoSpd, 0x01}, errs[4].Raw)

	var perr *protocol.ParseError
	require.ErrorAs(errs[4].Err, &perr)
	require.Equal(protocol.OpLocoSpd, perr.Opcode)

	require.True(ctrl.IsRunning())
	require.Empty(rec.ofKind(EventFatal))
	require.Equal(uint64(5), ctrl.Metrics().ParseErrCount.Load())
}

func TestController_HighBitStartsNextFrame(t *testing.T) {
	tests := []struct {
		name string
		cut  []byte
	}{
		{"length byte", []byte{protocol.OpSlRdData}},
		{"fixed frame payload", []byte{protocol.OpLocoSpd, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			ctrl, remote, rec := newTestController(t)

			gpOn := protocol.Encode(protocol.GpOn{})
			mustWrite(t, remote, append(bytes.Clone(tt.cut), gpOn...))

			rec.waitMessage(t, protocol.GpOn{})

			errs := rec.ofKind(EventError)
			require.Len(errs, 1)
			require.ErrorIs(errs[0].Err, protocol.ErrUnexpectedEnd)
			require.Equal(tt.cut, errs[0].Raw)

			var perr *protocol.ParseError
			require.ErrorAs(errs[0].Err, &perr)
			require.Equal(tt.cut[0], perr.Opcode)

			msgs := rec.ofKind(EventMessage)
			require.Len(msgs, 1)
			require.Equal(gpOn, msgs[0].Raw)
			require.True(ctrl.IsRunning())
		})
	}
}

func TestController_Fatal(t *testing.T) {
	require := require.New(t)

	ctrl, remote, rec := newTestController(t)

	require.NoError(remote.Close())

	require.Eventually(func() bool { return !ctrl.IsRunning() }, time.Second, 2*time.Millisecond)

	fatal := rec.ofKind(EventFatal)
	require.Len(fatal, 1)
	require.True(transport.IsClosed(fatal[0].Err))
	require.Equal(EventFatal, rec.all()[len(rec.all())-1].Kind)

	err := ctrl.SendMessage(context.Background(), protocol.GpOn{})
	require.ErrorIs(err, ErrIllegalState)
}

func TestController_FatalInsideFrame(t *testing.T) {
	require := require.New(t)

	ctrl, remote, rec := newTestController(t)

	mustWrite(t, remote, []byte{protocol.OpSlRdData, 0x0E, 0x03})
	require.NoError(remote.Close())

	require.Eventually(func() bool { return !ctrl.IsRunning() }, time.Second, 2*time.Millisecond)

	events := rec.all()
	require.Len(events, 2)
	require.Equal(EventError, events[0].Kind)
	require.ErrorIs(events[0].Err, protocol.ErrUnexpectedEnd)
	require.Equal([]byte{protocol.OpSlRdData, 0x0E, 0x03}, events[0].Raw)
	require.Equal(EventFatal, events[1].Kind)
}

func TestController_Lifecycle(t *testing.T) {
	require := require.New(t)

	ctrl, remote, rec := newTestController(t)
	startBus(t, remote, echo)

	require.True(ctrl.IsRunning())
	require.ErrorIs(ctrl.Start(), ErrIllegalState)

	ctrl.Stop()
	require.False(ctrl.IsRunning())
	ctrl.Stop()

	require.ErrorIs(ctrl.SendMessage(context.Background(), protocol.GpOn{}), ErrIllegalState)

	require.NoError(ctrl.Start())
	require.NoError(ctrl.SendMessage(context.Background(), protocol.GpOn{}))
	rec.waitMessage(t, protocol.GpOn{})

	require.NoError(ctrl.Close())
	require.NoError(ctrl.Close())
	require.False(ctrl.IsRunning())
	require.ErrorIs(ctrl.Start(), ErrIllegalState)

	require.Empty(rec.ofKind(EventFatal))
}

func TestController_SendWithoutReader(t *testing.T) {
	local, _ := newPipeConn(t)

	ctrl, err := New(transport.FromConn(local), &recorder{})
	require.NoError(t, err)

	require.ErrorIs(t, ctrl.SendMessage(context.Background(), protocol.GpOn{}), ErrIllegalState)
	require.Error(t, ctrl.SendMessage(context.Background(), nil))
	require.NoError(t, ctrl.Close())
}

func TestController_PanickingSink(t *testing.T) {
	local, remote := newPipeConn(t)

	var calls atomic.Int32
	sink := SinkFunc(func(ev Event) {
		if calls.Add(1) == 1 {
			panic("sink failure")
		}
	})

	ctrl, err := New(transport.FromConn(local), sink, WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)
	defer ctrl.Close()
	require.NoError(t, ctrl.Start())

	mustWrite(t, remote, protocol.Encode(protocol.GpOn{}))
	mustWrite(t, remote, protocol.Encode(protocol.GpOff{}))

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 2*time.Millisecond)
	assert.True(t, ctrl.IsRunning())
}

// mockPort is a transport.Port whose behavior is scripted with testify.
type mockPort struct {
	mock.Mock
}

var _ transport.Port = (*mockPort)(nil)

func (m *mockPort) Read(b []byte) (int, error) {
	time.Sleep(time.Millisecond)
	ret := m.Called(b)
	return ret.Int(0), ret.Error(1)
}

func (m *mockPort) Write(b []byte) (int, error) {
	ret := m.Called(b)
	return ret.Int(0), ret.Error(1)
}

func (m *mockPort) Close() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *mockPort) SetReadTimeout(d time.Duration) error {
	ret := m.Called(d)
	return ret.Error(0)
}

func TestController_WriteFailure(t *testing.T) {
	require := require.New(t)

	port := &mockPort{}
	port.On("SetReadTimeout", 5*time.Millisecond).Return(nil)
	port.On("Read", mock.Anything).Return(0, nil)
	port.On("Write", mock.Anything).Return(0, fmt.Errorf("line down"))
	port.On("Close").Return(nil)

	ctrl, err := New(port, &recorder{}, WithPollInterval(5*time.Millisecond))
	require.NoError(err)
	require.NoError(ctrl.Start())

	err = ctrl.SendMessage(context.Background(), protocol.GpOn{})
	require.ErrorIs(err, ErrNotWritable)
	require.ErrorContains(err, "line down")
	require.Equal(uint64(1), ctrl.Metrics().WriteErrCount.Load())

	// the failed write released the write slot
	err = ctrl.SendMessage(context.Background(), protocol.GpOff{})
	require.ErrorIs(err, ErrNotWritable)

	require.NoError(ctrl.Close())
	port.AssertCalled(t, "Close")
	port.AssertNumberOfCalls(t, "Write", 2)
}

func TestController_StartFailure(t *testing.T) {
	port := &mockPort{}
	port.On("SetReadTimeout", mock.Anything).Return(errors.New("not supported"))

	ctrl, err := New(port, &recorder{})
	require.NoError(t, err)

	require.ErrorContains(t, ctrl.Start(), "not supported")
	require.False(t, ctrl.IsRunning())
}
