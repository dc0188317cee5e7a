package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arloliu/go-loconet/args"
	"github.com/arloliu/go-loconet/controller"
	"github.com/arloliu/go-loconet/protocol"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilders(t *testing.T) {
	tests := []struct {
		desc  string
		build func() (protocol.Message, error)
		want  protocol.Message
	}{
		{"power on", func() (protocol.Message, error) { return powerMessage("on") }, protocol.GpOn{}},
		{"power off", func() (protocol.Message, error) { return powerMessage("OFF") }, protocol.GpOff{}},
		{
			"speed step", func() (protocol.Message, error) { return speedMessage("3", "40") },
			protocol.LocoSpd{Slot: args.NewSlot(3), Speed: args.SpeedDrive(40)},
		},
		{
			"speed stop", func() (protocol.Message, error) { return speedMessage("3", "stop") },
			protocol.LocoSpd{Slot: args.NewSlot(3), Speed: args.SpeedStop},
		},
		{
			"speed estop", func() (protocol.Message, error) { return speedMessage("127", "estop") },
			protocol.LocoSpd{Slot: args.NewSlot(127), Speed: args.SpeedEmergencyStop},
		},
		{
			"switch straight", func() (protocol.Message, error) { return switchMessage("1", "straight", true) },
			protocol.SwReq{Switch: args.NewSwitch(0, args.Straight, true)},
		},
		{
			"switch thrown off", func() (protocol.Message, error) { return switchMessage("2048", "thrown", false) },
			protocol.SwReq{Switch: args.NewSwitch(2047, args.Curved, false)},
		},
		{
			"raw", func() (protocol.Message, error) { return rawMessage("A0 0A 7B 2E") },
			protocol.LocoSpd{Slot: args.NewSlot(10), Speed: args.SpeedDrive(0x7B - 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := tt.build()
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMessageBuilders_Invalid(t *testing.T) {
	_, err := powerMessage("maybe")
	require.Error(t, err)

	for _, a := range [][2]string{{"128", "1"}, {"x", "1"}, {"1", "127"}, {"1", "fast"}} {
		_, err = speedMessage(a[0], a[1])
		require.Error(t, err, a)
	}

	for _, a := range [][2]string{{"0", "straight"}, {"2049", "straight"}, {"5", "left"}} {
		_, err = switchMessage(a[0], a[1], true)
		require.Error(t, err, a)
	}

	_, err = rawMessage("83 00")
	require.ErrorIs(t, err, protocol.ErrInvalidChecksum)
}

func TestWaitAnswer(t *testing.T) {
	req := protocol.SwReq{Switch: args.NewSwitch(4, args.Straight, true)}
	ack := protocol.LongAck{Lopc: args.NewLopc(protocol.OpSwReq), Ack1: args.AckSuccess}

	t.Run("answer", func(t *testing.T) {
		hub := controller.NewHub(nil)
		defer hub.Close()
		sub := hub.Subscribe(4)

		other := protocol.SwReq{Switch: args.NewSwitch(9, args.Curved, true)}
		hub.Deliver(controller.Event{Kind: controller.EventMessage, Message: req})
		hub.Deliver(controller.Event{Kind: controller.EventAnswer, Message: ack, Request: other})
		hub.Deliver(controller.Event{Kind: controller.EventAnswer, Message: ack, Request: req})

		got, err := waitAnswer(context.Background(), sub, req, time.Second)
		require.NoError(t, err)
		require.Equal(t, ack, got)
	})

	t.Run("timeout", func(t *testing.T) {
		hub := controller.NewHub(nil)
		defer hub.Close()
		sub := hub.Subscribe(4)

		_, err := waitAnswer(context.Background(), sub, req, 20*time.Millisecond)
		require.ErrorIs(t, err, errNoAnswer)
	})

	t.Run("fatal", func(t *testing.T) {
		hub := controller.NewHub(nil)
		defer hub.Close()
		sub := hub.Subscribe(4)

		boom := errors.New("line down")
		hub.Deliver(controller.Event{Kind: controller.EventFatal, Err: boom})

		_, err := waitAnswer(context.Background(), sub, req, time.Second)
		require.ErrorIs(t, err, boom)
	})

	t.Run("canceled", func(t *testing.T) {
		hub := controller.NewHub(nil)
		defer hub.Close()
		sub := hub.Subscribe(4)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := waitAnswer(ctx, sub, req, time.Second)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestFormatEvent(t *testing.T) {
	ts := time.Date(2024, 1, 2, 13, 4, 5, 6_000_000, time.UTC)

	line := formatEvent(ts, controller.Event{
		Kind:    controller.EventMessage,
		Message: protocol.GpOn{},
		Raw:     []byte{0x83, 0x7C},
		Echo:    true,
	})
	require.Equal(t, "[13:04:05.006] OPC_GPON           GpOn  [83 7C] (echo)", line)

	line = formatEvent(ts, controller.Event{Kind: controller.EventFatal, Err: errors.New("gone")})
	require.Contains(t, line, "FATAL")
	require.Contains(t, line, "gone")
}

func TestMetricArgs(t *testing.T) {
	kv := metricArgs(map[string]uint64{"b": 2, "a": 1})
	require.Equal(t, []any{"a", uint64(1), "b", uint64(2)}, kv)
}
