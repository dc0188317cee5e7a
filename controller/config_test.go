package controller

import (
	"testing"
	"time"

	"github.com/arloliu/go-loconet/logger"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	require := require.New(t)

	cfg, err := NewConfig()
	require.NoError(err)
	require.Equal(DefaultSendTimeout, cfg.SendTimeout())
	require.Equal(DefaultPollInterval, cfg.PollInterval())
	require.Equal(DefaultFrameTimeout, cfg.FrameTimeout())
	require.Equal(DefaultCloseTimeout, cfg.CloseTimeout())
	require.False(cfg.IgnoreEcho())
	require.NotNil(cfg.GetLogger())
}

func TestNewConfig_Options(t *testing.T) {
	require := require.New(t)

	l := logger.NewQuietMockLogger()
	cfg, err := NewConfig(
		WithSendTimeout(MinSendTimeout),
		WithPollInterval(MaxPollInterval),
		WithFrameTimeout(2*time.Second),
		WithCloseTimeout(time.Second),
		WithIgnoreEcho(true),
		WithLogger(l),
	)
	require.NoError(err)
	require.Equal(MinSendTimeout, cfg.SendTimeout())
	require.Equal(MaxPollInterval, cfg.PollInterval())
	require.Equal(2*time.Second, cfg.FrameTimeout())
	require.Equal(time.Second, cfg.CloseTimeout())
	require.True(cfg.IgnoreEcho())
	require.Same(l, cfg.GetLogger())
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		desc string
		opt  ConnOption
	}{
		{"send timeout too short", WithSendTimeout(MinSendTimeout - 1)},
		{"send timeout too long", WithSendTimeout(MaxSendTimeout + 1)},
		{"poll interval zero", WithPollInterval(0)},
		{"poll interval too long", WithPollInterval(MaxPollInterval + 1)},
		{"frame timeout too short", WithFrameTimeout(MinFrameTimeout - 1)},
		{"frame timeout too long", WithFrameTimeout(MaxFrameTimeout + 1)},
		{"close timeout zero", WithCloseTimeout(0)},
		{"nil logger", WithLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg, err := NewConfig(tt.opt)
			require.Error(t, err)
			require.Nil(t, cfg)
		})
	}
}

func TestNewConfig_FrameTimeoutBelowPollInterval(t *testing.T) {
	_, err := NewConfig(WithPollInterval(500*time.Millisecond), WithFrameTimeout(100*time.Millisecond))
	require.ErrorContains(t, err, "shorter than poll interval")
}
