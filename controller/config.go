package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-loconet/logger"
)

// Default configuration values.
const (
	DefaultSendTimeout  = time.Second
	DefaultPollInterval = 50 * time.Millisecond
	DefaultFrameTimeout = 500 * time.Millisecond
	DefaultCloseTimeout = 3 * time.Second
)

// Configuration range limits.
const (
	MinSendTimeout = 10 * time.Millisecond
	MaxSendTimeout = 60 * time.Second

	MinPollInterval = time.Millisecond
	MaxPollInterval = time.Second

	MinFrameTimeout = 10 * time.Millisecond
	MaxFrameTimeout = 10 * time.Second
)

// Config holds the settings of a Controller.
type Config struct {
	// sendTimeout bounds a whole SendMessage call: waiting for the write slot,
	// writing and waiting for the echo.
	sendTimeout time.Duration

	// pollInterval is the read timeout of the port. The reader notices a stop
	// request within one interval.
	pollInterval time.Duration

	// frameTimeout is the longest gap tolerated between two bytes of one frame.
	frameTimeout time.Duration

	closeTimeout time.Duration

	// ignoreEcho suppresses EventMessage for frames that confirm our own sends.
	ignoreEcho bool

	logger logger.Logger
}

// NewConfig creates a configuration from the defaults and opts, applied in order.
func NewConfig(opts ...ConnOption) (*Config, error) {
	cfg := &Config{
		sendTimeout:  DefaultSendTimeout,
		pollInterval: DefaultPollInterval,
		frameTimeout: DefaultFrameTimeout,
		closeTimeout: DefaultCloseTimeout,
		logger:       logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.frameTimeout < cfg.pollInterval {
		return nil, fmt.Errorf("controller: frame timeout %v shorter than poll interval %v",
			cfg.frameTimeout, cfg.pollInterval)
	}

	return cfg, nil
}

// SendTimeout returns the upper bound of a SendMessage call.
func (cfg *Config) SendTimeout() time.Duration { return cfg.sendTimeout }

// PollInterval returns the read timeout used by the reader.
func (cfg *Config) PollInterval() time.Duration { return cfg.pollInterval }

// FrameTimeout returns the inter-byte timeout inside a frame.
func (cfg *Config) FrameTimeout() time.Duration { return cfg.frameTimeout }

// CloseTimeout returns how long Close waits for the reader.
func (cfg *Config) CloseTimeout() time.Duration { return cfg.closeTimeout }

// IgnoreEcho reports whether echoes of own sends are hidden from the sink.
func (cfg *Config) IgnoreEcho() bool { return cfg.ignoreEcho }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// ConnOption is a functional option for configuring a Controller.
type ConnOption interface {
	apply(*Config) error
}

type connOptFunc func(*Config) error

func (f connOptFunc) apply(cfg *Config) error { return f(cfg) }

// WithSendTimeout sets the send timeout. Must be in [10ms, 60s].
func WithSendTimeout(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *Config) error {
		if d < MinSendTimeout || d > MaxSendTimeout {
			return fmt.Errorf("controller: send timeout %v out of range [%v, %v]", d, MinSendTimeout, MaxSendTimeout)
		}
		cfg.sendTimeout = d

		return nil
	})
}

// WithPollInterval sets the read timeout of the reader. Must be in [1ms, 1s].
func WithPollInterval(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *Config) error {
		if d < MinPollInterval || d > MaxPollInterval {
			return fmt.Errorf("controller: poll interval %v out of range [%v, %v]", d, MinPollInterval, MaxPollInterval)
		}
		cfg.pollInterval = d

		return nil
	})
}

// WithFrameTimeout sets the inter-byte timeout inside a frame. Must be in [10ms, 10s]
// and not shorter than the poll interval.
func WithFrameTimeout(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *Config) error {
		if d < MinFrameTimeout || d > MaxFrameTimeout {
			return fmt.Errorf("controller: frame timeout %v out of range [%v, %v]", d, MinFrameTimeout, MaxFrameTimeout)
		}
		cfg.frameTimeout = d

		return nil
	})
}

// WithCloseTimeout sets how long Close waits for the reader to exit.
func WithCloseTimeout(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("controller: close timeout must be positive")
		}
		cfg.closeTimeout = d

		return nil
	})
}

// WithIgnoreEcho hides the echoes of own sends from the sink. Echoes still confirm
// sends and still take part in acknowledgment correlation.
func WithIgnoreEcho(ignore bool) ConnOption {
	return connOptFunc(func(cfg *Config) error {
		cfg.ignoreEcho = ignore

		return nil
	})
}

// WithLogger sets the logger for the controller.
func WithLogger(l logger.Logger) ConnOption {
	return connOptFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("controller: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
