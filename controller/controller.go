package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-loconet/internal/pool"
	"github.com/arloliu/go-loconet/internal/task"
	"github.com/arloliu/go-loconet/logger"
	"github.com/arloliu/go-loconet/protocol"
	"github.com/arloliu/go-loconet/transport"
)

// Controller drives one bus connection. See the package documentation for an overview.
type Controller struct {
	cfg    *Config
	logger logger.Logger
	port   transport.Port
	sink   Sink

	taskMgr *task.Manager
	sess    session

	// sendSem is the single write slot; holding it means owning the pending echo.
	sendSem chan struct{}

	running  atomic.Bool
	stopping atomic.Bool
	closed   atomic.Bool
	lifeMu   sync.Mutex // serializes Start, Stop and Close

	doneMu sync.RWMutex
	done   chan struct{} // closed when the reader of the current run exits

	rbuf  [protocol.MaxFrameLength]byte
	carry []byte // bytes read past a cut frame, served before the port

	metrics Metrics
}

// New creates a Controller for port delivering events to sink. The reader is not started.
func New(port transport.Port, sink Sink, opts ...ConnOption) (*Controller, error) {
	if port == nil {
		return nil, errors.New("controller: port is nil")
	}
	if sink == nil {
		return nil, errors.New("controller: sink is nil")
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:     cfg,
		logger:  cfg.logger,
		port:    port,
		sink:    sink,
		taskMgr: task.NewManager(context.Background(), cfg.logger),
		sendSem: make(chan struct{}, 1),
	}

	return c, nil
}

// Start starts the reader. It fails with ErrIllegalState when the reader is already
// running or the controller is closed.
func (c *Controller) Start() error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("%w: controller is closed", ErrIllegalState)
	}
	if c.running.Load() {
		return fmt.Errorf("%w: reader already running", ErrIllegalState)
	}

	if err := c.port.SetReadTimeout(c.cfg.pollInterval); err != nil {
		return fmt.Errorf("controller: set read timeout: %w", err)
	}

	c.sess.reset()
	c.stopping.Store(false)
	c.carry = nil

	done := make(chan struct{})
	c.doneMu.Lock()
	c.done = done
	c.doneMu.Unlock()

	c.running.Store(true)
	err := c.taskMgr.Start("reader", c.readerTask, func() {
		c.running.Store(false)
		close(done)
	})
	if err != nil {
		c.running.Store(false)
		return err
	}

	c.logger.Info("controller: reader started",
		"poll_interval", c.cfg.pollInterval,
		"send_timeout", c.cfg.sendTimeout)

	return nil
}

// Stop stops the reader and waits for it to exit. The port stays open and Start may be
// called again. Stop is idempotent.
func (c *Controller) Stop() {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	if !c.stopReader() {
		c.logger.Error("controller: reader did not stop in time", "timeout", c.cfg.closeTimeout)
		return
	}

	c.logger.Info("controller: reader stopped")
}

// Close stops the reader, waits for it and closes the port. Close is idempotent.
func (c *Controller) Close() error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	if c.closed.Swap(true) {
		return nil
	}

	c.logger.Debug("controller: start to close")

	var err error
	stopped := c.stopReader()

	if cerr := c.port.Close(); cerr != nil && !transport.IsClosed(cerr) {
		err = fmt.Errorf("controller: close port: %w", cerr)
	}

	// a reader stuck in Read returns once the port is closed
	if !stopped && !c.taskMgr.WaitTimeout(c.cfg.closeTimeout) {
		c.logger.Error("controller: close timeout", "timeout", c.cfg.closeTimeout)
		err = errors.Join(ErrCloseTimeout, err)
	}

	return err
}

func (c *Controller) stopReader() bool {
	c.stopping.Store(true)
	c.taskMgr.Stop()

	return c.taskMgr.WaitTimeout(c.cfg.closeTimeout)
}

// IsRunning reports whether the reader is running.
func (c *Controller) IsRunning() bool {
	return c.running.Load()
}

// Metrics returns the counters of the controller.
func (c *Controller) Metrics() *Metrics {
	return &c.metrics
}

// Config returns the configuration of the controller.
func (c *Controller) Config() *Config {
	return c.cfg
}

// SendMessage writes msg and waits until the reader sees it echoed on the bus.
//
// Concurrent calls are served one at a time. The whole call, including the wait for
// the write slot, is bounded by the send timeout and by ctx. It returns ErrIllegalState
// when the reader is not running, ErrNotWritable when the write fails and ErrTimeout
// when the echo does not arrive in time. Acknowledgments are not awaited; they reach
// the sink as EventAnswer.
func (c *Controller) SendMessage(ctx context.Context, msg protocol.Message) error {
	if msg == nil {
		return errors.New("controller: message is nil")
	}
	if !c.running.Load() {
		return fmt.Errorf("%w: reader is not running", ErrIllegalState)
	}

	done := c.readerDone()

	timer := pool.GetTimer(c.cfg.sendTimeout)
	defer pool.PutTimer(timer)

	select {
	case c.sendSem <- struct{}{}:
	case <-timer.C:
		c.metrics.incSendTimeoutCount()
		return fmt.Errorf("%w: waiting for a pending send", ErrTimeout)
	case <-ctx.Done():
		return ctxError(ctx)
	case <-done:
		return fmt.Errorf("%w: reader stopped", ErrIllegalState)
	}
	defer func() { <-c.sendSem }()

	frame := protocol.Encode(msg)
	echoed := c.sess.arm(frame)

	c.metrics.SendInflight.Store(1)
	defer c.metrics.SendInflight.Store(0)

	if _, err := c.port.Write(frame); err != nil {
		c.sess.disarm()
		c.metrics.incWriteErrCount()
		c.logger.Error("controller: write failed", "message", msg, "error", err)

		return fmt.Errorf("%w: %w", ErrNotWritable, err)
	}

	c.metrics.incFrameSendCount()
	c.logger.Debug("controller: frame sent", "message", msg, "frame", hexFrame(frame))

	select {
	case <-echoed:
		return nil

	case <-timer.C:
		if c.echoArrived(echoed) {
			return nil
		}
		c.metrics.incSendTimeoutCount()
		c.logger.Warn("controller: send timeout, no echo", "message", msg, "timeout", c.cfg.sendTimeout)

		return fmt.Errorf("%w: no echo of %s within %v", ErrTimeout, protocol.Name(msg), c.cfg.sendTimeout)

	case <-ctx.Done():
		if c.echoArrived(echoed) {
			return nil
		}
		return ctxError(ctx)

	case <-done:
		if c.echoArrived(echoed) {
			return nil
		}
		return fmt.Errorf("%w: reader stopped", ErrIllegalState)
	}
}

// echoArrived disarms the pending frame and reports whether its echo was seen first.
func (c *Controller) echoArrived(echoed <-chan struct{}) bool {
	c.sess.disarm()

	select {
	case <-echoed:
		return true
	default:
		return false
	}
}

func (c *Controller) readerDone() <-chan struct{} {
	c.doneMu.RLock()
	defer c.doneMu.RUnlock()

	return c.done
}

// ctxError maps a context deadline to ErrTimeout while keeping the context error.
func ctxError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return err
}

func hexFrame(frame []byte) string {
	return fmt.Sprintf("% X", frame)
}
