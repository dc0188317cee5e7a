package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"go.bug.st/serial"
)

// ErrClosed is returned by operations on a closed port.
var ErrClosed = errors.New("transport: port closed")

// Port is the byte stream a controller reads frames from and writes frames to.
type Port interface {
	// Read reads up to len(p) bytes. It returns (0, nil) when the read timeout
	// elapses before any byte arrives.
	io.Reader
	// Write writes all of p or returns an error.
	io.Writer
	io.Closer
	// SetReadTimeout bounds every following Read. A non-positive d blocks until data arrives.
	SetReadTimeout(d time.Duration) error
}

// IsClosed reports whether err means that the port is gone for good.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}

	var perr *serial.PortError
	if errors.As(err, &perr) && perr.Code() == serial.PortClosed {
		return true
	}

	return errors.Is(err, ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}

// Kind selects a transport implementation.
type Kind string

const (
	KindSerial    Kind = "serial"
	KindWebSocket Kind = "websocket"
	KindTCP       Kind = "tcp"
)

// Config describes how to open a port.
type Config struct {
	Kind Kind `yaml:"kind"`

	// serial
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
	RTS      bool   `yaml:"rts"`
	DTR      bool   `yaml:"dtr"`

	// websocket
	URL                string `yaml:"url"`
	Username           string `yaml:"username"`
	Password           string `yaml:"-"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`

	// tcp
	Address string `yaml:"address"`

	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// DefaultBaudRate is the line rate of a LocoBuffer/PR3 style interface.
const DefaultBaudRate = 57600

const defaultDialTimeout = 10 * time.Second

// Open opens the port described by cfg.
func Open(cfg Config) (Port, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	switch cfg.Kind {
	case KindSerial, "":
		if cfg.Device == "" {
			return nil, errors.New("transport: serial device is empty")
		}
		return OpenSerial(cfg.Device, SerialOptions{BaudRate: cfg.BaudRate, RTS: cfg.RTS, DTR: cfg.DTR})

	case KindWebSocket:
		return DialWebSocket(cfg.URL, WebSocketOptions{
			Username:           cfg.Username,
			Password:           cfg.Password,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			HandshakeTimeout:   dialTimeout,
		})

	case KindTCP:
		conn, err := net.DialTimeout("tcp", cfg.Address, dialTimeout)
		if err != nil {
			return nil, fmt.Errorf("transport: dial %s: %w", cfg.Address, err)
		}
		return FromConn(conn), nil
	}

	return nil, fmt.Errorf("transport: unknown kind %q", cfg.Kind)
}

// Describe returns a short human readable description of cfg.
func (cfg Config) Describe() string {
	switch cfg.Kind {
	case KindWebSocket:
		return "websocket " + cfg.URL
	case KindTCP:
		return "tcp " + cfg.Address
	}

	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}

	return fmt.Sprintf("serial %s @ %d baud", cfg.Device, baud)
}

// connPort adapts a net.Conn to Port using read deadlines.
type connPort struct {
	conn    net.Conn
	timeout time.Duration
}

// FromConn returns a Port reading from and writing to conn.
func FromConn(conn net.Conn) Port {
	return &connPort{conn: conn}
}

func (p *connPort) Read(b []byte) (int, error) {
	var deadline time.Time
	if p.timeout > 0 {
		deadline = time.Now().Add(p.timeout)
	}
	if err := p.conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}

	n, err := p.conn.Read(b)
	if err != nil && n == 0 && errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, nil
	}

	return n, err
}

func (p *connPort) Write(b []byte) (int, error) {
	written := 0
	for written < len(b) {
		n, err := p.conn.Write(b[written:])
		written += n
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

func (p *connPort) Close() error {
	return p.conn.Close()
}

func (p *connPort) SetReadTimeout(d time.Duration) error {
	p.timeout = d
	return nil
}
