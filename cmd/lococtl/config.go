package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arloliu/go-loconet/controller"
	"github.com/arloliu/go-loconet/logger"
	"github.com/arloliu/go-loconet/transport"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

const passwordEnv = "LOCONET_PASSWORD"

type logConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

type controllerConfig struct {
	SendTimeout     time.Duration `yaml:"send_timeout"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	FrameTimeout    time.Duration `yaml:"frame_timeout"`
	IgnoreEcho      bool          `yaml:"ignore_echo"`
	MetricsInterval time.Duration `yaml:"metrics_interval"`
}

type config struct {
	Transport  transport.Config `yaml:"transport"`
	Controller controllerConfig `yaml:"controller"`
	Logs       logConfig        `yaml:"logs"`
}

func defaultConfig() config {
	return config{
		Transport: transport.Config{
			Kind:     transport.KindSerial,
			BaudRate: transport.DefaultBaudRate,
		},
		Logs: logConfig{
			Level:      "info",
			MaxSizeMB:  25,
			MaxAgeDays: 7,
			MaxBackups: 5,
		},
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Logs.File != "" && !filepath.IsAbs(cfg.Logs.File) {
		cfg.Logs.File = filepath.Join(filepath.Dir(path), cfg.Logs.File)
	}
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 25
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = 7
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 5
	}

	return cfg, nil
}

// options converts the non-zero settings to controller options.
func (c controllerConfig) options() []controller.ConnOption {
	var opts []controller.ConnOption
	if c.SendTimeout > 0 {
		opts = append(opts, controller.WithSendTimeout(c.SendTimeout))
	}
	if c.PollInterval > 0 {
		opts = append(opts, controller.WithPollInterval(c.PollInterval))
	}
	if c.FrameTimeout > 0 {
		opts = append(opts, controller.WithFrameTimeout(c.FrameTimeout))
	}
	if c.IgnoreEcho {
		opts = append(opts, controller.WithIgnoreEcho(true))
	}

	return opts
}

// connFlags holds the persistent command line flags.
type connFlags struct {
	configPath string
	logLevel   string

	port string
	baud int

	url         string
	username    string
	noSSLVerify bool

	addr string
}

// apply overrides cfg with the flags that were given.
func (f connFlags) apply(cfg *config) error {
	selected := 0
	for _, s := range []string{f.port, f.url, f.addr} {
		if s != "" {
			selected++
		}
	}
	if selected > 1 {
		return errors.New("--port, --url and --addr are mutually exclusive")
	}

	t := &cfg.Transport
	switch {
	case f.port != "":
		t.Kind = transport.KindSerial
		t.Device = f.port
	case f.url != "":
		t.Kind = transport.KindWebSocket
		t.URL = f.url
	case f.addr != "":
		t.Kind = transport.KindTCP
		t.Address = f.addr
	}

	if f.baud > 0 {
		t.BaudRate = f.baud
	}
	if f.username != "" {
		t.Username = f.username
	}
	if f.noSSLVerify {
		t.InsecureSkipVerify = true
	}
	if f.logLevel != "" {
		cfg.Logs.Level = f.logLevel
	}

	return nil
}

// setupLogging builds the process logger. Logs go to stderr and, when a file is
// configured, to a rotated log file as well.
func setupLogging(cfg logConfig) (logger.Logger, io.Closer, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(os.Stderr, rotator)
		closer = rotator
	}

	l := logger.NewSlogWriter(w, level, false)
	logger.SetLogger(l)

	return l, closer, nil
}

// resolvePassword fills in the WebSocket password from the environment or an
// interactive prompt when a username is configured.
func resolvePassword(cfg *transport.Config) error {
	if cfg.Kind != transport.KindWebSocket || cfg.Username == "" || cfg.Password != "" {
		return nil
	}

	if pw := os.Getenv(passwordEnv); pw != "" {
		cfg.Password = pw
		return nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec
	fmt.Fprintln(os.Stderr)
	if err != nil {
		// not a terminal, read a plain line
		line, rerr := bufio.NewReader(os.Stdin).ReadString('\n')
		if rerr != nil && line == "" {
			return fmt.Errorf("read password: %w", errors.Join(err, rerr))
		}
		pw = []byte(strings.TrimSpace(line))
	}
	cfg.Password = string(pw)

	return nil
}
