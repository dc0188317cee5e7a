package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/go-loconet/controller"
	"github.com/arloliu/go-loconet/logger"
	"github.com/arloliu/go-loconet/transport"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

var (
	flags connFlags

	appCfg    config
	appLog    logger.Logger = logger.GetLogger()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "lococtl",
	Short: "LocoNet bus monitor and control tool",
	Long: `lococtl - monitor and control a LocoNet model railroad bus.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 57600]
  WebSocket: --url ws://host/path [--username user]
  TCP:       --addr host:port

Settings can also be read from a YAML file given with --config. Flags override
the file. For WebSocket authentication the password is read from the
LOCONET_PASSWORD environment variable, or prompted interactively if not set.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCloser != nil {
			_ = logCloser.Close()
			logCloser = nil
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&flags.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	// Serial connection flags
	pf.StringVarP(&flags.port, "port", "p", "", "serial port device")
	pf.IntVarP(&flags.baud, "baud", "b", 0, fmt.Sprintf("baud rate, serial only (default %d)", transport.DefaultBaudRate))

	// WebSocket connection flags
	pf.StringVarP(&flags.url, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	pf.StringVar(&flags.username, "username", "", "username for HTTP basic auth")
	pf.BoolVar(&flags.noSSLVerify, "no-ssl-verify", false, "skip TLS certificate verification (wss:// only)")

	// TCP connection flags
	pf.StringVarP(&flags.addr, "addr", "a", "", "TCP bridge address host:port")

	rootCmd.AddCommand(monitorCmd, decodeCmd, sendCmd, portsCmd)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(*cobra.Command, []string) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if err := flags.apply(&cfg); err != nil {
		return err
	}

	l, closer, err := setupLogging(cfg.Logs)
	if err != nil {
		return err
	}

	appCfg = cfg
	appLog = l
	logCloser = closer

	return nil
}

// openController opens the configured transport and starts a controller that
// delivers to sink.
func openController(sink controller.Sink) (*controller.Controller, error) {
	tcfg := appCfg.Transport
	if err := resolvePassword(&tcfg); err != nil {
		return nil, err
	}

	port, err := transport.Open(tcfg)
	if err != nil {
		return nil, err
	}

	opts := append(appCfg.Controller.options(), controller.WithLogger(appLog))
	ctrl, err := controller.New(port, sink, opts...)
	if err != nil {
		return nil, errors.Join(err, port.Close())
	}

	if err := ctrl.Start(); err != nil {
		return nil, errors.Join(err, ctrl.Close())
	}
	appLog.Debug("controller started", "transport", tcfg.Describe())

	return ctrl, nil
}
