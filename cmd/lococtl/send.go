package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/arloliu/go-loconet/args"
	"github.com/arloliu/go-loconet/controller"
	"github.com/arloliu/go-loconet/protocol"
	"github.com/spf13/cobra"
)

var (
	sendWait  time.Duration
	switchOff bool
)

var errNoAnswer = errors.New("no answer received")

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one message and wait for its answer",
}

var sendPowerCmd = &cobra.Command{
	Use:       "power on|off",
	Short:     "Switch global track power",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, argv []string) error {
		msg, err := powerMessage(argv[0])
		if err != nil {
			return err
		}
		return runSend(cmd, msg)
	},
}

var sendSpeedCmd = &cobra.Command{
	Use:   "speed <slot> <speed>",
	Short: "Set the speed of a slot",
	Long:  `Set the speed of a slot. Speed is a step from 0 to 126, "stop" or "estop".`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, argv []string) error {
		msg, err := speedMessage(argv[0], argv[1])
		if err != nil {
			return err
		}
		return runSend(cmd, msg)
	},
}

var sendSwitchCmd = &cobra.Command{
	Use:   "switch <addr> straight|curved",
	Short: "Request a turnout position",
	Long: `Request a turnout position. Addresses are numbered from 1 as on a throttle.
The output is switched on unless --off is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, argv []string) error {
		msg, err := switchMessage(argv[0], argv[1], !switchOff)
		if err != nil {
			return err
		}
		return runSend(cmd, msg)
	},
}

var sendRawCmd = &cobra.Command{
	Use:   "raw <hex>",
	Short: "Send a frame given as hex",
	Long:  `Send a frame given as hex. The frame must decode to a known message.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		msg, err := rawMessage(argv[0])
		if err != nil {
			return err
		}
		return runSend(cmd, msg)
	},
}

func init() {
	sendCmd.PersistentFlags().DurationVarP(&sendWait, "wait", "w", 2*time.Second, "how long to wait for the answer")
	sendSwitchCmd.Flags().BoolVar(&switchOff, "off", false, "switch the output off")

	sendCmd.AddCommand(sendPowerCmd, sendSpeedCmd, sendSwitchCmd, sendRawCmd)
}

func powerMessage(state string) (protocol.Message, error) {
	switch strings.ToLower(state) {
	case "on":
		return protocol.GpOn{}, nil
	case "off":
		return protocol.GpOff{}, nil
	}

	return nil, fmt.Errorf("power state must be on or off, got %q", state)
}

func speedMessage(slotArg, speedArg string) (protocol.Message, error) {
	slot, err := strconv.ParseUint(slotArg, 10, 8)
	if err != nil || slot > 0x7F {
		return nil, fmt.Errorf("invalid slot %q", slotArg)
	}

	var speed args.Speed
	switch strings.ToLower(speedArg) {
	case "stop":
		speed = args.SpeedStop
	case "estop":
		speed = args.SpeedEmergencyStop
	default:
		step, err := strconv.ParseUint(speedArg, 10, 8)
		if err != nil || step > args.MaxDriveSpeed {
			return nil, fmt.Errorf("invalid speed %q", speedArg)
		}
		speed = args.SpeedDrive(byte(step))
	}

	return protocol.LocoSpd{Slot: args.NewSlot(byte(slot)), Speed: speed}, nil
}

func switchMessage(addrArg, dirArg string, on bool) (protocol.Message, error) {
	addr, err := strconv.ParseUint(addrArg, 10, 16)
	if err != nil || addr == 0 || addr > args.MaxSwitchAddress+1 {
		return nil, fmt.Errorf("invalid switch address %q", addrArg)
	}

	var dir args.Direction
	switch strings.ToLower(dirArg) {
	case "straight", "closed":
		dir = args.Straight
	case "curved", "thrown":
		dir = args.Curved
	default:
		return nil, fmt.Errorf("switch direction must be straight or curved, got %q", dirArg)
	}

	return protocol.SwReq{Switch: args.NewSwitch(uint16(addr-1), dir, on)}, nil
}

func rawMessage(s string) (protocol.Message, error) {
	frame, err := parseHex(s)
	if err != nil {
		return nil, err
	}

	return protocol.Parse(frame)
}

func runSend(cmd *cobra.Command, msg protocol.Message) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := controller.NewHub(appLog)
	defer hub.Close()
	sub := hub.Subscribe(16, controller.EventAnswer, controller.EventFatal)

	ctrl, err := openController(hub)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	out := cmd.OutOrStdout()
	if err := ctrl.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", msg, err)
	}
	fmt.Fprintf(out, "sent   %s [% X]\n", msg, protocol.Encode(msg))

	if !protocol.ExpectsAnswer(msg) {
		return nil
	}

	answer, err := waitAnswer(ctx, sub, msg, sendWait)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "answer %s [% X]\n", answer, protocol.Encode(answer))

	return nil
}

// waitAnswer waits up to wait for the answer to req on sub.
func waitAnswer(ctx context.Context, sub *controller.Subscription, req protocol.Message, wait time.Duration) (protocol.Message, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	want := protocol.Encode(req)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timer.C:
			return nil, fmt.Errorf("%w for %s within %v", errNoAnswer, req, wait)

		case ev, ok := <-sub.C():
			if !ok {
				return nil, errNoAnswer
			}
			switch ev.Kind {
			case controller.EventFatal:
				return nil, ev.Err
			case controller.EventAnswer:
				if bytes.Equal(protocol.Encode(ev.Request), want) {
					return ev.Message, nil
				}
			}
		}
	}
}
