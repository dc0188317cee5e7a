package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/arloliu/go-loconet/controller"
	"github.com/arloliu/go-loconet/internal/task"
	"github.com/arloliu/go-loconet/protocol"
	"github.com/spf13/cobra"
)

const monitorBuffer = 256

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print every frame seen on the bus",
	Long: `Print every frame seen on the bus until interrupted.

Each line shows the receive time, the opcode mnemonic, the decoded message and the
raw frame bytes. Acknowledgments that answer an earlier request are printed on an
extra ANSWER line before the frame itself.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := controller.NewHub(appLog)
	defer hub.Close()
	sub := hub.Subscribe(monitorBuffer)

	ctrl, err := openController(hub)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Monitoring %s, press Ctrl+C to exit\n\n", appCfg.Transport.Describe())

	if iv := appCfg.Controller.MetricsInterval; iv > 0 {
		mgr := task.NewManager(ctx, appLog)
		defer func() {
			mgr.Stop()
			mgr.Wait()
		}()

		err := mgr.StartInterval("metrics", func(context.Context) bool {
			appLog.Info("controller metrics", metricArgs(ctrl.Metrics().Snapshot())...)
			return true
		}, iv)
		if err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			if sub.Dropped() > 0 {
				appLog.Warn("events dropped", "count", sub.Dropped())
			}
			return nil

		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			fmt.Fprintln(out, formatEvent(time.Now(), ev))
			if ev.Kind == controller.EventFatal {
				return ev.Err
			}
		}
	}
}

// formatEvent renders ev as one monitor line.
func formatEvent(ts time.Time, ev controller.Event) string {
	stamp := ts.Format("15:04:05.000")

	switch ev.Kind {
	case controller.EventMessage:
		line := fmt.Sprintf("[%s] %-18s %s  [% X]", stamp, protocol.Name(ev.Message), ev.Message, ev.Raw)
		if ev.Echo {
			line += " (echo)"
		}
		return line
	case controller.EventAnswer:
		return fmt.Sprintf("[%s] %-18s %s answers %s", stamp, "ANSWER", ev.Message, ev.Request)
	case controller.EventError:
		return fmt.Sprintf("[%s] %-18s %v  [% X]", stamp, "ERROR", ev.Err, ev.Raw)
	case controller.EventFatal:
		return fmt.Sprintf("[%s] %-18s %v", stamp, "FATAL", ev.Err)
	}

	return fmt.Sprintf("[%s] %s", stamp, ev)
}

// metricArgs flattens a metrics snapshot into sorted logger key/value pairs.
func metricArgs(snap map[string]uint64) []any {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, snap[k])
	}

	return kv
}
