package main

import (
	"fmt"

	"github.com/arloliu/go-loconet/transport"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the serial ports of this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		names, err := transport.ListSerialPorts()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintln(out, "no serial ports found")
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}

		return nil
	},
}
