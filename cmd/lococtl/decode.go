package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/arloliu/go-loconet/protocol"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>...",
	Short: "Decode frames given as hex strings",
	Long: `Decode frames given as hex strings, one frame per argument.

Bytes may be separated by spaces, colons or dashes, e.g. "B2 05 70 38" or "b2:05:70:38".`,
	Example: `  lococtl decode 837C
  lococtl decode "A0 0A 7B 2E" "B0 05 30 7A"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		out := cmd.OutOrStdout()

		failed := 0
		for _, s := range argv {
			line, ok := decodeLine(s)
			fmt.Fprintln(out, line)
			if !ok {
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d frames failed to decode", failed, len(argv))
		}

		return nil
	},
}

// parseHex decodes a frame written as hex digits with optional separators.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "-", "", "\t", "").Replace(s)
	if s == "" {
		return nil, fmt.Errorf("empty frame")
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}

	return b, nil
}

// decodeLine parses one hex frame and describes the result.
func decodeLine(s string) (string, bool) {
	frame, err := parseHex(s)
	if err != nil {
		return "error: " + err.Error(), false
	}

	msg, err := protocol.Parse(frame)
	if err != nil {
		return fmt.Sprintf("[% X] error: %v", frame, err), false
	}

	return fmt.Sprintf("[% X] %s %s", frame, protocol.Name(msg), msg), true
}
