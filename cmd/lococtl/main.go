// Command lococtl monitors and drives a LocoNet bus through a serial interface,
// a WebSocket bridge or a raw TCP bridge.
package main

import (
	"context"
	"os"
)

func main() {
	if err := Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
