// Sm shows a message as large as the screen allows and hands it to an
// external flash pipeline, for name-badge displays at events.
//
// Usage:
//
//	sm [message...]          fullscreen GUI kiosk
//	sm term [message...]     terminal kiosk
//	sm flash message...      run the pipeline once
//
// See 'sm --help' for all commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sm-kiosk/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
