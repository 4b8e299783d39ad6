// Command travelchat is a terminal chat client and server for the travel assistant.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/diogo/travelchat/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Execute(ctx)
	stop()
	os.Exit(code)
}
