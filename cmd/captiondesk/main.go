package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"captiondesk/internal/api"
)

const loginHint = "Sign in again with `captiondesk auth login --token TOKEN`."

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, formatCommandError(err))
		}
		os.Exit(1)
	}
}

// formatCommandError renders err once for the terminal. Authorization
// failures point at the login entry point.
func formatCommandError(err error) string {
	if api.IsUnauthorized(err) {
		return fmt.Sprintf("Error: %s\n%s", api.Message(err), loginHint)
	}
	return fmt.Sprintf("Error: %s", err)
}
