//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext derives the command context, canceled on Ctrl-C. Windows
// delivers no SIGTERM, so os.Interrupt is the only trigger.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
