package main

import (
	"context"
	"errors"
	"os"
	"runtime"

	"scape-bot/cmd"
	"scape-bot/internal/observability"
)

// The tray needs the main OS thread.
func init() { runtime.LockOSThread() }

func main() {
	defer func() {
		if r := recover(); r != nil {
			observability.Sync()
			panic(r)
		}
	}()

	if err := cmd.Execute(context.Background()); err != nil {
		observability.Sync()
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
