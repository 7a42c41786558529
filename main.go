package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/riskibarqy/go-autocommit/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
