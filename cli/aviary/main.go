package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	aviarycmder "github.com/papercomputeco/aviary/cmd/aviary"
	"github.com/papercomputeco/aviary/pkg/cliui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := aviarycmder.NewAviaryCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
		stop()
		os.Exit(1)
	}
}
