package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/viant/mcpgw/bridge"
	_ "github.com/viant/scy/kms/blowfish"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := bridge.Run(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
