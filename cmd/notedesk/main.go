package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"notedesk/internal/client/adapters/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewRootCommand(cli.DefaultBuild, version))
	stop()
	os.Exit(code)
}
