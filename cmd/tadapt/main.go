package main

import (
	"context"
	"os"

	"tadapt/internal/cli/commands"
)

var version = "dev"

func main() {
	ctx, stop := commands.SignalContext(context.Background())
	defer stop()

	app := commands.NewDriverApp("tadapt")
	app.Version = version

	code := app.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
