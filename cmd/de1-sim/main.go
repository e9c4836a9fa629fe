package main

import (
	"github.com/alecthomas/kong"

	"github.com/decenza/de1-sim/internal/cli"
)

func main() {
	var root cli.CLI
	ctx := kong.Parse(&root,
		kong.Name("de1-sim"),
		kong.Description("Decent DE1 espresso machine BLE simulator - controller."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&root)
	ctx.FatalIfErrorf(err)
}
