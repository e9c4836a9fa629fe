// The de1-agent daemon runs on a small Linux host with a working BLE
// peripheral stack. It advertises the DE1 service as DE1-SIM and bridges
// GATT traffic to the controller over TCP.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"

	"github.com/decenza/de1-sim/internal/agent"
	"github.com/decenza/de1-sim/internal/bridge"
)

const version = "1.0.0"

type CLI struct {
	Port    int    `help:"Control port to listen on" default:"12345"`
	Name    string `help:"BLE local name to advertise" default:"DE1-SIM"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("de1-agent"),
		kong.Description("DE1 BLE radio agent - hosts the peripheral for the simulator."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	log.Info("de1-agent starting", "version", version)

	srv, err := bridge.Listen(cli.Port, version, log)
	if err != nil {
		log.Error("control channel", "err", err)
		os.Exit(1)
	}
	defer srv.Close()

	a := agent.New(cli.Name, srv, log)
	ctx.FatalIfErrorf(a.Run())
}
