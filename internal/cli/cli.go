// Package cli declares the controller's command tree.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decenza/de1-sim/internal/bridge"
	"github.com/decenza/de1-sim/internal/config"
	"github.com/decenza/de1-sim/internal/engine"
	"github.com/decenza/de1-sim/internal/eventlog"
	"github.com/decenza/de1-sim/internal/tui"
)

// CLI is the root command structure for de1-sim.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose debug output"`

	// Default command - TUI
	Tui TuiCmd `cmd:"" default:"withargs" help:"Launch the interactive simulator (default)"`

	Headless HeadlessCmd `cmd:"" help:"Run the simulation engine without a terminal UI"`
	Probe    ProbeCmd    `cmd:"" help:"Check whether the agent's control port is reachable"`
}

// resolveSettings merges flag overrides into the persisted agent address.
func resolveSettings(host string, port int) config.Settings {
	s := config.LoadSettings()
	if host != "" {
		s.Host = host
	}
	if port != 0 {
		s.Port = port
	}
	return s
}

// --- TUI command ---

type TuiCmd struct {
	Host string `help:"Agent hostname or IP (overrides saved setting)"`
	Port int    `help:"Agent control port (overrides saved setting)"`
}

func (c *TuiCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	settings := resolveSettings(c.Host, c.Port)

	log := eventlog.New()
	eng := engine.New(log)

	// A quick reachability probe so the first screen says whether the agent
	// is up; the actual session is opened from the UI.
	if err := bridge.Probe(settings.Host, settings.Port, 2*time.Second); err != nil {
		log.Warnf("Agent not reachable at %s:%d - press 'c' to retry", settings.Host, settings.Port)
	} else {
		log.Infof("Agent found at %s:%d - press 'c' to connect", settings.Host, settings.Port)
	}

	if err := tui.Run(eng, log, settings); err != nil {
		return err
	}
	return config.SaveSettings(settings)
}

// --- Headless command ---

type HeadlessCmd struct {
	Host string `help:"Agent hostname or IP (overrides saved setting)"`
	Port int    `help:"Agent control port (overrides saved setting)"`
	Ghc  int    `help:"Initial GHC mode (0-4)" default:"3"`
}

func (c *HeadlessCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	settings := resolveSettings(c.Host, c.Port)

	log := eventlog.New()
	eng := engine.New(log)
	eng.SetGHCMode(c.Ghc)

	if err := eng.Connect(settings.Host, settings.Port); err != nil {
		return err
	}
	fmt.Printf("Connected to agent at %s:%d, engine running. Ctrl-C to exit.\n",
		settings.Host, settings.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	eng.Disconnect()
	return config.SaveSettings(settings)
}

// --- Probe command ---

type ProbeCmd struct {
	Host string `help:"Agent hostname or IP (overrides saved setting)"`
	Port int    `help:"Agent control port (overrides saved setting)"`
}

func (c *ProbeCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	settings := resolveSettings(c.Host, c.Port)

	if err := bridge.Probe(settings.Host, settings.Port, 3*time.Second); err != nil {
		return fmt.Errorf("agent not reachable at %s:%d: %w", settings.Host, settings.Port, err)
	}
	fmt.Printf("Agent reachable at %s:%d\n", settings.Host, settings.Port)
	return nil
}
