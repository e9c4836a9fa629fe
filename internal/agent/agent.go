// Package agent hosts the BLE peripheral half of the simulator. It builds
// the DE1 GATT service, advertises as DE1-SIM, and translates between GATT
// traffic and control-channel messages. Advertising starts at boot and does
// not depend on a controller being attached.
package agent

import (
	"fmt"
	"log/slog"
	"strings"

	"tinygo.org/x/bluetooth"

	"github.com/decenza/de1-sim/internal/bridge"
	"github.com/decenza/de1-sim/internal/de1"
)

// Agent owns the GATT server and the control channel.
type Agent struct {
	name string
	srv  *bridge.Server
	log  *slog.Logger

	adapter *bluetooth.Adapter
	adv     *bluetooth.Advertisement
	chars   map[de1.Char]*bluetooth.Characteristic

	// writeChar pushes a value into the GATT database; swapped out in tests.
	writeChar func(c de1.Char, data []byte) error
}

// New wires an agent to an already-listening control server.
func New(name string, srv *bridge.Server, log *slog.Logger) *Agent {
	a := &Agent{
		name:  name,
		srv:   srv,
		log:   log,
		chars: make(map[de1.Char]*bluetooth.Characteristic),
	}
	a.writeChar = a.writeGATT
	return a
}

// Run enables the radio, registers the DE1 service, starts advertising and
// then serves controller commands. The server's command stream is never
// closed, so Run returns only when setup fails.
func (a *Agent) Run() error {
	a.adapter = bluetooth.DefaultAdapter
	if err := a.adapter.Enable(); err != nil {
		return fmt.Errorf("enable bluetooth adapter: %w", err)
	}

	a.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if connected {
			client := device.Address.String()
			a.log.Info("BLE client connected", "client", client)
			a.srv.Send(bridge.Event{Event: bridge.EventConnected, Client: client})
			return
		}
		a.log.Info("BLE client disconnected")
		a.srv.Send(bridge.Event{Event: bridge.EventDisconnected})
		// A central that walks away should always find us again.
		a.startAdvertising()
	})

	if err := a.addService(); err != nil {
		return fmt.Errorf("register DE1 service: %w", err)
	}

	a.adv = a.adapter.DefaultAdvertisement()
	a.startAdvertising()

	for cmd := range a.srv.Commands() {
		a.handleCommand(cmd)
	}
	return nil
}

func (a *Agent) addService() error {
	serviceUUID, err := bluetooth.ParseUUID(strings.ToLower(de1.ServiceUUID))
	if err != nil {
		return err
	}

	cfgs := make([]bluetooth.CharacteristicConfig, 0, len(de1.Table))
	for _, ci := range de1.Table {
		ci := ci
		uuid, err := bluetooth.ParseUUID(strings.ToLower(de1.ExpandShortID(ci.ShortID)))
		if err != nil {
			return fmt.Errorf("characteristic %s: %w", ci.Name, err)
		}

		handle := &bluetooth.Characteristic{}
		a.chars[ci.Char] = handle

		cfg := bluetooth.CharacteristicConfig{
			Handle: handle,
			UUID:   uuid,
			Value:  append([]byte(nil), ci.InitialValue...),
			Flags:  charFlags(ci.Props),
		}
		if ci.Props&de1.PropWrite != 0 {
			cfg.WriteEvent = func(client bluetooth.Connection, offset int, value []byte) {
				if offset != 0 {
					return
				}
				a.log.Debug("characteristic written", "char", ci.Name, "data", fmt.Sprintf("%x", value))
				a.srv.Send(bridge.Event{
					Event: bridge.EventWrite,
					Char:  ci.ShortID,
					Data:  bridge.EncodeHex(value),
				})
			}
		}
		cfgs = append(cfgs, cfg)
	}

	return a.adapter.AddService(&bluetooth.Service{
		UUID:            serviceUUID,
		Characteristics: cfgs,
	})
}

// charFlags maps registry properties onto GATT permission bits. Writable
// characteristics accept both write-with-response and write-without-response
// so any client write mode lands in the same event path.
func charFlags(p de1.Property) bluetooth.CharacteristicPermissions {
	var flags bluetooth.CharacteristicPermissions
	if p&de1.PropRead != 0 {
		flags |= bluetooth.CharacteristicReadPermission
	}
	if p&de1.PropWrite != 0 {
		flags |= bluetooth.CharacteristicWritePermission |
			bluetooth.CharacteristicWriteWithoutResponsePermission
	}
	if p&de1.PropNotify != 0 {
		flags |= bluetooth.CharacteristicNotifyPermission
	}
	return flags
}

func (a *Agent) startAdvertising() {
	serviceUUID, err := bluetooth.ParseUUID(strings.ToLower(de1.ServiceUUID))
	if err != nil {
		a.log.Error("parse service uuid", "err", err)
		return
	}
	err = a.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    a.name,
		ServiceUUIDs: []bluetooth.UUID{serviceUUID},
	})
	if err != nil {
		a.log.Error("configure advertisement", "err", err)
		a.srv.Send(bridge.Event{Event: bridge.EventError, Code: 1})
		return
	}
	if err := a.adv.Start(); err != nil {
		a.log.Error("start advertising", "err", err)
		a.srv.Send(bridge.Event{Event: bridge.EventError, Code: 1})
		return
	}
	a.log.Info("advertising", "name", a.name)
	a.srv.Send(bridge.Event{Event: bridge.EventAdvertising})
}

func (a *Agent) stopAdvertising() {
	if err := a.adv.Stop(); err != nil {
		a.log.Warn("stop advertising", "err", err)
		return
	}
	a.log.Info("advertising stopped")
}

func (a *Agent) handleCommand(cmd bridge.Command) {
	switch cmd.Cmd {
	case bridge.CmdNotify, bridge.CmdUpdate:
		c := de1.CharFromShortID(cmd.Char)
		if c == de1.CharUnknown {
			a.log.Warn("characteristic not found", "char", cmd.Char)
			return
		}
		data, err := bridge.DecodeHex(cmd.Data)
		if err != nil {
			a.log.Warn("bad command payload", "char", cmd.Char, "err", err)
			return
		}
		// The GATT database holds one value per characteristic; writing it
		// notifies any subscribed central, which covers both command forms.
		if err := a.writeChar(c, data); err != nil {
			a.log.Warn("characteristic write failed", "char", cmd.Char, "err", err)
			a.srv.Send(bridge.Event{Event: bridge.EventError, Code: 2})
		}

	case bridge.CmdStart:
		a.startAdvertising()

	case bridge.CmdStop:
		a.stopAdvertising()

	default:
		a.log.Warn("unknown command", "cmd", cmd.Cmd)
	}
}

func (a *Agent) writeGATT(c de1.Char, data []byte) error {
	handle, ok := a.chars[c]
	if !ok {
		return fmt.Errorf("characteristic %s not registered", c)
	}
	_, err := handle.Write(data)
	return err
}
