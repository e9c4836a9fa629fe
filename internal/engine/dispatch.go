package engine

import (
	"encoding/binary"

	"github.com/decenza/de1-sim/internal/bridge"
	"github.com/decenza/de1-sim/internal/codec"
	"github.com/decenza/de1-sim/internal/de1"
	"github.com/decenza/de1-sim/internal/profile"
)

// handleEvent is the single entry point for agent events. It runs on the
// pump goroutine; everything it touches is guarded by the engine mutex.
func (e *Engine) handleEvent(ev bridge.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch ev.Event {
	case bridge.EventReady:
		e.log.Pif("Agent ready (v%s)", ev.Version)
		// Push fresh values for centrals that subscribed before we attached.
		e.sendStateInfoLocked()
		e.sendWaterLevelLocked()

	case bridge.EventAdvertising:
		e.log.Pif("BLE advertising started")

	case bridge.EventConnected:
		e.bleClient = ev.Client
		e.log.Pif("BLE client connected: %s", ev.Client)

	case bridge.EventDisconnected:
		e.bleClient = ""
		e.log.Pif("BLE client disconnected")

	case bridge.EventWrite:
		data, err := ev.Payload()
		if err != nil {
			e.log.Errorf("write event: %v", err)
			return
		}
		e.handleWriteLocked(de1.CharFromShortID(ev.Char), ev.Char, data)

	case bridge.EventRead:
		e.log.Rxf("CHAR_READ: %s", de1.CharFromShortID(ev.Char))

	case bridge.EventError:
		e.log.Errorf("Agent BLE error: %d", ev.Code)

	default:
		e.log.Warnf("Unknown agent event: %q", ev.Event)
	}
}

func (e *Engine) handleWriteLocked(c de1.Char, shortID string, data []byte) {
	switch c {
	case de1.CharRequestedState:
		if len(data) < 1 {
			e.log.Errorf("REQUESTED_STATE: empty payload")
			return
		}
		requested := de1.State(data[0])
		e.log.Rxf("REQUESTED_STATE: %s (0x%02x)", requested, uint8(requested))
		e.handleRequestedStateLocked(requested)

	case de1.CharReadFromMMR:
		e.handleMMRReadLocked(data)

	case de1.CharWriteToMMR:
		e.handleMMRWriteLocked(data)

	case de1.CharHeaderWrite:
		e.handleHeaderWriteLocked(data)

	case de1.CharFrameWrite:
		e.handleFrameWriteLocked(data)

	case de1.CharShotSettings:
		settings, err := de1.DecodeShotSettings(data)
		if err != nil {
			e.log.Rxf("SHOT_SETTINGS: invalid size %d", len(data))
			return
		}
		e.log.Rxf("SHOT_SETTINGS: %s", settings)

	default:
		e.log.Rxf("%s (%s): % x", c, shortID, data)
	}
}

// handleRequestedStateLocked applies the GHC gate, then routes operation
// states through the phase scheduler and everything else straight to the
// requested pair.
func (e *Engine) handleRequestedStateLocked(requested de1.State) {
	if e.ghcMode == 3 && requested != de1.StateSleep && requested != de1.StateIdle {
		e.log.Warnf("GHC active - BLOCKED app request: %s", requested)
		return
	}

	switch requested {
	case de1.StateIdle:
		e.stopOperationLocked()
	case de1.StateSleep:
		e.stopTimersLocked()
		e.vals.Pressure = 0
		e.vals.Flow = 0
		e.vals.SteamTemp = 0
		e.vals.FrameNumber = 0
		e.transitionLocked(de1.StateSleep, de1.SubStateReady)
	case de1.StateEspresso, de1.StateSteam, de1.StateHotWater, de1.StateHotWaterRinse:
		e.startOperationLocked(requested)
	default:
		e.transitionLocked(requested, de1.SubStateReady)
	}
}

// --- MMR responder ---

// handleMMRReadLocked answers a read-from-MMR request with a canned value.
// The 8-byte response echoes the address big-endian in bytes [0..4) and
// carries a little-endian 32-bit payload in bytes [4..8).
func (e *Engine) handleMMRReadLocked(data []byte) {
	if len(data) < 4 {
		e.log.Errorf("MMR_READ: payload too short (%d bytes)", len(data))
		return
	}

	addr := codec.DecodeAddress(data)
	name := de1.MMRAddressName(addr)
	e.log.Rxf("MMR_READ: %s", name)

	var value uint32
	switch addr {
	case de1.MMRGHCInfo, de1.MMRGHCMode:
		value = uint32(e.ghcMode)
	case de1.MMRUSBCharger:
		value = 1
	case de1.MMRMachineModel:
		value = 2
	case de1.MMRFirmwareVersion:
		value = 1
	}

	resp := make([]byte, 8)
	codec.EncodeUint32BE(addr, resp[0:4])
	binary.LittleEndian.PutUint32(resp[4:8], value)

	e.notifyLocked(de1.CharReadFromMMR, resp)
	e.log.Txf("MMR_RESPONSE: %s = %d", name, value)
}

// handleMMRWriteLocked logs a write-to-MMR request. Writes have no effect
// on the simulation.
func (e *Engine) handleMMRWriteLocked(data []byte) {
	if len(data) < 8 {
		e.log.Errorf("MMR_WRITE: payload too short (%d bytes)", len(data))
		return
	}

	addr := codec.DecodeAddress(data)
	value := codec.DecodeUint32LE(data)
	e.log.Rxf("MMR_WRITE: %s = %d (0x%08x)", de1.MMRAddressName(addr), value, value)
}

// --- Profile upload ---

func (e *Engine) handleHeaderWriteLocked(data []byte) {
	h, err := profile.DecodeHeader(data)
	if err != nil {
		e.log.Rxf("HEADER_WRITE: invalid size %d", len(data))
		return
	}
	e.assembler.SetHeader(h)
	e.log.Rxf("HEADER_WRITE: %s", h)
}

func (e *Engine) handleFrameWriteLocked(data []byte) {
	res, err := e.assembler.ApplyFrame(data)
	if err != nil {
		e.log.Rxf("FRAME_WRITE: %v", err)
		return
	}
	switch res.Kind {
	case profile.FramePrimary:
		e.log.Rxf("FRAME_WRITE[%d]: %s", res.Index, res.Frame)
	case profile.FrameExtension:
		e.log.Rxf("FRAME_EXT[%d]: limiter=%.1f, range=%.1f",
			res.Index, res.Frame.LimiterValue, res.Frame.LimiterRange)
	case profile.FrameTail:
		e.log.Rxf("FRAME_WRITE: Tail frame received (profile complete)")
	}
}

// Profile returns the assembled profile by reference for display.
func (e *Engine) Profile() (profile.Header, []profile.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.assembler.Header(), e.assembler.Frames()
}
