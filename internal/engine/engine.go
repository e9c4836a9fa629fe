// Package engine is the simulation brain of the controller. All machine
// state lives in one Engine value and every mutation — operator commands,
// inbound GATT writes, timer callbacks — funnels through its mutex, so
// STATE_INFO notifications are ordered consistently with the transitions
// they describe.
package engine

import (
	"sync"
	"time"

	"github.com/decenza/de1-sim/internal/bridge"
	"github.com/decenza/de1-sim/internal/de1"
	"github.com/decenza/de1-sim/internal/eventlog"
	"github.com/decenza/de1-sim/internal/profile"
	"github.com/decenza/de1-sim/internal/sim"
)

// Phase timings. The espresso ladder walks Heating → Preinfusion → Pouring
// → Ending; the other operations run a single timer and stop.
const (
	espressoHeating     = 2 * time.Second
	espressoPreinfusion = 5 * time.Second
	espressoPouring     = 25 * time.Second
	espressoEnding      = 2 * time.Second
	steamDuration       = 45 * time.Second
	hotWaterDuration    = 30 * time.Second
	flushDuration       = 10 * time.Second

	shotTickInterval   = 200 * time.Millisecond
	shotTickSeconds    = 0.2
	waterLevelInterval = 5 * time.Second
)

// Sender pushes characteristic values to the radio agent.
type Sender interface {
	Notify(shortID string, data []byte) error
	Update(shortID string, data []byte) error
	StartAdvertising() error
	StopAdvertising() error
	Close()
}

// Engine owns the simulated machine.
type Engine struct {
	mu sync.Mutex

	log    *eventlog.Log
	sender Sender

	state    de1.State
	subState de1.SubState
	ghcMode  int

	assembler profile.Assembler

	vals        sim.Values
	temperature float64
	setTemp     float64
	shotTimer   float64
	waterLevel  float64

	bleClient string

	phaseTimer *time.Timer
	shotStop   chan struct{}
	waterStop  chan struct{}
}

// Snapshot is a read-only copy of the engine state for the UI.
type Snapshot struct {
	Connected   bool
	BLEClient   string
	State       de1.State
	SubState    de1.SubState
	GhcMode     int
	Pressure    float64
	Flow        float64
	Temperature float64
	ShotTimer   float64
	WaterLevel  float64
	FrameNumber int
	Profile     string
}

// New returns an engine in the initial (Idle, Ready) pair. The GHC defaults
// to mode 3, the machine's factory panel-active setting.
func New(log *eventlog.Log) *Engine {
	return &Engine{
		log:         log,
		state:       de1.StateIdle,
		subState:    de1.SubStateReady,
		ghcMode:     3,
		temperature: 93.0,
		setTemp:     93.0,
		waterLevel:  75.0,
		vals:        sim.Values{SetPressure: 9.0, SetFlow: 2.0},
	}
}

// Connect dials the agent and attaches the engine to the control channel.
func (e *Engine) Connect(host string, port int) error {
	client, err := bridge.Dial(host, port)
	if err != nil {
		return err
	}
	e.log.Infof("Connected to agent at %s:%d", host, port)
	e.Attach(client, client.Events())
	return nil
}

// Attach wires an established control channel into the engine and starts
// the event pump and water-level timer.
func (e *Engine) Attach(sender Sender, events <-chan bridge.Event) {
	stop := make(chan struct{})
	e.mu.Lock()
	e.sender = sender
	e.waterStop = stop
	e.mu.Unlock()

	go e.waterLoop(stop)
	go func() {
		for ev := range events {
			e.handleEvent(ev)
		}
		e.onBridgeClosed()
	}()
}

// Disconnect tears down the control channel. Controller-side timers stop;
// the agent keeps advertising.
func (e *Engine) Disconnect() {
	e.mu.Lock()
	sender := e.sender
	e.mu.Unlock()
	if sender != nil {
		sender.Close()
	}
}

func (e *Engine) onBridgeClosed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sender == nil {
		return
	}
	e.sender = nil
	e.bleClient = ""
	e.stopTimersLocked()
	if e.waterStop != nil {
		close(e.waterStop)
		e.waterStop = nil
	}
	e.log.Infof("Disconnected from agent")
}

// Connected reports whether a control channel is attached.
func (e *Engine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sender != nil
}

// Snapshot returns a copy of the current state for display.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Connected:   e.sender != nil,
		BLEClient:   e.bleClient,
		State:       e.state,
		SubState:    e.subState,
		GhcMode:     e.ghcMode,
		Pressure:    e.vals.Pressure,
		Flow:        e.vals.Flow,
		Temperature: e.temperature,
		ShotTimer:   e.shotTimer,
		WaterLevel:  e.waterLevel,
		FrameNumber: e.vals.FrameNumber,
		Profile:     e.assembler.Render(),
	}
}

// --- Operator command surface ---

// Power toggles between Sleep and Idle, stopping any running operation.
func (e *Engine) Power() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == de1.StateSleep {
		e.transitionLocked(de1.StateIdle, de1.SubStateReady)
		return
	}
	e.stopOperationLocked()
	e.transitionLocked(de1.StateSleep, de1.SubStateReady)
}

// Espresso starts a shot, or stops it when one is already running.
func (e *Engine) Espresso() { e.toggle(de1.StateEspresso) }

// Steam starts steaming, or stops it when already steaming.
func (e *Engine) Steam() { e.toggle(de1.StateSteam) }

// HotWater starts hot water, or stops it when already dispensing.
func (e *Engine) HotWater() { e.toggle(de1.StateHotWater) }

// Flush starts a hot-water rinse, or stops it when already rinsing.
func (e *Engine) Flush() { e.toggle(de1.StateHotWaterRinse) }

// Stop cancels the running operation and returns to Idle/Ready.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopOperationLocked()
}

// SetGHCMode sets the simulated Group Head Controller mode (0-4).
func (e *Engine) SetGHCMode(mode int) {
	if mode < 0 || mode > 4 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ghcMode = mode
	e.log.Infof("GHC mode set to %d", mode)
}

// GHCMode returns the simulated GHC mode.
func (e *Engine) GHCMode() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ghcMode
}

func (e *Engine) toggle(target de1.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == target {
		e.stopOperationLocked()
		return
	}
	e.startOperationLocked(target)
}

// --- State machine ---

func (e *Engine) startOperationLocked(target de1.State) {
	if e.state != de1.StateIdle && e.state != de1.StateSleep {
		e.log.Warnf("Cannot start %s while in %s", target, e.state)
		return
	}

	e.shotTimer = 0
	e.vals.Pressure = 0
	e.vals.Flow = 0
	e.vals.FrameNumber = 0

	switch target {
	case de1.StateEspresso:
		e.transitionLocked(de1.StateEspresso, de1.SubStateHeating)
		e.armPhaseLocked(espressoHeating)
	case de1.StateSteam:
		e.transitionLocked(de1.StateSteam, de1.SubStateSteaming)
		e.armPhaseLocked(steamDuration)
	case de1.StateHotWater:
		e.transitionLocked(de1.StateHotWater, de1.SubStatePouring)
		e.armPhaseLocked(hotWaterDuration)
	case de1.StateHotWaterRinse:
		e.transitionLocked(de1.StateHotWaterRinse, de1.SubStatePouring)
		e.armPhaseLocked(flushDuration)
	default:
		return
	}

	e.startShotTickerLocked()
}

func (e *Engine) stopOperationLocked() {
	e.stopTimersLocked()

	e.vals.Pressure = 0
	e.vals.Flow = 0
	e.vals.SteamTemp = 0
	e.vals.FrameNumber = 0

	e.transitionLocked(de1.StateIdle, de1.SubStateReady)
}

func (e *Engine) stopTimersLocked() {
	if e.phaseTimer != nil {
		e.phaseTimer.Stop()
		e.phaseTimer = nil
	}
	if e.shotStop != nil {
		close(e.shotStop)
		e.shotStop = nil
	}
}

func (e *Engine) armPhaseLocked(d time.Duration) {
	if e.phaseTimer != nil {
		e.phaseTimer.Stop()
	}
	e.phaseTimer = time.AfterFunc(d, e.onPhaseTimeout)
}

func (e *Engine) onPhaseTimeout() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case de1.StateEspresso:
		switch e.subState {
		case de1.SubStateHeating:
			e.transitionLocked(de1.StateEspresso, de1.SubStatePreinfusion)
			e.armPhaseLocked(espressoPreinfusion)
		case de1.SubStatePreinfusion:
			e.transitionLocked(de1.StateEspresso, de1.SubStatePouring)
			e.armPhaseLocked(espressoPouring)
		case de1.SubStatePouring:
			e.transitionLocked(de1.StateEspresso, de1.SubStateEnding)
			e.armPhaseLocked(espressoEnding)
		case de1.SubStateEnding:
			e.stopOperationLocked()
		}
	case de1.StateSteam, de1.StateHotWater, de1.StateHotWaterRinse:
		e.stopOperationLocked()
	}
}

// transitionLocked assigns the (state, substate) pair and emits exactly one
// STATE_INFO notification.
func (e *Engine) transitionLocked(state de1.State, sub de1.SubState) {
	e.state = state
	e.subState = sub
	e.sendStateInfoLocked()
}

func (e *Engine) sendStateInfoLocked() {
	e.notifyLocked(de1.CharStateInfo, de1.EncodeStateInfo(e.state, e.subState))
	e.log.Txf("STATE_INFO: %s/%s", e.state, e.subState)
}

func (e *Engine) operationActiveLocked() bool {
	switch e.state {
	case de1.StateEspresso, de1.StateSteam, de1.StateHotWater, de1.StateHotWaterRinse:
		return true
	}
	return false
}

// --- Telemetry ---

func (e *Engine) startShotTickerLocked() {
	if e.shotStop != nil {
		close(e.shotStop)
	}
	stop := make(chan struct{})
	e.shotStop = stop

	go func() {
		t := time.NewTicker(shotTickInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				e.onShotTick()
			case <-stop:
				return
			}
		}
	}()
}

func (e *Engine) onShotTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.operationActiveLocked() {
		return
	}

	e.shotTimer += shotTickSeconds
	e.vals = sim.Step(e.state, e.subState, e.shotTimer, e.vals)

	sample := de1.ShotSample{
		ShotTimer:   e.shotTimer,
		Pressure:    e.vals.Pressure,
		Flow:        e.vals.Flow,
		MixTemp:     e.temperature,
		SetTemp:     e.setTemp,
		SetPressure: e.vals.SetPressure,
		SetFlow:     e.vals.SetFlow,
		FrameNumber: uint8(e.vals.FrameNumber),
		SteamTemp:   uint8(e.vals.SteamTemp),
	}
	e.notifyLocked(de1.CharShotSample, sample.Encode())
}

func (e *Engine) waterLoop(stop chan struct{}) {
	t := time.NewTicker(waterLevelInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			e.mu.Lock()
			e.sendWaterLevelLocked()
			e.mu.Unlock()
		case <-stop:
			return
		}
	}
}

func (e *Engine) sendWaterLevelLocked() {
	e.notifyLocked(de1.CharWaterLevels, de1.EncodeWaterLevel(e.waterLevel))
}

func (e *Engine) notifyLocked(c de1.Char, data []byte) {
	if e.sender == nil {
		return
	}
	if err := e.sender.Notify(c.ShortID(), data); err != nil {
		e.log.Errorf("notify %s: %v", c, err)
	}
}
