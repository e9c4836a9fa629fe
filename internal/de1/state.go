package de1

import "fmt"

// State is the machine's primary state byte.
type State uint8

const (
	StateSleep         State = 0x00
	StateGoingToSleep  State = 0x01
	StateIdle          State = 0x02
	StateBusy          State = 0x03
	StateEspresso      State = 0x04
	StateSteam         State = 0x05
	StateHotWater      State = 0x06
	StateShortCal      State = 0x07
	StateSelfTest      State = 0x08
	StateLongCal       State = 0x09
	StateDescale       State = 0x0A
	StateFatalError    State = 0x0B
	StateInit          State = 0x0C
	StateNoRequest     State = 0x0D
	StateSkipToNext    State = 0x0E
	StateHotWaterRinse State = 0x0F
	StateSteamRinse    State = 0x10
	StateRefill        State = 0x11
	StateClean         State = 0x12
	StateInBootLoader  State = 0x13
	StateAirPurge      State = 0x14
	StateSchedIdle     State = 0x15
)

func (s State) String() string {
	switch s {
	case StateSleep:
		return "Sleep"
	case StateGoingToSleep:
		return "GoingToSleep"
	case StateIdle:
		return "Idle"
	case StateBusy:
		return "Busy"
	case StateEspresso:
		return "Espresso"
	case StateSteam:
		return "Steam"
	case StateHotWater:
		return "HotWater"
	case StateHotWaterRinse:
		return "Flush"
	case StateRefill:
		return "Refill"
	case StateDescale:
		return "Descale"
	case StateClean:
		return "Clean"
	default:
		return fmt.Sprintf("State_0x%02x", uint8(s))
	}
}

// SubState is the machine's substate byte.
type SubState uint8

const (
	SubStateReady           SubState = 0
	SubStateHeating         SubState = 1
	SubStateFinalHeating    SubState = 2
	SubStateStabilising     SubState = 3
	SubStatePreinfusion     SubState = 4
	SubStatePouring         SubState = 5
	SubStateEnding          SubState = 6
	SubStateSteaming        SubState = 7
	SubStateDescaleInit     SubState = 8
	SubStateDescaleFill     SubState = 9
	SubStateDescaleReturn   SubState = 10
	SubStateDescaleGroup    SubState = 11
	SubStateDescaleSteam    SubState = 12
	SubStateCleanInit       SubState = 13
	SubStateCleanFillGroup  SubState = 14
	SubStateCleanSoak       SubState = 15
	SubStateCleanGroup      SubState = 16
	SubStateRefill          SubState = 17
	SubStatePausedSteam     SubState = 18
	SubStateUserNotPresent  SubState = 19
	SubStatePuffing         SubState = 20
)

func (s SubState) String() string {
	switch s {
	case SubStateReady:
		return "Ready"
	case SubStateHeating:
		return "Heating"
	case SubStateFinalHeating:
		return "FinalHeating"
	case SubStateStabilising:
		return "Stabilising"
	case SubStatePreinfusion:
		return "Preinfusion"
	case SubStatePouring:
		return "Pouring"
	case SubStateEnding:
		return "Ending"
	case SubStateSteaming:
		return "Steaming"
	default:
		return fmt.Sprintf("SubState_%d", uint8(s))
	}
}
