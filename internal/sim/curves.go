// Package sim computes the cosmetic telemetry curves for each machine
// phase. The numbers only need to look plausible on a shot graph; they are
// not a fluid model.
package sim

import (
	"math"

	"github.com/decenza/de1-sim/internal/de1"
)

// Values are the live simulated outputs advanced once per shot tick.
type Values struct {
	Pressure    float64
	Flow        float64
	SetPressure float64
	SetFlow     float64
	SteamTemp   float64
	FrameNumber int
}

// Step advances the live values for one 200 ms tick. shotTimer is the
// elapsed operation time in seconds after the tick.
func Step(state de1.State, sub de1.SubState, shotTimer float64, v Values) Values {
	switch state {
	case de1.StateEspresso:
		switch sub {
		case de1.SubStatePreinfusion:
			v.Pressure = math.Min(4.0, shotTimer*0.8)
			v.Flow = 2.0
			v.SetPressure = 4.0
			v.SetFlow = 2.0
		case de1.SubStatePouring:
			// Pouring begins 7 s in (2 s heating + 5 s preinfusion).
			t := shotTimer - 7.0
			v.Pressure = 8.0 + math.Sin(t*0.5)
			v.Flow = 2.0 + math.Sin(t*0.3)*0.5
			v.SetPressure = 9.0
			v.SetFlow = 2.0
			v.FrameNumber = min(5, int(t/5.0)+1)
		case de1.SubStateEnding:
			v.Pressure = math.Max(0, v.Pressure-0.5)
			v.Flow = math.Max(0, v.Flow-0.3)
		}
	case de1.StateSteam:
		v.Pressure = 1.5
		v.Flow = 0
		v.SteamTemp = math.Min(150.0, 100.0+shotTimer*2.0)
	case de1.StateHotWater:
		v.Pressure = 0.5
		v.Flow = 6.0
	case de1.StateHotWaterRinse:
		v.Pressure = 1.0
		v.Flow = 8.0
	}
	return v
}
