// Package profile reconstructs multi-frame espresso profiles from
// HEADER_WRITE and FRAME_WRITE payloads.
package profile

import (
	"fmt"
	"strings"

	"github.com/decenza/de1-sim/internal/codec"
)

// Frame flag bits.
const (
	FlagFlowPump    = 0x01 // pump mode: 0=pressure, 1=flow
	FlagExitCond    = 0x02 // frame has an exit condition
	FlagExitOver    = 0x04 // exit comparator: 0=<, 1=>
	FlagExitFlow    = 0x08 // exit compares flow (1) vs pressure (0)
	FlagWaterSensor = 0x10 // sensor: 0=coffee, 1=water
	FlagSmooth      = 0x20 // transition: 0=fast, 1=smooth
)

// Header carries the profile-wide parameters from a HEADER_WRITE.
type Header struct {
	Version           uint8
	NumFrames         uint8
	NumPreinfuseFrames uint8
	MinPressure       float64 // bar
	MaxFlow           float64 // mL/s
}

func (h Header) String() string {
	return fmt.Sprintf("Header: v%d, %d frames (%d preinfuse), minP=%.1f bar, maxF=%.1f mL/s",
		h.Version, h.NumFrames, h.NumPreinfuseFrames, h.MinPressure, h.MaxFlow)
}

// Frame is one step of a profile.
type Frame struct {
	FrameIndex   int
	Flags        uint8
	SetVal       float64
	Temp         float64
	Duration     float64
	TriggerVal   float64
	MaxVol       uint16
	HasExtension bool
	LimiterValue float64
	LimiterRange float64
}

func (f Frame) PumpMode() string {
	if f.Flags&FlagFlowPump != 0 {
		return "Flow"
	}
	return "Pressure"
}

func (f Frame) Sensor() string {
	if f.Flags&FlagWaterSensor != 0 {
		return "Water"
	}
	return "Coffee"
}

func (f Frame) Transition() string {
	if f.Flags&FlagSmooth != 0 {
		return "Smooth"
	}
	return "Fast"
}

func (f Frame) HasExitCondition() bool {
	return f.Flags&FlagExitCond != 0
}

// ExitType renders the exit condition, e.g. "Pressure > 4.0".
func (f Frame) ExitType() string {
	if !f.HasExitCondition() {
		return "None"
	}
	what := "Pressure"
	if f.Flags&FlagExitFlow != 0 {
		what = "Flow"
	}
	how := "<"
	if f.Flags&FlagExitOver != 0 {
		how = ">"
	}
	return fmt.Sprintf("%s %s %.1f", what, how, f.TriggerVal)
}

func (f Frame) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frame %d: %s %.1f, %.1fC, %.1fs",
		f.FrameIndex, f.PumpMode(), f.SetVal, f.Temp, f.Duration)
	if f.MaxVol > 0 {
		fmt.Fprintf(&b, ", max %dmL", f.MaxVol)
	}
	if f.HasExitCondition() {
		fmt.Fprintf(&b, ", exit: %s", f.ExitType())
	}
	if f.HasExtension {
		fmt.Fprintf(&b, " [Limiter: %.1f/%.1f]", f.LimiterValue, f.LimiterRange)
	}
	return b.String()
}

// DecodeHeader parses a 5-byte HEADER_WRITE payload.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < 5 {
		return Header{}, fmt.Errorf("header payload too short: %d bytes", len(data))
	}
	return Header{
		Version:            data[0],
		NumFrames:          data[1],
		NumPreinfuseFrames: data[2],
		MinPressure:        codec.DecodeU8P4(data[3]),
		MaxFlow:            codec.DecodeU8P4(data[4]),
	}, nil
}
