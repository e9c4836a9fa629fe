package de1

import (
	"fmt"

	"github.com/decenza/de1-sim/internal/codec"
)

// ShotSample is one 5 Hz telemetry frame. HeadTemp intentionally mirrors
// SetTemp in the encoded layout; the real firmware does the same.
type ShotSample struct {
	ShotTimer   float64 // seconds
	Pressure    float64 // bar
	Flow        float64 // mL/s
	MixTemp     float64 // C
	SetTemp     float64 // C
	SetPressure float64 // bar
	SetFlow     float64 // mL/s
	FrameNumber uint8
	SteamTemp   uint8 // C
}

// Encode produces the 19-byte SHOT_SAMPLE payload.
func (s ShotSample) Encode() []byte {
	d := make([]byte, 19)
	codec.EncodeShortBE(uint16(s.ShotTimer*100), d[0:2])
	codec.EncodeShortBE(codec.EncodeU16P12(s.Pressure), d[2:4])
	codec.EncodeShortBE(codec.EncodeU16P12(s.Flow), d[4:6])
	codec.EncodeShortBE(codec.EncodeU16P8(s.MixTemp), d[6:8])
	codec.EncodeU24P16(s.MixTemp, d[8:11])
	codec.EncodeShortBE(codec.EncodeU16P8(s.SetTemp), d[11:13])
	codec.EncodeShortBE(codec.EncodeU16P8(s.SetTemp), d[13:15])
	d[15] = codec.EncodeU8P4(s.SetPressure)
	d[16] = codec.EncodeU8P4(s.SetFlow)
	d[17] = s.FrameNumber
	d[18] = s.SteamTemp
	return d
}

// EncodeStateInfo produces the 2-byte STATE_INFO payload.
func EncodeStateInfo(state State, sub SubState) []byte {
	return []byte{byte(state), byte(sub)}
}

// EncodeWaterLevel maps a fill percentage to millimetres and produces the
// 2-byte WATER_LEVELS payload. The probe sits 5 mm above the tank floor,
// which spans 40 mm.
func EncodeWaterLevel(pct float64) []byte {
	mm := (pct/100.0)*40.0 - 5.0
	d := make([]byte, 2)
	codec.EncodeShortBE(codec.EncodeU16P8(mm), d)
	return d
}

// ShotSettings carries the decoded SHOT_SETTINGS write. The fields are
// logged but have no effect on the simulation.
type ShotSettings struct {
	SteamTemp     uint8
	SteamDuration uint8
	HotWaterTemp  uint8
	HotWaterVol   uint8
	EspressoVol   uint8
	GroupTemp     float64
}

// DecodeShotSettings parses a 9-byte SHOT_SETTINGS payload.
func DecodeShotSettings(data []byte) (ShotSettings, error) {
	if len(data) < 9 {
		return ShotSettings{}, fmt.Errorf("shot settings payload too short: %d bytes", len(data))
	}
	return ShotSettings{
		SteamTemp:     data[1],
		SteamDuration: data[2],
		HotWaterTemp:  data[3],
		HotWaterVol:   data[4],
		EspressoVol:   data[6],
		GroupTemp:     codec.DecodeU16P8(codec.DecodeShortBE(data[7:9])),
	}, nil
}

func (s ShotSettings) String() string {
	return fmt.Sprintf("steam=%dC/%ds, hotWater=%dC/%dmL, espresso=%dmL, groupTemp=%.1fC",
		s.SteamTemp, s.SteamDuration, s.HotWaterTemp, s.HotWaterVol, s.EspressoVol, s.GroupTemp)
}
