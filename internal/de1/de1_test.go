package de1

import (
	"bytes"
	"testing"
)

func TestCharFromShortID(t *testing.T) {
	cases := []struct {
		in   string
		want Char
	}{
		{"A001", CharVersion},
		{"a00d", CharShotSample},
		{"A011", CharWaterLevels},
		{"A003", CharUnknown},
		{"", CharUnknown},
	}
	for _, c := range cases {
		if got := CharFromShortID(c.in); got != c.want {
			t.Errorf("CharFromShortID(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestExpandShortID(t *testing.T) {
	if got := ExpandShortID("a00e"); got != "0000A00E-0000-1000-8000-00805F9B34FB" {
		t.Errorf("ExpandShortID(a00e) = %q", got)
	}
	if got := ShortIDFromUUID("0000A00E-0000-1000-8000-00805F9B34FB"); got != "A00E" {
		t.Errorf("ShortIDFromUUID = %q, want A00E", got)
	}
}

func TestTableDefaults(t *testing.T) {
	if len(Table) != 10 {
		t.Fatalf("table has %d rows, want 10", len(Table))
	}
	version, _ := CharVersion.Info()
	if !bytes.Equal(version.InitialValue, []byte{0x02, 0x01, 0x00, 0x00}) {
		t.Errorf("VERSION default = % X", version.InitialValue)
	}
	mmr, _ := CharReadFromMMR.Info()
	if len(mmr.InitialValue) != 20 {
		t.Errorf("READ_FROM_MMR default is %d bytes, want 20", len(mmr.InitialValue))
	}
	if mmr.Props != PropRead|PropWrite|PropNotify {
		t.Errorf("READ_FROM_MMR props = %v", mmr.Props)
	}
	water, _ := CharWaterLevels.Info()
	if !bytes.Equal(water.InitialValue, []byte{0x4B, 0x00}) {
		t.Errorf("WATER_LEVELS default = % X", water.InitialValue)
	}
}

func TestStateNames(t *testing.T) {
	if StateHotWaterRinse.String() != "Flush" {
		t.Errorf("HotWaterRinse renders as %q, want Flush", StateHotWaterRinse.String())
	}
	if StateSchedIdle != 0x15 {
		t.Errorf("SchedIdle = 0x%02x, want 0x15", uint8(StateSchedIdle))
	}
	if got := State(0x42).String(); got != "State_0x42" {
		t.Errorf("unknown state renders as %q", got)
	}
	if got := SubState(19).String(); got != "SubState_19" {
		t.Errorf("UserNotPresent renders as %q", got)
	}
}

func TestShotSampleEncode(t *testing.T) {
	s := ShotSample{
		ShotTimer:   12.5,
		Pressure:    8.0,
		Flow:        2.0,
		MixTemp:     93.0,
		SetTemp:     93.0,
		SetPressure: 9.0,
		SetFlow:     2.0,
		FrameNumber: 3,
		SteamTemp:   120,
	}
	d := s.Encode()
	if len(d) != 19 {
		t.Fatalf("encoded length = %d, want 19", len(d))
	}
	// timer: 1250 = 0x04E2
	if d[0] != 0x04 || d[1] != 0xE2 {
		t.Errorf("timer bytes = %02X %02X, want 04 E2", d[0], d[1])
	}
	// pressure 8.0 * 4096 = 0x8000
	if d[2] != 0x80 || d[3] != 0x00 {
		t.Errorf("pressure bytes = %02X %02X, want 80 00", d[2], d[3])
	}
	// setTemp appears at [11:13) and duplicated at [13:15)
	if !bytes.Equal(d[11:13], d[13:15]) {
		t.Errorf("head temp bytes %X differ from set temp bytes %X", d[13:15], d[11:13])
	}
	if d[15] != 0x90 { // 9.0 * 16
		t.Errorf("setPressure = %02X, want 90", d[15])
	}
	if d[17] != 3 || d[18] != 120 {
		t.Errorf("frame/steam = %d/%d", d[17], d[18])
	}
}

func TestEncodeWaterLevel(t *testing.T) {
	// 75% -> 25mm -> 0x1900 in U16P8
	d := EncodeWaterLevel(75)
	if d[0] != 0x19 || d[1] != 0x00 {
		t.Errorf("EncodeWaterLevel(75) = % X, want 19 00", d)
	}
}

func TestDecodeShotSettings(t *testing.T) {
	data := []byte{0x00, 0xA0, 0x78, 0x55, 0xC8, 0x00, 0x24, 0x5D, 0x80}
	s, err := DecodeShotSettings(data)
	if err != nil {
		t.Fatal(err)
	}
	if s.SteamTemp != 0xA0 || s.SteamDuration != 0x78 {
		t.Errorf("steam = %d/%d", s.SteamTemp, s.SteamDuration)
	}
	if s.EspressoVol != 0x24 {
		t.Errorf("espressoVol = %d", s.EspressoVol)
	}
	if s.GroupTemp != 93.5 {
		t.Errorf("groupTemp = %v, want 93.5", s.GroupTemp)
	}

	if _, err := DecodeShotSettings([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short payload")
	}
}

func TestMMRAddressName(t *testing.T) {
	if MMRAddressName(MMRGHCInfo) != "GHC_INFO" {
		t.Error("GHC_INFO name")
	}
	if MMRAddressName(0x123456) != "0x123456" {
		t.Errorf("unknown address = %q", MMRAddressName(0x123456))
	}
}
