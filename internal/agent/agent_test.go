package agent

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"tinygo.org/x/bluetooth"

	"github.com/decenza/de1-sim/internal/bridge"
	"github.com/decenza/de1-sim/internal/de1"
)

func testAgent(t *testing.T) (*Agent, map[de1.Char][]byte) {
	t.Helper()
	srv, err := bridge.Listen(0, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(srv.Close)

	a := New("DE1-SIM", srv, slog.New(slog.NewTextHandler(io.Discard, nil)))
	written := make(map[de1.Char][]byte)
	a.writeChar = func(c de1.Char, data []byte) error {
		written[c] = append([]byte(nil), data...)
		return nil
	}
	return a, written
}

func TestCharFlags(t *testing.T) {
	cases := []struct {
		props de1.Property
		want  bluetooth.CharacteristicPermissions
	}{
		{de1.PropRead, bluetooth.CharacteristicReadPermission},
		{de1.PropWrite, bluetooth.CharacteristicWritePermission | bluetooth.CharacteristicWriteWithoutResponsePermission},
		{de1.PropRead | de1.PropNotify, bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission},
		{de1.PropRead | de1.PropWrite | de1.PropNotify,
			bluetooth.CharacteristicReadPermission |
				bluetooth.CharacteristicWritePermission |
				bluetooth.CharacteristicWriteWithoutResponsePermission |
				bluetooth.CharacteristicNotifyPermission},
	}
	for _, c := range cases {
		if got := charFlags(c.props); got != c.want {
			t.Errorf("charFlags(%v) = %v, want %v", c.props, got, c.want)
		}
	}
}

func TestHandleNotifyCommand(t *testing.T) {
	a, written := testAgent(t)

	a.handleCommand(bridge.Command{Cmd: bridge.CmdNotify, Char: "A00E", Data: "0401"})
	if !bytes.Equal(written[de1.CharStateInfo], []byte{0x04, 0x01}) {
		t.Errorf("STATE_INFO value = % X", written[de1.CharStateInfo])
	}

	a.handleCommand(bridge.Command{Cmd: bridge.CmdUpdate, Char: "a011", Data: "1900"})
	if !bytes.Equal(written[de1.CharWaterLevels], []byte{0x19, 0x00}) {
		t.Errorf("WATER_LEVELS value = % X", written[de1.CharWaterLevels])
	}
}

func TestHandleCommandRejectsUnknownChar(t *testing.T) {
	a, written := testAgent(t)

	a.handleCommand(bridge.Command{Cmd: bridge.CmdNotify, Char: "FFFF", Data: "00"})
	if len(written) != 0 {
		t.Errorf("unknown characteristic reached the GATT layer: %v", written)
	}
}

func TestHandleCommandRejectsBadHex(t *testing.T) {
	a, written := testAgent(t)

	a.handleCommand(bridge.Command{Cmd: bridge.CmdNotify, Char: "A00E", Data: "zz"})
	if len(written) != 0 {
		t.Errorf("bad hex reached the GATT layer: %v", written)
	}
}
