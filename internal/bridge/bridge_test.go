package bridge

import (
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPair(t *testing.T) (*Server, *Client) {
	t.Helper()
	srv, err := Listen(0, "1.0.0", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(srv.Close)

	client, err := Dial("127.0.0.1", srv.Port())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(client.Close)
	return srv, client
}

func waitEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		if !ok {
			t.Fatal("events channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func waitCommand(t *testing.T, s *Server) Command {
	t.Helper()
	select {
	case cmd := <-s.Commands():
		return cmd
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for command")
	}
	return Command{}
}

func TestReadySentOnConnect(t *testing.T) {
	_, client := newPair(t)

	ev := waitEvent(t, client)
	if ev.Event != EventReady || ev.Version != "1.0.0" {
		t.Errorf("first event = %+v, want ready v1.0.0", ev)
	}
}

func TestCommandsRoundTrip(t *testing.T) {
	srv, client := newPair(t)
	waitEvent(t, client) // ready

	if err := client.Notify("A00E", []byte{0x04, 0x01}); err != nil {
		t.Fatal(err)
	}
	cmd := waitCommand(t, srv)
	if cmd.Cmd != CmdNotify || cmd.Char != "A00E" || cmd.Data != "0401" {
		t.Errorf("command = %+v", cmd)
	}

	if err := client.StartAdvertising(); err != nil {
		t.Fatal(err)
	}
	cmd = waitCommand(t, srv)
	if cmd.Cmd != CmdStart {
		t.Errorf("command = %+v", cmd)
	}
}

func TestEventsRoundTrip(t *testing.T) {
	srv, client := newPair(t)
	waitEvent(t, client) // ready

	srv.Send(Event{Event: EventWrite, Char: "A002", Data: "04"})
	ev := waitEvent(t, client)
	if ev.Event != EventWrite || ev.Char != "A002" {
		t.Errorf("event = %+v", ev)
	}
	payload, err := ev.Payload()
	if err != nil {
		t.Fatal(err)
	}
	if len(payload) != 1 || payload[0] != 0x04 {
		t.Errorf("payload = % X", payload)
	}
}

func TestHexCaseInsensitive(t *testing.T) {
	ev := Event{Data: "0480381C"}
	payload, err := ev.Payload()
	if err != nil {
		t.Fatal(err)
	}
	if len(payload) != 4 || payload[3] != 0x1C {
		t.Errorf("payload = % X", payload)
	}
	if got := EncodeHex([]byte{0xAB, 0xCD}); got != "abcd" {
		t.Errorf("EncodeHex = %q, want lowercase", got)
	}
}

func TestMalformedAndEmptyLinesSkipped(t *testing.T) {
	srv, err := Listen(0, "1.0.0", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	conn, err := net.Dial("tcp", srv.ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Garbage and blank lines must not kill the channel; the valid command
	// after them still arrives.
	if _, err := conn.Write([]byte("{not json\n\n{\"cmd\":\"stop\"}\n")); err != nil {
		t.Fatal(err)
	}
	cmd := waitCommand(t, srv)
	if cmd.Cmd != CmdStop {
		t.Errorf("command = %+v", cmd)
	}
}

func TestPartialLineReassembly(t *testing.T) {
	srv, err := Listen(0, "1.0.0", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	conn, err := net.Dial("tcp", srv.ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// A command split across writes is reassembled at the newline.
	conn.Write([]byte(`{"cmd":"notify","char":"A0`))
	time.Sleep(50 * time.Millisecond)
	conn.Write([]byte("0D\",\"data\":\"ff\"}\n"))

	cmd := waitCommand(t, srv)
	if cmd.Cmd != CmdNotify || cmd.Char != "A00D" || cmd.Data != "ff" {
		t.Errorf("command = %+v", cmd)
	}
}

func TestSecondControllerRefused(t *testing.T) {
	srv, client := newPair(t)
	waitEvent(t, client) // ready

	second, err := net.Dial("tcp", srv.ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	// The refused connection is closed without a ready event.
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, err := second.Read(buf)
	if err != io.EOF {
		t.Errorf("second connection read = %d bytes, err %v; want EOF", n, err)
	}

	// The first session keeps working.
	if err := client.Notify("A011", []byte{0x19, 0x00}); err != nil {
		t.Fatal(err)
	}
	if cmd := waitCommand(t, srv); cmd.Char != "A011" {
		t.Errorf("command = %+v", cmd)
	}
}

func TestReconnectAfterDisconnect(t *testing.T) {
	srv, client := newPair(t)
	waitEvent(t, client) // ready
	client.Close()

	// The server frees the slot; a new controller can attach.
	deadline := time.Now().Add(2 * time.Second)
	for {
		next, err := Dial("127.0.0.1", srv.Port())
		if err != nil {
			t.Fatal(err)
		}
		select {
		case ev, ok := <-next.Events():
			if ok && ev.Event == EventReady {
				next.Close()
				return
			}
		case <-time.After(100 * time.Millisecond):
		}
		next.Close()
		if time.Now().After(deadline) {
			t.Fatal("server never accepted a replacement controller")
		}
	}
}

func TestClientEventsCloseOnServerDrop(t *testing.T) {
	srv, client := newPair(t)
	waitEvent(t, client) // ready

	srv.Close()
	select {
	case _, ok := <-client.Events():
		if ok {
			// Drain any in-flight event; the close must follow.
			for range client.Events() {
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel did not close after server drop")
	}
}
