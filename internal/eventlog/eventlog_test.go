package eventlog

import (
	"strings"
	"testing"
)

func TestAppendAndSnapshot(t *testing.T) {
	l := New()
	l.Rxf("REQUESTED_STATE: %s", "Espresso")
	l.Warnf("blocked")

	entries := l.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Category != Rx || entries[0].Text != "REQUESTED_STATE: Espresso" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Category != Warn {
		t.Errorf("entry 1 = %+v", entries[1])
	}
	if !strings.Contains(entries[0].String(), "[RX] REQUESTED_STATE") {
		t.Errorf("String() = %q", entries[0].String())
	}
}

func TestBounded(t *testing.T) {
	l := New()
	for i := 0; i < MaxEntries+50; i++ {
		l.Infof("line %d", i)
	}
	if l.Len() != MaxEntries {
		t.Fatalf("retained %d entries, want %d", l.Len(), MaxEntries)
	}
	entries := l.Snapshot()
	if entries[0].Text != "line 50" {
		t.Errorf("oldest retained = %q, want line 50", entries[0].Text)
	}
}

func TestClear(t *testing.T) {
	l := New()
	l.Infof("x")
	l.Clear()
	if l.Len() != 0 {
		t.Error("log not empty after Clear")
	}
}
