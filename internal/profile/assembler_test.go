package profile

import (
	"strings"
	"testing"
)

func TestDecodeHeader(t *testing.T) {
	h, err := DecodeHeader([]byte{0x01, 0x03, 0x01, 0x10, 0x20})
	if err != nil {
		t.Fatal(err)
	}
	if h.Version != 1 || h.NumFrames != 3 || h.NumPreinfuseFrames != 1 {
		t.Errorf("header = %+v", h)
	}
	if h.MinPressure != 1.0 {
		t.Errorf("minPressure = %v, want 1.0", h.MinPressure)
	}
	if h.MaxFlow != 2.0 {
		t.Errorf("maxFlow = %v, want 2.0", h.MaxFlow)
	}

	if _, err := DecodeHeader([]byte{1, 2}); err == nil {
		t.Error("expected error for short header")
	}
}

func TestApplyFrame(t *testing.T) {
	var a Assembler
	a.SetHeader(Header{Version: 1, NumFrames: 3, NumPreinfuseFrames: 1})

	res, err := a.ApplyFrame([]byte{0x00, 0x01, 0x40, 0xBE, 0x32, 0x00, 0x00, 0x64})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != FramePrimary || res.Index != 0 {
		t.Fatalf("result = %+v", res)
	}
	f := a.Frames()[0]
	if f.PumpMode() != "Flow" {
		t.Errorf("pump mode = %q, want Flow", f.PumpMode())
	}
	if f.SetVal != 4.0 {
		t.Errorf("setVal = %v, want 4.0", f.SetVal)
	}
	if f.Temp != 95.0 {
		t.Errorf("temp = %v, want 95.0", f.Temp)
	}
	if f.Duration != 5.0 {
		t.Errorf("duration = %v, want 5.0", f.Duration)
	}
	if f.TriggerVal != 0 {
		t.Errorf("triggerVal = %v, want 0", f.TriggerVal)
	}
	if f.MaxVol != 100 {
		t.Errorf("maxVol = %v, want 100", f.MaxVol)
	}
}

func TestApplyFrameOutOfOrder(t *testing.T) {
	var a Assembler
	a.SetHeader(Header{NumFrames: 3})

	for _, idx := range []byte{2, 0, 1} {
		if _, err := a.ApplyFrame([]byte{idx, 0x00, 0x90, 0xBA, 0x14, 0x00, 0x00, 0x00}); err != nil {
			t.Fatalf("frame %d: %v", idx, err)
		}
	}
	frames := a.Frames()
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	for i, f := range frames {
		if f.FrameIndex != i {
			t.Errorf("frames[%d].FrameIndex = %d", i, f.FrameIndex)
		}
	}
}

func TestApplyFrameExtension(t *testing.T) {
	var a Assembler
	a.SetHeader(Header{NumFrames: 2})

	res, err := a.ApplyFrame([]byte{32 + 1, 0x90, 0x20, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != FrameExtension || res.Index != 1 {
		t.Fatalf("result = %+v", res)
	}
	f := a.Frames()[1]
	if !f.HasExtension || f.LimiterValue != 9.0 || f.LimiterRange != 2.0 {
		t.Errorf("extension frame = %+v", f)
	}
}

func TestApplyFrameTail(t *testing.T) {
	var a Assembler
	a.SetHeader(Header{NumFrames: 2})

	res, err := a.ApplyFrame([]byte{2, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != FrameTail {
		t.Fatalf("result = %+v", res)
	}
	if !a.Complete() {
		t.Error("profile not marked complete after tail")
	}
}

func TestApplyFrameRejectsOutOfRange(t *testing.T) {
	var a Assembler
	a.SetHeader(Header{NumFrames: 2})

	if _, err := a.ApplyFrame([]byte{10, 0, 0, 0, 0, 0, 0, 0}); err == nil {
		t.Error("expected error for index 10 with 2 frames")
	}
	if _, err := a.ApplyFrame([]byte{32 + 5, 0, 0, 0, 0, 0, 0, 0}); err == nil {
		t.Error("expected error for extension index out of range")
	}
	if _, err := a.ApplyFrame([]byte{0, 1, 2}); err == nil {
		t.Error("expected error for short payload")
	}
	// Rejects must not disturb assembled state.
	if len(a.Frames()) != 2 || a.Complete() {
		t.Error("assembler state changed by rejected write")
	}
}

func TestHeaderResetsFrames(t *testing.T) {
	var a Assembler
	a.SetHeader(Header{NumFrames: 2})
	a.ApplyFrame([]byte{0, 0x01, 0x40, 0xBE, 0x32, 0, 0, 0})
	a.ApplyFrame([]byte{2, 0, 0, 0, 0, 0, 0, 0})

	a.SetHeader(Header{NumFrames: 4})
	if a.Complete() {
		t.Error("complete flag survived header write")
	}
	frames := a.Frames()
	if len(frames) != 4 {
		t.Fatalf("got %d frames, want 4", len(frames))
	}
	if frames[0].SetVal != 0 {
		t.Error("old frame data survived header write")
	}
}

func TestRender(t *testing.T) {
	var a Assembler
	if got := a.Render(); got != "(No profile uploaded yet)\n" {
		t.Errorf("empty render = %q", got)
	}
	a.SetHeader(Header{Version: 1, NumFrames: 2, NumPreinfuseFrames: 1})
	a.ApplyFrame([]byte{0, 0x01, 0x40, 0xBE, 0x32, 0, 0, 0})
	out := a.Render()
	if want := "[Preinfuse] Frame 0: Flow 4.0, 95.0C, 5.0s"; !strings.Contains(out, want) {
		t.Errorf("render missing %q:\n%s", want, out)
	}
	if want := "[Pour]      Frame 0:"; !strings.Contains(out, want) {
		t.Errorf("render missing pour row:\n%s", out)
	}
}
