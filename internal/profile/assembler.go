package profile

import (
	"fmt"

	"github.com/decenza/de1-sim/internal/codec"
)

// extBase is the wire-index offset for frame-extension records: an extension
// for frame i arrives with index 32+i.
const extBase = 32

// Assembler rebuilds a profile from header and frame writes. A header write
// resets the frame slots; frame writes may arrive in any order within the
// valid ranges. The assembler is not safe for concurrent use; the engine's
// dispatcher serialises access.
type Assembler struct {
	header   Header
	frames   []Frame
	complete bool
}

// FrameKind describes what a FRAME_WRITE payload turned out to be.
type FrameKind int

const (
	FramePrimary FrameKind = iota
	FrameExtension
	FrameTail
)

// FrameResult reports a successfully applied frame write.
type FrameResult struct {
	Kind  FrameKind
	Index int // frame index for primary/extension writes
	Frame Frame
}

// SetHeader applies a HEADER_WRITE: the previous profile is discarded and
// NumFrames zeroed slots are allocated.
func (a *Assembler) SetHeader(h Header) {
	a.header = h
	a.frames = make([]Frame, h.NumFrames)
	a.complete = false
}

// ApplyFrame decodes and applies an 8-byte FRAME_WRITE payload.
func (a *Assembler) ApplyFrame(data []byte) (FrameResult, error) {
	if len(data) < 8 {
		return FrameResult{}, fmt.Errorf("frame payload too short: %d bytes", len(data))
	}

	idx := int(data[0])
	switch {
	case idx >= extBase:
		i := idx - extBase
		if i >= len(a.frames) {
			return FrameResult{}, fmt.Errorf("extension index %d out of range", idx)
		}
		f := &a.frames[i]
		f.HasExtension = true
		f.LimiterValue = codec.DecodeU8P4(data[1])
		f.LimiterRange = codec.DecodeU8P4(data[2])
		return FrameResult{Kind: FrameExtension, Index: i, Frame: *f}, nil

	case idx == int(a.header.NumFrames):
		// Tail marker: the profile is fully written.
		a.complete = true
		return FrameResult{Kind: FrameTail, Index: idx}, nil

	case idx < len(a.frames):
		f := &a.frames[idx]
		f.FrameIndex = idx
		f.Flags = data[1]
		f.SetVal = codec.DecodeU8P4(data[2])
		f.Temp = codec.DecodeU8P1(data[3])
		f.Duration = codec.DecodeF8_1_7(data[4])
		f.TriggerVal = codec.DecodeU8P4(data[5])
		f.MaxVol = codec.DecodeU10P0(data[6:8])
		return FrameResult{Kind: FramePrimary, Index: idx, Frame: *f}, nil

	default:
		return FrameResult{}, fmt.Errorf("frame index %d out of range", idx)
	}
}

// Header returns the current profile header.
func (a *Assembler) Header() Header {
	return a.header
}

// Frames returns the assembled frames by reference.
func (a *Assembler) Frames() []Frame {
	return a.frames
}

// Complete reports whether the tail marker has been seen since the last
// header write.
func (a *Assembler) Complete() bool {
	return a.complete
}

// Render produces the human-readable profile listing shown on the profile
// tab.
func (a *Assembler) Render() string {
	if a.header.NumFrames == 0 {
		return "(No profile uploaded yet)\n"
	}
	out := a.header.String() + "\n\n"
	for i := range a.frames {
		if i < int(a.header.NumPreinfuseFrames) {
			out += "[Preinfuse] "
		} else {
			out += "[Pour]      "
		}
		out += a.frames[i].String() + "\n"
	}
	return out
}
