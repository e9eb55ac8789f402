package napco

import (
	"bytes"
	"testing"
)

// buildFrame assembles a valid frame: flags byte, declared length,
// payload filler, and a correct trailing checksum.
func buildFrame(t *testing.T, flags byte, length int) []byte {
	t.Helper()
	if length < minFrameLen || length > 31 {
		t.Fatalf("buildFrame: length %d outside 5-bit frame range", length)
	}

	frame := make([]byte, length)
	frame[0] = flags
	frame[1] = byte(length)
	for i := 2; i < length-1; i++ {
		frame[i] = byte(0x40 + i) // arbitrary distinct payload
	}

	var sum byte
	for _, c := range frame[:length-1] {
		sum += c
	}
	frame[length-1] = sum

	return frame
}

// chunkReader yields its chunks one Read at a time, then reads empty,
// mimicking a serial port with a short timeout.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, nil
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestFrameBuffer_ExtractsValidFrame(t *testing.T) {
	frame := buildFrame(t, 0x00, 27)
	fb := NewFrameBuffer(bytes.NewReader(frame))

	got := fb.Poll()
	if got == nil {
		t.Fatal("Poll() = nil, want frame")
	}
	if !bytes.Equal(got, frame) {
		t.Errorf("Poll() = %X, want %X", got, frame)
	}
	if fb.ErrorCount() != 0 {
		t.Errorf("ErrorCount() = %d, want 0", fb.ErrorCount())
	}
	if fb.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0 (offset advanced by frame length)", fb.Buffered())
	}

	// Nothing left: subsequent polls are clean no-ops.
	if again := fb.Poll(); again != nil {
		t.Errorf("second Poll() = %X, want nil", again)
	}
}

func TestFrameBuffer_LengthFieldMasked(t *testing.T) {
	// High 3 bits of the length byte carry other bus info and must be
	// ignored.
	frame := buildFrame(t, 0x00, 8)
	frame[1] |= 0xE0
	// Recompute checksum for the modified header byte.
	var sum byte
	for _, c := range frame[:len(frame)-1] {
		sum += c
	}
	frame[len(frame)-1] = sum

	fb := NewFrameBuffer(bytes.NewReader(frame))
	got := fb.Poll()
	if got == nil {
		t.Fatal("Poll() = nil, want frame with masked length field")
	}
	if len(got) != 8 {
		t.Errorf("len(frame) = %d, want 8", len(got))
	}
}

func TestFrameBuffer_ResyncAfterGarbage(t *testing.T) {
	// Garbage bytes whose masked length field is always invalid, so each
	// is discarded individually before the valid frame is found.
	garbage := []byte{0x00, 0x00, 0x00, 0x00, 0x00}
	frame := buildFrame(t, 0x00, 12)

	fb := NewFrameBuffer(bytes.NewReader(append(append([]byte{}, garbage...), frame...)))

	got := fb.Poll()
	if got == nil {
		t.Fatal("Poll() = nil, want frame after resynchronisation")
	}
	if !bytes.Equal(got, frame) {
		t.Errorf("Poll() = %X, want %X", got, frame)
	}
	if fb.ErrorCount() != uint64(len(garbage)) {
		t.Errorf("ErrorCount() = %d, want %d (one per garbage byte)", fb.ErrorCount(), len(garbage))
	}
}

func TestFrameBuffer_IncompleteFrameWaits(t *testing.T) {
	frame := buildFrame(t, 0x00, 27)

	fb := NewFrameBuffer(&chunkReader{chunks: [][]byte{
		frame[:10],
		frame[10:20],
		frame[20:],
	}})

	// First two polls see a partial frame: not an error, no discards.
	if got := fb.Poll(); got != nil {
		t.Fatalf("Poll() with 10/27 bytes = %X, want nil", got)
	}
	if got := fb.Poll(); got != nil {
		t.Fatalf("Poll() with 20/27 bytes = %X, want nil", got)
	}
	if fb.ErrorCount() != 0 {
		t.Errorf("ErrorCount() = %d, want 0 while waiting for bytes", fb.ErrorCount())
	}

	got := fb.Poll()
	if !bytes.Equal(got, frame) {
		t.Errorf("Poll() = %X, want %X", got, frame)
	}
}

func TestFrameBuffer_ChecksumMismatchDiscards(t *testing.T) {
	// A structurally plausible candidate with a wrong checksum, followed
	// by filler that never validates. No frame may be produced.
	data := append([]byte{0x05, 0x03, 0x10}, make([]byte, 16)...)
	fb := NewFrameBuffer(bytes.NewReader(data))

	for i := 0; i < len(data)+1; i++ {
		if got := fb.Poll(); got != nil {
			t.Fatalf("Poll() = %X, want no frame from corrupted input", got)
		}
	}

	if fb.ErrorCount() < 3 {
		t.Errorf("ErrorCount() = %d, want >= 3", fb.ErrorCount())
	}
	if fb.Buffered() >= minCandidate {
		t.Errorf("Buffered() = %d, want < %d after resynchronisation consumed the input", fb.Buffered(), minCandidate)
	}
}

func TestFrameBuffer_EmptyPollIsIdempotent(t *testing.T) {
	fb := NewFrameBuffer(bytes.NewReader(nil))

	for i := 0; i < 3; i++ {
		if got := fb.Poll(); got != nil {
			t.Fatalf("Poll() on empty stream = %X, want nil", got)
		}
	}

	if fb.ErrorCount() != 0 {
		t.Errorf("ErrorCount() = %d, want 0", fb.ErrorCount())
	}
	if fb.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", fb.Buffered())
	}
}

func TestFrameBuffer_OverLengthDeclaration(t *testing.T) {
	// With a reduced capacity, a declared length that can never fit must
	// be treated as desynchronisation, not waited on forever.
	data := []byte{0x00, 0x1F, 0x01, 0x02, 0x03, 0x04}
	fb := newFrameBuffer(bytes.NewReader(data), 16)

	if got := fb.Poll(); got != nil {
		t.Fatalf("Poll() = %X, want nil", got)
	}

	if fb.ErrorCount() == 0 {
		t.Error("ErrorCount() = 0, want discards for over-length declaration")
	}
}

func TestFrameBuffer_BackToBackFrames(t *testing.T) {
	first := buildFrame(t, 0x01, 9)
	second := buildFrame(t, 0x02, 27)

	fb := NewFrameBuffer(bytes.NewReader(append(append([]byte{}, first...), second...)))

	if got := fb.Poll(); !bytes.Equal(got, first) {
		t.Errorf("first Poll() = %X, want %X", got, first)
	}
	if got := fb.Poll(); !bytes.Equal(got, second) {
		t.Errorf("second Poll() = %X, want %X", got, second)
	}
	if fb.ErrorCount() != 0 {
		t.Errorf("ErrorCount() = %d, want 0", fb.ErrorCount())
	}
}
