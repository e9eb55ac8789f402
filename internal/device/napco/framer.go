package napco

import "io"

// Framing constants for the Napco Gemini communication bus.
//
// A frame on the bus has the shape:
//
//	Byte 0:     flags
//	Byte 1:     low 5 bits = declared frame length L (L >= 3)
//	Byte 0..L-2: payload (includes the two header bytes)
//	Byte L-1:   checksum = 8-bit truncating sum of bytes 0..L-2
//
// There is no framing delimiter: synchronisation is recovered byte by
// byte after corruption.
const (
	// bufferCap is the rolling buffer capacity. Plenty for a bus whose
	// frames are at most 31 bytes (5-bit length field).
	bufferCap = 1024

	// minFrameLen is the smallest structurally valid declared length:
	// two header bytes plus the checksum.
	minFrameLen = 3

	// minCandidate is the fewest buffered bytes worth inspecting.
	minCandidate = 4

	// lengthMask extracts the declared length from byte 1.
	lengthMask = 0x1F
)

// FrameBuffer converts a best-effort byte stream with unreliable timing
// (short, possibly-empty reads) into a sequence of validated frames,
// self-resynchronising after corruption.
//
// The buffer is owned exclusively by one monitor goroutine; no locking.
type FrameBuffer struct {
	r io.Reader

	// buf[:length] holds buffered bytes; anything beyond length is stale
	// and must never be interpreted.
	buf    []byte
	length int

	// errorCount counts bytes discarded as unparseable. Monotonic;
	// protocol noise is expected steady-state on a shared bus and is
	// never surfaced as a hard error.
	errorCount uint64
}

// NewFrameBuffer creates a framer over r, typically a serial port with a
// short read timeout so Poll never blocks for long.
func NewFrameBuffer(r io.Reader) *FrameBuffer {
	return newFrameBuffer(r, bufferCap)
}

// newFrameBuffer allows a reduced capacity for exercising the
// over-length resynchronisation path in tests.
func newFrameBuffer(r io.Reader, capacity int) *FrameBuffer {
	return &FrameBuffer{
		r:   r,
		buf: make([]byte, capacity),
	}
}

// Poll reads any pending bytes from the stream and attempts to extract
// one validated frame.
//
// Returns nil when no complete frame is buffered yet; that is the normal
// idle result, not an error. Corrupted bytes are discarded one at a time
// (never more than the minimum needed to try a new interpretation, so a
// valid frame starting one byte after a false length field is not
// skipped) and counted in ErrorCount.
func (b *FrameBuffer) Poll() []byte {
	// Opportunistically read into the tail unless the buffer is full.
	// A read that yields nothing (timeout) is not an error.
	if b.length < len(b.buf) {
		n, _ := b.r.Read(b.buf[b.length:])
		b.length += n
	}

	for b.length >= minCandidate {
		frameLen := int(b.buf[1] & lengthMask)

		// Structurally invalid length, or a length that could never fit
		// the buffer: resynchronise by the smallest step. The latter
		// cannot occur at the default capacity (5-bit length <= 31) but
		// protects reduced-capacity buffers from stalling forever on a
		// frame that will never complete.
		if frameLen < minFrameLen || frameLen > len(b.buf) {
			b.discard(1, true)
			continue
		}

		if b.length < frameLen {
			// Frame not fully buffered yet; wait for the next poll.
			return nil
		}

		// 8-bit truncating sum of everything before the checksum byte.
		var sum byte
		for _, c := range b.buf[:frameLen-1] {
			sum += c
		}

		if sum != b.buf[frameLen-1] {
			b.discard(1, true)
			continue
		}

		frame := make([]byte, frameLen)
		copy(frame, b.buf[:frameLen])
		b.discard(frameLen, false)
		return frame
	}

	return nil
}

// discard drops n bytes from the front of the buffer, shifting the
// remaining valid bytes left. Discarding 0 bytes is a no-op.
func (b *FrameBuffer) discard(n int, isError bool) {
	if n == 0 {
		return
	}
	if n > b.length {
		// Internal invariant; callers only discard what Poll has seen.
		n = b.length
	}

	copy(b.buf, b.buf[n:b.length])
	b.length -= n

	if isError {
		b.errorCount += uint64(n)
	}
}

// ErrorCount returns the total number of bytes discarded as unparseable.
// A persistently climbing count with no extracted frames indicates a
// degraded link worth surfacing operationally.
func (b *FrameBuffer) ErrorCount() uint64 {
	return b.errorCount
}

// Buffered returns the number of bytes currently held.
func (b *FrameBuffer) Buffered() int {
	return b.length
}
