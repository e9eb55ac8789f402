// Package napco monitors a Napco Gemini alarm panel over its proprietary
// keypad communication bus.
//
// The bus is a continuous serial byte stream with no framing delimiter.
// Three layers turn it into application status events:
//
//   - FrameBuffer extracts length-prefixed, checksum-validated frames
//     from the raw stream, discarding corrupted bytes one at a time to
//     resynchronise after noise.
//   - DecodeKeypad interprets the 27-byte keypad display frames into
//     per-line events with a panel status label.
//   - Assembler merges the two per-line events the panel sends for each
//     display update into a single status message, deduplicated against
//     the last one published.
//
// The Monitor wires these into one supervised poll loop over a serial
// port at the bus's 5200 baud rate with a short read timeout.
//
// The protocol is only partially reverse engineered: unknown status byte
// pairs are published as "Unknown (XX,YY)" rather than dropped, and
// decoding is only known good for the primary keypad of a single-area
// system.
package napco
