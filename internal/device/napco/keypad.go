package napco

import (
	"fmt"
	"strings"

	"github.com/calhoun-labs/cerberus/internal/device"
)

// Keypad display frame layout.
const (
	// keypadFrameLen is the fixed length of a keypad display frame.
	keypadFrameLen = 27

	// keypadMarker at byte 4 marks panel-to-keypad display traffic.
	keypadMarker = 0x01

	// markerLine0 and markerLine1 at byte 5 select the display line.
	markerLine0 = 0x20
	markerLine1 = 0x60

	// textStart..textEnd is the 16-byte display text slice.
	textStart = 10
	textEnd   = 26

	// statusByte1 and statusByte2 carry the panel status pair.
	statusByte1 = 8
	statusByte2 = 9
)

// keypadStatuses maps the (status1, status2) byte pair to a label.
//
// The table is the product of partial reverse engineering of an
// undocumented bus; pairs outside it fall back to a formatted Unknown
// label so unrecognised panel states stay observable. This covers
// messages to the primary keypad of a single-area system only.
var keypadStatuses = map[[2]byte]string{
	{0x02, 0x00}: "Ready",
	{0x06, 0x00}: "Ready, Bypass",
	{0x00, 0x00}: "Zone Fault",
	{0x04, 0x00}: "Zone Fault, Bypass",

	{0x85, 0x80}: "Arming, Bypass",
	{0x05, 0x80}: "Armed, Bypass",
	{0xC5, 0x80}: "Disarm, Bypass",
	{0xC5, 0xC0}: "Disarm, Bypass", // fast beep, 10 seconds left
	{0x45, 0x81}: "ALARM, Bypass",

	{0x81, 0x80}: "Arming",
	{0x01, 0x80}: "Armed",
	{0xC1, 0x80}: "Disarm",
	{0xC1, 0xC0}: "Disarm", // fast beep, 10 seconds left
	{0x41, 0x81}: "ALARM",

	{0x85, 0x90}: "Arming, Instant, Bypass",
	{0x05, 0x90}: "Armed, Instant, Bypass",
	{0x81, 0x90}: "Arming, Instant",
	{0x01, 0x90}: "Armed, Instant",

	// TODO: identify the pair for ALARM with beeping silenced after 15 minutes.
}

// statusLabel maps a status byte pair to its label, falling back to a
// formatted Unknown label for pairs outside the table.
func statusLabel(status1, status2 byte) string {
	if label, ok := keypadStatuses[[2]byte{status1, status2}]; ok {
		return label
	}
	return fmt.Sprintf("Unknown (%02X,%02X)", status1, status2)
}

// LineEvent is one decoded half of a two-line keypad display update.
type LineEvent struct {
	// Line is the display line, 0 or 1.
	Line int

	// Status is the decoded panel status label.
	Status string

	// Text is the line's 16 characters of display text, padding included.
	Text string
}

// DecodeKeypad attempts to decode a frame as a keypad display message.
//
// Only frames of the fixed keypad length with the keypad marker byte and
// a recognised line marker qualify; everything else on the bus is ignored
// for this purpose and reported as ok=false.
//
// Parameters:
//   - frame: A validated frame from the FrameBuffer
//
// Returns:
//   - LineEvent: Decoded line, status label, and display text
//   - bool: true if the frame is a keypad display frame
func DecodeKeypad(frame []byte) (LineEvent, bool) {
	if len(frame) != keypadFrameLen || frame[4] != keypadMarker {
		return LineEvent{}, false
	}

	var line int
	switch frame[5] {
	case markerLine0:
		line = 0
	case markerLine1:
		line = 1
	default:
		return LineEvent{}, false
	}

	return LineEvent{
		Line:   line,
		Status: statusLabel(frame[statusByte1], frame[statusByte2]),
		// Display text is nominally US-ASCII; decode lossily so stray
		// bytes cannot poison the status string.
		Text: strings.ToValidUTF8(string(frame[textStart:textEnd]), "�"),
	}, true
}

// Message is a fully assembled keypad display update.
type Message struct {
	// Text is the composed status string: label plus quoted display text.
	Text string

	// Level is Alarm when the composed text mentions an alarm, Status
	// otherwise.
	Level device.Level
}

// Assembler reconstructs two-line keypad display updates from the
// per-line frames the panel sends.
//
// State machine: a line-0 event is pended; the next line-1 event merges
// with it into one Message. Line-1 events with no pending line 0 are a
// protocol anomaly (likely a corrupted or dropped frame) and are
// reported via ErrUnpairedLine without corrupting state.
//
// Owned exclusively by one monitor goroutine; no locking.
type Assembler struct {
	pendingLine0 *string
	lastMessage  string
}

// Apply feeds one line event through the state machine.
//
// Returns:
//   - Message: The assembled update, valid only when ok is true
//   - bool: true when a new, deduplicated message was completed
//   - error: ErrUnpairedLine for a line-1 event with no pending line 0
func (a *Assembler) Apply(ev LineEvent) (Message, bool, error) {
	if ev.Line == 0 {
		// Hold the first line until its partner arrives.
		text := ev.Text
		a.pendingLine0 = &text
		return Message{}, false, nil
	}

	if a.pendingLine0 == nil {
		return Message{}, false, ErrUnpairedLine
	}

	line0 := *a.pendingLine0
	a.pendingLine0 = nil

	entire := strings.TrimSpace(strings.TrimSpace(line0) + " " + strings.TrimSpace(ev.Text))
	composed := fmt.Sprintf("%s %q", ev.Status, entire)

	if composed == a.lastMessage {
		// Panels resend the display continuously; only changes publish.
		return Message{}, false, nil
	}
	a.lastMessage = composed

	level := device.LevelStatus
	if strings.Contains(strings.ToLower(composed), "alarm") {
		level = device.LevelAlarm
	}

	return Message{Text: composed, Level: level}, true, nil
}
