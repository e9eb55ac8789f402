package napco

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"go.bug.st/serial"

	"github.com/calhoun-labs/cerberus/internal/device"
	"github.com/calhoun-labs/cerberus/internal/task"
)

// Serial parameters for the Napco Gemini communication bus.
const (
	// baudRate is the bus rate. Non-standard; most USB serial adapters
	// accept it anyway.
	baudRate = 5200

	// readTimeout bounds each port read so the poll loop returns promptly
	// with whatever bytes are available instead of blocking for a frame.
	readTimeout = 10 * time.Millisecond
)

// Monitor watches a Napco Gemini alarm panel over its keypad
// communication bus and republishes display updates to the status sink.
type Monitor struct {
	id     device.ID
	tk     *task.Task[struct{}]
	logger device.Logger
}

// New constructs and starts a Napco Gemini monitor.
//
// Opening the serial port happens inside the task factory: if the port
// cannot be opened, construction fails with the underlying I/O error and
// no task is ever started.
//
// Parameters:
//   - sink: Status sink to publish to
//   - alloc: ID allocator (injectable for deterministic test IDs)
//   - portName: Serial port connected to the panel's communication bus
//   - logger: Optional logger for protocol anomaly warnings (may be nil)
//
// Returns:
//   - *Monitor: Running monitor
//   - error: ErrNilSink, or ErrPortOpen wrapping the port failure
func New(sink device.StatusSink, alloc *device.Allocator, portName string, logger device.Logger) (*Monitor, error) {
	if sink == nil {
		return nil, device.ErrNilSink
	}

	id := alloc.Next()

	tk, err := task.TrySpawn(func(tok *task.Token) (func() struct{}, error) {
		port, err := openPort(portName)
		if err != nil {
			return nil, err
		}

		return func() struct{} {
			defer port.Close()
			run(tok, sink, id, NewFrameBuffer(port), logger)
			return struct{}{}
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &Monitor{id: id, tk: tk, logger: logger}, nil
}

// openPort opens and configures the serial port for the Gemini bus.
func openPort(portName string) (serial.Port, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrPortOpen, portName, err)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("%w %s: setting read timeout: %w", ErrPortOpen, portName, err)
	}

	return port, nil
}

// run is the monitor's supervised poll loop: framer -> decoder ->
// assembler -> sink, once per iteration, until cancelled.
func run(tok *task.Token, sink device.StatusSink, id device.ID, frames *FrameBuffer, logger device.Logger) {
	ctx := context.Background()

	sink.UpdateStatus(ctx, id, "Napco Gemini device monitor started.", device.LevelInfo)

	var asm Assembler
	for !tok.Cancelled() {
		if frame := frames.Poll(); frame != nil {
			if ev, ok := DecodeKeypad(frame); ok {
				msg, ok, err := asm.Apply(ev)
				switch {
				case err != nil:
					if logger != nil {
						logger.Warn("keypad protocol anomaly",
							"device", id,
							"error", err,
							"discarded_bytes", frames.ErrorCount(),
						)
					}
				case ok:
					sink.UpdateStatus(ctx, id, msg.Text, msg.Level)
				}
			}
		}

		// The loop is synchronous between port reads; the bounded read
		// timeout is its only suspension point. Yield so a chatty bus
		// cannot starve other goroutines on the same thread.
		runtime.Gosched()
	}

	sink.UpdateStatus(ctx, id, "Napco Gemini device monitor stopped.", device.LevelInfo)
}

// runLoop exposes run for tests, which drive it with an in-memory reader
// instead of a serial port.
func runLoop(tok *task.Token, sink device.StatusSink, id device.ID, r io.Reader, logger device.Logger) {
	run(tok, sink, id, NewFrameBuffer(r), logger)
}

// Shutdown stops the monitor and waits for its loop to exit.
// Errors from an already-finished task are logged and swallowed.
func (m *Monitor) Shutdown() {
	if _, err := m.tk.Finish(); err != nil {
		if m.logger != nil {
			m.logger.Warn("napco monitor shutdown fault", "device", m.id, "error", err)
		}
	}
}

// ID returns the monitor's unique device ID.
func (m *Monitor) ID() device.ID {
	return m.id
}
