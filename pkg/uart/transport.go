// Package uart drives the console's debug serial port with a line-based
// command/response protocol: one command in flight at a time, each
// command newline-terminated and optionally checksum-framed, each
// response read until the terminator or a deadline.
package uart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/FObersteiner/goserial"
	"github.com/rs/zerolog"
)

var (
	// ErrNotConnected means the transport has no open port.
	ErrNotConnected = errors.New("not connected to UART device")

	// ErrBusy means another command is already in flight; nothing was
	// written to the port.
	ErrBusy = errors.New("another command is in flight")

	// ErrTimeout means no terminator arrived within the deadline. The
	// transport stays connected and the next command may retry.
	ErrTimeout = errors.New("timed out waiting for response")

	// ErrInvalidCommand means the command text was rejected before any
	// write: empty, or containing the line terminator itself.
	ErrInvalidCommand = errors.New("invalid command text")
)

// CommandError wraps a transport failure with the command it belongs to.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

const (
	terminator = '\n'

	// sliceTimeout bounds a single port read so the response loop can
	// check the overall deadline between slices.
	sliceTimeout = 50 * time.Millisecond

	defaultCommandTimeout = 5 * time.Second
)

// Transport owns one serial connection. Exactly one Transport may hold a
// physical port at a time; the in-flight lock serializes commands over
// the single link.
type Transport struct {
	inflight sync.Mutex // held for the whole of one command/response pair
	dirty    bool       // guarded by inflight: a failed read may have left stale bytes pending

	mu   sync.Mutex // guards port
	port io.ReadWriteCloser

	timeout  time.Duration
	checksum bool
	log      zerolog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithTimeout sets the per-command response deadline.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) { t.timeout = d }
}

// WithChecksum toggles the console checksum framing (sum of the command
// bytes modulo 256, appended as ":%02X"). On by default; the bare
// framing exists for bridges that strip it themselves.
func WithChecksum(on bool) Option {
	return func(t *Transport) { t.checksum = on }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Transport) { t.log = log }
}

// NewTransport wraps an already-open stream. Tests and unix-socket
// bridges use this directly; hardware goes through Dial.
func NewTransport(rwc io.ReadWriteCloser, opts ...Option) *Transport {
	t := &Transport{
		port:     rwc,
		timeout:  defaultCommandTimeout,
		checksum: true,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Dial opens the serial port at portName and wraps it in a Transport.
// Opening fails if the port does not exist or is claimed elsewhere.
func Dial(portName string, baud int, opts ...Option) (*Transport, error) {
	cfg := &goserial.Config{
		Name:        portName,
		Baud:        baud,
		ReadTimeout: sliceTimeout,
	}
	port, err := goserial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot open serial port %q: %w", portName, err)
	}
	return NewTransport(port, opts...), nil
}

// Connected reports whether the transport currently holds a port.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Checksum appends the console command checksum: the sum of the bytes
// modulo 256, rendered as ":%02X".
func Checksum(command string) string {
	var sum byte
	for i := 0; i < len(command); i++ {
		sum += command[i]
	}
	return fmt.Sprintf("%s:%02X", command, sum)
}

// SendCommand writes one framed command and blocks until a full response
// line arrives or the deadline elapses. Commands issued while another is
// in flight fail fast with ErrBusy without touching the wire.
func (t *Transport) SendCommand(command string) (string, error) {
	if command == "" {
		return "", &CommandError{Command: command, Err: fmt.Errorf("%w: empty command", ErrInvalidCommand)}
	}
	if strings.ContainsAny(command, "\r\n") {
		return "", &CommandError{Command: command, Err: fmt.Errorf("%w: embedded line terminator", ErrInvalidCommand)}
	}

	if !t.inflight.TryLock() {
		return "", &CommandError{Command: command, Err: ErrBusy}
	}
	defer t.inflight.Unlock()

	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return "", &CommandError{Command: command, Err: ErrNotConnected}
	}

	if t.dirty {
		t.drainStale(port)
		t.dirty = false
	}

	line := command
	if t.checksum {
		line = Checksum(command)
	}
	t.log.Debug().Str("command", command).Str("framed", line).Msg("sending UART command")

	if _, err := port.Write(append([]byte(line), terminator)); err != nil {
		return "", &CommandError{Command: command, Err: fmt.Errorf("error writing to port: %w", err)}
	}

	response, err := t.readLine(port)
	if err != nil {
		t.dirty = true
		return "", &CommandError{Command: command, Err: err}
	}
	t.log.Debug().Str("response", response).Msg("received UART response")
	return response, nil
}

// readLine accumulates port reads until the terminator or the deadline.
// Zero-byte reads and io.EOF are how timeout-sliced serial reads report
// "nothing yet", so they only advance the clock.
func (t *Transport) readLine(port io.ReadWriteCloser) (string, error) {
	deadline := time.Now().Add(t.timeout)
	var response []byte
	chunk := make([]byte, 256)
	for {
		if time.Now().After(deadline) {
			return "", ErrTimeout
		}
		n, err := port.Read(chunk)
		if n > 0 {
			response = append(response, chunk[:n]...)
			if i := bytes.IndexByte(response, terminator); i >= 0 {
				return strings.TrimRight(string(response[:i]), "\r"), nil
			}
		}
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("error reading from port: %w", err)
		}
	}
}

// drainStale swallows whatever the previous, failed command left pending
// so a retry cannot parse the stale tail of the old response. It stops at
// the first empty read; anything still in flight after that is beyond
// what sliced serial reads can distinguish from silence.
func (t *Transport) drainStale(port io.ReadWriteCloser) {
	if f, ok := port.(interface{ Flush() error }); ok {
		if err := f.Flush(); err == nil {
			return
		}
	}
	deadline := time.Now().Add(2 * sliceTimeout)
	chunk := make([]byte, 256)
	drained := 0
	for !time.Now().After(deadline) {
		n, err := port.Read(chunk)
		drained += n
		if n == 0 || (err != nil && err != io.EOF) {
			break
		}
	}
	if drained > 0 {
		t.log.Debug().Int("bytes", drained).Msg("drained stale UART input")
	}
}

// Close releases the port unconditionally. Calling it on an already
// closed transport is a no-op.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}
