// Package serial manages the connection to the machine: opening the port,
// waking the controller, and sending one command at a time, waiting for its
// "ok" before the next.
package serial

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tarm "github.com/tarm/serial"
	"go.uber.org/zap"

	apperrors "cutsend/pkg/errors"
)

// Port is an open serial device. Flush discards buffered input.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

// Dialer opens a serial device.
type Dialer interface {
	Dial(name string, baud int) (Port, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(name string, baud int) (Port, error)

func (f DialerFunc) Dial(name string, baud int) (Port, error) {
	return f(name, baud)
}

// TarmDialer opens real devices with github.com/tarm/serial.
type TarmDialer struct {
	// ReadTimeout bounds each read so the line reader notices Close.
	ReadTimeout time.Duration
}

func (d TarmDialer) Dial(name string, baud int) (Port, error) {
	timeout := d.ReadTimeout
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}
	p, err := tarm.OpenPort(&tarm.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: timeout,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// wakeSequence is written on open to wake a GRBL-style controller.
const wakeSequence = "\r\n\r\n"

var (
	// ErrAckTimeout is returned when no acknowledgement arrives within
	// Options.AckTimeout.
	ErrAckTimeout = errors.New("timed out waiting for ok")
	// ErrClosed is returned by SendLine after Close.
	ErrClosed = errors.New("serial session closed")
)

// Options configure Open.
type Options struct {
	Port     string
	BaudRate int
	// SettleDelay is the pause between the wake sequence and discarding
	// whatever the controller printed while starting.
	SettleDelay time.Duration
	// AckTimeout bounds each wait for "ok"; 0 waits forever.
	AckTimeout time.Duration
	// Dialer defaults to TarmDialer.
	Dialer Dialer
	Logger *zap.Logger
}

// Session is an exclusively owned connection to one machine. Commands and
// acknowledgements strictly alternate.
type Session struct {
	port       Port
	name       string
	ackTimeout time.Duration
	log        *zap.Logger

	lines   chan string
	done    chan struct{}
	readErr error // written before lines is closed

	closeOnce sync.Once
	closeErr  error
}

// Open connects to opts.Port and performs the wake handshake. A failure to
// open the device is reported as an ErrConnection AppError naming the port;
// there is no retry.
func Open(ctx context.Context, opts Options) (*Session, error) {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = TarmDialer{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("port", opts.Port))

	port, err := dialer.Dial(opts.Port, opts.BaudRate)
	if err != nil {
		return nil, apperrors.Connection(opts.Port, err)
	}
	log.Info("serial port opened", zap.Int("baud_rate", opts.BaudRate))

	s := &Session{
		port:       port,
		name:       opts.Port,
		ackTimeout: opts.AckTimeout,
		log:        log,
		lines:      make(chan string),
		done:       make(chan struct{}),
	}
	if err := s.wake(ctx, opts.SettleDelay); err != nil {
		port.Close()
		return nil, apperrors.Connection(opts.Port, err)
	}

	// The reader starts only after the flush, so start-up chatter can never
	// be taken for an acknowledgement.
	go s.readLoop()
	return s, nil
}

func (s *Session) wake(ctx context.Context, settle time.Duration) error {
	if _, err := io.WriteString(s.port, wakeSequence); err != nil {
		return fmt.Errorf("wake: %w", err)
	}
	if settle > 0 {
		t := time.NewTimer(settle)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return fmt.Errorf("wake: %w", ctx.Err())
		}
	}
	if err := s.port.Flush(); err != nil {
		return fmt.Errorf("flush input: %w", err)
	}
	s.log.Debug("controller awake", zap.Duration("settle", settle))
	return nil
}

// Name returns the device name.
func (s *Session) Name() string {
	return s.name
}

// SendLine writes command followed by a single "\n", replacing any line
// terminator it already has, then blocks until a line starting with "ok" is
// received. Other received lines are discarded. The wait ends early with
// ErrAckTimeout, the context's error, or the read error that stopped the
// port.
func (s *Session) SendLine(ctx context.Context, command string) error {
	command = strings.TrimRight(command, "\r\n")
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	if _, err := io.WriteString(s.port, command+"\n"); err != nil {
		return fmt.Errorf("write %q: %w", command, err)
	}
	if err := s.awaitAck(ctx); err != nil {
		return fmt.Errorf("%q: %w", command, err)
	}
	return nil
}

func (s *Session) awaitAck(ctx context.Context) error {
	var timeout <-chan time.Time
	if s.ackTimeout > 0 {
		t := time.NewTimer(s.ackTimeout)
		defer t.Stop()
		timeout = t.C
	}
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				if s.readErr != nil {
					return fmt.Errorf("read: %w", s.readErr)
				}
				return ErrClosed
			}
			if isAck(line) {
				return nil
			}
		case <-timeout:
			return fmt.Errorf("%w after %s", ErrAckTimeout, s.ackTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// isAck reports whether a received line acknowledges a command. Error
// responses are not interpreted.
func isAck(line string) bool {
	return strings.HasPrefix(line, "ok")
}

// readLoop splits the input into lines until the port fails or the session
// is closed. io.EOF means a read timed out without data.
func (s *Session) readLoop() {
	defer close(s.lines)
	var pending []byte
	buf := make([]byte, 256)
	for {
		n, err := s.port.Read(buf)
		pending = append(pending, buf[:n]...)
		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			line := strings.TrimRight(string(pending[:i]), "\r")
			pending = pending[i+1:]
			select {
			case s.lines <- line:
			case <-s.done:
				return
			}
		}

		select {
		case <-s.done:
			return
		default:
		}
		if err != nil && !errors.Is(err, io.EOF) {
			s.readErr = err
			return
		}
	}
}

// Close releases the port. It is safe to call more than once; only the first
// call closes the device.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.port.Close()
		s.log.Info("serial port closed")
	})
	return s.closeErr
}
