// Package serialtest provides an in-memory serial port for tests.
package serialtest

import (
	"bytes"
	"os"
	"strings"
	"sync"

	"cutsend/pkg/serial"
)

// Responder returns the replies to one line written to the port. The line
// excludes its "\n".
type Responder func(line string) []string

// OK acknowledges every non-blank line.
func OK(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	return []string{"ok\r\n"}
}

// Port is an in-memory serial.Port. Every complete line written is passed to
// the responder and the replies are queued as input. Read blocks until input
// is queued or the port is closed.
type Port struct {
	mu      sync.Mutex
	cond    *sync.Cond
	in      bytes.Buffer
	raw     bytes.Buffer
	partial string
	written []string
	respond Responder

	readErr    error
	writeErr   error
	flushes    int
	closeCalls int
	closed     bool
}

func NewPort(respond Responder) *Port {
	p := &Port{respond: respond}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.in.Len() == 0 && !p.closed && p.readErr == nil {
		p.cond.Wait()
	}
	switch {
	case p.closed:
		return 0, os.ErrClosed
	case p.in.Len() > 0:
		return p.in.Read(b)
	default:
		return 0, p.readErr
	}
}

func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, os.ErrClosed
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.raw.Write(b)
	p.partial += string(b)
	for {
		i := strings.IndexByte(p.partial, '\n')
		if i < 0 {
			break
		}
		line := p.partial[:i]
		p.partial = p.partial[i+1:]
		p.written = append(p.written, line)
		if p.respond != nil {
			for _, reply := range p.respond(line) {
				p.in.WriteString(reply)
			}
		}
	}
	p.cond.Broadcast()
	return len(b), nil
}

// Flush discards queued input.
func (p *Port) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.in.Reset()
	p.flushes++
	return nil
}

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalls++
	p.closed = true
	p.cond.Broadcast()
	return nil
}

// Feed queues input as if the controller had sent it.
func (p *Port) Feed(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.in.WriteString(s)
	p.cond.Broadcast()
}

// FailReads makes reads fail with err once queued input is consumed.
func (p *Port) FailReads(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErr = err
	p.cond.Broadcast()
}

// FailWrites makes every following write fail with err.
func (p *Port) FailWrites(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// Commands returns the non-blank lines written so far, in order.
func (p *Port) Commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var lines []string
	for _, line := range p.written {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Raw returns every byte written so far.
func (p *Port) Raw() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.raw.String()
}

func (p *Port) Flushes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushes
}

func (p *Port) CloseCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalls
}

// Dialer returns a serial.Dialer that hands out p and records the requested
// device.
func (p *Port) Dialer(dialed *string) serial.Dialer {
	return serial.DialerFunc(func(name string, baud int) (serial.Port, error) {
		if dialed != nil {
			*dialed = name
		}
		return p, nil
	})
}
