package transport

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ziutek/telnet"

	"github.com/zokikoz/acl-switch/domain/ports"
	"github.com/zokikoz/acl-switch/infrastructure/logging"
)

const (
	DefaultTimeout = 10 * time.Second
	BufferSize     = 4096
)

// TelnetTransport manages a Telnet connection to a device
type TelnetTransport struct {
	conn      *telnet.Conn
	log       *logrus.Entry
	timeout   time.Duration // write deadline
	pending   []byte // input read past the end of the last match
	closeOnce sync.Once
	closeErr  error
}

// NewTelnetTransport wraps an established connection. Telnet option
// negotiation is handled by the telnet package. Writes block for at most
// timeout, or DefaultTimeout when timeout is not positive.
func NewTelnetTransport(conn net.Conn, target string, timeout time.Duration) (*TelnetTransport, error) {
	tc, err := telnet.NewConn(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to start telnet session with %s: %w", target, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TelnetTransport{conn: tc, log: logging.WithDevice(target), timeout: timeout}, nil
}

// Write sends data to the device
func (t *TelnetTransport) Write(data []byte) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := t.conn.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// ReadUntil reads until pattern is found or timeout elapses
func (t *TelnetTransport) ReadUntil(pattern string, timeout time.Duration) ([]byte, error) {
	idx, out, err := t.Expect([]string{pattern}, timeout)
	if err != nil {
		return out, err
	}
	if idx < 0 {
		return out, fmt.Errorf("timeout waiting for %q: %w", pattern, ports.ErrNotMatched)
	}
	return out, nil
}

// Expect reads until one of patterns is found and returns its index, or -1
// when timeout elapses first
func (t *TelnetTransport) Expect(patterns []string, timeout time.Duration) (int, []byte, error) {
	buf := t.pending
	t.pending = nil
	chunk := make([]byte, BufferSize)
	deadline := time.Now().Add(timeout)
	for {
		if idx, end := matchFirst(buf, patterns); idx >= 0 {
			t.pending = append([]byte(nil), buf[end:]...)
			return idx, buf[:end], nil
		}
		if !time.Now().Before(deadline) {
			return -1, buf, nil
		}
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return -1, buf, fmt.Errorf("set read deadline: %w", err)
		}
		n, err := t.conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			t.log.Tracef("read %q", chunk[:n])
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if idx, end := matchFirst(buf, patterns); idx >= 0 {
				t.pending = append([]byte(nil), buf[end:]...)
				return idx, buf[:end], nil
			}
			return -1, buf, fmt.Errorf("read error: %w", err)
		}
	}
}

// Close closes the Telnet connection
func (t *TelnetTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
		t.log.Debug("Disconnected")
	})
	return t.closeErr
}

// matchFirst returns the index of the first pattern, in list order, present in
// buf and the offset just past its first occurrence.
func matchFirst(buf []byte, patterns []string) (int, int) {
	for i, p := range patterns {
		if j := bytes.Index(buf, []byte(p)); j >= 0 {
			return i, j + len(p)
		}
	}
	return -1, 0
}
