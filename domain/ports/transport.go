package ports

import (
	"errors"
	"time"
)

// ErrNotMatched is returned by ReadUntil when the pattern did not arrive in time.
var ErrNotMatched = errors.New("pattern not matched before timeout")

// Transport is a byte-level, prompt-synchronised session with a device
type Transport interface {
	// Write sends data as is.
	Write(data []byte) error
	// ReadUntil blocks until pattern is seen or timeout elapses. On timeout it
	// returns what was read together with an error wrapping ErrNotMatched.
	ReadUntil(pattern string, timeout time.Duration) ([]byte, error)
	// Expect blocks until one of patterns is seen and returns its index, or -1
	// on timeout. Patterns are tested in list order; input is consumed through
	// the end of the match.
	Expect(patterns []string, timeout time.Duration) (int, []byte, error)
	// Close releases the connection. Calling it twice is harmless.
	Close() error
}

// Dialer opens transports
type Dialer interface {
	Dial(address string, timeout time.Duration) (Transport, error)
}
