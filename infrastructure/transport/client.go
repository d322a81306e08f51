package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/zokikoz/acl-switch/domain/ports"
	"github.com/zokikoz/acl-switch/infrastructure/logging"
)

// TelnetDialer opens Telnet transports. Every Dial returns a fresh connection
// owned by the caller; nothing is cached or shared between devices.
type TelnetDialer struct{}

// NewDialer returns the dialer for the plaintext Telnet transport
func NewDialer() ports.Dialer {
	return TelnetDialer{}
}

// Dial connects to address within timeout
func (TelnetDialer) Dial(address string, timeout time.Duration) (ports.Transport, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	tr, err := NewTelnetTransport(conn, address, timeout)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logging.WithDevice(address).Debug("Connected")
	return tr, nil
}
