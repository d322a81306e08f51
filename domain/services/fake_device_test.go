package services

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/domain/ports"
)

const hostname = "SW1"

// fakeDevice is an in-memory IOS shell. Reads never block: a pattern that is
// not buffered behaves like a timeout.
type fakeDevice struct {
	username string
	password string
	enable   string

	startPrivileged bool // password login lands on "#"
	brokenEnable    bool // enable never reaches "#"
	mute            bool // no prompt after the password
	ignoreConfig    bool // accepts "ip access" without changing the binding
	dropOn          string
	panicOn         string

	bindings map[string]string // "<iface>/<Inbound|Outgoing>" -> ACL
	mode     string
	iface    string
	buf      strings.Builder
	writes   []string
	open     bool
	closed   int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		username: "admin",
		password: "secret",
		enable:   "enablepw",
		bindings: map[string]string{},
	}
}

func (d *fakeDevice) bind(iface string, dir entities.Direction, acl string) *fakeDevice {
	d.bindings[iface+"/"+string(dir)] = acl
	return d
}

func (d *fakeDevice) binding(iface string, dir entities.Direction) string {
	if acl, ok := d.bindings[iface+"/"+string(dir)]; ok {
		return acl
	}
	return entities.NotSet
}

// greet emits the banner a fresh connection sees.
func (d *fakeDevice) greet() {
	d.open = true
	d.buf.WriteString("\r\nUser Access Verification\r\n\r\n")
	if d.username != "" {
		d.mode = "username"
		d.buf.WriteString("Username: ")
		return
	}
	d.mode = "password"
	d.buf.WriteString("Password: ")
}

func (d *fakeDevice) prompt() string {
	switch d.mode {
	case "user":
		return hostname + ">"
	case "config":
		return hostname + "(config)#"
	case "interface":
		return hostname + "(config-if)#"
	default:
		return hostname + "#"
	}
}

func (d *fakeDevice) Write(data []byte) error {
	if !d.open {
		return io.ErrClosedPipe
	}
	cmd := strings.TrimSuffix(string(data), "\n")
	d.writes = append(d.writes, cmd)
	if d.panicOn != "" && cmd == d.panicOn {
		panic("device exploded on " + cmd)
	}
	if d.dropOn != "" && cmd == d.dropOn {
		return io.EOF
	}

	switch d.mode {
	case "username":
		d.buf.WriteString(cmd + "\r\n")
		d.mode = "password"
		d.buf.WriteString("Password: ")
		return nil
	case "password":
		d.buf.WriteString("\r\n")
		switch {
		case cmd != d.password:
			d.buf.WriteString("% Authentication failed\r\n")
			d.mode = "dead"
		case d.mute:
			d.mode = "dead"
		case d.startPrivileged:
			d.mode = "exec"
			d.buf.WriteString(d.prompt())
		default:
			d.mode = "user"
			d.buf.WriteString(d.prompt())
		}
		return nil
	case "enable":
		d.buf.WriteString("\r\n")
		if cmd == d.enable && !d.brokenEnable {
			d.mode = "exec"
		} else {
			d.buf.WriteString("% Access denied\r\n\r\n")
			d.mode = "user"
		}
		d.buf.WriteString(d.prompt())
		return nil
	case "dead":
		return nil
	}

	d.buf.WriteString(cmd + "\r\n")
	if d.mode == "user" && cmd == "enable" {
		d.mode = "enable"
		d.buf.WriteString("Password: ")
		return nil
	}
	d.buf.WriteString(d.run(cmd))
	d.buf.WriteString(d.prompt())
	return nil
}

func (d *fakeDevice) run(cmd string) string {
	fields := strings.Fields(cmd)
	invalid := "         ^\r\n% Invalid input detected at '^' marker.\r\n\r\n"
	switch {
	case strings.HasPrefix(cmd, "sh ip int ") && len(fields) == 7 && d.mode != "config" && d.mode != "interface":
		iface, dir := fields[3], entities.Direction(fields[6])
		if !strings.HasPrefix(iface, "Gi") {
			return invalid
		}
		return fmt.Sprintf("  %s access list is %s\r\n", dir, d.binding(iface, dir))
	case d.mode == "user":
		return invalid
	case d.mode == "exec" && cmd == "conf t":
		d.mode = "config"
		return "Enter configuration commands, one per line.  End with CNTL/Z.\r\n"
	case d.mode == "exec" && cmd == "write memory":
		return "Building configuration...\r\n[OK]\r\n"
	case d.mode == "config" && len(fields) == 2 && fields[0] == "int":
		d.mode, d.iface = "interface", fields[1]
		return ""
	case d.mode == "config" && cmd == "exit":
		d.mode = "exec"
		return ""
	case d.mode == "interface" && cmd == "exit":
		d.mode = "config"
		return ""
	case d.mode == "interface" && len(fields) == 4 && fields[0] == "ip" && fields[1] == "access":
		if !d.ignoreConfig {
			d.bind(d.iface, labelOf(fields[3]), fields[2])
		}
		return ""
	case d.mode == "interface" && len(fields) == 4 && fields[0] == "no" && fields[2] == "access":
		if !d.ignoreConfig {
			d.bind(d.iface, labelOf(fields[3]), entities.NotSet)
		}
		return ""
	}
	return invalid
}

func labelOf(token string) entities.Direction {
	if token == "out" {
		return entities.DirectionOutgoing
	}
	return entities.DirectionInbound
}

func (d *fakeDevice) consume(n int) []byte {
	all := d.buf.String()
	d.buf.Reset()
	d.buf.WriteString(all[n:])
	return []byte(all[:n])
}

func (d *fakeDevice) ReadUntil(pattern string, timeout time.Duration) ([]byte, error) {
	idx := strings.Index(d.buf.String(), pattern)
	if idx < 0 {
		return d.consume(d.buf.Len()), fmt.Errorf("waiting for %q: %w", pattern, ports.ErrNotMatched)
	}
	return d.consume(idx + len(pattern)), nil
}

func (d *fakeDevice) Expect(patterns []string, timeout time.Duration) (int, []byte, error) {
	for i, p := range patterns {
		if idx := strings.Index(d.buf.String(), p); idx >= 0 {
			return i, d.consume(idx + len(p)), nil
		}
	}
	return -1, d.consume(d.buf.Len()), nil
}

func (d *fakeDevice) Close() error {
	d.open = false
	d.closed++
	return nil
}

type fakeDialer struct {
	dev     *fakeDevice
	err     error
	address string
	dials   int
}

func (f *fakeDialer) Dial(address string, timeout time.Duration) (ports.Transport, error) {
	f.dials++
	f.address = address
	if f.err != nil {
		return nil, f.err
	}
	f.dev.greet()
	return f.dev, nil
}

var errRefused = errors.New("connection refused")
