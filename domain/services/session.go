package services

import (
	"io"
	"sync"

	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/domain/ports"
)

// Session owns one open transport together with the config it was opened
// for. Nothing else keeps or closes the transport.
type Session struct {
	cfg        entities.DeviceConfig
	tr         ports.Transport
	display    io.Writer
	privileged bool
	closeOnce  sync.Once
	closeErr   error
}

// OpenSession dials the device. A dial failure is reported as DeviceUnreachable.
func OpenSession(dialer ports.Dialer, cfg entities.DeviceConfig, display io.Writer) (*Session, error) {
	cfg = cfg.WithDefaults()
	tr, err := dialer.Dial(cfg.Address(), cfg.Timeout)
	if err != nil {
		return nil, entities.NewDeviceError(cfg.Target, "connect", entities.ErrDeviceUnreachable, cfg.Address(), err)
	}
	return &Session{cfg: cfg, tr: tr, display: display}, nil
}

// Login runs the handshake and records the resulting privilege level.
func (s *Session) Login() error {
	res, err := Login(s.tr, s.cfg, s.cfg.LoginTimeout)
	if err != nil {
		return err
	}
	s.privileged = res.Privileged
	return nil
}

// Privileged reports whether the session reached the "#" prompt.
func (s *Session) Privileged() bool {
	return s.privileged
}

// Prompt is the marker that ends every command response in the current mode.
func (s *Session) Prompt() string {
	if s.privileged {
		return PromptPrivileged
	}
	return PromptUser
}

// Execute runs commands on the session transport.
func (s *Session) Execute(commands []entities.Command) (entities.CommandResults, error) {
	exec := Executor{
		Prompt:  s.Prompt(),
		Timeout: s.cfg.CommandTimeout,
		Display: s.display,
	}
	return exec.Execute(s.tr, commands)
}

// Close releases the transport. Only the first call reaches it.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.tr.Close()
	})
	return s.closeErr
}
