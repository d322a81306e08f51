package services

import (
	"time"

	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/domain/ports"
)

const (
	PromptUsername   = "Username"
	PromptPassword   = "Password"
	PromptUser       = ">"
	PromptPrivileged = "#"
	EnableCmd        = "enable"
)

// LoginResult is the terminal state of a successful handshake.
type LoginResult struct {
	Privileged bool
}

// Login authenticates on tr and escalates to privileged mode when an enable
// secret is configured. Every step waits at most timeout; nothing is retried.
func Login(tr ports.Transport, cfg entities.DeviceConfig, timeout time.Duration) (LoginResult, error) {
	authFailed := func(detail string, cause error) error {
		return entities.NewDeviceError(cfg.Target, "login", entities.ErrAuthenticationFailure, detail, cause)
	}

	if cfg.Username != "" {
		if _, err := tr.ReadUntil(PromptUsername, timeout); err != nil {
			return LoginResult{}, authFailed("no username prompt", err)
		}
		if err := tr.Write(line(cfg.Username)); err != nil {
			return LoginResult{}, authFailed("sending username", err)
		}
	}
	if _, err := tr.ReadUntil(PromptPassword, timeout); err != nil {
		return LoginResult{}, authFailed("no password prompt", err)
	}
	if err := tr.Write(line(cfg.Password)); err != nil {
		return LoginResult{}, authFailed("sending password", err)
	}

	index, _, err := tr.Expect([]string{PromptUser, PromptPrivileged}, timeout)
	if err != nil {
		return LoginResult{}, authFailed("waiting for shell prompt", err)
	}
	switch index {
	case 1:
		return LoginResult{Privileged: true}, nil
	case 0:
	default:
		return LoginResult{}, authFailed("shell prompt not seen, credentials rejected?", nil)
	}

	switch cfg.Enable.Mode {
	case entities.EnableDisabled:
		return LoginResult{Privileged: false}, nil
	case entities.EnableSecret:
		return escalate(tr, cfg, timeout)
	default:
		return LoginResult{}, entities.NewDeviceError(cfg.Target, "login", entities.ErrInvalidConfig, "enable secret was not resolved", nil)
	}
}

func escalate(tr ports.Transport, cfg entities.DeviceConfig, timeout time.Duration) (LoginResult, error) {
	escalationFailed := func(detail string, cause error) error {
		return entities.NewDeviceError(cfg.Target, "enable", entities.ErrPrivilegeEscalationFailure, detail, cause)
	}

	if err := tr.Write(line(EnableCmd)); err != nil {
		return LoginResult{}, escalationFailed("sending enable", err)
	}
	if _, err := tr.ReadUntil(PromptPassword, timeout); err != nil {
		return LoginResult{}, escalationFailed("no enable password prompt", err)
	}
	if err := tr.Write(line(cfg.Enable.Secret)); err != nil {
		return LoginResult{}, escalationFailed("sending enable secret", err)
	}
	index, _, err := tr.Expect([]string{PromptPrivileged}, timeout)
	if err != nil {
		return LoginResult{}, escalationFailed("waiting for privileged prompt", err)
	}
	if index < 0 {
		return LoginResult{}, escalationFailed("privileged prompt not seen, enable secret rejected?", nil)
	}
	return LoginResult{Privileged: true}, nil
}

func line(s string) []byte {
	return []byte(s + "\n")
}
