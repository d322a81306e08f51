package entities

import (
	"fmt"
	"net"
	"time"
)

const (
	// DefaultPort is the Telnet port used when a target carries no port.
	DefaultPort = "23"

	DefaultTimeout        = 10 * time.Second
	DefaultLoginTimeout   = 3 * time.Second
	DefaultCommandTimeout = 5 * time.Second
)

// Direction identifies which traffic an ACL filters on an interface.
// The values match the labels IOS prints in "show ip interface".
type Direction string

const (
	DirectionInbound  Direction = "Inbound"
	DirectionOutgoing Direction = "Outgoing"
)

// IsKnown reports whether d is one of the two directions IOS understands.
func (d Direction) IsKnown() bool {
	return d == DirectionInbound || d == DirectionOutgoing
}

// EnableMode is the tri-state of the enable secret.
type EnableMode int

const (
	// EnableUnset means the secret was not configured and must be asked for.
	EnableUnset EnableMode = iota
	// EnableSecret means Secret holds the enable password (possibly empty).
	EnableSecret
	// EnableDisabled means privilege escalation is never attempted.
	EnableDisabled
)

func (m EnableMode) String() string {
	switch m {
	case EnableSecret:
		return "secret"
	case EnableDisabled:
		return "disabled"
	default:
		return "unset"
	}
}

// EnableSetting carries the enable mode and, for EnableSecret, the secret.
type EnableSetting struct {
	Mode   EnableMode
	Secret string
}

// EnableWith returns a setting holding an explicit secret.
func EnableWith(secret string) EnableSetting {
	return EnableSetting{Mode: EnableSecret, Secret: secret}
}

// EnableOff returns a setting that disables privilege escalation.
func EnableOff() EnableSetting {
	return EnableSetting{Mode: EnableDisabled}
}

// DeviceConfig defines everything needed to toggle the ACL on one device
type DeviceConfig struct {
	Target         string
	Username       string
	Password       string
	Enable         EnableSetting
	Interface      string
	Direction      Direction
	ACL1           string
	ACL2           string
	Platform       string
	Timeout        time.Duration
	LoginTimeout   time.Duration
	CommandTimeout time.Duration
	VerbosityLevel int
	Sandbox        bool
	Save           bool
}

// Address returns the dial address, adding the Telnet port when missing
func (dc DeviceConfig) Address() string {
	if _, _, err := net.SplitHostPort(dc.Target); err == nil {
		return dc.Target
	}
	return net.JoinHostPort(dc.Target, DefaultPort)
}

// WithDefaults fills zero timeouts with their defaults
func (dc DeviceConfig) WithDefaults() DeviceConfig {
	if dc.Timeout <= 0 {
		dc.Timeout = DefaultTimeout
	}
	if dc.LoginTimeout <= 0 {
		dc.LoginTimeout = DefaultLoginTimeout
	}
	if dc.CommandTimeout <= 0 {
		dc.CommandTimeout = DefaultCommandTimeout
	}
	return dc
}

// IsDebugEnabled returns true if debug logs are enabled
func (dc DeviceConfig) IsDebugEnabled() bool {
	return dc.VerbosityLevel == 1 || dc.VerbosityLevel == 3
}

// IsRawOutputEnabled returns true if raw device output is enabled
func (dc DeviceConfig) IsRawOutputEnabled() bool {
	return dc.VerbosityLevel == 2 || dc.VerbosityLevel == 3
}

// Validate checks the invariants the workflow relies on. The enable secret
// must be resolved (asked for) before a workflow starts.
func (dc DeviceConfig) Validate() error {
	switch {
	case dc.Target == "":
		return fmt.Errorf("%w: target is required", ErrInvalidConfig)
	case dc.Interface == "":
		return fmt.Errorf("%w: interface is required for %s", ErrInvalidConfig, dc.Target)
	case dc.Direction == "":
		return fmt.Errorf("%w: direction is required for %s", ErrInvalidConfig, dc.Target)
	case !dc.Direction.IsKnown():
		return fmt.Errorf("%w: direction %s is invalid for %s", ErrInvalidConfig, dc.Direction, dc.Target)
	case dc.ACL1 == "" || dc.ACL2 == "":
		return fmt.Errorf("%w: acl1 and acl2 are required for %s", ErrInvalidConfig, dc.Target)
	case dc.Enable.Mode == EnableUnset:
		return fmt.Errorf("%w: enable secret for %s was not resolved", ErrInvalidConfig, dc.Target)
	}
	if dc.ACL1 == dc.ACL2 && !IsNotSet(dc.ACL1) {
		return fmt.Errorf("%w: acl1 and acl2 must differ for %s (both are %s)", ErrInvalidConfig, dc.Target, dc.ACL1)
	}
	return nil
}
