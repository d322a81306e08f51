package entities

import (
	"errors"
	"testing"
	"time"
)

func TestDeviceConfig_IsDebugEnabled(t *testing.T) {
	tests := []struct {
		name           string
		verbosityLevel int
		expected       bool
	}{
		{name: "verbosity level 0", verbosityLevel: 0, expected: false},
		{name: "verbosity level 1", verbosityLevel: 1, expected: true},
		{name: "verbosity level 2", verbosityLevel: 2, expected: false},
		{name: "verbosity level 3", verbosityLevel: 3, expected: true},
		{name: "verbosity level 4", verbosityLevel: 4, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DeviceConfig{VerbosityLevel: tt.verbosityLevel}
			if result := config.IsDebugEnabled(); result != tt.expected {
				t.Errorf("IsDebugEnabled() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDeviceConfig_IsRawOutputEnabled(t *testing.T) {
	tests := []struct {
		name           string
		verbosityLevel int
		expected       bool
	}{
		{name: "verbosity level 0", verbosityLevel: 0, expected: false},
		{name: "verbosity level 1", verbosityLevel: 1, expected: false},
		{name: "verbosity level 2", verbosityLevel: 2, expected: true},
		{name: "verbosity level 3", verbosityLevel: 3, expected: true},
		{name: "verbosity level 4", verbosityLevel: 4, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DeviceConfig{VerbosityLevel: tt.verbosityLevel}
			if result := config.IsRawOutputEnabled(); result != tt.expected {
				t.Errorf("IsRawOutputEnabled() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDeviceConfig_Address(t *testing.T) {
	tests := []struct {
		target   string
		expected string
	}{
		{target: "10.0.0.1", expected: "10.0.0.1:23"},
		{target: "10.0.0.1:2323", expected: "10.0.0.1:2323"},
		{target: "router1.lab", expected: "router1.lab:23"},
		{target: "2001:db8::1", expected: "[2001:db8::1]:23"},
		{target: "[2001:db8::1]:2323", expected: "[2001:db8::1]:2323"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			config := DeviceConfig{Target: tt.target}
			if got := config.Address(); got != tt.expected {
				t.Errorf("Address() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func validConfig() DeviceConfig {
	return DeviceConfig{
		Target:    "10.0.0.1",
		Password:  "cisco",
		Enable:    EnableWith("class"),
		Interface: "gi0/0",
		Direction: DirectionInbound,
		ACL1:      "ACL_A",
		ACL2:      "ACL_B",
		Timeout:   10 * time.Second,
	}
}

func TestDeviceConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*DeviceConfig)
		expectErr bool
	}{
		{name: "valid", mutate: func(*DeviceConfig) {}},
		{name: "missing target", mutate: func(c *DeviceConfig) { c.Target = "" }, expectErr: true},
		{name: "missing interface", mutate: func(c *DeviceConfig) { c.Interface = "" }, expectErr: true},
		{name: "missing direction", mutate: func(c *DeviceConfig) { c.Direction = "" }, expectErr: true},
		{name: "unknown direction", mutate: func(c *DeviceConfig) { c.Direction = "in" }, expectErr: true},
		{name: "outgoing direction", mutate: func(c *DeviceConfig) { c.Direction = DirectionOutgoing }},
		{name: "missing acl2", mutate: func(c *DeviceConfig) { c.ACL2 = "" }, expectErr: true},
		{name: "unresolved enable", mutate: func(c *DeviceConfig) { c.Enable = EnableSetting{} }, expectErr: true},
		{name: "enable disabled", mutate: func(c *DeviceConfig) { c.Enable = EnableOff() }},
		{name: "empty enable secret", mutate: func(c *DeviceConfig) { c.Enable = EnableWith("") }},
		{name: "same candidates", mutate: func(c *DeviceConfig) { c.ACL2 = "ACL_A" }, expectErr: true},
		{name: "both not set", mutate: func(c *DeviceConfig) { c.ACL1, c.ACL2 = NotSet, NotSet }},
		{name: "one not set", mutate: func(c *DeviceConfig) { c.ACL2 = NotSet }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.expectErr {
				t.Fatalf("Validate() error = %v, expectErr %v", err, tt.expectErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestDirection_IsKnown(t *testing.T) {
	if !DirectionInbound.IsKnown() || !DirectionOutgoing.IsKnown() {
		t.Error("Inbound and Outgoing must be known directions")
	}
	if Direction("Sideways").IsKnown() {
		t.Error("Sideways must not be a known direction")
	}
}

func TestEnableMode_String(t *testing.T) {
	if EnableUnset.String() != "unset" || EnableSecret.String() != "secret" || EnableDisabled.String() != "disabled" {
		t.Errorf("unexpected enable mode names: %s %s %s", EnableUnset, EnableSecret, EnableDisabled)
	}
}

func TestDeviceConfig_WithDefaults(t *testing.T) {
	config := DeviceConfig{CommandTimeout: time.Second}.WithDefaults()
	if config.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", config.Timeout, DefaultTimeout)
	}
	if config.LoginTimeout != DefaultLoginTimeout {
		t.Errorf("LoginTimeout = %v, want %v", config.LoginTimeout, DefaultLoginTimeout)
	}
	if config.CommandTimeout != time.Second {
		t.Errorf("CommandTimeout = %v, want explicit value kept", config.CommandTimeout)
	}
}
