package platform

import (
	"fmt"
	"strings"

	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/platform/ios"
)

// ACLDriver renders and parses the device commands used to toggle an ACL.
type ACLDriver interface {
	Name() string

	InspectCommand(iface string, direction entities.Direction) entities.Command
	ParseBinding(output, iface string, direction entities.Direction) (entities.ACLBinding, error)

	ToggleCommands(newACL string, direction entities.Direction, iface string) []entities.Command
	SaveCommands() []entities.Command
}

var registry = []ACLDriver{
	ios.New(),
}

// Default is the platform used when none is configured.
const Default = "ios"

// Get returns a driver by normalized platform name.
func Get(name string) (ACLDriver, error) {
	normalized := normalizeName(name)
	if normalized == "" {
		normalized = Default
	}
	for _, driver := range registry {
		if driver.Name() == normalized {
			return driver, nil
		}
	}
	return nil, fmt.Errorf("unknown device platform: %s", name)
}

// Available returns all registered drivers.
func Available() []ACLDriver {
	out := make([]ACLDriver, len(registry))
	copy(out, registry)
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
