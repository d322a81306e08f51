package ios

import (
	"fmt"

	"github.com/zokikoz/acl-switch/domain/entities"
)

const driverName = "ios"

var directionTokens = map[entities.Direction]string{
	entities.DirectionInbound:  "in",
	entities.DirectionOutgoing: "out",
}

// Driver implements ACL inspection and toggling for Cisco IOS devices.
type Driver struct{}

// New creates a new IOS driver instance.
func New() *Driver {
	return &Driver{}
}

// Name returns the canonical platform identifier.
func (d *Driver) Name() string {
	return driverName
}

// DirectionToken renders a direction as the keyword used by "ip access-group".
// Unknown labels are returned unchanged.
func DirectionToken(direction entities.Direction) string {
	if token, ok := directionTokens[direction]; ok {
		return token
	}
	return string(direction)
}

// InspectCommand returns the command that shows the ACL bound to iface.
func (d *Driver) InspectCommand(iface string, direction entities.Direction) entities.Command {
	return entities.Command(fmt.Sprintf("sh ip int %s | include %s", iface, direction))
}

// ParseBinding extracts the bound ACL from InspectCommand output.
func (d *Driver) ParseBinding(output, iface string, direction entities.Direction) (entities.ACLBinding, error) {
	acl, err := parseACLName(output, direction)
	if err != nil {
		return entities.ACLBinding{}, err
	}
	return entities.ACLBinding{Interface: iface, Direction: direction, ACL: acl}, nil
}

// ToggleCommands returns commands binding newACL to iface, or removing the
// binding when newACL is "not set". Two exits bring the session back to the
// privileged prompt.
func (d *Driver) ToggleCommands(newACL string, direction entities.Direction, iface string) []entities.Command {
	token := DirectionToken(direction)
	bind := entities.Command(fmt.Sprintf("ip access %s %s", newACL, token))
	if entities.IsNotSet(newACL) {
		bind = entities.Command(fmt.Sprintf("no ip access %s", token))
	}
	return []entities.Command{
		"conf t",
		entities.Command(fmt.Sprintf("int %s", iface)),
		bind,
		"exit",
		"exit",
	}
}

// SaveCommands returns commands that persist the running configuration.
func (d *Driver) SaveCommands() []entities.Command {
	return []entities.Command{"write memory"}
}
