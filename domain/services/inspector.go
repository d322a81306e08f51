package services

import (
	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/platform"
)

// CommandRunner executes commands on an open session.
type CommandRunner interface {
	Execute(commands []entities.Command) (entities.CommandResults, error)
}

// Inspector reads the ACL currently bound to an interface
type Inspector struct {
	Target string
	Driver platform.ACLDriver
}

// Inspect queries the device and parses the bound ACL
func (i Inspector) Inspect(runner CommandRunner, iface string, direction entities.Direction) (entities.ACLBinding, error) {
	cmd := i.Driver.InspectCommand(iface, direction)
	results, err := runner.Execute([]entities.Command{cmd})
	if err != nil {
		return entities.ACLBinding{}, entities.NewDeviceError(i.Target, "inspect", entities.ErrACLQueryFailure, string(cmd), err)
	}
	res, _ := results.Lookup(cmd)
	binding, err := i.Driver.ParseBinding(res.Output, iface, direction)
	if err != nil {
		return entities.ACLBinding{}, entities.NewDeviceError(i.Target, "inspect", entities.ErrACLQueryFailure, string(cmd), err)
	}
	return binding, nil
}
