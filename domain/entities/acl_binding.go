package entities

import "strings"

// NotSet is the ACL name IOS reports when no list is bound.
const NotSet = "not set"

// ACLBinding is the ACL reported bound to an interface and direction
type ACLBinding struct {
	Interface string
	Direction Direction
	ACL       string
}

// IsUnbound reports whether no ACL is bound.
func (b ACLBinding) IsUnbound() bool {
	return IsNotSet(b.ACL)
}

// IsNotSet reports whether name denotes the unbound sentinel.
func IsNotSet(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), NotSet)
}
