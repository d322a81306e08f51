package services

import (
	"fmt"

	"github.com/zokikoz/acl-switch/domain/entities"
)

// Toggle returns the candidate that is not currently bound.
func Toggle(current entities.ACLBinding, acl1, acl2 string) (string, error) {
	switch {
	case sameACL(current.ACL, acl1):
		return acl2, nil
	case sameACL(current.ACL, acl2):
		return acl1, nil
	}
	return "", fmt.Errorf("%w: current ACL %q matches neither %q nor %q", entities.ErrToggleAmbiguous, current.ACL, acl1, acl2)
}

// sameACL compares ACL names; IOS names are case sensitive but the unbound
// sentinel is not a name.
func sameACL(a, b string) bool {
	if entities.IsNotSet(a) || entities.IsNotSet(b) {
		return entities.IsNotSet(a) && entities.IsNotSet(b)
	}
	return a == b
}
