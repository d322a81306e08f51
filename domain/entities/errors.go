package entities

import (
	"errors"
	"fmt"
)

// Failure kinds. Each one is fatal to the workflow of the device that raised it.
var (
	ErrDeviceUnreachable          = errors.New("device unreachable")
	ErrAuthenticationFailure      = errors.New("authentication failure")
	ErrPrivilegeEscalationFailure = errors.New("privilege escalation failure")
	ErrACLQueryFailure            = errors.New("ACL query failure")
	ErrToggleAmbiguous            = errors.New("toggle ambiguous")
	ErrVerificationMismatch       = errors.New("verification mismatch")
	ErrInvalidConfig              = errors.New("invalid configuration")
)

var kindNames = []struct {
	err  error
	name string
}{
	{ErrDeviceUnreachable, "DeviceUnreachable"},
	{ErrAuthenticationFailure, "AuthenticationFailure"},
	{ErrPrivilegeEscalationFailure, "PrivilegeEscalationFailure"},
	{ErrACLQueryFailure, "ACLQueryFailure"},
	{ErrToggleAmbiguous, "ToggleAmbiguous"},
	{ErrVerificationMismatch, "VerificationMismatch"},
	{ErrInvalidConfig, "InvalidConfig"},
}

// Kind returns the failure kind name of err, "Unexpected" for errors outside
// the taxonomy and "" for nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kindNames {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unexpected"
}

// DeviceError reports a failure of one device workflow step
type DeviceError struct {
	Target string
	Stage  string
	Err    error  // one of the failure kinds above
	Detail string // short diagnostic
	Cause  error  // underlying transport or parse error, if any
}

func (e *DeviceError) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", e.Target, e.Stage, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (%v)", e.Cause)
	}
	return msg
}

func (e *DeviceError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// NewDeviceError creates a DeviceError for the given kind
func NewDeviceError(target, stage string, kind error, detail string, cause error) *DeviceError {
	return &DeviceError{
		Target: target,
		Stage:  stage,
		Err:    kind,
		Detail: detail,
		Cause:  cause,
	}
}
