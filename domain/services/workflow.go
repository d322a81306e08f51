package services

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/domain/ports"
	"github.com/zokikoz/acl-switch/platform"
)

// State is a step of the per-device workflow.
type State int

const (
	StateIdle State = iota
	StateConnected
	StateAuthenticated
	StateInspected
	StateToggled
	StateApplied
	StateVerified
	StateClosed
	StateFailed
)

var stateNames = [...]string{
	StateIdle:          "Idle",
	StateConnected:     "Connected",
	StateAuthenticated: "Authenticated",
	StateInspected:     "Inspected",
	StateToggled:       "Toggled",
	StateApplied:       "Applied",
	StateVerified:      "Verified",
	StateClosed:        "Closed",
	StateFailed:        "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Report is what one device run produced, including partial progress.
type Report struct {
	Target     string
	RunID      string
	State      State
	Progress   []State
	Privileged bool
	Before     entities.ACLBinding
	NewACL     string
	Commands   []entities.Command
	Results    entities.CommandResults
	After      entities.ACLBinding
	Saved      bool
	Err        error
}

// Reached reports whether the run got through state s.
func (r Report) Reached(s State) bool {
	for _, p := range r.Progress {
		if p == s {
			return true
		}
	}
	return false
}

func (r *Report) advance(s State) {
	r.State = s
	r.Progress = append(r.Progress, s)
}

// Workflow toggles the ACL of a single device.
type Workflow struct {
	cfg    entities.DeviceConfig
	dialer ports.Dialer
	driver platform.ACLDriver
	out    io.Writer
	log    *logrus.Entry
	runID  string
}

// NewWorkflow prepares a run for cfg. Operator messages go to out; log may be
// nil, in which case the standard logrus logger is used.
func NewWorkflow(cfg entities.DeviceConfig, dialer ports.Dialer, driver platform.ACLDriver, out io.Writer, log *logrus.Entry) *Workflow {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	runID := uuid.NewString()
	return &Workflow{
		cfg:    cfg.WithDefaults(),
		dialer: dialer,
		driver: driver,
		out:    out,
		log:    log.WithFields(logrus.Fields{"device": cfg.Target, "run_id": runID}),
		runID:  runID,
	}
}

// RunID identifies this run in logs and reports.
func (w *Workflow) RunID() string {
	return w.runID
}

// Run performs the full toggle: connect, login, inspect, toggle, apply,
// verify and, when configured, save.
func (w *Workflow) Run() (Report, error) {
	return w.run(true)
}

// Inspect only reads the current binding.
func (w *Workflow) Inspect() (Report, error) {
	return w.run(false)
}

func (w *Workflow) run(toggle bool) (report Report, err error) {
	cfg := w.cfg
	report = Report{Target: cfg.Target, RunID: w.runID, State: StateIdle}

	var session *Session
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: unexpected failure in state %s: %v", cfg.Target, report.State, r)
		}
		if session != nil {
			if cerr := session.Close(); cerr != nil {
				w.log.Debugf("Closing session: %v", cerr)
			}
		}
		if err != nil {
			w.log.WithField("kind", entities.Kind(err)).Debugf("Workflow failed after %s", report.State)
			report.Err = err
			report.advance(StateFailed)
			return
		}
		report.advance(StateClosed)
	}()

	if err = cfg.Validate(); err != nil {
		return report, err
	}
	driver := w.driver
	if driver == nil {
		if driver, err = platform.Get(cfg.Platform); err != nil {
			return report, fmt.Errorf("%w: %v", entities.ErrInvalidConfig, err)
		}
	}

	var display io.Writer
	if cfg.IsRawOutputEnabled() {
		display = w.out
	}
	w.log.Debugf("Connecting to %s", cfg.Address())
	if session, err = OpenSession(w.dialer, cfg, display); err != nil {
		return report, err
	}
	report.advance(StateConnected)

	if err = session.Login(); err != nil {
		return report, err
	}
	report.Privileged = session.Privileged()
	report.advance(StateAuthenticated)
	w.log.Debugf("Logged in, privileged=%v", report.Privileged)

	inspector := Inspector{Target: cfg.Target, Driver: driver}
	if report.Before, err = inspector.Inspect(session, cfg.Interface, cfg.Direction); err != nil {
		return report, err
	}
	report.advance(StateInspected)
	fmt.Fprintf(w.out, "%s: %s ACL on %s is %s\n", cfg.Target, cfg.Direction, cfg.Interface, report.Before.ACL)
	if !toggle {
		return report, nil
	}

	if report.NewACL, err = Toggle(report.Before, cfg.ACL1, cfg.ACL2); err != nil {
		return report, entities.NewDeviceError(cfg.Target, "toggle", entities.ErrToggleAmbiguous,
			fmt.Sprintf("current ACL %q matches neither %q nor %q", report.Before.ACL, cfg.ACL1, cfg.ACL2), nil)
	}
	report.Commands = driver.ToggleCommands(report.NewACL, cfg.Direction, cfg.Interface)
	report.advance(StateToggled)

	if cfg.Sandbox {
		fmt.Fprintf(w.out, "SANDBOX: Simulating switch of %s ACL on %s from %s to %s\n", cfg.Direction, cfg.Interface, report.Before.ACL, report.NewACL)
		for _, cmd := range report.Commands {
			fmt.Fprintf(w.out, "  %s\n", cmd)
		}
		return report, nil
	}

	if !session.Privileged() {
		return report, entities.NewDeviceError(cfg.Target, "apply", entities.ErrPrivilegeEscalationFailure,
			"session is not privileged, configuration refused", nil)
	}

	report.Results, err = session.Execute(report.Commands)
	if err != nil {
		return report, entities.NewDeviceError(cfg.Target, "apply", entities.ErrDeviceUnreachable, "connection lost", err)
	}
	for _, res := range report.Results {
		if !res.Matched {
			w.log.Warnf("No prompt after %q, continuing", res.Command)
		}
	}
	w.log.Debugf("Applied %v", report.Results.Commands())
	report.advance(StateApplied)

	if report.After, err = inspector.Inspect(session, cfg.Interface, cfg.Direction); err != nil {
		return report, err
	}
	if !sameACL(report.After.ACL, report.NewACL) {
		return report, entities.NewDeviceError(cfg.Target, "verify", entities.ErrVerificationMismatch,
			fmt.Sprintf("expected %s, device reports %s", report.NewACL, report.After.ACL), nil)
	}
	report.advance(StateVerified)
	fmt.Fprintf(w.out, "%s: switched %s ACL on %s from %s to %s\n", cfg.Target, cfg.Direction, cfg.Interface, report.Before.ACL, report.After.ACL)

	if cfg.Save {
		report.Saved = w.save(session, driver, &report)
	}
	return report, nil
}

// save stores the running configuration. A failure is logged, the toggle
// itself already succeeded.
func (w *Workflow) save(session *Session, driver platform.ACLDriver, report *Report) bool {
	cmds := driver.SaveCommands()
	results, err := session.Execute(cmds)
	report.Results = append(report.Results, results...)
	if err != nil {
		w.log.Warnf("Error saving configuration: %v", err)
		return false
	}
	for _, res := range results {
		if !res.Matched {
			w.log.Warnf("No prompt after %q, configuration may not be saved", res.Command)
			return false
		}
	}
	fmt.Fprintf(w.out, "%s: configuration saved\n", w.cfg.Target)
	return true
}
