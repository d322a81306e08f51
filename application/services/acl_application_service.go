package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/domain/ports"
	"github.com/zokikoz/acl-switch/domain/services"
	"github.com/zokikoz/acl-switch/infrastructure/logging"
	"github.com/zokikoz/acl-switch/infrastructure/transport"
	"github.com/zokikoz/acl-switch/platform"
)

// ACLApplicationService runs the ACL workflow over a batch of devices
type ACLApplicationService struct {
	dialer   ports.Dialer
	out      io.Writer
	parallel int
}

// NewACLApplicationService creates a new instance of the ACL application service.
// A nil dialer means Telnet; parallel below 2 runs devices one after another.
func NewACLApplicationService(dialer ports.Dialer, out io.Writer, parallel int) *ACLApplicationService {
	if dialer == nil {
		dialer = transport.NewDialer()
	}
	if out == nil {
		out = io.Discard
	}
	return &ACLApplicationService{
		dialer:   dialer,
		out:      out,
		parallel: parallel,
	}
}

// ToggleAll toggles the ACL on every device. Reports follow the input order.
func (a *ACLApplicationService) ToggleAll(devices []entities.DeviceConfig) []services.Report {
	return a.runAll(devices, (*services.Workflow).Run)
}

// InspectAll reports the ACL bound on every device.
func (a *ACLApplicationService) InspectAll(devices []entities.DeviceConfig) []services.Report {
	return a.runAll(devices, (*services.Workflow).Inspect)
}

type step func(*services.Workflow) (services.Report, error)

func (a *ACLApplicationService) runAll(devices []entities.DeviceConfig, run step) []services.Report {
	reports := make([]services.Report, len(devices))
	if a.parallel < 2 || len(devices) < 2 {
		for i, cfg := range devices {
			reports[i] = a.runOne(cfg, a.out, run)
		}
		return reports
	}

	// Each device writes to its own buffer so output stays grouped per device.
	outputs := make([]bytes.Buffer, len(devices))
	var g errgroup.Group
	g.SetLimit(a.parallel)
	for i, cfg := range devices {
		g.Go(func() error {
			reports[i] = a.runOne(cfg, &outputs[i], run)
			return nil
		})
	}
	_ = g.Wait()
	for i := range outputs {
		_, _ = outputs[i].WriteTo(a.out)
	}
	return reports
}

func (a *ACLApplicationService) runOne(cfg entities.DeviceConfig, out io.Writer, run step) services.Report {
	driver, err := platform.Get(cfg.Platform)
	if err != nil {
		err = fmt.Errorf("%w: %v", entities.ErrInvalidConfig, err)
		logging.WithDevice(cfg.Target).Warnf("Skipping device: %v", err)
		return services.Report{Target: cfg.Target, State: services.StateFailed, Progress: []services.State{services.StateFailed}, Err: err}
	}
	log := logging.WithFields(logrus.Fields{"device": cfg.Target, "platform": driver.Name()})
	report, err := run(services.NewWorkflow(cfg, a.dialer, driver, out, log))
	if err != nil {
		log.WithField("kind", entities.Kind(err)).Warnf("Device failed: %v", err)
	}
	return report
}

// Err joins the errors of all failed reports, nil when every device succeeded.
func Err(reports []services.Report) error {
	var errs []error
	for _, r := range reports {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}

// PrintSummary writes one line per device followed by the totals.
func PrintSummary(w io.Writer, reports []services.Report) {
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s [%s] %v\n", r.Target, entities.Kind(r.Err), r.Err)
			continue
		}
		switch {
		case r.NewACL == "":
			fmt.Fprintf(w, "OK   %s %s\n", r.Target, r.Before.ACL)
		case !r.Reached(services.StateApplied):
			fmt.Fprintf(w, "OK   %s %s -> %s (not applied)\n", r.Target, r.Before.ACL, r.NewACL)
		default:
			fmt.Fprintf(w, "OK   %s %s -> %s\n", r.Target, r.Before.ACL, r.After.ACL)
		}
	}
	fmt.Fprintf(w, "%d device(s), %d failed\n", len(reports), failed)
}
