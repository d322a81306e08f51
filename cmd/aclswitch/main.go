// aclswitch flips the ACL bound to a Cisco IOS interface between two
// configured lists over Telnet.
//
//	aclswitch toggle -t 10.0.0.1          # swap acl1 <-> acl2 on one device
//	aclswitch toggle --dry-run            # show the commands for every device
//	aclswitch show -c lab.yaml            # print the bound ACLs
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zokikoz/acl-switch/application/services"
	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/domain/ports"
	domain "github.com/zokikoz/acl-switch/domain/services"
	"github.com/zokikoz/acl-switch/infrastructure/config"
	"github.com/zokikoz/acl-switch/infrastructure/logging"
	"github.com/zokikoz/acl-switch/infrastructure/prompt"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// secretResolver completes the secrets missing from the configuration.
type secretResolver interface {
	Resolve(devices []entities.DeviceConfig) ([]entities.DeviceConfig, error)
}

type app struct {
	configPath string
	targets    []string
	verbosity  int
	logLevel   string
	logFormat  string
	dryRun     bool
	save       bool
	parallel   int

	out      io.Writer
	dialer   ports.Dialer
	resolver secretResolver
}

func main() {
	if err := newRootCmd(os.Stdout, nil, nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. A nil dialer means Telnet and a nil
// resolver asks on the terminal.
func newRootCmd(out io.Writer, dialer ports.Dialer, resolver secretResolver) *cobra.Command {
	if resolver == nil {
		resolver = prompt.NewResolver(os.Stderr)
	}
	a := &app{out: out, dialer: dialer, resolver: resolver}

	root := &cobra.Command{
		Use:               "aclswitch",
		Short:             "Toggle the ACL bound to a Cisco interface",
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbosity < 0 || a.verbosity > 3 {
				return fmt.Errorf("--verbose must be 0, 1, 2, or 3")
			}
			logging.SetLogOutput(cmd.ErrOrStderr())
			logging.SetVerbosity(a.verbosity)
			if a.logLevel != "" {
				if err := logging.SetLogLevel(a.logLevel); err != nil {
					return fmt.Errorf("--log-level: %w", err)
				}
			}
			return logging.SetFormat(a.logFormat)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file (default: first of "+fmt.Sprint(config.SearchPaths())+")")
	root.PersistentFlags().StringSliceVarP(&a.targets, "target", "t", nil, "Device target from the YAML file, repeatable (default: all devices)")
	root.PersistentFlags().IntVarP(&a.verbosity, "verbose", "v", 0, "Verbosity level: 0=none, 1=debug logs, 2=raw switch output, 3=debug+raw output")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error), overrides --verbose for logs")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")

	toggleCmd := &cobra.Command{
		Use:   "toggle",
		Short: "Swap the bound ACL between acl1 and acl2",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.parallel < 0 {
				return fmt.Errorf("--parallel must not be negative")
			}
			devices, err := a.load()
			if err != nil {
				return err
			}
			svc := services.NewACLApplicationService(a.dialer, a.out, a.parallel)
			return a.finish(svc.ToggleAll(devices))
		},
	}
	toggleCmd.Flags().BoolVarP(&a.dryRun, "dry-run", "n", false, "Print the commands instead of applying them (sandbox)")
	toggleCmd.Flags().BoolVarP(&a.save, "save", "s", false, "Run 'write memory' after a verified change")
	toggleCmd.Flags().IntVarP(&a.parallel, "parallel", "p", 1, "Number of devices handled at the same time")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the ACL currently bound on each device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := a.load()
			if err != nil {
				return err
			}
			return a.finish(services.NewACLApplicationService(a.dialer, a.out, 1).InspectAll(devices))
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "aclswitch %s (built %s)\n", version, buildTime)
		},
	}

	root.AddCommand(toggleCmd, showCmd, versionCmd)
	return root
}

func (a *app) load() ([]entities.DeviceConfig, error) {
	path, err := config.Locate(a.configPath)
	if err != nil {
		return nil, err
	}
	devices, err := config.Load(path, config.Options{
		Targets:        a.targets,
		Sandbox:        a.dryRun,
		Save:           a.save,
		VerbosityLevel: a.verbosity,
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("Loaded %d device(s) from %s", len(devices), path)
	return a.resolver.Resolve(devices)
}

func (a *app) finish(reports []domain.Report) error {
	fmt.Fprintln(a.out)
	services.PrintSummary(a.out, reports)
	err := services.Err(reports)
	if err == nil {
		return nil
	}
	logging.Debugf("Failed devices: %v", err)
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	return fmt.Errorf("%d of %d device(s) failed", failed, len(reports))
}
