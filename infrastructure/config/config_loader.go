package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/infrastructure/logging"
	"github.com/zokikoz/acl-switch/platform"
)

// DefaultFile is the configuration file name looked up by Locate.
const DefaultFile = "config.yaml"

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "ACLSWITCH"

// Enable is the YAML form of the enable secret: false disables escalation,
// a string is the secret, absence means the operator is asked.
type Enable struct {
	Set      bool
	Disabled bool
	Secret   string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Enable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: enable must be false or a secret", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*e = Enable{}
	case "!!bool":
		var on bool
		if err := node.Decode(&on); err != nil {
			return err
		}
		if on {
			return fmt.Errorf("line %d: enable: true is not a secret, use a string or false", node.Line)
		}
		*e = Enable{Set: true, Disabled: true}
	default:
		*e = Enable{Set: true, Secret: node.Value}
	}
	return nil
}

func (e Enable) setting() entities.EnableSetting {
	switch {
	case !e.Set:
		return entities.EnableSetting{}
	case e.Disabled:
		return entities.EnableOff()
	default:
		return entities.EnableWith(e.Secret)
	}
}

// Duration accepts Go durations ("10s") or whole seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var secs int
		if err := node.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", node.Line, node.Value)
	}
	*d = Duration(parsed)
	return nil
}

// Device holds the settings of one device; empty fields inherit the globals.
type Device struct {
	Target         string   `yaml:"target"`
	Platform       string   `yaml:"platform"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Enable         Enable   `yaml:"enable"`
	Interface      string   `yaml:"interface"`
	Direction      string   `yaml:"direction"`
	ACL1           string   `yaml:"acl1"`
	ACL2           string   `yaml:"acl2"`
	Timeout        Duration `yaml:"timeout"`
	LoginTimeout   Duration `yaml:"login_timeout"`
	CommandTimeout Duration `yaml:"command_timeout"`
}

// Config defines the global configuration
type Config struct {
	Device  `yaml:",inline"`
	Devices []Device `yaml:"devices"`
}

// Env is the environment overlay for global credentials.
type Env struct {
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	Enable   string `envconfig:"ENABLE"`
}

// Options carries the command line settings applied to every device.
type Options struct {
	Targets        []string
	Sandbox        bool
	Save           bool
	VerbosityLevel int
}

// Locate returns path when given, otherwise the first existing default file.
func Locate(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	for _, candidate := range SearchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			logging.Debugf("Configuration file found at %s", candidate)
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no %s found in %s", entities.ErrInvalidConfig, DefaultFile, strings.Join(SearchPaths(), ", "))
}

// SearchPaths lists where Locate looks, in order.
func SearchPaths() []string {
	paths := []string{filepath.Join(".", DefaultFile)}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(userConfigDir, "acl-switch", DefaultFile))
	}
	return append(paths, filepath.Join("/etc", "acl-switch", DefaultFile))
}

// Load reads yamlFile, applies the environment overlay and returns one
// DeviceConfig per selected device.
func Load(yamlFile string, opts Options) ([]entities.DeviceConfig, error) {
	data, err := os.ReadFile(yamlFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", yamlFile, err)
	}
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", entities.ErrInvalidConfig, err)
	}
	return Parse(data, env, opts)
}

// Parse builds device configs from YAML data
func Parse(data []byte, env Env, opts Options) ([]entities.DeviceConfig, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", entities.ErrInvalidConfig, err)
	}
	if len(cfg.Devices) == 0 {
		return nil, fmt.Errorf("%w: no devices defined in the YAML configuration", entities.ErrInvalidConfig)
	}
	applyEnv(&cfg.Device, env)

	selected, err := selectDevices(cfg.Devices, opts.Targets)
	if err != nil {
		return nil, err
	}

	out := make([]entities.DeviceConfig, 0, len(selected))
	for _, dev := range selected {
		dc, err := merge(cfg.Device, dev)
		if err != nil {
			return nil, err
		}
		dc.Sandbox = opts.Sandbox
		dc.Save = opts.Save
		dc.VerbosityLevel = opts.VerbosityLevel
		logging.WithDevice(dc.Target).Debugf("Final configuration: Platform=%s Interface=%s Direction=%s ACL1=%s ACL2=%s Enable=%s Timeout=%s",
			dc.Platform, dc.Interface, dc.Direction, dc.ACL1, dc.ACL2, dc.Enable.Mode, dc.Timeout)
		out = append(out, dc)
	}
	return out, nil
}

func applyEnv(global *Device, env Env) {
	if global.Username == "" {
		global.Username = env.Username
	}
	if global.Password == "" {
		global.Password = env.Password
	}
	if !global.Enable.Set && env.Enable != "" {
		if strings.EqualFold(env.Enable, "false") {
			global.Enable = Enable{Set: true, Disabled: true}
		} else {
			global.Enable = Enable{Set: true, Secret: env.Enable}
		}
	}
}

func selectDevices(devices []Device, targets []string) ([]Device, error) {
	seen := make(map[string]bool, len(devices))
	for i, dev := range devices {
		if strings.TrimSpace(dev.Target) == "" {
			return nil, fmt.Errorf("%w: target is required for device %d", entities.ErrInvalidConfig, i)
		}
		if seen[dev.Target] {
			return nil, fmt.Errorf("%w: device %s is defined twice", entities.ErrInvalidConfig, dev.Target)
		}
		seen[dev.Target] = true
	}
	if len(targets) == 0 {
		return devices, nil
	}

	selected := make([]Device, 0, len(targets))
	for _, target := range targets {
		found := false
		for _, dev := range devices {
			if dev.Target == target {
				selected = append(selected, dev)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: target %s not registered in the YAML configuration", entities.ErrInvalidConfig, target)
		}
	}
	return selected, nil
}

func merge(global, dev Device) (entities.DeviceConfig, error) {
	pick := func(own, inherited string) string {
		if strings.TrimSpace(own) != "" {
			return strings.TrimSpace(own)
		}
		return strings.TrimSpace(inherited)
	}
	pickDuration := func(own, inherited Duration) time.Duration {
		if own > 0 {
			return time.Duration(own)
		}
		return time.Duration(inherited)
	}

	enable := global.Enable
	if dev.Enable.Set {
		enable = dev.Enable
	}
	dc := entities.DeviceConfig{
		Target:         strings.TrimSpace(dev.Target),
		Username:       pick(dev.Username, global.Username),
		Password:       dev.Password,
		Enable:         enable.setting(),
		Interface:      pick(dev.Interface, global.Interface),
		ACL1:           normalizeACL(pick(dev.ACL1, global.ACL1)),
		ACL2:           normalizeACL(pick(dev.ACL2, global.ACL2)),
		Platform:       strings.ToLower(pick(dev.Platform, global.Platform)),
		Timeout:        pickDuration(dev.Timeout, global.Timeout),
		LoginTimeout:   pickDuration(dev.LoginTimeout, global.LoginTimeout),
		CommandTimeout: pickDuration(dev.CommandTimeout, global.CommandTimeout),
	}
	if dc.Password == "" {
		dc.Password = global.Password
	}
	if dc.Platform == "" {
		dc.Platform = platform.Default
	}
	if _, err := platform.Get(dc.Platform); err != nil {
		return dc, fmt.Errorf("%w: invalid platform for device %s: %v (available: %s)", entities.ErrInvalidConfig, dc.Target, err, platformNames())
	}

	direction, err := ParseDirection(pick(dev.Direction, global.Direction))
	if err != nil {
		return dc, fmt.Errorf("%w: device %s: %v", entities.ErrInvalidConfig, dc.Target, err)
	}
	dc.Direction = direction
	dc = dc.WithDefaults()

	// The secrets may still be asked for; everything else must be complete.
	resolved := dc
	if resolved.Enable.Mode == entities.EnableUnset {
		resolved.Enable = entities.EnableOff()
	}
	if err := resolved.Validate(); err != nil {
		return dc, err
	}
	if entities.IsNotSet(dc.ACL1) && entities.IsNotSet(dc.ACL2) {
		logging.Warnf("Device %s: acl1 and acl2 are both %q, toggling changes nothing", dc.Target, entities.NotSet)
	}
	return dc, nil
}

// ParseDirection accepts the IOS label or its short token in any case.
func ParseDirection(value string) (entities.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "inbound", "in":
		return entities.DirectionInbound, nil
	case "outgoing", "outbound", "out":
		return entities.DirectionOutgoing, nil
	case "":
		return "", fmt.Errorf("direction is required")
	default:
		return "", fmt.Errorf("direction %s is invalid, must be 'Inbound' or 'Outgoing'", value)
	}
}

func normalizeACL(name string) string {
	if entities.IsNotSet(name) {
		return entities.NotSet
	}
	return name
}

func platformNames() string {
	var names []string
	for _, d := range platform.Available() {
		names = append(names, d.Name())
	}
	return strings.Join(names, ", ")
}
