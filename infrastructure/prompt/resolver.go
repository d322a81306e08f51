// Package prompt asks the operator for secrets the configuration left out.
package prompt

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/zokikoz/acl-switch/domain/entities"
)

// Resolver fills missing passwords and enable secrets from the terminal.
// Each secret is asked once and reused for every device that lacks it.
type Resolver struct {
	fd         int
	out        io.Writer
	isTerminal func(fd int) bool
	readSecret func(fd int) ([]byte, error)
	answers    map[string]string
}

// NewResolver reads from stdin and writes prompts to out.
func NewResolver(out io.Writer) *Resolver {
	return &Resolver{
		fd:         int(os.Stdin.Fd()),
		out:        out,
		isTerminal: term.IsTerminal,
		readSecret: term.ReadPassword,
		answers:    map[string]string{},
	}
}

// Resolve returns devices with every secret set.
func (r *Resolver) Resolve(devices []entities.DeviceConfig) ([]entities.DeviceConfig, error) {
	out := make([]entities.DeviceConfig, len(devices))
	for i, dc := range devices {
		if dc.Password == "" {
			password, err := r.ask("Password", dc.Target)
			if err != nil {
				return nil, err
			}
			dc.Password = password
		}
		if dc.Enable.Mode == entities.EnableUnset {
			secret, err := r.ask("Enable", dc.Target)
			if err != nil {
				return nil, err
			}
			dc.Enable = entities.EnableWith(secret)
		}
		out[i] = dc
	}
	return out, nil
}

func (r *Resolver) ask(label, target string) (string, error) {
	if answer, ok := r.answers[label]; ok {
		return answer, nil
	}
	if !r.isTerminal(r.fd) {
		return "", fmt.Errorf("%w: %s for %s is not configured and stdin is not a terminal", entities.ErrInvalidConfig, label, target)
	}
	fmt.Fprintf(r.out, "%s: ", label)
	secret, err := r.readSecret(r.fd)
	fmt.Fprintln(r.out)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}
	r.answers[label] = string(secret)
	return string(secret), nil
}
