package services

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zokikoz/acl-switch/domain/entities"
	"github.com/zokikoz/acl-switch/domain/ports"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeOutput unifies line endings to "\n". A lone "\r" ends a line too.
func NormalizeOutput(raw string) string {
	return lineEndings.Replace(raw)
}

// Executor sends commands one at a time, each synchronised on Prompt.
type Executor struct {
	Prompt  string
	Timeout time.Duration
	// Display receives every normalized output when set.
	Display io.Writer
}

// Execute runs commands in order and returns one result per command sent.
// A command whose prompt never arrives yields a result with Matched false and
// the batch goes on; a transport error stops the batch.
func (e Executor) Execute(tr ports.Transport, commands []entities.Command) (entities.CommandResults, error) {
	results := make(entities.CommandResults, 0, len(commands))
	for _, cmd := range commands {
		if err := tr.Write(line(string(cmd))); err != nil {
			return results, fmt.Errorf("error sending %s: %w", cmd, err)
		}
		raw, err := tr.ReadUntil(e.Prompt, e.Timeout)
		res := entities.CommandResult{
			Command: cmd,
			Raw:     string(raw),
			Output:  NormalizeOutput(string(raw)),
			Matched: err == nil,
		}
		results = append(results, res)
		if e.Display != nil {
			fmt.Fprintf(e.Display, "Switch output for '%s':\n%s\n", cmd, res.Output)
		}
		if err != nil && !errors.Is(err, ports.ErrNotMatched) {
			return results, fmt.Errorf("error executing %s: %w", cmd, err)
		}
	}
	return results, nil
}
