package ios

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/zokikoz/acl-switch/domain/entities"
)

var (
	aclMarkerRegex  = regexp.MustCompile(`access list is (?P<ACL>.+)\n`)
	commandErrHints = []string{
		"invalid input",
		"unknown command",
		"incomplete command",
		"ambiguous command",
		"unrecognized command",
		"invalid command",
	}
)

// errNoMarker is returned when the output lacks "access list is".
var errNoMarker = errors.New(`marker "access list is" not found`)

// directionLineRegex matches the line for one direction only. Newer IOS
// releases also print "<Direction> Common access list is ..." which must be
// skipped.
func directionLineRegex(direction entities.Direction) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(string(direction)) + `\s+access list is (.+)\n`)
}

func parseACLName(output string, direction entities.Direction) (string, error) {
	if direction != "" {
		if match := directionLineRegex(direction).FindStringSubmatch(output); match != nil {
			return strings.TrimSpace(match[1]), nil
		}
	}
	match := aclMarkerRegex.FindStringSubmatch(output)
	if match == nil {
		if isIOSCommandError(output) {
			return "", fmt.Errorf("%w: command rejected by device", errNoMarker)
		}
		return "", errNoMarker
	}
	return strings.TrimSpace(match[aclMarkerRegex.SubexpIndex("ACL")]), nil
}

func isIOSCommandError(output string) bool {
	lower := strings.ToLower(output)
	for _, keyword := range commandErrHints {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
