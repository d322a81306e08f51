package entities

// Command is a literal line sent to the device.
type Command string

// CommandResult pairs a command with the output captured for it
type CommandResult struct {
	Command Command
	Raw     string // bytes as read, including the trailing prompt
	Output  string // Raw with line endings unified to "\n"
	Matched bool   // false when the prompt never arrived before the timeout
}

// CommandResults keeps results in execution order.
type CommandResults []CommandResult

// Lookup returns the first result recorded for cmd.
func (r CommandResults) Lookup(cmd Command) (CommandResult, bool) {
	for _, res := range r {
		if res.Command == cmd {
			return res, true
		}
	}
	return CommandResult{}, false
}

// Commands lists the commands in execution order.
func (r CommandResults) Commands() []Command {
	out := make([]Command, 0, len(r))
	for _, res := range r {
		out = append(out, res.Command)
	}
	return out
}
