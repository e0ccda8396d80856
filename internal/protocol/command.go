package protocol

import "strings"

// Command names understood by the host.
const (
	// CommandExit asks the host process to terminate.
	CommandExit = "exit"
	// CommandSend asks the host to inject its argument as synthetic input.
	CommandSend = "send"
)

// Command is one parsed agent record.
type Command struct {
	// Name is the command name. It is never empty and contains no spaces.
	Name string
	// Arg is the text after the first space, taken verbatim.
	Arg string
	// HasArg reports whether the record contained a space at all.
	// "send" and "send " differ: the latter carries an empty argument.
	HasArg bool
}

// ParseCommand splits a record at its first space.
// It returns false for records without a command name, such as blank lines.
func ParseCommand(record string) (Command, bool) {
	record = strings.TrimSuffix(record, "\n")

	name, arg, hasArg := strings.Cut(record, " ")
	if name == "" {
		return Command{}, false
	}

	return Command{Name: name, Arg: arg, HasArg: hasArg}, true
}

// String renders the command back into its wire form without a terminator.
func (c Command) String() string {
	if !c.HasArg {
		return c.Name
	}

	return c.Name + " " + c.Arg
}
