package mode

import "fmt"

type InvalidModeProvided struct {
	mode string
}

func NewInvalidModeProvided(mode string) InvalidModeProvided {
	return InvalidModeProvided{
		mode: mode,
	}
}

func (i InvalidModeProvided) Error() string {
	if i.mode == "" {
		return "empty string is not a valid mode"
	}
	return fmt.Sprintf("%s is not a valid mode", i.mode)
}

// MissingArgument is returned when a mode is given without an argument it
// cannot run without.
type MissingArgument struct {
	mode     Mode
	argument string
}

func NewMissingArgument(mode Mode, argument string) MissingArgument {
	return MissingArgument{mode: mode, argument: argument}
}

func (m MissingArgument) Error() string {
	return fmt.Sprintf("%s requires %s", m.mode, m.argument)
}
