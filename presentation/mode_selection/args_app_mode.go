package mode_selection

import (
	"path/filepath"
	"strings"

	"sealtun/domain/mode"
)

// ArgsAppMode reads the mode from arguments without the binary name. With no
// arguments, or a configuration path in place of a mode, the mode is Run.
type ArgsAppMode struct {
	arguments []string
}

func NewArgsAppMode(arguments []string) *ArgsAppMode {
	return &ArgsAppMode{
		arguments: arguments,
	}
}

func (a *ArgsAppMode) Mode() (mode.Mode, error) {
	m, _, err := a.resolve()
	return m, err
}

func (a *ArgsAppMode) Args() []string {
	_, rest, _ := a.resolve()
	return rest
}

func (a *ArgsAppMode) resolve() (mode.Mode, []string, error) {
	if len(a.arguments) == 0 {
		return mode.Run, nil, nil
	}

	modeArgument := strings.TrimSpace(strings.ToLower(a.arguments[0]))
	rest := a.arguments[1:]
	switch modeArgument {
	case "run":
		return mode.Run, rest, nil
	case "genkey":
		if len(rest) == 0 || strings.TrimSpace(rest[0]) == "" {
			return mode.Unknown, nil, mode.NewMissingArgument(mode.GenKey, "a key file path")
		}
		return mode.GenKey, rest, nil
	case "version", "-v", "--version":
		return mode.Version, rest, nil
	}

	if looksLikePath(a.arguments[0]) {
		return mode.Run, a.arguments, nil
	}
	return mode.Unknown, nil, mode.NewInvalidModeProvided(modeArgument)
}

func looksLikePath(arg string) bool {
	return strings.ContainsRune(arg, filepath.Separator) ||
		strings.ContainsRune(arg, '/') ||
		strings.EqualFold(filepath.Ext(arg), ".json")
}
