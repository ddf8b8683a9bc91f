package mode_selection

import "sealtun/domain/mode"

// AppMode resolves the application's runtime mode.
type AppMode interface {
	Mode() (mode.Mode, error)
	// Args returns the arguments that follow the mode.
	Args() []string
}
