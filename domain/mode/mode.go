package mode

type Mode int

const (
	Unknown Mode = iota
	// Run starts a tunnel session from a configuration file
	Run
	// GenKey writes a fresh shared key file
	GenKey
	// Version used to lookup version
	Version
)

func (m Mode) String() string {
	switch m {
	case Run:
		return "run"
	case GenKey:
		return "genkey"
	case Version:
		return "version"
	default:
		return "unknown"
	}
}
