package tun

import "net/netip"

// Configuration describes the link state a freshly created device must reach
// before it carries traffic.
type Configuration struct {
	Address netip.Prefix
	MTU     int
}

// Configurator assigns the address, sets the MTU and brings the link up.
// It runs once per device, before first use.
type Configurator interface {
	Configure(name string, conf Configuration) error
}
