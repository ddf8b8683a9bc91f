package configuration

import (
	"fmt"
	"net"
	"strings"
	"time"

	"sealtun/infrastructure/cryptography/stream"
	"sealtun/infrastructure/settings"
)

const DefaultStatsInterval = time.Minute

type Configuration struct {
	Tunnel  settings.Settings `json:"Tunnel"`
	Logging settings.Logging  `json:"Logging"`
	// StatsIntervalSec: zero selects DefaultStatsInterval, negative disables
	// the periodic traffic log line.
	StatsIntervalSec int `json:"StatsIntervalSec,omitempty"`
}

// StatsInterval returns zero when reporting is disabled.
func (c *Configuration) StatsInterval() time.Duration {
	switch {
	case c.StatsIntervalSec < 0:
		return 0
	case c.StatsIntervalSec == 0:
		return DefaultStatsInterval
	default:
		return time.Duration(c.StatsIntervalSec) * time.Second
	}
}

// Validate checks that the configuration describes a runnable endpoint.
func (c *Configuration) Validate() error {
	t := c.Tunnel
	switch t.Role {
	case settings.Dial:
		if strings.TrimSpace(t.RemoteAddress) == "" {
			return fmt.Errorf("RemoteAddress is required for role %s", t.Role)
		}
	case settings.Listen:
		if strings.TrimSpace(t.LocalAddress) == "" {
			return fmt.Errorf("LocalAddress is required for role %s", t.Role)
		}
	default:
		return fmt.Errorf("role is not configured")
	}
	if t.Protocol == settings.UNKNOWN {
		return fmt.Errorf("protocol is UNKNOWN")
	}
	if t.Protocol.Connected() && t.Role == settings.Listen && t.RemoteAddress != "" {
		return fmt.Errorf("RemoteAddress with role %s requires protocol %s", t.Role, settings.UDP)
	}
	for _, addr := range []string{t.LocalAddress, t.RemoteAddress} {
		if addr == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("invalid address %q: %w", addr, err)
		}
	}
	if strings.TrimSpace(t.KeyFile) == "" {
		return fmt.Errorf("KeyFile is not configured")
	}
	if t.InterfaceAddress.IsValid() && t.InterfaceAddress.Addr().IsUnspecified() {
		return fmt.Errorf("InterfaceAddress %s is unspecified", t.InterfaceAddress)
	}
	if t.MTU != 0 && t.MTU < settings.MinimumIPv4MTU {
		return fmt.Errorf("MTU %d is below %d", t.MTU, settings.MinimumIPv4MTU)
	}
	if t.Protocol == settings.QUIC && settings.ResolveMTU(t.MTU) > settings.MaxQUICMTU {
		return fmt.Errorf("protocol %s carries at most MTU %d, set MTU explicitly", t.Protocol, settings.MaxQUICMTU)
	}
	if settings.BufferSize(t.MTU) > settings.MaxFrameLength {
		return fmt.Errorf("MTU %d does not fit a %d byte frame", t.MTU, settings.MaxFrameLength)
	}
	if t.ProbeWindow > stream.MaxProbeWindow {
		return fmt.Errorf("ProbeWindow %d exceeds %d", t.ProbeWindow, stream.MaxProbeWindow)
	}
	prefix, err := t.NoncePrefixBytes()
	if err != nil {
		return err
	}
	if prefix != nil && len(prefix) != stream.PrefixSize(t.Encryption) {
		return fmt.Errorf(
			"NoncePrefix is %d bytes, %s expects %d",
			len(prefix),
			t.Encryption,
			stream.PrefixSize(t.Encryption),
		)
	}
	return nil
}
