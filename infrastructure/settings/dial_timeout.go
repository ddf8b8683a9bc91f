package settings

import "time"

const DefaultDialTimeout = 5 * time.Second

// DialTimeoutMs bounds how long the dialing side waits for its transport.
type DialTimeoutMs int

// Duration returns the timeout, falling back to DefaultDialTimeout when unset.
func (d DialTimeoutMs) Duration() time.Duration {
	if d <= 0 {
		return DefaultDialTimeout
	}
	return time.Duration(d) * time.Millisecond
}
