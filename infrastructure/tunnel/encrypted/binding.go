package encrypted

import (
	"sync"

	"sealtun/application/network/tun"
)

// devices currently owned by an open channel. Close releases the entry after
// closing the device, so a device never carries plaintext for two channels.
var (
	boundMu sync.Mutex
	bound   = map[tun.Device]struct{}{}
)

func bind(dev tun.Device) error {
	boundMu.Lock()
	defer boundMu.Unlock()
	if _, ok := bound[dev]; ok {
		return ErrDeviceAlreadyBound
	}
	bound[dev] = struct{}{}
	return nil
}

func unbind(dev tun.Device) {
	boundMu.Lock()
	delete(bound, dev)
	boundMu.Unlock()
}
