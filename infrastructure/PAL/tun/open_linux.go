//go:build linux

package tun

import (
	"fmt"

	application "sealtun/application/network/tun"
	"sealtun/infrastructure/PAL/linux/ioctl"
	"sealtun/infrastructure/PAL/linux/netlink"
	"sealtun/infrastructure/PAL/linux/tun/epoll"
)

const defaultNameHint = "sealtun%d"

func platform() (creator, application.Configurator, error) {
	wrapper := ioctl.NewWrapper(ioctl.NewLinuxIoctlCommander(), ioctl.DefaultTunPath)
	create := func(nameHint string, _ int) (application.Device, error) {
		if nameHint == "" {
			nameHint = defaultNameHint
		}
		f, name, err := wrapper.CreateTunInterface(nameHint)
		if err != nil {
			return nil, err
		}
		dev, err := epoll.NewDevice(f, name)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %v", application.ErrDeviceUnavailable, err)
		}
		return dev, nil
	}
	return create, netlink.NewConfigurator(), nil
}
