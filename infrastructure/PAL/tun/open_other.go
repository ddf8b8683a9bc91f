//go:build !linux

package tun

import (
	"fmt"
	"runtime"

	application "sealtun/application/network/tun"
	"sealtun/infrastructure/PAL/exec_commander"

	wgtun "golang.zx2c4.com/wireguard/tun"
)

func platform() (creator, application.Configurator, error) {
	conf, err := NewExecConfigurator(exec_commander.NewExecCommander(), runtime.GOOS)
	if err != nil {
		return nil, nil, err
	}
	create := func(nameHint string, mtu int) (application.Device, error) {
		if nameHint == "" {
			nameHint = defaultNameHint()
		}
		dev, err := wgtun.CreateTUN(nameHint, mtu)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", application.ErrDeviceUnavailable, err)
		}
		wd, err := NewWgDevice(dev)
		if err != nil {
			_ = dev.Close()
			return nil, fmt.Errorf("%w: %v", application.ErrDeviceUnavailable, err)
		}
		return wd, nil
	}
	return create, conf, nil
}

func defaultNameHint() string {
	if runtime.GOOS == "darwin" {
		return "utun"
	}
	return "sealtun"
}
