package tun

import (
	"context"
	"errors"
	"fmt"

	"sealtun/application/logging"
	application "sealtun/application/network/tun"
	"sealtun/infrastructure/settings"
)

// ErrAlreadyConfigured is returned when a device is configured a second time.
var ErrAlreadyConfigured = errors.New("device already configured")

// creator makes a bare device; the platform files provide one.
type creator func(nameHint string, mtu int) (application.Device, error)

type Factory struct {
	create       creator
	configurator application.Configurator
	logger       logging.Logger
}

// NewFactory returns the factory for the running platform.
func NewFactory(logger logging.Logger) (*Factory, error) {
	create, conf, err := platform()
	if err != nil {
		return nil, err
	}
	return &Factory{create: create, configurator: conf, logger: logger}, nil
}

// Open creates the device and configures it. A configuration failure closes
// the device again and is reported as ErrDeviceUnavailable or
// ErrPermissionDenied.
func (f *Factory) Open(ctx context.Context, s settings.Settings) (application.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mtu := settings.ResolveMTU(s.MTU)
	dev, err := f.create(s.TunName, mtu)
	if err != nil {
		return nil, err
	}

	conf := application.Configuration{Address: s.InterfaceAddress, MTU: mtu}
	if err := f.configurator.Configure(dev.Name(), conf); err != nil {
		_ = dev.Close()
		if errors.Is(err, application.ErrPermissionDenied) || errors.Is(err, application.ErrDeviceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", application.ErrDeviceUnavailable, err)
	}
	if f.logger != nil {
		f.logger.Printf("tun %s up: address %s, mtu %d", dev.Name(), s.InterfaceAddress, mtu)
	}
	return dev, nil
}
