package tun

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	application "sealtun/application/network/tun"
	"sealtun/infrastructure/settings"
)

type stubDevice struct {
	application.Device
	name   string
	closed bool
}

func (d *stubDevice) Name() string { return d.name }
func (d *stubDevice) Close() error { d.closed = true; return nil }

type stubConfigurator struct {
	got  application.Configuration
	name string
	err  error
}

func (c *stubConfigurator) Configure(name string, conf application.Configuration) error {
	c.name, c.got = name, conf
	return c.err
}

func TestFactory_Open(t *testing.T) {
	dev := &stubDevice{name: "seal0"}
	var hint string
	var mtu int
	conf := &stubConfigurator{}
	f := &Factory{
		create: func(nameHint string, m int) (application.Device, error) {
			hint, mtu = nameHint, m
			return dev, nil
		},
		configurator: conf,
	}

	got, err := f.Open(context.Background(), settings.Settings{
		TunName:          "seal%d",
		InterfaceAddress: netip.MustParsePrefix("10.0.0.1/30"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != dev || hint != "seal%d" || mtu != settings.DefaultEthernetMTU {
		t.Fatalf("unexpected create call: hint %q mtu %d", hint, mtu)
	}
	if conf.name != "seal0" || conf.got.MTU != settings.DefaultEthernetMTU || conf.got.Address.String() != "10.0.0.1/30" {
		t.Fatalf("unexpected configuration %s %+v", conf.name, conf.got)
	}
}

func TestFactory_Open_ConfigureFailureClosesDevice(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "permission", err: application.ErrPermissionDenied, want: application.ErrPermissionDenied},
		{name: "other", err: errors.New("boom"), want: application.ErrDeviceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &stubDevice{name: "seal0"}
			f := &Factory{
				create:       func(string, int) (application.Device, error) { return dev, nil },
				configurator: &stubConfigurator{err: tt.err},
			}
			if _, err := f.Open(context.Background(), settings.Settings{}); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !dev.closed {
				t.Fatal("device left open after failed configuration")
			}
		})
	}
}

func TestFactory_Open_CreateFailure(t *testing.T) {
	f := &Factory{
		create: func(string, int) (application.Device, error) {
			return nil, application.ErrPermissionDenied
		},
		configurator: &stubConfigurator{},
	}
	if _, err := f.Open(context.Background(), settings.Settings{}); !errors.Is(err, application.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}
